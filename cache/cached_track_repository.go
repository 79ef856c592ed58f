package cache

import (
	"context"

	"Tunelist/logger"
	"Tunelist/model"
	"Tunelist/repository"
)

// cachedTrackRepository reads single tracks through the cache. The database stays the
// source of truth: cache failures are logged and the call falls through.
type cachedTrackRepository struct {
	repository.TrackRepository
	cache *TrackCache
}

// NewCachedTrackRepository wraps repo so GetByID is served from Redis when possible.
func NewCachedTrackRepository(repo repository.TrackRepository, cache *TrackCache) repository.TrackRepository {
	return &cachedTrackRepository{TrackRepository: repo, cache: cache}
}

func (r *cachedTrackRepository) GetByID(ctx context.Context, id string) (*model.Track, error) {
	track, err := r.cache.Get(ctx, id)
	if err != nil {
		logger.Warn("[TrackCache] 读取缓存失败", logger.String("trackId", id), logger.ErrorField(err))
	} else if track != nil {
		return track, nil
	}

	track, err = r.TrackRepository.GetByID(ctx, id)
	if err != nil || track == nil {
		return track, err
	}

	if err := r.cache.Set(ctx, track); err != nil {
		logger.Warn("[TrackCache] 写入缓存失败", logger.String("trackId", id), logger.ErrorField(err))
	}
	return track, nil
}

func (r *cachedTrackRepository) Delete(ctx context.Context, id string) error {
	if err := r.TrackRepository.Delete(ctx, id); err != nil {
		return err
	}
	if err := r.cache.Invalidate(ctx, id); err != nil {
		logger.Warn("[TrackCache] 删除缓存失败", logger.String("trackId", id), logger.ErrorField(err))
	}
	return nil
}
