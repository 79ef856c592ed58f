package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"Tunelist/model"

	"github.com/go-redis/redis/v8"
)

// TrackCache stores single tracks as JSON keyed by track ID.
type TrackCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTrackCache 创建歌曲缓存
func NewTrackCache(client *redis.Client, ttl time.Duration) *TrackCache {
	return &TrackCache{client: client, ttl: ttl}
}

// GetTrackKey 根据歌曲ID生成Redis键
func GetTrackKey(trackID string) string {
	return fmt.Sprintf("track:%s", trackID)
}

// Get returns nil, nil on a cache miss.
func (c *TrackCache) Get(ctx context.Context, trackID string) (*model.Track, error) {
	data, err := c.client.Get(ctx, GetTrackKey(trackID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached track: %w", err)
	}

	var track model.Track
	if err := json.Unmarshal(data, &track); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached track: %w", err)
	}
	return &track, nil
}

func (c *TrackCache) Set(ctx context.Context, track *model.Track) error {
	data, err := json.Marshal(track)
	if err != nil {
		return fmt.Errorf("failed to marshal track: %w", err)
	}
	if err := c.client.Set(ctx, GetTrackKey(track.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache track: %w", err)
	}
	return nil
}

// Invalidate 删除缓存的歌曲
func (c *TrackCache) Invalidate(ctx context.Context, trackID string) error {
	if err := c.client.Del(ctx, GetTrackKey(trackID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached track: %w", err)
	}
	return nil
}
