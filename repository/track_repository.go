package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"Tunelist/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrackRepository defines the interface for track data operations.
type TrackRepository interface {
	// List returns one page of tracks matching the filter.
	List(ctx context.Context, filter model.TrackFilter) ([]model.Track, error)
	// GetByID returns nil, nil when the track does not exist.
	GetByID(ctx context.Context, id string) (*model.Track, error)
	Create(ctx context.Context, track *model.Track) error
	// Delete removes the track and its playlist memberships. Deleting a missing track is not an error.
	Delete(ctx context.Context, id string) error
}

type gormTrackRepository struct {
	db *gorm.DB
}

// NewGormTrackRepository 创建 GORM 歌曲仓库
func NewGormTrackRepository(db *gorm.DB) TrackRepository {
	return &gormTrackRepository{db: db}
}

func (r *gormTrackRepository) List(ctx context.Context, filter model.TrackFilter) ([]model.Track, error) {
	query := r.db.WithContext(ctx).Model(&model.Track{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(strings.ToLower(search))
		query = query.Where("LOWER(title) LIKE ? ESCAPE '!' OR LOWER(artist) LIKE ? ESCAPE '!'", pattern, pattern)
	}

	tracks := []model.Track{}
	err := query.
		Order("created_at ASC").
		Order("id ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	return tracks, nil
}

func (r *gormTrackRepository) GetByID(ctx context.Context, id string) (*model.Track, error) {
	var track model.Track
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&track).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get track %s: %w", id, err)
	}
	return &track, nil
}

func (r *gormTrackRepository) Create(ctx context.Context, track *model.Track) error {
	if track.ID == "" {
		track.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(track).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create track: %w", err)
	}
	return nil
}

func (r *gormTrackRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("track_id = ?", id).Delete(&model.PlaylistTrack{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Track{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete track %s: %w", id, err)
	}
	return nil
}
