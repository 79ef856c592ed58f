package repository

import (
	"context"
	"errors"
	"fmt"

	"Tunelist/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlaylistRepository defines the interface for playlist and membership operations.
//
// Every method that takes a userID scopes its query or mutation by owner; callers rely
// on that predicate as the authorization check.
type PlaylistRepository interface {
	// ListByUser returns the user's playlists, newest first, with memberships and tracks expanded.
	ListByUser(ctx context.Context, userID string) ([]model.Playlist, error)
	Create(ctx context.Context, playlist *model.Playlist) error
	// GetOwned returns nil, nil when the playlist is missing or owned by someone else.
	GetOwned(ctx context.Context, id, userID string) (*model.Playlist, error)
	// AddTrack returns ErrDuplicate when the track is already in the playlist.
	AddTrack(ctx context.Context, entry *model.PlaylistTrack) error
	// RemoveTrack deletes the membership if present.
	RemoveTrack(ctx context.Context, playlistID, trackID string) error
	// DeleteOwned deletes the playlist where both id and owner match and reports the rows removed.
	DeleteOwned(ctx context.Context, id, userID string) (int64, error)
}

type gormPlaylistRepository struct {
	db *gorm.DB
}

// NewGormPlaylistRepository 创建 GORM 歌单仓库
func NewGormPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &gormPlaylistRepository{db: db}
}

func (r *gormPlaylistRepository) ListByUser(ctx context.Context, userID string) ([]model.Playlist, error) {
	playlists := []model.Playlist{}
	err := r.db.WithContext(ctx).
		Preload("PlaylistTracks", func(db *gorm.DB) *gorm.DB {
			return db.Order("added_at ASC")
		}).
		Preload("PlaylistTracks.Track").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&playlists).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists for user %s: %w", userID, err)
	}
	for i := range playlists {
		if playlists[i].PlaylistTracks == nil {
			playlists[i].PlaylistTracks = []model.PlaylistTrack{}
		}
	}
	return playlists, nil
}

func (r *gormPlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	if playlist.ID == "" {
		playlist.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(playlist).Error; err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	return nil
}

func (r *gormPlaylistRepository) GetOwned(ctx context.Context, id, userID string) (*model.Playlist, error) {
	var playlist model.Playlist
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&playlist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get playlist %s: %w", id, err)
	}
	return &playlist, nil
}

func (r *gormPlaylistRepository) AddTrack(ctx context.Context, entry *model.PlaylistTrack) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Omit("Track").Create(entry).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to add track %s to playlist %s: %w", entry.TrackID, entry.PlaylistID, err)
	}
	return nil
}

func (r *gormPlaylistRepository) RemoveTrack(ctx context.Context, playlistID, trackID string) error {
	err := r.db.WithContext(ctx).
		Where("playlist_id = ? AND track_id = ?", playlistID, trackID).
		Delete(&model.PlaylistTrack{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove track %s from playlist %s: %w", trackID, playlistID, err)
	}
	return nil
}

func (r *gormPlaylistRepository) DeleteOwned(ctx context.Context, id, userID string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&model.Playlist{}).Where("id = ? AND user_id = ?", id, userID).Count(&owned).Error; err != nil {
			return err
		}
		if owned == 0 {
			return nil
		}
		// memberships first, playlist_tracks.playlist_id references playlists.id
		if err := tx.Where("playlist_id = ?", id).Delete(&model.PlaylistTrack{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Playlist{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete playlist %s: %w", id, err)
	}
	return deleted, nil
}
