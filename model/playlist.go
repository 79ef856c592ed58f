package model

import "time"

// Playlist is a named list of tracks owned by exactly one user.
type Playlist struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Always an array in responses, empty for a new playlist.
	PlaylistTracks []PlaylistTrack `json:"playlist_tracks" gorm:"foreignKey:PlaylistID"`
}

// TableName 指定表名
func (Playlist) TableName() string {
	return "playlists"
}

// PlaylistTrack records that a track is a member of a playlist.
// The pair (PlaylistID, TrackID) is unique.
type PlaylistTrack struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	PlaylistID string    `json:"playlist_id" gorm:"size:36;not null;uniqueIndex:uq_playlist_track"`
	TrackID    string    `json:"track_id" gorm:"size:36;not null;uniqueIndex:uq_playlist_track;index"`
	AddedAt    time.Time `json:"added_at" gorm:"autoCreateTime"`

	Track *Track `json:"tracks,omitempty" gorm:"foreignKey:TrackID"`
}

// TableName 指定表名
func (PlaylistTrack) TableName() string {
	return "playlist_tracks"
}
