package model

import "time"

// Track represents an audio track in the catalog. Tracks are immutable once created.
type Track struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	Title      string    `json:"title" gorm:"size:255;not null;index"`
	Artist     string    `json:"artist" gorm:"size:255;not null;index"`
	Duration   int       `json:"duration" gorm:"not null"`                // Duration in seconds
	AlbumCover string    `json:"album_cover,omitempty" gorm:"size:1024"` // URI of the cover art
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName 指定表名
func (Track) TableName() string {
	return "tracks"
}

// TrackFilter narrows a track listing.
type TrackFilter struct {
	Search string // case-insensitive substring of title or artist
	Limit  int
	Offset int
}
