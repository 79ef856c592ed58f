package model

import "time"

// User represents a registered account.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Not exposed in API responses
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// Identity is the caller resolved from a bearer token for the duration of one request.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session describes an issued access token.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AllModels lists every persisted model, in migration order.
func AllModels() []interface{} {
	return []interface{}{&User{}, &Track{}, &Playlist{}, &PlaylistTrack{}}
}
