package models

import (
	"time"

	"gorm.io/gorm"
)

// AnonymousName is shown when a note or comment author cannot be resolved.
const AnonymousName = "Anonymous"

type User struct {
	Base
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Username      string `gorm:"uniqueIndex;not null" json:"username"`
	Email         string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string `gorm:"not null" json:"-"`
	ExpoPushToken string `json:"-"`
}

type UserResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PushEnabled  bool      `json:"push_enabled"`
	RegisteredAt time.Time `json:"registered_at"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PushEnabled:  u.ExpoPushToken != "",
		RegisteredAt: u.CreatedAt,
	}
}

// DisplayName falls back to AnonymousName for missing users or blank names.
func DisplayName(u *User) string {
	if u == nil || u.Username == "" {
		return AnonymousName
	}
	return u.Username
}
