package models

import "time"

// OnboardingState is the per-user "has seen the intro" preference.
type OnboardingState struct {
	UserID    string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	Seen      bool      `gorm:"not null;default:false" json:"seen"`
	UpdatedAt time.Time `json:"updated_at"`
}
