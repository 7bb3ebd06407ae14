package models

import (
	"time"
)

// NoteLastViewed records when a user last opened a note's comment thread.
// last_viewed_at only moves forward.
type NoteLastViewed struct {
	UserID       string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	NoteID       string    `gorm:"type:uuid;primaryKey" json:"note_id"`
	LastViewedAt time.Time `gorm:"not null" json:"last_viewed_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (NoteLastViewed) TableName() string {
	return "note_last_viewed"
}
