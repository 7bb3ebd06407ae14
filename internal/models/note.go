package models

import "time"

// Note is a mood-tagged journal entry, visible in the community feed.
type Note struct {
	Base

	UserID  string `gorm:"type:uuid;index;not null" json:"user_id"`
	User    User   `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Mood    string `gorm:"type:varchar(10);not null" json:"mood"`
	EmojiID int    `gorm:"not null" json:"emoji_id"`
	Title   string `gorm:"not null" json:"title"`
	Details string `gorm:"type:text;not null" json:"details"`
}

type NoteResponse struct {
	ID         string    `json:"id" msgpack:"id"`
	UserID     string    `json:"user_id" msgpack:"user_id"`
	AuthorName string    `json:"author_name" msgpack:"author_name"`
	Mood       string    `json:"mood" msgpack:"mood"`
	EmojiID    int       `json:"emoji_id" msgpack:"emoji_id"`
	Title      string    `json:"title" msgpack:"title"`
	Details    string    `json:"details" msgpack:"details"`
	CreatedAt  time.Time `json:"created_at" msgpack:"created_at"`
}

func (n *Note) ToResponse(authorName string) NoteResponse {
	return NoteResponse{
		ID:         n.ID,
		UserID:     n.UserID,
		AuthorName: authorName,
		Mood:       n.Mood,
		EmojiID:    n.EmojiID,
		Title:      n.Title,
		Details:    n.Details,
		CreatedAt:  n.CreatedAt,
	}
}
