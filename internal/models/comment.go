package models

import "time"

// Comment is immutable. NoteOwnerID and NoteTitle are copied from the note
// at write time so owner activity can be queried without a join.
type Comment struct {
	Base

	NoteID      string `gorm:"type:uuid;index;not null" json:"note_id"`
	Note        Note   `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	NoteOwnerID string `gorm:"type:uuid;index;not null" json:"note_owner_id"`
	NoteTitle   string `json:"note_title"`
	AuthorID    string `gorm:"type:uuid;index;not null" json:"author_id"`
	AuthorName  string `gorm:"not null" json:"author_name"`
	Text        string `gorm:"type:text;not null" json:"text"`
}

type CommentResponse struct {
	ID          string    `json:"id"`
	NoteID      string    `json:"note_id"`
	NoteOwnerID string    `json:"note_owner_id"`
	NoteTitle   string    `json:"note_title"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *Comment) ToResponse() CommentResponse {
	name := c.AuthorName
	if name == "" {
		name = AnonymousName
	}
	return CommentResponse{
		ID:          c.ID,
		NoteID:      c.NoteID,
		NoteOwnerID: c.NoteOwnerID,
		NoteTitle:   c.NoteTitle,
		AuthorID:    c.AuthorID,
		AuthorName:  name,
		Text:        c.Text,
		CreatedAt:   c.CreatedAt,
	}
}
