package ws

import (
	"github.com/AnemiB/SipStop/internal/activity"
	"github.com/AnemiB/SipStop/internal/models"
)

// Server to client message types.
const (
	TypePong                = "pong"
	TypeEncouragement       = "encouragement"
	TypeCommunityNotes      = "community_notes"
	TypeComments            = "comments"
	TypeUnseen              = "unseen"
	TypeCommentNotification = "comment_notification"
	TypeTick                = "tick"
	TypeError               = "error"
)

// Envelope wraps every frame the server sends.
type Envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type ErrorPayload struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

type CommunityNotesPayload struct {
	Notes []models.NoteResponse `json:"notes"`
}

type CommentsPayload struct {
	NoteID   string                   `json:"note_id"`
	Comments []models.CommentResponse `json:"comments"`
}

type UnseenPayload struct {
	Unseen []string `json:"unseen"`
}

type CommentNotificationPayload struct {
	NoteID    string `json:"note_id"`
	NoteTitle string `json:"note_title"`
	CommentID string `json:"comment_id"`
	Text      string `json:"text"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at"`
}

func notificationPayload(n activity.Notification) CommentNotificationPayload {
	return CommentNotificationPayload{
		NoteID:    n.NoteID,
		NoteTitle: n.NoteTitle,
		CommentID: n.CommentID,
		Text:      n.Text,
		Title:     n.Title(),
		CreatedAt: n.CreatedAt,
	}
}
