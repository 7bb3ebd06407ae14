package live

import "fmt"

// CommunityNotes carries every newly created note.
const CommunityNotes = "notes:community"

func CommentsForOwner(userID string) string {
	return fmt.Sprintf("comments:owner:%s", userID)
}

func CommentsForNote(noteID string) string {
	return fmt.Sprintf("comments:note:%s", noteID)
}

func DrinksForUser(userID string) string {
	return fmt.Sprintf("drinks:user:%s", userID)
}

func NotesForUser(userID string) string {
	return fmt.Sprintf("notes:user:%s", userID)
}

// Event kinds.
const (
	KindCommentCreated = "comment.created"
	KindNoteCreated    = "note.created"
	KindDrinkCreated   = "drink.created"
	KindNoteViewed     = "note.viewed"
)
