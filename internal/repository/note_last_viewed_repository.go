package repository

import (
	"time"

	"github.com/AnemiB/SipStop/internal/models"
	"gorm.io/gorm"
)

type NoteLastViewedRepository struct {
	db *gorm.DB
}

func NewNoteLastViewedRepository(db *gorm.DB) *NoteLastViewedRepository {
	return &NoteLastViewedRepository{db: db}
}

// UpsertMonotonic never moves last_viewed_at backwards, so a stale client
// clock cannot resurrect already-seen activity.
func (r *NoteLastViewedRepository) UpsertMonotonic(userID, noteID string, at time.Time) error {
	return r.db.Exec(`
		INSERT INTO note_last_viewed (user_id, note_id, last_viewed_at, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())
		ON CONFLICT (user_id, note_id) DO UPDATE
		SET last_viewed_at = GREATEST(note_last_viewed.last_viewed_at, EXCLUDED.last_viewed_at),
			updated_at = NOW()
	`, userID, noteID, at).Error
}

func (r *NoteLastViewedRepository) ListByUser(userID string) (map[string]time.Time, error) {
	var rows []models.NoteLastViewed
	if err := r.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		out[row.NoteID] = row.LastViewedAt
	}
	return out, nil
}
