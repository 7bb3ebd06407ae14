package repository

import (
	"github.com/AnemiB/SipStop/internal/models"
	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// ListByNote returns a thread oldest first.
func (r *CommentRepository) ListByNote(noteID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Where("note_id = ?", noteID).Order("created_at ASC").Find(&comments).Error
	return comments, err
}

// ListRecentForOwner returns the newest comments on any of ownerID's notes.
func (r *CommentRepository) ListRecentForOwner(ownerID string, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Where("note_owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}
