package repository

import (
	"github.com/AnemiB/SipStop/internal/models"
	"gorm.io/gorm"
)

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(note *models.Note) error {
	return r.db.Create(note).Error
}

func (r *NoteRepository) FindByID(id string) (*models.Note, error) {
	var note models.Note
	if err := r.db.Where("id = ?", id).First(&note).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *NoteRepository) FindLatestByUser(userID string) (*models.Note, error) {
	var note models.Note
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").First(&note).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *NoteRepository) ListByUser(userID string) ([]models.Note, error) {
	var notes []models.Note
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&notes).Error
	return notes, err
}

// ListCommunity returns the newest notes from every user.
func (r *NoteRepository) ListCommunity(limit int) ([]models.Note, error) {
	var notes []models.Note
	err := r.db.Order("created_at DESC").Limit(limit).Find(&notes).Error
	return notes, err
}
