package repository

import (
	"github.com/AnemiB/SipStop/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OnboardingRepository struct {
	db *gorm.DB
}

func NewOnboardingRepository(db *gorm.DB) *OnboardingRepository {
	return &OnboardingRepository{db: db}
}

// Get returns gorm.ErrRecordNotFound when the user has no stored preference.
func (r *OnboardingRepository) Get(userID string) (*models.OnboardingState, error) {
	var state models.OnboardingState
	if err := r.db.Where("user_id = ?", userID).First(&state).Error; err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *OnboardingRepository) MarkSeen(userID string) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"seen", "updated_at"}),
	}).Create(&models.OnboardingState{UserID: userID, Seen: true}).Error
}
