package repository

import (
	"github.com/AnemiB/SipStop/internal/models"
	"gorm.io/gorm"
)

type DrinkRepository struct {
	db *gorm.DB
}

func NewDrinkRepository(db *gorm.DB) *DrinkRepository {
	return &DrinkRepository{db: db}
}

func (r *DrinkRepository) Create(drink *models.Drink) error {
	return r.db.Create(drink).Error
}

// FindLatestByUser returns gorm.ErrRecordNotFound when the user never logged a drink.
func (r *DrinkRepository) FindLatestByUser(userID string) (*models.Drink, error) {
	var drink models.Drink
	err := r.db.Where("user_id = ?", userID).
		Order("occurred_at DESC").
		Order("created_at DESC").
		First(&drink).Error
	if err != nil {
		return nil, err
	}
	return &drink, nil
}

func (r *DrinkRepository) ListByUser(userID string) ([]models.Drink, error) {
	var drinks []models.Drink
	err := r.db.Where("user_id = ?", userID).Order("occurred_at DESC").Find(&drinks).Error
	return drinks, err
}
