package models

import "time"

// DefaultMotivation is the goal recorded when a drink is logged without one.
const DefaultMotivation = "3 months"

// Drink is an immutable relapse record.
type Drink struct {
	Base

	UserID     string    `gorm:"type:uuid;index:idx_drink_user_occurred,priority:1;not null" json:"user_id"`
	User       User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	OccurredAt time.Time `gorm:"index:idx_drink_user_occurred,priority:2,sort:desc;not null" json:"occurred_at"`
	Motivation string    `gorm:"type:varchar(20);not null;default:'3 months'" json:"motivation"`
}

type DrinkResponse struct {
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	Motivation string    `json:"motivation"`
	CreatedAt  time.Time `json:"created_at"`
}

func (d *Drink) ToResponse() DrinkResponse {
	return DrinkResponse{
		ID:         d.ID,
		OccurredAt: d.OccurredAt,
		Motivation: d.Motivation,
		CreatedAt:  d.CreatedAt,
	}
}
