package repository

import (
	"time"

	"github.com/AnemiB/SipStop/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindByID(id string) (*models.User, error)
	FindByIDs(ids []string) ([]models.User, error)
	Update(user *models.User) error
	UpdatePushToken(userID, token string) error
}

// RefreshTokenRepositoryInterface defines the contract for refresh token repository operations
type RefreshTokenRepositoryInterface interface {
	Create(token *models.RefreshToken) error
	FindValidByHash(tokenHash string) (*models.RefreshToken, error)
	RevokeByHash(tokenHash string) error
	RevokeAllForUser(userID string) error
}

// DrinkRepositoryInterface defines the contract for drink repository operations
type DrinkRepositoryInterface interface {
	Create(drink *models.Drink) error
	FindLatestByUser(userID string) (*models.Drink, error)
	ListByUser(userID string) ([]models.Drink, error)
}

// NoteRepositoryInterface defines the contract for note repository operations
type NoteRepositoryInterface interface {
	Create(note *models.Note) error
	FindByID(id string) (*models.Note, error)
	FindLatestByUser(userID string) (*models.Note, error)
	ListByUser(userID string) ([]models.Note, error)
	ListCommunity(limit int) ([]models.Note, error)
}

// CommentRepositoryInterface defines the contract for comment repository operations
type CommentRepositoryInterface interface {
	Create(comment *models.Comment) error
	ListByNote(noteID string) ([]models.Comment, error)
	ListRecentForOwner(ownerID string, limit int) ([]models.Comment, error)
}

// NoteLastViewedRepositoryInterface defines the contract for last-viewed operations
type NoteLastViewedRepositoryInterface interface {
	UpsertMonotonic(userID, noteID string, at time.Time) error
	ListByUser(userID string) (map[string]time.Time, error)
}

// OnboardingRepositoryInterface defines the contract for onboarding preference operations
type OnboardingRepositoryInterface interface {
	Get(userID string) (*models.OnboardingState, error)
	MarkSeen(userID string) error
}
