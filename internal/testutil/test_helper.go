package testutil

import (
	"testing"
	"time"

	"github.com/AnemiB/SipStop/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const TestSecret = "test-secret-key-for-testing-only"

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// CreateTestUser creates a test user with default values
func (h *TestHelper) CreateTestUser(id, username, email string) *models.User {
	if id == "" {
		id = "user-1"
	}
	if username == "" {
		username = "testuser"
	}
	if email == "" {
		email = "test@example.com"
	}

	now := time.Now()
	return &models.User{
		Base:         models.Base{ID: id, CreatedAt: now, UpdatedAt: now},
		Username:     username,
		Email:        email,
		PasswordHash: "hashed_password_123",
	}
}

// CreateTestNote creates a note owned by ownerID.
func (h *TestHelper) CreateTestNote(id, ownerID, title string) *models.Note {
	if id == "" {
		id = "note-1"
	}
	if title == "" {
		title = "Rough evening"
	}
	return &models.Note{
		Base:    models.Base{ID: id, CreatedAt: time.Now()},
		UserID:  ownerID,
		Mood:    "sad",
		EmojiID: 1,
		Title:   title,
		Details: "Test details",
	}
}

// CreateTestComment creates a comment on note, written at createdAt.
func (h *TestHelper) CreateTestComment(id string, note *models.Note, authorID, text string, createdAt time.Time) *models.Comment {
	if text == "" {
		text = "Hang in there"
	}
	return &models.Comment{
		Base:        models.Base{ID: id, CreatedAt: createdAt},
		NoteID:      note.ID,
		NoteOwnerID: note.UserID,
		NoteTitle:   note.Title,
		AuthorID:    authorID,
		Text:        text,
	}
}

// AccessToken signs an HS256 access token the auth middleware accepts.
func (h *TestHelper) AccessToken(userID string, ttl time.Duration) string {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   userID + "@example.com",
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(TestSecret))
	if err != nil {
		h.t.Fatalf("sign token: %v", err)
	}
	return signed
}

// AssertError checks if an error occurred when it should (or shouldn't)
func (h *TestHelper) AssertError(err error, shouldErr bool, testName string) {
	if (err != nil) != shouldErr {
		if shouldErr {
			h.t.Errorf("%s: expected error but got nil", testName)
		} else {
			h.t.Errorf("%s: unexpected error: %v", testName, err)
		}
	}
}

// AssertEqual checks if two values are equal
func (h *TestHelper) AssertEqual(got, want interface{}, testName string) {
	if got != want {
		h.t.Errorf("%s: got %v, want %v", testName, got, want)
	}
}

// GetRecordNotFoundError returns gorm.ErrRecordNotFound
func GetRecordNotFoundError() error {
	return gorm.ErrRecordNotFound
}
