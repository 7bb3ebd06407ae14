package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/AnemiB/SipStop/internal/models"
	"github.com/AnemiB/SipStop/internal/repository"
	"github.com/AnemiB/SipStop/internal/session"
	"github.com/AnemiB/SipStop/internal/storage"
)

// ExportURLTTL is how long a journal download link stays valid.
const ExportURLTTL = 15 * time.Minute

// ObjectStore is the subset of object storage used for exports.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) (storage.ObjectStat, error)
	PresignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type ExportService struct {
	userRepo  repository.UserRepositoryInterface
	drinkRepo repository.DrinkRepositoryInterface
	noteRepo  repository.NoteRepositoryInterface
	store     ObjectStore
	now       func() time.Time
}

func NewExportService(userRepo repository.UserRepositoryInterface, drinkRepo repository.DrinkRepositoryInterface, noteRepo repository.NoteRepositoryInterface, store ObjectStore) *ExportService {
	return &ExportService{userRepo: userRepo, drinkRepo: drinkRepo, noteRepo: noteRepo, store: store, now: time.Now}
}

type JournalExport struct {
	ExportedAt time.Time              `json:"exported_at"`
	User       models.UserResponse    `json:"user"`
	Drinks     []models.DrinkResponse `json:"drinks"`
	Notes      []models.NoteResponse  `json:"notes"`
}

type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Export writes the user's drinks and notes as one JSON document and returns
// a short-lived download link.
func (s *ExportService) Export(ctx context.Context, sess session.Session) (*ExportResult, error) {
	if s.store == nil {
		return nil, ErrStorageNotConfigured
	}
	if err := sess.Require(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(sess.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	drinks, err := s.drinkRepo.ListByUser(sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("list drinks: %w", err)
	}
	notes, err := s.noteRepo.ListByUser(sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	now := s.now().UTC()
	doc := JournalExport{
		ExportedAt: now,
		User:       user.ToResponse(),
		Drinks:     make([]models.DrinkResponse, 0, len(drinks)),
		Notes:      make([]models.NoteResponse, 0, len(notes)),
	}
	for i := range drinks {
		doc.Drinks = append(doc.Drinks, drinks[i].ToResponse())
	}
	for i := range notes {
		doc.Notes = append(doc.Notes, notes[i].ToResponse(models.DisplayName(user)))
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}

	key, err := storage.SafeJoinPath("exports", fmt.Sprintf("%s/%s.json", user.ID, now.Format("20060102T150405Z")))
	if err != nil {
		return nil, err
	}
	stat, err := s.store.PutObject(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json")
	if err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}
	url, err := s.store.PresignedGetURL(ctx, key, ExportURLTTL)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	return &ExportResult{Key: key, URL: url, Size: stat.Size, ExpiresAt: now.Add(ExportURLTTL)}, nil
}
