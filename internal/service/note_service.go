package service

import (
	"context"
	"fmt"

	"github.com/AnemiB/SipStop/internal/live"
	"github.com/AnemiB/SipStop/internal/models"
	"github.com/AnemiB/SipStop/internal/repository"
	"github.com/AnemiB/SipStop/internal/session"
	"github.com/AnemiB/SipStop/internal/validation"
	"github.com/sirupsen/logrus"
)

// FeedCache caches the rendered community feed.
type FeedCache interface {
	GetCommunity(limit int) ([]models.NoteResponse, bool)
	SetCommunity(limit int, notes []models.NoteResponse) error
	InvalidateCommunity() error
}

type NoteLimits struct {
	FeedLimit     int
	MaxNoteLength int
}

type NoteService struct {
	noteRepo  repository.NoteRepositoryInterface
	userRepo  repository.UserRepositoryInterface
	feed      FeedCache
	publisher Publisher
	limits    NoteLimits
}

func NewNoteService(noteRepo repository.NoteRepositoryInterface, userRepo repository.UserRepositoryInterface, feed FeedCache, publisher Publisher, limits NoteLimits) *NoteService {
	if limits.FeedLimit <= 0 {
		limits.FeedLimit = 50
	}
	return &NoteService{
		noteRepo:  noteRepo,
		userRepo:  userRepo,
		feed:      feed,
		publisher: publisherOrNop(publisher),
		limits:    limits,
	}
}

type CreateNoteInput struct {
	EmojiID *int   `json:"emoji_id"`
	Title   string `json:"title"`
	Details string `json:"details"`
}

func (s *NoteService) CreateNote(ctx context.Context, sess session.Session, input CreateNoteInput) (*models.NoteResponse, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}

	if input.EmojiID == nil {
		return nil, invalidInput("pick an emoji for this note")
	}
	mood, ok := validation.MoodForEmoji(*input.EmojiID)
	if !ok {
		return nil, invalidInput("emoji_id must be between 0 and 5")
	}
	title, ok := validation.RequiredText(input.Title, 120)
	if !ok {
		return nil, invalidInput("title is required and must be at most 120 characters")
	}
	details, ok := validation.RequiredText(input.Details, s.limits.MaxNoteLength)
	if !ok {
		return nil, invalidInput(fmt.Sprintf("details are required and must be at most %d characters", s.limits.MaxNoteLength))
	}

	note := &models.Note{
		UserID:  sess.UserID,
		Mood:    string(mood),
		EmojiID: *input.EmojiID,
		Title:   title,
		Details: details,
	}
	if err := s.noteRepo.Create(note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	if s.feed != nil {
		if err := s.feed.InvalidateCommunity(); err != nil {
			logrus.WithError(err).Warn("failed to invalidate community feed cache")
		}
	}
	for _, topic := range []string{live.NotesForUser(sess.UserID), live.CommunityNotes} {
		s.publisher.Publish(ctx, live.Event{Topic: topic, Kind: live.KindNoteCreated, ID: note.ID, UserID: sess.UserID})
	}

	names := DisplayNames(s.userRepo, []string{sess.UserID})
	resp := note.ToResponse(names[sess.UserID])
	return &resp, nil
}

// CommunityFeed returns the newest notes of every user with author names.
func (s *NoteService) CommunityFeed() ([]models.NoteResponse, error) {
	limit := s.limits.FeedLimit
	if s.feed != nil {
		if notes, ok := s.feed.GetCommunity(limit); ok {
			return notes, nil
		}
	}

	notes, err := s.noteRepo.ListCommunity(limit)
	if err != nil {
		return nil, fmt.Errorf("list community notes: %w", err)
	}

	ids := make([]string, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.UserID)
	}
	names := DisplayNames(s.userRepo, ids)

	out := make([]models.NoteResponse, 0, len(notes))
	for i := range notes {
		out = append(out, notes[i].ToResponse(names[notes[i].UserID]))
	}

	if s.feed != nil {
		if err := s.feed.SetCommunity(limit, out); err != nil {
			logrus.WithError(err).Debug("failed to cache community feed")
		}
	}
	return out, nil
}

func (s *NoteService) GetNote(id string) (*models.NoteResponse, error) {
	note, err := s.noteRepo.FindByID(id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	names := DisplayNames(s.userRepo, []string{note.UserID})
	resp := note.ToResponse(names[note.UserID])
	return &resp, nil
}
