package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnemiB/SipStop/internal/activity"
	"github.com/AnemiB/SipStop/internal/live"
	"github.com/AnemiB/SipStop/internal/models"
	"github.com/AnemiB/SipStop/internal/notifications"
	"github.com/AnemiB/SipStop/internal/repository"
	"github.com/AnemiB/SipStop/internal/session"
	"github.com/AnemiB/SipStop/internal/validation"
	"github.com/sirupsen/logrus"
)

// PushSender delivers a mobile push notification.
type PushSender interface {
	Send(ctx context.Context, msg notifications.Message) error
}

// Presence reports whether a user has a live socket on any instance.
type Presence interface {
	IsUserOnline(userID string) bool
}

type CommentService struct {
	commentRepo    repository.CommentRepositoryInterface
	noteRepo       repository.NoteRepositoryInterface
	userRepo       repository.UserRepositoryInterface
	lastViewedRepo repository.NoteLastViewedRepositoryInterface
	publisher      Publisher
	push           PushSender
	presence       Presence
	maxLength      int
	now            func() time.Time
}

func NewCommentService(
	commentRepo repository.CommentRepositoryInterface,
	noteRepo repository.NoteRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	lastViewedRepo repository.NoteLastViewedRepositoryInterface,
	publisher Publisher,
	push PushSender,
	presence Presence,
	maxLength int,
) *CommentService {
	return &CommentService{
		commentRepo:    commentRepo,
		noteRepo:       noteRepo,
		userRepo:       userRepo,
		lastViewedRepo: lastViewedRepo,
		publisher:      publisherOrNop(publisher),
		push:           push,
		presence:       presence,
		maxLength:      maxLength,
		now:            time.Now,
	}
}

type AddCommentInput struct {
	Text string `json:"text"`
}

func (s *CommentService) findNote(noteID string) (*models.Note, error) {
	note, err := s.noteRepo.FindByID(noteID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return note, nil
}

// ListComments returns a note's thread, oldest first.
func (s *CommentService) ListComments(noteID string) ([]models.CommentResponse, error) {
	if _, err := s.findNote(noteID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByNote(noteID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	out := make([]models.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, comments[i].ToResponse())
	}
	return out, nil
}

func (s *CommentService) AddComment(ctx context.Context, sess session.Session, noteID string, input AddCommentInput) (*models.CommentResponse, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	text, ok := validation.RequiredText(input.Text, s.maxLength)
	if !ok {
		return nil, invalidInput(fmt.Sprintf("comment is required and must be at most %d characters", s.maxLength))
	}

	note, err := s.findNote(noteID)
	if err != nil {
		return nil, err
	}

	author, err := s.userRepo.FindByID(sess.UserID)
	if err != nil && !isNotFound(err) {
		logrus.WithError(err).WithField("user_id", sess.UserID).Warn("failed to load comment author")
	}
	comment := &models.Comment{
		NoteID:      note.ID,
		NoteOwnerID: note.UserID,
		NoteTitle:   note.Title,
		AuthorID:    sess.UserID,
		AuthorName:  models.DisplayName(author),
		Text:        text,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	for _, topic := range []string{live.CommentsForNote(note.ID), live.CommentsForOwner(note.UserID)} {
		s.publisher.Publish(ctx, live.Event{Topic: topic, Kind: live.KindCommentCreated, ID: comment.ID, UserID: sess.UserID})
	}

	if note.UserID != sess.UserID {
		s.notifyOwner(ctx, note, comment)
	}

	resp := comment.ToResponse()
	return &resp, nil
}

// notifyOwner pushes to owners without a live socket; connected owners get
// the in-app banner from their activity subscription instead.
func (s *CommentService) notifyOwner(ctx context.Context, note *models.Note, comment *models.Comment) {
	if s.push == nil {
		return
	}
	if s.presence != nil && s.presence.IsUserOnline(note.UserID) {
		return
	}
	owner, err := s.userRepo.FindByID(note.UserID)
	if err != nil || owner.ExpoPushToken == "" {
		return
	}

	n := activity.Notification{
		CommentID: comment.ID,
		NoteID:    note.ID,
		NoteTitle: note.Title,
		Text:      comment.Text,
		CreatedAt: activity.NormalizeMillis(comment.CreatedAt),
	}
	msg := notifications.CommentMessage(owner.ExpoPushToken, n)
	if err := s.push.Send(ctx, msg); err != nil {
		if errors.Is(err, notifications.ErrDeviceNotRegistered) {
			if err := s.userRepo.UpdatePushToken(owner.ID, ""); err != nil {
				logrus.WithError(err).WithField("user_id", owner.ID).Warn("failed to clear stale push token")
			}
			return
		}
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": note.UserID,
			"note_id": note.ID,
		}).Warn("comment push notification failed")
	}
}

// MarkViewed records that the caller opened noteID's thread now. Storage
// failures are logged and reported as success.
func (s *CommentService) MarkViewed(ctx context.Context, sess session.Session, noteID string) (time.Time, error) {
	if err := sess.Require(); err != nil {
		return time.Time{}, err
	}
	if noteID == "" {
		return time.Time{}, invalidInput("note_id is required")
	}

	at := s.now().UTC()
	if err := s.lastViewedRepo.UpsertMonotonic(sess.UserID, noteID, at); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": sess.UserID,
			"note_id": noteID,
		}).Warn("failed to store last viewed")
		return at, nil
	}

	s.publisher.Publish(ctx, live.Event{
		Topic:  live.CommentsForOwner(sess.UserID),
		Kind:   live.KindNoteViewed,
		ID:     noteID,
		UserID: sess.UserID,
	})
	return at, nil
}
