package service

import (
	"time"

	"github.com/AnemiB/SipStop/internal/activity"
	"github.com/AnemiB/SipStop/internal/models"
	"github.com/AnemiB/SipStop/internal/repository"
	"github.com/AnemiB/SipStop/internal/session"
	"github.com/sirupsen/logrus"
)

// ActivityService feeds the unseen-activity tracker from storage.
type ActivityService struct {
	commentRepo    repository.CommentRepositoryInterface
	lastViewedRepo repository.NoteLastViewedRepositoryInterface
	now            func() time.Time
}

func NewActivityService(commentRepo repository.CommentRepositoryInterface, lastViewedRepo repository.NoteLastViewedRepositoryInterface) *ActivityService {
	return &ActivityService{commentRepo: commentRepo, lastViewedRepo: lastViewedRepo, now: time.Now}
}

func commentEvent(c *models.Comment) activity.CommentEvent {
	return activity.CommentEvent{
		ID:          c.ID,
		NoteID:      c.NoteID,
		NoteOwnerID: c.NoteOwnerID,
		NoteTitle:   c.NoteTitle,
		Text:        c.Text,
		CreatedAt:   c.CreatedAt,
	}
}

// Snapshot returns the newest comments on the user's notes, newest first.
// A read failure yields an empty snapshot.
func (s *ActivityService) Snapshot(userID string) []activity.CommentEvent {
	comments, err := s.commentRepo.ListRecentForOwner(userID, activity.SnapshotLimit)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to load owner comments")
		return []activity.CommentEvent{}
	}
	out := make([]activity.CommentEvent, 0, len(comments))
	for i := range comments {
		out = append(out, commentEvent(&comments[i]))
	}
	return out
}

func (s *ActivityService) lastViewed(userID string) map[string]time.Time {
	views, err := s.lastViewedRepo.ListByUser(userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to load last viewed")
		return map[string]time.Time{}
	}
	return views
}

// NewTracker starts tracking for one subscription. The listening instant is
// captured here, once.
func (s *ActivityService) NewTracker(sess session.Session) (*activity.Tracker, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	tr := activity.NewTracker(sess.UserID, s.now())
	tr.SetLastViewed(s.lastViewed(sess.UserID))
	return tr, nil
}

// Refresh reloads stored last-viewed instants and applies a fresh snapshot.
func (s *ActivityService) Refresh(tr *activity.Tracker) activity.Result {
	tr.SetLastViewed(s.lastViewed(tr.UserID()))
	return tr.Apply(s.Snapshot(tr.UserID()))
}

// Unseen is the stateless form used by the REST endpoint.
func (s *ActivityService) Unseen(sess session.Session) ([]string, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	views := s.lastViewed(sess.UserID)
	millis := make(map[string]int64, len(views))
	for id, at := range views {
		millis[id] = activity.NormalizeMillis(at)
	}
	return activity.UnseenNotes(s.Snapshot(sess.UserID), millis), nil
}
