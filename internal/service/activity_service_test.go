package service

import (
	"testing"
	"time"

	"github.com/AnemiB/SipStop/internal/models"
	"github.com/AnemiB/SipStop/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActivityService() (*ActivityService, *MockCommentRepository, *MockLastViewedRepository) {
	comments := &MockCommentRepository{now: fixedNow}
	views := NewMockLastViewedRepository()
	svc := NewActivityService(comments, views)
	svc.now = func() time.Time { return fixedNow }
	return svc, comments, views
}

func addOwnerComment(repo *MockCommentRepository, noteID string, at time.Time) {
	repo.Create(&models.Comment{
		Base:        models.Base{CreatedAt: at},
		NoteID:      noteID,
		NoteOwnerID: "owner",
		NoteTitle:   "Title " + noteID,
		AuthorID:    "friend",
		Text:        "hi",
	})
}

func TestUnseen(t *testing.T) {
	svc, comments, views := newActivityService()
	addOwnerComment(comments, "n1", fixedNow.Add(-2*time.Hour))
	addOwnerComment(comments, "n2", fixedNow.Add(-time.Hour))
	views.UpsertMonotonic("owner", "n1", fixedNow.Add(-90*time.Minute))

	unseen, err := svc.Unseen(session.Session{UserID: "owner"})
	require.NoError(t, err)
	assert.Equal(t, []string{"n2"}, unseen)

	_, err = svc.Unseen(session.Session{})
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestUnseenReadFailureIsEmpty(t *testing.T) {
	svc, comments, _ := newActivityService()
	comments.err = errStorageDown

	unseen, err := svc.Unseen(session.Session{UserID: "owner"})
	require.NoError(t, err)
	assert.Empty(t, unseen)
}

func TestTrackerNotifiesOnlyAfterSubscribe(t *testing.T) {
	svc, comments, _ := newActivityService()
	addOwnerComment(comments, "n1", fixedNow.Add(-time.Minute))

	tr, err := svc.NewTracker(session.Session{UserID: "owner"})
	require.NoError(t, err)

	res := svc.Refresh(tr)
	assert.Nil(t, res.Notification)
	assert.Equal(t, []string{"n1"}, res.Unseen)

	addOwnerComment(comments, "n2", fixedNow.Add(time.Minute))
	res = svc.Refresh(tr)
	require.NotNil(t, res.Notification)
	assert.Equal(t, "n2", res.Notification.NoteID)
	assert.Equal(t, "New comment on: Title n2", res.Notification.Title())
}

func TestRefreshPicksUpViewsFromOtherConnections(t *testing.T) {
	svc, comments, views := newActivityService()
	addOwnerComment(comments, "n1", fixedNow.Add(-time.Minute))
	tr, err := svc.NewTracker(session.Session{UserID: "owner"})
	require.NoError(t, err)
	require.Equal(t, []string{"n1"}, svc.Refresh(tr).Unseen)

	views.UpsertMonotonic("owner", "n1", fixedNow)
	assert.Empty(t, svc.Refresh(tr).Unseen)
}
