package service

import (
	"context"
	"testing"
	"time"

	"github.com/AnemiB/SipStop/internal/live"
	"github.com/AnemiB/SipStop/internal/models"
	"github.com/AnemiB/SipStop/internal/notifications"
	"github.com/AnemiB/SipStop/internal/session"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type commentFixture struct {
	svc      *CommentService
	comments *MockCommentRepository
	notes    *MockNoteRepository
	users    *MockUserRepository
	views    *MockLastViewedRepository
	pub      *recordingPublisher
	push     *mockPushSender
	presence *mockPresence
}

func newCommentFixture() *commentFixture {
	f := &commentFixture{
		comments: &MockCommentRepository{now: fixedNow},
		notes:    &MockNoteRepository{now: fixedNow},
		users:    NewMockUserRepository(),
		views:    NewMockLastViewedRepository(),
		pub:      &recordingPublisher{},
		push:     &mockPushSender{},
		presence: &mockPresence{},
	}
	f.users.Create(&models.User{Base: models.Base{ID: "owner"}, Username: "owner_name", ExpoPushToken: "ExponentPushToken[owner]"})
	f.users.Create(&models.User{Base: models.Base{ID: "friend"}, Username: "friendly"})
	f.notes.Create(&models.Note{UserID: "owner", Title: "Day one"})

	f.svc = NewCommentService(f.comments, f.notes, f.users, f.views, f.pub, f.push, f.presence, 100)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func TestAddCommentDenormalizesAndPublishes(t *testing.T) {
	f := newCommentFixture()
	f.presence.On("IsUserOnline", "owner").Return(true)

	c, err := f.svc.AddComment(context.Background(), session.Session{UserID: "friend"}, "note-1", AddCommentInput{Text: "  proud of you "})
	require.NoError(t, err)

	assert.Equal(t, "proud of you", c.Text)
	assert.Equal(t, "owner", c.NoteOwnerID)
	assert.Equal(t, "Day one", c.NoteTitle)
	assert.Equal(t, "friendly", c.AuthorName)
	assert.ElementsMatch(t, []string{live.CommentsForNote("note-1"), live.CommentsForOwner("owner")}, f.pub.topics())
	f.push.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestAddCommentPushesToOfflineOwner(t *testing.T) {
	f := newCommentFixture()
	f.presence.On("IsUserOnline", "owner").Return(false)
	f.push.On("Send", mock.Anything, mock.MatchedBy(func(msg notifications.Message) bool {
		return msg.To == "ExponentPushToken[owner]" && msg.Title == "New comment on: Day one" && msg.Body == "hi"
	})).Return(nil).Once()

	_, err := f.svc.AddComment(context.Background(), session.Session{UserID: "friend"}, "note-1", AddCommentInput{Text: "hi"})
	require.NoError(t, err)
	f.push.AssertExpectations(t)
}

func TestAddCommentDropsStalePushToken(t *testing.T) {
	f := newCommentFixture()
	f.presence.On("IsUserOnline", "owner").Return(false)
	f.push.On("Send", mock.Anything, mock.Anything).Return(notifications.ErrDeviceNotRegistered)

	_, err := f.svc.AddComment(context.Background(), session.Session{UserID: "friend"}, "note-1", AddCommentInput{Text: "hi"})
	require.NoError(t, err, "push failures never fail the comment")

	owner, _ := f.users.FindByID("owner")
	assert.Empty(t, owner.ExpoPushToken)
}

func TestAddCommentLogsStaleTokenClearFailure(t *testing.T) {
	f := newCommentFixture()
	f.presence.On("IsUserOnline", "owner").Return(false)
	f.push.On("Send", mock.Anything, mock.Anything).Return(notifications.ErrDeviceNotRegistered)
	f.users.tokenErr = errStorageDown
	hook := logtest.NewGlobal()
	defer hook.Reset()

	_, err := f.svc.AddComment(context.Background(), session.Session{UserID: "friend"}, "note-1", AddCommentInput{Text: "hi"})
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "failed to clear stale push token", entry.Message)
	assert.Equal(t, "owner", entry.Data["user_id"])
	assert.ErrorIs(t, entry.Data[logrus.ErrorKey].(error), errStorageDown)
}

func TestAddCommentAuthorLookupFailureFallsBackToAnonymous(t *testing.T) {
	f := newCommentFixture()
	f.presence.On("IsUserOnline", "owner").Return(true)
	f.users.findErr = map[string]error{"friend": errStorageDown}
	hook := logtest.NewGlobal()
	defer hook.Reset()

	c, err := f.svc.AddComment(context.Background(), session.Session{UserID: "friend"}, "note-1", AddCommentInput{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, models.AnonymousName, c.AuthorName)

	var logged bool
	for _, e := range hook.AllEntries() {
		if e.Message == "failed to load comment author" && e.Data["user_id"] == "friend" {
			logged = true
		}
	}
	assert.True(t, logged)
}

func TestAddCommentUnknownAuthorIsQuiet(t *testing.T) {
	f := newCommentFixture()
	f.presence.On("IsUserOnline", "owner").Return(true)
	hook := logtest.NewGlobal()
	defer hook.Reset()

	c, err := f.svc.AddComment(context.Background(), session.Session{UserID: "ghost"}, "note-1", AddCommentInput{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, models.AnonymousName, c.AuthorName)
	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, "failed to load comment author", e.Message)
	}
}

func TestAddCommentOnOwnNoteDoesNotPush(t *testing.T) {
	f := newCommentFixture()
	_, err := f.svc.AddComment(context.Background(), session.Session{UserID: "owner"}, "note-1", AddCommentInput{Text: "note to self"})
	require.NoError(t, err)
	f.push.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.presence.AssertNotCalled(t, "IsUserOnline", mock.Anything)
}

func TestAddCommentValidation(t *testing.T) {
	f := newCommentFixture()
	sess := session.Session{UserID: "friend"}

	_, err := f.svc.AddComment(context.Background(), sess, "note-1", AddCommentInput{Text: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.AddComment(context.Background(), sess, "missing", AddCommentInput{Text: "hi"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.AddComment(context.Background(), session.Session{}, "note-1", AddCommentInput{Text: "hi"})
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestListCommentsOldestFirst(t *testing.T) {
	f := newCommentFixture()
	f.presence.On("IsUserOnline", "owner").Return(true)
	sess := session.Session{UserID: "friend"}
	for _, text := range []string{"one", "two", "three"} {
		_, err := f.svc.AddComment(context.Background(), sess, "note-1", AddCommentInput{Text: text})
		require.NoError(t, err)
	}

	got, err := f.svc.ListComments("note-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "one", got[0].Text)
	assert.Equal(t, "three", got[2].Text)

	_, err = f.svc.ListComments("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkViewed(t *testing.T) {
	f := newCommentFixture()
	sess := session.Session{UserID: "owner"}

	at, err := f.svc.MarkViewed(context.Background(), sess, "note-1")
	require.NoError(t, err)
	assert.True(t, fixedNow.Equal(at))
	assert.True(t, fixedNow.Equal(f.views.views["owner"]["note-1"]))
	assert.Equal(t, []string{live.CommentsForOwner("owner")}, f.pub.topics())

	f.svc.now = func() time.Time { return fixedNow.Add(-time.Hour) }
	_, err = f.svc.MarkViewed(context.Background(), sess, "note-1")
	require.NoError(t, err)
	assert.True(t, fixedNow.Equal(f.views.views["owner"]["note-1"]), "last viewed never moves backwards")
}

func TestMarkViewedStorageFailureStillSucceeds(t *testing.T) {
	f := newCommentFixture()
	f.views.err = errStorageDown

	_, err := f.svc.MarkViewed(context.Background(), session.Session{UserID: "owner"}, "note-1")
	assert.NoError(t, err)
	assert.Empty(t, f.pub.topics())
}
