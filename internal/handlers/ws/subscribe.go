package ws

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AnemiB/SipStop/internal/live"
	"github.com/sirupsen/logrus"
)

var errNoteIDRequired = errors.New("note_id is required")

// MessageSubscribe opens (or re-targets) one live query on this connection.
type MessageSubscribe struct {
	Query  string `json:"query"`
	NoteID string `json:"note_id,omitempty"`
}

func (msg *MessageSubscribe) GetType() string {
	return "subscribe"
}

func (msg *MessageSubscribe) Process(ctx *MessageContext) error {
	if err := ctx.Session.Require(); err != nil {
		return err
	}
	q, ok := ParseQuery(msg.Query)
	if !ok {
		return fmt.Errorf("unknown query: %q", msg.Query)
	}

	switch q {
	case QueryHome:
		return subscribeHome(ctx)
	case QueryCommunity:
		return subscribeCommunity(ctx)
	case QueryComments:
		noteID := strings.TrimSpace(msg.NoteID)
		if noteID == "" {
			return errNoteIDRequired
		}
		return subscribeComments(ctx, noteID)
	default:
		return subscribeActivity(ctx)
	}
}

// install subscribes push to every topic and puts the handles in slot q,
// replacing whatever q held. push then runs once for the initial snapshot.
// release, when set, runs after the topics are cancelled.
func install(ctx *MessageContext, q Query, push func(), release func(), topics ...string) {
	subs := make([]*live.Subscription, 0, len(topics))
	for _, topic := range topics {
		subs = append(subs, ctx.Deps.Broker.Subscribe(topic, func(live.Event) { push() }))
	}
	cancel := func() {
		for _, s := range subs {
			s.Cancel()
		}
		if release != nil {
			release()
		}
	}
	if ctx.Client.Slots().Replace(q, cancel) {
		push()
	}
}

func subscribeHome(ctx *MessageContext) error {
	uid := ctx.Session.UserID
	push := func() {
		view, err := ctx.Deps.Encouragement.Render(ctx.Session)
		if err != nil {
			logrus.WithError(err).WithField("user_id", uid).Warn("failed to render encouragement")
			return
		}
		_ = ctx.Push(TypeEncouragement, view)
	}
	install(ctx, QueryHome, push, nil, live.DrinksForUser(uid), live.NotesForUser(uid))
	return nil
}

func subscribeCommunity(ctx *MessageContext) error {
	push := func() {
		notes, err := ctx.Deps.Feed.CommunityFeed()
		if err != nil {
			logrus.WithError(err).Warn("failed to load community notes")
			return
		}
		_ = ctx.Push(TypeCommunityNotes, CommunityNotesPayload{Notes: notes})
	}
	install(ctx, QueryCommunity, push, nil, live.CommunityNotes)
	return nil
}

func subscribeComments(ctx *MessageContext, noteID string) error {
	push := func() {
		comments, err := ctx.Deps.Comments.ListComments(noteID)
		if err != nil {
			logrus.WithError(err).WithField("note_id", noteID).Warn("failed to load comments")
			return
		}
		_ = ctx.Push(TypeComments, CommentsPayload{NoteID: noteID, Comments: comments})
	}
	install(ctx, QueryComments, push, nil, live.CommentsForNote(noteID))
	return nil
}

// subscribeActivity starts one tracker; its listening start is this moment.
// The tracker stays on the client so mark_viewed can update it in place.
func subscribeActivity(ctx *MessageContext) error {
	tr, err := ctx.Deps.Activity.NewTracker(ctx.Session)
	if err != nil {
		return err
	}
	push := func() {
		res := ctx.Deps.Activity.Refresh(tr)
		_ = ctx.Push(TypeUnseen, UnseenPayload{Unseen: nonNil(res.Unseen)})
		if res.Notification != nil {
			_ = ctx.Push(TypeCommentNotification, notificationPayload(*res.Notification))
		}
	}
	ctx.Client.setTracker(tr)
	release := func() { ctx.Client.releaseTracker(tr) }
	install(ctx, QueryActivity, push, release, live.CommentsForOwner(ctx.Session.UserID))
	return nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// MessageUnsubscribe closes one live query.
type MessageUnsubscribe struct {
	Query string `json:"query"`
}

func (msg *MessageUnsubscribe) GetType() string {
	return "unsubscribe"
}

func (msg *MessageUnsubscribe) Process(ctx *MessageContext) error {
	q, ok := ParseQuery(msg.Query)
	if !ok {
		return fmt.Errorf("unknown query: %q", msg.Query)
	}
	ctx.Client.Slots().Cancel(q)
	return nil
}

// MessageMarkViewed records that the user opened a note's comments. With an
// activity subscription open the note leaves the unseen set right away, even
// if the stored instant could not be written.
type MessageMarkViewed struct {
	NoteID string `json:"note_id"`
}

func (msg *MessageMarkViewed) GetType() string {
	return "mark_viewed"
}

func (msg *MessageMarkViewed) Process(ctx *MessageContext) error {
	noteID := strings.TrimSpace(msg.NoteID)
	if noteID == "" {
		return errNoteIDRequired
	}
	at, err := ctx.Deps.Comments.MarkViewed(ctx.Context, ctx.Session, noteID)
	if err != nil {
		return err
	}
	if tr := ctx.Client.Tracker(); tr != nil {
		tr.MarkViewed(noteID, at)
		return ctx.Push(TypeUnseen, UnseenPayload{Unseen: nonNil(tr.Unseen())})
	}
	return nil
}
