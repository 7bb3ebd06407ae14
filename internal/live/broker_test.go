package live

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRelay struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recordingRelay) Forward(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func TestPublishDeliversToTopicOnly(t *testing.T) {
	b := NewBroker()
	var got []Event
	sub := b.Subscribe(CommentsForNote("n1"), func(ev Event) { got = append(got, ev) })
	defer sub.Cancel()

	b.Publish(context.Background(), Event{Topic: CommentsForNote("n1"), Kind: KindCommentCreated, ID: "c1"})
	b.Publish(context.Background(), Event{Topic: CommentsForNote("n2"), Kind: KindCommentCreated, ID: "c2"})

	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)
	assert.False(t, got[0].OccurredAt.IsZero(), "publish stamps the event")
}

func TestCancelIsIdempotent(t *testing.T) {
	b := NewBroker()
	calls := 0
	sub := b.Subscribe(CommunityNotes, func(Event) { calls++ })
	other := b.Subscribe(CommunityNotes, func(Event) {})
	assert.Equal(t, 2, b.SubscriberCount(CommunityNotes))

	sub.Cancel()
	sub.Cancel()
	assert.Equal(t, 1, b.SubscriberCount(CommunityNotes))

	b.Publish(context.Background(), Event{Topic: CommunityNotes})
	assert.Zero(t, calls)

	other.Cancel()
	assert.Zero(t, b.SubscriberCount(CommunityNotes))

	var nilSub *Subscription
	nilSub.Cancel()
	assert.Empty(t, nilSub.Topic())
}

func TestPublishForwardsToRelay(t *testing.T) {
	b := NewBroker()
	relay := &recordingRelay{err: errors.New("redis down")}
	b.SetRelay(relay)

	delivered := false
	b.Subscribe(DrinksForUser("u1"), func(Event) { delivered = true })
	b.Publish(context.Background(), Event{Topic: DrinksForUser("u1"), Kind: KindDrinkCreated})

	assert.True(t, delivered, "local delivery survives relay failure")
	require.Len(t, relay.events, 1)
	assert.Equal(t, DrinksForUser("u1"), relay.events[0].Topic)
}

func TestDispatchRecoversFromPanickingHandler(t *testing.T) {
	b := NewBroker()
	reached := false
	b.Subscribe(NotesForUser("u1"), func(Event) { panic("boom") })
	b.Subscribe(NotesForUser("u1"), func(Event) { reached = true })

	assert.NotPanics(t, func() { b.Dispatch(Event{Topic: NotesForUser("u1")}) })
	assert.True(t, reached)
}

func TestCancelFromInsideHandler(t *testing.T) {
	b := NewBroker()
	var sub *Subscription
	calls := 0
	sub = b.Subscribe(CommunityNotes, func(Event) {
		calls++
		sub.Cancel()
	})

	b.Dispatch(Event{Topic: CommunityNotes})
	b.Dispatch(Event{Topic: CommunityNotes})
	assert.Equal(t, 1, calls)
}

func TestConcurrentSubscribeAndPublish(t *testing.T) {
	b := NewBroker()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s := b.Subscribe(CommunityNotes, func(Event) {})
			s.Cancel()
		}()
		go func() {
			defer wg.Done()
			b.Publish(context.Background(), Event{Topic: CommunityNotes})
		}()
	}
	wg.Wait()
	assert.Zero(t, b.SubscriberCount(CommunityNotes))
}
