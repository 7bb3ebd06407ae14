package live

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Event announces that the data behind Topic changed. Subscribers re-query
// and push a fresh snapshot; the event itself carries only identifiers.
type Event struct {
	Topic      string    `msgpack:"topic" json:"topic"`
	Kind       string    `msgpack:"kind" json:"kind"`
	ID         string    `msgpack:"id" json:"id"`
	UserID     string    `msgpack:"user_id" json:"user_id"`
	OccurredAt time.Time `msgpack:"occurred_at" json:"occurred_at"`
}

type Handler func(Event)

// Relay forwards locally published events to other server instances.
type Relay interface {
	Forward(ctx context.Context, ev Event) error
}

// Broker is an in-process topic fan-out.
type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[uint64]*Subscription
	nextID uint64
	relay  Relay
	log    *logrus.Entry
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[uint64]*Subscription),
		log:  logrus.WithField("component", "live"),
	}
}

// SetRelay installs r; nil disables cross-instance forwarding.
func (b *Broker) SetRelay(r Relay) {
	b.mu.Lock()
	b.relay = r
	b.mu.Unlock()
}

// Subscribe registers h for topic until the returned handle is cancelled.
func (b *Broker) Subscribe(topic string, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{id: b.nextID, topic: topic, handler: h, broker: b}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[uint64]*Subscription)
	}
	b.subs[topic][sub.id] = sub
	return sub
}

// Publish dispatches ev locally and forwards it through the relay.
// A relay failure is logged; local subscribers are still served.
func (b *Broker) Publish(ctx context.Context, ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	b.Dispatch(ev)

	b.mu.RLock()
	relay := b.relay
	b.mu.RUnlock()
	if relay == nil {
		return
	}
	if err := relay.Forward(ctx, ev); err != nil {
		b.log.WithError(err).WithField("topic", ev.Topic).Warn("relay forward failed")
	}
}

// Dispatch delivers ev to local subscribers only. Handlers run on the
// caller's goroutine.
func (b *Broker) Dispatch(ev Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[ev.Topic]))
	for _, s := range b.subs[ev.Topic] {
		handlers = append(handlers, s.handler)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		b.invoke(h, ev)
	}
}

func (b *Broker) invoke(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithFields(logrus.Fields{"topic": ev.Topic, "panic": r}).Error("subscriber panicked")
		}
	}()
	h(ev)
}

// SubscriberCount reports how many live handles exist for topic.
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

func (b *Broker) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.subs[s.topic]
	delete(set, s.id)
	if len(set) == 0 {
		delete(b.subs, s.topic)
	}
}

// Subscription is the handle for one live query.
type Subscription struct {
	id      uint64
	topic   string
	handler Handler
	broker  *Broker
	once    sync.Once
}

func (s *Subscription) Topic() string {
	if s == nil {
		return ""
	}
	return s.topic
}

// Cancel stops delivery. It may be called any number of times, and on a nil
// handle.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(func() { s.broker.remove(s) })
}
