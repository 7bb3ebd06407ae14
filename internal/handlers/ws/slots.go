package ws

import (
	"sort"
	"sync"
)

// Query names one live query a connection can hold.
type Query string

const (
	QueryHome      Query = "home"
	QueryCommunity Query = "community"
	QueryComments  Query = "comments"
	QueryActivity  Query = "activity"
)

func ParseQuery(s string) (Query, bool) {
	switch q := Query(s); q {
	case QueryHome, QueryCommunity, QueryComments, QueryActivity:
		return q, true
	}
	return "", false
}

// Slots holds at most one cancel function per query. Replacing a slot
// cancels what it held; Close cancels everything and refuses new entries.
type Slots struct {
	mu     sync.Mutex
	active map[Query]func()
	closed bool
}

func NewSlots() *Slots {
	return &Slots{active: make(map[Query]func())}
}

// Replace installs cancel for q. It reports false (and cancels immediately)
// once the slots are closed.
func (s *Slots) Replace(q Query, cancel func()) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return false
	}
	prev := s.active[q]
	s.active[q] = cancel
	s.mu.Unlock()

	if prev != nil {
		prev()
	}
	return true
}

// Cancel releases q. It reports whether anything was held.
func (s *Slots) Cancel(q Query) bool {
	s.mu.Lock()
	cancel, ok := s.active[q]
	delete(s.active, q)
	s.mu.Unlock()

	if ok {
		cancel()
	}
	return ok
}

func (s *Slots) Has(q Query) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[q]
	return ok
}

func (s *Slots) Active() []Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Query, 0, len(s.active))
	for q := range s.active {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *Slots) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	active := s.active
	s.active = make(map[Query]func())
	s.mu.Unlock()

	for _, cancel := range active {
		cancel()
	}
}
