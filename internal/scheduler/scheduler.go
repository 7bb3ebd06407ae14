// Package scheduler refreshes the elapsed-time suffix on open home screens.
package scheduler

import (
	"context"
	"time"

	"github.com/AnemiB/SipStop/internal/encouragement"
	"github.com/AnemiB/SipStop/internal/handlers/ws"
	"github.com/AnemiB/SipStop/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Ticker re-renders a user's frozen encouragement at the current time and
// forgets cards nobody has looked at for a while.
type Ticker interface {
	Tick(userID string) (encouragement.View, bool)
	Prune(idle time.Duration) int
}

// Hub is where tick frames go.
type Hub interface {
	Subscribers(q ws.Query) []*ws.Client
	Send(client *ws.Client, data interface{}) error
}

type Scheduler struct {
	cron   *cron.Cron
	ticker Ticker
	hub    Hub
	idle   time.Duration
}

// New registers the tick job on spec (standard cron or @every).
func New(spec string, ticker Ticker, hub Hub) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		ticker: ticker,
		hub:    hub,
		idle:   service.CardIdleTTL,
	}
	if _, err := s.cron.AddFunc(spec, s.Tick); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling; the returned context is done once a running tick finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Tick pushes one "tick" frame to every connection with a home subscription,
// then drops cards idle for longer than the card TTL.
func (s *Scheduler) Tick() {
	views := make(map[string]*encouragement.View)
	sent := 0
	for _, client := range s.hub.Subscribers(ws.QueryHome) {
		view, seen := views[client.UserID]
		if !seen {
			if v, ok := s.ticker.Tick(client.UserID); ok {
				view = &v
			}
			views[client.UserID] = view
		}
		if view == nil {
			continue
		}
		if err := s.hub.Send(client, ws.Envelope{Type: ws.TypeTick, Payload: *view}); err == nil {
			sent++
		}
	}
	if sent > 0 {
		logrus.WithField("connections", sent).Debug("encouragement tick sent")
	}
	if n := s.ticker.Prune(s.idle); n > 0 {
		logrus.WithField("cards", n).Debug("pruned idle encouragement cards")
	}
}
