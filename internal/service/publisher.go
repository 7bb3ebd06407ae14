package service

import (
	"context"

	"github.com/AnemiB/SipStop/internal/live"
)

// Publisher announces data changes to live subscribers. *live.Broker
// implements it.
type Publisher interface {
	Publish(ctx context.Context, ev live.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, live.Event) {}

func publisherOrNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
