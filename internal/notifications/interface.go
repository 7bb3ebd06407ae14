package notifications

import "context"

// Sender defines the contract for push delivery
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
