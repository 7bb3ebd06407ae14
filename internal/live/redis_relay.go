package live

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

// RelayChannel is the Redis Pub/Sub channel shared by all instances.
const RelayChannel = "sipstop:live"

type envelope struct {
	Origin string `msgpack:"o"`
	Event  Event  `msgpack:"e"`
}

// RedisRelay mirrors broker events between server instances over Redis
// Pub/Sub. Events are tagged with the publishing instance so an instance
// never re-dispatches its own traffic.
type RedisRelay struct {
	client     *redis.Client
	broker     *Broker
	instanceID string
	log        *logrus.Entry
}

func NewRedisRelay(client *redis.Client, broker *Broker) *RedisRelay {
	id := uuid.NewString()
	return &RedisRelay{
		client:     client,
		broker:     broker,
		instanceID: id,
		log:        logrus.WithFields(logrus.Fields{"component": "live-relay", "instance": id}),
	}
}

func (r *RedisRelay) InstanceID() string {
	return r.instanceID
}

func (r *RedisRelay) encode(ev Event) ([]byte, error) {
	return msgpack.Marshal(envelope{Origin: r.instanceID, Event: ev})
}

func (r *RedisRelay) Forward(ctx context.Context, ev Event) error {
	payload, err := r.encode(ev)
	if err != nil {
		return fmt.Errorf("encode relay event: %w", err)
	}
	return r.client.Publish(ctx, RelayChannel, payload).Err()
}

// Run consumes the relay channel until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	ps := r.client.Subscribe(ctx, RelayChannel)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", RelayChannel, err)
	}
	r.log.Info("relay listening")

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.receive([]byte(msg.Payload))
		}
	}
}

// receive dispatches a foreign event locally. It reports whether the
// payload was dispatched.
func (r *RedisRelay) receive(payload []byte) bool {
	var env envelope
	if err := msgpack.Unmarshal(payload, &env); err != nil {
		r.log.WithError(err).Warn("dropping malformed relay payload")
		return false
	}
	if env.Origin == r.instanceID {
		return false
	}
	r.broker.Dispatch(env.Event)
	return true
}
