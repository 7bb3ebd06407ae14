package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/AnemiB/SipStop/internal/activity"
	"github.com/AnemiB/SipStop/internal/encouragement"
	"github.com/AnemiB/SipStop/internal/live"
	"github.com/AnemiB/SipStop/internal/models"
	"github.com/AnemiB/SipStop/internal/session"
)

// Subscriber is the live-query side of the broker.
type Subscriber interface {
	Subscribe(topic string, h live.Handler) *live.Subscription
}

type FeedSource interface {
	CommunityFeed() ([]models.NoteResponse, error)
}

type CommentSource interface {
	ListComments(noteID string) ([]models.CommentResponse, error)
	MarkViewed(ctx context.Context, sess session.Session, noteID string) (time.Time, error)
}

type ActivitySource interface {
	NewTracker(sess session.Session) (*activity.Tracker, error)
	Refresh(tr *activity.Tracker) activity.Result
}

type EncouragementSource interface {
	Render(sess session.Session) (encouragement.View, error)
}

// Deps are the services live queries read from.
type Deps struct {
	Broker        Subscriber
	Feed          FeedSource
	Comments      CommentSource
	Activity      ActivitySource
	Encouragement EncouragementSource
}

// MessageContext provides all dependencies needed for message processing
type MessageContext struct {
	Context context.Context
	Session session.Session
	Client  *Client
	Hub     *Hub
	Deps    *Deps
}

// Push sends a server message to this connection.
func (ctx *MessageContext) Push(msgType string, payload interface{}) error {
	return ctx.Hub.Send(ctx.Client, Envelope{Type: msgType, Payload: payload})
}

// Message interface for all WebSocket message types
type Message interface {
	GetType() string
	Process(ctx *MessageContext) error
}

// SerializedMessage is the wire format wrapper
type SerializedMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func ToJson(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

func FromJson(jsonBytes []byte, msg Message) error {
	if len(jsonBytes) == 0 || string(jsonBytes) == "null" {
		return nil
	}
	return json.Unmarshal(jsonBytes, msg)
}

func CreateMessage(msgType string, typeRegistry map[string]reflect.Type) (Message, error) {
	msgTypeReflect, ok := typeRegistry[msgType]
	if !ok {
		return nil, fmt.Errorf("unknown message type: %s", msgType)
	}

	instance := reflect.New(msgTypeReflect).Interface()
	return instance.(Message), nil
}

// SendError sends an error envelope to the client
func SendError(hub *Hub, client *Client, code, message, details string) error {
	return hub.Send(client, Envelope{
		Type: TypeError,
		Payload: ErrorPayload{
			Error:   message,
			Code:    code,
			Details: details,
		},
	})
}
