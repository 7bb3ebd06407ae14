package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnemiB/SipStop/internal/activity"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// ErrDeviceNotRegistered means the token is stale and should be dropped.
var ErrDeviceNotRegistered = errors.New("expo: device not registered")

// Message is one Expo push message.
type Message struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Sound string            `json:"sound,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

// CommentMessage builds the push for a new comment on the owner's note.
func CommentMessage(token string, n activity.Notification) Message {
	return Message{
		To:    token,
		Title: n.Title(),
		Body:  n.Text,
		Sound: "default",
		Data: map[string]string{
			"type":       "comment",
			"note_id":    n.NoteID,
			"comment_id": n.CommentID,
		},
	}
}

type ticket struct {
	Status  string `json:"status"`
	ID      string `json:"id"`
	Message string `json:"message"`
	Details struct {
		Error string `json:"error"`
	} `json:"details"`
}

type pushResponse struct {
	Data   ticket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// ExpoClient sends push notifications through the Expo push service
type ExpoClient struct {
	url    string
	client *resty.Client
}

// Ensure ExpoClient implements Sender
var _ Sender = (*ExpoClient)(nil)

func NewExpoClient(url, accessToken string) *ExpoClient {
	client := resty.New().
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	if accessToken != "" {
		client.SetAuthToken(accessToken)
	}
	return &ExpoClient{url: url, client: client}
}

func (c *ExpoClient) Send(ctx context.Context, msg Message) error {
	var out pushResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(msg).
		SetResult(&out).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("expo push returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	if len(out.Errors) > 0 {
		return fmt.Errorf("expo push rejected: %s: %s", out.Errors[0].Code, out.Errors[0].Message)
	}
	if out.Data.Status == "error" {
		if out.Data.Details.Error == "DeviceNotRegistered" {
			return ErrDeviceNotRegistered
		}
		return fmt.Errorf("expo push ticket error: %s", out.Data.Message)
	}

	logrus.WithField("ticket", out.Data.ID).Debug("push accepted")
	return nil
}
