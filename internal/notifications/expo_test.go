package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AnemiB/SipStop/internal/activity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentMessage(t *testing.T) {
	msg := CommentMessage("ExponentPushToken[x]", activity.Notification{
		CommentID: "c1",
		NoteID:    "n1",
		NoteTitle: "Day one",
		Text:      "proud of you",
	})

	assert.Equal(t, "ExponentPushToken[x]", msg.To)
	assert.Equal(t, "New comment on: Day one", msg.Title)
	assert.Equal(t, "proud of you", msg.Body)
	assert.Equal(t, "n1", msg.Data["note_id"])

	untitled := CommentMessage("t", activity.Notification{})
	assert.Equal(t, "New comment on: your note", untitled.Title)
}

func TestExpoClientSend(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		anyErr  bool
	}{
		{"accepted", http.StatusOK, `{"data":{"status":"ok","id":"abc"}}`, nil, false},
		{"stale token", http.StatusOK, `{"data":{"status":"error","message":"gone","details":{"error":"DeviceNotRegistered"}}}`, ErrDeviceNotRegistered, true},
		{"ticket error", http.StatusOK, `{"data":{"status":"error","message":"too big"}}`, nil, true},
		{"request errors", http.StatusOK, `{"errors":[{"code":"VALIDATION_ERROR","message":"bad"}]}`, nil, true},
		{"http failure", http.StatusBadRequest, `{}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Message
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewExpoClient(srv.URL, "secret")
			client.client.SetRetryCount(0)
			err := client.Send(context.Background(), Message{To: "ExponentPushToken[x]", Title: "hi"})

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
			if tt.anyErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, "ExponentPushToken[x]", got.To)
		})
	}
}
