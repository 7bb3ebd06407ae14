package service

import (
	"testing"

	"github.com/AnemiB/SipStop/internal/session"
	"github.com/stretchr/testify/assert"
)

const testDevice = "device-0001-abcd"

func TestOnboardingSignedIn(t *testing.T) {
	repo := NewMockOnboardingRepository()
	svc := NewOnboardingService(repo, nil)
	sess := session.Session{UserID: "u1"}

	assert.True(t, svc.State(sess).Visible, "no stored preference shows the intro")
	assert.False(t, svc.MarkSeen(sess).Visible)
	assert.False(t, svc.State(sess).Visible)
}

func TestOnboardingReadFailureShows(t *testing.T) {
	repo := NewMockOnboardingRepository()
	repo.seen["u1"] = true
	repo.readErr = errStorageDown
	svc := NewOnboardingService(repo, nil)

	assert.True(t, svc.State(session.Session{UserID: "u1"}).Visible)
}

func TestOnboardingWriteFailureStillCloses(t *testing.T) {
	repo := NewMockOnboardingRepository()
	repo.writeErr = errStorageDown
	svc := NewOnboardingService(repo, nil)

	assert.False(t, svc.MarkSeen(session.Session{UserID: "u1"}).Visible)
}

func TestOnboardingAnonymousDevice(t *testing.T) {
	flags := &mockDeviceFlags{flags: map[string]bool{}}
	svc := NewOnboardingService(NewMockOnboardingRepository(), flags)
	sess := session.Session{DeviceID: testDevice}

	assert.True(t, svc.State(sess).Visible)
	assert.False(t, svc.MarkSeen(sess).Visible)
	assert.True(t, flags.flags[testDevice])
	assert.False(t, svc.State(sess).Visible)

	assert.True(t, svc.State(session.Session{}).Visible, "no device id")
	assert.True(t, svc.State(session.Session{DeviceID: "bad id"}).Visible, "invalid device id")

	flags.err = errStorageDown
	assert.True(t, svc.State(sess).Visible, "flag read failure shows the intro")
	assert.False(t, svc.MarkSeen(sess).Visible)
}
