package service

import (
	"github.com/AnemiB/SipStop/internal/repository"
	"github.com/AnemiB/SipStop/internal/session"
	"github.com/AnemiB/SipStop/internal/validation"
	"github.com/sirupsen/logrus"
)

// DeviceFlagStore remembers onboarding for clients that are not signed in.
type DeviceFlagStore interface {
	HasOnboarded(deviceID string) (bool, error)
	MarkOnboarded(deviceID string) error
}

type OnboardingService struct {
	repo    repository.OnboardingRepositoryInterface
	devices DeviceFlagStore
}

func NewOnboardingService(repo repository.OnboardingRepositoryInterface, devices DeviceFlagStore) *OnboardingService {
	return &OnboardingService{repo: repo, devices: devices}
}

type OnboardingState struct {
	Visible bool `json:"visible"`
}

// State reports whether the intro should be shown. Any read failure shows it.
func (s *OnboardingService) State(sess session.Session) OnboardingState {
	if sess.Authenticated() {
		state, err := s.repo.Get(sess.UserID)
		if err != nil {
			if !isNotFound(err) {
				logrus.WithError(err).WithField("user_id", sess.UserID).Warn("failed to read onboarding state")
			}
			return OnboardingState{Visible: true}
		}
		return OnboardingState{Visible: !state.Seen}
	}

	if s.devices == nil || !validation.ValidateDeviceID(sess.DeviceID) {
		return OnboardingState{Visible: true}
	}
	seen, err := s.devices.HasOnboarded(sess.DeviceID)
	if err != nil {
		logrus.WithError(err).Warn("failed to read device onboarding flag")
		return OnboardingState{Visible: true}
	}
	return OnboardingState{Visible: !seen}
}

// MarkSeen dismisses the intro. The dismissal always succeeds from the
// caller's point of view; storage failures are only logged.
func (s *OnboardingService) MarkSeen(sess session.Session) OnboardingState {
	if sess.Authenticated() {
		if err := s.repo.MarkSeen(sess.UserID); err != nil {
			logrus.WithError(err).WithField("user_id", sess.UserID).Warn("failed to store onboarding state")
		}
		return OnboardingState{Visible: false}
	}

	if s.devices != nil && validation.ValidateDeviceID(sess.DeviceID) {
		if err := s.devices.MarkOnboarded(sess.DeviceID); err != nil {
			logrus.WithError(err).Warn("failed to store device onboarding flag")
		}
	}
	return OnboardingState{Visible: false}
}
