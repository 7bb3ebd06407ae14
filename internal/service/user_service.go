package service

import (
	"fmt"
	"strings"

	"github.com/AnemiB/SipStop/internal/models"
	"github.com/AnemiB/SipStop/internal/repository"
	"github.com/AnemiB/SipStop/internal/session"
	"github.com/AnemiB/SipStop/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo         repository.UserRepositoryInterface
	refreshTokenRepo repository.RefreshTokenRepositoryInterface
}

func NewUserService(userRepo repository.UserRepositoryInterface, refreshTokenRepo repository.RefreshTokenRepositoryInterface) *UserService {
	return &UserService{userRepo: userRepo, refreshTokenRepo: refreshTokenRepo}
}

type UpdateProfileInput struct {
	Username string `json:"username"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type PushTokenInput struct {
	Token string `json:"token"`
}

func (s *UserService) IsUsernameAvailable(username string) (bool, error) {
	username = validation.NormalizeUsername(username)
	if username == "" {
		return false, invalidInput("username cannot be empty")
	}

	if _, err := s.userRepo.FindByUsername(username); err != nil {
		return true, nil
	}
	return false, nil
}

func (s *UserService) GetCurrentUser(sess session.Session) (*models.User, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(sess.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes the username; an unchanged name is a no-op.
func (s *UserService) UpdateProfile(sess session.Session, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetCurrentUser(sess)
	if err != nil {
		return nil, err
	}

	username := validation.NormalizeUsername(input.Username)
	if !validation.ValidateUsername(username) {
		return nil, invalidInput("username must be 3-32 letters, digits or underscores")
	}
	if username == user.Username {
		return user, nil
	}

	available, err := s.IsUsernameAvailable(username)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, conflict("username already taken")
	}

	user.Username = username
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// ChangePassword requires the current password and a different new one.
// Every refresh token of the user is revoked afterwards.
func (s *UserService) ChangePassword(sess session.Session, input ChangePasswordInput) error {
	user, err := s.GetCurrentUser(sess)
	if err != nil {
		return err
	}

	if input.NewPassword == input.CurrentPassword {
		return invalidInput("new password must differ from the current one")
	}
	if !validation.ValidatePassword(input.NewPassword) {
		return invalidInput(fmt.Sprintf("password must be at least %d characters", validation.MinPasswordLength))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashed)
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return s.refreshTokenRepo.RevokeAllForUser(user.ID)
}

// RegisterPushToken stores the device's Expo push token. An empty token
// disables push for the user.
func (s *UserService) RegisterPushToken(sess session.Session, input PushTokenInput) error {
	if err := sess.Require(); err != nil {
		return err
	}
	token := strings.TrimSpace(input.Token)
	if token != "" && !IsExpoPushToken(token) {
		return invalidInput("not an Expo push token")
	}
	return s.userRepo.UpdatePushToken(sess.UserID, token)
}

func IsExpoPushToken(token string) bool {
	if !strings.HasSuffix(token, "]") {
		return false
	}
	return strings.HasPrefix(token, "ExponentPushToken[") || strings.HasPrefix(token, "ExpoPushToken[")
}

// DisplayNames resolves user ids to display names, falling back to Anonymous.
func DisplayNames(repo repository.UserRepositoryInterface, ids []string) map[string]string {
	names := make(map[string]string, len(ids))
	users, err := repo.FindByIDs(uniqueStrings(ids))
	if err == nil {
		for i := range users {
			names[users[i].ID] = models.DisplayName(&users[i])
		}
	}
	for _, id := range ids {
		if _, ok := names[id]; !ok {
			names[id] = models.AnonymousName
		}
	}
	return names
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
