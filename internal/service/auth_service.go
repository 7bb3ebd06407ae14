package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/AnemiB/SipStop/internal/models"
	"github.com/AnemiB/SipStop/internal/repository"
	"github.com/AnemiB/SipStop/internal/validation"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthConfig struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type AuthService struct {
	userRepo         repository.UserRepositoryInterface
	refreshTokenRepo repository.RefreshTokenRepositoryInterface
	cfg              AuthConfig
	now              func() time.Time
}

func NewAuthService(userRepo repository.UserRepositoryInterface, refreshTokenRepo repository.RefreshTokenRepositoryInterface, cfg AuthConfig) *AuthService {
	return &AuthService{userRepo: userRepo, refreshTokenRepo: refreshTokenRepo, cfg: cfg, now: time.Now}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthSession struct {
	AccessToken      string              `json:"access_token"`
	AccessExpiresAt  time.Time           `json:"access_expires_at"`
	RefreshToken     string              `json:"refresh_token"`
	RefreshExpiresAt time.Time           `json:"refresh_expires_at"`
	User             models.UserResponse `json:"user"`
}

func (s *AuthService) Register(input RegisterInput) (*AuthSession, error) {
	username := validation.NormalizeUsername(input.Username)
	email := validation.NormalizeEmail(input.Email)

	if !validation.ValidateUsername(username) {
		return nil, invalidInput("username must be 3-32 letters, digits or underscores")
	}
	if !validation.ValidateEmail(email) {
		return nil, invalidInput("invalid email")
	}
	if !validation.ValidatePassword(input.Password) {
		return nil, invalidInput(fmt.Sprintf("password must be at least %d characters", validation.MinPasswordLength))
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, conflict("email already exists")
	}
	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, conflict("username already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issueSession(user)
}

func (s *AuthService) Login(input LoginInput) (*AuthSession, error) {
	user, err := s.userRepo.FindByEmail(validation.NormalizeEmail(input.Email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(user)
}

// RefreshSession rotates a refresh token: the presented token is revoked and
// a new pair is issued.
func (s *AuthService) RefreshSession(rawToken string) (*AuthSession, error) {
	if rawToken == "" {
		return nil, ErrInvalidRefreshSession
	}

	token, err := s.refreshTokenRepo.FindValidByHash(hashToken(rawToken))
	if err != nil || token.IsRevoked() || token.IsExpired(s.now()) {
		return nil, ErrInvalidRefreshSession
	}

	user, err := s.userRepo.FindByID(token.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshSession
	}

	if err := s.refreshTokenRepo.RevokeByHash(token.TokenHash); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}

	return s.issueSession(user)
}

// Logout is idempotent: unknown or empty tokens are not an error.
func (s *AuthService) Logout(rawToken string) error {
	if rawToken == "" {
		return nil
	}
	return s.refreshTokenRepo.RevokeByHash(hashToken(rawToken))
}

func (s *AuthService) issueSession(user *models.User) (*AuthSession, error) {
	now := s.now()

	access, accessExp, err := s.generateAccessToken(user, now)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}
	refreshExp := now.Add(s.cfg.RefreshTTL)
	if err := s.refreshTokenRepo.Create(&models.RefreshToken{
		UserID:    user.ID,
		TokenHash: refreshHash,
		ExpiresAt: refreshExp,
	}); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &AuthSession{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     rawRefresh,
		RefreshExpiresAt: refreshExp,
		User:             user.ToResponse(),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User, now time.Time) (string, time.Time, error) {
	exp := now.Add(s.cfg.AccessTTL)
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"iat":     now.Unix(),
		"exp":     exp.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.cfg.Secret)
	return signed, exp, err
}

func generateRefreshToken() (raw string, hash string, err error) {
	raw = uuid.NewString() + uuid.NewString()
	return raw, hashToken(raw), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
