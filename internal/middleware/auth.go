package middleware

import (
	"strings"

	"github.com/AnemiB/SipStop/internal/httpx"
	"github.com/AnemiB/SipStop/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessCookie   = "sip_access"
	DeviceIDHeader = "X-Device-ID"
)

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// tokenFromRequest reads a bearer token, falling back to the access cookie.
// ok is false when the Authorization header is present but malformed.
func tokenFromRequest(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Cookies(AccessCookie), true
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// ParseAccessToken validates an HS256 access token and returns its claims.
func ParseAccessToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method == nil || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := tokenFromRequest(c)
		if !ok {
			return httpx.Unauthorized(c, "invalid_authorization", "Invalid authorization format")
		}
		if tokenString == "" {
			return httpx.Unauthorized(c, "missing_access_token", "Missing access token")
		}

		claims, err := ParseAccessToken(tokenString, secret)
		if err != nil {
			return httpx.Unauthorized(c, "invalid_access_token", "Invalid or expired token")
		}

		c.Locals(httpx.SessionKey, session.Session{
			UserID:   claims.UserID,
			Email:    claims.Email,
			DeviceID: strings.TrimSpace(c.Get(DeviceIDHeader)),
		})
		return c.Next()
	}
}

// AuthOptional attaches a session when a valid token is present and an
// anonymous (device-only) session otherwise. It never rejects.
func AuthOptional(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := session.Session{DeviceID: strings.TrimSpace(c.Get(DeviceIDHeader))}
		if tokenString, ok := tokenFromRequest(c); ok && tokenString != "" {
			if claims, err := ParseAccessToken(tokenString, secret); err == nil {
				sess.UserID = claims.UserID
				sess.Email = claims.Email
			}
		}
		c.Locals(httpx.SessionKey, sess)
		return c.Next()
	}
}
