package handlers

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AnemiB/SipStop/internal/handlers/ws"
	"github.com/AnemiB/SipStop/internal/middleware"
	"github.com/AnemiB/SipStop/internal/models"
	"github.com/AnemiB/SipStop/internal/service"
	"github.com/AnemiB/SipStop/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memOnboarding struct {
	seen map[string]bool
	err  error
}

func (m *memOnboarding) Get(userID string) (*models.OnboardingState, error) {
	if m.err != nil {
		return nil, m.err
	}
	seen, ok := m.seen[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.OnboardingState{UserID: userID, Seen: seen}, nil
}

func (m *memOnboarding) MarkSeen(userID string) error {
	if m.err != nil {
		return m.err
	}
	m.seen[userID] = true
	return nil
}

type memFlags map[string]bool

func (m memFlags) HasOnboarded(id string) (bool, error) { return m[id], nil }

func (m memFlags) MarkOnboarded(id string) error {
	m[id] = true
	return nil
}

func onboardingApp(repo *memOnboarding, flags memFlags) *fiber.App {
	h := NewOnboardingHandler(service.NewOnboardingService(repo, flags))
	app := fiber.New()
	g := app.Group("/api/onboarding", middleware.AuthOptional(testutil.TestSecret))
	g.Get("/", h.State)
	g.Post("/seen", h.MarkSeen)
	return app
}

func visible(t *testing.T, app *fiber.App, method, path string, headers map[string]string) bool {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body service.OnboardingState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Visible
}

func TestOnboardingHandlerSignedIn(t *testing.T) {
	helper := testutil.NewTestHelper(t)
	repo := &memOnboarding{seen: map[string]bool{}}
	app := onboardingApp(repo, memFlags{})
	auth := map[string]string{"Authorization": "Bearer " + helper.AccessToken("u1", time.Minute)}

	assert.True(t, visible(t, app, "GET", "/api/onboarding/", auth))
	assert.False(t, visible(t, app, "POST", "/api/onboarding/seen", auth))
	assert.False(t, visible(t, app, "GET", "/api/onboarding/", auth))

	repo.err = errors.New("db down")
	assert.True(t, visible(t, app, "GET", "/api/onboarding/", auth), "read failure shows the intro")
	assert.False(t, visible(t, app, "POST", "/api/onboarding/seen", auth), "write failure still dismisses")
}

func TestOnboardingHandlerDevice(t *testing.T) {
	flags := memFlags{}
	app := onboardingApp(&memOnboarding{seen: map[string]bool{}}, flags)
	device := map[string]string{middleware.DeviceIDHeader: "device-0001-abcd"}

	assert.True(t, visible(t, app, "GET", "/api/onboarding/", device))
	assert.False(t, visible(t, app, "POST", "/api/onboarding/seen", device))
	assert.True(t, flags["device-0001-abcd"])
	assert.False(t, visible(t, app, "GET", "/api/onboarding/", device))
}

func TestProtectedHandlersRejectAnonymous(t *testing.T) {
	app := fiber.New()
	app.Get("/home", NewHomeHandler(nil).Home)
	app.Post("/drinks", NewDrinkHandler(nil).LogDrink)
	app.Get("/unseen", NewActivityHandler(nil).Unseen)
	app.Post("/notes/:id/viewed", NewNoteHandler(nil, nil).MarkViewed)

	for _, r := range []struct{ method, path string }{
		{"GET", "/home"}, {"POST", "/drinks"}, {"GET", "/unseen"}, {"POST", "/notes/n1/viewed"},
	} {
		resp, err := app.Test(httptest.NewRequest(r.method, r.path, strings.NewReader("")))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, r.path)
	}
}

func TestCSRFIssuesReadableCookie(t *testing.T) {
	app := fiber.New()
	app.Get("/csrf", NewAuthHandler(nil, false).CSRF)

	resp, err := app.Test(httptest.NewRequest("GET", "/csrf", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body["csrf_token"], 64)

	cookie := resp.Header.Get("Set-Cookie")
	assert.Contains(t, cookie, middleware.CSRFCookie+"="+body["csrf_token"])
	assert.NotContains(t, strings.ToLower(cookie), "httponly")
}

func TestRefreshWithoutTokenIsUnauthorized(t *testing.T) {
	app := fiber.New()
	app.Post("/refresh", NewAuthHandler(nil, false).Refresh)

	resp, err := app.Test(httptest.NewRequest("POST", "/refresh", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketHandlerSharesHub(t *testing.T) {
	hub := ws.NewHub(nil)
	t.Cleanup(hub.Close)

	h := NewWebSocketHandler(hub, &ws.Deps{}, false)
	assert.Same(t, hub, h.GetHub())
}
