package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/AnemiB/SipStop/internal/live"
	"github.com/AnemiB/SipStop/internal/models"
	"github.com/AnemiB/SipStop/internal/notifications"
	"github.com/AnemiB/SipStop/internal/storage"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

var errStorageDown = errors.New("storage down")

// MockUserRepository is an in-memory UserRepositoryInterface
type MockUserRepository struct {
	users    map[string]*models.User
	nextID   int
	findErr  map[string]error
	tokenErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*models.User), nextID: 1}
}

func (m *MockUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", m.nextID)
		m.nextID++
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByID(id string) (*models.User, error) {
	if err := m.findErr[id]; err != nil {
		return nil, err
	}
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByIDs(ids []string) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (m *MockUserRepository) Update(user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) UpdatePushToken(userID, token string) error {
	if m.tokenErr != nil {
		return m.tokenErr
	}
	user, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.ExpoPushToken = token
	return nil
}

// MockRefreshTokenRepository is an in-memory RefreshTokenRepositoryInterface
type MockRefreshTokenRepository struct {
	tokens map[string]*models.RefreshToken
}

func NewMockRefreshTokenRepository() *MockRefreshTokenRepository {
	return &MockRefreshTokenRepository{tokens: make(map[string]*models.RefreshToken)}
}

func (m *MockRefreshTokenRepository) Create(token *models.RefreshToken) error {
	m.tokens[token.TokenHash] = token
	return nil
}

func (m *MockRefreshTokenRepository) FindValidByHash(hash string) (*models.RefreshToken, error) {
	token, ok := m.tokens[hash]
	if !ok || token.IsRevoked() || time.Now().After(token.ExpiresAt) {
		return nil, gorm.ErrRecordNotFound
	}
	return token, nil
}

func (m *MockRefreshTokenRepository) RevokeByHash(hash string) error {
	if token, ok := m.tokens[hash]; ok && token.RevokedAt == nil {
		now := time.Now()
		token.RevokedAt = &now
	}
	return nil
}

func (m *MockRefreshTokenRepository) RevokeAllForUser(userID string) error {
	now := time.Now()
	for _, token := range m.tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

// MockDrinkRepository is an in-memory DrinkRepositoryInterface
type MockDrinkRepository struct {
	drinks []*models.Drink
	err    error
}

func (m *MockDrinkRepository) Create(drink *models.Drink) error {
	if m.err != nil {
		return m.err
	}
	drink.ID = fmt.Sprintf("drink-%d", len(m.drinks)+1)
	m.drinks = append(m.drinks, drink)
	return nil
}

func (m *MockDrinkRepository) FindLatestByUser(userID string) (*models.Drink, error) {
	if m.err != nil {
		return nil, m.err
	}
	var latest *models.Drink
	for _, d := range m.drinks {
		if d.UserID == userID && (latest == nil || d.OccurredAt.After(latest.OccurredAt)) {
			latest = d
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *MockDrinkRepository) ListByUser(userID string) ([]models.Drink, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Drink
	for _, d := range m.drinks {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

// MockNoteRepository is an in-memory NoteRepositoryInterface
type MockNoteRepository struct {
	notes []*models.Note
	now   time.Time
	err   error
}

func (m *MockNoteRepository) Create(note *models.Note) error {
	if m.err != nil {
		return m.err
	}
	note.ID = fmt.Sprintf("note-%d", len(m.notes)+1)
	if note.CreatedAt.IsZero() {
		m.now = m.now.Add(time.Minute)
		note.CreatedAt = m.now
	}
	m.notes = append(m.notes, note)
	return nil
}

func (m *MockNoteRepository) FindByID(id string) (*models.Note, error) {
	for _, n := range m.notes {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockNoteRepository) sorted(filter func(*models.Note) bool) []models.Note {
	var out []models.Note
	for _, n := range m.notes {
		if filter(n) {
			out = append(out, *n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MockNoteRepository) FindLatestByUser(userID string) (*models.Note, error) {
	if m.err != nil {
		return nil, m.err
	}
	notes := m.sorted(func(n *models.Note) bool { return n.UserID == userID })
	if len(notes) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &notes[0], nil
}

func (m *MockNoteRepository) ListByUser(userID string) ([]models.Note, error) {
	return m.sorted(func(n *models.Note) bool { return n.UserID == userID }), nil
}

func (m *MockNoteRepository) ListCommunity(limit int) ([]models.Note, error) {
	if m.err != nil {
		return nil, m.err
	}
	notes := m.sorted(func(*models.Note) bool { return true })
	if len(notes) > limit {
		notes = notes[:limit]
	}
	return notes, nil
}

// MockCommentRepository is an in-memory CommentRepositoryInterface
type MockCommentRepository struct {
	comments []*models.Comment
	now      time.Time
	err      error
}

func (m *MockCommentRepository) Create(comment *models.Comment) error {
	comment.ID = fmt.Sprintf("comment-%d", len(m.comments)+1)
	if comment.CreatedAt.IsZero() {
		m.now = m.now.Add(time.Minute)
		comment.CreatedAt = m.now
	}
	m.comments = append(m.comments, comment)
	return nil
}

func (m *MockCommentRepository) ListByNote(noteID string) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range m.comments {
		if c.NoteID == noteID {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MockCommentRepository) ListRecentForOwner(ownerID string, limit int) ([]models.Comment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Comment
	for _, c := range m.comments {
		if c.NoteOwnerID == ownerID {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MockLastViewedRepository mirrors the GREATEST upsert
type MockLastViewedRepository struct {
	views map[string]map[string]time.Time
	err   error
}

func NewMockLastViewedRepository() *MockLastViewedRepository {
	return &MockLastViewedRepository{views: make(map[string]map[string]time.Time)}
}

func (m *MockLastViewedRepository) UpsertMonotonic(userID, noteID string, at time.Time) error {
	if m.err != nil {
		return m.err
	}
	if m.views[userID] == nil {
		m.views[userID] = make(map[string]time.Time)
	}
	if cur, ok := m.views[userID][noteID]; !ok || at.After(cur) {
		m.views[userID][noteID] = at
	}
	return nil
}

func (m *MockLastViewedRepository) ListByUser(userID string) (map[string]time.Time, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]time.Time)
	for k, v := range m.views[userID] {
		out[k] = v
	}
	return out, nil
}

// MockOnboardingRepository is an in-memory OnboardingRepositoryInterface
type MockOnboardingRepository struct {
	seen     map[string]bool
	readErr  error
	writeErr error
}

func NewMockOnboardingRepository() *MockOnboardingRepository {
	return &MockOnboardingRepository{seen: make(map[string]bool)}
}

func (m *MockOnboardingRepository) Get(userID string) (*models.OnboardingState, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	seen, ok := m.seen[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.OnboardingState{UserID: userID, Seen: seen}, nil
}

func (m *MockOnboardingRepository) MarkSeen(userID string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.seen[userID] = true
	return nil
}

type mockDeviceFlags struct {
	flags map[string]bool
	err   error
}

func (m *mockDeviceFlags) HasOnboarded(deviceID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.flags[deviceID], nil
}

func (m *mockDeviceFlags) MarkOnboarded(deviceID string) error {
	if m.err != nil {
		return m.err
	}
	m.flags[deviceID] = true
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []live.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev live.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Topic)
	}
	return out
}

type mockPushSender struct {
	mock.Mock
}

func (m *mockPushSender) Send(ctx context.Context, msg notifications.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type mockPresence struct {
	mock.Mock
}

func (m *mockPresence) IsUserOnline(userID string) bool {
	return m.Called(userID).Bool(0)
}

type mockFeedCache struct {
	notes       map[int][]models.NoteResponse
	invalidated int
}

func newMockFeedCache() *mockFeedCache {
	return &mockFeedCache{notes: make(map[int][]models.NoteResponse)}
}

func (m *mockFeedCache) GetCommunity(limit int) ([]models.NoteResponse, bool) {
	notes, ok := m.notes[limit]
	return notes, ok
}

func (m *mockFeedCache) SetCommunity(limit int, notes []models.NoteResponse) error {
	m.notes[limit] = notes
	return nil
}

func (m *mockFeedCache) InvalidateCommunity() error {
	m.invalidated++
	m.notes = make(map[int][]models.NoteResponse)
	return nil
}

type mockObjectStore struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newMockObjectStore() *mockObjectStore {
	return &mockObjectStore{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (m *mockObjectStore) PutObject(_ context.Context, key string, body io.Reader, size int64, contentType string) (storage.ObjectStat, error) {
	if m.putErr != nil {
		return storage.ObjectStat{}, m.putErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return storage.ObjectStat{}, err
	}
	m.objects[key] = buf.Bytes()
	m.types[key] = contentType
	return storage.ObjectStat{Size: size, ContentType: contentType}, nil
}

func (m *mockObjectStore) PresignedGetURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://files.example/%s?ttl=%d", key, int(ttl.Seconds())), nil
}
