package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/AnemiB/SipStop/internal/encouragement"
	"github.com/AnemiB/SipStop/internal/repository"
	"github.com/AnemiB/SipStop/internal/session"
	"github.com/sirupsen/logrus"
)

// NoDrinkText replaces the sober counter until a drink is logged.
const NoDrinkText = "Please log a drink first"

// SoberCounter is the home screen's time since the last drink.
type SoberCounter struct {
	Days    int    `json:"days"`
	Hours   int    `json:"hours"`
	Minutes int    `json:"minutes"`
	Text    string `json:"text"`
}

func NewSoberCounter(lastDrink, now time.Time) SoberCounter {
	secs := int64(now.Sub(lastDrink) / time.Second)
	if secs < 0 {
		secs = 0
	}
	c := SoberCounter{
		Days:    int(secs / 86400),
		Hours:   int(secs % 86400 / 3600),
		Minutes: int(secs % 3600 / 60),
	}
	c.Text = fmt.Sprintf("%d days, %d hours and %d minutes", c.Days, c.Hours, c.Minutes)
	return c
}

type HomeView struct {
	Username      string             `json:"username"`
	Sober         *SoberCounter      `json:"sober,omitempty"`
	NoDrinkText   string             `json:"no_drink_text,omitempty"`
	Encouragement encouragement.View `json:"encouragement"`
}

// EncouragementService keeps one card per user so the chosen message stays
// put until that user's latest drink or note changes.
type EncouragementService struct {
	selector  *encouragement.Selector
	drinkRepo repository.DrinkRepositoryInterface
	noteRepo  repository.NoteRepositoryInterface
	userRepo  repository.UserRepositoryInterface
	now       func() time.Time

	mu    sync.Mutex
	cards map[string]*cardEntry
}

// CardIdleTTL is how long an unused card is kept before Prune drops it.
const CardIdleTTL = 2 * time.Hour

type cardEntry struct {
	card     *encouragement.Card
	lastUsed time.Time
}

func NewEncouragementService(selector *encouragement.Selector, drinkRepo repository.DrinkRepositoryInterface, noteRepo repository.NoteRepositoryInterface, userRepo repository.UserRepositoryInterface) *EncouragementService {
	if selector == nil {
		selector = encouragement.NewSelector(nil, nil)
	}
	return &EncouragementService{
		selector:  selector,
		drinkRepo: drinkRepo,
		noteRepo:  noteRepo,
		userRepo:  userRepo,
		now:       time.Now,
		cards:     make(map[string]*cardEntry),
	}
}

// Input loads the selector inputs. Read failures are logged and treated as
// "nothing recorded yet".
func (s *EncouragementService) Input(userID string) encouragement.Input {
	var in encouragement.Input
	log := logrus.WithField("user_id", userID)

	drink, err := s.drinkRepo.FindLatestByUser(userID)
	switch {
	case err == nil:
		in.LastDrink = &encouragement.DrinkEvent{OccurredAt: drink.OccurredAt, GoalLabel: drink.Motivation}
	case !isNotFound(err):
		log.WithError(err).Warn("failed to load latest drink")
	}

	note, err := s.noteRepo.FindLatestByUser(userID)
	switch {
	case err == nil:
		in.HasNote = true
		mood, _ := encouragement.ParseMood(note.Mood)
		in.LastNoteMood = &mood
	case !isNotFound(err):
		log.WithError(err).Warn("failed to load latest note")
	}

	return in
}

func (s *EncouragementService) card(userID string) *encouragement.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cards[userID]
	if !ok {
		e = &cardEntry{card: encouragement.NewCard(s.selector)}
		s.cards[userID] = e
	}
	e.lastUsed = s.now()
	return e.card
}

// Render reloads inputs and renders the user's card.
func (s *EncouragementService) Render(sess session.Session) (encouragement.View, error) {
	if err := sess.Require(); err != nil {
		return encouragement.View{}, err
	}
	return s.card(sess.UserID).Render(s.Input(sess.UserID), s.now()), nil
}

// Tick re-renders a user's card at the current time without reloading
// inputs. ok is false when the user has no card yet.
func (s *EncouragementService) Tick(userID string) (encouragement.View, bool) {
	now := s.now()
	s.mu.Lock()
	e, ok := s.cards[userID]
	if ok {
		e.lastUsed = now
	}
	s.mu.Unlock()
	if !ok {
		return encouragement.View{}, false
	}
	return e.card.Tick(now)
}

// Prune drops cards not rendered or ticked within idle and returns how many
// were removed. A pruned user simply gets a fresh message next time.
func (s *EncouragementService) Prune(idle time.Duration) int {
	cutoff := s.now().Add(-idle)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.cards {
		if e.lastUsed.Before(cutoff) {
			delete(s.cards, id)
			n++
		}
	}
	return n
}

func (s *EncouragementService) Home(sess session.Session) (*HomeView, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}

	username := "User"
	if user, err := s.userRepo.FindByID(sess.UserID); err == nil && user.Username != "" {
		username = user.Username
	}

	now := s.now()
	in := s.Input(sess.UserID)
	view := &HomeView{
		Username:      username,
		Encouragement: s.card(sess.UserID).Render(in, now),
	}
	if in.LastDrink != nil {
		counter := NewSoberCounter(in.LastDrink.OccurredAt, now)
		view.Sober = &counter
	} else {
		view.NoDrinkText = NoDrinkText
	}
	return view, nil
}
