package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AnemiB/SipStop/internal/encouragement"
	"github.com/AnemiB/SipStop/internal/live"
	"github.com/AnemiB/SipStop/internal/models"
	"github.com/AnemiB/SipStop/internal/repository"
	"github.com/AnemiB/SipStop/internal/session"
	"github.com/AnemiB/SipStop/internal/validation"
)

type DrinkService struct {
	drinkRepo repository.DrinkRepositoryInterface
	publisher Publisher
	now       func() time.Time
}

func NewDrinkService(drinkRepo repository.DrinkRepositoryInterface, publisher Publisher) *DrinkService {
	return &DrinkService{drinkRepo: drinkRepo, publisher: publisherOrNop(publisher), now: time.Now}
}

type LogDrinkInput struct {
	// OccurredAt defaults to now. It may not be in the future.
	OccurredAt *time.Time `json:"occurred_at"`
	Motivation string     `json:"motivation"`
}

func (s *DrinkService) LogDrink(ctx context.Context, sess session.Session, input LogDrinkInput) (*models.Drink, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}

	now := s.now()
	occurredAt := now
	if input.OccurredAt != nil && !input.OccurredAt.IsZero() {
		occurredAt = *input.OccurredAt
	}
	if occurredAt.After(now) {
		return nil, invalidInput("a drink cannot be logged in the future")
	}

	goal, ok := validation.NormalizeGoal(input.Motivation)
	if !ok {
		return nil, invalidInput(fmt.Sprintf("motivation must be one of %v", encouragement.GoalLabels()))
	}

	drink := &models.Drink{
		UserID:     sess.UserID,
		OccurredAt: occurredAt.UTC(),
		Motivation: goal,
	}
	if err := s.drinkRepo.Create(drink); err != nil {
		return nil, fmt.Errorf("create drink: %w", err)
	}

	s.publisher.Publish(ctx, live.Event{
		Topic:  live.DrinksForUser(sess.UserID),
		Kind:   live.KindDrinkCreated,
		ID:     drink.ID,
		UserID: sess.UserID,
	})
	return drink, nil
}

// Latest returns the user's most recent drink, or nil when there is none.
func (s *DrinkService) Latest(sess session.Session) (*models.Drink, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	drink, err := s.drinkRepo.FindLatestByUser(sess.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return drink, nil
}
