// Package quiz scores answers, picks the next due card and records reviews.
package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/at-ishikawa/geoquiz/internal/card"
	"github.com/at-ishikawa/geoquiz/internal/geo"
	"github.com/at-ishikawa/geoquiz/internal/srs"
	"github.com/at-ishikawa/geoquiz/internal/statistics"
)

// Place is a new card to create.
type Place struct {
	Name      string
	Latitude  float32
	Longitude float32
}

// AnswerResult is what a learner gets back after answering a card.
type AnswerResult struct {
	Card       card.Card
	Evaluation Evaluation
	Outcome    srs.Outcome
	// EllipsoidalMeters is the same distance on the WGS-84 ellipsoid, for display only.
	EllipsoidalMeters float64
}

// Service runs reviews of cards stored in a card.Repository.
type Service struct {
	repo   card.Repository
	clock  Clock
	random RandomSource
}

// NewService creates a new Service.
func NewService(repo card.Repository, clock Clock, random RandomSource) *Service {
	return &Service{
		repo:   repo,
		clock:  clock,
		random: random,
	}
}

// OutcomeFor decides how a card is rescheduled after an evaluated answer.
// Correct answers given before the card is due are treated as cramming.
func OutcomeFor(c card.Card, evaluation Evaluation, now time.Time) srs.Outcome {
	switch {
	case !evaluation.Correct:
		return srs.OutcomeFail
	case c.IsDue(now):
		return srs.OutcomePass
	default:
		return srs.OutcomeCram
	}
}

// Create stores a new card that is due immediately.
func (s *Service) Create(ctx context.Context, place Place) (card.Card, error) {
	place.Name = strings.TrimSpace(place.Name)
	if err := validatePlace(place); err != nil {
		return card.Card{}, err
	}

	c := srs.NewCard(place.Name, place.Latitude, place.Longitude, s.clock.Now())
	if err := s.repo.Create(ctx, &c); err != nil {
		return card.Card{}, err
	}
	slog.Debug("created card", "id", c.ID, "place", c.PlaceName)
	return c, nil
}

// Import stores all places at once. Nothing is stored when any place is invalid.
func (s *Service) Import(ctx context.Context, places []Place) (int, error) {
	now := s.clock.Now()
	cards := make([]*card.Card, 0, len(places))
	for i, place := range places {
		place.Name = strings.TrimSpace(place.Name)
		if err := validatePlace(place); err != nil {
			return 0, fmt.Errorf("place #%d: %w", i+1, err)
		}
		c := srs.NewCard(place.Name, place.Latitude, place.Longitude, now)
		cards = append(cards, &c)
	}

	if err := s.repo.BatchCreate(ctx, cards); err != nil {
		return 0, err
	}
	return len(cards), nil
}

func (s *Service) Get(ctx context.Context, id int64) (card.Card, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]card.Card, error) {
	return s.repo.FindAll(ctx)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Due returns all cards that are due now.
func (s *Service) Due(ctx context.Context) ([]card.Card, error) {
	return s.repo.ListDue(ctx, s.clock.Now())
}

// Next picks a random due card other than excludeID.
// It returns false when nothing is due.
func (s *Service) Next(ctx context.Context, excludeID *int64) (card.Card, bool, error) {
	now := s.clock.Now()
	due, err := s.repo.ListDue(ctx, now)
	if err != nil {
		return card.Card{}, false, err
	}
	c, ok := SelectDue(due, now, excludeID, s.random)
	return c, ok, nil
}

// Answer scores guess against the card and reschedules it.
func (s *Service) Answer(ctx context.Context, id int64, guess geo.Point) (AnswerResult, error) {
	if err := ValidatePoint(guess); err != nil {
		return AnswerResult{}, err
	}

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return AnswerResult{}, err
	}

	now := s.clock.Now()
	guess = guess.SinglePrecision()
	evaluation := Evaluate(c, guess)
	outcome := OutcomeFor(c, evaluation, now)
	reviewed, err := srs.Apply(c, outcome, now)
	if err != nil {
		return AnswerResult{}, err
	}

	distance := evaluation.DistanceMeters
	latitude, longitude := float32(guess.Latitude), float32(guess.Longitude)
	saved, err := s.repo.SaveReview(ctx, reviewed, card.ReviewLog{
		CardID:         c.ID,
		Outcome:        string(outcome),
		DistanceMeters: &distance,
		GuessLatitude:  &latitude,
		GuessLongitude: &longitude,
		ReviewedAt:     now,
	})
	if err != nil {
		return AnswerResult{}, err
	}

	slog.Debug("answered card",
		"id", c.ID,
		"distance_meters", distance,
		"outcome", outcome,
		"next_review_at", saved.NextReviewAt,
	)
	return AnswerResult{
		Card:              saved,
		Evaluation:        evaluation,
		Outcome:           outcome,
		EllipsoidalMeters: geo.VincentyMeters(geo.NewPoint(c.Latitude, c.Longitude), guess),
	}, nil
}

// Cram reviews a card outside of its schedule without changing the interval or the ease.
func (s *Service) Cram(ctx context.Context, id int64) (card.Card, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return card.Card{}, err
	}

	now := s.clock.Now()
	return s.repo.SaveReview(ctx, srs.OnCram(c, now), card.ReviewLog{
		CardID:     c.ID,
		Outcome:    string(srs.OutcomeCram),
		ReviewedAt: now,
	})
}

// History returns the reviews of a card, newest first.
func (s *Service) History(ctx context.Context, id int64) ([]card.ReviewLog, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.FindReviews(ctx, id)
}

// Statistics summarizes every review per month. A zero year or month disables that filter.
func (s *Service) Statistics(ctx context.Context, year, month int) (statistics.StatisticsResult, error) {
	logs, err := s.repo.FindAllReviews(ctx)
	if err != nil {
		return statistics.StatisticsResult{}, err
	}
	return statistics.CalculateStatistics(logs, year, month), nil
}
