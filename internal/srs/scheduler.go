// Package srs implements the spaced-repetition schedule of place cards.
//
// Every transition takes a card by value and returns the rescheduled copy;
// the input is never modified.
package srs

import (
	"fmt"
	"math"
	"time"

	"github.com/at-ishikawa/geoquiz/internal/card"
)

const (
	MinEase          = 1.3
	MaxEase          = 2.5
	InitialEase      = 2.5
	IntervalModifier = 1.0
	// RelearnFactor shrinks the interval after a failed review.
	RelearnFactor   = 0.5
	MaxIntervalDays = 365

	easePenalty = 0.2
	easeBonus   = 0.1
)

// RelearnDelay is how long a failed card waits before it is due again.
const RelearnDelay = 5 * time.Minute

const day = 24 * time.Hour

// Outcome is the result of a review.
type Outcome string

const (
	OutcomePass Outcome = "pass"
	OutcomeFail Outcome = "fail"
	// OutcomeCram is a review outside of the schedule.
	OutcomeCram Outcome = "cram"
)

// NewCard returns an unreviewed card that is due immediately.
func NewCard(placeName string, latitude, longitude float32, now time.Time) card.Card {
	return card.Card{
		PlaceName:    placeName,
		Latitude:     latitude,
		Longitude:    longitude,
		CreatedAt:    now,
		NextReviewAt: now,
		EaseFactor:   InitialEase,
		IntervalDays: 0,
	}
}

// OnFail lowers the ease, halves the interval and makes the card due again after RelearnDelay.
func OnFail(c card.Card, now time.Time) card.Card {
	c.LastReviewedAt = timePtr(now)
	c.EaseFactor = math.Max(c.EaseFactor-easePenalty, MinEase)
	c.IntervalDays = int(math.Round(float64(c.IntervalDays) * RelearnFactor))
	c.NextReviewAt = now.Add(RelearnDelay)
	return c
}

// OnPass grows the interval by the ease factor and raises the ease.
// The interval always grows by at least one day until it reaches MaxIntervalDays.
func OnPass(c card.Card, now time.Time) card.Card {
	c.LastReviewedAt = timePtr(now)

	grown := int(math.Round(float64(c.IntervalDays) * c.EaseFactor * IntervalModifier))
	c.IntervalDays = min(max(grown, c.IntervalDays+1), MaxIntervalDays)
	c.EaseFactor = math.Min(c.EaseFactor+easeBonus, MaxEase)

	c.NextReviewAt = now.Add(time.Duration(c.IntervalDays) * day)
	return c
}

// OnCram refreshes the review time without touching the ease or the interval.
func OnCram(c card.Card, now time.Time) card.Card {
	c.LastReviewedAt = timePtr(now)
	c.NextReviewAt = now.Add(time.Duration(c.IntervalDays) * day)
	return c
}

// Apply runs the transition for outcome.
func Apply(c card.Card, outcome Outcome, now time.Time) (card.Card, error) {
	switch outcome {
	case OutcomePass:
		return OnPass(c, now), nil
	case OutcomeFail:
		return OnFail(c, now), nil
	case OutcomeCram:
		return OnCram(c, now), nil
	default:
		return c, fmt.Errorf("unknown review outcome %q", outcome)
	}
}

// timePtr allocates so that the returned card never shares LastReviewedAt with its input.
func timePtr(t time.Time) *time.Time {
	return &t
}
