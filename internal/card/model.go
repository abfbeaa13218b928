// Package card provides the place cards reviewed by the quiz and their storage.
package card

import "time"

// Card is a place to locate on the map together with its review schedule.
type Card struct {
	ID             int64      `db:"id"`
	PlaceName      string     `db:"place_name"`
	Latitude       float32    `db:"latitude"`
	Longitude      float32    `db:"longitude"`
	CreatedAt      time.Time  `db:"created_at"`
	LastReviewedAt *time.Time `db:"last_reviewed_at"`
	NextReviewAt   time.Time  `db:"next_review_at"`
	EaseFactor     float64    `db:"ease_factor"`
	IntervalDays   int        `db:"interval_days"`
}

// IsDue reports whether the card is scheduled at or before now.
func (c Card) IsDue(now time.Time) bool {
	return !c.NextReviewAt.After(now)
}

// ReviewLog is a single answer recorded for a card.
type ReviewLog struct {
	ID             int64     `db:"id"`
	CardID         int64     `db:"card_id"`
	Outcome        string    `db:"outcome"`
	DistanceMeters *float64  `db:"distance_meters"`
	GuessLatitude  *float32  `db:"guess_latitude"`
	GuessLongitude *float32  `db:"guess_longitude"`
	ReviewedAt     time.Time `db:"reviewed_at"`
	EaseFactor     float64   `db:"ease_factor"`
	IntervalDays   int       `db:"interval_days"`
}
