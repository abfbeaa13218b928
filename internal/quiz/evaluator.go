package quiz

import (
	"github.com/at-ishikawa/geoquiz/internal/card"
	"github.com/at-ishikawa/geoquiz/internal/geo"
)

// CorrectThresholdMeters is the largest distance from the place that still counts as a correct answer.
const CorrectThresholdMeters = 250.0

// IsCorrect reports whether a guess distanceMeters away from the place is correct.
func IsCorrect(distanceMeters float64) bool {
	return distanceMeters <= CorrectThresholdMeters
}

// Evaluation is the score of a single guess.
type Evaluation struct {
	DistanceMeters float64
	Correct        bool
}

// Evaluate scores guess against the location of c.
// The guess is compared at the precision the card is stored with.
func Evaluate(c card.Card, guess geo.Point) Evaluation {
	distance := geo.NewPoint(c.Latitude, c.Longitude).DistanceTo(guess.SinglePrecision())
	return Evaluation{
		DistanceMeters: distance,
		Correct:        IsCorrect(distance),
	}
}
