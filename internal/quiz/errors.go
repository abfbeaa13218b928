package quiz

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/at-ishikawa/geoquiz/internal/geo"
)

// ErrInvalidInput is returned for place names or coordinates that cannot be scored.
var ErrInvalidInput = errors.New("invalid input")

// ValidatePoint rejects NaN and infinite coordinates.
// Coordinates outside of the usual latitude and longitude ranges are accepted.
func ValidatePoint(p geo.Point) error {
	for _, v := range []float64{p.Latitude, p.Longitude} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("coordinates %v: %w", p, ErrInvalidInput)
		}
	}
	return nil
}

func validatePlace(p Place) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("place name is empty: %w", ErrInvalidInput)
	}
	return ValidatePoint(geo.NewPoint(p.Latitude, p.Longitude))
}
