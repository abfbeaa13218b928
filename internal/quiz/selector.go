package quiz

import (
	"time"

	"github.com/at-ishikawa/geoquiz/internal/card"
)

// DueCards returns the cards scheduled at or before now, keeping their order.
func DueCards(cards []card.Card, now time.Time) []card.Card {
	var due []card.Card
	for _, c := range cards {
		if c.IsDue(now) {
			due = append(due, c)
		}
	}
	return due
}

// SelectDue picks one due card uniformly at random.
// A card whose id equals excludeID is skipped, so the card just answered is not asked again.
// It returns false when no card is left.
func SelectDue(cards []card.Card, now time.Time, excludeID *int64, rnd RandomSource) (card.Card, bool) {
	candidates := make([]card.Card, 0, len(cards))
	for _, c := range DueCards(cards, now) {
		if excludeID != nil && c.ID == *excludeID {
			continue
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return card.Card{}, false
	}
	return candidates[rnd.IntN(len(candidates))], true
}
