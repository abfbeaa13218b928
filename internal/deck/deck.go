// Package deck reads and writes YAML files of places, so that cards can be shared.
package deck

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/geoquiz/internal/card"
	"github.com/at-ishikawa/geoquiz/internal/quiz"
)

// Deck is the file format:
//
//	cards:
//	  - place_name: Tokyo
//	    latitude: 35.6895
//	    longitude: 139.6917
type Deck struct {
	Cards []Entry `yaml:"cards"`
}

type Entry struct {
	PlaceName string  `yaml:"place_name"`
	Latitude  float32 `yaml:"latitude"`
	Longitude float32 `yaml:"longitude"`
}

// FromCards builds a deck of the places of cards. Schedules are not exported.
func FromCards(cards []card.Card) Deck {
	entries := make([]Entry, 0, len(cards))
	for _, c := range cards {
		entries = append(entries, Entry{
			PlaceName: c.PlaceName,
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
		})
	}
	return Deck{Cards: entries}
}

func (d Deck) Places() []quiz.Place {
	places := make([]quiz.Place, 0, len(d.Cards))
	for _, e := range d.Cards {
		places = append(places, quiz.Place{
			Name:      e.PlaceName,
			Latitude:  e.Latitude,
			Longitude: e.Longitude,
		})
	}
	return places
}

func Load(path string) (Deck, error) {
	file, err := os.Open(path)
	if err != nil {
		return Deck{}, fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	var deck Deck
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&deck); err != nil {
		return Deck{}, fmt.Errorf("decode deck %s: %w", path, err)
	}
	return deck, nil
}

func Write(path string, deck Deck) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(deck); err != nil {
		return fmt.Errorf("encode deck %s: %w", path, err)
	}
	return encoder.Close()
}
