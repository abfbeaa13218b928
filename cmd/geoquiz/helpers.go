package main

import (
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/geoquiz/internal/card"
	"github.com/at-ishikawa/geoquiz/internal/config"
	"github.com/at-ishikawa/geoquiz/internal/database"
	"github.com/at-ishikawa/geoquiz/internal/quiz"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// openService opens the configured database. The caller closes the returned DB.
func openService(cfg *config.Config) (*quiz.Service, *sqlx.DB, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("database.Open() > %w", err)
	}
	service := quiz.NewService(card.NewDBRepository(db), quiz.SystemClock{}, quiz.SystemRandom{})
	return service, db, nil
}

func parseCardID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid card id %q", s)
	}
	return id, nil
}

func parseCoordinate(name, s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return float32(v), nil
}
