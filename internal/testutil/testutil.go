// Package testutil provides shared test helpers for creating config files, databases and deck fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/geoquiz/internal/config"
	"github.com/at-ishikawa/geoquiz/internal/database"
)

// SetupTestConfig creates a config file that stores cards in a SQLite database under tmpDir.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	configContent := fmt.Sprintf(`database:
  driver: sqlite
  path: %s
`, filepath.Join(tmpDir, "geoquiz.db"))

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// NewSQLiteDB opens a migrated SQLite database in a temporary directory.
// The database is closed when the test finishes.
func NewSQLiteDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "geoquiz.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

// DeckPlace is a place written by CreateDeck.
type DeckPlace struct {
	Name      string
	Latitude  float32
	Longitude float32
}

// CreateDeck writes a YAML deck with the given places and returns its path.
func CreateDeck(t *testing.T, dir string, places ...DeckPlace) string {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("cards:\n")
	for _, p := range places {
		_, _ = fmt.Fprintf(&sb, "  - place_name: %s\n    latitude: %v\n    longitude: %v\n", p.Name, p.Latitude, p.Longitude)
	}

	path := filepath.Join(dir, "deck.yml")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0644))
	return path
}
