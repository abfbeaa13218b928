package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/geoquiz/internal/config"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.DatabaseConfig
		wantDriver string
	}{
		{
			name: "mysql",
			cfg: config.DatabaseConfig{
				Driver:   DriverMySQL,
				Host:     "localhost",
				Port:     3306,
				Database: "testdb",
				Username: "testuser",
				Password: "testpass",
			},
			wantDriver: "mysql",
		},
		{
			name: "mysql with pool settings",
			cfg: config.DatabaseConfig{
				Driver:          DriverMySQL,
				Host:            "localhost",
				Port:            3306,
				Database:        "testdb",
				Username:        "testuser",
				Password:        "testpass",
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 300,
			},
			wantDriver: "mysql",
		},
		{
			name: "postgres",
			cfg: config.DatabaseConfig{
				Driver:   DriverPostgres,
				Host:     "db.example.com",
				Port:     5432,
				Database: "geoquiz",
				Username: "admin",
				Password: "secret",
			},
			wantDriver: "postgres",
		},
		{
			name: "sqlite",
			cfg: config.DatabaseConfig{
				Driver: DriverSQLite,
				Path:   filepath.Join(t.TempDir(), "geoquiz.db"),
			},
			wantDriver: "sqlite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Open(tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, got)
			defer got.Close()

			assert.Equal(t, tt.wantDriver, got.DriverName())
		})
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, `unsupported database driver "oracle"`)
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
		want string
	}{
		{
			name: "explicit dsn wins",
			cfg: config.DatabaseConfig{
				Driver: DriverMySQL,
				DSN:    "user:pass@tcp(db:3306)/cards",
				Host:   "ignored",
			},
			want: "user:pass@tcp(db:3306)/cards",
		},
		{
			name: "mysql",
			cfg: config.DatabaseConfig{
				Driver:   DriverMySQL,
				Host:     "localhost",
				Port:     3306,
				Database: "testdb",
				Username: "testuser",
				Password: "testpass",
			},
			want: "testuser:testpass@tcp(localhost:3306)/testdb?clientFoundRows=true&multiStatements=true&parseTime=true",
		},
		{
			name: "mysql with tls",
			cfg: config.DatabaseConfig{
				Driver:   DriverMySQL,
				Host:     "localhost",
				Port:     3306,
				Database: "testdb",
				Username: "testuser",
				Password: "testpass",
				TLS:      true,
			},
			want: "testuser:testpass@tcp(localhost:3306)/testdb?clientFoundRows=true&multiStatements=true&parseTime=true&tls=true",
		},
		{
			name: "postgres",
			cfg: config.DatabaseConfig{
				Driver:   DriverPostgres,
				Host:     "localhost",
				Port:     5432,
				Database: "geoquiz",
				Username: "admin",
				Password: "secret",
			},
			want: "host=localhost port=5432 user=admin password=secret dbname=geoquiz sslmode=disable",
		},
		{
			name: "postgres with tls",
			cfg: config.DatabaseConfig{
				Driver:   DriverPostgres,
				Host:     "localhost",
				Port:     5432,
				Database: "geoquiz",
				Username: "admin",
				Password: "secret",
				TLS:      true,
			},
			want: "host=localhost port=5432 user=admin password=secret dbname=geoquiz sslmode=require",
		},
		{
			name: "sqlite",
			cfg: config.DatabaseConfig{
				Driver: DriverSQLite,
				Path:   "/var/lib/geoquiz/cards.db",
			},
			want: "file:/var/lib/geoquiz/cards.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DSN(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunInTx(t *testing.T) {
	tests := []struct {
		name      string
		fn        func(ctx context.Context, tx *sqlx.Tx) error
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   bool
		errMsg    string
	}{
		{
			name: "commits on success",
			fn: func(ctx context.Context, tx *sqlx.Tx) error {
				return nil
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
		},
		{
			name: "rolls back on error",
			fn: func(ctx context.Context, tx *sqlx.Tx) error {
				return fmt.Errorf("something failed")
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			wantErr: true,
			errMsg:  "something failed",
		},
		{
			name: "rollback error keeps the original error",
			fn: func(ctx context.Context, tx *sqlx.Tx) error {
				return fmt.Errorf("something failed")
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback().WillReturnError(fmt.Errorf("rollback failed"))
			},
			wantErr: true,
			errMsg:  "original error: something failed",
		},
		{
			name: "begin error",
			fn: func(ctx context.Context, tx *sqlx.Tx) error {
				return nil
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(fmt.Errorf("begin failed"))
			},
			wantErr: true,
			errMsg:  "begin transaction",
		},
		{
			name: "commit error",
			fn: func(ctx context.Context, tx *sqlx.Tx) error {
				return nil
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(fmt.Errorf("commit failed"))
			},
			wantErr: true,
			errMsg:  "commit transaction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			sqlxDB := sqlx.NewDb(db, "mysql")
			tt.setupMock(mock)

			err = RunInTx(context.Background(), sqlxDB, tt.fn)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBuildMultiRowInsert(t *testing.T) {
	tests := []struct {
		name     string
		columns  []string
		rowCount int
		want     string
	}{
		{
			name:     "single row",
			columns:  []string{"place_name", "latitude"},
			rowCount: 1,
			want:     "INSERT INTO cards (place_name, latitude) VALUES (?, ?)",
		},
		{
			name:     "three rows",
			columns:  []string{"place_name", "latitude", "longitude"},
			rowCount: 3,
			want:     "INSERT INTO cards (place_name, latitude, longitude) VALUES (?, ?, ?), (?, ?, ?), (?, ?, ?)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildMultiRowInsert("cards", tt.columns, tt.rowCount))
		})
	}
}

func TestBuildMultiRowInsert_Rebind(t *testing.T) {
	query := BuildMultiRowInsert("cards", []string{"place_name", "latitude"}, 2)
	assert.Equal(t, "INSERT INTO cards (place_name, latitude) VALUES ($1, $2), ($3, $4)", sqlx.Rebind(sqlx.DOLLAR, query))
	assert.Equal(t, sqlx.QUESTION, sqlx.BindType(DriverSQLite))
}

func TestMigrate_SQLite(t *testing.T) {
	db, err := Open(config.DatabaseConfig{
		Driver: DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "geoquiz.db"),
	})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	// Running again is a no-op.
	require.NoError(t, Migrate(db))

	var tables []string
	require.NoError(t, db.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('cards', 'review_logs') ORDER BY name"))
	assert.Equal(t, []string{"cards", "review_logs"}, tables)
}
