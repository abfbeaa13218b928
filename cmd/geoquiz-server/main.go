package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/geoquiz/internal/bootstrap"
	"github.com/at-ishikawa/geoquiz/internal/card"
	"github.com/at-ishikawa/geoquiz/internal/config"
	"github.com/at-ishikawa/geoquiz/internal/database"
	"github.com/at-ishikawa/geoquiz/internal/quiz"
	"github.com/at-ishikawa/geoquiz/internal/server"
)

var configFile string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var migrate, debugMode bool
	rootCmd := &cobra.Command{
		Use:           "geoquiz-server",
		Short:         "Geoquiz HTTP API server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			return run(cmd.Context(), migrate)
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().BoolVar(&migrate, "migrate", false, "Apply database migrations before serving")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug mode")
	return rootCmd
}

func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func run(ctx context.Context, migrate bool) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("database.Open() > %w", err)
	}
	app.CloseOnShutdown("database", db)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("db.PingContext() > %w", err)
	}
	if migrate {
		if err := database.Migrate(db); err != nil {
			_ = db.Close()
			return fmt.Errorf("database.Migrate() > %w", err)
		}
	}

	service := quiz.NewService(card.NewDBRepository(db), quiz.SystemClock{}, quiz.SystemRandom{})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           h2c.NewHandler(server.NewRouter(service, cfg.Server), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	app.OnShutdown("http server", srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Info("starting server", "addr", srv.Addr, "database", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
