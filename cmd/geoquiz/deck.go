package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/geoquiz/internal/deck"
)

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <deck file>",
		Short: "Add every place of a YAML deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := deck.Load(args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			service, db, err := openService(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			count, err := service.Import(cmd.Context(), d.Places())
			if err != nil {
				return fmt.Errorf("service.Import() > %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d places\n", count)
			return nil
		},
	}
}

func newExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <deck file>",
		Short: "Write every place to a YAML deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			service, db, err := openService(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			cards, err := service.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("service.List() > %w", err)
			}
			if err := deck.Write(args[0], deck.FromCards(cards)); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d places to %s\n", len(cards), args[0])
			return nil
		},
	}
}
