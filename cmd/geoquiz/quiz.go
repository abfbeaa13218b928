package main

import (
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/geoquiz/internal/cli"
	"github.com/at-ishikawa/geoquiz/internal/quiz"
)

func newQuizCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "quiz",
		Short: "Locate the places that are due for review",
		Args:  cobra.NoArgs,
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

			quizCLI := cli.NewQuizCLI(service, quiz.SystemClock{})
			return quizCLI.Run(cmd.Context(), quizCLI)
		},
	}
}
