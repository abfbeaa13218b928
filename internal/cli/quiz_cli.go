// Package cli provides the interactive terminal quiz.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"

	"github.com/at-ishikawa/geoquiz/internal/card"
	"github.com/at-ishikawa/geoquiz/internal/geo"
	"github.com/at-ishikawa/geoquiz/internal/quiz"
)

// errEnd ends the quiz loop without an error.
var errEnd = errors.New("end")

//go:generate mockgen -source=quiz_cli.go -destination=../mocks/cli/mock_session.go -package=mock_cli Session

type Session interface {
	Session(ctx context.Context) error
}

// QuizService is implemented by *quiz.Service.
type QuizService interface {
	Next(ctx context.Context, excludeID *int64) (card.Card, bool, error)
	Answer(ctx context.Context, id int64, guess geo.Point) (quiz.AnswerResult, error)
}

// QuizCLI asks for the location of due places until none is left or the user quits.
type QuizCLI struct {
	service      QuizService
	clock        quiz.Clock
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	correct      *color.Color
	wrong        *color.Color

	lastID   *int64
	answered int
	passed   int
}

func NewQuizCLI(service QuizService, clock quiz.Clock) *QuizCLI {
	return newQuizCLI(service, clock, os.Stdin, os.Stdout)
}

func newQuizCLI(service QuizService, clock quiz.Clock, stdin io.Reader, stdout io.Writer) *QuizCLI {
	return &QuizCLI{
		service:      service,
		clock:        clock,
		stdinReader:  bufio.NewReader(stdin),
		stdoutWriter: stdout,
		bold:         color.New(color.Bold),
		correct:      color.New(color.FgGreen, color.Bold),
		wrong:        color.New(color.FgRed, color.Bold),
	}
}

// Run calls session.Session until it returns errEnd or an error, or the process is interrupted.
func (cli *QuizCLI) Run(ctx context.Context, session Session) error {
	ctx, cancel := signal.NotifyContext(
		ctx,
		os.Interrupt,
	)
	defer cancel()

	errCh := make(chan error)
	go func() {
		defer close(errCh)

	LOOP:
		for {
			select {
			case <-ctx.Done():
				break LOOP
			default:
			}

			if err := session.Session(ctx); err != nil {
				if errors.Is(err, errEnd) {
					break
				}
				errCh <- err
				break
			}
		}
	}()
	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(cli.stdoutWriter, "\nReceived interrupt signal, exiting...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error: %w", err)
		}
	}
	cli.printSummary()
	return nil
}

func (cli *QuizCLI) printSummary() {
	if cli.answered == 0 {
		return
	}
	_, _ = fmt.Fprintf(cli.stdoutWriter, "\nAnswered %d, correct %d.\n", cli.answered, cli.passed)
}
