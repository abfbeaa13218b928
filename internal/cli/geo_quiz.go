package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/at-ishikawa/geoquiz/internal/geo"
	"github.com/at-ishikawa/geoquiz/internal/quiz"
)

// Session asks for one place.
func (cli *QuizCLI) Session(ctx context.Context) error {
	c, ok, err := cli.service.Next(ctx, cli.lastID)
	if err != nil {
		return fmt.Errorf("service.Next > %w", err)
	}
	if !ok {
		_, _ = fmt.Fprintln(cli.stdoutWriter, "No places are due. Come back later.")
		return errEnd
	}

	_, _ = fmt.Fprintf(cli.stdoutWriter, "\nWhere is %s? ", cli.bold.Sprint(c.PlaceName))
	_, _ = fmt.Fprint(cli.stdoutWriter, "Enter \"latitude, longitude\", \"skip\" or \"quit\": ")

	line, err := cli.stdinReader.ReadString('\n')
	line = strings.TrimSpace(line)
	if errors.Is(err, io.EOF) && line == "" {
		return errEnd
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("stdinReader.ReadString > %w", err)
	}

	switch strings.ToLower(line) {
	case "quit", "exit", "q":
		return errEnd
	case "skip", "":
		id := c.ID
		cli.lastID = &id
		return nil
	}

	guess, err := parseCoordinates(line)
	if err != nil {
		_, _ = fmt.Fprintf(cli.stdoutWriter, "%v\n", err)
		return nil
	}

	result, err := cli.service.Answer(ctx, c.ID, guess)
	if err != nil {
		if errors.Is(err, quiz.ErrInvalidInput) {
			_, _ = fmt.Fprintf(cli.stdoutWriter, "%v\n", err)
			return nil
		}
		return fmt.Errorf("service.Answer > %w", err)
	}

	id := c.ID
	cli.lastID = &id
	cli.answered++
	if result.Evaluation.Correct {
		cli.passed++
		_, _ = cli.correct.Fprintf(cli.stdoutWriter, "Correct! ")
	} else {
		_, _ = cli.wrong.Fprintf(cli.stdoutWriter, "Wrong. ")
	}
	_, _ = fmt.Fprintf(cli.stdoutWriter, "%s is at %s, %s from your answer.\n",
		c.PlaceName,
		geo.NewPoint(c.Latitude, c.Longitude),
		formatDistance(result.Evaluation.DistanceMeters),
	)
	_, _ = fmt.Fprintf(cli.stdoutWriter, "Next review %s.\n", formatNextReview(cli.clock.Now(), result.Card.NextReviewAt))
	return nil
}

// parseCoordinates reads "lat, lon" or "lat lon".
func parseCoordinates(s string) (geo.Point, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 2 {
		return geo.Point{}, fmt.Errorf("expected \"latitude, longitude\", got %q", s)
	}

	latitude, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid latitude %q", fields[0])
	}
	longitude, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid longitude %q", fields[1])
	}
	return geo.Point{Latitude: latitude, Longitude: longitude}, nil
}

func formatDistance(meters float64) string {
	if math.Round(meters) < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	// CommafWithDigits truncates, so round to 0.1 km first.
	return humanize.CommafWithDigits(math.Round(meters/100)/10, 1) + " km"
}

func formatNextReview(now, next time.Time) string {
	if !next.After(now) {
		return "now"
	}
	return humanize.RelTime(next, now, "ago", "from now") + " (" + next.Local().Format("2006-01-02 15:04") + ")"
}
