package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/geoquiz/internal/card"
	"github.com/at-ishikawa/geoquiz/internal/geocode"
	"github.com/at-ishikawa/geoquiz/internal/quiz"
)

type ListFilter string

const (
	ListAll ListFilter = "all"
	ListDue ListFilter = "due"
)

// Set implements pflag.Value.
func (f *ListFilter) Set(v string) error {
	switch ListFilter(v) {
	case ListAll, ListDue:
		*f = ListFilter(v)
	default:
		return fmt.Errorf("invalid value %q, valid values are %q or %q", v, ListAll, ListDue)
	}
	return nil
}

// String implements pflag.Value.
func (f *ListFilter) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

// Type implements pflag.Value.
func (f *ListFilter) Type() string {
	return "ListFilter"
}

var (
	_ pflag.Value = (*ListFilter)(nil)
)

func newCardCommand() *cobra.Command {
	cardCommand := &cobra.Command{
		Use:   "card",
		Short: "Manage place cards",
	}
	cardCommand.AddCommand(
		newCardAddCommand(),
		newCardListCommand(),
		newCardDeleteCommand(),
		newCardHistoryCommand(),
	)
	return cardCommand
}

func newCardAddCommand() *cobra.Command {
	var useGeocoder bool
	cmd := &cobra.Command{
		Use:   "add <place name> [<latitude> <longitude>]",
		Short: "Add a place to learn",
		Args: func(cmd *cobra.Command, args []string) error {
			if useGeocoder {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(3)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			place := quiz.Place{Name: args[0]}
			if useGeocoder {
				client := geocode.NewClient(cfg.Geocoder)
				defer func() {
					_ = client.Close()
				}()

				result, point, err := client.Lookup(cmd.Context(), place.Name)
				if err != nil {
					return fmt.Errorf("geocode %q > %w", place.Name, err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Found %s\n", result.DisplayName)
				place.Latitude = float32(point.Latitude)
				place.Longitude = float32(point.Longitude)
			} else {
				if place.Latitude, err = parseCoordinate("latitude", args[1]); err != nil {
					return err
				}
				if place.Longitude, err = parseCoordinate("longitude", args[2]); err != nil {
					return err
				}
			}

			service, db, err := openService(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			c, err := service.Create(cmd.Context(), place)
			if err != nil {
				return fmt.Errorf("service.Create() > %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added #%d %s (%.4f, %.4f)\n", c.ID, c.PlaceName, c.Latitude, c.Longitude)
			return nil
		},
	}
	cmd.Flags().BoolVar(&useGeocoder, "geocode", false, "Look up the coordinates of the place name")
	return cmd
}

func newCardListCommand() *cobra.Command {
	filter := ListAll
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List place cards",
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

			var cards []card.Card
			if filter == ListDue {
				cards, err = service.Due(cmd.Context())
			} else {
				cards, err = service.List(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("list cards > %w", err)
			}
			return writeCards(cmd.OutOrStdout(), cards, time.Now())
		},
	}
	cmd.Flags().Var(&filter, "filter", "Cards to list. Options: all, due")
	return cmd
}

func writeCards(w io.Writer, cards []card.Card, now time.Time) error {
	if len(cards) == 0 {
		_, err := fmt.Fprintln(w, "No cards")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tPLACE\tLATITUDE\tLONGITUDE\tINTERVAL\tEASE\tNEXT REVIEW")
	for _, c := range cards {
		next := "now"
		if !c.IsDue(now) {
			next = humanize.RelTime(c.NextReviewAt, now, "ago", "from now")
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%.4f\t%.4f\t%dd\t%.2f\t%s\n",
			c.ID, c.PlaceName, c.Latitude, c.Longitude, c.IntervalDays, c.EaseFactor, next)
	}
	return tw.Flush()
}

func newCardDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a place card and its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCardID(args[0])
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

			if err := service.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("service.Delete(%d) > %w", id, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
			return nil
		},
	}
}

func newCardHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show the reviews of a place card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCardID(args[0])
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

			reviews, err := service.History(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("service.History(%d) > %w", id, err)
			}
			return writeReviews(cmd.OutOrStdout(), reviews)
		},
	}
}

func writeReviews(w io.Writer, reviews []card.ReviewLog) error {
	if len(reviews) == 0 {
		_, err := fmt.Fprintln(w, "No reviews")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "REVIEWED AT\tOUTCOME\tDISTANCE\tINTERVAL\tEASE")
	for _, r := range reviews {
		distance := "-"
		if r.DistanceMeters != nil {
			distance = formatMeters(*r.DistanceMeters)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%dd\t%.2f\n",
			r.ReviewedAt.Local().Format("2006-01-02 15:04"), r.Outcome, distance, r.IntervalDays, r.EaseFactor)
	}
	return tw.Flush()
}
