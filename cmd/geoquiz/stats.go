package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/geoquiz/internal/statistics"
)

func newStatsCommand() *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show monthly review statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if month != 0 && year == 0 {
				return fmt.Errorf("--month requires --year to be specified")
			}
			if month < 0 || month > 12 {
				return fmt.Errorf("--month must be between 1 and 12")
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

			result, err := service.Statistics(cmd.Context(), year, month)
			if err != nil {
				return fmt.Errorf("service.Statistics() > %w", err)
			}
			return writeStatistics(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Filter by year (e.g., 2025)")
	cmd.Flags().IntVar(&month, "month", 0, "Filter by month (1-12), requires --year")

	return cmd
}

func writeStatistics(w io.Writer, result statistics.StatisticsResult) error {
	if len(result.Periods) == 0 {
		_, err := fmt.Fprintln(w, "No reviews")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PERIOD\tREVIEWS\tPASS\tFAIL\tCRAM\tCARDS\tACCURACY\tMEAN DISTANCE")
	for _, p := range result.Periods {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%.0f%%\t%s\n",
			p.Period, p.Reviews, p.Passes, p.Fails, p.Crams, p.UniqueCards, p.Accuracy()*100, formatMeters(p.MeanDistanceMeters))
	}
	a := result.Aggregate
	_, _ = fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%d\t%d\t%d\t%.0f%%\t%s\n",
		a.Reviews, a.Passes, a.Fails, a.Crams, a.UniqueCards, a.Accuracy()*100, formatMeters(a.MeanDistanceMeters))
	return tw.Flush()
}

func formatMeters(meters float64) string {
	return humanize.CommafWithDigits(math.Round(meters), 0) + " m"
}
