// Package statistics summarizes review logs per month.
package statistics

import (
	"fmt"
	"sort"

	"github.com/at-ishikawa/geoquiz/internal/card"
	"github.com/at-ishikawa/geoquiz/internal/srs"
)

// ReviewStatistics holds statistics for a month such as "2025-01".
type ReviewStatistics struct {
	Period      string
	Reviews     int
	Passes      int
	Fails       int
	Crams       int
	UniqueCards int
	// MeanDistanceMeters averages the answers that have a distance. Cram reviews without a guess have none.
	MeanDistanceMeters float64
}

// Accuracy is the share of passes among passed and failed reviews.
func (s ReviewStatistics) Accuracy() float64 {
	return accuracy(s.Passes, s.Fails)
}

// AggregateStatistics holds totals across all periods with global unique counts
type AggregateStatistics struct {
	Reviews            int
	Passes             int
	Fails              int
	Crams              int
	UniqueCards        int
	MeanDistanceMeters float64
}

func (s AggregateStatistics) Accuracy() float64 {
	return accuracy(s.Passes, s.Fails)
}

// StatisticsResult holds both per-period and aggregate statistics
type StatisticsResult struct {
	Periods   []ReviewStatistics
	Aggregate AggregateStatistics
}

type periodData struct {
	reviews, passes, fails, crams int
	cards                         map[int64]struct{}
	distanceSum                   float64
	distanceCount                 int
}

func newPeriodData() *periodData {
	return &periodData{cards: make(map[int64]struct{})}
}

func (d *periodData) add(log card.ReviewLog) {
	d.reviews++
	switch srs.Outcome(log.Outcome) {
	case srs.OutcomePass:
		d.passes++
	case srs.OutcomeFail:
		d.fails++
	case srs.OutcomeCram:
		d.crams++
	}
	d.cards[log.CardID] = struct{}{}
	if log.DistanceMeters != nil {
		d.distanceSum += *log.DistanceMeters
		d.distanceCount++
	}
}

func (d *periodData) meanDistance() float64 {
	if d.distanceCount == 0 {
		return 0
	}
	return d.distanceSum / float64(d.distanceCount)
}

// CalculateStatistics groups review logs by the UTC month they were recorded in.
// It accepts optional year and month filters (0 means no filter).
func CalculateStatistics(logs []card.ReviewLog, year, month int) StatisticsResult {
	stats := make(map[string]*periodData)
	total := newPeriodData()

	for _, log := range logs {
		reviewedAt := log.ReviewedAt.UTC()
		if !matchesFilter(reviewedAt.Year(), int(reviewedAt.Month()), year, month) {
			continue
		}

		period := fmt.Sprintf("%d-%02d", reviewedAt.Year(), int(reviewedAt.Month()))
		if stats[period] == nil {
			stats[period] = newPeriodData()
		}
		stats[period].add(log)
		total.add(log)
	}

	return buildResult(stats, total)
}

func matchesFilter(logYear, logMonth, filterYear, filterMonth int) bool {
	if filterYear == 0 {
		return true
	}
	if logYear != filterYear {
		return false
	}
	if filterMonth == 0 {
		return true
	}
	return logMonth == filterMonth
}

func buildResult(stats map[string]*periodData, total *periodData) StatisticsResult {
	periods := make([]ReviewStatistics, 0, len(stats))
	for period, data := range stats {
		periods = append(periods, ReviewStatistics{
			Period:             period,
			Reviews:            data.reviews,
			Passes:             data.passes,
			Fails:              data.fails,
			Crams:              data.crams,
			UniqueCards:        len(data.cards),
			MeanDistanceMeters: data.meanDistance(),
		})
	}

	// Sort by period descending (newest first)
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Period > periods[j].Period
	})

	return StatisticsResult{
		Periods: periods,
		Aggregate: AggregateStatistics{
			Reviews:            total.reviews,
			Passes:             total.passes,
			Fails:              total.fails,
			Crams:              total.crams,
			UniqueCards:        len(total.cards),
			MeanDistanceMeters: total.meanDistance(),
		},
	}
}

func accuracy(passes, fails int) float64 {
	if passes+fails == 0 {
		return 0
	}
	return float64(passes) / float64(passes+fails)
}
