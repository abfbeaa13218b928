package server

import (
	"time"

	"github.com/at-ishikawa/geoquiz/internal/card"
	"github.com/at-ishikawa/geoquiz/internal/quiz"
	"github.com/at-ishikawa/geoquiz/internal/statistics"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateCardRequest struct {
	PlaceName string   `json:"place_name"`
	Latitude  *float32 `json:"latitude"`
	Longitude *float32 `json:"longitude"`
}

type AnswerRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type CardResponse struct {
	ID             int64      `json:"id"`
	PlaceName      string     `json:"place_name"`
	Latitude       float32    `json:"latitude"`
	Longitude      float32    `json:"longitude"`
	CreatedAt      time.Time  `json:"created_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	NextReviewAt   time.Time  `json:"next_review_at"`
	EaseFactor     float64    `json:"ease_factor"`
	IntervalDays   int        `json:"interval_days"`
}

func newCardResponse(c card.Card) CardResponse {
	return CardResponse{
		ID:             c.ID,
		PlaceName:      c.PlaceName,
		Latitude:       c.Latitude,
		Longitude:      c.Longitude,
		CreatedAt:      c.CreatedAt,
		LastReviewedAt: c.LastReviewedAt,
		NextReviewAt:   c.NextReviewAt,
		EaseFactor:     c.EaseFactor,
		IntervalDays:   c.IntervalDays,
	}
}

func newCardResponses(cards []card.Card) []CardResponse {
	responses := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		responses = append(responses, newCardResponse(c))
	}
	return responses
}

// QuestionResponse is a card to answer. Its coordinates are left out.
type QuestionResponse struct {
	ID        int64  `json:"id"`
	PlaceName string `json:"place_name"`
}

type AnswerResponse struct {
	Card              CardResponse `json:"card"`
	Correct           bool         `json:"correct"`
	DistanceMeters    float64      `json:"distance_meters"`
	EllipsoidalMeters float64      `json:"ellipsoidal_meters"`
	Outcome           string       `json:"outcome"`
}

func newAnswerResponse(result quiz.AnswerResult) AnswerResponse {
	return AnswerResponse{
		Card:              newCardResponse(result.Card),
		Correct:           result.Evaluation.Correct,
		DistanceMeters:    result.Evaluation.DistanceMeters,
		EllipsoidalMeters: result.EllipsoidalMeters,
		Outcome:           string(result.Outcome),
	}
}

type ReviewResponse struct {
	ID             int64     `json:"id"`
	Outcome        string    `json:"outcome"`
	DistanceMeters *float64  `json:"distance_meters"`
	GuessLatitude  *float32  `json:"guess_latitude"`
	GuessLongitude *float32  `json:"guess_longitude"`
	ReviewedAt     time.Time `json:"reviewed_at"`
	EaseFactor     float64   `json:"ease_factor"`
	IntervalDays   int       `json:"interval_days"`
}

func newReviewResponses(logs []card.ReviewLog) []ReviewResponse {
	responses := make([]ReviewResponse, 0, len(logs))
	for _, l := range logs {
		responses = append(responses, ReviewResponse{
			ID:             l.ID,
			Outcome:        l.Outcome,
			DistanceMeters: l.DistanceMeters,
			GuessLatitude:  l.GuessLatitude,
			GuessLongitude: l.GuessLongitude,
			ReviewedAt:     l.ReviewedAt,
			EaseFactor:     l.EaseFactor,
			IntervalDays:   l.IntervalDays,
		})
	}
	return responses
}

type PeriodStatisticsResponse struct {
	Period             string  `json:"period"`
	Reviews            int     `json:"reviews"`
	Passes             int     `json:"passes"`
	Fails              int     `json:"fails"`
	Crams              int     `json:"crams"`
	UniqueCards        int     `json:"unique_cards"`
	Accuracy           float64 `json:"accuracy"`
	MeanDistanceMeters float64 `json:"mean_distance_meters"`
}

type StatisticsResponse struct {
	Periods []PeriodStatisticsResponse `json:"periods"`
	Total   PeriodStatisticsResponse   `json:"total"`
}

func newStatisticsResponse(result statistics.StatisticsResult) StatisticsResponse {
	periods := make([]PeriodStatisticsResponse, 0, len(result.Periods))
	for _, p := range result.Periods {
		periods = append(periods, PeriodStatisticsResponse{
			Period:             p.Period,
			Reviews:            p.Reviews,
			Passes:             p.Passes,
			Fails:              p.Fails,
			Crams:              p.Crams,
			UniqueCards:        p.UniqueCards,
			Accuracy:           p.Accuracy(),
			MeanDistanceMeters: p.MeanDistanceMeters,
		})
	}
	a := result.Aggregate
	return StatisticsResponse{
		Periods: periods,
		Total: PeriodStatisticsResponse{
			Period:             "total",
			Reviews:            a.Reviews,
			Passes:             a.Passes,
			Fails:              a.Fails,
			Crams:              a.Crams,
			UniqueCards:        a.UniqueCards,
			Accuracy:           a.Accuracy(),
			MeanDistanceMeters: a.MeanDistanceMeters,
		},
	}
}
