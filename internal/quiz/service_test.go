package quiz

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/geoquiz/internal/card"
	"github.com/at-ishikawa/geoquiz/internal/geo"
	mock_card "github.com/at-ishikawa/geoquiz/internal/mocks/card"
	"github.com/at-ishikawa/geoquiz/internal/srs"
)

func newTestService(t *testing.T) (*Service, *mock_card.MockRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mock_card.NewMockRepository(ctrl)
	return NewService(repo, FixedClock(now), indexRandom(0)), repo
}

func tokyoCard(nextReviewAt time.Time) card.Card {
	return card.Card{
		ID:           1,
		PlaceName:    "Tokyo",
		Latitude:     35.6895,
		Longitude:    139.6917,
		CreatedAt:    now.Add(-30 * 24 * time.Hour),
		NextReviewAt: nextReviewAt,
		EaseFactor:   2.0,
		IntervalDays: 10,
	}
}

// saveReturnsInput makes SaveReview echo the card it was given.
func saveReturnsInput(t *testing.T, wantOutcome srs.Outcome) func(context.Context, card.Card, card.ReviewLog) (card.Card, error) {
	return func(_ context.Context, c card.Card, log card.ReviewLog) (card.Card, error) {
		assert.Equal(t, c.ID, log.CardID)
		assert.Equal(t, string(wantOutcome), log.Outcome)
		assert.Equal(t, now, log.ReviewedAt)
		return c, nil
	}
}

func TestService_Answer(t *testing.T) {
	tests := []struct {
		name         string
		card         card.Card
		guess        geo.Point
		wantOutcome  srs.Outcome
		wantCorrect  bool
		wantInterval int
		wantEase     float64
		wantNext     time.Time
	}{
		{
			name:         "correct answer on a due card passes",
			card:         tokyoCard(now.Add(-time.Hour)),
			guess:        geo.Point{Latitude: 35.6895, Longitude: 139.6917},
			wantOutcome:  srs.OutcomePass,
			wantCorrect:  true,
			wantInterval: 20,
			wantEase:     2.1,
			wantNext:     now.Add(20 * 24 * time.Hour),
		},
		{
			name:         "wrong answer fails",
			card:         tokyoCard(now.Add(-time.Hour)),
			guess:        geo.Point{Latitude: 35.6895, Longitude: 139.7017},
			wantOutcome:  srs.OutcomeFail,
			wantCorrect:  false,
			wantInterval: 5,
			wantEase:     1.8,
			wantNext:     now.Add(5 * time.Minute),
		},
		{
			name:         "correct answer before the card is due is cramming",
			card:         tokyoCard(now.Add(72 * time.Hour)),
			guess:        geo.Point{Latitude: 35.6896, Longitude: 139.6917},
			wantOutcome:  srs.OutcomeCram,
			wantCorrect:  true,
			wantInterval: 10,
			wantEase:     2.0,
			wantNext:     now.Add(10 * 24 * time.Hour),
		},
		{
			name:         "wrong answer before the card is due still fails",
			card:         tokyoCard(now.Add(72 * time.Hour)),
			guess:        geo.Point{Latitude: 0, Longitude: 0},
			wantOutcome:  srs.OutcomeFail,
			wantCorrect:  false,
			wantInterval: 5,
			wantEase:     1.8,
			wantNext:     now.Add(5 * time.Minute),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo := newTestService(t)
			repo.EXPECT().Get(gomock.Any(), int64(1)).Return(tt.card, nil)
			repo.EXPECT().SaveReview(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(saveReturnsInput(t, tt.wantOutcome))

			got, err := service.Answer(context.Background(), 1, tt.guess)
			require.NoError(t, err)

			assert.Equal(t, tt.wantOutcome, got.Outcome)
			assert.Equal(t, tt.wantCorrect, got.Evaluation.Correct)
			assert.Equal(t, tt.wantInterval, got.Card.IntervalDays)
			assert.InDelta(t, tt.wantEase, got.Card.EaseFactor, 1e-9)
			assert.Equal(t, tt.wantNext, got.Card.NextReviewAt)
			require.NotNil(t, got.Card.LastReviewedAt)
			assert.Equal(t, now, *got.Card.LastReviewedAt)
			assert.False(t, math.IsNaN(got.EllipsoidalMeters))
		})
	}
}

func TestService_Answer_RecordsGuess(t *testing.T) {
	service, repo := newTestService(t)
	repo.EXPECT().Get(gomock.Any(), int64(1)).Return(tokyoCard(now), nil)
	repo.EXPECT().SaveReview(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c card.Card, log card.ReviewLog) (card.Card, error) {
			require.NotNil(t, log.DistanceMeters)
			require.NotNil(t, log.GuessLatitude)
			require.NotNil(t, log.GuessLongitude)
			assert.InDelta(t, 903, *log.DistanceMeters, 3)
			assert.Equal(t, float32(35.6895), *log.GuessLatitude)
			assert.Equal(t, float32(139.7017), *log.GuessLongitude)
			return c, nil
		})

	_, err := service.Answer(context.Background(), 1, geo.Point{Latitude: 35.6895, Longitude: 139.7017})
	require.NoError(t, err)
}

func TestService_Answer_Errors(t *testing.T) {
	storeErr := errors.New("connection refused")

	tests := []struct {
		name    string
		guess   geo.Point
		setup   func(repo *mock_card.MockRepository)
		wantErr error
	}{
		{
			name:    "NaN latitude",
			guess:   geo.Point{Latitude: math.NaN(), Longitude: 0},
			setup:   func(repo *mock_card.MockRepository) {},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "infinite longitude",
			guess:   geo.Point{Latitude: 0, Longitude: math.Inf(-1)},
			setup:   func(repo *mock_card.MockRepository) {},
			wantErr: ErrInvalidInput,
		},
		{
			name:  "card not found",
			guess: geo.Point{Latitude: 0, Longitude: 0},
			setup: func(repo *mock_card.MockRepository) {
				repo.EXPECT().Get(gomock.Any(), int64(1)).Return(card.Card{}, card.ErrNotFound)
			},
			wantErr: card.ErrNotFound,
		},
		{
			name:  "store failure on save",
			guess: geo.Point{Latitude: 0, Longitude: 0},
			setup: func(repo *mock_card.MockRepository) {
				repo.EXPECT().Get(gomock.Any(), int64(1)).Return(tokyoCard(now), nil)
				repo.EXPECT().SaveReview(gomock.Any(), gomock.Any(), gomock.Any()).Return(card.Card{}, storeErr)
			},
			wantErr: storeErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo := newTestService(t)
			tt.setup(repo)

			_, err := service.Answer(context.Background(), 1, tt.guess)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_Cram(t *testing.T) {
	service, repo := newTestService(t)
	repo.EXPECT().Get(gomock.Any(), int64(1)).Return(tokyoCard(now.Add(72*time.Hour)), nil)
	repo.EXPECT().SaveReview(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c card.Card, log card.ReviewLog) (card.Card, error) {
			assert.Equal(t, string(srs.OutcomeCram), log.Outcome)
			assert.Nil(t, log.DistanceMeters)
			return c, nil
		})

	got, err := service.Cram(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 10, got.IntervalDays)
	assert.Equal(t, 2.0, got.EaseFactor)
	assert.Equal(t, now.Add(10*24*time.Hour), got.NextReviewAt)
}

func TestService_Next(t *testing.T) {
	tests := []struct {
		name      string
		due       []card.Card
		excludeID *int64
		wantID    int64
		wantOK    bool
	}{
		{
			name:   "picks a due card",
			due:    testCards()[:1],
			wantID: 1,
			wantOK: true,
		},
		{
			name:      "skips the excluded card",
			due:       []card.Card{testCards()[0], testCards()[2]},
			excludeID: int64Ptr(1),
			wantID:    3,
			wantOK:    true,
		},
		{
			name:   "nothing due",
			due:    nil,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo := newTestService(t)
			repo.EXPECT().ListDue(gomock.Any(), now).Return(tt.due, nil)

			got, ok, err := service.Next(context.Background(), tt.excludeID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name    string
		place   Place
		setup   func(repo *mock_card.MockRepository)
		wantErr error
	}{
		{
			name:  "new card is due now",
			place: Place{Name: " Reykjavik ", Latitude: 64.1466, Longitude: -21.9426},
			setup: func(repo *mock_card.MockRepository) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *card.Card) error {
					assert.Equal(t, "Reykjavik", c.PlaceName)
					assert.Equal(t, now, c.CreatedAt)
					assert.Equal(t, now, c.NextReviewAt)
					assert.Equal(t, srs.InitialEase, c.EaseFactor)
					c.ID = 42
					return nil
				})
			},
		},
		{
			name:    "empty name",
			place:   Place{Name: "  ", Latitude: 1, Longitude: 1},
			setup:   func(repo *mock_card.MockRepository) {},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "NaN coordinates",
			place:   Place{Name: "Nowhere", Latitude: float32(math.NaN()), Longitude: 1},
			setup:   func(repo *mock_card.MockRepository) {},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo := newTestService(t)
			tt.setup(repo)

			got, err := service.Create(context.Background(), tt.place)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(42), got.ID)
		})
	}
}

func TestService_Import(t *testing.T) {
	t.Run("all places are created in one batch", func(t *testing.T) {
		service, repo := newTestService(t)
		repo.EXPECT().BatchCreate(gomock.Any(), gomock.Len(2)).DoAndReturn(func(_ context.Context, cards []*card.Card) error {
			assert.Equal(t, "Cairo", cards[0].PlaceName)
			assert.Equal(t, "Nairobi", cards[1].PlaceName)
			return nil
		})

		got, err := service.Import(context.Background(), []Place{
			{Name: "Cairo", Latitude: 30.0444, Longitude: 31.2357},
			{Name: "Nairobi", Latitude: -1.2921, Longitude: 36.8219},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, got)
	})

	t.Run("an invalid place stores nothing", func(t *testing.T) {
		service, _ := newTestService(t)

		_, err := service.Import(context.Background(), []Place{
			{Name: "Cairo", Latitude: 30.0444, Longitude: 31.2357},
			{Name: "", Latitude: 0, Longitude: 0},
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.ErrorContains(t, err, "place #2")
	})
}

func TestService_History(t *testing.T) {
	t.Run("reviews of an existing card", func(t *testing.T) {
		service, repo := newTestService(t)
		logs := []card.ReviewLog{{ID: 2, CardID: 1, Outcome: "pass"}, {ID: 1, CardID: 1, Outcome: "fail"}}
		repo.EXPECT().Get(gomock.Any(), int64(1)).Return(tokyoCard(now), nil)
		repo.EXPECT().FindReviews(gomock.Any(), int64(1)).Return(logs, nil)

		got, err := service.History(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, logs, got)
	})

	t.Run("unknown card", func(t *testing.T) {
		service, repo := newTestService(t)
		repo.EXPECT().Get(gomock.Any(), int64(7)).Return(card.Card{}, card.ErrNotFound)

		_, err := service.History(context.Background(), 7)
		assert.ErrorIs(t, err, card.ErrNotFound)
	})
}

func TestService_Statistics(t *testing.T) {
	t.Run("reviews grouped by month", func(t *testing.T) {
		service, repo := newTestService(t)
		repo.EXPECT().FindAllReviews(gomock.Any()).Return([]card.ReviewLog{
			{CardID: 1, Outcome: "pass", ReviewedAt: now},
			{CardID: 2, Outcome: "fail", ReviewedAt: now.AddDate(0, -1, 0)},
		}, nil)

		got, err := service.Statistics(context.Background(), now.Year(), int(now.Month()))
		require.NoError(t, err)
		require.Len(t, got.Periods, 1)
		assert.Equal(t, 1, got.Periods[0].Passes)
		assert.Equal(t, 1, got.Aggregate.Reviews)
	})

	t.Run("store error", func(t *testing.T) {
		service, repo := newTestService(t)
		storeErr := errors.New("connection refused")
		repo.EXPECT().FindAllReviews(gomock.Any()).Return(nil, storeErr)

		_, err := service.Statistics(context.Background(), 0, 0)
		assert.ErrorIs(t, err, storeErr)
	})
}
