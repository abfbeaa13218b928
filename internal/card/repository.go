package card

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/geoquiz/internal/database"
)

// ErrNotFound is returned when a card id does not exist in the store.
var ErrNotFound = errors.New("card not found")

//go:generate mockgen -source=repository.go -destination=../mocks/card/mock_repository.go -package=mock_card Repository

// Repository defines operations for managing cards and their review logs.
//
// Updates are last-writer-wins: two answers for the same card computed from the
// same snapshot overwrite each other.
type Repository interface {
	Create(ctx context.Context, c *Card) error
	BatchCreate(ctx context.Context, cards []*Card) error
	Get(ctx context.Context, id int64) (Card, error)
	FindAll(ctx context.Context) ([]Card, error)
	ListDue(ctx context.Context, now time.Time) ([]Card, error)
	Update(ctx context.Context, c Card) (Card, error)
	Delete(ctx context.Context, id int64) error
	SaveReview(ctx context.Context, c Card, log ReviewLog) (Card, error)
	FindReviews(ctx context.Context, cardID int64) ([]ReviewLog, error)
	FindAllReviews(ctx context.Context) ([]ReviewLog, error)
}

const cardColumns = "id, place_name, latitude, longitude, created_at, last_reviewed_at, next_review_at, ease_factor, interval_days"

var insertColumns = []string{"place_name", "latitude", "longitude", "created_at", "last_reviewed_at", "next_review_at", "ease_factor", "interval_days"}

// DBRepository implements Repository using sqlx.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// Create inserts a card and sets its ID.
func (r *DBRepository) Create(ctx context.Context, c *Card) error {
	query := database.BuildMultiRowInsert("cards", insertColumns, 1)
	args := []interface{}{c.PlaceName, c.Latitude, c.Longitude, c.CreatedAt, c.LastReviewedAt, c.NextReviewAt, c.EaseFactor, c.IntervalDays}

	// lib/pq does not implement LastInsertId.
	if r.db.DriverName() == database.DriverPostgres {
		var id int64
		if err := r.db.QueryRowxContext(ctx, r.db.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return fmt.Errorf("insert card: %w", err)
		}
		c.ID = id
		return nil
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get inserted card id: %w", err)
	}
	c.ID = id
	return nil
}

// BatchCreate inserts multiple cards in a single transaction using a multi-row INSERT.
// IDs are not populated.
func (r *DBRepository) BatchCreate(ctx context.Context, cards []*Card) error {
	if len(cards) == 0 {
		return nil
	}

	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		query := database.BuildMultiRowInsert("cards", insertColumns, len(cards))

		var args []interface{}
		for _, c := range cards {
			args = append(args, c.PlaceName, c.Latitude, c.Longitude, c.CreatedAt, c.LastReviewedAt, c.NextReviewAt, c.EaseFactor, c.IntervalDays)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("insert cards: %w", err)
		}
		return nil
	})
}

// Get returns the card with the given id, or ErrNotFound.
func (r *DBRepository) Get(ctx context.Context, id int64) (Card, error) {
	return getCard(ctx, r.db, id)
}

// FindAll returns all cards ordered by id.
func (r *DBRepository) FindAll(ctx context.Context) ([]Card, error) {
	var cards []Card
	if err := r.db.SelectContext(ctx, &cards, "SELECT "+cardColumns+" FROM cards ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load all cards: %w", err)
	}
	return cards, nil
}

// ListDue returns the cards whose next review is at or before now.
func (r *DBRepository) ListDue(ctx context.Context, now time.Time) ([]Card, error) {
	var cards []Card
	query := r.db.Rebind("SELECT " + cardColumns + " FROM cards WHERE next_review_at <= ? ORDER BY next_review_at, id")
	if err := r.db.SelectContext(ctx, &cards, query, now); err != nil {
		return nil, fmt.Errorf("load due cards: %w", err)
	}
	return cards, nil
}

// Update writes the schedule of a card and returns the stored row.
func (r *DBRepository) Update(ctx context.Context, c Card) (Card, error) {
	var updated Card
	err := database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		var err error
		updated, err = updateCard(ctx, tx, c)
		return err
	})
	if err != nil {
		return Card{}, err
	}
	return updated, nil
}

// Delete removes a card. Review logs are removed by the foreign key cascade.
func (r *DBRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM cards WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete card %d: %w", id, err)
	}
	return requireAffected(result, id)
}

// SaveReview updates the card and appends the review log in one transaction.
func (r *DBRepository) SaveReview(ctx context.Context, c Card, log ReviewLog) (Card, error) {
	var updated Card
	err := database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		var err error
		updated, err = updateCard(ctx, tx, c)
		if err != nil {
			return err
		}

		columns := []string{"card_id", "outcome", "distance_meters", "guess_latitude", "guess_longitude", "reviewed_at", "ease_factor", "interval_days"}
		query := database.BuildMultiRowInsert("review_logs", columns, 1)
		if _, err := tx.ExecContext(ctx, tx.Rebind(query),
			c.ID, log.Outcome, log.DistanceMeters, log.GuessLatitude, log.GuessLongitude,
			log.ReviewedAt, updated.EaseFactor, updated.IntervalDays,
		); err != nil {
			return fmt.Errorf("insert review log: %w", err)
		}
		return nil
	})
	if err != nil {
		return Card{}, err
	}
	return updated, nil
}

const reviewLogColumns = "id, card_id, outcome, distance_meters, guess_latitude, guess_longitude, reviewed_at, ease_factor, interval_days"

// FindReviews returns the review logs of a card, newest first.
func (r *DBRepository) FindReviews(ctx context.Context, cardID int64) ([]ReviewLog, error) {
	var logs []ReviewLog
	query := r.db.Rebind("SELECT " + reviewLogColumns + " FROM review_logs WHERE card_id = ? ORDER BY reviewed_at DESC, id DESC")
	if err := r.db.SelectContext(ctx, &logs, query, cardID); err != nil {
		return nil, fmt.Errorf("load review logs of card %d: %w", cardID, err)
	}
	return logs, nil
}

// FindAllReviews returns the review logs of every card, newest first.
func (r *DBRepository) FindAllReviews(ctx context.Context) ([]ReviewLog, error) {
	var logs []ReviewLog
	if err := r.db.SelectContext(ctx, &logs, "SELECT "+reviewLogColumns+" FROM review_logs ORDER BY reviewed_at DESC, id DESC"); err != nil {
		return nil, fmt.Errorf("load review logs: %w", err)
	}
	return logs, nil
}

type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

type execQueryer interface {
	queryer
	sqlx.ExecerContext
}

func getCard(ctx context.Context, q queryer, id int64) (Card, error) {
	var card Card
	err := sqlx.GetContext(ctx, q, &card, q.Rebind("SELECT "+cardColumns+" FROM cards WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return Card{}, fmt.Errorf("card %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Card{}, fmt.Errorf("load card %d: %w", id, err)
	}
	return card, nil
}

func updateCard(ctx context.Context, q execQueryer, card Card) (Card, error) {
	result, err := q.ExecContext(ctx, q.Rebind(`UPDATE cards
		SET last_reviewed_at = ?, next_review_at = ?, ease_factor = ?, interval_days = ?
		WHERE id = ?`),
		card.LastReviewedAt, card.NextReviewAt, card.EaseFactor, card.IntervalDays, card.ID,
	)
	if err != nil {
		return Card{}, fmt.Errorf("update card %d: %w", card.ID, err)
	}
	if err := requireAffected(result, card.ID); err != nil {
		return Card{}, err
	}
	return getCard(ctx, q, card.ID)
}

func requireAffected(result sql.Result, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for card %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("card %d: %w", id, ErrNotFound)
	}
	return nil
}
