// Package server exposes the quiz over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/at-ishikawa/geoquiz/internal/card"
	"github.com/at-ishikawa/geoquiz/internal/geo"
	"github.com/at-ishikawa/geoquiz/internal/quiz"
	"github.com/at-ishikawa/geoquiz/internal/statistics"
)

// Service is implemented by *quiz.Service.
type Service interface {
	Create(ctx context.Context, place quiz.Place) (card.Card, error)
	Get(ctx context.Context, id int64) (card.Card, error)
	List(ctx context.Context) ([]card.Card, error)
	Delete(ctx context.Context, id int64) error
	Next(ctx context.Context, excludeID *int64) (card.Card, bool, error)
	Answer(ctx context.Context, id int64, guess geo.Point) (quiz.AnswerResult, error)
	Cram(ctx context.Context, id int64) (card.Card, error)
	History(ctx context.Context, id int64) ([]card.ReviewLog, error)
	Statistics(ctx context.Context, year, month int) (statistics.StatisticsResult, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the card and quiz endpoints.
// answerLimit wraps the endpoints that record reviews.
func (h *Handler) RegisterRoutes(api *mux.Router, answerLimit mux.MiddlewareFunc) {
	api.HandleFunc("/cards", h.ListCards).Methods(http.MethodGet)
	api.HandleFunc("/cards", h.CreateCard).Methods(http.MethodPost)
	api.HandleFunc("/cards/{id}", h.GetCard).Methods(http.MethodGet)
	api.HandleFunc("/cards/{id}", h.DeleteCard).Methods(http.MethodDelete)
	api.HandleFunc("/cards/{id}/reviews", h.ListReviews).Methods(http.MethodGet)
	api.HandleFunc("/quiz/next", h.NextQuestion).Methods(http.MethodGet)
	api.HandleFunc("/stats", h.Statistics).Methods(http.MethodGet)

	api.Handle("/cards/{id}/answer", answerLimit(http.HandlerFunc(h.Answer))).Methods(http.MethodPost)
	api.Handle("/cards/{id}/cram", answerLimit(http.HandlerFunc(h.Cram))).Methods(http.MethodPost)
}

func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCardResponses(cards))
}

func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "latitude and longitude are required"})
		return
	}

	c, err := h.service.Create(r.Context(), quiz.Place{
		Name:      req.PlaceName,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCardResponse(c))
}

func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, ok := cardID(w, r)
	if !ok {
		return
	}

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCardResponse(c))
}

func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, ok := cardID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := cardID(w, r)
	if !ok {
		return
	}

	logs, err := h.service.History(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newReviewResponses(logs))
}

// NextQuestion returns a random due card, or 204 when nothing is due.
func (h *Handler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	var excludeID *int64
	if raw := r.URL.Query().Get("exclude"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid exclude id"})
			return
		}
		excludeID = &id
	}

	c, ok, err := h.service.Next(r.Context(), excludeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, QuestionResponse{ID: c.ID, PlaceName: c.PlaceName})
}

func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	id, ok := cardID(w, r)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "latitude and longitude are required"})
		return
	}

	result, err := h.service.Answer(r.Context(), id, geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAnswerResponse(result))
}

func (h *Handler) Cram(w http.ResponseWriter, r *http.Request) {
	id, ok := cardID(w, r)
	if !ok {
		return
	}

	c, err := h.service.Cram(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCardResponse(c))
}

// Statistics accepts optional year and month query parameters.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	year, err := intQuery(r, "year")
	if err != nil || year < 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid year"})
		return
	}
	month, err := intQuery(r, "month")
	if err != nil || month < 0 || month > 12 || (month != 0 && year == 0) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid month"})
		return
	}

	result, err := h.service.Statistics(r.Context(), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newStatisticsResponse(result))
}

func intQuery(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func cardID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid card id"})
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, card.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Card not found"})
	case errors.Is(err, quiz.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		slog.Default().ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode response", "error", err)
	}
}
