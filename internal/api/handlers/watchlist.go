package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/whalewatch/internal/watchlist"
	"github.com/wonny/whalewatch/pkg/logger"
)

// WatchlistHandler handles watchlist endpoints
type WatchlistHandler struct {
	service *watchlist.Service
	logger  *logger.Logger
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(service *watchlist.Service, log *logger.Logger) *WatchlistHandler {
	return &WatchlistHandler{service: service, logger: log}
}

// List returns watched tickers in insertion order
// GET /api/watchlist
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list watchlist")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// AddRequest adds one ticker
type AddRequest struct {
	Ticker string `json:"ticker" validate:"required,max=10"`
}

// Add watches a ticker; 201 when added, 200 when already present
// POST /api/watchlist
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ticker, added, err := h.service.Add(r.Context(), req.Ticker)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	respondJSON(w, status, map[string]interface{}{
		"ticker": ticker,
		"added":  added,
	})
}

// Remove stops watching a ticker
// DELETE /api/watchlist/{ticker}
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ticker, err := h.service.Remove(r.Context(), mux.Vars(r)["ticker"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  ticker,
		"removed": true,
	})
}
