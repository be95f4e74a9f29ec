package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/whalewatch/internal/history"
	"github.com/wonny/whalewatch/pkg/logger"
)

// maxHistoryLimit caps ?limit= on history lookups
const maxHistoryLimit = 500

// HistoryReader returns recorded analyses for a ticker
type HistoryReader interface {
	History(ctx context.Context, ticker string, limit int) ([]history.Record, error)
}

// HistoryHandler serves past classifications
type HistoryHandler struct {
	reader HistoryReader
	logger *logger.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(reader HistoryReader, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{reader: reader, logger: log}
}

// GetHistory returns the latest recorded signals for a ticker, newest first
// GET /api/signals/{ticker}/history?limit=20
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := history.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	ticker := mux.Vars(r)["ticker"]
	records, err := h.reader.History(r.Context(), ticker, limit)
	if err != nil {
		h.logger.WithTicker(ticker).WithError(err).Warn("History lookup failed")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  ticker,
		"records": records,
		"count":   len(records),
	})
}
