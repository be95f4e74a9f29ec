package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/whalewatch/internal/contracts"
	"github.com/wonny/whalewatch/internal/pattern"
	"github.com/wonny/whalewatch/pkg/logger"
)

// Analyzer runs the volume pipeline
type Analyzer interface {
	Analyze(ctx context.Context, ticker string) (*contracts.Analysis, error)
	Evaluate(snapshot contracts.StockSnapshot) (*contracts.Analysis, error)
}

// Publisher receives fresh analysis results (the alert stream)
type Publisher interface {
	Publish(ticker string, signal *contracts.VolumeSignal, alerts []contracts.PatternAlert)
}

// SignalHandler handles signal, pattern and alert endpoints
// ⭐ SSOT: 시그널 API 핸들러는 이 구조체에서만
type SignalHandler struct {
	analyzer  Analyzer
	publisher Publisher
	logger    *logger.Logger
}

// NewSignalHandler creates a new signal handler. publisher may be nil.
func NewSignalHandler(analyzer Analyzer, publisher Publisher, log *logger.Logger) *SignalHandler {
	return &SignalHandler{
		analyzer:  analyzer,
		publisher: publisher,
		logger:    log,
	}
}

// GetSignal fetches and classifies a ticker
// GET /api/signals/{ticker}
func (h *SignalHandler) GetSignal(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	analysis, err := h.analyzer.Analyze(r.Context(), ticker)
	if err != nil {
		h.logger.WithTicker(ticker).WithError(err).Warn("Signal lookup failed")
		respondServiceError(w, err)
		return
	}

	h.publish(analysis)
	respondJSON(w, http.StatusOK, analysis)
}

// ClassifyRequest is a caller-supplied snapshot
type ClassifyRequest struct {
	Ticker        string  `json:"ticker" validate:"required,max=10"`
	CurrentVolume int64   `json:"current_volume" validate:"gte=0"`
	AverageVolume int64   `json:"average_volume" validate:"required,gt=0"`
	PriceChange   float64 `json:"price_change"`
}

// Classify evaluates a snapshot without fetching market data
// POST /api/signals/classify
func (h *SignalHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ticker, err := contracts.NormalizeTicker(req.Ticker)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	analysis, err := h.analyzer.Evaluate(contracts.StockSnapshot{
		Ticker:        ticker,
		CurrentVolume: req.CurrentVolume,
		AverageVolume: req.AverageVolume,
		PriceChange:   req.PriceChange,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, analysis)
}

// GetPattern returns historical pattern stats for a ticker.
// With ?status= the stats are synthesized directly; otherwise the ticker is
// classified first.
// GET /api/patterns/{ticker}
func (h *SignalHandler) GetPattern(w http.ResponseWriter, r *http.Request) {
	ticker, err := contracts.NormalizeTicker(mux.Vars(r)["ticker"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := contracts.ParseStatus(raw)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		p, err := pattern.Synthesize(status, ticker)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, p)
		return
	}

	analysis, err := h.analyzer.Analyze(r.Context(), ticker)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, analysis.Pattern)
}

// GetAlerts returns pattern alerts for ?ticker=, or the example alerts
// when no ticker is given
// GET /api/alerts
func (h *SignalHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		respondJSON(w, http.StatusOK, pattern.DeriveAlerts(nil, ""))
		return
	}

	analysis, err := h.analyzer.Analyze(r.Context(), ticker)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.publish(analysis)
	respondJSON(w, http.StatusOK, analysis.Alerts)
}

func (h *SignalHandler) publish(analysis *contracts.Analysis) {
	if h.publisher == nil {
		return
	}
	h.publisher.Publish(analysis.Snapshot.Ticker, &analysis.Signal, analysis.Alerts)
}
