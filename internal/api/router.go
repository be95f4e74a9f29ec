package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/whalewatch/internal/api/handlers"
	"github.com/wonny/whalewatch/pkg/logger"
)

// Routes groups everything the router serves. History, Metrics and Stream may be nil.
type Routes struct {
	Signals   *handlers.SignalHandler
	History   *handlers.HistoryHandler
	Watchlist *handlers.WatchlistHandler
	Stream    http.Handler
	Metrics   http.Handler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(routes Routes, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	if routes.Metrics != nil {
		r.Handle("/metrics", routes.Metrics).Methods("GET")
	}

	// Alert stream
	if routes.Stream != nil {
		r.Handle("/ws/alerts", routes.Stream).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	// Signal endpoints
	api.HandleFunc("/signals/classify", routes.Signals.Classify).Methods("POST")
	api.HandleFunc("/signals/{ticker}", routes.Signals.GetSignal).Methods("GET")
	if routes.History != nil {
		api.HandleFunc("/signals/{ticker}/history", routes.History.GetHistory).Methods("GET")
	}
	api.HandleFunc("/patterns/{ticker}", routes.Signals.GetPattern).Methods("GET")
	api.HandleFunc("/alerts", routes.Signals.GetAlerts).Methods("GET")

	// Watchlist endpoints
	api.HandleFunc("/watchlist", routes.Watchlist.List).Methods("GET")
	api.HandleFunc("/watchlist", routes.Watchlist.Add).Methods("POST")
	api.HandleFunc("/watchlist/{ticker}", routes.Watchlist.Remove).Methods("DELETE")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": logger.ServiceName,
	})
}

// statusRecorder captures the response code for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// websocket upgrades need the raw writer
			if r.URL.Path == "/ws/alerts" {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
