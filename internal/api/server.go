// Package api provides the local ops HTTP server: health, Prometheus
// metrics, trace inspection and a small admin surface over users and the
// credit ledger. It binds to localhost by default and carries no auth —
// do not expose it publicly.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/kdziekansky/telegram2/internal/app/credit"
	"github.com/kdziekansky/telegram2/internal/domain"
	"github.com/kdziekansky/telegram2/internal/infra/observability"
)

// Version is stamped by the build; the CLI overrides it.
var Version = "0.1.0"

// Server is the ops API server.
type Server struct {
	users          domain.UserStore
	ledger         *credit.Ledger
	catalog        *credit.Catalog
	analytics      *credit.Analytics
	tracer         *observability.Tracer
	log            zerolog.Logger
	metricsEnabled bool
}

// NewServer creates an ops server over the bot's stores and services.
func NewServer(users domain.UserStore, ledger *credit.Ledger, catalog *credit.Catalog, analytics *credit.Analytics, tracer *observability.Tracer, log zerolog.Logger) *Server {
	return &Server{
		users:     users,
		ledger:    ledger,
		catalog:   catalog,
		analytics: analytics,
		tracer:    tracer,
		log:       log,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": Version})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/traces", s.handleTraces)
		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/", s.handleUser)
			r.Get("/stats", s.handleUserStats)
			r.Post("/grant", s.handleGrant)
		})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func userID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// handleUser returns the user row, the live balance and the ledger
// reconciliation check (balance == transaction sum).
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := s.users.GetUser(id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	balance, sum, ok, err := s.ledger.Reconcile(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":       user,
		"balance":    balance,
		"ledger_sum": sum,
		"reconciled": ok,
	})
}

// handleUserStats returns lifetime counters, the usage breakdown and the
// depletion forecast over the requested window (?days=N, default 30).
func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		days, err = strconv.Atoi(v)
		if err != nil || days <= 0 {
			writeError(w, http.StatusBadRequest, "invalid days")
			return
		}
	}

	stats, err := s.ledger.Stats(id, 10)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	breakdown, err := s.analytics.UsageBreakdown(id, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	forecast, err := s.analytics.DepletionForecast(id, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stats":     stats,
		"breakdown": breakdown,
		"forecast":  forecast, // null when there is no usage in the window
	})
}

type grantRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// handleGrant credits a user out of band (support compensations, manual
// top-ups). The grant lands in the ledger like any other transaction.
func (s *Server) handleGrant(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Description == "" {
		req.Description = "ops grant"
	}

	newBal, err := s.ledger.Credit(id, req.Amount, req.Description, domain.TxGrant)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			writeError(w, http.StatusBadRequest, "amount must be positive")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Info().Int64("user_id", id).Int64("amount", req.Amount).Msg("ops grant")
	observability.CreditsGranted.WithLabelValues(string(domain.TxGrant)).Add(float64(req.Amount))

	writeJSON(w, http.StatusOK, map[string]any{"balance": newBal})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"packages": s.catalog.Packages(),
		"stars":    s.catalog.StarsOptions(),
	})
}

func (s *Server) handleTraces(w http.ResponseWriter, r *http.Request) {
	if s.tracer == nil {
		writeJSON(w, http.StatusOK, map[string]any{"spans": []any{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": s.tracer.SpanCount(),
		"spans": s.tracer.Spans(100),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}
