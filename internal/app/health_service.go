package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/ledclock/internal/clock"
	"github.com/dokzlo13/ledclock/internal/config"
	"github.com/dokzlo13/ledclock/internal/ledger"
)

const defaultEventsLimit = 50

// HealthService provides HTTP health check and status endpoints.
type HealthService struct {
	cfg    *config.Config
	state  func() clock.Snapshot
	ledger *ledger.Ledger
	server *http.Server
}

// NewHealthService creates a new HealthService. l may be nil when the
// ledger is disabled.
func NewHealthService(cfg *config.Config, state func() clock.Snapshot, l *ledger.Ledger) *HealthService {
	return &HealthService{
		cfg:    cfg,
		state:  state,
		ledger: l,
	}
}

// Start begins the health check server if enabled.
func (s *HealthService) Start(ctx context.Context) {
	if !s.cfg.Healthcheck.Enabled {
		return
	}

	go s.run(ctx)
}

// Handler returns the HTTP routes.
func (s *HealthService) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	// Ready once the first frame reached the panel
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if s.state().Frames == 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	mux.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.state())
	})

	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		if s.ledger == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "ledger disabled"})
			return
		}

		limit := defaultEventsLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
				return
			}
			limit = n
		}

		var (
			entries []*ledger.Entry
			err     error
		)
		if eventType := r.URL.Query().Get("type"); eventType != "" {
			entries, err = s.ledger.GetByType(eventType, limit)
		} else {
			entries, err = s.ledger.Recent(limit)
		}
		if err != nil {
			log.Error().Err(err).Msg("Failed to read ledger")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if entries == nil {
			entries = []*ledger.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	})

	return mux
}

func (s *HealthService) run(ctx context.Context) {
	addr := fmt.Sprintf("%s:%d", s.cfg.Healthcheck.Host, s.cfg.Healthcheck.Port)

	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	log.Info().Str("addr", addr).Msg("Starting health check server")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout.Duration())
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Health check server shutdown error")
		}
	}()

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("Health check server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("Failed to write response")
	}
}
