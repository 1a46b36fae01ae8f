package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/ledclock/internal/config"
	"github.com/dokzlo13/ledclock/internal/eventbus"
	"github.com/dokzlo13/ledclock/internal/ledger"
)

// LedgerService records bus events and prunes old entries.
type LedgerService struct {
	cfg    *config.Config
	Ledger *ledger.Ledger
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(cfg *config.Config, l *ledger.Ledger) *LedgerService {
	return &LedgerService{cfg: cfg, Ledger: l}
}

// RegisterHandlers appends every bus event to the ledger.
func (s *LedgerService) RegisterHandlers(bus *eventbus.Bus) {
	bus.SubscribeAll(s.record)
}

func (s *LedgerService) record(event eventbus.Event) {
	if _, err := s.Ledger.AppendAt(string(event.Type), event.Time, event.Data); err != nil {
		log.Error().Err(err).Str("event_type", string(event.Type)).Msg("Failed to record event")
	}
}

// Start begins periodic cleanup.
func (s *LedgerService) Start(ctx context.Context) {
	go s.runCleanup(ctx)
}

func (s *LedgerService) runCleanup(ctx context.Context) {
	interval := s.cfg.Ledger.CleanupInterval.Duration()
	retention := time.Duration(s.cfg.Ledger.RetentionDays) * 24 * time.Hour

	log.Info().
		Dur("interval", interval).
		Int("retention_days", s.cfg.Ledger.RetentionDays).
		Msg("Ledger cleanup started")

	s.cleanup(retention)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup(retention)
		}
	}
}

func (s *LedgerService) cleanup(retention time.Duration) {
	deleted, err := s.Ledger.DeleteOlderThan(retention)
	if err != nil {
		log.Error().Err(err).Msg("Failed to cleanup ledger")
		return
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Msg("Cleaned up old ledger entries")
	}
}
