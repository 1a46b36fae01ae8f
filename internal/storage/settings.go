package storage

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/dokzlo13/ledclock/internal/clock"
)

const (
	settingsKind = "settings"
	settingsID   = "clock"
)

// SettingsStore persists clock settings. Writes are rate limited so a
// burst of button presses produces one write per limiter token; the last
// value wins and is flushed by Run.
type SettingsStore struct {
	store   *Store
	limiter *rate.Limiter

	mu      sync.Mutex
	pending *clock.Settings

	flushInterval time.Duration
}

// NewSettingsStore creates a settings store allowing writesPerSecond
// immediate writes. Throttled writes are flushed every flushInterval.
func NewSettingsStore(store *Store, writesPerSecond float64, flushInterval time.Duration) *SettingsStore {
	if writesPerSecond <= 0 {
		writesPerSecond = 1
	}
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	burst := int(writesPerSecond)
	if burst < 1 {
		burst = 1
	}

	return &SettingsStore{
		store:         store,
		limiter:       rate.NewLimiter(rate.Limit(writesPerSecond), burst),
		flushInterval: flushInterval,
	}
}

// Load returns the persisted settings. It reports false when nothing was
// saved yet.
func (s *SettingsStore) Load() (clock.Settings, bool, error) {
	var settings clock.Settings
	found, err := s.store.GetJSON(settingsKind, settingsID, &settings)
	if err != nil || !found {
		return clock.DefaultSettings(), false, err
	}
	return settings, true, nil
}

// SaveSettings implements clock.SettingsSink.
func (s *SettingsStore) SaveSettings(settings clock.Settings) {
	s.mu.Lock()
	s.pending = &settings
	s.mu.Unlock()

	if !s.limiter.Allow() {
		log.Debug().Msg("Settings write throttled")
		return
	}
	if err := s.Flush(); err != nil {
		log.Error().Err(err).Msg("Failed to save settings")
	}
}

// Flush writes the pending settings, if any.
func (s *SettingsStore) Flush() error {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if pending == nil {
		return nil
	}
	if err := s.store.SetJSON(settingsKind, settingsID, pending); err != nil {
		s.mu.Lock()
		if s.pending == nil {
			s.pending = pending
		}
		s.mu.Unlock()
		return err
	}

	log.Debug().
		Int("brightness", pending.Brightness).
		Int("fixed_color", pending.FixedColor).
		Msg("Settings saved")
	return nil
}

// Pending reports whether a throttled write is waiting.
func (s *SettingsStore) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Reset deletes the persisted settings.
func (s *SettingsStore) Reset() error {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
	return s.store.Delete(settingsKind, settingsID)
}

// Run flushes throttled writes until ctx is done, then flushes once more.
func (s *SettingsStore) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := s.Flush(); err != nil {
				log.Error().Err(err).Msg("Failed to flush settings on shutdown")
			}
			return nil
		case <-ticker.C:
			if err := s.Flush(); err != nil {
				log.Error().Err(err).Msg("Failed to flush settings")
			}
		}
	}
}
