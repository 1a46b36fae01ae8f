package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/ledclock/internal/button"
	"github.com/dokzlo13/ledclock/internal/config"
)

// ButtonService polls the GPIO button and feeds gestures to a handler.
type ButtonService struct {
	cfg     *config.ButtonConfig
	handler button.Handler
	reader  *button.RPIOReader
	wg      sync.WaitGroup
}

// NewButtonService creates a ButtonService. The GPIO is opened on Start.
func NewButtonService(cfg *config.ButtonConfig, handler button.Handler) *ButtonService {
	return &ButtonService{cfg: cfg, handler: handler}
}

// Start opens the pin and starts polling. Without GPIO access the clock
// keeps running without a button.
func (s *ButtonService) Start(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Info().Msg("Button is disabled")
		return
	}

	reader, err := button.OpenRPIO(s.cfg.GPIOPin)
	if err != nil {
		log.Warn().Err(err).Int("pin", s.cfg.GPIOPin).Msg("Button unavailable, continuing without it")
		return
	}
	s.reader = reader

	b := button.New(reader, s.cfg.Debounce, s.cfg.LongPress, func(g button.Gesture) {
		log.Debug().Str("gesture", g.String()).Msg("Button gesture")
		s.handler(g)
	})

	log.Info().
		Int("pin", s.cfg.GPIOPin).
		Dur("debounce", s.cfg.Debounce).
		Dur("long_press", s.cfg.LongPress).
		Msg("Button polling started")
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		b.Run(ctx, s.cfg.PollInterval)
	}()
}

// Close waits for polling to stop and releases the GPIO mapping. The
// context passed to Start must be done first.
func (s *ButtonService) Close() {
	s.wg.Wait()
	if s.reader != nil {
		if err := s.reader.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close GPIO")
		}
	}
}
