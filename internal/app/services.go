package app

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/ledclock/internal/clock"
	"github.com/dokzlo13/ledclock/internal/config"
	"github.com/dokzlo13/ledclock/internal/db"
	"github.com/dokzlo13/ledclock/internal/eventbus"
	"github.com/dokzlo13/ledclock/internal/ledger"
	"github.com/dokzlo13/ledclock/internal/render"
	"github.com/dokzlo13/ledclock/internal/storage"
)

// Services is a container for all application services.
// It manages service initialization order and dependencies.
type Services struct {
	cfg   *config.Config
	RunID string

	// Core infrastructure
	DB       *db.DB
	Store    *storage.Store
	Settings *storage.SettingsStore
	Bus      *eventbus.Bus

	// High-level services
	Clock  *ClockService
	Button *ButtonService
	Ledger *LedgerService
	Lua    *LuaService
	MQTT   *MQTTService
	Health *HealthService

	wg sync.WaitGroup
}

// Options carries values that do not come from the config file.
type Options struct {
	Version string
	Surface render.Surface       // nil = headless log surface
	Button  *config.ButtonConfig // nil = read from environment

	// ResetSettings drops persisted settings before they are loaded
	ResetSettings bool
}

// NewServices creates all services with proper dependency injection.
func NewServices(ctx context.Context, cfg *config.Config, opts Options) (*Services, error) {
	s := &Services{
		cfg:   cfg,
		RunID: uuid.NewString(),
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	s.DB = database

	s.Store = storage.NewStore(database.DB)
	s.Settings = storage.NewSettingsStore(
		s.Store,
		cfg.Database.SettingsWriteRate,
		cfg.Database.SettingsFlushInterval.Duration(),
	)

	if opts.ResetSettings {
		log.Info().Msg("Clearing stored settings")
		if err := s.Settings.Reset(); err != nil {
			log.Warn().Err(err).Msg("Failed to clear stored settings")
		}
	}

	settings, found, err := s.Settings.Load()
	if err != nil {
		s.Close()
		return nil, err
	}
	if !found {
		settings = cfg.InitialSettings()
	}
	log.Info().
		Bool("persisted", found).
		Int("brightness", settings.Brightness).
		Int("fixed_color", settings.FixedColor).
		Msg("Settings loaded")

	s.Bus = eventbus.NewWithConfig(cfg.EventBus.GetWorkers(), cfg.EventBus.GetQueueSize())

	surface := opts.Surface
	if surface == nil {
		surface = render.NewLogSurface(cfg.Display.Width, cfg.Display.Height)
	}

	s.Clock, err = NewClockService(cfg, surface, settings, s.Settings, s.Bus, opts.Version)
	if err != nil {
		s.Close()
		return nil, err
	}

	buttonCfg := opts.Button
	if buttonCfg == nil {
		buttonCfg, err = config.LoadButton(ctx)
		if err != nil {
			s.Close()
			return nil, err
		}
	}
	s.Button = NewButtonService(buttonCfg, s.Clock.Controller.HandleGesture)

	var events *ledger.Ledger
	if cfg.Ledger.IsEnabled() {
		events = ledger.New(database.DB, s.RunID)
		s.Ledger = NewLedgerService(cfg, events)
	}

	if cfg.Script != "" {
		s.Lua = NewLuaService(cfg, s.Clock.Controller, s.Clock.Palette, s.Store)
	}

	s.MQTT = NewMQTTService(cfg, s.RunID)

	s.Health = NewHealthService(cfg, s.Clock.Controller.Snapshot, events)

	return s, nil
}

// Start starts all services in the correct order.
func (s *Services) Start(ctx context.Context) error {
	// Load the script before any event can reach it
	if s.Lua != nil {
		if err := s.Lua.LoadScript(); err != nil {
			return err
		}
		s.Lua.RegisterHandlers(ctx, s.Bus)
	}
	if s.Ledger != nil {
		s.Ledger.RegisterHandlers(s.Bus)
	}
	s.MQTT.Start(s.Bus)

	if s.Lua != nil {
		s.Lua.Start(ctx)
	}
	if s.Ledger != nil {
		s.Ledger.Start(ctx)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Settings.Run(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to flush settings")
		}
	}()

	s.Clock.Start(ctx)
	s.Button.Start(ctx)
	s.Health.Start(ctx)

	return nil
}

// Stop gracefully stops all services. The context passed to Start must be
// done first.
func (s *Services) Stop(ctx context.Context) error {
	s.Button.Close()
	s.Bus.Close(ctx)
	if s.Lua != nil {
		s.Lua.Close()
	}
	s.wg.Wait()

	var err error
	if s.Settings.Pending() {
		err = s.Settings.Flush()
	}

	s.Close()
	return err
}

// Close releases all resources.
func (s *Services) Close() {
	if s.Lua != nil {
		s.Lua.Close()
	}
	if s.MQTT != nil {
		s.MQTT.Close()
	}
	if s.DB != nil {
		s.DB.Close()
	}
}

// Snapshot reports the clock state.
func (s *Services) Snapshot() clock.Snapshot {
	return s.Clock.Controller.Snapshot()
}
