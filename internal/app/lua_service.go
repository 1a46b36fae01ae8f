package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/ledclock/internal/config"
	"github.com/dokzlo13/ledclock/internal/eventbus"
	luart "github.com/dokzlo13/ledclock/internal/lua"
	"github.com/dokzlo13/ledclock/internal/lua/modules"
	"github.com/dokzlo13/ledclock/internal/rgb"
)

// LuaService wraps the Lua runtime and routes bus events to script hooks.
type LuaService struct {
	cfg     *config.Config
	Runtime *luart.Runtime
}

// NewLuaService creates a new LuaService.
func NewLuaService(cfg *config.Config, ctrl modules.ClockControl, palette rgb.Palette, store modules.StateStore) *LuaService {
	return &LuaService{
		cfg: cfg,
		Runtime: luart.NewRuntime(luart.RuntimeDeps{
			Clock:     ctrl,
			Palette:   palette,
			Store:     store,
			QueueSize: cfg.EventBus.GetQueueSize(),
		}),
	}
}

// LoadScript loads and executes the hook script.
// Must be called before Start().
func (s *LuaService) LoadScript() error {
	if err := s.Runtime.LoadScript(s.cfg.Script); err != nil {
		return err
	}
	log.Info().
		Str("script", s.cfg.Script).
		Int("handlers", s.Runtime.HandlerCount()).
		Msg("Lua script loaded")
	return nil
}

// RegisterHandlers forwards every bus event to the script.
func (s *LuaService) RegisterHandlers(ctx context.Context, bus *eventbus.Bus) {
	bus.SubscribeAll(func(event eventbus.Event) {
		if !s.Runtime.Dispatch(ctx, event) {
			log.Warn().Str("event_type", string(event.Type)).Msg("Lua queue full or closed, hook dropped")
		}
	})
}

// Start begins the Lua worker goroutine.
func (s *LuaService) Start(ctx context.Context) {
	// The worker is the only goroutine that touches the VM
	go s.Runtime.Run(ctx)
}

// Close closes the Lua runtime.
func (s *LuaService) Close() {
	if s.Runtime != nil {
		s.Runtime.Close()
	}
}
