package lua

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/dokzlo13/ledclock/internal/eventbus"
	"github.com/dokzlo13/ledclock/internal/lua/modules"
)

// ErrRuntimeClosed is returned when the Lua runtime is closed
var ErrRuntimeClosed = fmt.Errorf("lua runtime closed")

// LuaWork represents work to be executed on the Lua VM
// All Lua execution MUST go through this to ensure thread safety
type LuaWork func(ctx context.Context)

// Runtime manages the Lua VM with single-threaded execution
type Runtime struct {
	L *lua.LState

	clockModule *modules.ClockModule

	// Work queue for thread-safe Lua execution
	workQueue chan LuaWork

	// Shutdown signaling - closing this channel signals senders to stop
	closing   chan struct{}
	closeOnce sync.Once

	// done is closed when Run returns so Close never frees the VM under it
	mu      sync.Mutex
	running bool
	closed  bool
	done    chan struct{}
}

// NewRuntime creates a new Lua runtime with the log, clock and store modules
func NewRuntime(deps RuntimeDeps) *Runtime {
	queueSize := deps.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}

	r := &Runtime{
		L:           lua.NewState(),
		clockModule: modules.NewClockModule(deps.Clock, deps.Palette),
		workQueue:   make(chan LuaWork, queueSize),
		closing:     make(chan struct{}),
		done:        make(chan struct{}),
	}

	r.L.PreloadModule("log", modules.NewLogModule().Loader)
	r.L.PreloadModule("clock", r.clockModule.Loader)
	if deps.Store != nil {
		r.L.PreloadModule("store", modules.NewStoreModule(deps.Store).Loader)
	}

	return r
}

// Close signals the runtime to stop accepting new work and closes the Lua state.
// If Run is active, Close waits for it to drain and return first.
func (r *Runtime) Close() {
	r.closeOnce.Do(func() {
		close(r.closing)

		r.mu.Lock()
		r.closed = true
		running := r.running
		r.mu.Unlock()
		if running {
			<-r.done
		}
		r.L.Close()
	})
}

// Do queues work to be executed on the Lua VM (thread-safe, non-blocking)
// Returns false if the runtime is closing, queue is full, or context is cancelled.
func (r *Runtime) Do(ctx context.Context, work LuaWork) bool {
	select {
	case <-r.closing:
		log.Warn().Msg("Lua runtime closing, dropping work")
		return false
	case <-ctx.Done():
		log.Warn().Msg("Context cancelled, dropping Lua work")
		return false
	default:
	}

	select {
	case r.workQueue <- work:
		return true
	default:
		log.Warn().Msg("Lua work queue full, dropping work")
		return false
	}
}

// DoSync queues work, waits for space and for the work to finish.
func (r *Runtime) DoSync(ctx context.Context, work func(context.Context) error) error {
	done := make(chan error, 1)
	wrapped := LuaWork(func(c context.Context) {
		done <- work(c)
	})

	select {
	case <-r.closing:
		return ErrRuntimeClosed
	case <-ctx.Done():
		return ctx.Err()
	case r.workQueue <- wrapped:
	}

	select {
	case <-r.closing:
		return ErrRuntimeClosed
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// Run starts the Lua worker goroutine - this is the ONLY goroutine that touches Lua
// Exits when context is cancelled or runtime is closed.
func (r *Runtime) Run(ctx context.Context) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()
	defer close(r.done)

	for {
		select {
		case <-ctx.Done():
			r.drainQueue(ctx)
			return
		case <-r.closing:
			r.drainQueue(ctx)
			return
		case work := <-r.workQueue:
			r.executeWork(ctx, work)
		}
	}
}

// drainQueue processes any remaining work in the queue before exiting
func (r *Runtime) drainQueue(ctx context.Context) {
	for {
		select {
		case work := <-r.workQueue:
			r.executeWork(ctx, work)
		default:
			return
		}
	}
}

// executeWork runs a single work item with panic recovery
func (r *Runtime) executeWork(ctx context.Context, work LuaWork) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Interface("panic", rec).
				Msg("Lua work panicked - worker continuing")
		}
	}()
	// Set context on LState so modules can access it via L.Context()
	r.L.SetContext(ctx)
	work(ctx)
}

// LoadScript loads and executes a Lua script (must be called before Run)
func (r *Runtime) LoadScript(path string) error {
	log.Info().Str("path", path).Msg("Loading Lua script")

	if err := r.L.DoFile(path); err != nil {
		return fmt.Errorf("failed to execute Lua script: %w", err)
	}

	log.Info().Int("handlers", r.clockModule.HandlerCount()).Msg("Lua script loaded successfully")
	return nil
}

// LoadString executes Lua source (must be called before Run)
func (r *Runtime) LoadString(source string) error {
	if err := r.L.DoString(source); err != nil {
		return fmt.Errorf("failed to execute Lua source: %w", err)
	}
	return nil
}

// HandlerCount returns the number of clock.on handlers registered by scripts
func (r *Runtime) HandlerCount() int {
	return r.clockModule.HandlerCount()
}

// Dispatch queues the handlers registered for the event type. Each handler
// gets the event data table with "type" and "time" fields added.
func (r *Runtime) Dispatch(ctx context.Context, event eventbus.Event) bool {
	eventType := string(event.Type)
	return r.Do(ctx, func(context.Context) {
		for _, fn := range r.clockModule.Handlers(eventType) {
			data := modules.MapToLuaTable(r.L, event.Data)
			r.L.SetField(data, "type", lua.LString(eventType))
			r.L.SetField(data, "time", lua.LNumber(event.Time.Unix()))

			err := r.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, data)
			if err != nil {
				log.Error().Err(err).Str("event_type", eventType).Msg("Lua handler failed")
			}
		}
	})
}
