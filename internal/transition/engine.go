// Package transition cycles the panel color through a palette. The engine
// holds a color for a configured interval, then fades to the next palette
// entry over a configured duration using a cubic ease-in-out curve.
package transition

import (
	"math"
	"time"

	"github.com/dokzlo13/ledclock/internal/rgb"
)

// Config controls palette cycling.
type Config struct {
	Enabled                   bool
	IntervalMinutes           float64
	TransitionDurationSeconds float64
	Colors                    []rgb.Color
}

// Interval returns the idle time between transitions.
func (c Config) Interval() time.Duration {
	return saturate(c.IntervalMinutes * float64(time.Minute))
}

// Duration returns the length of one transition.
func (c Config) Duration() time.Duration {
	return saturate(c.TransitionDurationSeconds * float64(time.Second))
}

// saturate converts nanoseconds to a Duration, clamping values that do not
// fit in an int64 instead of letting the conversion wrap.
func saturate(ns float64) time.Duration {
	switch {
	case math.IsNaN(ns):
		return 0
	case ns >= math.MaxInt64:
		return math.MaxInt64
	case ns <= math.MinInt64:
		return math.MinInt64
	}
	return time.Duration(ns)
}

// State is the mutable part of an engine.
type State struct {
	CurrentColorIndex   int
	NextColorIndex      int
	TransitionStartTime time.Time
	IntervalStartTime   time.Time
	IsTransitioning     bool
}

// InitialState returns the state of a freshly built engine.
func InitialState(cfg Config, now time.Time) State {
	return State{
		CurrentColorIndex: 0,
		NextColorIndex:    initialNext(len(cfg.Colors)),
		IntervalStartTime: now,
	}
}

func initialNext(n int) int {
	if n > 1 {
		return 1
	}
	return 0
}

// EventKind identifies an engine event.
type EventKind string

const (
	EventTransitionStarted   EventKind = "transition_started"
	EventTransitionCompleted EventKind = "transition_completed"
)

// Event describes a state change. From is unset for completions.
type Event struct {
	Kind EventKind
	From rgb.Color
	To   rgb.Color
	At   time.Time
}

// Observer receives engine events on the caller's goroutine.
type Observer func(Event)

// Step advances state to now and returns the color to display. It is the
// pure form of Engine.CurrentColor: at most two events (a start followed by
// a completion, for a zero-length transition) are returned.
func Step(cfg Config, st State, now time.Time) (rgb.Color, State, []Event) {
	colors := cfg.Colors
	if !cfg.Enabled || len(colors) == 0 {
		return rgb.White, st, nil
	}
	if len(colors) == 1 {
		return colors[0], st, nil
	}

	var events []Event

	if !st.IsTransitioning && now.Sub(st.IntervalStartTime) >= cfg.Interval() {
		st.IsTransitioning = true
		st.TransitionStartTime = now
		events = append(events, Event{
			Kind: EventTransitionStarted,
			From: colors[st.CurrentColorIndex],
			To:   colors[st.NextColorIndex],
			At:   now,
		})
	}

	if !st.IsTransitioning {
		return colors[st.CurrentColorIndex], st, events
	}

	progress := linearProgress(cfg.Duration(), now.Sub(st.TransitionStartTime))
	if progress >= 1 {
		st.IsTransitioning = false
		st.CurrentColorIndex = st.NextColorIndex
		st.NextColorIndex = (st.NextColorIndex + 1) % len(colors)
		st.IntervalStartTime = now
		final := colors[st.CurrentColorIndex]
		events = append(events, Event{Kind: EventTransitionCompleted, To: final, At: now})
		return final, st, events
	}

	from := colors[st.CurrentColorIndex]
	to := colors[st.NextColorIndex]
	return rgb.Lerp(from, to, Ease(progress)), st, events
}

// linearProgress is elapsed/duration capped at 1. A non-positive duration
// completes immediately.
func linearProgress(duration, elapsed time.Duration) float64 {
	if duration <= 0 {
		return 1
	}
	p := float64(elapsed) / float64(duration)
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithObserver registers an observer for transition events.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// Engine owns one palette cycle. It is not safe for concurrent use; the
// render loop is its only caller.
type Engine struct {
	cfg       Config
	state     State
	now       func() time.Time
	observers []Observer
}

// New creates an engine. The first interval starts now.
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state = InitialState(cfg, e.now())
	return e
}

// CurrentColor advances the engine and returns the color to display.
func (e *Engine) CurrentColor() rgb.Color {
	color, next, events := Step(e.cfg, e.state, e.now())
	e.state = next
	for _, ev := range events {
		e.notify(ev)
	}
	return color
}

// Reset returns to the first palette entry and restarts the interval.
// An in-flight transition is dropped.
func (e *Engine) Reset() {
	e.state = InitialState(e.cfg, e.now())
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	return e.state
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Progress returns the linear progress of the running transition in
// [0,1], or 0 when idle. It does not advance the engine.
func (e *Engine) Progress() float64 {
	if !e.state.IsTransitioning {
		return 0
	}
	return linearProgress(e.cfg.Duration(), e.now().Sub(e.state.TransitionStartTime))
}

func (e *Engine) notify(ev Event) {
	for _, o := range e.observers {
		o(ev)
	}
}
