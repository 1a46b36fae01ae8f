// Package button turns the raw level of a pull-up push button into tap and
// long-press events.
package button

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Level is the pin level. With the pull-up enabled the pin reads Low while
// the button is held.
type Level int

const (
	Low  Level = 0
	High Level = 1
)

// Reader reads the current pin level.
type Reader interface {
	Read() (Level, error)
}

// Gesture is a classified press.
type Gesture int

const (
	GestureNone Gesture = iota
	GestureTap
	GestureLongPress
)

// String returns a human-readable name for the gesture.
func (g Gesture) String() string {
	switch g {
	case GestureNone:
		return "none"
	case GestureTap:
		return "tap"
	case GestureLongPress:
		return "long_press"
	default:
		return "unknown"
	}
}

// Handler is called once per classified press.
type Handler func(Gesture)

// Button detects press and release edges and classifies each press by its
// duration. Presses shorter than the debounce time are dropped.
type Button struct {
	reader    Reader
	debounce  time.Duration
	longPress time.Duration
	handler   Handler

	lastLevel  Level
	pressStart time.Time
	pressed    bool
}

// New creates a button. The pin is assumed released at start.
func New(reader Reader, debounce, longPress time.Duration, handler Handler) *Button {
	return &Button{
		reader:    reader,
		debounce:  debounce,
		longPress: longPress,
		handler:   handler,
		lastLevel: High,
	}
}

// Classify maps a press duration to a gesture.
func (b *Button) Classify(held time.Duration) Gesture {
	switch {
	case held >= b.longPress:
		return GestureLongPress
	case held >= b.debounce:
		return GestureTap
	default:
		return GestureNone
	}
}

// Poll reads the pin once. A completed press is classified and passed to
// the handler. Read errors skip the poll without changing state.
func (b *Button) Poll(now time.Time) Gesture {
	level, err := b.reader.Read()
	if err != nil {
		log.Debug().Err(err).Msg("Button read failed")
		return GestureNone
	}

	gesture := GestureNone
	switch {
	case b.lastLevel == High && level == Low:
		b.pressStart = now
		b.pressed = true
	case b.lastLevel == Low && level == High && b.pressed:
		gesture = b.Classify(now.Sub(b.pressStart))
		b.pressed = false
	}
	b.lastLevel = level

	if gesture != GestureNone && b.handler != nil {
		b.handler(gesture)
	}
	return gesture
}

// Run polls the button every interval until ctx is done.
func (b *Button) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			b.Poll(now)
		}
	}
}
