package render

import (
	"time"

	"github.com/dokzlo13/ledclock/internal/rgb"
)

// Message is a short text that replaces the face until it expires.
type Message struct {
	Text  string
	Color rgb.Color
	Until time.Time
}

// Active reports whether the message should still be shown at now.
func (m Message) Active(now time.Time) bool {
	return m.Text != "" && now.Before(m.Until)
}

// MessageBaseline returns the baseline that centers one line of f on a
// panel of the given height.
func MessageBaseline(height int, f Font) int {
	return (height-f.Height)/2 + f.Baseline
}

// DrawMessage draws m centered in font f.
func DrawMessage(s Surface, f Font, m Message) {
	x := (s.Width() - f.Measure(m.Text)) / 2
	s.SetColor(m.Color)
	s.DrawText(f, x, MessageBaseline(s.Height(), f), m.Text)
}
