// Package render draws clock faces on an abstract LED matrix surface.
// Rasterization and the panel driver live behind Surface.
package render

import (
	"time"
	"unicode/utf8"

	"github.com/dokzlo13/ledclock/internal/rgb"
)

// Surface is the drawing target of a face. Coordinates are pixels with the
// origin at the top-left corner. DrawText draws with y as the baseline and
// returns the advance width in pixels.
type Surface interface {
	Width() int
	Height() int
	Clear()
	SetColor(c rgb.Color)
	DrawLine(x0, y0, x1, y1 int)
	DrawText(f Font, x, y int, text string) int
	SetBrightness(pct int)
	Sync() error
}

// Face renders one frame of a clock.
type Face interface {
	Name() string
	Draw(s Surface, now time.Time, accent rgb.Color) error
}

// Font describes a fixed-width BDF font. Only metrics are known here; the
// surface owns the glyphs.
type Font struct {
	Name     string
	Path     string
	Width    int
	Height   int
	Baseline int
}

// Measure returns the width of text in pixels.
func (f Font) Measure(text string) int {
	return utf8.RuneCountInString(text) * f.Width
}

var builtinFonts = map[string]Font{
	"4x6":        {Name: "4x6", Path: "4x6.bdf", Width: 4, Height: 6, Baseline: 5},
	"5x8":        {Name: "5x8", Path: "5x8.bdf", Width: 5, Height: 8, Baseline: 7},
	"spleen-5x8": {Name: "spleen-5x8", Path: "spleen-5x8.bdf", Width: 5, Height: 8, Baseline: 7},
	"7x14B":      {Name: "7x14B", Path: "7x14B.bdf", Width: 7, Height: 14, Baseline: 11},
}

// LookupFont returns the metrics of a bundled font.
func LookupFont(name string) (Font, bool) {
	f, ok := builtinFonts[name]
	return f, ok
}

// drawPixel lights a single pixel with the current color.
func drawPixel(s Surface, x, y int) {
	s.DrawLine(x, y, x, y)
}

func colorOr(c *rgb.Color, fallback rgb.Color) rgb.Color {
	if c == nil {
		return fallback
	}
	return *c
}
