// Package rgb defines the color values shared by the transition engine,
// the clock faces and the configuration layer.
package rgb

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit RGB triple.
type Color struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// White is the color shown when no palette is active.
var White = Color{R: 255, G: 255, B: 255}

// Black turns a pixel off.
var Black = Color{}

// New builds a color from integer channels, clamping each to [0,255].
func New(r, g, b int) Color {
	return Color{R: clamp(r), G: clamp(g), B: clamp(b)}
}

// ParseHex parses "#rrggbb" or "#rgb" notation.
func ParseHex(s string) (Color, error) {
	if len(s) > 0 && s[0] != '#' {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// Hex returns the "#rrggbb" form.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String returns the "rgb(r, g, b)" form used in log lines.
func (c Color) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Lerp interpolates each channel independently and rounds to the nearest
// integer. t outside [0,1] extrapolates and is clamped to the channel range.
func Lerp(from, to Color, t float64) Color {
	return Color{
		R: lerpChannel(from.R, to.R, t),
		G: lerpChannel(from.G, to.G, t),
		B: lerpChannel(from.B, to.B, t),
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	v := math.Round(float64(a) + (float64(b)-float64(a))*t)
	return clamp(int(v))
}

func clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
