package rgb

// NamedColor is a palette entry. Name is what the panel shows when the
// entry is picked as a fixed color.
type NamedColor struct {
	Name string `json:"name"`
	Color
}

// Palette is an ordered list of colors. Order defines the cycle order.
type Palette []NamedColor

// DefaultPalette mirrors the factory palette of the clock firmware.
func DefaultPalette() Palette {
	return Palette{
		{Name: "GIALLO", Color: Color{R: 255, G: 220, B: 0}},
		{Name: "ROSSO", Color: Color{R: 255, G: 0, B: 0}},
		{Name: "VERDE", Color: Color{R: 0, G: 255, B: 0}},
		{Name: "BLU", Color: Color{R: 0, G: 0, B: 255}},
		{Name: "BIANCO", Color: Color{R: 255, G: 255, B: 255}},
	}
}

// Colors returns the palette without names.
func (p Palette) Colors() []Color {
	out := make([]Color, len(p))
	for i, nc := range p {
		out[i] = nc.Color
	}
	return out
}

// Lookup returns the entry at index i, or false when out of range.
func (p Palette) Lookup(i int) (NamedColor, bool) {
	if i < 0 || i >= len(p) {
		return NamedColor{}, false
	}
	return p[i], true
}
