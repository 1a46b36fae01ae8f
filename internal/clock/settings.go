package clock

// AutoColor selects the color transition engine instead of a fixed
// palette entry.
const AutoColor = -1

// Brightness bounds and step for the button.
const (
	DefaultBrightness = 50
	BrightnessStep    = 10
	MinBrightness     = 10
	MaxBrightness     = 100
)

// Settings are the user-adjustable values that survive restarts.
type Settings struct {
	Brightness int `json:"brightness"`
	FixedColor int `json:"fixed_color"`
}

// DefaultSettings returns half brightness in AUTO mode.
func DefaultSettings() Settings {
	return Settings{Brightness: DefaultBrightness, FixedColor: AutoColor}
}

// Normalize replaces out-of-range values. Brightness outside [1,100]
// falls back to the default; a fixed color outside the palette falls back
// to AUTO.
func (s Settings) Normalize(paletteSize int) Settings {
	if s.Brightness < 1 || s.Brightness > MaxBrightness {
		s.Brightness = DefaultBrightness
	}
	if s.FixedColor < AutoColor || s.FixedColor >= paletteSize {
		s.FixedColor = AutoColor
	}
	return s
}

// IsAuto reports whether the engine picks the color.
func (s Settings) IsAuto() bool {
	return s.FixedColor == AutoColor
}

// NextBrightness steps brightness up by 10, wrapping past 100 back to 10.
func NextBrightness(current int) int {
	next := current + BrightnessStep
	if next > MaxBrightness {
		next = MinBrightness
	}
	return next
}

// NextFixedColor advances through the palette and back to AUTO after the
// last entry.
func NextFixedColor(current, paletteSize int) int {
	next := current + 1
	if next >= paletteSize {
		return AutoColor
	}
	return next
}
