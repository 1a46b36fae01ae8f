package render

import (
	"fmt"
	"time"

	"github.com/dokzlo13/ledclock/internal/geometry"
	"github.com/dokzlo13/ledclock/internal/rgb"
)

// Hand lengths as a ratio of the center-to-perimeter distance.
const (
	hourHandLength   = 0.6
	minuteHandLength = 0.8
	secondHandLength = 0.95
	markerInnerRatio = 0.9
	markerCount      = 12
)

// AnalogColors assigns a color to each element of the analog face. Nil
// entries follow the accent color.
type AnalogColors struct {
	HourHand   *rgb.Color
	MinuteHand *rgb.Color
	SecondHand *rgb.Color
	Markers    *rgb.Color
	Date       *rgb.Color
}

// AnalogFace is a rectangular analog clock: hands point at the panel
// border and twelve hour markers sit on the perimeter.
type AnalogFace struct {
	Colors   AnalogColors
	DateFont Font
	DateX    int
	DateY    int
	ShowDate bool
}

// NewAnalogFace creates an analog face with the date at its usual place.
func NewAnalogFace(colors AnalogColors, dateFont Font) *AnalogFace {
	return &AnalogFace{
		Colors:   colors,
		DateFont: dateFont,
		DateX:    6,
		DateY:    14,
		ShowDate: true,
	}
}

// Name implements Face.
func (f *AnalogFace) Name() string { return "analog" }

// HandFractions returns the hour, minute and second positions of t as
// fractions of a full turn.
func HandFractions(t time.Time) (hour, minute, second float64) {
	h := float64(t.Hour() % 12)
	m := float64(t.Minute())
	s := float64(t.Second())

	hour = (h + m/60 + s/3600) / 12
	minute = (m + s/60) / 60
	second = s / 60
	return hour, minute, second
}

// Draw implements Face.
func (f *AnalogFace) Draw(s Surface, now time.Time, accent rgb.Color) error {
	w := float64(s.Width())
	h := float64(s.Height())
	cx := s.Width() / 2
	cy := s.Height() / 2

	hourFrac, minuteFrac, secondFrac := HandFractions(now)

	hands := []struct {
		frac   float64
		length float64
		color  rgb.Color
	}{
		{hourFrac, hourHandLength, colorOr(f.Colors.HourHand, accent)},
		{minuteFrac, minuteHandLength, colorOr(f.Colors.MinuteHand, accent)},
		{secondFrac, secondHandLength, colorOr(f.Colors.SecondHand, accent)},
	}

	for _, hand := range hands {
		p, err := geometry.PerimeterPoint(hand.frac, w, h)
		if err != nil {
			return fmt.Errorf("hand position: %w", err)
		}
		tip := geometry.HandPoint(float64(cx), float64(cy), p.X, p.Y, hand.length)
		s.SetColor(hand.color)
		s.DrawLine(cx, cy, tip.X, tip.Y)
	}

	s.SetColor(colorOr(f.Colors.Markers, accent))
	for i := 0; i < markerCount; i++ {
		p, err := geometry.PerimeterPoint(float64(i)/markerCount, w, h)
		if err != nil {
			return fmt.Errorf("marker position: %w", err)
		}
		inner := geometry.HandPoint(float64(cx), float64(cy), p.X, p.Y, markerInnerRatio)
		outer := p.Pixel()
		s.DrawLine(outer.X, outer.Y, inner.X, inner.Y)
	}

	if f.ShowDate {
		s.SetColor(colorOr(f.Colors.Date, accent))
		s.DrawText(f.DateFont, f.DateX, f.DateY, now.Format("02.01."))
	}

	return nil
}
