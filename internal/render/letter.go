package render

import (
	"time"

	"github.com/dokzlo13/ledclock/internal/locale"
	"github.com/dokzlo13/ledclock/internal/rgb"
)

// LetterFace shows a date line above a large HH:MM:SS line, both centered.
type LetterFace struct {
	Locale    *locale.Locale
	DateFont  Font
	TimeFont  Font
	Spacing   int
	ShowDate  bool
	ShowTime  bool
	DateColor *rgb.Color
	TimeColor *rgb.Color
}

// Name implements Face.
func (f *LetterFace) Name() string { return "letter" }

// LetterLayout holds the computed text origins. Y values are baselines.
type LetterLayout struct {
	DateX, DateY int
	TimeX, TimeY int
}

// Layout centers the date and time block on a width x height panel.
func (f *LetterFace) Layout(width, height int, dateLine, timeLine string) LetterLayout {
	dateHeight := f.DateFont.Height
	timeHeight := f.TimeFont.Height
	total := dateHeight + f.Spacing + timeHeight
	startY := (height - total) / 2

	dateY := startY + f.DateFont.Baseline
	return LetterLayout{
		DateX: (width - f.DateFont.Measure(dateLine)) / 2,
		DateY: dateY,
		TimeX: (width - f.TimeFont.Measure(timeLine)) / 2,
		TimeY: dateY + dateHeight - f.DateFont.Baseline + f.Spacing + f.TimeFont.Baseline,
	}
}

// Draw implements Face.
func (f *LetterFace) Draw(s Surface, now time.Time, accent rgb.Color) error {
	dateLine := f.Locale.DateLine(now)
	timeLine := f.Locale.TimeLine(now)
	layout := f.Layout(s.Width(), s.Height(), dateLine, timeLine)

	if f.ShowDate {
		s.SetColor(colorOr(f.DateColor, accent))
		s.DrawText(f.DateFont, layout.DateX, layout.DateY, dateLine)
	}
	if f.ShowTime {
		s.SetColor(colorOr(f.TimeColor, accent))
		s.DrawText(f.TimeFont, layout.TimeX, layout.TimeY, timeLine)
	}
	return nil
}
