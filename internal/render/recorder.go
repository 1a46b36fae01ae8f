package render

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/ledclock/internal/rgb"
)

// OpKind identifies a recorded drawing call.
type OpKind string

const (
	OpClear OpKind = "clear"
	OpLine  OpKind = "line"
	OpText  OpKind = "text"
)

// Op is one recorded drawing call. Color is the color active at the time.
type Op struct {
	Kind           OpKind
	Color          rgb.Color
	X0, Y0, X1, Y1 int
	Font           string
	Text           string
}

// Recorder is a Surface that keeps the calls of the current frame in
// memory. Sync moves them to the last completed frame.
type Recorder struct {
	mu         sync.Mutex
	width      int
	height     int
	color      rgb.Color
	brightness int
	ops        []Op
	frame      []Op
	frames     int
}

// NewRecorder creates a recording surface of the given size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{width: width, height: height, brightness: 100}
}

func (r *Recorder) Width() int  { return r.width }
func (r *Recorder) Height() int { return r.height }

func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops[:0], Op{Kind: OpClear})
}

func (r *Recorder) SetColor(c rgb.Color) {
	r.mu.Lock()
	r.color = c
	r.mu.Unlock()
}

func (r *Recorder) DrawLine(x0, y0, x1, y1 int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, Op{Kind: OpLine, Color: r.color, X0: x0, Y0: y0, X1: x1, Y1: y1})
}

func (r *Recorder) DrawText(f Font, x, y int, text string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, Op{Kind: OpText, Color: r.color, X0: x, Y0: y, Font: f.Name, Text: text})
	return f.Measure(text)
}

func (r *Recorder) SetBrightness(pct int) {
	r.mu.Lock()
	r.brightness = pct
	r.mu.Unlock()
}

func (r *Recorder) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame = append([]Op(nil), r.ops...)
	r.ops = r.ops[:0]
	r.frames++
	return nil
}

// Frame returns the calls of the last synced frame.
func (r *Recorder) Frame() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.frame...)
}

// Frames returns how many frames were synced.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Brightness returns the last brightness set.
func (r *Recorder) Brightness() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.brightness
}

// LogSurface is a headless Surface for running without a panel. Each
// synced frame is logged at debug level.
type LogSurface struct {
	*Recorder
}

// NewLogSurface creates a headless surface.
func NewLogSurface(width, height int) *LogSurface {
	return &LogSurface{Recorder: NewRecorder(width, height)}
}

// Sync logs a summary of the frame.
func (s *LogSurface) Sync() error {
	if err := s.Recorder.Sync(); err != nil {
		return err
	}

	var lines, texts int
	var first string
	for _, op := range s.Frame() {
		switch op.Kind {
		case OpLine:
			lines++
		case OpText:
			texts++
			if first == "" {
				first = op.Text
			}
		}
	}

	log.Debug().
		Int("frame", s.Frames()).
		Int("lines", lines).
		Int("texts", texts).
		Str("text", first).
		Int("brightness", s.Brightness()).
		Msg("Frame synced")
	return nil
}
