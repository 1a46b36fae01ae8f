package clock

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dokzlo13/ledclock/internal/button"
	"github.com/dokzlo13/ledclock/internal/eventbus"
	"github.com/dokzlo13/ledclock/internal/render"
	"github.com/dokzlo13/ledclock/internal/rgb"
	"github.com/dokzlo13/ledclock/internal/transition"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// stubFace records the accent of each draw.
type stubFace struct {
	accents []rgb.Color
	err     error
}

func (f *stubFace) Name() string { return "stub" }

func (f *stubFace) Draw(s render.Surface, now time.Time, accent rgb.Color) error {
	if f.err != nil {
		return f.err
	}
	f.accents = append(f.accents, accent)
	return nil
}

type memSink struct {
	saved []Settings
}

func (m *memSink) SaveSettings(s Settings) { m.saved = append(m.saved, s) }

type memPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *memPublisher) Publish(e eventbus.Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *memPublisher) types() []eventbus.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]eventbus.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	clock  *fakeClock
	face   *stubFace
	sink   *memSink
	pub    *memPublisher
	engine *transition.Engine
	ctrl   *Controller
}

func newFixture(t *testing.T, settings Settings, version string) *fixture {
	t.Helper()
	font, ok := render.LookupFont("7x14B")
	if !ok {
		t.Fatal("font missing")
	}
	f := &fixture{
		clock: newFakeClock(),
		face:  &stubFace{},
		sink:  &memSink{},
		pub:   &memPublisher{},
	}
	palette := rgb.DefaultPalette()
	f.engine = transition.New(transition.Config{
		Enabled:                   true,
		IntervalMinutes:           1,
		TransitionDurationSeconds: 10,
		Colors:                    palette.Colors(),
	}, transition.WithClock(f.clock.Now))
	f.ctrl = NewController(Options{
		Face:        f.face,
		Palette:     palette,
		Engine:      f.engine,
		MessageFont: font,
		Snake:       render.NewSnake(64, 32, render.DefaultSnakeLength),
		Settings:    settings,
		Version:     version,
		Sink:        f.sink,
		Publisher:   f.pub,
		Now:         f.clock.Now,
	})
	return f
}

func TestNextBrightness(t *testing.T) {
	tests := []struct {
		current, want int
	}{
		{50, 60},
		{90, 100},
		{100, 10},
		{95, 10},
		{10, 20},
	}
	for _, tt := range tests {
		if got := NextBrightness(tt.current); got != tt.want {
			t.Errorf("NextBrightness(%d) = %d, want %d", tt.current, got, tt.want)
		}
	}
}

func TestNextFixedColor(t *testing.T) {
	tests := []struct {
		name          string
		current, size int
		want          int
	}{
		{"auto_to_first", AutoColor, 5, 0},
		{"middle", 2, 5, 3},
		{"last_to_auto", 4, 5, AutoColor},
		{"empty_palette", AutoColor, 0, AutoColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextFixedColor(tt.current, tt.size); got != tt.want {
				t.Errorf("NextFixedColor(%d, %d) = %d, want %d", tt.current, tt.size, got, tt.want)
			}
		})
	}
}

func TestSettingsNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Settings
		want Settings
	}{
		{"valid", Settings{Brightness: 70, FixedColor: 2}, Settings{Brightness: 70, FixedColor: 2}},
		{"zero_brightness", Settings{Brightness: 0, FixedColor: AutoColor}, Settings{Brightness: DefaultBrightness, FixedColor: AutoColor}},
		{"too_bright", Settings{Brightness: 150, FixedColor: 0}, Settings{Brightness: DefaultBrightness, FixedColor: 0}},
		{"color_out_of_range", Settings{Brightness: 30, FixedColor: 9}, Settings{Brightness: 30, FixedColor: AutoColor}},
		{"negative_color", Settings{Brightness: 30, FixedColor: -4}, Settings{Brightness: 30, FixedColor: AutoColor}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(5); got != tt.want {
				t.Errorf("Normalize = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestController_TapWrapsBrightness(t *testing.T) {
	f := newFixture(t, Settings{Brightness: 100, FixedColor: AutoColor}, "")

	got := f.ctrl.Tap()
	if got.Brightness != 10 {
		t.Errorf("brightness = %d, want 10", got.Brightness)
	}
	if len(f.sink.saved) != 1 || f.sink.saved[0].Brightness != 10 {
		t.Errorf("saved = %+v", f.sink.saved)
	}

	snap := f.ctrl.Snapshot()
	if snap.Message != "10%" {
		t.Errorf("message = %q, want 10%%", snap.Message)
	}

	events := f.pub.types()
	if len(events) != 1 || events[0] != eventbus.EventTypeBrightnessChanged {
		t.Errorf("events = %v", events)
	}
}

func TestController_LongPressCyclesThroughAuto(t *testing.T) {
	f := newFixture(t, DefaultSettings(), "")
	palette := rgb.DefaultPalette()

	for i, nc := range palette {
		got := f.ctrl.LongPress()
		if got.FixedColor != i {
			t.Fatalf("press %d: fixed_color = %d", i, got.FixedColor)
		}
		if msg := f.ctrl.Snapshot().Message; msg != nc.Name {
			t.Errorf("press %d: message = %q, want %q", i, msg, nc.Name)
		}
	}

	got := f.ctrl.LongPress()
	if !got.IsAuto() {
		t.Errorf("after last color fixed_color = %d, want AUTO", got.FixedColor)
	}
	if msg := f.ctrl.Snapshot().Message; msg != AutoLabel {
		t.Errorf("message = %q, want AUTO", msg)
	}
	if len(f.sink.saved) != len(palette)+1 {
		t.Errorf("saved %d times, want %d", len(f.sink.saved), len(palette)+1)
	}
}

func TestController_LongPressToAutoResetsEngine(t *testing.T) {
	f := newFixture(t, Settings{Brightness: 50, FixedColor: 4}, "")

	f.clock.Advance(90 * time.Second)
	f.engine.CurrentColor()
	if !f.engine.State().IsTransitioning {
		t.Fatal("engine should be transitioning")
	}

	f.ctrl.LongPress()
	st := f.engine.State()
	if st.IsTransitioning || st.CurrentColorIndex != 0 || !st.IntervalStartTime.Equal(f.clock.Now()) {
		t.Errorf("engine not reset: %+v", st)
	}
}

func TestController_HandleGesture(t *testing.T) {
	f := newFixture(t, DefaultSettings(), "")

	f.ctrl.HandleGesture(button.GestureTap)
	f.ctrl.HandleGesture(button.GestureLongPress)
	f.ctrl.HandleGesture(button.GestureNone)

	want := []eventbus.EventType{
		eventbus.EventTypeButtonTap,
		eventbus.EventTypeBrightnessChanged,
		eventbus.EventTypeButtonLongPress,
		eventbus.EventTypeColorModeChanged,
	}
	got := f.pub.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestController_Setters(t *testing.T) {
	f := newFixture(t, DefaultSettings(), "")

	if err := f.ctrl.SetBrightness(0); err == nil {
		t.Error("brightness 0 should be rejected")
	}
	if err := f.ctrl.SetBrightness(35); err != nil {
		t.Fatal(err)
	}
	if err := f.ctrl.SetFixedColor(5); err == nil {
		t.Error("index past palette should be rejected")
	}
	if err := f.ctrl.SetFixedColor(1); err != nil {
		t.Fatal(err)
	}

	want := Settings{Brightness: 35, FixedColor: 1}
	if got := f.ctrl.Settings(); got != want {
		t.Errorf("settings = %+v, want %+v", got, want)
	}
}

func TestController_RenderVersionThenFace(t *testing.T) {
	f := newFixture(t, DefaultSettings(), "1.2.3")
	rec := render.NewRecorder(64, 32)

	if err := f.ctrl.Render(rec); err != nil {
		t.Fatal(err)
	}
	ops := rec.Frame()
	if len(ops) != 2 || ops[1].Text != "v1.2.3" || ops[1].Y0 != 20 {
		t.Errorf("startup frame = %+v", ops)
	}
	if len(f.face.accents) != 0 {
		t.Error("face should be hidden behind the version message")
	}

	f.clock.Advance(VersionDuration)
	if err := f.ctrl.Render(rec); err != nil {
		t.Fatal(err)
	}
	if len(f.face.accents) != 1 || f.face.accents[0] != rgb.DefaultPalette()[0].Color {
		t.Errorf("face accents = %v", f.face.accents)
	}
	if rec.Brightness() != DefaultBrightness {
		t.Errorf("brightness = %d", rec.Brightness())
	}
}

func TestController_RenderFixedColor(t *testing.T) {
	f := newFixture(t, Settings{Brightness: 80, FixedColor: 3}, "")
	rec := render.NewRecorder(64, 32)

	f.clock.Advance(2 * time.Minute)
	if err := f.ctrl.Render(rec); err != nil {
		t.Fatal(err)
	}
	if f.face.accents[0] != (rgb.Color{B: 255}) {
		t.Errorf("accent = %v, want blue", f.face.accents[0])
	}
	if f.ctrl.Snapshot().Mode != "BLU" {
		t.Errorf("mode = %q", f.ctrl.Snapshot().Mode)
	}
}

func TestController_RenderSnakeDuringTransition(t *testing.T) {
	f := newFixture(t, DefaultSettings(), "")
	rec := render.NewRecorder(64, 32)

	f.clock.Advance(61 * time.Second)
	if err := f.ctrl.Render(rec); err != nil {
		t.Fatal(err)
	}
	f.clock.Advance(5 * time.Second)
	if err := f.ctrl.Render(rec); err != nil {
		t.Fatal(err)
	}

	pixels := 0
	for _, op := range rec.Frame() {
		if op.Kind == render.OpLine {
			pixels++
		}
	}
	if pixels != 32 {
		t.Errorf("snake lit %d pixels at half progress, want 32", pixels)
	}

	snap := f.ctrl.Snapshot()
	if !snap.Transitioning || snap.Progress != 0.5 {
		t.Errorf("snapshot = %+v", snap)
	}

	types := f.pub.types()
	if len(types) != 0 {
		t.Errorf("controller published %v without an engine observer", types)
	}
}

func TestController_RenderFaceErrorSkipsFrame(t *testing.T) {
	f := newFixture(t, DefaultSettings(), "")
	f.face.err = errors.New("bad panel")
	rec := render.NewRecorder(64, 32)

	err := f.ctrl.Render(rec)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, f.face.err) {
		t.Errorf("error %v does not wrap face error", err)
	}
	if rec.Frames() != 0 {
		t.Error("frame should not be synced")
	}
	if f.ctrl.Snapshot().LastError == "" {
		t.Error("snapshot should report the error")
	}
}

func TestTransitionPublisher(t *testing.T) {
	pub := &memPublisher{}
	obs := TransitionPublisher(pub)
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	obs(transition.Event{Kind: transition.EventTransitionStarted, From: rgb.Color{R: 255}, To: rgb.Color{B: 255}, At: at})
	obs(transition.Event{Kind: transition.EventTransitionCompleted, To: rgb.Color{B: 255}, At: at})

	if len(pub.events) != 2 {
		t.Fatalf("got %d events", len(pub.events))
	}
	if pub.events[0].Data["from"] != "#ff0000" || pub.events[0].Data["to"] != "#0000ff" {
		t.Errorf("start data = %v", pub.events[0].Data)
	}
	if pub.events[1].Type != eventbus.EventTypeTransitionCompleted || !pub.events[1].Time.Equal(at) {
		t.Errorf("completion = %+v", pub.events[1])
	}
}
