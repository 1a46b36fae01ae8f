package lua

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dokzlo13/ledclock/internal/clock"
	"github.com/dokzlo13/ledclock/internal/eventbus"
	"github.com/dokzlo13/ledclock/internal/rgb"
)

type fakeClock struct {
	settings clock.Settings
	palette  int
}

func (f *fakeClock) Settings() clock.Settings { return f.settings }

func (f *fakeClock) SetBrightness(pct int) error {
	if pct < 1 || pct > 100 {
		return errors.New("out of range")
	}
	f.settings.Brightness = pct
	return nil
}

func (f *fakeClock) SetFixedColor(index int) error {
	if index < clock.AutoColor || index >= f.palette {
		return errors.New("out of range")
	}
	f.settings.FixedColor = index
	return nil
}

func (f *fakeClock) Snapshot() clock.Snapshot {
	return clock.Snapshot{Brightness: f.settings.Brightness, FixedColor: f.settings.FixedColor, Mode: "AUTO", Face: "letter"}
}

type memStore struct {
	values map[string][]byte
}

func (m *memStore) GetJSON(kind, id string, v any) (bool, error) {
	data, ok := m.values[kind+"/"+id]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, v)
}

func (m *memStore) SetJSON(kind, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.values[kind+"/"+id] = data
	return nil
}

func (m *memStore) Delete(kind, id string) error {
	delete(m.values, kind+"/"+id)
	return nil
}

func newTestRuntime(t *testing.T) (*Runtime, *fakeClock) {
	t.Helper()
	palette := rgb.DefaultPalette()
	fc := &fakeClock{settings: clock.DefaultSettings(), palette: len(palette)}
	r := NewRuntime(RuntimeDeps{
		Clock:     fc,
		Palette:   palette,
		Store:     &memStore{values: map[string][]byte{}},
		QueueSize: 10,
	})
	t.Cleanup(r.Close)
	return r, fc
}

func runSync(t *testing.T, r *Runtime, source string) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return r.DoSync(ctx, func(context.Context) error {
		return r.L.DoString(source)
	})
}

func TestRuntime_DispatchCallsHandlers(t *testing.T) {
	r, fc := newTestRuntime(t)

	err := r.LoadString(`
		local clock = require("clock")
		clock.on("brightness_changed", function(e)
			if e.brightness >= 60 then
				clock.set_brightness(10)
			end
		end)
		clock.on("brightness_changed", function(e)
			seen_type = e.type
		end)
	`)
	if err != nil {
		t.Fatal(err)
	}
	if r.HandlerCount() != 2 {
		t.Fatalf("handlers = %d, want 2", r.HandlerCount())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	if !r.Dispatch(ctx, eventbus.Event{
		Type: eventbus.EventTypeBrightnessChanged,
		Time: time.Now(),
		Data: map[string]interface{}{"brightness": 70},
	}) {
		t.Fatal("dispatch dropped")
	}

	// DoSync runs after the dispatched work on the same worker
	var seen string
	err = r.DoSync(ctx, func(context.Context) error {
		seen = r.L.GetGlobal("seen_type").String()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if fc.settings.Brightness != 10 {
		t.Errorf("brightness = %d, want 10", fc.settings.Brightness)
	}
	if seen != "brightness_changed" {
		t.Errorf("seen_type = %q", seen)
	}
}

func TestRuntime_ClockModule(t *testing.T) {
	r, fc := newTestRuntime(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	tests := []struct {
		name   string
		source string
		want   int
	}{
		{"by_index", `require("clock").set_color(2)`, 2},
		{"by_name", `require("clock").set_color("blu")`, 3},
		{"auto_name", `require("clock").set_color("AUTO")`, clock.AutoColor},
		{"auto_const", `local c = require("clock"); c.set_color(1); c.set_color(c.AUTO)`, clock.AutoColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := runSync(t, r, tt.source); err != nil {
				t.Fatal(err)
			}
			if fc.settings.FixedColor != tt.want {
				t.Errorf("fixed_color = %d, want %d", fc.settings.FixedColor, tt.want)
			}
		})
	}

	err := runSync(t, r, `
		local clock = require("clock")
		ok, msg = clock.set_color("MAGENTA")
		local p = clock.palette()
		first = p[1].name .. " " .. p[1].hex
		mode = clock.state().mode
	`)
	if err != nil {
		t.Fatal(err)
	}
	if r.L.GetGlobal("ok").String() != "false" {
		t.Error("unknown color name should fail")
	}
	if got := r.L.GetGlobal("first").String(); got != "GIALLO #ffdc00" {
		t.Errorf("first palette entry = %q", got)
	}
	if got := r.L.GetGlobal("mode").String(); got != "AUTO" {
		t.Errorf("mode = %q", got)
	}
}

func TestRuntime_HandlerErrorDoesNotStopWorker(t *testing.T) {
	r, _ := newTestRuntime(t)
	if err := r.LoadString(`
		require("clock").on("button_tap", function() error("boom") end)
	`); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.Dispatch(ctx, eventbus.NewEvent(eventbus.EventTypeButtonTap, nil))
	if err := r.DoSync(ctx, func(context.Context) error { return nil }); err != nil {
		t.Errorf("worker should keep running: %v", err)
	}
}

func TestRuntime_ClosedRejectsWork(t *testing.T) {
	r, _ := newTestRuntime(t)
	r.Close()

	if r.Do(context.Background(), func(context.Context) {}) {
		t.Error("Do should fail after Close")
	}
	err := r.DoSync(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(err, ErrRuntimeClosed) {
		t.Errorf("DoSync error = %v, want ErrRuntimeClosed", err)
	}
}

func TestRuntime_LoadScriptError(t *testing.T) {
	r, _ := newTestRuntime(t)
	if err := r.LoadScript("/nonexistent/hooks.lua"); err == nil {
		t.Error("expected error for missing script")
	}
	if err := r.LoadString(`this is not lua`); err == nil {
		t.Error("expected syntax error")
	}
}

func TestRuntime_StoreModule(t *testing.T) {
	r, _ := newTestRuntime(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	err := runSync(t, r, `
		local store = require("store")
		missing = store.get("taps", 0)
		store.set("taps", (store.get("taps") or 0) + 1)
		store.set("taps", store.get("taps") + 1)
		taps = store.get("taps")
		store.set("last", {mode = "ROSSO", brightness = 40})
		last_mode = store.get("last").mode
		store.set("gone", true)
		store.set("gone", nil)
		gone = store.get("gone")
		store.set("other", "x")
		store.delete("other")
		other = store.get("other", "none")
	`)
	if err != nil {
		t.Fatal(err)
	}

	checks := map[string]string{
		"missing":   "0",
		"taps":      "2",
		"last_mode": "ROSSO",
		"gone":      "nil",
		"other":     "none",
	}
	for name, want := range checks {
		if got := r.L.GetGlobal(name).String(); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestRuntime_StoreModuleAbsentWithoutStore(t *testing.T) {
	palette := rgb.DefaultPalette()
	r := NewRuntime(RuntimeDeps{Clock: &fakeClock{palette: len(palette)}, Palette: palette})
	defer r.Close()

	if err := r.LoadString(`require("store")`); err == nil {
		t.Error("store module should not be available")
	}
}
