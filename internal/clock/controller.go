// Package clock ties the color engine, the clock faces and the button
// together into what is shown on the panel each tick.
package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/ledclock/internal/button"
	"github.com/dokzlo13/ledclock/internal/eventbus"
	"github.com/dokzlo13/ledclock/internal/render"
	"github.com/dokzlo13/ledclock/internal/rgb"
	"github.com/dokzlo13/ledclock/internal/transition"
)

// Overlay durations.
const (
	MessageDuration = 2 * time.Second
	VersionDuration = 3 * time.Second
)

// AutoLabel is shown when the button returns to AUTO mode.
const AutoLabel = "AUTO"

// SettingsSink persists settings after every change.
type SettingsSink interface {
	SaveSettings(Settings)
}

// Publisher receives clock events.
type Publisher interface {
	Publish(eventbus.Event)
}

// Options configure a Controller.
type Options struct {
	Face        render.Face
	Palette     rgb.Palette
	Engine      *transition.Engine
	MessageFont render.Font
	// Snake is drawn while a transition runs. Nil disables it.
	Snake     *render.Snake
	Settings  Settings
	Version   string
	Sink      SettingsSink
	Publisher Publisher
	Now       func() time.Time
}

// Controller is safe for concurrent use. The button goroutine changes
// settings while the render goroutine draws frames.
type Controller struct {
	mu sync.Mutex

	face    render.Face
	palette rgb.Palette
	engine  *transition.Engine
	font    render.Font
	snake   *render.Snake
	sink    SettingsSink
	pub     Publisher
	now     func() time.Time

	settings  Settings
	message   render.Message
	lastColor rgb.Color
	frames    int64
	lastErr   error
}

// NewController creates a controller. When a version is given it is shown
// for the first three seconds.
func NewController(opts Options) *Controller {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	c := &Controller{
		face:     opts.Face,
		palette:  opts.Palette,
		engine:   opts.Engine,
		font:     opts.MessageFont,
		snake:    opts.Snake,
		sink:     opts.Sink,
		pub:      opts.Publisher,
		now:      now,
		settings: opts.Settings.Normalize(len(opts.Palette)),
	}

	if opts.Version != "" {
		c.message = render.Message{
			Text:  "v" + opts.Version,
			Color: rgb.White,
			Until: now().Add(VersionDuration),
		}
	}
	return c
}

// Settings returns the current settings.
func (c *Controller) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// HandleGesture is the button handler.
func (c *Controller) HandleGesture(g button.Gesture) {
	switch g {
	case button.GestureTap:
		c.publish(eventbus.EventTypeButtonTap, nil)
		c.Tap()
	case button.GestureLongPress:
		c.publish(eventbus.EventTypeButtonLongPress, nil)
		c.LongPress()
	}
}

// Tap raises brightness by one step, wrapping to the minimum after 100.
func (c *Controller) Tap() Settings {
	c.mu.Lock()
	next := c.settings
	next.Brightness = NextBrightness(next.Brightness)
	c.settings = next
	c.showLocked(fmt.Sprintf("%d%%", next.Brightness), rgb.White)
	c.mu.Unlock()

	log.Info().Int("brightness", next.Brightness).Msg("Brightness changed")
	c.persist(next)
	c.publish(eventbus.EventTypeBrightnessChanged, map[string]interface{}{
		"brightness": next.Brightness,
	})
	return next
}

// LongPress selects the next palette color, or AUTO after the last one.
func (c *Controller) LongPress() Settings {
	c.mu.Lock()
	next := c.settings
	next.FixedColor = NextFixedColor(next.FixedColor, len(c.palette))
	c.settings = next
	label, color := c.applyColorModeLocked(next.FixedColor)
	c.mu.Unlock()

	log.Info().Int("fixed_color", next.FixedColor).Str("mode", label).Msg("Color mode changed")
	c.persist(next)
	c.publish(eventbus.EventTypeColorModeChanged, map[string]interface{}{
		"fixed_color": next.FixedColor,
		"mode":        label,
		"color":       color.Hex(),
	})
	return next
}

// SetBrightness sets brightness directly. Values outside [1,100] are
// rejected.
func (c *Controller) SetBrightness(pct int) error {
	if pct < 1 || pct > MaxBrightness {
		return fmt.Errorf("brightness %d out of range [1, %d]", pct, MaxBrightness)
	}

	c.mu.Lock()
	next := c.settings
	next.Brightness = pct
	c.settings = next
	c.showLocked(fmt.Sprintf("%d%%", pct), rgb.White)
	c.mu.Unlock()

	c.persist(next)
	c.publish(eventbus.EventTypeBrightnessChanged, map[string]interface{}{
		"brightness": pct,
	})
	return nil
}

// SetFixedColor selects a palette entry, or AUTO with AutoColor.
func (c *Controller) SetFixedColor(index int) error {
	c.mu.Lock()
	if index < AutoColor || index >= len(c.palette) {
		c.mu.Unlock()
		return fmt.Errorf("color index %d out of range [-1, %d)", index, len(c.palette))
	}
	next := c.settings
	next.FixedColor = index
	c.settings = next
	label, color := c.applyColorModeLocked(index)
	c.mu.Unlock()

	c.persist(next)
	c.publish(eventbus.EventTypeColorModeChanged, map[string]interface{}{
		"fixed_color": index,
		"mode":        label,
		"color":       color.Hex(),
	})
	return nil
}

// applyColorModeLocked shows the overlay for a color mode change and
// restarts the engine when returning to AUTO.
func (c *Controller) applyColorModeLocked(index int) (string, rgb.Color) {
	if index == AutoColor {
		if c.engine != nil {
			c.engine.Reset()
		}
		c.showLocked(AutoLabel, rgb.White)
		return AutoLabel, rgb.White
	}
	nc := c.palette[index]
	c.showLocked(nc.Name, nc.Color)
	return nc.Name, nc.Color
}

func (c *Controller) showLocked(text string, color rgb.Color) {
	c.message = render.Message{Text: text, Color: color, Until: c.now().Add(MessageDuration)}
}

// displayColorLocked advances the engine in AUTO mode so transition
// timing does not depend on whether an overlay is visible.
func (c *Controller) displayColorLocked() rgb.Color {
	if !c.settings.IsAuto() {
		if nc, ok := c.palette.Lookup(c.settings.FixedColor); ok {
			return nc.Color
		}
	}
	if c.engine == nil {
		return rgb.White
	}
	return c.engine.CurrentColor()
}

// Render draws one frame. A face error skips the frame without syncing.
func (c *Controller) Render(s render.Surface) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	color := c.displayColorLocked()
	c.lastColor = color

	s.Clear()
	s.SetBrightness(c.settings.Brightness)

	if c.message.Active(now) {
		render.DrawMessage(s, c.font, c.message)
	} else {
		if err := c.face.Draw(s, now, color); err != nil {
			c.lastErr = err
			return fmt.Errorf("draw %s face: %w", c.face.Name(), err)
		}
		if c.snake != nil && c.settings.IsAuto() && c.engine != nil && c.engine.State().IsTransitioning {
			s.SetColor(color)
			c.snake.Draw(s, c.engine.Progress())
		}
	}

	if err := s.Sync(); err != nil {
		c.lastErr = err
		return fmt.Errorf("sync frame: %w", err)
	}
	c.frames++
	c.lastErr = nil
	return nil
}

// Snapshot is a point-in-time view of the controller.
type Snapshot struct {
	Brightness    int       `json:"brightness"`
	FixedColor    int       `json:"fixed_color"`
	Mode          string    `json:"mode"`
	Color         string    `json:"color"`
	Face          string    `json:"face"`
	Transitioning bool      `json:"transitioning"`
	Progress      float64   `json:"progress"`
	Message       string    `json:"message,omitempty"`
	Frames        int64     `json:"frames"`
	LastError     string    `json:"last_error,omitempty"`
	At            time.Time `json:"at"`
}

// Snapshot reports the state without advancing the engine.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	snap := Snapshot{
		Brightness: c.settings.Brightness,
		FixedColor: c.settings.FixedColor,
		Mode:       AutoLabel,
		Color:      c.lastColor.Hex(),
		Face:       c.face.Name(),
		Frames:     c.frames,
		At:         now,
	}
	if nc, ok := c.palette.Lookup(c.settings.FixedColor); ok && !c.settings.IsAuto() {
		snap.Mode = nc.Name
	}
	if c.settings.IsAuto() && c.engine != nil {
		snap.Transitioning = c.engine.State().IsTransitioning
		snap.Progress = c.engine.Progress()
	}
	if c.message.Active(now) {
		snap.Message = c.message.Text
	}
	if c.lastErr != nil {
		snap.LastError = c.lastErr.Error()
	}
	return snap
}

func (c *Controller) persist(s Settings) {
	if c.sink != nil {
		c.sink.SaveSettings(s)
	}
}

func (c *Controller) publish(t eventbus.EventType, data map[string]interface{}) {
	if c.pub != nil {
		c.pub.Publish(eventbus.Event{Type: t, Time: c.now(), Data: data})
	}
}
