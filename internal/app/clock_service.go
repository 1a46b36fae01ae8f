package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/ledclock/internal/clock"
	"github.com/dokzlo13/ledclock/internal/config"
	"github.com/dokzlo13/ledclock/internal/eventbus"
	"github.com/dokzlo13/ledclock/internal/locale"
	"github.com/dokzlo13/ledclock/internal/render"
	"github.com/dokzlo13/ledclock/internal/rgb"
	"github.com/dokzlo13/ledclock/internal/transition"
)

// ClockService owns the controller and drives the render loop.
type ClockService struct {
	cfg        *config.Config
	Controller *clock.Controller
	Engine     *transition.Engine
	Palette    rgb.Palette
	surface    render.Surface
}

// NewClockService builds the face, engine and controller from config.
func NewClockService(
	cfg *config.Config,
	surface render.Surface,
	settings clock.Settings,
	sink clock.SettingsSink,
	bus *eventbus.Bus,
	version string,
) (*ClockService, error) {
	palette, err := cfg.Palette()
	if err != nil {
		return nil, err
	}

	face, err := buildFace(cfg)
	if err != nil {
		return nil, err
	}

	large, _ := render.LookupFont(cfg.Display.LargeFont)

	engine := transition.New(
		cfg.TransitionConfig(palette),
		transition.WithObserver(transition.LogObserver()),
		transition.WithObserver(clock.TransitionPublisher(bus)),
	)

	var snake *render.Snake
	if cfg.Display.SnakeEnabled() {
		snake = render.NewSnake(cfg.Display.Width, cfg.Display.Height, cfg.Display.SnakeLength)
	}

	ctrl := clock.NewController(clock.Options{
		Face:        face,
		Palette:     palette,
		Engine:      engine,
		MessageFont: large,
		Snake:       snake,
		Settings:    settings,
		Version:     version,
		Sink:        sink,
		Publisher:   bus,
	})

	return &ClockService{
		cfg:        cfg,
		Controller: ctrl,
		Engine:     engine,
		Palette:    palette,
		surface:    surface,
	}, nil
}

func buildFace(cfg *config.Config) (render.Face, error) {
	small, ok := render.LookupFont(cfg.Display.SmallFont)
	if !ok {
		return nil, fmt.Errorf("unknown font %q", cfg.Display.SmallFont)
	}
	large, ok := render.LookupFont(cfg.Display.LargeFont)
	if !ok {
		return nil, fmt.Errorf("unknown font %q", cfg.Display.LargeFont)
	}

	switch cfg.Display.Face {
	case config.FaceAnalog:
		ac := cfg.AnalogClock
		face := render.NewAnalogFace(render.AnalogColors{
			HourHand:   ac.HourHandColor.Ptr(),
			MinuteHand: ac.MinuteHandColor.Ptr(),
			SecondHand: ac.SecondHandColor.Ptr(),
			Markers:    ac.MarkersColor.Ptr(),
			Date:       ac.DateColor.Ptr(),
		}, small)
		if ac.ShowDate != nil {
			face.ShowDate = *ac.ShowDate
		}
		return face, nil

	case config.FaceLetter:
		loc, err := locale.Lookup(cfg.Display.Locale)
		if err != nil {
			return nil, err
		}
		lc := cfg.LetterClock
		return &render.LetterFace{
			Locale:    loc,
			DateFont:  small,
			TimeFont:  large,
			Spacing:   lc.Spacing,
			ShowDate:  lc.ShowDate == nil || *lc.ShowDate,
			ShowTime:  lc.ShowTime == nil || *lc.ShowTime,
			DateColor: lc.DateColor.Ptr(),
			TimeColor: lc.TimeColor.Ptr(),
		}, nil
	}

	return nil, fmt.Errorf("unknown face %q", cfg.Display.Face)
}

// Start runs the render loop until ctx is done.
func (s *ClockService) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *ClockService) run(ctx context.Context) {
	tick := s.cfg.Display.Tick.Duration()
	log.Info().
		Str("face", s.cfg.Display.Face).
		Dur("tick", tick).
		Int("colors", len(s.Palette)).
		Msg("Clock render loop started")

	s.renderFrame()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Clock render loop stopping")
			return
		case <-ticker.C:
			s.renderFrame()
		}
	}
}

// renderFrame draws one frame. Errors skip the frame.
func (s *ClockService) renderFrame() {
	if err := s.Controller.Render(s.surface); err != nil {
		log.Error().Err(err).Msg("Frame skipped")
	}
}
