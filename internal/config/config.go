package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dokzlo13/ledclock/internal/clock"
	"github.com/dokzlo13/ledclock/internal/locale"
	"github.com/dokzlo13/ledclock/internal/render"
	"github.com/dokzlo13/ledclock/internal/rgb"
	"github.com/dokzlo13/ledclock/internal/transition"
)

// Config represents the application configuration
type Config struct {
	Display         DisplayConfig         `yaml:"display"`
	Colors          []ColorEntry          `yaml:"colors"`
	FixedColor      *int                  `yaml:"fixed_color"` // Initial color mode when nothing is persisted (-1 = AUTO)
	ColorTransition ColorTransitionConfig `yaml:"color_transition"`
	AnalogClock     AnalogClockConfig     `yaml:"analog_clock"`
	LetterClock     LetterClockConfig     `yaml:"letter_clock"`
	Database        DatabaseConfig        `yaml:"database"`
	Log             LogConfig             `yaml:"log"`
	Ledger          LedgerConfig          `yaml:"ledger"`
	Healthcheck     HealthcheckConfig     `yaml:"healthcheck"`
	EventBus        EventBusConfig        `yaml:"eventbus"`
	MQTT            MQTTConfig            `yaml:"mqtt"`
	Script          string                `yaml:"script"`           // Lua hook script, empty = disabled
	ShutdownTimeout Duration              `yaml:"shutdown_timeout"` // General shutdown timeout for graceful stops
}

// Face names
const (
	FaceLetter = "letter"
	FaceAnalog = "analog"
)

// DisplayConfig describes the panel and what is drawn on it
type DisplayConfig struct {
	Width       int      `yaml:"width"`
	Height      int      `yaml:"height"`
	Face        string   `yaml:"face"`       // letter or analog
	Tick        Duration `yaml:"tick"`       // Render interval (default: 1s)
	Brightness  int      `yaml:"brightness"` // Initial brightness when nothing is persisted
	Locale      string   `yaml:"locale"`
	SmallFont   string   `yaml:"small_font"`
	LargeFont   string   `yaml:"large_font"`
	Snake       *bool    `yaml:"snake"`        // Border snake during transitions (default: true)
	SnakeLength int      `yaml:"snake_length"` // Snake body length in pixels
}

// SnakeEnabled returns the snake flag with default
func (c *DisplayConfig) SnakeEnabled() bool {
	return c.Snake == nil || *c.Snake
}

// ColorEntry is one palette entry: either r/g/b channels or a hex string
type ColorEntry struct {
	Name string `yaml:"name"`
	R    *int   `yaml:"r"`
	G    *int   `yaml:"g"`
	B    *int   `yaml:"b"`
	Hex  string `yaml:"hex"`
}

// Color resolves the entry to a color
func (e ColorEntry) Color() (rgb.Color, error) {
	if e.Hex != "" {
		return rgb.ParseHex(e.Hex)
	}
	if e.R == nil || e.G == nil || e.B == nil {
		return rgb.Color{}, fmt.Errorf("color %q: needs r, g and b or hex", e.Name)
	}
	for _, ch := range []int{*e.R, *e.G, *e.B} {
		if ch < 0 || ch > 255 {
			return rgb.Color{}, fmt.Errorf("color %q: channel %d out of range [0, 255]", e.Name, ch)
		}
	}
	return rgb.Color{R: uint8(*e.R), G: uint8(*e.G), B: uint8(*e.B)}, nil
}

// ColorTransitionConfig contains palette cycling settings
type ColorTransitionConfig struct {
	Enabled                   *bool    `yaml:"enabled"`                     // default: true
	IntervalMinutes           *float64 `yaml:"interval_minutes"`            // default: 120
	TransitionDurationSeconds *float64 `yaml:"transition_duration_seconds"` // default: 30
}

// GetIntervalMinutes returns the hold time between transitions with default.
// An explicit zero is kept.
func (c *ColorTransitionConfig) GetIntervalMinutes() float64 {
	if c.IntervalMinutes == nil {
		return 120
	}
	return *c.IntervalMinutes
}

// GetTransitionDurationSeconds returns the fade length with default.
// An explicit zero is kept.
func (c *ColorTransitionConfig) GetTransitionDurationSeconds() float64 {
	if c.TransitionDurationSeconds == nil {
		return 30
	}
	return *c.TransitionDurationSeconds
}

// IsEnabled returns the enabled flag with default
func (c *ColorTransitionConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// AnalogClockConfig contains per-element colors of the analog face.
// Unset colors follow the current display color.
type AnalogClockConfig struct {
	HourHandColor   *ColorValue `yaml:"hour_hand_color"`
	MinuteHandColor *ColorValue `yaml:"minute_hand_color"`
	SecondHandColor *ColorValue `yaml:"second_hand_color"`
	MarkersColor    *ColorValue `yaml:"markers_color"`
	DateColor       *ColorValue `yaml:"date_color"`
	ShowDate        *bool       `yaml:"show_date"`
}

// LetterClockConfig contains letter face settings
type LetterClockConfig struct {
	DateColor *ColorValue `yaml:"date_color"`
	TimeColor *ColorValue `yaml:"time_color"`
	Spacing   int         `yaml:"spacing"`
	ShowDate  *bool       `yaml:"show_date"`
	ShowTime  *bool       `yaml:"show_time"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path                  string   `yaml:"path"`
	SettingsWriteRate     float64  `yaml:"settings_write_rate"`     // Immediate settings writes per second
	SettingsFlushInterval Duration `yaml:"settings_flush_interval"` // Flush interval for throttled writes
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Colors bool   `yaml:"colors"`
	Format string `yaml:"format"` // console or json
}

// LedgerConfig contains event ledger settings
type LedgerConfig struct {
	Enabled         *bool    `yaml:"enabled"`
	CleanupInterval Duration `yaml:"cleanup_interval"`
	RetentionDays   int      `yaml:"retention_days"`
}

// IsEnabled returns the enabled flag with default
func (c *LedgerConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// HealthcheckConfig contains health check server settings
type HealthcheckConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// EventBusConfig contains event bus settings
type EventBusConfig struct {
	Workers   int `yaml:"workers"`    // Number of worker goroutines (default: 4)
	QueueSize int `yaml:"queue_size"` // Event queue size (default: 100)
}

// GetWorkers returns worker count with default
func (c *EventBusConfig) GetWorkers() int {
	if c.Workers <= 0 {
		return 4
	}
	return c.Workers
}

// GetQueueSize returns queue size with default
func (c *EventBusConfig) GetQueueSize() int {
	if c.QueueSize <= 0 {
		return 100
	}
	return c.QueueSize
}

// MQTTConfig contains the event publisher settings
type MQTTConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Broker         string   `yaml:"broker"`
	ClientID       string   `yaml:"client_id"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	TopicPrefix    string   `yaml:"topic_prefix"`
	QoS            byte     `yaml:"qos"`
	Retain         bool     `yaml:"retain"`
	ConnectTimeout Duration `yaml:"connect_timeout"`
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// ColorValue is a color written either as "#rrggbb" or as {r, g, b}
type ColorValue rgb.Color

// UnmarshalYAML implements yaml.Unmarshaler for ColorValue
func (c *ColorValue) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		parsed, err := rgb.ParseHex(value.Value)
		if err != nil {
			return err
		}
		*c = ColorValue(parsed)
		return nil
	}

	var raw struct {
		R, G, B int
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	for _, ch := range []int{raw.R, raw.G, raw.B} {
		if ch < 0 || ch > 255 {
			return fmt.Errorf("channel %d out of range [0, 255]", ch)
		}
	}
	*c = ColorValue(rgb.Color{R: uint8(raw.R), G: uint8(raw.G), B: uint8(raw.B)})
	return nil
}

// Ptr returns the color as *rgb.Color, nil when unset
func (c *ColorValue) Ptr() *rgb.Color {
	if c == nil {
		return nil
	}
	color := rgb.Color(*c)
	return &color
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses configuration bytes and applies defaults
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./ledclock.sqlite"
	}
	if cfg.Database.SettingsWriteRate == 0 {
		cfg.Database.SettingsWriteRate = 1
	}
	if cfg.Database.SettingsFlushInterval == 0 {
		cfg.Database.SettingsFlushInterval = Duration(2 * time.Second)
	}

	// Display defaults match a 64x32 HUB75 panel
	if cfg.Display.Width == 0 {
		cfg.Display.Width = 64
	}
	if cfg.Display.Height == 0 {
		cfg.Display.Height = 32
	}
	if cfg.Display.Face == "" {
		cfg.Display.Face = FaceLetter
	}
	if cfg.Display.Tick == 0 {
		cfg.Display.Tick = Duration(time.Second)
	}
	if cfg.Display.Brightness == 0 {
		cfg.Display.Brightness = clock.DefaultBrightness
	}
	if cfg.Display.Locale == "" {
		cfg.Display.Locale = locale.Default
	}
	if cfg.Display.SmallFont == "" {
		cfg.Display.SmallFont = "spleen-5x8"
	}
	if cfg.Display.LargeFont == "" {
		cfg.Display.LargeFont = "7x14B"
	}
	if cfg.Display.SnakeLength == 0 {
		cfg.Display.SnakeLength = render.DefaultSnakeLength
	}

	if cfg.LetterClock.Spacing == 0 {
		cfg.LetterClock.Spacing = 1
	}

	// Ledger defaults
	if cfg.Ledger.CleanupInterval == 0 {
		cfg.Ledger.CleanupInterval = Duration(24 * time.Hour)
	}
	if cfg.Ledger.RetentionDays == 0 {
		cfg.Ledger.RetentionDays = 30
	}

	// Healthcheck defaults
	if cfg.Healthcheck.Port == 0 {
		cfg.Healthcheck.Port = 9090
	}
	if cfg.Healthcheck.Host == "" {
		cfg.Healthcheck.Host = "0.0.0.0"
	}

	// MQTT defaults
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "ledclock"
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = "ledclock"
	}
	if cfg.MQTT.ConnectTimeout == 0 {
		cfg.MQTT.ConnectTimeout = Duration(10 * time.Second)
	}

	// General shutdown timeout
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = Duration(5 * time.Second)
	}
}

// Validate checks values that defaults cannot repair
func (cfg *Config) Validate() error {
	if cfg.Display.Width <= 0 || cfg.Display.Height <= 0 {
		return fmt.Errorf("display: invalid size %dx%d", cfg.Display.Width, cfg.Display.Height)
	}
	if cfg.Display.Face != FaceLetter && cfg.Display.Face != FaceAnalog {
		return fmt.Errorf("display: unknown face %q", cfg.Display.Face)
	}
	if cfg.Display.Brightness < 1 || cfg.Display.Brightness > clock.MaxBrightness {
		return fmt.Errorf("display: brightness %d out of range [1, %d]", cfg.Display.Brightness, clock.MaxBrightness)
	}
	if _, err := locale.Lookup(cfg.Display.Locale); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	for _, name := range []string{cfg.Display.SmallFont, cfg.Display.LargeFont} {
		if _, ok := render.LookupFont(name); !ok {
			return fmt.Errorf("display: unknown font %q", name)
		}
	}

	palette, err := cfg.Palette()
	if err != nil {
		return err
	}
	if cfg.FixedColor != nil && (*cfg.FixedColor < clock.AutoColor || *cfg.FixedColor >= len(palette)) {
		return fmt.Errorf("fixed_color %d out of range [-1, %d)", *cfg.FixedColor, len(palette))
	}

	if cfg.MQTT.Enabled && cfg.MQTT.Broker == "" {
		return fmt.Errorf("mqtt: broker is required when enabled")
	}
	if cfg.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt: invalid qos %d", cfg.MQTT.QoS)
	}
	return nil
}

// Palette builds the configured palette, or the factory palette when none
// is configured
func (cfg *Config) Palette() (rgb.Palette, error) {
	if len(cfg.Colors) == 0 {
		return rgb.DefaultPalette(), nil
	}

	palette := make(rgb.Palette, 0, len(cfg.Colors))
	for i, entry := range cfg.Colors {
		if strings.TrimSpace(entry.Name) == "" {
			return nil, fmt.Errorf("colors[%d]: name is required", i)
		}
		color, err := entry.Color()
		if err != nil {
			return nil, fmt.Errorf("colors[%d]: %w", i, err)
		}
		palette = append(palette, rgb.NamedColor{Name: entry.Name, Color: color})
	}
	return palette, nil
}

// TransitionConfig builds the engine configuration for palette
func (cfg *Config) TransitionConfig(palette rgb.Palette) transition.Config {
	return transition.Config{
		Enabled:                   cfg.ColorTransition.IsEnabled(),
		IntervalMinutes:           cfg.ColorTransition.GetIntervalMinutes(),
		TransitionDurationSeconds: cfg.ColorTransition.GetTransitionDurationSeconds(),
		Colors:                    palette.Colors(),
	}
}

// InitialSettings returns the settings used when nothing is persisted
func (cfg *Config) InitialSettings() clock.Settings {
	s := clock.Settings{Brightness: cfg.Display.Brightness, FixedColor: clock.AutoColor}
	if cfg.FixedColor != nil {
		s.FixedColor = *cfg.FixedColor
	}
	return s
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	// Match ${VAR} or ${VAR:default}
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
