package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// ButtonConfig describes the GPIO push button. It comes from the
// environment so the same config file works on boards wired differently.
type ButtonConfig struct {
	Enabled      bool          `env:"BUTTON_ENABLED,default=true"`
	GPIOPin      int           `env:"BUTTON_GPIO_PIN,default=19"`
	Debounce     time.Duration `env:"BUTTON_DEBOUNCE,default=100ms"`
	LongPress    time.Duration `env:"BUTTON_LONG_PRESS,default=1s"`
	PollInterval time.Duration `env:"BUTTON_POLL_INTERVAL,default=10ms"`
}

// LoadButton reads the button configuration from the environment.
func LoadButton(ctx context.Context) (*ButtonConfig, error) {
	var cfg ButtonConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
