package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/ledclock/internal/app"
	"github.com/dokzlo13/ledclock/internal/config"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "1.0.0"

func main() {
	// Support both -c and --config for config path
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.StringVar(&configPath, "c", "config.yaml", "Path to configuration file (shorthand)")
	resetState := flag.Bool("reset-state", false, "Forget stored brightness and color mode on startup")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	setupLogging(cfg.Log.Level, cfg.Log.Format == "json", cfg.Log.Colors)

	log.Info().Str("config", configPath).Str("version", version).Msg("Starting ledclock")

	// Create context that cancels on shutdown signal
	ctx := app.SignalContext()

	application, err := app.New(ctx, cfg, app.Options{
		Version:       version,
		ResetSettings: *resetState,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create application")
	}

	if err := application.Start(ctx); err != nil {
		application.Stop()
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	application.Wait()

	if err := application.Stop(); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}
}

func setupLogging(level string, useJSON bool, colors bool) {
	// ISO 8601 format with timezone
	zerolog.TimeFieldFormat = time.RFC3339

	if useJSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			NoColor:    !colors,
		})
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
