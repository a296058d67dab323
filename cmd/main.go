package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"spotmigrate/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "spotmigrate",
		Usage:    "Move playlists and liked songs between Spotify accounts",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotAffirmed) {
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
