package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"spotmigrate/internal/shared"
)

// SetupInit writes a starter config file and prepares the history database.
func (r *Runner) SetupInit(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.writePlain("✓ Created %s\n", configPath)
	} else {
		r.writePlain("✓ Config file already exists at %s\n", configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return err
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.writePlain("✓ History database ready at %s\n", config.Database.Path)

	r.writePlainln("Next steps:")
	r.writePlain("  1. Add your Spotify app credentials to %s\n", configPath)
	r.writePlain("     (or run: spotmigrate setup credentials)\n")
	r.writePlain("  2. Run: spotmigrate auth login\n")
	return nil
}

// SetupCredentials encrypts client credentials to a file and points the
// config at it.
func (r *Runner) SetupCredentials(ctx context.Context, cmd *cli.Command) error {
	creds := shared.SpotifyConfig{
		ClientID:     cmd.String("client-id"),
		ClientSecret: cmd.String("client-secret"),
		RedirectURI:  cmd.String("redirect-uri"),
	}
	output := cmd.String("output")

	if err := shared.SaveCredentialsFile(output, creds, cmd.String("passphrase")); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	r.writePlain("✓ Encrypted credentials written to %s\n", output)

	configPath := cmd.String("config")
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err == nil {
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return err
		}
		config.Credentials.EncryptedFile = output
		if err := shared.SaveConfig(configPath, config); err != nil {
			return err
		}
		r.writePlain("✓ Updated %s to use the encrypted file\n", configPath)
	} else {
		r.writePlain("  Set credentials.encrypted_file = %q in your config to use it.\n", output)
	}

	r.writePlainln("Pass --passphrase (or set SPOTMIGRATE_PASSPHRASE) when running commands.")
	return nil
}
