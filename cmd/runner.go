package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"spotmigrate/internal/library"
	"spotmigrate/internal/repositories"
	"spotmigrate/internal/session"
	"spotmigrate/internal/shared"
	"spotmigrate/internal/spotify"
	"spotmigrate/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	logger   *log.Logger
	output   io.Writer
	input    io.Reader
	sessions *session.Manager
	api      library.API

	// login runs the interactive OAuth flow. Swapped out in tests.
	login func(ctx context.Context, client *spotify.Client, config *shared.Config) (*oauth2.Token, error)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Logger   *log.Logger
	Output   io.Writer
	Input    io.Reader
	Sessions *session.Manager
	API      library.API
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config:   opts.Config,
		logger:   opts.Logger,
		output:   opts.Output,
		input:    opts.Input,
		sessions: opts.Sessions,
		api:      opts.API,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		exportCommand, importCommand, eraseCommand, authCommand, setupCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// loadConfig resolves the effective config for a command invocation, preferring
// the file named by --config when it exists.
func (r *Runner) loadConfig(cmd *cli.Command) *shared.Config {
	configPath := cmd.String("config")
	if configPath == "" {
		return r.config
	}

	if _, err := os.Stat(configPath); err == nil {
		if config, err := shared.LoadConfig(configPath); err == nil {
			return config
		}
		r.logger.Warn("failed to load config, using current settings", "path", configPath)
	}
	return r.config
}

// cacheDir resolves the token cache directory, defaulting to ~/.spotmigrate.
func (r *Runner) cacheDir(config *shared.Config) string {
	if config.Migrate.CacheDir != "" {
		return config.Migrate.CacheDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".spotmigrate"
	}
	return filepath.Join(home, ".spotmigrate")
}

// sessionManager lazily creates the token cache manager.
func (r *Runner) sessionManager(config *shared.Config) (*session.Manager, error) {
	if r.sessions != nil {
		return r.sessions, nil
	}
	mgr, err := session.NewManager(r.cacheDir(config), r.logger)
	if err != nil {
		return nil, err
	}
	r.sessions = mgr
	return mgr, nil
}

// spotifyCredentials resolves client credentials, preferring the encrypted
// credential file when the config points at one.
func (r *Runner) spotifyCredentials(cmd *cli.Command, config *shared.Config) (map[string]string, error) {
	if path := config.Credentials.EncryptedFile; path != "" {
		passphrase := cmd.String("passphrase")
		if passphrase == "" {
			passphrase = os.Getenv("SPOTMIGRATE_PASSPHRASE")
		}
		if passphrase == "" {
			return nil, fmt.Errorf("%w: encrypted credentials require --passphrase or SPOTMIGRATE_PASSPHRASE", shared.ErrMissingCredentials)
		}

		creds, err := shared.LoadCredentialsFile(path, passphrase)
		if err != nil {
			return nil, err
		}
		return creds.Map(), nil
	}

	creds := config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: set credentials in config.toml or run `spotmigrate setup credentials`", shared.ErrMissingCredentials)
	}
	return creds.Map(), nil
}

// newClient builds an API client from the resolved credentials.
func (r *Runner) newClient(cmd *cli.Command, config *shared.Config) (*spotify.Client, error) {
	creds, err := r.spotifyCredentials(cmd, config)
	if err != nil {
		return nil, err
	}
	return spotify.NewClient(creds, config.Migrate.RequestsPerSecond, r.logger)
}

// connect produces an authenticated API for the account a command targets.
//
// A cached token for --user is reused when present; otherwise the browser
// login flow runs. When the cached token turns out to belong to a different
// account the stale cache is dropped and the login flow runs once before
// giving up with [shared.ErrAccountMismatch].
func (r *Runner) connect(ctx context.Context, cmd *cli.Command, config *shared.Config) (library.API, *spotify.User, error) {
	var client *spotify.Client
	api := r.api
	if api == nil {
		c, err := r.newClient(cmd, config)
		if err != nil {
			return nil, nil, err
		}
		client = c
		api = c
	}

	login := r.login
	if login == nil {
		login = r.doOAuth
	}

	sessions, err := r.sessionManager(config)
	if err != nil {
		return nil, nil, err
	}

	if cmd.Bool("clean-cache") {
		r.logger.Info("clearing cached tokens")
		if err := sessions.ClearAll(); err != nil {
			return nil, nil, err
		}
	}

	expected := cmd.String("user")

	username := expected
	if username == "" {
		// without --user, reuse the only cached session if there is exactly one
		if cached, err := sessions.CachedUsers(); err == nil && len(cached) == 1 {
			username = cached[0]
		}
	}

	if username != "" {
		if token, err := sessions.LoadToken(username); err == nil {
			if client != nil {
				client.SetToken(ctx, token)
			}

			user, verifyErr := sessions.Verify(ctx, api, expected)
			if verifyErr == nil {
				return api, user, nil
			}
			if !errors.Is(verifyErr, shared.ErrAccountMismatch) {
				return nil, nil, verifyErr
			}
			r.logger.Info("cached session unusable, starting fresh login")
		}
	}

	token, err := login(ctx, client, config)
	if err != nil {
		return nil, nil, err
	}
	if client != nil {
		client.SetToken(ctx, token)
	}

	user, err := sessions.Verify(ctx, api, expected)
	if err != nil {
		return nil, nil, err
	}

	if err := sessions.SaveToken(user.ID, token); err != nil {
		r.logger.Warn("failed to cache token", "err", err)
	}
	return api, user, nil
}

// recordRun persists a finished run to the history database, best effort.
func (r *Runner) recordRun(config *shared.Config, report *tasks.RunReport) {
	if report == nil || config.Database.Path == "" {
		return
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		r.logger.Warn("run not recorded, database unavailable", "err", err)
		return
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warn("run not recorded, migrations failed", "err", err)
		return
	}

	repo := repositories.NewRunRepository(db)
	if err := repo.Create(repositories.FromReport(report)); err != nil {
		r.logger.Warn("run not recorded", "err", err)
	}
}
