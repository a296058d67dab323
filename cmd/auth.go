package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"spotmigrate/internal/server"
	"spotmigrate/internal/shared"
	"spotmigrate/internal/spotify"
)

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, client *spotify.Client, config *shared.Config) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := client.AuthURL(state)

	r.writePlain("→ Opening browser for Spotify login...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	token, err := server.RunFlow(ctx, client.OAuthConfig(), addr, state, r.logger)
	if err != nil {
		return nil, err
	}

	return token, nil
}

// AuthLogin performs the OAuth2 flow and caches the resulting session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	client, err := r.newClient(cmd, config)
	if err != nil {
		return err
	}

	sessions, err := r.sessionManager(config)
	if err != nil {
		return err
	}

	token, err := r.doOAuth(ctx, client, config)
	if err != nil {
		return err
	}
	client.SetToken(ctx, token)

	user, err := sessions.Verify(ctx, client, cmd.String("user"))
	if err != nil {
		return err
	}

	if err := sessions.SaveToken(user.ID, token); err != nil {
		return fmt.Errorf("failed to cache session: %w", err)
	}

	r.writePlainln("✓ Logged in as %s", user.ID)
	if user.DisplayName != "" {
		r.writePlain("  Display name: %s\n", user.DisplayName)
	}
	return nil
}

// AuthLogout drops cached sessions for one account or all of them.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	sessions, err := r.sessionManager(config)
	if err != nil {
		return err
	}

	if cmd.Bool("all") {
		if err := sessions.ClearAll(); err != nil {
			return err
		}
		r.writePlainln("✓ All cached sessions removed")
		return nil
	}

	username := cmd.String("user")
	if username == "" {
		return fmt.Errorf("%w: pass --user or --all", shared.ErrMissingArgument)
	}

	if err := sessions.ClearToken(username); err != nil {
		return err
	}
	r.writePlainln("✓ Session removed for %s", username)
	return nil
}

// AuthStatus lists the accounts with a cached session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	sessions, err := r.sessionManager(config)
	if err != nil {
		return err
	}

	users, err := sessions.CachedUsers()
	if err != nil {
		return err
	}

	if len(users) == 0 {
		r.writePlain("No cached sessions. Run: spotmigrate auth login\n")
		return nil
	}

	r.writePlain("Cached sessions:\n")
	for _, user := range users {
		r.writePlain("  - %s\n", user)
	}
	return nil
}
