// package session persists OAuth tokens per account so repeated runs skip the
// browser flow, and verifies that a cached token actually belongs to the
// account a command was asked to operate on.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"spotmigrate/internal/shared"
	"spotmigrate/internal/spotify"
)

const cachePrefix = ".cache-"

// profileAPI is the slice of the client the manager needs for verification.
type profileAPI interface {
	CurrentUser(ctx context.Context) (*spotify.User, error)
}

// Manager stores one token file per account under a cache directory.
//
// Files are named .cache-<username> and hold the JSON form of the OAuth token.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	cacheDir string
	logger   *log.Logger
}

// NewManager creates a Manager rooted at cacheDir, creating it if needed.
func NewManager(cacheDir string, logger *log.Logger) (*Manager, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if cacheDir == "" {
		cacheDir = "."
	}
	if err := os.MkdirAll(cacheDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Manager{cacheDir: cacheDir, logger: logger}, nil
}

func (m *Manager) cachePath(username string) string {
	return filepath.Join(m.cacheDir, cachePrefix+username)
}

// SaveToken writes the token for username, replacing any previous one.
func (m *Manager) SaveToken(username string, token *oauth2.Token) error {
	if username == "" || token == nil {
		return fmt.Errorf("%w: username and token are required", shared.ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(m.cachePath(username), data, 0o600); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}

	m.logger.Debug("token cached", "user", username)
	return nil
}

// LoadToken reads the cached token for username.
//
// A missing cache file wraps [shared.ErrNotAuthenticated] so callers know to
// run the login flow rather than report a failure.
func (m *Manager) LoadToken(username string) (*oauth2.Token, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", shared.ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.cachePath(username))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no cached token for %s", shared.ErrNotAuthenticated, username)
		}
		return nil, fmt.Errorf("failed to read token cache: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("%w: corrupt token cache for %s", shared.ErrNotAuthenticated, username)
	}
	return &token, nil
}

// ClearToken removes the cached token for username. Clearing a token that is
// not cached is not an error.
func (m *Manager) ClearToken(username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := os.Remove(m.cachePath(username))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear token cache: %w", err)
	}
	return nil
}

// ClearAll removes every cached token in the directory. Used when switching
// accounts wholesale.
func (m *Manager) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := os.ReadDir(m.cacheDir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), cachePrefix) {
			continue
		}
		if err := os.Remove(filepath.Join(m.cacheDir, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// CachedUsers lists the usernames with a cached token.
func (m *Manager) CachedUsers() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := os.ReadDir(m.cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	users := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), cachePrefix) {
			continue
		}
		users = append(users, strings.TrimPrefix(entry.Name(), cachePrefix))
	}
	return users, nil
}

// Verify checks that the authenticated account is the one the caller expects.
//
// On a mismatch the stale cache entry for the expected user is dropped before
// the error returns, so the next run goes straight to a fresh login instead of
// tripping over the same wrong token again. An empty expected username accepts
// whatever account the token belongs to.
func (m *Manager) Verify(ctx context.Context, api profileAPI, expected string) (*spotify.User, error) {
	user, err := api.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("verifying account: %w", err)
	}

	if expected != "" && user.ID != expected {
		m.logger.Warn("cached token belongs to a different account, clearing it",
			"expected", expected, "actual", user.ID)
		if clearErr := m.ClearToken(expected); clearErr != nil {
			m.logger.Warn("failed to clear stale token", "err", clearErr)
		}
		return nil, fmt.Errorf("%w: authenticated as %s, expected %s", shared.ErrAccountMismatch, user.ID, expected)
	}

	return user, nil
}
