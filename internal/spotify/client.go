// package spotify implements a client for the Spotify Web API.
//
// Every remote read and mutation passes through a [Caller], which owns the
// retry/backoff policy, and paginated endpoints are collapsed through
// [FetchAll]. Auth uses the OAuth2 authorization-code flow via [oauth2].
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"spotmigrate/internal/shared"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	defaultPageLimit  = 50
	defaultRatePerSec = 5.0
)

// Scopes covers playlist read/write and saved-track read/write, everything the
// export, import, and erase operations need.
var Scopes = []string{
	"playlist-read-private",
	"playlist-read-collaborative",
	"playlist-modify-private",
	"playlist-modify-public",
	"user-library-read",
	"user-library-modify",
}

// Client talks to the Spotify Web API on behalf of one authenticated account.
type Client struct {
	config  *oauth2.Config
	token   *oauth2.Token
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
	caller  *Caller
	logger  *log.Logger
}

// NewClient creates a Client from OAuth2 credentials.
//
// requestsPerSecond caps the client-side call rate; zero or negative selects
// the default of 5/s.
func NewClient(credentials map[string]string, requestsPerSecond float64, logger *log.Logger) (*Client, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://127.0.0.1:8080/callback"
	}

	if requestsPerSecond <= 0 {
		requestsPerSecond = defaultRatePerSec
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &Client{
		config:  config,
		http:    http.DefaultClient,
		baseURL: spotifyBaseURL,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		caller:  NewCaller(logger),
		logger:  logger,
	}, nil
}

// OAuthConfig returns the client's OAuth2 configuration for callback handling.
func (c *Client) OAuthConfig() *oauth2.Config {
	return c.config
}

// AuthURL returns the authorization URL for the browser login flow.
func (c *Client) AuthURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// SetToken installs an OAuth2 token and rebuilds the HTTP client around it so
// expired access tokens refresh automatically.
func (c *Client) SetToken(ctx context.Context, token *oauth2.Token) {
	c.token = token
	if token != nil && token.RefreshToken != "" {
		c.http = c.config.Client(ctx, token)
	}
}

// Token returns the currently installed token, nil before authentication.
func (c *Client) Token() *oauth2.Token {
	return c.token
}

// do performs a single authenticated HTTP request. endpoint is either a path
// relative to the API base or an absolute URL (pagination cursors are absolute).
func (c *Client) do(ctx context.Context, method, endpoint string, body, result any) error {
	if c.token == nil {
		return fmt.Errorf("%w: call SetToken first", shared.ErrNotAuthenticated)
	}

	apiURL := endpoint
	if !strings.HasPrefix(endpoint, "http") {
		apiURL = c.baseURL + endpoint
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.apiError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// apiError builds an [APIError] from a non-2xx response, capturing the
// Retry-After hint on rate-limit responses.
func (c *Client) apiError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var envelope errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		apiErr.Message = envelope.Error.Message
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		if after := resp.Header.Get("Retry-After"); after != "" {
			if secs, err := strconv.Atoi(after); err == nil && secs > 0 {
				apiErr.RetryAfter = time.Duration(secs) * time.Second
			}
		}
	}

	return apiErr
}

// firstPage produces a retry-wrapped fetch of a paginated endpoint's first page.
func firstPage[T any](c *Client, endpoint string) func(context.Context) (*Page[T], error) {
	return func(ctx context.Context) (*Page[T], error) {
		var page Page[T]
		err := c.caller.Call(ctx, "GET "+endpoint, func(ctx context.Context) error {
			return c.do(ctx, http.MethodGet, endpoint, nil, &page)
		})
		if err != nil {
			return nil, err
		}
		return &page, nil
	}
}

// nextPage produces a retry-wrapped fetch of the page at an absolute cursor URL.
func nextPage[T any](c *Client) func(context.Context, string) (*Page[T], error) {
	return func(ctx context.Context, url string) (*Page[T], error) {
		var page Page[T]
		err := c.caller.Call(ctx, "GET next page", func(ctx context.Context) error {
			return c.do(ctx, http.MethodGet, url, nil, &page)
		})
		if err != nil {
			return nil, err
		}
		return &page, nil
	}
}

// CurrentUser retrieves the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	err := c.caller.Call(ctx, "GET /me", func(ctx context.Context) error {
		return c.do(ctx, http.MethodGet, "/me", nil, &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListPlaylists retrieves every playlist of the current user across all pages.
func (c *Client) ListPlaylists(ctx context.Context) ([]SimplePlaylist, error) {
	endpoint := fmt.Sprintf("/me/playlists?limit=%d", defaultPageLimit)
	return FetchAll(ctx, firstPage[SimplePlaylist](c, endpoint), nextPage[SimplePlaylist](c))
}

// ListPlaylistTracks retrieves every track item of a playlist across all pages.
func (c *Client) ListPlaylistTracks(ctx context.Context, playlistID string) ([]PlaylistTrack, error) {
	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=100", playlistID)
	return FetchAll(ctx, firstPage[PlaylistTrack](c, endpoint), nextPage[PlaylistTrack](c))
}

// ListSavedTracks retrieves the user's saved tracks across all pages.
func (c *Client) ListSavedTracks(ctx context.Context) ([]SavedTrack, error) {
	endpoint := fmt.Sprintf("/me/tracks?limit=%d", defaultPageLimit)
	return FetchAll(ctx, firstPage[SavedTrack](c, endpoint), nextPage[SavedTrack](c))
}

// CreatePlaylist creates a playlist owned by userID and returns it.
func (c *Client) CreatePlaylist(ctx context.Context, userID, name string, public bool, description string) (*SimplePlaylist, error) {
	endpoint := fmt.Sprintf("/users/%s/playlists", userID)
	body := createPlaylistRequest{Name: name, Public: public, Description: description}

	var playlist SimplePlaylist
	err := c.caller.Call(ctx, "POST "+endpoint, func(ctx context.Context) error {
		return c.do(ctx, http.MethodPost, endpoint, body, &playlist)
	})
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

// AddTracksToPlaylist appends up to 100 track URIs to a playlist in one call.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	return c.caller.Call(ctx, "POST "+endpoint, func(ctx context.Context) error {
		return c.do(ctx, http.MethodPost, endpoint, addTracksRequest{URIs: uris}, nil)
	})
}

// SaveTracks adds up to 50 tracks to the user's liked songs in one call.
func (c *Client) SaveTracks(ctx context.Context, ids []string) error {
	return c.caller.Call(ctx, "PUT /me/tracks", func(ctx context.Context) error {
		return c.do(ctx, http.MethodPut, "/me/tracks", idsRequest{IDs: ids}, nil)
	})
}

// RemoveSavedTracks removes up to 50 tracks from the user's liked songs in one call.
func (c *Client) RemoveSavedTracks(ctx context.Context, ids []string) error {
	return c.caller.Call(ctx, "DELETE /me/tracks", func(ctx context.Context) error {
		return c.do(ctx, http.MethodDelete, "/me/tracks", idsRequest{IDs: ids}, nil)
	})
}

// UnfollowPlaylist removes the current user as a follower of a playlist. For a
// playlist the user owns this is how the API expresses deletion.
func (c *Client) UnfollowPlaylist(ctx context.Context, playlistID string) error {
	endpoint := fmt.Sprintf("/playlists/%s/followers", playlistID)
	return c.caller.Call(ctx, "DELETE "+endpoint, func(ctx context.Context) error {
		return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
	})
}
