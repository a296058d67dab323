// package library moves playlists and liked songs between a Spotify account
// and the snapshot format.
//
// [Reader] pulls a full library out of an account; [Writer] replays snapshot
// records into one. Both operate against the [API] interface rather than the
// concrete client so they can be exercised without a network.
package library

import (
	"context"
	"strings"

	"spotmigrate/internal/spotify"
)

// API is the slice of the Spotify client that library operations need.
// *spotify.Client satisfies it.
type API interface {
	CurrentUser(ctx context.Context) (*spotify.User, error)
	ListPlaylists(ctx context.Context) ([]spotify.SimplePlaylist, error)
	ListPlaylistTracks(ctx context.Context, playlistID string) ([]spotify.PlaylistTrack, error)
	ListSavedTracks(ctx context.Context) ([]spotify.SavedTrack, error)
	CreatePlaylist(ctx context.Context, userID, name string, public bool, description string) (*spotify.SimplePlaylist, error)
	AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error
	SaveTracks(ctx context.Context, ids []string) error
	RemoveSavedTracks(ctx context.Context, ids []string) error
	UnfollowPlaylist(ctx context.Context, playlistID string) error
}

// chunk splits items into consecutive groups of at most size.
func chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	var groups [][]T
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		groups = append(groups, items[start:end])
	}
	return groups
}

// trackID extracts a bare track id, falling back to the URI's last segment
// for records that only carry a URI.
func trackID(id, uri string) string {
	if id != "" {
		return id
	}
	if idx := strings.LastIndex(uri, ":"); idx >= 0 {
		return uri[idx+1:]
	}
	return uri
}

// trackURI returns a replayable spotify:track URI, deriving one from the bare
// id when the record has no URI.
func trackURI(id, uri string) string {
	if uri != "" {
		return uri
	}
	if id != "" {
		return "spotify:track:" + id
	}
	return ""
}
