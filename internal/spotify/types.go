// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package spotify

import "fmt"

// User represents a Spotify user profile.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
}

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Artist represents a Spotify artist.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Album represents a Spotify album.
type Album struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []Artist `json:"artists"`
	URI     string   `json:"uri"`
}

// Track represents a Spotify track.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	DurationMS int      `json:"duration_ms"`
	IsLocal    bool     `json:"is_local"`
	URI        string   `json:"uri"`
}

// PlaylistTrack represents a track within a playlist context.
//
// Track is nil for items whose underlying track has been removed from the catalog.
type PlaylistTrack struct {
	AddedAt string `json:"added_at"`
	IsLocal bool   `json:"is_local"`
	Track   *Track `json:"track"`
}

// SavedTrack represents a track saved in the user's library.
type SavedTrack struct {
	AddedAt string `json:"added_at"`
	Track   *Track `json:"track"`
}

// Owner identifies the account that owns a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistTrackCount struct {
	Total int `json:"total"`
}

// SimplePlaylist represents a simplified playlist object (used in lists and create responses).
type SimplePlaylist struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Owner       Owner              `json:"owner"`
	Public      bool               `json:"public"`
	Tracks      playlistTrackCount `json:"tracks"`
	Images      []Image            `json:"images"`
	URI         string             `json:"uri"`
}

// Page is the Spotify paginated response envelope.
//
// Next holds the absolute URL of the following page, nil on the last page.
type Page[T any] struct {
	Items    []T     `json:"items"`
	Total    int     `json:"total"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// createPlaylistRequest is the body for POST /users/{id}/playlists.
type createPlaylistRequest struct {
	Name        string `json:"name"`
	Public      bool   `json:"public"`
	Description string `json:"description"`
}

// addTracksRequest is the body for POST /playlists/{id}/tracks.
type addTracksRequest struct {
	URIs []string `json:"uris"`
}

// idsRequest is the body for PUT/DELETE /me/tracks.
type idsRequest struct {
	IDs []string `json:"ids"`
}

// errorResponse is the envelope Spotify wraps API errors in.
type errorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p SimplePlaylist) String() string {
	return fmt.Sprintf("%s (%s, %d tracks)", p.Name, p.ID, p.Tracks.Total)
}
