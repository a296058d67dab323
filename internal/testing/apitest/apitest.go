// Package apitest provides a test double for the Spotify client surface.
// It lives apart from the generic helpers so packages the double depends on
// can still use those helpers in their own tests.
package apitest

import (
	"context"
	"fmt"

	"spotmigrate/internal/spotify"
)

// CreateCall records one CreatePlaylist invocation.
type CreateCall struct {
	UserID      string
	Name        string
	Public      bool
	Description string
}

// AddCall records one AddTracksToPlaylist invocation.
type AddCall struct {
	PlaylistID string
	URIs       []string
}

// MockAPI is a test double for the Spotify client surface with per-method
// failure injection and call recording.
type MockAPI struct {
	User         *spotify.User
	UserErr      error
	Playlists    []spotify.SimplePlaylist
	PlaylistsErr error
	TracksByID   map[string][]spotify.PlaylistTrack
	TracksErr    map[string]error
	Saved        []spotify.SavedTrack
	SavedErr     error
	CreateErr    error
	AddErr       error
	AddFailOnce  bool
	SaveErr      error
	SaveFailOnce bool
	RemoveErr    error
	UnfollowErr  error

	CreateCalls   []CreateCall
	AddCalls      []AddCall
	SaveCalls     [][]string
	RemoveCalls   [][]string
	UnfollowCalls []string
	nextID        int
}

func (m *MockAPI) CurrentUser(context.Context) (*spotify.User, error) {
	if m.UserErr != nil {
		return nil, m.UserErr
	}
	if m.User != nil {
		return m.User, nil
	}
	return &spotify.User{ID: "mock-user"}, nil
}

func (m *MockAPI) ListPlaylists(context.Context) ([]spotify.SimplePlaylist, error) {
	if m.PlaylistsErr != nil {
		return nil, m.PlaylistsErr
	}
	return m.Playlists, nil
}

func (m *MockAPI) ListPlaylistTracks(_ context.Context, playlistID string) ([]spotify.PlaylistTrack, error) {
	if err := m.TracksErr[playlistID]; err != nil {
		return nil, err
	}
	return m.TracksByID[playlistID], nil
}

func (m *MockAPI) ListSavedTracks(context.Context) ([]spotify.SavedTrack, error) {
	if m.SavedErr != nil {
		return nil, m.SavedErr
	}
	return m.Saved, nil
}

func (m *MockAPI) CreatePlaylist(_ context.Context, userID, name string, public bool, description string) (*spotify.SimplePlaylist, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.CreateCalls = append(m.CreateCalls, CreateCall{userID, name, public, description})
	m.nextID++
	return &spotify.SimplePlaylist{
		ID:     fmt.Sprintf("created-%d", m.nextID),
		Name:   name,
		Public: public,
		Owner:  spotify.Owner{ID: userID},
	}, nil
}

func (m *MockAPI) AddTracksToPlaylist(_ context.Context, playlistID string, uris []string) error {
	if m.AddErr != nil {
		err := m.AddErr
		if m.AddFailOnce {
			m.AddErr = nil
		}
		return err
	}
	m.AddCalls = append(m.AddCalls, AddCall{playlistID, uris})
	return nil
}

func (m *MockAPI) SaveTracks(_ context.Context, ids []string) error {
	if m.SaveErr != nil {
		err := m.SaveErr
		if m.SaveFailOnce {
			m.SaveErr = nil
		}
		return err
	}
	m.SaveCalls = append(m.SaveCalls, ids)
	return nil
}

func (m *MockAPI) RemoveSavedTracks(_ context.Context, ids []string) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.RemoveCalls = append(m.RemoveCalls, ids)
	return nil
}

func (m *MockAPI) UnfollowPlaylist(_ context.Context, playlistID string) error {
	if m.UnfollowErr != nil {
		return m.UnfollowErr
	}
	m.UnfollowCalls = append(m.UnfollowCalls, playlistID)
	return nil
}

// CatalogTrack builds an API track with the given id and consistent metadata.
func CatalogTrack(id string) *spotify.Track {
	return &spotify.Track{
		ID:      id,
		Name:    "Track " + id,
		URI:     "spotify:track:" + id,
		Artists: []spotify.Artist{{ID: "a-" + id, Name: "Artist " + id}},
		Album:   spotify.Album{ID: "al-" + id, Name: "Album " + id},
	}
}
