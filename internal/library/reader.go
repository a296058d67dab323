package library

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"spotmigrate/internal/shared"
	"spotmigrate/internal/snapshot"
	"spotmigrate/internal/spotify"
)

// Reader captures an account's library as snapshot records.
type Reader struct {
	api    API
	logger *log.Logger
}

// NewReader creates a Reader backed by the given API.
func NewReader(api API, logger *log.Logger) *Reader {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Reader{api: api, logger: logger}
}

// ListPlaylists returns the account's playlists without their tracks, in the
// order the account reports them.
func (r *Reader) ListPlaylists(ctx context.Context) ([]spotify.SimplePlaylist, error) {
	playlists, err := r.api.ListPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing playlists: %v", shared.ErrFetchFailed, err)
	}
	return playlists, nil
}

// ReadPlaylistTracks captures one playlist's tracks. Items whose track is
// gone from the catalog, is a local file, or carries neither an id nor a URI
// are dropped, with a count logged. Nothing unreplayable reaches a snapshot.
func (r *Reader) ReadPlaylistTracks(ctx context.Context, playlistID string) ([]snapshot.TrackRef, error) {
	items, err := r.api.ListPlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	tracks := make([]snapshot.TrackRef, 0, len(items))
	dropped := 0
	for _, item := range items {
		if item.Track == nil || item.IsLocal || item.Track.IsLocal {
			dropped++
			continue
		}
		ref := trackRef(item.Track)
		if !ref.Replayable() {
			dropped++
			continue
		}
		tracks = append(tracks, ref)
	}

	if dropped > 0 {
		r.logger.Warn("dropped unreplayable tracks", "playlist", playlistID, "count", dropped)
	}
	return tracks, nil
}

// ReadPlaylists captures the given playlists, tracks included.
//
// A playlist whose track fetch fails still appears in the records with an
// empty track list, so its name and settings survive the capture; the
// skipped count is returned alongside the records so callers can surface
// the gap. onEach, when non-nil, is invoked before each playlist's fetch so
// callers can report progress.
func (r *Reader) ReadPlaylists(ctx context.Context, playlists []spotify.SimplePlaylist, onEach func(i int, p spotify.SimplePlaylist)) ([]snapshot.PlaylistRecord, int) {
	records := make([]snapshot.PlaylistRecord, 0, len(playlists))
	skipped := 0

	for i, p := range playlists {
		if onEach != nil {
			onEach(i, p)
		}
		tracks, err := r.ReadPlaylistTracks(ctx, p.ID)
		if err != nil {
			r.logger.Warn("track fetch failed, keeping playlist without tracks", "playlist", p.Name, "id", p.ID, "err", err)
			skipped++
			tracks = []snapshot.TrackRef{}
		}

		records = append(records, snapshot.PlaylistRecord{
			SourceID:    p.ID,
			Name:        p.Name,
			Public:      p.Public,
			Description: p.Description,
			Tracks:      tracks,
		})
	}

	return records, skipped
}

// ReadLikedSongs captures the account's saved tracks in save order.
func (r *Reader) ReadLikedSongs(ctx context.Context) ([]snapshot.TrackRef, error) {
	saved, err := r.api.ListSavedTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing liked songs: %v", shared.ErrFetchFailed, err)
	}

	tracks := make([]snapshot.TrackRef, 0, len(saved))
	dropped := 0
	for _, item := range saved {
		if item.Track == nil || item.Track.IsLocal {
			dropped++
			continue
		}
		ref := trackRef(item.Track)
		if !ref.Replayable() {
			dropped++
			continue
		}
		tracks = append(tracks, ref)
	}

	if dropped > 0 {
		r.logger.Warn("dropped unreplayable liked songs", "count", dropped)
	}
	return tracks, nil
}

// trackRef converts an API track into its snapshot form.
func trackRef(t *spotify.Track) snapshot.TrackRef {
	ref := snapshot.TrackRef{
		ID:   t.ID,
		Name: t.Name,
		URI:  t.URI,
	}
	for _, a := range t.Artists {
		ref.Artists = append(ref.Artists, snapshot.ArtistRef{ID: a.ID, Name: a.Name})
	}
	if t.Album.Name != "" || t.Album.ID != "" {
		ref.Album = &snapshot.AlbumRef{ID: t.Album.ID, Name: t.Album.Name}
	}
	return ref
}
