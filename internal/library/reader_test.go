package library

import (
	"context"
	"errors"
	"io"
	"testing"

	"spotmigrate/internal/shared"
	"spotmigrate/internal/spotify"
	"spotmigrate/internal/testing/apitest"
)

func TestReader(t *testing.T) {
	ctx := context.Background()
	logger := shared.NewLogger(io.Discard)

	t.Run("ListPlaylists", func(t *testing.T) {
		api := &apitest.MockAPI{
			Playlists: []spotify.SimplePlaylist{
				{ID: "p1", Name: "First"},
				{ID: "p2", Name: "Second"},
			},
		}
		reader := NewReader(api, logger)

		playlists, err := reader.ListPlaylists(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(playlists) != 2 || playlists[0].ID != "p1" {
			t.Errorf("unexpected playlists: %+v", playlists)
		}
	})

	t.Run("ListPlaylists Failure Wraps ErrFetchFailed", func(t *testing.T) {
		api := &apitest.MockAPI{PlaylistsErr: errors.New("boom")}
		reader := NewReader(api, logger)

		_, err := reader.ListPlaylists(ctx)
		if !errors.Is(err, shared.ErrFetchFailed) {
			t.Errorf("expected ErrFetchFailed, got %v", err)
		}
	})

	t.Run("ReadPlaylistTracks Filters Unreplayable Items", func(t *testing.T) {
		api := &apitest.MockAPI{
			TracksByID: map[string][]spotify.PlaylistTrack{
				"p1": {
					{Track: apitest.CatalogTrack("t1")},
					{Track: nil}, // removed from catalog
					{Track: apitest.CatalogTrack("t2")},
					{IsLocal: true, Track: apitest.CatalogTrack("t3")},
				},
			},
		}
		reader := NewReader(api, logger)

		tracks, err := reader.ReadPlaylistTracks(ctx, "p1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 2 {
			t.Fatalf("expected 2 replayable tracks, got %d", len(tracks))
		}
		if tracks[0].ID != "t1" || tracks[1].ID != "t2" {
			t.Errorf("order or filtering broken: %+v", tracks)
		}
		if tracks[0].URI != "spotify:track:t1" {
			t.Errorf("uri lost: %+v", tracks[0])
		}
		if len(tracks[0].Artists) != 1 || tracks[0].Artists[0].Name != "Artist t1" {
			t.Errorf("artist metadata lost: %+v", tracks[0].Artists)
		}
		if tracks[0].Album == nil || tracks[0].Album.Name != "Album t1" {
			t.Errorf("album metadata lost: %+v", tracks[0].Album)
		}
	})

	t.Run("ReadPlaylistTracks Drops Refs Without ID Or URI", func(t *testing.T) {
		api := &apitest.MockAPI{
			TracksByID: map[string][]spotify.PlaylistTrack{
				"p1": {
					{Track: apitest.CatalogTrack("t1")},
					{Track: &spotify.Track{Name: "ghost"}}, // no id, no uri
					{Track: apitest.CatalogTrack("t2")},
				},
			},
		}
		reader := NewReader(api, logger)

		tracks, err := reader.ReadPlaylistTracks(ctx, "p1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 2 || tracks[0].ID != "t1" || tracks[1].ID != "t2" {
			t.Errorf("unreplayable ref survived: %+v", tracks)
		}
	})

	t.Run("ReadPlaylists Keeps Failing Playlist Without Tracks", func(t *testing.T) {
		api := &apitest.MockAPI{
			TracksByID: map[string][]spotify.PlaylistTrack{
				"p1": {{Track: apitest.CatalogTrack("t1")}},
				"p3": {{Track: apitest.CatalogTrack("t2")}},
			},
			TracksErr: map[string]error{
				"p2": errors.New("boom"),
			},
		}
		reader := NewReader(api, logger)

		playlists := []spotify.SimplePlaylist{
			{ID: "p1", Name: "First", Public: true},
			{ID: "p2", Name: "Broken"},
			{ID: "p3", Name: "Third", Description: "keeper"},
		}

		var seen []string
		records, skipped := reader.ReadPlaylists(ctx, playlists, func(_ int, p spotify.SimplePlaylist) {
			seen = append(seen, p.ID)
		})
		if len(seen) != 3 {
			t.Errorf("expected progress callback for every playlist, got %v", seen)
		}
		if skipped != 1 {
			t.Errorf("expected 1 skipped playlist, got %d", skipped)
		}
		if len(records) != 3 {
			t.Fatalf("expected 3 records, got %d", len(records))
		}
		if records[0].SourceID != "p1" || !records[0].Public || len(records[0].Tracks) != 1 {
			t.Errorf("first record wrong: %+v", records[0])
		}
		if records[1].SourceID != "p2" || records[1].Name != "Broken" {
			t.Errorf("failing playlist metadata lost: %+v", records[1])
		}
		if records[1].Tracks == nil || len(records[1].Tracks) != 0 {
			t.Errorf("failing playlist must carry an empty track list: %+v", records[1].Tracks)
		}
		if records[2].SourceID != "p3" || records[2].Description != "keeper" {
			t.Errorf("third record wrong: %+v", records[2])
		}
	})

	t.Run("ReadLikedSongs Filters And Keeps Order", func(t *testing.T) {
		api := &apitest.MockAPI{
			Saved: []spotify.SavedTrack{
				{Track: apitest.CatalogTrack("t1")},
				{Track: nil},
				{Track: &spotify.Track{Name: "ghost"}},
				{Track: apitest.CatalogTrack("t2")},
			},
		}
		reader := NewReader(api, logger)

		tracks, err := reader.ReadLikedSongs(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 2 || tracks[0].ID != "t1" || tracks[1].ID != "t2" {
			t.Errorf("unexpected liked songs: %+v", tracks)
		}
	})

	t.Run("ReadLikedSongs Failure Wraps ErrFetchFailed", func(t *testing.T) {
		api := &apitest.MockAPI{SavedErr: errors.New("boom")}
		reader := NewReader(api, logger)

		_, err := reader.ReadLikedSongs(ctx)
		if !errors.Is(err, shared.ErrFetchFailed) {
			t.Errorf("expected ErrFetchFailed, got %v", err)
		}
	})
}
