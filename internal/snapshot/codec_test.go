package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"spotmigrate/internal/shared"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		OwnerID:    "alice",
		ExportedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Playlists: []PlaylistRecord{
			{
				SourceID:    "p1",
				Name:        "Morning Mix",
				Public:      true,
				Description: "wake up songs",
				Tracks: []TrackRef{
					{ID: "t1", Name: "Opener", URI: "spotify:track:t1", Artists: []ArtistRef{{Name: "Band"}}},
					{ID: "t2", Name: "Closer", URI: "spotify:track:t2"},
				},
			},
			{SourceID: "p2", Name: "Empty One", Tracks: []TrackRef{}},
		},
		LikedSongs: []TrackRef{
			{ID: "t3", Name: "Favorite", URI: "spotify:track:t3"},
		},
	}
}

func TestSaveLoad(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "library.json")
		original := sampleSnapshot()

		if err := Save(original, path); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		loaded, err := Load(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}

		if loaded.OwnerID != "alice" {
			t.Errorf("owner lost: %s", loaded.OwnerID)
		}
		if !loaded.ExportedAt.Equal(original.ExportedAt) {
			t.Errorf("timestamp changed: %v vs %v", loaded.ExportedAt, original.ExportedAt)
		}
		if len(loaded.Playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(loaded.Playlists))
		}
		p := loaded.Playlists[0]
		if p.SourceID != "p1" || p.Name != "Morning Mix" || !p.Public || p.Description != "wake up songs" {
			t.Errorf("playlist metadata lost: %+v", p)
		}
		if len(p.Tracks) != 2 || p.Tracks[0].URI != "spotify:track:t1" {
			t.Errorf("playlist tracks lost: %+v", p.Tracks)
		}
		if len(p.Tracks[0].Artists) != 1 || p.Tracks[0].Artists[0].Name != "Band" {
			t.Errorf("artist metadata lost: %+v", p.Tracks[0].Artists)
		}
		if len(loaded.LikedSongs) != 1 || loaded.LikedSongs[0].ID != "t3" {
			t.Errorf("liked songs lost: %+v", loaded.LikedSongs)
		}
	})

	t.Run("Empty Collections Serialize As Arrays", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.json")
		if err := Save(&Snapshot{}, path); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		content := string(raw)
		if strings.Contains(content, `"playlists": null`) || strings.Contains(content, `"liked_songs": null`) {
			t.Errorf("collections must serialize as arrays, got:\n%s", content)
		}

		loaded, err := Load(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if loaded.Playlists == nil || loaded.LikedSongs == nil {
			t.Error("loaded collections should be empty slices, not nil")
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		if !errors.Is(err, shared.ErrSnapshotIO) {
			t.Errorf("expected ErrSnapshotIO, got %v", err)
		}
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		os.WriteFile(path, []byte(`{"playlists": [`), 0o600)

		_, err := Load(path)
		if !errors.Is(err, shared.ErrSnapshotFormat) {
			t.Errorf("expected ErrSnapshotFormat, got %v", err)
		}
		if !strings.Contains(err.Error(), path) {
			t.Errorf("error must name the file: %v", err)
		}
	})

	t.Run("Top Level Array Rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "array.json")
		os.WriteFile(path, []byte(`[{"id": "p1"}]`), 0o600)

		_, err := Load(path)
		if !errors.Is(err, shared.ErrSnapshotFormat) {
			t.Errorf("expected ErrSnapshotFormat, got %v", err)
		}
		if !strings.Contains(err.Error(), path) {
			t.Errorf("error must name the file: %v", err)
		}
	})

	t.Run("Missing Playlists Key Rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "partial.json")
		os.WriteFile(path, []byte(`{"liked_songs": []}`), 0o600)

		_, err := Load(path)
		if !errors.Is(err, shared.ErrSnapshotFormat) {
			t.Errorf("expected ErrSnapshotFormat, got %v", err)
		}
		if !strings.Contains(err.Error(), path) {
			t.Errorf("error must name the file: %v", err)
		}
	})

	t.Run("Playlists Not An Array Rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wrongtype.json")
		os.WriteFile(path, []byte(`{"playlists": {}, "liked_songs": []}`), 0o600)

		_, err := Load(path)
		if !errors.Is(err, shared.ErrSnapshotFormat) {
			t.Errorf("expected ErrSnapshotFormat, got %v", err)
		}
		if !strings.Contains(err.Error(), path) {
			t.Errorf("error must name the file: %v", err)
		}
	})

	t.Run("Save Leaves No Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		if err := Save(sampleSnapshot(), filepath.Join(dir, "out.json")); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("readdir failed: %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "out.json" {
			names := []string{}
			for _, e := range entries {
				names = append(names, e.Name())
			}
			t.Errorf("expected only out.json, got %v", names)
		}
	})

	t.Run("Save Into Missing Directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope", "out.json")
		err := Save(sampleSnapshot(), path)
		if !errors.Is(err, shared.ErrSnapshotIO) {
			t.Fatalf("expected ErrSnapshotIO, got %v", err)
		}
	})
}

func TestTrackRef(t *testing.T) {
	cases := []struct {
		name  string
		track TrackRef
		want  bool
	}{
		{"With ID And URI", TrackRef{ID: "t1", URI: "spotify:track:t1"}, true},
		{"URI Only", TrackRef{URI: "spotify:track:t1"}, true},
		{"ID Only", TrackRef{ID: "t1"}, true},
		{"Neither", TrackRef{Name: "local file"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.track.Replayable() != tc.want {
				t.Errorf("Replayable() = %v, want %v", tc.track.Replayable(), tc.want)
			}
		})
	}
}
