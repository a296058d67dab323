package tasks

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"spotmigrate/internal/shared"
	"spotmigrate/internal/snapshot"
	"spotmigrate/internal/spotify"
	"spotmigrate/internal/testing/apitest"
)

func TestExport(t *testing.T) {
	ctx := context.Background()
	logger := shared.NewLogger(io.Discard)

	newAPI := func() *apitest.MockAPI {
		return &apitest.MockAPI{
			User: &spotify.User{ID: "alice"},
			Playlists: []spotify.SimplePlaylist{
				{ID: "p1", Name: "First", Public: true, Owner: spotify.Owner{ID: "alice"}},
				{ID: "p2", Name: "Second", Owner: spotify.Owner{ID: "alice"}},
			},
			TracksByID: map[string][]spotify.PlaylistTrack{
				"p1": {{Track: apitest.CatalogTrack("t1")}, {Track: apitest.CatalogTrack("t2")}},
				"p2": {{Track: apitest.CatalogTrack("t3")}},
			},
			Saved: []spotify.SavedTrack{{Track: apitest.CatalogTrack("t4")}},
		}
	}

	t.Run("Full Capture", func(t *testing.T) {
		api := newAPI()
		engine := NewMigrationEngine(api, logger)
		path := filepath.Join(t.TempDir(), "library.json")

		progress := make(chan ProgressUpdate, 64)
		report, err := engine.Export(ctx, progress, ExportOptions{SnapshotPath: path, IncludeLiked: true})
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}

		if report.Account != "alice" || report.Kind != KindExport {
			t.Errorf("report identity wrong: %+v", report)
		}
		if report.Playlists != 2 || report.Tracks != 3 || report.LikedSongs != 1 {
			t.Errorf("report counts wrong: %+v", report)
		}
		if report.Outcome != OutcomeComplete {
			t.Errorf("expected complete outcome, got %s", report.Outcome)
		}

		snap, err := snapshot.Load(path)
		if err != nil {
			t.Fatalf("snapshot unreadable: %v", err)
		}
		if snap.OwnerID != "alice" || len(snap.Playlists) != 2 || len(snap.LikedSongs) != 1 {
			t.Errorf("snapshot content wrong: %+v", snap)
		}
		if snap.Playlists[0].SourceID != "p1" || len(snap.Playlists[0].Tracks) != 2 {
			t.Errorf("first playlist wrong: %+v", snap.Playlists[0])
		}
		if snap.ExportedAt.IsZero() {
			t.Error("exported_at not stamped")
		}

		close(progress)
		phases := map[Phase]bool{}
		for u := range progress {
			phases[u.Phase] = true
		}
		for _, want := range []Phase{FetchProfile, FetchPlaylists, FetchTracks, FetchLiked, WriteSnapshot} {
			if !phases[want] {
				t.Errorf("missing progress phase %s", want)
			}
		}
	})

	t.Run("Selection Skips Track Fetch For Excluded Playlists", func(t *testing.T) {
		api := newAPI()
		api.TracksErr = map[string]error{"p2": errors.New("must not be fetched")}
		engine := NewMigrationEngine(api, logger)
		path := filepath.Join(t.TempDir(), "library.json")

		report, err := engine.Export(ctx, nil, ExportOptions{
			SnapshotPath: path,
			Selected:     map[string]bool{"p1": true},
		})
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if report.Playlists != 1 || report.Skipped != 0 {
			t.Errorf("selection not honored: %+v", report)
		}

		snap, _ := snapshot.Load(path)
		if len(snap.Playlists) != 1 || snap.Playlists[0].SourceID != "p1" {
			t.Errorf("snapshot should only hold p1: %+v", snap.Playlists)
		}
	})

	t.Run("Without Liked Songs", func(t *testing.T) {
		api := newAPI()
		api.SavedErr = errors.New("must not be fetched")
		engine := NewMigrationEngine(api, logger)
		path := filepath.Join(t.TempDir(), "library.json")

		_, err := engine.Export(ctx, nil, ExportOptions{SnapshotPath: path})
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}

		snap, _ := snapshot.Load(path)
		if len(snap.LikedSongs) != 0 {
			t.Errorf("liked songs should be empty: %+v", snap.LikedSongs)
		}
	})

	t.Run("Failed Playlist Degrades To Partial", func(t *testing.T) {
		api := newAPI()
		api.TracksErr = map[string]error{"p1": errors.New("boom")}
		engine := NewMigrationEngine(api, logger)
		path := filepath.Join(t.TempDir(), "library.json")

		report, err := engine.Export(ctx, nil, ExportOptions{SnapshotPath: path})
		if err != nil {
			t.Fatalf("export should degrade, not fail: %v", err)
		}
		if report.Playlists != 2 || report.Skipped != 1 {
			t.Errorf("unexpected report: %+v", report)
		}
		if report.Outcome != OutcomePartial {
			t.Errorf("expected partial outcome, got %s", report.Outcome)
		}

		// the failed playlist keeps its metadata, just without tracks
		snap, err := snapshot.Load(path)
		if err != nil {
			t.Fatalf("snapshot unreadable: %v", err)
		}
		if len(snap.Playlists) != 2 {
			t.Fatalf("snapshot must keep both playlists, got %d", len(snap.Playlists))
		}
		if snap.Playlists[0].SourceID != "p1" || snap.Playlists[0].Name != "First" {
			t.Errorf("failed playlist metadata lost: %+v", snap.Playlists[0])
		}
		if len(snap.Playlists[0].Tracks) != 0 {
			t.Errorf("failed playlist must have no tracks: %+v", snap.Playlists[0].Tracks)
		}
	})

	t.Run("Liked Fetch Failure Keeps Playlists", func(t *testing.T) {
		api := newAPI()
		api.SavedErr = errors.New("boom")
		engine := NewMigrationEngine(api, logger)
		path := filepath.Join(t.TempDir(), "library.json")

		report, err := engine.Export(ctx, nil, ExportOptions{SnapshotPath: path, IncludeLiked: true})
		if err != nil {
			t.Fatalf("export must survive a liked songs failure: %v", err)
		}
		if report.Playlists != 2 || report.LikedSongs != 0 {
			t.Errorf("unexpected report: %+v", report)
		}
		if report.Outcome != OutcomePartial {
			t.Errorf("expected partial outcome, got %s", report.Outcome)
		}

		snap, err := snapshot.Load(path)
		if err != nil {
			t.Fatalf("snapshot unreadable: %v", err)
		}
		if len(snap.Playlists) != 2 || len(snap.LikedSongs) != 0 {
			t.Errorf("snapshot content wrong: %+v", snap)
		}
	})

	t.Run("Profile Failure Aborts", func(t *testing.T) {
		api := newAPI()
		api.UserErr = errors.New("boom")
		engine := NewMigrationEngine(api, logger)

		_, err := engine.Export(ctx, nil, ExportOptions{SnapshotPath: filepath.Join(t.TempDir(), "x.json")})
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	logger := shared.NewLogger(io.Discard)

	writeSnapshot := func(t *testing.T, snap *snapshot.Snapshot) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "library.json")
		if err := snapshot.Save(snap, path); err != nil {
			t.Fatalf("failed to write snapshot: %v", err)
		}
		return path
	}

	sample := func() *snapshot.Snapshot {
		return &snapshot.Snapshot{
			OwnerID: "alice",
			Playlists: []snapshot.PlaylistRecord{
				{SourceID: "a", Name: "Alpha", Public: true, Tracks: []snapshot.TrackRef{
					{ID: "t1", URI: "spotify:track:t1"},
					{ID: "t2", URI: "spotify:track:t2"},
				}},
				{SourceID: "b", Name: "Beta", Tracks: []snapshot.TrackRef{
					{ID: "t3", URI: "spotify:track:t3"},
				}},
				{SourceID: "c", Name: "Gamma", Tracks: []snapshot.TrackRef{}},
			},
			LikedSongs: []snapshot.TrackRef{
				{ID: "t4", URI: "spotify:track:t4"},
				{ID: "t5", URI: "spotify:track:t5"},
			},
		}
	}

	t.Run("Full Replay", func(t *testing.T) {
		api := &apitest.MockAPI{User: &spotify.User{ID: "bob"}}
		engine := NewMigrationEngine(api, logger)
		path := writeSnapshot(t, sample())

		report, err := engine.Import(ctx, nil, ImportOptions{SnapshotPath: path, IncludeLiked: true})
		if err != nil {
			t.Fatalf("import failed: %v", err)
		}

		if report.Account != "bob" || report.Kind != KindImport {
			t.Errorf("report identity wrong: %+v", report)
		}
		if report.Playlists != 3 || report.Tracks != 3 || report.LikedSongs != 2 {
			t.Errorf("report counts wrong: %+v", report)
		}

		if len(api.CreateCalls) != 3 {
			t.Fatalf("expected 3 playlist creates, got %d", len(api.CreateCalls))
		}
		if api.CreateCalls[0].Name != "Alpha" || !api.CreateCalls[0].Public {
			t.Errorf("metadata lost on create: %+v", api.CreateCalls[0])
		}
		if api.CreateCalls[0].UserID != "bob" {
			t.Errorf("playlists must be created for the destination account, got %s", api.CreateCalls[0].UserID)
		}
		if len(api.SaveCalls) != 1 || len(api.SaveCalls[0]) != 2 {
			t.Errorf("unexpected liked saves: %v", api.SaveCalls)
		}
	})

	t.Run("Selection Replays Subset", func(t *testing.T) {
		api := &apitest.MockAPI{User: &spotify.User{ID: "bob"}}
		engine := NewMigrationEngine(api, logger)
		path := writeSnapshot(t, sample())

		report, err := engine.Import(ctx, nil, ImportOptions{
			SnapshotPath: path,
			Selected:     map[string]bool{"a": true, "c": true},
		})
		if err != nil {
			t.Fatalf("import failed: %v", err)
		}
		if report.Playlists != 2 {
			t.Errorf("expected 2 playlists, got %d", report.Playlists)
		}
		if len(api.CreateCalls) != 2 || api.CreateCalls[0].Name != "Alpha" || api.CreateCalls[1].Name != "Gamma" {
			t.Errorf("unexpected creates: %+v", api.CreateCalls)
		}
	})

	t.Run("Create Failure Skips Playlist And Continues", func(t *testing.T) {
		api := &apitest.MockAPI{User: &spotify.User{ID: "bob"}, CreateErr: errors.New("boom")}
		engine := NewMigrationEngine(api, logger)
		path := writeSnapshot(t, sample())

		report, err := engine.Import(ctx, nil, ImportOptions{SnapshotPath: path})
		if err != nil {
			t.Fatalf("import should degrade, not fail: %v", err)
		}
		if report.Playlists != 0 {
			t.Errorf("expected no playlists created, got %d", report.Playlists)
		}
		if report.Outcome != OutcomePartial {
			t.Errorf("expected partial outcome, got %s", report.Outcome)
		}
	})

	t.Run("Missing Snapshot", func(t *testing.T) {
		engine := NewMigrationEngine(&apitest.MockAPI{}, logger)

		_, err := engine.Import(ctx, nil, ImportOptions{SnapshotPath: filepath.Join(t.TempDir(), "nope.json")})
		if !errors.Is(err, shared.ErrSnapshotIO) {
			t.Errorf("expected ErrSnapshotIO, got %v", err)
		}
	})

	t.Run("Malformed Snapshot", func(t *testing.T) {
		engine := NewMigrationEngine(&apitest.MockAPI{}, logger)
		path := filepath.Join(t.TempDir(), "bad.json")
		os.WriteFile(path, []byte(`not json`), 0o600)

		_, err := engine.Import(ctx, nil, ImportOptions{SnapshotPath: path})
		if !errors.Is(err, shared.ErrSnapshotFormat) {
			t.Errorf("expected ErrSnapshotFormat, got %v", err)
		}
	})
}

func TestErase(t *testing.T) {
	ctx := context.Background()
	logger := shared.NewLogger(io.Discard)

	newAPI := func() *apitest.MockAPI {
		return &apitest.MockAPI{
			User: &spotify.User{ID: "alice"},
			Playlists: []spotify.SimplePlaylist{
				{ID: "p1", Name: "Mine", Owner: spotify.Owner{ID: "alice"}},
				{ID: "p2", Name: "Someone Elses", Owner: spotify.Owner{ID: "carol"}},
				{ID: "p3", Name: "Also Mine", Owner: spotify.Owner{ID: "alice"}},
			},
			Saved: []spotify.SavedTrack{
				{Track: apitest.CatalogTrack("t1")},
				{Track: apitest.CatalogTrack("t2")},
			},
		}
	}

	t.Run("Refuses Without Affirmation", func(t *testing.T) {
		api := newAPI()
		engine := NewMigrationEngine(api, logger)

		_, err := engine.Erase(ctx, nil, EraseOptions{IncludeLiked: true})
		if !errors.Is(err, shared.ErrNotAffirmed) {
			t.Fatalf("expected ErrNotAffirmed, got %v", err)
		}
		if len(api.UnfollowCalls) != 0 || len(api.RemoveCalls) != 0 {
			t.Error("no API mutation may happen without affirmation")
		}
	})

	t.Run("Removes Owned Playlists Then Liked Songs", func(t *testing.T) {
		api := newAPI()
		engine := NewMigrationEngine(api, logger)

		report, err := engine.Erase(ctx, nil, EraseOptions{Affirmed: true, IncludeLiked: true})
		if err != nil {
			t.Fatalf("erase failed: %v", err)
		}

		if len(api.UnfollowCalls) != 2 || api.UnfollowCalls[0] != "p1" || api.UnfollowCalls[1] != "p3" {
			t.Errorf("unexpected unfollows: %v", api.UnfollowCalls)
		}
		if len(api.RemoveCalls) != 1 || len(api.RemoveCalls[0]) != 2 {
			t.Errorf("unexpected liked removals: %v", api.RemoveCalls)
		}

		if report.Playlists != 2 || report.LikedSongs != 2 {
			t.Errorf("report counts wrong: %+v", report)
		}
		if report.Skipped != 1 {
			t.Errorf("followed playlist should count as skipped: %+v", report)
		}
		if report.Outcome != OutcomePartial {
			t.Errorf("expected partial outcome with a skipped playlist, got %s", report.Outcome)
		}
	})

	t.Run("Leaves Followed Playlists Alone", func(t *testing.T) {
		api := newAPI()
		engine := NewMigrationEngine(api, logger)

		_, err := engine.Erase(ctx, nil, EraseOptions{Affirmed: true})
		if err != nil {
			t.Fatalf("erase failed: %v", err)
		}
		for _, id := range api.UnfollowCalls {
			if id == "p2" {
				t.Error("erase must not touch playlists owned by another account")
			}
		}
	})

	t.Run("Selection Restricts Removal", func(t *testing.T) {
		api := newAPI()
		engine := NewMigrationEngine(api, logger)

		report, err := engine.Erase(ctx, nil, EraseOptions{
			Affirmed: true,
			Selected: map[string]bool{"p3": true},
		})
		if err != nil {
			t.Fatalf("erase failed: %v", err)
		}

		if len(api.UnfollowCalls) != 1 || api.UnfollowCalls[0] != "p3" {
			t.Errorf("expected only p3 removed, got %v", api.UnfollowCalls)
		}
		if report.Skipped != 0 {
			t.Errorf("deselected playlists must not count as skipped: %+v", report)
		}
		if report.Outcome != OutcomeComplete {
			t.Errorf("expected complete outcome, got %s", report.Outcome)
		}
	})

	t.Run("Without Liked Songs", func(t *testing.T) {
		api := newAPI()
		api.SavedErr = errors.New("must not be fetched")
		engine := NewMigrationEngine(api, logger)

		report, err := engine.Erase(ctx, nil, EraseOptions{Affirmed: true})
		if err != nil {
			t.Fatalf("erase failed: %v", err)
		}
		if report.LikedSongs != 0 || len(api.RemoveCalls) != 0 {
			t.Errorf("liked songs must be untouched: %+v", report)
		}
	})
}

func TestAbortedReport(t *testing.T) {
	started := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	report := AbortedReport(KindImport, "alice", "snap.json", started, errors.New("boom"))

	if report.Kind != KindImport || report.Account != "alice" || report.SnapshotPath != "snap.json" {
		t.Errorf("report identity wrong: %+v", report)
	}
	if report.Outcome != OutcomeAborted {
		t.Errorf("expected aborted outcome, got %s", report.Outcome)
	}
	if report.Error != "boom" {
		t.Errorf("expected error message recorded, got %q", report.Error)
	}
	if !report.StartedAt.Equal(started) || report.FinishedAt.IsZero() {
		t.Errorf("timestamps wrong: %+v", report)
	}
}
