package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"spotmigrate/internal/shared"
)

// Save writes the snapshot to path as indented JSON.
//
// The write goes through a temp file in the same directory followed by a
// rename, so a crash mid-write never leaves a truncated snapshot behind.
func Save(s *Snapshot, path string) error {
	if s.Playlists == nil {
		s.Playlists = []PlaylistRecord{}
	}
	if s.LikedSongs == nil {
		s.LikedSongs = []TrackRef{}
	}

	data, err := shared.MarshalJSON(s, true)
	if err != nil {
		return fmt.Errorf("%w: failed to encode snapshot: %v", shared.ErrSnapshotIO, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %v", shared.ErrSnapshotIO, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to write snapshot: %v", shared.ErrSnapshotIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to close snapshot: %v", shared.ErrSnapshotIO, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to move snapshot into place: %v", shared.ErrSnapshotIO, err)
	}

	return nil
}

// Load reads and validates a snapshot file.
//
// Read and filesystem failures wrap [shared.ErrSnapshotIO]; malformed or
// structurally wrong JSON (not an object, missing playlists or liked_songs)
// wraps [shared.ErrSnapshotFormat]. The two never overlap, so callers can tell
// "file is broken" from "file is missing".
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSnapshotIO, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %s is not a JSON object: %v", shared.ErrSnapshotFormat, path, err)
	}

	for _, key := range []string{"playlists", "liked_songs"} {
		raw, ok := fields[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s is missing %q", shared.ErrSnapshotFormat, path, key)
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %s: %q is not an array: %v", shared.ErrSnapshotFormat, path, key, err)
		}
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrSnapshotFormat, path, err)
	}

	if s.Playlists == nil {
		s.Playlists = []PlaylistRecord{}
	}
	if s.LikedSongs == nil {
		s.LikedSongs = []TrackRef{}
	}

	return &s, nil
}
