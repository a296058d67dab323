package library

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"spotmigrate/internal/shared"
	"spotmigrate/internal/snapshot"
	"spotmigrate/internal/spotify"
)

const (
	// MaxTracksPerAdd is the API ceiling for one add-to-playlist call.
	MaxTracksPerAdd = 100

	// MaxTracksPerSave is the API ceiling for one save/remove liked-songs call.
	MaxTracksPerSave = 50
)

// BatchOutcome tallies one replay operation.
type BatchOutcome struct {
	Written int // items the API accepted
	Skipped int // items dropped before writing, no usable identity
	Failed  int // items in batches the API rejected
}

// Add folds another outcome into o.
func (o *BatchOutcome) Add(other BatchOutcome) {
	o.Written += other.Written
	o.Skipped += other.Skipped
	o.Failed += other.Failed
}

// Writer replays snapshot records into an account.
//
// Replay is best effort: a batch the API rejects is counted and logged, and
// the writer moves on to the next batch rather than abandoning the run.
type Writer struct {
	api    API
	logger *log.Logger
}

// NewWriter creates a Writer backed by the given API.
func NewWriter(api API, logger *log.Logger) *Writer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Writer{api: api, logger: logger}
}

// ReplayPlaylist creates a fresh playlist owned by userID from the record and
// fills it with the record's tracks in order, MaxTracksPerAdd at a time.
//
// If playlist creation itself fails no tracks are attempted and the error is
// returned; after a successful create, failed batches degrade into the outcome.
func (w *Writer) ReplayPlaylist(ctx context.Context, userID string, record snapshot.PlaylistRecord) (*spotify.SimplePlaylist, BatchOutcome, error) {
	var outcome BatchOutcome

	created, err := w.api.CreatePlaylist(ctx, userID, record.Name, record.Public, record.Description)
	if err != nil {
		return nil, outcome, fmt.Errorf("creating playlist %q: %w", record.Name, err)
	}

	uris := make([]string, 0, len(record.Tracks))
	for _, t := range record.Tracks {
		if !t.Replayable() {
			outcome.Skipped++
			continue
		}
		uris = append(uris, trackURI(t.ID, t.URI))
	}

	for _, batch := range chunk(uris, MaxTracksPerAdd) {
		if err := w.api.AddTracksToPlaylist(ctx, created.ID, batch); err != nil {
			w.logger.Warn("batch of tracks failed", "playlist", record.Name, "size", len(batch), "err", err)
			outcome.Failed += len(batch)
			continue
		}
		outcome.Written += len(batch)
	}

	return created, outcome, nil
}

// LikeTracks saves the given tracks to the account's liked songs in order,
// MaxTracksPerSave at a time.
func (w *Writer) LikeTracks(ctx context.Context, tracks []snapshot.TrackRef) BatchOutcome {
	var outcome BatchOutcome

	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if !t.Replayable() {
			outcome.Skipped++
			continue
		}
		ids = append(ids, trackID(t.ID, t.URI))
	}

	for _, batch := range chunk(ids, MaxTracksPerSave) {
		if err := w.api.SaveTracks(ctx, batch); err != nil {
			w.logger.Warn("batch of liked songs failed", "size", len(batch), "err", err)
			outcome.Failed += len(batch)
			continue
		}
		outcome.Written += len(batch)
	}

	return outcome
}

// UnlikeTracks removes the given track ids from the account's liked songs,
// MaxTracksPerSave at a time.
func (w *Writer) UnlikeTracks(ctx context.Context, ids []string) BatchOutcome {
	var outcome BatchOutcome

	for _, batch := range chunk(ids, MaxTracksPerSave) {
		if err := w.api.RemoveSavedTracks(ctx, batch); err != nil {
			w.logger.Warn("batch of liked song removals failed", "size", len(batch), "err", err)
			outcome.Failed += len(batch)
			continue
		}
		outcome.Written += len(batch)
	}

	return outcome
}
