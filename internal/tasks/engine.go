// package tasks orchestrates full-library operations against one account.
//
// The core abstraction is MigrationEngine, which drives export (account to
// snapshot file), import (snapshot file to account), and erase (clearing an
// account ahead of a re-import). Operations emit progress updates via channels
// for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"spotmigrate/internal/library"
	"spotmigrate/internal/shared"
	"spotmigrate/internal/snapshot"
	"spotmigrate/internal/spotify"
)

// Kind names a migration operation for reports and run history.
type Kind string

const (
	KindExport Kind = "export"
	KindImport Kind = "import"
	KindErase  Kind = "erase"
)

// Outcome classifies how a run ended.
type Outcome string

const (
	// OutcomeComplete means every item the run touched was handled.
	OutcomeComplete Outcome = "complete"

	// OutcomePartial means the run finished but some items were skipped or
	// failed along the way.
	OutcomePartial Outcome = "partial"

	// OutcomeAborted means the run stopped before finishing. The report's
	// Error field says why.
	OutcomeAborted Outcome = "aborted"
)

// RunReport summarizes one finished operation.
type RunReport struct {
	Kind         Kind
	Account      string
	SnapshotPath string
	Playlists    int // playlists captured, created, or removed
	Tracks       int // playlist tracks captured or written
	LikedSongs   int // liked songs captured, written, or removed
	Skipped      int    // items skipped or lost to failed batches
	Error        string // set when Outcome is OutcomeAborted
	Outcome      Outcome
	StartedAt    time.Time
	FinishedAt   time.Time
}

// AbortedReport builds a report for a run that stopped with an error, so the
// failure still lands in the run history.
func AbortedReport(kind Kind, account, snapshotPath string, started time.Time, err error) *RunReport {
	report := &RunReport{
		Kind:         kind,
		Account:      account,
		SnapshotPath: snapshotPath,
		Outcome:      OutcomeAborted,
		StartedAt:    started,
		FinishedAt:   time.Now(),
	}
	if err != nil {
		report.Error = err.Error()
	}
	return report
}

// ExportOptions controls a library capture.
type ExportOptions struct {
	SnapshotPath string
	IncludeLiked bool
	// Selected restricts the capture to these source playlist ids. Nil or
	// empty means every playlist.
	Selected map[string]bool
}

// ImportOptions controls a snapshot replay.
type ImportOptions struct {
	SnapshotPath string
	IncludeLiked bool
	// Selected restricts the replay to records with these source ids. Nil or
	// empty means every record.
	Selected map[string]bool
}

// EraseOptions controls clearing an account.
type EraseOptions struct {
	// Affirmed must be set by the caller after confirming with the user.
	// Erase refuses to run without it.
	Affirmed     bool
	IncludeLiked bool
	// Selected restricts removal to these playlist ids. Nil or empty means
	// every owned playlist. Playlists excluded here are kept deliberately
	// and do not count as skipped.
	Selected map[string]bool
}

// MigrationEngine runs export, import, and erase against one account.
type MigrationEngine struct {
	api    library.API
	reader *library.Reader
	writer *library.Writer
	logger *log.Logger
	now    func() time.Time
}

// NewMigrationEngine creates an engine over the given API.
func NewMigrationEngine(api library.API, logger *log.Logger) *MigrationEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &MigrationEngine{
		api:    api,
		reader: library.NewReader(api, logger),
		writer: library.NewWriter(api, logger),
		logger: logger,
		now:    time.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *MigrationEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// selectPlaylists applies a Selected filter, preserving order. A nil or empty
// filter keeps everything.
func selectPlaylists(playlists []spotify.SimplePlaylist, selected map[string]bool) []spotify.SimplePlaylist {
	if len(selected) == 0 {
		return playlists
	}
	kept := make([]spotify.SimplePlaylist, 0, len(selected))
	for _, p := range playlists {
		if selected[p.ID] {
			kept = append(kept, p)
		}
	}
	return kept
}

// Export captures the account's playlists and liked songs into a snapshot file.
//
// Playlist metadata is listed first and only then are tracks fetched, so a
// Selected filter never costs track requests for playlists it excludes. A
// playlist whose tracks cannot be fetched keeps its metadata with an empty
// track list, and a failed liked-songs fetch leaves that collection empty;
// the report's Outcome says whether anything was lost.
func (e *MigrationEngine) Export(ctx context.Context, progress chan<- ProgressUpdate, opts ExportOptions) (*RunReport, error) {
	report := &RunReport{Kind: KindExport, SnapshotPath: opts.SnapshotPath, StartedAt: e.now()}

	e.sendProgress(progress, fetchProfileUpdate())
	user, err := e.api.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	report.Account = user.ID

	e.sendProgress(progress, fetchPlaylistsUpdate())
	playlists, err := e.reader.ListPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	playlists = selectPlaylists(playlists, opts.Selected)

	records, skipped := e.reader.ReadPlaylists(ctx, playlists, func(i int, p spotify.SimplePlaylist) {
		e.sendProgress(progress, fetchTracksUpdate(i+1, len(playlists), p.Name))
	})
	report.Skipped += skipped

	snap := snapshot.New(user.ID)
	snap.Playlists = records

	if opts.IncludeLiked {
		e.sendProgress(progress, fetchLikedUpdate())
		liked, err := e.reader.ReadLikedSongs(ctx)
		if err != nil {
			// the playlist capture still stands on its own
			e.logger.Warn("liked songs fetch failed, exporting playlists only", "err", err)
			report.Skipped++
		} else {
			snap.LikedSongs = liked
		}
	}

	e.sendProgress(progress, writeSnapshotUpdate(opts.SnapshotPath))
	if err := snapshot.Save(snap, opts.SnapshotPath); err != nil {
		return nil, err
	}

	report.Playlists = len(snap.Playlists)
	report.Tracks = snap.TotalTracks()
	report.LikedSongs = len(snap.LikedSongs)
	report.FinishedAt = e.now()
	report.Outcome = outcomeFor(report.Skipped)

	e.logger.Info("export finished",
		"account", report.Account,
		"playlists", report.Playlists,
		"tracks", report.Tracks,
		"liked", report.LikedSongs,
		"skipped", report.Skipped)
	return report, nil
}

// Import replays a snapshot file into the account.
//
// Every playlist is created fresh; source ids are never reused. Batch
// failures inside one playlist degrade the report rather than stopping the
// run, but a playlist that cannot be created at all is counted and skipped.
func (e *MigrationEngine) Import(ctx context.Context, progress chan<- ProgressUpdate, opts ImportOptions) (*RunReport, error) {
	report := &RunReport{Kind: KindImport, SnapshotPath: opts.SnapshotPath, StartedAt: e.now()}

	e.sendProgress(progress, readSnapshotUpdate(opts.SnapshotPath))
	snap, err := snapshot.Load(opts.SnapshotPath)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, fetchProfileUpdate())
	user, err := e.api.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	report.Account = user.ID

	records := snap.Playlists
	if len(opts.Selected) > 0 {
		kept := make([]snapshot.PlaylistRecord, 0, len(opts.Selected))
		for _, r := range records {
			if opts.Selected[r.SourceID] {
				kept = append(kept, r)
			}
		}
		records = kept
	}

	for i, record := range records {
		e.sendProgress(progress, replayPlaylistUpdate(i+1, len(records), record.Name))

		_, outcome, err := e.writer.ReplayPlaylist(ctx, user.ID, record)
		if err != nil {
			e.logger.Warn("playlist creation failed, skipping", "playlist", record.Name, "err", err)
			report.Skipped += record.TrackCount()
			continue
		}
		report.Playlists++
		report.Tracks += outcome.Written
		report.Skipped += outcome.Skipped + outcome.Failed
	}

	if opts.IncludeLiked && len(snap.LikedSongs) > 0 {
		e.sendProgress(progress, replayLikedUpdate(len(snap.LikedSongs)))
		outcome := e.writer.LikeTracks(ctx, snap.LikedSongs)
		report.LikedSongs = outcome.Written
		report.Skipped += outcome.Skipped + outcome.Failed
	}

	report.FinishedAt = e.now()
	report.Outcome = outcomeFor(report.Skipped)

	e.logger.Info("import finished",
		"account", report.Account,
		"playlists", report.Playlists,
		"tracks", report.Tracks,
		"liked", report.LikedSongs,
		"skipped", report.Skipped)
	return report, nil
}

// Erase clears the account so a snapshot can be replayed into a clean slate.
//
// Playlists go first, then liked songs. Only playlists the account owns are
// removed; playlists merely followed belong to someone else and are left
// alone. The caller must set Affirmed after an explicit confirmation,
// otherwise the run is refused before any request is made.
func (e *MigrationEngine) Erase(ctx context.Context, progress chan<- ProgressUpdate, opts EraseOptions) (*RunReport, error) {
	if !opts.Affirmed {
		return nil, fmt.Errorf("%w: erase requires explicit confirmation", shared.ErrNotAffirmed)
	}

	report := &RunReport{Kind: KindErase, StartedAt: e.now()}

	e.sendProgress(progress, fetchProfileUpdate())
	user, err := e.api.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	report.Account = user.ID

	e.sendProgress(progress, fetchPlaylistsUpdate())
	playlists, err := e.reader.ListPlaylists(ctx)
	if err != nil {
		return nil, err
	}

	for i, p := range playlists {
		if len(opts.Selected) > 0 && !opts.Selected[p.ID] {
			continue
		}
		if p.Owner.ID != user.ID {
			e.logger.Warn("leaving followed playlist alone", "playlist", p.Name, "owner", p.Owner.ID)
			report.Skipped++
			continue
		}

		e.sendProgress(progress, removePlaylistUpdate(i+1, len(playlists), p.Name))
		if err := e.api.UnfollowPlaylist(ctx, p.ID); err != nil {
			e.logger.Warn("playlist removal failed", "playlist", p.Name, "err", err)
			report.Skipped++
			continue
		}
		report.Playlists++
	}

	if opts.IncludeLiked {
		e.sendProgress(progress, fetchLikedUpdate())
		liked, err := e.reader.ReadLikedSongs(ctx)
		if err != nil {
			return nil, err
		}

		if len(liked) > 0 {
			ids := make([]string, 0, len(liked))
			for _, t := range liked {
				ids = append(ids, t.ID)
			}

			e.sendProgress(progress, removeLikedUpdate(len(ids)))
			outcome := e.writer.UnlikeTracks(ctx, ids)
			report.LikedSongs = outcome.Written
			report.Skipped += outcome.Failed
		}
	}

	report.FinishedAt = e.now()
	report.Outcome = outcomeFor(report.Skipped)

	e.logger.Info("erase finished",
		"account", report.Account,
		"playlists", report.Playlists,
		"liked", report.LikedSongs,
		"skipped", report.Skipped)
	return report, nil
}

func outcomeFor(skipped int) Outcome {
	if skipped > 0 {
		return OutcomePartial
	}
	return OutcomeComplete
}
