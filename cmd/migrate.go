package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"spotmigrate/internal/library"
	"spotmigrate/internal/shared"
	"spotmigrate/internal/snapshot"
	"spotmigrate/internal/tasks"
	"spotmigrate/internal/ui"
)

// watchProgress drains a progress channel onto the runner's output. The
// returned function blocks until the channel is closed and drained.
func (r *Runner) watchProgress(progress <-chan tasks.ProgressUpdate) func() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("→ %s\n", update.Message)
		}
	}()
	return func() { <-done }
}

// snapshotPath resolves the snapshot file for a command, preferring the flag.
func snapshotPath(cmd *cli.Command, flag string, config *shared.Config) string {
	if path := cmd.String(flag); path != "" {
		return path
	}
	if config.Migrate.SnapshotPath != "" {
		return config.Migrate.SnapshotPath
	}
	return "snapshot.json"
}

// pickPlaylists runs the interactive picker over the account's playlists.
// A nil map with nil error means the user backed out.
func (r *Runner) pickPlaylists(ctx context.Context, api library.API, title string) (map[string]bool, error) {
	reader := library.NewReader(api, r.logger)
	playlists, err := reader.ListPlaylists(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]ui.PickItem, 0, len(playlists))
	for _, p := range playlists {
		items = append(items, ui.PickItem{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Tracks:      p.Tracks.Total,
		})
	}
	return ui.RunPicker(title, items)
}

// pickRecords runs the interactive picker over a snapshot's playlist records.
func (r *Runner) pickRecords(records []snapshot.PlaylistRecord) (map[string]bool, error) {
	items := make([]ui.PickItem, 0, len(records))
	for _, record := range records {
		items = append(items, ui.PickItem{
			ID:          record.SourceID,
			Name:        record.Name,
			Description: record.Description,
			Tracks:      record.TrackCount(),
		})
	}
	return ui.RunPicker("Select playlists to import", items)
}

func (r *Runner) printReport(report *tasks.RunReport) {
	r.writePlainln("✓ %s finished for %s", report.Kind, report.Account)
	r.writePlain("  Playlists:   %d\n", report.Playlists)
	if report.Tracks > 0 {
		r.writePlain("  Tracks:      %d\n", report.Tracks)
	}
	r.writePlain("  Liked songs: %d\n", report.LikedSongs)
	if report.Skipped > 0 {
		r.writePlain("  Skipped:     %d\n", report.Skipped)
		r.writePlain("⚠ Run finished partially. Check the log for details.\n")
	}
}

// Export captures the account's library into a snapshot file.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	api, user, err := r.connect(ctx, cmd, config)
	if err != nil {
		return err
	}
	r.writePlain("✓ Connected as %s\n", user.ID)

	opts := tasks.ExportOptions{
		SnapshotPath: snapshotPath(cmd, "output", config),
		IncludeLiked: !cmd.Bool("no-liked"),
	}

	if cmd.Bool("select") {
		selected, err := r.pickPlaylists(ctx, api, "Select playlists to export")
		if err != nil {
			return err
		}
		if selected == nil {
			r.writePlain("Selection canceled, nothing exported.\n")
			return nil
		}
		opts.Selected = selected
	}

	engine := tasks.NewMigrationEngine(api, r.logger)
	progress := make(chan tasks.ProgressUpdate, 16)
	wait := r.watchProgress(progress)

	started := time.Now()
	report, err := engine.Export(ctx, progress, opts)
	close(progress)
	wait()
	if err != nil {
		r.recordRun(config, tasks.AbortedReport(tasks.KindExport, user.ID, opts.SnapshotPath, started, err))
		return err
	}

	r.recordRun(config, report)
	r.printReport(report)
	r.writePlain("  Snapshot:    %s\n", report.SnapshotPath)
	return nil
}

// Import replays a snapshot file into the account.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	opts := tasks.ImportOptions{
		SnapshotPath: snapshotPath(cmd, "input", config),
		IncludeLiked: !cmd.Bool("no-liked"),
	}

	if cmd.Bool("select") {
		snap, err := snapshot.Load(opts.SnapshotPath)
		if err != nil {
			return err
		}
		selected, err := r.pickRecords(snap.Playlists)
		if err != nil {
			return err
		}
		if selected == nil {
			r.writePlain("Selection canceled, nothing imported.\n")
			return nil
		}
		opts.Selected = selected
	}

	api, user, err := r.connect(ctx, cmd, config)
	if err != nil {
		return err
	}
	r.writePlain("✓ Connected as %s\n", user.ID)

	engine := tasks.NewMigrationEngine(api, r.logger)
	progress := make(chan tasks.ProgressUpdate, 16)
	wait := r.watchProgress(progress)

	started := time.Now()
	report, err := engine.Import(ctx, progress, opts)
	close(progress)
	wait()
	if err != nil {
		r.recordRun(config, tasks.AbortedReport(tasks.KindImport, user.ID, opts.SnapshotPath, started, err))
		return err
	}

	r.recordRun(config, report)
	r.printReport(report)
	return nil
}

// confirmErase asks for a typed confirmation when --yes was not given.
func (r *Runner) confirmErase(cmd *cli.Command) error {
	if cmd.Bool("yes") {
		return nil
	}

	r.writePlain("⚠ Erase removes every owned playlist")
	if !cmd.Bool("no-liked") {
		r.writePlain(" and all liked songs")
	}
	r.writePlain(" from the account.\n")
	r.writePlain("Type 'erase' to confirm (or pass --yes): ")

	scanner := bufio.NewScanner(r.input)
	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "erase" {
		return fmt.Errorf("%w: erase was not confirmed", shared.ErrNotAffirmed)
	}
	return nil
}

// Erase removes the account's owned playlists and liked songs.
func (r *Runner) Erase(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	if err := r.confirmErase(cmd); err != nil {
		return err
	}

	api, user, err := r.connect(ctx, cmd, config)
	if err != nil {
		return err
	}
	r.writePlain("✓ Connected as %s\n", user.ID)

	opts := tasks.EraseOptions{
		Affirmed:     true,
		IncludeLiked: !cmd.Bool("no-liked"),
	}

	if cmd.Bool("select") {
		selected, err := r.pickPlaylists(ctx, api, "Select playlists to erase")
		if err != nil {
			return err
		}
		if selected == nil {
			r.writePlain("Selection canceled, nothing erased.\n")
			return nil
		}
		opts.Selected = selected
	}

	engine := tasks.NewMigrationEngine(api, r.logger)
	progress := make(chan tasks.ProgressUpdate, 16)
	wait := r.watchProgress(progress)

	started := time.Now()
	report, err := engine.Erase(ctx, progress, opts)
	close(progress)
	wait()
	if err != nil {
		r.recordRun(config, tasks.AbortedReport(tasks.KindErase, user.ID, "", started, err))
		return err
	}

	r.recordRun(config, report)
	r.printReport(report)
	return nil
}
