package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"spotmigrate/internal/repositories"
	"spotmigrate/internal/shared"
)

// History lists past runs from the history database.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	repo := repositories.NewRunRepository(db)
	limit := int(cmd.Int("limit"))

	var runs []*repositories.Run
	if account := cmd.String("account"); account != "" {
		runs, err = repo.ListByAccount(account, limit)
	} else {
		runs, err = repo.List(limit)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, cmd.Bool("pretty"))
	}

	if len(runs) == 0 {
		r.writePlain("No runs recorded yet.\n")
		return nil
	}

	for _, run := range runs {
		r.writePlain("%s  %-6s  %-10s  %s\n",
			run.StartedAt.Format("2006-01-02 15:04"),
			run.Kind,
			run.Account,
			run.Outcome)
		r.writePlain("        playlists=%d tracks=%d liked=%d skipped=%d\n",
			run.Playlists, run.Tracks, run.LikedSongs, run.Skipped)
		if run.SnapshotPath != "" {
			r.writePlain("        snapshot=%s\n", run.SnapshotPath)
		}
	}
	return nil
}
