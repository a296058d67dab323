package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"spotmigrate/internal/shared"
	"spotmigrate/internal/tasks"
)

// Run is one recorded migration operation.
type Run struct {
	ID           string
	Sequence     int
	Kind         tasks.Kind
	Account      string
	SnapshotPath string
	Playlists    int
	Tracks       int
	LikedSongs   int
	Skipped      int
	Outcome      tasks.Outcome
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
	CreatedAt    time.Time
	DeletedAt    *time.Time
}

// FromReport builds a Run from a finished operation's report.
func FromReport(report *tasks.RunReport) *Run {
	return &Run{
		Kind:         report.Kind,
		Account:      report.Account,
		SnapshotPath: report.SnapshotPath,
		Playlists:    report.Playlists,
		Tracks:       report.Tracks,
		LikedSongs:   report.LikedSongs,
		Skipped:      report.Skipped,
		Outcome:      report.Outcome,
		ErrorMessage: report.Error,
		StartedAt:    report.StartedAt,
		FinishedAt:   report.FinishedAt,
	}
}

// NextSequence atomically increments and returns the next sequence number for the given table.
func NextSequence(db *sql.DB, table string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequenceTable := table + "_sequence"

	if _, err := tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable)); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	if err := tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}

// RunRepository stores run history with soft delete support.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a RunRepository over the given database connection.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run with a generated ID and sequence.
func (r *RunRepository) Create(run *Run) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	run.ID = shared.GenerateID()
	run.Sequence = sequence
	run.CreatedAt = time.Now()

	query := `
		INSERT INTO runs (id, sequence, kind, account, snapshot_path, playlists, tracks, liked_songs, skipped, outcome, error_message, started_at, finished_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		run.ID,
		run.Sequence,
		string(run.Kind),
		run.Account,
		run.SnapshotPath,
		run.Playlists,
		run.Tracks,
		run.LikedSongs,
		run.Skipped,
		string(run.Outcome),
		run.ErrorMessage,
		run.StartedAt,
		run.FinishedAt,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

const runColumns = `id, sequence, kind, account, snapshot_path, playlists, tracks, liked_songs, skipped, outcome, error_message, started_at, finished_at, created_at, deleted_at`

// Get retrieves a run by ID, excluding soft-deleted runs.
func (r *RunRepository) Get(id string) (*Run, error) {
	query := fmt.Sprintf(`SELECT %s FROM runs WHERE id = ? AND deleted_at IS NULL`, runColumns)
	return scanRun(r.db.QueryRow(query, id))
}

// List retrieves runs newest first, excluding soft-deleted runs. A zero or
// negative limit returns everything.
func (r *RunRepository) List(limit int) ([]*Run, error) {
	query := fmt.Sprintf(`SELECT %s FROM runs WHERE deleted_at IS NULL ORDER BY sequence DESC`, runColumns)
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run, err := scanRunRow(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// ListByAccount retrieves runs for one account, newest first.
func (r *RunRepository) ListByAccount(account string, limit int) ([]*Run, error) {
	query := fmt.Sprintf(`SELECT %s FROM runs WHERE account = ? AND deleted_at IS NULL ORDER BY sequence DESC`, runColumns)
	args := []any{account}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run, err := scanRunRow(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// Delete soft-deletes a run by ID.
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", id)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row *sql.Row) (*Run, error) {
	run, err := scanRunRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found")
	}
	return run, err
}

func scanRunRow(s scanner) (*Run, error) {
	var run Run
	var kind, outcome string
	var snapshotPath, errorMessage sql.NullString
	var finishedAt, deletedAt sql.NullTime

	err := s.Scan(
		&run.ID,
		&run.Sequence,
		&kind,
		&run.Account,
		&snapshotPath,
		&run.Playlists,
		&run.Tracks,
		&run.LikedSongs,
		&run.Skipped,
		&outcome,
		&errorMessage,
		&run.StartedAt,
		&finishedAt,
		&run.CreatedAt,
		&deletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Kind = tasks.Kind(kind)
	run.Outcome = tasks.Outcome(outcome)
	run.SnapshotPath = snapshotPath.String
	run.ErrorMessage = errorMessage.String
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	if deletedAt.Valid {
		run.DeletedAt = &deletedAt.Time
	}
	return &run, nil
}
