package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Run records one persisted run of a source.
type Run struct {
	ID         string
	Source     string
	StartedAt  time.Time
	FinishedAt time.Time
	Pages      int // pages written by the run
}

// Runs returns the runs of a source, most recent first. A limit of 0
// returns all of them.
func (db *DB) Runs(ctx context.Context, source string, limit int) ([]*Run, error) {
	var query strings.Builder
	query.WriteString(`
		SELECT id, source, started_at, finished_at, pages
		FROM runs
		WHERE source = ?
		ORDER BY finished_at DESC, rowid DESC`)
	args := []any{source}
	appendLimit(&query, &args, limit)

	rows, err := db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		var startedAt, finishedAt string
		if err := rows.Scan(&r.ID, &r.Source, &startedAt, &finishedAt, &r.Pages); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.StartedAt, err = parseTime(startedAt, "started_at"); err != nil {
			return nil, err
		}
		if r.FinishedAt, err = parseTime(finishedAt, "finished_at"); err != nil {
			return nil, err
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}
