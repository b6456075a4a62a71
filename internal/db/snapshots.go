package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/odysseus-results/internal/export"
	"github.com/banshee-data/odysseus-results/internal/monitoring"
	"github.com/banshee-data/odysseus-results/internal/results"
)

// ErrSnapshotNotFound is returned for an unknown snapshot id.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Source identifies where an imported table came from.
type Source struct {
	City     string `json:"city"`
	SimType  string `json:"sim_type"`
	Scenario string `json:"scenario"`
	File     string `json:"file"`
}

// Snapshot describes one imported table.
type Snapshot struct {
	ID        string    `json:"id"`
	Source    Source    `json:"source"`
	Rows      int       `json:"rows"`
	Columns   []string  `json:"columns"`
	CreatedAt time.Time `json:"created_at"`
}

// ImportTable stores t as a new snapshot and returns its id. Cells are kept
// in long form, one row per (row, column), as the same text the CSV
// download uses.
func (db *DB) ImportTable(ctx context.Context, src Source, t *results.Table) (string, error) {
	id := uuid.NewString()
	records := export.Records(t)
	names := records[0][1:]

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (snapshot_id, city, sim_type, scenario, source_file, row_count, created_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, src.City, src.SimType, src.Scenario, src.File, t.Nrow(), db.clock.Now().Unix(),
	); err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}

	for pos, name := range names {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snapshot_columns (snapshot_id, position, column_name) VALUES (?, ?, ?)`,
			id, pos, name,
		); err != nil {
			return "", fmt.Errorf("insert column %q: %w", name, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshot_cells (snapshot_id, row_pos, row_index, column_name, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare cell insert: %w", err)
	}
	defer stmt.Close()

	for pos, rec := range records[1:] {
		rowIndex, err := strconv.Atoi(rec[0])
		if err != nil {
			return "", fmt.Errorf("row %d: index %q: %w", pos, rec[0], err)
		}
		for j, name := range names {
			var value sql.NullString
			if rec[j+1] != "" {
				value = sql.NullString{String: rec[j+1], Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, id, pos, rowIndex, name, value); err != nil {
				return "", fmt.Errorf("insert cell (%d, %q): %w", pos, name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit import: %w", err)
	}
	monitoring.Logf("imported %s/%s/%s/%s as snapshot %s (%d rows)",
		src.City, src.SimType, src.Scenario, src.File, id, t.Nrow())
	return id, nil
}

// Snapshots lists every snapshot, newest first.
func (db *DB) Snapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT snapshot_id, city, sim_type, scenario, source_file, row_count, created_unix
		 FROM snapshots ORDER BY created_unix DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		var created int64
		if err := rows.Scan(&s.ID, &s.Source.City, &s.Source.SimType, &s.Source.Scenario, &s.Source.File, &s.Rows, &created); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		cols, err := db.columns(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Columns = cols
	}
	return out, nil
}

func (db *DB) columns(ctx context.Context, id string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT column_name FROM snapshot_columns WHERE snapshot_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", id, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// SnapshotTable rebuilds the table stored under id. Column types are
// detected again from the stored text.
func (db *DB) SnapshotTable(ctx context.Context, id string) (*results.Table, error) {
	var file string
	var nrows int
	err := db.QueryRowContext(ctx,
		`SELECT source_file, row_count FROM snapshots WHERE snapshot_id = ?`, id).Scan(&file, &nrows)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", id, err)
	}

	cols, err := db.columns(ctx, id)
	if err != nil {
		return nil, err
	}
	colPos := make(map[string]int, len(cols))
	for i, c := range cols {
		colPos[c] = i + 1
	}

	records := make([][]string, nrows+1)
	records[0] = append([]string{""}, cols...)
	for i := 1; i <= nrows; i++ {
		records[i] = make([]string, len(cols)+1)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT row_pos, row_index, column_name, value FROM snapshot_cells WHERE snapshot_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("load cells of %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var pos, index int
		var col string
		var value sql.NullString
		if err := rows.Scan(&pos, &index, &col, &value); err != nil {
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		if pos < 0 || pos >= nrows {
			return nil, fmt.Errorf("snapshot %s: row %d out of range", id, pos)
		}
		j, ok := colPos[col]
		if !ok {
			return nil, fmt.Errorf("snapshot %s: unknown column %q", id, col)
		}
		records[pos+1][0] = strconv.Itoa(index)
		records[pos+1][j] = value.String
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("snapshot %s has no columns", id)
	}
	return results.FromIndexedRecords(file, records)
}

// DeleteSnapshot removes a snapshot and its cells.
func (db *DB) DeleteSnapshot(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM snapshots WHERE snapshot_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	return nil
}
