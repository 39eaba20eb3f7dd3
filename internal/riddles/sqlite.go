package riddles

import (
	"context"
	"database/sql"
	"fmt"
)

// Seed inserts entries into the riddles table if, and only if, the table is empty.
// It returns the number of rows inserted.
func Seed(ctx context.Context, db *sql.DB, entries []Entry) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM riddles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count riddles: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO riddles (prompt, answer) VALUES (?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Prompt, e.Answer); err != nil {
			return 0, fmt.Errorf("insert riddle %q: %w", e.Answer, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// LoadDB reads every riddle in insertion order.
func LoadDB(ctx context.Context, db *sql.DB) ([]Entry, error) {
	rows, err := db.QueryContext(ctx, `SELECT prompt, answer FROM riddles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Prompt, &e.Answer); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// FromDB seeds an empty riddles table with the embedded entries, then builds
// a Bank from whatever the table holds.
func FromDB(ctx context.Context, db *sql.DB, opts ...Option) (*Bank, error) {
	seed, err := Embedded()
	if err != nil {
		return nil, err
	}
	if _, err := Seed(ctx, db, seed); err != nil {
		return nil, fmt.Errorf("seed riddles: %w", err)
	}
	entries, err := LoadDB(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("load riddles: %w", err)
	}
	return New(entries, opts...)
}
