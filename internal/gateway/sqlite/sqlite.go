// Package sqlite persists the snapshot in a local SQLite database using
// the pure-Go modernc driver. Each save replaces the whole state inside
// one transaction; the collections are small enough that full rewrites
// stay cheap and keep the persisted layout trivially consistent.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"pocket/internal/core"
	"pocket/internal/gateway"

	_ "modernc.org/sqlite"
)

type Gateway struct {
	db *sql.DB
}

var _ gateway.Gateway = (*Gateway)(nil)

func New(dbPath string) (*Gateway, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Gateway{db: db}, nil
}

func (g *Gateway) Close() error {
	if g.db != nil {
		return g.db.Close()
	}
	return nil
}

// Load reads the persisted collections in position order. (nil, nil)
// means no state was ever saved into this database.
func (g *Gateway) Load(ctx context.Context) (*core.Snapshot, error) {
	var savedAt string
	err := g.db.QueryRowContext(ctx, `SELECT saved_at FROM state_meta WHERE id = 1`).Scan(&savedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &gateway.StorageError{Op: "load", Err: err}
	}

	snap := &core.Snapshot{}

	rows, err := g.db.QueryContext(ctx, `SELECT id, name, amount_cents, due_date, category, paid, created_at FROM accounts ORDER BY position`)
	if err != nil {
		return nil, &gateway.StorageError{Op: "load", Err: fmt.Errorf("query accounts: %w", err)}
	}
	for rows.Next() {
		var (
			a       core.Account
			cents   int64
			due     string
			paid    int64
			created string
		)
		if err := rows.Scan(&a.ID, &a.Name, &cents, &due, &a.Category, &paid, &created); err != nil {
			rows.Close()
			return nil, &gateway.StorageError{Op: "load", Err: fmt.Errorf("scan account: %w", err)}
		}
		a.Amount = core.Money{Cents: cents}
		a.Paid = paid != 0
		if a.DueDate, err = parseDate(due); err != nil {
			rows.Close()
			return nil, &gateway.StorageError{Op: "load", Err: err}
		}
		if a.CreatedAt, err = parseTimestamp(created); err != nil {
			rows.Close()
			return nil, &gateway.StorageError{Op: "load", Err: err}
		}
		snap.Accounts = append(snap.Accounts, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, &gateway.StorageError{Op: "load", Err: err}
	}

	rows, err = g.db.QueryContext(ctx, `SELECT id, name, amount_cents, date, category, created_at FROM expenses ORDER BY position`)
	if err != nil {
		return nil, &gateway.StorageError{Op: "load", Err: fmt.Errorf("query expenses: %w", err)}
	}
	for rows.Next() {
		var (
			e       core.Expense
			cents   int64
			date    string
			created string
		)
		if err := rows.Scan(&e.ID, &e.Name, &cents, &date, &e.Category, &created); err != nil {
			rows.Close()
			return nil, &gateway.StorageError{Op: "load", Err: fmt.Errorf("scan expense: %w", err)}
		}
		e.Amount = core.Money{Cents: cents}
		if e.Date, err = parseDate(date); err != nil {
			rows.Close()
			return nil, &gateway.StorageError{Op: "load", Err: err}
		}
		if e.CreatedAt, err = parseTimestamp(created); err != nil {
			rows.Close()
			return nil, &gateway.StorageError{Op: "load", Err: err}
		}
		snap.Expenses = append(snap.Expenses, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, &gateway.StorageError{Op: "load", Err: err}
	}

	rows, err = g.db.QueryContext(ctx, `SELECT id, name, color FROM categories ORDER BY position`)
	if err != nil {
		return nil, &gateway.StorageError{Op: "load", Err: fmt.Errorf("query categories: %w", err)}
	}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			rows.Close()
			return nil, &gateway.StorageError{Op: "load", Err: fmt.Errorf("scan category: %w", err)}
		}
		snap.Categories = append(snap.Categories, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, &gateway.StorageError{Op: "load", Err: err}
	}

	slog.InfoContext(ctx, "State loaded from SQLite",
		"accounts", len(snap.Accounts),
		"expenses", len(snap.Expenses),
		"categories", len(snap.Categories))

	return snap, nil
}

// Save rewrites all three tables from the snapshot in one transaction.
func (g *Gateway) Save(ctx context.Context, snap core.Snapshot) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return &gateway.StorageError{Op: "save", Err: err}
	}
	defer tx.Rollback()

	for _, table := range []string{"accounts", "expenses", "categories"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return &gateway.StorageError{Op: "save", Err: fmt.Errorf("clear %s: %w", table, err)}
		}
	}

	for i, a := range snap.Accounts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (id, name, amount_cents, due_date, category, paid, created_at, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.Name, a.Amount.Cents, a.DueDate.String(), a.Category, boolToInt(a.Paid),
			a.CreatedAt.UTC().Format(time.RFC3339Nano), i)
		if err != nil {
			return &gateway.StorageError{Op: "save", Err: fmt.Errorf("insert account %s: %w", a.ID, err)}
		}
	}
	for i, e := range snap.Expenses {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, name, amount_cents, date, category, created_at, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Name, e.Amount.Cents, e.Date.String(), e.Category,
			e.CreatedAt.UTC().Format(time.RFC3339Nano), i)
		if err != nil {
			return &gateway.StorageError{Op: "save", Err: fmt.Errorf("insert expense %s: %w", e.ID, err)}
		}
	}
	for i, c := range snap.Categories {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, color, position) VALUES (?, ?, ?, ?)`,
			c.ID, c.Name, c.Color, i)
		if err != nil {
			return &gateway.StorageError{Op: "save", Err: fmt.Errorf("insert category %s: %w", c.ID, err)}
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO state_meta (id, saved_at) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET saved_at = excluded.saved_at`,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return &gateway.StorageError{Op: "save", Err: fmt.Errorf("stamp state_meta: %w", err)}
	}

	if err := tx.Commit(); err != nil {
		return &gateway.StorageError{Op: "save", Err: err}
	}
	return nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return core.Date{Time: t}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
