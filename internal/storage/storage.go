// Package storage is the embedded SQLite store behind the ledger: schema
// migrations, tenant-scoped repositories, and the startup bootstrap.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the open handle to one ledger database. It is passed explicitly
// to every component; there is no global instance.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at dbPath and brings its
// schema up to date.
func Open(dbPath string) (*Store, error) {
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

	// Single-writer embedded store; WAL keeps readers unblocked.
	_, _ = db.Exec("PRAGMA journal_mode = WAL;")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL;")
	_, _ = db.Exec("PRAGMA foreign_keys = ON;")

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Stats are per-collection record counts for display.
type Stats struct {
	Entries     int64 `json:"entries"`
	Budgets     int64 `json:"budgets"`
	Categories  int64 `json:"categories"`
	BudgetRules int64 `json:"budgetRules"`
	Tenants     int64 `json:"tenants"`
	Snapshots   int64 `json:"snapshots"`
	Settings    int64 `json:"settings"`
}

// Stats counts every collection.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	for _, c := range []struct {
		table string
		dst   *int64
	}{
		{"entries", &st.Entries},
		{"budgets", &st.Budgets},
		{"categories", &st.Categories},
		{"budget_rules", &st.BudgetRules},
		{"tenants", &st.Tenants},
		{"snapshots", &st.Snapshots},
		{"settings", &st.Settings},
	} {
		n, err := s.count(ctx, c.table)
		if err != nil {
			return Stats{}, err
		}
		*c.dst = n
	}
	return st, nil
}

func (s *Store) count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (s *Store) clearTable(ctx context.Context, table string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	return nil
}

// joinTags flattens an optional tag list into its stored form.
func joinTags(tags []string) string {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	return strings.Join(clean, ",")
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
