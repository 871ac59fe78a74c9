package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// UnresolvedPort is a port spelling no matcher could resolve.
type UnresolvedPort struct {
	Text       string    `json:"text"`
	Hits       int       `json:"hits"`
	LastSource string    `json:"last_source,omitempty"`
	FirstSeen  time.Time `json:"first_seen"`
	LastSeen   time.Time `json:"last_seen"`
}

// ReportDB wraps a SQLite database that collects unresolved port spellings
// for curators.
type ReportDB struct {
	db *sql.DB
}

// OpenReport opens or creates a SQLite report database at the given path.
func OpenReport(path string) (*ReportDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createReportSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &ReportDB{db: db}, nil
}

// Close closes the database connection.
func (d *ReportDB) Close() error {
	return d.db.Close()
}

func createReportSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS unresolved_ports (
		text TEXT PRIMARY KEY,
		hits INTEGER NOT NULL DEFAULT 1,
		first_seen TEXT NOT NULL,
		last_seen TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_unresolved_hits ON unresolved_ports(hits);
	`
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	return migrateReportSchema(db)
}

// migrateReportSchema adds columns introduced after the first release.
func migrateReportSchema(db *sql.DB) error {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('unresolved_ports') WHERE name='last_source'`).Scan(&count)
	if err != nil {
		return err
	}
	if count == 0 {
		if _, err := db.Exec(`ALTER TABLE unresolved_ports ADD COLUMN last_source TEXT NOT NULL DEFAULT ''`); err != nil {
			// Ignore "duplicate column" errors for idempotency.
			if !strings.Contains(err.Error(), "duplicate column") {
				return err
			}
		}
	}
	return nil
}

const upsertUnresolved = `
	INSERT INTO unresolved_ports (text, hits, first_seen, last_seen, last_source)
	VALUES (?, 1, ?, ?, ?)
	ON CONFLICT(text) DO UPDATE SET
		hits = hits + 1,
		last_seen = excluded.last_seen,
		last_source = excluded.last_source
`

// RecordUnresolved counts one sighting of an unresolved spelling. Blank
// text is ignored.
func (d *ReportDB) RecordUnresolved(text, source string, at time.Time) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	ts := at.UTC().Format(time.RFC3339)
	if _, err := d.db.Exec(upsertUnresolved, text, ts, ts, source); err != nil {
		return fmt.Errorf("record unresolved: %w", err)
	}
	return nil
}

// RecordAll counts a sighting of each spelling in one transaction.
func (d *ReportDB) RecordAll(texts []string, source string, at time.Time) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(upsertUnresolved)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	ts := at.UTC().Format(time.RFC3339)
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if _, err := stmt.Exec(text, ts, ts, source); err != nil {
			return fmt.Errorf("record unresolved %q: %w", text, err)
		}
	}
	return tx.Commit()
}

// ListUnresolved returns spellings by descending hit count, then text.
// A limit of zero or less returns every row.
func (d *ReportDB) ListUnresolved(limit int) ([]UnresolvedPort, error) {
	query := `SELECT text, hits, last_source, first_seen, last_seen FROM unresolved_ports ORDER BY hits DESC, text`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := d.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []UnresolvedPort
	for rows.Next() {
		var u UnresolvedPort
		var first, last string
		if err := rows.Scan(&u.Text, &u.Hits, &u.LastSource, &first, &last); err != nil {
			return nil, err
		}
		u.FirstSeen, _ = time.Parse(time.RFC3339, first)
		u.LastSeen, _ = time.Parse(time.RFC3339, last)
		out = append(out, u)
	}
	return out, rows.Err()
}

// Count returns the number of distinct unresolved spellings.
func (d *ReportDB) Count() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM unresolved_ports`).Scan(&n)
	return n, err
}

// Prune deletes spellings that resolved reports as resolvable, typically
// after the alias asset gained new entries. It returns the number removed.
func (d *ReportDB) Prune(resolved func(text string) bool) (int, error) {
	all, err := d.ListUnresolved(0)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, u := range all {
		if !resolved(u.Text) {
			continue
		}
		if _, err := d.db.Exec(`DELETE FROM unresolved_ports WHERE text = ?`, u.Text); err != nil {
			return removed, fmt.Errorf("prune %q: %w", u.Text, err)
		}
		removed++
	}
	return removed, nil
}
