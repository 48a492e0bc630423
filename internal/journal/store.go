// Package journal implements the persistent thought log for prothought.
//
// It uses SQLite to store timestamped free-text thoughts together with the
// lowercase hashtags ("markers") extracted from each thought at creation
// time. Markers are derived once and never recomputed, so a retracted
// thought stays filterable by its original tags.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// TimestampFormat is the second-precision local-time layout used for every
// persisted timestamp and every period bound.
const TimestampFormat = "2006-01-02T15:04:05"

// ─── Types ───────────────────────────────────────────────────────────────────

// Thought represents a single journal entry.
type Thought struct {
	ID        int64    `json:"id"`
	Timestamp string   `json:"timestamp"`
	Text      string   `json:"text"`
	Markers   []string `json:"markers,omitempty"`
}

// Retracted reports whether the thought's text carries the strike-through
// wrapper applied by RetractLast.
func (t Thought) Retracted() bool {
	return strings.HasPrefix(t.Text, "~~") && strings.HasSuffix(t.Text, "~~") && len(t.Text) >= 4
}

// RetractStatus describes the outcome of a RetractLast call.
type RetractStatus int

const (
	// Retracted means the latest thought was struck through by this call.
	Retracted RetractStatus = iota
	// NoThoughts means the store holds no thoughts at all.
	NoThoughts
	// AlreadyRetracted means the latest thought was struck through earlier.
	AlreadyRetracted
)

// RetractResult holds the outcome of RetractLast. Timestamp is the original
// creation timestamp of the affected thought, empty for NoThoughts.
type RetractResult struct {
	Status    RetractStatus
	Timestamp string
}

// StorageError wraps any failure reaching or writing the persisted tables.
// Callers can unwrap it to inspect the underlying driver error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("journal: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds journal store configuration.
type Config struct {
	// DBPath is the SQLite database file holding both tables.
	DBPath string
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the persistent thought log backed by SQLite.
type Store struct {
	db *sql.DB
}

// New opens the SQLite database at cfg.DBPath, applies connection pragmas,
// and creates the tables and indexes if absent.
func New(cfg Config) (*Store, error) {
	db, err := openDB("sqlite", cfg.DBPath)
	if err != nil {
		return nil, storageErr("open database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, storageErr(fmt.Sprintf("pragma %q", p), err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS thoughts (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			text      TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS markers (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			thought_id INTEGER NOT NULL,
			marker     TEXT    NOT NULL,
			FOREIGN KEY (thought_id) REFERENCES thoughts(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_markers_thought_id ON markers(thought_id);
		CREATE INDEX IF NOT EXISTS idx_markers_marker     ON markers(marker);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return storageErr("migrate", err)
	}
	return nil
}

// ─── Append ──────────────────────────────────────────────────────────────────

// Append persists a new thought stamped with the current local time and one
// marker row per hashtag in its text. The thought and its markers are written
// in a single transaction: either all rows become visible or none do.
func (s *Store) Append(text string) (*Thought, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, storageErr("append", errors.New("empty thought text"))
	}

	ts := now().Format(TimestampFormat)
	markers := ExtractHashtags(text)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, storageErr("append: begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`INSERT INTO thoughts (timestamp, text) VALUES (?, ?)`, ts, text)
	if err != nil {
		return nil, storageErr("append: insert thought", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, storageErr("append: last insert id", err)
	}

	for _, m := range markers {
		if _, err := tx.Exec(`INSERT INTO markers (thought_id, marker) VALUES (?, ?)`, id, m); err != nil {
			return nil, storageErr("append: insert marker", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("append: commit", err)
	}

	return &Thought{ID: id, Timestamp: ts, Text: text, Markers: markers}, nil
}

// ─── Lookup ──────────────────────────────────────────────────────────────────

// Latest returns the most recent thought, ordered by timestamp with id as the
// tie-break for thoughts sharing the same second. Returns (nil, nil) when the
// store is empty.
func (s *Store) Latest() (*Thought, error) {
	var t Thought
	err := s.db.QueryRow(`
		SELECT id, timestamp, text
		FROM thoughts
		ORDER BY timestamp DESC, id DESC
		LIMIT 1`).Scan(&t.ID, &t.Timestamp, &t.Text)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("latest", err)
	}

	if t.Markers, err = s.markersFor(t.ID); err != nil {
		return nil, err
	}
	return &t, nil
}

// Amend overwrites the text of the thought with the given id. The timestamp
// and markers are left untouched.
func (s *Store) Amend(id int64, newText string) error {
	if _, err := s.db.Exec(`UPDATE thoughts SET text = ? WHERE id = ?`, newText, id); err != nil {
		return storageErr("amend", err)
	}
	return nil
}

// QueryRange returns thoughts whose timestamps fall within [start, end]
// inclusive, ascending by timestamp. When marker is non-empty the result is
// restricted to thoughts carrying that marker; DISTINCT guards against the
// join ever duplicating a row.
func (s *Store) QueryRange(start, end, marker string) ([]Thought, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if marker != "" {
		rows, err = s.db.Query(`
			SELECT DISTINCT t.id, t.timestamp, t.text
			FROM thoughts t
			INNER JOIN markers m ON t.id = m.thought_id
			WHERE t.timestamp BETWEEN ? AND ?
			  AND m.marker = ?
			ORDER BY t.timestamp ASC, t.id ASC`,
			start, end, strings.ToLower(marker))
	} else {
		rows, err = s.db.Query(`
			SELECT id, timestamp, text
			FROM thoughts
			WHERE timestamp BETWEEN ? AND ?
			ORDER BY timestamp ASC, id ASC`,
			start, end)
	}
	if err != nil {
		return nil, storageErr("query range", err)
	}
	defer rows.Close()

	var thoughts []Thought
	for rows.Next() {
		var t Thought
		if err := rows.Scan(&t.ID, &t.Timestamp, &t.Text); err != nil {
			return nil, storageErr("query range: scan", err)
		}
		thoughts = append(thoughts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query range", err)
	}

	for i := range thoughts {
		if thoughts[i].Markers, err = s.markersFor(thoughts[i].ID); err != nil {
			return nil, err
		}
	}
	return thoughts, nil
}

// ListForPeriod resolves the period arguments and returns the thoughts in
// that range, optionally filtered by marker. An empty result is a valid
// empty slice, not an error.
func (s *Store) ListForPeriod(periodArgs []string, marker string) ([]Thought, error) {
	start, end, err := ResolvePeriod(periodArgs)
	if err != nil {
		return nil, err
	}
	return s.QueryRange(start, end, marker)
}

// ─── Retraction ──────────────────────────────────────────────────────────────

// RetractLast strikes through the most recent thought by wrapping its text in
// "~~". Calling it again on an already-retracted thought is a no-op reported
// as AlreadyRetracted, so the wrapper is applied exactly once. Markers are
// not touched: a retracted thought's tags remain queryable.
func (s *Store) RetractLast() (RetractResult, error) {
	last, err := s.Latest()
	if err != nil {
		return RetractResult{}, err
	}
	if last == nil {
		return RetractResult{Status: NoThoughts}, nil
	}
	if last.Retracted() {
		return RetractResult{Status: AlreadyRetracted, Timestamp: last.Timestamp}, nil
	}

	if err := s.Amend(last.ID, "~~"+last.Text+"~~"); err != nil {
		return RetractResult{}, err
	}
	return RetractResult{Status: Retracted, Timestamp: last.Timestamp}, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (s *Store) markersFor(thoughtID int64) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT marker FROM markers WHERE thought_id = ? ORDER BY id ASC`, thoughtID)
	if err != nil {
		return nil, storageErr("load markers", err)
	}
	defer rows.Close()

	var markers []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, storageErr("load markers: scan", err)
		}
		markers = append(markers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("load markers", err)
	}
	return markers, nil
}

// now is a package-level hook so tests can pin the clock.
var now = time.Now
