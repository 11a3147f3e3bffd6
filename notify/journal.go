package notify

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const journalSchema = `CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	emitted_at INTEGER NOT NULL,
	name TEXT NOT NULL,
	version TEXT NOT NULL,
	data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS events_name ON events (name);`

// Entry is a journaled event.
type Entry struct {
	ID        int64
	EmittedAt time.Time
	Name      string
	Version   string
	// JSON of the event data.
	Data string
}

// Journal is a Sink appending events to a SQLite database. Write failures are
// logged and do not affect the emitter.
type Journal struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

// OpenJournal opens (creating if needed) the journal database at path.
func OpenJournal(path string, log *zap.Logger) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("sqlite", filepath.Clean(path)+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(journalSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}

	return &Journal{db: db, log: log, now: time.Now}, nil
}

// Emit implements Sink.
func (j *Journal) Emit(e Event) {
	data, err := e.MarshalData()
	if err == nil {
		_, err = j.db.Exec(`INSERT INTO events (emitted_at, name, version, data) VALUES (?, ?, ?, ?)`,
			j.now().UTC().UnixMilli(), e.Event, e.Version, string(data))
	}
	if err != nil {
		j.log.Warn("can't journal event", zap.String("name", e.Event), zap.Error(err))
	}
}

// List returns journaled events in emission order. Empty name matches all
// events, non-positive limit means no limit.
func (j *Journal) List(ctx context.Context, name string, limit int) ([]Entry, error) {
	q := `SELECT id, emitted_at, name, version, data FROM events`
	var args []any
	if name != "" {
		q += ` WHERE name = ?`
		args = append(args, name)
	}
	q += ` ORDER BY id`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var res []Entry
	for rows.Next() {
		var (
			e  Entry
			ms int64
		)
		if err := rows.Scan(&e.ID, &ms, &e.Name, &e.Version, &e.Data); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.EmittedAt = time.UnixMilli(ms).UTC()
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return res, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
