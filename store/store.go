// Package store persists computed session summaries, the consuming
// collaborator of the metric engine.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	// Import the sqlite driver.
	_ "modernc.org/sqlite"
)

// SessionSummary is one persisted computation result.
type SessionSummary struct {
	ID           int64
	RunID        string
	SessionID    string
	PilotTag     string
	Profile      string
	Metrics      map[string]float64
	WindowJSON   string
	WarningCount int
	CreatedTs    int64
}

// FindSessionSummary narrows a listing. Zero value lists everything,
// newest first.
type FindSessionSummary struct {
	RunID    *string
	PilotTag *string
	Limit    int
}

// Store is a sqlite-backed summary store.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS session_summary (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	session_id TEXT NOT NULL DEFAULT '',
	pilot_tag TEXT NOT NULL DEFAULT '',
	profile TEXT NOT NULL DEFAULT 'core',
	metrics TEXT NOT NULL,
	window_summary TEXT NOT NULL DEFAULT '{}',
	warning_count INTEGER NOT NULL DEFAULT 0,
	created_ts BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_summary_run_id ON session_summary (run_id);
`

// New opens (and migrates) a summary store at the given DSN. Use
// "file::memory:?cache=shared" or a file path.
func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite db at %s", dsn)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to ping sqlite db at %s", dsn)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to migrate session_summary schema")
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSummary inserts one summary and returns it with ID and timestamp set.
func (s *Store) SaveSummary(ctx context.Context, create *SessionSummary) (*SessionSummary, error) {
	metricsJSON, err := json.Marshal(create.Metrics)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal metrics")
	}
	if create.WindowJSON == "" {
		create.WindowJSON = "{}"
	}
	create.CreatedTs = time.Now().Unix()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO session_summary (run_id, session_id, pilot_tag, profile, metrics, window_summary, warning_count, created_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		create.RunID, create.SessionID, create.PilotTag, create.Profile,
		string(metricsJSON), create.WindowJSON, create.WarningCount, create.CreatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert session summary")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read inserted id")
	}
	create.ID = id
	return create, nil
}

// ListSummaries returns stored summaries matching the find, newest first.
func (s *Store) ListSummaries(ctx context.Context, find *FindSessionSummary) ([]*SessionSummary, error) {
	if find == nil {
		find = &FindSessionSummary{}
	}

	query := `SELECT id, run_id, session_id, pilot_tag, profile, metrics, window_summary, warning_count, created_ts
		FROM session_summary WHERE 1 = 1`
	var args []any
	if find.RunID != nil {
		query += " AND run_id = ?"
		args = append(args, *find.RunID)
	}
	if find.PilotTag != nil {
		query += " AND pilot_tag = ?"
		args = append(args, *find.PilotTag)
	}
	query += " ORDER BY created_ts DESC, id DESC"
	if find.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, find.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query session summaries")
	}
	defer rows.Close()

	var out []*SessionSummary
	for rows.Next() {
		var summary SessionSummary
		var metricsJSON string
		if err := rows.Scan(&summary.ID, &summary.RunID, &summary.SessionID, &summary.PilotTag,
			&summary.Profile, &metricsJSON, &summary.WindowJSON, &summary.WarningCount, &summary.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan session summary")
		}
		if err := json.Unmarshal([]byte(metricsJSON), &summary.Metrics); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal metrics")
		}
		out = append(out, &summary)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate session summaries")
	}
	return out, nil
}
