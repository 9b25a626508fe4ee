// Package cache provides a local sqlite-backed cache for raw LLM responses,
// keyed by prompt digest. Scene-graph extraction is deterministic enough in
// intent that re-running a caption does not need to re-pay the endpoint.
package cache

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLite implements a response cache on modernc.org/sqlite.
type SQLite struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at path and applies WAL mode.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "cache: exec %s", pragma)
		}
	}

	c := &SQLite{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS llm_responses (
	id         TEXT PRIMARY KEY,
	digest     TEXT NOT NULL UNIQUE,
	response   TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_llm_responses_digest ON llm_responses(digest);
`

func (c *SQLite) migrate() error {
	_, err := c.db.Exec(migration)
	return eris.Wrap(err, "cache: migrate")
}

// Close closes the underlying database.
func (c *SQLite) Close() error {
	return c.db.Close()
}

// Get returns the cached response for digest, if any.
func (c *SQLite) Get(ctx context.Context, digest string) (string, bool, error) {
	var response string
	err := c.db.QueryRowContext(ctx,
		`SELECT response FROM llm_responses WHERE digest = ?`, digest,
	).Scan(&response)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrap(err, "cache: get")
	}
	return response, true, nil
}

// Put stores a response under digest. Existing entries are replaced.
func (c *SQLite) Put(ctx context.Context, digest, response string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO llm_responses (id, digest, response, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(digest) DO UPDATE SET response = excluded.response`,
		uuid.New().String(), digest, response, time.Now().UTC(),
	)
	return eris.Wrap(err, "cache: put")
}
