// internal/session/sql.go
//
// sqlx-backed session store (MySQL wire protocol).
//
// Context
// -------
// Sessions persist as one row each in the `session` table: id, a JSON blob
// of values, and an expiry timestamp.  Expired rows are filtered on read;
// Purge removes them in bulk and is meant to run on a timer from main.
//
// Schema
// ------
//
//	CREATE TABLE session (
//	    id         VARCHAR(64)  PRIMARY KEY,
//	    data       JSON         NOT NULL,
//	    expires_at DATETIME     NOT NULL
//	);
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLStore persists sessions through a shared *sqlx.DB pool.
type SQLStore struct {
	db  *sqlx.DB
	ttl time.Duration
}

// NewSQLStore wraps an open pool.  Each Save pushes the expiry ttl into the
// future.
func NewSQLStore(db *sqlx.DB, ttl time.Duration) *SQLStore {
	return &SQLStore{db: db, ttl: ttl}
}

// Find loads the live session row for id or returns ErrNotFound.
func (s *SQLStore) Find(ctx context.Context, id string) (*Session, error) {
	var row struct {
		Data      []byte    `db:"data"`
		ExpiresAt time.Time `db:"expires_at"`
	}
	err := s.db.GetContext(ctx, &row,
		`SELECT data, expires_at FROM session WHERE id = ? AND expires_at > NOW()`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	values := make(map[string]any)
	if err := json.Unmarshal(row.Data, &values); err != nil {
		return nil, err
	}
	return &Session{ID: id, values: values}, nil
}

// Save upserts the session row and refreshes its expiry.
func (s *SQLStore) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess.snapshot())
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session (id, data, expires_at) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE data = VALUES(data), expires_at = VALUES(expires_at)`,
		sess.ID, data, time.Now().Add(s.ttl))
	return err
}

// Delete removes the session row; an absent id is not an error.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE id = ?`, id)
	return err
}

// Purge deletes all expired rows and reports how many were removed.
func (s *SQLStore) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
