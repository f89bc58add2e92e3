package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/meteoryte/banana-oracle/internal/apperror"
	"github.com/meteoryte/banana-oracle/internal/model"
	"github.com/meteoryte/banana-oracle/internal/repository"
)

// SessionDB is the session view over the shared pool.
type SessionDB struct {
	conn *sql.DB
}

// compile-time check that *SessionDB implements repository.SessionRepository
var _ repository.SessionRepository = (*SessionDB)(nil)

// Create stores a new session row. The caller generates the id.
func (db *SessionDB) Create(ctx context.Context, session *model.Session) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, account_id, created_at, expires_at)
		 VALUES (?, ?, ?, ?)`,
		session.ID,
		session.AccountID,
		session.CreatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating session: %w", err)
	}
	return nil
}

// Get returns the session if it exists and has not expired. An expired row
// is deleted opportunistically and reported as not found.
func (db *SessionDB) Get(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, account_id, created_at, expires_at FROM sessions WHERE id = ?`,
		id,
	).Scan(&s.ID, &s.AccountID, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("session", id)
		}
		return nil, fmt.Errorf("sqlite: getting session: %w", err)
	}

	if time.Now().After(s.ExpiresAt) {
		_ = db.Delete(ctx, id)
		return nil, apperror.NotFound("session", id)
	}

	return &s, nil
}

// Delete removes a session. Deleting an absent session is not an error —
// logout must be idempotent.
func (db *SessionDB) Delete(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting session: %w", err)
	}
	return nil
}
