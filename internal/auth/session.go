package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/meteoryte/banana-oracle/internal/model"
	"github.com/meteoryte/banana-oracle/internal/repository"
)

// RandomToken returns a 256-bit value from crypto/rand, hex-encoded.
// Session ids and OAuth state must be unguessable, so they come from here
// rather than from xid, which is sequential enough to enumerate. Entity
// ids stay xid.
func RandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth: generating random token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// SessionCookie is the cookie that carries the session id.
const SessionCookie = "banana_session"

// SessionTTL is the server-side session lifetime. Shorter than the bearer
// token on purpose: sessions are revocable, tokens are not.
const SessionTTL = 24 * time.Hour

// SessionManager creates and resolves cookie-backed sessions on top of the
// session store.
type SessionManager struct {
	sessions repository.SessionRepository
}

// NewSessionManager creates a SessionManager.
func NewSessionManager(sessions repository.SessionRepository) *SessionManager {
	return &SessionManager{sessions: sessions}
}

// Start creates a session for the account and returns it. The id comes
// from crypto/rand; the caller sets it as an HttpOnly cookie.
func (m *SessionManager) Start(ctx context.Context, accountID string) (*model.Session, error) {
	id, err := RandomToken()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	session := &model.Session{
		ID:        id,
		AccountID: accountID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}
	if err := m.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("auth: starting session: %w", err)
	}
	return session, nil
}

// Resolve returns the account id behind a live session, or an error when
// the session is unknown or expired.
func (m *SessionManager) Resolve(ctx context.Context, sessionID string) (string, error) {
	session, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return session.AccountID, nil
}

// End deletes a session. Ending an already-gone session is a no-op.
func (m *SessionManager) End(ctx context.Context, sessionID string) error {
	return m.sessions.Delete(ctx, sessionID)
}
