package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is unexported so only this package can read or write the
// account id stored in a request context.
type contextKey string

const accountIDKey contextKey = "accountID"

// Authenticator resolves incoming requests to an account id. Two
// credential sources are accepted, checked in a fixed order: the session
// cookie first, then an Authorization bearer token. The first source that
// yields a valid identity wins; a bad cookie does not block a good token.
type Authenticator struct {
	tokens   *TokenService
	sessions *SessionManager
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(tokens *TokenService, sessions *SessionManager) *Authenticator {
	return &Authenticator{tokens: tokens, sessions: sessions}
}

// RequireAuth enforces authentication: requests without a resolvable
// identity get 401 and never reach the handler.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := a.resolve(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
			return
		}

		ctx := context.WithValue(r.Context(), accountIDKey, accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches the identity when a valid credential is present
// but never blocks the request. Handlers detect anonymity through
// AccountIDFromContext.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if accountID, ok := a.resolve(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), accountIDKey, accountID))
		}
		next.ServeHTTP(w, r)
	})
}

// AccountIDFromContext returns the authenticated account id, or ("",
// false) for an anonymous request.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDKey).(string)
	return id, ok && id != ""
}

// ContextWithAccountID injects an account id directly. Handler tests use
// it to skip the middleware.
func ContextWithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

func (a *Authenticator) resolve(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		if accountID, err := a.sessions.Resolve(r.Context(), cookie.Value); err == nil {
			return accountID, true
		}
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
		if accountID, err := a.tokens.Validate(token); err == nil {
			return accountID, true
		}
	}

	return "", false
}
