package model

import "time"

// Auth providers and roles are closed enumerations.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
	ProviderGitHub = "github"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DailyOracleLimit is the free-tier Oracle quota per rolling 24-hour window.
const DailyOracleLimit = 10

// Account is a registered user.
//
// Email is globally unique (stored lowercased). For OAuth accounts the
// (Provider, ProviderID) pair is unique as well; for local accounts
// ProviderID is empty and PasswordHash holds the bcrypt credential.
//
// The Oracle quota lives directly on the account as a remaining counter
// plus the start of the current 24-hour window (QuotaResetAt is the last
// reset time, not the next boundary).
type Account struct {
	ID           string `json:"id"          db:"id"`
	Email        string `json:"email"       db:"email"`
	PasswordHash string `json:"-"           db:"password_hash"` // never serialized
	DisplayName  string `json:"displayName" db:"display_name"`
	AvatarURL    string `json:"avatar,omitempty" db:"avatar_url"`
	Provider     string `json:"provider"    db:"provider"`
	ProviderID   string `json:"-"           db:"provider_id"`
	Role         string `json:"role"        db:"role"`

	TermsAccepted   bool       `json:"termsAccepted"             db:"terms_accepted"`
	TermsVersion    string     `json:"termsVersion,omitempty"    db:"terms_version"`
	TermsAcceptedAt *time.Time `json:"termsAcceptedAt,omitempty" db:"terms_accepted_at"`

	// FavoriteBananas holds catalog item ids in the order they were added.
	FavoriteBananas []string `json:"favoriteBananas"`

	QueriesRemaining int       `json:"oracleQueriesRemaining" db:"oracle_queries_remaining"`
	QuotaResetAt     time.Time `json:"oracleQueriesResetAt"   db:"oracle_queries_reset_at"`

	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	LastLoginAt time.Time `json:"lastLoginAt" db:"last_login_at"`
}

// Session is a server-side cookie-backed login, the alternative credential
// to a bearer token. Expired sessions are treated as absent.
type Session struct {
	ID        string    `db:"id"`
	AccountID string    `db:"account_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}
