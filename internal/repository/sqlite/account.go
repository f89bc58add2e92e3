package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/meteoryte/banana-oracle/internal/apperror"
	"github.com/meteoryte/banana-oracle/internal/model"
	"github.com/meteoryte/banana-oracle/internal/repository"
)

// AccountDB is the account view over the shared pool.
type AccountDB struct {
	conn *sql.DB
}

// compile-time check that *AccountDB implements repository.AccountRepository
var _ repository.AccountRepository = (*AccountDB)(nil)

const accountColumns = `id, email, password_hash, display_name, avatar_url,
	provider, provider_id, role, terms_accepted, terms_version,
	terms_accepted_at, oracle_queries_remaining, oracle_queries_reset_at,
	created_at, last_login_at`

// Create inserts a new account. Email is stored lowercased; the UNIQUE
// constraint surfaces duplicates as an error. Zero-value quota fields are
// initialized to a full window starting now.
func (db *AccountDB) Create(ctx context.Context, account *model.Account) error {
	account.ID = xid.New().String()
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))

	now := time.Now()
	account.CreatedAt = now
	account.LastLoginAt = now
	if account.Role == "" {
		account.Role = model.RoleUser
	}
	if account.QuotaResetAt.IsZero() {
		account.QueriesRemaining = model.DailyOracleLimit
		account.QuotaResetAt = now
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.DisplayName,
		account.AvatarURL,
		account.Provider,
		account.ProviderID,
		account.Role,
		account.TermsAccepted,
		account.TermsVersion,
		account.TermsAcceptedAt,
		account.QueriesRemaining,
		account.QuotaResetAt,
		account.CreatedAt,
		account.LastLoginAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating account (email=%s): %w", account.Email, err)
	}

	return nil
}

func scanAccount(scan func(...any) error) (*model.Account, error) {
	var a model.Account
	err := scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.DisplayName,
		&a.AvatarURL,
		&a.Provider,
		&a.ProviderID,
		&a.Role,
		&a.TermsAccepted,
		&a.TermsVersion,
		&a.TermsAcceptedAt,
		&a.QueriesRemaining,
		&a.QuotaResetAt,
		&a.CreatedAt,
		&a.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (db *AccountDB) getAccount(ctx context.Context, what, key, query string, args ...any) (*model.Account, error) {
	row := db.conn.QueryRowContext(ctx, query, args...)
	a, err := scanAccount(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound(what, key)
		}
		return nil, fmt.Errorf("sqlite: getting %s %s: %w", what, key, err)
	}

	a.FavoriteBananas, err = db.Favorites(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an account (favorites included) by internal id.
func (db *AccountDB) GetByID(ctx context.Context, id string) (*model.Account, error) {
	return db.getAccount(ctx, "account", id,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
}

// GetByEmail retrieves an account by email, case-insensitively.
func (db *AccountDB) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return db.getAccount(ctx, "account", email,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
}

// GetByProvider retrieves an account by its external identity pair.
func (db *AccountDB) GetByProvider(ctx context.Context, provider, providerID string) (*model.Account, error) {
	return db.getAccount(ctx, "account", provider+":"+providerID,
		`SELECT `+accountColumns+` FROM accounts WHERE provider = ? AND provider_id = ?`,
		provider, providerID)
}

// Update rewrites the mutable account columns. Quota fields are included:
// CheckAndReset persists through here, while decrements go through the
// conditional ConsumeQuota only.
func (db *AccountDB) Update(ctx context.Context, account *model.Account) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE accounts
		 SET email = ?, password_hash = ?, display_name = ?, avatar_url = ?,
		     provider = ?, provider_id = ?, role = ?, terms_accepted = ?,
		     terms_version = ?, terms_accepted_at = ?,
		     oracle_queries_remaining = ?, oracle_queries_reset_at = ?,
		     last_login_at = ?
		 WHERE id = ?`,
		strings.ToLower(strings.TrimSpace(account.Email)),
		account.PasswordHash,
		account.DisplayName,
		account.AvatarURL,
		account.Provider,
		account.ProviderID,
		account.Role,
		account.TermsAccepted,
		account.TermsVersion,
		account.TermsAcceptedAt,
		account.QueriesRemaining,
		account.QuotaResetAt,
		account.LastLoginAt,
		account.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating account %s: %w", account.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("account", account.ID)
	}

	return nil
}

// ResetQuota sets the remaining counter and window start in one statement.
func (db *AccountDB) ResetQuota(ctx context.Context, id string, remaining int, resetAt time.Time) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE accounts
		 SET oracle_queries_remaining = ?, oracle_queries_reset_at = ?
		 WHERE id = ?`,
		remaining, resetAt, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: resetting quota for account %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("account", id)
	}

	return nil
}

// ConsumeQuota decrements the remaining counter by one, but only while it
// is positive. The WHERE clause makes the decrement a single conditional
// statement: two concurrent consumers of the last query cannot both match,
// so the counter can never go negative or double-spend.
func (db *AccountDB) ConsumeQuota(ctx context.Context, id string) (int, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE accounts
		 SET oracle_queries_remaining = oracle_queries_remaining - 1
		 WHERE id = ? AND oracle_queries_remaining > 0`,
		id,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: consuming quota for account %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Either the account is gone or the counter is at zero.
		// Distinguish so the caller can report 429 vs 404.
		var remaining int
		err := db.conn.QueryRowContext(ctx,
			`SELECT oracle_queries_remaining FROM accounts WHERE id = ?`, id,
		).Scan(&remaining)
		if err == sql.ErrNoRows {
			return 0, apperror.NotFound("account", id)
		}
		if err != nil {
			return 0, fmt.Errorf("sqlite: reading quota for account %s: %w", id, err)
		}
		return remaining, apperror.Exhausted("daily Oracle query limit reached")
	}

	var remaining int
	err = db.conn.QueryRowContext(ctx,
		`SELECT oracle_queries_remaining FROM accounts WHERE id = ?`, id,
	).Scan(&remaining)
	if err != nil {
		return 0, fmt.Errorf("sqlite: reading quota for account %s: %w", id, err)
	}
	return remaining, nil
}

// AddFavorite appends a catalog item to the account's favorites. Adding an
// item that is already a favorite is a no-op (INSERT OR IGNORE), preserving
// its original position.
func (db *AccountDB) AddFavorite(ctx context.Context, accountID, bananaID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO favorites (account_id, banana_id, position)
		 SELECT ?, ?, COALESCE(MAX(position), 0) + 1
		 FROM favorites WHERE account_id = ?`,
		accountID, bananaID, accountID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding favorite for account %s: %w", accountID, err)
	}
	return nil
}

// RemoveFavorite removes a favorite. Removing a non-favorite is a no-op,
// matching the filter semantics on the write path.
func (db *AccountDB) RemoveFavorite(ctx context.Context, accountID, bananaID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM favorites WHERE account_id = ? AND banana_id = ?`,
		accountID, bananaID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing favorite for account %s: %w", accountID, err)
	}
	return nil
}

// Favorites returns the account's favorite ids in insertion order.
func (db *AccountDB) Favorites(ctx context.Context, accountID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT banana_id FROM favorites WHERE account_id = ? ORDER BY position`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing favorites for account %s: %w", accountID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning favorite row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating favorites: %w", err)
	}

	return ids, nil
}
