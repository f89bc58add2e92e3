// Package repository declares the storage interfaces the services program
// against. The sqlite subpackage is the production implementation; tests
// substitute in-memory fakes.
package repository

import (
	"context"
	"time"

	"github.com/meteoryte/banana-oracle/internal/model"
)

// BananaFilter narrows catalog queries. Empty fields match everything.
type BananaFilter struct {
	Rarity string
	Taste  string
}

// ListOptions paginates catalog queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// BananaRepository is the catalog store.
//
// Random picks a uniformly random persisted item: implementations count the
// rows and read at a uniform skip offset, returning apperror.ErrNotFound
// when the catalog is empty.
type BananaRepository interface {
	Create(ctx context.Context, banana *model.Banana) error
	GetByID(ctx context.Context, id string) (*model.Banana, error)
	List(ctx context.Context, filter BananaFilter, opts ListOptions) ([]model.Banana, error)
	Count(ctx context.Context, filter BananaFilter) (int, error)
	Random(ctx context.Context) (*model.Banana, error)
	Update(ctx context.Context, banana *model.Banana) error
	Delete(ctx context.Context, id string) error
}

// AccountRepository is the account store.
//
// ConsumeQuota must be atomic: decrement only when remaining > 0, in a
// single conditional statement, and report apperror.ErrExhausted otherwise.
// Two concurrent consumers of the last remaining query must not both
// succeed.
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetByProvider(ctx context.Context, provider, providerID string) (*model.Account, error)
	Update(ctx context.Context, account *model.Account) error

	ResetQuota(ctx context.Context, id string, remaining int, resetAt time.Time) error
	ConsumeQuota(ctx context.Context, id string) (remaining int, err error)

	AddFavorite(ctx context.Context, accountID, bananaID string) error
	RemoveFavorite(ctx context.Context, accountID, bananaID string) error
	Favorites(ctx context.Context, accountID string) ([]string, error)
}

// SessionRepository stores cookie-backed sessions. Get must not return
// expired sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}
