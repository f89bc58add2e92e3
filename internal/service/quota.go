package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meteoryte/banana-oracle/internal/model"
	"github.com/meteoryte/banana-oracle/internal/repository"
)

// QuotaWindow is the length of one Oracle quota period. The window is
// anchored at the last reset, not at midnight: it rolls forward only when
// an account is next seen after the window has lapsed.
const QuotaWindow = 24 * time.Hour

// QuotaService governs the per-account Oracle query budget.
type QuotaService struct {
	accounts repository.AccountRepository
	logger   *slog.Logger

	// now is swappable so tests can move the clock.
	now func() time.Time
}

// NewQuotaService creates a QuotaService.
func NewQuotaService(accounts repository.AccountRepository, logger *slog.Logger) *QuotaService {
	return &QuotaService{
		accounts: accounts,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckAndReset refreshes the account's quota if its window has lapsed.
// The account struct is updated in place so callers see the fresh counter
// without a re-read. Calling it twice in a row is harmless: the second
// call sees a fresh window and does nothing.
func (s *QuotaService) CheckAndReset(ctx context.Context, account *model.Account) error {
	now := s.now()
	if now.Sub(account.QuotaResetAt) < QuotaWindow {
		return nil
	}

	if err := s.accounts.ResetQuota(ctx, account.ID, model.DailyOracleLimit, now); err != nil {
		return fmt.Errorf("service/quota: resetting quota for %s: %w", account.ID, err)
	}
	account.QueriesRemaining = model.DailyOracleLimit
	account.QuotaResetAt = now

	s.logger.Debug("oracle quota reset", slog.String("accountID", account.ID))
	return nil
}

// Consume spends one query from the account's budget, resetting the window
// first if it has lapsed. Returns the remaining count after the decrement,
// or apperror.ErrExhausted (with remaining 0) when the budget is spent.
// The decrement itself is a single conditional statement in the store, so
// concurrent spenders of the last query cannot both succeed.
func (s *QuotaService) Consume(ctx context.Context, account *model.Account) (int, error) {
	if err := s.CheckAndReset(ctx, account); err != nil {
		return 0, err
	}

	remaining, err := s.accounts.ConsumeQuota(ctx, account.ID)
	if err != nil {
		return remaining, err
	}
	account.QueriesRemaining = remaining
	return remaining, nil
}
