package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/meteoryte/banana-oracle/internal/apperror"
	"github.com/meteoryte/banana-oracle/internal/model"
	"github.com/meteoryte/banana-oracle/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAccountRepo is an in-memory AccountRepository. Error fields inject
// failures per method.
type fakeAccountRepo struct {
	accounts  map[string]*model.Account
	favorites map[string][]string
	nextID    int

	createErr  error
	getErr     error
	updateErr  error
	resetErr   error
	consumeErr error

	resetCalls   int
	consumeCalls int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		accounts:  make(map[string]*model.Account),
		favorites: make(map[string][]string),
	}
}

var _ repository.AccountRepository = (*fakeAccountRepo)(nil)

func (f *fakeAccountRepo) Create(ctx context.Context, account *model.Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	account.ID = fmt.Sprintf("acct-%d", f.nextID)
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
	stored := *account
	f.accounts[account.ID] = &stored
	return nil
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.accounts[id]
	if !ok {
		return nil, apperror.NotFound("account", id)
	}
	copied := *a
	copied.FavoriteBananas = append([]string(nil), f.favorites[id]...)
	return &copied, nil
}

func (f *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range f.accounts {
		if a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("account", email)
}

func (f *fakeAccountRepo) GetByProvider(ctx context.Context, provider, providerID string) (*model.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, a := range f.accounts {
		if a.Provider == provider && a.ProviderID == providerID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("account", provider+":"+providerID)
}

func (f *fakeAccountRepo) Update(ctx context.Context, account *model.Account) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.accounts[account.ID]; !ok {
		return apperror.NotFound("account", account.ID)
	}
	stored := *account
	f.accounts[account.ID] = &stored
	return nil
}

func (f *fakeAccountRepo) ResetQuota(ctx context.Context, id string, remaining int, resetAt time.Time) error {
	f.resetCalls++
	if f.resetErr != nil {
		return f.resetErr
	}
	a, ok := f.accounts[id]
	if !ok {
		return apperror.NotFound("account", id)
	}
	a.QueriesRemaining = remaining
	a.QuotaResetAt = resetAt
	return nil
}

func (f *fakeAccountRepo) ConsumeQuota(ctx context.Context, id string) (int, error) {
	f.consumeCalls++
	if f.consumeErr != nil {
		return 0, f.consumeErr
	}
	a, ok := f.accounts[id]
	if !ok {
		return 0, apperror.NotFound("account", id)
	}
	if a.QueriesRemaining <= 0 {
		return 0, apperror.Exhausted("daily Oracle query limit reached")
	}
	a.QueriesRemaining--
	return a.QueriesRemaining, nil
}

func (f *fakeAccountRepo) AddFavorite(ctx context.Context, accountID, bananaID string) error {
	for _, id := range f.favorites[accountID] {
		if id == bananaID {
			return nil
		}
	}
	f.favorites[accountID] = append(f.favorites[accountID], bananaID)
	return nil
}

func (f *fakeAccountRepo) RemoveFavorite(ctx context.Context, accountID, bananaID string) error {
	kept := f.favorites[accountID][:0]
	for _, id := range f.favorites[accountID] {
		if id != bananaID {
			kept = append(kept, id)
		}
	}
	f.favorites[accountID] = kept
	return nil
}

func (f *fakeAccountRepo) Favorites(ctx context.Context, accountID string) ([]string, error) {
	return append([]string(nil), f.favorites[accountID]...), nil
}

// fakeBananaRepo is an in-memory BananaRepository.
type fakeBananaRepo struct {
	items  []model.Banana
	nextID int

	listErr   error
	countErr  error
	getErr    error
	randomErr error
}

var _ repository.BananaRepository = (*fakeBananaRepo)(nil)

func (f *fakeBananaRepo) Create(ctx context.Context, banana *model.Banana) error {
	f.nextID++
	banana.ID = fmt.Sprintf("banana-%d", f.nextID)
	now := time.Now()
	banana.CreatedAt = now
	banana.UpdatedAt = now
	f.items = append(f.items, *banana)
	return nil
}

func (f *fakeBananaRepo) GetByID(ctx context.Context, id string) (*model.Banana, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, b := range f.items {
		if b.ID == id {
			copied := b
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("banana", id)
}

func (f *fakeBananaRepo) matches(b model.Banana, filter repository.BananaFilter) bool {
	if filter.Rarity != "" && b.Rarity != filter.Rarity {
		return false
	}
	if filter.Taste != "" && b.Taste != filter.Taste {
		return false
	}
	return true
}

func (f *fakeBananaRepo) List(ctx context.Context, filter repository.BananaFilter, opts repository.ListOptions) ([]model.Banana, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	matched := []model.Banana{}
	for _, b := range f.items {
		if f.matches(b, filter) {
			matched = append(matched, b)
		}
	}
	if opts.Offset >= len(matched) {
		return []model.Banana{}, nil
	}
	matched = matched[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

func (f *fakeBananaRepo) Count(ctx context.Context, filter repository.BananaFilter) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, b := range f.items {
		if f.matches(b, filter) {
			n++
		}
	}
	return n, nil
}

func (f *fakeBananaRepo) Random(ctx context.Context) (*model.Banana, error) {
	if f.randomErr != nil {
		return nil, f.randomErr
	}
	if len(f.items) == 0 {
		return nil, apperror.NotFound("banana", "random")
	}
	copied := f.items[0]
	return &copied, nil
}

func (f *fakeBananaRepo) Update(ctx context.Context, banana *model.Banana) error {
	for i, b := range f.items {
		if b.ID == banana.ID {
			f.items[i] = *banana
			return nil
		}
	}
	return apperror.NotFound("banana", banana.ID)
}

func (f *fakeBananaRepo) Delete(ctx context.Context, id string) error {
	for i, b := range f.items {
		if b.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("banana", id)
}

// fakePinger reports the injected store health.
type fakePinger struct {
	err error
}

func (p *fakePinger) Ping() error {
	return p.err
}
