// Package service holds the business rules, between the HTTP handlers and
// the repositories. Services never read requests or write responses; they
// take plain arguments and return models or apperror values.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/meteoryte/banana-oracle/internal/apperror"
	"github.com/meteoryte/banana-oracle/internal/auth"
	"github.com/meteoryte/banana-oracle/internal/model"
	"github.com/meteoryte/banana-oracle/internal/repository"
)

// IdentityService owns account lifecycle: OAuth sign-in, local register and
// login, terms acceptance, and favorites.
type IdentityService struct {
	accounts  repository.AccountRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewIdentityService creates an IdentityService.
func NewIdentityService(
	accounts repository.AccountRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *IdentityService {
	return &IdentityService{
		accounts:  accounts,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the account and its freshly issued bearer token so
// the handler can set the cookie, redirect, and respond in one step.
type AuthResult struct {
	Account *model.Account
	Token   string
}

// ResolveOAuth turns a completed OAuth exchange into a signed-in account.
//
// Resolution order is fixed: the (provider, providerID) pair wins over an
// email match, so an account that already completed this provider's flow
// always resolves to itself even if its email has since changed upstream.
// An email-only match re-links the account to the new provider identity:
// the same mailbox proven through a different provider is treated as the
// same person.
func (s *IdentityService) ResolveOAuth(ctx context.Context, profile *auth.Profile) (*AuthResult, error) {
	if profile == nil {
		return nil, fmt.Errorf("service/identity: OAuth profile must not be nil")
	}

	account, err := s.accounts.GetByProvider(ctx, profile.Provider, profile.ProviderID)
	if err != nil && apperror.IsNotFound(err) {
		account, err = s.accounts.GetByEmail(ctx, profile.Email)
	}

	now := time.Now()
	switch {
	case err == nil:
		// Known account: re-link the provider identity and touch the
		// login timestamp.
		account.Provider = profile.Provider
		account.ProviderID = profile.ProviderID
		account.LastLoginAt = now
		if profile.AvatarURL != "" {
			account.AvatarURL = profile.AvatarURL
		}
		if err := s.accounts.Update(ctx, account); err != nil {
			return nil, fmt.Errorf("service/identity: relinking account %s: %w", account.ID, err)
		}

	case apperror.IsNotFound(err):
		account = &model.Account{
			Email:       profile.Email,
			DisplayName: profile.DisplayName,
			AvatarURL:   profile.AvatarURL,
			Provider:    profile.Provider,
			ProviderID:  profile.ProviderID,
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			return nil, fmt.Errorf("service/identity: creating account (provider=%s): %w", profile.Provider, err)
		}
		s.logger.Info("account created via OAuth",
			slog.String("accountID", account.ID),
			slog.String("provider", profile.Provider),
		)

	default:
		return nil, fmt.Errorf("service/identity: resolving OAuth profile: %w", err)
	}

	token, err := s.tokens.Generate(account)
	if err != nil {
		return nil, fmt.Errorf("service/identity: generating token for account %s: %w", account.ID, err)
	}

	return &AuthResult{Account: account, Token: token}, nil
}

// Register creates a local email/password account.
func (s *IdentityService) Register(ctx context.Context, email, password, displayName string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email address is required")
	}
	if len(password) < 8 {
		return nil, apperror.ValidationFailed("password", "password must be at least 8 characters")
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("account", email)
	} else if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("service/identity: checking email %s: %w", email, err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(displayName),
		Provider:     model.ProviderLocal,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("service/identity: creating local account: %w", err)
	}

	s.logger.Info("account registered", slog.String("accountID", account.ID))

	token, err := s.tokens.Generate(account)
	if err != nil {
		return nil, fmt.Errorf("service/identity: generating token for account %s: %w", account.ID, err)
	}

	return &AuthResult{Account: account, Token: token}, nil
}

// Login authenticates a local account. All failure modes collapse into the
// same Unauthorized so callers cannot probe which emails exist.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("service/identity: fetching account for login: %w", err)
	}

	if account.Provider != model.ProviderLocal || account.PasswordHash == "" {
		return nil, apperror.Unauthorized("invalid email or password")
	}
	if err := s.passwords.Verify(account.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	account.LastLoginAt = time.Now()
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("service/identity: touching login time for %s: %w", account.ID, err)
	}

	token, err := s.tokens.Generate(account)
	if err != nil {
		return nil, fmt.Errorf("service/identity: generating token for account %s: %w", account.ID, err)
	}

	return &AuthResult{Account: account, Token: token}, nil
}

// GetAccount returns the account behind an id.
func (s *IdentityService) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	if id == "" {
		return nil, fmt.Errorf("service/identity: account id must not be empty")
	}
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/identity: fetching account %s: %w", id, err)
	}
	return account, nil
}

// AcceptTerms records the account's acceptance of the given terms version.
// An empty version means the current one. Re-accepting overwrites the
// previous record, so upgrading from "1.0" to "2.0" is a plain second call.
func (s *IdentityService) AcceptTerms(ctx context.Context, accountID, version string) (*model.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("service/identity: fetching account %s: %w", accountID, err)
	}

	if version == "" {
		version = TermsVersion
	}
	now := time.Now()
	account.TermsAccepted = true
	account.TermsVersion = version
	account.TermsAcceptedAt = &now

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("service/identity: saving terms acceptance for %s: %w", accountID, err)
	}

	s.logger.Info("terms accepted",
		slog.String("accountID", accountID),
		slog.String("version", version),
	)
	return account, nil
}

// AddFavorite marks a catalog item as one of the account's favorites and
// returns the updated list. Adding twice is a no-op.
func (s *IdentityService) AddFavorite(ctx context.Context, accountID, bananaID string) ([]string, error) {
	if err := s.accounts.AddFavorite(ctx, accountID, bananaID); err != nil {
		return nil, fmt.Errorf("service/identity: adding favorite: %w", err)
	}
	return s.accounts.Favorites(ctx, accountID)
}

// RemoveFavorite removes a favorite and returns the updated list. Removing
// an id that was never a favorite is a no-op.
func (s *IdentityService) RemoveFavorite(ctx context.Context, accountID, bananaID string) ([]string, error) {
	if err := s.accounts.RemoveFavorite(ctx, accountID, bananaID); err != nil {
		return nil, fmt.Errorf("service/identity: removing favorite: %w", err)
	}
	return s.accounts.Favorites(ctx, accountID)
}
