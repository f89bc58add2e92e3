// Package auth provides the credential machinery for the API: JWT issuing
// and validation, OAuth 2.0 provider flows, bcrypt password hashing, and
// the HTTP middleware that resolves a request to an account.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meteoryte/banana-oracle/internal/model"
)

const issuer = "banana-oracle"

// Token validation failure modes. Expired gets its own sentinel because
// callers treat it differently: an expired token means re-authenticate,
// a malformed or forged one does not.
var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrTokenInvalid = errors.New("auth: invalid token")
)

// TokenTTL is how long an issued bearer token stays valid. Clients
// re-authenticate through OAuth (or login) after it lapses.
const TokenTTL = 7 * 24 * time.Hour

// Claims carried in each token besides the registered set. Subject holds
// the account id; email and role ride along so clients can render identity
// without a round trip.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService. The secret must carry enough
// entropy to resist brute force; 16 characters is the floor.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Generate issues a signed token for the account, valid for TokenTTL.
func (s *TokenService) Generate(account *model.Account) (string, error) {
	return s.GenerateWithDuration(account, TokenTTL)
}

// GenerateWithDuration issues a token with a custom lifetime. Tests use it
// to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(account *model.Account, d time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		Email: account.Email,
		Role:  account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string, pinning the algorithm to
// HS256 and requiring the issuer and an expiry. Returns the account id
// from the subject claim.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%w: bad claims", ErrTokenInvalid)
	}
	if c.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	return c.Subject, nil
}
