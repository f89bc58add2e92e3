package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/meteoryte/banana-oracle/internal/model"
)

// Profile is the provider-neutral identity an OAuth flow resolves to.
// Email is never empty: providers that hide it get a synthesized
// "<username>@<provider>.local" placeholder so the account table's
// email uniqueness still holds.
type Profile struct {
	Provider    string
	ProviderID  string
	Email       string
	DisplayName string
	AvatarURL   string
}

// Provider runs one external identity provider's Authorization Code flow.
//
// AuthURL starts the flow; the state parameter must be an unguessable
// value the callback verifies against a cookie. Exchange completes it,
// trading the callback code for a Profile via a server-to-server token
// exchange and a profile API call.
type Provider interface {
	Name() string
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*Profile, error)
}

// GitHubProvider implements Provider against the GitHub OAuth App API.
type GitHubProvider struct {
	config *oauth2.Config
}

// NewGitHubProvider builds the GitHub flow. callbackURL must match the
// "Authorization callback URL" registered on the OAuth App exactly.
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
	}
}

func (p *GitHubProvider) Name() string { return model.ProviderGitHub }

func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// githubUser is the slice of the GitHub /user response we need. Email is
// empty when the user hides it in their GitHub settings.
type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*Profile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging github code: %w", err)
	}

	// Config.Client returns an http.Client that attaches the bearer token
	// to every request.
	client := p.config.Client(ctx, token)

	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		return nil, fmt.Errorf("auth: calling github /user API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: github /user API returned status %d", resp.StatusCode)
	}

	var gh githubUser
	if err := json.NewDecoder(resp.Body).Decode(&gh); err != nil {
		return nil, fmt.Errorf("auth: decoding github /user response: %w", err)
	}
	if gh.ID == 0 {
		return nil, fmt.Errorf("auth: github returned an invalid user (id = 0)")
	}

	email := gh.Email
	if email == "" {
		email = gh.Login + "@github.local"
	}
	displayName := gh.Name
	if displayName == "" {
		displayName = gh.Login
	}

	return &Profile{
		Provider:    model.ProviderGitHub,
		ProviderID:  strconv.FormatInt(gh.ID, 10),
		Email:       email,
		DisplayName: displayName,
		AvatarURL:   gh.AvatarURL,
	}, nil
}

// GoogleProvider implements Provider against Google's OpenID userinfo API.
type GoogleProvider struct {
	config *oauth2.Config
}

// NewGoogleProvider builds the Google flow.
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: google.Endpoint,
		},
	}
}

func (p *GoogleProvider) Name() string { return model.ProviderGoogle }

func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*Profile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging google code: %w", err)
	}

	client := p.config.Client(ctx, token)

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("auth: calling google userinfo API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: google userinfo API returned status %d", resp.StatusCode)
	}

	var gu googleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("auth: decoding google userinfo response: %w", err)
	}
	if gu.ID == "" {
		return nil, fmt.Errorf("auth: google returned an invalid user (empty id)")
	}

	email := gu.Email
	if email == "" {
		email = gu.ID + "@google.local"
	}

	return &Profile{
		Provider:    model.ProviderGoogle,
		ProviderID:  gu.ID,
		Email:       email,
		DisplayName: gu.Name,
		AvatarURL:   gu.Picture,
	}, nil
}
