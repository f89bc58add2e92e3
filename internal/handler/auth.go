package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/meteoryte/banana-oracle/internal/apperror"
	"github.com/meteoryte/banana-oracle/internal/auth"
	"github.com/meteoryte/banana-oracle/internal/model"
	"github.com/meteoryte/banana-oracle/internal/service"
)

const stateCookie = "oauth_state"

// AuthHandler owns the authentication endpoints: the OAuth dance, local
// register/login, logout, the current-account view, and terms acceptance.
type AuthHandler struct {
	identity    *service.IdentityService
	catalog     *service.CatalogService
	sessions    *auth.SessionManager
	providers   map[string]auth.Provider
	frontendURL string
	logger      *slog.Logger
}

// NewAuthHandler creates an AuthHandler. providers holds one entry per
// enabled OAuth provider, keyed by name; an unconfigured provider simply
// has no entry and its routes answer 404.
func NewAuthHandler(
	identity *service.IdentityService,
	catalog *service.CatalogService,
	sessions *auth.SessionManager,
	providers map[string]auth.Provider,
	frontendURL string,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		identity:    identity,
		catalog:     catalog,
		sessions:    sessions,
		providers:   providers,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// setSessionCookie starts a server-side session and attaches its cookie.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, r *http.Request, accountID string) {
	session, err := h.sessions.Start(r.Context(), accountID)
	if err != nil {
		// The bearer token still works; log and move on.
		h.logger.Warn("failed to start session", slog.String("error", err.Error()))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// HandleOAuthStart serves GET /api/auth/{provider}: sets the CSRF state
// cookie and redirects to the provider's consent page.
func (h *AuthHandler) HandleOAuthStart(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[r.PathValue("provider")]
	if !ok {
		writeError(w, apperror.NotFound("provider", r.PathValue("provider")))
		return
	}

	state, err := auth.RandomToken()
	if err != nil {
		writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, provider.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleOAuthCallback serves GET /api/auth/{provider}/callback. On success
// the browser is redirected to the frontend with the bearer token in the
// query string; on any failure it lands on the frontend login page with an
// error marker instead of a JSON body, because the user agent here is a
// browser mid-redirect, not an API client.
func (h *AuthHandler) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("provider")
	provider, ok := h.providers[name]
	if !ok {
		writeError(w, apperror.NotFound("provider", name))
		return
	}

	failure := h.frontendURL + "/login?error=" + url.QueryEscape(name+"_failed")

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		h.logger.Warn("OAuth state mismatch", slog.String("provider", name))
		http.Redirect(w, r, failure, http.StatusTemporaryRedirect)
		return
	}
	// State is single-use.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, failure, http.StatusTemporaryRedirect)
		return
	}

	profile, err := provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Warn("OAuth exchange failed",
			slog.String("provider", name), slog.String("error", err.Error()))
		http.Redirect(w, r, failure, http.StatusTemporaryRedirect)
		return
	}

	result, err := h.identity.ResolveOAuth(r.Context(), profile)
	if err != nil {
		h.logger.Error("OAuth account resolution failed",
			slog.String("provider", name), slog.String("error", err.Error()))
		http.Redirect(w, r, failure, http.StatusTemporaryRedirect)
		return
	}

	h.setSessionCookie(w, r, result.Account.ID)

	dest := h.frontendURL + "/auth/callback?token=" + url.QueryEscape(result.Token) +
		"&provider=" + url.QueryEscape(name)
	http.Redirect(w, r, dest, http.StatusTemporaryRedirect)
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token   string         `json:"token"`
	Account *model.Account `json:"account"`
}

// HandleRegister serves POST /api/auth/register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.identity.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, r, result.Account.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: result.Token, Account: result.Account})
}

// HandleLogin serves POST /api/auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, r, result.Account.ID)
	writeJSON(w, http.StatusOK, authResponse{Token: result.Token, Account: result.Account})
}

// HandleLogout serves POST /api/auth/logout: ends the server-side session
// and clears its cookie. Logout is idempotent — no session, no error.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookie); err == nil && cookie.Value != "" {
		if err := h.sessions.End(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("failed to end session", slog.String("error", err.Error()))
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name: auth.SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// meResponse is the current-account view. FavoriteBananas holds the full
// records, not just ids, so the client renders the list in one request;
// favorites whose record has vanished are silently dropped.
type meResponse struct {
	ID                     string         `json:"id"`
	Email                  string         `json:"email"`
	DisplayName            string         `json:"displayName"`
	AvatarURL              string         `json:"avatar,omitempty"`
	Provider               string         `json:"provider"`
	Role                   string         `json:"role"`
	TermsAccepted          bool           `json:"termsAccepted"`
	FavoriteBananas        []model.Banana `json:"favoriteBananas"`
	OracleQueriesRemaining int            `json:"oracleQueriesRemaining"`
}

// HandleMe serves GET /api/auth/me.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	accountID, _ := auth.AccountIDFromContext(r.Context())
	account, err := h.identity.GetAccount(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	favorites := []model.Banana{}
	for _, id := range account.FavoriteBananas {
		// Strict lookup: a vanished favorite is dropped, never replaced
		// by a demo pick.
		banana, err := h.catalog.Lookup(r.Context(), id)
		if err != nil {
			continue
		}
		favorites = append(favorites, *banana)
	}

	writeJSON(w, http.StatusOK, meResponse{
		ID:                     account.ID,
		Email:                  account.Email,
		DisplayName:            account.DisplayName,
		AvatarURL:              account.AvatarURL,
		Provider:               account.Provider,
		Role:                   account.Role,
		TermsAccepted:          account.TermsAccepted,
		FavoriteBananas:        favorites,
		OracleQueriesRemaining: account.QueriesRemaining,
	})
}

type acceptTermsRequest struct {
	Version string `json:"version"`
}

// HandleAcceptTerms serves POST /api/auth/accept-terms.
func (h *AuthHandler) HandleAcceptTerms(w http.ResponseWriter, r *http.Request) {
	var req acceptTermsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	accountID, _ := auth.AccountIDFromContext(r.Context())
	account, err := h.identity.AcceptTerms(r.Context(), accountID, req.Version)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "terms accepted successfully",
		"termsAccepted":   account.TermsAccepted,
		"termsVersion":    account.TermsVersion,
		"termsAcceptedAt": account.TermsAcceptedAt,
	})
}

// HandleCheckTerms serves GET /api/auth/check-terms.
func (h *AuthHandler) HandleCheckTerms(w http.ResponseWriter, r *http.Request) {
	accountID, _ := auth.AccountIDFromContext(r.Context())
	account, err := h.identity.GetAccount(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"termsAccepted":   account.TermsAccepted,
		"termsVersion":    account.TermsVersion,
		"termsAcceptedAt": account.TermsAcceptedAt,
	})
}
