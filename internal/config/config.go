// Package config loads runtime configuration from the environment.
//
// Every value can come from an environment variable or, for secrets, from a
// mounted file named by the matching *_FILE variable. The file form takes
// precedence so container deployments can avoid putting secrets in the
// process environment. A .env file in the working directory is loaded first
// (development convenience); real environment variables win over it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// OAuthProvider holds one provider's client credentials. A provider is
// enabled if and only if both fields are non-empty; the server registers
// login routes only for enabled providers. This replaces toggling global
// strategy registration off ambient environment state: what is enabled is
// decided here, once, and injected into the wiring.
type OAuthProvider struct {
	ClientID     string
	ClientSecret string
}

// Enabled reports whether this provider was configured.
func (p OAuthProvider) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// Config holds everything the server needs at startup.
type Config struct {
	Port        int    // HTTP port (PORT, default 4000)
	DBPath      string // SQLite database path (DB_PATH); empty = demo mode, no store
	JWTSecret   string // token signing secret (JWT_SECRET / JWT_SECRET_FILE)
	FrontendURL string // frontend origin for CORS and OAuth redirects (FRONTEND_URL)
	PublicURL   string // externally visible base URL for OAuth callbacks (PUBLIC_URL)

	Google OAuthProvider // GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET (+_FILE)
	GitHub OAuthProvider // GITHUB_CLIENT_ID / GITHUB_CLIENT_SECRET (+_FILE)

	OracleAPIKey  string // language-model API key (ORACLE_API_KEY / ORACLE_API_KEY_FILE)
	OracleBaseURL string // override for the completion endpoint (ORACLE_BASE_URL)
}

// Load reads the configuration. Missing optional values degrade features
// instead of failing (no DB path = demo mode, no API key = Oracle
// offline); the JWT secret is the one hard requirement, enforced by the
// server at startup.
func Load() (Config, error) {
	// Ignore a missing .env — it only exists in development.
	_ = godotenv.Load()

	cfg := Config{
		Port:          4000,
		DBPath:        os.Getenv("DB_PATH"),
		JWTSecret:     secret("JWT_SECRET"),
		FrontendURL:   envDefault("FRONTEND_URL", "http://localhost:3000"),
		OracleAPIKey:  secret("ORACLE_API_KEY"),
		OracleBaseURL: os.Getenv("ORACLE_BASE_URL"),
		Google: OAuthProvider{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: secret("GOOGLE_CLIENT_SECRET"),
		},
		GitHub: OAuthProvider{
			ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
			ClientSecret: secret("GITHUB_CLIENT_SECRET"),
		},
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	cfg.PublicURL = envDefault("PUBLIC_URL", fmt.Sprintf("http://localhost:%d", cfg.Port))

	return cfg, nil
}

// secret resolves KEY_FILE (contents of the named file, trimmed) ahead of
// KEY itself.
func secret(key string) string {
	if path := os.Getenv(key + "_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	return os.Getenv(key)
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
