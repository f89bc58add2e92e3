package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/meteoryte/banana-oracle/internal/auth"
	"github.com/meteoryte/banana-oracle/internal/model"
	sqliteRepo "github.com/meteoryte/banana-oracle/internal/repository/sqlite"
	"github.com/meteoryte/banana-oracle/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv wires real services over an in-memory database, the same graph
// the server builds, minus HTTP.
type testEnv struct {
	db       *sqliteRepo.DB
	catalog  *service.CatalogService
	identity *service.IdentityService
	sessions *auth.SessionManager
	tokens   *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}

	logger := testLogger()
	return &testEnv{
		db:       db,
		catalog:  service.NewCatalogService(db.Bananas(), db, logger),
		identity: service.NewIdentityService(db.Accounts(), tokens, auth.NewPasswordServiceForTest(bcrypt.MinCost), logger),
		sessions: auth.NewSessionManager(db.Sessions()),
		tokens:   tokens,
	}
}

// registerAccount creates a local account and returns it.
func (e *testEnv) registerAccount(t *testing.T, email string) *model.Account {
	t.Helper()
	result, err := e.identity.Register(context.Background(), email, "test-password", "Tester")
	if err != nil {
		t.Fatalf("registering %s: %v", email, err)
	}
	return result.Account
}

// seedBanana stores one catalog record.
func (e *testEnv) seedBanana(t *testing.T, name string) *model.Banana {
	t.Helper()
	banana := &model.Banana{
		Name:           name,
		Origin:         "Testland",
		InventionStory: "Invented for a test.",
	}
	if err := e.catalog.Create(context.Background(), banana); err != nil {
		t.Fatalf("seeding banana %s: %v", name, err)
	}
	return banana
}

// decodeBody unmarshals a recorded JSON response.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decoding response body %q: %v", rec.Body.String(), err)
	}
}
