package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/meteoryte/banana-oracle/internal/apperror"
	"github.com/meteoryte/banana-oracle/internal/auth"
	"github.com/meteoryte/banana-oracle/internal/model"
	"github.com/meteoryte/banana-oracle/internal/repository"
	"github.com/meteoryte/banana-oracle/internal/service"
)

// BananaHandler owns the catalog endpoints and the per-account favorites
// attached to them.
type BananaHandler struct {
	catalog  *service.CatalogService
	identity *service.IdentityService
	logger   *slog.Logger
}

// NewBananaHandler creates a BananaHandler.
func NewBananaHandler(catalog *service.CatalogService, identity *service.IdentityService, logger *slog.Logger) *BananaHandler {
	return &BananaHandler{catalog: catalog, identity: identity, logger: logger}
}

// HandleList serves GET /api/banana.
//
// Query parameters: rarity, taste (exact-match filters), page, limit.
func (h *BananaHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.BananaFilter{
		Rarity: q.Get("rarity"),
		Taste:  q.Get("taste"),
	}
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.catalog.List(r.Context(), filter, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleRandom serves GET /api/banana/random.
func (h *BananaHandler) HandleRandom(w http.ResponseWriter, r *http.Request) {
	banana, err := h.catalog.Random(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, banana)
}

// HandleGet serves GET /api/banana/{id}.
func (h *BananaHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, apperror.ValidationFailed("id", "banana id is required"))
		return
	}

	banana, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, banana)
}

// HandleCreate serves POST /api/banana. Requires authentication.
func (h *BananaHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var banana model.Banana
	if err := decodeJSON(r, &banana); err != nil {
		writeError(w, err)
		return
	}

	if err := h.catalog.Create(r.Context(), &banana); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, banana)
}

// HandleUpdate serves PUT /api/banana/{id}. Requires authentication.
func (h *BananaHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, apperror.ValidationFailed("id", "banana id is required"))
		return
	}

	var banana model.Banana
	if err := decodeJSON(r, &banana); err != nil {
		writeError(w, err)
		return
	}
	banana.ID = id

	if err := h.catalog.Update(r.Context(), &banana); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, banana)
}

// HandleDelete serves DELETE /api/banana/{id}. Requires the admin role:
// catalog records are shared, so destructive writes are restricted.
func (h *BananaHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, apperror.ValidationFailed("id", "banana id is required"))
		return
	}

	accountID, _ := auth.AccountIDFromContext(r.Context())
	account, err := h.identity.GetAccount(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	if account.Role != model.RoleAdmin {
		writeError(w, apperror.Forbidden("deleting catalog records requires the admin role"))
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "banana deleted successfully"})
}

// HandleAddFavorite serves POST /api/banana/{id}/favorite.
func (h *BananaHandler) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	accountID, _ := auth.AccountIDFromContext(r.Context())

	favorites, err := h.identity.AddFavorite(r.Context(), accountID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "banana added to favorites",
		"favorites": favorites,
	})
}

// HandleRemoveFavorite serves DELETE /api/banana/{id}/favorite.
func (h *BananaHandler) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	accountID, _ := auth.AccountIDFromContext(r.Context())

	favorites, err := h.identity.RemoveFavorite(r.Context(), accountID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "banana removed from favorites",
		"favorites": favorites,
	})
}
