package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/meteoryte/banana-oracle/internal/apperror"
	"github.com/meteoryte/banana-oracle/internal/demo"
	"github.com/meteoryte/banana-oracle/internal/model"
	"github.com/meteoryte/banana-oracle/internal/repository"
)

// Pinger is the store liveness probe the catalog consults before trusting
// a read. The sqlite DB satisfies it.
type Pinger interface {
	Ping() error
}

// CatalogService serves the banana catalog with a demo-data safety net.
//
// Reads never fail outright: when the store is absent (demo mode),
// unreachable, or errors mid-query, the fixed demo set answers instead and
// every record in the response carries the demo flag. Writes have no such
// net — without a store they report the outage.
type CatalogService struct {
	store  repository.BananaRepository // nil in demo mode
	pinger Pinger                      // nil in demo mode
	logger *slog.Logger
}

// NewCatalogService creates a CatalogService. Passing a nil store puts the
// catalog in permanent demo mode.
func NewCatalogService(store repository.BananaRepository, pinger Pinger, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: store, pinger: pinger, logger: logger}
}

// storeUp reports whether the persistent store can be trusted right now.
func (s *CatalogService) storeUp() bool {
	return s.store != nil && s.pinger != nil && s.pinger.Ping() == nil
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ListResult is one page of catalog items. Demo is set when the page was
// served from the fallback set.
type ListResult struct {
	Bananas    []model.Banana `json:"bananas"`
	Pagination Pagination     `json:"pagination"`
	Demo       bool           `json:"_demo,omitempty"`
}

func demoList(filter repository.BananaFilter) *ListResult {
	filtered := demo.Filter(filter)
	return &ListResult{
		Bananas: filtered,
		Pagination: Pagination{
			Page: 1, Limit: len(filtered), Total: len(filtered), Pages: 1,
		},
		Demo: true,
	}
}

// List returns one page of the catalog, newest first. A healthy store with
// zero matches yields a legitimate empty page, not demo data.
func (s *CatalogService) List(ctx context.Context, filter repository.BananaFilter, page, limit int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	if !s.storeUp() {
		return demoList(filter), nil
	}

	opts := repository.ListOptions{Limit: limit, Offset: (page - 1) * limit}
	bananas, err := s.store.List(ctx, filter, opts)
	if err != nil {
		s.logger.Warn("catalog list failed, serving demo data", slog.String("error", err.Error()))
		return demoList(filter), nil
	}

	total, err := s.store.Count(ctx, filter)
	if err != nil {
		s.logger.Warn("catalog count failed, serving demo data", slog.String("error", err.Error()))
		return demoList(filter), nil
	}

	pages := total / limit
	if total%limit != 0 {
		pages++
	}

	return &ListResult{
		Bananas: bananas,
		Pagination: Pagination{
			Page: page, Limit: limit, Total: total, Pages: pages,
		},
	}, nil
}

// Get retrieves one catalog item. It never answers "not found": ids with
// the demo prefix resolve against the demo set (a prefixed id missing from
// the set falls back to a random demo pick), and store-backed lookups that
// miss — store down, erroring, or simply no such row — answer a random
// demo pick too. Callers that need a strict lookup use Lookup.
func (s *CatalogService) Get(ctx context.Context, id string) (*model.Banana, error) {
	if demo.IsDemoID(id) {
		if b, ok := demo.ByID(id); ok {
			return &b, nil
		}
		b := demo.Random()
		return &b, nil
	}

	if !s.storeUp() {
		b := demo.Random()
		return &b, nil
	}

	banana, err := s.store.GetByID(ctx, id)
	if err != nil {
		if !apperror.IsNotFound(err) {
			s.logger.Warn("catalog get failed, serving demo data",
				slog.String("id", id), slog.String("error", err.Error()))
		}
		b := demo.Random()
		return &b, nil
	}
	return banana, nil
}

// Lookup retrieves one catalog item with no fallback: demo-prefixed ids
// resolve against the demo set exactly, everything else against the store,
// and a missing record reports ErrNotFound. The favorites view uses it to
// drop vanished records instead of collecting random demo picks.
func (s *CatalogService) Lookup(ctx context.Context, id string) (*model.Banana, error) {
	if demo.IsDemoID(id) {
		if b, ok := demo.ByID(id); ok {
			return &b, nil
		}
		return nil, apperror.NotFound("banana", id)
	}
	if s.store == nil {
		return nil, apperror.NotFound("banana", id)
	}
	return s.store.GetByID(ctx, id)
}

// Random returns a uniformly random catalog item, falling back to the demo
// set when the store is down, empty, or erroring.
func (s *CatalogService) Random(ctx context.Context) (*model.Banana, error) {
	if !s.storeUp() {
		b := demo.Random()
		return &b, nil
	}

	banana, err := s.store.Random(ctx)
	if err != nil {
		if !apperror.IsNotFound(err) {
			s.logger.Warn("catalog random failed, serving demo data", slog.String("error", err.Error()))
		}
		b := demo.Random()
		return &b, nil
	}
	return banana, nil
}

// validate checks a banana's fields before a write.
func validateBanana(b *model.Banana) error {
	if strings.TrimSpace(b.Name) == "" {
		return apperror.ValidationFailed("name", "name is required")
	}
	if strings.TrimSpace(b.Origin) == "" {
		return apperror.ValidationFailed("origin", "origin is required")
	}
	if strings.TrimSpace(b.InventionStory) == "" {
		return apperror.ValidationFailed("inventionStory", "invention story is required")
	}
	if b.Taste != "" && !model.ValidTaste(b.Taste) {
		return apperror.ValidationFailed("taste", "taste must be one of: "+strings.Join(model.Tastes, ", "))
	}
	if b.Rarity != "" && !model.ValidRarity(b.Rarity) {
		return apperror.ValidationFailed("rarity", "rarity must be one of: "+strings.Join(model.Rarities, ", "))
	}
	return nil
}

// applyDefaults fills enum fields left empty on create.
func applyDefaults(b *model.Banana) {
	if b.Color == "" {
		b.Color = "yellow"
	}
	if b.Taste == "" {
		b.Taste = model.TasteSweet
	}
	if b.Rarity == "" {
		b.Rarity = model.RarityCommon
	}
}

// Create persists a new catalog item. There is no demo fallback for
// writes: without a healthy store the catalog is read-only.
func (s *CatalogService) Create(ctx context.Context, banana *model.Banana) error {
	if !s.storeUp() {
		return apperror.Upstream("catalog store unavailable; writes are disabled")
	}
	if err := validateBanana(banana); err != nil {
		return err
	}
	applyDefaults(banana)
	banana.Demo = false
	return s.store.Create(ctx, banana)
}

// Update rewrites an existing catalog item.
func (s *CatalogService) Update(ctx context.Context, banana *model.Banana) error {
	if !s.storeUp() {
		return apperror.Upstream("catalog store unavailable; writes are disabled")
	}
	if demo.IsDemoID(banana.ID) {
		return apperror.ValidationFailed("id", "demo records cannot be modified")
	}
	if err := validateBanana(banana); err != nil {
		return err
	}
	banana.Demo = false
	return s.store.Update(ctx, banana)
}

// Delete removes a catalog item.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if !s.storeUp() {
		return apperror.Upstream("catalog store unavailable; writes are disabled")
	}
	if demo.IsDemoID(id) {
		return apperror.ValidationFailed("id", "demo records cannot be deleted")
	}
	return s.store.Delete(ctx, id)
}
