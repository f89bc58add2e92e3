package service

import (
	"context"
	"errors"
	"testing"

	"github.com/meteoryte/banana-oracle/internal/apperror"
	"github.com/meteoryte/banana-oracle/internal/demo"
	"github.com/meteoryte/banana-oracle/internal/model"
	"github.com/meteoryte/banana-oracle/internal/repository"
)

func seedCatalogBanana(t *testing.T, store *fakeBananaRepo, name string) *model.Banana {
	t.Helper()
	banana := &model.Banana{
		Name:           name,
		Origin:         "Testland",
		InventionStory: "Invented for a test.",
		Taste:          model.TasteSweet,
		Rarity:         model.RarityCommon,
	}
	if err := store.Create(context.Background(), banana); err != nil {
		t.Fatalf("seeding banana: %v", err)
	}
	return banana
}

func TestCatalogList_HealthyStore(t *testing.T) {
	store := &fakeBananaRepo{}
	seedCatalogBanana(t, store, "one")
	seedCatalogBanana(t, store, "two")
	svc := NewCatalogService(store, &fakePinger{}, testLogger())

	result, err := svc.List(context.Background(), repository.BananaFilter{}, 1, 20)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Demo {
		t.Error("healthy store served demo data")
	}
	if len(result.Bananas) != 2 {
		t.Errorf("List() returned %d items, want 2", len(result.Bananas))
	}
	if result.Pagination.Total != 2 || result.Pagination.Pages != 1 {
		t.Errorf("Pagination = %+v", result.Pagination)
	}
}

func TestCatalogList_HealthyStoreEmptyMatchIsLegit(t *testing.T) {
	store := &fakeBananaRepo{}
	seedCatalogBanana(t, store, "common one")
	svc := NewCatalogService(store, &fakePinger{}, testLogger())

	result, err := svc.List(context.Background(),
		repository.BananaFilter{Rarity: model.RarityLegendary}, 1, 20)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Demo {
		t.Error("zero matches on a healthy store fell back to demo data")
	}
	if len(result.Bananas) != 0 {
		t.Errorf("List() returned %d items, want 0", len(result.Bananas))
	}
}

func TestCatalogList_NoStoreServesDemo(t *testing.T) {
	svc := NewCatalogService(nil, nil, testLogger())

	result, err := svc.List(context.Background(), repository.BananaFilter{}, 1, 20)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !result.Demo {
		t.Error("store-less catalog did not flag demo data")
	}
	if len(result.Bananas) == 0 {
		t.Fatal("demo fallback returned no items")
	}
	for _, b := range result.Bananas {
		if !b.Demo {
			t.Errorf("demo record %q missing the demo flag", b.ID)
		}
	}
}

func TestCatalogList_StoreErrorServesDemo(t *testing.T) {
	store := &fakeBananaRepo{listErr: errors.New("disk on fire")}
	svc := NewCatalogService(store, &fakePinger{}, testLogger())

	result, err := svc.List(context.Background(), repository.BananaFilter{}, 1, 20)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !result.Demo {
		t.Error("erroring store did not fall back to demo data")
	}
}

func TestCatalogList_DemoFallbackRespectsFilter(t *testing.T) {
	svc := NewCatalogService(nil, nil, testLogger())

	result, err := svc.List(context.Background(),
		repository.BananaFilter{Rarity: model.RarityLegendary}, 1, 20)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for _, b := range result.Bananas {
		if b.Rarity != model.RarityLegendary {
			t.Errorf("demo filter leaked %q with rarity %q", b.ID, b.Rarity)
		}
	}
}

func TestCatalogGet_DemoIDAlwaysResolvesAgainstDemoSet(t *testing.T) {
	store := &fakeBananaRepo{}
	seedCatalogBanana(t, store, "stored")
	svc := NewCatalogService(store, &fakePinger{}, testLogger())

	got, err := svc.Get(context.Background(), "demo-1")
	if err != nil {
		t.Fatalf("Get(demo-1) error = %v", err)
	}
	if got.ID != "demo-1" {
		t.Errorf("Get(demo-1) returned %q", got.ID)
	}
	if !got.Demo {
		t.Error("demo record missing the demo flag")
	}
}

func TestCatalogGet_MissingDemoIDPicksRandomDemo(t *testing.T) {
	svc := NewCatalogService(nil, nil, testLogger())

	got, err := svc.Get(context.Background(), "demo-does-not-exist")
	if err != nil {
		t.Fatalf("Get(missing demo id) error = %v", err)
	}
	if !demo.IsDemoID(got.ID) {
		t.Errorf("fallback returned non-demo id %q", got.ID)
	}
}

func TestCatalogGet_HealthyStoreMissingIDServesDemo(t *testing.T) {
	store := &fakeBananaRepo{}
	seedCatalogBanana(t, store, "stored")
	svc := NewCatalogService(store, &fakePinger{}, testLogger())

	got, err := svc.Get(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("Get(missing id) error = %v, want a demo fallback", err)
	}
	if !demo.IsDemoID(got.ID) {
		t.Errorf("missing-id fallback returned non-demo id %q", got.ID)
	}
	if !got.Demo {
		t.Error("fallback record missing the demo flag")
	}
}

func TestCatalogLookup_NoFallback(t *testing.T) {
	store := &fakeBananaRepo{}
	stored := seedCatalogBanana(t, store, "stored")
	svc := NewCatalogService(store, &fakePinger{}, testLogger())

	got, err := svc.Lookup(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("Lookup(%q) error = %v", stored.ID, err)
	}
	if got.ID != stored.ID {
		t.Errorf("Lookup() returned %q, want %q", got.ID, stored.ID)
	}

	if _, err := svc.Lookup(context.Background(), "no-such-id"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Lookup(missing id) error = %v, want ErrNotFound", err)
	}
}

func TestCatalogLookup_DemoIDsResolveExactly(t *testing.T) {
	svc := NewCatalogService(nil, nil, testLogger())

	got, err := svc.Lookup(context.Background(), "demo-1")
	if err != nil {
		t.Fatalf("Lookup(demo-1) error = %v", err)
	}
	if got.ID != "demo-1" {
		t.Errorf("Lookup(demo-1) returned %q", got.ID)
	}

	if _, err := svc.Lookup(context.Background(), "demo-does-not-exist"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Lookup(missing demo id) error = %v, want ErrNotFound", err)
	}
}

func TestCatalogGet_StoreDownServesDemo(t *testing.T) {
	store := &fakeBananaRepo{}
	seedCatalogBanana(t, store, "stored")
	svc := NewCatalogService(store, &fakePinger{err: errors.New("connection refused")}, testLogger())

	got, err := svc.Get(context.Background(), "any-id")
	if err != nil {
		t.Fatalf("Get() with store down error = %v", err)
	}
	if !demo.IsDemoID(got.ID) {
		t.Errorf("store-down fallback returned non-demo id %q", got.ID)
	}
}

func TestCatalogRandom_EmptyStoreFallsBackToDemo(t *testing.T) {
	store := &fakeBananaRepo{}
	svc := NewCatalogService(store, &fakePinger{}, testLogger())

	got, err := svc.Random(context.Background())
	if err != nil {
		t.Fatalf("Random() error = %v", err)
	}
	if !demo.IsDemoID(got.ID) {
		t.Errorf("empty-store Random() returned non-demo id %q", got.ID)
	}
}

func TestCatalogCreate(t *testing.T) {
	store := &fakeBananaRepo{}
	svc := NewCatalogService(store, &fakePinger{}, testLogger())

	banana := &model.Banana{
		Name:           "Fresh",
		Origin:         "Testland",
		InventionStory: "Just invented.",
	}
	if err := svc.Create(context.Background(), banana); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if banana.Color != "yellow" || banana.Taste != model.TasteSweet || banana.Rarity != model.RarityCommon {
		t.Errorf("defaults not applied: color=%q taste=%q rarity=%q",
			banana.Color, banana.Taste, banana.Rarity)
	}
	if banana.Demo {
		t.Error("persisted record carries the demo flag")
	}
}

func TestCatalogCreate_Validation(t *testing.T) {
	svc := NewCatalogService(&fakeBananaRepo{}, &fakePinger{}, testLogger())

	cases := []struct {
		name   string
		banana model.Banana
	}{
		{"missing name", model.Banana{Origin: "X", InventionStory: "Y"}},
		{"missing origin", model.Banana{Name: "X", InventionStory: "Y"}},
		{"missing story", model.Banana{Name: "X", Origin: "Y"}},
		{"bad taste", model.Banana{Name: "X", Origin: "Y", InventionStory: "Z", Taste: "umami"}},
		{"bad rarity", model.Banana{Name: "X", Origin: "Y", InventionStory: "Z", Rarity: "mythic"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := tc.banana
			if err := svc.Create(context.Background(), &b); !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Create() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCatalogWrites_RejectedWithoutStore(t *testing.T) {
	svc := NewCatalogService(nil, nil, testLogger())
	banana := &model.Banana{Name: "X", Origin: "Y", InventionStory: "Z"}

	if err := svc.Create(context.Background(), banana); !errors.Is(err, apperror.ErrUpstream) {
		t.Errorf("Create() error = %v, want ErrUpstream", err)
	}
	banana.ID = "some-id"
	if err := svc.Update(context.Background(), banana); !errors.Is(err, apperror.ErrUpstream) {
		t.Errorf("Update() error = %v, want ErrUpstream", err)
	}
	if err := svc.Delete(context.Background(), "some-id"); !errors.Is(err, apperror.ErrUpstream) {
		t.Errorf("Delete() error = %v, want ErrUpstream", err)
	}
}

func TestCatalogWrites_RejectDemoIDs(t *testing.T) {
	store := &fakeBananaRepo{}
	svc := NewCatalogService(store, &fakePinger{}, testLogger())

	banana := &model.Banana{ID: "demo-1", Name: "X", Origin: "Y", InventionStory: "Z"}
	if err := svc.Update(context.Background(), banana); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Update(demo id) error = %v, want ErrValidation", err)
	}
	if err := svc.Delete(context.Background(), "demo-1"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Delete(demo id) error = %v, want ErrValidation", err)
	}
}
