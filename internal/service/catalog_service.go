package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/storefront/internal/cache"
	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/repository"
)

const recommendationCount = 4

// CatalogService serves products. Featured products go through the cache:
// the cache holds a JSON snapshot of every featured product, without TTL,
// rebuilt in full whenever the featured set changes.
//
// Two concurrent toggles both rebuild the snapshot and the last write wins;
// nothing serializes them.
type CatalogService struct {
	products      ProductStore
	cache         Cache
	log           Logger
	cacheOptional bool
}

func NewCatalogService(products ProductStore, c Cache, cacheOptional bool, log Logger) *CatalogService {
	return &CatalogService{products: products, cache: c, cacheOptional: cacheOptional, log: log}
}

// NewProduct is the input of Create.
type NewProduct struct {
	Name        string
	Description string
	Price       float64
	Image       string
	Category    string
}

// GetFeatured returns the featured snapshot as JSON. A cache hit is returned
// as stored, so repeated calls without a toggle in between yield identical
// bytes. On a miss the snapshot is built from the store and cached.
func (s *CatalogService) GetFeatured(ctx context.Context) (json.RawMessage, error) {
	raw, found, err := s.cache.Get(ctx, cache.FeaturedProductsKey)
	switch {
	case err != nil:
		s.log.Warnf("catalog: featured cache read failed, using database: %v", err)
	case found && validSnapshot(raw):
		return json.RawMessage(raw), nil
	case found:
		s.log.Warnf("catalog: discarding unreadable featured snapshot")
	}

	products, err := s.products.ListFeatured(ctx)
	if err != nil {
		return nil, fmt.Errorf("list featured: %w", err)
	}
	if len(products) == 0 {
		return nil, ErrNoFeatured
	}
	b, err := json.Marshal(products)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cache.FeaturedProductsKey, string(b), 0); err != nil {
		s.log.Warnf("catalog: featured snapshot not cached: %v", err)
	}
	return b, nil
}

// ToggleFeatured flips a product's featured flag, persists it and then
// rebuilds the whole cached snapshot.
func (s *CatalogService) ToggleFeatured(ctx context.Context, id uint64) (model.Product, error) {
	p, err := s.products.ToggleFeatured(ctx, id)
	if errors.Is(err, repository.ErrProductNotFound) {
		return model.Product{}, ErrProductNotFound
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("toggle featured: %w", err)
	}
	if err := s.refreshFeatured(ctx); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// ListAll returns the whole catalog.
func (s *CatalogService) ListAll(ctx context.Context) ([]model.Product, error) {
	return s.products.ListAll(ctx)
}

// ListByCategory returns the products of one category.
func (s *CatalogService) ListByCategory(ctx context.Context, category string) ([]model.Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, invalid("category is required")
	}
	return s.products.ListByCategory(ctx, category)
}

// Recommendations returns a few random products.
func (s *CatalogService) Recommendations(ctx context.Context) ([]model.Product, error) {
	return s.products.Sample(ctx, recommendationCount)
}

// Create adds a product. New products are never featured.
func (s *CatalogService) Create(ctx context.Context, in NewProduct) (model.Product, error) {
	p := model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Image:       strings.TrimSpace(in.Image),
		Category:    strings.TrimSpace(in.Category),
	}
	if p.Name == "" || p.Description == "" || p.Category == "" {
		return model.Product{}, invalid("name, description and category are required")
	}
	if p.Price <= 0 {
		return model.Product{}, invalid("price must be greater than zero")
	}
	if err := s.products.Create(ctx, &p); err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// Delete removes a product. Deleting a featured product rebuilds the
// snapshot so it never lists a product that no longer exists.
func (s *CatalogService) Delete(ctx context.Context, id uint64) error {
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, repository.ErrProductNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if p.IsFeatured {
		return s.refreshFeatured(ctx)
	}
	return nil
}

// refreshFeatured rebuilds the snapshot from the store. When the rebuild
// fails the key is dropped so the next read repopulates it; the error is
// returned only outside cache-optional mode.
func (s *CatalogService) refreshFeatured(ctx context.Context) error {
	err := s.rebuildFeatured(ctx)
	if err == nil {
		return nil
	}
	s.log.Errorf("catalog: featured snapshot rebuild failed: %v", err)
	if delErr := s.cache.Del(ctx, cache.FeaturedProductsKey); delErr != nil {
		s.log.Warnf("catalog: stale featured snapshot not dropped: %v", delErr)
	}
	if s.cacheOptional {
		return nil
	}
	return fmt.Errorf("rebuild featured snapshot: %w", err)
}

func (s *CatalogService) rebuildFeatured(ctx context.Context) error {
	products, err := s.products.ListFeatured(ctx)
	if err != nil {
		return err
	}
	b, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, cache.FeaturedProductsKey, string(b), 0)
}

func validSnapshot(raw string) bool {
	var products []model.Product
	return json.Unmarshal([]byte(raw), &products) == nil
}
