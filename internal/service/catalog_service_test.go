package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/storefront/internal/cache"
	"github.com/iliyamo/storefront/internal/model"
)

func seedProducts() *memProducts {
	return newMemProducts(
		model.Product{ID: 1, Name: "Jeans", Description: "Blue", Price: 59.99, Category: "jeans", IsFeatured: true},
		model.Product{ID: 2, Name: "Cap", Description: "Red", Price: 12.5, Category: "hats"},
		model.Product{ID: 3, Name: "Scarf", Description: "Wool", Price: 20, Category: "accessories", IsFeatured: true},
	)
}

func decodeIDs(t *testing.T, raw []byte) []uint64 {
	t.Helper()
	var ps []model.Product
	require.NoError(t, json.Unmarshal(raw, &ps))
	ids := make([]uint64, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestGetFeaturedIsIdempotent(t *testing.T) {
	c, mr := newCache(t)
	store := seedProducts()
	svc := NewCatalogService(store, c, true, &testLogger{})
	ctx := context.Background()

	first, err := svc.GetFeatured(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, decodeIDs(t, first))
	assert.True(t, mr.Exists(cache.FeaturedProductsKey))
	assert.Zero(t, mr.TTL(cache.FeaturedProductsKey))

	for i := 0; i < 3; i++ {
		again, err := svc.GetFeatured(ctx)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
	assert.Equal(t, 1, store.featuredReads)
}

func TestGetFeaturedNotFound(t *testing.T) {
	c, mr := newCache(t)
	svc := NewCatalogService(newMemProducts(), c, true, &testLogger{})

	_, err := svc.GetFeatured(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists(cache.FeaturedProductsKey))
}

func TestGetFeaturedFallsBackWhenCacheDown(t *testing.T) {
	c, mr := newCache(t)
	store := seedProducts()
	log := &testLogger{}
	svc := NewCatalogService(store, c, true, log)
	mr.Close()

	raw, err := svc.GetFeatured(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, decodeIDs(t, raw))
	assert.True(t, log.contains("featured cache read failed"))
}

func TestGetFeaturedDiscardsCorruptSnapshot(t *testing.T) {
	c, mr := newCache(t)
	require.NoError(t, mr.Set(cache.FeaturedProductsKey, "{oops"))
	svc := NewCatalogService(seedProducts(), c, true, &testLogger{})

	raw, err := svc.GetFeatured(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, decodeIDs(t, raw))
	stored, _ := mr.Get(cache.FeaturedProductsKey)
	assert.Equal(t, string(raw), stored)
}

func TestToggleFeaturedRebuildsFullSnapshot(t *testing.T) {
	c, mr := newCache(t)
	svc := NewCatalogService(seedProducts(), c, true, &testLogger{})
	ctx := context.Background()

	_, err := svc.GetFeatured(ctx)
	require.NoError(t, err)

	p, err := svc.ToggleFeatured(ctx, 2)
	require.NoError(t, err)
	assert.True(t, p.IsFeatured)

	stored, err := mr.Get(cache.FeaturedProductsKey)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, decodeIDs(t, []byte(stored)))

	p, err = svc.ToggleFeatured(ctx, 1)
	require.NoError(t, err)
	assert.False(t, p.IsFeatured)

	raw, err := svc.GetFeatured(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 3}, decodeIDs(t, raw))
}

// A cached empty snapshot is a valid answer: the featured set was emptied
// by a toggle, not lost.
func TestUnfeaturingEverythingCachesEmptySnapshot(t *testing.T) {
	c, _ := newCache(t)
	svc := NewCatalogService(newMemProducts(model.Product{ID: 1, IsFeatured: true}), c, true, &testLogger{})
	ctx := context.Background()

	_, err := svc.ToggleFeatured(ctx, 1)
	require.NoError(t, err)

	raw, err := svc.GetFeatured(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(raw))
}

func TestToggleFeaturedMissingProduct(t *testing.T) {
	c, _ := newCache(t)
	svc := NewCatalogService(seedProducts(), c, true, &testLogger{})

	_, err := svc.ToggleFeatured(context.Background(), 42)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleFeaturedCacheDown(t *testing.T) {
	t.Run("optional", func(t *testing.T) {
		c, mr := newCache(t)
		store := seedProducts()
		log := &testLogger{}
		svc := NewCatalogService(store, c, true, log)
		mr.Close()

		p, err := svc.ToggleFeatured(context.Background(), 2)
		require.NoError(t, err)
		assert.True(t, p.IsFeatured)
		assert.True(t, log.contains("rebuild failed"))
	})
	t.Run("strict", func(t *testing.T) {
		c, mr := newCache(t)
		store := seedProducts()
		svc := NewCatalogService(store, c, false, &testLogger{})
		mr.Close()

		_, err := svc.ToggleFeatured(context.Background(), 2)
		assert.ErrorIs(t, err, cache.ErrUnavailable)
		got, _ := store.GetByID(context.Background(), 2)
		assert.True(t, got.IsFeatured, "flag stays persisted")
	})
}

func TestRebuildFailureDropsStaleSnapshot(t *testing.T) {
	c, mr := newCache(t)
	store := seedProducts()
	svc := NewCatalogService(store, c, true, &testLogger{})
	ctx := context.Background()

	_, err := svc.GetFeatured(ctx)
	require.NoError(t, err)

	store.listErr = errors.New("db down")
	_, err = svc.ToggleFeatured(ctx, 2)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.FeaturedProductsKey))
}

func TestDeleteFeaturedProductRebuildsSnapshot(t *testing.T) {
	c, mr := newCache(t)
	store := seedProducts()
	svc := NewCatalogService(store, c, true, &testLogger{})
	ctx := context.Background()

	_, err := svc.GetFeatured(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 3))
	stored, err := mr.Get(cache.FeaturedProductsKey)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, decodeIDs(t, []byte(stored)))

	reads := store.featuredReads
	require.NoError(t, svc.Delete(ctx, 2))
	assert.Equal(t, reads, store.featuredReads, "non-featured delete leaves the snapshot alone")

	assert.ErrorIs(t, svc.Delete(ctx, 2), ErrProductNotFound)
}

func TestCreateProduct(t *testing.T) {
	c, _ := newCache(t)
	svc := NewCatalogService(newMemProducts(), c, true, &testLogger{})
	ctx := context.Background()

	p, err := svc.Create(ctx, NewProduct{Name: " Boots ", Description: "Leather", Price: 120, Category: "shoes"})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "Boots", p.Name)
	assert.False(t, p.IsFeatured)

	_, err = svc.Create(ctx, NewProduct{Name: "Free", Description: "x", Price: 0, Category: "shoes"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, NewProduct{Name: "NoCat", Description: "x", Price: 1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCategoryAndRecommendations(t *testing.T) {
	c, _ := newCache(t)
	svc := NewCatalogService(seedProducts(), c, true, &testLogger{})
	ctx := context.Background()

	hats, err := svc.ListByCategory(ctx, "hats")
	require.NoError(t, err)
	require.Len(t, hats, 1)
	assert.Equal(t, "Cap", hats[0].Name)

	_, err = svc.ListByCategory(ctx, " ")
	assert.ErrorIs(t, err, ErrValidation)

	recs, err := svc.Recommendations(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(recs), 4)
}
