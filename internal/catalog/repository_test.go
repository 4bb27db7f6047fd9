package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/agritech/agrimarket/internal/dbtest"
	"github.com/agritech/agrimarket/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, repo *GormProductRepository, name string, c domain.Category, created time.Time) *domain.Product {
	t.Helper()
	p := &domain.Product{Name: name, Category: c, Price: 1, CreatedAt: created}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestRepositoryListByCategory(t *testing.T) {
	repo := NewGormProductRepository(dbtest.Open(t))
	base := time.Now().Add(-time.Hour)
	for i, c := range domain.Categories {
		seedProduct(t, repo, "p-"+c.String(), c, base.Add(time.Duration(i)*time.Minute))
	}
	seedProduct(t, repo, "apples", domain.CategoryFruits, base.Add(time.Hour))

	for _, c := range domain.Categories {
		products, err := repo.List(context.Background(), ProductFilter{Category: c.String()})
		require.NoError(t, err)
		require.NotEmpty(t, products)
		for _, p := range products {
			assert.Equal(t, c, p.Category)
		}
	}

	// filter value is lowercased
	products, err := repo.List(context.Background(), ProductFilter{Category: "Fruits"})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "apples", products[0].Name, "newest first")
}

func TestRepositoryListAll(t *testing.T) {
	repo := NewGormProductRepository(dbtest.Open(t))
	base := time.Now().Add(-time.Hour)
	seedProduct(t, repo, "milk", domain.CategoryDairy, base)
	seedProduct(t, repo, "rice", domain.CategoryGrains, base.Add(time.Minute))
	seedProduct(t, repo, "chili", domain.CategorySpices, base.Add(2*time.Minute))

	for _, c := range []string{"", "All", "all"} {
		products, err := repo.List(context.Background(), ProductFilter{Category: c})
		require.NoError(t, err)
		require.Len(t, products, 3, "category %q", c)
		assert.Equal(t, "chili", products[0].Name)
		assert.Equal(t, "milk", products[2].Name)
	}

	// "ALL" is not one of the literal no-filter values
	products, err := repo.List(context.Background(), ProductFilter{Category: "ALL"})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestRepositoryFarmerEnrichment(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewGormProductRepository(db)
	farmer := &domain.User{ID: 42, Name: "Ravi", Email: "ravi@example.com", Role: domain.RoleFarmer, Location: "Nashik"}
	require.NoError(t, db.Create(farmer).Error)

	owned := &domain.Product{Name: "grapes", Category: domain.CategoryFruits, FarmerID: &farmer.ID}
	require.NoError(t, repo.Create(context.Background(), owned))
	dangling := int64(999)
	orphan := &domain.Product{Name: "onions", Category: domain.CategoryVegetables, FarmerID: &dangling}
	require.NoError(t, repo.Create(context.Background(), orphan))

	got, err := repo.Get(context.Background(), owned.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Farmer)
	assert.Equal(t, "Ravi", got.Farmer.Name)
	assert.Equal(t, "Nashik", got.Farmer.Location)
	assert.Empty(t, got.Farmer.Email, "only name and location are populated")

	got, err = repo.Get(context.Background(), orphan.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Farmer)

	mine, err := repo.List(context.Background(), ProductFilter{FarmerID: farmer.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "grapes", mine[0].Name)
}

func TestRepositoryGetNotFound(t *testing.T) {
	repo := NewGormProductRepository(dbtest.Open(t))
	_, err := repo.Get(context.Background(), 12345)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestRepositoryCreateValidates(t *testing.T) {
	repo := NewGormProductRepository(dbtest.Open(t))
	ctx := context.Background()

	err := repo.Create(ctx, &domain.Product{Category: domain.CategoryDairy})
	assert.True(t, domain.IsValidation(err), "name required")

	err = repo.Create(ctx, &domain.Product{Name: "beef", Category: "meat"})
	assert.True(t, domain.IsValidation(err), "category outside the enumeration")

	err = repo.Create(ctx, &domain.Product{Name: "cheese", Category: domain.CategoryDairy, Price: -1})
	assert.True(t, domain.IsValidation(err), "negative price")

	p := &domain.Product{Name: "Paneer", Category: "DAIRY", Price: 4}
	require.NoError(t, repo.Create(ctx, p))
	assert.NotZero(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, domain.CategoryDairy, p.Category)

	products, err := repo.List(ctx, ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestRepositoryUpdate(t *testing.T) {
	repo := NewGormProductRepository(dbtest.Open(t))
	ctx := context.Background()
	p := seedProduct(t, repo, "wheat", domain.CategoryGrains, time.Now())

	price := 7.25
	img := "/uploads/1-wheat.jpg"
	updated, err := repo.Update(ctx, p.ID, domain.ProductPatch{Price: &price, Image: &img})
	require.NoError(t, err)
	assert.Equal(t, 7.25, updated.Price)
	assert.Equal(t, img, updated.ImagePath())
	assert.Equal(t, "wheat", updated.Name)

	bad := domain.Category("meat")
	_, err = repo.Update(ctx, p.ID, domain.ProductPatch{Category: &bad})
	assert.True(t, domain.IsValidation(err))

	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryGrains, got.Category, "failed update leaves the record untouched")

	_, err = repo.Update(ctx, 777, domain.ProductPatch{Price: &price})
	assert.True(t, domain.IsNotFound(err))
}

func TestRepositoryDeleteIdempotent(t *testing.T) {
	repo := NewGormProductRepository(dbtest.Open(t))
	ctx := context.Background()
	p := seedProduct(t, repo, "turmeric", domain.CategorySpices, time.Now())

	removed, err := repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.Equal(t, "turmeric", removed.Name)

	removed, err = repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, removed)

	_, err = repo.Get(ctx, p.ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestRepositoryImageReferences(t *testing.T) {
	repo := NewGormProductRepository(dbtest.Open(t))
	ctx := context.Background()
	img := "/uploads/1-a.png"
	require.NoError(t, repo.Create(ctx, &domain.Product{Name: "a", Category: domain.CategoryFruits, Image: &img}))
	require.NoError(t, repo.Create(ctx, &domain.Product{Name: "b", Category: domain.CategoryFruits}))

	refs, err := repo.ImageReferences(ctx)
	require.NoError(t, err)
	assert.Len(t, refs, 1)
	assert.Contains(t, refs, img)
}
