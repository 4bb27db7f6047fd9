package domain

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, ok := ParseCategory(c.Title())
		assert.True(t, ok)
		assert.Equal(t, c, got)
	}

	got, ok := ParseCategory("  VEGETABLES ")
	assert.True(t, ok)
	assert.Equal(t, CategoryVegetables, got)

	_, ok = ParseCategory("meat")
	assert.False(t, ok)
	_, ok = ParseCategory("")
	assert.False(t, ok)
}

func TestKindOfThroughWrapping(t *testing.T) {
	err := errors.Wrap(NotFoundError("product.get", "Product not found"), "detail")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, "storage", KindOf(StorageError("x", errors.New("disk"))).String())
}

func TestProductPatchApply(t *testing.T) {
	img := "/uploads/old.jpg"
	p := &Product{Name: "Old", Category: CategoryFruits, Price: 1, Image: &img}

	name := "New"
	price := 2.5
	organic := true
	ProductPatch{Name: &name, Price: &price, IsOrganic: &organic}.Apply(p)

	assert.Equal(t, "New", p.Name)
	assert.Equal(t, 2.5, p.Price)
	assert.True(t, p.IsOrganic)
	assert.Equal(t, CategoryFruits, p.Category)
	assert.Equal(t, "/uploads/old.jpg", p.ImagePath())
}

func TestViewerRoles(t *testing.T) {
	assert.False(t, Viewer{}.Authenticated())
	assert.False(t, Viewer{Role: RoleFarmer}.IsFarmer())
	assert.True(t, Viewer{UserID: 1, Role: RoleFarmer}.IsFarmer())
	assert.True(t, Viewer{UserID: 1, Role: RoleBuyer}.IsBuyer())
}
