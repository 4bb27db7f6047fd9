package catalog

import (
	"html"
	"math"
	"strings"

	"github.com/agritech/agrimarket/internal/domain"
	"github.com/agritech/agrimarket/pkg/common"
	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/cast"
)

var textPolicy = bluemonday.StrictPolicy()

// ProductForm is the raw, string-typed input of the create and edit forms.
// A nil pointer means the field was not submitted.
type ProductForm struct {
	Name        *string
	Description *string
	Category    *string
	Price       *string
	IsOrganic   *string
	FarmerID    *string
}

// ParsePrice converts a submitted price. Empty input yields nil.
func ParsePrice(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, domain.ValidationError("product.price", "Price must be a number")
	}
	if v < 0 {
		return nil, domain.ValidationError("product.price", "Price must not be negative")
	}
	return &v, nil
}

// ParseOrganic converts the isOrganic checkbox value; an unchecked box is not submitted and means false.
func ParseOrganic(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "yes":
		return true, nil
	case "", "off", "false", "0", "no":
		return false, nil
	}
	return false, domain.ValidationError("product.isOrganic", "isOrganic must be a boolean")
}

// ParseCategory lowercases s and requires it to be an enumerated category.
func ParseCategory(s string) (domain.Category, error) {
	c, ok := domain.ParseCategory(s)
	if !ok {
		return "", domain.ValidationError("product.category", "Category must be one of fruits, vegetables, dairy, grains, spices, organic")
	}
	return c, nil
}

// ParseID parses a product id from a URL. Malformed ids cannot match a record.
func ParseID(s string) (int64, error) {
	id, ok := common.ParseInt64(strings.TrimSpace(s))
	if !ok || id <= 0 {
		return 0, domain.NotFoundError("product.id", "Product not found")
	}
	return id, nil
}

// sanitizeText strips markup; templates do the escaping on output.
func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// toPatch applies the typed parsers to every submitted field.
func (f ProductForm) toPatch() (domain.ProductPatch, error) {
	var patch domain.ProductPatch
	if f.Name != nil {
		name := sanitizeText(*f.Name)
		patch.Name = &name
	}
	if f.Description != nil {
		desc := sanitizeText(*f.Description)
		patch.Description = &desc
	}
	if f.Category != nil {
		c, err := ParseCategory(*f.Category)
		if err != nil {
			return patch, err
		}
		patch.Category = &c
	}
	if f.Price != nil {
		price, err := ParsePrice(*f.Price)
		if err != nil {
			return patch, err
		}
		patch.Price = price
	}
	organic := false
	if f.IsOrganic != nil {
		v, err := ParseOrganic(*f.IsOrganic)
		if err != nil {
			return patch, err
		}
		organic = v
	}
	patch.IsOrganic = &organic
	if f.FarmerID != nil && strings.TrimSpace(*f.FarmerID) != "" {
		id, ok := common.ParseInt64(strings.TrimSpace(*f.FarmerID))
		if !ok {
			return patch, domain.ValidationError("product.farmerId", "Invalid farmer id")
		}
		patch.FarmerID = &id
	}
	return patch, nil
}
