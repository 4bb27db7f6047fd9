package domain

import (
	"strings"
	"time"
)

// Category is the closed set of product categories.
type Category string

const (
	CategoryFruits     Category = "fruits"
	CategoryVegetables Category = "vegetables"
	CategoryDairy      Category = "dairy"
	CategoryGrains     Category = "grains"
	CategorySpices     Category = "spices"
	CategoryOrganic    Category = "organic"
)

// Categories in display order.
var Categories = []Category{
	CategoryFruits,
	CategoryVegetables,
	CategoryDairy,
	CategoryGrains,
	CategorySpices,
	CategoryOrganic,
}

// ParseCategory normalizes s to lowercase and checks it against Categories.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// Title is the display label, e.g. "Vegetables".
func (c Category) Title() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// Product is a single marketplace listing
type Product struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	Name        string    `gorm:"size:200;index" json:"name" validate:"required,max=200"`
	Description string    `gorm:"type:text" json:"description" validate:"max=2000"`
	Category    Category  `gorm:"size:32;index" json:"category" validate:"required,category"`
	Price       float64   `json:"price" validate:"gte=0"`
	IsOrganic   bool      `gorm:"default:false" json:"isOrganic"`
	Image       *string   `gorm:"size:1024" json:"image"` // /uploads/<file>, nil until uploaded
	FarmerID    *int64    `gorm:"index" json:"farmerId,string,omitempty"`
	Farmer      *User     `gorm:"foreignKey:FarmerID" json:"farmer,omitempty" validate:"-"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "product"
}

// ImagePath returns the stored image reference or "".
func (p *Product) ImagePath() string {
	if p == nil || p.Image == nil {
		return ""
	}
	return *p.Image
}

// ProductPatch carries the fields of an update; nil means unchanged.
type ProductPatch struct {
	Name        *string
	Description *string
	Category    *Category
	Price       *float64
	IsOrganic   *bool
	Image       *string
	FarmerID    *int64
}

// Apply copies the set fields onto p.
func (pt ProductPatch) Apply(p *Product) {
	if pt.Name != nil {
		p.Name = *pt.Name
	}
	if pt.Description != nil {
		p.Description = *pt.Description
	}
	if pt.Category != nil {
		p.Category = *pt.Category
	}
	if pt.Price != nil {
		p.Price = *pt.Price
	}
	if pt.IsOrganic != nil {
		p.IsOrganic = *pt.IsOrganic
	}
	if pt.Image != nil {
		img := *pt.Image
		p.Image = &img
	}
	if pt.FarmerID != nil {
		id := *pt.FarmerID
		p.FarmerID = &id
	}
}
