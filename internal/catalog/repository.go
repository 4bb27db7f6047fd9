package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/agritech/agrimarket/internal/domain"
	"github.com/agritech/agrimarket/pkg/common"
	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows List. An empty Category, "All" or "all" means every category.
type ProductFilter struct {
	Category string
	FarmerID int64
}

// categoryFilter returns the normalized category to filter on, or "" for none.
func (f ProductFilter) categoryFilter() string {
	if f.Category == "" || f.Category == "All" || f.Category == "all" {
		return ""
	}
	return strings.ToLower(f.Category)
}

// ProductRepository handles persistence of product records
type ProductRepository interface {
	// List returns products newest first, with farmer name and location populated
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)

	// Get returns a NotFound error when no product has the id
	Get(ctx context.Context, id int64) (*domain.Product, error)

	// Create validates and inserts p, assigning ID and CreatedAt when unset
	Create(ctx context.Context, p *domain.Product) error

	// Update applies the patch and re-runs full validation before saving
	Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)

	// Delete is idempotent; it returns the removed record, or nil when none existed
	Delete(ctx context.Context, id int64) (*domain.Product, error)

	// ImageReferences returns the set of image paths referenced by any product
	ImageReferences(ctx context.Context) (map[string]struct{}, error)
}

var productValidate = newProductValidator()

func newProductValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return domain.Category(fl.Field().String()).Valid()
	})
	return v
}

// ValidateProduct runs the schema checks every write goes through.
func ValidateProduct(p *domain.Product) error {
	if p.Category != "" {
		p.Category = domain.Category(strings.ToLower(string(p.Category)))
	}
	if err := productValidate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.ValidationError("product.validate", validationMessage(verrs[0]))
		}
		return domain.ValidationError("product.validate", err.Error())
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Name":
		return "Name is required and must be at most 200 characters"
	case "Category":
		return "Category must be one of fruits, vegetables, dairy, grains, spices, organic"
	case "Price":
		return "Price must not be negative"
	case "Description":
		return "Description must be at most 2000 characters"
	default:
		return fe.Field() + " is invalid"
	}
}

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GORM-based repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func preloadFarmer(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "location")
}

func (r *GormProductRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	query := r.db.WithContext(ctx).Preload("Farmer", preloadFarmer)
	if c := filter.categoryFilter(); c != "" {
		query = query.Where("category = ?", c)
	}
	if filter.FarmerID != 0 {
		query = query.Where("farmer_id = ?", filter.FarmerID)
	}

	var products []*domain.Product
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Find(&products).Error
	if err != nil {
		return nil, domain.PersistenceError("product.list", err)
	}
	return products, nil
}

func (r *GormProductRepository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Preload("Farmer", preloadFarmer).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFoundError("product.get", "Product not found")
	}
	if err != nil {
		return nil, domain.PersistenceError("product.get", err)
	}
	return &p, nil
}

func (r *GormProductRepository) Create(ctx context.Context, p *domain.Product) error {
	if err := ValidateProduct(p); err != nil {
		return err
	}
	if p.ID == 0 {
		p.ID = common.UUIDint64()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return domain.PersistenceError("product.create", err)
	}
	return nil
}

func (r *GormProductRepository) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	var updated domain.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError("product.update", "Product not found")
			}
			return domain.PersistenceError("product.update", err)
		}
		patch.Apply(&updated)
		if err := ValidateProduct(&updated); err != nil {
			return err
		}
		updated.UpdatedAt = time.Now()
		if err := tx.Omit(clause.Associations).Save(&updated).Error; err != nil {
			return domain.PersistenceError("product.update", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *GormProductRepository) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Product{}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.PersistenceError("product.delete", err)
	}
	return &p, nil
}

func (r *GormProductRepository) ImageReferences(ctx context.Context) (map[string]struct{}, error) {
	var images []string
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("image IS NOT NULL AND image <> ''").
		Pluck("image", &images).Error
	if err != nil {
		return nil, domain.PersistenceError("product.images", pkgerrors.Wrap(err, "pluck images"))
	}
	refs := make(map[string]struct{}, len(images))
	for _, img := range images {
		refs[img] = struct{}{}
	}
	return refs, nil
}
