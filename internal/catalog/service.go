package catalog

import (
	"context"

	"github.com/agritech/agrimarket/internal/domain"
	"github.com/agritech/agrimarket/internal/media"
	"go.uber.org/zap"
)

// Service runs the catalog workflows, coordinating the image store and the repository.
type Service struct {
	repo   ProductRepository
	images media.ImageStore
}

func NewService(repo ProductRepository, images media.ImageStore) *Service {
	return &Service{repo: repo, images: images}
}

// ListResult is a listing plus the category it was filtered by ("All" when unfiltered).
type ListResult struct {
	Products []*domain.Product
	Category string
}

func (s *Service) List(ctx context.Context, viewer domain.Viewer, category string) (*ListResult, error) {
	products, err := s.repo.List(ctx, ProductFilter{Category: category})
	if err != nil {
		return nil, err
	}
	if category == "" {
		category = "All"
	}
	return &ListResult{Products: products, Category: category}, nil
}

// FarmerProducts lists the viewer's own products.
func (s *Service) FarmerProducts(ctx context.Context, viewer domain.Viewer) ([]*domain.Product, error) {
	if !viewer.IsFarmer() {
		return nil, nil
	}
	return s.repo.List(ctx, ProductFilter{FarmerID: viewer.UserID})
}

func (s *Service) Detail(ctx context.Context, viewer domain.Viewer, id int64) (*domain.Product, error) {
	return s.repo.Get(ctx, id)
}

// Create stores the optional image first, then persists the product.
func (s *Service) Create(ctx context.Context, viewer domain.Viewer, form ProductForm, up *media.Upload) (*domain.Product, error) {
	patch, err := form.toPatch()
	if err != nil {
		return nil, err
	}
	p := &domain.Product{}
	patch.Apply(p)
	if p.FarmerID == nil && viewer.IsFarmer() {
		id := viewer.UserID
		p.FarmerID = &id
	}
	if err := ValidateProduct(p); err != nil {
		return nil, err
	}

	if up != nil {
		path, err := s.images.Store(ctx, *up)
		if err != nil {
			return nil, err
		}
		p.Image = &path
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if p.Image != nil {
			s.images.Delete(ctx, *p.Image)
		}
		return nil, err
	}

	zap.L().Info("product created",
		zap.Int64("id", p.ID),
		zap.String("category", p.Category.String()),
		zap.Int64("viewer", viewer.UserID))
	return p, nil
}

// Update replaces the image when a new one is uploaded; the previous file is removed
// best-effort once the record points at the new one.
func (s *Service) Update(ctx context.Context, viewer domain.Viewer, id int64, form ProductForm, up *media.Upload) (*domain.Product, error) {
	patch, err := form.toPatch()
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var newImage string
	if up != nil {
		newImage, err = s.images.Store(ctx, *up)
		if err != nil {
			return nil, err
		}
		patch.Image = &newImage
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if newImage != "" {
			s.images.Delete(ctx, newImage)
		}
		return nil, err
	}

	if oldImage := existing.ImagePath(); newImage != "" && oldImage != "" && oldImage != newImage {
		s.images.Delete(ctx, oldImage)
	}

	zap.L().Info("product updated",
		zap.Int64("id", id),
		zap.Bool("image_replaced", newImage != ""),
		zap.Int64("viewer", viewer.UserID))
	return updated, nil
}

// Delete removes the record, then its image. Deleting a missing id is not an error.
func (s *Service) Delete(ctx context.Context, viewer domain.Viewer, id int64) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if removed == nil {
		return nil
	}
	if img := removed.ImagePath(); img != "" {
		s.images.Delete(ctx, img)
	}
	zap.L().Info("product deleted", zap.Int64("id", id), zap.Int64("viewer", viewer.UserID))
	return nil
}
