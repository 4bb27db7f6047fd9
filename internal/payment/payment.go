package payment

import (
	"context"
	"net/http"
	"time"

	"github.com/agritech/agrimarket/internal/catalog"
	"github.com/agritech/agrimarket/internal/domain"
	"github.com/agritech/agrimarket/pkg/common"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusPaid = "paid"

	recentLimit = 20
)

// Order is a payment joined with the product name for the buyer dashboard.
type Order struct {
	Reference   string
	ProductID   int64
	ProductName string
	Amount      float64
	Status      string
	CreatedAt   time.Time
}

// Service records stub payments. Nothing is charged.
type Service struct {
	db       *gorm.DB
	products catalog.ProductRepository
}

func NewService(db *gorm.DB, products catalog.ProductRepository) *Service {
	return &Service{db: db, products: products}
}

// Checkout records a paid payment for the product at its current price.
func (s *Service) Checkout(ctx context.Context, viewer domain.Viewer, productID int64) (*domain.Payment, *domain.Product, error) {
	if !viewer.IsBuyer() {
		return nil, nil, echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	p := &domain.Payment{
		ID:        common.UUIDint64(),
		Reference: "PAY-" + common.UUIDBase32(),
		ProductID: product.ID,
		BuyerID:   viewer.UserID,
		Amount:    product.Price,
		Status:    StatusPaid,
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, nil, domain.PersistenceError("payment.checkout", err)
	}
	zap.L().Info("payment recorded",
		zap.String("reference", p.Reference),
		zap.Int64("product", product.ID),
		zap.Int64("buyer", viewer.UserID))
	return p, product, nil
}

// Recent lists the buyer's latest payments, newest first. Products deleted since
// keep their payment row with an empty name.
func (s *Service) Recent(ctx context.Context, viewer domain.Viewer) ([]Order, error) {
	var orders []Order
	err := s.db.WithContext(ctx).
		Table("payment").
		Select("payment.reference, payment.product_id, product.name AS product_name, payment.amount, payment.status, payment.created_at").
		Joins("LEFT JOIN product ON product.id = payment.product_id").
		Where("payment.buyer_id = ?", viewer.UserID).
		Order("payment.created_at DESC").
		Limit(recentLimit).
		Scan(&orders).Error
	if err != nil {
		return nil, domain.PersistenceError("payment.recent", err)
	}
	return orders, nil
}
