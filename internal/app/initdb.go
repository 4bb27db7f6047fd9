package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/agritech/agrimarket/internal/domain"
	"github.com/agritech/agrimarket/pkg/common"
)

const (
	demoFarmerEmail    = "farmer@agrimarket.local"
	demoFarmerPassword = "agrimarket"
)

// checkDemoFarmer creates the demo farmer account when missing.
func (a *Application) checkDemoFarmer() {
	var farmer domain.User
	err := a.gormDB.Where("email = ?", demoFarmerEmail).First(&farmer).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, err := bcrypt.GenerateFromPassword([]byte(demoFarmerPassword), bcrypt.DefaultCost)
		if err != nil {
			zap.L().Error("failed to hash demo farmer password", zap.Error(err))
			return
		}
		if err := a.gormDB.Create(&domain.User{
			ID:        common.UUIDint64(),
			Name:      "Demo Farmer",
			Email:     demoFarmerEmail,
			Password:  string(hash),
			Role:      domain.RoleFarmer,
			Location:  "Nashik",
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create demo farmer", zap.Error(err))
		} else {
			zap.L().Info("initialized demo farmer account", zap.String("email", demoFarmerEmail))
		}
	case err != nil:
		zap.L().Error("failed to query demo farmer", zap.Error(err))
	}
}

// checkProducts seeds a few listings owned by the demo farmer on an empty catalog.
func (a *Application) checkProducts() {
	var count int64
	if err := a.gormDB.Model(&domain.Product{}).Count(&count).Error; err != nil {
		zap.L().Error("failed to count products", zap.Error(err))
		return
	}
	if count > 0 {
		return
	}

	var farmer domain.User
	if err := a.gormDB.Where("email = ?", demoFarmerEmail).First(&farmer).Error; err != nil {
		return
	}

	seed := []domain.Product{
		{Name: "Alphonso Mangoes", Category: domain.CategoryFruits, Price: 12, IsOrganic: true, Description: "Sweet Ratnagiri mangoes, per dozen"},
		{Name: "Tomatoes", Category: domain.CategoryVegetables, Price: 3.5, Description: "Vine ripened, per kg"},
		{Name: "Buffalo Milk", Category: domain.CategoryDairy, Price: 1.2, Description: "Fresh every morning, per litre"},
		{Name: "Basmati Rice", Category: domain.CategoryGrains, Price: 2.8, Description: "Aged long grain, per kg"},
		{Name: "Turmeric", Category: domain.CategorySpices, Price: 4, IsOrganic: true, Description: "Sun dried and ground, 250 g"},
	}
	ctx := context.Background()
	for i := range seed {
		p := seed[i]
		p.FarmerID = &farmer.ID
		if err := a.products.Create(ctx, &p); err != nil {
			zap.L().Error("failed to seed product", zap.String("name", p.Name), zap.Error(err))
		}
	}
	zap.L().Info("seeded demo products", zap.Int("count", len(seed)))
}
