package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/agritech/agrimarket/config"
	"github.com/agritech/agrimarket/internal/catalog"
	"github.com/agritech/agrimarket/internal/media"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// CatalogProvider provides the product repository and the image store
type CatalogProvider interface {
	Products() catalog.ProductRepository
	Images() media.ImageStore
}

// AppContext combines all provider interfaces for full application context
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider
	CatalogProvider

	MigrateDB(track bool) error
	InitDb()
	DropAll()
	// SweepUploads removes stored images no product references
	SweepUploads() (int, error)
}
