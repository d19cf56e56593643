// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ipforge/ipforge-backend/internal/config"
	"github.com/ipforge/ipforge-backend/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.CollectionRecord{},
		&models.Sequence{},
		&models.IPAsset{},
		&models.LicenseOffer{},
		&models.EscrowBalance{},
		&models.DepositAccount{},
		&models.Deposit{},
		&models.ChainEvent{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := seedSequences(db); err != nil {
		return fmt.Errorf("failed to seed sequences: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// seedSequences plants the asset and license counters at their resting value
// of 0 so the first allocation hands out id 1.
func seedSequences(db *gorm.DB) error {
	for _, name := range []string{models.SequenceAssetID, models.SequenceLicenseID} {
		seq := models.Sequence{Name: name}
		if err := db.Where(models.Sequence{Name: name}).FirstOrCreate(&seq).Error; err != nil {
			return err
		}
	}
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Collection indexes
		"CREATE INDEX IF NOT EXISTS idx_collection_records_owner ON collection_records(owner_address)",

		// IP asset indexes
		"CREATE INDEX IF NOT EXISTS idx_ip_assets_owner ON ip_assets(owner_address)",
		"CREATE INDEX IF NOT EXISTS idx_ip_assets_collection ON ip_assets(collection_address)",
		"CREATE INDEX IF NOT EXISTS idx_ip_assets_type_active ON ip_assets(ip_type, active)",
		"CREATE INDEX IF NOT EXISTS idx_ip_assets_registered_at ON ip_assets(registered_at DESC)",

		// License offer indexes
		"CREATE INDEX IF NOT EXISTS idx_license_offers_asset ON license_offers(asset_id)",
		"CREATE INDEX IF NOT EXISTS idx_license_offers_payee ON license_offers(payee_address)",
		"CREATE INDEX IF NOT EXISTS idx_license_offers_accepted ON license_offers(accepted)",

		// Deposit and event indexes
		"CREATE INDEX IF NOT EXISTS idx_deposits_address_status ON deposits(address, status)",
		"CREATE INDEX IF NOT EXISTS idx_chain_events_type_created ON chain_events(type, created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}
