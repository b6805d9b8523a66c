package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"casaora/config"
	"casaora/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global Supabase Postgres handle.
var DB *gorm.DB

// InitDB opens the Postgres connection and fails fast when it is unreachable.
func InitDB() {
	db, err := Open(config.AppConfig.DatabaseURL, logger.Warn)
	if err != nil {
		log.Fatalf("failed to connect to Postgres: %v", err)
	}
	DB = db
	log.Println("Connected to Postgres successfully!")
}

// Open connects gorm to dsn and applies the pool settings from config.
func Open(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(level),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		// Supabase's transaction pooler rejects named prepared statements.
		PrepareStmt: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := configurePool(db); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func configurePool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if n := config.AppConfig.DBMaxOpenConns; n > 0 {
		sqlDB.SetMaxOpenConns(n)
	}
	if n := config.AppConfig.DBMaxIdleConns; n > 0 {
		sqlDB.SetMaxIdleConns(n)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	return nil
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// AllModels lists every table-backed model, in dependency order.
func AllModels() []any {
	return []any{
		&models.Profile{},
		&models.ProfessionalProfile{},
		&models.Booking{},
		&models.Review{},
		&models.Dispute{},
		&models.Payout{},
		&models.Conversation{},
		&models.Message{},
		&models.Referral{},
		&models.HelpCategory{},
		&models.HelpArticle{},
	}
}

// AutoMigrate creates the schema from the models. Tests use it against SQLite;
// Postgres environments run the SQL migrations instead.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
