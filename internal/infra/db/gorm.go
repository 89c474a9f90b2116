package db

import (
	"time"

	"storefront/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Models はマイグレーション対象
func Models() []any {
	return []any{
		&model.User{},
		&model.Product{},
		&model.Review{},
		&model.Video{},
		&model.Banner{},
		&model.Document{},
		&model.CheckoutAttempt{},
		&model.AuditLog{},
	}
}

// Migrate はテーブルを作成/更新する
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// Close は接続プールを閉じる
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
