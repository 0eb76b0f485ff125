package infra

import (
	"fmt"

	"github.com/Adjelson/caixa-facil-Adjelson/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a pooled GORM connection backed by pgx.
// TranslateError is on so unique violations surface as gorm.ErrDuplicatedKey.
// Callers run RunMigrations separately.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// RunMigrations creates/updates all tables and applies schema patches.
// Also used by the integration test suite against a throwaway database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.RegisterSession{},
		&model.CashMovement{},
		&model.Sale{},
		&model.SaleLine{},
		&model.Payment{},
		&model.StockMovement{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot produce.
// Each statement uses IF NOT EXISTS semantics so re-running is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// "At most one OPEN session per cashier" must hold under concurrent
		// opens, including two simultaneous sales both auto-opening a session.
		{"unique open session per cashier",
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_register_sessions_open_cashier
			     ON register_sessions (cashier_id)
			     WHERE status = 'OPEN'`},
		// Last-resort guard behind the locked, guarded decrement.
		{"non-negative stock check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_products_stock_non_negative') THEN
    ALTER TABLE products ADD CONSTRAINT chk_products_stock_non_negative CHECK (stock >= 0);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
