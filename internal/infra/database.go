package infra

import (
	"fmt"

	"nelaglow/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate,
// then applies idempotent SQL patches GORM cannot express (the singleton order
// counter seed and partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
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

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates/updates the schema and applies the SQL patches.
// NewDatabase calls it on every startup; re-running is a no-op.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Client{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
		&model.Shipping{},
		&model.OrderStatusHistory{},
		&model.StockMovement{},
		&model.OrderCounter{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL/DML that AutoMigrate cannot handle.
// Each statement uses IF NOT EXISTS / ON CONFLICT semantics so re-running on
// an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Seed the singleton order counter row.
		`INSERT INTO order_counters (id, last_num) VALUES (1, 0) ON CONFLICT (id) DO NOTHING`,
		// Partial index for the pending-receivables report.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_orders_pending_balance') THEN
		    CREATE INDEX idx_orders_pending_balance
		        ON orders (created_at)
		        WHERE remaining_amount > 0 AND status NOT IN ('CANCELLED', 'DELIVERED');
		  END IF;
		END $$`,
		// Guard against negative stock at the store level as well.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_products_stock_nonnegative') THEN
		    ALTER TABLE products ADD CONSTRAINT chk_products_stock_nonnegative CHECK (stock >= 0);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
