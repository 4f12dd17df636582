package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate applies (idempotent) schema hardening on top of AutoMigrate:
// - Composite indexes for the ledger and history read paths
// - At most one latest revision per tax invoice lineage (partial unique)
// - Basic CHECK constraints on money columns and rating scores
func Migrate() error {
	return DB.Transaction(func(tx *gorm.DB) error {
		// --- Composite / helpful indexes (idempotent) ---
		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_ledger_hospital_created ON settlement_ledger_entries (hospital_id, created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_history_reservation_created ON reservation_status_histories (reservation_id, created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_reservations_settled_at ON reservations (settled_at)`,
			`CREATE INDEX IF NOT EXISTS idx_tax_lineage ON tax_settlements (target_type, target_id, start_date, end_date)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_tax_lineage_latest ON tax_settlements (target_type, target_id, start_date, end_date) WHERE is_latest`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_tax_lineage_revision ON tax_settlements (target_type, target_id, start_date, end_date, revision) WHERE status <> 'DRAFT'`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Basic CHECK constraints (idempotent) ---
		checks := []string{
			// Payment amount positive when present
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'reservations'::regclass
					  AND conname  = 'chk_reservations_payment_positive'
				) THEN
					ALTER TABLE reservations
					ADD CONSTRAINT chk_reservations_payment_positive
					CHECK (payment_amount IS NULL OR payment_amount > 0);
				END IF;
			END $$;`,
			// Fees non-negative
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'reservations'::regclass
					  AND conname  = 'chk_reservations_fees_nonneg'
				) THEN
					ALTER TABLE reservations
					ADD CONSTRAINT chk_reservations_fees_nonneg
					CHECK (settlement_amount >= 0 AND platform_fee >= 0);
				END IF;
			END $$;`,
			// Charge request amounts positive
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'charge_requests'::regclass
					  AND conname  = 'chk_charge_requests_amount_positive'
				) THEN
					ALTER TABLE charge_requests
					ADD CONSTRAINT chk_charge_requests_amount_positive
					CHECK (amount > 0);
				END IF;
			END $$;`,
			// Tax amounts non-negative and consistent
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'tax_settlements'::regclass
					  AND conname  = 'chk_tax_amounts'
				) THEN
					ALTER TABLE tax_settlements
					ADD CONSTRAINT chk_tax_amounts
					CHECK (supply_amount >= 0 AND vat_amount >= 0 AND total_amount = supply_amount + vat_amount);
				END IF;
			END $$;`,
			// Rating score range
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'satisfaction_ratings'::regclass
					  AND conname  = 'chk_ratings_score_range'
				) THEN
					ALTER TABLE satisfaction_ratings
					ADD CONSTRAINT chk_ratings_score_range
					CHECK (score BETWEEN 1 AND 5);
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}

		return nil
	})
}
