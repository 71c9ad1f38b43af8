package db

import (
	"fmt"

	"github.com/ikkim/storybook-backend/internal/app/model"
	"github.com/ikkim/storybook-backend/internal/fixture"
	"github.com/ikkim/storybook-backend/pkg/logger"
	"gorm.io/gorm"
)

const seedBatchSize = 100

// Models lists every table managed by AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&model.AgeGroup{},
		&model.Theme{},
		&model.Story{},
		&model.AdminUser{},
	}
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// IsCatalogEmpty reports whether no age group, theme or story exists yet,
// which is how a first start is detected.
func IsCatalogEmpty(db *gorm.DB) (bool, error) {
	for _, m := range []interface{}{&model.AgeGroup{}, &model.Theme{}, &model.Story{}} {
		var count int64
		if err := db.Model(m).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return false, nil
		}
	}
	return true, nil
}

// SeedIfEmpty loads fx only on first start. It returns true when data was loaded.
func SeedIfEmpty(db *gorm.DB, fx *fixture.Fixture) (bool, error) {
	empty, err := IsCatalogEmpty(db)
	if err != nil {
		return false, err
	}
	if !empty {
		logger.Info("Catalog already seeded, skipping...")
		return false, nil
	}
	if err := LoadFixture(db, fx); err != nil {
		return false, err
	}
	return true, nil
}

// LoadFixture inserts every record of fx in one transaction. Records keep
// their fixture primary keys; on postgres the id sequences are moved past
// them so later inserts do not collide.
func LoadFixture(db *gorm.DB, fx *fixture.Fixture) error {
	logger.Info("Loading fixture...", map[string]interface{}{
		"age_groups": len(fx.AgeGroups),
		"themes":     len(fx.Themes),
		"stories":    len(fx.Stories),
	})

	err := db.Transaction(func(tx *gorm.DB) error {
		if len(fx.AgeGroups) > 0 {
			if err := tx.CreateInBatches(fx.AgeGroups, seedBatchSize).Error; err != nil {
				return fmt.Errorf("failed to load age groups: %w", err)
			}
		}
		if len(fx.Themes) > 0 {
			if err := tx.CreateInBatches(fx.Themes, seedBatchSize).Error; err != nil {
				return fmt.Errorf("failed to load themes: %w", err)
			}
		}
		if len(fx.Stories) > 0 {
			if err := tx.CreateInBatches(fx.Stories, seedBatchSize).Error; err != nil {
				return fmt.Errorf("failed to load stories: %w", err)
			}
		}
		return resetSequences(tx)
	})
	if err != nil {
		logger.Error("Failed to load fixture", err)
		return err
	}

	logger.Info("Fixture loaded successfully", map[string]interface{}{
		"total_records": fx.Len(),
	})
	return nil
}

func resetSequences(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	for _, table := range []string{"age_groups", "themes", "stories"} {
		stmt := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE(MAX(id), 1), MAX(id) IS NOT NULL) FROM %[1]s",
			table,
		)
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to reset %s id sequence: %w", table, err)
		}
	}
	return nil
}
