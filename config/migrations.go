package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"p9e.in/aquaentry/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "01062025_create_users",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("users")
			},
		},
		{
			ID: "01062025_create_water_samples",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.WaterSample{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("water_samples")
			},
		},
		{
			ID: "12062025_index_water_samples_pin",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_water_samples_user_pin ON water_samples(user_id, pin_id)").Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP INDEX IF EXISTS idx_water_samples_user_pin").Error
			},
		},
	})
	return m.Migrate()
}
