package main

import (
	"gorm.io/gorm"

	"github.com/stackhook/engine/internal/models"
)

const activeJobsIndex = "idx_deployment_queues_active"

// runMigrations executes all database migrations
func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}
	return runCustomMigrations(db)
}

// runCustomMigrations handles schema changes AutoMigrate can't handle
func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		addActiveDeploymentIndex,
	}
	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}
	return nil
}

// addActiveDeploymentIndex backs the polling query (status, server, id order).
// Postgres gets a partial index over the active statuses only.
func addActiveDeploymentIndex(db *gorm.DB) error {
	if db.Migrator().HasIndex(&models.ApplicationDeploymentQueue{}, activeJobsIndex) {
		return nil
	}
	switch db.Dialector.Name() {
	case "postgres":
		return db.Exec(`
			CREATE INDEX IF NOT EXISTS ` + activeJobsIndex + `
			ON application_deployment_queues(server_id, id)
			WHERE status IN ('queued', 'in_progress')
		`).Error
	default:
		return db.Exec(`CREATE INDEX ` + activeJobsIndex + ` ON application_deployment_queues(status, server_id, id)`).Error
	}
}
