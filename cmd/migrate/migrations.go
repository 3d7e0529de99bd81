package main

import (
	"gorm.io/gorm"

	"github.com/command-deck/engine/internal/models"
)

// runMigrations executes all database migrations
func runMigrations(db *gorm.DB) error {
	// gen_random_uuid is needed before any table references it
	if err := enableUUIDExtension(db); err != nil {
		return err
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}

	return runCustomMigrations(db)
}

// runCustomMigrations handles schema changes AutoMigrate can't handle
func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		addTimelineIndexes,
		addDocumentIndexes,
	}

	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}

	return nil
}

func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error
}

// addTimelineIndexes backs the newest-first reads the history view merges.
func addTimelineIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_blueprints_project_created
		ON blueprints(project_id, created_at DESC)
	`).Error; err != nil {
		return err
	}
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_audit_logs_project_created
		ON audit_logs(project_id, created_at DESC)
	`).Error
}

func addDocumentIndexes(db *gorm.DB) error {
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_documents_project_type
		ON documents(project_id, type, created_at DESC)
	`).Error
}
