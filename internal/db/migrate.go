package db

import (
	"errors"
	"fmt"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/config"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/logger"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/models"
	"github.com/baruffaldi/finalmentecasa-interventi/migrations"
	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres database driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

// coreTables must exist once the schema is applied.
var coreTables = []string{"users", "profiles", "permissions", "suppliers", "operators", "clients", "interventions"}

// Migrate applies the schema: versioned SQL files through golang-migrate
// when cfg.Migrations is set on postgres, AutoMigrate otherwise.
func Migrate(db *gorm.DB, cfg config.DatabaseConfig) error {
	log := logger.WithComponent("db")
	if cfg.Migrations && db.Dialector.Name() == "postgres" {
		log.Info().Msg("running sql migrations")
		if err := RunSQLMigrations(ToURLDSN(NormalizeDSN(cfg.DSN))); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if cfg.Migrations {
			log.Warn().Str("driver", db.Dialector.Name()).Msg("sql migrations target postgres, using AutoMigrate")
		}
		for _, m := range models.All() {
			if err := db.AutoMigrate(m); err != nil {
				return fmt.Errorf("automigrate %T: %w", m, err)
			}
		}
	}
	for _, table := range coreTables {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// RunSQLMigrations applies the embedded migrations to the database at url.
func RunSQLMigrations(url string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
