// Package db opens the database, applies the schema and seeds reference data.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/config"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/logger"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// ErrEmptyDSN is returned when postgres is selected without DATABASE_DSN.
var ErrEmptyDSN = errors.New("DATABASE_DSN is empty, check the environment configuration")

// zerologWriter routes gorm's logger through zerolog.
type zerologWriter struct {
	l zerolog.Logger
}

func (w zerologWriter) Printf(format string, args ...any) {
	w.l.Debug().Msgf(format, args...)
}

func gormConfig(cfg config.DatabaseConfig) *gorm.Config {
	level := gormlogger.Silent
	if cfg.Debug {
		level = gormlogger.Info
	}
	return &gorm.Config{
		Logger: gormlogger.New(zerologWriter{l: logger.WithComponent("gorm")}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

func dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.Open(sqliteDSN(cfg.DSN)), nil
	case "postgres", "":
		dsn := NormalizeDSN(cfg.DSN)
		if dsn == "" {
			return nil, ErrEmptyDSN
		}
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// Connect opens the database, retrying while the server comes up, and
// checks connectivity.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	log := logger.WithComponent("db")
	var db *gorm.DB
	var err error
	for i := 1; i <= connectAttempts; i++ {
		var d gorm.Dialector
		if d, err = dialector(cfg); err != nil {
			return nil, err
		}
		db, err = gorm.Open(d, gormConfig(cfg))
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i).Msg("retrying database connection")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if err := Ping(ctx, db); err != nil {
		return nil, err
	}
	log.Info().Str("driver", cfg.Driver).Str("dsn", MaskDSN(cfg.DSN)).Msg("database connected")
	return db, nil
}

// Ping checks the connection, used by /healthz.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("db handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping failed: %w", err)
	}
	return nil
}
