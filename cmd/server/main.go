// Command interventi runs the interventi back-office: the HTTP server and
// the maintenance subcommands (migrate, seed, import, export).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/auth"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/config"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/db"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/logger"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/view"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	configFile string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "interventi",
	Short:         "Back-office for service interventions, clients and operators",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		if err := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
			return fmt.Errorf("logger setup: %w", err)
		}
		auth.SetSecret(cfg.App.SessionSecret)
		view.SetSiteTitle(cfg.App.SiteTitle)
		return nil
	},
	// serve is the default command
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, json, toml or env)")
}

// openDB connects and applies the schema.
func openDB(ctx context.Context) (*gorm.DB, error) {
	conn, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn, cfg.Database); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return conn, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.WithComponent("cmd").Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
