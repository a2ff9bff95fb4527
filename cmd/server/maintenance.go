package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/dataset"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/db"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/logger"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := openDB(cmd.Context()); err != nil {
			return err
		}
		logger.WithComponent("cmd").Info().Msg("migrations completed")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create permissions, default profiles and the bootstrap admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		if err := db.Seed(conn, cfg.Admin); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
		logger.WithComponent("cmd").Info().Msg("seeding completed")
		return nil
	},
}

var (
	formatFlag string
	dryRunFlag bool
)

var importCmd = &cobra.Command{
	Use:   "import <entity> <file>",
	Short: "Import a CSV or XLSX file (" + strings.Join(dataset.Names(), ", ") + ")",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := dataset.Lookup(args[0])
		if err != nil {
			return err
		}
		f, err := fileFormat(formatFlag, args[1])
		if err != nil {
			return err
		}
		file, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer file.Close()

		conn, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		result, err := dataset.Import(cmd.Context(), conn, res, f, file, dryRunFlag)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
		if result.HasErrors() {
			return fmt.Errorf("import of %s rolled back: some rows are invalid", res.Name)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <entity> [file]",
	Short: "Export every record as CSV or XLSX, to a file or stdout",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := dataset.Lookup(args[0])
		if err != nil {
			return err
		}
		path := ""
		if len(args) == 2 {
			path = args[1]
		}
		f, err := fileFormat(formatFlag, path)
		if err != nil {
			return err
		}
		conn, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		var out io.Writer = cmd.OutOrStdout()
		if path != "" {
			file, err := os.Create(path)
			if err != nil {
				return err
			}
			defer file.Close()
			out = file
		}
		return dataset.Export(cmd.Context(), conn, res, f, out)
	},
}

// fileFormat prefers the flag, then the file extension.
func fileFormat(flag, path string) (dataset.Format, error) {
	if flag == "" {
		flag = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	return dataset.ParseFormat(flag)
}

func init() {
	for _, c := range []*cobra.Command{importCmd, exportCmd} {
		c.Flags().StringVar(&formatFlag, "format", "", "csv or xlsx (default: from the file extension, else csv)")
	}
	importCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "validate every row and roll back")
	rootCmd.AddCommand(migrateCmd, seedCmd, importCmd, exportCmd)
}
