package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/victorzhu443/firstplay-backend/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database tables",
	Long:  `Apply the schema to the configured database. Existing tables are left untouched.`,
	RunE:  runMigrate,
}

var migratePrint bool

func init() {
	migrateCmd.Flags().String("db-driver", "", "Database driver: postgres or sqlite")
	migrateCmd.Flags().String("db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	migrateCmd.Flags().String("db-path", "", "SQLite database file")
	migrateCmd.Flags().BoolVar(&migratePrint, "print", false, "Print the PostgreSQL schema instead of applying it")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if migratePrint {
		_, err := fmt.Fprint(cmd.OutOrStdout(), db.Schema())
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// openStore applies the schema for both drivers.
	st, err := openStore(cmd.Context(), cfg.Database)
	if err != nil {
		return err
	}
	st.Close()

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Schema applied (%s)\n", cfg.Database.Driver)
	return err
}
