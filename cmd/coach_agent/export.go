package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/victorzhu443/firstplay-backend/internal/service"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a gap analysis to an Excel workbook",
	Long:  `Write a stored gap analysis, and the latest project ideas generated from it, to an .xlsx file.`,
	RunE:  runExport,
}

var (
	exportAnalysisID string
	exportOut        string
)

func init() {
	exportCmd.Flags().StringVar(&exportAnalysisID, "analysis-id", "", "ID of the gap analysis to export")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default gap-analysis-<id>.xlsx)")
	exportCmd.Flags().String("db-driver", "", "Database driver: postgres or sqlite")
	exportCmd.Flags().String("db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	exportCmd.Flags().String("db-path", "", "SQLite database file")
	_ = exportCmd.MarkFlagRequired("analysis-id")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	analysisID, err := uuid.Parse(exportAnalysisID)
	if err != nil {
		return fmt.Errorf("invalid --analysis-id: %w", err)
	}
	out := exportOut
	if out == "" {
		out = "gap-analysis-" + analysisID.String() + ".xlsx"
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, err := openStore(cmd.Context(), cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	// Exporting reads stored results only; no model or fetcher is needed.
	coach := service.New(service.Deps{Store: st}, log)

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := coach.ExportGapReport(cmd.Context(), analysisID, f); err != nil {
		_ = f.Close()
		_ = os.Remove(out)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	log.Info("exported gap analysis", zap.String("path", out))
	return nil
}
