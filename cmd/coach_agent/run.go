package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/victorzhu443/firstplay-backend/internal/observability"
	"github.com/victorzhu443/firstplay-backend/internal/service"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full coaching pipeline end-to-end",
	Long: `Runs every stage for one resume and one job description:
parse resume -> parse job -> gap analysis -> project ideas -> resume rewrite.

Inputs are either stored records (--candidate-id, --job-id) or new documents
(--resume with --job or --job-url) that are stored first. Stage progress is
written to stderr and the final result as JSON to stdout or --out.`,
	RunE: runPipelineCmd,
}

var (
	runResume      string
	runCandidateID string
	runJob         string
	runJobURL      string
	runJobID       string
	runOut         string
)

func init() {
	runCommand.Flags().StringVarP(&runResume, "resume", "r", "", "Path to a resume file: PDF, DOCX or text (mutually exclusive with --candidate-id)")
	runCommand.Flags().StringVar(&runCandidateID, "candidate-id", "", "ID of a stored resume")
	runCommand.Flags().StringVarP(&runJob, "job", "j", "", "Path to a job description text file")
	runCommand.Flags().StringVar(&runJobURL, "job-url", "", "URL to fetch the job posting from")
	runCommand.Flags().StringVar(&runJobID, "job-id", "", "ID of a stored job description")
	runCommand.Flags().StringVarP(&runOut, "out", "o", "", "Write the JSON result to this file instead of stdout")

	runCommand.Flags().String("db-driver", "", "Database driver: postgres or sqlite")
	runCommand.Flags().String("db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	runCommand.Flags().String("db-path", "", "SQLite database file")
	runCommand.Flags().String("api-key", "", "Gemini API key (defaults to GEMINI_API_KEY env var)")
	runCommand.Flags().Bool("use-browser", false, "Render JavaScript-heavy job pages in headless Chrome")

	rootCmd.AddCommand(runCommand)
}

// runInputs are the validated inputs of a run. Exactly one candidate source and
// one job source are set.
type runInputs struct {
	candidateID uuid.UUID
	resumePath  string
	jobID       uuid.UUID
	jobPath     string
	jobURL      string
}

func resolveRunInputs(resume, candidateID, job, jobURL, jobID string) (*runInputs, error) {
	in := &runInputs{resumePath: resume, jobPath: job, jobURL: jobURL}

	switch {
	case resume == "" && candidateID == "":
		return nil, fmt.Errorf("either --resume or --candidate-id must be provided")
	case resume != "" && candidateID != "":
		return nil, fmt.Errorf("--resume and --candidate-id are mutually exclusive; provide only one")
	case candidateID != "":
		id, err := uuid.Parse(candidateID)
		if err != nil {
			return nil, fmt.Errorf("invalid --candidate-id: %w", err)
		}
		in.candidateID = id
	}

	sources := 0
	for _, s := range []string{job, jobURL, jobID} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return nil, fmt.Errorf("exactly one of --job, --job-url or --job-id must be provided")
	}
	if jobID != "" {
		id, err := uuid.Parse(jobID)
		if err != nil {
			return nil, fmt.Errorf("invalid --job-id: %w", err)
		}
		in.jobID = id
	}
	return in, nil
}

// store saves new documents and returns the candidate and job IDs to run.
func (in *runInputs) store(ctx context.Context, coach *service.Coach, log *zap.Logger) (uuid.UUID, uuid.UUID, error) {
	candidateID, jobID := in.candidateID, in.jobID

	if in.resumePath != "" {
		data, err := os.ReadFile(in.resumePath)
		if err != nil {
			return uuid.Nil, uuid.Nil, fmt.Errorf("failed to read resume: %w", err)
		}
		sub, err := coach.UploadCandidate(ctx, filepath.Base(in.resumePath), "", data)
		if err != nil {
			return uuid.Nil, uuid.Nil, err
		}
		candidateID = sub.ID
		log.Info("stored resume", zap.String("resume_id", candidateID.String()))
	}

	switch {
	case in.jobPath != "":
		data, err := os.ReadFile(in.jobPath)
		if err != nil {
			return uuid.Nil, uuid.Nil, fmt.Errorf("failed to read job description: %w", err)
		}
		sub, err := coach.SubmitJobText(ctx, string(data))
		if err != nil {
			return uuid.Nil, uuid.Nil, err
		}
		jobID = sub.ID
	case in.jobURL != "":
		sub, err := coach.SubmitJobURL(ctx, in.jobURL)
		if err != nil {
			return uuid.Nil, uuid.Nil, err
		}
		jobID = sub.ID
	}
	if in.jobPath != "" || in.jobURL != "" {
		log.Info("stored job description", zap.String("job_id", jobID.String()))
	}
	return candidateID, jobID, nil
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	in, err := resolveRunInputs(runResume, runCandidateID, runJob, runJobURL, runJobID)
	if err != nil {
		return err
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

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	coach, err := newCoach(ctx, cfg, st, nil, log)
	if err != nil {
		return err
	}

	candidateID, jobID, err := in.store(ctx, coach, log)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.ErrOrStderr())
	state, err := coach.RunPipeline(ctx, candidateID, jobID, printer.PrintProgress)
	if err != nil {
		return err
	}
	if verbose {
		printer.PrintState(state)
	}

	if runOut == "" {
		return writeJSON(cmd.OutOrStdout(), state)
	}
	f, err := os.Create(runOut)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()
	if err := writeJSON(f, state); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	log.Info("wrote result", zap.String("path", runOut))
	return nil
}
