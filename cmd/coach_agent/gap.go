package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/victorzhu443/firstplay-backend/internal/observability"
	"github.com/victorzhu443/firstplay-backend/internal/schemas"
	"github.com/victorzhu443/firstplay-backend/internal/skills"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

var gapCmd = &cobra.Command{
	Use:   "gap",
	Short: "Compare candidate skills against job skills",
	Long: `Compute the skill gap between a candidate and a job without calling a model or
touching the database. Skills come from flags or from a JSON file with
candidate_skills, required_skills and preferred_skills arrays.`,
	Example: `  coach_agent gap --candidate "JavaScript,Go" --required "js,AWS" --preferred "Terraform"
  coach_agent gap --input request.json`,
	RunE: runGap,
}

var (
	gapCandidate []string
	gapRequired  []string
	gapPreferred []string
	gapInput     string
)

func init() {
	gapCmd.Flags().StringSliceVar(&gapCandidate, "candidate", nil, "Candidate skills (comma-separated)")
	gapCmd.Flags().StringSliceVar(&gapRequired, "required", nil, "Required job skills (comma-separated)")
	gapCmd.Flags().StringSliceVar(&gapPreferred, "preferred", nil, "Preferred job skills (comma-separated)")
	gapCmd.Flags().StringVarP(&gapInput, "input", "i", "", "Path to a JSON gap request (mutually exclusive with the skill flags)")
	rootCmd.AddCommand(gapCmd)
}

func runGap(cmd *cobra.Command, _ []string) error {
	req, err := gapRequest(cmd)
	if err != nil {
		return err
	}

	gap := skills.ComputeGap(req.CandidateSkills, req.RequiredSkills, req.PreferredSkills)
	if verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintGapAnalysis(&gap)
	}
	return writeJSON(cmd.OutOrStdout(), gap)
}

func gapRequest(cmd *cobra.Command) (*types.GapRequest, error) {
	flagsSet := cmd.Flags().Changed("candidate") || cmd.Flags().Changed("required") || cmd.Flags().Changed("preferred")
	if gapInput == "" {
		if !flagsSet {
			return nil, fmt.Errorf("either --input or at least one of --candidate, --required, --preferred must be provided")
		}
		return &types.GapRequest{CandidateSkills: gapCandidate, RequiredSkills: gapRequired, PreferredSkills: gapPreferred}, nil
	}
	if flagsSet {
		return nil, fmt.Errorf("--input and the skill flags are mutually exclusive; provide only one")
	}

	return readGapRequest(gapInput)
}

// readGapRequest loads a gap request file and checks it against the request schema.
func readGapRequest(path string) (*types.GapRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gap request: %w", err)
	}
	if err := schemas.Validate(schemas.GapRequest, data); err != nil {
		return nil, err
	}
	var req types.GapRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse gap request: %w", err)
	}
	return &req, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
