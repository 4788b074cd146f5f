// Package export renders gap analyses as spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/victorzhu443/firstplay-backend/internal/skills"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// Sheet names and skill status labels used in the workbook.
const (
	GapSheet      = "Gap Analysis"
	ProjectsSheet = "Projects"

	StatusOverlapping      = "overlapping"
	StatusMissingRequired  = "missing required"
	StatusMissingPreferred = "missing preferred"
)

var (
	gapHeader     = []any{"Skill", "Status"}
	projectHeader = []any{"Title", "Difficulty", "Estimated Duration", "Skill Targets", "Technologies"}
)

// WriteGapReport writes an .xlsx workbook describing gap and plan to w.
// plan may be nil, in which case the Projects sheet holds only its header.
func WriteGapReport(w io.Writer, gap skills.GapResult, plan *types.ProjectPlan) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", GapSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ProjectsSheet); err != nil {
		return fmt.Errorf("failed to create projects sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeGapSheet(f, gap, headerStyle); err != nil {
		return fmt.Errorf("failed to write gap sheet: %w", err)
	}
	var projects []types.ProjectIdea
	if plan != nil {
		projects = plan.Projects
	}
	if err := writeProjectsSheet(f, projects, headerStyle); err != nil {
		return fmt.Errorf("failed to write projects sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeGapSheet(f *excelize.File, gap skills.GapResult, headerStyle int) error {
	if err := writeHeader(f, GapSheet, gapHeader, headerStyle); err != nil {
		return err
	}

	row := 2
	groups := []struct {
		status string
		labels []string
	}{
		{StatusOverlapping, gap.Overlapping},
		{StatusMissingRequired, gap.MissingRequired},
		{StatusMissingPreferred, gap.MissingPreferred},
	}
	for _, g := range groups {
		for _, label := range g.labels {
			if err := setRow(f, GapSheet, row, []any{label, g.status}); err != nil {
				return err
			}
			row++
		}
	}
	return f.SetColWidth(GapSheet, "A", "B", 28)
}

func writeProjectsSheet(f *excelize.File, projects []types.ProjectIdea, headerStyle int) error {
	if err := writeHeader(f, ProjectsSheet, projectHeader, headerStyle); err != nil {
		return err
	}

	for i, p := range projects {
		values := []any{
			p.Title,
			p.Difficulty,
			p.EstimatedDuration,
			strings.Join(p.SkillTargets, ", "),
			strings.Join(p.Technologies, ", "),
		}
		if err := setRow(f, ProjectsSheet, i+2, values); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(ProjectsSheet, "A", "A", 40); err != nil {
		return err
	}
	return f.SetColWidth(ProjectsSheet, "B", "E", 24)
}

func writeHeader(f *excelize.File, sheet string, header []any, style int) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
