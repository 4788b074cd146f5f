// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/victorzhu443/firstplay-backend/internal/pipeline"
	"github.com/victorzhu443/firstplay-backend/internal/skills"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// writeList writes up to limit items under heading, noting how many were left out.
func writeList(sb *strings.Builder, heading string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	for _, item := range items[:min(len(items), limit)] {
		fmt.Fprintf(sb, "  • %s\n", item)
	}
	if len(items) > limit {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-limit)
	}
	sb.WriteString("\n")
}

// PrintParsedCandidate outputs a summary of a parsed resume.
func (p *Printer) PrintParsedCandidate(c *types.ParsedCandidate) {
	if c == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Name:       %s\n", c.Name)
	fmt.Fprintf(&sb, "Experience: %d positions\n", len(c.Experience))
	fmt.Fprintf(&sb, "Projects:   %d\n\n", len(c.Projects))
	writeList(&sb, "Skills", c.Skills, maxItemsToShow)

	p.printBox("PARSED RESUME", strings.TrimRight(sb.String(), "\n"))
}

// PrintParsedJob outputs a summary of a parsed job description.
func (p *Printer) PrintParsedJob(job *types.ParsedJob) {
	if job == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Role:     %s\n", job.JobTitle)
	if job.Company != "" {
		fmt.Fprintf(&sb, "Company:  %s\n", job.Company)
	}
	sb.WriteString("\n")
	writeList(&sb, "Required", job.RequiredSkills, maxItemsToShow)
	writeList(&sb, "Preferred", job.PreferredSkills, 3)

	p.printBox("PARSED JOB", strings.TrimRight(sb.String(), "\n"))
}

// PrintGapAnalysis outputs the overlap and the missing skills.
func (p *Printer) PrintGapAnalysis(gap *skills.GapResult) {
	if gap == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Overlapping: %d  Missing required: %d  Missing preferred: %d\n\n",
		len(gap.Overlapping), len(gap.MissingRequired), len(gap.MissingPreferred))
	writeList(&sb, "Overlapping", gap.Overlapping, maxItemsToShow)
	writeList(&sb, "Missing required", gap.MissingRequired, maxItemsToShow)
	writeList(&sb, "Missing preferred", gap.MissingPreferred, 3)

	p.printBox("GAP ANALYSIS", strings.TrimRight(sb.String(), "\n"))
}

// PrintProjects outputs the suggested projects with their difficulty.
func (p *Printer) PrintProjects(projects []types.ProjectIdea) {
	if len(projects) == 0 {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Suggested %d projects:\n\n", len(projects))

	count := min(len(projects), maxItemsToShow)
	for i, project := range projects[:count] {
		fmt.Fprintf(&sb, "#%d  %s\n", i+1, project.Title)
		fmt.Fprintf(&sb, "    %s", project.Difficulty)
		if project.EstimatedDuration != "" {
			fmt.Fprintf(&sb, ", %s", project.EstimatedDuration)
		}
		sb.WriteString("\n")
		if len(project.SkillTargets) > 0 {
			fmt.Fprintf(&sb, "    Targets: %s\n", strings.Join(project.SkillTargets, ", "))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(projects) > maxItemsToShow {
		fmt.Fprintf(&sb, "\n... and %d more projects", len(projects)-maxItemsToShow)
	}

	p.printBox("PROJECT IDEAS", strings.TrimRight(sb.String(), "\n"))
}

// PrintRewrittenProfile outputs the headline of the improved resume.
func (p *Printer) PrintRewrittenProfile(profile *types.RewrittenProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", profile.Name)
	if profile.Summary != "" {
		fmt.Fprintf(&sb, "Summary: %s\n", profile.Summary)
	}
	sb.WriteString("\n")
	writeList(&sb, "Skills", profile.Skills, maxItemsToShow)

	bullets := 0
	for _, exp := range profile.Experience {
		bullets += len(exp.Bullets)
	}
	fmt.Fprintf(&sb, "Rewrote %d bullets across %d positions", bullets, len(profile.Experience))

	p.printBox("IMPROVED RESUME", sb.String())
}

// PrintState outputs every populated part of a pipeline run.
func (p *Printer) PrintState(st *pipeline.State) {
	if st == nil {
		return
	}
	p.PrintParsedCandidate(st.Candidate)
	p.PrintParsedJob(st.Job)
	p.PrintGapAnalysis(st.Gap)
	p.PrintProjects(st.Projects)
	p.PrintRewrittenProfile(st.Profile)
}

// PrintProgress writes one line per stage transition.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(event pipeline.ProgressEvent) {
	marker := "…"
	switch event.Status {
	case pipeline.StatusCompleted:
		marker = "✓"
	case pipeline.StatusSkipped:
		marker = "-"
	case pipeline.StatusFailed:
		marker = "✗"
	}

	line := fmt.Sprintf("%s %-18s %s", marker, event.Stage, event.Status)
	if event.Message != "" {
		line += ": " + event.Message
	}
	fmt.Fprintln(p.out, line)
}
