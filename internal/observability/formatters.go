// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/leadscout/internal/types"
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

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintMetrics outputs the evaluation metrics for one prompt candidate.
func (p *Printer) PrintMetrics(title string, m *types.Metrics) {
	if m == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Kendall's Tau:   %+.4f\n", m.KendallTau))
	sb.WriteString(fmt.Sprintf("Spearman:        %+.4f\n", m.Spearman))
	sb.WriteString(fmt.Sprintf("MAE:             %.4f\n", m.MAE))
	sb.WriteString(fmt.Sprintf("RMSE:            %.4f", m.RMSE))

	p.printBox(title, sb.String())
}

// PrintBeam outputs the current beam, best candidate first.
func (p *Printer) PrintBeam(beam []*types.PromptCandidate) {
	if len(beam) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Beam width: %d\n\n", len(beam)))

	count := min(len(beam), maxItemsToShow)
	for i := 0; i < count; i++ {
		candidate := beam[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, shortID(candidate)))
		if candidate.Metrics != nil {
			sb.WriteString(fmt.Sprintf("    tau=%.4f  rho=%.4f  mae=%.4f\n",
				candidate.Metrics.KendallTau, candidate.Metrics.Spearman, candidate.Metrics.MAE))
		}
		text := firstLine(candidate.Text)
		if len(text) > 45 {
			text = text[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("    %s\n", text))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("CURRENT BEAM", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRankings outputs the top ranked leads with justifications.
func (p *Printer) PrintRankings(rankings []types.LeadRanking) {
	if len(rankings) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total leads ranked: %d\n\n", len(rankings)))

	count := min(len(rankings), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := rankings[i]
		sb.WriteString(fmt.Sprintf("#%.0f  %s\n", r.PredictedRank, r.LeadID))
		if r.Justification != "" {
			just := r.Justification
			if len(just) > 45 {
				just = just[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("    %s\n", just))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(rankings) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more leads", len(rankings)-maxItemsToShow))
	}

	p.printBox("RANKED LEADS", sb.String())
}

// PrintQualifications outputs qualification decisions, qualified leads first.
func (p *Printer) PrintQualifications(decisions []types.QualificationDecision) {
	if len(decisions) == 0 {
		return
	}

	qualified := 0
	for _, d := range decisions {
		if d.Qualified {
			qualified++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Qualified %d of %d leads:\n\n", qualified, len(decisions)))

	count := min(len(decisions), maxItemsToShow)
	for i := 0; i < count; i++ {
		d := decisions[i]
		mark := "✗"
		if d.Qualified {
			mark = "✓"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", mark, d.LeadID))
		if d.Justification != "" {
			just := d.Justification
			if len(just) > 45 {
				just = just[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("  %s\n", just))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(decisions) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more leads", len(decisions)-maxItemsToShow))
	}

	p.printBox("QUALIFICATION DECISIONS", sb.String())
}

// PrintRunSummary outputs the final state of a completed optimization run.
func (p *Printer) PrintRunSummary(run *types.OptimizationRun) {
	if run == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status:       %s\n", run.Status))
	sb.WriteString(fmt.Sprintf("Iterations:   %d\n", run.TotalIterations))
	sb.WriteString(fmt.Sprintf("Candidates:   %d\n", run.TotalCandidatesGenerated))
	sb.WriteString(fmt.Sprintf("Improvement:  %+.1f%%", run.ImprovementPercentage))
	if run.BestPromptID != nil {
		sb.WriteString(fmt.Sprintf("\nBest prompt:  %s", run.BestPromptID))
	}
	if run.ErrorMessage != "" {
		msg := run.ErrorMessage
		if len(msg) > 45 {
			msg = msg[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("\nError:        %s", msg))
	}

	p.printBox("OPTIMIZATION RUN", sb.String())
}

// Progress prints one iteration progress line. Meant to be wired as the
// optimizer's progress callback in verbose mode.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Progress(stage, message string) {
	fmt.Fprintf(p.out, "[%s] %s\n", stage, message)
}

func shortID(c *types.PromptCandidate) string {
	id := c.ID.String()
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}
