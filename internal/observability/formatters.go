// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-screener/internal/classifier"
	"github.com/jonathan/resume-screener/internal/store"
	"github.com/jonathan/resume-screener/internal/types"
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

// PrintRanking outputs the top candidates with their scores, categories and gaps.
func (p *Printer) PrintRanking(result *types.RankedCandidates) {
	if result == nil || len(result.Ranked) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidates ranked: %d\n\n", result.Total))

	count := min(len(result.Ranked), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := result.Ranked[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", c.Rank, c.ID))
		sb.WriteString(fmt.Sprintf("    Score: %.2f (%s)\n", c.Score, c.Band))
		sb.WriteString(fmt.Sprintf("    Category: %s", c.Category))
		if c.CategoryConfidence > 0 {
			sb.WriteString(fmt.Sprintf(" (%.0f%%)", c.CategoryConfidence*100))
		}
		sb.WriteString("\n")
		if c.MissingSkillsCount > 0 {
			sb.WriteString(fmt.Sprintf("    Missing: %d skills\n", c.MissingSkillsCount))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(result.Ranked) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates", len(result.Ranked)-maxItemsToShow))
	}
	if len(result.Excluded) > 0 {
		sb.WriteString(fmt.Sprintf("\nExcluded: %d documents", len(result.Excluded)))
	}

	p.printBox("TOP RANKED CANDIDATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSkills outputs a skill set with categories in the given order.
func (p *Printer) PrintSkills(title string, set types.SkillSet, order []string) {
	if len(set) == 0 {
		p.printBox(title, "No skills found")
		return
	}

	var sb strings.Builder
	for _, category := range order {
		found := set[category]
		if len(found) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s (%d):\n", category, len(found)))
		for _, skill := range found {
			sb.WriteString(fmt.Sprintf("  • %s\n", skill))
		}
	}
	sb.WriteString(fmt.Sprintf("\nTotal: %d skills", set.Count()))

	p.printBox(title, sb.String())
}

// PrintEvaluation outputs accuracy and per-class metrics of a trained classifier.
func (p *Printer) PrintEvaluation(eval *classifier.Evaluation) {
	if eval == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Accuracy:  %.3f\n", eval.Accuracy))
	sb.WriteString(fmt.Sprintf("Train/Test: %d / %d\n\n", eval.TrainSize, eval.TestSize))
	for _, m := range eval.PerClass {
		sb.WriteString(fmt.Sprintf("%-24s F1 %.2f  n=%d\n", truncate(m.Class, 24), m.F1, m.Support))
	}
	sb.WriteString(fmt.Sprintf("\nMacro F1:    %.3f\n", eval.MacroAvg.F1))
	sb.WriteString(fmt.Sprintf("Weighted F1: %.3f", eval.WeightedAvg.F1))

	p.printBox("CLASSIFIER EVALUATION", sb.String())
}

// PrintPrediction outputs one classification result.
func (p *Printer) PrintPrediction(id string, pred classifier.Prediction) {
	content := fmt.Sprintf("Category:   %s\nConfidence: %.1f%%", pred.Category, pred.Confidence*100)
	if pred.Unmapped {
		content += "\n⚠ predicted class not in label set"
	}
	p.printBox("PREDICTION "+id, content)
}

// PrintStatistics outputs the stored applicant summary.
func (p *Printer) PrintStatistics(stats *store.Statistics) {
	if stats == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Applicants:    %d\n", stats.TotalApplicants))
	sb.WriteString(fmt.Sprintf("Average score: %.2f", stats.AverageScore))
	if len(stats.Categories) > 0 {
		sb.WriteString("\n\n")
		for _, c := range stats.Categories {
			sb.WriteString(fmt.Sprintf("%-28s %4d  avg %.2f\n", truncate(c.Category, 28), c.Count, c.AvgScore))
		}
	}

	p.printBox("APPLICANT STATISTICS", strings.TrimSuffix(sb.String(), "\n"))
}
