// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/storyweaver/internal/ranking"
	"github.com/jonathan/storyweaver/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes, in runes
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

// truncate shortens s to at most n runes, ending in "..." when cut
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
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

// PrintSections outputs the document outline with each section's category.
func (p *Printer) PrintSections(sections []types.DocumentSection) {
	if len(sections) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total sections: %d\n\n", len(sections)))
	for _, s := range sections {
		indent := strings.Repeat("  ", max(s.Level-1, 0))
		sb.WriteString(fmt.Sprintf("%s%s [%s] %d chars\n", indent, s.Title, s.Category, s.CharCount))
	}

	p.printBox("DOCUMENT SECTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStories outputs the top stories with their confidence and review flags.
func (p *Printer) PrintStories(stories []types.Story) {
	if len(stories) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total stories: %d\n\n", len(stories)))

	count := min(len(stories), maxItemsToShow)
	for i := 0; i < count; i++ {
		story := stories[i]
		sb.WriteString(fmt.Sprintf("#%d  %s [%s]\n", i+1, story.Title, story.Priority))
		sb.WriteString(fmt.Sprintf("    %s\n", story.Description))
		sb.WriteString(fmt.Sprintf("    Confidence: %.0f%% (%s)", story.Confidence.Overall*100, story.Confidence.Level))
		if story.Confidence.NeedsReview {
			sb.WriteString(" ⚠ review")
		}
		sb.WriteString("\n")
		if len(story.Confidence.Reasons) > 0 {
			sb.WriteString(fmt.Sprintf("    Reasons: %s\n", strings.Join(story.Confidence.Reasons, "; ")))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(stories) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more stories", len(stories)-maxItemsToShow))
	}

	p.printBox("EXTRACTED STORIES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDocument outputs the document summary line and optimization counts.
func (p *Printer) PrintDocument(doc *types.ParsedDocument) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:     %s (%s)\n", doc.FileName, doc.FileType))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", doc.Status))
	sb.WriteString(fmt.Sprintf("Chars:    %d\n", doc.TotalChars))
	sb.WriteString(fmt.Sprintf("Sections: %d\n", len(doc.Sections)))
	sb.WriteString("\n")
	sb.WriteString(ranking.Summarize(doc.Stories).Notes())
	sb.WriteString("\n")
	if doc.OptimizedCount > 0 || doc.OptimizationFailures > 0 {
		sb.WriteString(fmt.Sprintf("Optimized: %d, failed: %d\n", doc.OptimizedCount, doc.OptimizationFailures))
	}

	p.printBox("PARSED DOCUMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintUsage outputs the ledger statistics.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintUsage(stats types.UsageStats) {
	if stats.RequestCount == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO LLM REQUESTS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Requests:      %d\n", stats.RequestCount))
	sb.WriteString(fmt.Sprintf("Total tokens:  %d\n", stats.TotalTokens))
	sb.WriteString(fmt.Sprintf("Total cost:    $%.6f\n", stats.TotalCost))
	sb.WriteString(fmt.Sprintf("Avg cost:      $%.6f\n", stats.AverageCostPerRequest))
	sb.WriteString(fmt.Sprintf("Avg response:  %s", stats.AverageResponseTime))

	p.printBox("LLM USAGE", sb.String())
}
