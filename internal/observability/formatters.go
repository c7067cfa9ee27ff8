// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/notice-watcher/internal/types"
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

// PrintRecord outputs a human-readable summary of an ingested record.
func (p *Printer) PrintRecord(record *types.StructuredRecord) {
	if record == nil {
		return
	}

	var sb strings.Builder

	title := record.Meta.Title
	if len(title) > 50 {
		title = title[:47] + "..."
	}
	sb.WriteString(fmt.Sprintf("Title:     %s\n", title))
	sb.WriteString(fmt.Sprintf("Date:      %s\n", record.Meta.Date))
	sb.WriteString(fmt.Sprintf("Category:  %s\n", record.Analysis.Category))
	sb.WriteString(fmt.Sprintf("Important: %t\n", record.Analysis.IsImportant))

	if len(record.Analysis.TargetAudience) > 0 {
		audience := strings.Join(record.Analysis.TargetAudience, ", ")
		if len(audience) > 40 {
			audience = audience[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("Audience:  %s\n", audience))
	}

	if summary := record.Analysis.Summary; summary != "" {
		sb.WriteString("\nSummary:\n")
		if len(summary) > 100 {
			summary = summary[:97] + "..."
		}
		sb.WriteString(fmt.Sprintf("  %s\n", summary))
	}

	if len(record.Analysis.Keywords) > 0 {
		count := min(len(record.Analysis.Keywords), maxItemsToShow)
		keywords := strings.Join(record.Analysis.Keywords[:count], ", ")
		if len(keywords) > 45 {
			keywords = keywords[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("\nKeywords:  %s", keywords))
		if len(record.Analysis.Keywords) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf(" (+%d more)", len(record.Analysis.Keywords)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	p.printBox("INGESTED NOTICE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunSummary outputs the end-of-run counters.
func (p *Printer) PrintRunSummary(runID string, ingested, skipped, failed int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", runID))
	sb.WriteString(fmt.Sprintf("Ingested: %d\n", ingested))
	sb.WriteString(fmt.Sprintf("Skipped:  %d\n", skipped))
	sb.WriteString(fmt.Sprintf("Failed:   %d", failed))

	p.printBox("RUN SUMMARY", sb.String())
}
