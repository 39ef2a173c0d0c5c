// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/consultant-match/internal/pipeline"
	"github.com/jonathan/consultant-match/internal/types"
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
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to width runes
func clip(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// PrintAssignment outputs the requirements consultants are scored against.
func (p *Printer) PrintAssignment(a *types.Assignment) {
	if a == nil {
		return
	}

	var sb strings.Builder
	if a.Title != "" {
		sb.WriteString(fmt.Sprintf("Title:      %s\n", a.Title))
	}
	if a.Company != "" {
		sb.WriteString(fmt.Sprintf("Company:    %s\n", a.Company))
	}
	sb.WriteString(fmt.Sprintf("Skills:     %s\n", listOrNone(a.RequiredSkills)))
	sb.WriteString(fmt.Sprintf("Values:     %s\n", listOrNone(a.RequiredValues)))
	if a.DesiredCommunicationStyle != "" {
		sb.WriteString(fmt.Sprintf("Style:      %s\n", a.DesiredCommunicationStyle))
	}
	sb.WriteString(fmt.Sprintf("Leadership: %d", a.Leadership()))

	p.printBox("ASSIGNMENT", sb.String())
}

// PrintMatches outputs the ranked consultants with their scores. Only the top
// entries are listed in detail.
func (p *Printer) PrintMatches(results *types.MatchResults) {
	if results == nil {
		return
	}

	var sb strings.Builder
	if len(results.Results) == 0 {
		sb.WriteString("No consultants matched")
		p.printBox("MATCH RESULTS", sb.String())
		return
	}

	if results.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: %s\n\n", results.RunID))
	}
	sb.WriteString(fmt.Sprintf("%-3s %-22s %5s %5s %5s %5s\n", "#", "Consultant", "Tech", "Cult", "Total", "Prob"))

	count := min(len(results.Results), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := results.Results[i]
		sb.WriteString(fmt.Sprintf("%-3d %-22s %5d %5d %5d %4d%%\n",
			i+1, clip(consultantLabel(r.Consultant), 22),
			r.TechnicalFit, r.CulturalFit, r.TotalMatchScore, r.SuccessProbability))
		if len(r.MatchedSkills) > 0 {
			sb.WriteString(fmt.Sprintf("    Skills: %s\n", strings.Join(r.MatchedSkills, ", ")))
		}
		if len(r.MatchedValues) > 0 {
			sb.WriteString(fmt.Sprintf("    Values: %s\n", strings.Join(r.MatchedValues, ", ")))
		}
	}
	if len(results.Results) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(results.Results)-maxItemsToShow))
	}

	p.printBox("MATCH RESULTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintLetter outputs the match letter generated for a result.
func (p *Printer) PrintLetter(r types.MatchResult) {
	if r.Letter == "" {
		return
	}
	p.printBox("LETTER: "+consultantLabel(r.Consultant), wrap(r.Letter, boxWidth-4))
}

// PrintProgress outputs a one-line progress update.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(event pipeline.ProgressEvent) {
	fmt.Fprintf(p.out, "[%s] %s\n", event.Step, event.Message)
}

func consultantLabel(c *types.Consultant) string {
	switch {
	case c == nil:
		return "(unknown)"
	case c.Name != "":
		return c.Name
	case c.ID != "":
		return c.ID
	default:
		return "(unnamed)"
	}
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

// wrap breaks text into lines of at most width runes on word boundaries
func wrap(text string, width int) string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		line := ""
		for _, word := range strings.Fields(paragraph) {
			switch {
			case line == "":
				line = word
			case utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) <= width:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
