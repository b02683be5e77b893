package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/avolkov/deepscout/internal/model"
)

// Renderer writes reports as JSON, Markdown, or a terminal summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// RenderMarkdown writes the report as a Markdown document
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return os.WriteFile(path, []byte(r.Markdown(report)), 0644)
}

// Markdown renders the report to a Markdown string
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Research Report: %s\n\n", report.Subject)
	fmt.Fprintf(&b, "*Generated: %s*\n\n", report.GeneratedAt.Format("2006-01-02 15:04 MST"))

	b.WriteString("## Executive Summary\n\n")
	if report.Summary != "" {
		b.WriteString(report.Summary)
		b.WriteString("\n\n")
	}

	for _, sec := range report.Sections {
		fmt.Fprintf(&b, "## %s\n\n", titleCase(sec.Angle.Label))
		switch {
		case sec.Status == model.AngleFailed:
			b.WriteString("No evidence found.\n\n")
		case len(sec.Claims) == 0:
			b.WriteString("No claims could be extracted from the gathered sources.\n\n")
		default:
			if sec.Status == model.AnglePartial {
				b.WriteString("*Some sources for this angle could not be retrieved; findings may be incomplete.*\n\n")
			}
			for _, claim := range sec.Claims {
				fmt.Fprintf(&b, "- %s %s\n", claim.Text, citationMarkers(claim.Citations))
			}
			b.WriteString("\n")
		}
	}

	if len(report.Risks) > 0 {
		b.WriteString("## Risks & Uncertainties\n\n")
		for _, c := range report.Risks {
			line := c.Description
			if len(c.Citations) > 0 {
				line += " " + citationMarkers(c.Citations)
			}
			fmt.Fprintf(&b, "- %s\n", line)
		}
		b.WriteString("\n")
	}

	if len(report.WatchNext) > 0 {
		b.WriteString("## What to Watch Next\n\n")
		for _, w := range report.WatchNext {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	b.WriteString("## References\n\n")
	if len(report.References) == 0 {
		b.WriteString("No sources were retrieved for this report.\n")
	} else {
		for _, ref := range report.References {
			if ref.Title != "" {
				fmt.Fprintf(&b, "%d. [%s](%s)\n", ref.Index, ref.Title, ref.URL)
			} else {
				fmt.Fprintf(&b, "%d. <%s>\n", ref.Index, ref.URL)
			}
		}
	}

	if r.includeFooter {
		b.WriteString("\n---\n\n*Generated by deepscout. Findings are drawn from public web sources and should be independently verified.*\n")
	}

	return b.String()
}

// RenderSummary prints a compact report overview to stdout
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Printf("\n=== %s ===\n\n", report.Subject)

	if report.Summary != "" {
		fmt.Println(report.Summary)
		fmt.Println()
	}

	ok, partial, failed := 0, 0, 0
	for _, sec := range report.Sections {
		switch sec.Status {
		case model.AngleOK:
			ok++
		case model.AnglePartial:
			partial++
		default:
			failed++
		}
	}

	fmt.Printf("Angles: %d ok, %d partial, %d failed\n", ok, partial, failed)
	fmt.Printf("References: %d\n", len(report.References))
	if len(report.Risks) > 0 {
		fmt.Printf("Risks flagged: %d\n", len(report.Risks))
	}
	for _, note := range report.Degraded {
		fmt.Printf("Degraded: %s\n", note)
	}
}

// citationMarkers formats citation indices as inline markers, e.g. [1][3]
func citationMarkers(indices []int) string {
	if len(indices) == 0 {
		return ""
	}
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)

	var b strings.Builder
	for _, idx := range sorted {
		fmt.Fprintf(&b, "[%d]", idx)
	}
	return b.String()
}

// titleCase uppercases the first letter of a section heading
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
