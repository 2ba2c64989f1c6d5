// Package report renders structured step results as human-readable
// text. Status markers are styled with lipgloss; content stays plain so
// output remains grep-able.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gridplate/gridplate/addtext"
	"github.com/gridplate/gridplate/align"
	"github.com/gridplate/gridplate/pipeline"
	"github.com/gridplate/gridplate/relabel"
	"github.com/gridplate/gridplate/shape"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	fixableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

const errorTrailer = "*** ERRORS DETECTED - Output file will not be generated ***"

// Alignment renders an alignment report.
func Alignment(r *align.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", r.Path)
	fmt.Fprintf(&b, "Total elements checked: %d\n", r.TotalElements())
	fmt.Fprintf(&b, "Errors: %d\n", r.TotalErrors())
	fmt.Fprintf(&b, "Fixable: %d\n\n", r.TotalFixable())

	for _, g := range r.Groups {
		writeAlignGroup(&b, g, "")
	}

	if r.HasErrors() {
		b.WriteString(errorStyle.Render(errorTrailer) + "\n")
	} else if r.TotalFixable() > 0 {
		b.WriteString(okStyle.Render("All fixable issues can be corrected.") + "\n")
	}
	return b.String()
}

func writeAlignGroup(b *strings.Builder, g align.GroupResult, indent string) {
	fmt.Fprintf(b, "%sGroup: %s (%s)\n", indent, g.GroupName, g.Kind)
	fmt.Fprintf(b, "%s  OK: %d, Fixable: %d, Errors: %d\n", indent, g.OKCount(), g.FixableCount(), g.ErrorCount())

	for _, res := range g.Results {
		if res.IsOK() {
			continue
		}
		marker := fixableStyle.Render("[FIXABLE]")
		if res.HasErrors() {
			marker = errorStyle.Render("[ERROR]")
		}
		fmt.Fprintf(b, "%s  %s %s\n", indent, marker, res.ElementID)
		for _, issue := range res.Issues {
			if issue.Status != shape.StatusOK {
				fmt.Fprintf(b, "%s    - %s\n", indent, issue.Message)
			}
		}
	}
	b.WriteString("\n")
}

// Relabel renders a relabel report.
func Relabel(r *relabel.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n\n", r.Path)

	for _, g := range r.Groups {
		fmt.Fprintf(&b, "Group: %s (%s)\n", g.GroupName, g.Kind)
		fmt.Fprintf(&b, "  Total elements: %d\n", len(g.Changes))
		fmt.Fprintf(&b, "  Origin: (%.2f, %.2f)\n", g.OriginX, g.OriginY)
		fmt.Fprintf(&b, "  Grid: (%.2f, %.2f)\n", g.Grid.X, g.Grid.Y)
		if g.Sort != nil {
			fmt.Fprintf(&b, "  Sort: %s (x:%s, y:%s)\n", g.Sort.By, g.Sort.XOrder, g.Sort.YOrder)
		}
		b.WriteString("\n")

		writeFindings(&b, g.Warnings, g.Errors)

		if len(g.Changes) > 0 {
			b.WriteString("  Label changes:\n")
			for _, c := range g.Changes {
				if c.OldLabel == c.NewLabel {
					continue
				}
				old := c.OldLabel
				if old == "" {
					old = "(none)"
				}
				fmt.Fprintf(&b, "    %s: %q -> %q\n", c.ElementID, old, c.NewLabel)
			}
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "  Unchanged: %d\n", g.UnchangedCount())
		fmt.Fprintf(&b, "  Changed: %d\n\n", g.ChangedCount())
	}

	b.WriteString("Summary:\n")
	fmt.Fprintf(&b, "  Total elements: %d\n", r.TotalElements())
	fmt.Fprintf(&b, "  Total changed: %d\n", r.TotalChanged())

	if r.HasErrors() {
		b.WriteString("\n" + errorStyle.Render(errorTrailer) + "\n")
	}
	return b.String()
}

// AddText renders a text generation report.
func AddText(r *addtext.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n\n", r.Path)

	for _, g := range r.Groups {
		fmt.Fprintf(&b, "Group: %s\n", g.GroupName)
		if g.Orientation == addtext.OrientationHorizontal {
			fmt.Fprintf(&b, "  Y: %.2f mm\n", g.Fixed)
			fmt.Fprintf(&b, "  X range: %.2f - %.2f mm\n", g.Start, g.End)
			fmt.Fprintf(&b, "  X interval: %.2f mm\n", g.Interval)
		} else {
			fmt.Fprintf(&b, "  X: %.2f mm\n", g.Fixed)
			fmt.Fprintf(&b, "  Y range: %.2f - %.2f mm\n", g.Start, g.End)
			fmt.Fprintf(&b, "  Y interval: %.2f mm\n", g.Interval)
		}
		fmt.Fprintf(&b, "  Elements: %d\n\n", g.ElementCount())

		writeFindings(&b, g.Warnings, g.Errors)

		if len(g.Elements) > 0 {
			b.WriteString("  Created elements:\n")
			for _, e := range g.Elements {
				fmt.Fprintf(&b, "    %s: %q at (%.2f, %.2f) mm\n", e.ElementID, e.Text, e.GridX, e.GridY)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("Summary:\n")
	fmt.Fprintf(&b, "  Total groups: %d\n", len(r.Groups))
	fmt.Fprintf(&b, "  Total elements: %d\n", r.TotalElements())

	if r.HasErrors() {
		b.WriteString("\n" + errorStyle.Render(errorTrailer) + "\n")
	}
	return b.String()
}

// Process renders a unified pipeline report.
func Process(r *pipeline.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n\n", r.Path)

	if len(r.SkippedSteps) > 0 {
		b.WriteString("Skipped steps:\n")
		for _, step := range r.SkippedSteps {
			fmt.Fprintf(&b, "  - %s\n", step)
		}
		b.WriteString("\n")
	}

	rule := strings.Repeat("=", 60)

	if r.Align != nil {
		fmt.Fprintf(&b, "%s\nALIGN STEP\n%s\n", rule, rule)
		fmt.Fprintf(&b, "Total elements checked: %d\n", r.Align.TotalElements())
		fmt.Fprintf(&b, "Errors: %d\n", r.Align.TotalErrors())
		fmt.Fprintf(&b, "Fixable: %d\n\n", r.Align.TotalFixable())
		for _, g := range r.Align.Groups {
			writeAlignGroup(&b, g, "")
		}
	}

	if r.Relabel != nil {
		fmt.Fprintf(&b, "%s\nRELABEL STEP\n%s\n", rule, rule)
		for _, g := range r.Relabel.Groups {
			fmt.Fprintf(&b, "Group: %s (%s)\n", g.GroupName, g.Kind)
			fmt.Fprintf(&b, "  Total elements: %d\n", len(g.Changes))
			fmt.Fprintf(&b, "  Changed: %d\n", g.ChangedCount())
			fmt.Fprintf(&b, "  Unchanged: %d\n", g.UnchangedCount())
			writeFindings(&b, g.Warnings, g.Errors)
			b.WriteString("\n")
		}
	}

	if r.AddText != nil {
		fmt.Fprintf(&b, "%s\nADD_TEXT STEP\n%s\n", rule, rule)
		for _, g := range r.AddText.Groups {
			fmt.Fprintf(&b, "Group: %s\n", g.GroupName)
			fmt.Fprintf(&b, "  Elements created: %d\n", g.ElementCount())
			writeFindings(&b, g.Warnings, g.Errors)
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "%s\nSUMMARY\n%s\n", rule, rule)
	executed := make([]string, 0, 3)
	for _, s := range r.ExecutedSteps() {
		executed = append(executed, string(s))
	}
	if len(executed) == 0 {
		executed = []string{"none"}
	}
	fmt.Fprintf(&b, "Executed steps: %s\n", strings.Join(executed, ", "))

	if r.HasErrors() {
		b.WriteString("\n" + errorStyle.Render(errorTrailer) + "\n")
	} else {
		b.WriteString(okStyle.Render("All steps completed successfully.") + "\n")
	}
	return b.String()
}

func writeFindings(b *strings.Builder, warnings, errors []string) {
	for _, w := range warnings {
		fmt.Fprintf(b, "  %s %s\n", warningStyle.Render("[WARNING]"), w)
	}
	for _, e := range errors {
		fmt.Fprintf(b, "  %s %s\n", errorStyle.Render("[ERROR]"), e)
	}
	if len(warnings) > 0 || len(errors) > 0 {
		b.WriteString("\n")
	}
}
