package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gridplate/gridplate/svgdoc"
)

// Stats renders a group hierarchy summary.
func Stats(s *svgdoc.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", s.Path)
	fmt.Fprintf(&b, "Total drawing elements: %d\n\n", s.TotalElements())

	for _, g := range s.RootGroups {
		writeGroupStats(&b, g, 0)
	}

	if len(s.UngroupedCounts) > 0 {
		b.WriteString("Ungrouped:\n")
		for _, line := range countLines(s.UngroupedCounts) {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	return b.String()
}

func writeGroupStats(b *strings.Builder, g *svgdoc.GroupStats, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s (%d elements", indent, g.Name, g.TotalElements())
	if rec := g.TotalElementsRecursive(); rec != g.TotalElements() {
		fmt.Fprintf(b, ", %d recursive", rec)
	}
	b.WriteString(")\n")

	for _, line := range countLines(g.ElementCounts) {
		fmt.Fprintf(b, "%s  %s\n", indent, line)
	}
	for _, child := range g.Children {
		writeGroupStats(b, child, depth+1)
	}
}

// countLines formats tag counts in a stable order.
func countLines(counts map[string]int) []string {
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	lines := make([]string, 0, len(tags))
	for _, tag := range tags {
		lines = append(lines, fmt.Sprintf("%s: %d", tag, counts[tag]))
	}
	return lines
}
