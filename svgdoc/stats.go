package svgdoc

import "github.com/beevik/etree"

// GroupStats holds drawing-element counts for one named group.
type GroupStats struct {
	Name          string         `json:"name"`
	Depth         int            `json:"depth"`
	ElementCounts map[string]int `json:"element_counts"`
	Children      []*GroupStats  `json:"children,omitempty"`
}

// TotalElements counts the drawing elements directly in this group,
// excluding child groups.
func (g *GroupStats) TotalElements() int {
	total := 0
	for _, n := range g.ElementCounts {
		total += n
	}
	return total
}

// TotalElementsRecursive counts drawing elements including all descendants.
func (g *GroupStats) TotalElementsRecursive() int {
	total := g.TotalElements()
	for _, child := range g.Children {
		total += child.TotalElementsRecursive()
	}
	return total
}

// Stats holds group hierarchy and element counts for a document.
type Stats struct {
	Path            string         `json:"file"`
	RootGroups      []*GroupStats  `json:"groups"`
	UngroupedCounts map[string]int `json:"ungrouped"`
}

// TotalElements counts every drawing element in the document.
func (s *Stats) TotalElements() int {
	total := 0
	for _, n := range s.UngroupedCounts {
		total += n
	}
	for _, g := range s.RootGroups {
		total += g.TotalElementsRecursive()
	}
	return total
}

// Analyze collects group statistics for a document. Anonymous groups are
// folded into their nearest named ancestor; drawing elements outside any
// named group are counted as ungrouped.
func Analyze(doc *Document) *Stats {
	stats := &Stats{
		Path:            doc.Path(),
		UngroupedCounts: map[string]int{},
	}

	for _, child := range doc.Root().ChildElements() {
		switch {
		case IsDrawingElement(child):
			stats.UngroupedCounts[child.Tag]++
		case child.Tag == "g":
			if gs := collectGroupStats(child, 0); gs != nil {
				stats.RootGroups = append(stats.RootGroups, gs)
			} else {
				collectUngrouped(child, stats)
			}
		}
	}
	return stats
}

func collectGroupStats(el *etree.Element, depth int) *GroupStats {
	name := GroupName(el)
	if name == "" {
		return nil
	}

	stats := &GroupStats{Name: name, Depth: depth, ElementCounts: map[string]int{}}
	for _, child := range el.ChildElements() {
		switch {
		case IsDrawingElement(child):
			stats.ElementCounts[child.Tag]++
		case child.Tag == "g":
			if gs := collectGroupStats(child, depth+1); gs != nil {
				stats.Children = append(stats.Children, gs)
			} else {
				collectAnonymous(child, stats)
			}
		}
	}
	return stats
}

// collectAnonymous merges an anonymous group's elements into parent.
func collectAnonymous(el *etree.Element, parent *GroupStats) {
	for _, child := range el.ChildElements() {
		switch {
		case IsDrawingElement(child):
			parent.ElementCounts[child.Tag]++
		case child.Tag == "g":
			if gs := collectGroupStats(child, parent.Depth+1); gs != nil {
				parent.Children = append(parent.Children, gs)
			} else {
				collectAnonymous(child, parent)
			}
		}
	}
}

// collectUngrouped merges an anonymous root group's elements into the
// document-level ungrouped counts.
func collectUngrouped(el *etree.Element, stats *Stats) {
	for _, child := range el.ChildElements() {
		switch {
		case IsDrawingElement(child):
			stats.UngroupedCounts[child.Tag]++
		case child.Tag == "g":
			if gs := collectGroupStats(child, 0); gs != nil {
				stats.RootGroups = append(stats.RootGroups, gs)
			} else {
				collectUngrouped(child, stats)
			}
		}
	}
}
