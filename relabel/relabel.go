// Package relabel derives grid indices from shape positions and assigns
// template-driven labels. Duplicate final labels are a group-level error
// that blocks applying any change in that group.
package relabel

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/flanksource/commons/logger"
	"github.com/samber/lo"

	"github.com/gridplate/gridplate/rules"
	"github.com/gridplate/gridplate/shape"
	"github.com/gridplate/gridplate/svgdoc"
)

// Change records one relabel decision for an element.
type Change struct {
	ElementID string
	OldLabel  string
	NewLabel  string
	CenterX   float64
	CenterY   float64
	GridX     int
	GridY     int
}

// GroupResult is the outcome of relabeling one group.
type GroupResult struct {
	GroupName string
	Kind      shape.Kind
	OriginX   float64
	OriginY   float64
	Grid      rules.GridSpec
	Sort      *rules.SortSpec
	Changes   []Change
	Warnings  []string
	Errors    []string
}

// ChangedCount counts elements whose label actually changes.
func (g GroupResult) ChangedCount() int {
	return lo.CountBy(g.Changes, func(c Change) bool { return c.OldLabel != c.NewLabel })
}

// UnchangedCount counts elements whose label is already correct.
func (g GroupResult) UnchangedCount() int {
	return lo.CountBy(g.Changes, func(c Change) bool { return c.OldLabel == c.NewLabel })
}

// HasErrors reports whether the group has errors.
func (g GroupResult) HasErrors() bool { return len(g.Errors) > 0 }

// Report is the outcome of relabeling one document.
type Report struct {
	Path   string
	Groups []GroupResult
}

// HasErrors reports whether any group has errors.
func (r *Report) HasErrors() bool {
	return lo.SomeBy(r.Groups, func(g GroupResult) bool { return g.HasErrors() })
}

// TotalElements counts every element processed.
func (r *Report) TotalElements() int {
	return lo.SumBy(r.Groups, func(g GroupResult) int { return len(g.Changes) })
}

// TotalChanged counts elements with changed labels.
func (r *Report) TotalChanged() int {
	return lo.SumBy(r.Groups, func(g GroupResult) int { return g.ChangedCount() })
}

// RelabelDocument relabels every configured group. Changes are written to
// the document only when apply is set and the group has no errors.
func RelabelDocument(doc *svgdoc.Document, ruleSet *rules.RelabelRules, apply bool) *Report {
	report := &Report{Path: doc.Path()}
	for _, group := range ruleSet.Groups {
		gr := relabelGroup(doc.Root(), group, apply)
		logger.Debugf("relabel: group %s: %d elements, %d changed, %d errors",
			gr.GroupName, len(gr.Changes), gr.ChangedCount(), len(gr.Errors))
		report.Groups = append(report.Groups, gr)
	}
	return report
}

func relabelGroup(root *etree.Element, rule rules.RelabelGroup, apply bool) GroupResult {
	result := GroupResult{
		GroupName: rule.Name,
		Kind:      rule.Shape,
		Grid:      rule.Grid,
	}
	if rule.Sort.By != rules.SortNone {
		s := rule.Sort
		result.Sort = &s
	}

	group := svgdoc.FindGroupByLabel(root, rule.Name)
	if group == nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Group '%s' not found in SVG", rule.Name))
		return result
	}

	shapes := collectShapes(group, rule.Shape)
	if len(shapes) == 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("No %s shapes found in group '%s'", rule.Shape, rule.Name))
		return result
	}

	shapes = sortShapes(shapes, rule.Sort)

	originX, originY := autoOrigin(shapes)
	if rule.Origin != nil {
		originX, originY = rule.Origin.X, rule.Origin.Y
	}
	result.OriginX, result.OriginY = originX, originY

	offGridThreshold := math.Min(rule.Grid.X, rule.Grid.Y) * 0.5
	labelOwners := map[string][]string{}
	var labelOrder []string

	for _, s := range shapes {
		cx, cy := s.Center()
		oldLabel := svgdoc.Label(s.Element())

		devX, devY := gridDeviation(cx, cy, originX, originY, rule.Grid)
		if devX > offGridThreshold || devY > offGridThreshold {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"Element '%s' is off-grid by (%.3f, %.3f)mm (threshold: %.3fmm)",
				s.ID(), devX, devY, offGridThreshold))
		}

		indexX, indexY := gridIndex(cx, cy, originX, originY, rule)

		newLabel, err := GenerateLabel(rule.LabelTemplate, indexX, indexY, cx, cy, rule.Format)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to generate label for '%s': %v", s.ID(), err))
			continue
		}

		if _, seen := labelOwners[newLabel]; !seen {
			labelOrder = append(labelOrder, newLabel)
		}
		labelOwners[newLabel] = append(labelOwners[newLabel], s.ID())

		result.Changes = append(result.Changes, Change{
			ElementID: s.ID(),
			OldLabel:  oldLabel,
			NewLabel:  newLabel,
			CenterX:   cx,
			CenterY:   cy,
			GridX:     indexX,
			GridY:     indexY,
		})
	}

	// Duplicates key on the final formatted label; distinct raw indices
	// that format identically are still duplicates.
	for _, label := range labelOrder {
		if owners := labelOwners[label]; len(owners) > 1 {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"Duplicate label '%s' would be assigned to: %s", label, strings.Join(owners, ", ")))
		}
	}

	if apply && !result.HasErrors() {
		byID := lo.KeyBy(shapes, func(s shape.Shape) string { return s.ID() })
		for _, change := range result.Changes {
			if s, ok := byID[change.ElementID]; ok {
				svgdoc.SetLabel(s.Element(), change.NewLabel)
			}
		}
		if rule.Sort.By != rules.SortNone {
			reorderElements(group, shapes)
		}
	}

	return result
}

// collectShapes gathers shapes of the declared kind anywhere in the
// group's subtree, in document order.
func collectShapes(group *etree.Element, kind shape.Kind) []shape.Shape {
	var shapes []shape.Shape
	svgdoc.Walk(group, func(el *etree.Element) {
		if s := shape.Parse(el, kind); s != nil {
			shapes = append(shapes, s)
		}
	})
	return shapes
}

// autoOrigin is the minimum center coordinate per axis across shapes.
func autoOrigin(shapes []shape.Shape) (float64, float64) {
	if len(shapes) == 0 {
		return 0, 0
	}
	minX, minY := math.Inf(1), math.Inf(1)
	for _, s := range shapes {
		cx, cy := s.Center()
		minX = math.Min(minX, cx)
		minY = math.Min(minY, cy)
	}
	return minX, minY
}

// gridIndex computes the per-axis grid index of a shape center: rounded
// cell offset from the origin, sign-flipped for negative axes, plus the
// configured start index.
func gridIndex(cx, cy, originX, originY float64, rule rules.RelabelGroup) (int, int) {
	gx := int(math.RoundToEven((cx - originX) / rule.Grid.X))
	gy := int(math.RoundToEven((cy - originY) / rule.Grid.Y))

	if rule.Axis.XDirection == rules.DirectionNegative {
		gx = -gx
	}
	if rule.Axis.YDirection == rules.DirectionNegative {
		gy = -gy
	}
	return gx + rule.Index.XStart, gy + rule.Index.YStart
}

// gridDeviation is the distance from a shape center to the nearest grid
// point, per axis.
func gridDeviation(cx, cy, originX, originY float64, grid rules.GridSpec) (float64, float64) {
	_, devX := shape.CheckGridAlignment(cx-originX, grid.X, 0)
	_, devY := shape.CheckGridAlignment(cy-originY, grid.Y, 0)
	return devX, devY
}

// sortShapes stable-sorts shapes by the configured two-key comparator.
func sortShapes(shapes []shape.Shape, cfg rules.SortSpec) []shape.Shape {
	if cfg.By == rules.SortNone {
		return shapes
	}

	xSign, ySign := 1.0, 1.0
	if cfg.XOrder == rules.OrderDescending {
		xSign = -1
	}
	if cfg.YOrder == rules.OrderDescending {
		ySign = -1
	}

	sorted := make([]shape.Shape, len(shapes))
	copy(sorted, shapes)
	sort.SliceStable(sorted, func(i, j int) bool {
		xi, yi := sorted[i].Center()
		xj, yj := sorted[j].Center()
		var pi, si, pj, sj float64
		if cfg.By == rules.SortXThenY {
			pi, si = xSign*xi, ySign*yi
			pj, sj = xSign*xj, ySign*yj
		} else {
			pi, si = ySign*yi, xSign*xi
			pj, sj = ySign*yj, xSign*xj
		}
		if pi != pj {
			return pi < pj
		}
		return si < sj
	})
	return sorted
}

// reorderElements rewrites the group's direct children so shapes follow
// the sorted order. Non-shape children keep their relative order and are
// re-inserted before the shapes. Only shapes with an id participate;
// id-less elements stay with the preserved children.
func reorderElements(group *etree.Element, shapes []shape.Shape) {
	identified := lo.Filter(shapes, func(s shape.Shape, _ int) bool { return s.ID() != "" })
	shapeIDs := lo.SliceToMap(identified, func(s shape.Shape) (string, bool) { return s.ID(), true })

	var shapeElements, otherElements []*etree.Element
	for _, el := range group.ChildElements() {
		if shapeIDs[el.SelectAttrValue("id", "")] {
			shapeElements = append(shapeElements, el)
		} else {
			otherElements = append(otherElements, el)
		}
		group.RemoveChild(el)
	}

	for _, el := range otherElements {
		group.AddChild(el)
	}

	byID := lo.KeyBy(shapeElements, func(el *etree.Element) string {
		return el.SelectAttrValue("id", "")
	})
	for _, s := range identified {
		if el, ok := byID[s.ID()]; ok {
			group.AddChild(el)
		}
	}
}
