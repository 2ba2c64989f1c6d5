// Package align validates shape geometry against grid, size, and arc
// rules and optionally corrects fixable deviations in place. Issues are
// classified per field as ok, fixable, or error; a shape with any error
// is never touched by the fixer.
package align

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/flanksource/commons/logger"
	"github.com/samber/lo"

	"github.com/gridplate/gridplate/rules"
	"github.com/gridplate/gridplate/shape"
	"github.com/gridplate/gridplate/svgdoc"
)

// Issue is one validation finding for a single field of a shape.
type Issue struct {
	ElementID string
	Field     string
	Status    shape.Status
	Actual    float64
	Expected  float64
	Deviation float64
	Message   string
}

// Result collects the issues found on one element. Only non-ok findings
// are recorded.
type Result struct {
	ElementID string
	Kind      shape.Kind
	Issues    []Issue
}

// HasErrors reports whether any field is beyond fixing.
func (r Result) HasErrors() bool {
	return lo.SomeBy(r.Issues, func(i Issue) bool { return i.Status == shape.StatusError })
}

// HasFixable reports whether any field has a correctable deviation.
func (r Result) HasFixable() bool {
	return lo.SomeBy(r.Issues, func(i Issue) bool { return i.Status == shape.StatusFixable })
}

// IsOK reports whether every checked field was within tolerance.
func (r Result) IsOK() bool {
	return lo.EveryBy(r.Issues, func(i Issue) bool { return i.Status == shape.StatusOK })
}

// GroupResult aggregates element results for one rule group.
type GroupResult struct {
	GroupName string
	Kind      shape.Kind
	Results   []Result
}

// HasErrors reports whether any element in the group has an error.
func (g GroupResult) HasErrors() bool {
	return lo.SomeBy(g.Results, func(r Result) bool { return r.HasErrors() })
}

// ErrorCount counts elements with errors.
func (g GroupResult) ErrorCount() int {
	return lo.CountBy(g.Results, func(r Result) bool { return r.HasErrors() })
}

// FixableCount counts elements with fixable issues and no errors.
func (g GroupResult) FixableCount() int {
	return lo.CountBy(g.Results, func(r Result) bool { return r.HasFixable() && !r.HasErrors() })
}

// OKCount counts elements with no issues at all.
func (g GroupResult) OKCount() int {
	return lo.CountBy(g.Results, func(r Result) bool { return r.IsOK() })
}

// Report is the outcome of validating one document.
type Report struct {
	Path   string
	Groups []GroupResult
}

// HasErrors reports whether any group has an error.
func (r *Report) HasErrors() bool {
	return lo.SomeBy(r.Groups, func(g GroupResult) bool { return g.HasErrors() })
}

// TotalElements counts every element checked.
func (r *Report) TotalElements() int {
	return lo.SumBy(r.Groups, func(g GroupResult) int { return len(g.Results) })
}

// TotalErrors counts elements with errors across all groups.
func (r *Report) TotalErrors() int {
	return lo.SumBy(r.Groups, func(g GroupResult) int { return g.ErrorCount() })
}

// TotalFixable counts elements with fixable issues across all groups.
func (r *Report) TotalFixable() int {
	return lo.SumBy(r.Groups, func(g GroupResult) int { return g.FixableCount() })
}

// ValidateDocument validates every configured group of a document and,
// when fix is set, corrects fixable issues on shapes that have no errors.
// A group absent from the document yields an empty result.
func ValidateDocument(doc *svgdoc.Document, ruleSet *rules.AlignRules, fix bool) *Report {
	report := &Report{Path: doc.Path()}
	for _, group := range ruleSet.Groups {
		gr := validateGroup(doc.Root(), group, ruleSet.Tolerance, fix)
		logger.Debugf("align: group %s: %d elements, %d ok, %d fixable, %d errors",
			gr.GroupName, len(gr.Results), gr.OKCount(), gr.FixableCount(), gr.ErrorCount())
		report.Groups = append(report.Groups, gr)
	}
	return report
}

func validateGroup(root *etree.Element, rule rules.AlignGroup, tol rules.Tolerance, fix bool) GroupResult {
	result := GroupResult{GroupName: rule.Name, Kind: rule.Shape}

	group := svgdoc.FindGroupByLabel(root, rule.Name)
	if group == nil {
		logger.Warnf("align: group %q not found in SVG", rule.Name)
		return result
	}

	for _, s := range collectShapes(group, rule.Shape) {
		var res Result
		switch v := s.(type) {
		case *shape.Rect:
			res = validateRect(v, rule, tol)
		case *shape.Arc:
			res = validateArc(v, rule, tol)
		default:
			continue
		}
		result.Results = append(result.Results, res)

		if fix && res.HasFixable() && !res.HasErrors() {
			fixShape(s, res, rule)
		}
	}
	return result
}

// collectShapes gathers shapes of the declared kind anywhere in the
// group's subtree. Only rects and arcs participate in validation.
func collectShapes(group *etree.Element, kind shape.Kind) []shape.Shape {
	if kind != shape.KindRect && kind != shape.KindArc {
		return nil
	}
	var shapes []shape.Shape
	svgdoc.Walk(group, func(el *etree.Element) {
		if s := shape.Parse(el, kind); s != nil {
			shapes = append(shapes, s)
		}
	})
	return shapes
}

func validateRect(r *shape.Rect, rule rules.AlignGroup, tol rules.Tolerance) Result {
	result := Result{ElementID: r.ID(), Kind: shape.KindRect}

	if rule.Size != nil {
		checkMatch(&result, r.ID(), "width", r.Width, rule.Size.Width, tol)
		checkMatch(&result, r.ID(), "height", r.Height, rule.Size.Height, tol)
	}

	// Grid checks use the original (pre-fix) center; position fixes are
	// size-aware and applied later.
	if rule.Grid != nil {
		cx, cy := r.Center()
		checkGrid(&result, r.ID(), "center_x", cx, rule.Grid.X, tol)
		checkGrid(&result, r.ID(), "center_y", cy, rule.Grid.Y, tol)
	}
	return result
}

func validateArc(a *shape.Arc, rule rules.AlignGroup, tol rules.Tolerance) Result {
	result := Result{ElementID: a.ID(), Kind: shape.KindArc}

	if rule.Arc != nil {
		checkMatch(&result, a.ID(), "start", a.Start, rule.Arc.Start, tol)
		checkMatch(&result, a.ID(), "end", a.End, rule.Arc.End, tol)
	}
	if rule.Size != nil {
		checkMatch(&result, a.ID(), "diameter_x", a.RX*2, rule.Size.Width, tol)
		checkMatch(&result, a.ID(), "diameter_y", a.RY*2, rule.Size.Height, tol)
	}
	if rule.Grid != nil {
		checkGrid(&result, a.ID(), "center_x", a.CX, rule.Grid.X, tol)
		checkGrid(&result, a.ID(), "center_y", a.CY, rule.Grid.Y, tol)
	}
	return result
}

// checkMatch records an issue when actual deviates from expected.
func checkMatch(result *Result, id, field string, actual, expected float64, tol rules.Tolerance) {
	status, dev := shape.CheckValueMatch(actual, expected, tol.Acceptable, tol.ErrorThreshold)
	if status == shape.StatusOK {
		return
	}
	result.Issues = append(result.Issues, Issue{
		ElementID: id,
		Field:     field,
		Status:    status,
		Actual:    actual,
		Expected:  expected,
		Deviation: dev,
		Message:   fmt.Sprintf("%s=%.6f (expected: %v)", field, actual, expected),
	})
}

// checkGrid records an issue when value is off its grid. The deviation
// ratio relative to the grid unit decides fixable versus error.
func checkGrid(result *Result, id, field string, value, gridUnit float64, tol rules.Tolerance) {
	aligned, dev := shape.CheckGridAlignment(value, gridUnit, tol.Acceptable)
	if aligned {
		return
	}
	ratio := dev / gridUnit
	status := shape.StatusFixable
	if ratio > tol.ErrorThreshold {
		status = shape.StatusError
	}
	result.Issues = append(result.Issues, Issue{
		ElementID: id,
		Field:     field,
		Status:    status,
		Actual:    value,
		Expected:  shape.SnapToGrid(value, gridUnit),
		Deviation: dev,
		Message:   fmt.Sprintf("%s=%.6f (remainder: %.6f)", field, value, dev),
	})
}

func fixShape(s shape.Shape, result Result, rule rules.AlignGroup) {
	switch v := s.(type) {
	case *shape.Rect:
		fixRect(v, result, rule)
	case *shape.Arc:
		fixArc(v, result, rule)
	}
}

// fixRect corrects fixable issues, size first so the position correction
// uses the new half-width and half-height.
func fixRect(r *shape.Rect, result Result, rule rules.AlignGroup) {
	for _, issue := range result.Issues {
		if issue.Status != shape.StatusFixable {
			continue
		}
		switch {
		case issue.Field == "width" && rule.Size != nil:
			r.SetWidth(rule.Size.Width)
		case issue.Field == "height" && rule.Size != nil:
			r.SetHeight(rule.Size.Height)
		}
	}
	for _, issue := range result.Issues {
		if issue.Status != shape.StatusFixable {
			continue
		}
		switch {
		case issue.Field == "center_x" && rule.Grid != nil:
			r.SetX(issue.Expected - r.Width/2)
		case issue.Field == "center_y" && rule.Grid != nil:
			r.SetY(issue.Expected - r.Height/2)
		}
	}
}

// fixArc corrects fixable issues, arc parameters and radii first, then
// the explicitly stored center.
func fixArc(a *shape.Arc, result Result, rule rules.AlignGroup) {
	for _, issue := range result.Issues {
		if issue.Status != shape.StatusFixable {
			continue
		}
		switch {
		case issue.Field == "start" && rule.Arc != nil:
			a.SetStart(rule.Arc.Start)
		case issue.Field == "end" && rule.Arc != nil:
			a.SetEnd(rule.Arc.End)
		case issue.Field == "diameter_x" && rule.Size != nil:
			a.SetRX(rule.Size.Width / 2)
		case issue.Field == "diameter_y" && rule.Size != nil:
			a.SetRY(rule.Size.Height / 2)
		}
	}
	for _, issue := range result.Issues {
		if issue.Status != shape.StatusFixable {
			continue
		}
		switch {
		case issue.Field == "center_x" && rule.Grid != nil:
			a.SetCX(issue.Expected)
		case issue.Field == "center_y" && rule.Grid != nil:
			a.SetCY(issue.Expected)
		}
	}
}
