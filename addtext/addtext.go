// Package addtext generates rows and columns of positioned text labels
// (printed legends) along a fixed axis. Text is centered on each grid
// point using real font metrics when available, estimated metrics
// otherwise.
package addtext

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/flanksource/commons/logger"
	"github.com/samber/lo"

	"github.com/gridplate/gridplate/addtext/fontmetrics"
	"github.com/gridplate/gridplate/relabel"
	"github.com/gridplate/gridplate/rules"
	"github.com/gridplate/gridplate/svgdoc"
)

// Orientation of a generated text run.
const (
	OrientationHorizontal = "horizontal"
	OrientationVertical   = "vertical"
)

// ElementInfo describes one created text element.
type ElementInfo struct {
	ElementID string
	Text      string
	GridX     float64 // grid point the text centers on, mm
	GridY     float64
	TextX     float64 // final text anchor (baseline left), mm
	TextY     float64
}

// GroupResult is the outcome of generating one text run.
type GroupResult struct {
	GroupName   string
	Orientation string
	Fixed       float64 // the constant coordinate: y for horizontal, x for vertical
	Start       float64
	End         float64
	Interval    float64
	Elements    []ElementInfo
	Warnings    []string
	Errors      []string
}

// ElementCount is the number of elements created.
func (g GroupResult) ElementCount() int { return len(g.Elements) }

// HasErrors reports whether the group has errors.
func (g GroupResult) HasErrors() bool { return len(g.Errors) > 0 }

// Report is the outcome of text generation for one document.
type Report struct {
	Path   string
	Groups []GroupResult
}

// HasErrors reports whether any group has errors.
func (r *Report) HasErrors() bool {
	return lo.SomeBy(r.Groups, func(g GroupResult) bool { return g.HasErrors() })
}

// TotalElements counts every created element.
func (r *Report) TotalElements() int {
	return lo.SumBy(r.Groups, func(g GroupResult) int { return g.ElementCount() })
}

// Annotator creates text runs, measuring labels with the injected
// metrics provider and degrading to estimation on any failure.
type Annotator struct {
	metrics  fontmetrics.Provider
	fallback fontmetrics.Estimator
}

// NewAnnotator creates an annotator. A nil provider measures everything
// with the built-in estimator.
func NewAnnotator(metrics fontmetrics.Provider) *Annotator {
	return &Annotator{metrics: metrics}
}

// AddText generates every configured text run. A run's group element is
// attached to the document root only when apply is set and the run has
// no errors.
func (a *Annotator) AddText(doc *svgdoc.Document, ruleSet *rules.AddTextRules, apply bool) *Report {
	report := &Report{Path: doc.Path()}
	for _, rule := range ruleSet.Groups {
		groupEl, gr := a.createGroup(rule, rule.Name+"-text")
		logger.Debugf("add_text: group %s: %d elements, %d errors", gr.GroupName, gr.ElementCount(), len(gr.Errors))
		report.Groups = append(report.Groups, gr)

		if apply && !gr.HasErrors() {
			doc.Root().AddChild(groupEl)
		}
	}
	return report
}

func (a *Annotator) createGroup(rule rules.AddTextGroup, idPrefix string) (*etree.Element, GroupResult) {
	group := etree.NewElement("g")
	group.CreateAttr("id", rule.Name)
	group.CreateAttr(svgdoc.AttrLabel, rule.Name)

	result := GroupResult{GroupName: rule.Name}
	if rule.Horizontal() {
		result.Orientation = OrientationHorizontal
		result.Fixed = *rule.Y
		result.Start, result.End, result.Interval = *rule.XStart, *rule.XEnd, *rule.XInterval
	} else {
		result.Orientation = OrientationVertical
		result.Fixed = *rule.X
		result.Start, result.End, result.Interval = *rule.YStart, *rule.YEnd, *rule.YInterval
	}

	for i, pos := range GeneratePositions(result.Start, result.End, result.Interval) {
		index := rule.Format.Start + i

		label, err := relabel.FormatIndex(index, rule.Format.Type, rule.Format.Padding, rule.Format.Custom)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to generate label at index %d: %v", index, err))
			continue
		}

		gridX, gridY := pos, result.Fixed
		if result.Orientation == OrientationVertical {
			gridX, gridY = result.Fixed, pos
		}

		el, info := a.createTextElement(gridX, gridY, label, rule, fmt.Sprintf("%s-%d", idPrefix, i+1))
		group.AddChild(el)
		result.Elements = append(result.Elements, info)
	}

	return group, result
}

// createTextElement places a text element so the label lands on the grid
// point per the rule's alignment mode. SVG text anchors at the baseline
// left, so the offset shifts the anchor by the measured bearings.
func (a *Annotator) createTextElement(gridX, gridY float64, text string, rule rules.AddTextGroup, elementID string) (*etree.Element, ElementInfo) {
	m := a.measure(rule.Font.Family, text, rule.Font.Size)

	offsetX := -(m.LeftBearing + m.Width/2)
	offsetY := 0.0
	if rule.Align == rules.AlignBBoxCenter {
		offsetY = -(m.TopBearing + m.Height/2)
	}

	textX := gridX + offsetX
	textY := gridY + offsetY

	el := etree.NewElement("text")
	el.CreateAttr("id", elementID)
	el.CreateAttr("x", fmt.Sprintf("%.6f", textX))
	el.CreateAttr("y", fmt.Sprintf("%.6f", textY))
	el.CreateAttr("style", fmt.Sprintf("font-family:%s;font-size:%vpx;fill:%s",
		rule.Font.Family, rule.Font.Size, rule.Font.Color))
	el.SetText(text)

	return el, ElementInfo{
		ElementID: elementID,
		Text:      text,
		GridX:     gridX,
		GridY:     gridY,
		TextX:     textX,
		TextY:     textY,
	}
}

// measure never fails: any provider error degrades to estimation.
func (a *Annotator) measure(family, text string, size float64) fontmetrics.Metrics {
	if a.metrics != nil {
		m, err := a.metrics.Measure(family, text, size)
		if err == nil {
			return m
		}
		logger.Debugf("font metrics for %q unavailable, estimating: %v", family, err)
	}
	m, _ := a.fallback.Measure(family, text, size)
	return m
}

// GeneratePositions lists grid positions from start to end, inclusive
// of the end point within a 0.1%-of-interval tolerance. A non-positive
// interval degenerates to the start position alone.
func GeneratePositions(start, end, interval float64) []float64 {
	if interval <= 0 {
		return []float64{start}
	}
	var positions []float64
	tolerance := interval * 0.001
	for pos := start; pos <= end+tolerance; pos += interval {
		positions = append(positions, pos)
	}
	return positions
}
