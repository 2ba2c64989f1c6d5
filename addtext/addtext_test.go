package addtext

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridplate/gridplate/addtext/fontmetrics"
	"github.com/gridplate/gridplate/rules"
	"github.com/gridplate/gridplate/svgdoc"
)

func floatPtr(f float64) *float64 { return &f }

func parseDoc(t *testing.T) *svgdoc.Document {
	t.Helper()
	doc, err := svgdoc.Parse([]byte(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape"></svg>`))
	require.NoError(t, err)
	return doc
}

func horizontalRule(name string) rules.AddTextGroup {
	return rules.AddTextGroup{
		Name:      name,
		Font:      rules.DefaultFont(),
		Format:    rules.DefaultTextFormat(),
		Align:     rules.AlignBBoxCenter,
		Y:         floatPtr(1.0),
		XStart:    floatPtr(0),
		XEnd:      floatPtr(7.62),
		XInterval: floatPtr(2.54),
	}
}

func TestGeneratePositions(t *testing.T) {
	tests := []struct {
		name     string
		start    float64
		end      float64
		interval float64
		expected []float64
	}{
		{"even spacing", 0, 7.62, 2.54, []float64{0, 2.54, 5.08, 7.62}},
		{"single position", 5, 5, 2.54, []float64{5}},
		{"end not on interval", 0, 6, 2.54, []float64{0, 2.54, 5.08}},
		{"zero interval degenerates", 3, 10, 0, []float64{3}},
		{"negative interval degenerates", 3, 10, -1, []float64{3}},
		{"end before start", 10, 3, 2.54, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GeneratePositions(tt.start, tt.end, tt.interval)
			require.Len(t, got, len(tt.expected))
			for i, want := range tt.expected {
				assert.InDelta(t, want, got[i], 1e-9)
			}
		})
	}
}

func TestGeneratePositionsToleratesAccumulation(t *testing.T) {
	// 0.1 has no exact binary representation; the end point must still
	// be included after ten accumulating additions.
	got := GeneratePositions(0, 1.0, 0.1)
	assert.Len(t, got, 11)
}

func TestAddTextHorizontal(t *testing.T) {
	doc := parseDoc(t)
	ruleSet := &rules.AddTextRules{Groups: []rules.AddTextGroup{horizontalRule("cols")}}

	report := NewAnnotator(nil).AddText(doc, ruleSet, true)
	require.Len(t, report.Groups, 1)
	g := report.Groups[0]
	assert.Equal(t, OrientationHorizontal, g.Orientation)
	assert.Equal(t, 1.0, g.Fixed)
	require.Len(t, g.Elements, 4)
	assert.Empty(t, g.Errors)

	assert.Equal(t, "cols-text-1", g.Elements[0].ElementID)
	assert.Equal(t, "1", g.Elements[0].Text)
	assert.Equal(t, "4", g.Elements[3].Text)
	assert.InDelta(t, 7.62, g.Elements[3].GridX, 1e-9)
	assert.InDelta(t, 1.0, g.Elements[3].GridY, 1e-9)

	group := svgdoc.FindGroupByLabel(doc.Root(), "cols")
	require.NotNil(t, group)
	texts := group.ChildElements()
	require.Len(t, texts, 4)
	assert.Equal(t, "text", texts[0].Tag)
	assert.Equal(t, "1", texts[0].Text())
	assert.Contains(t, texts[0].SelectAttrValue("style", ""), "font-family:Noto Sans CJK JP")
}

func TestAddTextVertical(t *testing.T) {
	doc := parseDoc(t)
	rule := rules.AddTextGroup{
		Name:      "rows",
		Font:      rules.DefaultFont(),
		Format:    rules.TextFormatSpec{Type: rules.FormatLetterUpper, Start: 1},
		Align:     rules.AlignBBoxCenter,
		X:         floatPtr(-2.0),
		YStart:    floatPtr(0),
		YEnd:      floatPtr(5.08),
		YInterval: floatPtr(2.54),
	}
	ruleSet := &rules.AddTextRules{Groups: []rules.AddTextGroup{rule}}

	report := NewAnnotator(nil).AddText(doc, ruleSet, false)
	g := report.Groups[0]
	assert.Equal(t, OrientationVertical, g.Orientation)
	require.Len(t, g.Elements, 3)
	assert.Equal(t, "A", g.Elements[0].Text)
	assert.Equal(t, "C", g.Elements[2].Text)
	assert.InDelta(t, -2.0, g.Elements[1].GridX, 1e-9)
	assert.InDelta(t, 2.54, g.Elements[1].GridY, 1e-9)
}

func TestAddTextDryRunDoesNotAttach(t *testing.T) {
	doc := parseDoc(t)
	ruleSet := &rules.AddTextRules{Groups: []rules.AddTextGroup{horizontalRule("cols")}}

	NewAnnotator(nil).AddText(doc, ruleSet, false)
	assert.Nil(t, svgdoc.FindGroupByLabel(doc.Root(), "cols"))
}

func TestAddTextBBoxCenterOffsets(t *testing.T) {
	doc := parseDoc(t)
	rule := horizontalRule("cols")
	rule.Font.Size = 2.0
	rule.XEnd = rule.XStart
	ruleSet := &rules.AddTextRules{Groups: []rules.AddTextGroup{rule}}

	report := NewAnnotator(nil).AddText(doc, ruleSet, false)
	e := report.Groups[0].Elements[0]

	// Estimated "1" at size 2: width 1.0, cap height 1.5, left bearing 0,
	// top bearing -1.5. bbox_center shifts x by -0.5 and y by +0.75.
	assert.InDelta(t, -0.5, e.TextX-e.GridX, 1e-9)
	assert.InDelta(t, 0.75, e.TextY-e.GridY, 1e-9)
}

func TestAddTextBaselineCenterOffsets(t *testing.T) {
	doc := parseDoc(t)
	rule := horizontalRule("cols")
	rule.Font.Size = 2.0
	rule.Align = rules.AlignBaselineCenter
	rule.XEnd = rule.XStart
	ruleSet := &rules.AddTextRules{Groups: []rules.AddTextGroup{rule}}

	report := NewAnnotator(nil).AddText(doc, ruleSet, false)
	e := report.Groups[0].Elements[0]
	assert.InDelta(t, -0.5, e.TextX-e.GridX, 1e-9)
	assert.InDelta(t, 0.0, e.TextY-e.GridY, 1e-9)
}

func TestAddTextSkipMarkerErrors(t *testing.T) {
	doc := parseDoc(t)
	rule := horizontalRule("cols")
	rule.Format = rules.TextFormatSpec{
		Type:   rules.FormatCustom,
		Start:  1,
		Custom: []string{"GND", "_", "VCC", "SIG"},
	}
	ruleSet := &rules.AddTextRules{Groups: []rules.AddTextGroup{rule}}

	report := NewAnnotator(nil).AddText(doc, ruleSet, true)
	g := report.Groups[0]
	require.Len(t, g.Errors, 1)
	assert.Contains(t, g.Errors[0], "index 2")
	require.Len(t, g.Elements, 3)
	assert.Equal(t, "GND", g.Elements[0].Text)
	assert.Equal(t, "VCC", g.Elements[1].Text)

	// Errors suppress attachment.
	assert.Nil(t, svgdoc.FindGroupByLabel(doc.Root(), "cols"))
	assert.True(t, report.HasErrors())
}

// failingProvider always errors, forcing the estimator fallback.
type failingProvider struct{}

func (failingProvider) Measure(string, string, float64) (fontmetrics.Metrics, error) {
	return fontmetrics.Metrics{}, errors.New("no fonts")
}

// fixedProvider returns the same metrics for every string.
type fixedProvider struct{ m fontmetrics.Metrics }

func (p fixedProvider) Measure(string, string, float64) (fontmetrics.Metrics, error) {
	return p.m, nil
}

func TestAddTextFallsBackToEstimator(t *testing.T) {
	doc := parseDoc(t)
	rule := horizontalRule("cols")
	rule.Font.Size = 2.0
	rule.XEnd = rule.XStart
	ruleSet := &rules.AddTextRules{Groups: []rules.AddTextGroup{rule}}

	report := NewAnnotator(failingProvider{}).AddText(doc, ruleSet, false)
	e := report.Groups[0].Elements[0]
	assert.InDelta(t, -0.5, e.TextX-e.GridX, 1e-9)
}

func TestAddTextUsesProviderMetrics(t *testing.T) {
	doc := parseDoc(t)
	rule := horizontalRule("cols")
	rule.XEnd = rule.XStart
	ruleSet := &rules.AddTextRules{Groups: []rules.AddTextGroup{rule}}

	provider := fixedProvider{m: fontmetrics.Metrics{
		Width: 1.2, Height: 1.0, LeftBearing: 0.1, TopBearing: -0.9,
	}}
	report := NewAnnotator(provider).AddText(doc, ruleSet, false)
	e := report.Groups[0].Elements[0]
	assert.InDelta(t, -0.7, e.TextX-e.GridX, 1e-9) // -(0.1 + 1.2/2)
	assert.InDelta(t, 0.4, e.TextY-e.GridY, 1e-9)  // -(-0.9 + 1.0/2)
}
