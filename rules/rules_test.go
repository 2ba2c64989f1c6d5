package rules

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridplate/gridplate/shape"
)

func TestParseFullConfig(t *testing.T) {
	cfg, err := Parse([]byte(`
align:
  tolerance:
    acceptable: 0.002
  groups:
    - name: holes
      shape: arc
      size: {width: 3.0, height: 3.0}
      grid: {x: 2.54, y: 2.54}
relabel:
  groups:
    - name: holes
      shape: arc
      label_template: "hole-{x}-{y}"
      grid: {x: 2.54, y: 2.54}
add_text:
  groups:
    - name: col-labels
      y: 0
      x_start: 0
      x_end: 25.4
      x_interval: 2.54
`))
	require.NoError(t, err)
	require.NotNil(t, cfg.Align)
	require.NotNil(t, cfg.Relabel)
	require.NotNil(t, cfg.AddText)

	assert.Equal(t, 0.002, cfg.Align.Tolerance.Acceptable)
	assert.Equal(t, shape.DefaultErrorThreshold, cfg.Align.Tolerance.ErrorThreshold)
	assert.Equal(t, shape.KindArc, cfg.Align.Groups[0].Shape)
}

func TestParseSectionsOptional(t *testing.T) {
	cfg, err := Parse([]byte(`
align:
  groups:
    - name: holes
      shape: rect
`))
	require.NoError(t, err)
	assert.NotNil(t, cfg.Align)
	assert.Nil(t, cfg.Relabel)
	assert.Nil(t, cfg.AddText)
	assert.Equal(t, shape.DefaultTolerance, cfg.Align.Tolerance.Acceptable)
}

func TestArcSpecDefaultsFullCircle(t *testing.T) {
	cfg, err := Parse([]byte(`
align:
  groups:
    - name: holes
      shape: arc
      arc: {}
`))
	require.NoError(t, err)
	arc := cfg.Align.Groups[0].Arc
	require.NotNil(t, arc)
	assert.Equal(t, 0.0, arc.Start)
	assert.InDelta(t, 2*math.Pi, arc.End, 1e-9)
}

func TestRelabelDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
relabel:
  groups:
    - name: holes
      shape: rect
      label_template: "{x}{y}"
      grid: {x: 2.54, y: 2.54}
`))
	require.NoError(t, err)
	g := cfg.Relabel.Groups[0]
	assert.Equal(t, DirectionPositive, g.Axis.XDirection)
	assert.Equal(t, DirectionPositive, g.Axis.YDirection)
	assert.Equal(t, 1, g.Index.XStart)
	assert.Equal(t, 1, g.Index.YStart)
	assert.Equal(t, FormatNumber, g.Format.XType)
	assert.Equal(t, FormatLetter, g.Format.YType)
	assert.Equal(t, SortNone, g.Sort.By)
	assert.Nil(t, g.Origin)
}

func TestAddTextDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
add_text:
  groups:
    - name: rows
      x: 0
      y_start: 0
      y_end: 7.62
      y_interval: 2.54
`))
	require.NoError(t, err)
	g := cfg.AddText.Groups[0]
	assert.Equal(t, DefaultFontFamily, g.Font.Family)
	assert.Equal(t, DefaultFontSize, g.Font.Size)
	assert.Equal(t, DefaultFontColor, g.Font.Color)
	assert.Equal(t, FormatNumber, g.Format.Type)
	assert.Equal(t, 1, g.Format.Start)
	assert.Equal(t, AlignBBoxCenter, g.Align)
	assert.True(t, g.Vertical())
	assert.False(t, g.Horizontal())
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			"align missing name",
			"align:\n  groups:\n    - shape: rect\n",
			"must have a name",
		},
		{
			"align bad shape",
			"align:\n  groups:\n    - name: g\n      shape: triangle\n",
			"unsupported shape type",
		},
		{
			"align zero grid",
			"align:\n  groups:\n    - name: g\n      shape: rect\n      grid: {x: 0, y: 2.54}\n",
			"grid spacing must be positive",
		},
		{
			"align negative grid",
			"align:\n  groups:\n    - name: g\n      shape: rect\n      grid: {x: -2.54, y: 2.54}\n",
			"grid spacing must be positive",
		},
		{
			"relabel missing template",
			"relabel:\n  groups:\n    - name: g\n      shape: rect\n      grid: {x: 2.54, y: 2.54}\n",
			"label_template is required",
		},
		{
			"relabel negative grid",
			"relabel:\n  groups:\n    - name: g\n      shape: rect\n      label_template: \"{x}\"\n      grid: {x: -2.54, y: 2.54}\n",
			"grid spacing must be positive",
		},
		{
			"relabel path shape",
			"relabel:\n  groups:\n    - name: g\n      shape: path\n      label_template: \"{x}\"\n      grid: {x: 2.54, y: 2.54}\n",
			"unsupported shape type",
		},
		{
			"relabel unknown placeholder",
			"relabel:\n  groups:\n    - name: g\n      shape: rect\n      label_template: \"{col}\"\n      grid: {x: 2.54, y: 2.54}\n",
			"unknown placeholder {col}",
		},
		{
			"relabel custom without labels",
			"relabel:\n  groups:\n    - name: g\n      shape: rect\n      label_template: \"{x}\"\n      grid: {x: 2.54, y: 2.54}\n      format: {x_type: custom}\n",
			"custom_x is required",
		},
		{
			"relabel bad direction",
			"relabel:\n  groups:\n    - name: g\n      shape: rect\n      label_template: \"{x}\"\n      grid: {x: 2.54, y: 2.54}\n      axis: {x_direction: up}\n",
			"invalid axis.x_direction",
		},
		{
			"relabel bad sort",
			"relabel:\n  groups:\n    - name: g\n      shape: rect\n      label_template: \"{x}\"\n      grid: {x: 2.54, y: 2.54}\n      sort: {by: diagonal}\n",
			"invalid sort.by",
		},
		{
			"add_text both orientations",
			"add_text:\n  groups:\n    - name: g\n      y: 0\n      x_start: 0\n      x_end: 10\n      x_interval: 2.54\n      x: 0\n      y_start: 0\n      y_end: 10\n      y_interval: 2.54\n",
			"cannot specify both",
		},
		{
			"add_text no orientation",
			"add_text:\n  groups:\n    - name: g\n",
			"must specify either",
		},
		{
			"add_text incomplete horizontal",
			"add_text:\n  groups:\n    - name: g\n      y: 0\n      x_start: 0\n",
			"requires x_end and x_interval",
		},
		{
			"add_text bad align",
			"add_text:\n  groups:\n    - name: g\n      y: 0\n      x_start: 0\n      x_end: 10\n      x_interval: 2.54\n      align: top_left\n",
			"invalid align value",
		},
		{
			"add_text custom without labels",
			"add_text:\n  groups:\n    - name: g\n      y: 0\n      x_start: 0\n      x_end: 10\n      x_interval: 2.54\n      format: {type: custom}\n",
			"format.custom is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("align: [not a map"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}
