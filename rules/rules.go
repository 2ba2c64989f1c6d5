// Package rules defines the YAML rule configuration consumed by the
// align, relabel, and add_text engines. Each section is optional; its
// presence controls whether the corresponding pipeline step runs.
// Structural problems (missing fields, bad enums, zero grid spacing) are
// caught by Validate before any document is touched.
package rules

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gridplate/gridplate/shape"
)

// FormatType selects how a 1-based index renders as text.
type FormatType string

const (
	FormatNumber      FormatType = "number"
	FormatLetter      FormatType = "letter"
	FormatLetterUpper FormatType = "letter_upper"
	FormatCustom      FormatType = "custom"
)

// Direction orients a relabel axis.
type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
)

// SortBy selects the relabel sort comparator.
type SortBy string

const (
	SortNone   SortBy = "none"
	SortXThenY SortBy = "x_then_y"
	SortYThenX SortBy = "y_then_x"
)

// SortOrder orients one sort axis.
type SortOrder string

const (
	OrderAscending  SortOrder = "ascending"
	OrderDescending SortOrder = "descending"
)

// TextAlign selects how generated text is positioned on its grid point.
type TextAlign string

const (
	AlignBBoxCenter     TextAlign = "bbox_center"
	AlignBaselineCenter TextAlign = "baseline_center"
)

// Config is a complete rule file. Nil sections are skipped by the
// pipeline.
type Config struct {
	Align   *AlignRules   `yaml:"align"`
	Relabel *RelabelRules `yaml:"relabel"`
	AddText *AddTextRules `yaml:"add_text"`
}

// Load reads, parses, and validates a YAML rule file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid rule file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse parses and validates YAML rule content.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every present section.
func (c *Config) Validate() error {
	if c.Align != nil {
		if err := c.Align.Validate(); err != nil {
			return err
		}
	}
	if c.Relabel != nil {
		if err := c.Relabel.Validate(); err != nil {
			return err
		}
	}
	if c.AddText != nil {
		if err := c.AddText.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Tolerance is the deviation budget shared by an align rule set.
type Tolerance struct {
	Acceptable     float64 `yaml:"acceptable"`
	ErrorThreshold float64 `yaml:"error_threshold"`
}

// DefaultTolerance returns the standard tolerance configuration.
func DefaultTolerance() Tolerance {
	return Tolerance{
		Acceptable:     shape.DefaultTolerance,
		ErrorThreshold: shape.DefaultErrorThreshold,
	}
}

func (t *Tolerance) UnmarshalYAML(node *yaml.Node) error {
	type raw Tolerance
	r := raw(DefaultTolerance())
	if err := node.Decode(&r); err != nil {
		return err
	}
	*t = Tolerance(r)
	return nil
}

// GridSpec is the expected spacing between shape centers, in mm.
type GridSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// SizeSpec is a target shape size, in mm.
type SizeSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// ArcSpec is a target arc angle range, in radians. Defaults describe a
// full circle.
type ArcSpec struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

func (a *ArcSpec) UnmarshalYAML(node *yaml.Node) error {
	type raw ArcSpec
	r := raw{Start: 0, End: 2 * math.Pi}
	if err := node.Decode(&r); err != nil {
		return err
	}
	*a = ArcSpec(r)
	return nil
}

// AlignGroup declares the alignment rules for one named group.
type AlignGroup struct {
	Name  string     `yaml:"name"`
	Shape shape.Kind `yaml:"shape"`
	Grid  *GridSpec  `yaml:"grid"`
	Size  *SizeSpec  `yaml:"size"`
	Arc   *ArcSpec   `yaml:"arc"`
}

// AlignRules is the align section of a rule file.
type AlignRules struct {
	Groups    []AlignGroup `yaml:"groups"`
	Tolerance Tolerance    `yaml:"tolerance"`
}

func (a *AlignRules) UnmarshalYAML(node *yaml.Node) error {
	type raw AlignRules
	r := raw{Tolerance: DefaultTolerance()}
	if err := node.Decode(&r); err != nil {
		return err
	}
	*a = AlignRules(r)
	return nil
}

// Validate checks group names, shapes, and grid spacings.
func (a *AlignRules) Validate() error {
	for _, g := range a.Groups {
		if g.Name == "" {
			return fmt.Errorf("align: each group must have a name")
		}
		switch g.Shape {
		case shape.KindRect, shape.KindArc, shape.KindPath:
		default:
			return fmt.Errorf("align group %q: unsupported shape type %q", g.Name, g.Shape)
		}
		if g.Grid != nil && (g.Grid.X <= 0 || g.Grid.Y <= 0) {
			return fmt.Errorf("align group %q: grid spacing must be positive", g.Name)
		}
	}
	return nil
}
