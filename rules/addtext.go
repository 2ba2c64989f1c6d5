package rules

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Default font for generated text elements.
const (
	DefaultFontFamily = "Noto Sans CJK JP"
	DefaultFontSize   = 1.41111 // mm
	DefaultFontColor  = "#000000"
)

// FontSpec configures generated text elements.
type FontSpec struct {
	Family string  `yaml:"family"`
	Size   float64 `yaml:"size"`
	Color  string  `yaml:"color"`
}

// DefaultFont returns the standard font configuration.
func DefaultFont() FontSpec {
	return FontSpec{Family: DefaultFontFamily, Size: DefaultFontSize, Color: DefaultFontColor}
}

func (f *FontSpec) UnmarshalYAML(node *yaml.Node) error {
	type raw FontSpec
	r := raw(DefaultFont())
	if err := node.Decode(&r); err != nil {
		return err
	}
	*f = FontSpec(r)
	return nil
}

// TextFormatSpec controls the label sequence of a text line.
type TextFormatSpec struct {
	Type    FormatType `yaml:"type"`
	Padding int        `yaml:"padding"`
	Start   int        `yaml:"start"`
	Custom  []string   `yaml:"custom"`
}

// DefaultTextFormat numbers labels from 1.
func DefaultTextFormat() TextFormatSpec {
	return TextFormatSpec{Type: FormatNumber, Start: 1}
}

func (f *TextFormatSpec) UnmarshalYAML(node *yaml.Node) error {
	type raw TextFormatSpec
	r := raw(DefaultTextFormat())
	if err := node.Decode(&r); err != nil {
		return err
	}
	*f = TextFormatSpec(r)
	return nil
}

// AddTextGroup declares one run of generated text labels. Exactly one
// orientation must be configured: horizontal (y fixed, x varying) or
// vertical (x fixed, y varying). Pointer fields record presence.
type AddTextGroup struct {
	Name   string         `yaml:"name"`
	Font   FontSpec       `yaml:"font"`
	Format TextFormatSpec `yaml:"format"`
	Align  TextAlign      `yaml:"align"`

	Y         *float64 `yaml:"y"`
	XStart    *float64 `yaml:"x_start"`
	XEnd      *float64 `yaml:"x_end"`
	XInterval *float64 `yaml:"x_interval"`

	X         *float64 `yaml:"x"`
	YStart    *float64 `yaml:"y_start"`
	YEnd      *float64 `yaml:"y_end"`
	YInterval *float64 `yaml:"y_interval"`
}

func (g *AddTextGroup) UnmarshalYAML(node *yaml.Node) error {
	type raw AddTextGroup
	r := raw{
		Font:   DefaultFont(),
		Format: DefaultTextFormat(),
		Align:  AlignBBoxCenter,
	}
	if err := node.Decode(&r); err != nil {
		return err
	}
	*g = AddTextGroup(r)
	return nil
}

// Horizontal reports whether the group declares a horizontal run.
func (g *AddTextGroup) Horizontal() bool {
	return g.Y != nil && g.XStart != nil
}

// Vertical reports whether the group declares a vertical run.
func (g *AddTextGroup) Vertical() bool {
	return g.X != nil && g.YStart != nil
}

// AddTextRules is the add_text section of a rule file.
type AddTextRules struct {
	Groups []AddTextGroup `yaml:"groups"`
}

// Validate checks names, orientation exclusivity and completeness, the
// alignment mode, and format settings.
func (a *AddTextRules) Validate() error {
	for _, g := range a.Groups {
		if g.Name == "" {
			return fmt.Errorf("add_text: each group must have a name")
		}
		horizontal, vertical := g.Horizontal(), g.Vertical()
		if horizontal && vertical {
			return fmt.Errorf("add_text group %q: cannot specify both horizontal and vertical layouts", g.Name)
		}
		if !horizontal && !vertical {
			return fmt.Errorf("add_text group %q: must specify either a horizontal (y, x_start, x_end, x_interval) or vertical (x, y_start, y_end, y_interval) layout", g.Name)
		}
		if horizontal && (g.XEnd == nil || g.XInterval == nil) {
			return fmt.Errorf("add_text group %q: horizontal layout requires x_end and x_interval", g.Name)
		}
		if vertical && (g.YEnd == nil || g.YInterval == nil) {
			return fmt.Errorf("add_text group %q: vertical layout requires y_end and y_interval", g.Name)
		}
		switch g.Align {
		case AlignBBoxCenter, AlignBaselineCenter:
		default:
			return fmt.Errorf("add_text group %q: invalid align value %q", g.Name, g.Align)
		}
		switch g.Format.Type {
		case FormatNumber, FormatLetter, FormatLetterUpper, FormatCustom:
		default:
			return fmt.Errorf("add_text group %q: invalid format.type value %q", g.Name, g.Format.Type)
		}
		if g.Format.Type == FormatCustom && len(g.Format.Custom) == 0 {
			return fmt.Errorf("add_text group %q: format.custom is required when type is custom", g.Name)
		}
	}
	return nil
}
