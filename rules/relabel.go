package rules

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/gridplate/gridplate/shape"
)

// OriginSpec is an explicit relabel origin, in mm.
type OriginSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// AxisSpec orients the relabel axes.
type AxisSpec struct {
	XDirection Direction `yaml:"x_direction"`
	YDirection Direction `yaml:"y_direction"`
}

func (a *AxisSpec) UnmarshalYAML(node *yaml.Node) error {
	type raw AxisSpec
	r := raw{XDirection: DirectionPositive, YDirection: DirectionPositive}
	if err := node.Decode(&r); err != nil {
		return err
	}
	*a = AxisSpec(r)
	return nil
}

// IndexSpec sets the index assigned to the origin cell on each axis.
type IndexSpec struct {
	XStart int `yaml:"x_start"`
	YStart int `yaml:"y_start"`
}

func (ix *IndexSpec) UnmarshalYAML(node *yaml.Node) error {
	type raw IndexSpec
	r := raw{XStart: 1, YStart: 1}
	if err := node.Decode(&r); err != nil {
		return err
	}
	*ix = IndexSpec(r)
	return nil
}

// FormatSpec controls how the per-axis indices render inside a label.
type FormatSpec struct {
	XType    FormatType `yaml:"x_type"`
	YType    FormatType `yaml:"y_type"`
	XPadding int        `yaml:"x_padding"`
	YPadding int        `yaml:"y_padding"`
	CustomX  []string   `yaml:"custom_x"`
	CustomY  []string   `yaml:"custom_y"`
}

// DefaultFormat numbers columns and letters rows.
func DefaultFormat() FormatSpec {
	return FormatSpec{XType: FormatNumber, YType: FormatLetter}
}

func (f *FormatSpec) UnmarshalYAML(node *yaml.Node) error {
	type raw FormatSpec
	r := raw(DefaultFormat())
	if err := node.Decode(&r); err != nil {
		return err
	}
	*f = FormatSpec(r)
	return nil
}

// SortSpec orders shapes before index assignment and element reordering.
type SortSpec struct {
	By     SortBy    `yaml:"by"`
	XOrder SortOrder `yaml:"x_order"`
	YOrder SortOrder `yaml:"y_order"`
}

// DefaultSort leaves document order untouched.
func DefaultSort() SortSpec {
	return SortSpec{By: SortNone, XOrder: OrderAscending, YOrder: OrderAscending}
}

func (s *SortSpec) UnmarshalYAML(node *yaml.Node) error {
	type raw SortSpec
	r := raw(DefaultSort())
	if err := node.Decode(&r); err != nil {
		return err
	}
	*s = SortSpec(r)
	return nil
}

// RelabelGroup declares the relabeling rules for one named group.
type RelabelGroup struct {
	Name          string      `yaml:"name"`
	Shape         shape.Kind  `yaml:"shape"`
	LabelTemplate string      `yaml:"label_template"`
	Grid          GridSpec    `yaml:"grid"`
	Origin        *OriginSpec `yaml:"origin"`
	Axis          AxisSpec    `yaml:"axis"`
	Index         IndexSpec   `yaml:"index"`
	Format        FormatSpec  `yaml:"format"`
	Sort          SortSpec    `yaml:"sort"`
}

func (g *RelabelGroup) UnmarshalYAML(node *yaml.Node) error {
	type raw RelabelGroup
	r := raw{
		Axis:   AxisSpec{XDirection: DirectionPositive, YDirection: DirectionPositive},
		Index:  IndexSpec{XStart: 1, YStart: 1},
		Format: DefaultFormat(),
		Sort:   DefaultSort(),
	}
	if err := node.Decode(&r); err != nil {
		return err
	}
	*g = RelabelGroup(r)
	return nil
}

// RelabelRules is the relabel section of a rule file.
type RelabelRules struct {
	Groups []RelabelGroup `yaml:"groups"`
}

// templatePlaceholder matches {name} substitution fields in a label
// template.
var templatePlaceholder = regexp.MustCompile(`\{([a-z_]+)\}`)

var knownPlaceholders = map[string]bool{
	"x": true, "y": true, "x_raw": true, "y_raw": true, "cx": true, "cy": true,
}

// Validate checks required fields, enum values, custom label lists, grid
// spacings, and template placeholders.
func (r *RelabelRules) Validate() error {
	for _, g := range r.Groups {
		if g.Name == "" {
			return fmt.Errorf("relabel: each group must have a name")
		}
		switch g.Shape {
		case shape.KindRect, shape.KindArc:
		default:
			return fmt.Errorf("relabel group %q: unsupported shape type %q", g.Name, g.Shape)
		}
		if g.LabelTemplate == "" {
			return fmt.Errorf("relabel group %q: label_template is required", g.Name)
		}
		if g.Grid.X <= 0 || g.Grid.Y <= 0 {
			return fmt.Errorf("relabel group %q: grid spacing must be positive", g.Name)
		}
		if err := validateDirection(g.Name, "x_direction", g.Axis.XDirection); err != nil {
			return err
		}
		if err := validateDirection(g.Name, "y_direction", g.Axis.YDirection); err != nil {
			return err
		}
		if err := validateFormatType(g.Name, "x_type", g.Format.XType); err != nil {
			return err
		}
		if err := validateFormatType(g.Name, "y_type", g.Format.YType); err != nil {
			return err
		}
		if g.Format.XType == FormatCustom && len(g.Format.CustomX) == 0 {
			return fmt.Errorf("relabel group %q: format.custom_x is required when x_type is custom", g.Name)
		}
		if g.Format.YType == FormatCustom && len(g.Format.CustomY) == 0 {
			return fmt.Errorf("relabel group %q: format.custom_y is required when y_type is custom", g.Name)
		}
		switch g.Sort.By {
		case SortNone, SortXThenY, SortYThenX:
		default:
			return fmt.Errorf("relabel group %q: invalid sort.by value %q", g.Name, g.Sort.By)
		}
		if err := validateOrder(g.Name, "x_order", g.Sort.XOrder); err != nil {
			return err
		}
		if err := validateOrder(g.Name, "y_order", g.Sort.YOrder); err != nil {
			return err
		}
		for _, m := range templatePlaceholder.FindAllStringSubmatch(g.LabelTemplate, -1) {
			if !knownPlaceholders[m[1]] {
				return fmt.Errorf("relabel group %q: unknown placeholder {%s} in label_template", g.Name, m[1])
			}
		}
	}
	return nil
}

func validateDirection(group, field string, d Direction) error {
	switch d {
	case DirectionPositive, DirectionNegative:
		return nil
	}
	return fmt.Errorf("relabel group %q: invalid axis.%s value %q", group, field, d)
}

func validateFormatType(group, field string, t FormatType) error {
	switch t {
	case FormatNumber, FormatLetter, FormatLetterUpper, FormatCustom:
		return nil
	}
	return fmt.Errorf("relabel group %q: invalid format.%s value %q", group, field, t)
}

func validateOrder(group, field string, o SortOrder) error {
	switch o {
	case OrderAscending, OrderDescending:
		return nil
	}
	return fmt.Errorf("relabel group %q: invalid sort.%s value %q", group, field, o)
}
