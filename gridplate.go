// Package gridplate validates, relabels, and annotates panel layout
// SVG files against declarative YAML rules. The root package is a thin
// facade over the step packages for callers that do not need the
// individual engines.
package gridplate

import (
	"github.com/gridplate/gridplate/addtext"
	"github.com/gridplate/gridplate/addtext/fontmetrics"
	"github.com/gridplate/gridplate/align"
	"github.com/gridplate/gridplate/pipeline"
	"github.com/gridplate/gridplate/relabel"
	"github.com/gridplate/gridplate/rules"
	"github.com/gridplate/gridplate/svgdoc"
)

// Type aliases for the common entry points.
type (
	Document      = svgdoc.Document
	Config        = rules.Config
	AlignReport   = align.Report
	RelabelReport = relabel.Report
	AddTextReport = addtext.Report
	Report        = pipeline.Report
	Options       = pipeline.Options
	Step          = pipeline.Step
)

// Pipeline step names.
const (
	StepAlign   = pipeline.StepAlign
	StepRelabel = pipeline.StepRelabel
	StepAddText = pipeline.StepAddText
)

// LoadDocument reads and parses an SVG file.
func LoadDocument(path string) (*Document, error) {
	return svgdoc.Load(path)
}

// LoadRules reads and validates a YAML rule file.
func LoadRules(path string) (*Config, error) {
	return rules.Load(path)
}

// Validate checks grid alignment for every configured group, fixing
// correctable deviations when fix is set.
func Validate(doc *Document, ruleSet *rules.AlignRules, fix bool) *AlignReport {
	return align.ValidateDocument(doc, ruleSet, fix)
}

// Relabel assigns grid-derived labels to every configured group.
func Relabel(doc *Document, ruleSet *rules.RelabelRules, apply bool) *RelabelReport {
	return relabel.RelabelDocument(doc, ruleSet, apply)
}

// AddText generates text annotation runs using real font metrics when a
// usable font is found, falling back to estimation otherwise.
func AddText(doc *Document, ruleSet *rules.AddTextRules, apply bool) *AddTextReport {
	return addtext.NewAnnotator(fontmetrics.New()).AddText(doc, ruleSet, apply)
}

// Process runs the requested steps in order, stopping at the first step
// that reports errors.
func Process(doc *Document, cfg *Config, opts Options) *Report {
	return pipeline.Run(doc, cfg, opts)
}
