// Package pipeline chains align, relabel, and text generation over one
// in-memory document as a single transactional run. Steps execute in a
// fixed order and short-circuit on validation errors: a failing step
// leaves all later reports absent.
package pipeline

import (
	"github.com/flanksource/commons/logger"

	"github.com/gridplate/gridplate/addtext"
	"github.com/gridplate/gridplate/addtext/fontmetrics"
	"github.com/gridplate/gridplate/align"
	"github.com/gridplate/gridplate/relabel"
	"github.com/gridplate/gridplate/rules"
	"github.com/gridplate/gridplate/svgdoc"
)

// Step names one pipeline stage.
type Step string

const (
	StepAlign   Step = "align"
	StepRelabel Step = "relabel"
	StepAddText Step = "add_text"
)

// AllSteps is the full pipeline in execution order.
var AllSteps = []Step{StepAlign, StepRelabel, StepAddText}

// Options configures one pipeline run.
type Options struct {
	// Steps to execute; nil means all. Execution order is always
	// align, relabel, add_text regardless of the order given here.
	Steps []Step
	// Apply mutates the document: fixes, label writes, text insertion.
	// Each step still withholds mutation from groups with errors.
	Apply bool
	// Metrics measures label text for centering; nil uses estimation.
	Metrics fontmetrics.Provider
}

// Report aggregates the step reports of one run. A nil step report means
// the step did not execute (skipped, not requested, or cut off by an
// earlier error).
type Report struct {
	Path         string
	Align        *align.Report
	Relabel      *relabel.Report
	AddText      *addtext.Report
	SkippedSteps []string
}

// HasErrors reports whether any executed step has errors.
func (r *Report) HasErrors() bool {
	if r.Align != nil && r.Align.HasErrors() {
		return true
	}
	if r.Relabel != nil && r.Relabel.HasErrors() {
		return true
	}
	if r.AddText != nil && r.AddText.HasErrors() {
		return true
	}
	return false
}

// ExecutedSteps lists the steps that ran.
func (r *Report) ExecutedSteps() []Step {
	var steps []Step
	if r.Align != nil {
		steps = append(steps, StepAlign)
	}
	if r.Relabel != nil {
		steps = append(steps, StepRelabel)
	}
	if r.AddText != nil {
		steps = append(steps, StepAddText)
	}
	return steps
}

// Run processes a document through the pipeline.
func Run(doc *svgdoc.Document, cfg *rules.Config, opts Options) *Report {
	steps := opts.Steps
	if steps == nil {
		steps = AllSteps
	}
	requested := map[Step]bool{}
	for _, s := range steps {
		requested[s] = true
	}

	report := &Report{Path: doc.Path()}

	switch {
	case !requested[StepAlign]:
		report.SkippedSteps = append(report.SkippedSteps, "align (not requested)")
	case cfg.Align == nil:
		report.SkippedSteps = append(report.SkippedSteps, "align (no rule)")
	default:
		report.Align = align.ValidateDocument(doc, cfg.Align, opts.Apply)
		if report.Align.HasErrors() {
			logger.Infof("align step found %d error elements, stopping pipeline", report.Align.TotalErrors())
			return report
		}
	}

	switch {
	case !requested[StepRelabel]:
		report.SkippedSteps = append(report.SkippedSteps, "relabel (not requested)")
	case cfg.Relabel == nil:
		report.SkippedSteps = append(report.SkippedSteps, "relabel (no rule)")
	default:
		report.Relabel = relabel.RelabelDocument(doc, cfg.Relabel, opts.Apply)
		if report.Relabel.HasErrors() {
			logger.Infof("relabel step has errors, stopping pipeline")
			return report
		}
	}

	switch {
	case !requested[StepAddText]:
		report.SkippedSteps = append(report.SkippedSteps, "add_text (not requested)")
	case cfg.AddText == nil:
		report.SkippedSteps = append(report.SkippedSteps, "add_text (no rule)")
	default:
		annotator := addtext.NewAnnotator(opts.Metrics)
		report.AddText = annotator.AddText(doc, cfg.AddText, opts.Apply)
	}

	return report
}
