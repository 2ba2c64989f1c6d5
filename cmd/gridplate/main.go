package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"

	"github.com/gridplate/gridplate"
	"github.com/gridplate/gridplate/addtext"
	"github.com/gridplate/gridplate/addtext/fontmetrics"
	"github.com/gridplate/gridplate/pipeline"
	"github.com/gridplate/gridplate/relabel"
	"github.com/gridplate/gridplate/report"
	"github.com/gridplate/gridplate/rules"
	"github.com/gridplate/gridplate/svgdoc"
)

// Build information (set by goreleaser)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errValidation marks a run that completed but found rule violations.
// The report has already been printed when this is returned.
var errValidation = errors.New("validation errors detected")

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errValidation) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}

func newRootCommand() *cobra.Command {
	logFlags := logger.Flags{Level: "info", LogToStderr: true}

	rootCmd := &cobra.Command{
		Use:   "gridplate",
		Short: "Validate, relabel, and annotate panel layout SVG files",
		Long: `Gridplate checks SVG panel drawings against declarative YAML rules:
grid alignment of holes and cutouts, coordinate-derived element labels,
and generated text annotation runs.`,
		Example: `  gridplate align --rules panel.yaml panel.svg
  gridplate relabel --rules panel.yaml --apply panel.svg
  gridplate process --rules panel.yaml --apply -o out.svg panel.svg`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Configure(logFlags)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&logFlags.LevelCount, "loglevel", "v", "Increase logging level")
	pf.StringVar(&logFlags.Level, "log-level", "info", "Set the default log level")
	pf.BoolVar(&logFlags.JsonLogs, "json-logs", false, "Print logs in json format to stderr")

	rootCmd.AddCommand(newAlignCommand())
	rootCmd.AddCommand(newRelabelCommand())
	rootCmd.AddCommand(newAddTextCommand())
	rootCmd.AddCommand(newProcessCommand())
	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// stepFlags holds the options shared by every step command.
type stepFlags struct {
	rulesFile string
	output    string
	asJSON    bool
}

func (f *stepFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.rulesFile, "rules", "r", "", "YAML rule file (required)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output SVG path (default: overwrite input)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the report as JSON")
	cmd.MarkFlagRequired("rules")
}

func (f *stepFlags) load(path string) (*svgdoc.Document, *rules.Config, error) {
	doc, err := gridplate.LoadDocument(path)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := gridplate.LoadRules(f.rulesFile)
	if err != nil {
		return nil, nil, err
	}
	return doc, cfg, nil
}

// finish prints the report and writes the document back when the run
// mutated it and found no errors.
func (f *stepFlags) finish(doc *svgdoc.Document, text string, payload any, hasErrors, mutated bool) error {
	if f.asJSON {
		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		fmt.Println(string(out))
	} else {
		fmt.Print(text)
	}

	if hasErrors {
		return errValidation
	}
	if mutated {
		out := f.output
		if out == "" {
			out = doc.Path()
		}
		if err := doc.WriteFile(out); err != nil {
			return err
		}
		logger.Infof("Wrote %s", out)
	}
	return nil
}

func newAlignCommand() *cobra.Command {
	var flags stepFlags
	var fix bool

	cmd := &cobra.Command{
		Use:   "align [flags] <file.svg>",
		Short: "Check grid alignment of panel elements",
		Long: `Check that element sizes and center positions match the configured
values and grid spacing. With --fix, correctable deviations are snapped
and the result is written out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, cfg, err := flags.load(args[0])
			if err != nil {
				return err
			}
			if cfg.Align == nil {
				return fmt.Errorf("rule file %s has no align section", flags.rulesFile)
			}
			r := gridplate.Validate(doc, cfg.Align, fix)
			return flags.finish(doc, report.Alignment(r), r, r.HasErrors(), fix)
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&fix, "fix", false, "Snap fixable deviations and write the result")
	return cmd
}

func newRelabelCommand() *cobra.Command {
	var flags stepFlags
	var apply bool

	cmd := &cobra.Command{
		Use:   "relabel [flags] <file.svg>",
		Short: "Assign grid-derived labels to panel elements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, cfg, err := flags.load(args[0])
			if err != nil {
				return err
			}
			if cfg.Relabel == nil {
				return fmt.Errorf("rule file %s has no relabel section", flags.rulesFile)
			}
			r := relabel.RelabelDocument(doc, cfg.Relabel, apply)
			return flags.finish(doc, report.Relabel(r), r, r.HasErrors(), apply)
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&apply, "apply", false, "Write the new labels to the output file")
	return cmd
}

func newAddTextCommand() *cobra.Command {
	var flags stepFlags
	var apply bool
	var fontDirs []string

	cmd := &cobra.Command{
		Use:   "add-text [flags] <file.svg>",
		Short: "Generate text annotation runs",
		Long: `Generate evenly spaced text elements along an axis. Text is centered
using real font metrics when the configured font is found on disk, and
estimated metrics otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, cfg, err := flags.load(args[0])
			if err != nil {
				return err
			}
			if cfg.AddText == nil {
				return fmt.Errorf("rule file %s has no add_text section", flags.rulesFile)
			}
			annotator := addtext.NewAnnotator(fontmetrics.New(fontDirs...))
			r := annotator.AddText(doc, cfg.AddText, apply)
			return flags.finish(doc, report.AddText(r), r, r.HasErrors(), apply)
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&apply, "apply", false, "Write the generated text to the output file")
	cmd.Flags().StringSliceVar(&fontDirs, "font-dir", nil, "Extra font directories to scan")
	return cmd
}

func newProcessCommand() *cobra.Command {
	var flags stepFlags
	var apply bool
	var steps []string
	var fontDirs []string

	cmd := &cobra.Command{
		Use:   "process [flags] <file.svg>",
		Short: "Run align, relabel, and add-text as one pipeline",
		Long: `Run the configured steps in order: align, then relabel, then add-text.
A step with errors stops the pipeline and suppresses output.`,
		Example: `  gridplate process --rules panel.yaml panel.svg
  gridplate process --rules panel.yaml --steps align,relabel --apply panel.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, cfg, err := flags.load(args[0])
			if err != nil {
				return err
			}
			requested, err := parseSteps(steps)
			if err != nil {
				return err
			}
			r := gridplate.Process(doc, cfg, pipeline.Options{
				Steps:   requested,
				Apply:   apply,
				Metrics: fontmetrics.New(fontDirs...),
			})
			return flags.finish(doc, report.Process(r), r, r.HasErrors(), apply)
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&apply, "apply", false, "Apply fixes and write the output file")
	cmd.Flags().StringSliceVar(&steps, "steps", nil, "Steps to run (default: all configured)")
	cmd.Flags().StringSliceVar(&fontDirs, "font-dir", nil, "Extra font directories to scan")
	return cmd
}

func parseSteps(names []string) ([]pipeline.Step, error) {
	if len(names) == 0 {
		return nil, nil
	}
	steps := make([]pipeline.Step, 0, len(names))
	for _, name := range names {
		step := pipeline.Step(name)
		switch step {
		case pipeline.StepAlign, pipeline.StepRelabel, pipeline.StepAddText:
			steps = append(steps, step)
		default:
			return nil, fmt.Errorf("unknown step %q (valid: align, relabel, add_text)", name)
		}
	}
	return steps, nil
}

func newStatsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats [flags] <file.svg>",
		Short: "Show group hierarchy and element counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := gridplate.LoadDocument(args[0])
			if err != nil {
				return err
			}
			stats := svgdoc.Analyze(doc)
			if asJSON {
				out, err := json.MarshalIndent(stats, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode stats: %w", err)
				}
				fmt.Println(string(out))
				return nil
			}
			fmt.Print(report.Stats(stats))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print stats as JSON")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gridplate %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
