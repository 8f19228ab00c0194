package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/bodycomp/internal/form"
	"github.com/ppiankov/bodycomp/internal/model"
	"github.com/ppiankov/bodycomp/internal/pipeline"
)

var (
	inputFile   string
	outJSON     string
	outMD       string
	outCSV      string
	csvDir      string
	noExport    bool
	noFooter    bool
	noMask      bool
	timeout     time.Duration
	llmProvider string
	llmModel    string

	// fieldValues holds the raw text of every form field flag
	fieldValues = map[string]*string{}
)

// fieldFlags maps flag names to form field names
var fieldFlags = []struct {
	flag  string
	field string
	usage string
}{
	{"name", form.FieldName, "name of the person evaluated"},
	{"age", form.FieldAge, "age in whole years"},
	{"sex", form.FieldSex, "masculino|feminino (m/f accepted)"},
	{"stature", form.FieldStature, "stature in cm"},
	{"mass", form.FieldMass, "body mass in kg"},
	{"waist", form.FieldWaist, "waist circumference in cm"},
	{"hip", form.FieldHip, "hip circumference in cm"},
	{"protocol", form.FieldProtocol, "skinfold protocol: jp7, jp3, guedes, durnin"},
	{"triceps", string(model.SiteTriceps), "triceps skinfold in mm"},
	{"biceps", string(model.SiteBiceps), "biceps skinfold in mm"},
	{"subscapular", string(model.SiteSubscapular), "subscapular skinfold in mm"},
	{"pectoral", string(model.SitePectoral), "pectoral skinfold in mm"},
	{"mid-axillary", string(model.SiteMidAxillary), "mid-axillary skinfold in mm"},
	{"abdominal", string(model.SiteAbdominal), "abdominal skinfold in mm"},
	{"suprailiac", string(model.SiteSuprailiac), "suprailiac skinfold in mm"},
	{"thigh", string(model.SiteThigh), "thigh skinfold in mm"},
}

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one measurement set",
	Long: `Evaluate runs one skinfold protocol and the circumference indices for a
single person, classifies the body-fat percentage and writes the results.

Numbers accept "," or "." as decimal separator. Values that are not numbers
count as not measured.

Example:
  bodycomp evaluate --name "Ana Souza" --age 31 --sex f --stature 165 --mass 62,4 \
    --waist 72 --hip 98 --protocol jp3 --triceps 18 --suprailiac 14,5 --thigh 24
  bodycomp evaluate --input ana.yaml --json ana.json --md ana.md
  bodycomp evaluate --input ana.yaml --llm-provider ollama --llm-model llama3.1:8b`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	for _, f := range fieldFlags {
		fieldValues[f.field] = evaluateCmd.Flags().String(f.flag, "", f.usage)
	}
	evaluateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "YAML or JSON file keyed by form field (nome, idade, sexo, ...); flags override it")

	// Output flags
	evaluateCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path")
	evaluateCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path")
	evaluateCmd.Flags().StringVar(&outCSV, "csv", "", "output CSV path (default: Avaliacao_<name>_<date>.csv in --csv-dir)")
	evaluateCmd.Flags().StringVar(&csvDir, "csv-dir", "", "directory for the CSV export (default: output.dir)")
	evaluateCmd.Flags().BoolVar(&noExport, "no-export", false, "do not write the CSV export")
	evaluateCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	evaluateCmd.Flags().BoolVar(&noMask, "no-form-mask", false, "keep skinfolds the selected protocol's form does not collect")
	evaluateCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout (only the LLM summary can take long)")

	addLLMFlags(evaluateCmd.Flags())
}

// addLLMFlags registers the narrative flags shared by evaluate and batch
func addLLMFlags(fs *pflag.FlagSet) {
	fs.StringVar(&llmProvider, "llm-provider", "", "LLM provider for the narrative summary (openai, ollama; empty disables)")
	fs.StringVar(&llmModel, "llm-model", "", "LLM model name")
}

// applyFlags overrides configuration with flags the user actually set
func applyFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("no-export") {
		cfg.Export.Enabled = !noExport
	}
	if flags.Changed("no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}
	if flags.Changed("no-form-mask") {
		cfg.Export.ApplyFormMask = !noMask
	}
	if flags.Changed("llm-provider") {
		cfg.LLM.Provider = llmProvider
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}
	if verbose {
		cfg.Output.Verbose = true
	}
}

// readInput merges the input file with the field flags.
func readInput(cmd *cobra.Command) (form.RawFields, error) {
	raw := form.RawFields{}

	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		// yaml.v3 reads JSON documents too
		var doc map[string]interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse input %s: %w", inputFile, err)
		}
		for k, v := range doc {
			if v != nil {
				raw[k] = fmt.Sprint(v)
			}
		}
	}

	for _, f := range fieldFlags {
		if cmd.Flags().Changed(f.flag) {
			raw[f.field] = *fieldValues[f.field]
		}
	}
	return raw, nil
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	applyFlags(cmd, cfg)

	raw, err := readInput(cmd)
	if err != nil {
		return err
	}
	parsed := form.Parse(raw)
	if parsed.ProtocolErr != nil {
		return parsed.ProtocolErr
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Evaluating %s with %s...\n", parsed.Measurement.Name, parsed.Protocol.Title())
	}

	report, err := p.Evaluate(ctx, parsed.Measurement, parsed.Protocol)
	if err != nil {
		return err
	}
	logger.Debug("evaluation complete", zap.String("report", report.ID.String()))

	out := pipeline.Outputs{
		JSONPath:     outJSON,
		MarkdownPath: outMD,
		CSVPath:      outCSV,
		CSVDir:       csvDir,
	}
	if out.CSVPath == "" && out.CSVDir == "" {
		out.CSVDir = cfg.Output.Dir
	}

	written, err := p.RenderReport(report, out)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	p.Renderer().RenderSummary(cmd.OutOrStdout(), report)

	if report.LLM != nil && report.LLM.Enabled && outMD == "" {
		fmt.Fprintln(cmd.OutOrStdout(), report.LLM.SummaryMD)
		fmt.Fprintln(cmd.OutOrStdout())
	}
	if report.LLM != nil && !report.LLM.Enabled {
		for _, w := range report.LLM.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}
	}
	for _, path := range written {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
	}

	return nil
}
