package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/bodycomp/internal/classify"
	"github.com/ppiankov/bodycomp/internal/pipeline"
	"github.com/ppiankov/bodycomp/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Evaluate many measurement sets from a CSV file in parallel",
	Long: `Batch evaluates every row of a delimited file concurrently:
- The header names the form fields (nome, idade, sexo, estatura, peso,
  cintura, quadril, protocolo and the skinfold sites)
- ';' or ',' delimited, UTF-8 with or without BOM, '#' starts a comment
- One JSON, Markdown and CSV export is written per row

Example:
  bodycomp batch avaliacoes.csv
  bodycomp batch avaliacoes.csv --concurrency 8 --output-dir ./relatorios
  bodycomp batch avaliacoes.csv --llm-provider ollama --llm-model llama3.1:8b`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers, then CPU count)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./bodycomp-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noExport, "no-export", false, "do not write CSV exports")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().BoolVar(&noMask, "no-form-mask", false, "keep skinfolds the selected protocol's form does not collect")

	addLLMFlags(batchCmd.Flags())
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	applyFlags(cmd, cfg)

	workers := concurrency
	if workers <= 0 {
		workers = cfg.Concurrency.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Bodycomp Batch Evaluation\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, workers).WithLogger(logger.Named("batch"))

	fmt.Fprintf(os.Stderr, "⚙️  Evaluating rows with %d workers...\n\n", workers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0

	for _, result := range results {
		name := result.Row.Parsed.Measurement.Name
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ line %d (%s): %v\n", result.Row.Line, name, result.Error)
			continue
		}

		slug := fmt.Sprintf("%03d-%s", result.Row.Line, sanitizeFilename(name))
		out := pipeline.Outputs{
			MarkdownPath: filepath.Join(outputDir, slug+".md"),
			CSVPath:      filepath.Join(outputDir, slug+".csv"),
		}
		if cfg.Output.JSON {
			out.JSONPath = filepath.Join(outputDir, slug+".json")
		}

		if _, err := p.RenderReport(result.Report, out); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ line %d (%s): %v\n", result.Row.Line, name, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ line %d: %s\n", result.Row.Line, rowSummary(result))
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d rows\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// rowSummary is the one-line result shown per evaluated row
func rowSummary(r *worker.EvaluateResult) string {
	report := r.Report
	sf := report.Result.Skinfold
	switch {
	case sf == nil:
		return report.Result.Name
	case sf.Failed():
		return fmt.Sprintf("%s (%s)", report.Result.Name, sf.Error.Message)
	}

	line := fmt.Sprintf("%s %.2f%%", report.Result.Name, classify.Round(sf.BodyFat, 2))
	if c := report.Classification; c != nil {
		line += " " + c.Label()
	}
	return line
}

// sanitizeFilename makes s safe to use as a file name component
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(strings.TrimSpace(s))
	if s == "" || s == "." || s == ".." {
		s = "sem-nome"
	}

	// Limit length without splitting a character
	if r := []rune(s); len(r) > 100 {
		s = string(r[:100])
	}
	return s
}
