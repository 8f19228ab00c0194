package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/bodycomp/internal/cache"
	"github.com/ppiankov/bodycomp/internal/classify"
	"github.com/ppiankov/bodycomp/internal/evaluate"
	"github.com/ppiankov/bodycomp/internal/export"
	"github.com/ppiankov/bodycomp/internal/form"
	"github.com/ppiankov/bodycomp/internal/llm"
	"github.com/ppiankov/bodycomp/internal/model"
	"github.com/ppiankov/bodycomp/internal/reference"
	"github.com/ppiankov/bodycomp/internal/skinfold"
	"github.com/ppiankov/bodycomp/internal/worker"
)

// Pipeline orchestrates a complete evaluation: validation, calculation,
// classification and the optional narrative.
type Pipeline struct {
	evaluator  *evaluate.Evaluator
	classifier *classify.Classifier
	renderer   *Renderer
	summarizer *llm.Summarizer // Optional LLM summarizer (nil if disabled)
	logger     *zap.Logger
	config     *model.Config
}

var _ worker.Evaluator = (*Pipeline)(nil)

// NewPipeline creates a new pipeline with the given configuration. A broken
// reference table is an error; a broken LLM setup only disables the narrative.
func NewPipeline(cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	table := reference.DefaultBodyFatTable()
	if path := cfg.Reference.BodyFatTable; path != "" {
		t, err := reference.LoadBodyFatTable(path)
		if err != nil {
			return nil, fmt.Errorf("load classification table: %w", err)
		}
		logger.Debug("loaded classification table", zap.String("path", path))
		table = t
	}

	p := &Pipeline{
		evaluator:  evaluate.NewEvaluator(skinfold.NewCalculator(nil)),
		classifier: classify.NewClassifier(table),
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		logger:     logger,
		config:     cfg,
	}

	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM),
			llm.WithCache(cache.New(cfg.Cache)),
			llm.WithLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)),
			llm.WithLogger(logger.Named("llm")),
		)
		if err != nil {
			logger.Warn("LLM summary disabled", zap.Error(err))
		} else {
			p.summarizer = s
		}
	}

	return p, nil
}

// Evaluate runs protocol p over m and returns the finished report. The only
// error is the missing-required-fields check (or a cancelled context);
// protocol and classification failures travel inside the report.
func (p *Pipeline) Evaluate(ctx context.Context, m model.MeasurementSet, protocol model.Protocol) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.config.Export.ApplyFormMask {
		m.Skinfolds = form.MaskSkinfolds(protocol, m.Skinfolds)
	}

	result, err := p.evaluator.Evaluate(m, protocol)
	if err != nil {
		return nil, err
	}

	report := model.NewReport(m, protocol, *result)
	report.Classification = p.classifier.ClassifyResult(result.Skinfold, m.Age, m.Sex)

	log := p.logger.With(zap.String("report", report.ID.String()), zap.String("protocol", string(protocol)))
	if sf := result.Skinfold; sf.Failed() {
		log.Warn("skinfold protocol failed", zap.String("kind", string(sf.Error.Kind)), zap.String("reason", sf.Error.Message))
	} else if sf != nil {
		for _, w := range sf.Warnings {
			log.Warn("skinfold advisory", zap.String("warning", w))
		}
	}
	if c := report.Classification; c != nil && !c.Available() {
		log.Debug("classification unavailable", zap.String("reason", c.Label()))
	}

	// Narrative runs last and never touches the numbers above
	if p.summarizer.IsEnabled() {
		summary, err := p.summarizer.GenerateSummary(ctx, *report)
		if err != nil {
			log.Warn("LLM summary generation failed", zap.Error(err))
		} else if summary != nil {
			report.LLM = summary
		}
	}

	return report, nil
}

// Outputs names the files RenderReport writes. Empty fields are skipped.
type Outputs struct {
	JSONPath     string
	MarkdownPath string
	// CSVPath wins over CSVDir; CSVDir uses the export file naming
	CSVPath string
	CSVDir  string
}

// RenderReport writes the requested outputs and returns the paths written.
func (p *Pipeline) RenderReport(report *model.Report, out Outputs) ([]string, error) {
	var written []string

	if out.JSONPath != "" {
		if err := p.renderer.RenderJSON(report, out.JSONPath); err != nil {
			return written, fmt.Errorf("render JSON: %w", err)
		}
		written = append(written, out.JSONPath)
	}

	if out.MarkdownPath != "" {
		if err := p.renderer.RenderMarkdown(report, out.MarkdownPath); err != nil {
			return written, fmt.Errorf("render markdown: %w", err)
		}
		written = append(written, out.MarkdownPath)
	}

	// Render LLM summary to separate file if present
	if report.LLM != nil && report.LLM.Enabled && out.MarkdownPath != "" {
		llmPath := strings.TrimSuffix(out.MarkdownPath, ".md") + ".llm.md"
		if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(report.LLM), llmPath); err != nil {
			p.logger.Warn("failed to write LLM summary", zap.String("path", llmPath), zap.Error(err))
		} else {
			written = append(written, llmPath)
		}
	}

	if p.config.Export.Enabled {
		switch {
		case out.CSVPath != "":
			if err := export.Save(out.CSVPath, report); err != nil {
				return written, err
			}
			written = append(written, out.CSVPath)
		case out.CSVDir != "":
			path, err := export.WriteFile(out.CSVDir, report)
			if err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}

	return written, nil
}

// Renderer exposes the pipeline's renderer for summary output.
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// SummarizerEnabled reports whether a narrative provider is configured.
func (p *Pipeline) SummarizerEnabled() bool {
	return p.summarizer.IsEnabled()
}
