package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ppiankov/bodycomp/internal/cache"
	"github.com/ppiankov/bodycomp/internal/model"
	"github.com/ppiankov/bodycomp/internal/worker"
)

// Summarizer adds an optional narrative to a report. Every failure degrades
// to a warning; the computed results are never touched.
type Summarizer struct {
	provider Provider
	config   Config

	cache   cache.Cache
	limiter *worker.Limiter
	logger  *zap.Logger

	availableOnce sync.Once
	available     bool
}

// Option configures a Summarizer
type Option func(*Summarizer)

// WithCache reuses narratives for identical evaluations.
func WithCache(c cache.Cache) Option {
	return func(s *Summarizer) { s.cache = c }
}

// WithLimiter throttles provider calls.
func WithLimiter(l *worker.Limiter) Option {
	return func(s *Summarizer) { s.limiter = l }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Summarizer) { s.logger = l }
}

// NewSummarizer creates a summarizer; a disabled provider yields a no-op one.
func NewSummarizer(config Config, opts ...Option) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}

	s := &Summarizer{provider: provider, config: config}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// ProviderName returns the provider name or "" when disabled
func (s *Summarizer) ProviderName() string {
	if !s.IsEnabled() {
		return ""
	}
	return s.provider.Name()
}

// cachedNarrative is what the cache stores per prompt
type cachedNarrative struct {
	Summary string `json:"summary"`
	Model   string `json:"model"`
}

// GenerateSummary returns nil when disabled. Otherwise it always returns a
// summary object, with Enabled false and warnings when generation failed.
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.Report) (*model.LLMSummary, error) {
	if !s.IsEnabled() {
		return nil, nil
	}
	log := s.log().With(zap.String("provider", s.provider.Name()))

	summary := &model.LLMSummary{
		Provider: s.provider.Name(),
		Model:    s.config.Model,
	}

	prompt := BuildPrompt(report, s.config.Language)
	key := cache.Key(s.provider.Name(), s.config.Model, prompt)

	var hit cachedNarrative
	if cache.GetJSON(s.cache, key, &hit) {
		log.Debug("narrative cache hit")
		summary.Enabled = true
		summary.Cached = true
		summary.SummaryMD = hit.Summary
		summary.Model = hit.Model
		return summary, nil
	}

	if !s.isAvailable(ctx) {
		log.Warn("provider not available")
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("LLM provider '%s' is not available (check API key, network or that the server is running)", s.provider.Name()))
		return summary, nil
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, s.provider.Name()); err != nil {
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("LLM summary skipped: %v", err))
			return summary, nil
		}
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:    report,
		Prompt:    prompt,
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		log.Warn("narrative generation failed", zap.Error(err))
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("LLM summary generation failed: %v", err))
		return summary, nil
	}

	if s.config.StrictNumbers {
		if bad := VerifyNumbers(resp.Summary, report); bad != "" {
			log.Warn("narrative rejected", zap.String("number", bad))
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("LLM summary rejected: it quotes %s, which is not a computed value", bad))
			return summary, nil
		}
	}

	summary.Enabled = true
	summary.SummaryMD = resp.Summary
	summary.Model = resp.Model
	summary.Warnings = append(summary.Warnings, fmt.Sprintf("Tokens used: %d", resp.TokensUsed))

	if err := cache.SetJSON(s.cache, key, cachedNarrative{Summary: resp.Summary, Model: resp.Model}, 0); err != nil {
		log.Debug("narrative not cached", zap.Error(err))
	}
	return summary, nil
}

// isAvailable probes the provider once per summarizer; batches would
// otherwise probe once per row.
func (s *Summarizer) isAvailable(ctx context.Context) bool {
	s.availableOnce.Do(func() {
		s.available = s.provider.IsAvailable(ctx)
	})
	return s.available
}

func (s *Summarizer) log() *zap.Logger {
	if s.logger == nil {
		return zap.NewNop()
	}
	return s.logger
}

// RenderSeparateMarkdown renders the narrative as its own Markdown section,
// kept apart from the computed results.
func RenderSeparateMarkdown(summary *model.LLMSummary) string {
	if summary == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Resumo Narrativo (LLM)\n\n")

	switch {
	case summary.Enabled && summary.SummaryMD != "":
		fmt.Fprintf(&b, "_Gerado por %s", summary.Provider)
		if summary.Model != "" {
			fmt.Fprintf(&b, " (%s)", summary.Model)
		}
		if summary.Cached {
			b.WriteString(", em cache")
		}
		b.WriteString("._\n\n")
		b.WriteString(summary.SummaryMD)
		b.WriteString("\n\n")
	case summary.Enabled:
		b.WriteString("Nenhum resumo gerado.\n\n")
	default:
		b.WriteString("Resumo narrativo indisponível.\n\n")
	}

	if len(summary.Warnings) > 0 {
		b.WriteString("**Avisos:**\n\n")
		for _, w := range summary.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	b.WriteString("> Os valores e classificações acima foram calculados de forma independente; este texto apenas os descreve e não substitui avaliação profissional.\n")
	return b.String()
}
