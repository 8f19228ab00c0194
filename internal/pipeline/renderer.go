package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ppiankov/bodycomp/internal/classify"
	"github.com/ppiankov/bodycomp/internal/model"
)

// Renderer turns reports into JSON, Markdown and a terminal summary.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the Markdown report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// RenderLLMMarkdown writes an already rendered narrative section
func (r *Renderer) RenderLLMMarkdown(content, path string) error {
	return writeFile(path, []byte(content))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Markdown renders the full report. Failed calculations render as an inline
// message; indices are shown regardless.
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder
	in := report.Input

	fmt.Fprintf(&b, "# Avaliação Antropométrica: %s\n\n", in.Name)
	fmt.Fprintf(&b, "- **Data:** %s\n", report.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "- **Idade:** %d anos\n", in.Age)
	fmt.Fprintf(&b, "- **Sexo:** %s\n", in.Sex)
	fmt.Fprintf(&b, "- **Estatura:** %s cm\n", measure(in.StatureCm))
	fmt.Fprintf(&b, "- **Peso:** %s kg\n", measure(in.MassKg))
	if in.WaistCm > 0 || in.HipCm > 0 {
		fmt.Fprintf(&b, "- **Cintura / Quadril:** %s / %s cm\n", measure(in.WaistCm), measure(in.HipCm))
	}
	b.WriteString("\n")

	b.WriteString("## Composição Corporal\n\n")
	writeSkinfold(&b, report)

	b.WriteString("## Índices de Risco\n\n")
	writeIndices(&b, report.Result.Indices)

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("_Estimativas por equações de regressão publicadas. Os resultados não substituem avaliação profissional._\n")
	}
	return b.String()
}

func writeSkinfold(b *strings.Builder, report *model.Report) {
	sf := report.Result.Skinfold
	switch {
	case sf == nil:
		b.WriteString("Nenhum protocolo de dobras executado.\n\n")
		return
	case sf.Failed():
		fmt.Fprintf(b, "**Protocolo:** %s\n\n", report.Protocol.Title())
		fmt.Fprintf(b, "> **Erro:** %s\n\n", sf.Error.Message)
		return
	}

	fmt.Fprintf(b, "**Protocolo:** %s\n\n", sf.Name)
	b.WriteString("| Métrica | Valor |\n")
	b.WriteString("|---|---|\n")
	fmt.Fprintf(b, "| Soma das dobras | %s mm |\n", fixed(sf.Sum, 2))
	fmt.Fprintf(b, "| Densidade corporal | %s g/mL |\n", fixed(sf.Density, 4))
	fmt.Fprintf(b, "| Gordura corporal | %s %% |\n", fixed(sf.BodyFat, 2))
	if c := report.Classification; c != nil {
		badge := classify.Badge(c.Label())
		if c.Available() {
			fmt.Fprintf(b, "| Classificação | %s `%s` |\n", c.Label(), badge)
		} else {
			fmt.Fprintf(b, "| Classificação | %s |\n", c.Label())
		}
	}
	b.WriteString("\n")

	if sf.Sites != "" {
		fmt.Fprintf(b, "Dobras utilizadas: %s\n\n", sf.Sites)
	}
	for _, w := range sf.Warnings {
		fmt.Fprintf(b, "> ⚠ %s\n\n", w)
	}
	if sf.Note != "" {
		fmt.Fprintf(b, "_%s_\n\n", sf.Note)
	}
}

func writeIndices(b *strings.Builder, indices []model.IndexResult) {
	if len(indices) == 0 {
		b.WriteString("Nenhum índice calculado.\n\n")
		return
	}

	b.WriteString("| Índice | Valor | Status |\n")
	b.WriteString("|---|---|---|\n")
	for _, ix := range indices {
		value := "N/A"
		if ix.HasValue() {
			value = fixed(*ix.Value, 2)
		}
		status := ix.Status
		if badge := classify.IndexBadge(ix.Status); badge != "" {
			status += " `" + badge + "`"
		}
		fmt.Fprintf(b, "| %s | %s | %s |\n", ix.Name, value, status)
	}
	b.WriteString("\n")

	for _, ix := range indices {
		if ix.Note != "" {
			fmt.Fprintf(b, "- **%s:** %s\n", ix.Name, ix.Note)
		}
	}
	b.WriteString("\n")
}

// RenderSummary prints a short summary to w
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	res := report.Result

	fmt.Fprintln(w)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "  %s (%d anos, %s)\n", res.Name, res.Age, res.Sex)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintln(w)

	if sf := res.Skinfold; sf != nil {
		if sf.Failed() {
			fmt.Fprintf(w, "  ✗ %s: %s\n", report.Protocol.Title(), sf.Error.Message)
		} else {
			fmt.Fprintf(w, "  Protocolo:      %s\n", sf.Name)
			fmt.Fprintf(w, "  Gordura:        %s%%\n", fixed(sf.BodyFat, 2))
			fmt.Fprintf(w, "  Densidade:      %s g/mL\n", fixed(sf.Density, 4))
			if c := report.Classification; c != nil {
				if c.Available() {
					fmt.Fprintf(w, "  Classificação:  %s [%s]\n", c.Label(), classify.Badge(c.Label()))
				} else {
					fmt.Fprintf(w, "  Classificação:  %s\n", c.Label())
				}
			}
			for _, warn := range sf.Warnings {
				fmt.Fprintf(w, "  ⚠ %s\n", warn)
			}
		}
		fmt.Fprintln(w)
	}

	for _, ix := range res.Indices {
		if ix.HasValue() {
			fmt.Fprintf(w, "  %-34s %8s  %s\n", ix.Name, fixed(*ix.Value, 2), ix.Status)
		} else {
			fmt.Fprintf(w, "  %-34s %8s  %s\n", ix.Name, "-", ix.Status)
		}
	}

	if report.LLM != nil && report.LLM.Enabled {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Resumo narrativo: %s", report.LLM.Provider)
		if report.LLM.Cached {
			fmt.Fprint(w, " (cache)")
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

// fixed formats v for display
func fixed(v float64, decimals int) string {
	return strconv.FormatFloat(classify.Round(v, decimals), 'f', decimals, 64)
}

// measure shows N/A for values that were not entered
func measure(v float64) string {
	if !(v > 0) {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
