package worker

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/bodycomp/internal/form"
	"github.com/ppiankov/bodycomp/internal/model"
)

// Evaluator produces a full report for one measurement set
type Evaluator interface {
	Evaluate(ctx context.Context, m model.MeasurementSet, p model.Protocol) (*model.Report, error)
}

// Row is one measurement set read from a batch file. Line is 1-based and
// counts the header.
type Row struct {
	Line   int
	Parsed form.Parsed
}

// EvaluateJob evaluates a single row
type EvaluateJob struct {
	Row       Row
	Evaluator Evaluator
}

func (j *EvaluateJob) Execute(ctx context.Context) Result {
	res := &EvaluateResult{Row: j.Row}
	if err := ctx.Err(); err != nil {
		res.Error = err
		return res
	}
	if j.Row.Parsed.ProtocolErr != nil {
		res.Error = j.Row.Parsed.ProtocolErr
		return res
	}
	res.Report, res.Error = j.Evaluator.Evaluate(ctx, j.Row.Parsed.Measurement, j.Row.Parsed.Protocol)
	return res
}

// EvaluateResult is the outcome of one row
type EvaluateResult struct {
	Row    Row
	Report *model.Report
	Error  error
}

func (r *EvaluateResult) GetError() error {
	return r.Error
}

// BatchProcessor evaluates many rows concurrently; results come back in
// file order.
type BatchProcessor struct {
	evaluator   Evaluator
	concurrency int
	logger      *zap.Logger
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(evaluator Evaluator, concurrency int) *BatchProcessor {
	return &BatchProcessor{evaluator: evaluator, concurrency: concurrency, logger: zap.NewNop()}
}

// WithLogger sets the logger used for per-row diagnostics.
func (b *BatchProcessor) WithLogger(l *zap.Logger) *BatchProcessor {
	if l != nil {
		b.logger = l
	}
	return b
}

// Process evaluates rows on a worker pool.
func (b *BatchProcessor) Process(ctx context.Context, rows []Row) []*EvaluateResult {
	if len(rows) == 0 {
		return []*EvaluateResult{}
	}

	start := time.Now()
	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	go func() {
		defer pool.Close()
		for _, row := range rows {
			if err := pool.Submit(&EvaluateJob{Row: row, Evaluator: b.evaluator}); err != nil {
				return
			}
		}
	}()

	out := make([]*EvaluateResult, 0, len(rows))
	done := make(map[int]bool, len(rows))
	for r := range pool.Results() {
		er := r.(*EvaluateResult)
		out = append(out, er)
		done[er.Row.Line] = true
	}

	// Rows never picked up because ctx was cancelled still get a result
	if err := ctx.Err(); err != nil {
		for _, row := range rows {
			if !done[row.Line] {
				out = append(out, &EvaluateResult{Row: row, Error: err})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Row.Line < out[j].Row.Line
	})

	failed := 0
	for _, r := range out {
		if r.Error != nil {
			failed++
			b.logger.Debug("row not evaluated", zap.Int("line", r.Row.Line), zap.Error(r.Error))
		}
	}
	b.logger.Info("batch evaluated",
		zap.Int("rows", len(out)),
		zap.Int("failed", failed),
		zap.Int("workers", b.concurrency),
		zap.Duration("elapsed", time.Since(start)))
	return out
}

// ProcessFile reads a batch file and evaluates every row.
func (b *BatchProcessor) ProcessFile(ctx context.Context, path string) ([]*EvaluateResult, error) {
	rows, err := ReadMeasurementsFile(path)
	if err != nil {
		return nil, fmt.Errorf("read measurements: %w", err)
	}
	return b.Process(ctx, rows), nil
}

// ReadMeasurementsFile opens path and parses it with ReadMeasurements.
func ReadMeasurementsFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadMeasurements(f)
}

// ReadMeasurements parses a delimited file whose header names the form
// fields (nome, idade, sexo, estatura, peso, cintura, quadril, protocolo and
// the skinfold sites). The delimiter is ';' when the header contains one,
// otherwise ','. Blank lines and lines starting with '#' are skipped.
func ReadMeasurements(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.TrimPrefix(string(data), "\ufeff")

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = detectDelimiter(text)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	known := make(map[string]bool)
	for _, f := range form.Fields() {
		known[strings.ToLower(f)] = true
	}
	columns := make([]string, len(header))
	matched := 0
	for i, h := range header {
		name := canonicalField(h)
		if known[strings.ToLower(name)] {
			columns[i] = name
			matched++
		}
	}
	if matched == 0 {
		return nil, fmt.Errorf("header has no recognized columns (expected %s)", strings.Join(form.Fields(), ", "))
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if isBlank(rec) {
			continue
		}

		raw := make(form.RawFields, len(columns))
		for i, v := range rec {
			if i < len(columns) && columns[i] != "" {
				raw[columns[i]] = v
			}
		}
		rows = append(rows, Row{Line: line, Parsed: form.Parse(raw)})
	}
	return rows, nil
}

// canonicalField maps a header cell to the form field name, matching
// case-insensitively so "Idade" and "axilarmedia" both work.
func canonicalField(h string) string {
	h = strings.TrimSpace(h)
	for _, f := range form.Fields() {
		if strings.EqualFold(f, h) {
			return f
		}
	}
	return h
}

// detectDelimiter looks at the first non-comment line.
func detectDelimiter(text string) rune {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, ";") {
			return ';'
		}
		break
	}
	return ','
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
