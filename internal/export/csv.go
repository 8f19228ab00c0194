// Package export writes an evaluation as a spreadsheet-friendly CSV:
// semicolon separated, comma decimals, UTF-8 with a byte order mark.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/bodycomp/internal/classify"
	"github.com/ppiankov/bodycomp/internal/model"
)

const (
	// Separator is the field delimiter spreadsheet software expects in pt-BR locales.
	Separator = ';'

	// BOM makes spreadsheet software detect UTF-8.
	BOM = "\ufeff"

	NotAvailable = "N/A"
)

// Header is the first row of every export
var Header = []string{"Categoria", "Metrica", "Valor", "Unidade", "Status_Risco"}

// Section titles, in file order
const (
	SectionGeneral   = "Geral"
	SectionSkinfolds = "Dobras Inseridas"
	SectionResults   = "Resultados Cálculo"
	SectionRisk      = "Resultados Risco"
)

const (
	categoryComposition = "Composicao Corporal"
	categoryRisk        = "Risco Antropometrico"
)

// Write serializes r to w. Numbers use four decimals with a comma; the body
// fat percentage and index values are rounded to the two decimals shown on
// screen before formatting.
func Write(w io.Writer, r *model.Report) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(bw)
	cw.Comma = Separator

	rows := [][]string{Header}
	rows = append(rows, generalRows(r)...)

	if err := writeRows(cw, rows); err != nil {
		return err
	}

	sections := []struct {
		title string
		rows  [][]string
	}{
		{SectionSkinfolds, skinfoldRows(r.Input.Skinfolds)},
		{SectionResults, resultRows(r)},
		{SectionRisk, riskRows(r.Result.Indices)},
	}
	for _, s := range sections {
		// Blank line between sections
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		head := []string{s.title, "---", "---", "---", "---"}
		if err := writeRows(cw, append([][]string{head}, s.rows...)); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteFile writes r into dir under FileName and returns the path.
func WriteFile(dir string, r *model.Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, FileName(r.Input.Name, r.GeneratedAt))
	if err := Save(path, r); err != nil {
		return "", err
	}
	return path, nil
}

// Save writes r to path, replacing any existing file.
func Save(path string, r *model.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	return writeAndClose(f, r)
}

// writeAndClose reports the close error when the write itself succeeded.
func writeAndClose(wc io.WriteCloser, r *model.Report) (err error) {
	defer func() {
		if closeErr := wc.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close export file: %w", closeErr)
		}
	}()

	if err := Write(wc, r); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

var whitespace = regexp.MustCompile(`\s`)

// FileName is "Avaliacao_<name>_<YYYY-MM-DD>.csv" with every whitespace
// character in the name replaced by an underscore.
func FileName(name string, date time.Time) string {
	return "Avaliacao_" + whitespace.ReplaceAllString(name, "_") + "_" + date.Format("2006-01-02") + ".csv"
}

// FormatNumber renders v with four decimals and a comma separator.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	return strings.Replace(strconv.FormatFloat(v, 'f', 4, 64), ".", ",", 1)
}

func generalRows(r *model.Report) [][]string {
	in := r.Input
	return [][]string{
		{SectionGeneral, "Nome", in.Name, "", ""},
		{SectionGeneral, "Idade", strconv.Itoa(in.Age), "anos", ""},
		{SectionGeneral, "Sexo", in.Sex.String(), "", ""},
		{SectionGeneral, "Estatura", optional(in.StatureCm), "cm", ""},
		{SectionGeneral, "Peso", optional(in.MassKg), "kg", ""},
		{SectionGeneral, "Cintura", optional(in.WaistCm), "cm", ""},
		{SectionGeneral, "Quadril", optional(in.HipCm), "cm", ""},
		{SectionGeneral, "Protocolo Selecionado", string(r.Protocol), "", ""},
	}
}

func skinfoldRows(s model.Skinfolds) [][]string {
	rows := make([][]string, 0, len(model.Sites()))
	for _, site := range model.Sites() {
		rows = append(rows, []string{SectionSkinfolds, string(site), FormatNumber(s.Get(site)), "mm", ""})
	}
	return rows
}

func resultRows(r *model.Report) [][]string {
	sf := r.Result.Skinfold
	if sf == nil {
		return nil
	}
	if sf.Failed() {
		return [][]string{{categoryComposition, "Erro Protocolo Dobras", sf.Error.Message, "", ""}}
	}

	var label string
	if r.Classification != nil {
		label = r.Classification.Label()
	}
	return [][]string{
		{categoryComposition, "Protocolo Utilizado", sf.Name, "", ""},
		{categoryComposition, "Percentual de Gordura Estimado", FormatNumber(classify.Round(sf.BodyFat, 2)), "%", label},
		{categoryComposition, "Densidade Corporal", FormatNumber(classify.Round(sf.Density, 4)), "g/mL", ""},
	}
}

func riskRows(idx []model.IndexResult) [][]string {
	rows := make([][]string, 0, len(idx))
	for _, ix := range idx {
		value := NotAvailable
		if ix.HasValue() {
			value = FormatNumber(classify.Round(*ix.Value, 2))
		}
		status := strings.ReplaceAll(ix.Status, ";", ",")
		rows = append(rows, []string{categoryRisk, ix.Name, value, "", status})
	}
	return rows
}

// optional renders unmeasured (zero) values as N/A.
func optional(v float64) string {
	if v <= 0 {
		return NotAvailable
	}
	return FormatNumber(v)
}

func writeRows(cw *csv.Writer, rows [][]string) error {
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}
