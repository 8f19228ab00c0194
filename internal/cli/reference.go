package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/bodycomp/internal/model"
	"github.com/ppiankov/bodycomp/internal/reference"
)

var tablesYAML bool

var protocolsCmd = &cobra.Command{
	Use:   "protocols",
	Short: "List the skinfold protocols and the sites their form collects",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printProtocols(cmd.OutOrStdout())
	},
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Print the body-fat classification table and the Durnin & Womersley constants",
	Long: `Print the reference tables in use. When reference.body_fat_table is set, the
classification table is read from that file.

Use --yaml to print the classification table in the format accepted by
reference.body_fat_table, as a starting point for a custom table.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		table := reference.DefaultBodyFatTable()
		if cfg.Reference.BodyFatTable != "" {
			if table, err = reference.LoadBodyFatTable(cfg.Reference.BodyFatTable); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		if tablesYAML {
			data, err := yaml.Marshal(table)
			if err != nil {
				return fmt.Errorf("marshal table: %w", err)
			}
			_, err = out.Write(data)
			return err
		}

		printBodyFatTable(out, table)
		printDurninTable(out, reference.DefaultDurninTable())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(protocolsCmd)
	rootCmd.AddCommand(tablesCmd)

	tablesCmd.Flags().BoolVar(&tablesYAML, "yaml", false, "print the classification table as YAML")
}

func printProtocols(w io.Writer) {
	for _, p := range model.Protocols() {
		labels := make([]string, 0, len(p.FormSites()))
		for _, s := range p.FormSites() {
			labels = append(labels, fmt.Sprintf("%s (%s)", s.Label(), s))
		}
		fmt.Fprintf(w, "%-7s %s\n", p, p.Title())
		fmt.Fprintf(w, "        %s\n\n", strings.Join(labels, ", "))
	}
}

func printBodyFatTable(w io.Writer, t *reference.BodyFatTable) {
	fmt.Fprintln(w, "Classificação do Percentual de Gordura (limites superiores, %)")
	fmt.Fprintln(w)
	for _, sex := range []model.Sex{model.SexMale, model.SexFemale} {
		fmt.Fprintf(w, "  %s\n", sex)
		fmt.Fprintf(w, "  %-7s %8s %9s %6s %8s %6s\n", "Idade", "Atleta", "Excelente", "Bom", "Mediano", "Ruim")
		for _, b := range t.Bands(sex) {
			l := b.Limits
			fmt.Fprintf(w, "  %-7s %8.1f %9.1f %6.1f %8.1f %6.1f\n", b.Band, l.Athlete, l.Excellent, l.Good, l.Average, l.Poor)
		}
		fmt.Fprintln(w)
	}
}

func printDurninTable(w io.Writer, t *reference.DurninTable) {
	fmt.Fprintln(w, "Durnin & Womersley: DC = C - M × log10(soma das 4 dobras)")
	fmt.Fprintln(w)
	for _, sex := range []model.Sex{model.SexMale, model.SexFemale} {
		fmt.Fprintf(w, "  %s\n", sex)
		fmt.Fprintf(w, "  %-7s %7s %7s\n", "Idade", "C", "M")
		for _, b := range t.Bands(sex) {
			fmt.Fprintf(w, "  %-7s %7.4f %7.4f\n", b.Band, b.C, b.M)
		}
		fmt.Fprintln(w)
	}
}
