package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/anderschbe/password-strength-meter/internal/labels"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Show the effective labels and thresholds",
	Long: `Show the label text in effect after merging the built-in defaults, the
labelsFile named in config, and inline labels from config.

With --format json or markdown the label pack is printed as YAML, ready to
be saved as a labelsFile.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runLabels(cmd.OutOrStdout()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(labelsCmd)
}

func runLabels(out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Format != "console" {
		data, err := yaml.Marshal(cfg.Labels)
		if err != nil {
			return fmt.Errorf("error marshaling labels: %w", err)
		}
		fmt.Fprint(out, string(data))
		return nil
	}

	printLabels(out, cfg.Labels)
	return nil
}

func printLabels(out io.Writer, pack labels.Pack) {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	fmt.Fprintln(out, header.Render("Thresholds"))
	for _, step := range pack.LabelSet().Thresholds.Steps() {
		fmt.Fprintf(out, "  %s %s\n", dim.Render(fmt.Sprintf(">= %3d", step.Min)), step.Text)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, header.Render("Requirements"))
	rows := []struct {
		key  string
		text string
	}{
		{"tooShort", pack.TooShort},
		{"containsUsername", pack.ContainsUsername},
		{"notEnoughNumbers", pack.NotEnoughNumbers},
		{"notEnoughLetters", pack.NotEnoughLetters},
		{"notEnoughSymbols", pack.NotEnoughSymbols},
		{"notEnoughUpperLower", pack.NotEnoughUpperLower},
		{"prompt", pack.Prompt},
	}
	for _, row := range rows {
		fmt.Fprintf(out, "  %s %s\n", dim.Render(fmt.Sprintf("%-20s", row.key)), row.text)
	}
}
