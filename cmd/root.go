package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/anderschbe/password-strength-meter/internal/config"
	"github.com/anderschbe/password-strength-meter/internal/outputters"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configFile   string
	quiet        bool
	verbose      bool
	outputFormat string
	outputFile   string
)

// exitFunc is replaced in tests
var exitFunc = os.Exit

var rootCmd = &cobra.Command{
	Use:   "pwmeter [password]",
	Short: "Password strength meter",
	Long: `pwmeter rates password strength on a 0-100 scale and labels the result.

Scores come from length, repeated patterns, and the mix of digits, letters,
symbols and letter case. Passwords that miss a hard requirement (minimum
length, a required character class, or matching the username) are rejected
with a specific reason instead of a score.

With no subcommand, pwmeter scores a single password given as an argument
or read from stdin.

EXAMPLES:

  pwmeter 'Secr3t!'
  echo 'Secr3t!' | pwmeter --explain
  pwmeter watch
  pwmeter audit '**/*.pwlist' --fail-under 34`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runScore(cmd.InOrStdin(), cmd.OutOrStdout(), args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		exitFunc(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: .pwmeterrc.{json,yaml,yml} in the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show the score breakdown")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "console", "Output format (console|json|markdown)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Write the report to a file (json and markdown)")

	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))

	addScoreFlags(rootCmd)
}

// loadConfig loads configuration for a command
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	return cfg, nil
}

// newOutputter builds an outputter writing to w
func newOutputter(cfg *config.Config, w io.Writer) *outputters.Outputter {
	return outputters.NewOutputterWithFactory(cfg, outputters.NewDefaultFormatterFactory(cfg, w))
}

// warnf prints a warning to stderr unless --quiet is set
func warnf(cfg *config.Config, format string, args ...any) {
	if cfg != nil && cfg.Quiet {
		return
	}
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}
