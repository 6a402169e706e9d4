package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/anderschbe/password-strength-meter/internal/meter"
	"github.com/spf13/cobra"
)

var (
	username string
	explain  bool
)

var scoreCmd = &cobra.Command{
	Use:   "score [password]",
	Short: "Score a single password",
	Long: `Score a single password and render the strength meter.

The password is taken from the argument, or from the first line of stdin
when no argument is given. Passing the password on stdin keeps it out of
shell history.

FLAGS:
  -u, --username  Reject passwords equal to or containing this username
  --explain       Print every scoring step

Exits 1 when the password misses a requirement, or scores below failUnder
when that is configured.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runScore(cmd.InOrStdin(), cmd.OutOrStdout(), args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	addScoreFlags(scoreCmd)
}

func addScoreFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username the password must not match")
	cmd.Flags().BoolVar(&explain, "explain", false, "Print every scoring step")
}

func runScore(in io.Reader, out io.Writer, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if explain {
		cfg.Verbose = true
	}

	password, err := readPassword(in, args)
	if err != nil {
		return err
	}

	scoringCfg := cfg.Scoring()
	if username != "" {
		scoringCfg.CheckUsername = true
	}

	m := meter.New(scoringCfg, cfg.LabelSet())
	reading := m.Update(password, username)

	if err := newOutputter(cfg, out).FormatReading(reading, cfg.Format); err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}

	if reading.Score.IsFailure() || (cfg.FailUnder > 0 && int(reading.Score) < cfg.FailUnder) {
		exitFunc(1)
	}
	return nil
}

// readPassword returns args[0], or the first line of in
func readPassword(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("error reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
