package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/anderschbe/password-strength-meter/internal/config"
	"github.com/anderschbe/password-strength-meter/internal/meter"
	"github.com/anderschbe/password-strength-meter/internal/output"
	"github.com/anderschbe/password-strength-meter/internal/scoring"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live strength meter while typing",
	Long: `Show a live strength meter while a password is typed.

On a terminal, input is read in raw mode without echo and the meter is
redrawn after every keystroke. Backspace deletes, Ctrl-U clears the line,
and Enter or Ctrl-C finishes.

When stdin is not a terminal, every input line is scored as a new value
of the field and one meter line is printed per update.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runWatch(os.Stdin, cmd.OutOrStdout()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&username, "username", "u", "", "Username the password must not match")
}

// Control keys handled in raw mode
const (
	keyCtrlC     = 3
	keyCtrlD     = 4
	keyBackspace = 8
	keyCtrlU     = 21
	keyEscape    = 27
	keyDelete    = 127
)

func runWatch(in io.Reader, out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	session := newWatchSession(cfg, username, out)
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return session.runRaw(f)
	}
	return session.runLines(in)
}

// watchSession draws the meter from the score and text events
type watchSession struct {
	meter    *meter.Meter
	console  *output.ConsoleFormatter
	out      io.Writer
	username string

	score scoring.Score
	text  string
}

func newWatchSession(cfg *config.Config, username string, out io.Writer) *watchSession {
	scoringCfg := cfg.Scoring()
	if username != "" {
		scoringCfg.CheckUsername = true
	}

	s := &watchSession{
		meter:    meter.New(scoringCfg, cfg.LabelSet()),
		console:  output.NewConsoleFormatter(out, false, false, cfg.ShowPercent, cfg.ShowText),
		out:      out,
		username: username,
	}
	s.text = s.meter.Text()
	s.meter.OnScore(func(score scoring.Score) {
		s.score = score
	})
	s.meter.OnText(func(text string, _ scoring.Score) {
		s.text = text
	})
	return s
}

func (s *watchSession) render() string {
	return s.console.RenderMeter(meter.Reading{
		Score:   s.score,
		Percent: s.score.Percent(),
		Text:    s.text,
	})
}

func (s *watchSession) runRaw(f *os.File) error {
	fd := int(f.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("error entering raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	s.meter.Update("", s.username)
	fmt.Fprint(s.out, "\r\033[K"+s.render())

	reader := bufio.NewReader(f)
	var buf []rune
	for {
		r, _, err := reader.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("error reading input: %w", err)
		}
		if r == keyEscape {
			skipEscapeSequence(reader)
			continue
		}

		var done bool
		buf, done = applyKey(buf, r)
		if done {
			break
		}
		s.meter.Update(string(buf), s.username)
		fmt.Fprint(s.out, "\r\033[K"+s.render())
	}
	fmt.Fprint(s.out, "\r\n")
	return nil
}

func (s *watchSession) runLines(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		s.meter.Update(strings.TrimSuffix(scanner.Text(), "\r"), s.username)
		fmt.Fprintln(s.out, s.render())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}

// applyKey edits buf for one keystroke. done is set on Enter, Ctrl-C and
// Ctrl-D.
func applyKey(buf []rune, r rune) (out []rune, done bool) {
	switch {
	case r == '\r' || r == '\n' || r == keyCtrlC || r == keyCtrlD:
		return buf, true
	case r == keyDelete || r == keyBackspace:
		if len(buf) > 0 {
			buf = buf[:len(buf)-1]
		}
		return buf, false
	case r == keyCtrlU:
		return buf[:0], false
	case unicode.IsPrint(r):
		return append(buf, r), false
	default:
		return buf, false
	}
}

// skipEscapeSequence consumes the rest of a CSI sequence such as an arrow key
func skipEscapeSequence(reader *bufio.Reader) {
	b, err := reader.ReadByte()
	if err != nil || b != '[' {
		return
	}
	for {
		b, err := reader.ReadByte()
		if err != nil || (b >= 0x40 && b <= 0x7e) {
			return
		}
	}
}
