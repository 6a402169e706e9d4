package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/anderschbe/password-strength-meter/internal/audit"
	"github.com/anderschbe/password-strength-meter/internal/discovery"
	"github.com/anderschbe/password-strength-meter/internal/git"
	"github.com/anderschbe/password-strength-meter/internal/project"
	"github.com/spf13/cobra"
)

var (
	auditRoot      string
	auditFailUnder int
	auditExclude   []string
	auditStaged    bool
	auditChanged   bool
)

var auditCmd = &cobra.Command{
	Use:   "audit [patterns...]",
	Short: "Score candidate password lists in bulk",
	Long: `Score every candidate in one or more password list files.

Each line of a list is either "password" or "username<TAB>password". Blank
lines and lines starting with '#' are skipped. Reports show masked
passwords only.

Patterns are doublestar globs relative to --root. Without --root, the
nearest directory holding a .pwmeterrc file or .git is used. With no
patterns, the defaults are:

  **/*.pwlist
  **/passwords.txt

Absolute paths name a single list file. Use "-" to read a single list
from stdin. --staged and --changed limit the audit to lists matching the
patterns that git reports as staged or as uncommitted changes.

The audit fails (exit 1) when any candidate misses a requirement or scores
below --fail-under.

EXAMPLES:

  pwmeter audit
  pwmeter audit 'lists/**/*.txt' --fail-under 34
  pwmeter audit - < candidates.txt
  pwmeter audit --staged
  pwmeter audit --format json -o report.json`,
	Run: func(cmd *cobra.Command, args []string) {
		success, err := runAudit(cmd.InOrStdin(), cmd.OutOrStdout(), args, cmd.Flags().Changed("fail-under"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
			return
		}
		if !success {
			exitFunc(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().StringVarP(&auditRoot, "root", "r", "", "Directory patterns are resolved against (default: project root)")
	auditCmd.Flags().IntVar(&auditFailUnder, "fail-under", 0, "Fail candidates scoring below this value (0-100)")
	auditCmd.Flags().StringSliceVarP(&auditExclude, "exclude", "e", nil, "Glob patterns to skip, in addition to config excludes")
	auditCmd.Flags().BoolVar(&auditStaged, "staged", false, "Only audit lists staged in git")
	auditCmd.Flags().BoolVar(&auditChanged, "changed", false, "Only audit lists with uncommitted changes in git")
	auditCmd.MarkFlagsMutuallyExclusive("staged", "changed")
}

func runAudit(in io.Reader, out io.Writer, patterns []string, failUnderSet bool) (bool, error) {
	cfg, err := loadConfig()
	if err != nil {
		return false, err
	}

	failUnder := cfg.FailUnder
	if failUnderSet {
		failUnder = auditFailUnder
	}
	if failUnder < 0 || failUnder > 100 {
		return false, fmt.Errorf("--fail-under must be between 0 and 100, got %d", failUnder)
	}

	root, err := resolveAuditRoot(auditRoot)
	if err != nil {
		return false, err
	}

	auditor := audit.New(cfg.Scoring(), cfg.LabelSet(), failUnder, cfg.Verbose)

	var summary *audit.Summary
	if len(patterns) == 1 && patterns[0] == "-" {
		summary = auditor.NewSummary(root)
		if err := auditor.AuditReader("stdin", in, summary); err != nil {
			return false, err
		}
	} else {
		files, err := collectAuditFiles(root, patterns, append(append([]string{}, cfg.Exclude...), auditExclude...))
		if err != nil {
			return false, err
		}
		if len(files) == 0 {
			warnf(cfg, "no candidate lists matched %v under %s", patterns, root)
		}
		summary, err = auditor.AuditFiles(root, files)
		if err != nil {
			return false, err
		}
	}

	if err := newOutputter(cfg, out).Format(summary, cfg.Format); err != nil {
		return false, fmt.Errorf("error formatting output: %w", err)
	}
	return summary.Success(), nil
}

// collectAuditFiles globs relative patterns under root. Absolute paths name
// a single list file and bypass globbing.
func collectAuditFiles(root string, patterns, exclude []string) ([]discovery.File, error) {
	var globs []string
	var files []discovery.File
	for _, p := range patterns {
		if !filepath.IsAbs(p) {
			globs = append(globs, p)
			continue
		}
		absPath, err := discovery.ValidateFilePath(p)
		if err != nil {
			return nil, err
		}
		files = append(files, discovery.File{Path: absPath, RelPath: absPath})
	}

	if len(globs) == 0 && len(files) > 0 {
		return files, nil
	}

	fd := discovery.NewFileDiscovery(root, exclude)
	if auditStaged || auditChanged {
		if len(globs) == 0 {
			globs = discovery.DefaultPatterns
		}
		var touched []string
		var err error
		if auditStaged {
			touched, err = git.GetStagedFiles(root, globs)
		} else {
			touched, err = git.GetChangedFiles(root, globs)
		}
		if err != nil {
			return nil, fmt.Errorf("error listing git changes: %w", err)
		}
		return append(files, fd.FromPaths(touched)...), nil
	}

	matched, err := fd.DiscoverFiles(globs)
	if err != nil {
		return nil, fmt.Errorf("error discovering files: %w", err)
	}
	return append(files, matched...), nil
}

// resolveAuditRoot returns the absolute --root, or the project root when
// --root is empty
func resolveAuditRoot(root string) (string, error) {
	if root == "" {
		found, err := project.FindProjectRoot(".")
		if err != nil {
			return "", fmt.Errorf("error finding project root: %w", err)
		}
		return found, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("error resolving root: %w", err)
	}
	return abs, nil
}
