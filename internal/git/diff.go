// Package git lists candidate password lists touched in a git working tree.
package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GetStagedFiles returns paths of staged files matching any of patterns,
// relative to rootPath with forward slashes.
// Returns empty slice if not in a git repository.
func GetStagedFiles(rootPath string, patterns []string) ([]string, error) {
	if !IsGitRepo(rootPath) {
		return []string{}, nil
	}

	cmd := exec.Command("git", "diff", "--name-only", "--staged", "--relative")
	cmd.Dir = rootPath
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git diff --staged failed: %w: %s", err, output)
	}

	return filterRelevantFiles(string(output), rootPath, patterns), nil
}

// GetChangedFiles returns paths of all uncommitted changes (staged +
// unstaged) matching any of patterns, relative to rootPath.
// Returns empty slice if not in a git repository.
func GetChangedFiles(rootPath string, patterns []string) ([]string, error) {
	if !IsGitRepo(rootPath) {
		return []string{}, nil
	}

	checkCmd := exec.Command("git", "rev-parse", "HEAD")
	checkCmd.Dir = rootPath
	if err := checkCmd.Run(); err != nil {
		// No commits yet - use all tracked files
		cmd := exec.Command("git", "ls-files")
		cmd.Dir = rootPath
		output, err := cmd.CombinedOutput()
		if err != nil {
			return nil, fmt.Errorf("git ls-files failed: %w: %s", err, output)
		}
		return filterRelevantFiles(string(output), rootPath, patterns), nil
	}

	cmd := exec.Command("git", "diff", "--name-only", "--relative", "HEAD")
	cmd.Dir = rootPath
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git diff HEAD failed: %w: %s", err, output)
	}

	return filterRelevantFiles(string(output), rootPath, patterns), nil
}

// IsGitRepo checks if the given directory is within a git repository.
func IsGitRepo(rootPath string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = rootPath
	cmd.Stderr = nil
	err := cmd.Run()
	return err == nil
}

// filterRelevantFiles keeps git output lines that still exist under
// rootPath and match a pattern.
func filterRelevantFiles(gitOutput, rootPath string, patterns []string) []string {
	var files []string
	lines := strings.Split(strings.TrimSpace(gitOutput), "\n")

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// git reports deletions too
		if _, err := os.Stat(filepath.Join(rootPath, filepath.FromSlash(line))); os.IsNotExist(err) {
			continue
		}

		if !isRelevantFile(line, patterns) {
			continue
		}

		files = append(files, filepath.ToSlash(line))
	}

	return files
}

// isRelevantFile reports whether relPath matches any doublestar pattern
func isRelevantFile(relPath string, patterns []string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
	}
	return false
}
