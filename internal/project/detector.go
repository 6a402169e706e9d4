// Package project locates the directory an audit runs from.
package project

import (
	"os"
	"path/filepath"

	"github.com/anderschbe/password-strength-meter/internal/config"
)

// FindProjectRoot searches for a project root starting from the given path
// and climbing up the directory tree if needed. A directory holding a
// pwmeter config file or a .git entry is a root. Without one, the start
// path itself is returned.
func FindProjectRoot(startPath string) (string, error) {
	if startPath == "" {
		startPath = "."
	}
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return "", err
	}

	currentDir := absPath
	for {
		if isProjectRoot(currentDir) {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)
		if parent == currentDir {
			break
		}
		currentDir = parent
	}

	return absPath, nil
}

// isProjectRoot determines if a directory is a project root
func isProjectRoot(path string) bool {
	for _, name := range config.ConfigPaths {
		if _, err := os.Stat(filepath.Join(path, name)); err == nil {
			return true
		}
	}
	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		return true
	}
	return false
}
