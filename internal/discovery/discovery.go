package discovery

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPatterns locate candidate lists when audit is given no patterns.
var DefaultPatterns = []string{
	"**/*.pwlist",
	"**/passwords.txt",
}

// File represents a discovered candidate list
type File struct {
	Path    string
	RelPath string
	Size    int64
}

// FileDiscovery manages file discovery operations
type FileDiscovery struct {
	rootPath string
	exclude  []string
}

// NewFileDiscovery creates a new FileDiscovery instance. Exclude patterns
// are doublestar globs matched against paths relative to rootPath.
func NewFileDiscovery(rootPath string, exclude []string) *FileDiscovery {
	return &FileDiscovery{
		rootPath: rootPath,
		exclude:  exclude,
	}
}

// DiscoverFiles finds files matching any of patterns. Results are unique
// and sorted by relative path.
func (fd *FileDiscovery) DiscoverFiles(patterns []string) ([]File, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	seen := make(map[string]bool)
	var files []File

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.Glob(os.DirFS(fd.rootPath), pattern)
		if err != nil {
			return nil, fmt.Errorf("error evaluating pattern %s: %w", pattern, err)
		}

		for _, match := range matches {
			if seen[match] || fd.excluded(match) {
				continue
			}
			f, ok := fd.processMatch(match)
			if !ok {
				continue
			}
			seen[match] = true
			files = append(files, f)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelPath < files[j].RelPath
	})
	return files, nil
}

// FromPaths converts slash-separated paths relative to the root into Files,
// applying the same excludes and skips as DiscoverFiles.
func (fd *FileDiscovery) FromPaths(relPaths []string) []File {
	seen := make(map[string]bool)
	var files []File
	for _, rel := range relPaths {
		if seen[rel] || fd.excluded(rel) {
			continue
		}
		f, ok := fd.processMatch(rel)
		if !ok {
			continue
		}
		seen[rel] = true
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].RelPath < files[j].RelPath
	})
	return files
}

func (fd *FileDiscovery) excluded(relPath string) bool {
	for _, pattern := range fd.exclude {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
		// A directory pattern excludes everything below it.
		if ok, err := doublestar.Match(strings.TrimSuffix(pattern, "/")+"/**", relPath); err == nil && ok {
			return true
		}
	}
	return false
}

// processMatch converts a glob match into a File, returning false if the match should be skipped.
func (fd *FileDiscovery) processMatch(match string) (File, bool) {
	fullPath := filepath.Join(fd.rootPath, filepath.FromSlash(match))

	info, err := os.Stat(fullPath)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return File{}, false
	}
	if isBinary(fullPath) {
		return File{}, false
	}

	return File{
		Path:    fullPath,
		RelPath: match,
		Size:    info.Size(),
	}, true
}

// ValidateFilePath checks that path names a readable, non-empty text file
// and returns its absolute path.
func ValidateFilePath(path string) (absPath string, err error) {
	absPath, err = filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", absPath)
		}
		if os.IsPermission(err) {
			return "", fmt.Errorf("permission denied: %s", absPath)
		}
		return "", fmt.Errorf("cannot access file: %s: %w", absPath, err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", absPath)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("file is empty: %s", absPath)
	}
	if isBinary(absPath) {
		return "", fmt.Errorf("file appears to be binary, not text: %s", absPath)
	}

	return absPath, nil
}

// isBinary reports whether the first 512 bytes contain a NUL.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil {
		return true
	}
	return bytes.Contains(buf[:n], []byte{0})
}
