package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var listPatterns = []string{"**/*.pwlist", "**/passwords.txt"}

func TestIsRelevantFile(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"root list", "users.pwlist", true},
		{"nested list", "fixtures/auth/users.pwlist", true},
		{"passwords.txt", "seed/passwords.txt", true},
		{"root passwords.txt", "passwords.txt", true},

		{"go source", "main.go", false},
		{"other txt", "notes.txt", false},
		{"suffix lookalike", "users.pwlist.bak", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isRelevantFile(tt.path, listPatterns)
			if result != tt.expected {
				t.Errorf("isRelevantFile(%q) = %v, want %v", tt.path, result, tt.expected)
			}
		})
	}
}

func TestFilterRelevantFiles(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"users.pwlist", "lists/passwords.txt", "README.md"} {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x\n"), 0644))
	}

	output := "users.pwlist\n  lists/passwords.txt  \nREADME.md\ndeleted.pwlist\n\n"
	got := filterRelevantFiles(output, tmpDir, listPatterns)
	assert.Equal(t, []string{"users.pwlist", "lists/passwords.txt"}, got)

	assert.Nil(t, filterRelevantFiles("", tmpDir, listPatterns))
}

func TestNonGitRepo(t *testing.T) {
	tmpDir := t.TempDir()
	if IsGitRepo(tmpDir) {
		t.Skip("temp directory is inside a git repository")
	}

	staged, err := GetStagedFiles(tmpDir, listPatterns)
	require.NoError(t, err)
	assert.Empty(t, staged)

	changed, err := GetChangedFiles(tmpDir, listPatterns)
	require.NoError(t, err)
	assert.Empty(t, changed)
}

// initRepo creates a git repository in a temp dir, skipping without git
func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available, skipping integration test")
	}
	tmpDir := t.TempDir()
	gitRun(t, tmpDir, "init")
	gitRun(t, tmpDir, "config", "user.email", "test@test.com")
	gitRun(t, tmpDir, "config", "user.name", "Test User")
	gitRun(t, tmpDir, "config", "commit.gpgsign", "false")
	return tmpDir
}

func gitRun(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestGetStagedFiles(t *testing.T) {
	tmpDir := initRepo(t)
	writeFile(t, filepath.Join(tmpDir, "auth", "users.pwlist"), "Secr3t!\n")
	writeFile(t, filepath.Join(tmpDir, "README.md"), "# README\n")
	gitRun(t, tmpDir, "add", ".")

	staged, err := GetStagedFiles(tmpDir, listPatterns)
	require.NoError(t, err)
	assert.Equal(t, []string{"auth/users.pwlist"}, staged)
}

func TestGetStagedFiles_RelativeToSubdir(t *testing.T) {
	tmpDir := initRepo(t)
	writeFile(t, filepath.Join(tmpDir, "auth", "users.pwlist"), "Secr3t!\n")
	writeFile(t, filepath.Join(tmpDir, "other", "passwords.txt"), "abc\n")
	gitRun(t, tmpDir, "add", ".")

	staged, err := GetStagedFiles(filepath.Join(tmpDir, "auth"), listPatterns)
	require.NoError(t, err)
	assert.Equal(t, []string{"users.pwlist"}, staged)
}

func TestGetChangedFiles_NoCommits(t *testing.T) {
	tmpDir := initRepo(t)
	writeFile(t, filepath.Join(tmpDir, "users.pwlist"), "Secr3t!\n")
	writeFile(t, filepath.Join(tmpDir, "seed", "passwords.txt"), "abc\n")
	writeFile(t, filepath.Join(tmpDir, "README.md"), "# README\n")
	gitRun(t, tmpDir, "add", ".")

	files, err := GetChangedFiles(tmpDir, listPatterns)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"users.pwlist", "seed/passwords.txt"}, files)
}

func TestGetChangedFiles_WithCommits(t *testing.T) {
	tmpDir := initRepo(t)
	writeFile(t, filepath.Join(tmpDir, "committed.pwlist"), "Secr3t!\n")
	writeFile(t, filepath.Join(tmpDir, "removed.pwlist"), "abc\n")
	gitRun(t, tmpDir, "add", ".")
	gitRun(t, tmpDir, "commit", "-m", "initial")

	// Modify one tracked list, delete another, and stage a new one
	writeFile(t, filepath.Join(tmpDir, "committed.pwlist"), "Secr3t!\nabcdefgh1\n")
	require.NoError(t, os.Remove(filepath.Join(tmpDir, "removed.pwlist")))
	writeFile(t, filepath.Join(tmpDir, "new.pwlist"), "Tr0ub4dor&3\n")
	gitRun(t, tmpDir, "add", "new.pwlist")

	files, err := GetChangedFiles(tmpDir, listPatterns)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"committed.pwlist", "new.pwlist"}, files)
}
