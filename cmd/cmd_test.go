package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anderschbe/password-strength-meter/internal/config"
	"github.com/anderschbe/password-strength-meter/internal/git"
	"github.com/anderschbe/password-strength-meter/internal/output"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupCmdTest resets global command state and moves into an empty directory
func setupCmdTest(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(oldWd)
	})

	reset := func() {
		configFile = ""
		username = ""
		explain = false
		auditRoot = "."
		auditFailUnder = 0
		auditExclude = nil
		auditStaged = false
		auditChanged = false
		initForce = false
	}
	reset()
	t.Cleanup(reset)
	return dir
}

// captureExit replaces exitFunc and returns the recorded exit code, -1 if
// exitFunc was never called
func captureExit(t *testing.T) *int {
	t.Helper()
	code := -1
	originalExitFunc := exitFunc
	exitFunc = func(c int) {
		code = c
	}
	t.Cleanup(func() { exitFunc = originalExitFunc })
	return &code
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCommandsConfigured(t *testing.T) {
	tests := []struct {
		use string
		got string
	}{
		{"pwmeter [password]", rootCmd.Use},
		{"score [password]", scoreCmd.Use},
		{"watch", watchCmd.Use},
		{"audit [patterns...]", auditCmd.Use},
		{"labels", labelsCmd.Use},
		{"init [path]", initCmd.Use},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.use, tt.got)
	}

	for _, c := range []string{"score", "watch", "audit", "labels", "init"} {
		found, _, err := rootCmd.Find([]string{c})
		require.NoError(t, err)
		assert.Equal(t, c, found.Name())
		assert.NotEmpty(t, found.Short)
		assert.NotNil(t, found.Run)
	}

	assert.NotNil(t, rootCmd.Flags().Lookup("username"))
	assert.NotNil(t, scoreCmd.Flags().Lookup("explain"))
	assert.NotNil(t, auditCmd.Flags().Lookup("fail-under"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestRunScore(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		stdin        string
		username     string
		explain      bool
		wantExit     int
		wantContains []string
	}{
		{
			name:         "strong password",
			args:         []string{"Secr3t!"},
			wantExit:     -1,
			wantContains: []string{"Strong password"},
		},
		{
			name:         "password from stdin",
			stdin:        "abcdefgh1\nignored\n",
			wantExit:     -1,
			wantContains: []string{"Medium; try using special characters"},
		},
		{
			name:         "too short exits 1",
			args:         []string{"abc"},
			wantExit:     1,
			wantContains: []string{"The password is too short"},
		},
		{
			name:         "username enables the check",
			args:         []string{"xjohnx1"},
			username:     "John",
			wantExit:     1,
			wantContains: []string{"The password contains the username"},
		},
		{
			name:         "explain prints steps",
			args:         []string{"abcdefgh"},
			explain:      true,
			wantExit:     -1,
			wantContains: []string{"Weak; try combining letters & numbers", "Length (8 x 4)", "Mixes numbers and letters"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCmdTest(t)
			code := captureExit(t)
			username = tt.username
			explain = tt.explain

			var out bytes.Buffer
			err := runScore(strings.NewReader(tt.stdin), &out, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.wantExit, *code)
			for _, want := range tt.wantContains {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestRunScoreJSON(t *testing.T) {
	dir := setupCmdTest(t)
	captureExit(t)
	writeFile(t, filepath.Join(dir, ".pwmeterrc.yaml"), "format: json\n")

	var out bytes.Buffer
	require.NoError(t, runScore(strings.NewReader(""), &out, []string{"Secr3t!"}))

	var got output.JSONReading
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.EqualValues(t, 93, got.Score)
	assert.Equal(t, 93, got.Percent)
	assert.Equal(t, "Strong password", got.Text)
	assert.Empty(t, got.Details)
	assert.NotContains(t, out.String(), "Secr3t!")

	explain = true
	out.Reset()
	require.NoError(t, runScore(strings.NewReader(""), &out, []string{"Secr3t!"}))
	got = output.JSONReading{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.NotEmpty(t, got.Details)
}

func TestRunScoreFailUnder(t *testing.T) {
	dir := setupCmdTest(t)
	code := captureExit(t)
	writeFile(t, filepath.Join(dir, ".pwmeterrc.yaml"), "failUnder: 60\n")

	var out bytes.Buffer
	require.NoError(t, runScore(strings.NewReader(""), &out, []string{"abcdefgh1"}))
	assert.Equal(t, 1, *code)
}

func TestRunScoreInvalidConfig(t *testing.T) {
	dir := setupCmdTest(t)
	captureExit(t)
	writeFile(t, filepath.Join(dir, ".pwmeterrc.yaml"), "minimumLength: 0\n")

	err := runScore(strings.NewReader(""), &bytes.Buffer{}, []string{"Secr3t!"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading configuration")
}

func TestReadPassword(t *testing.T) {
	got, err := readPassword(strings.NewReader("hunter2\r\nmore\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)

	got, err = readPassword(strings.NewReader("no newline"), nil)
	require.NoError(t, err)
	assert.Equal(t, "no newline", got)

	got, err = readPassword(strings.NewReader("ignored"), []string{"arg"})
	require.NoError(t, err)
	assert.Equal(t, "arg", got)
}

func TestRunWatchLineMode(t *testing.T) {
	setupCmdTest(t)

	var out bytes.Buffer
	require.NoError(t, runWatch(strings.NewReader("a\nabcd\nSecr3t!\n\n"), &out))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "The password is too short")
	assert.Contains(t, lines[1], "Weak; try combining letters & numbers")
	assert.Contains(t, lines[2], "Strong password")
	assert.Contains(t, lines[3], "Type your password")
}

func TestWatchSessionFollowsEvents(t *testing.T) {
	setupCmdTest(t)
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	var out bytes.Buffer
	s := newWatchSession(cfg, "", &out)
	assert.Equal(t, "Type your password", s.text)

	s.meter.Update("Secr3t!", "")
	assert.EqualValues(t, 93, s.score)
	assert.Equal(t, "Strong password", s.text)
	assert.Equal(t, 18, strings.Count(s.render(), "█"))
}

func TestApplyKey(t *testing.T) {
	tests := []struct {
		name     string
		buf      string
		key      rune
		want     string
		wantDone bool
	}{
		{"printable", "ab", 'c', "abc", false},
		{"unicode", "ab", 'é', "abé", false},
		{"backspace", "abc", keyDelete, "ab", false},
		{"ctrl-h", "abc", keyBackspace, "ab", false},
		{"backspace on empty", "", keyDelete, "", false},
		{"ctrl-u clears", "abc", keyCtrlU, "", false},
		{"enter", "abc", '\r', "abc", true},
		{"newline", "abc", '\n', "abc", true},
		{"ctrl-c", "abc", keyCtrlC, "abc", true},
		{"ctrl-d", "abc", keyCtrlD, "abc", true},
		{"tab ignored", "abc", '\t', "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, done := applyKey([]rune(tt.buf), tt.key)
			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, tt.wantDone, done)
		})
	}
}

func TestSkipEscapeSequence(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("[1;5Dx"))
	skipEscapeSequence(reader)
	r, _, err := reader.ReadRune()
	require.NoError(t, err)
	assert.Equal(t, 'x', r)
}

func TestRunAudit(t *testing.T) {
	tests := []struct {
		name         string
		files        map[string]string
		patterns     []string
		stdin        string
		failUnder    int
		failUnderSet bool
		exclude      []string
		wantSuccess  bool
		wantContains []string
	}{
		{
			name: "failing entry",
			files: map[string]string{
				"users.pwlist": "alice\tSecr3t!\n# comment\nabc\n",
			},
			wantSuccess:  false,
			wantContains: []string{"users.pwlist:3", "1/2 passed in 1 files"},
		},
		{
			name: "all pass",
			files: map[string]string{
				"lists/passwords.txt": "Secr3t!\nTr0ub4dor&3xyzQ\n",
			},
			wantSuccess:  true,
			wantContains: []string{"2/2 passed in 1 files"},
		},
		{
			name: "fail-under flag",
			files: map[string]string{
				"a.pwlist": "abcdefgh1\n",
			},
			failUnder:    60,
			failUnderSet: true,
			wantSuccess:  false,
			wantContains: []string{"0/1 passed", "fail under 60"},
		},
		{
			name: "exclude",
			files: map[string]string{
				"keep.pwlist":        "Secr3t!\n",
				"vendor/skip.pwlist": "abc\n",
			},
			exclude:      []string{"vendor/**"},
			wantSuccess:  true,
			wantContains: []string{"1/1 passed in 1 files"},
		},
		{
			name:         "explicit pattern",
			files:        map[string]string{"custom/list.txt": "abc\n"},
			patterns:     []string{"custom/*.txt"},
			wantSuccess:  false,
			wantContains: []string{"custom/list.txt:1"},
		},
		{
			name:         "stdin",
			patterns:     []string{"-"},
			stdin:        "bob\tbobby123\nSecr3t!\n",
			wantSuccess:  false,
			wantContains: []string{"stdin:1", "matches_username", "1/2 passed in 1 files"},
		},
		{
			name:         "username check disabled in config",
			files:        map[string]string{".pwmeterrc.yaml": "checkUsername: false\n"},
			patterns:     []string{"-"},
			stdin:        "bob\tbobby123\nSecr3t!\n",
			wantSuccess:  true,
			wantContains: []string{"2/2 passed in 1 files"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupCmdTest(t)
			for name, content := range tt.files {
				writeFile(t, filepath.Join(dir, name), content)
			}
			auditFailUnder = tt.failUnder
			auditExclude = tt.exclude

			var out bytes.Buffer
			success, err := runAudit(strings.NewReader(tt.stdin), &out, tt.patterns, tt.failUnderSet)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, success)
			for _, want := range tt.wantContains {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestRunAuditAbsolutePath(t *testing.T) {
	dir := setupCmdTest(t)
	list := filepath.Join(t.TempDir(), "outside.txt")
	writeFile(t, list, "Secr3t!\n")
	writeFile(t, filepath.Join(dir, "ignored.pwlist"), "abc\n")

	var out bytes.Buffer
	success, err := runAudit(strings.NewReader(""), &out, []string{list}, false)
	require.NoError(t, err)
	assert.True(t, success)
	assert.Contains(t, out.String(), "1/1 passed in 1 files")

	_, err = runAudit(strings.NewReader(""), &out, []string{filepath.Join(dir, "missing.txt")}, false)
	require.Error(t, err)
}

func TestRunAuditProjectRoot(t *testing.T) {
	dir := setupCmdTest(t)
	writeFile(t, filepath.Join(dir, ".git", "HEAD"), "ref: refs/heads/main\n")
	writeFile(t, filepath.Join(dir, "users.pwlist"), "Secr3t!\n")
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0755))
	require.NoError(t, os.Chdir(sub))
	auditRoot = ""

	var out bytes.Buffer
	success, err := runAudit(strings.NewReader(""), &out, nil, false)
	require.NoError(t, err)
	assert.True(t, success)
	assert.Contains(t, out.String(), "1/1 passed in 1 files")
}

func TestRunAuditStagedOutsideGit(t *testing.T) {
	dir := setupCmdTest(t)
	if git.IsGitRepo(dir) {
		t.Skip("temp directory is inside a git repository")
	}
	writeFile(t, filepath.Join(dir, "users.pwlist"), "abc\n")
	auditStaged = true

	var out bytes.Buffer
	success, err := runAudit(strings.NewReader(""), &out, nil, false)
	require.NoError(t, err)
	assert.True(t, success)
	assert.Contains(t, out.String(), "0/0 passed in 0 files")
}

func TestRunAuditInvalidFailUnder(t *testing.T) {
	setupCmdTest(t)
	auditFailUnder = 150

	_, err := runAudit(strings.NewReader(""), &bytes.Buffer{}, nil, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--fail-under")
}

func TestRunAuditMasksPasswords(t *testing.T) {
	dir := setupCmdTest(t)
	writeFile(t, filepath.Join(dir, ".pwmeterrc.yaml"), "format: json\nverbose: true\n")
	writeFile(t, filepath.Join(dir, "users.pwlist"), "Secr3t!\n")

	var out bytes.Buffer
	success, err := runAudit(strings.NewReader(""), &out, nil, false)
	require.NoError(t, err)
	assert.True(t, success)
	assert.Contains(t, out.String(), `"masked": "********"`)
	assert.NotContains(t, out.String(), "Secr3t!")
	assert.NotContains(t, out.String(), `"length"`)
}

func TestRunLabels(t *testing.T) {
	t.Run("console", func(t *testing.T) {
		setupCmdTest(t)
		var out bytes.Buffer
		require.NoError(t, runLabels(&out))
		assert.Contains(t, out.String(), "Thresholds")
		assert.Contains(t, out.String(), "Strong password")
		assert.Contains(t, out.String(), "notEnoughUpperLower")
	})

	t.Run("yaml with inline override", func(t *testing.T) {
		dir := setupCmdTest(t)
		writeFile(t, filepath.Join(dir, ".pwmeterrc.yaml"), "format: json\nlabels:\n  prompt: Enter a password\n")
		var out bytes.Buffer
		require.NoError(t, runLabels(&out))
		assert.Contains(t, out.String(), "prompt: Enter a password")
		assert.Contains(t, out.String(), "steps:")
	})
}

func TestRunInit(t *testing.T) {
	dir := setupCmdTest(t)

	var out bytes.Buffer
	require.NoError(t, runInit(&out, nil))
	assert.Contains(t, out.String(), "Wrote .pwmeterrc.yaml")
	assert.FileExists(t, filepath.Join(dir, ".pwmeterrc.yaml"))

	viper.Reset()
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MinimumLength)

	err = runInit(&out, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	initForce = true
	require.NoError(t, runInit(&out, nil))

	require.NoError(t, runInit(&out, []string{"alt.json"}))
	data, err := os.ReadFile(filepath.Join(dir, "alt.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"minimumLength\": 4")
}
