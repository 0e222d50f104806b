package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonedit/internal/config"
	"github.com/mcncl/jsonedit/internal/draft"
	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/parser"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// captureStdout runs fn with os.Stdout redirected to a pipe.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	runErr := fn()

	_ = w.Close()
	os.Stdout = orig
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out), runErr
}

// withStdin runs fn with data piped to os.Stdin.
func withStdin(t *testing.T, data string, fn func()) {
	t.Helper()
	orig := os.Stdin
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString(data)
	require.NoError(t, err)
	_ = w.Close()

	os.Stdin = r
	defer func() { os.Stdin = orig }()
	fn()
}

func testContext(t *testing.T) *Context {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Drafts.Dir = t.TempDir()
	cfg.Dev.Verify = true
	return &Context{Config: cfg}
}

const scenarioScript = `
steps:
  - {op: rename, path: name, value: title}
  - {op: remove, path: tags/0}
  - {op: append, path: tags}
`

func TestRun_Print(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	dir := t.TempDir()
	CLI.Input = writeFile(t, dir, "bot.json", `{"name":"bot1","n":1.50}`)
	CLI.Print = true

	out, err := captureStdout(t, func() error { return run(testContext(t)) })
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"bot1\",\n  \"n\": 1.50\n}\n", out)
}

func TestRun_PrintJSONC(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	dir := t.TempDir()
	CLI.Input = writeFile(t, dir, "bot.jsonc", "{\n  // comment\n  \"a\": [1, 2,],\n}\n")
	CLI.Print = true

	out, err := captureStdout(t, func() error { return run(testContext(t)) })
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":[1,2]}`, out)
}

func TestRun_PrintToOutputFile(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	dir := t.TempDir()
	CLI.Input = writeFile(t, dir, "bot.json", `{"name":"bot1"}`)
	CLI.Output = filepath.Join(dir, "out.json")
	CLI.Print = true

	require.NoError(t, run(testContext(t)))
	assert.JSONEq(t, `{"name":"bot1"}`, readFile(t, CLI.Output))
}

func TestRun_PrintReplacesOutputFile(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	dir := t.TempDir()
	CLI.Input = writeFile(t, dir, "bot.json", `{"name":"bot1"}`)
	CLI.Output = writeFile(t, dir, "out.json", `{"stale":"content that is longer than the new document"}`)
	require.NoError(t, os.Chmod(CLI.Output, 0600))
	CLI.Print = true

	require.NoError(t, run(testContext(t)))
	assert.JSONEq(t, `{"name":"bot1"}`, readFile(t, CLI.Output))

	info, err := os.Stat(CLI.Output)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "the existing mode is kept")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary files are left behind")
}

func TestRun_ScriptSavesInput(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	dir := t.TempDir()
	CLI.Input = writeFile(t, dir, "bot.json", `{"name":"bot1","tags":["a","b"]}`)
	CLI.Script = writeFile(t, dir, "ops.yml", scenarioScript)

	require.NoError(t, run(testContext(t)))
	assert.JSONEq(t, `{"title":"bot1","tags":["b",""]}`, readFile(t, CLI.Input))

	// Key order follows the document, not the alphabet.
	v, err := parser.ParseFile(CLI.Input)
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "tags"}, v.Object().Keys())
}

func TestRun_ScriptWithOutput(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	dir := t.TempDir()
	CLI.Input = writeFile(t, dir, "bot.json", `{"name":"bot1","tags":["a","b"]}`)
	CLI.Script = writeFile(t, dir, "ops.yml", scenarioScript)
	CLI.Output = filepath.Join(dir, "out.json")

	require.NoError(t, run(testContext(t)))
	assert.JSONEq(t, `{"title":"bot1","tags":["b",""]}`, readFile(t, CLI.Output))
	assert.JSONEq(t, `{"name":"bot1","tags":["a","b"]}`, readFile(t, CLI.Input), "input is untouched")
}

func TestRun_ScriptAndPrint(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	dir := t.TempDir()
	CLI.Input = writeFile(t, dir, "bot.json", `{"name":"bot1","tags":["a","b"]}`)
	CLI.Script = writeFile(t, dir, "ops.yml", scenarioScript)
	CLI.Print = true

	out, err := captureStdout(t, func() error { return run(testContext(t)) })
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"bot1","tags":["b",""]}`, out)
	assert.JSONEq(t, `{"name":"bot1","tags":["a","b"]}`, readFile(t, CLI.Input))
}

func TestRun_ScriptFromStdin(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	dir := t.TempDir()
	CLI.Input = ""
	CLI.Script = writeFile(t, dir, "ops.yml", scenarioScript)

	var out string
	var err error
	withStdin(t, `{"name":"bot1","tags":["a","b"]}`, func() {
		out, err = captureStdout(t, func() error { return run(testContext(t)) })
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"bot1","tags":["b",""]}`, out)
}

func TestRun_ScriptError(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	dir := t.TempDir()
	CLI.Input = writeFile(t, dir, "bot.json", `{"tags":["a"]}`)
	CLI.Script = writeFile(t, dir, "ops.yml", "steps:\n  - {op: remove, path: tags/x}\n")

	err := run(testContext(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrBadIndex)
	assert.Equal(t, `{"tags":["a"]}`, readFile(t, CLI.Input), "nothing is saved")
}

func TestRun_NoInput(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	CLI.Input = ""
	CLI.Print = false
	CLI.Script = ""

	err := run(testContext(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoInput)
}

func TestRun_NonExistentFile(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	CLI.Input = "/non/existent/file.json"
	CLI.Print = true

	err := run(testContext(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrFileNotFound)
}

func TestRun_InvalidJSON(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	CLI.Input = writeFile(t, t.TempDir(), "bad.json", `{"name": `)
	CLI.Print = true

	err := run(testContext(t))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParsing))
}

func TestRun_DraftsClear(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	ctx := testContext(t)
	CLI.Input = writeFile(t, t.TempDir(), "bot.json", `{"name":"bot1"}`)
	CLI.DraftsClear = true

	store := draft.NewStore(ctx.Config.Drafts.Dir, time.Hour)
	v, err := parser.ParseString(`{"name":"draft"}`)
	require.NoError(t, err)
	_, err = store.Save(draft.Draft{Target: CLI.Input, Content: v})
	require.NoError(t, err)

	require.NoError(t, run(ctx))

	_, ok, err := store.Load(CLI.Input)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadConfig_FlagsOverFile(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	dir := t.TempDir()
	CLI.Config = writeFile(t, dir, ".jsonedit.yml", "editor:\n  default_key: newField\ndrafts:\n  enabled: true\n")
	CLI.NoDrafts = true
	CLI.DraftDir = filepath.Join(dir, "drafts")
	CLI.Debug = true

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "new_field", cfg.Editor.DefaultKey)
	assert.False(t, cfg.Drafts.Enabled)
	assert.Equal(t, CLI.DraftDir, cfg.Drafts.Dir)
	assert.True(t, cfg.Dev.Debug, "--debug reaches the logger through the config")
}

func TestNewLogger(t *testing.T) {
	log, err := newLogger(config.DevConfig{})
	require.NoError(t, err)
	assert.NotNil(t, log)

	path := filepath.Join(t.TempDir(), "jsonedit.log")
	log, err = newLogger(config.DevConfig{LogFile: path, Debug: true})
	require.NoError(t, err)
	log.Debug("hello")
	require.NoError(t, log.Sync())
	assert.Contains(t, readFile(t, path), "hello")
}

func TestWriteOutput_FileError(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	CLI.Output = "/non/existent/dir/output.json"

	err := writeOutput("{}\n")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeOutput))
}
