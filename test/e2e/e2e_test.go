package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEndToEnd_ScriptEditsFile runs a batch script over a nested document
// and checks the saved file.
func TestEndToEnd_ScriptEditsFile(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "jsonedit-e2e")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	jsonContent := `{
		"id": 12345,
		"name": "bot1",
		"enabled": false,
		"config": {
			"timeout_seconds": 30,
			"features": ["logging", "metrics", "alerting"],
			"environments": {
				"development": {"debug": true, "log_level": "debug"},
				"production": {"debug": false, "log_level": "info"}
			}
		},
		"commands": {
			"greet": {"msg": "hello", "info": "Greets the user", "args_info": {"name": "who to greet"}}
		}
	}`

	jsonFile := filepath.Join(tempDir, "bot.json")
	err = os.WriteFile(jsonFile, []byte(jsonContent), 0644)
	require.NoError(t, err)

	scriptFile := filepath.Join(tempDir, "ops.yml")
	script := `
steps:
  - {op: rename, path: name, value: title}
  - {op: toggle, path: enabled}
  - {op: edit, path: config/timeout_seconds, value: "45"}
  - {op: remove, path: config/features/1}
  - {op: append, path: config/features}
  - {op: edit, path: config/features/2, value: tracing}
  - {op: rename, path: config/environments/production, value: development}
  - {op: edit, path: commands/greet/msg, value: "hi there"}
`
	err = os.WriteFile(scriptFile, []byte(script), 0644)
	require.NoError(t, err)

	cmd := exec.Command("go", "run", "../../main.go", "-i", jsonFile, "--script", scriptFile, "--verify")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "CLI command failed: %s", string(output))

	saved, err := os.ReadFile(jsonFile)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": 12345,
		"title": "bot1",
		"enabled": true,
		"config": {
			"timeout_seconds": 45,
			"features": ["logging", "alerting", "tracing"],
			"environments": {
				"development": {"debug": true, "log_level": "debug"},
				"development1": {"debug": false, "log_level": "info"}
			}
		},
		"commands": {
			"greet": {"msg": "hi there", "info": "Greets the user", "args_info": {"name": "who to greet"}}
		}
	}`, string(saved))

	// Member order is kept.
	code := string(saved)
	assert.Less(t, strings.Index(code, `"id"`), strings.Index(code, `"title"`))
	assert.Less(t, strings.Index(code, `"title"`), strings.Index(code, `"enabled"`))
}

// TestEndToEnd_ScriptFailureLeavesFile checks that a failing step saves
// nothing and reports the step.
func TestEndToEnd_ScriptFailureLeavesFile(t *testing.T) {
	tempDir := t.TempDir()

	jsonFile := filepath.Join(tempDir, "bot.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(`{"tags":["a","b"]}`), 0644))
	scriptFile := filepath.Join(tempDir, "ops.yml")
	require.NoError(t, os.WriteFile(scriptFile, []byte("steps:\n  - {op: append, path: tags}\n  - {op: remove, path: tags/x}\n"), 0644))

	cmd := exec.Command("go", "run", "../../main.go", "-i", jsonFile, "--script", scriptFile)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "step 2")

	saved, err := os.ReadFile(jsonFile)
	require.NoError(t, err)
	assert.Equal(t, `{"tags":["a","b"]}`, string(saved))
}

// TestEndToEnd_PrintFromStdin normalises a document piped to stdin.
func TestEndToEnd_PrintFromStdin(t *testing.T) {
	jsonContent := `{
		// JSONC comments and trailing commas are accepted
		"mixed_array": [1, "string", true, null, {"nested": "object"}, [1, 2, 3],],
		"price": 1.50,
	}`

	cmd := exec.Command("go", "run", "../../main.go", "--print")
	cmd.Stdin = strings.NewReader(jsonContent)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err := cmd.Run()
	require.NoError(t, err)

	output := stdout.String()
	assert.JSONEq(t, `{"mixed_array":[1,"string",true,null,{"nested":"object"},[1,2,3]],"price":1.50}`, output)
	assert.Contains(t, output, "1.50", "number literals are kept as written")
	assert.NotContains(t, output, "//")
}

// TestEndToEnd_SampleFile edits a copy of the bundled sample: a JSONC
// command file with help cards.
func TestEndToEnd_SampleFile(t *testing.T) {
	sample, err := os.ReadFile("../../testdata/samples/bot.jsonc")
	require.NoError(t, err)

	tempDir := t.TempDir()
	jsonFile := filepath.Join(tempDir, "bot.jsonc")
	require.NoError(t, os.WriteFile(jsonFile, sample, 0644))
	scriptFile := filepath.Join(tempDir, "ops.yml")
	require.NoError(t, os.WriteFile(scriptFile, []byte(`
steps:
  - {op: edit, path: commands/!roll/msg, value: "{user} rolled a {result}"}
  - {op: remove, path: commands/!bye}
  - {op: append, path: owners}
  - {op: edit, path: owners/2, value: carol}
  - {op: toggle, path: enabled}
  - {op: edit, path: banner, value: "null"}
`), 0644))

	cmd := exec.Command("go", "run", "../../main.go", "-i", jsonFile, "--script", scriptFile, "--print")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	require.NoError(t, cmd.Run(), "CLI command failed: %s", stderr.String())

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, []interface{}{"alice", "bob", "carol"}, got["owners"])
	assert.Equal(t, false, got["enabled"])
	assert.Nil(t, got["banner"])
	assert.Contains(t, stdout.String(), "2.50")

	commands := got["commands"].(map[string]interface{})
	assert.NotContains(t, commands, "!bye")
	roll := commands["!roll"].(map[string]interface{})
	assert.Equal(t, "{user} rolled a {result}", roll["msg"])
	assert.Equal(t, "Rolls a die", roll["info"])
}

// generateLargeJSON generates a large JSON file with the specified number of items
func generateLargeJSON(t testing.TB, filePath string, itemCount int) {
	// Seed random for reproducible results
	rng := rand.New(rand.NewSource(42))

	items := make([]map[string]interface{}, itemCount)

	for i := 0; i < itemCount; i++ {
		items[i] = map[string]interface{}{
			"id":          i + 1,
			"name":        fmt.Sprintf("Item %d", i+1),
			"description": fmt.Sprintf("This is item number %d in the test dataset", i+1),
			"created_at":  time.Now().Add(-time.Duration(rng.Intn(10000)) * time.Hour).Format(time.RFC3339),
			"price":       rng.Float64() * 1000,
			"quantity":    rng.Intn(100),
			"active":      rng.Intn(2) == 1,
			"tags":        []string{"tag1", "tag2", "tag3"}[0 : rng.Intn(3)+1],
			"metadata": map[string]interface{}{
				"source":   "test",
				"priority": rng.Intn(5) + 1,
				"score":    rng.Float64(),
			},
		}
	}

	jsonData, err := json.MarshalIndent(items, "", "  ")
	require.NoError(t, err)

	err = os.WriteFile(filePath, jsonData, 0644)
	require.NoError(t, err)
}

// BenchmarkLargeJSON benchmarks printing large JSON files through the CLI
func BenchmarkLargeJSON(b *testing.B) {
	// Skip in short mode
	if testing.Short() {
		b.Skip("skipping benchmark in short mode")
	}

	tempDir, err := os.MkdirTemp("", "jsonedit-bench")
	require.NoError(b, err)
	defer os.RemoveAll(tempDir)

	sizes := []struct {
		name      string
		itemCount int
	}{
		{"100Items", 100},
		{"1000Items", 1000},
		{"10000Items", 10000},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			jsonFile := filepath.Join(tempDir, fmt.Sprintf("%s.json", size.name))
			generateLargeJSON(b, jsonFile, size.itemCount)

			outputFile := filepath.Join(tempDir, fmt.Sprintf("%s_output.json", size.name))

			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				cmd := exec.Command("go", "run", "../../main.go", "-i", jsonFile, "--print", "-o", outputFile)
				output, err := cmd.CombinedOutput()
				require.NoError(b, err, "CLI command failed: %s", string(output))

				_, err = os.Stat(outputFile)
				require.NoError(b, err, "Output file was not created")

				os.Remove(outputFile)
			}
		})
	}
}

// TestEndToEnd_EdgeCases tests various edge cases
func TestEndToEnd_EdgeCases(t *testing.T) {
	testCases := []struct {
		name     string
		json     string
		expected string
		isError  bool
	}{
		{name: "EmptyObject", json: `{}`, expected: "{}"},
		{name: "EmptyArray", json: `[]`, expected: "[]"},
		{name: "SingleValue", json: `"just a string"`, expected: `"just a string"`},
		{name: "SingleNumber", json: `42`, expected: "42"},
		{name: "SingleBoolean", json: `true`, expected: "true"},
		{name: "SingleNull", json: `null`, expected: "null"},
		{name: "InvalidJSON", json: `{"name": }`, isError: true},
		{name: "MultipleValues", json: `{} {}`, isError: true},
		{name: "Empty", json: "  \n", isError: true},
		{
			name:     "DeeplyNestedObject",
			json:     `{"level1":{"level2":{"level3":{"level4":{"level5":{"value":42}}}}}}`,
			expected: `"value": 42`,
		},
		{name: "DeeplyNestedArray", json: `[[[[[[42]]]]]]`, expected: "42"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := exec.Command("go", "run", "../../main.go", "--print")
			cmd.Stdin = strings.NewReader(tc.json)
			var stdout bytes.Buffer
			cmd.Stdout = &stdout
			var stderr bytes.Buffer
			cmd.Stderr = &stderr

			err := cmd.Run()

			if tc.isError {
				assert.Error(t, err, "Expected an error for %s", tc.name)
			} else {
				assert.NoError(t, err, "Unexpected error for %s: %s", tc.name, stderr.String())
				assert.Contains(t, stdout.String(), tc.expected, "Expected output not found for %s", tc.name)
			}
		})
	}
}
