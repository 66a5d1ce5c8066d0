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

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// terseBin is the binary built once for the whole package.
var terseBin string

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "terse-e2e")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}

	terseBin = filepath.Join(dir, "terse")
	build := exec.Command("go", "build", "-o", terseBin, "../..")
	if out, err := build.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to build terse: %v\n%s", err, out)
		_ = os.RemoveAll(dir)
		os.Exit(1)
	}

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// runTerse runs the binary with stdin and returns stdout, stderr and the
// command error.
func runTerse(t testing.TB, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command(terseBin, args...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// TestEndToEnd_ComplexNestedStructures converts a nested JSON document to
// terse and back and checks nothing was lost.
func TestEndToEnd_ComplexNestedStructures(t *testing.T) {
	tempDir := t.TempDir()

	jsonContent := `{
		"id": 12345,
		"uuid": "550e8400-e29b-41d4-a716-446655440000",
		"updated_at": null,
		"config": {
			"enabled": true,
			"timeout_seconds": 30,
			"features": ["logging", "metrics", "alerting"],
			"rate_limits": {"per_second": 100, "per_minute": 1000, "burst": 150},
			"environments": {
				"development": {"debug": true, "log_level": "debug"},
				"production": {"debug": false, "log_level": "info"}
			}
		},
		"users": [
			{"id": 1, "name": "Alice", "roles": ["admin", "user"]},
			{"id": 2, "name": "Bob", "roles": ["user"]}
		],
		"stats": {
			"requests": 1234567,
			"success_rate": 0.9999,
			"response_times": [0.045, 0.067, 0.032, 0.051]
		},
		"active": true
	}`

	jsonFile := filepath.Join(tempDir, "complex.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(jsonContent), 0o644))
	terseFile := filepath.Join(tempDir, "complex.terse")

	_, stderr, err := runTerse(t, "", "encode", "-i", jsonFile, "-o", terseFile)
	require.NoError(t, err, "encode failed: %s", stderr)

	encoded, err := os.ReadFile(terseFile)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `id#12345`)
	assert.Contains(t, string(encoded), `success_rate=0.9999`)
	assert.Contains(t, string(encoded), `updated_at~`)
	assert.Less(t, len(encoded), len(jsonContent))

	decoded, stderr, err := runTerse(t, "", "decode", "-i", terseFile)
	require.NoError(t, err, "decode failed: %s", stderr)
	assert.JSONEq(t, jsonContent, decoded)
}

// TestEndToEnd_Samples decodes every sample document and compares the JSON
// against its golden file.
func TestEndToEnd_Samples(t *testing.T) {
	samples, err := filepath.Glob("../../testdata/samples/*.terse")
	require.NoError(t, err)
	require.NotEmpty(t, samples)

	for _, sample := range samples {
		name := strings.TrimSuffix(filepath.Base(sample), ".terse")
		t.Run(name, func(t *testing.T) {
			golden, err := os.ReadFile(strings.TrimSuffix(sample, ".terse") + ".json")
			require.NoError(t, err)

			decoded, stderr, err := runTerse(t, "", "decode", "-i", sample)
			require.NoError(t, err, "decode failed: %s", stderr)
			assert.Equal(t, string(golden), decoded)

			// The canonical form decodes to the same JSON and is stable.
			formatted, stderr, err := runTerse(t, "", "fmt", "-i", sample)
			require.NoError(t, err, "fmt failed: %s", stderr)

			again, _, err := runTerse(t, formatted, "decode")
			require.NoError(t, err)
			assert.Equal(t, string(golden), again)

			reformatted, _, err := runTerse(t, formatted, "fmt")
			require.NoError(t, err)
			assert.Equal(t, formatted, reformatted)
		})
	}
}

// TestEndToEnd_EdgeCases tests various edge cases
func TestEndToEnd_EdgeCases(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
		isError  bool
	}{
		{name: "EmptyObject", input: `{}`, expected: `{}`},
		{name: "EmptyArray", input: `[]`, expected: `[]`},
		{name: "SingleString", input: `"just a string"`, expected: `"just a string"`},
		{name: "SingleInteger", input: `#42`, expected: `42`},
		{name: "WholeFloat", input: `=42`, expected: `42.0`},
		{name: "SingleBoolean", input: `?true`, expected: `true`},
		{name: "SingleNull", input: `~`, expected: `null`},
		{name: "BareName", input: `name`, expected: `{"name":null}`},
		{name: "DeeplyNestedObject", input: `a{b{c{d{e{value#42}}}}}`, expected: `{"a":{"b":{"c":{"d":{"e":{"value":42}}}}}}`},
		{name: "DeeplyNestedArray", input: `[[[[[[#42]]]]]]`, expected: `[[[[[[42]]]]]]`},
		{name: "DuplicateKeys", input: `{a#1 b#2 a#3}`, expected: `{"a":3,"b":2}`},
		{name: "UnterminatedString", input: `{a"open`, isError: true},
		{name: "MissingBrace", input: `{a#1`, isError: true},
		{name: "TrailingContent", input: `#1 #2`, isError: true},
		{name: "WhitespaceOnly", input: "  \n ", isError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, stderr, err := runTerse(t, tc.input, "decode")
			if tc.isError {
				assert.Error(t, err)
				assert.NotEmpty(t, stderr)
				return
			}
			require.NoError(t, err, "decode failed: %s", stderr)
			assert.Equal(t, tc.expected+"\n", stdout)
		})
	}
}

// TestEndToEnd_CheckReportsEveryProblem checks that independent problems are
// all reported in one run.
func TestEndToEnd_CheckReportsEveryProblem(t *testing.T) {
	input := "{\n  a#12x\n  b=1.2.3\n  c?maybe\n}"

	_, stderr, err := runTerse(t, input, "--diagnostics", "json", "check")
	require.Error(t, err)

	var records []struct {
		Message string `json:"message"`
		Cursor  struct {
			Line int `json:"line"`
		} `json:"cursor"`
	}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(stderr)), &records))
	require.Len(t, records, 3)
	assert.Equal(t, 2, records[0].Cursor.Line)
	assert.Equal(t, 3, records[1].Cursor.Line)
	assert.Equal(t, 4, records[2].Cursor.Line)
	assert.Contains(t, records[1].Message, "multiple decimal points")
}

// TestEndToEnd_CompressedBatch feeds a gzip-compressed line stream to batch.
func TestEndToEnd_CompressedBatch(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		_, err := fmt.Fprintf(gz, "{id#%d score=%d.5 ok?%t}\n", i, rng.Intn(100), i%2 == 0)
		require.NoError(t, err)
	}
	require.NoError(t, gz.Close())

	path := filepath.Join(t.TempDir(), "events.terse.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	stdout, stderr, err := runTerse(t, "", "batch", "-i", path)
	require.NoError(t, err, "batch failed: %s", stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 50)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, float64(0), first["id"])
	assert.Equal(t, true, first["ok"])
	assert.Contains(t, lines[0], `.5,"ok"`)
}

func TestEndToEnd_Version(t *testing.T) {
	stdout, _, err := runTerse(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "terse version "))
}
