package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testCorpus = `{"movies": [
  {"id": 1, "title": "Brave", "description": "Merida the archer"},
  {"id": 2, "title": "Cars", "description": "Racing"}
]}`

// setupEnv points every data and store path at a temp dir.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	corpus := filepath.Join(dir, "movies.json")
	stopWords := filepath.Join(dir, "stopwords.txt")
	require.NoError(t, os.WriteFile(corpus, []byte(testCorpus), 0o644))
	require.NoError(t, os.WriteFile(stopWords, []byte("the\na\n"), 0o644))

	t.Setenv("HOOPLA_DATA_CORPUS", corpus)
	t.Setenv("HOOPLA_DATA_STOPWORDS", stopWords)
	t.Setenv("HOOPLA_STORE_BACKEND", "file")
	t.Setenv("HOOPLA_STORE_DIR", filepath.Join(dir, "cache"))
	t.Setenv("HOOPLA_METRICS_TEXTFILE", filepath.Join(dir, "hoopla.prom"))
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, args...)
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestBuildAndQuery(t *testing.T) {
	dir := setupEnv(t)

	code, _, stderr := runCLI(t, "build")
	require.Equal(t, 0, code, stderr)
	require.FileExists(t, filepath.Join(dir, "cache", "manifest.bin"))
	require.FileExists(t, filepath.Join(dir, "hoopla.prom"))

	code, out, stderr := runCLI(t, "search", "merida")
	require.Equal(t, 0, code, stderr)
	require.Equal(t, "Searching for: merida\n1. Brave\n", out)

	code, out, _ = runCLI(t, "tf", "1", "Merida")
	require.Equal(t, 0, code)
	require.Equal(t, "Term frequency of 'Merida' in document 1: 1\n", out)

	code, out, _ = runCLI(t, "idf", "merida")
	require.Equal(t, 0, code)
	require.Equal(t, "Inverse document frequency of 'merida': 0.41\n", out)

	code, out, _ = runCLI(t, "docs", "racing")
	require.Equal(t, 0, code)
	require.Equal(t, "Documents containing 'racing': 2\n", out)
}

func TestQueryErrors(t *testing.T) {
	setupEnv(t)

	code, _, stderr := runCLI(t, "search", "merida")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "run the build command first")

	code, _, _ = runCLI(t, "build")
	require.Equal(t, 0, code)

	code, _, stderr = runCLI(t, "tf", "1", "brave racing")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "expected exactly one")

	code, _, stderr = runCLI(t, "tf", "9", "merida")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "unknown document")
}

func TestUsage(t *testing.T) {
	setupEnv(t)

	for _, args := range [][]string{nil, {"frobnicate"}} {
		code, out, _ := runCLI(t, args...)
		require.Equal(t, 0, code)
		require.Contains(t, out, "usage: hoopla")
	}
}
