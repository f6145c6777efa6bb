package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testdataFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir("testdata")
	require.NoError(t, err)

	var paths []string
	for _, e := range entries {
		if !e.IsDir() {
			paths = append(paths, filepath.Join("testdata", e.Name()))
		}
	}
	return paths
}

func TestScenarioFixturesPass(t *testing.T) {
	for _, path := range testdataFiles(t) {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			doc, err := LoadDocument(path)
			require.NoError(t, err)

			outcome, err := Evaluate(doc)
			require.NoError(t, err)
			require.True(t, outcome.Passed(), "scenario %q failed: %v", doc.Name, outcome.Failures)
		})
	}
}

func TestLoadDocumentRejectsUnknownEndpoint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	contents := []byte("name: bad\nrequest:\n  endpoint: bogus\n  body_hex: \"01\"\nexpect:\n  length: 1\n")
	require.NoError(t, os.WriteFile(path, contents, 0o600))

	_, err := LoadDocument(path)
	require.Error(t, err)
}

func TestLoadDocumentRejectsOddLengthHex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	contents := []byte("name: bad\nrequest:\n  endpoint: app\n  body_hex: \"0\"\nexpect:\n  length: 1\n")
	require.NoError(t, os.WriteFile(path, contents, 0o600))

	_, err := LoadDocument(path)
	require.Error(t, err)
}
