package sitepack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPack(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")

	// stale content from a previous pack must not survive
	require.NoError(t, os.MkdirAll(filepath.Join(docs, "img"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "img", "stale.webp"), []byte("x"), 0644))

	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<html></html>"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "data", "anomaly_report.json"), []byte("{}"), 0644))

	err := Pack(Options{
		DocsDir:    docs,
		IndexFile:  filepath.Join(root, "index.html"),
		ReportFile: filepath.Join(root, "data", "anomaly_report.json"),
	})
	require.NoError(t, err)

	for _, path := range []string{
		filepath.Join(docs, "index.html"),
		filepath.Join(docs, "data", "anomaly_report.json"),
		filepath.Join(docs, ".nojekyll"),
	} {
		_, err := os.Stat(path)
		require.NoError(t, err, path)
	}

	_, err = os.Stat(filepath.Join(docs, "img"))
	require.True(t, os.IsNotExist(err))
}

func TestPackMissingReport(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<html></html>"), 0644))

	err := Pack(Options{
		DocsDir:    filepath.Join(root, "docs"),
		IndexFile:  filepath.Join(root, "index.html"),
		ReportFile: filepath.Join(root, "data", "anomaly_report.json"),
	})
	require.Error(t, err)
}
