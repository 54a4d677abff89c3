package sitepack

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Options names the inputs and output of a site pack. DocsDir is
// wiped and rebuilt from scratch on every pack.
type Options struct {
	DocsDir    string
	IndexFile  string
	ReportFile string
}

// Pack assembles the publishable site directory: the index page, the
// report under data/ (the index fetches it from that relative path),
// and a .nojekyll marker so GitHub Pages serves files starting with
// an underscore.
func Pack(opts Options) error {
	err := os.RemoveAll(opts.DocsDir)
	if err != nil {
		return fmt.Errorf("clean docs directory: %w", err)
	}
	err = os.MkdirAll(filepath.Join(opts.DocsDir, "data"), 0755)
	if err != nil {
		return fmt.Errorf("create docs directory: %w", err)
	}

	err = copyFile(opts.IndexFile, filepath.Join(opts.DocsDir, "index.html"))
	if err != nil {
		return err
	}
	slog.Info("packed index page", "dest", opts.DocsDir)

	err = copyFile(opts.ReportFile, filepath.Join(opts.DocsDir, "data", "anomaly_report.json"))
	if err != nil {
		return err
	}
	slog.Info("packed report", "dest", filepath.Join(opts.DocsDir, "data"))

	err = os.WriteFile(filepath.Join(opts.DocsDir, ".nojekyll"), nil, 0644)
	if err != nil {
		return fmt.Errorf("create .nojekyll: %w", err)
	}
	return nil
}

func copyFile(src, dest string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	err = os.WriteFile(dest, data, 0644)
	if err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}
