package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl string `json:"base_url"`
	DelayMs int    `json:"delay_ms"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	err := os.WriteFile(path, []byte(contents), 0644)
	if err != nil {
		t.Fatal(err)
	}
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")

	writeFile(t, path, `{
		// comments are fine, this is json5
		base_url: "https://example.com/api",
		delay_ms: 150,
	}`)

	cfg, err := Read[testConfig](path)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "https://example.com/api", cfg.BaseUrl)
	require.Equal(t, 150, cfg.DelayMs)
}

func TestReadLocalOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")

	writeFile(t, path, `{base_url: "https://example.com/api", delay_ms: 150}`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{delay_ms: 0}`)

	cfg, err := Read[testConfig](path)
	if err != nil {
		t.Fatal(err)
	}
	// mergo.WithOverride does not overwrite with zero values, so the local
	// file can only replace fields with something non-zero
	require.Equal(t, "https://example.com/api", cfg.BaseUrl)
	require.Equal(t, 150, cfg.DelayMs)

	writeFile(t, filepath.Join(dir, "config.local.json5"), `{delay_ms: 5}`)
	cfg, err = Read[testConfig](path)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 5, cfg.DelayMs)
}

func TestReadLocalOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")

	writeFile(t, filepath.Join(dir, "config.local.json5"), `{base_url: "https://local"}`)

	cfg, err := Read[testConfig](path)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "https://local", cfg.BaseUrl)
}

func TestReadMissing(t *testing.T) {
	_, err := Read[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.True(t, os.IsNotExist(err))
}
