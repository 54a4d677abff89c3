package partycolors

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"twinwatch/lib/sitedata"
	"twinwatch/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, img *image.NRGBA) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writeJPEG(t *testing.T, path string, img *image.NRGBA) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatal(err)
	}
}

func TestFindIconOrder(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "PARTY-0009.png"), solidImage(10, 10, color.NRGBA{R: 200, G: 30, B: 40, A: 255}))
	writeJPEG(t, filepath.Join(dir, "PARTY-0009.jpg"), solidImage(10, 10, color.NRGBA{R: 200, G: 30, B: 40, A: 255}))

	path, ok := findIcon(dir, "PARTY-0009")
	require.True(t, ok)
	require.True(t, strings.HasSuffix(path, ".png"), path)

	_, ok = findIcon(dir, "PARTY-0001")
	require.False(t, ok)
}

func TestExtract(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/partycolors")
	defer cleanup()

	dir := t.TempDir()
	icons := filepath.Join(dir, "img")
	require.NoError(t, os.MkdirAll(icons, 0755))

	dataFile := filepath.Join(dir, "party-data.json")
	require.NoError(t, os.WriteFile(dataFile, []byte(`{
		"parties": [
			{"code": "PARTY-0001", "name": "หนึ่ง", "colorPrimary": "#000000", "badge": "gold"},
			{"code": "PARTY-0002", "name": "สอง"},
			{"code": "PARTY-0003", "name": "สาม", "colorPrimary": "#123456"}
		]
	}`), 0644))

	// 0001 has a vivid icon, 0002 has none, 0003 is all background
	writePNG(t, filepath.Join(icons, "PARTY-0001.png"), solidImage(50, 50, color.NRGBA{R: 200, G: 30, B: 40, A: 255}))
	writeJPEG(t, filepath.Join(icons, "PARTY-0003.jpg"), solidImage(50, 50, color.NRGBA{R: 250, G: 250, B: 250, A: 255}))

	results, err := Extract(context.Background(), dataFile, icons)
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.Equal(t, StatusUpdated, results[0].Status)
	require.Equal(t, "#000000", results[0].OldColor)
	require.Equal(t, "#C81E28", results[0].NewColor)
	require.Equal(t, StatusNoIcon, results[1].Status)
	require.Equal(t, StatusNoColor, results[2].Status)

	reloaded, err := sitedata.LoadPartyData(dataFile)
	require.NoError(t, err)
	require.Equal(t, "#C81E28", reloaded.Parties[0].ColorPrimary)
	require.Equal(t, "", reloaded.Parties[1].ColorPrimary)
	// an unusable icon keeps the previous value
	require.Equal(t, "#123456", reloaded.Parties[2].ColorPrimary)
}
