package partycolors

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"twinwatch/lib/sitedata"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

type Status string

const (
	StatusUpdated Status = "updated"
	StatusNoIcon  Status = "no_icon"
	StatusNoColor Status = "no_color"
)

// Result is the outcome for a single party, in party data file order.
type Result struct {
	PartyCode string
	PartyName string
	OldColor  string
	NewColor  string
	Status    Status
}

// icon lookup order
var iconExtensions = []string{".webp", ".png", ".jpg"}

func findIcon(iconsDir, partyCode string) (string, bool) {
	for _, ext := range iconExtensions {
		path := filepath.Join(iconsDir, partyCode+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func extractFromFile(path string) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", false, fmt.Errorf("decode %s: %w", path, err)
	}
	color, ok := dominantColor(img)
	return color, ok, nil
}

// Extract maps every party icon to its dominant brand color and
// rewrites the party data file in place. Parties without an icon or
// without a usable color keep their previous value.
func Extract(ctx context.Context, dataFile, iconsDir string) ([]Result, error) {
	ctx, span := tracer.Start(ctx, "Extract")
	defer span.End()

	data, err := sitedata.LoadPartyData(dataFile)
	if err != nil {
		span.SetStatus(codes.Error, "load party data failed")
		span.RecordError(err)
		return nil, err
	}

	results := make([]Result, 0, len(data.Parties))
	var updated int
	for i := range data.Parties {
		party := &data.Parties[i]
		if party.Code == "" {
			continue
		}
		result := Result{
			PartyCode: party.Code,
			PartyName: party.Name,
			OldColor:  party.ColorPrimary,
		}

		iconPath, ok := findIcon(iconsDir, party.Code)
		if !ok {
			result.Status = StatusNoIcon
			results = append(results, result)
			continue
		}

		color, ok, err := extractFromFile(iconPath)
		if err != nil {
			slog.WarnContext(ctx, "icon unreadable", "party", party.Code, "path", iconPath, "err", err)
			result.Status = StatusNoColor
			results = append(results, result)
			continue
		}
		if !ok {
			result.Status = StatusNoColor
			results = append(results, result)
			continue
		}

		party.ColorPrimary = color
		result.NewColor = color
		result.Status = StatusUpdated
		results = append(results, result)
		updated++
	}

	err = sitedata.SavePartyData(dataFile, data)
	if err != nil {
		span.SetStatus(codes.Error, "save party data failed")
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("parties", len(data.Parties)),
		attribute.Int("updated", updated),
	)
	return results, nil
}
