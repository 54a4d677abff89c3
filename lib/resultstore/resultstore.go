package resultstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"twinwatch/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("twinwatch.lib.resultstore")

// AreaResult is the on-disk shape of one area's results.
type AreaResult[T any] struct {
	AreaCode string `json:"area_code"`
	Entries  []T    `json:"entries"`
}

// Store reads and writes per-area result files under a single
// directory, one file per area code named "<area>.json". Files are
// written once per collection run and never updated in place.
type Store[T any] struct {
	dir string
}

func NewStore[T any](dir string) (Store[T], error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return Store[T]{}, fmt.Errorf("create result directory: %w", err)
	}
	return Store[T]{dir: dir}, nil
}

func (s Store[T]) Dir() string {
	return s.dir
}

func (s Store[T]) path(area string) string {
	return filepath.Join(s.dir, area+".json")
}

func (s Store[T]) Save(ctx context.Context, area string, entries []T) error {
	_, span := tracer.Start(ctx, "Save")
	defer span.End()
	span.SetAttributes(attribute.String("area", area))

	data, err := json.MarshalIndent(AreaResult[T]{
		AreaCode: area,
		Entries:  entries,
	}, "", "  ")
	if err != nil {
		span.SetStatus(codes.Error, "marshal failed")
		span.RecordError(err)
		return err
	}
	err = os.WriteFile(s.path(area), data, 0644)
	if err != nil {
		span.SetStatus(codes.Error, "write failed")
		span.RecordError(err)
		return err
	}
	return nil
}

// Load returns the stored entries for an area code. The second return
// value is false when no file exists for that code; this is a normal
// outcome, not an error.
func (s Store[T]) Load(ctx context.Context, area string) ([]T, bool, error) {
	_, span := tracer.Start(ctx, "Load")
	defer span.End()
	span.SetAttributes(attribute.String("area", area))

	data, err := os.ReadFile(s.path(area))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		span.SetStatus(codes.Error, "read failed")
		span.RecordError(err)
		return nil, false, err
	}

	var result AreaResult[T]
	err = json.Unmarshal(data, &result)
	if err != nil {
		span.SetStatus(codes.Error, "unmarshal failed")
		span.RecordError(err)
		return nil, false, fmt.Errorf("parse %s: %w", s.path(area), err)
	}
	return result.Entries, true, nil
}

// ListAreas returns the area codes that have a stored file, in
// ascending order.
func (s Store[T]) ListAreas(ctx context.Context) ([]string, error) {
	_, span := tracer.Start(ctx, "ListAreas")
	defer span.End()

	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		span.SetStatus(codes.Error, "read directory failed")
		span.RecordError(err)
		return nil, err
	}

	var areas []string
	for _, ent := range dirents {
		name := ent.Name()
		if ent.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		areas = append(areas, strings.TrimSuffix(name, ".json"))
	}
	return areas, nil
}
