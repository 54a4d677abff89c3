package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"twinwatch/lib/ectapi"
	"twinwatch/lib/resultstore"
	"twinwatch/lib/timezone"

	"github.com/google/uuid"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Options struct {
	// 2-digit province ids, both inclusive
	ProvinceStart int
	ProvinceEnd   int
	// upper bound on per-province area numbers
	MaxSeq int
	// politeness pause between requests
	Delay time.Duration
}

type Failure struct {
	Area    string `json:"area"`
	Dataset string `json:"dataset"`
	Error   string `json:"error"`
}

// Manifest summarizes one collection run. It is written as
// collect-manifest.json next to the data directories.
type Manifest struct {
	RunId      string    `json:"run_id"`
	StartedAt  string    `json:"started_at"`
	FinishedAt string    `json:"finished_at"`
	Requests   int       `json:"requests"`
	MPFiles    int       `json:"mp_files"`
	PLFiles    int       `json:"pl_files"`
	// areas with constituency results but no party list results
	PLMissing int       `json:"pl_missing"`
	Failures  []Failure `json:"failures"`
}

type Service struct {
	client *ectapi.Client
	mp     resultstore.Store[ectapi.MPEntry]
	pl     resultstore.Store[ectapi.PLEntry]
	opts   Options
}

func NewService(
	client *ectapi.Client,
	mp resultstore.Store[ectapi.MPEntry],
	pl resultstore.Store[ectapi.PLEntry],
	opts Options,
) Service {
	if opts.ProvinceStart == 0 {
		opts.ProvinceStart = 10
	}
	if opts.ProvinceEnd == 0 {
		opts.ProvinceEnd = 96
	}
	if opts.MaxSeq == 0 {
		opts.MaxSeq = 99
	}
	if opts.Delay == 0 {
		opts.Delay = time.Millisecond * 150
	}
	return Service{client: client, mp: mp, pl: pl, opts: opts}
}

// Run walks the configured province blocks area by area, one request
// per dataset per area, no retries. A not-found answer on the
// constituency dataset ends the current province block. Any other
// failure is recorded in the manifest and the walk continues. The
// manifest is written when the run ends, even on cancellation.
func (s Service) Run(ctx context.Context) (Manifest, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	manifest := Manifest{
		RunId:     uuid.NewString(),
		StartedAt: timezone.Now().Format(time.RFC3339),
		Failures:  []Failure{},
	}
	slog.InfoContext(ctx, "starting collection run",
		"run_id", manifest.RunId,
		"provinces", fmt.Sprintf("%02d..%02d", s.opts.ProvinceStart, s.opts.ProvinceEnd),
	)

	for province := s.opts.ProvinceStart; province <= s.opts.ProvinceEnd; province++ {
		err := s.collectProvince(ctx, province, &manifest)
		if err != nil {
			// only a cancelled context stops a run early
			span.SetStatus(codes.Error, "run aborted")
			span.RecordError(err)
			s.finish(ctx, &manifest)
			return manifest, err
		}
	}

	span.SetAttributes(
		attribute.Int("requests", manifest.Requests),
		attribute.Int("mp_files", manifest.MPFiles),
		attribute.Int("pl_files", manifest.PLFiles),
		attribute.Int("failures", len(manifest.Failures)),
	)
	return manifest, s.finish(ctx, &manifest)
}

func (s Service) collectProvince(ctx context.Context, province int, manifest *Manifest) error {
	for seq := 1; seq <= s.opts.MaxSeq; seq++ {
		area := fmt.Sprintf("%02d%02d", province, seq)

		manifest.Requests++
		mpEntries, err := s.client.FetchMP(ctx, area)
		if errors.Is(err, ectapi.ErrNotFound) {
			// invalid area codes cluster by province block, the
			// first missing area means the block is exhausted
			slog.DebugContext(ctx, "province block exhausted", "area", area)
			return s.pause(ctx)
		}
		if err != nil {
			manifest.Failures = append(manifest.Failures, Failure{
				Area: area, Dataset: "mp", Error: err.Error(),
			})
			slog.WarnContext(ctx, "constituency fetch failed", "area", area, "err", err)
		} else {
			if err := s.mp.Save(ctx, area, mpEntries); err != nil {
				return err
			}
			manifest.MPFiles++
		}
		if err := s.pause(ctx); err != nil {
			return err
		}

		manifest.Requests++
		plEntries, err := s.client.FetchPL(ctx, area)
		switch {
		case errors.Is(err, ectapi.ErrNotFound):
			// areas are not guaranteed to exist in both datasets
			manifest.PLMissing++
			slog.DebugContext(ctx, "no party list results", "area", area)
		case err != nil:
			manifest.Failures = append(manifest.Failures, Failure{
				Area: area, Dataset: "pl", Error: err.Error(),
			})
			slog.WarnContext(ctx, "party list fetch failed", "area", area, "err", err)
		default:
			if err := s.pl.Save(ctx, area, plEntries); err != nil {
				return err
			}
			manifest.PLFiles++
		}
		if err := s.pause(ctx); err != nil {
			return err
		}
	}
	return nil
}

// pause sleeps for the politeness delay plus a little jitter so the
// request cadence does not look mechanical.
func (s Service) pause(ctx context.Context) error {
	delay := s.opts.Delay
	extra, err := random.IntRange(0, int(s.opts.Delay/3)+1)
	if err == nil {
		delay += time.Duration(extra)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s Service) finish(ctx context.Context, manifest *Manifest) error {
	manifest.FinishedAt = timezone.Now().Format(time.RFC3339)
	slog.InfoContext(ctx, "collection run finished",
		"run_id", manifest.RunId,
		"requests", manifest.Requests,
		"mp_files", manifest.MPFiles,
		"pl_files", manifest.PLFiles,
		"pl_missing", manifest.PLMissing,
		"failures", len(manifest.Failures),
	)

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(filepath.Dir(s.mp.Dir()), "collect-manifest.json")
	err = os.WriteFile(path, data, 0644)
	if err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
