// Package startups derives funding-to-exit records from cached company
// funding rounds, one `companies_<slug>.json` file per company.
package startups

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/erikbern/conversion/internal/assert"
	"github.com/erikbern/conversion/internal/cohort"
	"github.com/erikbern/conversion/internal/telemetry"
	"github.com/erikbern/conversion/lib/textutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("conversion.internal.datasets.startups")

const (
	report_load_company = "load.company"
	report_load_records = "load.records"
	report_derive       = "derive"
)

const (
	filePrefix = "companies_"
	fileSuffix = ".json"
	dateLayout = "Jan 2, 2006"
)

// Round is a single funding round as it was cached.
type Round struct {
	Stage     string  `json:"stage"`
	Date      *string `json:"date"`
	Raised    string  `json:"raised"`
	Valuation *string `json:"valuation"`
}

// IsSeed reports whether a round counts as the company getting funded.
func IsSeed(stage string) bool {
	stage = textutil.NormalizeName(stage)
	return stage == "seed" || strings.HasPrefix(stage, "series")
}

// IsExit reports whether a round counts as the company exiting.
func IsExit(stage string) bool {
	stage = textutil.NormalizeName(stage)
	return stage == "ipo" || strings.HasPrefix(stage, "acquired")
}

func earliest(rounds []Round) (time.Time, error) {
	var min time.Time
	for _, r := range rounds {
		if r.Date == nil {
			return time.Time{}, fmt.Errorf("round %q has no date", r.Stage)
		}
		parsed, err := time.Parse(dateLayout, strings.TrimSpace(*r.Date))
		if err != nil {
			return time.Time{}, fmt.Errorf("round %q: %w", r.Stage, err)
		}
		if min.IsZero() || parsed.Before(min) {
			min = parsed
		}
	}
	return min, nil
}

type Loader struct {
	tel telemetry.API
}

func NewLoader(tel telemetry.API) Loader {
	assert.NotNil(tel)
	return Loader{tel: telemetry.NewScopedAPI("startups", tel)}
}

// Derive turns the rounds of a company into a record that starts at its
// earliest seed round and ends at its earliest exit. Companies without a seed
// round, with undated rounds or exiting before being seeded are skipped.
func (l Loader) Derive(slug string, rounds []Round) (cohort.Record, bool) {
	var seeds, exits []Round
	for _, r := range rounds {
		switch {
		case IsSeed(r.Stage):
			seeds = append(seeds, r)
		case IsExit(r.Stage):
			exits = append(exits, r)
		}
	}
	if len(seeds) == 0 {
		return cohort.Record{}, false
	}

	seeded, err := earliest(seeds)
	if err != nil {
		l.tel.ReportWarning(report_derive, slug, err)
		return cohort.Record{}, false
	}
	record := cohort.Record{Key: slug, Start: seeded}
	if len(exits) == 0 {
		return record, true
	}

	exited, err := earliest(exits)
	if err != nil {
		l.tel.ReportWarning(report_derive, slug, err)
		return cohort.Record{}, false
	}
	if exited.Before(seeded) {
		l.tel.ReportWarning(report_derive, slug, fmt.Errorf("exit %s before seed %s", exited, seeded))
		return cohort.Record{}, false
	}

	record.End = exited
	record.Event = true
	return record, true
}

// Slug extracts the company slug from a cache file name, ok is false for
// files that are not company files.
func Slug(filename string) (string, bool) {
	base := filepath.Base(filename)
	if !strings.HasPrefix(base, filePrefix) || !strings.HasSuffix(base, fileSuffix) {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimPrefix(base, filePrefix), fileSuffix), true
}

type loaded struct {
	record cohort.Record
	ok     bool
}

// Load reads every company file in dir concurrently and returns the derived
// records sorted by slug. Unreadable company files are reported and skipped.
func (l Loader) Load(ctx context.Context, dir string) ([]cohort.Record, error) {
	ctx, span := tracer.Start(ctx, "Load")
	defer span.End()
	span.SetAttributes(attribute.String("dir", dir))

	entries, err := os.ReadDir(dir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read cache dir")
		return nil, fmt.Errorf("read cache dir: %w", err)
	}

	type companyFile struct {
		slug string
		path string
	}
	var files []companyFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		slug, ok := Slug(e.Name())
		if !ok {
			continue
		}
		files = append(files, companyFile{slug: slug, path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].slug < files[j].slug
	})

	results := make([]loaded, len(files))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0) * 4)
	for i, f := range files {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rounds, err := readRounds(f.path)
			if err != nil {
				l.tel.ReportWarning(report_load_company, f.path, err)
				return nil
			}
			record, ok := l.Derive(f.slug, rounds)
			results[i] = loaded{record: record, ok: ok}
			return nil
		})
	}
	err = group.Wait()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load interrupted")
		return nil, err
	}

	var records []cohort.Record
	for _, r := range results {
		if r.ok {
			records = append(records, r.record)
		}
	}

	l.tel.ReportCount(report_load_records, int64(len(records)))
	span.SetAttributes(
		attribute.Int("files", len(files)),
		attribute.Int("records", len(records)),
	)
	return records, nil
}

func readRounds(path string) ([]Round, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rounds []Round
	err = json.Unmarshal(contents, &rounds)
	if err != nil {
		return nil, err
	}
	return rounds, nil
}
