// Package store persists estimated curves so that runs can be listed and
// compared later.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erikbern/conversion/internal/db"
	"github.com/erikbern/conversion/internal/survival"
	"github.com/erikbern/conversion/internal/telemetry"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("conversion.internal.store")

const (
	report_save = "save"
)

var ErrRunNotFound = errors.New("run not found")

type Run struct {
	ID        string
	Name      string
	Dataset   string
	CreatedAt time.Time
	Alpha     float64
	Total     int
}

type Series struct {
	Label  string
	Points []survival.Point
}

type SaveRequest struct {
	Name      string
	Dataset   string
	CreatedAt time.Time
	Alpha     float64
	Total     int
	Series    []Series
}

type RunCurves struct {
	Run    Run
	Series []Series
}

type Store struct {
	makeTx db.MakeTx
	qry    *db.Queries
	tel    telemetry.API
}

func NewStore(database *sql.DB, tel telemetry.API) Store {
	return Store{
		makeTx: db.NewMakeTx(database),
		qry:    db.New(database),
		tel:    telemetry.NewScopedAPI("store", tel),
	}
}

// SaveCurves writes a run and all of its points in one transaction and
// returns the id of the new run.
func (s Store) SaveCurves(ctx context.Context, req SaveRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "SaveCurves")
	defer span.End()

	id := uuid.NewString()
	span.SetAttributes(
		attribute.String("id", id),
		attribute.String("dataset", req.Dataset),
		attribute.Int("series", len(req.Series)),
	)

	err := s.save(ctx, id, req)
	if err != nil {
		s.tel.ReportBroken(report_save, err, req.Name)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save curves")
		return "", err
	}
	return id, nil
}

func (s Store) save(ctx context.Context, id string, req SaveRequest) error {
	txqry, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		return err
	}
	defer discard()

	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	err = txqry.CreateRun(ctx, db.CreateRunParams{
		ID:        id,
		Name:      req.Name,
		Dataset:   req.Dataset,
		CreatedAt: createdAt.Unix(),
		Alpha:     req.Alpha,
		Total:     int64(req.Total),
	})
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}

	for _, series := range req.Series {
		for i, p := range series.Points {
			err := txqry.CreateCurvePoint(ctx, db.CreateCurvePointParams{
				RunID:    id,
				Series:   series.Label,
				Idx:      int64(i),
				Time:     p.Time,
				Survival: p.Survival,
				Lower:    p.Lower,
				Upper:    p.Upper,
				AtRisk:   int64(p.AtRisk),
				Events:   int64(p.Events),
				Censored: int64(p.Censored),
			})
			if err != nil {
				return fmt.Errorf("series %s point %d: %w", series.Label, i, err)
			}
		}
	}

	return commit()
}

func runFromRow(row db.Run) Run {
	return Run{
		ID:        row.ID,
		Name:      row.Name,
		Dataset:   row.Dataset,
		CreatedAt: time.Unix(row.CreatedAt, 0),
		Alpha:     row.Alpha,
		Total:     int(row.Total),
	}
}

// ListRuns returns every run, newest first.
func (s Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.qry.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Run, len(rows))
	for i, row := range rows {
		out[i] = runFromRow(row)
	}
	return out, nil
}

func (s Store) Curves(ctx context.Context, id string) (RunCurves, error) {
	ctx, span := tracer.Start(ctx, "Curves")
	defer span.End()
	span.SetAttributes(attribute.String("id", id))

	row, err := s.qry.GetRun(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return RunCurves{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get run")
		return RunCurves{}, err
	}

	points, err := s.qry.GetCurvePoints(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get points")
		return RunCurves{}, err
	}

	out := RunCurves{Run: runFromRow(row)}
	for _, p := range points {
		if len(out.Series) == 0 || out.Series[len(out.Series)-1].Label != p.Series {
			out.Series = append(out.Series, Series{Label: p.Series})
		}
		last := &out.Series[len(out.Series)-1]
		last.Points = append(last.Points, survival.Point{
			Time:     p.Time,
			Survival: p.Survival,
			Lower:    p.Lower,
			Upper:    p.Upper,
			AtRisk:   int(p.AtRisk),
			Events:   int(p.Events),
			Censored: int(p.Censored),
		})
	}
	return out, nil
}
