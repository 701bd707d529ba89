package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hackgods/telehealth-scheduling/internal/metrics"
)

var ErrUnknownSource = errors.New("unknown catalog source")

// Source provides the catalog resources. Each one is fetched on its own so a
// failure in one does not affect the others.
type Source interface {
	Name() string
	Doctors(ctx context.Context) ([]Doctor, error)
	Hospitals(ctx context.Context) ([]Hospital, error)
	LabTests(ctx context.Context) ([]LabTest, error)
	Appointments(ctx context.Context) ([]AppointmentRecord, error)
}

type StaticSource struct{}

func (StaticSource) Name() string { return "static" }

func (StaticSource) Doctors(context.Context) ([]Doctor, error) { return fallbackDoctors(), nil }

func (StaticSource) Hospitals(context.Context) ([]Hospital, error) { return fallbackHospitals(), nil }

func (StaticSource) LabTests(context.Context) ([]LabTest, error) { return fallbackLabTests(), nil }

func (StaticSource) Appointments(context.Context) ([]AppointmentRecord, error) {
	return fallbackAppointments(), nil
}

// Load fetches every resource in parallel. A resource that fails to load is
// replaced by the built-in data and logged; only a cancelled context makes
// Load return an error.
func Load(ctx context.Context, src Source, logger zerolog.Logger, m *metrics.BookingMetrics) (Catalog, error) {
	var out Catalog
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out.Doctors = loadResource(gctx, "doctors", src.Name(), src.Doctors, fallbackDoctors, logger, m)
		return gctx.Err()
	})
	g.Go(func() error {
		out.Hospitals = loadResource(gctx, "hospitals", src.Name(), src.Hospitals, fallbackHospitals, logger, m)
		return gctx.Err()
	})
	g.Go(func() error {
		out.LabTests = loadResource(gctx, "labs", src.Name(), src.LabTests, fallbackLabTests, logger, m)
		return gctx.Err()
	})
	g.Go(func() error {
		out.Appointments = loadResource(gctx, "appointments", src.Name(), src.Appointments, fallbackAppointments, logger, m)
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	return out, nil
}

func loadResource[T any](
	ctx context.Context,
	resource, source string,
	fetch func(context.Context) ([]T, error),
	fallback func() []T,
	logger zerolog.Logger,
	m *metrics.BookingMetrics,
) []T {
	items, err := fetch(ctx)
	if err != nil {
		logger.Warn().Err(err).
			Str("resource", resource).
			Str("source", source).
			Msg("catalog resource unavailable, using offline data")
		m.ObserveCatalogLoad(resource, "fallback")
		return fallback()
	}
	logger.Info().
		Str("resource", resource).
		Str("source", source).
		Int("count", len(items)).
		Msg("catalog resource loaded")
	m.ObserveCatalogLoad(resource, source)
	return items
}
