package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/telehealth-scheduling/internal/metrics"
)

type stubSource struct {
	doctors    []Doctor
	doctorsErr error
	labsErr    error
	historyErr error
}

func (s stubSource) Name() string { return "stub" }

func (s stubSource) Doctors(context.Context) ([]Doctor, error) { return s.doctors, s.doctorsErr }

func (s stubSource) Hospitals(context.Context) ([]Hospital, error) {
	return []Hospital{{ID: 42, Name: "Harbor Hospital"}}, nil
}

func (s stubSource) LabTests(context.Context) ([]LabTest, error) { return nil, s.labsErr }

func (s stubSource) Appointments(context.Context) ([]AppointmentRecord, error) {
	return nil, s.historyErr
}

func TestLoadFallsBackPerResource(t *testing.T) {
	src := stubSource{
		doctors:    []Doctor{{ID: 7, Name: "Dr. Stub"}},
		labsErr:    errors.New("connection refused"),
		historyErr: errors.New("connection refused"),
	}

	cat, err := Load(context.Background(), src, zerolog.Nop(), metrics.NewBookingMetrics(prometheus.NewRegistry()))
	require.NoError(t, err)

	require.Len(t, cat.Doctors, 1)
	assert.Equal(t, "Dr. Stub", cat.Doctors[0].Name)
	require.Len(t, cat.Hospitals, 1)
	assert.Equal(t, 42, cat.Hospitals[0].ID)
	assert.Equal(t, fallbackLabTests(), cat.LabTests)
	assert.Equal(t, fallbackAppointments(), cat.Appointments)
}

func TestLoadCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, StaticSource{}, zerolog.Nop(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStaticSourceMatchesFallback(t *testing.T) {
	cat, err := Load(context.Background(), StaticSource{}, zerolog.Nop(), nil)
	require.NoError(t, err)
	assert.Equal(t, Fallback(), cat)
}

func TestDoctorConsultationTypes(t *testing.T) {
	unset := Doctor{}
	assert.Equal(t, AllConsultationTypes, unset.OfferedTypes())
	assert.True(t, unset.Offers(Messaging))

	none := Doctor{ConsultationTypes: []ConsultationType{}}
	assert.Empty(t, none.OfferedTypes())
	assert.False(t, none.Offers(VideoCall))

	some := Doctor{ConsultationTypes: []ConsultationType{InPerson}}
	assert.True(t, some.Offers(InPerson))
	assert.False(t, some.Offers(AudioCall))
}

func TestCatalogLookups(t *testing.T) {
	cat := Fallback()

	d, ok := cat.Doctor(3)
	require.True(t, ok)
	assert.Equal(t, "Dr. Sofia Alvarez", d.Name)

	h, ok := cat.Hospital(1)
	require.True(t, ok)
	svc, ok := h.Service("MRI Scan")
	require.True(t, ok)
	assert.Equal(t, "Detailed imaging for neurological conditions.", svc.Description)
	_, ok = h.Service("Chemistry Set")
	assert.False(t, ok)

	lt, ok := cat.LabTest(2)
	require.True(t, ok)
	assert.True(t, lt.RequiresFasting)

	_, ok = cat.LabTest(12)
	assert.False(t, ok)
}
