package booking

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/telehealth-scheduling/internal/catalog"
	"github.com/hackgods/telehealth-scheduling/internal/metrics"
	"github.com/hackgods/telehealth-scheduling/internal/schedule"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func (r *recordingNotifier) last(t *testing.T) Notification {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.sent)
	return r.sent[len(r.sent)-1]
}

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

// newTestService pins the clock to Tuesday 2024-09-17 10:00 UTC.
func newTestService(t *testing.T) (*Service, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	svc := NewService(schedule.DefaultSlotCatalog(), n, zerolog.Nop(), nil, time.UTC)
	clock := time.Date(2024, time.September, 17, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	return svc, n
}

func mondayDoctor() catalog.Doctor {
	return catalog.Doctor{ID: 1, Name: "Dr. Evelyn Reed", Availability: []string{"Mon"}}
}

func TestBookAppointment(t *testing.T) {
	svc, n := newTestService(t)

	appt, err := svc.BookAppointment(context.Background(), DoctorBooking{
		Doctor:         mondayDoctor(),
		Date:           date(2024, time.September, 23),
		Time:           "10:00 AM",
		Type:           catalog.VideoCall,
		ReasonForVisit: "Follow-up",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, appt.ID)
	assert.Equal(t, StatusUpcoming, appt.Status)
	assert.Equal(t, catalog.VideoCall, appt.Type)

	list := svc.ListAppointments(FilterAll, OrderDefault)
	require.Len(t, list, 1)
	assert.Equal(t, *appt, list[0])

	note := n.last(t)
	assert.Equal(t, "Appointment Confirmed!", note.Title)
	assert.Equal(t, "Your Video Call with Dr. Evelyn Reed on 2024-09-23 at 10:00 AM is booked.", note.Message)
	assert.Equal(t, "success", note.Type)
}

func TestBookAppointmentDefaultsType(t *testing.T) {
	svc, _ := newTestService(t)

	doc := mondayDoctor()
	doc.ConsultationTypes = []catalog.ConsultationType{catalog.InPerson, catalog.VideoCall}
	appt, err := svc.BookAppointment(context.Background(), DoctorBooking{
		Doctor: doc, Date: date(2024, time.September, 23), Time: "09:00 AM", ReasonForVisit: "Checkup",
	})
	require.NoError(t, err)
	assert.Equal(t, catalog.InPerson, appt.Type)

	unset := mondayDoctor()
	appt, err = svc.BookAppointment(context.Background(), DoctorBooking{
		Doctor: unset, Date: date(2024, time.September, 30), Time: "09:00 AM", ReasonForVisit: "Checkup",
	})
	require.NoError(t, err)
	assert.Equal(t, catalog.VideoCall, appt.Type)
}

func TestBookAppointmentRejections(t *testing.T) {
	base := DoctorBooking{
		Doctor:         mondayDoctor(),
		Date:           date(2024, time.September, 23),
		Time:           "10:00 AM",
		ReasonForVisit: "Follow-up",
	}

	tests := []struct {
		name  string
		edit  func(*DoctorBooking)
		kind  ValidationKind
		field string
	}{
		{"no date", func(b *DoctorBooking) { b.Date = civil.Date{} }, MissingField, "date"},
		{"no time", func(b *DoctorBooking) { b.Time = "" }, MissingField, "time"},
		{"blank reason", func(b *DoctorBooking) { b.ReasonForVisit = "   " }, MissingField, "reasonForVisit"},
		{"wrong weekday", func(b *DoctorBooking) { b.Date = date(2024, time.September, 24) }, UnavailableDate, "date"},
		{"past date", func(b *DoctorBooking) { b.Date = date(2024, time.September, 16) }, UnavailableDate, "date"},
		{"lab slot", func(b *DoctorBooking) { b.Time = "08:00 AM" }, UnknownSlot, "time"},
		{"type not offered", func(b *DoctorBooking) {
			b.Doctor.ConsultationTypes = []catalog.ConsultationType{catalog.InPerson}
			b.Type = catalog.Messaging
		}, UnsupportedOption, "type"},
		{"no consultations", func(b *DoctorBooking) {
			b.Doctor.ConsultationTypes = []catalog.ConsultationType{}
		}, UnsupportedOption, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, n := newTestService(t)
			in := base
			tt.edit(&in)

			appt, err := svc.BookAppointment(context.Background(), in)
			require.Error(t, err)
			assert.Nil(t, appt)

			ve, ok := AsValidation(err)
			require.True(t, ok, "expected a validation error, got %v", err)
			assert.Equal(t, tt.kind, ve.Kind)
			assert.Equal(t, tt.field, ve.Field)

			assert.Empty(t, svc.ListAppointments(FilterAll, OrderDefault))
			assert.Empty(t, n.sent)
		})
	}
}

func TestAppointmentsStaySortedByDateAndTime(t *testing.T) {
	svc, _ := newTestService(t)
	doc := catalog.Doctor{ID: 2, Name: "Dr. Marcus Chen"}

	bookings := []struct {
		d  civil.Date
		tm string
	}{
		{date(2024, time.September, 20), "09:00 AM"},
		{date(2024, time.September, 25), "01:00 PM"},
		{date(2024, time.September, 20), "03:30 PM"},
		{date(2024, time.September, 18), "11:00 AM"},
	}
	for _, b := range bookings {
		_, err := svc.BookAppointment(context.Background(), DoctorBooking{Doctor: doc, Date: b.d, Time: b.tm, ReasonForVisit: "Consult"})
		require.NoError(t, err)
	}

	svc.mu.Lock()
	stored := svc.state.Appointments
	svc.mu.Unlock()

	require.Len(t, stored, 4)
	got := make([]int, 0, len(stored))
	for _, a := range stored {
		got = append(got, a.ID)
	}
	assert.Equal(t, []int{2, 3, 1, 4}, got)

	oldest := svc.ListAppointments(FilterAll, OrderOldest)
	assert.Equal(t, 4, oldest[0].ID)
	assert.Equal(t, 2, oldest[3].ID)
}

func TestListAppointmentsFilters(t *testing.T) {
	svc, _ := newTestService(t)
	doc := catalog.Doctor{ID: 2, Name: "Dr. Marcus Chen"}
	ctx := context.Background()

	for _, d := range []civil.Date{date(2024, time.September, 18), date(2024, time.September, 19), date(2024, time.September, 20)} {
		_, err := svc.BookAppointment(ctx, DoctorBooking{Doctor: doc, Date: d, Time: "09:00 AM", ReasonForVisit: "Consult"})
		require.NoError(t, err)
	}
	_, err := svc.UpdateAppointmentStatus(ctx, 2, StatusCancelled)
	require.NoError(t, err)
	_, err = svc.UpdateAppointmentStatus(ctx, 3, StatusCompleted)
	require.NoError(t, err)

	upcoming := svc.ListAppointments(FilterUpcoming, OrderDefault)
	require.Len(t, upcoming, 1)
	assert.Equal(t, 1, upcoming[0].ID)

	past := svc.ListAppointments(FilterPast, OrderDefault)
	require.Len(t, past, 2)
	assert.Equal(t, 3, past[0].ID, "past defaults to newest first")

	past = svc.ListAppointments(FilterPast, OrderOldest)
	assert.Equal(t, 2, past[0].ID)
}

func TestUpdateAppointmentStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateAppointmentStatus(ctx, 99, StatusCancelled)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	_, err = svc.BookAppointment(ctx, DoctorBooking{Doctor: mondayDoctor(), Date: date(2024, time.September, 23), Time: "09:00 AM", ReasonForVisit: "Consult"})
	require.NoError(t, err)

	_, err = svc.UpdateAppointmentStatus(ctx, 1, StatusUpcoming)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	updated, err := svc.UpdateAppointmentStatus(ctx, 1, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, updated.Status)

	_, err = svc.UpdateAppointmentStatus(ctx, 1, StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestScheduleLabTest(t *testing.T) {
	svc, n := newTestService(t)
	ctx := context.Background()

	fasting := catalog.LabTest{ID: 2, Name: "Basic Metabolic Panel (BMP)", RequiresFasting: true}
	appt, card, err := svc.ScheduleLabTest(ctx, LabBooking{
		Test:        fasting,
		Location:    "Downtown Clinic",
		Date:        date(2024, time.September, 18),
		Time:        "08:00 AM",
		PatientName: "Jordan Ames",
	})
	require.NoError(t, err)

	stamp := svc.now().UnixMilli()
	assert.Equal(t, "LA-"+strconv.FormatInt(stamp, 10), appt.ID)
	assert.Equal(t, "LC-"+strconv.FormatInt(stamp, 10), card.ID)
	assert.Equal(t, appt.ID, card.AppointmentID)
	assert.Equal(t, "MH-LAB:"+appt.ID, card.QRCodeData)
	assert.Equal(t, FastingInstructions, card.PreparationInstructions)
	assert.Equal(t, "Downtown Clinic", card.Location)

	note := n.last(t)
	assert.Equal(t, "Lab Test Scheduled!", note.Title)
	assert.Equal(t, `Your lab test for "Basic Metabolic Panel (BMP)" is scheduled for 9/18/2024 at 08:00 AM.`, note.Message)

	plain := catalog.LabTest{ID: 1, Name: "Complete Blood Count (CBC)"}
	second, card2, err := svc.ScheduleLabTest(ctx, LabBooking{
		Test: plain, Location: "Uptown Medical Labs", Date: date(2024, time.September, 19), Time: "04:00 PM", PatientName: "Jordan Ames",
	})
	require.NoError(t, err)
	assert.Equal(t, NoPrepInstructions, card2.PreparationInstructions)
	assert.NotEqual(t, appt.ID, second.ID, "same-millisecond bookings need distinct ids")

	labs := svc.LabAppointments()
	require.Len(t, labs, 2)
	assert.Equal(t, second.ID, labs[0].ID)

	got, err := svc.LabCard(appt.ID)
	require.NoError(t, err)
	assert.Equal(t, *card, *got)

	_, err = svc.LabCard("LA-0")
	assert.ErrorIs(t, err, ErrLabAppointmentNotFound)
}

func TestScheduleLabTestRejections(t *testing.T) {
	base := LabBooking{
		Test:        catalog.LabTest{ID: 1, Name: "CBC"},
		Location:    "Downtown Clinic",
		Date:        date(2024, time.September, 18),
		Time:        "08:00 AM",
		PatientName: "Jordan Ames",
	}

	tests := []struct {
		name  string
		edit  func(*LabBooking)
		kind  ValidationKind
		field string
	}{
		{"no location", func(b *LabBooking) { b.Location = "" }, MissingField, "location"},
		{"unknown location", func(b *LabBooking) { b.Location = "Moon Base" }, UnsupportedOption, "location"},
		{"no date", func(b *LabBooking) { b.Date = civil.Date{} }, MissingField, "date"},
		{"no patient", func(b *LabBooking) { b.PatientName = "" }, MissingField, "patientName"},
		{"doctor slot", func(b *LabBooking) { b.Time = "09:30 AM" }, UnknownSlot, "time"},
		{"yesterday", func(b *LabBooking) { b.Date = date(2024, time.September, 16) }, UnavailableDate, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			in := base
			tt.edit(&in)

			_, _, err := svc.ScheduleLabTest(context.Background(), in)
			ve, ok := AsValidation(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, ve.Kind)
			assert.Equal(t, tt.field, ve.Field)
			assert.Empty(t, svc.LabAppointments())
		})
	}
}

func TestScheduleHospitalService(t *testing.T) {
	svc, n := newTestService(t)
	hospital := catalog.Hospital{
		ID: 1, Name: "City General Hospital", Location: "Metropolis",
		Services: []catalog.HospitalService{{Name: "MRI Scan", Description: "Detailed imaging."}},
	}

	appt, card, err := svc.ScheduleHospitalService(context.Background(), ServiceBooking{
		Hospital:    hospital,
		ServiceName: "MRI Scan",
		Date:        date(2024, time.September, 21),
		Time:        "01:00 PM",
		PatientName: "Jordan Ames",
	})
	require.NoError(t, err)

	assert.Regexp(t, `^HSA-\d+$`, appt.ID)
	assert.Regexp(t, `^HSC-\d+$`, card.ID)
	assert.Equal(t, "MH-SERVICE:"+appt.ID, card.QRCodeData)
	assert.Equal(t, "Metropolis", card.Location)
	assert.Equal(t, ArriveEarlyInstructions, card.PreparationInstructions)
	assert.Equal(t, "MRI Scan", card.ServiceName)

	note := n.last(t)
	assert.Equal(t, "Service Scheduled!", note.Title)
	assert.Equal(t, `Your appointment for "MRI Scan" at City General Hospital is scheduled for 9/21/2024 at 01:00 PM.`, note.Message)

	_, _, err = svc.ScheduleHospitalService(context.Background(), ServiceBooking{
		Hospital: hospital, ServiceName: "Dialysis", Date: date(2024, time.September, 21), Time: "01:00 PM", PatientName: "Jordan Ames",
	})
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, UnsupportedOption, ve.Kind)

	_, _, err = svc.ScheduleHospitalService(context.Background(), ServiceBooking{
		Hospital: hospital, ServiceName: "MRI Scan", Date: date(2024, time.September, 21), Time: "08:00 AM", PatientName: "Jordan Ames",
	})
	ve, ok = AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, UnknownSlot, ve.Kind)

	assert.Len(t, svc.ServiceAppointments(), 1)
	_, err = svc.ServiceCard(appt.ID)
	require.NoError(t, err)
	_, err = svc.ServiceCard("HSA-1")
	assert.ErrorIs(t, err, ErrServiceAppointmentNotFound)
}

func TestNotificationFailureKeepsBooking(t *testing.T) {
	svc, n := newTestService(t)
	n.err = errors.New("redis down")
	reg := prometheus.NewRegistry()
	svc.metrics = metrics.NewBookingMetrics(reg)

	_, err := svc.BookAppointment(context.Background(), DoctorBooking{
		Doctor: mondayDoctor(), Date: date(2024, time.September, 23), Time: "09:00 AM", ReasonForVisit: "Consult",
	})
	require.NoError(t, err)
	assert.Len(t, svc.ListAppointments(FilterAll, OrderDefault), 1)

	count, err := testutil.GatherAndCount(reg, "telehealth_booking_notifications_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCompletePastAppointments(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	doc := catalog.Doctor{ID: 2, Name: "Dr. Marcus Chen"}

	for _, d := range []civil.Date{date(2024, time.September, 18), date(2024, time.September, 20)} {
		_, err := svc.BookAppointment(ctx, DoctorBooking{Doctor: doc, Date: d, Time: "09:00 AM", ReasonForVisit: "Consult"})
		require.NoError(t, err)
	}

	n, err := svc.CompletePastAppointments(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	later := time.Date(2024, time.September, 19, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return later }

	n, err = svc.CompletePastAppointments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	past := svc.ListAppointments(FilterPast, OrderDefault)
	require.Len(t, past, 1)
	assert.Equal(t, StatusCompleted, past[0].Status)
	assert.Equal(t, date(2024, time.September, 18), past[0].Date)
}

func TestRunSweeperStopsOnCancel(t *testing.T) {
	svc, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		svc.RunSweeper(ctx, 10*time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestRunSweeperToleratesNonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		svc, _ := newTestService(t)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			defer close(done)
			svc.RunSweeper(ctx, interval)
		}()
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("sweeper with interval %s did not stop", interval)
		}
	}
}

func TestLoadAppointmentsSeedsHistory(t *testing.T) {
	svc, _ := newTestService(t)
	history := catalog.Fallback().Appointments

	assert.Equal(t, len(history), svc.LoadAppointments(history))

	list := svc.ListAppointments(FilterAll, OrderDefault)
	require.Len(t, list, len(history))
	assert.Equal(t, 6, list[0].ID)
	assert.Equal(t, 5, list[len(list)-1].ID)

	appt, err := svc.BookAppointment(context.Background(), DoctorBooking{
		Doctor:         mondayDoctor(),
		Date:           date(2024, time.September, 23),
		Time:           "10:00 AM",
		ReasonForVisit: "Follow-up",
	})
	require.NoError(t, err)
	assert.Equal(t, len(history)+1, appt.ID)

	list = svc.ListAppointments(FilterAll, OrderDefault)
	require.Len(t, list, len(history)+1)
	assert.Equal(t, appt.ID, list[0].ID)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i-1].Date.Before(list[i].Date), "list not sorted at %d", i)
	}

	assert.Len(t, svc.ListAppointments(FilterPast, OrderDefault), 4)
	assert.Len(t, svc.ListAppointments(FilterUpcoming, OrderDefault), 5)
}
