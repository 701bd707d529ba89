package booking

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/hackgods/telehealth-scheduling/internal/catalog"
	"github.com/hackgods/telehealth-scheduling/internal/metrics"
	"github.com/hackgods/telehealth-scheduling/internal/schedule"
)

type Filter string

const (
	FilterAll      Filter = "all"
	FilterUpcoming Filter = "upcoming"
	FilterPast     Filter = "past"
)

type Order string

const (
	OrderDefault Order = ""
	OrderNewest  Order = "newest"
	OrderOldest  Order = "oldest"
)

func ParseFilter(s string) (Filter, bool) {
	switch Filter(s) {
	case "", FilterAll:
		return FilterAll, true
	case FilterUpcoming, FilterPast:
		return Filter(s), true
	}
	return "", false
}

func ParseOrder(s string) (Order, bool) {
	switch Order(s) {
	case OrderDefault, OrderNewest, OrderOldest:
		return Order(s), true
	}
	return "", false
}

// Service owns the in-memory booking state. All writes go through Reduce
// while holding mu; notifications are sent after the lock is released.
type Service struct {
	mu        sync.Mutex
	state     State
	lastStamp int64

	slots    schedule.SlotCatalog
	loc      *time.Location
	notifier Notifier
	metrics  *metrics.BookingMetrics
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(slots schedule.SlotCatalog, notifier Notifier, logger zerolog.Logger, m *metrics.BookingMetrics, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	return &Service{
		slots:    slots,
		loc:      loc,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Call it before the service is shared.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Today is the current civil date in the clinic time zone.
func (s *Service) Today() civil.Date {
	return schedule.Today(s.now(), s.loc)
}

func (s *Service) Slots() schedule.SlotCatalog {
	return s.slots
}

func (s *Service) rules() Rules {
	return Rules{Slots: s.slots, Today: s.Today()}
}

// nextStamp returns a millisecond timestamp that is strictly greater than the
// last one used, so two bookings in the same millisecond get distinct ids.
// Callers hold mu and record the stamp in lastStamp once the booking is kept.
func (s *Service) nextStamp() int64 {
	stamp := s.now().UnixMilli()
	if stamp <= s.lastStamp {
		stamp = s.lastStamp + 1
	}
	return stamp
}

func (s *Service) reject(flow schedule.Flow, err error) error {
	result := "error"
	if ve, ok := AsValidation(err); ok {
		result = string(ve.Kind)
	}
	s.metrics.ObserveBooking(string(flow), result)
	s.logger.Debug().Err(err).Str("flow", string(flow)).Msg("booking rejected")
	return err
}

func (s *Service) notify(ctx context.Context, n Notification) {
	err := s.notifier.Notify(ctx, n)
	s.metrics.ObserveNotification(err == nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("title", n.Title).Msg("failed to deliver booking notification")
	}
}

// LoadAppointments seeds the doctor appointment list with a loaded history,
// replacing whatever was there. It returns the number of records kept.
func (s *Service) LoadAppointments(records []catalog.AppointmentRecord) int {
	list := make([]Appointment, 0, len(records))
	for _, r := range records {
		list = append(list, FromRecord(r))
	}

	s.mu.Lock()
	s.state = Reduce(s.state, AppointmentsLoaded{Appointments: list})
	s.mu.Unlock()

	s.logger.Info().Int("count", len(list)).Msg("appointment history loaded")
	return len(list)
}

// BookAppointment books a doctor consultation. The new record gets the next
// sequential id and the list is re-sorted newest first.
func (s *Service) BookAppointment(ctx context.Context, in DoctorBooking) (*Appointment, error) {
	s.mu.Lock()
	appt, err := AssembleAppointment(in, len(s.state.Appointments)+1, s.rules())
	if err != nil {
		s.mu.Unlock()
		return nil, s.reject(schedule.FlowDoctor, err)
	}
	s.state = Reduce(s.state, AppointmentBooked{Appointment: appt})
	s.mu.Unlock()

	s.metrics.ObserveBooking(string(schedule.FlowDoctor), "created")
	s.logger.Info().
		Int("appointment_id", appt.ID).
		Int("doctor_id", appt.Doctor.ID).
		Str("date", appt.Date.String()).
		Str("time", appt.Time).
		Msg("appointment booked")

	s.notify(ctx, appointmentNotification(appt, s.now()))
	return &appt, nil
}

func (s *Service) ScheduleLabTest(ctx context.Context, in LabBooking) (*LabAppointment, *LabAppointmentCard, error) {
	s.mu.Lock()
	stamp := s.nextStamp()
	appt, card, err := AssembleLabAppointment(in, stamp, s.rules())
	if err != nil {
		s.mu.Unlock()
		return nil, nil, s.reject(schedule.FlowLab, err)
	}
	s.lastStamp = stamp
	s.state = Reduce(s.state, LabTestScheduled{Appointment: appt, Card: card})
	s.mu.Unlock()

	s.metrics.ObserveBooking(string(schedule.FlowLab), "created")
	s.logger.Info().
		Str("appointment_id", appt.ID).
		Int("test_id", appt.Test.ID).
		Str("location", appt.Location).
		Str("date", appt.Date.String()).
		Str("time", appt.Time).
		Msg("lab test scheduled")

	s.notify(ctx, labNotification(appt, s.now()))
	return &appt, &card, nil
}

func (s *Service) ScheduleHospitalService(ctx context.Context, in ServiceBooking) (*HospitalServiceAppointment, *HospitalServiceAppointmentCard, error) {
	s.mu.Lock()
	stamp := s.nextStamp()
	appt, card, err := AssembleServiceAppointment(in, stamp, s.rules())
	if err != nil {
		s.mu.Unlock()
		return nil, nil, s.reject(schedule.FlowHospitalService, err)
	}
	s.lastStamp = stamp
	s.state = Reduce(s.state, ServiceScheduled{Appointment: appt, Card: card})
	s.mu.Unlock()

	s.metrics.ObserveBooking(string(schedule.FlowHospitalService), "created")
	s.logger.Info().
		Str("appointment_id", appt.ID).
		Int("hospital_id", appt.Hospital.ID).
		Str("service", appt.Service.Name).
		Str("date", appt.Date.String()).
		Str("time", appt.Time).
		Msg("hospital service scheduled")

	s.notify(ctx, serviceNotification(appt, s.now()))
	return &appt, &card, nil
}

// ListAppointments returns a sorted copy. Upcoming defaults to oldest first,
// everything else to newest first.
func (s *Service) ListAppointments(filter Filter, order Order) []Appointment {
	s.mu.Lock()
	all := s.state.Appointments
	s.mu.Unlock()

	out := make([]Appointment, 0, len(all))
	for _, a := range all {
		switch filter {
		case FilterUpcoming:
			if a.Status != StatusUpcoming {
				continue
			}
		case FilterPast:
			if a.Status == StatusUpcoming {
				continue
			}
		}
		out = append(out, a)
	}

	if order == OrderDefault {
		order = OrderNewest
		if filter == FilterUpcoming {
			order = OrderOldest
		}
	}
	if order == OrderOldest {
		SortOldestFirst(out)
	} else {
		SortNewestFirst(out)
	}
	return out
}

func (s *Service) LabAppointments() []LabAppointment {
	s.mu.Lock()
	out := slices.Clone(s.state.LabAppointments)
	s.mu.Unlock()

	slices.SortStableFunc(out, func(a, b LabAppointment) int {
		return compareSlot(b.Date, b.Time, a.Date, a.Time)
	})
	return out
}

// LabCard returns the card issued for a lab appointment id.
func (s *Service) LabCard(appointmentID string) (*LabAppointmentCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.state.LabCards {
		if c.AppointmentID == appointmentID {
			card := c
			return &card, nil
		}
	}
	return nil, ErrLabAppointmentNotFound
}

func (s *Service) ServiceAppointments() []HospitalServiceAppointment {
	s.mu.Lock()
	out := slices.Clone(s.state.ServiceAppointments)
	s.mu.Unlock()

	slices.SortStableFunc(out, func(a, b HospitalServiceAppointment) int {
		return compareSlot(b.Date, b.Time, a.Date, a.Time)
	})
	return out
}

func (s *Service) ServiceCard(appointmentID string) (*HospitalServiceAppointmentCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.state.ServiceCards {
		if c.AppointmentID == appointmentID {
			card := c
			return &card, nil
		}
	}
	return nil, ErrServiceAppointmentNotFound
}

// UpdateAppointmentStatus moves an upcoming appointment to Completed or
// Cancelled. Any other transition returns ErrInvalidStatusTransition.
func (s *Service) UpdateAppointmentStatus(ctx context.Context, id int, to AppointmentStatus) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.state.Appointments, func(a Appointment) bool { return a.ID == id })
	if idx < 0 {
		return nil, ErrAppointmentNotFound
	}
	current := s.state.Appointments[idx]
	if current.Status != StatusUpcoming || (to != StatusCompleted && to != StatusCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, current.Status, to)
	}

	s.state = Reduce(s.state, AppointmentStatusChanged{ID: id, Status: to})
	current.Status = to

	s.logger.Info().
		Int("appointment_id", id).
		Str("status", string(to)).
		Msg("appointment status updated")
	return &current, nil
}

// CompletePastAppointments marks every upcoming appointment dated before
// today as completed and returns how many changed.
func (s *Service) CompletePastAppointments(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	today := s.Today()

	s.mu.Lock()
	defer s.mu.Unlock()

	var due []int
	for _, a := range s.state.Appointments {
		if a.Status == StatusUpcoming && a.Date.Before(today) {
			due = append(due, a.ID)
		}
	}
	for _, id := range due {
		s.state = Reduce(s.state, AppointmentStatusChanged{ID: id, Status: StatusCompleted})
	}
	return len(due), nil
}

// DefaultSweepInterval is used when RunSweeper gets a non-positive interval.
const DefaultSweepInterval = time.Hour

// RunSweeper calls CompletePastAppointments once at start and then on every
// tick until ctx is cancelled.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		s.logger.Warn().
			Dur("interval", interval).
			Dur("default", DefaultSweepInterval).
			Msg("invalid sweep interval, using default")
		interval = DefaultSweepInterval
	}
	s.sweepOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("stopping appointment sweeper")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Service) sweepOnce(ctx context.Context) {
	start := time.Now()
	n, err := s.CompletePastAppointments(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("sweep run error")
		return
	}
	s.logger.Debug().
		Int("completed", n).
		Dur("took", time.Since(start)).
		Msg("sweep run complete")
}
