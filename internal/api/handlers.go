package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"

	"github.com/hackgods/telehealth-scheduling/internal/booking"
	"github.com/hackgods/telehealth-scheduling/internal/catalog"
	"github.com/hackgods/telehealth-scheduling/internal/schedule"
)

// NotificationFeed exposes recently sent booking notifications.
type NotificationFeed interface {
	Recent(ctx context.Context, limit int) ([]booking.Notification, error)
}

// parseOptionalDate accepts "" as the zero date.
func parseOptionalDate(s string) (civil.Date, error) {
	if s == "" {
		return civil.Date{}, nil
	}
	return schedule.ParseDate(s)
}

func flowParam(w http.ResponseWriter, r *http.Request) (schedule.Flow, bool) {
	flow, err := schedule.ParseFlow(chi.URLParam(r, "flow"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_flow", err.Error())
		return "", false
	}
	return flow, true
}

func catalogHandler(v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, v)
	}
}

// calendarHandler renders one month for a flow. Doctors are limited to their
// weekdays; labs and hospital services accept any day that is not past.
func calendarHandler(svc *booking.Service, cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flow, ok := flowParam(w, r)
		if !ok {
			return
		}
		q := r.URL.Query()
		today := svc.Today()

		availability := schedule.Unrestricted()
		if flow == schedule.FlowDoctor {
			id, err := strconv.Atoi(q.Get("provider_id"))
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_provider_id", "provider_id must be a doctor id")
				return
			}
			doc, found := cat.Doctor(id)
			if !found {
				writeError(w, http.StatusNotFound, "doctor_not_found", "no doctor with that id")
				return
			}
			// Unknown weekday names never match; the rest still apply.
			availability, _ = doc.Schedule()
		}

		cursor := schedule.CursorOf(today)
		if y := q.Get("year"); y != "" {
			year, err := strconv.Atoi(y)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_year", err.Error())
				return
			}
			cursor.Year = year
		}
		if m := q.Get("month"); m != "" {
			month, err := strconv.Atoi(m)
			if err != nil || month < 1 || month > 12 {
				writeError(w, http.StatusBadRequest, "invalid_month", "month must be 1-12")
				return
			}
			cursor.Month = time.Month(month)
		}

		selected, err := parseOptionalDate(q.Get("selected"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
			return
		}
		if !selected.IsZero() && !schedule.IsBookable(selected, availability, today) {
			selected = civil.Date{}
		}

		grid := schedule.BuildMonthGrid(cursor, availability, selected, today)
		writeJSON(w, http.StatusOK, CalendarResponse{
			Flow:      flow,
			MonthGrid: grid,
			Slots:     svc.Slots().List(flow, selected),
		})
	}
}

func slotsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flow, ok := flowParam(w, r)
		if !ok {
			return
		}
		date, err := parseOptionalDate(r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
			return
		}

		resp := SlotsResponse{Flow: flow, Slots: svc.Slots().List(flow, date)}
		if !date.IsZero() {
			resp.Date = date.String()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func createAppointmentHandler(svc *booking.Service, cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doc, found := cat.Doctor(req.DoctorID)
		if !found {
			writeError(w, http.StatusNotFound, "doctor_not_found", "no doctor with that id")
			return
		}
		date, err := parseOptionalDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		appt, err := svc.BookAppointment(r.Context(), booking.DoctorBooking{
			Doctor:         doc,
			Date:           date,
			Time:           req.Time,
			Type:           catalog.ConsultationType(req.Type),
			ReasonForVisit: req.ReasonForVisit,
		})
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, appt)
	}
}

func listAppointmentsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter, ok := booking.ParseFilter(q.Get("status"))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_status", "status must be upcoming, past or all")
			return
		}
		order, ok := booking.ParseOrder(q.Get("order"))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_order", "order must be newest or oldest")
			return
		}

		writeJSON(w, http.StatusOK, svc.ListAppointments(filter, order))
	}
}

func updateAppointmentStatusHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be an integer")
			return
		}

		var req UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		status, ok := booking.ParseStatus(req.Status)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_status", "status must be Upcoming, Completed or Cancelled")
			return
		}

		appt, err := svc.UpdateAppointmentStatus(r.Context(), id, status)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, appt)
	}
}

func createLabAppointmentHandler(svc *booking.Service, cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateLabAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		test, found := cat.LabTest(req.TestID)
		if !found {
			writeError(w, http.StatusNotFound, "lab_test_not_found", "no lab test with that id")
			return
		}
		date, err := parseOptionalDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		appt, card, err := svc.ScheduleLabTest(r.Context(), booking.LabBooking{
			Test:        test,
			Location:    req.Location,
			Date:        date,
			Time:        req.Time,
			PatientName: req.PatientName,
		})
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, LabAppointmentResponse{Appointment: *appt, Card: *card})
	}
}

func listLabAppointmentsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.LabAppointments())
	}
}

func labCardHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, err := svc.LabCard(chi.URLParam(r, "id"))
		if err != nil {
			handleBookingError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, card)
	}
}

func createServiceAppointmentHandler(svc *booking.Service, cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateServiceAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		hospital, found := cat.Hospital(req.HospitalID)
		if !found {
			writeError(w, http.StatusNotFound, "hospital_not_found", "no hospital with that id")
			return
		}
		date, err := parseOptionalDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		appt, card, err := svc.ScheduleHospitalService(r.Context(), booking.ServiceBooking{
			Hospital:    hospital,
			ServiceName: req.Service,
			Date:        date,
			Time:        req.Time,
			PatientName: req.PatientName,
		})
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, ServiceAppointmentResponse{Appointment: *appt, Card: *card})
	}
}

func listServiceAppointmentsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.ServiceAppointments())
	}
}

func serviceCardHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, err := svc.ServiceCard(chi.URLParam(r, "id"))
		if err != nil {
			handleBookingError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, card)
	}
}

func notificationsHandler(feed NotificationFeed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
				return
			}
			limit = n
		}

		notes, err := feed.Recent(r.Context(), limit)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				writeError(w, http.StatusGatewayTimeout, "notifications_timeout", err.Error())
				return
			}
			writeError(w, http.StatusBadGateway, "notifications_unavailable", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, notes)
	}
}
