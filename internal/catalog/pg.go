package catalog

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5"
)

// Querier is satisfied by *pgxpool.Pool and by pgxmock pools.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PgSource reads the catalog and appointment history tables created by the
// db migrations.
type PgSource struct {
	db Querier
}

func NewPgSource(db Querier) *PgSource {
	return &PgSource{db: db}
}

func (s *PgSource) Name() string { return "postgres" }

func scanDoctor(row pgx.Row) (Doctor, error) {
	var d Doctor
	var types []string
	var bio *string

	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Specialty,
		&d.Hospital,
		&d.Availability,
		&d.ImageURL,
		&d.YearsOfExperience,
		&bio,
		&types,
	)
	if err != nil {
		return Doctor{}, err
	}

	if bio != nil {
		d.Bio = *bio
	}
	// NULL keeps the "all types" meaning; an empty array means none.
	if types != nil {
		d.ConsultationTypes = make([]ConsultationType, 0, len(types))
		for _, t := range types {
			d.ConsultationTypes = append(d.ConsultationTypes, ConsultationType(t))
		}
	}
	return d, nil
}

func (s *PgSource) Doctors(ctx context.Context) ([]Doctor, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, specialty, hospital, availability, image_url,
		       years_of_experience, bio, consultation_types
		FROM doctors
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query doctors: %w", err)
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan doctor: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate doctors: %w", err)
	}
	return result, nil
}

func (s *PgSource) Hospitals(ctx context.Context) ([]Hospital, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, location, specialties, rating, image_url
		FROM hospitals
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query hospitals: %w", err)
	}
	defer rows.Close()

	var result []Hospital
	index := make(map[int]int)
	for rows.Next() {
		var h Hospital
		if err := rows.Scan(&h.ID, &h.Name, &h.Location, &h.Specialties, &h.Rating, &h.ImageURL); err != nil {
			return nil, fmt.Errorf("scan hospital: %w", err)
		}
		index[h.ID] = len(result)
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hospitals: %w", err)
	}
	rows.Close()

	svcRows, err := s.db.Query(ctx, `
		SELECT hospital_id, name, description
		FROM hospital_services
		ORDER BY hospital_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("query hospital services: %w", err)
	}
	defer svcRows.Close()

	for svcRows.Next() {
		var hospitalID int
		var svc HospitalService
		if err := svcRows.Scan(&hospitalID, &svc.Name, &svc.Description); err != nil {
			return nil, fmt.Errorf("scan hospital service: %w", err)
		}
		if i, ok := index[hospitalID]; ok {
			result[i].Services = append(result[i].Services, svc)
		}
	}
	if err := svcRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hospital services: %w", err)
	}
	return result, nil
}

func (s *PgSource) LabTests(ctx context.Context) ([]LabTest, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, description, price, requires_fasting, category
		FROM lab_tests
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query lab tests: %w", err)
	}
	defer rows.Close()

	var result []LabTest
	for rows.Next() {
		var t LabTest
		var category string
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Price, &t.RequiresFasting, &category); err != nil {
			return nil, fmt.Errorf("scan lab test: %w", err)
		}
		t.Category = LabCategory(category)
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lab tests: %w", err)
	}
	return result, nil
}

// Appointments joins stored history rows to the doctors table. Rows whose
// doctor no longer exists are skipped.
func (s *PgSource) Appointments(ctx context.Context) ([]AppointmentRecord, error) {
	doctors, err := s.Doctors(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]Doctor, len(doctors))
	for _, d := range doctors {
		byID[d.ID] = d
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, doctor_id, date, time, type, status, reason_for_visit,
		       preparation_instructions, consultation_notes
		FROM appointment_history
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query appointment history: %w", err)
	}
	defer rows.Close()

	var result []AppointmentRecord
	for rows.Next() {
		var r AppointmentRecord
		var doctorID int
		var date time.Time
		var typ string
		err := rows.Scan(&r.ID, &doctorID, &date, &r.Time, &typ, &r.Status,
			&r.ReasonForVisit, &r.PreparationInstructions, &r.ConsultationNotes)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		d, ok := byID[doctorID]
		if !ok {
			continue
		}
		r.Doctor = d
		r.Date = civil.DateOf(date)
		r.Type = ConsultationType(typ)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}
	return result, nil
}
