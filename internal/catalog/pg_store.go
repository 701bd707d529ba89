package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxBeginner is satisfied by *pgxpool.Pool and by pgxmock pools.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Replace swaps the stored catalog and appointment history for c in a single
// transaction. Hospital services keep their order through the position column.
func Replace(ctx context.Context, db TxBeginner, c Catalog) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin catalog tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `TRUNCATE hospital_services, hospitals, doctors, lab_tests, appointment_history`); err != nil {
		return fmt.Errorf("truncate catalog: %w", err)
	}

	for _, d := range c.Doctors {
		var types []string
		if d.ConsultationTypes != nil {
			types = make([]string, 0, len(d.ConsultationTypes))
			for _, t := range d.ConsultationTypes {
				types = append(types, string(t))
			}
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, name, specialty, hospital, availability, image_url,
			                     years_of_experience, bio, consultation_types)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, d.ID, d.Name, d.Specialty, d.Hospital, notNull(d.Availability), d.ImageURL, d.YearsOfExperience, d.Bio, types)
		if err != nil {
			return fmt.Errorf("insert doctor %d: %w", d.ID, err)
		}
	}

	for _, h := range c.Hospitals {
		_, err := tx.Exec(ctx, `
			INSERT INTO hospitals (id, name, location, specialties, rating, image_url)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, h.ID, h.Name, h.Location, notNull(h.Specialties), h.Rating, h.ImageURL)
		if err != nil {
			return fmt.Errorf("insert hospital %d: %w", h.ID, err)
		}
		for pos, svc := range h.Services {
			_, err := tx.Exec(ctx, `
				INSERT INTO hospital_services (hospital_id, position, name, description)
				VALUES ($1, $2, $3, $4)
			`, h.ID, pos, svc.Name, svc.Description)
			if err != nil {
				return fmt.Errorf("insert service %q for hospital %d: %w", svc.Name, h.ID, err)
			}
		}
	}

	for _, t := range c.LabTests {
		_, err := tx.Exec(ctx, `
			INSERT INTO lab_tests (id, name, description, price, requires_fasting, category)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, t.ID, t.Name, t.Description, t.Price, t.RequiresFasting, string(t.Category))
		if err != nil {
			return fmt.Errorf("insert lab test %d: %w", t.ID, err)
		}
	}

	for _, a := range c.Appointments {
		_, err := tx.Exec(ctx, `
			INSERT INTO appointment_history (id, doctor_id, date, time, type, status, reason_for_visit,
			                                 preparation_instructions, consultation_notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, a.ID, a.Doctor.ID, a.Date.String(), a.Time, string(a.Type), a.Status, a.ReasonForVisit,
			a.PreparationInstructions, a.ConsultationNotes)
		if err != nil {
			return fmt.Errorf("insert appointment %d: %w", a.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit catalog: %w", err)
	}
	return nil
}

// notNull turns a nil slice into an empty one so pgx encodes '{}' instead of
// NULL for NOT NULL array columns.
func notNull(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
