package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgSourceDoctors(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	bio := "Sports medicine."
	mock.ExpectQuery(`SELECT id, name, specialty, hospital, availability, image_url,\s+years_of_experience, bio, consultation_types\s+FROM doctors`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "specialty", "hospital", "availability", "image_url", "years_of_experience", "bio", "consultation_types"}).
			AddRow(1, "Dr. Lee", "Orthopedics", "St. Jude's Medical Center", []string{"Mon", "Thu"}, "https://img/lee", 12, &bio, []string(nil)).
			AddRow(2, "Dr. Park", "Dermatology", "Oceanview Clinic", []string{}, "https://img/park", 3, (*string)(nil), []string{}))

	doctors, err := NewPgSource(mock).Doctors(context.Background())
	require.NoError(t, err)
	require.Len(t, doctors, 2)

	assert.Equal(t, "Sports medicine.", doctors[0].Bio)
	assert.Nil(t, doctors[0].ConsultationTypes)
	assert.True(t, doctors[0].Offers(AudioCall))

	assert.Equal(t, "", doctors[1].Bio)
	assert.NotNil(t, doctors[1].ConsultationTypes)
	assert.False(t, doctors[1].Offers(VideoCall))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgSourceHospitalsAttachServices(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM hospitals`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "location", "specialties", "rating", "image_url"}).
			AddRow(1, "City General Hospital", "Metropolis", []string{"Cardiology"}, 4.8, "https://img/1").
			AddRow(2, "Oceanview Clinic", "Coastline", []string{"Dermatology"}, 4.6, "https://img/2"))
	mock.ExpectQuery(`FROM hospital_services`).
		WillReturnRows(pgxmock.NewRows([]string{"hospital_id", "name", "description"}).
			AddRow(1, "MRI Scan", "Detailed imaging.").
			AddRow(1, "Chemotherapy", "Cancer treatment.").
			AddRow(9, "Orphan", "Belongs to no hospital."))

	hospitals, err := NewPgSource(mock).Hospitals(context.Background())
	require.NoError(t, err)
	require.Len(t, hospitals, 2)
	assert.Equal(t, []HospitalService{
		{Name: "MRI Scan", Description: "Detailed imaging."},
		{Name: "Chemotherapy", Description: "Cancer treatment."},
	}, hospitals[0].Services)
	assert.Empty(t, hospitals[1].Services)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgSourceLabTests(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM lab_tests`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "price", "requires_fasting", "category"}).
			AddRow(3, "Lipid Panel", "Cholesterol.", 90.0, true, "Cardiology"))

	labs, err := NewPgSource(mock).LabTests(context.Background())
	require.NoError(t, err)
	require.Len(t, labs, 1)
	assert.Equal(t, CategoryCardiology, labs[0].Category)
	assert.True(t, labs[0].RequiresFasting)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgSourceQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM lab_tests`).WillReturnError(errors.New("relation does not exist"))

	_, err = NewPgSource(mock).LabTests(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query lab tests")
}

func TestPgSourceAppointmentsJoinDoctors(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM doctors`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "specialty", "hospital", "availability", "image_url", "years_of_experience", "bio", "consultation_types"}).
			AddRow(1, "Dr. Lee", "Orthopedics", "St. Jude's Medical Center", []string{"Mon"}, "https://img/lee", 12, (*string)(nil), []string(nil)))
	mock.ExpectQuery(`FROM appointment_history`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "doctor_id", "date", "time", "type", "status", "reason_for_visit", "preparation_instructions", "consultation_notes"}).
			AddRow(1, 1, time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC), "10:30 AM", "In-Person", "Upcoming", "Knee pain.", "Wear shorts.", "").
			AddRow(2, 99, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), "09:00 AM", "Video Call", "Completed", "Orphan.", "", ""))

	history, err := NewPgSource(mock).Appointments(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)

	got := history[0]
	assert.Equal(t, "Dr. Lee", got.Doctor.Name)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.September, Day: 15}, got.Date)
	assert.Equal(t, InPerson, got.Type)
	assert.Equal(t, "Wear shorts.", got.PreparationInstructions)

	require.NoError(t, mock.ExpectationsWereMet())
}
