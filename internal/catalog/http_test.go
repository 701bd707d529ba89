package catalog

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogAPI(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("key:secret"))
		if r.Header.Get("Authorization") != want {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPSourceDoctorDefaults(t *testing.T) {
	srv := newCatalogAPI(t, map[string]string{
		"/doctors": `[
			{"id": 11, "fullName": "Dr. Ada Obi", "specialty": "Oncology"},
			{"name": "Dr. Ken Ito", "availability": ["Tue"], "consultationTypes": ["Messaging"], "image": "https://img/ken.png"}
		]`,
	})

	src := NewHTTPSource(srv.URL+"/", "key:secret", time.Second)
	doctors, err := src.Doctors(context.Background())
	require.NoError(t, err)
	require.Len(t, doctors, 2)

	ada := doctors[0]
	assert.Equal(t, 11, ada.ID)
	assert.Equal(t, "Dr. Ada Obi", ada.Name)
	assert.Equal(t, "General Hospital", ada.Hospital)
	assert.Equal(t, []string{"Mon", "Wed", "Fri"}, ada.Availability)
	assert.Equal(t, []ConsultationType{VideoCall, InPerson}, ada.ConsultationTypes)
	assert.Equal(t, 5, ada.YearsOfExperience)
	assert.Equal(t, "https://picsum.photos/seed/11/400/400", ada.ImageURL)

	ken := doctors[1]
	assert.Equal(t, 2, ken.ID)
	assert.Equal(t, "General Practice", ken.Specialty)
	assert.Equal(t, []string{"Tue"}, ken.Availability)
	assert.Equal(t, []ConsultationType{Messaging}, ken.ConsultationTypes)
	assert.Equal(t, "https://img/ken.png", ken.ImageURL)
}

func TestHTTPSourceHospitalAndLabDefaults(t *testing.T) {
	srv := newCatalogAPI(t, map[string]string{
		"/hospitals": `[{"id": 3, "name": "Lakeside", "rating": 0}]`,
		"/labs":      `[{"testName": "Vitamin D", "requiresFasting": true}]`,
	})
	src := NewHTTPSource(srv.URL, "key:secret", time.Second)

	hospitals, err := src.Hospitals(context.Background())
	require.NoError(t, err)
	require.Len(t, hospitals, 1)
	assert.Equal(t, "Metropolis", hospitals[0].Location)
	assert.Equal(t, 0.0, hospitals[0].Rating)
	assert.Equal(t, []string{"General"}, hospitals[0].Specialties)
	assert.Equal(t, []HospitalService{{Name: "General Consultation", Description: "Standard medical checkup."}}, hospitals[0].Services)

	labs, err := src.LabTests(context.Background())
	require.NoError(t, err)
	require.Len(t, labs, 1)
	assert.Equal(t, "Vitamin D", labs[0].Name)
	assert.Equal(t, 50.0, labs[0].Price)
	assert.Equal(t, CategoryGeneral, labs[0].Category)
	assert.True(t, labs[0].RequiresFasting)
}

func TestHTTPSourceErrors(t *testing.T) {
	srv := newCatalogAPI(t, map[string]string{
		"/doctors": `{"message": "not a list"}`,
	})

	_, err := NewHTTPSource(srv.URL, "key:secret", time.Second).Doctors(context.Background())
	require.Error(t, err)

	_, err = NewHTTPSource(srv.URL, "key:secret", time.Second).Hospitals(context.Background())
	assert.ErrorIs(t, err, ErrUpstreamStatus)

	_, err = NewHTTPSource(srv.URL, "wrong", time.Second).LabTests(context.Background())
	assert.ErrorIs(t, err, ErrUpstreamStatus)
}

func TestLoadFromHTTPFallsBackOnOutage(t *testing.T) {
	srv := newCatalogAPI(t, map[string]string{
		"/labs": `[{"id": 1, "name": "Ferritin", "price": 40, "category": "Blood Work"}]`,
	})

	cat, err := Load(context.Background(), NewHTTPSource(srv.URL, "key:secret", time.Second), zerolog.Nop(), nil)
	require.NoError(t, err)

	assert.Equal(t, fallbackDoctors(), cat.Doctors)
	assert.Equal(t, fallbackHospitals(), cat.Hospitals)
	assert.Equal(t, fallbackAppointments(), cat.Appointments)
	require.Len(t, cat.LabTests, 1)
	assert.Equal(t, "Ferritin", cat.LabTests[0].Name)
}

func TestHTTPSourceAppointmentHistory(t *testing.T) {
	srv := newCatalogAPI(t, map[string]string{
		"/v1/appointments": `{"results": [
			{"id": 7, "date": "2024-09-18T14:05:00Z", "status": "active", "reason": "Rash follow-up"},
			{"id": 12, "date": "2024-08-02T09:30:00", "status": "closed", "summary": "Prescribed rest."}
		]}`,
	})
	src := NewHTTPSource(srv.URL, "key:secret", time.Second).WithLocation(time.UTC)

	history, err := src.Appointments(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 2)

	doctors := fallbackDoctors()

	active := history[0]
	assert.Equal(t, 7, active.ID)
	assert.Equal(t, "Upcoming", active.Status)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.September, Day: 18}, active.Date)
	assert.Equal(t, "02:05 PM", active.Time)
	assert.Equal(t, VideoCall, active.Type)
	assert.Equal(t, "Rash follow-up", active.ReasonForVisit)
	assert.Equal(t, doctors[7%len(doctors)], active.Doctor)

	closed := history[1]
	assert.Equal(t, "Completed", closed.Status)
	assert.Equal(t, "Consultation", closed.ReasonForVisit)
	assert.Equal(t, "Prescribed rest.", closed.ConsultationNotes)
	assert.Equal(t, "09:30 AM", closed.Time)
	assert.Equal(t, doctors[12%len(doctors)], closed.Doctor)
}

func TestHTTPSourceAppointmentBadDate(t *testing.T) {
	srv := newCatalogAPI(t, map[string]string{
		"/v1/appointments": `{"results": [{"id": 1, "date": "next tuesday"}]}`,
	})

	_, err := NewHTTPSource(srv.URL, "key:secret", time.Second).Appointments(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "appointment 1")
}

func TestHTTPSourcePing(t *testing.T) {
	srv := newCatalogAPI(t, map[string]string{
		"/": `{"message": "API is running"}`,
	})

	require.NoError(t, NewHTTPSource(srv.URL, "key:secret", time.Second).Ping(context.Background()))
	assert.ErrorIs(t, NewHTTPSource(srv.URL, "wrong", time.Second).Ping(context.Background()), ErrUpstreamStatus)

	srv.Close()
	assert.Error(t, NewHTTPSource(srv.URL, "key:secret", time.Second).Ping(context.Background()))
}
