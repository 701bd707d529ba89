package catalog

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

var ErrUpstreamStatus = errors.New("catalog api returned non-2xx status")

// HTTPSource reads the catalog from the partner REST API.
type HTTPSource struct {
	baseURL string
	auth    string
	client  *http.Client
	loc     *time.Location
}

func NewHTTPSource(baseURL, apiKey string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		auth:    "Basic " + base64.StdEncoding.EncodeToString([]byte(apiKey)),
		client:  &http.Client{Timeout: timeout},
		loc:     time.Local,
	}
}

// WithLocation sets the zone appointment timestamps are rendered in.
func (s *HTTPSource) WithLocation(loc *time.Location) *HTTPSource {
	if loc != nil {
		s.loc = loc
	}
	return s
}

func (s *HTTPSource) Name() string { return "api" }

func (s *HTTPSource) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.auth)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("get %s: %w: %s", path, ErrUpstreamStatus, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

type apiDoctor struct {
	ID                int                `json:"id"`
	Name              string             `json:"name"`
	FullName          string             `json:"fullName"`
	Specialty         string             `json:"specialty"`
	Hospital          string             `json:"hospital"`
	Availability      []string           `json:"availability"`
	ImageURL          string             `json:"imageUrl"`
	Image             string             `json:"image"`
	YearsOfExperience int                `json:"yearsOfExperience"`
	Bio               string             `json:"bio"`
	ConsultationTypes []ConsultationType `json:"consultationTypes"`
}

func (s *HTTPSource) Doctors(ctx context.Context) ([]Doctor, error) {
	var items []apiDoctor
	if err := s.get(ctx, "/doctors", &items); err != nil {
		return nil, err
	}
	out := make([]Doctor, 0, len(items))
	for i, it := range items {
		d := Doctor{
			ID:                firstInt(it.ID, i+1),
			Name:              firstString(it.Name, it.FullName, "Unknown Doctor"),
			Specialty:         firstString(it.Specialty, "General Practice"),
			Hospital:          firstString(it.Hospital, "General Hospital"),
			Availability:      it.Availability,
			YearsOfExperience: firstInt(it.YearsOfExperience, 5),
			Bio:               firstString(it.Bio, "Dedicated healthcare professional committed to patient care."),
			ConsultationTypes: it.ConsultationTypes,
		}
		d.ImageURL = firstString(it.ImageURL, it.Image, fmt.Sprintf("https://picsum.photos/seed/%d/400/400", d.ID))
		if d.Availability == nil {
			d.Availability = []string{"Mon", "Wed", "Fri"}
		}
		if d.ConsultationTypes == nil {
			d.ConsultationTypes = []ConsultationType{VideoCall, InPerson}
		}
		out = append(out, d)
	}
	return out, nil
}

type apiHospital struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	Location    string            `json:"location"`
	Specialties []string          `json:"specialties"`
	Rating      *float64          `json:"rating"`
	ImageURL    string            `json:"imageUrl"`
	Services    []HospitalService `json:"services"`
}

func (s *HTTPSource) Hospitals(ctx context.Context) ([]Hospital, error) {
	var items []apiHospital
	if err := s.get(ctx, "/hospitals", &items); err != nil {
		return nil, err
	}
	out := make([]Hospital, 0, len(items))
	for i, it := range items {
		h := Hospital{
			ID:          firstInt(it.ID, i+1),
			Name:        firstString(it.Name, "Unknown Hospital"),
			Location:    firstString(it.Location, "Metropolis"),
			Specialties: it.Specialties,
			Rating:      4.5,
			Services:    it.Services,
		}
		h.ImageURL = firstString(it.ImageURL, fmt.Sprintf("https://picsum.photos/seed/%dh/400/300", h.ID))
		if it.Rating != nil {
			h.Rating = *it.Rating
		}
		if h.Specialties == nil {
			h.Specialties = []string{"General"}
		}
		if h.Services == nil {
			h.Services = []HospitalService{{Name: "General Consultation", Description: "Standard medical checkup."}}
		}
		out = append(out, h)
	}
	return out, nil
}

type apiLabTest struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	TestName        string   `json:"testName"`
	Description     string   `json:"description"`
	Price           *float64 `json:"price"`
	RequiresFasting bool     `json:"requiresFasting"`
	Category        string   `json:"category"`
}

func (s *HTTPSource) LabTests(ctx context.Context) ([]LabTest, error) {
	var items []apiLabTest
	if err := s.get(ctx, "/labs", &items); err != nil {
		return nil, err
	}
	out := make([]LabTest, 0, len(items))
	for i, it := range items {
		t := LabTest{
			ID:              firstInt(it.ID, i+1),
			Name:            firstString(it.Name, it.TestName, "General Lab Test"),
			Description:     firstString(it.Description, "Diagnostic laboratory service."),
			Price:           50,
			RequiresFasting: it.RequiresFasting,
			Category:        LabCategory(firstString(it.Category, string(CategoryGeneral))),
		}
		if it.Price != nil {
			t.Price = *it.Price
		}
		out = append(out, t)
	}
	return out, nil
}

type apiAppointment struct {
	ID      int    `json:"id"`
	Date    string `json:"date"`
	Status  string `json:"status"`
	Reason  string `json:"reason"`
	Summary string `json:"summary"`
}

// Appointments reads the patient's appointment history. The upstream list
// carries no doctor, so one is picked from the reference doctors by id.
func (s *HTTPSource) Appointments(ctx context.Context) ([]AppointmentRecord, error) {
	var page struct {
		Results []apiAppointment `json:"results"`
	}
	if err := s.get(ctx, "/v1/appointments", &page); err != nil {
		return nil, err
	}
	doctors := fallbackDoctors()
	out := make([]AppointmentRecord, 0, len(page.Results))
	for _, it := range page.Results {
		at, err := parseTimestamp(it.Date, s.loc)
		if err != nil {
			return nil, fmt.Errorf("appointment %d: %w", it.ID, err)
		}
		at = at.In(s.loc)

		idx := it.ID % len(doctors)
		if idx < 0 {
			idx = 0
		}
		r := AppointmentRecord{
			ID:                it.ID,
			Doctor:            doctors[idx],
			Date:              civil.DateOf(at),
			Time:              at.Format("03:04 PM"),
			Type:              VideoCall,
			Status:            "Completed",
			ReasonForVisit:    firstString(it.Reason, "Consultation"),
			ConsultationNotes: it.Summary,
		}
		if it.Status == "active" {
			r.Status = "Upcoming"
		}
		out = append(out, r)
	}
	return out, nil
}

// Ping checks that the API root answers with a 2xx status.
func (s *HTTPSource) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("build request /: %w", err)
	}
	req.Header.Set("Authorization", s.auth)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("get /: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("get /: %w: %s", ErrUpstreamStatus, resp.Status)
	}
	return nil
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseTimestamp reads zone-less values as wall time in loc.
func parseTimestamp(v string, loc *time.Location) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q", v)
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}
