package catalog

import (
	"cloud.google.com/go/civil"

	"github.com/hackgods/telehealth-scheduling/internal/schedule"
)

type ConsultationType string

const (
	VideoCall ConsultationType = "Video Call"
	AudioCall ConsultationType = "Audio Call"
	InPerson  ConsultationType = "In-Person"
	Messaging ConsultationType = "Messaging"
)

// AllConsultationTypes is offered by doctors that do not list their own.
var AllConsultationTypes = []ConsultationType{VideoCall, AudioCall, InPerson, Messaging}

type LabCategory string

const (
	CategoryBloodWork  LabCategory = "Blood Work"
	CategoryImaging    LabCategory = "Imaging"
	CategoryCardiology LabCategory = "Cardiology"
	CategoryGeneral    LabCategory = "General"
)

type Doctor struct {
	ID                int                `json:"id"`
	Name              string             `json:"name"`
	Specialty         string             `json:"specialty"`
	Hospital          string             `json:"hospital"`
	Availability      []string           `json:"availability"`
	ImageURL          string             `json:"imageUrl"`
	YearsOfExperience int                `json:"yearsOfExperience,omitempty"`
	Bio               string             `json:"bio,omitempty"`
	ConsultationTypes []ConsultationType `json:"consultationTypes,omitempty"`
}

// Schedule returns the weekdays the doctor can be booked on. Entries that do
// not name a weekday are reported in the error and never match.
func (d Doctor) Schedule() (schedule.Availability, error) {
	return schedule.ParseAvailability(d.Availability)
}

// OfferedTypes returns the doctor's consultation types. A nil list means all
// four are offered; an empty, non-nil list means none are.
func (d Doctor) OfferedTypes() []ConsultationType {
	if d.ConsultationTypes == nil {
		return AllConsultationTypes
	}
	return d.ConsultationTypes
}

func (d Doctor) Offers(t ConsultationType) bool {
	for _, o := range d.OfferedTypes() {
		if o == t {
			return true
		}
	}
	return false
}

type HospitalService struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Hospital struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	Location    string            `json:"location"`
	Specialties []string          `json:"specialties"`
	Rating      float64           `json:"rating"`
	ImageURL    string            `json:"imageUrl"`
	Services    []HospitalService `json:"services,omitempty"`
}

// Service looks up an offered service by name.
func (h Hospital) Service(name string) (HospitalService, bool) {
	for _, s := range h.Services {
		if s.Name == name {
			return s, true
		}
	}
	return HospitalService{}, false
}

type LabTest struct {
	ID              int         `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Price           float64     `json:"price"`
	RequiresFasting bool        `json:"requiresFasting"`
	Category        LabCategory `json:"category"`
}

// AppointmentRecord is a doctor appointment booked before this process
// started. Status is one of "Upcoming", "Completed" or "Cancelled".
type AppointmentRecord struct {
	ID                      int              `json:"id"`
	Doctor                  Doctor           `json:"doctor"`
	Date                    civil.Date       `json:"date"`
	Time                    string           `json:"time"`
	Type                    ConsultationType `json:"type"`
	Status                  string           `json:"status"`
	ReasonForVisit          string           `json:"reasonForVisit"`
	PreparationInstructions string           `json:"preparationInstructions,omitempty"`
	ConsultationNotes       string           `json:"consultationNotes,omitempty"`
}

// Catalog is the set of bookable providers plus the appointment history the
// booking state starts from.
type Catalog struct {
	Doctors      []Doctor            `json:"doctors"`
	Hospitals    []Hospital          `json:"hospitals"`
	LabTests     []LabTest           `json:"labTests"`
	Appointments []AppointmentRecord `json:"appointments"`
}

func (c Catalog) Doctor(id int) (Doctor, bool) {
	for _, d := range c.Doctors {
		if d.ID == id {
			return d, true
		}
	}
	return Doctor{}, false
}

func (c Catalog) Hospital(id int) (Hospital, bool) {
	for _, h := range c.Hospitals {
		if h.ID == id {
			return h, true
		}
	}
	return Hospital{}, false
}

func (c Catalog) LabTest(id int) (LabTest, bool) {
	for _, t := range c.LabTests {
		if t.ID == id {
			return t, true
		}
	}
	return LabTest{}, false
}
