package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/hackgods/telehealth-scheduling/internal/catalog"
	"github.com/hackgods/telehealth-scheduling/internal/config"
	"github.com/hackgods/telehealth-scheduling/internal/db"
	"github.com/hackgods/telehealth-scheduling/internal/logging"
)

var specialties = []string{
	"Cardiology",
	"Dermatology",
	"General Practice",
	"Neurology",
	"Orthopedics",
	"Pediatrics",
	"Psychiatry",
	"Endocrinology",
	"Ophthalmology",
	"Geriatrics",
}

var serviceNames = []string{
	"Annual Physical Exams",
	"Cardiac Stress Test",
	"MRI Scan",
	"Childhood Vaccinations",
	"Sports Injury Clinic",
	"Skin Cancer Screening",
	"Geriatric Assessment",
	"Chronic Disease Management",
	"24/7 Emergency Room",
	"Physical Therapy",
}

var weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("dev", "info").Fatal().Err(err).Msg("config load error")
	}
	logger := logging.New(cfg.Env, cfg.LogLevel).With().Str("service", "seed").Logger()

	if cfg.PostgresDSN == "" {
		logger.Fatal().Msg("POSTGRES_DSN is required")
	}

	doctors := getInt("SEED_DOCTORS", 25)
	hospitals := getInt("SEED_HOSPITALS", 8)
	seed := uint64(getInt("SEED_RANDOM", 0))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}

	c := fakeCatalog(gofakeit.New(seed), doctors, hospitals)
	if err := catalog.Replace(ctx, pool, c); err != nil {
		logger.Fatal().Err(err).Msg("seed catalog")
	}

	logger.Info().
		Int("doctors", len(c.Doctors)).
		Int("hospitals", len(c.Hospitals)).
		Int("lab_tests", len(c.LabTests)).
		Int("appointments", len(c.Appointments)).
		Msg("seed complete")
}

// fakeCatalog builds a catalog whose doctors work at the generated hospitals.
// Lab tests and appointment history are the fixed reference lists since their
// fasting rules and statuses matter.
func fakeCatalog(f *gofakeit.Faker, doctorCount, hospitalCount int) catalog.Catalog {
	hospitals := make([]catalog.Hospital, 0, hospitalCount)
	for i := 1; i <= hospitalCount; i++ {
		h := catalog.Hospital{
			ID:          i,
			Name:        f.LastName() + " " + f.RandomString([]string{"General Hospital", "Medical Center", "Clinic"}),
			Location:    f.City(),
			Specialties: pick(f, specialties, 1, 3),
			Rating:      float64(f.Number(35, 50)) / 10,
			ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%dh/400/300", i),
		}
		for _, name := range pick(f, serviceNames, 1, 4) {
			h.Services = append(h.Services, catalog.HospitalService{
				Name:        name,
				Description: fmt.Sprintf("%s at %s.", name, h.Name),
			})
		}
		hospitals = append(hospitals, h)
	}

	doctors := make([]catalog.Doctor, 0, doctorCount)
	for i := 1; i <= doctorCount; i++ {
		specialty := f.RandomString(specialties)
		years := f.Number(1, 35)
		d := catalog.Doctor{
			ID:                i,
			Name:              "Dr. " + f.Name(),
			Specialty:         specialty,
			Availability:      ordered(pick(f, weekdays, 1, 4)),
			ImageURL:          fmt.Sprintf("https://picsum.photos/seed/%d/400/400", i),
			YearsOfExperience: years,
			Bio:               fmt.Sprintf("%s specialist with %d years of practice.", specialty, years),
		}
		if len(hospitals) > 0 {
			d.Hospital = hospitals[f.Number(0, len(hospitals)-1)].Name
		}
		// Roughly a third of doctors leave consultation types unset and so
		// offer every type.
		if f.Number(0, 2) > 0 {
			for _, t := range pick(f, consultationTypeNames(), 1, 3) {
				d.ConsultationTypes = append(d.ConsultationTypes, catalog.ConsultationType(t))
			}
		}
		doctors = append(doctors, d)
	}

	// The reference history is reattached to the generated doctors.
	var history []catalog.AppointmentRecord
	if len(doctors) > 0 {
		for i, a := range catalog.Fallback().Appointments {
			a.Doctor = doctors[i%len(doctors)]
			history = append(history, a)
		}
	}

	return catalog.Catalog{
		Doctors:      doctors,
		Hospitals:    hospitals,
		LabTests:     catalog.Fallback().LabTests,
		Appointments: history,
	}
}

// pick returns between lo and hi distinct values from src in random order.
func pick(f *gofakeit.Faker, src []string, lo, hi int) []string {
	if hi > len(src) {
		hi = len(src)
	}
	n := f.Number(lo, hi)
	shuffled := append([]string(nil), src...)
	f.ShuffleStrings(shuffled)
	return shuffled[:n]
}

// ordered sorts weekday abbreviations Mon..Sun.
func ordered(days []string) []string {
	out := make([]string, 0, len(days))
	for _, w := range weekdays {
		for _, d := range days {
			if d == w {
				out = append(out, w)
			}
		}
	}
	return out
}

func consultationTypeNames() []string {
	names := make([]string, 0, len(catalog.AllConsultationTypes))
	for _, t := range catalog.AllConsultationTypes {
		names = append(names, string(t))
	}
	return names
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
