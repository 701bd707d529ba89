package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"cloud.google.com/go/civil"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"

	"github.com/hackgods/telehealth-scheduling/internal/api"
	"github.com/hackgods/telehealth-scheduling/internal/catalog"
	"github.com/hackgods/telehealth-scheduling/internal/logging"
	"github.com/hackgods/telehealth-scheduling/internal/schedule"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	BookingRatio float64
	StatusRatio  float64
	ReadRatio    float64
	Horizon      int // days ahead bookings may land on
}

// DataPool is what the workers book against, fetched from the running API.
type DataPool struct {
	Doctors      []catalog.Doctor
	Hospitals    []catalog.Hospital
	LabTests     []catalog.LabTest
	LabLocations []string
	Slots        map[schedule.Flow][]string

	mu           sync.RWMutex
	appointments []int
}

func (dp *DataPool) AddAppointment(id int) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) RandomAppointment(f *gofakeit.Faker) (int, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return 0, false
	}
	return dp.appointments[f.Number(0, len(dp.appointments)-1)], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Rejected  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeRejected
	outcomeError
)

func (om *OperationMetrics) Record(latency time.Duration, o outcome) {
	atomic.AddInt64(&om.Total, 1)
	switch o {
	case outcomeSuccess:
		atomic.AddInt64(&om.Success, 1)
	case outcomeRejected:
		atomic.AddInt64(&om.Rejected, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, lo, hi, p50, p95 time.Duration) {
	om.mu.Lock()
	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	om.mu.Unlock()

	if len(latencies) == 0 {
		return 0, 0, 0, 0, 0
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	avg = sum / time.Duration(len(latencies))
	lo = latencies[0]
	hi = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]
	return avg, lo, hi, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	BookDoctor   OperationMetrics
	BookLab      OperationMetrics
	BookService  OperationMetrics
	UpdateStatus OperationMetrics
	List         OperationMetrics
	Calendar     OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
	logger  zerolog.Logger
	today   civil.Date
}

func main() {
	logger := logging.New(getEnv("APP_ENV", "dev"), getEnv("LOG_LEVEL", "info")).
		With().Str("service", "simulate").Logger()

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	logger.Info().
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Float64("booking", cfg.BookingRatio).
		Float64("status", cfg.StatusRatio).
		Float64("read", cfg.ReadRatio).
		Msg("simulator starting")

	sim := &Simulator{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
		today:  schedule.Today(time.Now(), time.Local),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := sim.loadDataPool(ctx)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("load data pool")
	}
	sim.pool = pool

	logger.Info().
		Int("doctors", len(pool.Doctors)).
		Int("hospitals", len(pool.Hospitals)).
		Int("lab_tests", len(pool.LabTests)).
		Msg("catalog loaded")

	sim.Run()
	sim.PrintReport(os.Stdout)
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:   strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:8080"), "/"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		BookingRatio: getFloat("SIM_BOOKING_RATIO", 0.5),
		StatusRatio:  getFloat("SIM_STATUS_RATIO", 0.1),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.4),
		Horizon:      getInt("SIM_HORIZON_DAYS", 60),
	}

	total := cfg.BookingRatio + cfg.StatusRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.StatusRatio /= total
		cfg.ReadRatio /= total
	}
	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.Horizon <= 0 {
		return fmt.Errorf("SIM_HORIZON_DAYS must be > 0")
	}
	return nil
}

func (s *Simulator) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.APIBaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (s *Simulator) loadDataPool(ctx context.Context) (*DataPool, error) {
	dp := &DataPool{Slots: make(map[schedule.Flow][]string)}

	if err := s.getJSON(ctx, "/catalog/doctors", &dp.Doctors); err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}
	if err := s.getJSON(ctx, "/catalog/hospitals", &dp.Hospitals); err != nil {
		return nil, fmt.Errorf("load hospitals: %w", err)
	}
	if err := s.getJSON(ctx, "/catalog/labs", &dp.LabTests); err != nil {
		return nil, fmt.Errorf("load lab tests: %w", err)
	}
	if err := s.getJSON(ctx, "/catalog/lab-locations", &dp.LabLocations); err != nil {
		return nil, fmt.Errorf("load lab locations: %w", err)
	}
	for _, flow := range schedule.Flows {
		var resp api.SlotsResponse
		if err := s.getJSON(ctx, "/slots/"+string(flow)+"?date="+s.today.String(), &resp); err != nil {
			return nil, fmt.Errorf("load %s slots: %w", flow, err)
		}
		dp.Slots[flow] = resp.Slots
	}

	if len(dp.Doctors) == 0 {
		return nil, fmt.Errorf("no doctors loaded")
	}
	return dp, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.logger.Info().Msg("starting simulation")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.logger.Info().Msg("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	f := gofakeit.New(uint64(time.Now().UnixNano()) + uint64(workerID))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		r := f.Float64()
		switch {
		case r < s.config.BookingRatio:
			switch f.Number(0, 2) {
			case 0:
				s.doBookDoctor(ctx, f)
			case 1:
				s.doBookLab(ctx, f)
			default:
				s.doBookService(ctx, f)
			}
		case r < s.config.BookingRatio+s.config.StatusRatio:
			s.doUpdateStatus(ctx, f)
		default:
			if f.Bool() {
				s.doList(ctx, f)
			} else {
				s.doCalendar(ctx, f)
			}
		}
	}
}

// dateFor picks a random day within the horizon and rolls it forward to the
// next day the availability allows.
func (s *Simulator) dateFor(f *gofakeit.Faker, availability schedule.Availability) (civil.Date, bool) {
	from := s.today.AddDays(f.Number(0, s.config.Horizon))
	return schedule.NextBookable(from, availability, s.today, 14)
}

func (s *Simulator) slot(f *gofakeit.Faker, flow schedule.Flow) string {
	slots := s.pool.Slots[flow]
	if len(slots) == 0 {
		return ""
	}
	return slots[f.Number(0, len(slots)-1)]
}

func (s *Simulator) send(ctx context.Context, method, path string, body any) (int, []byte, time.Duration, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, nil, 0, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, &buf)
	if err != nil {
		return 0, nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, time.Since(start), err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	return resp.StatusCode, data, time.Since(start), err
}

func classify(status, want int, err error) outcome {
	switch {
	case err != nil:
		return outcomeError
	case status == want:
		return outcomeSuccess
	case status == http.StatusUnprocessableEntity, status == http.StatusConflict:
		return outcomeRejected
	default:
		return outcomeError
	}
}

func (s *Simulator) doBookDoctor(ctx context.Context, f *gofakeit.Faker) {
	doc := s.pool.Doctors[f.Number(0, len(s.pool.Doctors)-1)]
	availability, _ := doc.Schedule()
	date, ok := s.dateFor(f, availability)
	if !ok {
		return
	}

	req := api.CreateAppointmentRequest{
		DoctorID:       doc.ID,
		Date:           date.String(),
		Time:           s.slot(f, schedule.FlowDoctor),
		ReasonForVisit: f.RandomString([]string{"Follow-up", "Persistent headache", "Annual check", "Skin rash", "Chest pain", "Medication review"}),
	}
	if offered := doc.OfferedTypes(); len(offered) > 0 {
		req.Type = string(offered[f.Number(0, len(offered)-1)])
	}

	status, data, latency, err := s.send(ctx, http.MethodPost, "/appointments", req)
	o := classify(status, http.StatusCreated, err)
	if o == outcomeSuccess {
		var appt struct {
			ID int `json:"id"`
		}
		if json.Unmarshal(data, &appt) == nil && appt.ID > 0 {
			s.pool.AddAppointment(appt.ID)
		}
	}
	s.metrics.BookDoctor.Record(latency, o)
}

func (s *Simulator) doBookLab(ctx context.Context, f *gofakeit.Faker) {
	if len(s.pool.LabTests) == 0 || len(s.pool.LabLocations) == 0 {
		return
	}
	date, ok := s.dateFor(f, schedule.Unrestricted())
	if !ok {
		return
	}

	req := api.CreateLabAppointmentRequest{
		TestID:      s.pool.LabTests[f.Number(0, len(s.pool.LabTests)-1)].ID,
		Location:    s.pool.LabLocations[f.Number(0, len(s.pool.LabLocations)-1)],
		Date:        date.String(),
		Time:        s.slot(f, schedule.FlowLab),
		PatientName: f.Name(),
	}

	status, _, latency, err := s.send(ctx, http.MethodPost, "/lab-appointments", req)
	s.metrics.BookLab.Record(latency, classify(status, http.StatusCreated, err))
}

func (s *Simulator) doBookService(ctx context.Context, f *gofakeit.Faker) {
	if len(s.pool.Hospitals) == 0 {
		return
	}
	h := s.pool.Hospitals[f.Number(0, len(s.pool.Hospitals)-1)]
	if len(h.Services) == 0 {
		return
	}
	date, ok := s.dateFor(f, schedule.Unrestricted())
	if !ok {
		return
	}

	req := api.CreateServiceAppointmentRequest{
		HospitalID:  h.ID,
		Service:     h.Services[f.Number(0, len(h.Services)-1)].Name,
		Date:        date.String(),
		Time:        s.slot(f, schedule.FlowHospitalService),
		PatientName: f.Name(),
	}

	status, _, latency, err := s.send(ctx, http.MethodPost, "/service-appointments", req)
	s.metrics.BookService.Record(latency, classify(status, http.StatusCreated, err))
}

func (s *Simulator) doUpdateStatus(ctx context.Context, f *gofakeit.Faker) {
	id, ok := s.pool.RandomAppointment(f)
	if !ok {
		return
	}
	req := api.UpdateStatusRequest{Status: f.RandomString([]string{"Completed", "Cancelled"})}

	status, _, latency, err := s.send(ctx, http.MethodPatch, "/appointments/"+strconv.Itoa(id)+"/status", req)
	s.metrics.UpdateStatus.Record(latency, classify(status, http.StatusOK, err))
}

func (s *Simulator) doList(ctx context.Context, f *gofakeit.Faker) {
	path := "/appointments?status=" + f.RandomString([]string{"all", "upcoming", "past"})
	status, _, latency, err := s.send(ctx, http.MethodGet, path, nil)
	s.metrics.List.Record(latency, classify(status, http.StatusOK, err))
}

func (s *Simulator) doCalendar(ctx context.Context, f *gofakeit.Faker) {
	doc := s.pool.Doctors[f.Number(0, len(s.pool.Doctors)-1)]
	c := schedule.CursorOf(s.today.AddDays(f.Number(0, s.config.Horizon)))
	path := fmt.Sprintf("/calendar/doctor?provider_id=%d&year=%d&month=%d", doc.ID, c.Year, int(c.Month))

	status, _, latency, err := s.send(ctx, http.MethodGet, path, nil)
	s.metrics.Calendar.Record(latency, classify(status, http.StatusOK, err))
}

func (s *Simulator) PrintReport(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
	fmt.Fprintln(w, "SIMULATION REPORT")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "Duration: %s\n", s.config.Duration)
	fmt.Fprintf(w, "Workers: %d\n\n", s.config.Workers)

	printOperationReport(w, "Book doctor", &s.metrics.BookDoctor)
	printOperationReport(w, "Book lab test", &s.metrics.BookLab)
	printOperationReport(w, "Book hospital service", &s.metrics.BookService)
	printOperationReport(w, "Update status", &s.metrics.UpdateStatus)
	printOperationReport(w, "List appointments", &s.metrics.List)
	printOperationReport(w, "Doctor calendar", &s.metrics.Calendar)
}

func printOperationReport(w io.Writer, name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	rejected := atomic.LoadInt64(&om.Rejected)
	failed := atomic.LoadInt64(&om.Error)
	avg, lo, hi, p50, p95 := om.Stats()

	fmt.Fprintf(w, "%s:\n", name)
	fmt.Fprintf(w, "  Total: %d\n", total)
	fmt.Fprintf(w, "  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if rejected > 0 {
		fmt.Fprintf(w, "  Rejected: %d (%.1f%%)\n", rejected, float64(rejected)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Fprintf(w, "  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Fprintf(w, "  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n\n",
		avg.Round(time.Millisecond), lo.Round(time.Millisecond), hi.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
