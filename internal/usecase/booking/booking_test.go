package booking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/glowbook/booking-api/internal/audit"
	domain "github.com/glowbook/booking-api/internal/domain/booking"
	"github.com/glowbook/booking-api/internal/httperr"
	"github.com/glowbook/booking-api/internal/models"
)

// ======================================================
// IN-MEMORY REPOSITORY
// ======================================================

type fakeRepo struct {
	mu sync.Mutex

	specialists  map[uint]*models.Specialist
	services     map[uint]*models.Service
	appointments map[uint]*models.Appointment
	periods      map[uint]*models.AppointmentPeriod // keyed by appointment id

	nextID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		specialists:  make(map[uint]*models.Specialist),
		services:     make(map[uint]*models.Service),
		appointments: make(map[uint]*models.Appointment),
		periods:      make(map[uint]*models.AppointmentPeriod),
	}
}

func (r *fakeRepo) GetSpecialistByID(_ context.Context, id uint) (*models.Specialist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sp, ok := r.specialists[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sp
	return &cp, nil
}

func (r *fakeRepo) GetService(_ context.Context, serviceID uint) (*models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	svc, ok := r.services[serviceID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *svc
	return &cp, nil
}

// CreateAppointment mirrors the real repository: overlap check and both
// inserts under one lock.
func (r *fakeRepo) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.periods {
		if p.SpecialistID != ap.SpecialistID {
			continue
		}
		if ap.StartTime.Before(p.EndTime) && p.StartTime.Before(ap.EndTime) {
			return httperr.ErrBusiness("time_slot_unavailable")
		}
	}

	r.nextID++
	ap.ID = r.nextID

	cp := *ap
	r.appointments[ap.ID] = &cp
	r.periods[ap.ID] = &models.AppointmentPeriod{
		SpecialistID:  ap.SpecialistID,
		AppointmentID: ap.ID,
		StartTime:     ap.StartTime,
		EndTime:       ap.EndTime,
	}

	return nil
}

func (r *fakeRepo) GetAppointmentForSpecialist(_ context.Context, appointmentID, specialistID uint) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ap, ok := r.appointments[appointmentID]
	if !ok || ap.SpecialistID != specialistID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ap
	return &cp, nil
}

func (r *fakeRepo) GetAppointmentForCustomer(_ context.Context, appointmentID, customerID uint) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ap, ok := r.appointments[appointmentID]
	if !ok || ap.CustomerID != customerID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ap
	return &cp, nil
}

func (r *fakeRepo) UpdateAppointment(_ context.Context, ap *models.Appointment, releasePeriod bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *ap
	r.appointments[ap.ID] = &cp
	if releasePeriod {
		delete(r.periods, ap.ID)
	}
	return nil
}

func (r *fakeRepo) ListPeriods(_ context.Context, specialistID uint, start, end time.Time) ([]models.AppointmentPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.AppointmentPeriod
	for _, p := range r.periods {
		if p.SpecialistID != specialistID {
			continue
		}
		if p.StartTime.Before(end) && start.Before(p.EndTime) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListAppointmentsForCustomer(_ context.Context, customerID uint) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.CustomerID == customerID {
			out = append(out, *ap)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListAppointmentsForPeriod(_ context.Context, specialistID uint, start, end time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.SpecialistID != specialistID {
			continue
		}
		if !ap.StartTime.Before(start) && ap.StartTime.Before(end) {
			out = append(out, *ap)
		}
	}
	return out, nil
}

var _ domain.Repository = (*fakeRepo)(nil)

// ======================================================
// FIXTURES
// ======================================================

const (
	specialistID = 1
	customerID   = 7
	serviceID    = 3
)

func seed(t *testing.T) *fakeRepo {
	t.Helper()

	repo := newFakeRepo()
	repo.specialists[specialistID] = &models.Specialist{
		ID:          specialistID,
		Speciality:  "Haircut",
		OpeningTime: "09:00",
		ClosingTime: "17:00",
	}
	repo.services[serviceID] = &models.Service{
		ID:          serviceID,
		Speciality:  "Haircut",
		Name:        "Classic cut",
		DurationMin: 60,
		Price:       45,
	}
	return repo
}

func newUseCases(repo *fakeRepo) (*RequestBooking, *GetAvailability, *CancelBooking, *UpdateBookingStatus) {
	dispatcher := audit.NewDispatcher(nil)
	return NewRequestBooking(repo, dispatcher),
		NewGetAvailability(repo),
		NewCancelBooking(repo, dispatcher),
		NewUpdateBookingStatus(repo, dispatcher)
}

func book(t *testing.T, uc *RequestBooking, date, hhmm string) (*models.Appointment, error) {
	t.Helper()
	return uc.Execute(context.Background(), RequestBookingInput{
		SpecialistID: specialistID,
		CustomerID:   customerID,
		ServiceID:    serviceID,
		Date:         date,
		Time:         hhmm,
	})
}

// ======================================================
// REQUEST BOOKING
// ======================================================

func TestRequestBooking_Scenario(t *testing.T) {
	repo := seed(t)
	requestUC, _, _, _ := newUseCases(repo)

	// 09:00 is accepted with interval [09:00, 10:00).
	ap, err := book(t, requestUC, "2024-06-01", "09:00")
	if err != nil {
		t.Fatalf("booking at opening time: %v", err)
	}
	if got := ap.EndTime.Sub(ap.StartTime); got != time.Hour {
		t.Fatalf("duration = %v, want 1h", got)
	}
	if ap.Status != "pending" {
		t.Fatalf("status = %s, want pending", ap.Status)
	}
	if ap.Code == "" {
		t.Fatal("appointment code must be set")
	}

	// 09:30 overlaps [09:00, 10:00) and is rejected.
	if _, err := book(t, requestUC, "2024-06-01", "09:30"); !httperr.IsBusiness(err, "time_slot_unavailable") {
		t.Fatalf("overlapping booking: got %v, want time_slot_unavailable", err)
	}

	// 10:00 abuts the previous interval and is accepted.
	if _, err := book(t, requestUC, "2024-06-01", "10:00"); err != nil {
		t.Fatalf("abutting booking: %v", err)
	}

	// 17:00 is exactly closing time and is rejected.
	if _, err := book(t, requestUC, "2024-06-01", "17:00"); !httperr.IsBusiness(err, "outside_working_hours") {
		t.Fatalf("booking at closing time: got %v, want outside_working_hours", err)
	}

	// 16:30 would run past closing and is rejected.
	if _, err := book(t, requestUC, "2024-06-01", "16:30"); !httperr.IsBusiness(err, "outside_working_hours") {
		t.Fatalf("booking past closing: got %v, want outside_working_hours", err)
	}

	// Same slot on another day is free.
	if _, err := book(t, requestUC, "2024-06-02", "09:00"); err != nil {
		t.Fatalf("same slot on another day: %v", err)
	}
}

func TestRequestBooking_SameSlotTwice(t *testing.T) {
	repo := seed(t)
	requestUC, _, _, _ := newUseCases(repo)

	if _, err := book(t, requestUC, "2024-06-01", "11:00"); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := book(t, requestUC, "2024-06-01", "11:00")
	if !httperr.IsBusiness(err, "time_slot_unavailable") {
		t.Fatalf("second booking: got %v, want time_slot_unavailable", err)
	}
}

func TestRequestBooking_UnknownSpecialist(t *testing.T) {
	repo := seed(t)
	requestUC, _, _, _ := newUseCases(repo)

	_, err := requestUC.Execute(context.Background(), RequestBookingInput{
		SpecialistID: 999,
		CustomerID:   customerID,
		ServiceID:    serviceID,
		Date:         "2024-06-01",
		Time:         "09:00",
	})
	if !httperr.IsBusiness(err, "specialist_not_found") {
		t.Fatalf("got %v, want specialist_not_found", err)
	}
}

func TestRequestBooking_Validation(t *testing.T) {
	repo := seed(t)
	requestUC, _, _, _ := newUseCases(repo)

	tests := []struct {
		name string
		in   RequestBookingInput
		code string
	}{
		{
			"missing date",
			RequestBookingInput{SpecialistID: specialistID, CustomerID: customerID, ServiceID: serviceID, Time: "09:00"},
			"missing_fields",
		},
		{
			"missing time",
			RequestBookingInput{SpecialistID: specialistID, CustomerID: customerID, ServiceID: serviceID, Date: "2024-06-01"},
			"missing_fields",
		},
		{
			"garbage time",
			RequestBookingInput{SpecialistID: specialistID, CustomerID: customerID, ServiceID: serviceID, Date: "2024-06-01", Time: "late"},
			"invalid_date_or_time",
		},
		{
			"unknown service",
			RequestBookingInput{SpecialistID: specialistID, CustomerID: customerID, ServiceID: 42, Date: "2024-06-01", Time: "09:00"},
			"service_not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := requestUC.Execute(context.Background(), tt.in)
			if !httperr.IsBusiness(err, tt.code) {
				t.Fatalf("got %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRequestBooking_SpecialityMismatch(t *testing.T) {
	repo := seed(t)
	repo.services[4] = &models.Service{
		ID:          4,
		Speciality:  "Massage",
		Name:        "Deep tissue",
		DurationMin: 60,
	}
	requestUC, _, _, _ := newUseCases(repo)

	_, err := requestUC.Execute(context.Background(), RequestBookingInput{
		SpecialistID: specialistID,
		CustomerID:   customerID,
		ServiceID:    4,
		Date:         "2024-06-01",
		Time:         "09:00",
	})
	if !httperr.IsBusiness(err, "service_not_offered") {
		t.Fatalf("got %v, want service_not_offered", err)
	}
}

func TestRequestBooking_SpecialityMatchIsLenient(t *testing.T) {
	repo := seed(t)
	repo.specialists[specialistID].Speciality = "  haircut "
	requestUC, _, _, _ := newUseCases(repo)

	if _, err := book(t, requestUC, "2024-06-01", "09:00"); err != nil {
		t.Fatalf("trimmed case-insensitive speciality must match: %v", err)
	}
}

// Random booking sequences: whatever subset gets accepted must be pairwise
// non-overlapping.
func TestRequestBooking_AcceptedSetNeverOverlaps(t *testing.T) {
	repo := seed(t)
	// 45-minute service so intervals straddle hour boundaries.
	repo.services[serviceID].DurationMin = 45
	requestUC, _, _, _ := newUseCases(repo)

	rng := rand.New(rand.NewSource(42))

	var accepted []*models.Appointment
	for i := 0; i < 200; i++ {
		hour := 8 + rng.Intn(11)   // some outside working hours on purpose
		minute := 15 * rng.Intn(4)

		ap, err := book(t, requestUC, "2024-06-01", fmt.Sprintf("%02d:%02d", hour, minute))
		if err != nil {
			continue
		}
		accepted = append(accepted, ap)
	}

	if len(accepted) == 0 {
		t.Fatal("expected at least one accepted booking")
	}

	for i := 0; i < len(accepted); i++ {
		for j := i + 1; j < len(accepted); j++ {
			a, b := accepted[i], accepted[j]
			if a.StartTime.Before(b.EndTime) && b.StartTime.Before(a.EndTime) {
				t.Fatalf(
					"accepted bookings overlap: [%v,%v) and [%v,%v)",
					a.StartTime, a.EndTime, b.StartTime, b.EndTime,
				)
			}
		}
	}

	for _, ap := range accepted {
		if ap.StartTime.Hour() < 9 || ap.StartTime.Hour() >= 17 {
			t.Fatalf("accepted booking starts outside working window: %v", ap.StartTime)
		}
	}
}

// ======================================================
// AVAILABILITY
// ======================================================

func TestGetAvailability_FullDay(t *testing.T) {
	repo := seed(t)
	_, availabilityUC, _, _ := newUseCases(repo)

	schedule, err := availabilityUC.Execute(context.Background(), domain.AvailabilityInput{
		SpecialistID: specialistID,
		Date:         time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("availability: %v", err)
	}

	want := []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"}
	if len(schedule.AvailableSlots) != len(want) {
		t.Fatalf("slots = %v, want %v", schedule.AvailableSlots, want)
	}
	for i, s := range want {
		if schedule.AvailableSlots[i] != s {
			t.Fatalf("slot[%d] = %s, want %s", i, schedule.AvailableSlots[i], s)
		}
	}
	if schedule.Date != "2024-06-01" {
		t.Fatalf("date = %s, want 2024-06-01", schedule.Date)
	}
	if schedule.SpecialistID != specialistID {
		t.Fatalf("specialist_id = %d, want %d", schedule.SpecialistID, specialistID)
	}
}

func TestGetAvailability_BookingBlocksOverlappedHours(t *testing.T) {
	repo := seed(t)
	// 90-minute service: a 09:00 booking spans [09:00, 10:30) and must block
	// both the 09:00 and 10:00 slots.
	repo.services[serviceID].DurationMin = 90
	requestUC, availabilityUC, _, _ := newUseCases(repo)

	if _, err := book(t, requestUC, "2024-06-01", "09:00"); err != nil {
		t.Fatalf("booking: %v", err)
	}

	schedule, err := availabilityUC.Execute(context.Background(), domain.AvailabilityInput{
		SpecialistID: specialistID,
		Date:         time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("availability: %v", err)
	}

	for _, slot := range schedule.AvailableSlots {
		if slot == "09:00" || slot == "10:00" {
			t.Fatalf("slot %s should be blocked, got %v", slot, schedule.AvailableSlots)
		}
	}
	if schedule.AvailableSlots[0] != "11:00" {
		t.Fatalf("first free slot = %s, want 11:00", schedule.AvailableSlots[0])
	}
}

func TestGetAvailability_UnknownSpecialist(t *testing.T) {
	repo := seed(t)
	_, availabilityUC, _, _ := newUseCases(repo)

	_, err := availabilityUC.Execute(context.Background(), domain.AvailabilityInput{
		SpecialistID: 999,
		Date:         time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if !httperr.IsBusiness(err, "specialist_not_found") {
		t.Fatalf("got %v, want specialist_not_found", err)
	}
}

// ======================================================
// CANCEL / STATUS
// ======================================================

func TestCancelFreesSlot(t *testing.T) {
	repo := seed(t)
	requestUC, _, cancelUC, _ := newUseCases(repo)

	ap, err := book(t, requestUC, "2024-06-01", "09:00")
	if err != nil {
		t.Fatalf("booking: %v", err)
	}

	cancelled, err := cancelUC.Execute(context.Background(), customerID, ap.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != "cancelled" {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}

	// The interval is released, so the same slot can be booked again.
	if _, err := book(t, requestUC, "2024-06-01", "09:00"); err != nil {
		t.Fatalf("rebooking a cancelled slot: %v", err)
	}
}

func TestCancel_OtherCustomersAppointment(t *testing.T) {
	repo := seed(t)
	requestUC, _, cancelUC, _ := newUseCases(repo)

	ap, err := book(t, requestUC, "2024-06-01", "09:00")
	if err != nil {
		t.Fatalf("booking: %v", err)
	}

	if _, err := cancelUC.Execute(context.Background(), customerID+1, ap.ID); !httperr.IsBusiness(err, "appointment_not_found") {
		t.Fatalf("got %v, want appointment_not_found", err)
	}
}

func TestUpdateStatus_Lifecycle(t *testing.T) {
	repo := seed(t)
	requestUC, _, _, statusUC := newUseCases(repo)

	ap, err := book(t, requestUC, "2024-06-01", "09:00")
	if err != nil {
		t.Fatalf("booking: %v", err)
	}

	confirmed, err := statusUC.Execute(context.Background(), specialistID, ap.ID, domain.StatusConfirmed)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != "confirmed" {
		t.Fatalf("status = %s, want confirmed", confirmed.Status)
	}

	completed, err := statusUC.Execute(context.Background(), specialistID, ap.ID, domain.StatusCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != "completed" || completed.CompletedAt == nil {
		t.Fatalf("completed = %+v", completed)
	}

	// Terminal state: no further transitions.
	if _, err := statusUC.Execute(context.Background(), specialistID, ap.ID, domain.StatusCancelled); !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("cancel after completion: got %v, want invalid_state", err)
	}
}

func TestUpdateStatus_SpecialistCancelFreesSlot(t *testing.T) {
	repo := seed(t)
	requestUC, _, _, statusUC := newUseCases(repo)

	ap, err := book(t, requestUC, "2024-06-01", "14:00")
	if err != nil {
		t.Fatalf("booking: %v", err)
	}

	if _, err := statusUC.Execute(context.Background(), specialistID, ap.ID, domain.StatusCancelled); err != nil {
		t.Fatalf("specialist cancel: %v", err)
	}

	if _, err := book(t, requestUC, "2024-06-01", "14:00"); err != nil {
		t.Fatalf("rebooking after specialist cancel: %v", err)
	}
}

// ======================================================
// STORAGE FAILURES
// ======================================================

// brokenRepo simulates a persistence outage on the lookup paths. Such errors
// must propagate untouched so the handler maps them to a 500, never to a
// not-found business code.
type brokenRepo struct {
	*fakeRepo
	err error
}

func (r *brokenRepo) GetService(context.Context, uint) (*models.Service, error) {
	return nil, r.err
}

func (r *brokenRepo) GetAppointmentForCustomer(context.Context, uint, uint) (*models.Appointment, error) {
	return nil, r.err
}

func (r *brokenRepo) GetAppointmentForSpecialist(context.Context, uint, uint) (*models.Appointment, error) {
	return nil, r.err
}

func TestStorageErrorsPropagateUnmapped(t *testing.T) {
	boom := errors.New("pq: connection refused")
	repo := &brokenRepo{fakeRepo: seed(t), err: boom}
	dispatcher := audit.NewDispatcher(nil)

	t.Run("request booking service lookup", func(t *testing.T) {
		uc := NewRequestBooking(repo, dispatcher)
		_, err := uc.Execute(context.Background(), RequestBookingInput{
			SpecialistID: specialistID,
			CustomerID:   customerID,
			ServiceID:    serviceID,
			Date:         "2024-06-01",
			Time:         "09:00",
		})
		if !errors.Is(err, boom) {
			t.Fatalf("got %v, want the storage error", err)
		}
		if httperr.IsBusiness(err, "service_not_found") {
			t.Fatal("storage failure must not be reported as service_not_found")
		}
	})

	t.Run("cancel appointment lookup", func(t *testing.T) {
		uc := NewCancelBooking(repo, dispatcher)
		_, err := uc.Execute(context.Background(), customerID, 1)
		if !errors.Is(err, boom) {
			t.Fatalf("got %v, want the storage error", err)
		}
		if httperr.IsBusiness(err, "appointment_not_found") {
			t.Fatal("storage failure must not be reported as appointment_not_found")
		}
	})

	t.Run("status change appointment lookup", func(t *testing.T) {
		uc := NewUpdateBookingStatus(repo, dispatcher)
		_, err := uc.Execute(context.Background(), specialistID, 1, domain.StatusConfirmed)
		if !errors.Is(err, boom) {
			t.Fatalf("got %v, want the storage error", err)
		}
		if httperr.IsBusiness(err, "appointment_not_found") {
			t.Fatal("storage failure must not be reported as appointment_not_found")
		}
	})
}

func TestUpdateStatus_InvalidTarget(t *testing.T) {
	repo := seed(t)
	requestUC, _, _, statusUC := newUseCases(repo)

	ap, err := book(t, requestUC, "2024-06-01", "09:00")
	if err != nil {
		t.Fatalf("booking: %v", err)
	}

	if _, err := statusUC.Execute(context.Background(), specialistID, ap.ID, domain.Status("archived")); !httperr.IsBusiness(err, "invalid_status") {
		t.Fatalf("got %v, want invalid_status", err)
	}
}
