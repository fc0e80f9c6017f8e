package booking

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glowbook/booking-api/internal/audit"
	domain "github.com/glowbook/booking-api/internal/domain/booking"
	"github.com/glowbook/booking-api/internal/httperr"
	"github.com/glowbook/booking-api/internal/models"
	"github.com/glowbook/booking-api/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type RequestBookingInput struct {
	SpecialistID uint
	CustomerID   uint
	ServiceID    uint

	Date  string // YYYY-MM-DD
	Time  string // HH:mm
	Notes string
}

// ======================================================
// USE CASE
// ======================================================

type RequestBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewRequestBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *RequestBooking {
	return &RequestBooking{
		repo:  repo,
		audit: audit,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *RequestBooking) Execute(
	ctx context.Context,
	in RequestBookingInput,
) (*models.Appointment, error) {

	if in.SpecialistID == 0 || in.CustomerID == 0 || in.ServiceID == 0 ||
		in.Date == "" || in.Time == "" {
		return nil, httperr.ErrBusiness("missing_fields")
	}

	sp, err := uc.repo.GetSpecialistByID(ctx, in.SpecialistID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, httperr.ErrBusiness("specialist_not_found")
		}
		return nil, err
	}

	start, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.Date+" "+in.Time,
		timezone.Location(sp.Timezone),
	)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	svc, err := uc.repo.GetService(ctx, in.ServiceID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, httperr.ErrBusiness("service_not_found")
		}
		return nil, err
	}

	if svc.DurationMin <= 0 {
		return nil, httperr.ErrBusiness("invalid_service_duration")
	}

	if !sameSpeciality(svc.Speciality, sp.Speciality) {
		return nil, httperr.ErrBusiness("service_not_offered")
	}

	end := start.Add(time.Duration(svc.DurationMin) * time.Minute)

	window, err := domain.WorkingWindow(sp, start)
	if err != nil {
		return nil, err
	}

	if !window.Contains(domain.Interval{Start: start, End: end}) {
		return nil, httperr.ErrBusiness("outside_working_hours")
	}

	ap := &models.Appointment{
		Code:         uuid.NewString(),
		SpecialistID: in.SpecialistID,
		CustomerID:   in.CustomerID,
		ServiceID:    svc.ID,
		StartTime:    start,
		EndTime:      end,
		Status:       string(domain.InitialStatus()),
		Notes:        in.Notes,
	}

	if err := uc.repo.CreateAppointment(ctx, ap); err != nil {
		if httperr.IsBusiness(err, "time_slot_unavailable") {
			uc.audit.Dispatch(audit.Event{
				UserID:   &in.CustomerID,
				Action:   "booking_conflict",
				Entity:   "appointment",
				Metadata: map[string]any{"start": start, "end": end},
			})
		}
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.CustomerID,
		Action:   "booking_requested",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}

// Speciality names come from free-form profile input, so the comparison is
// trimmed and case-insensitive.
func sameSpeciality(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
