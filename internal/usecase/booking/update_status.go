package booking

import (
	"context"

	"gorm.io/gorm"

	"github.com/glowbook/booking-api/internal/audit"
	domain "github.com/glowbook/booking-api/internal/domain/booking"
	"github.com/glowbook/booking-api/internal/httperr"
	"github.com/glowbook/booking-api/internal/models"
	"github.com/glowbook/booking-api/internal/timezone"
)

type UpdateBookingStatus struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewUpdateBookingStatus(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *UpdateBookingStatus {
	return &UpdateBookingStatus{
		repo:  repo,
		audit: audit,
	}
}

// Execute applies a specialist-side status transition: confirm a pending
// request, complete a confirmed one, or cancel. Cancellation releases the
// booked period.
func (uc *UpdateBookingStatus) Execute(
	ctx context.Context,
	specialistID uint,
	appointmentID uint,
	target domain.Status,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentForSpecialist(ctx, appointmentID, specialistID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, httperr.ErrBusiness("appointment_not_found")
		}
		return nil, err
	}

	now := timezone.Now()
	releasePeriod := false

	switch target {
	case domain.StatusConfirmed:
		if err := domain.Confirm(ap); err != nil {
			return nil, err
		}
	case domain.StatusCompleted:
		if err := domain.Complete(ap, now); err != nil {
			return nil, err
		}
	case domain.StatusCancelled:
		if err := domain.Cancel(ap, now); err != nil {
			return nil, err
		}
		releasePeriod = true
	default:
		return nil, httperr.ErrBusiness("invalid_status")
	}

	if err := uc.repo.UpdateAppointment(ctx, ap, releasePeriod); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		Action:   "booking_" + string(target),
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
