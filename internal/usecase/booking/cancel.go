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

type CancelBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCancelBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CancelBooking {
	return &CancelBooking{
		repo:  repo,
		audit: audit,
	}
}

// Execute cancels a customer's own appointment. The booked period is released
// in the same transaction, so the slot immediately opens up for rebooking.
func (uc *CancelBooking) Execute(
	ctx context.Context,
	customerID uint,
	appointmentID uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentForCustomer(ctx, appointmentID, customerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, httperr.ErrBusiness("appointment_not_found")
		}
		return nil, err
	}

	now := timezone.Now()
	if err := domain.Cancel(ap, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap, true); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &customerID,
		Action:   "booking_cancelled_by_customer",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
