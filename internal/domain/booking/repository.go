package booking

import (
	"context"
	"time"

	"github.com/glowbook/booking-api/internal/models"
)

type Repository interface {
	// -------- Specialist / Service --------
	GetSpecialistByID(
		ctx context.Context,
		id uint,
	) (*models.Specialist, error)

	GetService(
		ctx context.Context,
		serviceID uint,
	) (*models.Service, error)

	// -------- Appointment (create / conflict) --------

	// CreateAppointment performs the overlap check against the specialist's
	// booked periods and, when free, inserts the appointment together with its
	// AppointmentPeriod row, all in one transaction. Returns the business
	// error "time_slot_unavailable" on conflict.
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Appointment (state change) --------
	GetAppointmentForSpecialist(
		ctx context.Context,
		appointmentID uint,
		specialistID uint,
	) (*models.Appointment, error)

	GetAppointmentForCustomer(
		ctx context.Context,
		appointmentID uint,
		customerID uint,
	) (*models.Appointment, error)

	// UpdateAppointment saves the appointment and, when releasePeriod is set,
	// removes its AppointmentPeriod row in the same transaction so the slot
	// becomes bookable again.
	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
		releasePeriod bool,
	) error

	// -------- Availability / listings --------
	ListPeriods(
		ctx context.Context,
		specialistID uint,
		start time.Time,
		end time.Time,
	) ([]models.AppointmentPeriod, error)

	ListAppointmentsForCustomer(
		ctx context.Context,
		customerID uint,
	) ([]models.Appointment, error)

	ListAppointmentsForPeriod(
		ctx context.Context,
		specialistID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)
}
