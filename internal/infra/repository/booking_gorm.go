package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/glowbook/booking-api/internal/domain/booking"
	"github.com/glowbook/booking-api/internal/httperr"
	"github.com/glowbook/booking-api/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Specialist / Service
// --------------------------------------------------

func (r *BookingGormRepository) GetSpecialistByID(
	ctx context.Context,
	id uint,
) (*models.Specialist, error) {

	var sp models.Specialist
	if err := r.db.WithContext(ctx).First(&sp, id).Error; err != nil {
		return nil, err
	}
	return &sp, nil
}

func (r *BookingGormRepository) GetService(
	ctx context.Context,
	serviceID uint,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND active = true", serviceID).
		First(&svc).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

// --------------------------------------------------
// Appointment (create / conflict)
// --------------------------------------------------

// CreateAppointment serializes on the specialist's period rows: the overlap
// check takes FOR UPDATE locks inside the same transaction that inserts the
// appointment and its period, so two racing requests for the same specialist
// cannot both pass the check. The exclusion constraint on appointment_periods
// backstops anything that still slips through.
func (r *BookingGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var conflicts []models.AppointmentPeriod
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(
				"specialist_id = ? AND start_time < ? AND end_time > ?",
				ap.SpecialistID, ap.EndTime, ap.StartTime,
			).
			Find(&conflicts).Error; err != nil {
			return err
		}

		if len(conflicts) > 0 {
			return httperr.ErrBusiness("time_slot_unavailable")
		}

		if err := tx.Create(ap).Error; err != nil {
			return err
		}

		period := models.AppointmentPeriod{
			SpecialistID:  ap.SpecialistID,
			AppointmentID: ap.ID,
			StartTime:     ap.StartTime,
			EndTime:       ap.EndTime,
		}

		if err := tx.Create(&period).Error; err != nil {
			if httperr.IsExclusionConflict(err) {
				return httperr.ErrBusiness("time_slot_unavailable")
			}
			return err
		}

		return nil
	})
}

// --------------------------------------------------
// Appointment (state change)
// --------------------------------------------------

func (r *BookingGormRepository) GetAppointmentForSpecialist(
	ctx context.Context,
	appointmentID uint,
	specialistID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND specialist_id = ?", appointmentID, specialistID).
		First(&ap).Error; err != nil {
		return nil, err
	}

	return &ap, nil
}

func (r *BookingGormRepository) GetAppointmentForCustomer(
	ctx context.Context,
	appointmentID uint,
	customerID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND customer_id = ?", appointmentID, customerID).
		First(&ap).Error; err != nil {
		return nil, err
	}

	return &ap, nil
}

func (r *BookingGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
	releasePeriod bool,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := tx.Save(ap).Error; err != nil {
			return err
		}

		if releasePeriod {
			if err := tx.
				Where("appointment_id = ?", ap.ID).
				Delete(&models.AppointmentPeriod{}).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// --------------------------------------------------
// Availability / listings
// --------------------------------------------------

func (r *BookingGormRepository) ListPeriods(
	ctx context.Context,
	specialistID uint,
	start time.Time,
	end time.Time,
) ([]models.AppointmentPeriod, error) {

	var periods []models.AppointmentPeriod
	if err := r.db.WithContext(ctx).
		Where(
			"specialist_id = ? AND start_time < ? AND end_time > ?",
			specialistID, end, start,
		).
		Order("start_time ASC").
		Find(&periods).Error; err != nil {
		return nil, err
	}

	return periods, nil
}

func (r *BookingGormRepository) ListAppointmentsForCustomer(
	ctx context.Context,
	customerID uint,
) ([]models.Appointment, error) {

	var aps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Specialist").
		Preload("Service").
		Where("customer_id = ?", customerID).
		Order("start_time DESC").
		Find(&aps).Error; err != nil {
		return nil, err
	}

	return aps, nil
}

func (r *BookingGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	specialistID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var aps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Service").
		Where(
			"specialist_id = ? AND start_time >= ? AND start_time < ?",
			specialistID, start, end,
		).
		Order("start_time ASC").
		Find(&aps).Error; err != nil {
		return nil, err
	}

	return aps, nil
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
