package booking

import (
	"time"

	"github.com/glowbook/booking-api/internal/models"
)

type AvailabilityInput struct {
	SpecialistID uint
	Date         time.Time
}

// DaySchedule is the result of an availability query: the whole-hour slot
// starts still open on the given date.
type DaySchedule struct {
	SpecialistID   uint     `json:"specialist_id"`
	Date           string   `json:"date"`
	AvailableSlots []string `json:"available_slots"`
}

// ===============================
// Domain Actions
// ===============================

func Confirm(ap *models.Appointment) error {
	if err := CanConfirm(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusConfirmed)
	return nil
}

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}
