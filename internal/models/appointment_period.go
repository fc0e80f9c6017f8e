package models

import "time"

// AppointmentPeriod is the denormalized booked-interval index used for
// conflict queries. One row per active appointment; rows are removed when the
// appointment is cancelled so the slot opens up again.
//
// The table additionally carries a Postgres exclusion constraint on
// (specialist_id, tsrange(start_time, end_time)) created in db.NewDB, so two
// racing bookings can never both commit overlapping rows.
type AppointmentPeriod struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SpecialistID  uint `gorm:"index" json:"specialist_id"`
	AppointmentID uint `gorm:"uniqueIndex" json:"appointment_id"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	CreatedAt time.Time `json:"created_at"`
}
