package models

import "time"

// Service is a bookable offering within a speciality category. DurationMin
// determines the appointment end time.
type Service struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Speciality  string  `gorm:"size:50;not null;index" json:"speciality"`
	Name        string  `gorm:"size:100;not null" json:"name"`
	Description string  `gorm:"size:255" json:"description"`
	DurationMin int     `json:"duration_min"`
	Price       float64 `json:"price"`
	Active      bool    `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
