package models

import "time"

// Specialist is the bookable profile of a user with role "specialist".
// OpeningTime/ClosingTime are the daily working window in local "15:04"
// format; bookings outside [OpeningTime, ClosingTime) are rejected.
type Specialist struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`

	Speciality string  `gorm:"size:50;not null" json:"speciality"`
	Bio        string  `gorm:"size:500" json:"bio"`
	Location   string  `gorm:"size:100" json:"location"`
	Pricing    float64 `json:"pricing"`

	OpeningTime string `gorm:"size:5;default:'09:00'" json:"opening_time"`
	ClosingTime string `gorm:"size:5;default:'17:00'" json:"closing_time"`
	Timezone    string `gorm:"size:50" json:"timezone"`

	Rating float64 `json:"rating"`

	PortfolioImages []PortfolioImage `json:"portfolio_images"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PortfolioImage struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	SpecialistID uint   `gorm:"index" json:"specialist_id"`
	URL          string `gorm:"size:255;not null" json:"url"`

	CreatedAt time.Time `json:"created_at"`
}
