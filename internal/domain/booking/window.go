package booking

import (
	"time"

	"github.com/glowbook/booking-api/internal/httperr"
	"github.com/glowbook/booking-api/internal/models"
)

// WorkingWindow projects the specialist's daily [opening, closing) window onto
// the given calendar date, in the date's location. Specialists with a
// malformed or inverted window are treated as not bookable.
func WorkingWindow(sp *models.Specialist, date time.Time) (Interval, error) {
	open, err := parseHM(sp.OpeningTime, date)
	if err != nil {
		return Interval{}, httperr.ErrBusiness("invalid_working_window")
	}

	closing, err := parseHM(sp.ClosingTime, date)
	if err != nil {
		return Interval{}, httperr.ErrBusiness("invalid_working_window")
	}

	if !open.Before(closing) {
		return Interval{}, httperr.ErrBusiness("invalid_working_window")
	}

	return Interval{Start: open, End: closing}, nil
}

// Contains reports whether an appointment interval fits inside the window:
// the start must fall within [Start, End) and the end must not run past End.
func (iv Interval) Contains(ap Interval) bool {
	if ap.Start.Before(iv.Start) {
		return false
	}
	if !ap.Start.Before(iv.End) {
		return false
	}
	return !ap.End.After(iv.End)
}

func parseHM(hm string, date time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0,
		date.Location(),
	), nil
}
