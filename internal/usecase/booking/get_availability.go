package booking

import (
	"context"
	"time"

	"gorm.io/gorm"

	domain "github.com/glowbook/booking-api/internal/domain/booking"
	"github.com/glowbook/booking-api/internal/httperr"
)

// SlotGrid is the granularity of the public availability view. Bookings
// themselves are duration-aware; the grid only controls which slot starts are
// offered.
const SlotGrid = time.Hour

type GetAvailability struct {
	repo domain.Repository
}

func NewGetAvailability(repo domain.Repository) *GetAvailability {
	return &GetAvailability{repo: repo}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) (*domain.DaySchedule, error) {

	sp, err := uc.repo.GetSpecialistByID(ctx, in.SpecialistID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, httperr.ErrBusiness("specialist_not_found")
		}
		return nil, err
	}

	window, err := domain.WorkingWindow(sp, in.Date)
	if err != nil {
		return nil, err
	}

	periods, err := uc.repo.ListPeriods(
		ctx,
		in.SpecialistID,
		window.Start,
		window.End,
	)
	if err != nil {
		return nil, err
	}

	busy := make([]domain.Interval, 0, len(periods))
	for _, p := range periods {
		busy = append(busy, domain.Interval{Start: p.StartTime, End: p.EndTime})
	}

	schedule := &domain.DaySchedule{
		SpecialistID:   in.SpecialistID,
		Date:           in.Date.Format("2006-01-02"),
		AvailableSlots: []string{},
	}

	// Whole-hour slot starts over the working window. A slot is taken when
	// its hour overlaps any booked period, so a 90-minute appointment blocks
	// both hours it touches.
	for cur := window.Start; !cur.Add(SlotGrid).After(window.End); cur = cur.Add(SlotGrid) {
		slot := domain.Interval{Start: cur, End: cur.Add(SlotGrid)}

		if domain.OverlapsAny(slot, busy) {
			continue
		}

		schedule.AvailableSlots = append(
			schedule.AvailableSlots,
			cur.Format("15:04"),
		)
	}

	return schedule, nil
}
