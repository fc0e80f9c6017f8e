package booking

import (
	"testing"
	"time"

	"github.com/glowbook/booking-api/internal/models"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		apply   func(ap *models.Appointment) error
		wantErr bool
		want    Status
	}{
		{"confirm pending", StatusPending, Confirm, false, StatusConfirmed},
		{"confirm confirmed", StatusConfirmed, Confirm, true, StatusConfirmed},
		{"confirm cancelled", StatusCancelled, Confirm, true, StatusCancelled},
		{"cancel pending", StatusPending, cancelNow, false, StatusCancelled},
		{"cancel confirmed", StatusConfirmed, cancelNow, false, StatusCancelled},
		{"cancel completed", StatusCompleted, cancelNow, true, StatusCompleted},
		{"cancel cancelled", StatusCancelled, cancelNow, true, StatusCancelled},
		{"complete confirmed", StatusConfirmed, completeNow, false, StatusCompleted},
		{"complete pending", StatusPending, completeNow, true, StatusPending},
		{"complete completed", StatusCompleted, completeNow, true, StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ap := &models.Appointment{Status: string(tt.from)}

			err := tt.apply(ap)
			if tt.wantErr && err == nil {
				t.Fatalf("expected transition from %s to fail", tt.from)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("transition from %s failed: %v", tt.from, err)
			}
			if ap.Status != string(tt.want) {
				t.Fatalf("status = %s, want %s", ap.Status, tt.want)
			}
		})
	}
}

func TestCancelSetsTimestamp(t *testing.T) {
	ap := &models.Appointment{Status: string(StatusConfirmed)}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := Cancel(ap, now); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if ap.CancelledAt == nil || !ap.CancelledAt.Equal(now) {
		t.Fatalf("cancelled_at = %v, want %v", ap.CancelledAt, now)
	}
}

func cancelNow(ap *models.Appointment) error {
	return Cancel(ap, time.Now())
}

func completeNow(ap *models.Appointment) error {
	return Complete(ap, time.Now())
}
