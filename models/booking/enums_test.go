package booking

import (
	"testing"
)

func TestCanTransitionTo(t *testing.T) {
	type edge struct {
		from, to BookingStatus
	}
	allowed := map[edge]bool{
		{BookingStatusDraft, BookingStatusReserved}:     true,
		{BookingStatusDraft, BookingStatusCancelled}:    true,
		{BookingStatusReserved, BookingStatusOngoing}:   true,
		{BookingStatusReserved, BookingStatusOverdue}:   true,
		{BookingStatusReserved, BookingStatusDraft}:     true,
		{BookingStatusReserved, BookingStatusCancelled}: true,
		{BookingStatusOngoing, BookingStatusOverdue}:    true,
		{BookingStatusOngoing, BookingStatusComplete}:   true,
		{BookingStatusOngoing, BookingStatusCancelled}:  true,
		{BookingStatusOverdue, BookingStatusOngoing}:    true,
		{BookingStatusOverdue, BookingStatusComplete}:   true,
		{BookingStatusOverdue, BookingStatusCancelled}:  true,
		{BookingStatusComplete, BookingStatusArchived}:  true,
	}

	// Every pair not in the allowed set must be rejected.
	for _, from := range GetAllBookingStatuses() {
		for _, to := range GetAllBookingStatuses() {
			want := allowed[edge{from, to}]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := map[BookingStatus]bool{
		BookingStatusComplete:  true,
		BookingStatusCancelled: true,
		BookingStatusArchived:  true,
	}
	for _, st := range GetAllBookingStatuses() {
		if got := st.IsTerminal(); got != terminal[st] {
			t.Errorf("IsTerminal(%s) = %v, want %v", st, got, terminal[st])
		}
	}
}

func TestIsActive(t *testing.T) {
	active := map[BookingStatus]bool{
		BookingStatusReserved: true,
		BookingStatusOngoing:  true,
		BookingStatusOverdue:  true,
	}
	for _, st := range GetAllBookingStatuses() {
		if got := st.IsActive(); got != active[st] {
			t.Errorf("IsActive(%s) = %v, want %v", st, got, active[st])
		}
	}
}

func TestIsValid(t *testing.T) {
	for _, st := range GetAllBookingStatuses() {
		if !st.IsValid() {
			t.Errorf("IsValid(%s) = false, want true", st)
		}
	}
	if BookingStatus("SOMETHING_ELSE").IsValid() {
		t.Error("IsValid accepted an unknown status")
	}
}
