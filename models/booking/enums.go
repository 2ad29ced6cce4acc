package booking

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusDraft     BookingStatus = "DRAFT"
	BookingStatusReserved  BookingStatus = "RESERVED"
	BookingStatusOngoing   BookingStatus = "ONGOING"
	BookingStatusOverdue   BookingStatus = "OVERDUE"
	BookingStatusComplete  BookingStatus = "COMPLETE"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusArchived  BookingStatus = "ARCHIVED"
)

// legalTransitions is the full edge list of the lifecycle graph. Status
// changes never move along any other edge.
var legalTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusDraft:    {BookingStatusReserved, BookingStatusCancelled},
	BookingStatusReserved: {BookingStatusOngoing, BookingStatusOverdue, BookingStatusDraft, BookingStatusCancelled},
	BookingStatusOngoing:  {BookingStatusOverdue, BookingStatusComplete, BookingStatusCancelled},
	BookingStatusOverdue:  {BookingStatusOngoing, BookingStatusComplete, BookingStatusCancelled},
	BookingStatusComplete: {BookingStatusArchived},
}

// Helper methods for BookingStatus
func (bs BookingStatus) String() string {
	return string(bs)
}

func (bs BookingStatus) IsValid() bool {
	switch bs {
	case BookingStatusDraft, BookingStatusReserved, BookingStatusOngoing,
		BookingStatusOverdue, BookingStatusComplete, BookingStatusCancelled,
		BookingStatusArchived:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once no further transition except
// archive-from-complete is possible.
func (bs BookingStatus) IsTerminal() bool {
	return bs == BookingStatusComplete || bs == BookingStatusCancelled || bs == BookingStatusArchived
}

// IsActive returns true while the booking commits its assets to a time
// window, i.e. while it participates in conflict detection.
func (bs BookingStatus) IsActive() bool {
	return bs == BookingStatusReserved || bs == BookingStatusOngoing || bs == BookingStatusOverdue
}

// CanTransitionTo reports whether the edge bs -> to exists in the
// lifecycle graph.
func (bs BookingStatus) CanTransitionTo(to BookingStatus) bool {
	for _, next := range legalTransitions[bs] {
		if next == to {
			return true
		}
	}
	return false
}

// ActiveBookingStatuses returns the statuses considered by the conflict
// detector.
func ActiveBookingStatuses() []BookingStatus {
	return []BookingStatus{BookingStatusReserved, BookingStatusOngoing, BookingStatusOverdue}
}

// GetAllBookingStatuses returns all valid booking statuses.
func GetAllBookingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusDraft,
		BookingStatusReserved,
		BookingStatusOngoing,
		BookingStatusOverdue,
		BookingStatusComplete,
		BookingStatusCancelled,
		BookingStatusArchived,
	}
}
