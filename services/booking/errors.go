package booking

import (
	"errors"
	"fmt"
	"strings"
)

// Business errors. Controllers map these onto HTTP statuses; everything
// not wrapping one of them is treated as an internal failure.
var (
	// ErrNotFound means the booking does not exist in the caller's organization.
	ErrNotFound = errors.New("booking not found")

	// ErrValidation is the caller's fault: malformed payload, missing time
	// window, empty asset set. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrIllegalTransition means the operation is not permitted from the
	// booking's current status.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrPermission means the actor lacks rights for the requested transition.
	ErrPermission = errors.New("permission denied")

	// ErrStateChanged means the booking's status changed between read and
	// write. The caller should retry with fresh data.
	ErrStateChanged = errors.New("booking state changed concurrently")
)

// ConflictError reports assets already committed to another active booking
// in an overlapping window. It carries enough to render a user-facing
// message without a second lookup.
type ConflictError struct {
	BookingID     uint
	AssetTitles   []string
	ClashingNames []string
}

func (e *ConflictError) Error() string {
	msg := fmt.Sprintf("booking %d: assets already booked in this period: %s",
		e.BookingID, strings.Join(e.AssetTitles, ", "))
	if len(e.ClashingNames) > 0 {
		msg += fmt.Sprintf(" (clashing with %s)", strings.Join(e.ClashingNames, ", "))
	}
	return msg
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
