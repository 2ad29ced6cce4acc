package booking

import (
	"time"
)

// ReminderKind identifies which notification a scheduled job emits.
type ReminderKind string

const (
	ReminderCheckoutDue ReminderKind = "checkout_due"
	ReminderCheckinDue  ReminderKind = "checkin_due"
	ReminderOverdue     ReminderKind = "overdue"
)

func (k ReminderKind) IsValid() bool {
	switch k {
	case ReminderCheckoutDue, ReminderCheckinDue, ReminderOverdue:
		return true
	default:
		return false
	}
}

// Reminder is a persisted scheduler job. At most one unfired, uncancelled
// reminder exists per booking; re-arming cancels the previous one.
type Reminder struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	BookingID uint         `gorm:"not null;index" json:"booking_id"`
	Kind      ReminderKind `gorm:"type:varchar(50);not null" json:"kind"`
	FireAt    time.Time    `gorm:"not null;index" json:"fire_at"`

	FiredAt     *time.Time `json:"fired_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the Reminder model
func (Reminder) TableName() string {
	return "booking_reminders"
}

// Pending reports whether the job is still waiting to fire.
func (r *Reminder) Pending() bool {
	return r.FiredAt == nil && r.CancelledAt == nil
}
