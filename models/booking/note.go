package booking

import (
	"time"

	"gorm.io/datatypes"
)

// Note is an audit line on a booking. CreatedByID is zero for
// system-triggered transitions such as overdue promotion.
type Note struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	BookingID uint `gorm:"not null;index" json:"booking_id"`

	Content     string         `gorm:"type:text;not null" json:"content"`
	CreatedByID uint           `gorm:"index" json:"created_by_id"`
	Metadata    datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the Note model
func (Note) TableName() string {
	return "booking_notes"
}
