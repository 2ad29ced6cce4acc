package booking

import (
	"time"

	"github.com/lib/pq"
)

// PartialCheckin is an immutable, append-only fact: a subset of a
// booking's assets was returned early. The booking's "currently returned"
// set is the union of all its records' asset-ID sets.
type PartialCheckin struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	BookingID uint `gorm:"not null;index" json:"booking_id"`

	AssetIDs   pq.StringArray `gorm:"type:text[];not null" json:"asset_ids"`
	AssetCount int            `gorm:"not null" json:"asset_count"`

	CheckedInByID uint      `gorm:"not null" json:"checked_in_by_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the PartialCheckin model
func (PartialCheckin) TableName() string {
	return "booking_partial_checkins"
}
