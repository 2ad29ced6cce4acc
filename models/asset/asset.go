package asset

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the availability cache for an asset or kit. It is kept
// consistent by the booking engine cascading writes on every transition
// that changes who holds the asset.
type Status string

const (
	StatusAvailable  Status = "AVAILABLE"
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusInCustody  Status = "IN_CUSTODY"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusCheckedOut, StatusInCustody:
		return true
	default:
		return false
	}
}

// Asset is a single trackable item. Kit membership is carried as a tag on
// the asset, not as a separate relation on bookings.
type Asset struct {
	ID             string  `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string  `gorm:"type:varchar(255);not null" json:"title"`
	Description    *string `gorm:"type:text" json:"description,omitempty"`
	OrganizationID uint    `gorm:"not null;index" json:"organization_id"`
	KitID          *string `gorm:"type:uuid;index" json:"kit_id,omitempty"`
	Status         Status  `gorm:"type:varchar(50);not null;default:AVAILABLE" json:"status"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate assigns a uuid primary key when the caller did not.
func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Kit groups assets that are booked and returned together.
type Kit struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string `gorm:"type:varchar(255);not null" json:"name"`
	OrganizationID uint   `gorm:"not null;index" json:"organization_id"`
	Status         Status `gorm:"type:varchar(50);not null;default:AVAILABLE" json:"status"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (k *Kit) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	return nil
}
