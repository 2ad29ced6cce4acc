package user

import (
	"time"
)

// TeamMember is a non-registered person who can hold custody of assets
// during a booking. A booking's custodian is either a User or a TeamMember,
// never both.
type TeamMember struct {
	ID             uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string  `gorm:"type:varchar(255);not null" json:"name"`
	Email          *string `gorm:"type:varchar(255)" json:"email,omitempty"`
	OrganizationID uint    `gorm:"not null;index" json:"organization_id"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
