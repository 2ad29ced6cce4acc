package user

import (
	"time"
)

// Role decides how much of the booking surface a user may touch.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleManager     Role = "manager"
	RoleSelfService Role = "self_service"
)

// IsManager reports whether the role carries full booking management rights.
func (r Role) IsManager() bool {
	return r == RoleAdmin || r == RoleManager
}

// User model for registered members of an organization.
type User struct {
	ID            uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Uuid          string  `gorm:"type:varchar(255);not null;unique" json:"uuid"`
	Username      string  `gorm:"type:varchar(255);not null;unique" json:"username"`
	LegalName     string  `gorm:"type:varchar(255);not null" json:"legal_name"`
	Email         *string `gorm:"type:varchar(255);unique" json:"email"`
	EmailVerified bool    `gorm:"type:bool;default:false" json:"email_verified"`

	OrganizationID uint `gorm:"not null;index" json:"organization_id"`
	Role           Role `gorm:"type:varchar(50);not null;default:self_service" json:"role"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
