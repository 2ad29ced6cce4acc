package booking

import (
	"time"

	assetModel "asset-booking/models/asset"
	"asset-booking/models/user"
)

// Booking represents a reservable, time-boxed grouping of assets with a
// custodian. The custodian is either a registered user or a non-registered
// team member, never both.
type Booking struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	Status BookingStatus `gorm:"type:varchar(50);not null;default:DRAFT;index" json:"status"`

	// Time window. Optional while DRAFT, mandatory once RESERVED.
	From *time.Time `gorm:"column:booked_from;index" json:"from,omitempty"`
	To   *time.Time `gorm:"column:booked_to;index" json:"to,omitempty"`

	// Window as first reserved, preserved across extensions for audit.
	OriginalFrom *time.Time `json:"original_from,omitempty"`
	OriginalTo   *time.Time `json:"original_to,omitempty"`

	CreatorID uint      `gorm:"not null;index" json:"creator_id"`
	Creator   user.User `gorm:"foreignKey:CreatorID" json:"creator"`

	CustodianUserID       *uint            `gorm:"index" json:"custodian_user_id,omitempty"`
	CustodianUser         *user.User       `gorm:"foreignKey:CustodianUserID" json:"custodian_user,omitempty"`
	CustodianTeamMemberID *uint            `gorm:"index" json:"custodian_team_member_id,omitempty"`
	CustodianTeamMember   *user.TeamMember `gorm:"foreignKey:CustodianTeamMemberID" json:"custodian_team_member,omitempty"`

	OrganizationID uint `gorm:"not null;index" json:"organization_id"`

	// Opaque handle of the currently armed reminder job, if any.
	ActiveReminderID *uint `json:"active_reminder_id,omitempty"`

	Assets          []assetModel.Asset `gorm:"many2many:booking_assets" json:"assets"`
	PartialCheckins []PartialCheckin   `gorm:"foreignKey:BookingID" json:"partial_checkins,omitempty"`
	Notes           []Note             `gorm:"foreignKey:BookingID" json:"notes,omitempty"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// AssetIDs returns the IDs of the booking's asset set.
func (b *Booking) AssetIDs() []string {
	ids := make([]string, 0, len(b.Assets))
	for _, a := range b.Assets {
		ids = append(ids, a.ID)
	}
	return ids
}

// HasAsset reports whether id is a member of the booking's asset set.
func (b *Booking) HasAsset(id string) bool {
	for _, a := range b.Assets {
		if a.ID == id {
			return true
		}
	}
	return false
}

// CustodianName returns a display name for whoever holds custody.
func (b *Booking) CustodianName() string {
	if b.CustodianUser != nil {
		return b.CustodianUser.LegalName
	}
	if b.CustodianTeamMember != nil {
		return b.CustodianTeamMember.Name
	}
	return ""
}

// CustodianEmail returns the custodian's email, or "" when the custodian
// is a team member without one.
func (b *Booking) CustodianEmail() string {
	if b.CustodianUser != nil && b.CustodianUser.Email != nil {
		return *b.CustodianUser.Email
	}
	if b.CustodianTeamMember != nil && b.CustodianTeamMember.Email != nil {
		return *b.CustodianTeamMember.Email
	}
	return ""
}
