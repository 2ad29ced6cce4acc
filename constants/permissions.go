package constants

// Organization permissions
const (
	// Admin permissions
	PermSuperAdminFull = "asset-booking.super-admin.full-permit"
	PermOrgAdminFull   = "asset-booking.admin.full-permit"
	PermManagerFull    = "asset-booking.manager.full-permit"

	// Constrained self-service members may only work on their own bookings.
	PermSelfServiceBase = "asset-booking.self-service.base"

	// Special permissions
	PermAny = "any"
)

// Permission groups for convenience
var (
	OrganizationAdminPermissions = []string{
		PermSuperAdminFull,
		PermOrgAdminFull,
		PermManagerFull,
	}

	BookingPermissions = []string{
		PermSuperAdminFull,
		PermOrgAdminFull,
		PermManagerFull,
		PermSelfServiceBase,
	}
)
