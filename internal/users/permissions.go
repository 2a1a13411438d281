package users

// Permissions checked by route middleware
const (
	PermViewBookings       = "view-bookings"
	PermCreateTransactions = "create-transactions"
	PermCancelBookings     = "cancel-bookings"
	PermManageBookings     = "manage-bookings"
	PermManageEvents       = "manage-events"
)

var rolePermissions = map[Role][]string{
	RoleAdmin: {
		PermViewBookings,
		PermCreateTransactions,
		PermCancelBookings,
		PermManageBookings,
		PermManageEvents,
	},
	RoleManager: {
		PermViewBookings,
		PermCancelBookings,
		PermManageBookings,
		PermManageEvents,
	},
	RoleAccountant: {
		PermViewBookings,
		PermCreateTransactions,
	},
	RoleAgent: {
		PermViewBookings,
	},
}

// PermissionsFor returns a copy of the permissions granted to role
func PermissionsFor(role Role) []string {
	perms := rolePermissions[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// Can reports whether role grants perm
func (r Role) Can(perm string) bool {
	for _, p := range rolePermissions[r] {
		if p == perm {
			return true
		}
	}
	return false
}
