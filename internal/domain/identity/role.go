package identity

// Role is the coarse access level of a user
type Role string

const (
	RoleAdmin Role = "admin"
	RoleDev   Role = "dev"
	RoleUser  Role = "user"
)

// Permission codes checked by the HTTP layer
const (
	PermUsageRecord       = "usage:record"
	PermUsageRead         = "usage:read"
	PermUsageReadAll      = "usage:read_all"
	PermPlanRead          = "plan:read"
	PermPlanWrite         = "plan:write"
	PermSubscriptionRead  = "subscription:read"
	PermSubscriptionWrite = "subscription:write"
)

var rolePermissions = map[Role][]string{
	RoleAdmin: {
		PermUsageRecord, PermUsageRead, PermUsageReadAll,
		PermPlanRead, PermPlanWrite,
		PermSubscriptionRead, PermSubscriptionWrite,
	},
	RoleDev: {
		PermUsageRecord, PermUsageRead, PermUsageReadAll,
		PermPlanRead, PermSubscriptionRead,
	},
	RoleUser: {
		PermUsageRead, PermPlanRead,
	},
}

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Permissions returns the permission codes granted to the role
func (r Role) Permissions() []string {
	perms := rolePermissions[r]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// IsElevated reports whether the role may act on other users' balances
func (r Role) IsElevated() bool {
	return r == RoleAdmin || r == RoleDev
}
