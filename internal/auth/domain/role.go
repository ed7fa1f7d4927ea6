package domain

// Role is the account's authorization level. Roles are stored on the user
// record and re-read per request, so a role change takes effect immediately
// rather than when the session token happens to expire.
type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// ParseRole validates a role string. Unknown values are rejected rather
// than defaulted so a typo can't silently grant or strip access.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleSeller, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// SelfRegisterable reports whether an account with this role may be created
// through the public registration endpoint. Admin accounts are provisioned
// out of band.
func (r Role) SelfRegisterable() bool {
	return r == RoleUser || r == RoleSeller
}

// Capability is a named permission checked by the HTTP layer.
type Capability string

const (
	CapViewOwnLogs Capability = "logs:view_own"
	CapViewAllLogs Capability = "logs:view_all"
	CapManageUsers Capability = "users:manage"
	CapSellGoods   Capability = "catalog:sell"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleUser: {
		CapViewOwnLogs: true,
	},
	RoleSeller: {
		CapViewOwnLogs: true,
		CapSellGoods:   true,
	},
	RoleAdmin: {
		CapViewOwnLogs: true,
		CapViewAllLogs: true,
		CapManageUsers: true,
		CapSellGoods:   true,
	},
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}
