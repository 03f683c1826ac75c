package models

import (
	"slices"
	"strings"
	"time"

	"github.com/amirphl/morevans-pricing/utils"
)

// Role is the role flag the backend assigns to an authenticated user.
type Role string

const (
	RoleSuperAdmin   Role = "SUPER_ADMIN"
	RoleAdmin        Role = "ADMIN"
	RoleUnderwriter  Role = "UNDERWRITER"
	RolePremiumAdmin Role = "PREMIUM_ADMIN"
	RoleSales        Role = "SALES"
	RoleProvider     Role = "PROVIDER"
	RoleMember       Role = "MEMBER"
	RoleRegular      Role = "REGULAR"
)

var (
	AdminRoles    = []Role{RoleSuperAdmin, RoleAdmin, RoleUnderwriter, RolePremiumAdmin, RoleSales}
	PersonalRoles = []Role{RoleMember, RoleRegular}
)

// ParseRole normalizes a raw role flag ("admin", " Admin ") to its canonical form.
func ParseRole(raw string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(raw)))
}

func (r Role) IsAdmin() bool    { return slices.Contains(AdminRoles, r) }
func (r Role) IsPersonal() bool { return slices.Contains(PersonalRoles, r) }

// Dashboard is the top level area a session is routed to.
type Dashboard string

const (
	DashboardAdmin    Dashboard = "admin"
	DashboardProvider Dashboard = "provider"
	DashboardMember   Dashboard = "member"
)

// Session is the current user context, resolved once at startup and passed explicitly.
type Session struct {
	UserID    string     `json:"user_id"`
	Role      Role       `json:"role"`
	Token     string     `json:"-"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// IsAuthenticated reports a role whose token, if any, has not expired.
func (s Session) IsAuthenticated() bool {
	return s.Role != "" && !utils.IsExpiredPtr(s.ExpiresAt)
}
