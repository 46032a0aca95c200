package domain

import "time"

// Role enumerates the actor roles participating in a ticket.
type Role string

const (
	RoleCitizen   Role = "citizen"
	RoleAnalyst   Role = "analyst"
	RoleAuthority Role = "authority"
	RoleAdmin     Role = "admin"
	RoleSystem    Role = "system"
)

// IsStaff reports whether the role has internal-note visibility.
func (r Role) IsStaff() bool {
	return r == RoleAnalyst || r == RoleAuthority || r == RoleAdmin
}

// UserStatus represents lifecycle states for a platform user.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User is the domain model for anyone acting on a ticket.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	Status    UserStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Authority is a directory entry for a responder organization contact.
type Authority struct {
	UserID       string
	Name         string
	Organization string
	Region       string
	HazardTypes  []HazardType
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CoversHazard reports whether the authority's jurisdiction includes the
// given region and hazard type.
func (a *Authority) CoversHazard(region string, hazard HazardType) bool {
	if !a.Active || a.Region != region {
		return false
	}
	for _, h := range a.HazardTypes {
		if h == hazard {
			return true
		}
	}
	return false
}
