package domain

import "time"

// Role enumerates caller roles recognized by the lifecycle engine.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR"
	RoleTechnician Role = "TECHNICIAN"
	RoleRequestor  Role = "REQUESTOR"
)

// User is the domain model for people who log in and act on requests.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Roles        []Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Caller is the authenticated identity an operation runs as. It is supplied
// by the auth collaborator and trusted as given.
type Caller struct {
	ID    string
	Roles []Role
}

// HasRole reports whether the caller holds the given role.
func (c Caller) HasRole(role Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the caller holds at least one of the roles.
func (c Caller) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if c.HasRole(r) {
			return true
		}
	}
	return false
}

// CallerFor builds the Caller identity of a user.
func CallerFor(u *User) Caller {
	return Caller{ID: u.ID, Roles: u.Roles}
}
