package service

import (
	"github.com/civicwatch/hazard-service/internal/domain"
	"github.com/civicwatch/hazard-service/internal/events"
)

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	ID   string
	Role domain.Role
}

// IsStaff reports whether the actor holds a staff role.
func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

func (a Actor) eventActor() events.Actor {
	id := a.ID
	return events.Actor{Role: a.Role, UserID: &id}
}

func systemEventActor() events.Actor {
	return events.Actor{Role: domain.RoleSystem}
}
