package services

import "overtime-tracker/models"

// Actor is the authenticated caller of a service operation.
type Actor struct {
	Username string
	Role     models.Role
}

func ActorFor(u *models.User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{Username: u.Username, Role: u.Role}
}

func (a Actor) Can(c models.Capability) bool {
	return a.Role.Can(c)
}
