package services

import "github.com/anjiri1684/tutor_connect/models"

// Actor is the authenticated caller of a core operation.
type Actor struct {
	ID   string
	Role models.Role
}

func (a Actor) IsStudent() bool { return a.ID != "" && a.Role == models.RoleStudent }
func (a Actor) IsTutor() bool   { return a.ID != "" && a.Role == models.RoleTutor }
