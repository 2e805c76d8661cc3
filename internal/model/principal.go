package model

import "github.com/google/uuid"

type UserRole string

const (
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleDispatcher UserRole = "DISPATCHER"
	UserRoleViewer     UserRole = "VIEWER"
)

type Principal struct {
	UserID uuid.UUID
	Role   UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

// CanMutate reports whether the user may change fleet state. Viewers get
// read-only access.
func (p Principal) CanMutate() bool {
	return p.Role == UserRoleAdmin || p.Role == UserRoleDispatcher
}
