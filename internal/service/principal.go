package service

import (
	"errors"

	"github.com/dailyroutine/internal/db"
)

// ErrPermissionDenied is returned when a caller's role does not allow an
// operation. It is checked before any mutation.
var ErrPermissionDenied = errors.New("permission denied")

// Principal is the authenticated caller as resolved by the transport
// layer: a user id plus a plain role attribute.
type Principal struct {
	UserID   uint
	Username string
	Role     string
}

// IsAdmin reports whether the caller holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == db.RoleAdmin
}
