// Package authz holds the caller identity resolved for a request and the
// role guard every protected route is evaluated against.
package authz

import (
	"errors"

	"github.com/noah-isme/projecthub-api/internal/models"
)

var (
	// ErrUnauthenticated indicates the request carries no usable identity.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden indicates the identity lacks the role or ownership for the operation.
	ErrForbidden = errors.New("insufficient permissions")
)

// Token types carried in the "typ" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Identity is the authenticated caller for a single request.
type Identity struct {
	ID   uint
	Role models.Role
}

// IsZero reports whether no identity was resolved.
func (i Identity) IsZero() bool {
	return i.ID == 0 || i.Role == ""
}

// Is reports whether the identity carries the given role.
func (i Identity) Is(role models.Role) bool {
	return !i.IsZero() && i.Role == role
}

// Authorize permits the identity when its role is one of allowed. An empty
// allowed set denies every caller.
func Authorize(identity Identity, allowed ...models.Role) error {
	if identity.IsZero() {
		return ErrUnauthenticated
	}
	for _, role := range allowed {
		if identity.Role == role {
			return nil
		}
	}
	return ErrForbidden
}

// AuthorizeOwner permits the identity when it has the given role and is the
// referenced owner.
func AuthorizeOwner(identity Identity, role models.Role, ownerID uint) error {
	if err := Authorize(identity, role); err != nil {
		return err
	}
	if identity.ID != ownerID {
		return ErrForbidden
	}
	return nil
}
