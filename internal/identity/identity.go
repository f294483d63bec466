// Package identity is the read-only boundary to the identity store. The
// pipeline consults it to resolve role ids to names and realm ids to realm
// names; it never writes back.
package identity

import (
	"context"
	"fmt"
)

// Lookup resolves identifiers against the identity store.
type Lookup interface {
	LookupRoleNameByID(ctx context.Context, realm, roleID string) (string, error)
	LookupRealmNameByID(ctx context.Context, realmID string) (string, error)
}

// RoleNotFoundError means the role id does not exist in the realm. Role-name
// resolution fails loudly; an unresolvable subject must never default to an
// empty name.
type RoleNotFoundError struct {
	Realm  string
	RoleID string
}

func (e *RoleNotFoundError) Error() string {
	return fmt.Sprintf("role %s not found in realm %q", e.RoleID, e.Realm)
}

// RealmNotFoundError means no realm with the given id exists.
type RealmNotFoundError struct {
	RealmID string
}

func (e *RealmNotFoundError) Error() string {
	return fmt.Sprintf("realm %q not found", e.RealmID)
}
