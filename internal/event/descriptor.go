package event

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ResourceKind classifies the resource an administrative change touched.
// Kinds arriving from the host that we do not recognize map to
// ResourceOther so classification failures stay values, not panics.
type ResourceKind string

const (
	ResourceUserRoleMapping  ResourceKind = "USER_ROLE_MAPPING"
	ResourceRole             ResourceKind = "ROLE"
	ResourceRoleToRole       ResourceKind = "ROLE_TO_ROLE_MAPPING"
	ResourceGroupRoleMapping ResourceKind = "GROUP_ROLE_MAPPING"
	ResourceGroupMembership  ResourceKind = "GROUP_MEMBERSHIP"
	ResourceOther            ResourceKind = "OTHER"
)

// ParseResourceKind normalizes a raw resource-type string from the host.
func ParseResourceKind(raw string) ResourceKind {
	switch ResourceKind(raw) {
	case ResourceUserRoleMapping, ResourceRole, ResourceRoleToRole,
		ResourceGroupRoleMapping, ResourceGroupMembership:
		return ResourceKind(raw)
	default:
		return ResourceOther
	}
}

// Operation is the administrative operation that produced the event.
type Operation string

const (
	OperationCreate Operation = "CREATE"
	OperationDelete Operation = "DELETE"
	OperationOther  Operation = "OTHER"
)

// ParseOperation normalizes a raw operation-type string from the host.
func ParseOperation(raw string) Operation {
	switch Operation(raw) {
	case OperationCreate, OperationDelete:
		return Operation(raw)
	default:
		return OperationOther
	}
}

// Descriptor is the normalized view over one raw admin event. It carries only
// what classification needs: the resource coordinates, the operation, the raw
// representation payload, and both realm ids (the event's own realm routes the
// tuple; the acting realm scopes identity lookups).
type Descriptor struct {
	ID           string
	Kind         ResourceKind
	Operation    Operation
	PathSegments []string
	RawPayload   json.RawMessage
	RealmID      string
	AuthRealmID  string
}

// NewDescriptor builds a Descriptor from the raw event fields, splitting the
// resource path on "/".
func NewDescriptor(id, resourceType, operationType, resourcePath string, payload json.RawMessage, realmID, authRealmID string) Descriptor {
	var segments []string
	if resourcePath != "" {
		segments = strings.Split(resourcePath, "/")
	}
	return Descriptor{
		ID:           id,
		Kind:         ParseResourceKind(resourceType),
		Operation:    ParseOperation(operationType),
		PathSegments: segments,
		RawPayload:   payload,
		RealmID:      realmID,
		AuthRealmID:  authRealmID,
	}
}

// ResourceName is the first path segment, identifying the resource collection
// ("users", "groups", "roles-by-id"). Empty when the path is too short.
func (d Descriptor) ResourceName() string {
	if len(d.PathSegments) == 0 {
		return ""
	}
	return d.PathSegments[0]
}

// SubjectID is the second path segment, identifying the event's subject.
func (d Descriptor) SubjectID() string {
	if len(d.PathSegments) < 2 {
		return ""
	}
	return d.PathSegments[1]
}

func (d Descriptor) String() string {
	return fmt.Sprintf("event id=%s resource=%s operation=%s realm=%s path=%s",
		d.ID, d.Kind, d.Operation, d.RealmID, strings.Join(d.PathSegments, "/"))
}
