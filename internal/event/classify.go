package event

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// SubjectType is the semantic type of the entity an event acts on behalf of.
type SubjectType string

const (
	SubjectUser  SubjectType = "user"
	SubjectRole  SubjectType = "role"
	SubjectGroup SubjectType = "group"
)

// ObjectType is the semantic type of the entity an event points at.
type ObjectType string

const (
	ObjectRole  ObjectType = "role"
	ObjectGroup ObjectType = "group"
)

// Intent is the relationship change an event represents. Operations other
// than create and delete carry no intent and are ignored upstream.
type Intent string

const (
	IntentNone   Intent = ""
	IntentWrite  Intent = "write"
	IntentDelete Intent = "delete"
)

// Fields is the result of classifying one event: everything the tuple mapper
// needs, plus the realm used to route the tuple to its tenant.
type Fields struct {
	Subject     SubjectType
	SubjectID   string
	SubjectName string // resolved lazily, role subjects only
	Object      ObjectType
	ObjectName  string
	Intent      Intent
	Realm       string
}

// SubjectRef is the identifier used for the subject side of the tuple: the
// resolved name for role subjects, the raw id for everything else.
func (f Fields) SubjectRef() string {
	if f.Subject == SubjectRole {
		return f.SubjectName
	}
	return f.SubjectID
}

// RoleNameResolver resolves a role id to its human-readable name via the
// identity store. Resolution failures must surface as errors, never as an
// empty name.
type RoleNameResolver interface {
	LookupRoleNameByID(ctx context.Context, realm, roleID string) (string, error)
}

// Classification table: resource kind -> allowed collections -> subject type.
// Combinations outside this table are unsupported and dropped upstream.
var subjectByCollection = map[ResourceKind]map[string]SubjectType{
	ResourceUserRoleMapping:  {"users": SubjectUser, "roles-by-id": SubjectRole},
	ResourceRole:             {"users": SubjectUser, "roles-by-id": SubjectRole},
	ResourceGroupRoleMapping: {"groups": SubjectGroup},
	ResourceGroupMembership:  {"users": SubjectUser, "groups": SubjectGroup},
}

var objectByKind = map[ResourceKind]ObjectType{
	ResourceUserRoleMapping:  ObjectRole,
	ResourceRole:             ObjectRole,
	ResourceGroupRoleMapping: ObjectRole,
	ResourceGroupMembership:  ObjectGroup,
}

// Classifier inspects event descriptors and extracts the fields needed to map
// them to authorization tuples.
type Classifier struct {
	roles RoleNameResolver
}

func NewClassifier(roles RoleNameResolver) *Classifier {
	return &Classifier{roles: roles}
}

// Classify determines the subject and object of an event per the
// classification table. Events whose operation is neither create nor delete
// come back with IntentNone and no extracted fields; events outside the table
// fail with UnsupportedEventError.
//
// Role subjects have their name resolved against the acting realm, not the
// event's own realm. The tuple is still routed by the event's realm.
func (c *Classifier) Classify(ctx context.Context, d Descriptor) (Fields, error) {
	intent := intentOf(d.Operation)
	if intent == IntentNone {
		return Fields{Intent: IntentNone}, nil
	}

	object, ok := objectByKind[d.Kind]
	if !ok {
		return Fields{}, &UnsupportedEventError{Kind: d.Kind, Resource: d.ResourceName()}
	}
	subject, ok := subjectByCollection[d.Kind][d.ResourceName()]
	if !ok {
		return Fields{}, &UnsupportedEventError{Kind: d.Kind, Resource: d.ResourceName()}
	}

	subjectID := d.SubjectID()
	if subjectID == "" {
		return Fields{}, &MalformedPayloadError{Reason: "resource path has no subject id"}
	}

	objectName, err := objectNameFromPayload(d.RawPayload)
	if err != nil {
		return Fields{}, err
	}

	fields := Fields{
		Subject:    subject,
		SubjectID:  subjectID,
		Object:     object,
		ObjectName: objectName,
		Intent:     intent,
		Realm:      d.RealmID,
	}

	if subject == SubjectRole {
		name, err := c.roles.LookupRoleNameByID(ctx, d.AuthRealmID, subjectID)
		if err != nil {
			return Fields{}, fmt.Errorf("resolve role name for %s: %w", subjectID, err)
		}
		fields.SubjectName = name
	}

	return fields, nil
}

func intentOf(op Operation) Intent {
	switch op {
	case OperationCreate:
		return IntentWrite
	case OperationDelete:
		return IntentDelete
	default:
		return IntentNone
	}
}

// objectNameFromPayload pulls the "name" attribute out of the representation
// payload. Payloads may be a single object or a sequence; sequences use the
// first element.
func objectNameFromPayload(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", &MalformedPayloadError{Reason: "payload is empty"}
	}

	if trimmed[0] == '[' {
		var elements []json.RawMessage
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return "", &MalformedPayloadError{Reason: "payload is not valid JSON", Err: err}
		}
		if len(elements) == 0 {
			return "", &MalformedPayloadError{Reason: "payload sequence is empty"}
		}
		trimmed = elements[0]
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(trimmed, &body); err != nil {
		return "", &MalformedPayloadError{Reason: "payload is not valid JSON", Err: err}
	}
	if body.Name == "" {
		return "", &MalformedPayloadError{Reason: `payload has no "name" attribute`}
	}
	return body.Name, nil
}
