// Package tuple maps classified event fields onto authorization relationship
// tuples. The relation vocabulary here must match the relations configured in
// the remote store's authorization model; mismatches surface only as write
// rejections from the store.
package tuple

import (
	"fmt"

	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/event"
)

// Relations in the authorization model.
const (
	RelationAssignee    = "assignee"
	RelationParent      = "parent"
	RelationParentGroup = "parent_group"
)

// Tuple is one (subject, relation, object) relationship fact. Tuples are
// ephemeral: constructed, published, discarded.
type Tuple struct {
	Subject  string
	Relation string
	Object   string
}

func (t Tuple) String() string {
	return fmt.Sprintf("%s#%s@%s", t.Object, t.Relation, t.Subject)
}

// relations keys the relation name by (subject type, object type).
var relations = map[event.SubjectType]map[event.ObjectType]string{
	event.SubjectUser: {
		event.ObjectRole:  RelationAssignee,
		event.ObjectGroup: RelationAssignee,
	},
	event.SubjectRole: {
		event.ObjectRole: RelationParent,
	},
	event.SubjectGroup: {
		event.ObjectRole:  RelationParentGroup,
		event.ObjectGroup: RelationParent,
	},
}

// Map converts classified fields into a tuple. The second return value is
// false when the fields are outside the relation vocabulary or any required
// identifier is empty; such events produce no downstream call.
func Map(fields event.Fields) (Tuple, bool) {
	relation, ok := relations[fields.Subject][fields.Object]
	if !ok {
		return Tuple{}, false
	}

	subjectRef := fields.SubjectRef()
	if subjectRef == "" || fields.ObjectName == "" {
		return Tuple{}, false
	}

	return Tuple{
		Subject:  fmt.Sprintf("%s:%s", fields.Subject, subjectRef),
		Relation: relation,
		Object:   fmt.Sprintf("%s:%s", fields.Object, fields.ObjectName),
	}, true
}
