package event

import "fmt"

// UnsupportedEventError reports an event whose resource kind or collection does
// not map to a known classification. These are expected: the host emits far
// more event shapes than this pipeline handles, and this error is the filter.
type UnsupportedEventError struct {
	Kind     ResourceKind
	Resource string
}

func (e *UnsupportedEventError) Error() string {
	return fmt.Sprintf("unsupported event: resource kind %q, collection %q", e.Kind, e.Resource)
}

// MalformedPayloadError reports an event that matched the classification table
// but whose payload is missing required structure.
type MalformedPayloadError struct {
	Reason string
	Err    error
}

func (e *MalformedPayloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed event payload: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed event payload: %s", e.Reason)
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Err
}
