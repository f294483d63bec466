package openfga

// Wire types for the OpenFGA HTTP API. Only the fields the publisher touches
// are modeled; everything else is ignored on decode.

// Store is a named, isolated authorization-data container, one per tenant.
type Store struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type listStoresResponse struct {
	Stores []Store `json:"stores"`
}

// AuthorizationModel is one versioned schema on a store. The API lists models
// newest first.
type AuthorizationModel struct {
	ID string `json:"id"`
}

type readAuthorizationModelsResponse struct {
	AuthorizationModels []AuthorizationModel `json:"authorization_models"`
}

// TupleKey is the wire form of one relationship tuple.
type TupleKey struct {
	User     string `json:"user"`
	Relation string `json:"relation"`
	Object   string `json:"object"`
}

type tupleKeys struct {
	TupleKeys []TupleKey `json:"tuple_keys"`
}

// WriteRequest adds and removes tuples in one call. Either side may be empty.
type WriteRequest struct {
	Writes  []TupleKey
	Deletes []TupleKey
}

type writeRequestBody struct {
	Writes               *tupleKeys `json:"writes,omitempty"`
	Deletes              *tupleKeys `json:"deletes,omitempty"`
	AuthorizationModelID string     `json:"authorization_model_id,omitempty"`
}

// WriteResponse captures the remote response body for diagnostics.
type WriteResponse struct {
	Body string
}
