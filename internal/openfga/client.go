// Package openfga is a thin HTTP client for the OpenFGA API, covering only
// what tenant discovery and tuple publishing need: listing stores, listing
// authorization models, and the write endpoint.
package openfga

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/platform/config"
)

const (
	connectTimeout = 5 * time.Second
	requestTimeout = 5 * time.Second
)

// APIError is a non-2xx response from the OpenFGA API, with the body retained
// for diagnostics.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openfga: %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client talks to one OpenFGA endpoint. A client starts unbound; discovery
// pins it to a store and an authorization model before any write.
type Client struct {
	apiURL  string
	httpc   *http.Client
	storeID string
	modelID string
}

// NewClient builds a client for the configured endpoint, attaching credentials
// per the configured method.
func NewClient(ctx context.Context, cfg config.OpenFGAConfig) (*Client, error) {
	httpc, err := httpClientFor(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Client{
		apiURL: strings.TrimRight(cfg.APIURL, "/"),
		httpc:  httpc,
	}, nil
}

// SetStoreID pins the client to a store.
func (c *Client) SetStoreID(id string) { c.storeID = id }

// SetAuthorizationModelID pins the client to a model version. Later model
// versions added on the remote store are ignored once pinned.
func (c *Client) SetAuthorizationModelID(id string) { c.modelID = id }

// StoreID returns the pinned store id, empty if unbound.
func (c *Client) StoreID() string { return c.storeID }

// AuthorizationModelID returns the pinned model id, empty if unbound.
func (c *Client) AuthorizationModelID() string { return c.modelID }

// ListStores returns all stores at the endpoint.
func (c *Client) ListStores(ctx context.Context) ([]Store, error) {
	var out listStoresResponse
	if _, err := c.do(ctx, http.MethodGet, "/stores", nil, &out); err != nil {
		return nil, err
	}
	return out.Stores, nil
}

// ReadAuthorizationModels lists the model versions of the pinned store,
// newest first.
func (c *Client) ReadAuthorizationModels(ctx context.Context) ([]AuthorizationModel, error) {
	if c.storeID == "" {
		return nil, errors.New("openfga: no store bound")
	}
	var out readAuthorizationModelsResponse
	path := fmt.Sprintf("/stores/%s/authorization-models", c.storeID)
	if _, err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.AuthorizationModels, nil
}

// Write applies tuple additions and deletions against the pinned store and
// model. The call is synchronous and bounded by the client timeouts; there is
// no mid-flight abort beyond context cancellation.
func (c *Client) Write(ctx context.Context, req WriteRequest) (*WriteResponse, error) {
	if c.storeID == "" || c.modelID == "" {
		return nil, errors.New("openfga: client is not bound to a store and model")
	}

	body := writeRequestBody{AuthorizationModelID: c.modelID}
	if len(req.Writes) > 0 {
		body.Writes = &tupleKeys{TupleKeys: req.Writes}
	}
	if len(req.Deletes) > 0 {
		body.Deletes = &tupleKeys{TupleKeys: req.Deletes}
	}

	path := fmt.Sprintf("/stores/%s/write", c.storeID)
	raw, err := c.do(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		return nil, err
	}
	return &WriteResponse{Body: raw}, nil
}

// do performs one JSON request. The returned string is the raw response body.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (string, error) {
	var reqBody io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return "", fmt.Errorf("openfga: encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reqBody)
	if err != nil {
		return "", fmt.Errorf("openfga: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("openfga: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openfga: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{StatusCode: resp.StatusCode, Method: method, Path: path, Body: string(raw)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return "", fmt.Errorf("openfga: decode response: %w", err)
		}
	}
	return string(raw), nil
}
