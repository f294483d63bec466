package openfga

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/platform/config"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), config.OpenFGAConfig{APIURL: srv.URL})
	require.NoError(t, err)
	return client, srv
}

func TestClient_ListStores(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/stores", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"stores": []map[string]string{
				{"id": "01H", "name": "acme"},
				{"id": "01J", "name": "globex"},
			},
		})
	}))

	stores, err := client.ListStores(context.Background())
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, Store{ID: "01H", Name: "acme"}, stores[0])
}

func TestClient_ReadAuthorizationModels(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stores/01H/authorization-models", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"authorization_models": []map[string]string{{"id": "m2"}, {"id": "m1"}},
		})
	}))

	t.Run("requires a bound store", func(t *testing.T) {
		_, err := client.ReadAuthorizationModels(context.Background())
		require.Error(t, err)
	})

	t.Run("lists models newest first", func(t *testing.T) {
		client.SetStoreID("01H")
		models, err := client.ReadAuthorizationModels(context.Background())
		require.NoError(t, err)
		require.Len(t, models, 2)
		assert.Equal(t, "m2", models[0].ID)
	})
}

func TestClient_Write(t *testing.T) {
	var captured map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/stores/01H/write", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		captured = nil
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{}`))
	}))

	t.Run("requires binding", func(t *testing.T) {
		_, err := client.Write(context.Background(), WriteRequest{})
		require.Error(t, err)
	})

	client.SetStoreID("01H")
	client.SetAuthorizationModelID("m2")

	t.Run("write side", func(t *testing.T) {
		resp, err := client.Write(context.Background(), WriteRequest{
			Writes: []TupleKey{{User: "user:u1", Relation: "assignee", Object: "role:admin"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "{}", resp.Body)

		assert.Equal(t, "m2", captured["authorization_model_id"])
		writes := captured["writes"].(map[string]any)["tuple_keys"].([]any)
		require.Len(t, writes, 1)
		assert.Equal(t, map[string]any{"user": "user:u1", "relation": "assignee", "object": "role:admin"}, writes[0])
		assert.NotContains(t, captured, "deletes")
	})

	t.Run("delete side", func(t *testing.T) {
		_, err := client.Write(context.Background(), WriteRequest{
			Deletes: []TupleKey{{User: "user:u1", Relation: "assignee", Object: "role:admin"}},
		})
		require.NoError(t, err)

		assert.NotContains(t, captured, "writes")
		deletes := captured["deletes"].(map[string]any)["tuple_keys"].([]any)
		require.Len(t, deletes, 1)
	})
}

func TestClient_APIError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"validation_error","message":"relation not found"}`))
	}))
	client.SetStoreID("01H")
	client.SetAuthorizationModelID("m2")

	_, err := client.Write(context.Background(), WriteRequest{
		Writes: []TupleKey{{User: "user:u1", Relation: "bogus", Object: "role:admin"}},
	})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "relation not found")
}

func TestClient_APITokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"stores":[]}`))
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), config.OpenFGAConfig{
		APIURL:            srv.URL,
		CredentialsMethod: "API_TOKEN",
		APIToken:          "s3cr3t",
	})
	require.NoError(t, err)

	_, err = client.ListStores(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cr3t", gotAuth)
}
