// Package registry resolves tenant names to bound authorization-store
// clients. Bindings are discovered on first use and cached for the process
// lifetime; the store name on the remote side must equal the tenant name.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/openfga"
)

// StoreNotFoundError means no store on the remote endpoint matches the tenant
// name. The tenant is misconfigured on the remote side; discovery is retried
// on the next event for the tenant.
type StoreNotFoundError struct {
	Tenant string
}

func (e *StoreNotFoundError) Error() string {
	return fmt.Sprintf("no authorization store found for tenant %q", e.Tenant)
}

// NoAuthorizationModelError means the matched store has no schema versions yet.
type NoAuthorizationModelError struct {
	Tenant  string
	StoreID string
}

func (e *NoAuthorizationModelError) Error() string {
	return fmt.Sprintf("store %s for tenant %q has no authorization model", e.StoreID, e.Tenant)
}

// Client is the slice of the OpenFGA client the registry binds and hands out.
type Client interface {
	ListStores(ctx context.Context) ([]openfga.Store, error)
	ReadAuthorizationModels(ctx context.Context) ([]openfga.AuthorizationModel, error)
	SetStoreID(id string)
	SetAuthorizationModelID(id string)
	Write(ctx context.Context, req openfga.WriteRequest) (*openfga.WriteResponse, error)
}

// ClientFactory opens a fresh connection to the configured remote endpoint.
type ClientFactory func(ctx context.Context) (Client, error)

// Binding associates a tenant with its discovered store, model version, and
// connected client. Once bound, the store and model ids are pinned.
type Binding struct {
	Tenant  string
	StoreID string
	ModelID string
	Client  Client
}

// Registry is the tenant -> binding cache. Reads are concurrent; discovery
// happens outside any lock, so racing first-use for the same tenant may
// discover redundantly, with the last writer replacing earlier ones.
type Registry struct {
	mu        sync.RWMutex
	bindings  map[string]*Binding
	newClient ClientFactory
	logger    *slog.Logger
}

func New(newClient ClientFactory, logger *slog.Logger) *Registry {
	return &Registry{
		bindings:  make(map[string]*Binding),
		newClient: newClient,
		logger:    logger.With("component", "registry"),
	}
}

// Resolve returns the cached binding for the tenant, performing discovery on
// a miss. Failed discovery is never cached: the next event for the tenant
// retries.
func (r *Registry) Resolve(ctx context.Context, tenant string) (*Binding, error) {
	r.mu.RLock()
	binding, ok := r.bindings[tenant]
	r.mu.RUnlock()
	if ok {
		return binding, nil
	}

	binding, err := r.discover(ctx, tenant)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.bindings[tenant] = binding
	r.mu.Unlock()

	return binding, nil
}

// Invalidate drops the tenant's binding so the next event rediscovers.
func (r *Registry) Invalidate(tenant string) {
	r.mu.Lock()
	delete(r.bindings, tenant)
	r.mu.Unlock()
}

func (r *Registry) discover(ctx context.Context, tenant string) (*Binding, error) {
	r.logger.Info("discovering store and authorization model", "tenant", tenant)

	client, err := r.newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("open client for tenant %q: %w", tenant, err)
	}

	stores, err := client.ListStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores for tenant %q: %w", tenant, err)
	}

	var store *openfga.Store
	for i := range stores {
		if strings.EqualFold(stores[i].Name, tenant) {
			store = &stores[i]
			break
		}
	}
	if store == nil {
		return nil, &StoreNotFoundError{Tenant: tenant}
	}
	client.SetStoreID(store.ID)

	models, err := client.ReadAuthorizationModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("read authorization models for tenant %q: %w", tenant, err)
	}
	if len(models) == 0 {
		return nil, &NoAuthorizationModelError{Tenant: tenant, StoreID: store.ID}
	}
	// Models list newest first; pin the latest version.
	client.SetAuthorizationModelID(models[0].ID)

	r.logger.Info("bound tenant to store",
		"tenant", tenant,
		"store_id", store.ID,
		"authorization_model_id", models[0].ID,
	)

	return &Binding{
		Tenant:  tenant,
		StoreID: store.ID,
		ModelID: models[0].ID,
		Client:  client,
	}, nil
}
