package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/platform/config"
)

const adminRequestTimeout = 5 * time.Second

// KeycloakClient resolves roles and realms through the Keycloak Admin REST
// API. When admin client credentials are configured the client authenticates
// via the client-credentials grant against the configured realm; otherwise
// requests go out bare, which only works against unsecured dev instances.
type KeycloakClient struct {
	baseURL string
	httpc   *http.Client
}

func NewKeycloakClient(cfg config.KeycloakConfig) *KeycloakClient {
	base := strings.TrimRight(cfg.BaseURL, "/")

	httpc := &http.Client{Timeout: adminRequestTimeout}
	if cfg.ClientID != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", base, cfg.Realm),
		}
		httpc = cc.Client(context.Background())
		httpc.Timeout = adminRequestTimeout
	}

	return &KeycloakClient{baseURL: base, httpc: httpc}
}

// LookupRoleNameByID fetches the role by id within the given realm.
func (c *KeycloakClient) LookupRoleNameByID(ctx context.Context, realm, roleID string) (string, error) {
	path := fmt.Sprintf("/admin/realms/%s/roles-by-id/%s", url.PathEscape(realm), url.PathEscape(roleID))

	var role struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	status, err := c.get(ctx, path, &role)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", &RoleNotFoundError{Realm: realm, RoleID: roleID}
	}
	if role.Name == "" {
		return "", fmt.Errorf("identity store returned role %s without a name", roleID)
	}
	return role.Name, nil
}

// LookupRealmNameByID resolves a realm id to the realm's name. The Admin API
// addresses realms by name, so the lookup lists realms and matches on id; a
// name equal to the id also matches, covering realms created with name only.
func (c *KeycloakClient) LookupRealmNameByID(ctx context.Context, realmID string) (string, error) {
	var reps []struct {
		ID    string `json:"id"`
		Realm string `json:"realm"`
	}
	if _, err := c.get(ctx, "/admin/realms", &reps); err != nil {
		return "", err
	}
	for _, rep := range reps {
		if rep.ID == realmID || rep.Realm == realmID {
			return rep.Realm, nil
		}
	}
	return "", &RealmNotFoundError{RealmID: realmID}
}

// get performs one GET and decodes 2xx bodies into out. A 404 is reported via
// the returned status so callers can map it to their own not-found type.
func (c *KeycloakClient) get(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("identity: build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("identity: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return http.StatusNotFound, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("identity: GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("identity: decode response: %w", err)
	}
	return resp.StatusCode, nil
}
