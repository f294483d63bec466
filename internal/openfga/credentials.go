package openfga

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/platform/config"
)

// CredentialsMethod selects how calls to the authorization store authenticate.
type CredentialsMethod string

const (
	CredentialsNone              CredentialsMethod = "NONE"
	CredentialsAPIToken          CredentialsMethod = "API_TOKEN"
	CredentialsClientCredentials CredentialsMethod = "CLIENT_CREDENTIALS"
)

// ParseCredentialsMethod normalizes the configured method. Unset defaults to
// no credential.
func ParseCredentialsMethod(raw string) CredentialsMethod {
	switch CredentialsMethod(strings.ToUpper(raw)) {
	case CredentialsAPIToken:
		return CredentialsAPIToken
	case CredentialsClientCredentials:
		return CredentialsClientCredentials
	default:
		return CredentialsNone
	}
}

// MissingCredentialConfigError reports an incomplete credential configuration.
// Publishing against the endpoint cannot work until the config is corrected.
type MissingCredentialConfigError struct {
	Method CredentialsMethod
	Field  string
}

func (e *MissingCredentialConfigError) Error() string {
	return fmt.Sprintf("credentials method %s requires %s in the configuration", e.Method, e.Field)
}

// httpClientFor builds the HTTP client that attaches credentials per the
// configured method. All clients share the bounded connect/read timeouts.
func httpClientFor(ctx context.Context, cfg config.OpenFGAConfig) (*http.Client, error) {
	base := &http.Client{
		Timeout: requestTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
		},
	}

	switch ParseCredentialsMethod(cfg.CredentialsMethod) {
	case CredentialsAPIToken:
		if cfg.APIToken == "" {
			return nil, &MissingCredentialConfigError{Method: CredentialsAPIToken, Field: "an API token"}
		}
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
		source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIToken, TokenType: "Bearer"})
		return withRequestTimeout(oauth2.NewClient(ctx, source)), nil

	case CredentialsClientCredentials:
		if err := requireClientCredentials(cfg); err != nil {
			return nil, err
		}
		cc := clientcredentials.Config{
			ClientID:       cfg.ClientID,
			ClientSecret:   cfg.ClientSecret,
			TokenURL:       cfg.TokenIssuer,
			EndpointParams: map[string][]string{"audience": {cfg.Audience}},
		}
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
		return withRequestTimeout(cc.Client(ctx)), nil

	default:
		return base, nil
	}
}

// withRequestTimeout re-applies the request timeout to clients built by the
// oauth2 package, which copies only the base client's transport.
func withRequestTimeout(c *http.Client) *http.Client {
	c.Timeout = requestTimeout
	return c
}

func requireClientCredentials(cfg config.OpenFGAConfig) error {
	missing := ""
	switch {
	case cfg.ClientID == "":
		missing = "a client id"
	case cfg.ClientSecret == "":
		missing = "a client secret"
	case cfg.TokenIssuer == "":
		missing = "a token issuer"
	case cfg.Audience == "":
		missing = "an audience"
	}
	if missing != "" {
		return &MissingCredentialConfigError{Method: CredentialsClientCredentials, Field: missing}
	}
	return nil
}
