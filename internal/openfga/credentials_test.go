package openfga

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/platform/config"
)

func TestParseCredentialsMethod(t *testing.T) {
	assert.Equal(t, CredentialsAPIToken, ParseCredentialsMethod("API_TOKEN"))
	assert.Equal(t, CredentialsAPIToken, ParseCredentialsMethod("api_token"))
	assert.Equal(t, CredentialsClientCredentials, ParseCredentialsMethod("CLIENT_CREDENTIALS"))
	assert.Equal(t, CredentialsNone, ParseCredentialsMethod("NONE"))
	assert.Equal(t, CredentialsNone, ParseCredentialsMethod(""))
	assert.Equal(t, CredentialsNone, ParseCredentialsMethod("unknown"))
}

func TestHTTPClientFor_RequestTimeoutAppliesToEveryMethod(t *testing.T) {
	methods := []struct {
		name string
		cfg  config.OpenFGAConfig
	}{
		{"none", config.OpenFGAConfig{}},
		{"api token", config.OpenFGAConfig{
			CredentialsMethod: "API_TOKEN",
			APIToken:          "token",
		}},
		{"client credentials", config.OpenFGAConfig{
			CredentialsMethod: "CLIENT_CREDENTIALS",
			ClientID:          "publisher",
			ClientSecret:      "secret",
			TokenIssuer:       "https://issuer.test/token",
			Audience:          "openfga",
		}},
	}
	for _, tt := range methods {
		t.Run(tt.name, func(t *testing.T) {
			httpc, err := httpClientFor(context.Background(), tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, requestTimeout, httpc.Timeout)
		})
	}
}

func TestNewClient_MissingCredentialConfig(t *testing.T) {
	base := config.OpenFGAConfig{
		APIURL:       "http://openfga:8080",
		ClientID:     "publisher",
		ClientSecret: "secret",
		TokenIssuer:  "https://issuer.test/token",
		Audience:     "openfga",
	}

	t.Run("api token method without token", func(t *testing.T) {
		cfg := base
		cfg.CredentialsMethod = "API_TOKEN"

		_, err := NewClient(context.Background(), cfg)

		var missing *MissingCredentialConfigError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, CredentialsAPIToken, missing.Method)
	})

	blankField := []struct {
		name  string
		blank func(*config.OpenFGAConfig)
	}{
		{"client id", func(c *config.OpenFGAConfig) { c.ClientID = "" }},
		{"client secret", func(c *config.OpenFGAConfig) { c.ClientSecret = "" }},
		{"token issuer", func(c *config.OpenFGAConfig) { c.TokenIssuer = "" }},
		{"audience", func(c *config.OpenFGAConfig) { c.Audience = "" }},
	}
	for _, tt := range blankField {
		t.Run("client credentials without "+tt.name, func(t *testing.T) {
			cfg := base
			cfg.CredentialsMethod = "CLIENT_CREDENTIALS"
			tt.blank(&cfg)

			_, err := NewClient(context.Background(), cfg)

			var missing *MissingCredentialConfigError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, CredentialsClientCredentials, missing.Method)
		})
	}

	t.Run("complete client credentials config is accepted", func(t *testing.T) {
		cfg := base
		cfg.CredentialsMethod = "CLIENT_CREDENTIALS"

		_, err := NewClient(context.Background(), cfg)
		require.NoError(t, err)
	})

	t.Run("no method needs no material", func(t *testing.T) {
		_, err := NewClient(context.Background(), config.OpenFGAConfig{APIURL: "http://openfga:8080"})
		require.NoError(t, err)
	})
}
