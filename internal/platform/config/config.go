package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the static options object handed to the core at startup.
// All values are environment-sourced and read exactly once.
type Config struct {
	Env      string
	HTTPAddr string

	Kafka    KafkaConfig
	OpenFGA  OpenFGAConfig
	Keycloak KeycloakConfig
	Redis    RedisConfig
}

// KafkaConfig locates the admin-event topic this service consumes.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	Group   string
}

// OpenFGAConfig carries the remote endpoint and credential material for the
// authorization store. CredentialsMethod selects exactly one of the credential
// field groups; the zero value means no credential is attached.
type OpenFGAConfig struct {
	APIURL            string
	CredentialsMethod string
	APIToken          string
	ClientID          string
	ClientSecret      string
	TokenIssuer       string
	Audience          string
}

// KeycloakConfig locates the identity store consulted for read-only
// role and realm lookups.
type KeycloakConfig struct {
	BaseURL      string
	Realm        string
	ClientID     string
	ClientSecret string
}

// RedisConfig configures the optional role-name lookup cache.
// An empty URL disables caching entirely.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TTL          time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Env:      env("PUBLISHER_ENV", "dev"),
		HTTPAddr: env("PUBLISHER_HTTP_ADDR", ":8081"),
		Kafka: KafkaConfig{
			Brokers: strings.Split(env("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   env("KAFKA_ADMIN_EVENTS_TOPIC", "keycloak-admin-events"),
			Group:   env("KAFKA_CONSUMER_GROUP", "openfga-event-publisher"),
		},
		OpenFGA: OpenFGAConfig{
			APIURL:            env("OPENFGA_API_URL", "http://openfga:8080"),
			CredentialsMethod: env("OPENFGA_CREDENTIALS_METHOD", ""),
			APIToken:          env("OPENFGA_API_TOKEN", ""),
			ClientID:          env("OPENFGA_CLIENT_ID", ""),
			ClientSecret:      env("OPENFGA_CLIENT_SECRET", ""),
			TokenIssuer:       env("OPENFGA_API_TOKEN_ISSUER", ""),
			Audience:          env("OPENFGA_AUDIENCE", ""),
		},
		Keycloak: KeycloakConfig{
			BaseURL:      env("KEYCLOAK_URL", "http://keycloak:8080"),
			Realm:        env("KEYCLOAK_ADMIN_REALM", "master"),
			ClientID:     env("KEYCLOAK_ADMIN_CLIENT_ID", ""),
			ClientSecret: env("KEYCLOAK_ADMIN_CLIENT_SECRET", ""),
		},
		Redis: RedisConfig{
			URL:          env("REDIS_URL", ""),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDur("REDIS_DIAL_TIMEOUT_SEC", 5),
			ReadTimeout:  envDur("REDIS_READ_TIMEOUT_SEC", 3),
			WriteTimeout: envDur("REDIS_WRITE_TIMEOUT_SEC", 3),
			TTL:          envDur("ROLE_CACHE_TTL_SEC", 300),
		},
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func envDur(k string, defSeconds int) time.Duration {
	return time.Duration(envInt(k, defSeconds)) * time.Second
}
