// Package kafka adapts the admin-event topic to the publisher: it decodes the
// event envelope the identity platform writes to Kafka and hands normalized
// descriptors to the pipeline.
package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/event"
	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/platform/kafka/consumer"
)

// EventSink receives normalized event descriptors.
type EventSink interface {
	OnEvent(ctx context.Context, d event.Descriptor)
}

// adminEvent mirrors the admin-event JSON envelope on the topic.
type adminEvent struct {
	ID             string          `json:"id"`
	RealmID        string          `json:"realmId"`
	ResourceType   string          `json:"resourceType"`
	OperationType  string          `json:"operationType"`
	ResourcePath   string          `json:"resourcePath"`
	Representation json.RawMessage `json:"representation"`
	AuthDetails    struct {
		RealmID string `json:"realmId"`
	} `json:"authDetails"`
}

// Listener is the topic handler for admin events.
type Listener struct {
	sink   EventSink
	logger *slog.Logger
}

func NewListener(sink EventSink, logger *slog.Logger) *Listener {
	return &Listener{sink: sink, logger: logger.With("component", "event-listener")}
}

// Handle decodes one record and forwards it. It always returns nil: a message
// that cannot be decoded is logged and committed, never redelivered.
func (l *Listener) Handle(ctx context.Context, msg *consumer.Message) error {
	var env adminEvent
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		l.logger.Warn("undecodable admin event, message dropped",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}

	id := env.ID
	if id == "" {
		id = uuid.NewString()
	}

	d := event.NewDescriptor(
		id,
		env.ResourceType,
		env.OperationType,
		env.ResourcePath,
		representationPayload(env.Representation),
		env.RealmID,
		env.AuthDetails.RealmID,
	)
	l.sink.OnEvent(ctx, d)
	return nil
}

// representationPayload unwraps the representation field. The platform
// serializes it as a JSON string holding JSON; some producers inline the
// object directly, so both shapes are accepted.
func representationPayload(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err == nil {
			return json.RawMessage(inner)
		}
	}
	return trimmed
}
