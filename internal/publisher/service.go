// Package publisher orchestrates the per-event pipeline: classify the event,
// map it to a tuple, resolve the tenant's client binding, and write the tuple
// to the authorization store.
//
// Delivery is at-most-once by design. Every failure mode terminates in a log
// line and a dropped event; nothing propagates back into the host's event
// delivery path, and nothing is retried or re-queued.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/event"
	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/openfga"
	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/registry"
	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/tuple"
)

// ClientResolver resolves a tenant name to its bound store client.
type ClientResolver interface {
	Resolve(ctx context.Context, tenant string) (*registry.Binding, error)
}

// RealmNamer maps the realm id carried by an event to the realm's name, which
// is the tenant key the store registry matches on.
type RealmNamer interface {
	LookupRealmNameByID(ctx context.Context, realmID string) (string, error)
}

// Outcome reports one publish attempt; the response body is kept for
// diagnostics.
type Outcome struct {
	OK       bool
	Response string
	Err      error
}

// Service is the event-to-tuple publisher.
type Service struct {
	classifier *event.Classifier
	resolver   ClientResolver
	realms     RealmNamer
	metrics    *Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(classifier *event.Classifier, resolver ClientResolver, realms RealmNamer, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		classifier: classifier,
		resolver:   resolver,
		realms:     realms,
		logger:     logger.With("component", "publisher"),
		tracer:     otel.Tracer("openfga-event-publisher"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnEvent processes one admin event end to end. It never returns an error:
// the authorization side-channel must not destabilize the identity operation
// that produced the event, so every failure ends here.
func (s *Service) OnEvent(ctx context.Context, d event.Descriptor) {
	ctx, span := s.tracer.Start(ctx, "publisher.OnEvent", trace.WithAttributes(
		attribute.String("event.id", d.ID),
		attribute.String("event.kind", string(d.Kind)),
		attribute.String("event.realm", d.RealmID),
	))
	defer span.End()

	fields, err := s.classifier.Classify(ctx, d)
	if err != nil {
		s.recordClassifyFailure(ctx, d, err)
		span.RecordError(err)
		return
	}

	if fields.Intent == event.IntentNone {
		s.incResult(ResultIgnored)
		return
	}

	tp, ok := tuple.Map(fields)
	if !ok {
		s.incResult(ResultNotApplicable)
		s.logger.DebugContext(ctx, "event outside the tuple schema, skipping", "event", d.String())
		return
	}

	outcome := s.publish(ctx, fields.Realm, fields.Intent, tp)
	if !outcome.OK {
		span.RecordError(outcome.Err)
		return
	}

	s.incResult(ResultPublished)
	s.logger.DebugContext(ctx, "tuple published",
		"event_id", d.ID,
		"realm_id", fields.Realm,
		"intent", string(fields.Intent),
		"tuple", tp.String(),
		"response", outcome.Response,
	)
}

// publish resolves the event realm to its name, resolves the tenant binding
// under that name, and performs the write or delete call. The store registry
// matches on realm names; events only carry the realm id.
func (s *Service) publish(ctx context.Context, realmID string, intent event.Intent, tp tuple.Tuple) Outcome {
	tenant, err := s.realms.LookupRealmNameByID(ctx, realmID)
	if err != nil {
		s.incResult(ResultResolveFailed)
		s.logger.ErrorContext(ctx, "unable to resolve realm name, discarding event",
			"realm_id", realmID,
			"error", err,
		)
		return Outcome{Err: err}
	}

	binding, err := s.resolver.Resolve(ctx, tenant)
	if err != nil {
		s.incResult(ResultResolveFailed)
		s.logger.ErrorContext(ctx, "unable to resolve authorization store client, discarding event",
			"tenant", tenant,
			"error", err,
		)
		return Outcome{Err: err}
	}

	key := openfga.TupleKey{User: tp.Subject, Relation: tp.Relation, Object: tp.Object}
	req := openfga.WriteRequest{}
	if intent == event.IntentDelete {
		req.Deletes = []openfga.TupleKey{key}
	} else {
		req.Writes = []openfga.TupleKey{key}
	}

	start := time.Now()
	resp, err := binding.Client.Write(ctx, req)
	if s.metrics != nil {
		s.metrics.ObservePublish(start)
	}
	if err != nil {
		s.incResult(ResultWriteFailed)
		s.logger.ErrorContext(ctx, "tuple write failed, event dropped",
			"tenant", tenant,
			"store_id", binding.StoreID,
			"tuple", tp.String(),
			"error", err,
		)
		return Outcome{Err: err}
	}

	return Outcome{OK: true, Response: resp.Body}
}

func (s *Service) recordClassifyFailure(ctx context.Context, d event.Descriptor, err error) {
	var unsupported *event.UnsupportedEventError
	var malformed *event.MalformedPayloadError
	switch {
	case errors.As(err, &unsupported):
		// Expected for the many host event shapes outside the mapping table.
		s.incResult(ResultUnsupported)
		s.logger.DebugContext(ctx, "unhandled event shape", "event", d.String())
	case errors.As(err, &malformed):
		s.incResult(ResultMalformed)
		s.logger.WarnContext(ctx, "malformed event payload, event dropped", "event", d.String(), "error", err)
	default:
		s.incResult(ResultLookupFailed)
		s.logger.ErrorContext(ctx, "identity lookup failed, event dropped", "event", d.String(), "error", err)
	}
}

func (s *Service) incResult(result string) {
	if s.metrics != nil {
		s.metrics.IncResult(result)
	}
}
