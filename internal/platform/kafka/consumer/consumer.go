// Package consumer wraps the franz-go consumer group client behind a small
// message/handler contract so transport adapters stay broker-agnostic.
package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is one consumed record.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Timestamp time.Time
}

// Handler processes one message. Returning an error only logs it: the message
// is committed either way, redelivery is never requested.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// Config locates the topic and consumer group.
type Config struct {
	Brokers []string
	Topic   string
	Group   string
}

// Consumer polls one topic and dispatches records to the handler.
type Consumer struct {
	client  *kgo.Client
	handler Handler
	topic   string
	logger  *slog.Logger
}

func New(cfg Config, handler Handler, logger *slog.Logger) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Consumer{
		client:  client,
		handler: handler,
		topic:   cfg.Topic,
		logger:  logger.With("component", "kafka-consumer"),
	}, nil
}

// EnsureTopic verifies the configured topic exists on the brokers. Failing
// fast at startup beats polling a topic that will never appear.
func (c *Consumer) EnsureTopic(ctx context.Context) error {
	adm := kadm.NewClient(c.client)
	topics, err := adm.ListTopics(ctx, c.topic)
	if err != nil {
		return fmt.Errorf("list topics: %w", err)
	}
	if !topics.Has(c.topic) {
		return fmt.Errorf("topic %q does not exist", c.topic)
	}
	return nil
}

// Run polls until the context is cancelled or the client is closed. Records
// are committed after the handler sees them regardless of handler outcome.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Error("fetch error", "topic", topic, "partition", partition, "error", err)
		})

		var processed []*kgo.Record
		fetches.EachRecord(func(record *kgo.Record) {
			msg := &Message{
				Topic:     record.Topic,
				Partition: record.Partition,
				Offset:    record.Offset,
				Key:       record.Key,
				Value:     record.Value,
				Timestamp: record.Timestamp,
			}
			if err := c.handler.Handle(ctx, msg); err != nil {
				c.logger.Error("handler failed, message skipped",
					"topic", record.Topic,
					"partition", record.Partition,
					"offset", record.Offset,
					"error", err,
				)
			}
			processed = append(processed, record)
		})

		if len(processed) > 0 {
			if err := c.client.CommitRecords(ctx, processed...); err != nil {
				c.logger.Error("commit failed", "error", err)
			}
		}
	}
}

// Close shuts the underlying client down, unblocking Run.
func (c *Consumer) Close() {
	c.client.Close()
}
