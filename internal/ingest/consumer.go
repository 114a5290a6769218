// Package ingest consumes insert requests from a Kafka topic.
//
// A message value is either the HTTP insert body
//
//	{"info":{...},"payload":{"data":"<base64>"}}
//
// or a report in its persisted form
//
//	{"info":{...},"records":[{"name":"...","hash":"..."}]}
//
// When the report carries no host, the message key is used as the host.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	gojson "github.com/goccy/go-json"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/hupe1980/hast/internal/payload"
	"github.com/hupe1980/hast/model"
)

// ErrMissingID is returned for messages whose report has no ID.
var ErrMissingID = model.ErrMissingID

// Inserter receives decoded reports.
type Inserter interface {
	Insert(ctx context.Context, req model.InsertRequest) error
}

// Config selects the brokers, topic and consumer group.
type Config struct {
	Brokers []string
	Topic   string
	Group   string
}

// Consumer feeds messages from a topic into an Inserter. Offsets are
// committed after each polled batch has been handled.
type Consumer struct {
	client *kgo.Client
	index  Inserter
	logger *slog.Logger
}

// NewConsumer connects to the brokers in cfg. Extra client options are
// appended after the ones derived from cfg.
func NewConsumer(cfg Config, index Inserter, logger *slog.Logger, opts ...kgo.Opt) (*Consumer, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	clientOpts := append([]kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.DisableAutoCommit(),
	}, opts...)

	cl, err := kgo.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	return &Consumer{
		client: cl,
		index:  index,
		logger: logger.With("topic", cfg.Topic, "group", cfg.Group),
	}, nil
}

// Run polls until ctx ends or the client is closed. Per-message failures are
// logged and skipped.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("kafka consumer started")

	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return nil
		}

		// All errors are retried internally when fetching, but non-retriable
		// errors are returned from polls.
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Warn("fetch failed", "partition", partition, "error", err)
		})

		iter := fetches.RecordIter()
		for !iter.Done() {
			record := iter.Next()
			if err := c.Handle(ctx, record); err != nil {
				c.logger.Warn("message skipped",
					"partition", record.Partition,
					"offset", record.Offset,
					"error", err,
				)
			}
		}

		if err := c.client.CommitUncommittedOffsets(ctx); err != nil {
			c.logger.Warn("commit offsets failed", "error", err)
		}
	}
}

// Handle decodes one message and inserts it.
func (c *Consumer) Handle(ctx context.Context, record *kgo.Record) error {
	req, err := Decode(record.Key, record.Value)
	if err != nil {
		return err
	}

	c.logger.Debug("message decoded", "report", req.Info.ID, "records", len(req.Records))

	return c.index.Insert(ctx, req)
}

// Close leaves the consumer group and closes the client.
func (c *Consumer) Close() {
	c.client.Close()
}

type message struct {
	Info    model.Info       `json:"info"`
	Records []model.Record   `json:"records"`
	Payload *payload.Payload `json:"payload"`
}

// Decode parses a message value. key is used as the host when the report
// has none.
func Decode(key, value []byte) (model.InsertRequest, error) {
	var msg message
	if err := gojson.Unmarshal(value, &msg); err != nil {
		return model.InsertRequest{}, fmt.Errorf("decode message: %w", err)
	}
	if msg.Info.ID == "" {
		return model.InsertRequest{}, ErrMissingID
	}

	records := msg.Records
	if msg.Payload != nil {
		var err error
		if records, err = msg.Payload.Decode(); err != nil {
			return model.InsertRequest{}, err
		}
	}

	info := msg.Info
	if info.Host == nil && len(key) > 0 {
		info = info.WithHost(string(key))
	}

	return model.InsertRequest{Info: info, Records: records}, nil
}
