// Package kafka publishes computed runoff batches to a results topic for
// downstream consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/runmeter/internal/config"
	"github.com/couchcryptid/runmeter/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces result rows to the configured results topic.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured results topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaResultsTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishBatch serializes a computed batch as one message per result row and
// publishes them in a single WriteMessages call. Keys are "<batchID>-<row>"
// so one batch's rows stay identifiable downstream.
func (p *Publisher) PublishBatch(ctx context.Context, batchID string, res domain.BatchResult) error {
	if len(res.Rows) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(res.Rows))
	for i := range res.Rows {
		msg, err := serializeToMessage(batchID, i, res)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals one result row into a Kafka message.
func serializeToMessage(batchID string, i int, res domain.BatchResult) (kafkago.Message, error) {
	data, err := json.Marshal(res.Rows[i])
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize result row: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(fmt.Sprintf("%s-%d", batchID, i+1)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "method", Value: []byte(res.Model.String())},
			{Key: "computed_at", Value: []byte(res.ComputedAt.Format(time.RFC3339))},
		},
	}, nil
}
