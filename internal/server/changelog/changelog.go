// Package changelog announces accepted premium submissions to downstream
// consumers over Kafka.
package changelog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
	json "github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
)

// Publisher receives every record after it is in the ledger.
type Publisher interface {
	Publish(ctx context.Context, rec premium.SubmissionRecord) error
	Close() error
}

// Nop is used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, premium.SubmissionRecord) error { return nil }
func (Nop) Close() error                                            { return nil }

// kafkaMessageWriter is the part of kafka.Writer we use; tests swap it.
type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per record, keyed by company/plate so all
// submissions for a plate land in the same partition.
type KafkaPublisher struct {
	writer kafkaMessageWriter
}

// NewKafkaPublisher takes a comma-separated broker list.
func NewKafkaPublisher(brokers string, topic string) *KafkaPublisher {
	var addrs []string
	for _, a := range strings.Split(brokers, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(addrs...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 5 * time.Second,
	}}
}

func newKafkaPublisherWith(w kafkaMessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (k *KafkaPublisher) Publish(ctx context.Context, rec premium.SubmissionRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rec.Company + "/" + rec.Plate),
		Value: b,
		Time:  rec.Timestamp,
	}); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error { return k.writer.Close() }
