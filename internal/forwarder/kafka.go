package forwarder

import (
	"context"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaSink mirrors classified messages to a Kafka topic. Writes are
// synchronous with a short timeout so a broker outage degrades to dropped
// deliveries instead of unbounded buffering.
type KafkaSink struct {
	writer *kafka.Writer
}

// NewKafkaSink creates a sink for the given comma-separated broker list.
func NewKafkaSink(brokers, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(strings.Split(brokers, ",")...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

// Publish writes one message keyed by group id.
func (s *KafkaSink) Publish(ctx context.Context, key string, value []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
}

// Close shuts the underlying writer down.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
