// Package forwarder delivers classified messages to the ingestion endpoint.
//
// Delivery is strictly fire-and-forget: any non-200 response, timeout or
// network error is logged and the message is dropped. Nothing here may ever
// stall or crash message processing.
package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/asistente-rag/grupomon/internal/config"
	"github.com/google/uuid"
)

// Payload matches the ingestion endpoint contract.
type Payload struct {
	Platform    string `json:"platform"`
	GroupName   string `json:"group_name"`
	GroupID     string `json:"group_id"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	MessageType string `json:"message_type"`
	HasMedia    bool   `json:"has_media"`
	IsForwarded bool   `json:"is_forwarded"`
}

// Forwarder posts payloads to the ingestion HTTP endpoint and, when brokers
// are configured, mirrors them to a Kafka topic.
type Forwarder struct {
	endpoint string
	client   *http.Client
	kafka    *KafkaSink
}

// New creates a forwarder from the ingest configuration.
func New(cfg config.IngestConfig) *Forwarder {
	f := &Forwarder{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.KafkaBrokers != "" {
		f.kafka = NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
	}
	return f
}

// Forward delivers one payload to all configured sinks. Failures are logged
// and swallowed; there is no retry and no queueing.
func (f *Forwarder) Forward(ctx context.Context, p *Payload) {
	deliveryID := uuid.NewString()

	body, err := json.Marshal(p)
	if err != nil {
		slog.Error("forwarder: marshal failed", "delivery", deliveryID, "error", err)
		return
	}

	if err := f.post(ctx, body); err != nil {
		slog.Warn("forwarder: ingestion delivery dropped", "delivery", deliveryID, "group", p.GroupName, "error", err)
	} else {
		slog.Info("forwarder: message delivered", "delivery", deliveryID, "group", p.GroupName)
	}

	if f.kafka != nil {
		if err := f.kafka.Publish(ctx, p.GroupID, body); err != nil {
			slog.Warn("forwarder: kafka delivery dropped", "delivery", deliveryID, "group", p.GroupName, "error", err)
		}
	}
}

func (f *Forwarder) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	// Only a plain 200 counts as delivered.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Close releases the Kafka writer if one was opened.
func (f *Forwarder) Close() error {
	if f.kafka != nil {
		return f.kafka.Close()
	}
	return nil
}
