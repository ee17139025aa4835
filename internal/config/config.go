// Package config provides configuration types and loading for grupomon.
package config

import "time"

// Config is the root configuration struct.
type Config struct {
	Paths   PathsConfig   `json:"paths"`
	Monitor MonitorConfig `json:"monitor"`
	Ingest  IngestConfig  `json:"ingest"`
	Pairing PairingConfig `json:"pairing"`
}

// PathsConfig groups filesystem locations.
type PathsConfig struct {
	SessionDB string `json:"sessionDb" envconfig:"SESSION_DB"`
	QRFile    string `json:"qrFile" envconfig:"QR_FILE"`
}

// MonitorConfig groups the session lifecycle and group monitoring settings.
// The reconnect delay is a fixed interval, deliberately not a backoff: the
// observable retry timing is part of the contract.
type MonitorConfig struct {
	TargetGroups         []string      `json:"targetGroups" envconfig:"TARGET_GROUPS"`
	ReconnectDelay       time.Duration `json:"reconnectDelay" envconfig:"RECONNECT_DELAY"`
	MaxReconnectAttempts int           `json:"maxReconnectAttempts" envconfig:"MAX_RECONNECT_ATTEMPTS"`
	HeartbeatInterval    time.Duration `json:"heartbeatInterval" envconfig:"HEARTBEAT_INTERVAL"`
}

// IngestConfig configures the downstream ingestion sinks. The HTTP endpoint
// is always active; the Kafka sink only when brokers are set.
type IngestConfig struct {
	Endpoint     string        `json:"endpoint" envconfig:"ENDPOINT"`
	Timeout      time.Duration `json:"timeout" envconfig:"TIMEOUT"`
	KafkaBrokers string        `json:"kafkaBrokers" envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string        `json:"kafkaTopic" envconfig:"KAFKA_TOPIC"`
}

// PairingConfig configures where pairing codes and operator alerts go.
// Both webhooks are optional and strictly best-effort.
type PairingConfig struct {
	WebhookURL      string `json:"webhookUrl" envconfig:"WEBHOOK_URL"`
	SlackWebhookURL string `json:"slackWebhookUrl" envconfig:"SLACK_WEBHOOK_URL"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			SessionDB: "~/.grupomon/whatsapp.db",
			QRFile:    "~/.grupomon/pairing-qr.png",
		},
		Monitor: MonitorConfig{
			TargetGroups: []string{
				"Metalurgia UNSAAC 2025",
				"CF Metalurgia - Académico",
				"Dudas Metalurgia",
				"Laboratorio Metalurgia",
				"Proyectos de Grado",
			},
			ReconnectDelay:       30 * time.Second,
			MaxReconnectAttempts: 10,
			HeartbeatInterval:    60 * time.Second,
		},
		Ingest: IngestConfig{
			Endpoint:   "http://localhost:8000/ingest/messages",
			Timeout:    5 * time.Second,
			KafkaTopic: "grupomon.messages",
		},
	}
}
