// Package notifier publishes pairing codes and operator alerts.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/asistente-rag/grupomon/internal/config"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/slack-go/slack"
)

// pairingPayload is the webhook body for a freshly issued pairing code.
type pairingPayload struct {
	Code      string `json:"code"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

// Notifier renders pairing codes locally and relays them to the optional
// webhooks. All outbound deliveries are best-effort.
type Notifier struct {
	cfg    config.PairingConfig
	qrPath string
	client *http.Client

	// postSlack is swappable in tests.
	postSlack func(ctx context.Context, url string, msg *slack.WebhookMessage) error
}

// New creates a notifier. qrPath is where the pairing QR PNG is written.
func New(cfg config.PairingConfig, qrPath string) *Notifier {
	return &Notifier{
		cfg:       cfg,
		qrPath:    qrPath,
		client:    &http.Client{Timeout: 10 * time.Second},
		postSlack: slack.PostWebhookContext,
	}
}

// Notify renders the pairing code locally and relays it to the configured
// webhooks. Failures are logged and otherwise ignored.
func (n *Notifier) Notify(ctx context.Context, code string) {
	fmt.Printf("📱 Pairing code issued: %s\n", code)

	if n.qrPath != "" {
		os.MkdirAll(filepath.Dir(n.qrPath), 0o755)
		if err := qrcode.WriteFile(code, qrcode.Medium, 512, n.qrPath); err != nil {
			fmt.Printf("⚠️ Could not write pairing QR: %v\n", err)
		} else {
			fmt.Printf("🖼️  Pairing QR saved to %s, scan it from the phone\n", n.qrPath)
		}
	}

	if n.cfg.WebhookURL != "" {
		payload := pairingPayload{
			Code:      code,
			Timestamp: time.Now().Format(time.RFC3339),
			Message:   "Escanea este código desde tu WhatsApp para mantener la conexión continua",
		}
		if err := n.postJSON(ctx, n.cfg.WebhookURL, payload); err != nil {
			fmt.Printf("⚠️ Pairing webhook delivery failed: %v\n", err)
		} else {
			fmt.Println("✅ Pairing code relayed to webhook")
		}
	}

	if n.cfg.SlackWebhookURL != "" {
		n.slack(ctx, fmt.Sprintf(":key: grupomon pairing code issued: `%s`", code))
	}
}

// AlertFatal relays a fatal condition to the Slack webhook, if configured.
// The process is about to exit; this is the operator's last signal.
func (n *Notifier) AlertFatal(ctx context.Context, reason string) {
	fmt.Printf("❌ Fatal: %s\n", reason)
	if n.cfg.SlackWebhookURL != "" {
		n.slack(ctx, fmt.Sprintf(":rotating_light: grupomon down: %s", reason))
	}
}

func (n *Notifier) slack(ctx context.Context, text string) {
	if err := n.postSlack(ctx, n.cfg.SlackWebhookURL, &slack.WebhookMessage{Text: text}); err != nil {
		fmt.Printf("⚠️ Slack alert delivery failed: %v\n", err)
	}
}

func (n *Notifier) postJSON(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
