package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/asistente-rag/grupomon/internal/config"
	"github.com/slack-go/slack"
)

func TestNotifyWritesQRAndPostsWebhook(t *testing.T) {
	var payload pairingPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("bad webhook body: %v", err)
		}
	}))
	defer srv.Close()

	qrPath := filepath.Join(t.TempDir(), "qr", "pairing-qr.png")
	n := New(config.PairingConfig{WebhookURL: srv.URL}, qrPath)
	n.Notify(context.Background(), "2@AbCdEf123456")

	if payload.Code != "2@AbCdEf123456" {
		t.Errorf("webhook code = %q, want the pairing code", payload.Code)
	}
	if payload.Message == "" {
		t.Errorf("webhook message should carry the operator instruction")
	}
	if _, err := time.Parse(time.RFC3339, payload.Timestamp); err != nil {
		t.Errorf("webhook timestamp %q is not RFC3339: %v", payload.Timestamp, err)
	}

	info, err := os.Stat(qrPath)
	if err != nil {
		t.Fatalf("pairing QR was not written: %v", err)
	}
	if info.Size() == 0 {
		t.Errorf("pairing QR file is empty")
	}
}

func TestNotifyWithoutWebhooksIsLocalOnly(t *testing.T) {
	qrPath := filepath.Join(t.TempDir(), "pairing-qr.png")
	n := New(config.PairingConfig{}, qrPath)
	n.postSlack = func(ctx context.Context, url string, msg *slack.WebhookMessage) error {
		t.Errorf("slack must not be called without a webhook URL")
		return nil
	}
	n.Notify(context.Background(), "2@AbCdEf123456")
	if _, err := os.Stat(qrPath); err != nil {
		t.Errorf("pairing QR was not written: %v", err)
	}
}

func TestAlertFatalPostsSlack(t *testing.T) {
	var gotURL, gotText string
	n := New(config.PairingConfig{SlackWebhookURL: "https://hooks.slack.com/services/T/B/x"}, "")
	n.postSlack = func(ctx context.Context, url string, msg *slack.WebhookMessage) error {
		gotURL = url
		gotText = msg.Text
		return nil
	}

	n.AlertFatal(context.Background(), "reconnect attempts exhausted")

	if gotURL != "https://hooks.slack.com/services/T/B/x" {
		t.Errorf("slack URL = %q", gotURL)
	}
	if gotText == "" || gotText == "reconnect attempts exhausted" {
		t.Errorf("slack text should wrap the reason, got %q", gotText)
	}
}

func TestNotifySurvivesWebhookFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := New(config.PairingConfig{WebhookURL: srv.URL}, "")
	// Failures are printed, never returned or panicked.
	n.Notify(context.Background(), "2@AbCdEf123456")
}
