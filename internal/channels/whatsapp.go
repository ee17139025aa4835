// Package channels adapts chat platforms to the session controller.
package channels

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/asistente-rag/grupomon/internal/bus"
	"github.com/asistente-rag/grupomon/internal/registry"

	_ "modernc.org/sqlite"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// WhatsAppClient is a native WhatsApp session backed by whatsmeow. It is a
// receive-only client: lifecycle notifications and group messages are
// translated onto the event bus, nothing is ever sent into the chats.
type WhatsAppClient struct {
	client    *whatsmeow.Client
	container *sqlstore.Container
	events    *bus.EventBus
}

// NewWhatsAppClient opens (or creates) the session store at dbPath and builds
// a client wired to the given event bus. The session is not connected yet.
func NewWhatsAppClient(ctx context.Context, dbPath string, eventBus *bus.EventBus) (*WhatsAppClient, error) {
	dbLog := waLog.Stdout("Database", "WARN", true)
	clientLog := waLog.Stdout("Client", "INFO", true)

	os.MkdirAll(filepath.Dir(dbPath), 0o755)

	container, err := sqlstore.New(ctx, "sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbLog)
	if err != nil {
		return nil, fmt.Errorf("failed to init whatsapp db: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	w := &WhatsAppClient{
		client:    whatsmeow.NewClient(deviceStore, clientLog),
		container: container,
		events:    eventBus,
	}
	// The session controller owns reconnection; whatsmeow must not race it.
	w.client.EnableAutoReconnect = false
	w.client.AddEventHandler(w.handleEvent)
	return w, nil
}

// Connect opens the session. With no stored credentials it enters the pairing
// flow and relays QR codes as pairing-code events.
func (w *WhatsAppClient) Connect(ctx context.Context) error {
	if w.client.Store.ID == nil {
		// No session yet, need to pair.
		qrChan, err := w.client.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("failed to open QR channel: %w", err)
		}
		if err := w.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		go func() {
			for evt := range qrChan {
				switch evt.Event {
				case "code":
					w.events.PublishPairingCode(evt.Code)
				case "success":
					// PairSuccess arrives through the main handler.
				default:
					fmt.Println("WhatsApp: pairing event:", evt.Event)
				}
			}
		}()
		return nil
	}
	if err := w.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	return nil
}

// Release disconnects and closes the session store.
func (w *WhatsAppClient) Release() error {
	w.client.Disconnect()
	return w.container.Close()
}

// Probe is a lightweight liveness check against the socket.
func (w *WhatsAppClient) Probe(ctx context.Context) error {
	if !w.client.IsConnected() {
		return errors.New("whatsapp socket not connected")
	}
	return nil
}

// Groups lists all group conversations the account participates in.
func (w *WhatsAppClient) Groups(ctx context.Context) ([]registry.GroupInfo, error) {
	joined, err := w.client.GetJoinedGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list joined groups: %w", err)
	}
	out := make([]registry.GroupInfo, 0, len(joined))
	for _, g := range joined {
		out = append(out, registry.GroupInfo{
			ID:           g.JID.String(),
			Name:         g.GroupName.Name,
			Participants: len(g.Participants),
		})
	}
	return out, nil
}

func (w *WhatsAppClient) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.PairSuccess:
		w.events.PublishAuthenticated()

	case *events.Connected:
		w.events.PublishReady()

	case *events.Disconnected:
		w.events.PublishDisconnected("connection closed")

	case *events.StreamReplaced:
		w.events.PublishDisconnected("stream replaced by another session")

	case *events.LoggedOut:
		w.events.PublishAuthFailure(fmt.Sprintf("logged out: %v", v.Reason))

	case *events.ConnectFailure:
		w.events.PublishAuthFailure(fmt.Sprintf("connect failure: %v (%s)", v.Reason, v.Message))

	case *events.Message:
		w.handleMessage(v)
	}
}

func (w *WhatsAppClient) handleMessage(v *events.Message) {
	// Only group traffic from other participants is of interest.
	if v.Info.Chat.Server != types.GroupServer || v.Info.IsFromMe {
		return
	}

	body := extractBody(v.Message)
	if body == "" {
		return
	}

	kind := v.Info.Type
	if v.Info.MediaType != "" {
		kind = v.Info.MediaType
	}

	w.events.PublishMessage(&bus.IncomingMessage{
		GroupID:     v.Info.Chat.String(),
		SenderID:    v.Info.Sender.User,
		SenderName:  senderName(v),
		Body:        body,
		SentAt:      v.Info.Timestamp,
		Kind:        kind,
		HasMedia:    hasMedia(v.Message),
		IsForwarded: isForwarded(v.Message),
	})
}

func extractBody(m *waE2E.Message) string {
	switch {
	case m.GetConversation() != "":
		return m.GetConversation()
	case m.GetExtendedTextMessage().GetText() != "":
		return m.GetExtendedTextMessage().GetText()
	case m.GetImageMessage().GetCaption() != "":
		return m.GetImageMessage().GetCaption()
	case m.GetVideoMessage().GetCaption() != "":
		return m.GetVideoMessage().GetCaption()
	case m.GetDocumentMessage().GetCaption() != "":
		return m.GetDocumentMessage().GetCaption()
	}
	return ""
}

func hasMedia(m *waE2E.Message) bool {
	return m.GetImageMessage() != nil ||
		m.GetVideoMessage() != nil ||
		m.GetAudioMessage() != nil ||
		m.GetDocumentMessage() != nil ||
		m.GetStickerMessage() != nil
}

func isForwarded(m *waE2E.Message) bool {
	for _, ci := range []*waE2E.ContextInfo{
		m.GetExtendedTextMessage().GetContextInfo(),
		m.GetImageMessage().GetContextInfo(),
		m.GetVideoMessage().GetContextInfo(),
		m.GetDocumentMessage().GetContextInfo(),
	} {
		if ci.GetIsForwarded() {
			return true
		}
	}
	return false
}

func senderName(v *events.Message) string {
	if v.Info.PushName != "" {
		return v.Info.PushName
	}
	return "Usuario"
}
