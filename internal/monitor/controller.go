// Package monitor owns the session lifecycle state machine: connect,
// pairing, reconnect with bounded retries, heartbeat supervision and
// dispatch of incoming group messages.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/asistente-rag/grupomon/internal/bus"
	"github.com/asistente-rag/grupomon/internal/classifier"
	"github.com/asistente-rag/grupomon/internal/config"
	"github.com/asistente-rag/grupomon/internal/forwarder"
	"github.com/asistente-rag/grupomon/internal/heartbeat"
	"github.com/asistente-rag/grupomon/internal/registry"
)

// State is the session lifecycle state.
type State string

// Session lifecycle states.
const (
	StateInitializing    State = "INITIALIZING"
	StateAwaitingPairing State = "AWAITING_PAIRING"
	StateAuthenticating  State = "AUTHENTICATING"
	StateReady           State = "READY"
	StateDisconnected    State = "DISCONNECTED"
	StateReconnecting    State = "RECONNECTING"
	StateFailed          State = "FAILED"
	StateShuttingDown    State = "SHUTTING_DOWN"
	StateTerminated      State = "TERMINATED"
)

// ErrReconnectExhausted is returned by Run when the bounded reconnect budget
// is spent. The process must exit non-zero so an external supervisor restarts
// it.
var ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

// Session is the lifecycle state owned exclusively by the controller.
type Session struct {
	State             State
	ReconnectAttempts int
	HeartbeatActive   bool
}

// Client is the platform capability the controller drives. A fresh Client is
// issued per reconnect cycle; exactly one is live at a time.
type Client interface {
	// Connect opens the session. Lifecycle progress is reported through
	// the event bus the client was built with.
	Connect(ctx context.Context) error
	// Release tears the session down. Never blocks on in-flight work.
	Release() error
	// Probe performs a lightweight liveness check.
	Probe(ctx context.Context) error
	// Groups lists all conversations visible to the session.
	Groups(ctx context.Context) ([]registry.GroupInfo, error)
}

// ClientFactory issues a fresh client wired to the given event bus.
type ClientFactory func(ctx context.Context, events *bus.EventBus) (Client, error)

// PairingNotifier publishes pairing codes and fatal alerts to the operator.
type PairingNotifier interface {
	Notify(ctx context.Context, code string)
	AlertFatal(ctx context.Context, reason string)
}

// MessageForwarder delivers a classified message downstream.
type MessageForwarder interface {
	Forward(ctx context.Context, p *forwarder.Payload)
}

// Options wires a Controller.
type Options struct {
	Config   config.MonitorConfig
	Events   *bus.EventBus
	Registry *registry.Registry
	Forward  MessageForwarder
	Notifier PairingNotifier
	Factory  ClientFactory

	// Classify defaults to classifier.Classify.
	Classify func(body string, hasMedia bool) classifier.Result
}

// Controller is the single consumer of platform lifecycle events. All state
// transitions happen on its Run goroutine, in event arrival order.
type Controller struct {
	cfg      config.MonitorConfig
	events   *bus.EventBus
	registry *registry.Registry
	forward  MessageForwarder
	notifier PairingNotifier
	factory  ClientFactory
	classify func(string, bool) classifier.Result
	hb       *heartbeat.Monitor

	client  Client
	session Session
	log     *slog.Logger
}

// New creates a controller. Run must be called to start it.
func New(opts Options) *Controller {
	classify := opts.Classify
	if classify == nil {
		classify = classifier.Classify
	}
	return &Controller{
		cfg:      opts.Config,
		events:   opts.Events,
		registry: opts.Registry,
		forward:  opts.Forward,
		notifier: opts.Notifier,
		factory:  opts.Factory,
		classify: classify,
		hb:       heartbeat.New(opts.Config.HeartbeatInterval),
		session:  Session{State: StateInitializing},
		log:      slog.Default().With("component", "monitor"),
	}
}

// Session returns a copy of the current session state. Only meaningful from
// the Run goroutine or after Run returned; exposed for observability.
func (c *Controller) Session() Session {
	return c.session
}

// Run drives the state machine until ctx is cancelled (graceful shutdown,
// returns nil) or the reconnect budget is exhausted (returns
// ErrReconnectExhausted).
func (c *Controller) Run(ctx context.Context) error {
	c.transition(StateInitializing)
	if err := c.initClient(ctx); err != nil {
		c.log.Warn("initial connect failed", "error", err)
		if err := c.reconnect(ctx); err != nil {
			return c.finish(ctx, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return nil

		case reason := <-c.hb.Failures():
			// A failed probe is handled exactly like a platform
			// disconnect.
			c.log.Warn("heartbeat failure, treating as disconnect", "reason", reason)
			if err := c.onDisconnected(ctx, reason); err != nil {
				return c.finish(ctx, err)
			}

		case ev := <-c.events.Events():
			if err := c.handleEvent(ctx, ev); err != nil {
				return c.finish(ctx, err)
			}
		}
	}
}

func (c *Controller) handleEvent(ctx context.Context, ev bus.Event) error {
	switch ev.Kind {
	case bus.EventPairingCode:
		c.transition(StateAwaitingPairing)
		go c.notifier.Notify(ctx, ev.Code)

	case bus.EventAuthenticated:
		c.transition(StateAuthenticating)

	case bus.EventReady:
		c.onReady(ctx)

	case bus.EventAuthFailure:
		// Auth failures skip DISCONNECTED and go straight into the
		// recovery cycle.
		c.log.Warn("authentication failure", "reason", ev.Reason)
		c.stopHeartbeat()
		return c.reconnect(ctx)

	case bus.EventDisconnected:
		return c.onDisconnected(ctx, ev.Reason)

	case bus.EventMessage:
		c.onMessage(ctx, ev.Message)
	}
	return nil
}

func (c *Controller) onReady(ctx context.Context) {
	c.transition(StateReady)
	c.session.ReconnectAttempts = 0

	// One-time scan: membership survives reconnects untouched.
	if !c.registry.Populated() {
		visible, err := c.client.Groups(ctx)
		if err != nil {
			c.log.Error("group scan failed", "error", err)
		} else {
			n := c.registry.Populate(visible, c.cfg.TargetGroups)
			c.log.Info("monitoring groups", "count", n)
		}
	}

	c.drainHeartbeat()
	c.hb.Start(ctx, func(probeCtx context.Context) error {
		return c.client.Probe(probeCtx)
	})
	c.session.HeartbeatActive = true
}

// onDisconnected covers explicit disconnects, auth failures and heartbeat
// failures. It blocks through the fixed reconnect delay; lifecycle events
// arriving meanwhile are processed after the new client is issued.
func (c *Controller) onDisconnected(ctx context.Context, reason string) error {
	c.stopHeartbeat()
	c.transition(StateDisconnected)
	c.log.Warn("session lost", "reason", reason)
	return c.reconnect(ctx)
}

// reconnect runs one bounded, fixed-delay recovery cycle.
func (c *Controller) reconnect(ctx context.Context) error {
	c.transition(StateReconnecting)
	if c.session.ReconnectAttempts >= c.cfg.MaxReconnectAttempts {
		c.transition(StateFailed)
		c.releaseClient()
		return ErrReconnectExhausted
	}
	c.session.ReconnectAttempts++
	c.log.Info("reconnecting",
		"attempt", c.session.ReconnectAttempts,
		"max", c.cfg.MaxReconnectAttempts,
		"delay", c.cfg.ReconnectDelay)

	c.releaseClient()

	// Fixed delay on purpose; the retry cadence is observable behavior.
	select {
	case <-ctx.Done():
		c.shutdown()
		return nil
	case <-time.After(c.cfg.ReconnectDelay):
	}

	c.transition(StateInitializing)
	if err := c.initClient(ctx); err != nil {
		c.log.Warn("reconnect attempt failed", "error", err)
		return c.reconnect(ctx)
	}
	return nil
}

func (c *Controller) onMessage(ctx context.Context, msg *bus.IncomingMessage) {
	if c.session.State != StateReady || msg == nil {
		return
	}
	if !c.registry.Has(msg.GroupID) {
		return
	}
	// Fan out per message; a slow ingestion endpoint must not hold up the
	// lifecycle loop or other messages.
	go c.handleMessage(ctx, msg)
}

func (c *Controller) handleMessage(ctx context.Context, msg *bus.IncomingMessage) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("message handler panic", "group", msg.GroupID, "panic", r)
		}
	}()

	res := c.classify(msg.Body, msg.HasMedia)
	if !res.Academic {
		return
	}

	groupName := c.registry.Name(msg.GroupID)
	c.registry.Touch(msg.GroupID)
	c.log.Info("academic message", "group", groupName, "score", res.Score)

	c.forward.Forward(ctx, &forwarder.Payload{
		Platform:    "whatsapp",
		GroupName:   groupName,
		GroupID:     msg.GroupID,
		UserID:      msg.SenderID,
		UserName:    msg.SenderName,
		Message:     msg.Body,
		Timestamp:   msg.SentAt.Format(time.RFC3339),
		MessageType: msg.Kind,
		HasMedia:    msg.HasMedia,
		IsForwarded: msg.IsForwarded,
	})
}

func (c *Controller) initClient(ctx context.Context) error {
	client, err := c.factory(ctx, c.events)
	if err != nil {
		return fmt.Errorf("issue client: %w", err)
	}
	c.client = client
	if err := client.Connect(ctx); err != nil {
		c.releaseClient()
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

func (c *Controller) releaseClient() {
	if c.client == nil {
		return
	}
	if err := c.client.Release(); err != nil {
		// Best-effort: release errors never block recovery or shutdown.
		c.log.Warn("client release failed", "error", err)
	}
	c.client = nil
}

func (c *Controller) stopHeartbeat() {
	c.hb.Stop()
	c.session.HeartbeatActive = false
	c.drainHeartbeat()
}

// drainHeartbeat discards a stale failure left over from a previous READY
// interval so it cannot tear down the next session.
func (c *Controller) drainHeartbeat() {
	select {
	case <-c.hb.Failures():
	default:
	}
}

func (c *Controller) shutdown() {
	if c.session.State == StateTerminated {
		return
	}
	c.transition(StateShuttingDown)
	c.stopHeartbeat()
	c.releaseClient()
	c.transition(StateTerminated)
}

// finish guarantees teardown on the fatal path.
func (c *Controller) finish(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	c.notifier.AlertFatal(ctx, err.Error())
	return err
}

func (c *Controller) transition(next State) {
	if c.session.State == next {
		return
	}
	c.log.Info("state transition", "from", string(c.session.State), "to", string(next))
	c.session.State = next
}
