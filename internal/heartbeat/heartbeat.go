// Package heartbeat probes a live session for silent connection loss.
package heartbeat

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Monitor runs a periodic liveness probe while the session is ready. The
// first failed probe is reported on Failures and the timer stops; Running is
// false by the time the report is delivered. The session controller treats
// that report exactly like a platform disconnect.
type Monitor struct {
	interval time.Duration
	failures chan string

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
}

// New creates a stopped monitor.
func New(interval time.Duration) *Monitor {
	return &Monitor{
		interval: interval,
		failures: make(chan string, 1),
	}
}

// Failures delivers the reason of a failed probe.
func (m *Monitor) Failures() <-chan string {
	return m.failures
}

// Start begins probing every interval. A second Start without an intervening
// Stop is a no-op.
func (m *Monitor) Start(ctx context.Context, probe func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	tickCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-tickCtx.Done():
				return
			case <-ticker.C:
				if err := probe(tickCtx); err != nil {
					slog.Warn("heartbeat: probe failed", "error", err)
					m.mu.Lock()
					m.running = false
					if m.cancel != nil {
						m.cancel()
						m.cancel = nil
					}
					m.mu.Unlock()
					select {
					case m.failures <- err.Error():
					default:
					}
					return
				}
				slog.Debug("heartbeat: ok")
			}
		}
	}()
}

// Stop cancels the pending timer. In-flight probes are not waited for.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.cancel()
	m.cancel = nil
	m.running = false
}

// Running reports whether the probe timer is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
