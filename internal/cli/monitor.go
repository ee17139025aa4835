package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/asistente-rag/grupomon/internal/bus"
	"github.com/asistente-rag/grupomon/internal/channels"
	"github.com/asistente-rag/grupomon/internal/config"
	"github.com/asistente-rag/grupomon/internal/forwarder"
	"github.com/asistente-rag/grupomon/internal/monitor"
	"github.com/asistente-rag/grupomon/internal/notifier"
	"github.com/asistente-rag/grupomon/internal/registry"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Start the persistent group monitor",
	RunE:  runMonitor,
}

// monitorSignalNotify is swappable in tests.
var monitorSignalNotify = signal.Notify

func runMonitor(cmd *cobra.Command, args []string) error {
	printHeader("🚀 Starting persistent WhatsApp group monitor...")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	fmt.Printf("📊 Configuration:\n")
	fmt.Printf("   - Target groups: %d\n", len(cfg.Monitor.TargetGroups))
	fmt.Printf("   - Reconnect delay: %s (max %d attempts)\n", cfg.Monitor.ReconnectDelay, cfg.Monitor.MaxReconnectAttempts)
	fmt.Printf("   - Heartbeat: %s\n", cfg.Monitor.HeartbeatInterval)
	fmt.Printf("   - Ingestion API: %s\n", cfg.Ingest.Endpoint)
	if cfg.Ingest.KafkaBrokers != "" {
		fmt.Printf("   - Kafka mirror: %s (topic %s)\n", cfg.Ingest.KafkaBrokers, cfg.Ingest.KafkaTopic)
	}

	events := bus.NewEventBus()
	fwd := forwarder.New(cfg.Ingest)
	defer fwd.Close()

	ctrl := monitor.New(monitor.Options{
		Config:   cfg.Monitor,
		Events:   events,
		Registry: registry.New(),
		Forward:  fwd,
		Notifier: notifier.New(cfg.Pairing, cfg.Paths.QRFile),
		Factory: func(ctx context.Context, ev *bus.EventBus) (monitor.Client, error) {
			return channels.NewWhatsAppClient(ctx, cfg.Paths.SessionDB, ev)
		},
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Shutdown coordinator: first signal wins, repeats are ignored.
	sigChan := make(chan os.Signal, 1)
	monitorSignalNotify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR2)
	defer signal.Stop(sigChan)

	var once sync.Once
	go func() {
		for sig := range sigChan {
			once.Do(func() {
				fmt.Printf("\n🛑 Received %s, shutting down gracefully...\n", sig)
				cancel()
			})
		}
	}()

	if err := ctrl.Run(ctx); err != nil {
		fmt.Printf("❌ Monitor stopped: %v\n", err)
		return err
	}
	fmt.Println("✅ Monitor shut down cleanly")
	return nil
}
