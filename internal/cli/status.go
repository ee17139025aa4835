package cli

import (
	"fmt"
	"os"

	"github.com/asistente-rag/grupomon/internal/config"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the resolved configuration and session state",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	path, _ := config.ConfigPath()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Config file:  ", path)
	fmt.Fprintln(out, "Session store:", cfg.Paths.SessionDB, sessionStoreState(cfg.Paths.SessionDB))
	fmt.Fprintln(out, "Ingestion API:", cfg.Ingest.Endpoint)
	if cfg.Ingest.KafkaBrokers != "" {
		fmt.Fprintln(out, "Kafka mirror: ", cfg.Ingest.KafkaBrokers, "topic", cfg.Ingest.KafkaTopic)
	}
	if cfg.Pairing.WebhookURL != "" {
		fmt.Fprintln(out, "Pair webhook: ", cfg.Pairing.WebhookURL)
	}
	fmt.Fprintln(out, "Target groups:")
	for _, name := range cfg.Monitor.TargetGroups {
		fmt.Fprintln(out, "  -", name)
	}
	return nil
}

func sessionStoreState(path string) string {
	if _, err := os.Stat(path); err != nil {
		return "(not paired yet)"
	}
	return "(present)"
}
