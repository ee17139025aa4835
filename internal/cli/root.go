package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/asistente-rag/grupomon/internal/cli.version=1.2.3"
	version = "1.0.0"
	logo    = "\n" +
		"                                                    \n" +
		"   __ _ _ __ _   _ _ __   ___  _ __ ___   ___  _ __ \n" +
		"  / _` | '__| | | | '_ \\ / _ \\| '_ ` _ \\ / _ \\| '_ \\\n" +
		" | (_| | |  | |_| | |_) | (_) | | | | | | (_) | | | |\n" +
		"  \\__, |_|   \\__,_| .__/ \\___/|_| |_| |_|\\___/|_| |_|\n" +
		"  |___/           |_|                                \n"
)

var rootCmd = &cobra.Command{
	Use:   "grupomon",
	Short: "grupomon - Persistent WhatsApp group monitor",
	Long:  color.CyanString(logo) + "\nMonitors academic WhatsApp groups and forwards relevant messages to the RAG ingestion API.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the grupomon version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "grupomon", version)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(monitorCmd)
}

func printHeader(title string) {
	color.Cyan(logo)
	fmt.Println(title)
}
