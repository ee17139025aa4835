// Package main is the entry point for the grupomon CLI.
package main

import (
	"os"

	"github.com/asistente-rag/grupomon/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
