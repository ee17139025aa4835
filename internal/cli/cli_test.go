package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out.String(), "grupomon "+version) {
		t.Errorf("version output = %q", out.String())
	}
}

func TestStatusCommandWithDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GRUPOMON_CONFIG", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"status"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("status: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "(not paired yet)") {
		t.Errorf("fresh home should report an unpaired session store, got:\n%s", got)
	}
	if !strings.Contains(got, "http://localhost:8000/ingest/messages") {
		t.Errorf("status should print the default ingestion endpoint, got:\n%s", got)
	}
	if !strings.Contains(got, "Dudas Metalurgia") {
		t.Errorf("status should list the target groups, got:\n%s", got)
	}
}
