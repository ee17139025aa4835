package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the default config directory name.
	ConfigDir = ".grupomon"
	// ConfigFile is the default config file name.
	ConfigFile = "config.json"
)

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("GRUPOMON_CONFIG")); explicit != "" {
		if strings.HasPrefix(explicit, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(home, explicit[1:]), nil
		}
		return explicit, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDir, ConfigFile), nil
}

// Load loads the configuration from file and environment variables.
// Priority: environment > file > defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Load process env vars from ~/.config/grupomon/env (and fallbacks) first.
	LoadEnvFileCandidates()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil // use defaults if we can't find the config path
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	envconfig.Process("GRUPOMON_PATHS", &cfg.Paths)
	envconfig.Process("GRUPOMON_MONITOR", &cfg.Monitor)
	envconfig.Process("GRUPOMON_INGEST", &cfg.Ingest)
	envconfig.Process("GRUPOMON_PAIRING", &cfg.Pairing)

	// Legacy env names kept for older deployments.
	if cfg.Ingest.Endpoint == DefaultConfig().Ingest.Endpoint {
		if v := strings.TrimSpace(os.Getenv("RAG_API_URL")); v != "" {
			cfg.Ingest.Endpoint = v
		}
	}
	if cfg.Pairing.WebhookURL == "" {
		if v := strings.TrimSpace(os.Getenv("QR_WEBHOOK_URL")); v != "" {
			cfg.Pairing.WebhookURL = v
		}
	}

	expandHome(&cfg.Paths.SessionDB)
	expandHome(&cfg.Paths.QRFile)

	return cfg, nil
}

// Save writes the configuration to the config file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func expandHome(p *string) {
	if strings.HasPrefix(*p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			*p = filepath.Join(home, (*p)[1:])
		}
	}
}
