package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	LogLevel       string   `json:"log_level"`
	Marker         string   `json:"marker"`
	MaxFileSize    int64    `json:"max_file_size"`
	ChunkSize      int      `json:"chunk_size"`
	ParseTimeoutMS int      `json:"parse_timeout_ms"`
	MaxConcurrent  int      `json:"max_concurrent"`
	TokenModel     string   `json:"token_model"`
	Sources        []string `json:"sources"`
	Refresh        struct {
		Enabled  bool   `json:"enabled"`
		Schedule string `json:"schedule"`
	} `json:"refresh"`
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".browsechat", "config.json")
}

func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LogLevel = "info"
	cfg.Marker = "Me"
	cfg.MaxFileSize = 10 << 20
	cfg.ChunkSize = 1 << 20
	cfg.ParseTimeoutMS = 5000
	cfg.MaxConcurrent = 2
	cfg.TokenModel = "gpt-4"
	cfg.Refresh.Schedule = "@every 5m"

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := writeDefaults(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if marker := os.Getenv("BROWSECHAT_MARKER"); marker != "" {
		cfg.Marker = marker
	}
	if level := os.Getenv("BROWSECHAT_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if size := os.Getenv("BROWSECHAT_MAX_FILE_SIZE"); size != "" {
		n, err := strconv.ParseInt(size, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid BROWSECHAT_MAX_FILE_SIZE: %w", err)
		}
		cfg.MaxFileSize = n
	}

	return cfg, nil
}

func writeDefaults(path string, cfg *Config) error {
	return Save(path, cfg)
}

// Save writes the config as indented JSON, atomically via temp file + rename.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
