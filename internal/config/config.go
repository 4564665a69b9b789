package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

// Config holds runtime options that are not part of the user's schedule.
type Config struct {
	DatabasePath  string
	LogFile       string
	FrameInterval time.Duration
	ChainDelay    time.Duration
	CompleteDelay time.Duration
}

type yamlConfig struct {
	DatabasePath    string `yaml:"database_path"`
	LogFile         string `yaml:"log_file"`
	FrameIntervalMs int    `yaml:"frame_interval_ms"`
	ChainDelayMs    int    `yaml:"chain_delay_ms"`
	CompleteDelayMs int    `yaml:"complete_delay_ms"`
}

// Default returns the built-in configuration.
func Default() Config {
	dataDir := defaultDataDir()
	return Config{
		DatabasePath:  filepath.Join(dataDir, "classtimer.db"),
		LogFile:       filepath.Join(dataDir, "classtimer.log"),
		FrameInterval: 100 * time.Millisecond,
		ChainDelay:    2 * time.Second,
		CompleteDelay: 3 * time.Second,
	}
}

// Load reads the YAML config at path, or the default location when path is empty.
// If the config file does not exist, defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		resolved, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = resolved
	}

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var fileData yamlConfig
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return cfg, fmt.Errorf("parse config yaml: %w", err)
	}

	applyYamlConfig(&cfg, fileData)
	return cfg, nil
}

// Save writes cfg as YAML to path, or the default location when path is empty.
func Save(path string, cfg Config) error {
	if path == "" {
		resolved, err := DefaultPath()
		if err != nil {
			return err
		}
		path = resolved
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlConfig{
		DatabasePath:    cfg.DatabasePath,
		LogFile:         cfg.LogFile,
		FrameIntervalMs: int(cfg.FrameInterval / time.Millisecond),
		ChainDelayMs:    int(cfg.ChainDelay / time.Millisecond),
		CompleteDelayMs: int(cfg.CompleteDelay / time.Millisecond),
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal config yaml: %w", err)
	}

	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// DefaultPath is the config file location under the user config directory.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, "classtimer", configFileName), nil
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".classtimer"
	}
	return filepath.Join(homeDir, ".classtimer")
}

func applyYamlConfig(cfg *Config, fileData yamlConfig) {
	if fileData.DatabasePath != "" {
		cfg.DatabasePath = fileData.DatabasePath
	}
	if fileData.LogFile != "" {
		cfg.LogFile = fileData.LogFile
	}
	// Anything faster than a frame every 10ms only burns CPU.
	if fileData.FrameIntervalMs >= 10 {
		cfg.FrameInterval = time.Duration(fileData.FrameIntervalMs) * time.Millisecond
	}
	if fileData.ChainDelayMs > 0 {
		cfg.ChainDelay = time.Duration(fileData.ChainDelayMs) * time.Millisecond
	}
	if fileData.CompleteDelayMs > 0 {
		cfg.CompleteDelay = time.Duration(fileData.CompleteDelayMs) * time.Millisecond
	}
}
