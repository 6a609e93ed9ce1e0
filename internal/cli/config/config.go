package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"github.com/Vdnsh/groq-qna/pkg/kvstore"
)

const (
	// DefaultServer is the API Server address used when none is configured
	DefaultServer = "http://localhost:8080"
	// HomeEnv overrides the configuration directory (~/.voxctl)
	HomeEnv = "VOXCTL_HOME"
)

// Config stores CLI configuration
type Config struct {
	Server string `json:"server"` // API Server address

	// Store is where chats, the active chat and the selected voice are kept
	Store kvstore.Config `json:"store"`

	// Player overrides the audio player command; empty means auto-detect
	Player     string   `json:"player,omitempty"`
	PlayerArgs []string `json:"player_args,omitempty"`

	// ChunkSize is the narration chunk size in characters
	ChunkSize int `json:"chunk_size,omitempty"`

	// AutoSpeak reads every new answer aloud in the chat TUI
	AutoSpeak bool `json:"auto_speak,omitempty"`

	// StripMarkdown removes markdown markers and emoji before narration
	StripMarkdown bool `json:"strip_markdown,omitempty"`
}

// Dir returns the configuration directory
func Dir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".voxctl"), nil
}

// GetConfigPath returns the configuration file path (~/.voxctl/config.json)
func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LogPath returns the CLI log file path (~/.voxctl/voxctl.log)
func LogPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "voxctl.log"), nil
}

// Default returns the configuration used when no file exists
func Default() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return &Config{
		Server: DefaultServer,
		Store: kvstore.Config{
			Driver: kvstore.DriverSQLite,
			Path:   filepath.Join(dir, "chats.db"),
		},
	}, nil
}

// Load loads configuration from file
func Load() (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	configFile, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configFile)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := sonic.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Use defaults for anything cleared in the file
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.Store.Driver == "" {
		def, _ := Default()
		cfg.Store = def.Store
	}

	return cfg, nil
}

// Save saves configuration to file
func (c *Config) Save() error {
	configFile, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := sonic.ConfigStd.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: user read/write only
	if err := os.WriteFile(configFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
