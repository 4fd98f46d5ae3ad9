package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment" validate:"omitempty,oneof=development production"`
	Language    string           `toml:"language"` // Language code for metadata messages, e.g. "en"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Games       []GameConfig     `toml:"games" validate:"min=1,dive"`
	DefaultGame string           `toml:"default_game"` // Folder name of the game selected at startup
	Masterlist  MasterlistConfig `toml:"masterlist"`
	WebSocket   WebSocketConfig  `toml:"websocket"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for log lines
}

// GameConfig describes one supported game install.
type GameConfig struct {
	Name           string `toml:"name" validate:"required"`   // Display name, e.g. "TES V: Skyrim"
	Folder         string `toml:"folder" validate:"required"` // Folder id used by clients, e.g. "Skyrim"
	Type           string `toml:"type" validate:"omitempty,oneof=tes4 tes5 fo3 fonv"`
	MasterlistPath string `toml:"masterlist_path"`            // Metadata document for the community layer
	UserlistPath   string `toml:"userlist_path"`              // Metadata document for the user layer
	PluginsPath    string `toml:"plugins_path"`               // Install manifest listing plugins in load order
}

// MasterlistConfig controls the reload watcher for masterlist documents.
type MasterlistConfig struct {
	ReloadSchedule string `toml:"reload_schedule"` // Cron schedule; empty disables the watcher
}

// WebSocketConfig controls the query transport.
type WebSocketConfig struct {
	RateLimit string `toml:"rate_limit"` // Minimum interval between queries per connection, e.g. "100ms"
	Burst     int    `toml:"burst"`      // Query burst allowance per connection
}

// NewDefaultConfig returns the built-in defaults that config files, env
// vars and flags override in that order.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Language:    "en",
		Server: ServerConfig{
			Port: 5050,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/loot.db",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Masterlist: MasterlistConfig{
			ReloadSchedule: "@every 1m",
		},
		WebSocket: WebSocketConfig{
			RateLimit: "50ms",
			Burst:     10,
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> files (in
// order, later files override earlier ones) -> environment variables.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the assembled configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ApplyFlagOverrides applies command-line flag values. Flags have the
// highest priority.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("LOOT_ENV"); env != "" {
		config.Environment = env
	}
	if lang := os.Getenv("LOOT_LANGUAGE"); lang != "" {
		config.Language = lang
	}
	if port := os.Getenv("LOOT_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("LOOT_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if badgerPath := os.Getenv("LOOT_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if level := os.Getenv("LOOT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("LOOT_LOG_OUTPUT"); output != "" {
		var outputs []string
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
	if game := os.Getenv("LOOT_DEFAULT_GAME"); game != "" {
		config.DefaultGame = game
	}
}

// FindGame returns the configured game with the given folder id.
func (c *Config) FindGame(folder string) (GameConfig, bool) {
	for _, game := range c.Games {
		if strings.EqualFold(game.Folder, folder) {
			return game, true
		}
	}
	return GameConfig{}, false
}
