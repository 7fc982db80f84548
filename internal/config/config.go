package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"vsxbrowse/internal/eventbus"
	"vsxbrowse/internal/paging"
)

// DefaultRegistryURL is the public Open VSX instance
const DefaultRegistryURL = "https://open-vsx.org"

// Config represents the application configuration
type Config struct {
	Version  int              `toml:"version"`
	Registry RegistrySettings `toml:"registry"`
	List     ListSettings     `toml:"list"`
	Cache    CacheSettings    `toml:"cache"`
	Log      LogSettings      `toml:"log"`
}

// RegistrySettings configures the search endpoint
type RegistrySettings struct {
	URL     string   `toml:"url"`
	Timeout Duration `toml:"timeout"`
}

// ListSettings configures the paginated list
type ListSettings struct {
	PageSize        int      `toml:"page_size"`
	Debounce        Duration `toml:"debounce"`
	ScrollThreshold int      `toml:"scroll_threshold"` // rows from the end that trigger the next page
	Category        string   `toml:"category"`
}

// CacheSettings configures the on-disk response cache
type CacheSettings struct {
	Enabled bool     `toml:"enabled"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`
}

// LogSettings configures the log file
type LogSettings struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// Duration is a time.Duration written as "200ms" in TOML
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a config service rooted at the user config dir
func NewConfigService() ConfigService {
	return &configService{
		filePath: filepath.Join(appDir(os.UserConfigDir, ".config"), "config.toml"),
	}
}

// NewConfigServiceAt creates a config service for an explicit file
func NewConfigServiceAt(path string) ConfigService {
	return &configService{filePath: path}
}

// WithBus attaches an event bus for ConfigLoaded/ConfigSaved events
func WithBus(cs ConfigService, bus eventbus.EventBus) ConfigService {
	if c, ok := cs.(*configService); ok {
		c.bus = bus
	}
	return cs
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file, returning defaults when the
// file does not exist
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	cfg, err := cs.LoadFromPath(cs.filePath)
	if err != nil {
		return nil, err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{Path: cs.filePath})
	}

	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}

	return nil
}

// LoadFromPath loads configuration from a specific path. Missing keys keep
// their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	u, err := url.Parse(c.Registry.URL)
	if err != nil {
		return fmt.Errorf("registry url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("registry url %q must be an absolute http(s) url", c.Registry.URL)
	}
	if c.Registry.Timeout.Duration < 0 {
		return fmt.Errorf("registry timeout must not be negative")
	}
	if c.List.PageSize < 1 || c.List.PageSize > 100 {
		return fmt.Errorf("page size %d out of range 1..100", c.List.PageSize)
	}
	if c.List.Debounce.Duration < 0 {
		return fmt.Errorf("debounce must not be negative")
	}
	if c.List.ScrollThreshold < 0 {
		return fmt.Errorf("scroll threshold must not be negative")
	}
	if c.Cache.TTL.Duration < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cacheDir := filepath.Join(appDir(os.UserCacheDir, ".cache"), "search")
	logFile := filepath.Join(appDir(os.UserCacheDir, ".cache"), "vsxbrowse.log")

	return &Config{
		Version: 1,
		Registry: RegistrySettings{
			URL:     DefaultRegistryURL,
			Timeout: Duration{15 * time.Second},
		},
		List: ListSettings{
			PageSize:        10,
			Debounce:        Duration{paging.DefaultDebounce},
			ScrollThreshold: 3,
		},
		Cache: CacheSettings{
			Enabled: true,
			Dir:     cacheDir,
			TTL:     Duration{10 * time.Minute},
		},
		Log: LogSettings{
			File:  logFile,
			Level: "info",
		},
	}
}

// appDir resolves <base>/vsxbrowse, falling back to ~/<fallback>/vsxbrowse
func appDir(base func() (string, error), fallback string) string {
	dir, err := base()
	if err != nil {
		dir, err = os.UserHomeDir()
		if err != nil {
			dir = "."
		}
		dir = filepath.Join(dir, fallback)
	}
	return filepath.Join(dir, "vsxbrowse")
}
