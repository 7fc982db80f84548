package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"vsxbrowse/internal/config"
	"vsxbrowse/internal/domain"
	"vsxbrowse/internal/eventbus"
	"vsxbrowse/internal/logging"
	"vsxbrowse/internal/paging"
	"vsxbrowse/internal/registry"
)

// overlayKeys are the flags that may also come from VSXBROWSE_* variables
var overlayKeys = []string{
	"config", "registry", "page-size", "debounce", "category", "log-file", "log-level", "no-cache",
}

func addOverlayFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "config file (default is the user config dir)")
	flags.String("registry", "", "registry base URL")
	flags.Int("page-size", 0, "results fetched per page")
	flags.Duration("debounce", 0, "quiet period before a changed query is searched")
	flags.String("category", "", "restrict results to one category")
	flags.String("log-file", "", "log file path")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Bool("no-cache", false, "bypass the on-disk response cache")
}

func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	for _, name := range overlayKeys {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			return nil, err
		}
	}
	v.SetEnvPrefix("VSXBROWSE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v, nil
}

// configService picks the file named by --config or the default location
func configService(v *viper.Viper) config.ConfigService {
	if path := strings.TrimSpace(v.GetString("config")); path != "" {
		return config.NewConfigServiceAt(path)
	}
	return config.NewConfigService()
}

// loadConfig reads the config file and applies flag and env overrides
func loadConfig(v *viper.Viper) (*config.Config, string, error) {
	svc := configService(v)
	cfg, err := svc.Load()
	if err != nil {
		return nil, "", err
	}

	if v.IsSet("registry") {
		cfg.Registry.URL = v.GetString("registry")
	}
	if v.IsSet("page-size") {
		cfg.List.PageSize = v.GetInt("page-size")
	}
	if v.IsSet("debounce") {
		cfg.List.Debounce = config.Duration{Duration: v.GetDuration("debounce")}
	}
	if v.IsSet("category") {
		cfg.List.Category = v.GetString("category")
	}
	if v.IsSet("log-file") {
		cfg.Log.File = v.GetString("log-file")
	}
	if v.IsSet("log-level") {
		cfg.Log.Level = v.GetString("log-level")
	}
	if v.GetBool("no-cache") {
		cfg.Cache.Enabled = false
	}

	category, ok := domain.LookupCategory(cfg.List.Category)
	if !ok {
		return nil, "", fmt.Errorf("unknown category %q", cfg.List.Category)
	}
	cfg.List.Category = category

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, svc.Path(), nil
}

// app holds everything a command needs once configuration is settled
type app struct {
	cfg      *config.Config
	cfgPath  string
	logger   *zap.Logger
	bus      eventbus.EventBus
	provider paging.SearchProvider[domain.Extension]
	cache    *registry.CachingProvider // nil when caching is off

	closeLog func()
}

func newApp(v *viper.Viper) (*app, error) {
	cfg, path, err := loadConfig(v)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	bus := eventbus.New(logger)
	subscribeLogging(bus, logger)
	if _, err := os.Stat(path); err == nil {
		bus.Publish(eventbus.ConfigLoadedEvent{Path: path})
	}

	client, err := registry.NewClient(cfg.Registry.URL,
		registry.WithTimeout(cfg.Registry.Timeout.Duration),
		registry.WithLogger(logger),
	)
	if err != nil {
		bus.Close()
		closeLog()
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		cfgPath:  path,
		logger:   logger,
		bus:      bus,
		provider: client,
		closeLog: closeLog,
	}
	if cfg.Cache.Enabled && cfg.Cache.Dir != "" {
		a.cache = registry.NewCachingProvider(client, cfg.Cache.Dir, cfg.Cache.TTL.Duration, logger)
		a.provider = a.cache
	}

	logger.Info("starting",
		zap.String("registry", cfg.Registry.URL),
		zap.Int("page_size", cfg.List.PageSize),
		zap.Duration("debounce", cfg.List.Debounce.Duration),
		zap.Bool("cache", a.cache != nil),
	)
	return a, nil
}

func (a *app) Close() {
	a.bus.Close()
	a.closeLog()
}

// subscribeLogging records every domain event in the log
func subscribeLogging(bus eventbus.EventBus, logger *zap.Logger) {
	logger = logger.Named("events")

	bus.Subscribe(eventbus.EventFilterChanged, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.FilterChangedEvent); ok {
			logger.Debug("filter changed", zap.String("category", ev.Category), zap.String("query", ev.Query))
		}
	})
	bus.Subscribe(eventbus.EventSearchFailed, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.SearchFailedEvent); ok {
			fields := []zap.Field{zap.String("category", ev.Category), zap.String("query", ev.Query), zap.Error(ev.Err)}
			var er *registry.ErrorResult
			if errors.As(ev.Err, &er) {
				fields = append(fields, zap.Int("status", er.StatusCode))
			}
			logger.Warn("search failed", fields...)
		}
	})
	bus.Subscribe(eventbus.EventError, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.ErrorEvent); ok {
			logger.Error(ev.Message, zap.Error(ev.Err))
		}
	})
	bus.Subscribe(eventbus.EventConfigLoaded, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.ConfigLoadedEvent); ok {
			logger.Info("config loaded", zap.String("path", ev.Path))
		}
	})
	bus.Subscribe(eventbus.EventConfigSaved, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.ConfigSavedEvent); ok {
			logger.Info("config saved", zap.String("path", ev.Path))
		}
	})
}
