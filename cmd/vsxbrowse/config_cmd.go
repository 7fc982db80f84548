package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"vsxbrowse/internal/config"
	"vsxbrowse/internal/eventbus"
	"vsxbrowse/internal/logging"
	"vsxbrowse/internal/registry"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, path, err := loadConfig(v)
			if err != nil {
				return err
			}
			data, err := toml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", path, data)
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd.Flags())
			if err != nil {
				return err
			}

			cfg := config.DefaultConfig()
			logSettings := cfg.Log
			if v.IsSet("log-file") {
				logSettings.File = v.GetString("log-file")
			}
			logger, closeLog, err := logging.New(logSettings)
			if err != nil {
				return err
			}
			defer closeLog()
			bus := eventbus.New(logger)
			defer bus.Close()
			subscribeLogging(bus, logger)

			svc := config.WithBus(configService(v), bus)
			if _, err := os.Stat(svc.Path()); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", svc.Path())
			}
			if err := svc.Save(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", svc.Path())
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	return cmd
}

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete every cached search response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, _, err := loadConfig(v)
			if err != nil {
				return err
			}
			if cfg.Cache.Dir == "" {
				return fmt.Errorf("no cache directory configured")
			}
			cache := registry.NewCachingProvider(nil, cfg.Cache.Dir, cfg.Cache.TTL.Duration, nil)
			if err := cache.Purge(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %s\n", cfg.Cache.Dir)
			return nil
		},
	})
	return cmd
}
