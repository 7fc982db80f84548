package main

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vsxbrowse/internal/eventbus"
	"vsxbrowse/internal/ui"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vsxbrowse [query]",
		Short: "Browse an Open VSX extension registry from the terminal",
		Example: `
  # browse everything
  vsxbrowse

  # start with a query and a category
  vsxbrowse python --category "Programming Languages"

  # talk to a private registry
  VSXBROWSE_REGISTRY=https://vsx.example.com vsxbrowse`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addOverlayFlags(cmd.PersistentFlags())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		v, err := newViper(cmd.Flags())
		if err != nil {
			return err
		}
		a, err := newApp(v)
		if err != nil {
			return err
		}
		defer a.Close()

		return runBrowser(cmd.Context(), a, strings.Join(args, " "))
	}

	cmd.AddCommand(newSearchCommand(), newConfigCommand(), newCacheCommand())
	return cmd
}

// runBrowser runs the interactive list until the user quits
func runBrowser(ctx context.Context, a *app, query string) error {
	model := ui.NewModel(ui.Options{
		Provider: a.provider,
		Bus:      a.bus,
		Config:   a.cfg,
		Logger:   a.logger,
		Query:    query,
		Category: a.cfg.List.Category,
		Context:  ctx,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(p)

	a.logger.Info("starting UI", zap.String("query", query))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		a.bus.Publish(eventbus.ErrorEvent{Message: "ui exited with error", Err: err})
		return err
	}
	return nil
}
