package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vsxbrowse/internal/domain"
	"vsxbrowse/internal/paging"
	"vsxbrowse/internal/ui/views"
)

func newSearchCommand() *cobra.Command {
	var pages int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Print matching extensions without starting the interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd.Flags())
			if err != nil {
				return err
			}
			a, err := newApp(v)
			if err != nil {
				return err
			}
			defer a.Close()

			filter := paging.Filter{
				Category: a.cfg.List.Category,
				Query:    strings.Join(args, " "),
				Size:     a.cfg.List.PageSize,
			}
			state, err := collect(cmd.Context(), a.provider, filter, pages, a.logger)
			if err != nil {
				return err
			}
			printResults(cmd.OutOrStdout(), state)
			return nil
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to fetch")
	return cmd
}

// collect drives a controller on a private loop until pages pages are in
// or the results run out
func collect(ctx context.Context, provider paging.SearchProvider[domain.Extension], filter paging.Filter, pages int, logger *zap.Logger) (paging.State[domain.Extension], error) {
	loop := paging.NewLoop(16)

	var failure error
	sink := paging.ErrorSinkFunc(func(err error) { failure = err })

	ctl := paging.NewController[domain.Extension](provider, sink, loop.Post, paging.Options{
		Logger:  logger,
		Context: ctx,
	})
	defer ctl.Close()

	wait := func() error {
		for ctl.Snapshot().Loading {
			if err := loop.Next(ctx); err != nil {
				return err
			}
		}
		return failure
	}

	ctl.Initialize(filter)
	if err := wait(); err != nil {
		return paging.State[domain.Extension]{}, err
	}

	for page := 1; page < pages; page++ {
		s := ctl.Snapshot()
		if !s.HasMore {
			break
		}
		ctl.LoadMore(len(s.Items) / ctl.PageSize())
		if err := wait(); err != nil {
			return paging.State[domain.Extension]{}, err
		}
	}
	return ctl.Snapshot(), nil
}

func printResults(w io.Writer, state paging.State[domain.Extension]) {
	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()
	pre := color.New(color.FgYellow).SprintFunc()

	if len(state.Items) == 0 {
		_, _ = fmt.Fprintln(w, faint("No extensions found."))
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow(bold("NAME"), bold("ID"), bold("VERSION"), bold("DOWNLOADS"), bold("RATING"))
	for _, ext := range state.Items {
		version := ext.Version
		if ext.IsPreRelease() {
			version += " " + pre("pre")
		}
		rating := "-"
		if ext.AverageRating != nil {
			rating = fmt.Sprintf("%.1f", *ext.AverageRating)
		}
		tbl.AddRow(ext.Title(), ext.Key().String(), version, views.FormatDownloads(ext.DownloadCount), rating)
	}

	_, _ = fmt.Fprintln(w, tbl)
	more := ""
	if state.HasMore {
		more = ", more available"
	}
	_, _ = fmt.Fprintln(w, faint(fmt.Sprintf("%d of %d%s", len(state.Items), state.TotalSize, more)))
}
