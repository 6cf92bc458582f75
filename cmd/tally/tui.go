package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mhartley/tally/internal/cli"
	"github.com/mhartley/tally/internal/compose"
	"github.com/mhartley/tally/internal/query"
	"github.com/mhartley/tally/internal/refdata"
	"github.com/mhartley/tally/internal/tui"
)

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive entry form and history browser",
		Long: `Open the full-screen interface. The compose view records expenses,
income and transfers; the browse view pages through your history with
server-side filters. Switch between them with Ctrl+V.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			userID, err := a.requireUser()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			// Warm the reference cache before taking over the screen. A
			// collection that fails to fetch keeps its last snapshot; the
			// interface opens either way.
			bundle := refdata.Prefetch(ctx, a.client, userID, "")
			if cache, cacheErr := a.openCache(ctx); cacheErr == nil {
				if _, storeErr := storeBundle(ctx, cache, bundle); storeErr != nil {
					slog.Warn("Cache refresh failed", "error", storeErr)
				}
				_ = cache.Close()
			} else {
				slog.Warn("Cache unavailable", "error", cacheErr)
			}
			for name, fetchErr := range bundle.Failures() {
				fmt.Println(cli.FormatWarning(
					fmt.Sprintf("%s not refreshed: %v", name, fetchErr)))
			}

			controller := query.New(a.client, userID)
			if a.settings.DefaultPageSize != controller.PageSize() {
				controller.SetPageSize(a.settings.DefaultPageSize)
			}

			return tui.Run(ctx, tui.Config{
				Composer:   compose.New(a.client, userID, a.settings.DefaultCurrency),
				Controller: controller,
				Theme:      tui.DefaultTheme(),
			})
		},
	}
}
