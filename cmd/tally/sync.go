package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mhartley/tally/internal/cli"
	"github.com/mhartley/tally/internal/refdata"
)

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Refresh the local cache of accounts, categories, merchants and payment methods",
		Long: `Fetch reference data from the ledger service into the local cache, so
ids can be resolved from names without a round-trip and listings work
offline. Collections are fetched concurrently; a failing one leaves its
previous snapshot in place.`,
		RunE: runSync,
	}
}

func runSync(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	userID, err := a.requireUser()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cache, err := a.openCache(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	interrupts := cli.NewInterruptHandler(os.Stdout)
	ctx = interrupts.HandleInterrupts(ctx, "tally sync")

	bar := progressbar.NewOptions(2,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Syncing reference data"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	bundle := refdata.Prefetch(ctx, a.client, userID, "")
	if err := bundle.Err(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	_ = bar.Add(1)

	stored, err := storeBundle(ctx, cache, bundle)
	if err != nil {
		return err
	}
	_ = bar.Add(1)
	_ = bar.Finish()

	if failures := bundle.Failures(); len(failures) > 0 {
		for name, failErr := range failures {
			fmt.Println(cli.FormatWarning(fmt.Sprintf("%s not refreshed: %v", name, failErr)))
		}
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Cache refreshed (%d collections).", stored)))
	return nil
}
