package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mhartley/tally/internal/cli"
	"github.com/mhartley/tally/internal/model"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List your accounts and balances",
		RunE:  runAccountsList,
	}
	cmd.Flags().Bool("archived", false, "include archived accounts")
	cmd.Flags().Bool("cached", false, "read from the local cache instead of the service")
	return cmd
}

func runAccountsList(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	userID, err := a.requireUser()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	includeArchived, _ := cmd.Flags().GetBool("archived")
	cached, _ := cmd.Flags().GetBool("cached")

	var accounts []model.Account
	if cached {
		cache, cacheErr := a.openCache(ctx)
		if cacheErr != nil {
			return cacheErr
		}
		defer func() { _ = cache.Close() }()
		accounts, err = cache.Accounts(ctx)
		if err != nil {
			return err
		}
	} else {
		accounts, err = a.client.ListAccounts(ctx, userID, includeArchived)
		if err != nil {
			// Offline fallback: the cache holds the last synced snapshot.
			cache, cacheErr := a.openCache(ctx)
			if cacheErr != nil {
				return err
			}
			defer func() { _ = cache.Close() }()
			accounts, err = cache.Accounts(ctx)
			if err != nil {
				return err
			}
			fmt.Println(cli.FormatWarning("Service unreachable - showing last synced balances."))
		}
	}

	if len(accounts) == 0 {
		fmt.Println(cli.FormatInfo("No accounts. Create them in the ledger service first."))
		return nil
	}

	columns := []cli.Column{
		{Title: "ID", Width: 8},
		{Title: "NAME", Width: 24},
		{Title: "TYPE", Width: 10},
		{Title: "BALANCE", Width: 14, AlignRight: true},
		{Title: "CCY", Width: 4},
	}
	var rows [][]string
	for _, account := range accounts {
		name := account.Name
		if account.Archived {
			name += " (archived)"
		}
		rows = append(rows, []string{
			account.ID,
			name,
			account.Type,
			account.CurrentBalance.String(),
			account.CurrencyCode,
		})
	}
	fmt.Print(cli.RenderTable(columns, rows))
	return nil
}
