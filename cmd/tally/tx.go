package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mhartley/tally/internal/cli"
	"github.com/mhartley/tally/internal/compose"
	"github.com/mhartley/tally/internal/ledger"
	"github.com/mhartley/tally/internal/model"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Record and browse transactions",
	}

	cmd.AddCommand(txAddCmd())
	cmd.AddCommand(txTransferCmd())
	cmd.AddCommand(txListCmd())
	cmd.AddCommand(txStatusCmd())

	return cmd
}

func txAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense or income",
		Long: `Record a posting against one account.

Account, category, merchant and payment method accept either ids or the
names from the local cache (run 'tally sync' to refresh it).

Examples:
  tally tx add --amount 50.00 --account Wallet --category Groceries
  tally tx add --income --amount 1250.00 --account Savings --category Salary`,
		RunE: runTxAdd,
	}

	cmd.Flags().Bool("income", false, "record income instead of an expense")
	cmd.Flags().String("amount", "", "amount, up to two decimals")
	cmd.Flags().String("account", "", "account id or name")
	cmd.Flags().String("category", "", "category id or name")
	cmd.Flags().String("merchant", "", "merchant id or name")
	cmd.Flags().String("payment-method", "", "payment method id or name")
	cmd.Flags().String("date", "", "transaction date YYYY-MM-DD (default today)")
	cmd.Flags().String("currency", "", "currency code (default from config)")
	cmd.Flags().String("status", "", "CLEARED or PENDING (default CLEARED)")
	cmd.Flags().String("description", "", "free-text description")
	cmd.Flags().String("reference", "", "reference number")
	cmd.Flags().Bool("allow-negative", false, "let the account balance go below zero")

	return cmd
}

func runTxAdd(cmd *cobra.Command, _ []string) error {
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

	composer := compose.New(a.client, userID, a.settings.DefaultCurrency)
	if income, _ := cmd.Flags().GetBool("income"); income {
		if err := composer.SetMode(model.ModeIncome); err != nil {
			return err
		}
	}

	resolved := map[string]string{}
	if v, _ := cmd.Flags().GetString("account"); v != "" {
		account, resolveErr := cache.ResolveAccount(ctx, v)
		if resolveErr != nil {
			return resolveErr
		}
		resolved[compose.FieldAccount] = account.ID
	}
	if v, _ := cmd.Flags().GetString("category"); v != "" {
		entity, resolveErr := cache.ResolveRefEntity(ctx, model.KindCategory, v)
		if resolveErr != nil {
			return resolveErr
		}
		resolved[compose.FieldCategory] = entity.ID
	}
	if v, _ := cmd.Flags().GetString("merchant"); v != "" {
		entity, resolveErr := cache.ResolveRefEntity(ctx, model.KindMerchant, v)
		if resolveErr != nil {
			return resolveErr
		}
		resolved[compose.FieldMerchant] = entity.ID
	}
	if v, _ := cmd.Flags().GetString("payment-method"); v != "" {
		entity, resolveErr := cache.ResolveRefEntity(ctx, model.KindPaymentMethod, v)
		if resolveErr != nil {
			return resolveErr
		}
		resolved[compose.FieldPaymentMethod] = entity.ID
	}

	flagFields := map[string]string{
		compose.FieldAmount:      mustString(cmd, "amount"),
		compose.FieldDate:        mustString(cmd, "date"),
		compose.FieldCurrency:    mustString(cmd, "currency"),
		compose.FieldStatus:      mustString(cmd, "status"),
		compose.FieldDescription: mustString(cmd, "description"),
		compose.FieldReference:   mustString(cmd, "reference"),
	}
	for field, value := range resolved {
		flagFields[field] = value
	}
	for field, value := range flagFields {
		if value == "" {
			continue
		}
		if err := composer.SetField(field, value); err != nil {
			return err
		}
	}
	if allow, _ := cmd.Flags().GetBool("allow-negative"); allow {
		composer.SetAllowNegative(true)
	}

	return submitDraft(ctx, composer)
}

func txTransferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money between two of your accounts",
		Long: `Record a transfer. Source and destination must be different accounts;
the service books both legs atomically.`,
		RunE: runTxTransfer,
	}

	cmd.Flags().String("amount", "", "amount, up to two decimals")
	cmd.Flags().String("from", "", "source account id or name")
	cmd.Flags().String("to", "", "destination account id or name")
	cmd.Flags().String("date", "", "transfer date YYYY-MM-DD (default today)")
	cmd.Flags().String("description", "", "free-text description")
	cmd.Flags().String("reference", "", "reference number")
	cmd.Flags().Bool("allow-negative", false, "let the source balance go below zero")

	return cmd
}

func runTxTransfer(cmd *cobra.Command, _ []string) error {
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

	composer := compose.New(a.client, userID, a.settings.DefaultCurrency)
	if err := composer.SetMode(model.ModeTransfer); err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetString("from"); v != "" {
		account, resolveErr := cache.ResolveAccount(ctx, v)
		if resolveErr != nil {
			return resolveErr
		}
		if err := composer.SetField(compose.FieldSource, account.ID); err != nil {
			return err
		}
	}
	if v, _ := cmd.Flags().GetString("to"); v != "" {
		account, resolveErr := cache.ResolveAccount(ctx, v)
		if resolveErr != nil {
			return resolveErr
		}
		if err := composer.SetField(compose.FieldDestination, account.ID); err != nil {
			return err
		}
	}

	for field, flag := range map[string]string{
		compose.FieldAmount:      "amount",
		compose.FieldDate:        "date",
		compose.FieldDescription: "description",
		compose.FieldReference:   "reference",
	} {
		if value := mustString(cmd, flag); value != "" {
			if err := composer.SetField(field, value); err != nil {
				return err
			}
		}
	}
	if allow, _ := cmd.Flags().GetBool("allow-negative"); allow {
		composer.SetAllowNegative(true)
	}

	return submitDraft(ctx, composer)
}

// submitDraft validates, submits and reports field errors as a flat list.
func submitDraft(ctx context.Context, composer *compose.Composer) error {
	if errs := composer.Validate(); len(errs) > 0 {
		var lines []string
		for _, field := range sortedKeys(errs) {
			lines = append(lines, "  "+errs[field])
		}
		return fmt.Errorf("invalid entry:\n%s", strings.Join(lines, "\n"))
	}
	if err := composer.Submit(ctx); err != nil {
		return err
	}
	fmt.Println(cli.FormatSuccess("Recorded."))
	return nil
}

func txListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Search your transaction history",
		RunE:  runTxList,
	}

	cmd.Flags().String("account", "", "filter by account id or name")
	cmd.Flags().String("category", "", "filter by category id or name")
	cmd.Flags().String("type", "", "filter by EXPENSE, INCOME or TRANSFER")
	cmd.Flags().String("from", "", "start date YYYY-MM-DD")
	cmd.Flags().String("to", "", "end date YYYY-MM-DD")
	cmd.Flags().String("keyword", "", "description keyword")
	cmd.Flags().Int("page", 1, "page number")
	cmd.Flags().Int("size", 0, "page size (10, 25, 50 or 100; default from config)")

	return cmd
}

func runTxList(cmd *cobra.Command, _ []string) error {
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

	params := ledger.SearchParams{UserID: userID}
	if v, _ := cmd.Flags().GetString("account"); v != "" {
		account, resolveErr := cache.ResolveAccount(ctx, v)
		if resolveErr != nil {
			return resolveErr
		}
		params.AccountID = account.ID
	}
	if v, _ := cmd.Flags().GetString("category"); v != "" {
		entity, resolveErr := cache.ResolveRefEntity(ctx, model.KindCategory, v)
		if resolveErr != nil {
			return resolveErr
		}
		params.CategoryID = entity.ID
	}
	params.Type = strings.ToUpper(mustString(cmd, "type"))
	params.StartDate = mustString(cmd, "from")
	params.EndDate = mustString(cmd, "to")
	params.Keyword = mustString(cmd, "keyword")

	page, _ := cmd.Flags().GetInt("page")
	if page < 1 {
		page = 1
	}
	params.Page = page - 1
	size, _ := cmd.Flags().GetInt("size")
	if size <= 0 {
		size = a.settings.DefaultPageSize
	}
	params.Size = size

	result, err := a.client.SearchTransactions(ctx, params)
	if err != nil {
		return err
	}

	if len(result.Transactions) == 0 {
		fmt.Println(cli.FormatInfo("No transactions match."))
		return nil
	}

	printTransactions(result.Transactions)
	fmt.Println(cli.SubtleStyle.Render(
		fmt.Sprintf("page %d · %d total", page, result.TotalElements)))
	return nil
}

func printTransactions(transactions []model.Transaction) {
	columns := []cli.Column{
		{Title: "ID", Width: 8},
		{Title: "DATE", Width: 10},
		{Title: "TYPE", Width: 8},
		{Title: "AMOUNT", Width: 12, AlignRight: true},
		{Title: "STATUS", Width: 8},
		{Title: "CATEGORY", Width: 16},
		{Title: "DESCRIPTION", Width: 32},
	}
	var rows [][]string
	for _, txn := range transactions {
		rows = append(rows, []string{
			txn.ID,
			txn.TransactionDate,
			string(txn.Type),
			txn.Amount.String(),
			string(txn.Status),
			txn.CategoryName,
			txn.Description,
		})
	}
	fmt.Print(cli.RenderTable(columns, rows))
}

func txStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <transaction-id> <CLEARED|PENDING>",
		Short: "Toggle a posting between cleared and pending",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if _, err := a.requireUser(); err != nil {
				return err
			}

			status, err := model.ParseTransactionStatus(args[1])
			if err != nil {
				return err
			}
			if err := a.client.UpdateTransactionStatus(cmd.Context(), args[0], status); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("Status updated."))
			return nil
		},
	}
}

func mustString(cmd *cobra.Command, name string) string {
	value, _ := cmd.Flags().GetString(name)
	return value
}

func sortedKeys(errs compose.FieldErrors) []string {
	keys := make([]string, 0, len(errs))
	for key := range errs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
