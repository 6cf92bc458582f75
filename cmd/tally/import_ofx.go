package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mhartley/tally/internal/cli"
	"github.com/mhartley/tally/internal/ledger"
	"github.com/mhartley/tally/internal/model"
	"github.com/mhartley/tally/internal/ofx"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Replay bank OFX/QFX statements into the ledger",
		Long: `Parse OFX or QFX (Quicken) exports and post each statement line as an
expense or income against one of your accounts. Debits become expenses,
credits become income.

Every line needs a category, so a default category is required. Each
posting carries the statement's FITID as its reference number, letting
the service spot a re-imported file.

Examples:
  # Preview without posting
  tally import-ofx --dry-run ~/Downloads/statement.qfx

  # Post everything against the Wallet account under Uncategorized
  tally import-ofx --account Wallet --category Uncategorized ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "preview import without posting")
	cmd.Flags().String("account", "", "account id or name to post against (default: match OFX account id)")
	cmd.Flags().String("category", "", "category id or name for every imported line")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

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

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, globErr := filepath.Glob(pattern)
		if globErr != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, globErr)
		}
		if len(matches) == 0 {
			// If no glob matches, check if it's a direct file
			if _, statErr := os.Stat(pattern); statErr == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}
	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	accountID := ""
	if v := mustString(cmd, "account"); v != "" {
		account, resolveErr := cache.ResolveAccount(ctx, v)
		if resolveErr != nil {
			return resolveErr
		}
		accountID = account.ID
	}
	categoryID := ""
	if v := mustString(cmd, "category"); v != "" {
		entity, resolveErr := cache.ResolveRefEntity(ctx, model.KindCategory, v)
		if resolveErr != nil {
			return resolveErr
		}
		categoryID = entity.ID
	}
	if categoryID == "" && !dryRun {
		return fmt.Errorf("--category is required unless --dry-run")
	}

	parser := ofx.NewParser()
	var entries []ofx.Entry
	seen := make(map[string]bool) // FITID dedup across files

	for _, filePath := range allFiles {
		f, openErr := os.Open(filePath)
		if openErr != nil {
			slog.Error("Failed to open file", "file", filePath, "error", openErr)
			continue
		}
		fileEntries, parseErr := parser.ParseFile(ctx, f)
		_ = f.Close()
		if parseErr != nil {
			slog.Error("Failed to parse OFX file", "file", filePath, "error", parseErr)
			continue
		}

		added := 0
		for _, entry := range fileEntries {
			if entry.FitID != "" && seen[entry.FitID] {
				continue
			}
			seen[entry.FitID] = true
			entries = append(entries, entry)
			added++
		}
		slog.Info("Processed file",
			"file", filepath.Base(filePath),
			"entries", len(fileEntries),
			"added", added,
			"duplicates", len(fileEntries)-added)
	}

	if len(entries) == 0 {
		fmt.Println(cli.FormatWarning("No entries found in any file."))
		return nil
	}

	if dryRun {
		printImportPreview(entries)
		fmt.Println(cli.FormatInfo("Dry run complete - nothing was posted."))
		return nil
	}

	interrupts := cli.NewInterruptHandler(os.Stdout)
	ctx = interrupts.HandleInterrupts(ctx, "tally import-ofx "+args[0])

	bar := progressbar.NewOptions(len(entries),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Posting entries"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	posted, failed := 0, 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		req, buildErr := postingFromEntry(entry, userID, accountID, categoryID, a.settings.DefaultCurrency)
		if buildErr != nil {
			slog.Warn("Skipping entry", "fitid", entry.FitID, "error", buildErr)
			failed++
			_ = bar.Add(1)
			continue
		}
		if err := a.client.CreatePosting(ctx, req, false); err != nil {
			slog.Warn("Failed to post entry",
				"fitid", entry.FitID,
				"description", entry.Description,
				"error", err)
			failed++
		} else {
			posted++
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d of %d entries (%d failed).",
		posted, len(entries), failed)))
	return nil
}

// postingFromEntry maps a statement line onto a posting request. The FITID
// rides along as the reference so reposts are detectable server-side.
func postingFromEntry(entry ofx.Entry, userID, accountID, categoryID, currency string) (ledger.PostingRequest, error) {
	account := accountID
	if account == "" {
		account = entry.AccountRef
	}
	if account == "" {
		return ledger.PostingRequest{}, fmt.Errorf("no account for entry %s", entry.FitID)
	}
	if !entry.Amount.Positive() {
		return ledger.PostingRequest{}, fmt.Errorf("entry %s has no usable amount", entry.FitID)
	}

	description := entry.Description
	if entry.CheckNumber != "" {
		description = fmt.Sprintf("%s (check %s)", description, entry.CheckNumber)
	}

	return ledger.PostingRequest{
		UserID:          userID,
		AccountID:       account,
		CategoryID:      categoryID,
		Type:            entry.Mode,
		Amount:          entry.Amount,
		CurrencyCode:    currency,
		TransactionDate: entry.Date,
		Status:          model.StatusCleared,
		Description:     description,
		ReferenceNumber: "ofx-" + entry.FitID,
	}, nil
}

func printImportPreview(entries []ofx.Entry) {
	columns := []cli.Column{
		{Title: "DATE", Width: 10},
		{Title: "MODE", Width: 8},
		{Title: "AMOUNT", Width: 12, AlignRight: true},
		{Title: "ACCOUNT", Width: 16},
		{Title: "DESCRIPTION", Width: 36},
	}
	var rows [][]string
	for _, entry := range entries {
		rows = append(rows, []string{
			entry.Date,
			string(entry.Mode),
			entry.Amount.String(),
			entry.AccountRef,
			entry.Description,
		})
	}
	fmt.Print(cli.RenderTable(columns, rows))
	fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("%d entries", len(entries))))
}
