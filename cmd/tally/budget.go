package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mhartley/tally/internal/budget"
	"github.com/mhartley/tally/internal/cli"
	"github.com/mhartley/tally/internal/model"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Create and list budgets",
	}

	cmd.AddCommand(budgetCreateCmd())
	cmd.AddCommand(budgetListCmd())

	return cmd
}

func budgetCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a budget with per-category limits",
		Long: `Create a budget. Each --item is CATEGORY=LIMIT, where CATEGORY is a
category id or name and LIMIT is an amount with up to two decimals.

Examples:
  tally budget create "January" --item Groceries=25000 --item Fuel=8000
  tally budget create "Ramadan" --period CUSTOM --start 2026-02-18 --end 2026-03-19 \
      --item Groceries=40000 --total 60000`,
		Args: cobra.ExactArgs(1),
		RunE: runBudgetCreate,
	}

	cmd.Flags().String("period", "MONTHLY", "MONTHLY, WEEKLY, YEARLY or CUSTOM")
	cmd.Flags().String("start", "", "start date YYYY-MM-DD (default today)")
	cmd.Flags().String("end", "", "end date YYYY-MM-DD (required for CUSTOM)")
	cmd.Flags().String("total", "", "optional overall limit")
	cmd.Flags().String("notes", "", "free-text notes")
	cmd.Flags().StringArray("item", nil, "budget item CATEGORY=LIMIT (repeatable)")

	return cmd
}

func runBudgetCreate(cmd *cobra.Command, args []string) error {
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

	draft := budget.NewDraft()
	draft.Name = args[0]
	if v := mustString(cmd, "period"); v != "" {
		period, parseErr := model.ParsePeriodType(v)
		if parseErr != nil {
			return parseErr
		}
		draft.PeriodType = period
	}
	if v := mustString(cmd, "start"); v != "" {
		draft.StartDate = v
	}
	draft.EndDate = mustString(cmd, "end")
	draft.TotalLimit = mustString(cmd, "total")
	draft.Notes = mustString(cmd, "notes")

	items, _ := cmd.Flags().GetStringArray("item")
	for _, raw := range items {
		categoryRef, limit, parseErr := parseBudgetItem(raw)
		if parseErr != nil {
			return parseErr
		}
		entity, resolveErr := cache.ResolveRefEntity(ctx, model.KindCategory, categoryRef)
		if resolveErr != nil {
			return resolveErr
		}
		key := draft.AddItem()
		draft.UpdateItem(indexOfItem(draft, key), budget.ItemPatch{
			CategoryID:  &entity.ID,
			LimitAmount: &limit,
		})
	}

	if errs := draft.Validate(); len(errs) > 0 {
		var lines []string
		keys := make([]string, 0, len(errs))
		for key := range errs {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			lines = append(lines, "  "+errs[key])
		}
		return fmt.Errorf("invalid budget:\n%s", strings.Join(lines, "\n"))
	}

	payload, err := draft.BuildPayload(userID)
	if err != nil {
		return err
	}
	if err := a.client.CreateBudget(ctx, *payload); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Budget %q created with %d items.", draft.Name, len(draft.Items()))))
	return nil
}

// parseBudgetItem splits "CATEGORY=LIMIT".
func parseBudgetItem(raw string) (string, string, error) {
	category, limit, found := strings.Cut(raw, "=")
	category = strings.TrimSpace(category)
	limit = strings.TrimSpace(limit)
	if !found || category == "" || limit == "" {
		return "", "", fmt.Errorf("invalid --item %q: expected CATEGORY=LIMIT", raw)
	}
	return category, limit, nil
}

func indexOfItem(draft *budget.Draft, key string) int {
	for i, item := range draft.Items() {
		if item.Key == key {
			return i
		}
	}
	return -1
}

func budgetListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List budgets with their status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			userID, err := a.requireUser()
			if err != nil {
				return err
			}

			budgets, err := a.client.ListBudgets(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if len(budgets) == 0 {
				fmt.Println(cli.FormatInfo("No budgets yet."))
				return nil
			}

			columns := []cli.Column{
				{Title: "NAME", Width: 24},
				{Title: "PERIOD", Width: 8},
				{Title: "START", Width: 10},
				{Title: "END", Width: 10},
				{Title: "LIMIT", Width: 12, AlignRight: true},
				{Title: "STATUS", Width: 8},
			}
			var rows [][]string
			for _, b := range budgets {
				limit := ""
				if b.TotalLimit != 0 {
					limit = b.TotalLimit.String()
				}
				rows = append(rows, []string{
					b.Name,
					string(b.PeriodType),
					b.StartDate,
					b.EndDate,
					limit,
					string(b.Status),
				})
			}
			fmt.Print(cli.RenderTable(columns, rows))
			return nil
		},
	}
}
