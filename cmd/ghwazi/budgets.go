package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/amalhadhrami/ghwazi/internal/budget"
	"github.com/amalhadhrami/ghwazi/internal/cli"
	"github.com/amalhadhrami/ghwazi/internal/model"
	"github.com/spf13/cobra"
)

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Manage spending budgets",
		Long: `Set recurring spending limits per category or account and track
how much of each period's limit has been used.`,
	}

	cmd.AddCommand(listBudgetsCmd())
	cmd.AddCommand(setBudgetCmd())
	cmd.AddCommand(toggleBudgetCmd())
	cmd.AddCommand(deleteBudgetCmd())
	cmd.AddCommand(snapshotBudgetsCmd())

	return cmd
}

func listBudgetsCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show budgets with current period usage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			userID := currentUser()
			statuses, err := budget.New(store, nil).ListWithStatus(ctx, userID)
			if err != nil {
				return err
			}
			if !all {
				active := statuses[:0]
				for _, status := range statuses {
					if status.Budget.IsActive {
						active = append(active, status)
					}
				}
				statuses = active
			}

			if len(statuses) == 0 {
				fmt.Println(cli.InfoStyle.Render("No budgets found. Use 'ghwazi budgets set' to create one."))
				return nil
			}

			// Most used first, the same way the overspent ones surface
			// on a dashboard.
			sort.SliceStable(statuses, func(i, j int) bool {
				return statuses[i].PercentUsed > statuses[j].PercentUsed
			})

			categoryNames := map[int64]string{}
			categories, err := store.GetCategories(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}
			for _, cat := range categories {
				categoryNames[cat.ID] = cat.Name
			}

			accountLabels := map[int64]string{}
			accounts, err := store.GetAccounts(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to get accounts: %w", err)
			}
			for _, account := range accounts {
				accountLabels[account.ID] = fmt.Sprintf("%s (%s)", account.BankName, account.AccountNumber)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("Category"),
				cli.TableHeaderStyle.Render("Account"),
				cli.TableHeaderStyle.Render("Period"),
				cli.TableHeaderStyle.Render("Available"),
				cli.TableHeaderStyle.Render("Spent"),
				cli.TableHeaderStyle.Render("Used"),
				cli.TableHeaderStyle.Render("Active"))

			for _, status := range statuses {
				categoryLabel := "All Categories"
				if status.Budget.CategoryID != nil {
					categoryLabel = categoryNames[*status.Budget.CategoryID]
				}
				accountLabel := "All Accounts"
				if status.Budget.AccountID != nil {
					accountLabel = accountLabels[*status.Budget.AccountID]
				}

				used := fmt.Sprintf("%.0f%%", status.PercentUsed)
				switch {
				case status.Alerts.Gte100:
					used = cli.ErrorStyle.Render(used)
				case status.Alerts.CustomExceeded:
					used = cli.WarningStyle.Render(used)
				}

				active := "yes"
				if !status.Budget.IsActive {
					active = cli.SubtleStyle.Render("no")
				}

				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.3f\t%.3f\t%s\t%s\n",
					status.Budget.ID, categoryLabel, accountLabel, status.Budget.Period,
					status.Available, status.Spent, used, active)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include inactive budgets")

	return cmd
}

func setBudgetCmd() *cobra.Command {
	var (
		categoryID int64
		accountID  int64
		period     string
		rollover   bool
		threshold  float64
		inactive   bool
	)

	cmd := &cobra.Command{
		Use:   "set <amount>",
		Short: "Create or update a budget",
		Long: `Set the spending limit for a category, an account, or overall. There
is one budget per (category, account, period) scope; setting it again
updates the limit in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := strconv.ParseFloat(args[0], 64)
			if err != nil || amount < 0 {
				return fmt.Errorf("invalid budget amount %q", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			now := time.Now().UTC()
			b := &model.Budget{
				UserID:          currentUser(),
				Amount:          amount,
				Period:          model.ParseBudgetPeriod(period),
				IsActive:        !inactive,
				RolloverEnabled: rollover,
				AlertThreshold:  threshold,
				StartDate:       &now,
			}
			if categoryID != 0 {
				b.CategoryID = &categoryID
			}
			if accountID != 0 {
				b.AccountID = &accountID
			}

			if err := store.SaveBudget(ctx, b); err != nil {
				return fmt.Errorf("failed to save budget: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Saved %s budget of %.3f (ID: %d)", b.Period, b.Amount, b.ID)))
			return nil
		},
	}

	cmd.Flags().Int64Var(&categoryID, "category", 0, "Category ID the budget applies to (0 = all)")
	cmd.Flags().Int64Var(&accountID, "account", 0, "Account ID the budget applies to (0 = all)")
	cmd.Flags().StringVar(&period, "period", string(model.PeriodMonthly), "Budget period: weekly, monthly or yearly")
	cmd.Flags().BoolVar(&rollover, "rollover", false, "Carry unspent amounts into the next period")
	cmd.Flags().Float64Var(&threshold, "threshold", model.DefaultAlertThreshold, "Percent used at which to raise an alert")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Create the budget disabled")

	return cmd
}

func toggleBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <budget-id>",
		Short: "Enable or disable a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid budget ID %q", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			userID := currentUser()
			b, err := store.GetBudget(ctx, userID, id)
			if err != nil {
				return err
			}
			if err := store.SetBudgetActive(ctx, userID, id, !b.IsActive); err != nil {
				return err
			}

			state := "enabled"
			if b.IsActive {
				state = "disabled"
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Budget %d %s", id, state)))
			return nil
		},
	}
}

func deleteBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <budget-id>",
		Short: "Delete a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid budget ID %q", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteBudget(ctx, currentUser(), id); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted budget %d", id)))
			return nil
		},
	}
}

func snapshotBudgetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Record the current period for rollover",
		Long: `Store each active budget's current period usage. Budgets with
rollover enabled carry their unspent amount into the next period based
on the most recent snapshot.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			budgets, err := store.GetBudgets(ctx, currentUser())
			if err != nil {
				return fmt.Errorf("failed to list budgets: %w", err)
			}

			svc := budget.New(store, nil)
			count := 0
			for i := range budgets {
				if !budgets[i].IsActive {
					continue
				}
				if _, err := svc.Snapshot(ctx, &budgets[i]); err != nil {
					return err
				}
				count++
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Recorded %d budget snapshot(s)", count)))
			return nil
		},
	}
}
