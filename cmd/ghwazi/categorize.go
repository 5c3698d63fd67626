package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/amalhadhrami/ghwazi/internal/category"
	"github.com/amalhadhrami/ghwazi/internal/cli"
	"github.com/amalhadhrami/ghwazi/internal/common"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Categorize transactions",
		Long: `Assign categories to transactions. Manual assignment learns pattern
rules from the transaction and applies them retroactively; auto
assignment applies already-learned rules.`,
	}

	cmd.AddCommand(setCategoryCmd())
	cmd.AddCommand(autoCategorizeCmd())
	cmd.AddCommand(listUncategorizedCmd())

	return cmd
}

func setCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <transaction-id> <category-id>",
		Short: "Assign a category to a transaction",
		Long: `Assign a category to one transaction. The transaction's counterparty
and details become pattern rules for the category, and every other
uncategorized transaction matching them is updated in the same pass.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			transactionID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transaction ID: %w", err)
			}
			categoryID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid category ID: %w", err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			engine := category.NewEngine(store)
			update, err := engine.Categorize(ctx, currentUser(), transactionID, categoryID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError("transaction or category not found", err)
				}
				return fmt.Errorf("failed to categorize: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Categorized transaction %d", transactionID)))
			if len(update.TransactionIDs) > 0 {
				fmt.Println(cli.InfoStyle.Render(fmt.Sprintf(
					"Retroactively categorized %d matching transactions", len(update.TransactionIDs))))
			}
			return nil
		},
	}
}

func autoCategorizeCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "auto [transaction-id]",
		Short: "Apply learned rules to uncategorized transactions",
		Long: `Apply learned pattern rules to one transaction, or to every
uncategorized transaction with --all.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if all == (len(args) == 1) {
				return fmt.Errorf("specify either a transaction ID or --all")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			engine := category.NewEngine(store)

			if all {
				var bar *progressbar.ProgressBar
				categorized, err := engine.AutoCategorizeAll(ctx, currentUser(), func(done, total int) {
					if bar == nil {
						bar = progressbar.Default(int64(total), "categorizing")
					}
					_ = bar.Set(done)
				})
				if err != nil {
					return fmt.Errorf("auto-categorization failed: %w", err)
				}
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Auto-categorized %d transactions", categorized)))
				return nil
			}

			transactionID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transaction ID: %w", err)
			}

			match, err := engine.AutoCategorize(ctx, currentUser(), transactionID)
			if err != nil {
				return fmt.Errorf("auto-categorization failed: %w", err)
			}
			if match == nil {
				fmt.Println(cli.InfoStyle.Render("No rule matched this transaction."))
				return nil
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Categorized via %s pattern %q (category %d)", match.Type, match.Pattern, match.CategoryID)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Process every uncategorized transaction")

	return cmd
}

func listUncategorizedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List uncategorized transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			transactions, err := store.GetUncategorizedTransactions(ctx, currentUser())
			if err != nil {
				return fmt.Errorf("failed to get transactions: %w", err)
			}

			if len(transactions) == 0 {
				fmt.Println(cli.FormatSuccess("Nothing to categorize."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("Type"),
				cli.TableHeaderStyle.Render("Amount"),
				cli.TableHeaderStyle.Render("Counterparty"),
				cli.TableHeaderStyle.Render("Details"))

			for i := range transactions {
				txn := &transactions[i]
				fmt.Fprintf(w, "%d\t%s\t%s %.3f\t%s\t%s\n",
					txn.ID, txn.Type, txn.Currency, txn.Amount, txn.CounterpartyName, txn.TransactionDetails)
			}
			return nil
		},
	}
}
