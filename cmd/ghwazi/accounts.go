package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/amalhadhrami/ghwazi/internal/cli"
	"github.com/amalhadhrami/ghwazi/internal/model"
	"github.com/amalhadhrami/ghwazi/internal/parser"
	"github.com/spf13/cobra"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage bank accounts",
		Long:  `Register and list the bank accounts transactions are matched against.`,
	}

	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(addAccountCmd())

	return cmd
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			accounts, err := store.GetAccounts(ctx, currentUser())
			if err != nil {
				return fmt.Errorf("failed to get accounts: %w", err)
			}

			if len(accounts) == 0 {
				fmt.Println(cli.InfoStyle.Render("No accounts found. Use 'ghwazi accounts add' to register one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("Number"),
				cli.TableHeaderStyle.Render("Bank"),
				cli.TableHeaderStyle.Render("Branch"),
				cli.TableHeaderStyle.Render("Currency"))

			for _, account := range accounts {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					account.ID, account.AccountNumber, account.BankName, account.Branch, account.Currency)
			}
			return nil
		},
	}
}

func addAccountCmd() *cobra.Command {
	var (
		bankName string
		branch   string
		currency string
	)

	cmd := &cobra.Command{
		Use:   "add <masked-number>",
		Short: "Register an account",
		Long: `Register a bank account under its masked number as it appears in
notification emails (e.g. "xxxx0019"). Transactions extracted from
messages are matched to accounts by this number.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account := &model.Account{
				UserID:        currentUser(),
				AccountNumber: args[0],
				BankName:      bankName,
				Branch:        branch,
				Currency:      currency,
			}
			if err := store.CreateAccount(ctx, account); err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Registered account %q (ID: %d)", account.AccountNumber, account.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&bankName, "bank", parser.DefaultBankName, "Bank name")
	cmd.Flags().StringVar(&branch, "branch", "", "Branch name")
	cmd.Flags().StringVar(&currency, "currency", parser.DefaultCurrency, "Account currency")

	return cmd
}
