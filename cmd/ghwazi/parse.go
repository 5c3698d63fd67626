package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/amalhadhrami/ghwazi/internal/cli"
	"github.com/amalhadhrami/ghwazi/internal/ingest"
	"github.com/amalhadhrami/ghwazi/internal/model"
	"github.com/amalhadhrami/ghwazi/internal/parser"
	"github.com/spf13/cobra"
)

func parseCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse <messages.json>",
		Short: "Parse messages without saving",
		Long: `Extract transactions from a batch of raw notification messages and
print the results. Nothing is written to the database; use this to
inspect what ingestion would produce.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			messages, err := ingest.LoadMessages(args[0])
			if err != nil {
				return err
			}

			p := parser.New()

			var parsed []*model.Transaction
			skipped := 0
			for _, msg := range messages {
				txn := p.Parse(msg)
				if txn == nil {
					skipped++
					continue
				}
				parsed = append(parsed, txn)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(parsed)
			}

			printTransactionTable(parsed)
			fmt.Printf("\n%s\n", cli.SubtleStyle.Render(
				fmt.Sprintf("%d parsed, %d skipped", len(parsed), skipped)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print transactions as JSON")

	return cmd
}

func printTransactionTable(transactions []*model.Transaction) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.TableHeaderStyle.Render("Type"),
		cli.TableHeaderStyle.Render("Amount"),
		cli.TableHeaderStyle.Render("Account"),
		cli.TableHeaderStyle.Render("Counterparty"),
		cli.TableHeaderStyle.Render("Date"),
		cli.TableHeaderStyle.Render("Details"))

	for _, txn := range transactions {
		amount := fmt.Sprintf("%s %.3f", txn.Currency, txn.Amount)
		switch txn.Type {
		case model.TypeIncome:
			amount = cli.AmountIncomeStyle.Render(amount)
		case model.TypeExpense:
			amount = cli.AmountExpenseStyle.Render(amount)
		}

		date := ""
		if txn.ValueDate != nil {
			date = txn.ValueDate.Format("2006-01-02")
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			txn.Type, amount, txn.AccountNumber, txn.CounterpartyName, date, txn.TransactionDetails)
	}
}
