package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/amalhadhrami/ghwazi/internal/cli"
	"github.com/amalhadhrami/ghwazi/internal/common"
	"github.com/amalhadhrami/ghwazi/internal/model"
	"github.com/spf13/cobra"
)

func mappingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mappings",
		Short: "Manage learned pattern rules",
		Long: `Inspect and remove the pattern rules learned from manual
categorization. Each rule ties a counterparty or details pattern to
exactly one category.`,
	}

	cmd.AddCommand(listMappingsCmd())
	cmd.AddCommand(deleteMappingCmd())

	return cmd
}

func listMappingsCmd() *cobra.Command {
	var mappingType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List learned rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var mappings []model.CategoryMapping
			switch mappingType {
			case "":
				mappings, err = store.GetMappings(ctx, currentUser())
			case string(model.MappingCounterparty), string(model.MappingDescription):
				mappings, err = store.GetMappingsByType(ctx, currentUser(), model.MappingType(mappingType))
			default:
				return fmt.Errorf("%w: %q", common.ErrInvalidMappingType, mappingType)
			}
			if err != nil {
				return fmt.Errorf("failed to get mappings: %w", err)
			}

			if len(mappings) == 0 {
				fmt.Println(cli.InfoStyle.Render("No rules learned yet. Categorize a transaction to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("Type"),
				cli.TableHeaderStyle.Render("Pattern"),
				cli.TableHeaderStyle.Render("Category"))

			for _, mapping := range mappings {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\n",
					mapping.ID, mapping.Type, mapping.Pattern, mapping.CategoryID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mappingType, "type", "", "Filter by rule type (counterparty or description)")

	return cmd
}

func deleteMappingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a learned rule",
		Long:  `Remove a rule. Transactions it already categorized keep their category.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid mapping ID: %w", err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteMapping(ctx, currentUser(), id); err != nil {
				return fmt.Errorf("failed to delete mapping: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted mapping %d", id)))
			return nil
		},
	}
}
