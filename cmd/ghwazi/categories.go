package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/amalhadhrami/ghwazi/internal/cli"
	"github.com/amalhadhrami/ghwazi/internal/config"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage spending categories",
		Long:  `List, add, update, and delete the categories transactions are sorted into.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())
	cmd.AddCommand(suggestCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.GetCategories(ctx, currentUser())
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Println(cli.InfoStyle.Render("No categories found. Use 'ghwazi categories add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("Name"),
				cli.TableHeaderStyle.Render("Color"),
				cli.TableHeaderStyle.Render("Description"))

			for _, cat := range categories {
				desc := cat.Description
				if desc == "" {
					desc = cli.SubtleStyle.Render("(no description)")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", cat.ID, cat.Name, cat.Color, desc)
			}
			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var (
		categoryDescription string
		categoryColor       string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Long: `Create a new category. If a category with the same name already
exists it is reused. A distinct display color is generated unless one
is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			categoryName := args[0]

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			category, err := store.CreateCategory(ctx, currentUser(), categoryName, categoryDescription, categoryColor)
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created category %q (ID: %d)", category.Name, category.ID)))
			if category.Description != "" {
				fmt.Printf("  Description: %s\n", category.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&categoryDescription, "description", "", "Category description")
	cmd.Flags().StringVar(&categoryColor, "color", "", "Display color as #RRGGBB (generated if not provided)")

	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var (
		categoryName        string
		categoryDescription string
		categoryColor       string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category",
		Long:  `Update the name, description, or color of an existing category.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid category ID: %w", err)
			}

			if categoryName == "" && categoryDescription == "" && categoryColor == "" {
				return fmt.Errorf("must specify --name, --description, or --color to update")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			current, err := store.GetCategory(ctx, currentUser(), id)
			if err != nil {
				return fmt.Errorf("failed to get category: %w", err)
			}

			// Use current values if not specified
			name := current.Name
			if categoryName != "" {
				name = categoryName
			}
			description := current.Description
			if categoryDescription != "" {
				description = categoryDescription
			}
			color := current.Color
			if categoryColor != "" {
				color = categoryColor
			}

			if err := store.UpdateCategory(ctx, currentUser(), id, name, description, color); err != nil {
				return fmt.Errorf("failed to update category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated category %d", id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&categoryName, "name", "", "New category name")
	cmd.Flags().StringVar(&categoryDescription, "description", "", "New category description")
	cmd.Flags().StringVar(&categoryColor, "color", "", "New display color")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long: `Delete a category. Transactions assigned to it become uncategorized;
its learned pattern rules are removed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid category ID: %w", err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			// Confirm deletion
			if !force {
				fmt.Println(cli.FormatWarning(fmt.Sprintf(
					"Transactions in category %d will become uncategorized and its rules will be removed.", id)))
				fmt.Printf("Are you sure you want to delete category %d? (y/N): ", id)
				var response string
				_, _ = fmt.Scanln(&response)
				if strings.ToLower(response) != "y" {
					fmt.Println("Deletion cancelled.")
					return nil
				}
			}

			if err := store.DeleteCategory(ctx, currentUser(), id); err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted category %d", id)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}

func suggestCategoryCmd() *cobra.Command {
	var details string

	cmd := &cobra.Command{
		Use:   "suggest <counterparty>",
		Short: "Suggest a category from the built-in defaults",
		Long: `Look up a counterparty name (and optionally a details text) against
the built-in default category patterns and print the best suggestion.
Nothing is written to the database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			suggestion, err := config.SuggestCategory(args[0], details)
			if err != nil {
				return err
			}
			if suggestion == nil {
				fmt.Println(cli.InfoStyle.Render("No suggestion for this counterparty."))
				return nil
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Suggested category: %s", suggestion.Name)))
			fmt.Printf("  Matched %s pattern %q\n", suggestion.MappingType, suggestion.Pattern)
			if suggestion.Description != "" {
				fmt.Printf("  %s\n", cli.SubtleStyle.Render(suggestion.Description))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&details, "details", "", "Transaction details text to match as a fallback")

	return cmd
}
