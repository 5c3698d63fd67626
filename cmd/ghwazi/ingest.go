package main

import (
	"fmt"

	"github.com/amalhadhrami/ghwazi/internal/category"
	"github.com/amalhadhrami/ghwazi/internal/cli"
	"github.com/amalhadhrami/ghwazi/internal/ingest"
	"github.com/amalhadhrami/ghwazi/internal/parser"
	"github.com/spf13/cobra"
)

func ingestCmd() *cobra.Command {
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "ingest <messages.json>...",
		Short: "Ingest notification messages",
		Long: `Parse batches of raw notification messages, resolve their accounts,
and store the extracted transactions. Messages that duplicate stored
transactions or reference unknown accounts are counted and skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			userID := currentUser()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			engine := category.NewEngine(store)
			sched := ingest.NewScheduler(nil, ingest.DefaultStaleAfter)
			ingestor := ingest.NewIngestor(store, parser.New(), engine, sched)

			var total ingest.Stats
			for _, path := range args {
				messages, loadErr := ingest.LoadMessages(path)
				if loadErr != nil {
					return loadErr
				}

				stats, ingestErr := ingestor.IngestMessages(ctx, userID, messages, !noProgress)
				total.Parsed += stats.Parsed
				total.Skipped += stats.Skipped
				total.Duplicates += stats.Duplicates
				total.UnknownAccounts += stats.UnknownAccounts
				total.Saved += stats.Saved
				total.AutoCategorized += stats.AutoCategorized
				if ingestErr != nil {
					return fmt.Errorf("ingesting %s: %w", path, ingestErr)
				}
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Saved %d transactions (%d auto-categorized)",
				total.Saved, total.AutoCategorized)))
			if total.Duplicates > 0 || total.UnknownAccounts > 0 || total.Skipped > 0 {
				fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf(
					"%d duplicates, %d unknown accounts, %d unparseable",
					total.Duplicates, total.UnknownAccounts, total.Skipped)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")

	return cmd
}
