package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amalhadhrami/ghwazi/internal/category"
	"github.com/amalhadhrami/ghwazi/internal/common"
	"github.com/amalhadhrami/ghwazi/internal/model"
	"github.com/amalhadhrami/ghwazi/internal/parser"
	"github.com/amalhadhrami/ghwazi/internal/service"
	"github.com/schollz/progressbar/v3"
)

// Stats summarizes one ingestion batch.
type Stats struct {
	Parsed          int
	Skipped         int
	Duplicates      int
	UnknownAccounts int
	Saved           int
	AutoCategorized int
}

// Ingestor feeds raw messages through parse, account resolution, dedup,
// save, and auto-categorization. Message retrieval is the caller's
// concern.
type Ingestor struct {
	store  service.Storage
	parser *parser.Parser
	engine *category.Engine
	sched  *Scheduler
}

// NewIngestor wires an ingestor from its collaborators.
func NewIngestor(store service.Storage, p *parser.Parser, engine *category.Engine, sched *Scheduler) *Ingestor {
	return &Ingestor{store: store, parser: p, engine: engine, sched: sched}
}

// IngestMessages processes a batch of messages for one user. Messages
// that parse to nothing, reference unknown accounts, or duplicate stored
// transactions are counted and skipped, never fatal. When showProgress
// is set a progress bar is rendered to stderr.
func (i *Ingestor) IngestMessages(ctx context.Context, userID int64, messages []model.RawMessage, showProgress bool) (Stats, error) {
	var stats Stats

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.Default(int64(len(messages)), "ingesting")
	}

	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := i.ingestOne(ctx, userID, msg, &stats); err != nil {
			return stats, err
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	slog.Info("ingestion batch complete",
		"user_id", userID,
		"messages", len(messages),
		"saved", stats.Saved,
		"duplicates", stats.Duplicates,
		"skipped", stats.Skipped,
		"auto_categorized", stats.AutoCategorized)
	return stats, nil
}

func (i *Ingestor) ingestOne(ctx context.Context, userID int64, msg model.RawMessage, stats *Stats) error {
	txn := i.parser.Parse(msg)
	if txn == nil {
		stats.Skipped++
		return nil
	}
	stats.Parsed++

	account, err := i.store.GetAccountByNumber(ctx, userID, txn.AccountNumber)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			slog.Debug("no account for extracted number",
				"account_number", txn.AccountNumber, "email_id", msg.ID)
			stats.UnknownAccounts++
			return nil
		}
		return fmt.Errorf("failed to resolve account: %w", err)
	}
	txn.AccountID = account.ID

	release, ok := i.sched.Acquire(account.ID)
	if !ok {
		return fmt.Errorf("%w: account %d", common.ErrAccountBusy, account.ID)
	}
	defer release()

	exists, err := i.store.TransactionExists(ctx, account.ID, txn.TransactionID, txn.EmailID)
	if err != nil {
		return fmt.Errorf("failed dedup check: %w", err)
	}
	if exists {
		stats.Duplicates++
		return nil
	}

	if err := i.store.SaveTransaction(ctx, txn); err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) {
			// Lost a race against another writer; the dedup index
			// kept the store consistent.
			stats.Duplicates++
			return nil
		}
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	stats.Saved++

	match, err := i.engine.AutoCategorize(ctx, userID, txn.ID)
	if err != nil {
		return fmt.Errorf("failed to auto-categorize transaction %d: %w", txn.ID, err)
	}
	if match != nil {
		stats.AutoCategorized++
	}
	return nil
}
