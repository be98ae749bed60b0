package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// LedgerEvent is one audit-trail row recorded by the worker from a
// published ledger message.
type LedgerEvent struct {
	ID            int64
	TransactionID int64
	Action        string // created | deleted
	TransferGroup string
	OccurredAt    time.Time
}

// RecordLedgerEvent appends an event to the audit trail.
func (r *Repository) RecordLedgerEvent(ctx context.Context, ev LedgerEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ledger_events (transaction_id, action, transfer_group, occurred_at)
		 VALUES (?, ?, ?, ?)`,
		ev.TransactionID, ev.Action, nullableString(ev.TransferGroup),
		ev.OccurredAt.UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("record ledger event: %w", err)
	}

	slog.InfoContext(ctx, "Ledger event recorded",
		"transaction_id", ev.TransactionID,
		"action", ev.Action)
	return nil
}

// CountLedgerEvents reports the audit-trail size for a transaction.
func (r *Repository) CountLedgerEvents(ctx context.Context, transactionID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ledger_events WHERE transaction_id = ?`, transactionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count ledger events: %w", err)
	}
	return n, nil
}
