// Package worker runs the background audit-trail consumer. It drains the
// ledger-event queue and appends one audit row per message.
package worker

import (
	"context"
	"log/slog"

	"finbook/internal/amqp"
	"finbook/internal/storage"
)

// EventStore persists consumed ledger events.
type EventStore interface {
	RecordLedgerEvent(ctx context.Context, ev storage.LedgerEvent) error
}

// EventConsumer delivers decoded ledger messages to a handler.
type EventConsumer interface {
	ConsumeLedgerEvents(ctx context.Context, handler func(context.Context, *amqp.LedgerEventMessage) error) error
}

type EventWorker struct {
	store    EventStore
	consumer EventConsumer
}

func NewEventWorker(store EventStore, consumer EventConsumer) *EventWorker {
	return &EventWorker{store: store, consumer: consumer}
}

// Run blocks consuming messages until ctx is cancelled or the consumer
// fails. A persistence error is returned to the consumer so the message is
// requeued and retried.
func (w *EventWorker) Run(ctx context.Context) error {
	slog.Info("Event worker starting")
	return w.consumer.ConsumeLedgerEvents(ctx, w.handle)
}

func (w *EventWorker) handle(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	ev := storage.LedgerEvent{
		TransactionID: msg.TransactionID,
		Action:        msg.Action,
		TransferGroup: msg.TransferGroup,
		OccurredAt:    msg.Timestamp,
	}
	if err := w.store.RecordLedgerEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to record ledger event",
			"transaction_id", msg.TransactionID,
			"action", msg.Action,
			"error", err)
		return err
	}
	return nil
}
