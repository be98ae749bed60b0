// Package services orchestrates the ledger: it validates input, resolves
// referenced entities, applies the sign and transfer invariants, and hands
// persistence to the storage layer.
package services

import (
	"context"

	"finbook/internal/core"
	"finbook/internal/storage"
)

// LedgerStore is the persistence surface the transaction writer needs.
// *storage.Repository implements it; tests substitute a fake.
type LedgerStore interface {
	GetUser(ctx context.Context, id int64) (core.User, error)
	GetAccount(ctx context.Context, userID, id int64) (core.Account, error)
	GetCategory(ctx context.Context, userID, id int64) (core.Category, error)
	ListAccounts(ctx context.Context, userID int64) ([]core.Account, error)
	ListCategories(ctx context.Context, userID int64) ([]core.Category, error)
	DeleteAccount(ctx context.Context, userID, id int64) error
	DeleteCategory(ctx context.Context, userID, id int64) error

	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	CreateTransferGroup(ctx context.Context, legs []core.Transaction) ([]core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id int64) error
	FindRange(ctx context.Context, userID int64, from, to core.Date, accountID *int64) ([]core.Transaction, error)
}

// ReportStore is the read-only surface of the report aggregator.
type ReportStore interface {
	MonthlyTotals(ctx context.Context, userID int64, from, to string) ([]storage.MonthlyTotal, error)
	TotalsByCategory(ctx context.Context, userID int64, from, to string) ([]storage.CategoryTotal, error)
}

// AdvisorStore provides the aggregates the affordability projection runs on.
type AdvisorStore interface {
	SumIncomingBetween(ctx context.Context, userID int64, from, to string) (int64, error)
	SumOutgoingBetween(ctx context.Context, userID int64, from, to string) (int64, error)
	AvgOutgoingBetween(ctx context.Context, userID int64, from, to string) (float64, error)
}

// EventPublisher emits ledger change events. Implementations must be safe
// to skip: a nil publisher disables eventing without failing writes.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, transactionID int64, action, transferGroup string) error
}
