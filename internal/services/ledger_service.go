package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"finbook/internal/core"
)

const transferFeeNote = "Transfer fee"

// LedgerService is the transaction writer. Creation is the only way ledger
// rows come into existence; rows are never updated in place.
type LedgerService struct {
	store  LedgerStore
	events EventPublisher
}

// TransferResult carries the two primary legs of a transfer. A fee leg, if
// any, is persisted but not returned.
type TransferResult struct {
	TransferOut core.Transaction
	TransferIn  core.Transaction
}

// NewLedgerService creates the writer. events may be nil, in which case no
// ledger events are published.
func NewLedgerService(store LedgerStore, events EventPublisher) *LedgerService {
	return &LedgerService{store: store, events: events}
}

// CreateExpense records an expense of amountCents (a positive magnitude,
// minimum one cent) against an account and category. The stored amount is
// negative per the sign convention.
func (s *LedgerService) CreateExpense(ctx context.Context, userID, accountID, categoryID int64, date string, amountCents int64, note string) (core.Transaction, error) {
	day, err := validateDateAndAmount(date, amountCents)
	if err != nil {
		return core.Transaction{}, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return core.Transaction{}, err
	}
	account, err := s.store.GetAccount(ctx, user.ID, accountID)
	if err != nil {
		return core.Transaction{}, err
	}
	category, err := s.store.GetCategory(ctx, user.ID, categoryID)
	if err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{
		UserID:     user.ID,
		AccountID:  account.ID,
		CategoryID: &category.ID,
		Type:       core.Expense,
		Date:       day,
		Amount:     core.Expense.StoredAmount(core.Money{Cents: amountCents}),
		Note:       note,
	}

	saved, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create expense: %w", err)
	}

	s.publish(ctx, saved.ID, "created", "")
	return saved, nil
}

// CreateIncome records income of amountCents. Income carries no category.
func (s *LedgerService) CreateIncome(ctx context.Context, userID, accountID int64, date string, amountCents int64, note string) (core.Transaction, error) {
	day, err := validateDateAndAmount(date, amountCents)
	if err != nil {
		return core.Transaction{}, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return core.Transaction{}, err
	}
	account, err := s.store.GetAccount(ctx, user.ID, accountID)
	if err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{
		UserID:    user.ID,
		AccountID: account.ID,
		Type:      core.Income,
		Date:      day,
		Amount:    core.Money{Cents: amountCents},
		Note:      note,
	}

	saved, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create income: %w", err)
	}

	s.publish(ctx, saved.ID, "created", "")
	return saved, nil
}

// CreateTransfer moves amountCents between two of the user's accounts. It
// writes a TRANSFER_OUT leg, a TRANSFER_IN leg and, when feeCents > 0, an
// EXPENSE fee leg debited from the source account, all sharing one freshly
// generated transfer group. The storage layer commits the legs atomically.
func (s *LedgerService) CreateTransfer(ctx context.Context, userID, fromAccountID, toAccountID int64, date string, amountCents, feeCents int64, note string) (TransferResult, error) {
	day, err := validateDateAndAmount(date, amountCents)
	if err != nil {
		return TransferResult{}, err
	}
	if feeCents < 0 {
		return TransferResult{}, core.ErrInvalidAmount
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return TransferResult{}, err
	}
	fromAccount, err := s.store.GetAccount(ctx, user.ID, fromAccountID)
	if err != nil {
		return TransferResult{}, err
	}
	toAccount, err := s.store.GetAccount(ctx, user.ID, toAccountID)
	if err != nil {
		return TransferResult{}, err
	}

	group := uuid.NewString()
	amount := core.Money{Cents: amountCents}

	legs := []core.Transaction{
		{
			UserID:        user.ID,
			AccountID:     fromAccount.ID,
			Type:          core.TransferOut,
			Date:          day,
			Amount:        core.TransferOut.StoredAmount(amount),
			Note:          note,
			TransferGroup: group,
		},
		{
			UserID:        user.ID,
			AccountID:     toAccount.ID,
			Type:          core.TransferIn,
			Date:          day,
			Amount:        amount,
			Note:          note,
			TransferGroup: group,
		},
	}
	if feeCents > 0 {
		legs = append(legs, core.Transaction{
			UserID:        user.ID,
			AccountID:     fromAccount.ID,
			Type:          core.Expense,
			Date:          day,
			Amount:        core.Expense.StoredAmount(core.Money{Cents: feeCents}),
			Note:          transferFeeNote,
			TransferGroup: group,
		})
	}

	saved, err := s.store.CreateTransferGroup(ctx, legs)
	if err != nil {
		return TransferResult{}, fmt.Errorf("create transfer: %w", err)
	}

	for _, leg := range saved {
		s.publish(ctx, leg.ID, "created", group)
	}

	return TransferResult{TransferOut: saved[0], TransferIn: saved[1]}, nil
}

// DeleteTransaction removes one ledger row by id.
func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	s.publish(ctx, id, "deleted", "")
	return nil
}

// ListTransactions returns the user's ledger rows in [from, to], newest
// first, optionally restricted to one account.
func (s *LedgerService) ListTransactions(ctx context.Context, userID int64, from, to string, accountID *int64) ([]core.Transaction, error) {
	fromDate, err := core.ParseDate(from)
	if err != nil {
		return nil, err
	}
	toDate, err := core.ParseDate(to)
	if err != nil {
		return nil, err
	}
	return s.store.FindRange(ctx, userID, fromDate, toDate, accountID)
}

// ListAccounts returns the user's accounts.
func (s *LedgerService) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	return s.store.ListAccounts(ctx, userID)
}

// ListCategories returns the user's categories.
func (s *LedgerService) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	return s.store.ListCategories(ctx, userID)
}

// DeleteAccount removes an account unless ledger rows reference it.
func (s *LedgerService) DeleteAccount(ctx context.Context, userID, id int64) error {
	return s.store.DeleteAccount(ctx, userID, id)
}

// DeleteCategory removes a category unless ledger rows reference it.
func (s *LedgerService) DeleteCategory(ctx context.Context, userID, id int64) error {
	return s.store.DeleteCategory(ctx, userID, id)
}

// publish emits a ledger event. Eventing is best effort: the write already
// committed, so a publish failure is logged and swallowed.
func (s *LedgerService) publish(ctx context.Context, id int64, action, group string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, id, action, group); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"id", id, "action", action, "error", err)
	}
}

func validateDateAndAmount(date string, amountCents int64) (core.Date, error) {
	if amountCents < 1 {
		return core.Date{}, core.ErrInvalidAmount
	}
	day, err := core.ParseDate(date)
	if err != nil {
		return core.Date{}, err
	}
	return day, nil
}
