package core

import (
	"errors"
	"time"
)

const (
	Expense     TxType = "EXPENSE"
	Income      TxType = "INCOME"
	TransferOut TxType = "TRANSFER_OUT"
	TransferIn  TxType = "TRANSFER_IN"
)

type (
	// TxType is the closed set of transaction kinds. Aggregations and the
	// advisor switch exhaustively over these four values.
	TxType string

	User struct {
		ID        int64
		Email     string
		CreatedAt time.Time
	}

	Account struct {
		ID                  int64
		UserID              int64
		Name                string
		Type                string // checking, savings, cash
		OpeningBalanceCents int64
		CreatedAt           time.Time
	}

	Category struct {
		ID     int64
		UserID int64
		Name   string
		Type   string // grouping label, e.g. "Food"
	}

	// Transaction is one signed ledger row. EXPENSE and TRANSFER_OUT rows
	// carry negative amounts, INCOME and TRANSFER_IN carry positive ones.
	Transaction struct {
		ID            int64
		UserID        int64
		AccountID     int64
		CategoryID    *int64
		Type          TxType
		Date          Date
		Amount        Money
		Note          string
		TransferGroup string // correlates the legs of one transfer
		CreatedAt     time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrNotFound      = errors.New("not found")
	ErrInUse         = errors.New("referenced by existing transactions")
)

// Valid reports whether t is one of the four known transaction types.
func (t TxType) Valid() bool {
	switch t {
	case Expense, Income, TransferOut, TransferIn:
		return true
	}
	return false
}

// Outgoing reports whether rows of this type are stored with negative amounts.
func (t TxType) Outgoing() bool {
	return t == Expense || t == TransferOut
}

// StoredAmount applies the sign convention to a positive input amount.
func (t TxType) StoredAmount(amount Money) Money {
	if t.Outgoing() {
		return Money{Cents: -amount.Cents}
	}
	return amount
}

// Validate checks the sign invariant for a persisted transaction.
func (tx Transaction) Validate() error {
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if tx.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	if tx.Type.Outgoing() && tx.Amount.Cents > 0 {
		return ErrInvalidAmount
	}
	if !tx.Type.Outgoing() && tx.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
