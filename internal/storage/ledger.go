package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"finbook/internal/core"
)

// CreateTransaction persists one signed ledger row and returns it with the
// assigned id and creation timestamp.
func (r *Repository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created := nowTimestamp()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, account_id, category_id, type, date, amount_cents, note, transfer_group, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.AccountID, tx.CategoryID, string(tx.Type), tx.Date.String(),
		tx.Amount.Cents, tx.Note, nullableString(tx.TransferGroup), created)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	tx.ID = id
	tx.CreatedAt = parseTimestamp(created)

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"tx_type", string(tx.Type),
		"amount_cents", tx.Amount.Cents,
		"date", tx.Date.String())

	return tx, nil
}

// CreateTransferGroup persists all legs of one transfer inside a single
// database transaction. Either every leg commits or none does; a failing
// leg must not leave an unbalanced ledger behind.
func (r *Repository) CreateTransferGroup(ctx context.Context, legs []core.Transaction) ([]core.Transaction, error) {
	for _, leg := range legs {
		if err := leg.Validate(); err != nil {
			return nil, err
		}
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transfer: %w", err)
	}
	defer dbTx.Rollback()

	created := nowTimestamp()
	saved := make([]core.Transaction, 0, len(legs))
	for _, leg := range legs {
		res, err := dbTx.ExecContext(ctx,
			`INSERT INTO transactions (user_id, account_id, category_id, type, date, amount_cents, note, transfer_group, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			leg.UserID, leg.AccountID, leg.CategoryID, string(leg.Type), leg.Date.String(),
			leg.Amount.Cents, leg.Note, nullableString(leg.TransferGroup), created)
		if err != nil {
			return nil, fmt.Errorf("insert transfer leg: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("transfer leg id: %w", err)
		}
		leg.ID = id
		leg.CreatedAt = parseTimestamp(created)
		saved = append(saved, leg)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transfer: %w", err)
	}

	slog.InfoContext(ctx, "Transfer saved",
		"transfer_group", legs[0].TransferGroup,
		"legs", len(saved))

	return saved, nil
}

// GetTransaction fetches one ledger row owned by userID.
func (r *Repository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, account_id, category_id, type, date, amount_cents, note, transfer_group, created_at
		 FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// DeleteTransaction removes exactly one ledger row by id.
func (r *Repository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "user_id", userID)
	return nil
}

// FindRange returns the user's transactions within [from, to] inclusive,
// optionally restricted to one account, newest first (date then id).
func (r *Repository) FindRange(ctx context.Context, userID int64, from, to core.Date, accountID *int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, account_id, category_id, type, date, amount_cents, note, transfer_group, created_at
		 FROM transactions
		 WHERE user_id = ? AND date BETWEEN ? AND ?
		   AND (? IS NULL OR account_id = ?)
		 ORDER BY date DESC, id DESC`,
		userID, from.String(), to.String(), accountID, accountID)
	if err != nil {
		return nil, fmt.Errorf("find range: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// FindByTransferGroup returns all legs sharing a transfer group id.
func (r *Repository) FindByTransferGroup(ctx context.Context, userID int64, group string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, account_id, category_id, type, date, amount_cents, note, transfer_group, created_at
		 FROM transactions WHERE user_id = ? AND transfer_group = ? ORDER BY id`,
		userID, group)
	if err != nil {
		return nil, fmt.Errorf("find transfer group: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// CountTransactions reports the total row count for a user. Used by tests
// and the atomicity guarantee around transfers.
func (r *Repository) CountTransactions(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx            core.Transaction
		categoryID    sql.NullInt64
		txType        string
		date          string
		transferGroup sql.NullString
		createdAt     string
	)
	err := row.Scan(&tx.ID, &tx.UserID, &tx.AccountID, &categoryID, &txType,
		&date, &tx.Amount.Cents, &tx.Note, &transferGroup, &createdAt)
	if err != nil {
		return core.Transaction{}, err
	}
	if categoryID.Valid {
		tx.CategoryID = &categoryID.Int64
	}
	tx.Type = core.TxType(txType)
	parsed, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	tx.Date = parsed
	tx.TransferGroup = transferGroup.String
	tx.CreatedAt = parseTimestamp(createdAt)
	return tx, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
