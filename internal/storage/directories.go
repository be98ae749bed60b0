package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finbook/internal/core"
)

// GetUser looks up a user by id.
func (r *Repository) GetUser(ctx context.Context, id int64) (core.User, error) {
	var (
		u         core.User
		createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Email, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = parseTimestamp(createdAt)
	return u, nil
}

// GetAccount looks up an account owned by userID.
func (r *Repository) GetAccount(ctx context.Context, userID, id int64) (core.Account, error) {
	var (
		a         core.Account
		createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type, opening_balance_cents, created_at
		 FROM accounts WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.OpeningBalanceCents, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	a.CreatedAt = parseTimestamp(createdAt)
	return a, nil
}

// GetCategory looks up a category owned by userID.
func (r *Repository) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type FROM categories WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListAccounts returns the user's accounts ordered by id.
func (r *Repository) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, opening_balance_cents, created_at
		 FROM accounts WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var (
			a         core.Account
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.OpeningBalanceCents, &createdAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.CreatedAt = parseTimestamp(createdAt)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// ListCategories returns the user's categories ordered by type then name.
func (r *Repository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, type FROM categories
		 WHERE user_id = ? ORDER BY type, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// DeleteAccount removes an account. Accounts referenced by ledger rows are
// protected: the caller gets core.ErrInUse instead of a dangling ledger.
func (r *Repository) DeleteAccount(ctx context.Context, userID, id int64) error {
	var refs int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_id = ?`, id,
	).Scan(&refs)
	if err != nil {
		return fmt.Errorf("count account references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("account %d: %w", id, core.ErrInUse)
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// DeleteCategory removes a category with the same reference guard.
func (r *Repository) DeleteCategory(ctx context.Context, userID, id int64) error {
	var refs int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, id,
	).Scan(&refs)
	if err != nil {
		return fmt.Errorf("count category references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("category %d: %w", id, core.ErrInUse)
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	return nil
}
