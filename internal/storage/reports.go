package storage

import (
	"context"
	"fmt"
)

// MonthlyTotal is one row of the month-by-month report.
type MonthlyTotal struct {
	YearMonth  string
	TotalCents int64
}

// CategoryTotal is one row of the per-category spend report. Type and Name
// are nil for expenses without a category.
type CategoryTotal struct {
	CategoryType *string
	CategoryName *string
	TotalCents   int64
}

// MonthlyTotals groups the user's transactions in [from, to] by calendar
// month. Income-like types count with their stored (positive) sign and all
// other types are negated on top of their stored negative sign; the
// resulting sign doubling for outgoing rows is the report's contract, so
// the CASE arithmetic must stay exactly as written.
func (r *Repository) MonthlyTotals(ctx context.Context, userID int64, from, to string) ([]MonthlyTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT substr(date, 1, 7) AS ym,
		        SUM(CASE WHEN type IN ('INCOME','TRANSFER_IN') THEN amount_cents ELSE -amount_cents END) AS total
		 FROM transactions
		 WHERE user_id = ? AND date BETWEEN ? AND ?
		 GROUP BY ym
		 ORDER BY ym`,
		userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}
	defer rows.Close()

	var totals []MonthlyTotal
	for rows.Next() {
		var t MonthlyTotal
		if err := rows.Scan(&t.YearMonth, &t.TotalCents); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// TotalsByCategory sums expense magnitudes per category over [from, to],
// largest first. Only EXPENSE rows participate, so every total is the
// positive amount spent.
func (r *Repository) TotalsByCategory(ctx context.Context, userID int64, from, to string) ([]CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.type, c.name,
		        SUM(CASE WHEN t.type = 'EXPENSE' THEN -t.amount_cents ELSE 0 END) AS total
		 FROM transactions t
		 LEFT JOIN categories c ON t.category_id = c.id
		 WHERE t.user_id = ? AND t.date BETWEEN ? AND ?
		   AND t.type = 'EXPENSE'
		 GROUP BY c.type, c.name
		 ORDER BY total DESC`,
		userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("totals by category: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var t CategoryTotal
		if err := rows.Scan(&t.CategoryType, &t.CategoryName, &t.TotalCents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// SumIncomingBetween totals INCOME and TRANSFER_IN amounts in [from, to].
func (r *Repository) SumIncomingBetween(ctx context.Context, userID int64, from, to string) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0)
		 FROM transactions
		 WHERE user_id = ? AND date BETWEEN ? AND ?
		   AND type IN ('INCOME','TRANSFER_IN')`,
		userID, from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum incoming: %w", err)
	}
	return total, nil
}

// SumOutgoingBetween totals the magnitude of EXPENSE and TRANSFER_OUT rows
// in [from, to]; the result is a positive number of cents.
func (r *Repository) SumOutgoingBetween(ctx context.Context, userID int64, from, to string) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(-amount_cents), 0)
		 FROM transactions
		 WHERE user_id = ? AND date BETWEEN ? AND ?
		   AND type IN ('EXPENSE','TRANSFER_OUT')`,
		userID, from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum outgoing: %w", err)
	}
	return total, nil
}

// AvgOutgoingBetween averages the magnitude of EXPENSE and TRANSFER_OUT
// rows in [from, to]. The average is taken over matching rows, not over
// days; zero when no rows match.
func (r *Repository) AvgOutgoingBetween(ctx context.Context, userID int64, from, to string) (float64, error) {
	var avg float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(-amount_cents), 0)
		 FROM transactions
		 WHERE user_id = ? AND date BETWEEN ? AND ?
		   AND type IN ('EXPENSE','TRANSFER_OUT')`,
		userID, from, to).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("avg outgoing: %w", err)
	}
	return avg, nil
}
