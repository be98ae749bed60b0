package services

import (
	"context"

	"finbook/internal/core"
	"finbook/internal/storage"
)

// ReportService computes grouped sums over the ledger. Both reports are
// read-only and treat [from, to] as inclusive on both ends.
type ReportService struct {
	store ReportStore
}

func NewReportService(store ReportStore) *ReportService {
	return &ReportService{store: store}
}

// MonthlyTotals returns net figures per calendar month, ascending by month.
func (s *ReportService) MonthlyTotals(ctx context.Context, userID int64, from, to string) ([]storage.MonthlyTotal, error) {
	fromDate, err := core.ParseDate(from)
	if err != nil {
		return nil, err
	}
	toDate, err := core.ParseDate(to)
	if err != nil {
		return nil, err
	}
	return s.store.MonthlyTotals(ctx, userID, fromDate.String(), toDate.String())
}

// TotalsByCategory returns expense magnitudes per category, largest first.
func (s *ReportService) TotalsByCategory(ctx context.Context, userID int64, from, to string) ([]storage.CategoryTotal, error) {
	fromDate, err := core.ParseDate(from)
	if err != nil {
		return nil, err
	}
	toDate, err := core.ParseDate(to)
	if err != nil {
		return nil, err
	}
	return s.store.TotalsByCategory(ctx, userID, fromDate.String(), toDate.String())
}
