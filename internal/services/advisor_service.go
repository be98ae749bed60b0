package services

import (
	"context"
	"fmt"
	"time"

	"finbook/internal/core"
)

// AdvisorService answers "can I safely buy this today?". It gathers the
// month's aggregates from the store and delegates the arithmetic to the
// pure projection in core.
type AdvisorService struct {
	store AdvisorStore
	now   func() time.Time
}

func NewAdvisorService(store AdvisorStore) *AdvisorService {
	return &AdvisorService{store: store, now: time.Now}
}

// WithClock overrides the advisor's notion of "today". Tests use this to
// pin the projection to a fixed date.
func (s *AdvisorService) WithClock(now func() time.Time) *AdvisorService {
	s.now = now
	return s
}

// CanBuy projects whether a purchase of price is safe for userID today.
// Pure read: no ledger mutation.
func (s *AdvisorService) CanBuy(ctx context.Context, userID int64, price core.Money) (core.Advice, error) {
	if price.Cents < 1 {
		return core.Advice{}, core.ErrInvalidAmount
	}

	today := core.DateOf(s.now())
	monthStart := today.MonthStart()
	monthEnd := today.MonthEnd()

	incomeMonth, err := s.store.SumIncomingBetween(ctx, userID, monthStart.String(), monthEnd.String())
	if err != nil {
		return core.Advice{}, fmt.Errorf("monthly income: %w", err)
	}

	spentToDate, err := s.store.SumOutgoingBetween(ctx, userID, monthStart.String(), today.String())
	if err != nil {
		return core.Advice{}, fmt.Errorf("spent to date: %w", err)
	}

	// Trailing 30-day window for the burn rate.
	windowStart := today.AddDays(-30)
	dailyBurn, err := s.store.AvgOutgoingBetween(ctx, userID, windowStart.String(), today.String())
	if err != nil {
		return core.Advice{}, fmt.Errorf("daily burn: %w", err)
	}

	figures := core.BurnFigures{
		IncomeMonthCents: incomeMonth,
		SpentToDateCents: spentToDate,
		DailyBurnCents:   dailyBurn,
	}
	return core.ProjectAffordability(today, figures, price), nil
}
