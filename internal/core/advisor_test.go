package core

import (
	"reflect"
	"testing"
)

// Fixture: income 3000.00, spent 1200.00, daily burn 50.00, 10 days left in
// March gives buffer 50.00 and 1250.00 safe to spend.
var marchFigures = BurnFigures{
	IncomeMonthCents: 300000,
	SpentToDateCents: 120000,
	DailyBurnCents:   5000,
}

func TestProjectAffordability_CanBuy(t *testing.T) {
	today := NewDate(2025, 3, 21) // 10 days before March 31

	advice := ProjectAffordability(today, marchFigures, Money{Cents: 50000})

	if !advice.CanBuyToday {
		t.Error("CanBuyToday = false, want true")
	}
	if advice.EarliestDate != "2025-03-21" {
		t.Errorf("EarliestDate = %s, want today", advice.EarliestDate)
	}
	if advice.SafeToSpendToday.Cents != 125000 {
		t.Errorf("SafeToSpendToday = %s, want 1250.00", advice.SafeToSpendToday)
	}

	wantNotes := []string{
		"Monthly income: 3000.00",
		"Spent to date: 1200.00",
		"Daily burn rate: 50.00",
		"Days left in month: 10",
		"Buffer (10%): 50.00",
		"Safe to spend today: 1250.00",
		"Purchase is safe to make today",
	}
	if !reflect.DeepEqual(advice.Notes, wantNotes) {
		t.Errorf("Notes = %v, want %v", advice.Notes, wantNotes)
	}
}

func TestProjectAffordability_WaitForPayday(t *testing.T) {
	today := NewDate(2025, 3, 21)

	advice := ProjectAffordability(today, marchFigures, Money{Cents: 200000})

	if advice.CanBuyToday {
		t.Error("CanBuyToday = true, want false")
	}
	if advice.EarliestDate != "2025-04-25" {
		t.Errorf("EarliestDate = %s, want 25th of next month", advice.EarliestDate)
	}
	if advice.SafeToSpendToday.Cents != 125000 {
		t.Errorf("SafeToSpendToday = %s, want 1250.00", advice.SafeToSpendToday)
	}
	last := advice.Notes[len(advice.Notes)-1]
	if last != "Consider waiting until next payday" {
		t.Errorf("closing note = %q", last)
	}
}

func TestProjectAffordability_ExactPrice(t *testing.T) {
	today := NewDate(2025, 3, 21)

	// safeToSpendToday >= price is inclusive
	advice := ProjectAffordability(today, marchFigures, Money{Cents: 125000})
	if !advice.CanBuyToday {
		t.Error("price equal to safe-to-spend should be allowed")
	}
}

func TestProjectAffordability_NoBurnHistory(t *testing.T) {
	today := NewDate(2025, 6, 20) // June 30 is 10 days out
	figures := BurnFigures{IncomeMonthCents: 100000}

	advice := ProjectAffordability(today, figures, Money{Cents: 100000})

	if !advice.CanBuyToday {
		t.Error("with zero burn the whole income is spendable")
	}
	if advice.SafeToSpendToday.Cents != 100000 {
		t.Errorf("SafeToSpendToday = %s, want 1000.00", advice.SafeToSpendToday)
	}
}

func TestProjectAffordability_DecemberRollover(t *testing.T) {
	// The 25th-of-next-month placeholder crosses the year boundary.
	today := NewDate(2025, 12, 20)
	figures := BurnFigures{SpentToDateCents: 500000}

	advice := ProjectAffordability(today, figures, Money{Cents: 10000})

	if advice.CanBuyToday {
		t.Error("deep in the red should not be safe")
	}
	if advice.EarliestDate != "2026-01-25" {
		t.Errorf("EarliestDate = %s, want 2026-01-25", advice.EarliestDate)
	}
}

func TestProjectAffordability_FractionalBurn(t *testing.T) {
	today := NewDate(2025, 3, 21) // 10 days left
	figures := BurnFigures{
		IncomeMonthCents: 100000,
		DailyBurnCents:   333.4, // average over rows need not be whole cents
	}

	advice := ProjectAffordability(today, figures, Money{Cents: 1})

	// projected burn 3334, buffer round(333.4) = 333
	if advice.SafeToSpendToday.Cents != 100000-3334-333 {
		t.Errorf("SafeToSpendToday = %d cents", advice.SafeToSpendToday.Cents)
	}
}
