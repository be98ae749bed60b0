package core

// This file contains the affordability projection. It is a pure function of
// the ledger aggregates and the current date, so the arithmetic can be
// tested without a database.

import "strconv"

// BurnFigures are the ledger aggregates the projection runs on.
type BurnFigures struct {
	IncomeMonthCents int64   // INCOME + TRANSFER_IN within the current month
	SpentToDateCents int64   // -(EXPENSE + TRANSFER_OUT) month start through today
	DailyBurnCents   float64 // average outgoing magnitude over the trailing 30 days
}

// Advice is the advisor verdict for one candidate purchase.
type Advice struct {
	CanBuyToday      bool
	EarliestDate     string
	SafeToSpendToday Money
	Notes            []string
}

// ProjectAffordability decides whether a purchase of price is safe today.
//
// daysLeft is computed as a day-of-year subtraction (monthEnd minus today),
// which goes wrong across a year boundary in December. The original ledger
// behaves this way and reports depend on parity, so the formula is kept
// as-is rather than replaced with a calendar day-count.
func ProjectAffordability(today Date, figures BurnFigures, price Money) Advice {
	monthEnd := today.MonthEnd()
	daysLeft := monthEnd.YearDay() - today.YearDay()

	projectedBurn := figures.DailyBurnCents * float64(daysLeft)
	buffer := HalfUpCents(projectedBurn * 0.10)

	safeFloat := float64(figures.IncomeMonthCents) -
		float64(figures.SpentToDateCents) -
		projectedBurn -
		float64(buffer)
	safe := Money{Cents: HalfUpCents(safeFloat)}

	canBuy := safeFloat >= float64(price.Cents)

	earliest := today.String()
	if !canBuy {
		// Payday placeholder: the 25th of next month, not derived from
		// actual income rows.
		earliest = NewDate(today.Year(), int(today.Month())+1, 25).String()
	}

	notes := []string{
		"Monthly income: " + Money{Cents: figures.IncomeMonthCents}.String(),
		"Spent to date: " + Money{Cents: figures.SpentToDateCents}.String(),
		"Daily burn rate: " + FormatCentsFloat(figures.DailyBurnCents),
		"Days left in month: " + strconv.Itoa(daysLeft),
		"Buffer (10%): " + Money{Cents: buffer}.String(),
		"Safe to spend today: " + safe.String(),
	}
	if canBuy {
		notes = append(notes, "Purchase is safe to make today")
	} else {
		notes = append(notes, "Consider waiting until next payday")
	}

	return Advice{
		CanBuyToday:      canBuy,
		EarliestDate:     earliest,
		SafeToSpendToday: safe,
		Notes:            notes,
	}
}
