package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"finbook/internal/core"
)

// newTestRepo opens a fresh migrated database in a temp directory. The seed
// migration provides user 1 with accounts 1-3 and categories 1-7.
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "finbook.db"))
	if err != nil {
		t.Fatalf("opening repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustCreate(t *testing.T, repo *Repository, tx core.Transaction) core.Transaction {
	t.Helper()
	saved, err := repo.CreateTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("creating transaction %+v: %v", tx, err)
	}
	return saved
}

func expense(accountID int64, categoryID *int64, date string, cents int64) core.Transaction {
	d, _ := core.ParseDate(date)
	return core.Transaction{
		UserID: 1, AccountID: accountID, CategoryID: categoryID,
		Type: core.Expense, Date: d, Amount: core.Money{Cents: -cents},
	}
}

func income(accountID int64, date string, cents int64) core.Transaction {
	d, _ := core.ParseDate(date)
	return core.Transaction{
		UserID: 1, AccountID: accountID,
		Type: core.Income, Date: d, Amount: core.Money{Cents: cents},
	}
}

func catID(id int64) *int64 { return &id }

func TestSeedData(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user, err := repo.GetUser(ctx, 1)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.Email != "default@finbook.local" {
		t.Errorf("email = %q, want default@finbook.local", user.Email)
	}

	accounts, err := repo.ListAccounts(ctx, 1)
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(accounts) != 3 {
		t.Errorf("seeded accounts = %d, want 3", len(accounts))
	}

	categories, err := repo.ListCategories(ctx, 1)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 7 {
		t.Errorf("seeded categories = %d, want 7", len(categories))
	}
}

func TestGetUserNotFound(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.GetUser(context.Background(), 99); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateTransactionRejectsBadSign(t *testing.T) {
	repo := newTestRepo(t)
	d, _ := core.ParseDate("2025-03-21")

	// An outgoing row must be stored negative.
	_, err := repo.CreateTransaction(context.Background(), core.Transaction{
		UserID: 1, AccountID: 1, CategoryID: catID(1),
		Type: core.Expense, Date: d, Amount: core.Money{Cents: 4250},
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("err = %v, want ErrInvalidAmount", err)
	}
}

func TestCreateAndGetTransaction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved := mustCreate(t, repo, expense(1, catID(1), "2025-03-21", 4250))
	if saved.ID == 0 {
		t.Fatal("saved transaction has no id")
	}

	got, err := repo.GetTransaction(ctx, 1, saved.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Amount.Cents != -4250 {
		t.Errorf("amount = %d, want -4250", got.Amount.Cents)
	}
	if got.CategoryID == nil || *got.CategoryID != 1 {
		t.Errorf("category = %v, want 1", got.CategoryID)
	}
	if got.Date.String() != "2025-03-21" {
		t.Errorf("date = %q, want 2025-03-21", got.Date.String())
	}

	// Rows are invisible to other users.
	if _, err := repo.GetTransaction(ctx, 2, saved.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-user read err = %v, want ErrNotFound", err)
	}
}

func TestCreateTransactionRejectsUnknownAccount(t *testing.T) {
	repo := newTestRepo(t)
	// Foreign keys are enforced, so a dangling account id fails the insert.
	_, err := repo.CreateTransaction(context.Background(), expense(999, nil, "2025-03-21", 100))
	if err == nil {
		t.Fatal("insert with unknown account succeeded")
	}
}

func TestCreateTransferGroupPairsLegs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d, _ := core.ParseDate("2025-03-21")

	legs := []core.Transaction{
		{UserID: 1, AccountID: 1, Type: core.TransferOut, Date: d, Amount: core.Money{Cents: -50000}, TransferGroup: "g-atomic"},
		{UserID: 1, AccountID: 2, Type: core.TransferIn, Date: d, Amount: core.Money{Cents: 50000}, TransferGroup: "g-atomic"},
	}
	saved, err := repo.CreateTransferGroup(ctx, legs)
	if err != nil {
		t.Fatalf("CreateTransferGroup: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("saved %d legs, want 2", len(saved))
	}

	rows, err := repo.FindByTransferGroup(ctx, 1, "g-atomic")
	if err != nil {
		t.Fatalf("FindByTransferGroup: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("group has %d rows, want 2", len(rows))
	}
	var sum int64
	for _, row := range rows {
		sum += row.Amount.Cents
	}
	if sum != 0 {
		t.Errorf("legs sum to %d cents, want 0", sum)
	}
}

func TestCreateTransferGroupIsAtomic(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d, _ := core.ParseDate("2025-03-21")

	// Second leg references a nonexistent account; the first leg must not
	// survive the rollback.
	legs := []core.Transaction{
		{UserID: 1, AccountID: 1, Type: core.TransferOut, Date: d, Amount: core.Money{Cents: -50000}, TransferGroup: "g-broken"},
		{UserID: 1, AccountID: 999, Type: core.TransferIn, Date: d, Amount: core.Money{Cents: 50000}, TransferGroup: "g-broken"},
	}
	if _, err := repo.CreateTransferGroup(ctx, legs); err == nil {
		t.Fatal("transfer into unknown account succeeded")
	}

	n, err := repo.CountTransactions(ctx, 1)
	if err != nil {
		t.Fatalf("CountTransactions: %v", err)
	}
	if n != 0 {
		t.Errorf("%d rows survived a failed transfer, want 0", n)
	}
}

func TestDeleteTransaction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := mustCreate(t, repo, expense(1, catID(1), "2025-03-20", 1000))
	second := mustCreate(t, repo, expense(1, catID(1), "2025-03-21", 2000))

	if err := repo.DeleteTransaction(ctx, 1, first.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, 1, first.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("deleted row still readable: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, 1, second.ID); err != nil {
		t.Errorf("sibling row lost: %v", err)
	}

	if err := repo.DeleteTransaction(ctx, 1, first.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("double delete err = %v, want ErrNotFound", err)
	}
}

func TestFindRangeInclusiveBounds(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, expense(1, catID(1), "2025-02-28", 100))
	onFrom := mustCreate(t, repo, expense(1, catID(1), "2025-03-01", 200))
	onTo := mustCreate(t, repo, expense(1, catID(1), "2025-03-31", 300))
	mustCreate(t, repo, expense(1, catID(1), "2025-04-01", 400))

	from, _ := core.ParseDate("2025-03-01")
	to, _ := core.ParseDate("2025-03-31")
	rows, err := repo.FindRange(ctx, 1, from, to, nil)
	if err != nil {
		t.Fatalf("FindRange: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("range matched %d rows, want both boundary rows", len(rows))
	}
	// Newest first.
	if rows[0].ID != onTo.ID || rows[1].ID != onFrom.ID {
		t.Errorf("order = [%d %d], want [%d %d]", rows[0].ID, rows[1].ID, onTo.ID, onFrom.ID)
	}
}

func TestFindRangeAccountFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, expense(1, catID(1), "2025-03-10", 100))
	onSavings := mustCreate(t, repo, expense(2, catID(1), "2025-03-11", 200))

	from, _ := core.ParseDate("2025-03-01")
	to, _ := core.ParseDate("2025-03-31")

	savings := int64(2)
	rows, err := repo.FindRange(ctx, 1, from, to, &savings)
	if err != nil {
		t.Fatalf("FindRange: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != onSavings.ID {
		t.Errorf("filtered rows = %+v, want only the savings row", rows)
	}

	rows, err = repo.FindRange(ctx, 1, from, to, nil)
	if err != nil {
		t.Fatalf("FindRange: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("unfiltered rows = %d, want 2", len(rows))
	}
}

func TestMonthlyTotals(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, income(1, "2025-03-05", 300000))
	mustCreate(t, repo, expense(1, catID(1), "2025-03-10", 10000))
	mustCreate(t, repo, income(1, "2025-04-05", 300000))

	totals, err := repo.MonthlyTotals(ctx, 1, "2025-03-01", "2025-04-30")
	if err != nil {
		t.Fatalf("MonthlyTotals: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("months = %d, want 2", len(totals))
	}
	// The expense row is stored at -10000 and negated again by the CASE,
	// so March totals income plus the spend magnitude.
	if totals[0].YearMonth != "2025-03" || totals[0].TotalCents != 310000 {
		t.Errorf("march = %+v, want 2025-03/310000", totals[0])
	}
	if totals[1].YearMonth != "2025-04" || totals[1].TotalCents != 300000 {
		t.Errorf("april = %+v, want 2025-04/300000", totals[1])
	}
}

func TestTotalsByCategory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d, _ := core.ParseDate("2025-03-15")

	mustCreate(t, repo, expense(1, catID(1), "2025-03-10", 4000)) // Groceries
	mustCreate(t, repo, expense(1, catID(1), "2025-03-12", 2000)) // Groceries
	mustCreate(t, repo, expense(1, catID(5), "2025-03-01", 90000)) // Rent
	mustCreate(t, repo, expense(1, nil, "2025-03-13", 1500))      // uncategorized

	// Income and transfers must not appear in the spend report.
	mustCreate(t, repo, income(1, "2025-03-05", 300000))
	mustCreate(t, repo, core.Transaction{
		UserID: 1, AccountID: 1, Type: core.TransferOut, Date: d,
		Amount: core.Money{Cents: -50000}, TransferGroup: "g-1",
	})

	totals, err := repo.TotalsByCategory(ctx, 1, "2025-03-01", "2025-03-31")
	if err != nil {
		t.Fatalf("TotalsByCategory: %v", err)
	}
	if len(totals) != 3 {
		t.Fatalf("rows = %d, want 3", len(totals))
	}

	// Largest spend first.
	if totals[0].CategoryName == nil || *totals[0].CategoryName != "Rent" || totals[0].TotalCents != 90000 {
		t.Errorf("top row = %+v, want Rent/90000", totals[0])
	}
	if totals[1].CategoryName == nil || *totals[1].CategoryName != "Groceries" || totals[1].TotalCents != 6000 {
		t.Errorf("second row = %+v, want Groceries/6000", totals[1])
	}
	if totals[2].CategoryName != nil || totals[2].TotalCents != 1500 {
		t.Errorf("third row = %+v, want nil category/1500", totals[2])
	}
}

func TestAdvisorAggregates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d, _ := core.ParseDate("2025-03-08")

	mustCreate(t, repo, income(1, "2025-03-01", 300000))
	mustCreate(t, repo, core.Transaction{
		UserID: 1, AccountID: 2, Type: core.TransferIn, Date: d,
		Amount: core.Money{Cents: 20000}, TransferGroup: "g-1",
	})
	mustCreate(t, repo, expense(1, catID(1), "2025-03-10", 1000))
	mustCreate(t, repo, expense(1, catID(1), "2025-03-12", 2000))

	in, err := repo.SumIncomingBetween(ctx, 1, "2025-03-01", "2025-03-31")
	if err != nil {
		t.Fatalf("SumIncomingBetween: %v", err)
	}
	if in != 320000 {
		t.Errorf("incoming = %d, want 320000", in)
	}

	out, err := repo.SumOutgoingBetween(ctx, 1, "2025-03-01", "2025-03-31")
	if err != nil {
		t.Fatalf("SumOutgoingBetween: %v", err)
	}
	if out != 3000 {
		t.Errorf("outgoing = %d, want 3000", out)
	}

	// Average of the two expense magnitudes, not a per-day rate.
	avg, err := repo.AvgOutgoingBetween(ctx, 1, "2025-03-01", "2025-03-31")
	if err != nil {
		t.Fatalf("AvgOutgoingBetween: %v", err)
	}
	if avg != 1500 {
		t.Errorf("avg = %f, want 1500", avg)
	}

	// Empty window yields zeros, not NULL scan failures.
	avg, err = repo.AvgOutgoingBetween(ctx, 1, "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("AvgOutgoingBetween empty: %v", err)
	}
	if avg != 0 {
		t.Errorf("empty avg = %f, want 0", avg)
	}
}

func TestDeleteAccountGuard(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, expense(1, catID(1), "2025-03-10", 100))

	if err := repo.DeleteAccount(ctx, 1, 1); !errors.Is(err, core.ErrInUse) {
		t.Errorf("delete referenced account err = %v, want ErrInUse", err)
	}
	// Cash has no transactions.
	if err := repo.DeleteAccount(ctx, 1, 3); err != nil {
		t.Errorf("delete unused account: %v", err)
	}
	if err := repo.DeleteAccount(ctx, 1, 99); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("delete missing account err = %v, want ErrNotFound", err)
	}
}

func TestDeleteCategoryGuard(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, expense(1, catID(1), "2025-03-10", 100))

	if err := repo.DeleteCategory(ctx, 1, 1); !errors.Is(err, core.ErrInUse) {
		t.Errorf("delete referenced category err = %v, want ErrInUse", err)
	}
	if err := repo.DeleteCategory(ctx, 1, 7); err != nil {
		t.Errorf("delete unused category: %v", err)
	}
}

func TestLedgerEvents(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved := mustCreate(t, repo, expense(1, catID(1), "2025-03-10", 100))

	ev := LedgerEvent{TransactionID: saved.ID, Action: "created", OccurredAt: saved.CreatedAt}
	if err := repo.RecordLedgerEvent(ctx, ev); err != nil {
		t.Fatalf("RecordLedgerEvent: %v", err)
	}
	ev.Action = "deleted"
	if err := repo.RecordLedgerEvent(ctx, ev); err != nil {
		t.Fatalf("RecordLedgerEvent: %v", err)
	}

	n, err := repo.CountLedgerEvents(ctx, saved.ID)
	if err != nil {
		t.Fatalf("CountLedgerEvents: %v", err)
	}
	if n != 2 {
		t.Errorf("events = %d, want 2", n)
	}
}
