// Package http exposes the ledger over a JSON REST API. The handlers stay
// thin: decode, delegate to a service, map errors to status codes.
package http

import (
	"context"
	"net/http"
	"time"

	"finbook/internal/cache"
	"finbook/internal/core"
	"finbook/internal/middleware/trace"
	"finbook/internal/services"
	"finbook/internal/storage"
)

// Ledger is the transaction writer surface the handlers call.
type Ledger interface {
	CreateExpense(ctx context.Context, userID, accountID, categoryID int64, date string, amountCents int64, note string) (core.Transaction, error)
	CreateIncome(ctx context.Context, userID, accountID int64, date string, amountCents int64, note string) (core.Transaction, error)
	CreateTransfer(ctx context.Context, userID, fromAccountID, toAccountID int64, date string, amountCents, feeCents int64, note string) (services.TransferResult, error)
	DeleteTransaction(ctx context.Context, userID, id int64) error
	ListTransactions(ctx context.Context, userID int64, from, to string, accountID *int64) ([]core.Transaction, error)
	ListAccounts(ctx context.Context, userID int64) ([]core.Account, error)
	ListCategories(ctx context.Context, userID int64) ([]core.Category, error)
	DeleteAccount(ctx context.Context, userID, id int64) error
	DeleteCategory(ctx context.Context, userID, id int64) error
}

// Reports is the read-only aggregation surface.
type Reports interface {
	MonthlyTotals(ctx context.Context, userID int64, from, to string) ([]storage.MonthlyTotal, error)
	TotalsByCategory(ctx context.Context, userID int64, from, to string) ([]storage.CategoryTotal, error)
}

// Advisor computes the affordability verdict.
type Advisor interface {
	CanBuy(ctx context.Context, userID int64, price core.Money) (core.Advice, error)
}

type Server struct {
	http.Server

	ledger  Ledger
	reports Reports
	advisor Advisor

	// Fallback identity when a request names no user; stands in for the
	// missing authentication layer.
	defaultUserID int64

	monthlyCache  *cache.LRUCache[[]storage.MonthlyTotal]
	categoryCache *cache.LRUCache[[]storage.CategoryTotal]

	tracer *trace.Middleware
}

// NewServer wires the routes. Report responses are cached briefly and the
// cache is purged on every ledger write.
func NewServer(addr string, ledger Ledger, reports Reports, advisor Advisor, defaultUserID int64) *Server {
	s := &Server{
		ledger:        ledger,
		reports:       reports,
		advisor:       advisor,
		defaultUserID: defaultUserID,
		monthlyCache:  cache.NewLRUCache[[]storage.MonthlyTotal](64, 30*time.Second),
		categoryCache: cache.NewLRUCache[[]storage.CategoryTotal](64, 30*time.Second),
		tracer:        trace.NewMiddleware(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("POST /api/income", s.handleCreateIncome)
	mux.HandleFunc("POST /api/transfer", s.handleCreateTransfer)

	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteAccount)
	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/reports/monthly", s.handleMonthlyReport)
	mux.HandleFunc("GET /api/reports/by-category", s.handleCategoryReport)

	mux.HandleFunc("POST /api/advisor/can-buy", s.handleAdvisorCanBuy)

	mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.Server.Addr = addr
	s.Server.Handler = s.tracer.Middleware(mux)
	return s
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.Server.Handler
}

// invalidateReports drops cached report responses after a ledger write.
func (s *Server) invalidateReports() {
	s.monthlyCache.Purge()
	s.categoryCache.Purge()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "ok",
		"total_requests":     m.TotalRequests,
		"avg_response_us":    m.AverageResponseTime,
		"report_cache_items": s.monthlyCache.Len() + s.categoryCache.Len(),
	})
}
