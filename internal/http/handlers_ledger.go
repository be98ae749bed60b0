package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"finbook/internal/core"
)

type createExpenseRequest struct {
	UserID     int64         `json:"userId"`
	AccountID  int64         `json:"accountId"`
	CategoryID int64         `json:"categoryId"`
	Date       string        `json:"date"`
	Amount     decimalAmount `json:"amount"`
	Note       string        `json:"note"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if !req.Amount.Set {
		writeError(w, core.ErrInvalidAmount)
		return
	}
	tx, err := s.ledger.CreateExpense(r.Context(), s.userIDOrDefault(req.UserID),
		req.AccountID, req.CategoryID, req.Date, req.Amount.Cents, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	// Default window: the trailing month up to today.
	if to == "" {
		to = core.DateOf(time.Now()).String()
	}
	if from == "" {
		toDate, err := core.ParseDate(to)
		if err != nil {
			writeError(w, err)
			return
		}
		from = core.Date{Time: toDate.AddDate(0, -1, 0)}.String()
	}

	var accountID *int64
	if raw := q.Get("accountId"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		accountID = &id
	}

	txs, err := s.ledger.ListTransactions(r.Context(), userID, from, to, accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

type createIncomeRequest struct {
	UserID    int64         `json:"userId"`
	AccountID int64         `json:"accountId"`
	Date      string        `json:"date"`
	Amount    decimalAmount `json:"amount"`
	Note      string        `json:"note"`
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req createIncomeRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if !req.Amount.Set {
		writeError(w, core.ErrInvalidAmount)
		return
	}
	tx, err := s.ledger.CreateIncome(r.Context(), s.userIDOrDefault(req.UserID),
		req.AccountID, req.Date, req.Amount.Cents, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

type createTransferRequest struct {
	UserID        int64         `json:"userId"`
	FromAccountID int64         `json:"fromAccountId"`
	ToAccountID   int64         `json:"toAccountId"`
	Date          string        `json:"date"`
	Amount        decimalAmount `json:"amount"`
	Fee           decimalAmount `json:"fee"`
	Note          string        `json:"note"`
}

type transferResponse struct {
	TransferOut transactionResponse `json:"transferOut"`
	TransferIn  transactionResponse `json:"transferIn"`
}

func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req createTransferRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if !req.Amount.Set {
		writeError(w, core.ErrInvalidAmount)
		return
	}
	res, err := s.ledger.CreateTransfer(r.Context(), s.userIDOrDefault(req.UserID),
		req.FromAccountID, req.ToAccountID, req.Date, req.Amount.Cents, req.Fee.Cents, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, transferResponse{
		TransferOut: toTransactionResponse(res.TransferOut),
		TransferIn:  toTransactionResponse(res.TransferIn),
	})
}

type accountResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	OpeningBalance string `json:"openingBalance"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	accounts, err := s.ledger.ListAccounts(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountResponse{
			ID:             a.ID,
			Name:           a.Name,
			Type:           a.Type,
			OpeningBalance: core.Money{Cents: a.OpeningBalanceCents}.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	s.handleDeleteDirectory(w, r, s.ledger.DeleteAccount)
}

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	categories, err := s.ledger.ListCategories(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name, Type: c.Type})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	s.handleDeleteDirectory(w, r, s.ledger.DeleteCategory)
}

// handleDeleteDirectory shares the account/category delete flow; only the
// guarded delete call differs.
func (s *Server) handleDeleteDirectory(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, userID, id int64) error) {
	userID, err := s.userIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := del(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// badRequest distinguishes malformed JSON from a malformed amount inside
// otherwise valid JSON.
func badRequest(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrInvalidAmount) {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
}
