package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"finbook/internal/core"
)

// writeJSON serializes v with the proper content type.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses: validation failures are
// 422, unknown references 404, delete guards 409, everything else 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidType):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrInUse):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decimalAmount accepts a monetary amount as either a JSON number or a
// decimal string and carries it as cents.
type decimalAmount struct {
	Cents int64
	Set   bool
}

func (a *decimalAmount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return err
	}
	a.Cents = cents
	a.Set = true
	return nil
}

// userIDParam reads the userId query parameter, falling back to the
// configured default user.
func (s *Server) userIDParam(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("userId")
	if raw == "" {
		return s.defaultUserID, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, core.ErrNotFound
	}
	return id, nil
}

// userIDOrDefault resolves a body-supplied user id against the default.
func (s *Server) userIDOrDefault(bodyUserID int64) int64 {
	if bodyUserID > 0 {
		return bodyUserID
	}
	return s.defaultUserID
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	return parseID(r.PathValue("id"))
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, core.ErrNotFound
	}
	return id, nil
}

// decodeBody decodes a JSON request body, rejecting unknown fields so typos
// in field names surface as 400s instead of silent zero values.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// transactionResponse is the wire shape of one ledger row.
type transactionResponse struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"userId"`
	AccountID     int64  `json:"accountId"`
	CategoryID    *int64 `json:"categoryId,omitempty"`
	Type          string `json:"type"`
	Date          string `json:"date"`
	Amount        string `json:"amount"`
	Note          string `json:"note,omitempty"`
	TransferGroup string `json:"transferGroup,omitempty"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:            tx.ID,
		UserID:        tx.UserID,
		AccountID:     tx.AccountID,
		CategoryID:    tx.CategoryID,
		Type:          string(tx.Type),
		Date:          tx.Date.String(),
		Amount:        tx.Amount.String(),
		Note:          tx.Note,
		TransferGroup: tx.TransferGroup,
	}
}

// centsString renders a signed cent amount as a decimal string.
func centsString(cents int64) string {
	return core.Money{Cents: cents}.String()
}

func toTransactionResponses(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	return out
}
