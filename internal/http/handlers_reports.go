package http

import (
	"fmt"
	"net/http"
)

// monthlyRow mirrors the aggregation row: "ym" is the YYYY-MM bucket.
type monthlyRow struct {
	YM    string `json:"ym"`
	Total string `json:"total"`
}

type categoryRow struct {
	Type     *string `json:"type"`
	Category *string `json:"category"`
	Total    string  `json:"total"`
}

// reportWindow reads the from/to query parameters; both are required so a
// report is always an explicit range.
func reportWindow(r *http.Request) (from, to string) {
	q := r.URL.Query()
	return q.Get("from"), q.Get("to")
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	from, to := reportWindow(r)

	key := fmt.Sprintf("monthly:%d:%s:%s", userID, from, to)
	rows, ok := s.monthlyCache.Get(key)
	if !ok {
		rows, err = s.reports.MonthlyTotals(r.Context(), userID, from, to)
		if err != nil {
			writeError(w, err)
			return
		}
		s.monthlyCache.Set(key, rows)
	}

	out := make([]monthlyRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, monthlyRow{YM: row.YearMonth, Total: centsString(row.TotalCents)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	from, to := reportWindow(r)

	key := fmt.Sprintf("category:%d:%s:%s", userID, from, to)
	rows, ok := s.categoryCache.Get(key)
	if !ok {
		rows, err = s.reports.TotalsByCategory(r.Context(), userID, from, to)
		if err != nil {
			writeError(w, err)
			return
		}
		s.categoryCache.Set(key, rows)
	}

	out := make([]categoryRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, categoryRow{
			Type:     row.CategoryType,
			Category: row.CategoryName,
			Total:    centsString(row.TotalCents),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
