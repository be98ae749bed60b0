package http

import (
	"net/http"

	"finbook/internal/core"
)

type canBuyRequest struct {
	UserID int64         `json:"userId"`
	Price  decimalAmount `json:"price"`
	// Accepted for forward compatibility; the projection always answers
	// for today.
	TargetDate string `json:"targetDate"`
	Priority   string `json:"priority"`
}

type canBuyResponse struct {
	CanBuyToday      bool     `json:"canBuyToday"`
	EarliestDate     string   `json:"earliestDate"`
	SafeToSpendToday string   `json:"safeToSpendToday"`
	Notes            []string `json:"notes"`
}

func (s *Server) handleAdvisorCanBuy(w http.ResponseWriter, r *http.Request) {
	var req canBuyRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if !req.Price.Set {
		writeError(w, core.ErrInvalidAmount)
		return
	}
	if req.TargetDate != "" {
		if _, err := core.ParseDate(req.TargetDate); err != nil {
			writeError(w, err)
			return
		}
	}

	advice, err := s.advisor.CanBuy(r.Context(), s.userIDOrDefault(req.UserID), core.Money{Cents: req.Price.Cents})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, canBuyResponse{
		CanBuyToday:      advice.CanBuyToday,
		EarliestDate:     advice.EarliestDate,
		SafeToSpendToday: advice.SafeToSpendToday.String(),
		Notes:            advice.Notes,
	})
}
