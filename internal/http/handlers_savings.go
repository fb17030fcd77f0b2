package http

import (
	"net/http"

	"celengan/internal/core"
)

type saveRequest struct {
	Destination string `json:"destination"`
	Target      string `json:"target"`
	Amount      string `json:"amount"`
	Note        string `json:"note"`
}

type spendRequest struct {
	Amount string `json:"amount"`
	Note   string `json:"note"`
}

type withdrawRequest struct {
	Target string `json:"target"`
	Note   string `json:"note"`
}

type transactionResponse struct {
	Kind            string `json:"kind"`
	Amount          int64  `json:"amount"`
	AmountFormatted string `json:"amount_formatted"`
	Note            string `json:"note"`
	Balance         int64  `json:"balance"`
	TargetCompleted bool   `json:"target_completed,omitempty"`
}

// handleSave records a deposit into the main balance or a named target,
// depending on the requested destination.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	account, ok := s.currentAccount(w, r)
	if !ok {
		return
	}
	var req saveRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	switch req.Destination {
	case "", "main":
		tx, err := s.savings.SaveToMain(r.Context(), account, amount, sanitizeInput(req.Note))
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateDashboard(account)
		writeJSON(w, http.StatusOK, transactionResponse{
			Kind:            string(tx.Kind),
			Amount:          tx.Amount,
			AmountFormatted: core.FormatRupiah(tx.Amount),
			Note:            tx.Note,
			Balance:         account.MainBalance,
		})
	case "target":
		tx, completed, err := s.savings.SaveToTarget(r.Context(), account, sanitizeInput(req.Target), amount, sanitizeInput(req.Note))
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateDashboard(account)
		target, _ := account.Target(req.Target)
		resp := transactionResponse{
			Kind:            string(tx.Kind),
			Amount:          tx.Amount,
			AmountFormatted: core.FormatRupiah(tx.Amount),
			Note:            tx.Note,
			TargetCompleted: completed,
		}
		if target != nil {
			resp.Balance = target.Balance
		}
		writeJSON(w, http.StatusOK, resp)
	default:
		badRequest(w, "destination must be \"main\" or \"target\"")
	}
}

// handleSpend records an expense against the main balance. Overspending
// drains the balance to zero rather than failing.
func (s *Server) handleSpend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	account, ok := s.currentAccount(w, r)
	if !ok {
		return
	}
	var req spendRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.savings.SpendFromMain(r.Context(), account, amount, sanitizeInput(req.Note))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboard(account)
	writeJSON(w, http.StatusOK, transactionResponse{
		Kind:            string(tx.Kind),
		Amount:          tx.Amount,
		AmountFormatted: core.FormatRupiah(tx.Amount),
		Note:            tx.Note,
		Balance:         account.MainBalance,
	})
}

// handleWithdrawPlan quotes the withdrawal a target allows right now
// without committing anything. The client shows the quote and asks the
// user to confirm before calling the withdraw endpoint.
func (s *Server) handleWithdrawPlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	account, ok := s.currentAccount(w, r)
	if !ok {
		return
	}
	var req withdrawRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	amount, err := s.savings.PlanTargetWithdrawal(r.Context(), account, sanitizeInput(req.Target))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"target":           req.Target,
		"amount":           amount,
		"amount_formatted": core.FormatRupiah(amount),
	})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	account, ok := s.currentAccount(w, r)
	if !ok {
		return
	}
	var req withdrawRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	tx, err := s.savings.WithdrawFromTarget(r.Context(), account, sanitizeInput(req.Target), sanitizeInput(req.Note))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboard(account)
	target, _ := account.Target(req.Target)
	resp := transactionResponse{
		Kind:            string(tx.Kind),
		Amount:          tx.Amount,
		AmountFormatted: core.FormatRupiah(tx.Amount),
		Note:            tx.Note,
	}
	if target != nil {
		resp.Balance = target.Balance
	}
	writeJSON(w, http.StatusOK, resp)
}
