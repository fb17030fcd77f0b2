package http

import (
	"log/slog"
	"net/http"
	"time"

	"celengan/internal/core"
)

type dashboardResponse struct {
	Username             string         `json:"username"`
	MainBalance          int64          `json:"main_balance"`
	MainBalanceFormatted string         `json:"main_balance_formatted"`
	Analytics            core.Analytics `json:"analytics"`
	Targets              []targetView   `json:"targets"`
}

type historyEntry struct {
	At              time.Time `json:"at"`
	Kind            string    `json:"kind"`
	Amount          int64     `json:"amount"`
	AmountFormatted string    `json:"amount_formatted"`
	Note            string    `json:"note"`
}

func (s *Server) dashboardKey(account *core.Account) string {
	return account.Key()
}

func (s *Server) invalidateDashboard(account *core.Account) {
	s.dashboardCache.Delete(s.dashboardKey(account))
}

func buildDashboard(account *core.Account) dashboardResponse {
	resp := dashboardResponse{
		Username:             account.Username,
		MainBalance:          account.MainBalance,
		MainBalanceFormatted: core.FormatRupiah(account.MainBalance),
		Analytics:            core.ComputeAnalytics(account),
		Targets:              make([]targetView, 0, len(account.Targets)),
	}
	for _, name := range account.TargetNames() {
		if t, ok := account.Target(name); ok {
			resp.Targets = append(resp.Targets, viewOfTarget(t))
		}
	}
	return resp
}

// handleDashboard returns the balances, target progress and the
// spend/save health classification in one payload.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	account, ok := s.currentAccount(w, r)
	if !ok {
		return
	}

	key := s.dashboardKey(account)
	if data, found := s.dashboardCache.Get(key); found {
		slog.DebugContext(r.Context(), "Dashboard cache hit", "username", key)
		writeJSON(w, http.StatusOK, data)
		return
	}

	data := buildDashboard(account)
	s.dashboardCache.Set(key, data)
	writeJSON(w, http.StatusOK, data)
}

// handleHistory lists transactions for the main balance, or for one
// target when ?target= is given.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	account, ok := s.currentAccount(w, r)
	if !ok {
		return
	}

	log := account.Log
	name := sanitizeInput(r.URL.Query().Get("target"))
	if name != "" {
		target, found := account.Target(name)
		if !found {
			writeError(w, r, core.ErrTargetNotFound)
			return
		}
		log = target.Log
	}

	// Newest first.
	entries := make([]historyEntry, 0, len(log))
	for i := len(log) - 1; i >= 0; i-- {
		tx := log[i]
		entries = append(entries, historyEntry{
			At:              tx.At,
			Kind:            string(tx.Kind),
			Amount:          tx.Amount,
			AmountFormatted: core.FormatRupiah(tx.Amount),
			Note:            tx.Note,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": entries})
}
