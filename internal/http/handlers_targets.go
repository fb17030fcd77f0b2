package http

import (
	"net/http"

	"celengan/internal/core"
)

type createTargetRequest struct {
	Name string `json:"name"`
	Goal string `json:"goal"`
}

type targetView struct {
	Name           string `json:"name"`
	Goal           int64  `json:"goal"`
	GoalFormatted  string `json:"goal_formatted"`
	Balance        int64  `json:"balance"`
	BalanceDisplay string `json:"balance_formatted"`
	Status         string `json:"status"`
	Progress       int    `json:"progress"`
}

func viewOfTarget(t *core.Target) targetView {
	return targetView{
		Name:           t.Name,
		Goal:           t.Goal,
		GoalFormatted:  core.FormatRupiah(t.Goal),
		Balance:        t.Balance,
		BalanceDisplay: core.FormatRupiah(t.Balance),
		Status:         string(t.Status),
		Progress:       t.Progress(),
	}
}

// handleTargets serves the target collection: GET lists, POST creates,
// DELETE removes by name.
func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTargets(w, r)
	case http.MethodPost:
		s.createTarget(w, r)
	case http.MethodDelete:
		s.deleteTarget(w, r)
	default:
		methodNotAllowed(w, "GET, POST, DELETE")
	}
}

func (s *Server) listTargets(w http.ResponseWriter, r *http.Request) {
	account, ok := s.currentAccount(w, r)
	if !ok {
		return
	}

	views := make([]targetView, 0, len(account.Targets))
	for _, name := range account.TargetNames() {
		if t, ok := account.Target(name); ok {
			views = append(views, viewOfTarget(t))
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"targets":    views,
		"selectable": s.targets.ListSelectable(r.Context(), account),
	})
}

func (s *Server) createTarget(w http.ResponseWriter, r *http.Request) {
	account, ok := s.currentAccount(w, r)
	if !ok {
		return
	}
	var req createTargetRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	goal, err := core.ParseAmount(req.Goal)
	if err != nil {
		writeError(w, r, err)
		return
	}

	target, err := s.targets.Create(r.Context(), account, sanitizeInput(req.Name), goal)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboard(account)
	writeJSON(w, http.StatusCreated, viewOfTarget(target))
}

func (s *Server) deleteTarget(w http.ResponseWriter, r *http.Request) {
	account, ok := s.currentAccount(w, r)
	if !ok {
		return
	}
	name := sanitizeInput(r.URL.Query().Get("name"))
	if name == "" {
		badRequest(w, "missing target name")
		return
	}

	if err := s.targets.Delete(r.Context(), account, name); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboard(account)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
