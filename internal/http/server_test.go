package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"celengan/internal/services"
	"celengan/internal/session"
	"celengan/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := storage.NewMemoryStore()
	sessions := session.NewManager(time.Hour)
	t.Cleanup(sessions.Stop)

	accounts := services.NewAccountService(store, sessions)
	savings := services.NewSavingsService(store, nil)
	targets := services.NewTargetService(store)

	s := NewServer(":0", accounts, savings, targets)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func doJSON(t *testing.T, s *Server, method, path, body, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body != "" {
		rd = strings.NewReader(body)
	} else {
		rd = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: cookie})
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}

// registerAndLogin returns the session token for a fresh account.
func registerAndLogin(t *testing.T, s *Server, username string) string {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/register",
		`{"username":"`+username+`","password":"secret1","confirm":"secret1"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodPost, "/api/login",
		`{"username":"`+username+`","password":"secret1"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d body %s", rec.Code, rec.Body.String())
	}
	var out sessionResponse
	decodeBody(t, rec, &out)
	if out.Token == "" {
		t.Fatalf("login returned no token")
	}
	return out.Token
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, "", "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
}

func TestRegisterValidationAndConflict(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/register",
		`{"username":"x","password":"secret1","confirm":"secret1"}`, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("short username status = %d", rec.Code)
	}
	var e errorResponse
	decodeBody(t, rec, &e)
	if e.Field != "username" {
		t.Fatalf("field = %q", e.Field)
	}

	registerAndLogin(t, s, "budi")

	rec = doJSON(t, s, http.MethodPost, "/api/register",
		`{"username":"BUDI","password":"secret1","confirm":"secret1"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d", rec.Code)
	}
}

func TestLoginFailure(t *testing.T) {
	s := newTestServer(t)
	registerAndLogin(t, s, "budi")

	rec := doJSON(t, s, http.MethodPost, "/api/login",
		`{"username":"budi","password":"nope"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDashboardRequiresSession(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/dashboard", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSaveSpendDashboardFlow(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "budi")

	rec := doJSON(t, s, http.MethodPost, "/api/save",
		`{"amount":"1.000.000","note":"gaji"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d body %s", rec.Code, rec.Body.String())
	}
	var tx transactionResponse
	decodeBody(t, rec, &tx)
	if tx.Amount != 1_000_000 || tx.Balance != 1_000_000 {
		t.Fatalf("save tx = %+v", tx)
	}
	if tx.AmountFormatted != "Rp 1.000.000" {
		t.Fatalf("formatted = %q", tx.AmountFormatted)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/spend",
		`{"amount":"400000","note":"belanja"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("spend status = %d body %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &tx)
	if tx.Balance != 600_000 {
		t.Fatalf("balance after spend = %d", tx.Balance)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/dashboard", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", rec.Code)
	}
	var dash dashboardResponse
	decodeBody(t, rec, &dash)
	if dash.MainBalance != 600_000 {
		t.Fatalf("dashboard balance = %d", dash.MainBalance)
	}
	if dash.Analytics.Ratio != 40 || dash.Analytics.Health != "stable" {
		t.Fatalf("analytics = %+v", dash.Analytics)
	}
}

func TestSaveRejectsBadAmount(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "budi")

	for _, amount := range []string{"", "0", "-5", "abc"} {
		rec := doJSON(t, s, http.MethodPost, "/api/save",
			`{"amount":"`+amount+`"}`, token)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("amount %q status = %d", amount, rec.Code)
		}
	}
}

func TestTargetLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "budi")

	rec := doJSON(t, s, http.MethodPost, "/api/targets",
		`{"name":"Laptop","goal":"1.000.000"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body %s", rec.Code, rec.Body.String())
	}
	var tv targetView
	decodeBody(t, rec, &tv)
	if tv.Name != "Laptop" || tv.Goal != 1_000_000 || tv.Status != "active" {
		t.Fatalf("target = %+v", tv)
	}

	// Duplicate names conflict even with different casing.
	rec = doJSON(t, s, http.MethodPost, "/api/targets",
		`{"name":"laptop","goal":"500"}`, token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d", rec.Code)
	}

	// Saving past the goal completes the target; the response carries
	// the requested amount, the balance is clamped to the goal.
	rec = doJSON(t, s, http.MethodPost, "/api/save",
		`{"destination":"target","target":"laptop","amount":"1500000"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("save to target status = %d body %s", rec.Code, rec.Body.String())
	}
	var tx transactionResponse
	decodeBody(t, rec, &tx)
	if tx.Amount != 1_500_000 || !tx.TargetCompleted {
		t.Fatalf("tx = %+v", tx)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/targets", "", token)
	var list struct {
		Targets    []targetView `json:"targets"`
		Selectable []string     `json:"selectable"`
	}
	decodeBody(t, rec, &list)
	if len(list.Targets) != 1 || list.Targets[0].Status != "completed" || list.Targets[0].Progress != 100 {
		t.Fatalf("targets = %+v", list.Targets)
	}
	if len(list.Selectable) != 0 {
		t.Fatalf("completed target still selectable: %v", list.Selectable)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/targets?name=Laptop", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodDelete, "/api/targets?name=Laptop", "", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rec.Code)
	}
}

func TestWithdrawFlow(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "budi")

	doJSON(t, s, http.MethodPost, "/api/targets", `{"name":"Motor","goal":"10000000"}`, token)
	doJSON(t, s, http.MethodPost, "/api/save",
		`{"destination":"target","target":"Motor","amount":"1000000"}`, token)

	rec := doJSON(t, s, http.MethodPost, "/api/withdraw/plan", `{"target":"Motor"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("plan status = %d body %s", rec.Code, rec.Body.String())
	}
	var plan struct {
		Amount int64 `json:"amount"`
	}
	decodeBody(t, rec, &plan)
	if plan.Amount != 300_000 {
		t.Fatalf("planned = %d", plan.Amount)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/withdraw", `{"target":"Motor","note":"darurat"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("withdraw status = %d body %s", rec.Code, rec.Body.String())
	}
	var tx transactionResponse
	decodeBody(t, rec, &tx)
	if tx.Amount != 300_000 || tx.Balance != 700_000 {
		t.Fatalf("tx = %+v", tx)
	}

	// Cooldown: the next plan is rejected with the days left.
	rec = doJSON(t, s, http.MethodPost, "/api/withdraw/plan", `{"target":"Motor"}`, token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("cooldown status = %d", rec.Code)
	}
	var e errorResponse
	decodeBody(t, rec, &e)
	if e.RemainingDays != 365 {
		t.Fatalf("remaining days = %d", e.RemainingDays)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "budi")

	doJSON(t, s, http.MethodPost, "/api/save", `{"amount":"500"}`, token)
	doJSON(t, s, http.MethodPost, "/api/spend", `{"amount":"200","note":"kopi"}`, token)
	doJSON(t, s, http.MethodPost, "/api/targets", `{"name":"Laptop","goal":"9000"}`, token)
	doJSON(t, s, http.MethodPost, "/api/save",
		`{"destination":"target","target":"Laptop","amount":"100"}`, token)

	rec := doJSON(t, s, http.MethodGet, "/api/history", "", token)
	var out struct {
		Transactions []historyEntry `json:"transactions"`
	}
	decodeBody(t, rec, &out)
	if len(out.Transactions) != 2 {
		t.Fatalf("main history = %d entries", len(out.Transactions))
	}
	// Newest first: the spend is the most recent entry.
	if out.Transactions[0].Note != "kopi" || out.Transactions[0].Kind != "spend" {
		t.Fatalf("newest entry = %+v", out.Transactions[0])
	}

	rec = doJSON(t, s, http.MethodGet, "/api/history?target=laptop", "", token)
	decodeBody(t, rec, &out)
	if len(out.Transactions) != 1 || out.Transactions[0].Amount != 100 {
		t.Fatalf("target history = %+v", out.Transactions)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/history?target=ghost", "", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown target status = %d", rec.Code)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "budi")

	rec := doJSON(t, s, http.MethodPost, "/api/logout", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/dashboard", "", token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("dashboard after logout status = %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/register", "", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "POST" {
		t.Fatalf("Allow = %q", allow)
	}
}
