package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kdziekansky/telegram2/internal/app/credit"
	"github.com/kdziekansky/telegram2/internal/domain"
	"github.com/kdziekansky/telegram2/internal/infra/memory"
	"github.com/kdziekansky/telegram2/internal/infra/observability"
)

type stubUsers struct {
	users map[int64]domain.User
}

func (s *stubUsers) EnsureUser(id int64, name, lang string) (domain.User, error) {
	u := domain.User{ID: id, DisplayName: name, Language: lang}
	s.users[id] = u
	return u, nil
}

func (s *stubUsers) GetUser(id int64) (domain.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *stubUsers) SetLanguage(int64, string) error    { return nil }
func (s *stubUsers) SetDisplayName(int64, string) error { return nil }
func (s *stubUsers) SetModel(int64, string) error       { return nil }
func (s *stubUsers) SetMode(int64, string) error        { return nil }
func (s *stubUsers) SetPending(int64, string) error     { return nil }

func newTestServer(t *testing.T) (*Server, *stubUsers, *credit.Ledger) {
	t.Helper()
	store := memory.NewCreditStore()
	log := zerolog.Nop()
	ledger := credit.NewLedger(store, log)
	catalog := credit.NewCatalog(
		[]domain.CreditPackage{{ID: 1, Name: "Starter", Credits: 100, Price: 4.99}},
		[]domain.StarsOption{{Stars: 100, Credits: 110}},
	)
	users := &stubUsers{users: make(map[int64]domain.User)}
	tracer := observability.NewTracer(observability.TracerConfig{Enabled: true, MaxSpans: 16})
	srv := NewServer(users, ledger, catalog, credit.NewAnalytics(store), tracer, log)
	return srv, users, ledger
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doRequest(t, srv.Handler(), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestUserEndpoint_ReconciledBalance(t *testing.T) {
	srv, users, ledger := newTestServer(t)
	if _, err := users.EnsureUser(7, "Test", "pl"); err != nil {
		t.Fatal(err)
	}
	if _, err := ledger.Credit(7, 50, "welcome", domain.TxGrant); err != nil {
		t.Fatal(err)
	}
	if _, err := ledger.Debit(7, 10, "message (gpt-4)"); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/users/7", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp struct {
		Balance    int64 `json:"balance"`
		LedgerSum  int64 `json:"ledger_sum"`
		Reconciled bool  `json:"reconciled"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Balance != 40 || resp.LedgerSum != 40 || !resp.Reconciled {
		t.Errorf("resp = %+v, want balance 40 reconciled", resp)
	}
}

func TestUserEndpoint_NotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/users/999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGrantEndpoint(t *testing.T) {
	srv, _, ledger := newTestServer(t)
	h := srv.Handler()

	rec := doRequest(t, h, http.MethodPost, "/api/users/7/grant", `{"amount":30,"description":"compensation"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Balance int64 `json:"balance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Balance != 30 {
		t.Errorf("balance = %d, want 30", resp.Balance)
	}
	if bal, _ := ledger.Balance(7); bal != 30 {
		t.Errorf("ledger balance = %d, want 30", bal)
	}

	// Non-positive grants are rejected without touching the ledger.
	rec = doRequest(t, h, http.MethodPost, "/api/users/7/grant", `{"amount":-5}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative grant status = %d, want 400", rec.Code)
	}
	if bal, _ := ledger.Balance(7); bal != 30 {
		t.Errorf("balance after rejected grant = %d, want 30", bal)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv, _, ledger := newTestServer(t)
	if _, err := ledger.Credit(7, 100, "welcome", domain.TxGrant); err != nil {
		t.Fatal(err)
	}
	if _, err := ledger.Debit(7, 10, "image: a fox"); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/users/7/stats?days=7", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp struct {
		Breakdown map[string]int64 `json:"breakdown"`
		Forecast  *domain.Forecast `json:"forecast"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Breakdown["image"] != 10 {
		t.Errorf("breakdown = %v, want image:10", resp.Breakdown)
	}
	if resp.Forecast == nil {
		t.Error("forecast = nil, want a projection with usage present")
	}

	rec = doRequest(t, srv.Handler(), http.MethodGet, "/api/users/7/stats?days=0", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("days=0 status = %d, want 400", rec.Code)
	}
}

func TestCatalogEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/catalog", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Packages []domain.CreditPackage `json:"packages"`
		Stars    []domain.StarsOption   `json:"stars"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Packages) != 1 || resp.Packages[0].Name != "Starter" {
		t.Errorf("packages = %+v", resp.Packages)
	}
	if len(resp.Stars) != 1 || resp.Stars[0].Credits != 110 {
		t.Errorf("stars = %+v", resp.Stars)
	}
}

func TestTracesEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	span := srv.tracer.StartSpan(context.Background(), "handle_update", map[string]string{"kind": "message"})
	srv.tracer.EndSpan(span, nil)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/traces", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}
}
