package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"finman/internal/core"
)

// fakeSession records invalidations without dragging in the real store.
type fakeSession struct {
	mu          sync.Mutex
	token       string
	invalidated []string
}

func (f *fakeSession) Credential() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.token != ""
}

func (f *fakeSession) Invalidate(ctx context.Context, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token == f.token {
		f.token = ""
	}
	f.invalidated = append(f.invalidated, token)
}

func newTestClient(t *testing.T, handler http.Handler, token string) (*Client, *fakeSession) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	sess := &fakeSession{token: token}
	return NewClient(srv.URL, 5*time.Second, sess), sess
}

func TestLoginReturnsToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Fatalf("login must not carry a bearer token, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"T"}`))
	}), "")

	token, err := client.Login(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token != "T" {
		t.Fatalf("token = %q, want T", token)
	}
}

func TestLoginRejectionIsValidationNotSessionExpiry(t *testing.T) {
	client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid username or password"}`))
	}), "")

	_, err := client.Login(context.Background(), "a", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	if KindOf(err) != KindValidation {
		t.Fatalf("kind = %v, want validation", KindOf(err))
	}
	if UserMessage(err) != "Invalid username or password" {
		t.Fatalf("message = %q", UserMessage(err))
	}
	if len(sess.invalidated) != 0 {
		t.Fatal("login rejection must not touch the session")
	}
}

func TestUnauthorizedClearsSession(t *testing.T) {
	client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), "T")

	_, err := client.ListTransactions(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(sess.invalidated) != 1 || sess.invalidated[0] != "T" {
		t.Fatalf("session not invalidated with the rejected token: %v", sess.invalidated)
	}
	if _, ok := sess.Credential(); ok {
		t.Fatal("credential still present after 401")
	}
}

func TestForbiddenAlsoClearsSession(t *testing.T) {
	client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}), "T")

	err := client.DeleteTransaction(context.Background(), 7)
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(sess.invalidated) != 1 {
		t.Fatal("session not invalidated on 403")
	}
}

func TestMissingCredentialShortCircuits(t *testing.T) {
	called := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}), "")

	_, err := client.ListBudgets(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if called {
		t.Fatal("request must not be issued without a credential")
	}
}

func TestNetworkFailureClassification(t *testing.T) {
	sess := &fakeSession{token: "T"}
	client := NewClient("http://127.0.0.1:1", time.Second, sess)

	_, err := client.CurrentUser(context.Background())
	if KindOf(err) != KindNetwork {
		t.Fatalf("kind = %v, want network", KindOf(err))
	}
	if len(sess.invalidated) != 0 {
		t.Fatal("network failure must not clear the session")
	}
}

func TestServerErrorClassification(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), "T")

	_, err := client.CategoryTotals(context.Background())
	if KindOf(err) != KindServer {
		t.Fatalf("kind = %v, want server", KindOf(err))
	}
}

func TestListTransactionsDecodesWireFormat(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer T" {
			t.Fatalf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":1,"description":"Groceries","amount":25.99,"date":"2024-03-15","category":"Food"},
			{"id":2,"description":"Gym","amount":30,"date":"2024-03-01","category":"Entertainment",
			 "isRecurring":true,"recurringInterval":"MONTHLY","startDate":"2024-03-01"}
		]`))
	}), "T")

	txs, err := client.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions", len(txs))
	}
	if txs[0].Amount.Cents != 2599 || txs[0].Date.Wire() != "2024-03-15" {
		t.Fatalf("unexpected first transaction: %+v", txs[0])
	}
	if !txs[1].IsRecurring || txs[1].Interval != core.Monthly || !txs[1].EndDate.IsZero() {
		t.Fatalf("unexpected recurring transaction: %+v", txs[1])
	}
}

func TestEmptyListRendersNoError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}), "T")

	txs, err := client.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("empty list must not error: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("got %d transactions", len(txs))
	}
}

func TestMonthlyTotalsPassesRange(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("range"); got != "10" {
			t.Fatalf("range = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"2024-03":10.5,"2024-01":5}`))
	}), "T")

	totals, err := client.MonthlyTotals(context.Background(), "10")
	if err != nil {
		t.Fatalf("monthly totals: %v", err)
	}
	if totals["2024-03"].Cents != 1050 || totals["2024-01"].Cents != 500 {
		t.Fatalf("totals = %+v", totals)
	}
}
