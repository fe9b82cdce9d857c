package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finman/internal/gateway"
	"finman/internal/services"
	"finman/internal/session"
	"finman/internal/storage"
	"finman/internal/viewmodel"
)

// newTestServer wires a full server against a fake backend.
func newTestServer(t *testing.T, backend http.Handler) (*Server, *session.Store) {
	t.Helper()

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	sess := session.NewStore(repo)
	gw := gateway.NewClient(srv.URL, 5*time.Second, sess)
	ledger := services.NewLedgerService(gw, nil)

	s := NewServer("127.0.0.1:0", sess, Screens{
		Auth:      viewmodel.NewAuth(gw, sess),
		List:      viewmodel.NewTransactionList(ledger),
		Form:      viewmodel.NewTransactionForm(ledger),
		Budgets:   viewmodel.NewBudgetManager(gw),
		Chart:     viewmodel.NewExpenseChart(gw),
		Dashboard: viewmodel.NewDashboard(repo),
	})
	t.Cleanup(func() { s.rateLimiter.stop() })
	return s, sess
}

func postForm(t *testing.T, s *Server, path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, s *Server, path string, htmx bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestUnauthenticatedDashboardRedirectsToSignIn(t *testing.T) {
	s, _ := newTestServer(t, http.NotFoundHandler())

	rec := get(t, s, "/dashboard", false)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/signin" {
		t.Fatalf("location = %q", loc)
	}
}

func TestUnauthenticatedPartialGetsHXRedirect(t *testing.T) {
	s, _ := newTestServer(t, http.NotFoundHandler())

	rec := get(t, s, "/ui/transactions", true)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if loc := rec.Header().Get("HX-Redirect"); loc != "/signin" {
		t.Fatalf("HX-Redirect = %q", loc)
	}
}

func TestSignInThenEmptyListShowsNoError(t *testing.T) {
	backend := http.NewServeMux()
	backend.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"T"}`))
	})
	backend.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"username":"a","email":"a@example.com"}`))
	})
	backend.HandleFunc("GET /api/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer T" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	s, sess := newTestServer(t, backend)

	rec := postForm(t, s, "/signin", url.Values{"username": {"a"}, "password": {"b"}}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("sign in status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("HX-Redirect"); loc != "/dashboard" {
		t.Fatalf("HX-Redirect = %q", loc)
	}
	if !sess.IsAuthenticated() {
		t.Fatal("session not authenticated after sign in")
	}

	rec = get(t, s, "/ui/transactions", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "No transactions yet.") {
		t.Fatalf("empty list not rendered: %s", body)
	}
	if strings.Contains(body, `class="error"`) {
		t.Fatalf("error rendered for empty list: %s", body)
	}
}

func TestFailedSignInRendersMessageAndStoresNothing(t *testing.T) {
	backend := http.NewServeMux()
	backend.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid username or password"}`))
	})

	s, sess := newTestServer(t, backend)

	rec := postForm(t, s, "/signin", url.Values{"username": {"a"}, "password": {"nope"}}, true)
	if !strings.Contains(rec.Body.String(), "Invalid username or password") {
		t.Fatalf("message not rendered: %s", rec.Body.String())
	}
	if sess.IsAuthenticated() {
		t.Fatal("session authenticated after rejected login")
	}
}

func TestExpiredSessionOnPartialRedirects(t *testing.T) {
	backend := http.NewServeMux()
	backend.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"T"}`))
	})
	backend.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"username":"a","email":"a@example.com"}`))
	})
	backend.HandleFunc("GET /api/transactions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	s, sess := newTestServer(t, backend)

	postForm(t, s, "/signin", url.Values{"username": {"a"}, "password": {"b"}}, true)

	rec := get(t, s, "/ui/transactions", true)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if loc := rec.Header().Get("HX-Redirect"); loc != "/signin" {
		t.Fatalf("HX-Redirect = %q", loc)
	}
	if sess.IsAuthenticated() {
		t.Fatal("session survived the 401")
	}
}

func TestLogoutClearsSessionAndRedirects(t *testing.T) {
	backend := http.NewServeMux()
	backend.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"T"}`))
	})
	backend.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"username":"a","email":"a@example.com"}`))
	})

	s, sess := newTestServer(t, backend)
	postForm(t, s, "/signin", url.Values{"username": {"a"}, "password": {"b"}}, true)

	rec := postForm(t, s, "/logout", url.Values{}, true)
	if loc := rec.Header().Get("HX-Redirect"); loc != "/signin" {
		t.Fatalf("HX-Redirect = %q", loc)
	}
	if sess.IsAuthenticated() {
		t.Fatal("session survived logout")
	}
	if _, ok := sess.Credential(); ok {
		t.Fatal("credential survived logout")
	}
}

func TestDeleteTransactionFiresTrigger(t *testing.T) {
	backend := http.NewServeMux()
	backend.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"T"}`))
	})
	backend.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"username":"a","email":"a@example.com"}`))
	})
	backend.HandleFunc("DELETE /api/transactions/7", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	s, _ := newTestServer(t, backend)
	postForm(t, s, "/signin", url.Values{"username": {"a"}, "password": {"b"}}, true)

	req := httptest.NewRequest(http.MethodDelete, "/transactions/7", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	trigger := rec.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, "transaction:deleted") {
		t.Fatalf("HX-Trigger = %q", trigger)
	}
}
