package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finman/internal/log"
	"finman/internal/session"
	"finman/internal/viewmodel"
	appweb "finman/web"
)

// Server renders the client screens and routes form submissions into the
// viewmodels. All backend traffic goes through the viewmodels; handlers
// never call the gateway directly.
type Server struct {
	http.Server
	templates *template.Template

	session   *session.Store
	auth      *viewmodel.Auth
	list      *viewmodel.TransactionList
	form      *viewmodel.TransactionForm
	budgets   *viewmodel.BudgetManager
	chart     *viewmodel.ExpenseChart
	dashboard *viewmodel.Dashboard

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// Screens bundles the per-screen viewmodels the server renders.
type Screens struct {
	Auth      *viewmodel.Auth
	List      *viewmodel.TransactionList
	Form      *viewmodel.TransactionForm
	Budgets   *viewmodel.BudgetManager
	Chart     *viewmodel.ExpenseChart
	Dashboard *viewmodel.Dashboard
}

// NewServer configures routes and templates, returning a ready-to-run
// http.Server.
func NewServer(addr string, sess *session.Store, screens Screens) *Server {
	mux := http.NewServeMux()
	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: log.Middleware(logger)(mux),
		},
		session:     sess,
		auth:        screens.Auth,
		list:        screens.List,
		form:        screens.Form,
		budgets:     screens.Budgets,
		chart:       screens.Chart,
		dashboard:   screens.Dashboard,
		rateLimiter: newRateLimiter(),
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	// Auth screens
	mux.HandleFunc("GET /{$}", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("GET /signin", s.withSecurityHeaders(s.handleSignInPage))
	mux.HandleFunc("POST /signin", s.withSecurityHeaders(s.handleSignIn))
	mux.HandleFunc("GET /signup", s.withSecurityHeaders(s.handleSignUpPage))
	mux.HandleFunc("POST /signup", s.withSecurityHeaders(s.handleSignUp))
	mux.HandleFunc("POST /logout", s.withSecurityHeaders(s.handleLogout))

	// Shell page
	mux.HandleFunc("GET /dashboard", s.withSecurityHeaders(s.requireSession(s.handleDashboard)))

	// Transaction section
	mux.HandleFunc("GET /ui/transactions", s.withSecurityHeaders(s.requireSession(s.handleTransactionList)))
	mux.HandleFunc("POST /transactions", s.withSecurityHeaders(s.requireSession(s.handleCreateTransaction)))
	mux.HandleFunc("DELETE /transactions/{id}", s.withSecurityHeaders(s.requireSession(s.handleDeleteTransaction)))

	// Budget section
	mux.HandleFunc("GET /ui/budgets", s.withSecurityHeaders(s.requireSession(s.handleBudgetList)))
	mux.HandleFunc("POST /budgets", s.withSecurityHeaders(s.requireSession(s.handleCreateBudget)))
	mux.HandleFunc("DELETE /budgets/{category}", s.withSecurityHeaders(s.requireSession(s.handleDeleteBudget)))

	// Chart section
	mux.HandleFunc("GET /ui/chart", s.withSecurityHeaders(s.requireSession(s.handleChart)))

	// Draft ledger section (local only, still behind the session gate)
	mux.HandleFunc("GET /ui/draft", s.withSecurityHeaders(s.requireSession(s.handleDraft)))
	mux.HandleFunc("POST /draft/salary", s.withSecurityHeaders(s.requireSession(s.handleDraftSalary)))
	mux.HandleFunc("POST /draft/savings", s.withSecurityHeaders(s.requireSession(s.handleDraftSavings)))
	mux.HandleFunc("POST /draft/expenses", s.withSecurityHeaders(s.requireSession(s.handleDraftAddExpense)))
	mux.HandleFunc("DELETE /draft/expenses/{id}", s.withSecurityHeaders(s.requireSession(s.handleDraftRemoveExpense)))

	return s
}

// Shutdown stops the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := clientIPOf(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = context.WithValue(ctx, log.LoggerContextKey,
			log.FromContext(ctx).With(log.FieldRequestID, requestID))
		r = r.WithContext(ctx)

		log.LogHTTPStart(ctx, r, clientIP)

		// Rate limit mutations only; partial refreshes stay cheap.
		if (r.Method == http.MethodPost || r.Method == http.MethodDelete) && !s.rateLimiter.allow(clientIP) {
			log.FromContext(ctx).WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		log.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// requireSession gates screens behind an authenticated session. HTMX
// requests get an HX-Redirect so the whole page navigates, not just the
// swapped fragment.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.session.IsAuthenticated() {
			next(w, r)
			return
		}
		if isHTMX(r) {
			SessionExpiredResponse().Write(w)
			return
		}
		http.Redirect(w, r, "/signin", http.StatusSeeOther)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.session.IsAuthenticated() {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/signin", http.StatusSeeOther)
}

// render executes a named template, degrading to a plain error when the
// template set failed to parse at startup.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
	}
}
