package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

type dashboardPageData struct {
	Username string
	Email    string
}

// handleDashboard renders the shell page. The sections inside it load
// themselves through the /ui/* partials.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := s.auth.Profile()
	if !ok {
		// A restored session that was validated but never fetched the
		// profile, e.g. right after startup.
		if err := s.auth.RefreshProfile(r.Context()); err == nil {
			user, _ = s.auth.Profile()
		}
	}
	s.render(w, r, "dashboard.html", dashboardPageData{
		Username: user.Username,
		Email:    user.Email,
	})
}

type draftExpenseData struct {
	ID          int64
	Description string
	Amount      string
}

type draftData struct {
	Salary    string
	Savings   string
	Expenses  []draftExpenseData
	Total     string
	Remaining string
	Surplus   bool
	Percent   string
	Recorded  string
	HasMirror bool
	Error     string
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	if err := s.dashboard.Load(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Draft ledger load failed", "error", err)
		InternalServerError("Could not load your draft ledger.").Write(w)
		return
	}
	s.renderDraft(w, r)
}

func (s *Server) renderDraft(w http.ResponseWriter, r *http.Request) {
	view := s.dashboard.View()
	data := draftData{
		Salary:    view.Salary.Dollars(),
		Savings:   view.Savings.Dollars(),
		Total:     view.Total.Dollars(),
		Remaining: view.Remaining.Dollars(),
		Surplus:   view.Surplus,
		Percent:   fmt.Sprintf("%.1f", view.Percent),
		HasMirror: view.Mirror.Count > 0,
		Error:     view.ErrorMsg,
	}
	if view.Mirror.Count > 0 {
		data.Recorded = view.Mirror.Total.Dollars()
	}
	for _, e := range view.Expenses {
		data.Expenses = append(data.Expenses, draftExpenseData{
			ID:          e.ID,
			Description: e.Description,
			Amount:      e.Amount.Dollars(),
		})
	}
	s.render(w, r, "draft.html", data)
}

func (s *Server) handleDraftSalary(w http.ResponseWriter, r *http.Request) {
	s.handleDraftFigure(w, r, s.dashboard.SetSalary)
}

func (s *Server) handleDraftSavings(w http.ResponseWriter, r *http.Request) {
	s.handleDraftFigure(w, r, s.dashboard.SetSavings)
}

func (s *Server) handleDraftFigure(w http.ResponseWriter, r *http.Request, set func(ctx context.Context, raw string) error) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	if err := set(r.Context(), sanitizeInput(r.Form.Get("value"))); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	s.renderDraft(w, r)
}

func (s *Server) handleDraftAddExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	description := sanitizeInput(r.Form.Get("description"))
	amount := sanitizeInput(r.Form.Get("amount"))

	if err := s.dashboard.AddExpense(r.Context(), description, amount); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	s.renderDraft(w, r)
}

func (s *Server) handleDraftRemoveExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		BadRequestError("Invalid expense id").Write(w)
		return
	}
	if err := s.dashboard.RemoveExpense(r.Context(), id); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	s.renderDraft(w, r)
}
