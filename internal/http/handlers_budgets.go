package http

import (
	"net/http"
	"net/url"

	"finman/internal/gateway"
	"finman/internal/viewmodel"
)

type budgetRowData struct {
	Category string
	Limit    string
	Spent    string
	Percent  int
	Over     bool
}

type budgetListData struct {
	Rows      []budgetRowData
	Available []string
	Status    viewmodel.Status
	Error     string
	Empty     bool
}

func (s *Server) handleBudgetList(w http.ResponseWriter, r *http.Request) {
	err := s.budgets.Load(r.Context())
	if err != nil && gateway.IsUnauthorized(err) {
		SessionExpiredResponse().Write(w)
		return
	}

	rows, status, errMsg := s.budgets.Snapshot()
	data := budgetListData{
		Available: s.budgets.Available(),
		Status:    status,
		Error:     errMsg,
		Empty:     status == viewmodel.StatusLoaded && len(rows) == 0,
	}
	for _, row := range rows {
		data.Rows = append(data.Rows, budgetRowData{
			Category: row.Budget.Category,
			Limit:    row.Budget.LimitAmount.Dollars(),
			Spent:    spentDollars(row),
			Percent:  row.Percent(),
			Over:     row.Over(),
		})
	}
	s.render(w, r, "budgets.html", data)
}

// spentDollars shows spending as a positive figure; the sign lives in
// the aggregate, not the UI.
func spentDollars(row viewmodel.BudgetRow) string {
	spent := row.Spent
	if spent.Cents < 0 {
		spent.Cents = -spent.Cents
	}
	return spent.Dollars()
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	category := sanitizeInput(r.Form.Get("category"))
	limit := sanitizeInput(r.Form.Get("limit"))

	if err := s.budgets.Create(r.Context(), category, limit); err != nil {
		if gateway.IsUnauthorized(err) {
			SessionExpiredResponse().Write(w)
			return
		}
		_, _, errMsg := s.budgets.Snapshot()
		UnprocessableEntityError(errMsg).Write(w)
		return
	}

	NewHTMXResponse().
		TriggerBudgetCreated(category).
		TriggerSuccessNotification("Budget saved.").
		Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	category, err := url.PathUnescape(r.PathValue("category"))
	if err != nil || category == "" {
		BadRequestError("Invalid category").Write(w)
		return
	}

	if err := s.budgets.Delete(r.Context(), category); err != nil {
		if gateway.IsUnauthorized(err) {
			SessionExpiredResponse().Write(w)
			return
		}
		ErrorResponse(http.StatusBadGateway, gateway.UserMessage(err)).Write(w)
		return
	}

	NewHTMXResponse().
		TriggerBudgetDeleted(category).
		TriggerSuccessNotification("Budget removed.").
		Write(w)
}
