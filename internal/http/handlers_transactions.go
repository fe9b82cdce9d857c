package http

import (
	"net/http"

	"finman/internal/core"
	"finman/internal/gateway"
	"finman/internal/log"
	"finman/internal/viewmodel"
)

type transactionRow struct {
	ID          int64
	Description string
	Amount      string
	Negative    bool
	Date        string
	Category    string
	Recurring   string
}

type transactionListData struct {
	Form    transactionFormData
	Rows    []transactionRow
	Total   string
	Status  viewmodel.Status
	Error   string
	Empty   bool
	HasRows bool
}

func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	err := s.list.Load(r.Context())
	if err != nil && gateway.IsUnauthorized(err) {
		SessionExpiredResponse().Write(w)
		return
	}

	items, status, errMsg := s.list.Snapshot()
	data := transactionListData{
		Form:    s.transactionFormData(),
		Status:  status,
		Error:   errMsg,
		Total:   s.list.Total().Dollars(),
		Empty:   status == viewmodel.StatusLoaded && len(items) == 0,
		HasRows: len(items) > 0,
	}
	for _, t := range items {
		recurring := ""
		if t.IsRecurring {
			recurring = string(t.Interval)
		}
		data.Rows = append(data.Rows, transactionRow{
			ID:          t.ID,
			Description: t.Description,
			Amount:      t.Amount.Dollars(),
			Negative:    t.Amount.Cents < 0,
			Date:        t.Date.Wire(),
			Category:    t.Category,
			Recurring:   recurring,
		})
	}
	s.render(w, r, "transactions.html", data)
}

type transactionFormData struct {
	Fields     viewmodel.TransactionFormFields
	Error      string
	Categories []string
	Intervals  []core.RecurringInterval
}

func (s *Server) transactionFormData() transactionFormData {
	return transactionFormData{
		Fields:     s.form.Fields(),
		Error:      s.form.ErrorMessage(),
		Categories: core.Categories,
		Intervals:  []core.RecurringInterval{core.Daily, core.Weekly, core.Monthly, core.Yearly},
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	fields := viewmodel.TransactionFormFields{
		Description: sanitizeInput(r.Form.Get("description")),
		Amount:      sanitizeInput(r.Form.Get("amount")),
		Date:        sanitizeInput(r.Form.Get("date")),
		Category:    sanitizeInput(r.Form.Get("category")),
		IsRecurring: r.Form.Get("recurring") == "on",
		Interval:    sanitizeInput(r.Form.Get("interval")),
		StartDate:   sanitizeInput(r.Form.Get("start_date")),
		EndDate:     sanitizeInput(r.Form.Get("end_date")),
		Ongoing:     r.Form.Get("ongoing") == "on",
	}

	created, err := s.form.Submit(r.Context(), fields)
	if err != nil {
		if gateway.IsUnauthorized(err) {
			SessionExpiredResponse().Write(w)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "transaction_form.html", s.transactionFormData())
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		log.FieldTxID, created.ID, log.FieldCategory, created.Category)

	NewHTMXResponse().
		TriggerTransactionCreated(created.ID).
		TriggerFormReset().
		TriggerSuccessNotification("Transaction added.").
		Apply(w)
	s.render(w, r, "transaction_form.html", s.transactionFormData())
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		BadRequestError("Invalid transaction id").Write(w)
		return
	}

	if err := s.list.Delete(r.Context(), id); err != nil {
		if gateway.IsUnauthorized(err) {
			SessionExpiredResponse().Write(w)
			return
		}
		ErrorResponse(http.StatusBadGateway, gateway.UserMessage(err)).Write(w)
		return
	}

	NewHTMXResponse().
		TriggerTransactionDeleted(id).
		TriggerSuccessNotification("Transaction deleted.").
		Write(w)
}
