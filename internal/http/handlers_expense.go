package http

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	date, err := parseExpenseDate(r.Form.Get("date"))
	if err != nil {
		UnprocessableEntityError("Invalid date").Write(w)
		return
	}

	amountStr := strings.TrimSpace(r.Form.Get("amount"))
	cents, err := core.ParseDecimalToCents(amountStr)
	if err != nil {
		UnprocessableEntityError("Invalid amount").Write(w)
		return
	}

	exp := core.Expense{
		Date:        date,
		Amount:      core.Money{Cents: cents},
		Category:    sanitizeInput(r.Form.Get("category")),
		Description: sanitizeInput(r.Form.Get("description")),
	}
	if err := exp.Validate(); err != nil {
		UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
		return
	}

	id, err := s.store.InsertExpense(r.Context(), exp)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to save expense",
			"error", err,
			"amount_cents", exp.Amount.Cents,
			"category", exp.Category,
			"operation", "create")
		InternalServerError("Error saving expense").Write(w)
		return
	}

	msg := fmt.Sprintf("Expense #%d recorded: %s %s (%s)",
		id, currencySymbol+amountStr, exp.Description, exp.Category)

	NewHTMXResponse().
		TriggerExpenseCreated(date.Year(), int(date.Time.Month())).
		TriggerFormReset().
		TriggerSuccessNotification(msg).
		BodyHTML(`<div class="success">` + template.HTMLEscapeString(msg) + `</div>`).
		Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodDelete, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	id, err := parseID(r.Form.Get("id"))
	if err != nil {
		BadRequestError("Missing expense id").Write(w)
		return
	}

	if err := s.store.DeleteExpense(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			ErrorResponse(http.StatusNotFound, "Expense not found").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete expense",
			"error", err, "expense_id", id, "operation", "delete")
		InternalServerError("Error deleting expense").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerExpenseDeleted().
		TriggerSuccessNotification("Expense deleted").
		Write(w)
}

// handleExpenseList renders the filterable expense table. Month and category
// filters arrive as query parameters; empty values mean "all".
func (s *Server) handleExpenseList(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	filter := storage.ExpenseFilter{
		Category: sanitizeInput(r.URL.Query().Get("category")),
	}
	if strings.TrimSpace(r.URL.Query().Get("month")) != "" {
		filter.Year, filter.Month = parseYearMonth(r)
	}

	expenses, err := s.store.ListExpenses(r.Context(), filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "List expenses error", "error", err,
			"year", filter.Year, "month", filter.Month, "category", filter.Category)
		_, _ = w.Write([]byte(`<div class="placeholder">Error loading expenses</div>`))
		return
	}

	data := struct {
		Items []expenseRow
	}{Items: expenseRows(expenses)}

	if err := s.templates.ExecuteTemplate(w, "expense_list.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Expense list template failed", "error", err, "template", "expense_list.html")
		_, _ = w.Write([]byte(`<div class="placeholder">Error rendering expenses</div>`))
	}
}

// handleRecentExpenses renders the dashboard's recent-transactions table.
func (s *Server) handleRecentExpenses(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	expenses, err := s.store.RecentExpenses(r.Context(), s.recentLimit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Recent expenses error", "error", err)
		_, _ = w.Write([]byte(`<div class="placeholder">Error loading transactions</div>`))
		return
	}

	data := struct {
		Items []expenseRow
	}{Items: expenseRows(expenses)}

	if err := s.templates.ExecuteTemplate(w, "recent_expenses.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Recent expenses template failed", "error", err, "template", "recent_expenses.html")
		_, _ = w.Write([]byte(`<div class="placeholder">Error rendering transactions</div>`))
	}
}

// expenseRow is the template-friendly shape of an expense.
type expenseRow struct {
	ID          int64
	Date        string
	Amount      string
	Category    string
	Description string
}

func expenseRows(expenses []core.Expense) []expenseRow {
	rows := make([]expenseRow, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, expenseRow{
			ID:          e.ID,
			Date:        e.Date.String(),
			Amount:      formatAmount(e.Amount.Cents),
			Category:    e.Category,
			Description: e.Description,
		})
	}
	return rows
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}
