package http

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	category := sanitizeInput(r.Form.Get("category"))
	if !core.ValidCategory(category) {
		UnprocessableEntityError("Unknown category").Write(w)
		return
	}

	// Zero is allowed here: it clears a budget without deleting the row.
	cents, err := core.ParseNonNegativeToCents(strings.TrimSpace(r.Form.Get("amount")))
	if err != nil {
		UnprocessableEntityError("Invalid amount").Write(w)
		return
	}

	amount := core.Money{Cents: cents}
	if err := s.store.UpsertBudget(r.Context(), category, amount); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save budget",
			"error", err, "category", category, "amount_cents", cents, "operation", "upsert")
		InternalServerError("Error saving budget").Write(w)
		return
	}

	msg := fmt.Sprintf("Budget for %s set to %s/month", category, formatAmount(cents))

	NewHTMXResponse().
		TriggerBudgetSet(category).
		TriggerSuccessNotification(msg).
		BodyHTML(`<div class="success">` + template.HTMLEscapeString(msg) + `</div>`).
		Write(w)
}

// budgetRow is the template-friendly shape of one budget-vs-actual row.
type budgetRow struct {
	Category    string
	Budget      string
	Spent       string
	Remaining   string
	Overspent   bool
	PercentUsed string
	// BarWidth is PercentUsed clamped to [0, 100] for the progress bar.
	BarWidth int
}

// handleBudgetStatus renders the budget-vs-actual table for the selected
// month, most-used budgets first.
func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	year, month := parseYearMonth(r)

	budgets, err := s.store.ListBudgets(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List budgets error", "error", err)
		_, _ = w.Write([]byte(`<div class="placeholder">Error loading budgets</div>`))
		return
	}

	start, end := report.MonthRange(year, month)
	expenses, err := s.store.ExpensesBetween(r.Context(), core.Date{Time: start}, core.Date{Time: end})
	if err != nil {
		slog.ErrorContext(r.Context(), "Month expenses error", "error", err, "year", year, "month", month)
		_, _ = w.Write([]byte(`<div class="placeholder">Error loading expenses</div>`))
		return
	}

	rows := report.BudgetVsActual(budgets, expenses, year, month)
	report.SortByPercentUsed(rows)

	items := make([]budgetRow, 0, len(rows))
	for _, row := range rows {
		width := int(row.PercentUsed)
		if width > 100 {
			width = 100
		}
		if width < 0 {
			width = 0
		}
		items = append(items, budgetRow{
			Category:    row.Category,
			Budget:      formatAmount(row.Budget.Cents),
			Spent:       formatAmount(row.Spent.Cents),
			Remaining:   formatAmount(row.Remaining.Cents),
			Overspent:   row.Remaining.Cents < 0,
			PercentUsed: formatPercent(row.PercentUsed),
			BarWidth:    width,
		})
	}

	data := struct {
		Year  int
		Month int
		Items []budgetRow
	}{Year: year, Month: month, Items: items}

	if err := s.templates.ExecuteTemplate(w, "budget_status.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Budget status template failed", "error", err, "template", "budget_status.html")
		_, _ = w.Write([]byte(`<div class="placeholder">Error rendering budget status</div>`))
	}
}
