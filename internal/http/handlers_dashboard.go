package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

// handleSummary renders the dashboard headline figures: this month's spend,
// total budgeted per month and total saved across goals.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	year, month := parseYearMonth(r)
	ctx := r.Context()

	monthTotal, err := s.store.MonthTotal(ctx, year, month)
	if err != nil {
		slog.ErrorContext(ctx, "Month total error", "error", err, "year", year, "month", month)
		_, _ = w.Write([]byte(`<div class="placeholder">Error loading summary</div>`))
		return
	}
	totalBudget, err := s.store.TotalBudget(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Total budget error", "error", err)
		_, _ = w.Write([]byte(`<div class="placeholder">Error loading summary</div>`))
		return
	}
	totalSavings, err := s.store.TotalSavings(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Total savings error", "error", err)
		_, _ = w.Write([]byte(`<div class="placeholder">Error loading summary</div>`))
		return
	}

	remaining := totalBudget.Sub(monthTotal)

	data := struct {
		Year         int
		Month        string
		MonthSpend   string
		TotalBudget  string
		Remaining    string
		Overspent    bool
		TotalSavings string
	}{
		Year:         year,
		Month:        time.Month(month).String(),
		MonthSpend:   formatAmount(monthTotal.Cents),
		TotalBudget:  formatAmount(totalBudget.Cents),
		Remaining:    formatAmount(remaining.Cents),
		Overspent:    remaining.Cents < 0,
		TotalSavings: formatAmount(totalSavings.Cents),
	}

	if err := s.templates.ExecuteTemplate(w, "summary.html", data); err != nil {
		slog.ErrorContext(ctx, "Summary template failed", "error", err, "template", "summary.html")
		_, _ = w.Write([]byte(`<div class="placeholder">Error rendering summary</div>`))
	}
}

// categoryRow is one slice of the category breakdown.
type categoryRow struct {
	Category string
	Amount   string
	Percent  string
	BarWidth int
}

// handleCategoryBreakdown renders per-category spend for the selected period,
// largest first, with each category's share of the total.
func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	period := sanitizeInput(r.URL.Query().Get("period"))
	start, end := report.PeriodRange(period, time.Now())

	sums, err := s.store.CategorySums(r.Context(), core.Date{Time: start}, core.Date{Time: end})
	if err != nil {
		slog.ErrorContext(r.Context(), "Category sums error", "error", err, "period", period)
		_, _ = w.Write([]byte(`<div class="placeholder">Error loading categories</div>`))
		return
	}

	totals := make(map[string]core.Money, len(sums))
	for _, cs := range sums {
		totals[cs.Category] = cs.Amount
	}
	percents := report.PercentOfTotal(totals)

	// sums is already ordered largest first by the query.
	items := make([]categoryRow, 0, len(sums))
	var grand int64
	for _, cs := range sums {
		grand += cs.Amount.Cents
		items = append(items, categoryRow{
			Category: cs.Category,
			Amount:   formatAmount(cs.Amount.Cents),
			Percent:  formatPercent(percents[cs.Category]),
			BarWidth: int(percents[cs.Category]),
		})
	}

	data := struct {
		Period string
		Total  string
		Items  []categoryRow
	}{Period: period, Total: formatAmount(grand), Items: items}

	if err := s.templates.ExecuteTemplate(w, "category_breakdown.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Category breakdown template failed", "error", err, "template", "category_breakdown.html")
		_, _ = w.Write([]byte(`<div class="placeholder">Error rendering categories</div>`))
	}
}

// handleTopExpenses renders the largest expenses in the selected period with
// each one's share of the period total.
func (s *Server) handleTopExpenses(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	period := sanitizeInput(r.URL.Query().Get("period"))
	start, end := report.PeriodRange(period, time.Now())

	expenses, err := s.store.ExpensesBetween(r.Context(), core.Date{Time: start}, core.Date{Time: end})
	if err != nil {
		slog.ErrorContext(r.Context(), "Top expenses error", "error", err, "period", period)
		_, _ = w.Write([]byte(`<div class="placeholder">Error loading expenses</div>`))
		return
	}

	var total int64
	for _, e := range expenses {
		total += e.Amount.Cents
	}

	top := report.TopExpenses(expenses, start, end, s.topLimit)

	type topRow struct {
		Date        string
		Amount      string
		Category    string
		Description string
		Share       string
	}
	items := make([]topRow, 0, len(top))
	for _, e := range top {
		share := 0.0
		if total > 0 {
			share = float64(e.Amount.Cents) / float64(total) * 100
		}
		items = append(items, topRow{
			Date:        e.Date.String(),
			Amount:      formatAmount(e.Amount.Cents),
			Category:    e.Category,
			Description: e.Description,
			Share:       formatPercent(share),
		})
	}

	data := struct {
		Period string
		Items  []topRow
	}{Period: period, Items: items}

	if err := s.templates.ExecuteTemplate(w, "top_expenses.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Top expenses template failed", "error", err, "template", "top_expenses.html")
		_, _ = w.Write([]byte(`<div class="placeholder">Error rendering expenses</div>`))
	}
}

// trendResponse is the chart payload for /api/trend.
type trendResponse struct {
	Period      string    `json:"period"`
	Granularity string    `json:"granularity"`
	Labels      []string  `json:"labels"`
	Totals      []float64 `json:"totals"`
	Cumulative  []float64 `json:"cumulative"`
}

// handleTrend returns the spending trend for a period as JSON consumed by the
// dashboard chart. Buckets without spend are present with zero totals.
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	period := sanitizeInput(r.URL.Query().Get("period"))
	start, end := report.PeriodRange(period, time.Now())
	granularity := report.GranularityFor(period)

	expenses, err := s.store.ExpensesBetween(r.Context(), core.Date{Time: start}, core.Date{Time: end})
	if err != nil {
		slog.ErrorContext(r.Context(), "Trend query error", "error", err, "period", period)
		http.Error(w, "error loading trend data", http.StatusInternalServerError)
		return
	}

	points := report.SpendingTrend(expenses, start, end, granularity)
	cumulative := report.Cumulative(points)

	resp := trendResponse{
		Period:      period,
		Granularity: string(granularity),
		Labels:      make([]string, len(points)),
		Totals:      make([]float64, len(points)),
		Cumulative:  make([]float64, len(points)),
	}
	labelFormat := "2006-01-02"
	if granularity == report.Monthly {
		labelFormat = "2006-01"
	}
	for i, p := range points {
		resp.Labels[i] = p.BucketStart.Format(labelFormat)
		resp.Totals[i] = p.Total.Units()
		resp.Cumulative[i] = cumulative[i].Total.Units()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(r.Context(), "Trend encode error", "error", err)
	}
}
