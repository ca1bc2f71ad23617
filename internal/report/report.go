// Package report is the aggregation engine: pure functions computing derived
// views over snapshots of expense, budget and savings-goal records. Nothing
// here touches storage; callers pass in the rows and render the results.
package report

import (
	"math"
	"sort"
	"time"

	"fintrack/internal/core"
)

// BudgetStatus is one row of the budget-vs-actual view for a month.
type BudgetStatus struct {
	Category  string
	Budget    core.Money
	Spent     core.Money
	Remaining core.Money // negative signals overspend
	// PercentUsed is Spent/Budget*100, 0 when the budget amount is 0.
	PercentUsed float64
}

// MonthlyTotal sums the amounts of expenses dated within the given calendar
// month. Returns 0, not an error, when no rows match.
func MonthlyTotal(expenses []core.Expense, year, month int) core.Money {
	var total core.Money
	for _, e := range expenses {
		if e.Date.InMonth(year, month) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// MonthRange returns the first and last day of a calendar month.
func MonthRange(year, month int) (start, end time.Time) {
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end
}

// CategoryBreakdown groups expense amounts by category over [start, end]
// inclusive. Categories with no expenses in range are absent, not zero.
func CategoryBreakdown(expenses []core.Expense, start, end time.Time) map[string]core.Money {
	totals := make(map[string]core.Money)
	for _, e := range expenses {
		if !inRange(e.Date.Time, start, end) {
			continue
		}
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	return totals
}

// BudgetVsActual joins budgets against the month's per-category spend. Every
// budget row produces exactly one output row; a category with a budget but no
// spend gets Spent 0 and PercentUsed 0. Expense categories without a budget
// are not reported.
func BudgetVsActual(budgets []core.Budget, expenses []core.Expense, year, month int) []BudgetStatus {
	start, end := MonthRange(year, month)
	spent := CategoryBreakdown(expenses, start, end)

	rows := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		row := BudgetStatus{
			Category:  b.Category,
			Budget:    b.Monthly,
			Spent:     spent[b.Category],
			Remaining: b.Monthly.Sub(spent[b.Category]),
		}
		if b.Monthly.Cents > 0 {
			row.PercentUsed = float64(row.Spent.Cents) / float64(b.Monthly.Cents) * 100
		}
		rows = append(rows, row)
	}
	return rows
}

// SortByPercentUsed orders rows most-at-risk first.
func SortByPercentUsed(rows []BudgetStatus) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PercentUsed > rows[j].PercentUsed
	})
}

// GoalProgress returns a goal's completion percentage, clamped at 100 once
// the current amount reaches the target. A zero target is treated as
// complete rather than dividing by zero.
func GoalProgress(g core.SavingsGoal) float64 {
	return GoalRatio(g) * 100
}

// GoalRatio is the bounded [0, 1] form of GoalProgress, suitable for
// progress-bar widths.
func GoalRatio(g core.SavingsGoal) float64 {
	if g.Target.Cents <= 0 {
		return 1.0
	}
	ratio := float64(g.Current.Cents) / float64(g.Target.Cents)
	return math.Min(ratio, 1.0)
}

// TopExpenses returns up to limit expenses in [start, end] sorted by amount
// descending. Ties keep their input order.
func TopExpenses(expenses []core.Expense, start, end time.Time, limit int) []core.Expense {
	var matched []core.Expense
	for _, e := range expenses {
		if inRange(e.Date.Time, start, end) {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Amount.Cents > matched[j].Amount.Cents
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

// PercentOfTotal converts per-category totals to percentages of the grand
// total, rounded to 2 decimal places. The outputs may not sum to exactly 100
// because each value rounds independently; that is accepted, not corrected.
func PercentOfTotal(totals map[string]core.Money) map[string]float64 {
	var sum int64
	for _, m := range totals {
		sum += m.Cents
	}
	percents := make(map[string]float64, len(totals))
	for cat, m := range totals {
		if sum == 0 {
			percents[cat] = 0
			continue
		}
		p := float64(m.Cents) / float64(sum) * 100
		percents[cat] = math.Round(p*100) / 100
	}
	return percents
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
