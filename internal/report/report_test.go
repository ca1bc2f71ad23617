package report

import (
	"testing"
	"time"

	"fintrack/internal/core"
)

func exp(date string, cents int64, category string) core.Expense {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Expense{Date: d, Amount: core.Money{Cents: cents}, Category: category, Description: "x"}
}

func TestMonthlyTotal(t *testing.T) {
	expenses := []core.Expense{
		exp("2024-05-01", 1000, "Food & Dining"),
		exp("2024-05-31", 2500, "Housing"),
		exp("2024-06-01", 9999, "Housing"), // outside the month
		exp("2023-05-15", 100, "Other"),    // right month, wrong year
	}

	if got := MonthlyTotal(expenses, 2024, 5); got.Cents != 3500 {
		t.Fatalf("MonthlyTotal = %d, want 3500", got.Cents)
	}
	if got := MonthlyTotal(expenses, 2024, 7); got.Cents != 0 {
		t.Fatalf("empty month = %d, want 0", got.Cents)
	}
	if got := MonthlyTotal(nil, 2024, 5); got.Cents != 0 {
		t.Fatalf("nil input = %d, want 0", got.Cents)
	}
}

func TestCategoryBreakdown(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)

	expenses := []core.Expense{
		exp("2024-05-01", 1000, "Food & Dining"),
		exp("2024-05-15", 500, "Food & Dining"),
		exp("2024-05-31", 2000, "Housing"), // inclusive upper bound
		exp("2024-06-01", 700, "Housing"),  // out of range
	}

	got := CategoryBreakdown(expenses, start, end)
	if len(got) != 2 {
		t.Fatalf("got %d categories, want 2", len(got))
	}
	if got["Food & Dining"].Cents != 1500 {
		t.Errorf("Food & Dining = %d, want 1500", got["Food & Dining"].Cents)
	}
	if got["Housing"].Cents != 2000 {
		t.Errorf("Housing = %d, want 2000", got["Housing"].Cents)
	}
	if _, ok := got["Travel"]; ok {
		t.Error("categories without spend must be absent, not zero")
	}
}

func TestBreakdownSumMatchesMonthlyTotal(t *testing.T) {
	expenses := []core.Expense{
		exp("2024-05-01", 500, "Food & Dining"),
		exp("2024-05-15", 300, "Food & Dining"),
		exp("2024-05-10", 1000, "Housing"),
		exp("2024-05-20", 42, "Other"),
	}

	start, end := MonthRange(2024, 5)
	var sum int64
	for _, m := range CategoryBreakdown(expenses, start, end) {
		sum += m.Cents
	}
	if total := MonthlyTotal(expenses, 2024, 5); sum != total.Cents {
		t.Fatalf("breakdown sum %d != monthly total %d", sum, total.Cents)
	}
}

func TestBudgetVsActual(t *testing.T) {
	budgets := []core.Budget{
		{Category: "Food & Dining", Monthly: core.Money{Cents: 100000}},
		{Category: "Housing", Monthly: core.Money{Cents: 120000}},
		{Category: "Travel", Monthly: core.Money{Cents: 50000}},
		{Category: "Other", Monthly: core.Money{Cents: 0}},
	}
	expenses := []core.Expense{
		exp("2024-05-03", 80000, "Food & Dining"),
		exp("2024-05-10", 100000, "Housing"),
		exp("2024-05-12", 300, "Other"),
		exp("2024-05-20", 4000, "Shopping"), // no budget row, not reported
	}

	rows := BudgetVsActual(budgets, expenses, 2024, 5)
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want one per budget", len(rows))
	}

	byCat := make(map[string]BudgetStatus, len(rows))
	for _, r := range rows {
		byCat[r.Category] = r
	}

	food := byCat["Food & Dining"]
	if food.Spent.Cents != 80000 || food.Remaining.Cents != 20000 || food.PercentUsed != 80.0 {
		t.Errorf("Food & Dining = %+v", food)
	}

	housing := byCat["Housing"]
	if housing.Spent.Cents != 100000 || housing.Remaining.Cents != 20000 {
		t.Errorf("Housing = %+v", housing)
	}
	if housing.PercentUsed < 83.3 || housing.PercentUsed > 83.4 {
		t.Errorf("Housing PercentUsed = %v, want ~83.33", housing.PercentUsed)
	}

	// Budgeted but unspent: present with zeros.
	travel := byCat["Travel"]
	if travel.Spent.Cents != 0 || travel.Remaining.Cents != 50000 || travel.PercentUsed != 0 {
		t.Errorf("Travel = %+v", travel)
	}

	// Zero budget never divides; spend still shows.
	other := byCat["Other"]
	if other.PercentUsed != 0 {
		t.Errorf("zero budget PercentUsed = %v, want 0", other.PercentUsed)
	}
	if other.Remaining.Cents != -300 {
		t.Errorf("zero budget Remaining = %d, want -300", other.Remaining.Cents)
	}

	if _, ok := byCat["Shopping"]; ok {
		t.Error("expense categories without a budget must not be reported")
	}
}

func TestBudgetVsActualOverspend(t *testing.T) {
	budgets := []core.Budget{{Category: "Entertainment", Monthly: core.Money{Cents: 10000}}}
	expenses := []core.Expense{exp("2024-05-05", 15000, "Entertainment")}

	rows := BudgetVsActual(budgets, expenses, 2024, 5)
	if rows[0].Remaining.Cents != -5000 {
		t.Errorf("Remaining = %d, want -5000", rows[0].Remaining.Cents)
	}
	if rows[0].PercentUsed != 150.0 {
		t.Errorf("PercentUsed = %v, want 150", rows[0].PercentUsed)
	}
}

func TestSortByPercentUsed(t *testing.T) {
	rows := []BudgetStatus{
		{Category: "A", PercentUsed: 20},
		{Category: "B", PercentUsed: 95},
		{Category: "C", PercentUsed: 95},
		{Category: "D", PercentUsed: 50},
	}
	SortByPercentUsed(rows)

	order := []string{"B", "C", "D", "A"}
	for i, want := range order {
		if rows[i].Category != want {
			t.Fatalf("position %d = %s, want %s (ties keep input order)", i, rows[i].Category, want)
		}
	}
}

func TestGoalProgress(t *testing.T) {
	cases := []struct {
		name    string
		current int64
		target  int64
		want    float64
	}{
		{"quarter way", 25000, 100000, 25.0},
		{"complete", 100000, 100000, 100.0},
		{"over target clamps", 120000, 100000, 100.0},
		{"zero target treated complete", 0, 0, 100.0},
		{"fresh goal", 0, 100000, 0.0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := core.SavingsGoal{Current: core.Money{Cents: c.current}, Target: core.Money{Cents: c.target}}
			if got := GoalProgress(g); got != c.want {
				t.Fatalf("GoalProgress = %v, want %v", got, c.want)
			}
		})
	}
}

func TestTopExpenses(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	expenses := []core.Expense{
		exp("2024-03-01", 500, "Other"),
		exp("2024-03-02", 9000, "Travel"),
		exp("2024-03-03", 9000, "Housing"), // tie keeps input order
		exp("2024-03-04", 100, "Other"),
		exp("2023-12-31", 99999, "Travel"), // out of range
	}

	top := TopExpenses(expenses, start, end, 3)
	if len(top) != 3 {
		t.Fatalf("got %d, want 3", len(top))
	}
	if top[0].Category != "Travel" || top[1].Category != "Housing" {
		t.Errorf("tie order broken: %s, %s", top[0].Category, top[1].Category)
	}
	if top[2].Amount.Cents != 500 {
		t.Errorf("third = %d, want 500", top[2].Amount.Cents)
	}

	if got := TopExpenses(expenses, start, end, 0); len(got) != 4 {
		t.Errorf("limit 0 should return all in range, got %d", len(got))
	}
}

func TestPercentOfTotal(t *testing.T) {
	totals := map[string]core.Money{
		"Food & Dining": {Cents: 3000},
		"Housing":       {Cents: 6000},
		"Other":         {Cents: 1000},
	}
	got := PercentOfTotal(totals)
	if got["Food & Dining"] != 30.0 || got["Housing"] != 60.0 || got["Other"] != 10.0 {
		t.Fatalf("percents = %v", got)
	}

	// Thirds round independently to 2 decimals; the sum is allowed to drift.
	thirds := map[string]core.Money{"A": {Cents: 100}, "B": {Cents: 100}, "C": {Cents: 100}}
	got = PercentOfTotal(thirds)
	if got["A"] != 33.33 {
		t.Fatalf("third = %v, want 33.33", got["A"])
	}

	empty := PercentOfTotal(map[string]core.Money{"A": {Cents: 0}})
	if empty["A"] != 0 {
		t.Fatalf("zero total should yield 0, got %v", empty["A"])
	}
}
