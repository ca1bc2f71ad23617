package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fintrack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustInsert(t *testing.T, repo *SQLiteRepository, date string, cents int64, category, desc string) int64 {
	t.Helper()
	d, err := core.ParseDate(date)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	id, err := repo.InsertExpense(context.Background(), core.Expense{
		Date:        d,
		Amount:      core.Money{Cents: cents},
		Category:    category,
		Description: desc,
	})
	if err != nil {
		t.Fatalf("insert expense: %v", err)
	}
	return id
}

func TestInsertAndListExpenses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustInsert(t, repo, "2024-05-01", 1000, "Food & Dining", "groceries")
	mustInsert(t, repo, "2024-05-15", 2500, "Housing", "repairs")
	mustInsert(t, repo, "2024-06-01", 700, "Food & Dining", "lunch")

	all, err := repo.ListExpenses(ctx, ExpenseFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d expenses, want 3", len(all))
	}
	// Newest first.
	if all[0].Date.String() != "2024-06-01" {
		t.Errorf("first row date = %s, want 2024-06-01", all[0].Date.String())
	}

	may, err := repo.ListExpenses(ctx, ExpenseFilter{Year: 2024, Month: 5})
	if err != nil {
		t.Fatalf("list month: %v", err)
	}
	if len(may) != 2 {
		t.Fatalf("got %d May expenses, want 2", len(may))
	}

	food, err := repo.ListExpenses(ctx, ExpenseFilter{Category: "Food & Dining"})
	if err != nil {
		t.Fatalf("list category: %v", err)
	}
	if len(food) != 2 {
		t.Fatalf("got %d food expenses, want 2", len(food))
	}

	both, err := repo.ListExpenses(ctx, ExpenseFilter{Year: 2024, Month: 5, Category: "Food & Dining"})
	if err != nil {
		t.Fatalf("list month+category: %v", err)
	}
	if len(both) != 1 || both[0].Description != "groceries" {
		t.Fatalf("combined filter = %+v", both)
	}
}

func TestExpensesBetween(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustInsert(t, repo, "2024-04-30", 100, "Other", "before")
	mustInsert(t, repo, "2024-05-01", 200, "Other", "first day")
	mustInsert(t, repo, "2024-05-31", 300, "Other", "last day")
	mustInsert(t, repo, "2024-06-01", 400, "Other", "after")

	got, err := repo.ExpensesBetween(ctx, core.NewDate(2024, 5, 1), core.NewDate(2024, 5, 31))
	if err != nil {
		t.Fatalf("between: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2 (bounds inclusive)", len(got))
	}
	// Oldest first.
	if got[0].Description != "first day" || got[1].Description != "last day" {
		t.Fatalf("order = %s, %s", got[0].Description, got[1].Description)
	}
}

func TestRecentExpensesLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustInsert(t, repo, "2024-05-01", 100, "Other", "a")
	mustInsert(t, repo, "2024-05-02", 200, "Other", "b")
	mustInsert(t, repo, "2024-05-03", 300, "Other", "c")

	got, err := repo.RecentExpenses(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].Description != "c" || got[1].Description != "b" {
		t.Fatalf("order = %s, %s", got[0].Description, got[1].Description)
	}
}

func TestDeleteExpense(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id := mustInsert(t, repo, "2024-05-01", 100, "Other", "gone soon")

	if err := repo.DeleteExpense(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteExpense(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteExpense(ctx, 99999); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unknown id = %v, want ErrNotFound", err)
	}
}

func TestMonthTotalAndCategorySums(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustInsert(t, repo, "2024-05-01", 1000, "Food & Dining", "a")
	mustInsert(t, repo, "2024-05-02", 500, "Food & Dining", "b")
	mustInsert(t, repo, "2024-05-03", 2000, "Housing", "c")
	mustInsert(t, repo, "2024-06-03", 9999, "Housing", "other month")

	total, err := repo.MonthTotal(ctx, 2024, 5)
	if err != nil {
		t.Fatalf("month total: %v", err)
	}
	if total.Cents != 3500 {
		t.Fatalf("total = %d, want 3500", total.Cents)
	}

	empty, err := repo.MonthTotal(ctx, 2024, 1)
	if err != nil {
		t.Fatalf("empty month total: %v", err)
	}
	if empty.Cents != 0 {
		t.Fatalf("empty month = %d, want 0", empty.Cents)
	}

	sums, err := repo.CategorySums(ctx, core.NewDate(2024, 5, 1), core.NewDate(2024, 5, 31))
	if err != nil {
		t.Fatalf("category sums: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("got %d categories, want 2", len(sums))
	}
	// Largest first.
	if sums[0].Category != "Housing" || sums[0].Amount.Cents != 2000 {
		t.Fatalf("first = %+v", sums[0])
	}
	if sums[1].Category != "Food & Dining" || sums[1].Amount.Cents != 1500 {
		t.Fatalf("second = %+v", sums[1])
	}
}

func TestUpsertBudget(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertBudget(ctx, "Housing", core.Money{Cents: 120000}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	// Second set replaces, no error, no second row.
	if err := repo.UpsertBudget(ctx, "Housing", core.Money{Cents: 90000}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	budgets, err := repo.ListBudgets(ctx)
	if err != nil {
		t.Fatalf("list budgets: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("got %d budgets, want 1", len(budgets))
	}
	if budgets[0].Monthly.Cents != 90000 {
		t.Fatalf("amount = %d, want 90000", budgets[0].Monthly.Cents)
	}

	if err := repo.UpsertBudget(ctx, "Food & Dining", core.Money{Cents: 50000}); err != nil {
		t.Fatalf("upsert second category: %v", err)
	}
	total, err := repo.TotalBudget(ctx)
	if err != nil {
		t.Fatalf("total budget: %v", err)
	}
	if total.Cents != 140000 {
		t.Fatalf("total = %d, want 140000", total.Cents)
	}
}

func TestSavingsGoalLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	goal := core.SavingsGoal{
		Name:       "Car",
		Target:     core.Money{Cents: 100000},
		Current:    core.Money{Cents: 25000},
		TargetDate: core.NewDate(2025, 12, 31),
	}

	id, err := repo.InsertSavingsGoal(ctx, goal)
	if err != nil {
		t.Fatalf("insert goal: %v", err)
	}

	// Same name again: rejected, first row untouched.
	dup := goal
	dup.Target = core.Money{Cents: 999}
	if _, err := repo.InsertSavingsGoal(ctx, dup); !errors.Is(err, core.ErrDuplicateName) {
		t.Fatalf("duplicate insert = %v, want ErrDuplicateName", err)
	}

	goals, err := repo.ListSavingsGoals(ctx)
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(goals) != 1 {
		t.Fatalf("got %d goals, want 1", len(goals))
	}
	if goals[0].Target.Cents != 100000 {
		t.Fatalf("duplicate insert modified existing goal: %+v", goals[0])
	}
	if goals[0].TargetDate.String() != "2025-12-31" {
		t.Fatalf("target date = %s", goals[0].TargetDate.String())
	}

	if err := repo.UpdateSavingsGoalAmount(ctx, id, core.Money{Cents: 50000}); err != nil {
		t.Fatalf("update goal: %v", err)
	}
	goals, _ = repo.ListSavingsGoals(ctx)
	if goals[0].Current.Cents != 50000 {
		t.Fatalf("current = %d, want 50000", goals[0].Current.Cents)
	}

	total, err := repo.TotalSavings(ctx)
	if err != nil {
		t.Fatalf("total savings: %v", err)
	}
	if total.Cents != 50000 {
		t.Fatalf("total savings = %d, want 50000", total.Cents)
	}

	if err := repo.UpdateSavingsGoalAmount(ctx, 99999, core.Money{Cents: 1}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("update unknown goal = %v, want ErrNotFound", err)
	}

	if err := repo.DeleteSavingsGoal(ctx, id); err != nil {
		t.Fatalf("delete goal: %v", err)
	}
	if err := repo.DeleteSavingsGoal(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	repo, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	repo.Close()

	// Reopening an already-migrated database must not fail.
	repo, err = NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	repo.Close()
}
