// Package storage is the persistence gateway: parameterized CRUD and a few
// aggregate queries over the three record sets, backed by an embedded SQLite
// database opened once per process lifetime.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (or creates) the database at dbPath and applies
// pending migrations. The caller owns the handle and must Close it; there is
// no package-level singleton.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ExpenseFilter narrows ListExpenses. Zero values mean "no filter".
type ExpenseFilter struct {
	Year     int
	Month    int // 1-12, requires Year
	Category string
}

// InsertExpense stores a new expense row and returns its generated id.
func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (date, amount_cents, category, description) VALUES (?, ?, ?, ?)`,
		e.Date.String(), e.Amount.Cents, e.Category, e.Description)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"date", e.Date.String(),
		"amount_cents", e.Amount.Cents,
		"category", e.Category)

	return id, nil
}

// ListExpenses returns expenses matching the filter, newest first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error) {
	query := `SELECT id, date, amount_cents, category, description FROM expenses`
	var where []string
	var args []any
	if f.Year != 0 && f.Month != 0 {
		where = append(where, `strftime('%Y-%m', date) = ?`)
		args = append(args, fmt.Sprintf("%04d-%02d", f.Year, f.Month))
	}
	if f.Category != "" {
		where = append(where, `category = ?`)
		args = append(args, f.Category)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// ExpensesBetween returns expenses dated within [start, end] inclusive,
// oldest first. Both bounds are YYYY-MM-DD strings via core.Date.
func (r *SQLiteRepository) ExpensesBetween(ctx context.Context, start, end core.Date) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, amount_cents, category, description
		 FROM expenses WHERE date BETWEEN ? AND ? ORDER BY date, id`,
		start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("expenses between: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// RecentExpenses returns the most recently dated expenses, up to limit.
func (r *SQLiteRepository) RecentExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, amount_cents, category, description
		 FROM expenses ORDER BY date DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent expenses: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// DeleteExpense removes an expense by id. Returns core.ErrNotFound if no row
// had that id.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

// MonthTotal sums expense amounts for a calendar month. Months with no rows
// yield 0.
func (r *SQLiteRepository) MonthTotal(ctx context.Context, year, month int) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE strftime('%Y-%m', date) = ?`,
		fmt.Sprintf("%04d-%02d", year, month)).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("month total: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// CategorySum pairs a category with its summed spend.
type CategorySum struct {
	Category string
	Amount   core.Money
}

// CategorySums groups spend by category over [start, end] inclusive, largest
// first. Categories without spend in range are absent.
func (r *SQLiteRepository) CategorySums(ctx context.Context, start, end core.Date) ([]CategorySum, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents) AS total
		 FROM expenses WHERE date BETWEEN ? AND ?
		 GROUP BY category ORDER BY total DESC`,
		start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("category sums: %w", err)
	}
	defer rows.Close()

	var sums []CategorySum
	for rows.Next() {
		var cs CategorySum
		if err := rows.Scan(&cs.Category, &cs.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		sums = append(sums, cs)
	}
	return sums, rows.Err()
}

// UpsertBudget sets the monthly budget for a category, replacing any prior
// amount. Setting twice for the same category is not an error.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, category string, amount core.Money) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (category, amount_cents) VALUES (?, ?)
		 ON CONFLICT(category) DO UPDATE SET amount_cents = excluded.amount_cents`,
		category, amount.Cents)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget set", "category", category, "amount_cents", amount.Cents)
	return nil
}

// ListBudgets returns all budget rows ordered by category name.
func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, amount_cents FROM budgets ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.Category, &b.Monthly.Cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// TotalBudget sums all monthly budget amounts.
func (r *SQLiteRepository) TotalBudget(ctx context.Context) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount_cents), 0) FROM budgets`).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("total budget: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// InsertSavingsGoal stores a new goal. A name collision surfaces as
// core.ErrDuplicateName and leaves the existing goal unmodified.
func (r *SQLiteRepository) InsertSavingsGoal(ctx context.Context, g core.SavingsGoal) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goals (name, target_cents, current_cents, target_date) VALUES (?, ?, ?, ?)`,
		g.Name, g.Target.Cents, g.Current.Cents, g.TargetDate.String())
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert savings goal %q: %w", g.Name, core.ErrDuplicateName)
		}
		return 0, fmt.Errorf("insert savings goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("savings goal insert id: %w", err)
	}

	slog.InfoContext(ctx, "Savings goal created",
		"id", id,
		"name", g.Name,
		"target_cents", g.Target.Cents)

	return id, nil
}

// ListSavingsGoals returns all goals ordered by name.
func (r *SQLiteRepository) ListSavingsGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, target_cents, current_cents, target_date FROM savings_goals ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	defer rows.Close()

	var goals []core.SavingsGoal
	for rows.Next() {
		var g core.SavingsGoal
		var targetDate string
		if err := rows.Scan(&g.ID, &g.Name, &g.Target.Cents, &g.Current.Cents, &targetDate); err != nil {
			return nil, fmt.Errorf("scan savings goal: %w", err)
		}
		if g.TargetDate, err = core.ParseDate(targetDate); err != nil {
			return nil, fmt.Errorf("parse goal target date %q: %w", targetDate, err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// UpdateSavingsGoalAmount replaces a goal's current amount in place. The
// amount is never auto-incremented by expense activity.
func (r *SQLiteRepository) UpdateSavingsGoalAmount(ctx context.Context, id int64, amount core.Money) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE savings_goals SET current_cents = ? WHERE id = ?`, amount.Cents, id)
	if err != nil {
		return fmt.Errorf("update savings goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update savings goal rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Savings goal updated", "id", id, "current_cents", amount.Cents)
	return nil
}

// DeleteSavingsGoal removes a goal by id.
func (r *SQLiteRepository) DeleteSavingsGoal(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM savings_goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete savings goal rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Savings goal deleted", "id", id)
	return nil
}

// TotalSavings sums the current amounts of all goals.
func (r *SQLiteRepository) TotalSavings(ctx context.Context) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(current_cents), 0) FROM savings_goals`).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("total savings: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

func scanExpenses(rows *sql.Rows) ([]core.Expense, error) {
	var expenses []core.Expense
	for rows.Next() {
		var e core.Expense
		var date string
		if err := rows.Scan(&e.ID, &date, &e.Amount.Cents, &e.Category, &e.Description); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		var err error
		if e.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("parse expense date %q: %w", date, err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// isUniqueViolation recognizes SQLite's UNIQUE constraint failure. The
// modernc driver reports it in the error text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
