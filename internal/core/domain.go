package core

import (
	"errors"
	"strings"
	"time"
)

// Categories is the fixed set of expense categories. Budgets and expenses
// are matched on these names at query time; there is no foreign key.
var Categories = []string{
	"Food & Dining", "Housing", "Transportation", "Utilities",
	"Healthcare", "Entertainment", "Shopping", "Education",
	"Personal Care", "Travel", "Investments", "Debt Payments", "Other",
}

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Expense struct {
		ID          int64
		Date        Date
		Amount      Money
		Category    string
		Description string
	}

	Budget struct {
		ID       int64
		Category string
		// Monthly is the budgeted amount per calendar month.
		Monthly Money
	}

	SavingsGoal struct {
		ID         int64
		Name       string
		Target     Money
		Current    Money
		TargetDate Date
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
	ErrDuplicateName    = errors.New("name already exists")
	ErrNotFound         = errors.New("record not found")
)

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string, the format dates are stored in.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// InMonth reports whether the date falls within the given calendar month.
func (d Date) InMonth(year, month int) bool {
	return d.Year() == year && int(d.Time.Month()) == month
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// ValidCategory reports whether name is one of the fixed categories.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !ValidCategory(e.Category) {
		return ErrInvalidCategory
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (b Budget) Validate() error {
	if !ValidCategory(b.Category) {
		return ErrInvalidCategory
	}
	// A zero budget is allowed; it clears the allocation without deleting
	// the row. Negative amounts are not.
	if b.Monthly.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return ErrEmptyName
	}
	if len(g.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if g.Target.Cents <= 0 {
		return ErrInvalidAmount
	}
	if g.Current.Cents < 0 {
		return ErrInvalidAmount
	}
	if err := g.TargetDate.Validate(); err != nil {
		return errors.New("invalid target date: " + err.Error())
	}
	return nil
}
