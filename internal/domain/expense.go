package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a persisted expense record. Amount and Currency are always set on
// a stored expense; Category falls back to "general" and Merchant/Notes may be
// empty.
type Expense struct {
	ID          string
	UserID      string
	Amount      decimal.Decimal
	Currency    string
	Category    string
	Merchant    string
	Notes       string
	ExpenseDate time.Time
	CreatedAt   time.Time
}

// ParsedExpense is the result of extracting an expense from free-form text.
// Amount is nil when no amount could be found; Currency and Merchant are empty
// when unresolved. ExpenseDate is always populated.
type ParsedExpense struct {
	Amount      *decimal.Decimal
	Currency    string
	Category    string
	Merchant    string
	Notes       string
	ExpenseDate time.Time
}

// ExpenseFilter narrows ListByUser results.
type ExpenseFilter struct {
	Category string
	Limit    int
	Offset   int
}

type ExpenseStore interface {
	Create(ctx context.Context, e *Expense) error
	// CountForDate counts expenses for one user on one calendar date.
	CountForDate(ctx context.Context, userID string, day time.Time) (int, error)
	ListByUser(ctx context.Context, userID string, f ExpenseFilter) ([]Expense, error)
	GetByID(ctx context.Context, id string) (*Expense, error)
	Update(ctx context.Context, e *Expense) error
	Delete(ctx context.Context, userID, id string) error
}
