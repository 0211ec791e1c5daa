package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pennywise/internal/domain"
)

// Expenses is the PostgreSQL implementation of domain.ExpenseStore.
type Expenses struct {
	db *sql.DB
}

func NewExpenses(db *sql.DB) *Expenses {
	return &Expenses{db: db}
}

var _ domain.ExpenseStore = (*Expenses)(nil)

func (s *Expenses) Create(ctx context.Context, e *domain.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO expenses (id, user_id, amount, currency, category, merchant, notes, expense_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		e.ID, e.UserID, e.Amount.String(), e.Currency,
		nullable(e.Category), nullable(e.Merchant), nullable(e.Notes),
		e.ExpenseDate,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (s *Expenses) CountForDate(ctx context.Context, userID string, day time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(id) FROM expenses
		WHERE user_id = $1 AND expense_date = $2`,
		userID, day.Format("2006-01-02"),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return count, nil
}

func (s *Expenses) ListByUser(ctx context.Context, userID string, f domain.ExpenseFilter) ([]domain.Expense, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, amount, currency, category, merchant, notes, expense_date, created_at
		FROM expenses
		WHERE user_id = $1`
	args := []any{userID}
	if f.Category != "" {
		query += ` AND category = $2`
		args = append(args, f.Category)
	}
	query += fmt.Sprintf(` ORDER BY expense_date DESC, created_at DESC LIMIT %d OFFSET %d`, limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func (s *Expenses) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, amount, currency, category, merchant, notes, expense_date, created_at
		FROM expenses WHERE id = $1`,
		id,
	)
	e, err := scanExpense(row.Scan)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (s *Expenses) Update(ctx context.Context, e *domain.Expense) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE expenses
		SET amount = $1, currency = $2, category = $3, merchant = $4, notes = $5, expense_date = $6
		WHERE id = $7 AND user_id = $8`,
		e.Amount.String(), e.Currency,
		nullable(e.Category), nullable(e.Merchant), nullable(e.Notes),
		e.ExpenseDate, e.ID, e.UserID,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res)
}

func (s *Expenses) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res)
}

func scanExpense(scan func(...any) error) (*domain.Expense, error) {
	var (
		e                         domain.Expense
		amount                    string
		category, merchant, notes sql.NullString
	)
	if err := scan(&e.ID, &e.UserID, &amount, &e.Currency, &category, &merchant, &notes, &e.ExpenseDate, &e.CreatedAt); err != nil {
		return nil, err
	}
	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	e.Amount = dec
	e.Category = category.String
	e.Merchant = merchant.String
	e.Notes = notes.String
	return &e, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
