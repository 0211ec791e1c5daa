package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"pennywise/internal/domain"
)

// Users is the PostgreSQL implementation of domain.UserStore.
type Users struct {
	db *sql.DB
}

func NewUsers(db *sql.DB) *Users {
	return &Users{db: db}
}

var _ domain.UserStore = (*Users)(nil)

// GetOrCreateByWaID inserts the user on first contact. The insert uses
// ON CONFLICT DO NOTHING so two near-simultaneous first messages still map
// to a single row.
func (s *Users) GetOrCreateByWaID(ctx context.Context, waID string) (*domain.User, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, wa_id)
		VALUES ($1, $2)
		ON CONFLICT (wa_id) DO NOTHING`,
		uuid.New().String(), waID,
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.GetByWaID(ctx, waID)
}

func (s *Users) GetByWaID(ctx context.Context, waID string) (*domain.User, error) {
	var (
		u               domain.User
		defaultCurrency sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, wa_id, default_currency, is_premium, created_at
		FROM users WHERE wa_id = $1`,
		waID,
	).Scan(&u.ID, &u.WaID, &defaultCurrency, &u.IsPremium, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if defaultCurrency.Valid {
		u.DefaultCurrency = defaultCurrency.String
	}
	return &u, nil
}

func (s *Users) SetDefaultCurrency(ctx context.Context, userID, currency string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET default_currency = $1 WHERE id = $2`,
		currency, userID,
	)
	if err != nil {
		return fmt.Errorf("set default currency: %w", err)
	}
	return nil
}

func (s *Users) SetPremium(ctx context.Context, waID string, premium bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_premium = $1 WHERE wa_id = $2`,
		premium, waID,
	)
	if err != nil {
		return fmt.Errorf("set premium: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set premium: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
