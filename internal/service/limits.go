package service

import (
	"context"
	"time"

	"pennywise/internal/domain"
)

// LimitPolicy is the daily-quota admission control, tiered by account class.
type LimitPolicy struct {
	expenses domain.ExpenseStore
	free     int
	premium  int
}

func NewLimitPolicy(expenses domain.ExpenseStore, free, premium int) *LimitPolicy {
	return &LimitPolicy{expenses: expenses, free: free, premium: premium}
}

func (p *LimitPolicy) DailyLimitFor(user *domain.User) int {
	if user.IsPremium {
		return p.premium
	}
	return p.free
}

// HasReachedDailyLimit reports whether the user already has at least the
// tier's limit of expenses recorded for the given calendar date. It must run
// before persistence so the quota is never exceeded.
func (p *LimitPolicy) HasReachedDailyLimit(ctx context.Context, user *domain.User, day time.Time) (bool, error) {
	count, err := p.expenses.CountForDate(ctx, user.ID, day)
	if err != nil {
		return false, err
	}
	return count >= p.DailyLimitFor(user), nil
}
