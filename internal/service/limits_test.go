package service_test

import (
	"context"
	"testing"
	"time"

	"pennywise/internal/domain"
	"pennywise/internal/service"
)

func TestDailyLimitFor_Tiers(t *testing.T) {
	p := service.NewLimitPolicy(&fakeExpenses{}, 10, 100)

	if got := p.DailyLimitFor(&domain.User{}); got != 10 {
		t.Fatalf("free limit = %d, want 10", got)
	}
	if got := p.DailyLimitFor(&domain.User{IsPremium: true}); got != 100 {
		t.Fatalf("premium limit = %d, want 100", got)
	}
}

func TestHasReachedDailyLimit(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		count   int
		premium bool
		want    bool
	}{
		{"below limit", 9, false, false},
		{"exactly at limit", 10, false, true},
		{"above limit", 11, false, true},
		{"premium below its higher limit", 10, true, false},
		{"premium at limit", 100, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expenses := &fakeExpenses{count: tc.count}
			p := service.NewLimitPolicy(expenses, 10, 100)
			user := &domain.User{ID: "u1", IsPremium: tc.premium}

			got, err := p.HasReachedDailyLimit(context.Background(), user, day)
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if got != tc.want {
				t.Fatalf("reached = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHasReachedDailyLimit_CountError(t *testing.T) {
	p := service.NewLimitPolicy(&fakeExpenses{countErr: errStore}, 10, 100)
	if _, err := p.HasReachedDailyLimit(context.Background(), &domain.User{}, time.Now()); err == nil {
		t.Fatal("expected error when counting fails")
	}
}
