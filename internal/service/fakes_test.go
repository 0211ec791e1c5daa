package service_test

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pennywise/internal/domain"
)

// fakeUsers is an in-memory domain.UserStore.
type fakeUsers struct {
	users       map[string]*domain.User
	setCurrency int
	createErr   error
	currencyErr error
}

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{users: make(map[string]*domain.User)}
	for _, u := range users {
		f.users[u.WaID] = u
	}
	return f
}

func (f *fakeUsers) GetOrCreateByWaID(ctx context.Context, waID string) (*domain.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if u, ok := f.users[waID]; ok {
		return u, nil
	}
	u := &domain.User{ID: "user-" + waID, WaID: waID, CreatedAt: time.Now()}
	f.users[waID] = u
	return u, nil
}

func (f *fakeUsers) GetByWaID(ctx context.Context, waID string) (*domain.User, error) {
	if u, ok := f.users[waID]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) SetDefaultCurrency(ctx context.Context, userID, currency string) error {
	if f.currencyErr != nil {
		return f.currencyErr
	}
	f.setCurrency++
	for _, u := range f.users {
		if u.ID == userID {
			u.DefaultCurrency = currency
		}
	}
	return nil
}

func (f *fakeUsers) SetPremium(ctx context.Context, waID string, premium bool) error {
	u, ok := f.users[waID]
	if !ok {
		return sql.ErrNoRows
	}
	u.IsPremium = premium
	return nil
}

// fakeExpenses is an in-memory domain.ExpenseStore.
type fakeExpenses struct {
	created   []domain.Expense
	count     int
	counted   int
	createErr error
	countErr  error
}

func (f *fakeExpenses) Create(ctx context.Context, e *domain.Expense) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = "expense-1"
	f.created = append(f.created, *e)
	return nil
}

func (f *fakeExpenses) CountForDate(ctx context.Context, userID string, day time.Time) (int, error) {
	f.counted++
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.count, nil
}

func (f *fakeExpenses) ListByUser(ctx context.Context, userID string, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	return f.created, nil
}

func (f *fakeExpenses) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	for i := range f.created {
		if f.created[i].ID == id {
			return &f.created[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeExpenses) Update(ctx context.Context, e *domain.Expense) error { return nil }

func (f *fakeExpenses) Delete(ctx context.Context, userID, id string) error { return nil }

// fakeNotifier records accepted notifications.
type fakeNotifier struct {
	notices []string
	waIDs   []string
}

func (f *fakeNotifier) Notify(ctx context.Context, waID, text string, metadata map[string]string) bool {
	f.waIDs = append(f.waIDs, waID)
	f.notices = append(f.notices, text)
	return true
}

// fakeExtractor returns a canned extraction.
type fakeExtractor struct {
	parsed domain.ParsedExpense
	calls  int
}

func (f *fakeExtractor) Extract(ctx context.Context, text string, referenceDate time.Time) domain.ParsedExpense {
	f.calls++
	return f.parsed
}

// fakeInbound records enqueued tasks.
type fakeInbound struct {
	tasks []domain.InboundTask
	err   error
}

func (f *fakeInbound) Enqueue(ctx context.Context, task domain.InboundTask) error {
	if f.err != nil {
		return f.err
	}
	f.tasks = append(f.tasks, task)
	return nil
}

var errStore = errors.New("store unavailable")
