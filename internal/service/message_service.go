package service

import (
	"context"
	"log"
	"time"

	"pennywise/internal/domain"
	"pennywise/internal/senderlock"
	"pennywise/internal/utils"
)

// Outcome is the explicit result of processing one inbound message; failure
// paths are values, not errors.
type Outcome int

const (
	OutcomeRecorded Outcome = iota
	OutcomeEnqueued
	OutcomeNeedsClarification
	OutcomeQuotaExceeded
	OutcomeUnsupported
	// OutcomeInvalid marks input that can never succeed; retrying is pointless.
	OutcomeInvalid
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRecorded:
		return "recorded"
	case OutcomeEnqueued:
		return "enqueued"
	case OutcomeNeedsClarification:
		return "needs_clarification"
	case OutcomeQuotaExceeded:
		return "quota_exceeded"
	case OutcomeUnsupported:
		return "unsupported"
	case OutcomeInvalid:
		return "invalid"
	default:
		return "error"
	}
}

// Extractor turns raw text into a fully populated ParsedExpense.
type Extractor interface {
	Extract(ctx context.Context, text string, referenceDate time.Time) domain.ParsedExpense
}

// Notifier accepts a message for delivery to a sender. The returned bool
// means "accepted", not "delivered".
type Notifier interface {
	Notify(ctx context.Context, waID, text string, metadata map[string]string) bool
}

// InboundEnqueuer hands a normalized expense to the inbound-work queue.
type InboundEnqueuer interface {
	Enqueue(ctx context.Context, task domain.InboundTask) error
}

// MessageService routes inbound webhook messages: creates users on first
// contact, extracts expenses, applies admission control and persists, and
// notifies the sender of every terminal outcome.
type MessageService struct {
	users     domain.UserStore
	expenses  domain.ExpenseStore
	extractor Extractor
	currency  *CurrencyResolver
	limits    *LimitPolicy
	notifier  Notifier
	inbound   InboundEnqueuer // nil means record synchronously
	locks     *senderlock.Map
}

func NewMessageService(
	users domain.UserStore,
	expenses domain.ExpenseStore,
	extractor Extractor,
	currency *CurrencyResolver,
	limits *LimitPolicy,
	notifier Notifier,
	inbound InboundEnqueuer,
) *MessageService {
	return &MessageService{
		users:     users,
		expenses:  expenses,
		extractor: extractor,
		currency:  currency,
		limits:    limits,
		notifier:  notifier,
		inbound:   inbound,
		locks:     senderlock.New(),
	}
}

// HandleMessage processes one inbound message to a terminal outcome. With an
// inbound queue configured the expense is extracted here and persisted by the
// worker; otherwise the whole pipeline runs synchronously.
func (s *MessageService) HandleMessage(ctx context.Context, msg domain.InboundMessage) Outcome {
	user, err := s.users.GetOrCreateByWaID(ctx, msg.WaID)
	if err != nil {
		log.Printf("lookup user for %s: %v", msg.WaID, err)
		return OutcomeError
	}

	if msg.Type != domain.MessageTypeText {
		log.Printf("unsupported message type %q from %s", msg.Type, msg.WaID)
		s.notifier.Notify(ctx, msg.WaID, utils.BuildUnsupportedType(), nil)
		return OutcomeUnsupported
	}

	parsed := s.extractor.Extract(ctx, msg.Text, msg.ReferenceDate)

	if s.inbound != nil {
		task := domain.InboundTask{Type: domain.TaskExpense, WaID: msg.WaID, Expense: parsed.Payload()}
		err := s.inbound.Enqueue(ctx, task)
		if err == nil {
			return OutcomeEnqueued
		}
		log.Printf("enqueue expense for %s failed, recording synchronously: %v", msg.WaID, err)
	}

	return s.Record(ctx, user, parsed)
}

// RecordTask is the inbound-worker entry point for a queued expense. A task
// that can never succeed yields OutcomeInvalid; transient failures yield
// OutcomeError so the caller may retry.
func (s *MessageService) RecordTask(ctx context.Context, task domain.InboundTask) Outcome {
	if task.Type != domain.TaskExpense {
		log.Printf("unknown inbound task type %q", task.Type)
		return OutcomeInvalid
	}
	if task.WaID == "" {
		log.Println("inbound task missing wa_id, dropping")
		return OutcomeInvalid
	}

	user, err := s.users.GetOrCreateByWaID(ctx, task.WaID)
	if err != nil {
		log.Printf("lookup user for %s: %v", task.WaID, err)
		return OutcomeError
	}
	return s.Record(ctx, user, task.Expense.Parsed())
}

// Record runs the amount gate, currency resolution, admission control,
// persistence and confirmation for one extracted expense. The whole sequence
// holds the sender's lock so concurrent submissions cannot exceed the daily
// quota.
func (s *MessageService) Record(ctx context.Context, user *domain.User, parsed domain.ParsedExpense) Outcome {
	unlock := s.locks.Lock(user.WaID)
	defer unlock()

	if parsed.Amount == nil || !parsed.Amount.IsPositive() {
		log.Printf("no valid amount in message from %s, asking for clarification", user.WaID)
		s.notifier.Notify(ctx, user.WaID, utils.BuildClarification(), nil)
		return OutcomeNeedsClarification
	}

	currency, err := s.currency.Resolve(ctx, user, parsed.Currency, user.WaID)
	if err != nil {
		// The resolved value is still usable; only remembering it failed.
		log.Printf("persist default currency for %s: %v", user.WaID, err)
	}

	reached, err := s.limits.HasReachedDailyLimit(ctx, user, parsed.ExpenseDate)
	if err != nil {
		log.Printf("daily limit check for %s: %v", user.WaID, err)
		return OutcomeError
	}
	if reached {
		s.notifier.Notify(ctx, user.WaID, utils.BuildLimitNotice(s.limits.DailyLimitFor(user)), nil)
		return OutcomeQuotaExceeded
	}

	expense := &domain.Expense{
		UserID:      user.ID,
		Amount:      *parsed.Amount,
		Currency:    currency,
		Category:    parsed.Category,
		Merchant:    parsed.Merchant,
		Notes:       parsed.Notes,
		ExpenseDate: parsed.ExpenseDate,
	}
	if err := s.expenses.Create(ctx, expense); err != nil {
		log.Printf("persist expense for %s: %v", user.WaID, err)
		return OutcomeError
	}

	log.Printf("recorded expense %s: %s %s (%s) for %s",
		expense.ID, expense.Amount.String(), expense.Currency, expense.Category, user.WaID)

	confirmation := utils.BuildConfirmation(expense.Amount, expense.Currency, expense.Merchant, expense.ExpenseDate)
	s.notifier.Notify(ctx, user.WaID, confirmation, nil)
	return OutcomeRecorded
}
