package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OutboundTask is one unit of work on the outbound-notification queue.
type OutboundTask struct {
	Type     string            `json:"type"` // "send_text"
	WaID     string            `json:"wa_id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

const TaskSendText = "send_text"

// InboundTask carries one normalized extracted expense on the inbound-work
// queue, to be persisted by the expense worker.
type InboundTask struct {
	Type    string         `json:"type"` // "expense"
	WaID    string         `json:"wa_id"`
	Expense ExpensePayload `json:"expense"`
}

const TaskExpense = "expense"

// ExpensePayload is the wire form of a ParsedExpense. Amount travels as a
// plain number (nil when absent) and the date as an ISO string so the payload
// stays readable in queue consoles.
type ExpensePayload struct {
	Amount      *float64 `json:"amount"`
	Currency    string   `json:"currency,omitempty"`
	Category    string   `json:"category"`
	Merchant    string   `json:"merchant,omitempty"`
	Notes       string   `json:"notes"`
	ExpenseDate string   `json:"expense_date"`
}

// Payload converts a ParsedExpense into its wire form.
func (p ParsedExpense) Payload() ExpensePayload {
	out := ExpensePayload{
		Currency:    p.Currency,
		Category:    p.Category,
		Merchant:    p.Merchant,
		Notes:       p.Notes,
		ExpenseDate: p.ExpenseDate.Format("2006-01-02"),
	}
	if p.Amount != nil {
		f, _ := p.Amount.Float64()
		out.Amount = &f
	}
	return out
}

// Parsed converts a wire payload back into a ParsedExpense. An unparsable
// date falls back to today so the result is always fully populated.
func (p ExpensePayload) Parsed() ParsedExpense {
	out := ParsedExpense{
		Currency: p.Currency,
		Category: p.Category,
		Merchant: p.Merchant,
		Notes:    p.Notes,
	}
	if p.Amount != nil {
		d := decimal.NewFromFloat(*p.Amount)
		out.Amount = &d
	}
	day, err := time.Parse("2006-01-02", p.ExpenseDate)
	if err != nil {
		day = time.Now().UTC().Truncate(24 * time.Hour)
	}
	out.ExpenseDate = day
	return out
}
