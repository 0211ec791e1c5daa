package parser

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pennywise/internal/domain"
	"pennywise/internal/metrics"
)

// Extractor turns free-form text into a ParsedExpense. When a remote
// extraction endpoint is configured it is tried first; any failure falls back
// to the local rule-based parser, so Extract never fails.
type Extractor struct {
	remote  *RemoteClient // nil when not configured
	metrics metrics.Collector
}

func NewExtractor(remote *RemoteClient, collector metrics.Collector) *Extractor {
	if collector == nil {
		collector = metrics.Noop{}
	}
	return &Extractor{remote: remote, metrics: collector}
}

func (e *Extractor) Extract(ctx context.Context, text string, referenceDate time.Time) domain.ParsedExpense {
	if e.remote != nil {
		raw, err := e.remote.Parse(ctx, text, referenceDate)
		if err == nil {
			return normalizeRemote(raw, text, referenceDate)
		}
		log.Printf("external text parser failed, falling back to local parser: %v", err)
		e.metrics.ExtractionFallback()
	}
	return ParseLocal(text, referenceDate)
}

// normalizeRemote coerces a validated remote response into a fully populated
// ParsedExpense: numeric-ish amounts become decimals, ISO date strings become
// dates, currency codes are uppercased and missing fields get their defaults.
func normalizeRemote(raw map[string]any, original string, referenceDate time.Time) domain.ParsedExpense {
	parsed := domain.ParsedExpense{
		Amount:      coerceAmount(raw["amount"]),
		Currency:    strings.ToUpper(stringOrEmpty(raw["currency"])),
		Category:    strings.ToLower(stringOrEmpty(raw["category"])),
		Merchant:    stringOrEmpty(raw["merchant"]),
		Notes:       stringOrEmpty(raw["notes"]),
		ExpenseDate: DateOrToday(referenceDate),
	}

	if parsed.Category == "" {
		parsed.Category = defaultCategory
	}
	if parsed.Notes == "" {
		parsed.Notes = original
	}
	if s := stringOrEmpty(raw["expense_date"]); s != "" {
		if d, err := time.Parse("2006-01-02", s); err == nil {
			parsed.ExpenseDate = d
		}
	}
	return parsed
}

func coerceAmount(v any) *decimal.Decimal {
	switch n := v.(type) {
	case float64:
		d := decimal.NewFromFloat(n)
		return &d
	case string:
		if d, err := decimal.NewFromString(n); err == nil {
			return &d
		}
	}
	return nil
}

func stringOrEmpty(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
