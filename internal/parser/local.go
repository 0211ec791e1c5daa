package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pennywise/internal/domain"
)

var (
	// Commas are thousands separators: "1,234.50" parses as 1234.50.
	amountRe   = regexp.MustCompile(`\d+(?:,\d{3})*(?:\.\d+)?`)
	currencyRe = regexp.MustCompile(`\b[A-Za-z]{3}\b|[$€£¥₹]`)
)

var datePatterns = []struct {
	re     *regexp.Regexp
	layout string
}{
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}`), "2006-01-02"},
	{regexp.MustCompile(`\d{2}/\d{2}/\d{4}`), "02/01/2006"},
}

// Ordered by priority: the first category whose keyword appears in the
// lowercased message wins.
var categoryKeywords = []struct {
	label    string
	keywords []string
}{
	{"grocery", []string{"grocery", "supermarket", "market"}},
	{"transport", []string{"uber", "taxi", "train", "bus"}},
	{"food", []string{"dinner", "lunch", "breakfast", "restaurant"}},
}

const defaultCategory = "general"

// ParseLocal extracts an expense from free-form text with deterministic
// rules. The result is always fully populated: Amount is nil when no amount
// token exists, Currency/Merchant are empty when absent, ExpenseDate falls
// back to referenceDate or today, and Notes keeps the message verbatim.
func ParseLocal(message string, referenceDate time.Time) domain.ParsedExpense {
	parsed := domain.ParsedExpense{
		Currency:    currencyRe.FindString(message),
		Category:    detectCategory(message),
		ExpenseDate: extractDate(message, referenceDate),
		Notes:       message,
	}

	if m := amountRe.FindString(message); m != "" {
		amount, err := decimal.NewFromString(strings.ReplaceAll(m, ",", ""))
		if err == nil {
			parsed.Amount = &amount
		}
	}

	if tokens := strings.Fields(message); len(tokens) > 0 {
		parsed.Merchant = tokens[0]
	}

	return parsed
}

func detectCategory(message string) string {
	lowered := strings.ToLower(message)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(lowered, kw) {
				return c.label
			}
		}
	}
	return defaultCategory
}

// extractDate returns the first valid date token in the message; matches that
// are not valid calendar dates are skipped.
func extractDate(message string, referenceDate time.Time) time.Time {
	for _, p := range datePatterns {
		for _, m := range p.re.FindAllString(message, -1) {
			if d, err := time.Parse(p.layout, m); err == nil {
				return d
			}
		}
	}
	return DateOrToday(referenceDate)
}

// DateOrToday truncates the reference to a calendar date, defaulting to the
// current day when the reference is unset.
func DateOrToday(reference time.Time) time.Time {
	if reference.IsZero() {
		reference = time.Now().UTC()
	}
	y, m, d := reference.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
