package service

import (
	"context"
	"strings"

	"pennywise/internal/domain"
)

var symbolCurrency = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
	"₹": "INR",
}

// Longest prefixes first for greedy match.
var countryCurrencyPrefixes = []struct {
	prefix   string
	currency string
}{
	{"971", "AED"},
	{"966", "SAR"},
	{"65", "SGD"},
	{"62", "IDR"},
	{"63", "PHP"},
	{"61", "AUD"},
	{"91", "INR"},
	{"81", "JPY"},
	{"86", "CNY"},
	{"55", "BRL"},
	{"49", "EUR"},
	{"44", "GBP"},
	{"39", "EUR"},
	{"34", "EUR"},
	{"33", "EUR"},
	{"1", "USD"},
}

// CurrencyResolver decides the effective currency for an expense and keeps
// the user's remembered default up to date.
type CurrencyResolver struct {
	users           domain.UserStore
	defaultCurrency string
}

func NewCurrencyResolver(users domain.UserStore, defaultCurrency string) *CurrencyResolver {
	return &CurrencyResolver{users: users, defaultCurrency: defaultCurrency}
}

// Resolve applies the precedence: explicit currency in the message, then the
// user's remembered default, then inference from the sender id's country
// prefix, then the process-wide default. An explicit currency that differs
// from the remembered default replaces it; an inferred one is remembered only
// when no default exists yet. The remembered-default path performs no write.
func (r *CurrencyResolver) Resolve(ctx context.Context, user *domain.User, parsedCurrency, waID string) (string, error) {
	if normalized := normalizeCurrency(parsedCurrency); normalized != "" {
		if user.DefaultCurrency != normalized {
			if err := r.users.SetDefaultCurrency(ctx, user.ID, normalized); err != nil {
				return normalized, err
			}
			user.DefaultCurrency = normalized
		}
		return normalized, nil
	}

	if user.DefaultCurrency != "" {
		return user.DefaultCurrency, nil
	}

	resolved := inferCurrencyFromWaID(waID)
	if resolved == "" {
		resolved = r.defaultCurrency
	}
	if err := r.users.SetDefaultCurrency(ctx, user.ID, resolved); err != nil {
		return resolved, err
	}
	user.DefaultCurrency = resolved
	return resolved, nil
}

func normalizeCurrency(value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return ""
	}
	if code, ok := symbolCurrency[raw]; ok {
		return code
	}
	return strings.ToUpper(raw)
}

func inferCurrencyFromWaID(waID string) string {
	var digits strings.Builder
	for _, ch := range waID {
		if ch >= '0' && ch <= '9' {
			digits.WriteRune(ch)
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	number := digits.String()
	for _, entry := range countryCurrencyPrefixes {
		if strings.HasPrefix(number, entry.prefix) {
			return entry.currency
		}
	}
	return ""
}
