package utils

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BuildConfirmation builds the confirmation sent after an expense is
// recorded. A missing merchant falls back to a generic phrase.
func BuildConfirmation(amount decimal.Decimal, currency, merchant string, date time.Time) string {
	if merchant == "" {
		merchant = "your expense"
	}
	return fmt.Sprintf("Recorded expense: %s %s for %s on %s.",
		amount.String(), currency, merchant, date.Format("2006-01-02"))
}

func BuildClarification() string {
	return "I couldn't find a valid amount in that message. Please include something like 'Lunch 12 USD'."
}

func BuildLimitNotice(limit int) string {
	return fmt.Sprintf("You've reached your daily limit of %d expenses. Try again tomorrow or upgrade for a higher limit.", limit)
}

func BuildUnsupportedType() string {
	return "Thanks! Image and other message types will be supported soon."
}
