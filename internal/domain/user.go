package domain

import (
	"context"
	"time"
)

// User is a messaging-channel user, keyed by the transport-assigned WhatsApp
// id. Created lazily on first inbound message; DefaultCurrency is empty until
// the currency resolver records one.
type User struct {
	ID              string
	WaID            string
	DefaultCurrency string
	IsPremium       bool
	CreatedAt       time.Time
}

type UserStore interface {
	// GetOrCreateByWaID returns the user for a sender id, creating it on
	// first contact. A given wa_id always maps to the same user.
	GetOrCreateByWaID(ctx context.Context, waID string) (*User, error)
	// GetByWaID fails when no user exists for the sender id.
	GetByWaID(ctx context.Context, waID string) (*User, error)
	SetDefaultCurrency(ctx context.Context, userID, currency string) error
	SetPremium(ctx context.Context, waID string, premium bool) error
}
