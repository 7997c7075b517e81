package model

import (
	"time"

	"subscription-cancellation/internal/domain"
)

type DownsellVariant string

const (
	VariantA DownsellVariant = "A" // no retention offer before the survey
	VariantB DownsellVariant = "B" // 50%-off offer shown first
)

func (v DownsellVariant) Valid() bool {
	return v == VariantA || v == VariantB
}

// Cancellation is the per-user experiment record. It is created on the first
// variant request and mutated exactly once when the flow completes; a user has
// at most one record, so the stored variant is the user's permanent bucket.
type Cancellation struct {
	ID               string // UUID
	UserID           string // UUID of user
	SubscriptionID   string // UUID of subscription
	DownsellVariant  DownsellVariant
	Reason           string // empty until the flow completes without the offer
	AcceptedDownsell bool
	CreatedAt        time.Time
}

func NewCancellation(id, userID, subscriptionID string, variant DownsellVariant) (*Cancellation, error) {
	if id == "" || userID == "" || subscriptionID == "" || !variant.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	return &Cancellation{
		ID:              id,
		UserID:          userID,
		SubscriptionID:  subscriptionID,
		DownsellVariant: variant,
		CreatedAt:       time.Now(),
	}, nil
}
