package model

import (
	"time"

	"subscription-cancellation/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive              SubscriptionStatus = "active"
	SubscriptionStatusPendingCancellation SubscriptionStatus = "pending_cancellation"
	SubscriptionStatusCancelled           SubscriptionStatus = "cancelled"
)

// Subscription is a user's plan instance. One active subscription per user
// is assumed; prices are stored in minor currency units.
type Subscription struct {
	ID                string // UUID
	UserID            string // UUID of user
	MonthlyPriceCents int
	Status            SubscriptionStatus
	CreatedAt         time.Time
}

func NewSubscription(id, userID string, monthlyPriceCents int) (*Subscription, error) {
	if id == "" || userID == "" || monthlyPriceCents <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Subscription{
		ID:                id,
		UserID:            userID,
		MonthlyPriceCents: monthlyPriceCents,
		Status:            SubscriptionStatusActive,
		CreatedAt:         time.Now(),
	}, nil
}

// DiscountedPriceCents is the 50%-off downsell offer price.
func (s *Subscription) DiscountedPriceCents() int {
	return s.MonthlyPriceCents / 2
}
