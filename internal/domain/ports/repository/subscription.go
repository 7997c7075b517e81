package repository

import (
	"context"

	"subscription-cancellation/internal/domain/model"
)

// SubscriptionRepository is the port for user subscriptions.
type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, sub *model.Subscription) error
	FindActiveByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)

	// MarkPendingCancellation transitions the user's active subscription to
	// pending_cancellation. Returns domain.ErrNoActiveSubscription when the
	// user has no active subscription to transition.
	MarkPendingCancellation(ctx context.Context, tx Tx, userID string) error
}
