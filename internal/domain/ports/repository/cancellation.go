package repository

import (
	"context"

	"subscription-cancellation/internal/domain/model"
)

// CancellationRepository is the port for the per-user experiment records.
type CancellationRepository interface {
	// Insert stores a fresh record. The store enforces at most one record per
	// user; inserting for a user that already has one returns
	// domain.ErrAlreadyExists and leaves the existing record untouched.
	Insert(ctx context.Context, tx Tx, c *model.Cancellation) error

	FindByUser(ctx context.Context, tx Tx, userID string) (*model.Cancellation, error)

	// UpdateOutcome sets the final reason and accepted-downsell flag on the
	// user's record.
	UpdateOutcome(ctx context.Context, tx Tx, userID, reason string, acceptedDownsell bool) error
}
