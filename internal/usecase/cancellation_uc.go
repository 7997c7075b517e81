// File: internal/usecase/cancellation_uc.go
package usecase

import (
	"context"
	"crypto/rand"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"subscription-cancellation/internal/domain"
	"subscription-cancellation/internal/domain/model"
	"subscription-cancellation/internal/domain/ports/repository"
	"subscription-cancellation/internal/infra/logging"
	"subscription-cancellation/internal/infra/metrics"
	"subscription-cancellation/internal/infra/security"
)

// Compile-time check
var _ CancellationUseCase = (*cancellationUC)(nil)

// CancellationUseCase exposes the flow's two persistence operations: variant
// assignment on entry and outcome recording on completion.
type CancellationUseCase interface {
	// GetOrCreateDownsellVariant returns the user's experiment variant,
	// assigning one on first contact. Repeat calls for the same user always
	// return the same variant. Assignment fails soft: any storage failure
	// is logged and answered with variant A rather than an error.
	GetOrCreateDownsellVariant(ctx context.Context, userID string) (model.DownsellVariant, error)

	// CompleteCancellation records the flow outcome. When the downsell was
	// declined the user's active subscription is moved to
	// pending_cancellation in the same transaction.
	CompleteCancellation(ctx context.Context, userID, reason string, acceptedDownsell bool) error

	// FindByUser returns the user's cancellation record for the admin surface.
	FindByUser(ctx context.Context, userID string) (*model.Cancellation, error)
}

type cancellationUC struct {
	cancellations repository.CancellationRepository
	subscriptions repository.SubscriptionRepository
	tm            repository.TransactionManager
	log           *zerolog.Logger
}

func NewCancellationUseCase(
	cancellations repository.CancellationRepository,
	subscriptions repository.SubscriptionRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *cancellationUC {
	return &cancellationUC{
		cancellations: cancellations,
		subscriptions: subscriptions,
		tm:            tm,
		log:           logger,
	}
}

// randomVariant draws one unbiased bit from crypto/rand.
func randomVariant() (model.DownsellVariant, error) {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	if b[0]%2 == 0 {
		return model.VariantA, nil
	}
	return model.VariantB, nil
}

func (uc *cancellationUC) GetOrCreateDownsellVariant(ctx context.Context, userID string) (model.DownsellVariant, error) {
	defer logging.TraceDuration(uc.log, "CancellationUC.GetOrCreateDownsellVariant")()

	// Every failure below falls back to variant A: the wizard must never
	// block on this call, so errors are logged, not surfaced.
	existing, err := uc.cancellations.FindByUser(ctx, repository.NoTX, userID)
	if err == nil {
		return existing.DownsellVariant, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		uc.log.Error().Err(err).Str("user_id", userID).Msg("cancellation lookup failed, defaulting to A")
		return model.VariantA, nil
	}

	variant, err := randomVariant()
	if err != nil {
		uc.log.Error().Err(err).Str("user_id", userID).Msg("variant draw failed, defaulting to A")
		variant = model.VariantA
	}

	sub, err := uc.subscriptions.FindActiveByUser(ctx, repository.NoTX, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warn().Str("user_id", userID).Msg("no active subscription, defaulting to A")
		} else {
			uc.log.Error().Err(err).Str("user_id", userID).Msg("subscription lookup failed, defaulting to A")
		}
		return model.VariantA, nil
	}

	record, err := model.NewCancellation(uuid.NewString(), userID, sub.ID, variant)
	if err != nil {
		uc.log.Error().Err(err).Str("user_id", userID).Msg("cancellation record rejected, defaulting to A")
		return model.VariantA, nil
	}

	err = uc.cancellations.Insert(ctx, repository.NoTX, record)
	if err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
		uc.log.Error().Err(err).Str("user_id", userID).Msg("cancellation insert failed, defaulting to A")
		return model.VariantA, nil
	}
	if errors.Is(err, domain.ErrAlreadyExists) {
		// Another request for the same user won the insert; their variant is
		// the one that sticks.
		winner, ferr := uc.cancellations.FindByUser(ctx, repository.NoTX, userID)
		if ferr != nil {
			uc.log.Error().Err(ferr).Str("user_id", userID).Msg("winner re-read failed, defaulting to A")
			return model.VariantA, nil
		}
		return winner.DownsellVariant, nil
	}
	metrics.IncVariantAssigned(string(record.DownsellVariant))
	return record.DownsellVariant, nil
}

func (uc *cancellationUC) CompleteCancellation(ctx context.Context, userID, reason string, acceptedDownsell bool) error {
	defer logging.TraceDuration(uc.log, "CancellationUC.CompleteCancellation")()

	cleaned := security.SanitizeInput(reason)

	// Outcome write and subscription transition land atomically; a crash
	// between them can never leave a cancelled reason with a live
	// subscription.
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err := uc.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.cancellations.UpdateOutcome(ctx, tx, userID, cleaned, acceptedDownsell); err != nil {
			return err
		}
		if !acceptedDownsell {
			if err := uc.subscriptions.MarkPendingCancellation(ctx, tx, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		uc.log.Error().Err(err).Str("user_id", userID).Bool("accepted_downsell", acceptedDownsell).
			Msg("complete cancellation failed")
		return err
	}

	metrics.IncFlowOutcome(acceptedDownsell)
	uc.log.Info().Str("user_id", userID).Bool("accepted_downsell", acceptedDownsell).
		Msg("cancellation flow completed")
	return nil
}

func (uc *cancellationUC) FindByUser(ctx context.Context, userID string) (*model.Cancellation, error) {
	return uc.cancellations.FindByUser(ctx, repository.NoTX, userID)
}
