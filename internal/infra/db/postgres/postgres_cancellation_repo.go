package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"subscription-cancellation/internal/domain"
	"subscription-cancellation/internal/domain/model"
	"subscription-cancellation/internal/domain/ports/repository"
)

var _ repository.CancellationRepository = (*cancellationRepo)(nil)

type cancellationRepo struct {
	pool *pgxpool.Pool
}

func NewCancellationRepo(pool *pgxpool.Pool) *cancellationRepo {
	return &cancellationRepo{pool: pool}
}

// Insert relies on the UNIQUE index on user_id: concurrent first-contact
// requests race on the insert and exactly one row survives.
func (r *cancellationRepo) Insert(ctx context.Context, tx repository.Tx, c *model.Cancellation) error {
	const q = `
INSERT INTO cancellations (id, user_id, subscription_id, downsell_variant, reason, accepted_downsell, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);`
	_, err := execSQL(ctx, r.pool, tx, q,
		c.ID, c.UserID, c.SubscriptionID, c.DownsellVariant, c.Reason, c.AcceptedDownsell, c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *cancellationRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Cancellation, error) {
	const q = `
SELECT id, user_id, subscription_id, downsell_variant, reason, accepted_downsell, created_at
  FROM cancellations
 WHERE user_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	var c model.Cancellation
	if err := row.Scan(&c.ID, &c.UserID, &c.SubscriptionID, &c.DownsellVariant, &c.Reason, &c.AcceptedDownsell, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &c, nil
}

func (r *cancellationRepo) UpdateOutcome(ctx context.Context, tx repository.Tx, userID, reason string, acceptedDownsell bool) error {
	const q = `
UPDATE cancellations
   SET reason=$2, accepted_downsell=$3
 WHERE user_id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, userID, reason, acceptedDownsell)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
