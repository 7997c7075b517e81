// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"subscription-cancellation/internal/domain"
	"subscription-cancellation/internal/domain/model"
	"subscription-cancellation/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memUserRepo is a small in-memory implementation used by unit tests.
type memUserRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.User
	saveErr error // used by tests to simulate save failures
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[string]*model.User)}
}

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.User, 0, len(m.store))
	for _, u := range m.store {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

// memSubRepo provides in-memory subscriptions keyed by user.
type memSubRepo struct {
	mu      sync.RWMutex
	subs    map[string]*model.Subscription // userID -> subscription
	markErr error
}

func newMemSubRepo() *memSubRepo {
	return &memSubRepo{subs: make(map[string]*model.Subscription)}
}

func (m *memSubRepo) Save(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.subs[sub.UserID] = &cp
	return nil
}

func (m *memSubRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sub, ok := m.subs[userID]
	if !ok || sub.Status != model.SubscriptionStatusActive {
		return nil, domain.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (m *memSubRepo) MarkPendingCancellation(ctx context.Context, tx repository.Tx, userID string) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[userID]
	if !ok || sub.Status != model.SubscriptionStatusActive {
		return domain.ErrNoActiveSubscription
	}
	sub.Status = model.SubscriptionStatusPendingCancellation
	return nil
}

// memCancellationRepo keeps at most one record per user, like the unique
// index does in Postgres.
type memCancellationRepo struct {
	mu        sync.RWMutex
	records   map[string]*model.Cancellation // userID -> record
	findErr   error
	insertErr error
	updateErr error

	// InsertHook runs inside Insert before the write, letting tests wedge a
	// competing record in first.
	InsertHook func()
}

func newMemCancellationRepo() *memCancellationRepo {
	return &memCancellationRepo{records: make(map[string]*model.Cancellation)}
}

func (m *memCancellationRepo) Insert(ctx context.Context, tx repository.Tx, c *model.Cancellation) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	if m.InsertHook != nil {
		m.InsertHook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.records[c.UserID]; exists {
		return domain.ErrAlreadyExists
	}
	cp := *c
	m.records[c.UserID] = &cp
	return nil
}

func (m *memCancellationRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Cancellation, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memCancellationRepo) UpdateOutcome(ctx context.Context, tx repository.Tx, userID, reason string, acceptedDownsell bool) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID]
	if !ok {
		return domain.ErrNotFound
	}
	rec.Reason = reason
	rec.AcceptedDownsell = acceptedDownsell
	return nil
}

// noopTxManager runs the function without a real transaction; unit tests
// exercise atomicity through the repos' error hooks instead.
type noopTxManager struct{}

func (noopTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}
