package billing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/identity"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mocks
// =============================================================================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Plan), args.Error(1)
}

func (m *MockPlanRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Plan, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Plan), args.Error(1)
}

func (m *MockPlanRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlanRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPlanRepository) Save(ctx context.Context, plan *billing.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByReference(ctx context.Context, reference string) (*billing.Transaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Save(ctx context.Context, txn *billing.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Initialize(ctx context.Context, req billing.CheckoutRequest) (*billing.Checkout, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Checkout), args.Error(1)
}

func (m *MockPaymentGateway) Verify(ctx context.Context, reference string) (*billing.Verification, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Verification), args.Error(1)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

// =============================================================================
// In-memory fakes for balance and ledger behaviour
// =============================================================================

type fakeSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[uuid.UUID]billing.Subscription
	// usage lets UsedUnits sum the ledger like the real repository
	usage *fakeUsageRepo
	// writes counts Save and DeductUnits calls
	writes int
}

func newFakeSubscriptionRepo(usage *fakeUsageRepo) *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[uuid.UUID]billing.Subscription), usage: usage}
}

func (r *fakeSubscriptionRepo) put(sub *billing.Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.ID] = *sub
}

func (r *fakeSubscriptionRepo) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

func (r *fakeSubscriptionRepo) get(id uuid.UUID) billing.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subs[id]
}

func (r *fakeSubscriptionRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok || sub.IsDeleted {
		return nil, billing.ErrSubscriptionNotFound
	}
	return &sub, nil
}

func (r *fakeSubscriptionRepo) FindCurrentByUser(_ context.Context, userID uuid.UUID) (*billing.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.UserID == userID && !sub.IsDeleted {
			return &sub, nil
		}
	}
	return nil, billing.ErrSubscriptionNotFound
}

func (r *fakeSubscriptionRepo) FindAll(_ context.Context, _ shared.Filter) ([]billing.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]billing.Subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		if !sub.IsDeleted {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	all, err := r.FindAll(ctx, filter)
	return int64(len(all)), err
}

func (r *fakeSubscriptionRepo) UsedUnits(_ context.Context, subscriptionID uuid.UUID) (int64, error) {
	if r.usage == nil {
		return 0, nil
	}
	var used int64
	for _, u := range r.usage.all() {
		if u.SubscriptionID == subscriptionID {
			used += u.UnitsUsed
		}
	}
	return used, nil
}

func (r *fakeSubscriptionRepo) Save(_ context.Context, sub *billing.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	if sub.Version <= 1 {
		for _, other := range r.subs {
			if other.UserID == sub.UserID && !other.IsDeleted && other.ID != sub.ID {
				return billing.ErrSubscriptionExists
			}
		}
	}
	r.subs[sub.ID] = *sub
	return nil
}

func (r *fakeSubscriptionRepo) DeductUnits(_ context.Context, id uuid.UUID, units int64) (*billing.Deduction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	sub, ok := r.subs[id]
	if !ok || sub.IsDeleted {
		return nil, billing.ErrSubscriptionNotFound
	}
	d, err := sub.Deduct(units)
	if err != nil {
		return nil, err
	}
	r.subs[id] = sub
	return &d, nil
}

type fakeUsageRepo struct {
	mu        sync.Mutex
	rows      []billing.Usage
	createErr error
	creates   int
}

func (r *fakeUsageRepo) all() []billing.Usage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]billing.Usage, len(r.rows))
	copy(out, r.rows)
	return out
}

func (r *fakeUsageRepo) createCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creates
}

func (r *fakeUsageRepo) Create(_ context.Context, usage *billing.Usage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	r.rows = append(r.rows, *usage)
	return nil
}

func (r *fakeUsageRepo) FindLatestByUser(_ context.Context, userID uuid.UUID) (*billing.Usage, error) {
	rows := r.forUser(&userID)
	if len(rows) == 0 {
		return nil, shared.ErrNotFound
	}
	return &rows[0], nil
}

func (r *fakeUsageRepo) FindAll(_ context.Context, filter billing.UsageFilter) ([]billing.Usage, error) {
	rows := r.forUser(filter.UserID)
	start := min(filter.Offset(), len(rows))
	end := min(start+filter.PageSize, len(rows))
	return rows[start:end], nil
}

func (r *fakeUsageRepo) Count(_ context.Context, filter billing.UsageFilter) (int64, error) {
	return int64(len(r.forUser(filter.UserID))), nil
}

// forUser returns rows newest first
func (r *fakeUsageRepo) forUser(userID *uuid.UUID) []billing.Usage {
	var out []billing.Usage
	for _, u := range r.all() {
		if userID == nil || u.UserID == *userID {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// rollbackScope snapshots the fake subscription store and restores it when fn
// fails, standing in for a database transaction.
type rollbackScope struct {
	*NoOpTransactionScope
	subs *fakeSubscriptionRepo
}

func (s *rollbackScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	s.subs.mu.Lock()
	snapshot := make(map[uuid.UUID]billing.Subscription, len(s.subs.subs))
	for k, v := range s.subs.subs {
		snapshot[k] = v
	}
	s.subs.mu.Unlock()

	if err := s.NoOpTransactionScope.Execute(ctx, fn); err != nil {
		s.subs.mu.Lock()
		s.subs.subs = snapshot
		s.subs.mu.Unlock()
		return err
	}
	return nil
}
