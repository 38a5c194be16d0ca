// AngelaMos | 2026
// fake_test.go

package wallet

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/notification"
	"github.com/carterperez-dev/classifieds/internal/settings"
)

// memStore backs fakeRepo. txLock serializes InTx the way row locks
// serialize concurrent approvals in Postgres.
type memStore struct {
	txLock   sync.Mutex
	mu       sync.Mutex
	txs      map[string]*Transaction
	accounts map[string]*Account
	order    []string
}

func newMemStore() *memStore {
	return &memStore{
		txs:      make(map[string]*Transaction),
		accounts: make(map[string]*Account),
	}
}

func (m *memStore) InTx(_ context.Context, fn func(core.DBTX) error) error {
	m.txLock.Lock()
	defer m.txLock.Unlock()
	return fn(nil)
}

func (m *memStore) addAccount(id string, balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[id] = &Account{UserID: id, Balance: balance, Tier: core.TierFree}
}

func (m *memStore) account(id string) Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.accounts[id]
}

func (m *memStore) tx(id string) Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.txs[id]
}

type fakeRepo struct {
	s *memStore
}

func (r fakeRepo) Create(_ context.Context, t *Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[t.UserID]; !ok {
		return fmt.Errorf("create transaction: %w", ErrUserNotFound)
	}
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	cp := *t
	r.s.txs[t.ID] = &cp
	r.s.order = append(r.s.order, t.ID)
	return nil
}

func (r fakeRepo) Get(_ context.Context, id string) (*Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.txs[id]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	cp := *t
	return &cp, nil
}

func (r fakeRepo) GetForUpdate(ctx context.Context, id string) (*Transaction, error) {
	return r.Get(ctx, id)
}

func (r fakeRepo) MarkProcessed(
	_ context.Context,
	id, status, adminID, note string,
	at time.Time,
) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.txs[id]
	if !ok || t.Status != StatusPending {
		return ErrAlreadyProcessed
	}
	t.Status = status
	t.Note = note
	t.ProcessedBy = &adminID
	t.ProcessedAt = &at
	return nil
}

func (r fakeRepo) Account(_ context.Context, userID string) (*Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *a
	return &cp, nil
}

func (r fakeRepo) AccountForUpdate(ctx context.Context, userID string) (*Account, error) {
	return r.Account(ctx, userID)
}

func (r fakeRepo) Credit(_ context.Context, userID string, amount int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[userID]
	if !ok {
		return ErrUserNotFound
	}
	a.Balance += amount
	return nil
}

func (r fakeRepo) Debit(_ context.Context, userID string, amount int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[userID]
	if !ok || a.Balance < amount {
		return fmt.Errorf("debit wallet: %w", core.ErrInsufficientFunds)
	}
	a.Balance -= amount
	return nil
}

func (r fakeRepo) SetSubscription(
	_ context.Context,
	userID, tier string,
	expiresAt *time.Time,
) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[userID]
	if !ok {
		return ErrUserNotFound
	}
	a.Tier = tier
	a.SubscriptionExpiresAt = expiresAt
	return nil
}

func (r fakeRepo) List(_ context.Context, params ListParams) ([]Transaction, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []Transaction
	for _, id := range r.s.order {
		t := r.s.txs[id]
		if params.UserID != "" && t.UserID != params.UserID {
			continue
		}
		if params.Status != "" && t.Status != params.Status {
			continue
		}
		out = append(out, *t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, len(out), nil
}

func (r fakeRepo) CountPending(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, t := range r.s.txs {
		if t.Status == StatusPending {
			n++
		}
	}
	return n, nil
}

type fakePlans struct{}

func (fakePlans) Plan(_ context.Context, tier string) (settings.Plan, error) {
	plan, ok := settings.DefaultPlans().Find(tier)
	if !ok {
		return settings.Plan{}, core.ErrNotFound
	}
	return plan, nil
}

func (fakePlans) BankAccount(_ context.Context) (settings.BankAccount, error) {
	return settings.DefaultBankAccount(), nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification.Input
}

func (n *recordingNotifier) Notify(_ context.Context, in notification.Input) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, in)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(store *memStore, notifier notification.Notifier) *Service {
	repo := fakeRepo{s: store}
	svc := NewService(Deps{
		DB:       store,
		Repo:     repo,
		RepoFor:  func(core.DBTX) Repository { return repo },
		Plans:    fakePlans{},
		Notifier: notifier,
	})
	svc.now = func() time.Time { return fixedNow }
	return svc
}
