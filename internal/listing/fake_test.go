// AngelaMos | 2026
// fake_test.go

package listing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/wallet"
)

type memRepo struct {
	mu       sync.Mutex
	listings map[string]*Listing
	clock    time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{
		listings: make(map[string]*Listing),
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memRepo) InTx(_ context.Context, fn func(core.DBTX) error) error {
	return fn(nil)
}

func (m *memRepo) put(l Listing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings[l.ID] = &l
}

func (m *memRepo) snapshot(id string) Listing {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.listings[id]
}

func (m *memRepo) Create(_ context.Context, l *Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Second)
	l.BumpedAt, l.CreatedAt, l.UpdatedAt = m.clock, m.clock, m.clock
	cp := *l
	m.listings[l.ID] = &cp
	return nil
}

func (m *memRepo) Get(_ context.Context, id string) (*Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memRepo) GetForUpdate(ctx context.Context, id string) (*Listing, error) {
	return m.Get(ctx, id)
}

func (m *memRepo) Update(_ context.Context, l *Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.listings[l.ID]; !ok {
		return core.ErrNotFound
	}
	cp := *l
	m.listings[l.ID] = &cp
	return nil
}

func (m *memRepo) SetStatus(_ context.Context, id, status, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return core.ErrNotFound
	}
	l.Status = status
	l.RejectReason = reason
	return nil
}

func (m *memRepo) Bump(_ context.Context, id, tier string, rank int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return core.ErrNotFound
	}
	l.BumpedAt, l.Tier, l.TierRank = at, tier, rank
	return nil
}

func (m *memRepo) IncrementViews(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.listings[id]; ok {
		l.ViewCount++
	}
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.listings[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.listings, id)
	return nil
}

// Feed mirrors the SQL ordering and keyset predicate.
func (m *memRepo) Feed(
	_ context.Context,
	filter FeedFilter,
	after *core.Cursor,
	limit int,
) ([]Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Listing
	for _, l := range m.listings {
		if l.Status != StatusApproved {
			continue
		}
		if filter.Category != "" && l.Category != filter.Category {
			continue
		}
		if after != nil && !before(*l, *after) {
			continue
		}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		return before(out[j], core.Cursor{Rank: out[i].TierRank, At: out[i].BumpedAt, ID: out[i].ID})
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// before reports whether l sorts after the cursor position in feed order.
func before(l Listing, c core.Cursor) bool {
	if l.TierRank != c.Rank {
		return l.TierRank < c.Rank
	}
	if !l.BumpedAt.Equal(c.At) {
		return l.BumpedAt.Before(c.At)
	}
	return l.ID < c.ID
}

func (m *memRepo) ListBySeller(
	_ context.Context,
	sellerID, status string,
	_ core.PageParams,
) ([]Listing, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Listing
	for _, l := range m.listings {
		if l.SellerID == sellerID && (status == "" || l.Status == status) {
			out = append(out, *l)
		}
	}
	return out, len(out), nil
}

func (m *memRepo) ListByStatus(
	_ context.Context,
	status string,
	_ core.PageParams,
) ([]Listing, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Listing
	for _, l := range m.listings {
		if status == "" || l.Status == status {
			out = append(out, *l)
		}
	}
	return out, len(out), nil
}

func (m *memRepo) CountByStatus(_ context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{}
	for _, l := range m.listings {
		counts[l.Status]++
	}
	return counts, nil
}

type fixedLimits struct {
	push int64
}

func (f fixedLimits) ImageLimit(_ context.Context, tier string) (int, error) {
	switch tier {
	case core.TierPro:
		return 20, nil
	case core.TierBasic:
		return 8, nil
	default:
		return 3, nil
	}
}

func (f fixedLimits) PushPrice(_ context.Context) (int64, error) {
	return f.push, nil
}

type fakeCharger struct {
	mu       sync.Mutex
	balances map[string]int64
	charges  []string
}

func (c *fakeCharger) ChargeInTx(
	_ context.Context,
	_ core.DBTX,
	userID, txType string,
	amount int64,
	reference string,
) (*wallet.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.balances[userID] < amount {
		return nil, core.ErrInsufficientFunds
	}
	c.balances[userID] -= amount
	c.charges = append(c.charges, reference)
	return &wallet.Transaction{
		ID:     "tx-" + reference,
		UserID: userID,
		Type:   txType,
		Amount: amount,
		Status: wallet.StatusSuccess,
	}, nil
}

func newTestService(repo *memRepo, charger *fakeCharger) *Service {
	svc := NewService(Deps{
		DB:      repo,
		Repo:    repo,
		RepoFor: func(core.DBTX) Repository { return repo },
		Limits:  fixedLimits{push: 10_000},
		Charger: charger,
	})
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}
