// AngelaMos | 2026
// service_test.go

package listing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/middleware"
)

func seller(id, tier string) *middleware.Session {
	return &middleware.Session{UserID: id, Role: core.RoleUser, Tier: tier}
}

func images(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("https://cdn.example.com/%d.jpg", i)
	}
	return out
}

func TestCreateEnforcesTierImageLimit(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	req := CreateListingRequest{Title: "Bike", Price: 100, Category: "sports", Images: images(4)}

	_, err := svc.Create(ctx, seller("s1", core.TierFree), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	l, err := svc.Create(ctx, seller("s1", core.TierBasic), req)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, l.Status)
	assert.Equal(t, core.TierBasic, l.Tier)
	assert.Equal(t, core.TierRank(core.TierBasic), l.TierRank)
	assert.Equal(t, "used", l.Condition)
	assert.Len(t, l.Images, 4)
}

func TestGetVisibility(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	repo.put(Listing{ID: "l1", SellerID: "s1", Status: StatusPending})

	_, err := svc.Get(ctx, nil, "l1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.Get(ctx, seller("other", core.TierFree), "l1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	got, err := svc.Get(ctx, seller("s1", core.TierFree), "l1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.ViewCount)

	admin := &middleware.Session{UserID: "a", Role: core.RoleAdmin}
	_, err = svc.Get(ctx, admin, "l1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.snapshot("l1").ViewCount)
}

func TestUpdateApprovedReturnsToModeration(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	repo.put(Listing{ID: "l1", SellerID: "s1", Title: "Old", Status: StatusApproved})

	title := "New title"
	_, err := svc.Update(ctx, seller("s2", core.TierFree), "l1", UpdateListingRequest{Title: &title})
	assert.ErrorIs(t, err, core.ErrForbidden)

	l, err := svc.Update(ctx, seller("s1", core.TierFree), "l1", UpdateListingRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New title", l.Title)
	assert.Equal(t, StatusPending, repo.snapshot("l1").Status)
}

func TestOwnerTransitions(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	repo.put(Listing{ID: "l1", SellerID: "s1", Status: StatusPending})

	_, err := svc.MarkSold(ctx, "s1", "l1")
	assert.ErrorIs(t, err, core.ErrConflict)

	require.NoError(t, repo.SetStatus(ctx, "l1", StatusApproved, ""))

	l, err := svc.Hide(ctx, "s1", "l1")
	require.NoError(t, err)
	assert.Equal(t, StatusHidden, l.Status)

	l, err = svc.Unhide(ctx, "s1", "l1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, l.Status)

	_, err = svc.Hide(ctx, "intruder", "l1")
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestFeedOrdersByTierThenRecency(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	add := func(id, tier string, minutes int) {
		repo.put(Listing{
			ID:       id,
			SellerID: "s",
			Status:   StatusApproved,
			Tier:     tier,
			TierRank: core.TierRank(tier),
			BumpedAt: base.Add(time.Duration(minutes) * time.Minute),
		})
	}
	add("free-new", core.TierFree, 50)
	add("free-old", core.TierFree, 10)
	add("basic", core.TierBasic, 5)
	add("pro-old", core.TierPro, 1)
	add("pro-new", core.TierPro, 2)
	repo.put(Listing{ID: "hidden", Status: StatusHidden, TierRank: 2, BumpedAt: base})

	var seen []string
	cursor := ""
	for range 10 {
		items, next, err := svc.Feed(ctx, FeedFilter{}, cursor, 2)
		require.NoError(t, err)
		for _, l := range items {
			seen = append(seen, l.ID)
		}
		if next == "" {
			break
		}
		cursor = next
	}

	assert.Equal(t, []string{"pro-new", "pro-old", "basic", "free-new", "free-old"}, seen)
}

func TestFeedRejectsBadInput(t *testing.T) {
	svc := newTestService(newMemRepo(), nil)
	ctx := context.Background()

	_, _, err := svc.Feed(ctx, FeedFilter{}, "not-a-cursor!", 10)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	lo, hi := int64(10), int64(5)
	_, _, err = svc.Feed(ctx, FeedFilter{MinPrice: &lo, MaxPrice: &hi}, "", 10)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestPushChargesAndBumps(t *testing.T) {
	repo := newMemRepo()
	charger := &fakeCharger{balances: map[string]int64{"s1": 15_000, "s2": 100}}
	svc := newTestService(repo, charger)
	ctx := context.Background()

	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.put(Listing{ID: "l1", SellerID: "s1", Status: StatusApproved, BumpedAt: old})
	repo.put(Listing{ID: "l2", SellerID: "s2", Status: StatusApproved, BumpedAt: old})
	repo.put(Listing{ID: "l3", SellerID: "s1", Status: StatusPending, BumpedAt: old})

	resp, err := svc.Push(ctx, seller("s1", core.TierPro), "l1")
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), resp.Charged)
	assert.Equal(t, "tx-l1", resp.TransactionID)
	assert.Equal(t, int64(5_000), charger.balances["s1"])

	pushed := repo.snapshot("l1")
	assert.True(t, pushed.BumpedAt.After(old))
	assert.Equal(t, core.TierRank(core.TierPro), pushed.TierRank)

	_, err = svc.Push(ctx, seller("s2", core.TierFree), "l2")
	assert.ErrorIs(t, err, core.ErrInsufficientFunds)
	assert.True(t, repo.snapshot("l2").BumpedAt.Equal(old))

	_, err = svc.Push(ctx, seller("s1", core.TierFree), "l3")
	assert.ErrorIs(t, err, core.ErrConflict)

	_, err = svc.Push(ctx, seller("s2", core.TierFree), "l1")
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.Len(t, charger.charges, 1)
}

func TestTierRankOnlyMovesOnPush(t *testing.T) {
	repo := newMemRepo()
	charger := &fakeCharger{balances: map[string]int64{"s1": 50_000}}
	svc := newTestService(repo, charger)
	ctx := context.Background()

	repo.put(Listing{
		ID:       "l1",
		SellerID: "s1",
		Status:   StatusApproved,
		Tier:     core.TierPro,
		TierRank: core.TierRank(core.TierPro),
	})

	// subscription lapsed: the session now carries the free tier
	title := "Still a pro listing"
	_, err := svc.Update(ctx, seller("s1", core.TierFree), "l1", UpdateListingRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, core.TierRank(core.TierPro), repo.snapshot("l1").TierRank)

	require.NoError(t, repo.SetStatus(ctx, "l1", StatusApproved, ""))
	_, err = svc.Push(ctx, seller("s1", core.TierFree), "l1")
	require.NoError(t, err)
	assert.Equal(t, core.TierRank(core.TierFree), repo.snapshot("l1").TierRank)
	assert.Equal(t, core.TierFree, repo.snapshot("l1").Tier)
}

func TestModerationRejectsWithReason(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	repo.put(Listing{ID: "l1", SellerID: "s1", Status: StatusPending})

	l, err := svc.Reject(ctx, "l1", "blurry photos")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, l.Status)
	assert.Equal(t, "blurry photos", repo.snapshot("l1").RejectReason)

	l, err = svc.Approve(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, l.Status)

	_, err = svc.Approve(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStringListScan(t *testing.T) {
	var s StringList
	require.NoError(t, s.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringList{"a", "b"}, s)

	require.NoError(t, s.Scan(nil))
	assert.Empty(t, s)

	assert.Error(t, s.Scan(42))

	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}
