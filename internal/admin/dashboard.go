// AngelaMos | 2026
// dashboard.go

package admin

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Counters are the marketplace totals behind the dashboard. A nil
// counter reports zero.
type Counters struct {
	Users           func(ctx context.Context) (int, error)
	ListingsByState func(ctx context.Context) (map[string]int, error)
	PendingTx       func(ctx context.Context) (int, error)
	PendingKYC      func(ctx context.Context) (int, error)
	Reports         func(ctx context.Context) (int, error)
}

type Dashboard struct {
	Users               int            `json:"users"`
	Listings            map[string]int `json:"listings"`
	PendingTransactions int            `json:"pending_transactions"`
	PendingKYC          int            `json:"pending_kyc"`
	Reports             int            `json:"reports"`
}

// collect runs every counter concurrently. One failure fails the whole
// dashboard so moderators never act on partial numbers.
func (c Counters) collect(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{}
	g, ctx := errgroup.WithContext(ctx)

	for _, job := range []struct {
		fn  func(context.Context) (int, error)
		dst *int
	}{
		{c.Users, &d.Users},
		{c.PendingTx, &d.PendingTransactions},
		{c.PendingKYC, &d.PendingKYC},
		{c.Reports, &d.Reports},
	} {
		if job.fn == nil {
			continue
		}
		g.Go(func() (err error) {
			*job.dst, err = job.fn(ctx)
			return err
		})
	}

	if c.ListingsByState != nil {
		g.Go(func() (err error) {
			d.Listings, err = c.ListingsByState(ctx)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if d.Listings == nil {
		d.Listings = map[string]int{}
	}
	return d, nil
}
