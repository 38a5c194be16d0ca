// AngelaMos | 2026
// guard.go

package screenshot

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/carterperez-dev/classifieds/internal/core"
)

var errBlockedAddress = errors.New("address not reachable from screenshot service")

type lookupFunc func(ctx context.Context, host string) ([]netip.Addr, error)

// Guard keeps the headless browser off loopback, private and
// link-local networks. Every address a host resolves to must be public.
type Guard struct {
	lookup lookupFunc
}

func NewGuard() *Guard {
	return &Guard{
		lookup: func(ctx context.Context, host string) ([]netip.Addr, error) {
			return net.DefaultResolver.LookupNetIP(ctx, "ip", host)
		},
	}
}

// Check resolves host and fails with core.ErrInvalidInput when any
// resulting address is internal.
func (g *Guard) Check(ctx context.Context, host string) error {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" {
		return fmt.Errorf("empty host: %w", core.ErrInvalidInput)
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return fmt.Errorf("%s: %w: %w", host, errBlockedAddress, core.ErrInvalidInput)
	}

	var addrs []netip.Addr
	if ip, err := netip.ParseAddr(strings.Trim(host, "[]")); err == nil {
		addrs = []netip.Addr{ip}
	} else {
		addrs, err = g.lookup(ctx, host)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", host, core.ErrInvalidInput)
		}
	}
	if len(addrs) == 0 {
		return fmt.Errorf("resolve %s: no addresses: %w", host, core.ErrInvalidInput)
	}

	for _, a := range addrs {
		if internal(a) {
			return fmt.Errorf("%s resolves to %s: %w: %w",
				host, a, errBlockedAddress, core.ErrInvalidInput)
		}
	}
	return nil
}

func internal(a netip.Addr) bool {
	a = a.Unmap()
	return !a.IsValid() ||
		a.IsLoopback() ||
		a.IsPrivate() ||
		a.IsUnspecified() ||
		a.IsLinkLocalUnicast() ||
		a.IsLinkLocalMulticast() ||
		a.IsInterfaceLocalMulticast() ||
		a.IsMulticast()
}
