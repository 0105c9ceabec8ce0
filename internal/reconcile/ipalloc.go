package reconcile

import (
	"errors"
	"fmt"
	"net/netip"
)

// ErrIPRangeExhausted means the configured address range ran out before
// every node received an address. This aborts the whole configuration run:
// a partially addressed cluster is worse than an unchanged one.
var ErrIPRangeExhausted = errors.New("no more addresses available in the configured ip range")

// ipAllocator hands out consecutive addresses from a closed range. The
// cursor only ever advances; addresses are never reclaimed within a run,
// even when the configuration call that consumed one fails.
type ipAllocator struct {
	next netip.Addr
	end  netip.Addr
	done bool
}

func newIPAllocator(start, end string) (*ipAllocator, error) {
	startAddr, err := netip.ParseAddr(start)
	if err != nil {
		return nil, fmt.Errorf("invalid ip range start %q: %w", start, err)
	}
	endAddr, err := netip.ParseAddr(end)
	if err != nil {
		return nil, fmt.Errorf("invalid ip range end %q: %w", end, err)
	}
	if endAddr.Less(startAddr) {
		return nil, fmt.Errorf("ip range end %s precedes start %s", endAddr, startAddr)
	}
	return &ipAllocator{next: startAddr, end: endAddr}, nil
}

// Next returns the next unused address, advancing the cursor.
func (a *ipAllocator) Next() (netip.Addr, error) {
	if a.done || a.end.Less(a.next) {
		return netip.Addr{}, ErrIPRangeExhausted
	}
	addr := a.next
	if addr == a.end {
		a.done = true
	} else {
		a.next = a.next.Next()
	}
	return addr, nil
}
