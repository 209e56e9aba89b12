// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux
// +build linux

package rib

import (
	"context"
	"net/netip"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"grimm.is/mplsd/internal/errors"
	"grimm.is/mplsd/internal/logging"
)

func routeFromNetlink(nlr *netlink.Route) (*Route, bool) {
	var pfx netip.Prefix
	switch {
	case nlr.Dst == nil:
		// The kernel reports the default route with a nil destination.
		pfx = netip.PrefixFrom(netip.IPv4Unspecified(), 0)
	case nlr.Dst.IP.To4() != nil:
		ip, _ := netip.AddrFromSlice(nlr.Dst.IP.To4())
		ones, _ := nlr.Dst.Mask.Size()
		pfx = netip.PrefixFrom(ip, ones)
	default:
		return nil, false
	}

	r := &Route{Prefix: pfx}
	if gw := nlr.Gw; gw != nil && gw.To4() != nil {
		r.Nexthop, _ = netip.AddrFromSlice(gw.To4())
	}
	return r, true
}

// Seed loads the current IPv4 unicast routes from the kernel main table.
func Seed(t *Table) error {
	filter := &netlink.Route{Table: unix.RT_TABLE_MAIN}
	routes, err := netlink.RouteListFiltered(netlink.FAMILY_V4, filter, netlink.RT_FILTER_TABLE)
	if err != nil {
		return errors.Wrap(err, errors.KindUnavailable, "listing routes")
	}

	for i := range routes {
		if r, ok := routeFromNetlink(&routes[i]); ok {
			t.Install(r)
		}
	}
	return nil
}

// Follow subscribes to kernel route updates and applies them to the table
// until ctx is done.
func Follow(ctx context.Context, t *Table, logger *logging.Logger) error {
	updates := make(chan netlink.RouteUpdate, 64)
	done := make(chan struct{})

	if err := netlink.RouteSubscribe(updates, done); err != nil {
		return errors.Wrap(err, errors.KindUnavailable, "subscribing to route updates")
	}

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-updates:
				if !ok {
					return
				}
				r, valid := routeFromNetlink(&u.Route)
				if !valid {
					continue
				}
				switch u.Type {
				case unix.RTM_NEWROUTE:
					t.Install(r)
				case unix.RTM_DELROUTE:
					t.Uninstall(r.Prefix)
				default:
					logger.Debug("Ignoring route update", "type", u.Type)
				}
			}
		}
	}()

	return nil
}
