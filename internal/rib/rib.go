// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package rib maintains the view of the IPv4 unicast routing table that
// the MPLS engine consumes: which prefixes have an installed route, the
// active next-hop of each, and install/uninstall notifications.
package rib

import (
	"net/netip"
	"sync"

	"github.com/gaissmai/bart"

	"grimm.is/mplsd/internal/logging"
)

// DistanceInfinity marks a route that must never be used.
const DistanceInfinity = 255

// Route is one installed IPv4 unicast route.
type Route struct {
	Prefix netip.Prefix

	// Nexthop is the IPv4 gateway. It is the zero Addr for routes with
	// no gateway next-hop (connected, blackhole).
	Nexthop netip.Addr

	Distance uint8
}

func (r *Route) usable() bool { return r.Distance < DistanceInfinity }

// Hook is invoked with the prefix of a route that changed state.
type Hook func(pfx netip.Prefix)

// Table is the engine-facing routing table. Hooks fire synchronously on
// the caller's goroutine, outside the table lock, so a hook may query the
// table again.
type Table struct {
	mu     sync.RWMutex
	routes bart.Table[*Route]
	logger *logging.Logger

	installHooks   []Hook
	uninstallHooks []Hook
	reevalHooks    []Hook
}

// New creates an empty table.
func New(logger *logging.Logger) *Table {
	return &Table{logger: logger}
}

// OnInstall registers a hook fired after a route is installed.
func (t *Table) OnInstall(h Hook) { t.installHooks = append(t.installHooks, h) }

// OnUninstall registers a hook fired before a route is removed. The route
// is still queryable while the hook runs.
func (t *Table) OnUninstall(h Hook) { t.uninstallHooks = append(t.uninstallHooks, h) }

// OnReevaluate registers a hook fired when a forwarding entry must be
// re-derived (FTN programming).
func (t *Table) OnReevaluate(h Hook) { t.reevalHooks = append(t.reevalHooks, h) }

// Install records r as the active route for its prefix and fires the
// install hooks.
func (t *Table) Install(r *Route) {
	pfx := r.Prefix.Masked()
	r.Prefix = pfx

	t.mu.Lock()
	t.routes.Insert(pfx, r)
	t.mu.Unlock()

	t.logger.Debug("Route installed", "prefix", pfx, "nexthop", r.Nexthop)
	for _, h := range t.installHooks {
		h(pfx)
	}
}

// Uninstall fires the uninstall hooks and then removes the route. Unknown
// prefixes are ignored.
func (t *Table) Uninstall(pfx netip.Prefix) {
	pfx = pfx.Masked()

	t.mu.RLock()
	_, ok := t.routes.Get(pfx)
	t.mu.RUnlock()
	if !ok {
		return
	}

	for _, h := range t.uninstallHooks {
		h(pfx)
	}

	t.mu.Lock()
	t.routes.Delete(pfx)
	t.mu.Unlock()

	t.logger.Debug("Route uninstalled", "prefix", pfx)
}

// Active reports whether a usable installed route exists for the prefix.
func (t *Table) Active(pfx netip.Prefix) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.routes.Get(pfx.Masked())
	return ok && r.usable()
}

// Nexthop returns the IPv4 gateway of the active route. ok is false when
// no route is installed or the route has no gateway next-hop.
func (t *Table) Nexthop(pfx netip.Prefix) (netip.Addr, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	r, ok := t.routes.Get(pfx.Masked())
	if !ok || !r.usable() || !r.Nexthop.IsValid() {
		return netip.Addr{}, false
	}
	return r.Nexthop, true
}

// Reevaluate asks the routing side to re-derive the forwarding entry for
// the prefix so an updated FTN is programmed.
func (t *Table) Reevaluate(pfx netip.Prefix) {
	pfx = pfx.Masked()
	for _, h := range t.reevalHooks {
		h(pfx)
	}
}
