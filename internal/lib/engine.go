// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package lib

import (
	"net/netip"
	"sync"
	"sync/atomic"

	"github.com/gaissmai/bart"

	"grimm.is/mplsd/internal/iface"
	"grimm.is/mplsd/internal/kernel"
	"grimm.is/mplsd/internal/label"
	"grimm.is/mplsd/internal/logging"
)

// RIB is the routing-table contract the engine consumes. The RIB owns
// next-hop selection; the engine only reads it.
type RIB interface {
	// Active reports whether an installed route exists for the prefix.
	Active(pfx netip.Prefix) bool

	// Nexthop returns the IPv4 gateway of the active route; ok is false
	// when there is no route or the route has no gateway next-hop.
	Nexthop(pfx netip.Prefix) (netip.Addr, bool)

	// Reevaluate asks the RIB to re-derive the forwarding entry so an
	// updated FTN is programmed.
	Reevaluate(pfx netip.Prefix)
}

// Engine is the label-binding reconciliation engine. Every mutator and
// hook runs to completion under one lock, except RemoveAllStatic, which
// takes the lock once per step it composes; driver calls are leaves and
// never re-enter.
type Engine struct {
	mu     sync.Mutex
	logger *logging.Logger
	drv    kernel.Driver
	rib    RIB
	ifaces *iface.Table
	bus    *Bus

	enabled  bool
	bindings bart.Table[*Bindings]
	xconns   []*CrossConnect

	driverFailures atomic.Uint64
}

// New creates an engine. MPLS starts disabled; the caller wires the RIB
// hooks to RouteInstalled/RouteUninstalled.
func New(logger *logging.Logger, drv kernel.Driver, r RIB, ifaces *iface.Table, bus *Bus) *Engine {
	return &Engine{
		logger: logger,
		drv:    drv,
		rib:    r,
		ifaces: ifaces,
		bus:    bus,
	}
}

// Enabled reports the global MPLS forwarding flag.
func (e *Engine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// SetEnabled turns MPLS forwarding on or off globally, setting the label
// space of every MPLS-marked interface. Idempotent.
func (e *Engine) SetEnabled(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.enabled == on {
		return
	}

	ls := 0
	if !on {
		ls = -1
	}
	for _, ifc := range e.ifaces.All() {
		if !ifc.MPLS {
			continue
		}
		if err := e.drv.SetInterfaceLabelspace(ifc, ls); err != nil {
			e.driverFailures.Add(1)
			e.logger.Warn("Labelspace update failed", "interface", ifc.Name, "error", err)
		}
	}

	e.enabled = on
}

// DriverFailures returns the count of failed driver calls.
func (e *Engine) DriverFailures() uint64 { return e.driverFailures.Load() }

// get returns the bindings record for pfx, creating it on first use. The
// record persists for the life of the engine.
func (e *Engine) get(pfx netip.Prefix) (netip.Prefix, *Bindings) {
	pfx = pfx.Masked()
	if b, ok := e.bindings.Get(pfx); ok {
		return pfx, b
	}
	b := newBindings()
	e.bindings.Insert(pfx, b)
	return pfx, b
}

// lookup returns the bindings record without creating one.
func (e *Engine) lookup(pfx netip.Prefix) (netip.Prefix, *Bindings, bool) {
	pfx = pfx.Masked()
	b, ok := e.bindings.Get(pfx)
	return pfx, b, ok
}

// Driver wrappers: log and count failures, never abort the operation.

func (e *Engine) ilmInstall(l label.Label) bool {
	if err := e.drv.ILMInstall(l); err != nil {
		e.driverFailures.Add(1)
		e.logger.Warn("ILM install failed", "label", l, "error", err)
		return false
	}
	return true
}

func (e *Engine) ilmRemove(l label.Label) {
	if err := e.drv.ILMRemove(l); err != nil {
		e.driverFailures.Add(1)
		e.logger.Warn("ILM remove failed", "label", l, "error", err)
	}
}

func (e *Engine) nhlfeInstall(lsp *kernel.LSP) bool {
	if err := e.drv.NHLFEInstall(lsp); err != nil {
		e.driverFailures.Add(1)
		e.logger.Warn("NHLFE install failed", "nexthop", lsp.Nexthop, "label", lsp.OutLabel, "error", err)
		return false
	}
	return true
}

func (e *Engine) nhlfeRemove(lsp *kernel.LSP) {
	if err := e.drv.NHLFERemove(lsp); err != nil {
		e.driverFailures.Add(1)
		e.logger.Warn("NHLFE remove failed", "nexthop", lsp.Nexthop, "label", lsp.OutLabel, "error", err)
	}
}

func (e *Engine) xcInstall(in label.Label, lsp *kernel.LSP) bool {
	if err := e.drv.XCInstall(in, lsp); err != nil {
		e.driverFailures.Add(1)
		e.logger.Warn("XC install failed", "in", in, "out", lsp.OutLabel, "error", err)
		return false
	}
	return true
}

func (e *Engine) xcRemove(in label.Label, lsp *kernel.LSP) {
	if err := e.drv.XCRemove(in, lsp); err != nil {
		e.driverFailures.Add(1)
		e.logger.Warn("XC remove failed", "in", in, "out", lsp.OutLabel, "error", err)
	}
}

// SetStaticInLabel sets the static incoming label for a prefix. The
// static label shadows any protocol-learned one.
func (e *Engine) SetStaticInLabel(pfx netip.Prefix, l label.Label) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pfx, b := e.get(pfx)

	if b.staticIn.Is(l) {
		return
	}

	active := e.rib.Active(pfx)

	// Uninstall previous ILM/XC entries if any are programmed.
	if cur, ok := b.selectedIn.Get(); ok && active {
		if sel := b.SelectedLSP(); sel != nil {
			e.xcRemove(cur, sel)
		}
		e.ilmRemove(cur)
	}

	b.staticIn = label.Some(l)
	b.selectedIn = label.Some(l)

	if !active {
		return
	}

	e.ilmInstall(l)
	if sel := b.SelectedLSP(); sel != nil {
		e.xcInstall(l, sel)
	}

	// The dynamic protocol should advertise the static local binding.
	e.bus.broadcast(pfx, b.selectedIn)
}

// ClearStaticInLabel removes the static incoming label. When match is
// present it must equal the configured label or the call is a no-op.
// Clearing promotes the protocol-learned label, if any.
func (e *Engine) ClearStaticInLabel(pfx netip.Prefix, match label.Optional) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pfx, b := e.get(pfx)

	cur, ok := b.staticIn.Get()
	if !ok {
		return
	}
	if m, set := match.Get(); set && cur != m {
		return
	}

	active := e.rib.Active(pfx)

	if active {
		if sel := b.SelectedLSP(); sel != nil {
			e.xcRemove(b.selectedIn.Value(), sel)
		}
		e.ilmRemove(b.selectedIn.Value())
	}

	b.staticIn = label.None()
	b.selectedIn = b.dynamicIn

	if next, ok := b.selectedIn.Get(); ok && active {
		e.ilmInstall(next)
		if sel := b.SelectedLSP(); sel != nil {
			e.xcInstall(next, sel)
		}
	}

	if active {
		e.bus.broadcast(pfx, b.selectedIn)
	}
}

// SetDynamicInLabel records the protocol-learned incoming label; absent
// means withdrawn. The most recent value is remembered even while a
// static label shadows it. No broadcast: the protocol already knows.
func (e *Engine) SetDynamicInLabel(pfx netip.Prefix, l label.Optional) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pfx, b := e.get(pfx)

	b.dynamicIn = l

	if b.staticIn.Present() {
		return
	}
	if l.Present() && l.Equal(b.selectedIn) {
		return
	}

	if !e.rib.Active(pfx) {
		b.selectedIn = b.dynamicIn
		return
	}

	if cur, ok := b.selectedIn.Get(); ok {
		if sel := b.SelectedLSP(); sel != nil {
			e.xcRemove(cur, sel)
		}
		e.ilmRemove(cur)
		b.selectedIn = label.None()
	}

	if next, ok := l.Get(); ok {
		b.selectedIn = b.dynamicIn
		e.ilmInstall(next)
		if sel := b.SelectedLSP(); sel != nil {
			e.xcInstall(next, sel)
		}
	}
}

// AddStaticLSP adds an outgoing static LSP. One outgoing label per
// prefix/next-hop pair: a differing label replaces the previous LSP.
func (e *Engine) AddStaticLSP(pfx netip.Prefix, nexthop netip.Addr, out label.Label) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pfx, b := e.get(pfx)

	if prev, _ := b.staticByNexthop(nexthop); prev != nil {
		if prev.OutLabel == out {
			return
		}
		e.removeStaticLSP(pfx, b, nexthop)
	}

	b.staticLSPs = append(b.staticLSPs, &kernel.LSP{Nexthop: nexthop, OutLabel: out})

	if e.rib.Active(pfx) {
		e.selectLSP(pfx, b)
	}
}

// RemoveStaticLSP removes the static LSP identified by next-hop.
func (e *Engine) RemoveStaticLSP(pfx netip.Prefix, nexthop netip.Addr) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pfx, b := e.get(pfx)
	e.removeStaticLSP(pfx, b, nexthop)
}

func (e *Engine) removeStaticLSP(pfx netip.Prefix, b *Bindings, nexthop netip.Addr) {
	lsp, i := b.staticByNexthop(nexthop)
	if lsp == nil {
		return
	}

	e.uninstallLSP(pfx, b, lsp)
	b.staticLSPs = append(b.staticLSPs[:i], b.staticLSPs[i+1:]...)

	if e.rib.Active(pfx) {
		e.selectLSP(pfx, b)
	}
}

// RemoveAllStatic removes the static incoming label and every static LSP
// of the prefix. Each removal is a separately locked call, so other
// operations may run between them.
func (e *Engine) RemoveAllStatic(pfx netip.Prefix) {
	e.mu.Lock()
	nexthops := []netip.Addr{}
	if _, b, ok := e.lookup(pfx); ok {
		for _, lsp := range b.staticLSPs {
			nexthops = append(nexthops, lsp.Nexthop)
		}
	}
	e.mu.Unlock()

	e.ClearStaticInLabel(pfx, label.None())
	for _, nh := range nexthops {
		e.RemoveStaticLSP(pfx, nh)
	}
}

// SetDynamicLSP sets the protocol-learned outgoing LSP. Idempotent on
// (next-hop, label); otherwise the previous dynamic LSP is replaced.
func (e *Engine) SetDynamicLSP(pfx netip.Prefix, nexthop netip.Addr, out label.Label) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pfx, b := e.get(pfx)

	if b.dynamicLSP != nil && b.dynamicLSP.Nexthop == nexthop && b.dynamicLSP.OutLabel == out {
		return
	}

	if b.dynamicLSP != nil {
		e.uninstallLSP(pfx, b, b.dynamicLSP)
	}
	b.dynamicLSP = &kernel.LSP{Nexthop: nexthop, OutLabel: out}

	if e.rib.Active(pfx) {
		e.selectLSP(pfx, b)
	}
}

// ClearDynamicLSP withdraws the protocol-learned LSP. Both fields must
// match the stored record.
func (e *Engine) ClearDynamicLSP(pfx netip.Prefix, nexthop netip.Addr, out label.Label) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pfx, b := e.get(pfx)

	if b.dynamicLSP == nil {
		return
	}
	if b.dynamicLSP.Nexthop != nexthop || b.dynamicLSP.OutLabel != out {
		return
	}

	e.uninstallLSP(pfx, b, b.dynamicLSP)
	b.dynamicLSP = nil

	if e.rib.Active(pfx) {
		e.selectLSP(pfx, b)
	}
}

// RouteInstalled is the RIB hook fired after a route for pfx is
// installed. Prefixes without bindings are ignored.
func (e *Engine) RouteInstalled(pfx netip.Prefix) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pfx, b, ok := e.lookup(pfx)
	if !ok {
		return
	}

	if in, set := b.selectedIn.Get(); set {
		e.ilmInstall(in)
	}

	e.selectLSP(pfx, b)
}

// RouteUninstalled is the RIB hook fired while the route for pfx is
// being withdrawn (the RIB still answers queries for it). Bindings are
// retained for the next install.
func (e *Engine) RouteUninstalled(pfx netip.Prefix) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pfx, b, ok := e.lookup(pfx)
	if !ok {
		return
	}

	if sel := b.SelectedLSP(); sel != nil {
		e.uninstallLSP(pfx, b, sel)
	}

	if in, set := b.selectedIn.Get(); set {
		e.ilmRemove(in)
	}
}

// selectLSP chooses the LSP whose next-hop matches the active route and
// reconciles the forwarding plane with the choice. The dynamic LSP wins
// over static on tie.
func (e *Engine) selectLSP(pfx netip.Prefix, b *Bindings) {
	nexthop, ok := e.rib.Nexthop(pfx)
	if !ok {
		e.logger.Warn("Could not determine the next hop of route", "prefix", pfx)
		return
	}

	var selected *kernel.LSP
	src := srcNone

	if b.dynamicLSP != nil && b.dynamicLSP.Nexthop == nexthop {
		selected = b.dynamicLSP
		src = srcDynamic
	} else if lsp, _ := b.staticByNexthop(nexthop); lsp != nil {
		selected = lsp
		src = srcStatic
	}

	cur := b.SelectedLSP()
	if cur != nil && cur == selected {
		return
	}

	if cur != nil {
		e.uninstallLSP(pfx, b, cur)
	}

	b.setSelected(src, selected)
	if selected == nil {
		return
	}

	if !e.nhlfeInstall(selected) {
		// The selection stays recorded without an NHLFE. It is installed
		// again only once an event clears or changes the selection, such
		// as a route withdrawal followed by a re-install.
		return
	}

	if in, set := b.selectedIn.Get(); set {
		e.xcInstall(in, selected)
	}

	// Have the RIB re-derive the forwarding entry so an FTN is programmed.
	e.rib.Reevaluate(pfx)
}

// uninstallLSP withdraws lsp from the forwarding plane if it is the
// current selection; otherwise it is a no-op.
func (e *Engine) uninstallLSP(pfx netip.Prefix, b *Bindings, lsp *kernel.LSP) {
	if b.SelectedLSP() != lsp {
		return
	}

	b.clearSelected()

	if !e.rib.Active(pfx) {
		return
	}

	if in, set := b.selectedIn.Get(); set {
		e.xcRemove(in, lsp)
	}
	e.nhlfeRemove(lsp)
}

// Close tears down all programmed state: interface label spaces,
// crossconnects, and every active prefix binding, then closes the driver.
func (e *Engine) Close() error {
	e.mu.Lock()

	if e.enabled {
		for _, ifc := range e.ifaces.All() {
			if !ifc.MPLS {
				continue
			}
			if err := e.drv.SetInterfaceLabelspace(ifc, -1); err != nil {
				e.driverFailures.Add(1)
				e.logger.Warn("Labelspace disable failed", "interface", ifc.Name, "error", err)
			}
		}
		e.enabled = false
	}

	for len(e.xconns) > 0 {
		e.removeCrossConnect(e.xconns[0].InLabel)
	}

	type active struct {
		pfx netip.Prefix
		b   *Bindings
	}
	var down []active
	for pfx, b := range e.bindings.AllSorted4() {
		if e.rib.Active(pfx) {
			down = append(down, active{pfx, b})
		}
	}
	for _, a := range down {
		if sel := a.b.SelectedLSP(); sel != nil {
			e.uninstallLSP(a.pfx, a.b, sel)
		}
		if in, set := a.b.selectedIn.Get(); set {
			e.ilmRemove(in)
		}
	}

	e.mu.Unlock()
	return e.drv.Close()
}
