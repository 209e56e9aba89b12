// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package lib

import (
	"net/netip"

	"grimm.is/mplsd/internal/errors"
	"grimm.is/mplsd/internal/iface"
	"grimm.is/mplsd/internal/kernel"
	"grimm.is/mplsd/internal/label"
)

// CrossConnect is a static label-to-label forwarding entry, independent
// of IP routing. The entry owns its LSP.
type CrossConnect struct {
	InLabel label.Label
	LSP     *kernel.LSP
}

func (e *Engine) findCrossConnect(in label.Label) (*CrossConnect, int) {
	for i, mc := range e.xconns {
		if mc.InLabel == in {
			return mc, i
		}
	}
	return nil, -1
}

// AddCrossConnect creates a crossconnect from an incoming label to an
// outgoing (interface, next-hop, label) treatment. Re-adding an identical
// entry succeeds without driver calls; an entry with the same incoming
// label but different content is replaced. Driver steps that fail unwind
// the steps already done.
func (e *Engine) AddCrossConnect(in label.Label, ifc *iface.Interface, nexthop netip.Addr, out label.Label) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if prev, _ := e.findCrossConnect(in); prev != nil {
		if prev.LSP.Iface == ifc && prev.LSP.Nexthop == nexthop && prev.LSP.OutLabel == out {
			return nil
		}
		e.removeCrossConnect(in)
	}

	mc := &CrossConnect{
		InLabel: in,
		LSP:     &kernel.LSP{Nexthop: nexthop, OutLabel: out, Iface: ifc},
	}
	e.xconns = append(e.xconns, mc)

	if err := e.drv.NHLFEInstall(mc.LSP); err != nil {
		e.driverFailures.Add(1)
		return errors.Wrapf(err, errors.KindUnavailable, "crossconnect %s: NHLFE install", in)
	}

	if err := e.drv.ILMInstall(in); err != nil {
		e.driverFailures.Add(1)
		e.nhlfeRemove(mc.LSP)
		return errors.Wrapf(err, errors.KindUnavailable, "crossconnect %s: ILM install", in)
	}

	if err := e.drv.XCInstall(in, mc.LSP); err != nil {
		e.driverFailures.Add(1)
		e.ilmRemove(in)
		e.nhlfeRemove(mc.LSP)
		return errors.Wrapf(err, errors.KindUnavailable, "crossconnect %s: XC install", in)
	}

	return nil
}

// RemoveCrossConnect deletes the crossconnect with the given incoming
// label. Driver failures are logged but never leave the entry behind:
// the in-memory state follows the intent to remove.
func (e *Engine) RemoveCrossConnect(in label.Label) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.removeCrossConnect(in)
}

func (e *Engine) removeCrossConnect(in label.Label) error {
	mc, i := e.findCrossConnect(in)
	if mc == nil {
		return errors.Errorf(errors.KindNotFound, "no crossconnect for label %s", in)
	}

	e.xcRemove(mc.InLabel, mc.LSP)
	e.ilmRemove(mc.InLabel)
	e.nhlfeRemove(mc.LSP)

	e.xconns = append(e.xconns[:i], e.xconns[i+1:]...)
	return nil
}
