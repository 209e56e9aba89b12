// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package lib

import (
	"net/netip"

	"grimm.is/mplsd/internal/label"
)

// ForwardingEntry is one row of the label forwarding view.
type ForwardingEntry struct {
	InLabel  label.Label  `json:"in_label"`
	Prefix   netip.Prefix `json:"prefix"`
	HasLSP   bool         `json:"has_lsp"`
	OutLabel label.Label  `json:"out_label,omitempty"`
	Pop      bool         `json:"pop,omitempty"`
	OutIface string       `json:"out_interface,omitempty"`
	Nexthop  netip.Addr   `json:"nexthop,omitempty"`
}

// ForwardingTable snapshots the label forwarding state: every prefix with
// an active route and a programmed incoming label, Implicit Null excluded.
func (e *Engine) ForwardingTable() []ForwardingEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []ForwardingEntry
	for pfx, b := range e.bindings.AllSorted4() {
		if !e.rib.Active(pfx) {
			continue
		}
		in, set := b.selectedIn.Get()
		if !set || in.IsImplicitNull() {
			continue
		}

		entry := ForwardingEntry{InLabel: in, Prefix: pfx}
		if sel := b.SelectedLSP(); sel != nil {
			entry.HasLSP = true
			entry.Nexthop = sel.Nexthop
			if sel.OutLabel.IsImplicitNull() {
				entry.Pop = true
			} else {
				entry.OutLabel = sel.OutLabel
			}
			if sel.Iface != nil {
				entry.OutIface = sel.Iface.Name
			}
		}
		out = append(out, entry)
	}
	return out
}

// BindingEntry is one row of the label information base view.
type BindingEntry struct {
	Prefix   netip.Prefix   `json:"prefix"`
	InLabel  label.Optional `json:"in_label"`
	HasLSP   bool           `json:"has_lsp"`
	OutLabel label.Label    `json:"out_label,omitempty"`
	LSR      netip.Addr     `json:"lsr,omitempty"`
}

// BindingTable snapshots the LIB: every active prefix with a selected
// incoming label or a selected LSP.
func (e *Engine) BindingTable() []BindingEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []BindingEntry
	for pfx, b := range e.bindings.AllSorted4() {
		if !e.rib.Active(pfx) {
			continue
		}
		sel := b.SelectedLSP()
		if !b.selectedIn.Present() && sel == nil {
			continue
		}

		entry := BindingEntry{Prefix: pfx, InLabel: b.selectedIn}
		if sel != nil {
			entry.HasLSP = true
			entry.OutLabel = sel.OutLabel
			entry.LSR = sel.Nexthop
		}
		out = append(out, entry)
	}
	return out
}

// StaticLSPEntry is one configured outgoing binding.
type StaticLSPEntry struct {
	Nexthop  netip.Addr  `json:"nexthop"`
	OutLabel label.Label `json:"out_label"`
}

// StaticBinding is the configured state of one prefix, used by the
// config dumper and the static display.
type StaticBinding struct {
	Prefix  netip.Prefix     `json:"prefix"`
	InLabel label.Optional   `json:"in_label"`
	LSPs    []StaticLSPEntry `json:"lsps,omitempty"`
}

// StaticBindings snapshots every prefix carrying static configuration,
// in prefix order.
func (e *Engine) StaticBindings() []StaticBinding {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []StaticBinding
	for pfx, b := range e.bindings.AllSorted4() {
		if !b.staticIn.Present() && len(b.staticLSPs) == 0 {
			continue
		}

		entry := StaticBinding{Prefix: pfx, InLabel: b.staticIn}
		for _, lsp := range b.staticLSPs {
			entry.LSPs = append(entry.LSPs, StaticLSPEntry{Nexthop: lsp.Nexthop, OutLabel: lsp.OutLabel})
		}
		out = append(out, entry)
	}
	return out
}

// CrossConnectEntry is one row of the crossconnect view.
type CrossConnectEntry struct {
	InLabel  label.Label `json:"in_label"`
	OutLabel label.Label `json:"out_label"`
	Iface    string      `json:"interface"`
	Nexthop  netip.Addr  `json:"nexthop"`
}

// CrossConnects snapshots the static crossconnect table in configuration
// order.
func (e *Engine) CrossConnects() []CrossConnectEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]CrossConnectEntry, 0, len(e.xconns))
	for _, mc := range e.xconns {
		entry := CrossConnectEntry{
			InLabel:  mc.InLabel,
			OutLabel: mc.LSP.OutLabel,
			Nexthop:  mc.LSP.Nexthop,
		}
		if mc.LSP.Iface != nil {
			entry.Iface = mc.LSP.Iface.Name
		}
		out = append(out, entry)
	}
	return out
}

// Counts summarizes the programmed forwarding-plane state, derived from
// the engine's own invariants.
type Counts struct {
	ILM   int
	NHLFE int
	XC    int
}

// ProgramCounts reports how many ILM, NHLFE and XC entries the engine
// believes are programmed.
func (e *Engine) ProgramCounts() Counts {
	e.mu.Lock()
	defer e.mu.Unlock()

	var c Counts
	for pfx, b := range e.bindings.AllSorted4() {
		if !e.rib.Active(pfx) {
			continue
		}
		in, set := b.selectedIn.Get()
		if set && !in.IsImplicitNull() {
			c.ILM++
		}
		if sel := b.SelectedLSP(); sel != nil && sel.Installed() {
			c.NHLFE++
			if set {
				c.XC++
			}
		}
	}
	for _, mc := range e.xconns {
		if mc.LSP.Installed() {
			c.NHLFE++
			c.XC++
		}
		if !mc.InLabel.IsImplicitNull() {
			c.ILM++
		}
	}
	return c
}
