// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package lib is the MPLS Label Information Base: per-prefix label
// bindings, the reconciliation engine that keeps the forwarding plane
// consistent with them, the static crossconnect table, and the read-side
// views.
package lib

import (
	"net/netip"

	"grimm.is/mplsd/internal/kernel"
	"grimm.is/mplsd/internal/label"
)

// lspSource discriminates where the selected LSP lives. The selected LSP
// is always one of the binding's own records, referenced by source and
// next-hop identity, never an independent copy.
type lspSource uint8

const (
	srcNone lspSource = iota
	srcStatic
	srcDynamic
)

// Bindings holds the MPLS state of one IPv4 prefix. Records are created
// on the first binding operation and persist until shutdown; removing the
// last binding leaves an empty record behind for later re-population.
type Bindings struct {
	staticIn   label.Optional
	dynamicIn  label.Optional
	selectedIn label.Optional

	staticLSPs []*kernel.LSP // unique by next-hop
	dynamicLSP *kernel.LSP

	selSrc lspSource
	selNH  netip.Addr
}

func newBindings() *Bindings {
	return &Bindings{}
}

// StaticInLabel returns the configured static incoming label.
func (b *Bindings) StaticInLabel() label.Optional { return b.staticIn }

// DynamicInLabel returns the protocol-learned incoming label.
func (b *Bindings) DynamicInLabel() label.Optional { return b.dynamicIn }

// SelectedInLabel returns the incoming label currently chosen for the
// forwarding plane.
func (b *Bindings) SelectedInLabel() label.Optional { return b.selectedIn }

// staticByNexthop finds the static LSP with the given next-hop.
func (b *Bindings) staticByNexthop(nh netip.Addr) (*kernel.LSP, int) {
	for i, lsp := range b.staticLSPs {
		if lsp.Nexthop == nh {
			return lsp, i
		}
	}
	return nil, -1
}

// SelectedLSP resolves the discriminated selection reference to the
// underlying record, or nil when nothing is selected.
func (b *Bindings) SelectedLSP() *kernel.LSP {
	switch b.selSrc {
	case srcDynamic:
		if b.dynamicLSP != nil && b.dynamicLSP.Nexthop == b.selNH {
			return b.dynamicLSP
		}
	case srcStatic:
		if lsp, _ := b.staticByNexthop(b.selNH); lsp != nil {
			return lsp
		}
	}
	return nil
}

func (b *Bindings) setSelected(src lspSource, lsp *kernel.LSP) {
	if lsp == nil {
		b.clearSelected()
		return
	}
	b.selSrc = src
	b.selNH = lsp.Nexthop
}

func (b *Bindings) clearSelected() {
	b.selSrc = srcNone
	b.selNH = netip.Addr{}
}

// empty reports whether the record carries no configuration or protocol
// state at all.
func (b *Bindings) empty() bool {
	return !b.staticIn.Present() && !b.dynamicIn.Present() &&
		len(b.staticLSPs) == 0 && b.dynamicLSP == nil
}
