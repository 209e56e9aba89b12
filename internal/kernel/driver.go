// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package kernel defines the forwarding-plane driver contract and its
// providers. The engine is the sole caller; the driver keeps no state the
// engine ever reads back.
package kernel

import (
	"net/netip"

	"grimm.is/mplsd/internal/iface"
	"grimm.is/mplsd/internal/label"
)

// Handle identifies an installed NHLFE. Zero means not installed.
type Handle uint32

// LSP is one label-switched-path segment: a next-hop plus an outgoing
// label. The outgoing interface is resolved from the next-hop on install
// when not pre-set; Handle is assigned by the driver on NHLFE install.
type LSP struct {
	Nexthop  netip.Addr
	OutLabel label.Label
	Iface    *iface.Interface
	Handle   Handle
}

// Installed reports whether the LSP's NHLFE is programmed.
func (l *LSP) Installed() bool { return l.Handle != 0 }

// Driver programs the MPLS forwarding plane. All calls are synchronous
// and must not call back into the engine.
type Driver interface {
	// SetInterfaceLabelspace enables MPLS on an interface (ls >= 0) or
	// disables it (ls < 0).
	SetInterfaceLabelspace(ifc *iface.Interface, ls int) error

	// ILMInstall creates an incoming label map entry. Implicit Null is a
	// no-op: the upstream already popped.
	ILMInstall(l label.Label) error

	// ILMRemove undoes ILMInstall; no-op for Implicit Null.
	ILMRemove(l label.Label) error

	// NHLFEInstall creates the next-hop label forwarding entry for lsp,
	// resolving lsp.Iface from the next-hop when unset and recording the
	// allocated handle on the record. An Implicit Null outgoing label
	// programs pop-only.
	NHLFEInstall(lsp *LSP) error

	// NHLFERemove removes the NHLFE identified by lsp.Handle and clears
	// the handle.
	NHLFERemove(lsp *LSP) error

	// XCInstall wires an incoming label to an installed NHLFE.
	XCInstall(in label.Label, lsp *LSP) error

	// XCRemove undoes XCInstall.
	XCRemove(in label.Label, lsp *LSP) error

	// Close releases driver resources.
	Close() error
}
