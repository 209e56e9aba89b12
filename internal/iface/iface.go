// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package iface maintains the network interface table consumed by the
// MPLS engine and the forwarding-plane driver.
package iface

import (
	"net/netip"
	"sort"
	"sync"
)

// Interface describes one network interface.
type Interface struct {
	Index        int
	Name         string
	Addrs        []netip.Prefix
	PointToPoint bool

	// MPLS marks an interface as participating in MPLS forwarding.
	// "mpls ip" sets the label space only on marked interfaces.
	MPLS bool
}

// Table is the interface table. It is safe for concurrent use.
type Table struct {
	mu      sync.RWMutex
	byName  map[string]*Interface
	byIndex map[int]*Interface
}

// NewTable creates an empty interface table.
func NewTable() *Table {
	return &Table{
		byName:  make(map[string]*Interface),
		byIndex: make(map[int]*Interface),
	}
}

// Upsert adds or replaces an interface record.
func (t *Table) Upsert(ifc *Interface) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.byName[ifc.Name]; ok {
		// Preserve the operator's MPLS flag across link churn.
		ifc.MPLS = ifc.MPLS || old.MPLS
		delete(t.byIndex, old.Index)
	}
	t.byName[ifc.Name] = ifc
	t.byIndex[ifc.Index] = ifc
}

// Remove drops an interface by name.
func (t *Table) Remove(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ifc, ok := t.byName[name]; ok {
		delete(t.byIndex, ifc.Index)
		delete(t.byName, name)
	}
}

// ByName returns the interface with the given name.
func (t *Table) ByName(name string) (*Interface, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ifc, ok := t.byName[name]
	return ifc, ok
}

// ByIndex returns the interface with the given ifindex.
func (t *Table) ByIndex(idx int) (*Interface, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ifc, ok := t.byIndex[idx]
	return ifc, ok
}

// LookupAddr returns the interface whose connected subnet contains addr.
// It resolves an LSP next-hop to its outgoing interface.
func (t *Table) LookupAddr(addr netip.Addr) (*Interface, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, ifc := range t.byName {
		for _, p := range ifc.Addrs {
			if p.Contains(addr) {
				return ifc, true
			}
		}
	}
	return nil, false
}

// SetMPLS sets the per-interface MPLS participation flag.
func (t *Table) SetMPLS(name string, on bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	ifc, ok := t.byName[name]
	if !ok {
		return false
	}
	ifc.MPLS = on
	return true
}

// All returns the interfaces sorted by name.
func (t *Table) All() []*Interface {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Interface, 0, len(t.byName))
	for _, ifc := range t.byName {
		out = append(out, ifc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
