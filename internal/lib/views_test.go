// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package lib

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/mplsd/internal/label"
)

func TestForwardingTableView(t *testing.T) {
	h := newHarness(t)

	h.installRoute(pfx10, nh1)
	h.engine.SetStaticInLabel(pfx10, 100)
	h.engine.AddStaticLSP(pfx10, nh1, 200)

	fwd := h.engine.ForwardingTable()
	require.Len(t, fwd, 1)
	assert.Equal(t, label.Label(100), fwd[0].InLabel)
	assert.Equal(t, pfx10, fwd[0].Prefix)
	assert.True(t, fwd[0].HasLSP)
	assert.Equal(t, label.Label(200), fwd[0].OutLabel)
	assert.False(t, fwd[0].Pop)
	assert.Equal(t, "eth0", fwd[0].OutIface)
	assert.Equal(t, nh1, fwd[0].Nexthop)
}

func TestForwardingTableUntagged(t *testing.T) {
	h := newHarness(t)

	h.installRoute(pfx10, nh1)
	h.engine.SetStaticInLabel(pfx10, 100)

	fwd := h.engine.ForwardingTable()
	require.Len(t, fwd, 1)
	assert.False(t, fwd[0].HasLSP)
}

func TestForwardingTableExcludes(t *testing.T) {
	h := newHarness(t)

	// Inactive prefixes do not appear.
	h.engine.SetStaticInLabel(pfx10, 100)
	assert.Empty(t, h.engine.ForwardingTable())

	// Implicit Null incoming labels do not appear.
	other := netip.MustParsePrefix("10.1.0.0/16")
	h.installRoute(other, nh1)
	h.engine.SetStaticInLabel(other, label.ImplicitNull)
	assert.Empty(t, h.engine.ForwardingTable())
}

func TestForwardingTablePop(t *testing.T) {
	h := newHarness(t)

	h.installRoute(pfx10, nh1)
	h.engine.SetStaticInLabel(pfx10, 100)
	h.engine.AddStaticLSP(pfx10, nh1, label.ImplicitNull)

	fwd := h.engine.ForwardingTable()
	require.Len(t, fwd, 1)
	assert.True(t, fwd[0].Pop)
}

func TestBindingTableView(t *testing.T) {
	h := newHarness(t)

	h.installRoute(pfx10, nh1)
	h.engine.SetDynamicInLabel(pfx10, label.Some(label.Label(42)))
	h.engine.SetDynamicLSP(pfx10, nh1, 300)

	lib := h.engine.BindingTable()
	require.Len(t, lib, 1)
	assert.True(t, lib[0].InLabel.Is(42))
	assert.True(t, lib[0].HasLSP)
	assert.Equal(t, label.Label(300), lib[0].OutLabel)
	assert.Equal(t, nh1, lib[0].LSR)
}

func TestBindingTableSkipsEmptyAndInactive(t *testing.T) {
	h := newHarness(t)

	// Bindings without a route are not part of the LIB view.
	h.engine.SetStaticInLabel(pfx10, 100)
	assert.Empty(t, h.engine.BindingTable())

	h.installRoute(pfx10, nh1)
	assert.Len(t, h.engine.BindingTable(), 1)
}

func TestStaticBindingsSortedByPrefix(t *testing.T) {
	h := newHarness(t)

	b := netip.MustParsePrefix("10.2.0.0/16")
	a := netip.MustParsePrefix("10.1.0.0/16")
	h.engine.SetStaticInLabel(b, 101)
	h.engine.SetStaticInLabel(a, 100)
	h.engine.AddStaticLSP(a, nh1, 200)

	static := h.engine.StaticBindings()
	require.Len(t, static, 2)
	assert.Equal(t, a, static[0].Prefix)
	assert.Equal(t, b, static[1].Prefix)
	require.Len(t, static[0].LSPs, 1)
	assert.Equal(t, label.Label(200), static[0].LSPs[0].OutLabel)
}

func TestStaticBindingsIgnoreDynamicState(t *testing.T) {
	h := newHarness(t)

	h.engine.SetDynamicInLabel(pfx10, label.Some(label.Label(42)))
	h.engine.SetDynamicLSP(pfx10, nh1, 300)
	assert.Empty(t, h.engine.StaticBindings())
}
