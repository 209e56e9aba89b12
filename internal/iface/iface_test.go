// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package iface

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *Table {
	t.Helper()

	tbl := NewTable()
	tbl.Upsert(&Interface{
		Index: 2,
		Name:  "eth0",
		Addrs: []netip.Prefix{netip.MustParsePrefix("192.0.2.10/24")},
	})
	tbl.Upsert(&Interface{
		Index:        3,
		Name:         "ppp0",
		Addrs:        []netip.Prefix{netip.MustParsePrefix("10.1.1.1/30")},
		PointToPoint: true,
	})
	return tbl
}

func TestLookupAddr(t *testing.T) {
	tbl := testTable(t)

	ifc, ok := tbl.LookupAddr(netip.MustParseAddr("192.0.2.1"))
	require.True(t, ok)
	assert.Equal(t, "eth0", ifc.Name)

	_, ok = tbl.LookupAddr(netip.MustParseAddr("198.51.100.1"))
	assert.False(t, ok)
}

func TestByNameByIndex(t *testing.T) {
	tbl := testTable(t)

	ifc, ok := tbl.ByName("ppp0")
	require.True(t, ok)
	assert.True(t, ifc.PointToPoint)

	ifc, ok = tbl.ByIndex(2)
	require.True(t, ok)
	assert.Equal(t, "eth0", ifc.Name)
}

func TestSetMPLSSurvivesUpsert(t *testing.T) {
	tbl := testTable(t)

	require.True(t, tbl.SetMPLS("eth0", true))
	assert.False(t, tbl.SetMPLS("missing", true))

	// Link churn re-reports the interface; the operator flag must stick.
	tbl.Upsert(&Interface{Index: 2, Name: "eth0"})
	ifc, _ := tbl.ByName("eth0")
	assert.True(t, ifc.MPLS)
}

func TestAllSorted(t *testing.T) {
	tbl := testTable(t)
	all := tbl.All()
	require.Len(t, all, 2)
	assert.Equal(t, "eth0", all[0].Name)
	assert.Equal(t, "ppp0", all[1].Name)
}
