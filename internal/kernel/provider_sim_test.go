// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package kernel

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/mplsd/internal/iface"
	"grimm.is/mplsd/internal/label"
)

func simWithIfaces(t *testing.T) *SimDriver {
	t.Helper()

	tbl := iface.NewTable()
	tbl.Upsert(&iface.Interface{
		Index: 2,
		Name:  "eth0",
		Addrs: []netip.Prefix{netip.MustParsePrefix("192.0.2.10/24")},
	})
	return NewSimDriver(tbl)
}

func TestILMImplicitNullNoop(t *testing.T) {
	d := simWithIfaces(t)

	require.NoError(t, d.ILMInstall(label.ImplicitNull))
	assert.Empty(t, d.ILMs)
	assert.Equal(t, 0, d.Calls("ilm_install"))

	require.NoError(t, d.ILMInstall(label.Label(100)))
	assert.True(t, d.ILMs[100])
}

func TestNHLFEResolvesIfaceLazily(t *testing.T) {
	d := simWithIfaces(t)

	lsp := &LSP{Nexthop: netip.MustParseAddr("192.0.2.1"), OutLabel: 200}
	require.NoError(t, d.NHLFEInstall(lsp))
	require.NotNil(t, lsp.Iface)
	assert.Equal(t, "eth0", lsp.Iface.Name)
	assert.True(t, lsp.Installed())
	assert.Equal(t, label.Label(200), d.NHLFEs[lsp.Handle].Push)
}

func TestNHLFEUnresolvableNexthop(t *testing.T) {
	d := simWithIfaces(t)

	lsp := &LSP{Nexthop: netip.MustParseAddr("198.51.100.1"), OutLabel: 200}
	assert.Error(t, d.NHLFEInstall(lsp))
	assert.False(t, lsp.Installed())
}

func TestNHLFEImplicitNullProgramsPop(t *testing.T) {
	d := simWithIfaces(t)

	lsp := &LSP{Nexthop: netip.MustParseAddr("192.0.2.1"), OutLabel: label.ImplicitNull}
	require.NoError(t, d.NHLFEInstall(lsp))

	rec := d.NHLFEs[lsp.Handle]
	assert.True(t, rec.Pop)
	assert.Equal(t, label.Label(0), rec.Push)
}

func TestXCRequiresInstalledNHLFE(t *testing.T) {
	d := simWithIfaces(t)

	lsp := &LSP{Nexthop: netip.MustParseAddr("192.0.2.1"), OutLabel: 200}
	assert.Error(t, d.XCInstall(100, lsp))

	require.NoError(t, d.NHLFEInstall(lsp))
	require.NoError(t, d.XCInstall(100, lsp))
	assert.Equal(t, lsp.Handle, d.XCs[100])

	require.NoError(t, d.XCRemove(100, lsp))
	assert.Error(t, d.XCRemove(100, lsp))
}

func TestNHLFERemoveClearsHandle(t *testing.T) {
	d := simWithIfaces(t)

	lsp := &LSP{Nexthop: netip.MustParseAddr("192.0.2.1"), OutLabel: 200}
	require.NoError(t, d.NHLFEInstall(lsp))
	require.NoError(t, d.NHLFERemove(lsp))
	assert.False(t, lsp.Installed())
	assert.Empty(t, d.NHLFEs)
}
