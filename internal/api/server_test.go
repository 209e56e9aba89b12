// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/mplsd/internal/iface"
	"grimm.is/mplsd/internal/kernel"
	"grimm.is/mplsd/internal/lib"
	"grimm.is/mplsd/internal/logging"
	"grimm.is/mplsd/internal/rib"
)

func testServer(t *testing.T) (*Server, *lib.Engine, *rib.Table) {
	t.Helper()

	logger := logging.New(logging.DefaultConfig())

	ifaces := iface.NewTable()
	ifaces.Upsert(&iface.Interface{
		Index: 2,
		Name:  "eth0",
		Addrs: []netip.Prefix{netip.MustParsePrefix("192.0.2.10/24")},
	})

	ribTbl := rib.New(logger)
	engine := lib.New(logger, kernel.NewSimDriver(ifaces), ribTbl, ifaces, lib.NewBus())
	ribTbl.OnInstall(engine.RouteInstalled)
	ribTbl.OnUninstall(engine.RouteUninstalled)

	return NewServer(engine, logger), engine, ribTbl
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestForwardingEndpoint(t *testing.T) {
	srv, engine, ribTbl := testServer(t)

	ribTbl.Install(&rib.Route{
		Prefix:  netip.MustParsePrefix("10.0.0.0/8"),
		Nexthop: netip.MustParseAddr("192.0.2.1"),
	})
	engine.SetStaticInLabel(netip.MustParsePrefix("10.0.0.0/8"), 100)
	engine.AddStaticLSP(netip.MustParsePrefix("10.0.0.0/8"), netip.MustParseAddr("192.0.2.1"), 200)

	rec := get(t, srv, "/api/v1/forwarding")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var entries []lib.ForwardingEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "eth0", entries[0].OutIface)
}

func TestStaticEndpoint(t *testing.T) {
	srv, engine, _ := testServer(t)
	engine.SetStaticInLabel(netip.MustParsePrefix("10.0.0.0/8"), 100)

	rec := get(t, srv, "/api/v1/static")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "10.0.0.0/8")
	assert.Contains(t, rec.Body.String(), `"100"`)
}

func TestCrossConnectsEndpointEmpty(t *testing.T) {
	srv, _, _ := testServer(t)

	rec := get(t, srv, "/api/v1/crossconnects")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	srv, engine, ribTbl := testServer(t)

	ribTbl.Install(&rib.Route{
		Prefix:  netip.MustParsePrefix("10.0.0.0/8"),
		Nexthop: netip.MustParseAddr("192.0.2.1"),
	})
	engine.SetStaticInLabel(netip.MustParsePrefix("10.0.0.0/8"), 100)

	rec := get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mplsd_ilm_programmed 1")
}

func TestWriteMethodsRejected(t *testing.T) {
	srv, _, _ := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/forwarding", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
