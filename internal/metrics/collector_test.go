// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"grimm.is/mplsd/internal/lib"
)

type fakeSource struct {
	counts   lib.Counts
	failures uint64
}

func (f *fakeSource) ProgramCounts() lib.Counts { return f.counts }
func (f *fakeSource) DriverFailures() uint64    { return f.failures }

func TestCollector(t *testing.T) {
	src := &fakeSource{
		counts:   lib.Counts{ILM: 3, NHLFE: 2, XC: 1},
		failures: 4,
	}

	want := `
# HELP mplsd_driver_failures_total Forwarding-plane driver calls that returned an error.
# TYPE mplsd_driver_failures_total counter
mplsd_driver_failures_total 4
# HELP mplsd_ilm_programmed Incoming label map entries currently programmed.
# TYPE mplsd_ilm_programmed gauge
mplsd_ilm_programmed 3
# HELP mplsd_nhlfe_programmed Next-hop label forwarding entries currently programmed.
# TYPE mplsd_nhlfe_programmed gauge
mplsd_nhlfe_programmed 2
# HELP mplsd_xc_programmed Crossconnect entries currently programmed.
# TYPE mplsd_xc_programmed gauge
mplsd_xc_programmed 1
`
	require.NoError(t, testutil.CollectAndCompare(NewCollector(src), strings.NewReader(want)))
}
