// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mplsd.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level  = "debug"
api_listen = "127.0.0.1:9090"
mpls_config = "/etc/mplsd/mpls.conf"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat, "unset fields keep defaults")
	assert.Equal(t, "127.0.0.1:9090", cfg.APIListen)
	assert.Equal(t, "/etc/mplsd/mpls.conf", cfg.MPLSConfig)
	assert.Equal(t, "/run/mplsd.sock", cfg.VTYListen)
}

func TestLoadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mplsd.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`log_level = `), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
