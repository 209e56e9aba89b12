// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package config loads the daemon-level settings file. MPLS state itself
// is not configured here: it is rebuilt at startup by replaying the
// mpls configuration file through the vty shell.
package config

import (
	"os"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"grimm.is/mplsd/internal/errors"
)

// Config holds the daemon settings.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `hcl:"log_level,optional"`

	// LogFormat is text or json.
	LogFormat string `hcl:"log_format,optional"`

	// APIListen is the address of the read-only HTTP API; empty disables
	// the server.
	APIListen string `hcl:"api_listen,optional"`

	// VTYListen is the unix socket path of the command shell; empty
	// disables it.
	VTYListen string `hcl:"vty_listen,optional"`

	// MPLSConfig is the path of the mpls configuration file replayed at
	// startup. The daemon only reads it; it never writes it back.
	MPLSConfig string `hcl:"mpls_config,optional"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		VTYListen: "/run/mplsd.sock",
	}
}

// Load reads an HCL settings file, filling unset fields with defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	var loaded Config
	if err := hclsimple.DecodeFile(path, nil, &loaded); err != nil {
		return nil, errors.Wrapf(err, errors.KindValidation, "parsing %s", path)
	}

	if loaded.LogLevel != "" {
		cfg.LogLevel = loaded.LogLevel
	}
	if loaded.LogFormat != "" {
		cfg.LogFormat = loaded.LogFormat
	}
	if loaded.APIListen != "" {
		cfg.APIListen = loaded.APIListen
	}
	if loaded.VTYListen != "" {
		cfg.VTYListen = loaded.VTYListen
	}
	if loaded.MPLSConfig != "" {
		cfg.MPLSConfig = loaded.MPLSConfig
	}

	return cfg, nil
}
