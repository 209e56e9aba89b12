// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build !linux
// +build !linux

package kernel

import (
	"grimm.is/mplsd/internal/iface"
	"grimm.is/mplsd/internal/logging"
)

// NewPlatformDriver returns the sim driver on platforms without an MPLS
// forwarding plane.
func NewPlatformDriver(ifaces *iface.Table, logger *logging.Logger) (Driver, error) {
	logger.Warn("No MPLS forwarding plane on this platform, using simulator")
	return NewSimDriver(ifaces), nil
}
