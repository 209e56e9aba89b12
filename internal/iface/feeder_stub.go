// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build !linux
// +build !linux

package iface

import "grimm.is/mplsd/internal/logging"

// Populate is a no-op on platforms without netlink; the table is filled
// by the simulator or by tests.
func Populate(t *Table, logger *logging.Logger) error {
	logger.Debug("Interface feeder not available on this platform")
	return nil
}
