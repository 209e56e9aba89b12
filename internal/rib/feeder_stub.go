// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build !linux
// +build !linux

package rib

import (
	"context"

	"grimm.is/mplsd/internal/logging"
)

// Seed is a no-op on platforms without netlink.
func Seed(t *Table) error { return nil }

// Follow is a no-op on platforms without netlink; routes enter via
// Install/Uninstall calls from the simulator or tests.
func Follow(ctx context.Context, t *Table, logger *logging.Logger) error {
	logger.Debug("Route feeder not available on this platform")
	return nil
}
