// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux
// +build linux

package iface

import (
	"net"
	"net/netip"

	"github.com/vishvananda/netlink"

	"grimm.is/mplsd/internal/errors"
	"grimm.is/mplsd/internal/logging"
)

// Populate fills the table from the kernel link and address lists.
func Populate(t *Table, logger *logging.Logger) error {
	links, err := netlink.LinkList()
	if err != nil {
		return errors.Wrap(err, errors.KindUnavailable, "listing links")
	}

	for _, link := range links {
		attrs := link.Attrs()

		ifc := &Interface{
			Index:        attrs.Index,
			Name:         attrs.Name,
			PointToPoint: attrs.Flags&net.FlagPointToPoint != 0,
		}

		addrs, err := netlink.AddrList(link, netlink.FAMILY_V4)
		if err != nil {
			logger.Warn("Could not list addresses", "interface", attrs.Name, "error", err)
		}
		for _, a := range addrs {
			if a.IPNet == nil {
				continue
			}
			ip, ok := netip.AddrFromSlice(a.IPNet.IP.To4())
			if !ok {
				continue
			}
			ones, _ := a.IPNet.Mask.Size()
			ifc.Addrs = append(ifc.Addrs, netip.PrefixFrom(ip, ones))
		}

		t.Upsert(ifc)
	}

	return nil
}
