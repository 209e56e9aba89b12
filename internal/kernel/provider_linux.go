// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux
// +build linux

package kernel

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/vishvananda/netlink"

	"grimm.is/mplsd/internal/errors"
	"grimm.is/mplsd/internal/iface"
	"grimm.is/mplsd/internal/label"
	"grimm.is/mplsd/internal/logging"
)

const mplsSysctlRoot = "/proc/sys/net/mpls"

// nhlfeRec is the outgoing treatment held for an allocated handle. The
// kernel entry materializes when a crossconnect references it.
type nhlfeRec struct {
	nexthop   net.IP
	outLabel  label.Label
	linkIndex int
	p2p       bool
}

// LinuxDriver programs MPLS label routes through rtnetlink.
type LinuxDriver struct {
	mu      sync.Mutex
	ifaces  *iface.Table
	logger  *logging.Logger
	handles map[Handle]*nhlfeRec
	next    Handle
}

// NewLinuxDriver opens the MPLS forwarding plane. It fails when the
// kernel lacks MPLS support; startup treats that as fatal.
func NewLinuxDriver(ifaces *iface.Table, logger *logging.Logger) (*LinuxDriver, error) {
	if _, err := os.Stat(mplsSysctlRoot); err != nil {
		return nil, errors.Wrap(err, errors.KindUnavailable, "kernel has no MPLS support")
	}

	// The label table must cover the full 20-bit domain before any label
	// route can be added.
	platform := filepath.Join(mplsSysctlRoot, "platform_labels")
	if err := os.WriteFile(platform, []byte(fmt.Sprintf("%d", uint32(label.Max))), 0o644); err != nil {
		return nil, errors.Wrap(err, errors.KindUnavailable, "setting platform_labels")
	}

	return &LinuxDriver{
		ifaces:  ifaces,
		logger:  logger,
		handles: make(map[Handle]*nhlfeRec),
	}, nil
}

func (d *LinuxDriver) SetInterfaceLabelspace(ifc *iface.Interface, ls int) error {
	v := "1"
	if ls < 0 {
		v = "0"
	}

	path := filepath.Join(mplsSysctlRoot, "conf", ifc.Name, "input")
	if err := os.WriteFile(path, []byte(v), 0o644); err != nil {
		return errors.Wrapf(err, errors.KindUnavailable, "labelspace on %s", ifc.Name)
	}

	d.logger.Info("Interface labelspace set", "interface", ifc.Name, "labelspace", ls)
	return nil
}

// ilmRoute builds the label route matching an incoming label with no
// outgoing treatment: pop and deliver.
func ilmRoute(l label.Label) *netlink.Route {
	in := int(l)
	return &netlink.Route{MPLSDst: &in}
}

func (d *LinuxDriver) ILMInstall(l label.Label) error {
	if l.IsImplicitNull() {
		return nil
	}

	d.logger.Info("ILM install", "label", l)
	if err := netlink.RouteReplace(ilmRoute(l)); err != nil {
		return errors.Wrapf(err, errors.KindUnavailable, "ILM install %s", l)
	}
	return nil
}

func (d *LinuxDriver) ILMRemove(l label.Label) error {
	if l.IsImplicitNull() {
		return nil
	}

	d.logger.Info("ILM remove", "label", l)
	if err := netlink.RouteDel(ilmRoute(l)); err != nil {
		return errors.Wrapf(err, errors.KindUnavailable, "ILM remove %s", l)
	}
	return nil
}

func (d *LinuxDriver) NHLFEInstall(lsp *LSP) error {
	if lsp.Iface == nil {
		ifc, ok := d.ifaces.LookupAddr(lsp.Nexthop)
		if !ok {
			return errors.Errorf(errors.KindNotFound, "no interface for nexthop %s", lsp.Nexthop)
		}
		lsp.Iface = ifc
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.next++
	lsp.Handle = d.next
	d.handles[lsp.Handle] = &nhlfeRec{
		nexthop:   net.IP(lsp.Nexthop.AsSlice()),
		outLabel:  lsp.OutLabel,
		linkIndex: lsp.Iface.Index,
		p2p:       lsp.Iface.PointToPoint,
	}

	d.logger.Info("NHLFE install", "label", lsp.OutLabel, "nhlfe", lsp.Handle)
	return nil
}

func (d *LinuxDriver) NHLFERemove(lsp *LSP) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if lsp.Handle == 0 {
		return errors.New(errors.KindNotFound, "NHLFE not installed")
	}

	d.logger.Info("NHLFE remove", "label", lsp.OutLabel, "nhlfe", lsp.Handle)
	delete(d.handles, lsp.Handle)
	lsp.Handle = 0
	return nil
}

// xcRoute builds the label route wiring an incoming label to the
// outgoing treatment of rec.
func xcRoute(in label.Label, rec *nhlfeRec) *netlink.Route {
	inl := int(in)
	r := &netlink.Route{
		MPLSDst:   &inl,
		LinkIndex: rec.linkIndex,
	}
	if !rec.outLabel.IsImplicitNull() {
		r.NewDst = &netlink.MPLSDestination{Labels: []int{int(rec.outLabel)}}
	}
	if !rec.p2p {
		r.Via = &netlink.Via{AddrFamily: netlink.FAMILY_V4, Addr: rec.nexthop}
	}
	return r
}

func (d *LinuxDriver) XCInstall(in label.Label, lsp *LSP) error {
	d.mu.Lock()
	rec, ok := d.handles[lsp.Handle]
	d.mu.Unlock()
	if !ok {
		return errors.New(errors.KindNotFound, "NHLFE not installed")
	}

	d.logger.Info("XC install", "in", in, "out", rec.outLabel)
	if err := netlink.RouteReplace(xcRoute(in, rec)); err != nil {
		return errors.Wrapf(err, errors.KindUnavailable, "XC install %s", in)
	}
	return nil
}

func (d *LinuxDriver) XCRemove(in label.Label, lsp *LSP) error {
	d.logger.Info("XC remove", "in", in, "out", lsp.OutLabel)

	// Fall back to the plain ILM so incoming packets keep terminating
	// locally until the ILM itself is removed.
	if err := netlink.RouteReplace(ilmRoute(in)); err != nil {
		return errors.Wrapf(err, errors.KindUnavailable, "XC remove %s", in)
	}
	return nil
}

func (d *LinuxDriver) Close() error {
	return nil
}

// NewPlatformDriver returns the real forwarding-plane driver for this
// platform.
func NewPlatformDriver(ifaces *iface.Table, logger *logging.Logger) (Driver, error) {
	return NewLinuxDriver(ifaces, logger)
}
