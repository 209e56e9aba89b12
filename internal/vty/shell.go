// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package vty is the configuration front-end: it translates the one-line
// command grammar into engine operations and renders the engine state
// back as configuration and show output.
package vty

import (
	"bufio"
	"io"
	"net"
	"net/netip"
	"strings"

	"grimm.is/mplsd/internal/iface"
	"grimm.is/mplsd/internal/label"
	"grimm.is/mplsd/internal/lib"
	"grimm.is/mplsd/internal/logging"
)

// ExitCode is the result of one command.
type ExitCode int

const (
	Success ExitCode = iota
	Warning
)

// Shell executes commands against one engine.
type Shell struct {
	engine *lib.Engine
	ifaces *iface.Table
	logger *logging.Logger
}

// NewShell creates a shell bound to an engine and interface table.
func NewShell(engine *lib.Engine, ifaces *iface.Table, logger *logging.Logger) *Shell {
	return &Shell{engine: engine, ifaces: ifaces, logger: logger}
}

// parsePrefix reads a destination from args: either "A.B.C.D/M" in one
// token, or "A.B.C.D A.B.C.D" address plus mask. Returns the masked
// prefix and how many tokens were consumed.
func parsePrefix(args []string) (netip.Prefix, int, bool) {
	if len(args) == 0 {
		return netip.Prefix{}, 0, false
	}

	if strings.Contains(args[0], "/") {
		p, err := netip.ParsePrefix(args[0])
		if err != nil || !p.Addr().Is4() {
			return netip.Prefix{}, 0, false
		}
		return p.Masked(), 1, true
	}

	if len(args) < 2 {
		return netip.Prefix{}, 0, false
	}
	addr, err := netip.ParseAddr(args[0])
	if err != nil || !addr.Is4() {
		return netip.Prefix{}, 0, false
	}
	mask, err := netip.ParseAddr(args[1])
	if err != nil || !mask.Is4() {
		return netip.Prefix{}, 0, false
	}
	ones, bits := net.IPMask(mask.AsSlice()).Size()
	if bits != 32 {
		return netip.Prefix{}, 0, false
	}
	return netip.PrefixFrom(addr, ones).Masked(), 2, true
}

func parseNexthop(s string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(s)
	if err != nil || !addr.Is4() {
		return netip.Addr{}, false
	}
	return addr, true
}

// Execute runs one configuration line. Blank lines and comment lines
// ("!" or "#") succeed without effect. The returned message is non-empty
// on warnings.
func (s *Shell) Execute(line string) (ExitCode, string) {
	args := strings.Fields(line)
	if len(args) == 0 || strings.HasPrefix(args[0], "!") || strings.HasPrefix(args[0], "#") {
		return Success, ""
	}

	negate := false
	if args[0] == "no" {
		negate = true
		args = args[1:]
	}

	if len(args) == 0 || args[0] != "mpls" {
		return Warning, "% Unknown command"
	}
	args = args[1:]

	switch {
	case len(args) == 1 && args[0] == "ip":
		s.engine.SetEnabled(!negate)
		return Success, ""

	case len(args) >= 2 && args[0] == "static" && args[1] == "binding":
		return s.staticBinding(negate, args[2:])

	case len(args) >= 2 && args[0] == "static" && args[1] == "crossconnect":
		return s.crossConnect(negate, args[2:])
	}

	return Warning, "% Unknown command"
}

func (s *Shell) staticBinding(negate bool, args []string) (ExitCode, string) {
	if len(args) == 0 || args[0] != "ipv4" {
		return Warning, "% Unknown command"
	}
	args = args[1:]

	pfx, n, ok := parsePrefix(args)
	if !ok {
		return Warning, "% Malformed address"
	}
	args = args[n:]

	if negate {
		return s.staticBindingRemove(pfx, args)
	}

	switch {
	case len(args) == 3 && args[0] == "output":
		nexthop, ok := parseNexthop(args[1])
		if !ok {
			return Warning, "% Malformed address"
		}
		out, err := label.ParseUser(args[2])
		if err != nil {
			return Warning, "% Malformed label"
		}
		s.engine.AddStaticLSP(pfx, nexthop, out)
		return Success, ""

	case len(args) == 2 && args[0] == "input":
		args = args[1:]
		fallthrough

	case len(args) == 1:
		in, err := label.ParseUser(args[0])
		if err != nil {
			return Warning, "% Malformed label"
		}
		s.engine.SetStaticInLabel(pfx, in)
		return Success, ""
	}

	return Warning, "% Unknown command"
}

func (s *Shell) staticBindingRemove(pfx netip.Prefix, args []string) (ExitCode, string) {
	switch {
	case len(args) == 0:
		s.engine.RemoveAllStatic(pfx)
		return Success, ""

	// The trailing label of "no ... output" is ignored: the next-hop is
	// the identity.
	case (len(args) == 2 || len(args) == 3) && args[0] == "output":
		nexthop, ok := parseNexthop(args[1])
		if !ok {
			return Warning, "% Malformed address"
		}
		s.engine.RemoveStaticLSP(pfx, nexthop)
		return Success, ""

	case len(args) == 1 && args[0] == "input":
		s.engine.ClearStaticInLabel(pfx, label.None())
		return Success, ""

	case len(args) == 2 && args[0] == "input":
		args = args[1:]
		fallthrough

	case len(args) == 1:
		in, err := label.ParseUser(args[0])
		if err != nil {
			return Warning, "% Malformed label"
		}
		s.engine.ClearStaticInLabel(pfx, label.Some(in))
		return Success, ""
	}

	return Warning, "% Unknown command"
}

func (s *Shell) crossConnect(negate bool, args []string) (ExitCode, string) {
	if len(args) == 0 {
		return Warning, "% Unknown command"
	}

	in, err := label.ParseUser(args[0])
	if err != nil {
		return Warning, "% Malformed label"
	}

	if negate {
		// Trailing interface/nexthop/label tokens are accepted and
		// ignored; the incoming label is the identity.
		if len(args) > 4 {
			return Warning, "% Unknown command"
		}
		if err := s.engine.RemoveCrossConnect(in); err != nil {
			return Warning, "% Crossconnect not found"
		}
		return Success, ""
	}

	if len(args) != 4 {
		return Warning, "% Unknown command"
	}

	ifc, ok := s.ifaces.ByName(args[1])
	if !ok {
		return Warning, "% Unknown interface"
	}
	nexthop, ok := parseNexthop(args[2])
	if !ok {
		return Warning, "% Malformed address"
	}
	out, err := label.ParseUser(args[3])
	if err != nil {
		return Warning, "% Malformed label"
	}

	if err := s.engine.AddCrossConnect(in, ifc, nexthop, out); err != nil {
		return Warning, "% Crossconnect install failed"
	}
	return Success, ""
}

// Load applies a configuration stream line by line. Warnings are logged
// and do not stop the load.
func (s *Shell) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if code, msg := s.Execute(line); code != Success {
			s.logger.Warn("Configuration line rejected", "line", line, "message", msg)
		}
	}
	return scanner.Err()
}
