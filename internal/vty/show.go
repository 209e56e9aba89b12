// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package vty

import (
	"fmt"
	"io"
)

const forwardingHeader = "Local  Outgoing    Prefix            Outgoing   Next Hop\n" +
	"label  label       or Tunnel Id      interface\n"

// ShowForwardingTable renders the label forwarding view.
func (s *Shell) ShowForwardingTable(w io.Writer) {
	first := true
	for _, e := range s.engine.ForwardingTable() {
		if first {
			fmt.Fprint(w, forwardingHeader)
			first = false
		}

		fmt.Fprintf(w, "%-7s", e.InLabel)
		if !e.HasLSP {
			fmt.Fprintf(w, "%-12s%-18s%-11s\n", "Untagged", e.Prefix, "")
			continue
		}

		out := e.OutLabel.String()
		if e.Pop {
			out = "Pop"
		}
		fmt.Fprintf(w, "%-12s%-18s%-11s%s\n", out, e.Prefix, e.OutIface, e.Nexthop)
	}
}

// ShowIPBinding renders the label information base view.
func (s *Shell) ShowIPBinding(w io.Writer) {
	for _, e := range s.engine.BindingTable() {
		fmt.Fprintf(w, "  %s\n", e.Prefix)
		if in, ok := e.InLabel.Get(); ok {
			fmt.Fprintf(w, "        in label:     %s\n", in.Short())
		}
		if e.HasLSP {
			fmt.Fprintf(w, "        out label:    %-10slsr: %s:0\n", e.OutLabel.Short(), e.LSR)
		}
	}
}

// ShowStaticBinding renders the configured bindings.
func (s *Shell) ShowStaticBinding(w io.Writer) {
	for _, sb := range s.engine.StaticBindings() {
		fmt.Fprintf(w, "%s: ", sb.Prefix)

		fmt.Fprint(w, "Incoming label: ")
		if in, ok := sb.InLabel.Get(); ok {
			fmt.Fprintf(w, "%s\n", in)
		} else {
			fmt.Fprintf(w, "none;\n")
		}

		fmt.Fprint(w, "  Outgoing labels:")
		if len(sb.LSPs) == 0 {
			fmt.Fprint(w, "  None")
		}
		for i, lsp := range sb.LSPs {
			if i%2 == 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "     %-22s%-16s", lsp.Nexthop, lsp.OutLabel)
		}
		fmt.Fprintln(w)
	}
}

const crossConnectHeader = "Local  Outgoing    Outgoing   Next Hop\n" +
	"label  label       interface\n"

// ShowCrossConnect renders the static crossconnect table.
func (s *Shell) ShowCrossConnect(w io.Writer) {
	first := true
	for _, mc := range s.engine.CrossConnects() {
		if first {
			fmt.Fprint(w, crossConnectHeader)
			first = false
		}
		fmt.Fprintf(w, "%-7s%-12s%-11s%s\n", mc.InLabel, mc.OutLabel, mc.Iface, mc.Nexthop)
	}
}
