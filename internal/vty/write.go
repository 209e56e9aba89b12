// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package vty

import (
	"fmt"
	"io"
)

// WriteConfig emits the running MPLS configuration in the input-line
// grammar: the global flag, then per prefix the static incoming label
// before the outputs, then the crossconnects.
func (s *Shell) WriteConfig(w io.Writer) error {
	if s.engine.Enabled() {
		if _, err := fmt.Fprintf(w, "mpls ip\n!\n"); err != nil {
			return err
		}
	}

	for _, sb := range s.engine.StaticBindings() {
		if in, ok := sb.InLabel.Get(); ok {
			if _, err := fmt.Fprintf(w, "mpls static binding ipv4 %s %s\n", sb.Prefix, in); err != nil {
				return err
			}
		}
		for _, lsp := range sb.LSPs {
			if _, err := fmt.Fprintf(w, "mpls static binding ipv4 %s output %s %s\n",
				sb.Prefix, lsp.Nexthop, lsp.OutLabel); err != nil {
				return err
			}
		}
	}

	for _, mc := range s.engine.CrossConnects() {
		if _, err := fmt.Fprintf(w, "mpls static crossconnect %s %s %s %s\n",
			mc.InLabel, mc.Iface, mc.Nexthop, mc.OutLabel); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "!\n")
	return err
}
