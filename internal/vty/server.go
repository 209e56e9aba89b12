// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package vty

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
)

// Serve answers command lines on the listener until ctx is done. One
// goroutine per connection; every command still serializes on the
// engine lock.
func (s *Shell) Serve(ctx context.Context, ln net.Listener) {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("Accept failed", "error", err)
			continue
		}
		go s.serveConn(conn)
	}
}

func (s *Shell) serveConn(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "show mpls forwarding-table":
			s.ShowForwardingTable(conn)
		case "show mpls ip binding":
			s.ShowIPBinding(conn)
		case "show mpls static binding":
			s.ShowStaticBinding(conn)
		case "show mpls static crossconnect":
			s.ShowCrossConnect(conn)
		case "show running-config":
			if err := s.WriteConfig(conn); err != nil {
				return
			}
		case "exit", "quit":
			return
		default:
			if code, msg := s.Execute(line); code != Success {
				fmt.Fprintf(conn, "%s\n", msg)
			}
		}
	}
}
