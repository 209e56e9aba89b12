// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// mplsd is the MPLS Label Information Base daemon: it reconciles
// per-prefix label bindings against the IPv4 routing table and programs
// the kernel forwarding plane.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"grimm.is/mplsd/internal/api"
	"grimm.is/mplsd/internal/config"
	"grimm.is/mplsd/internal/iface"
	"grimm.is/mplsd/internal/kernel"
	"grimm.is/mplsd/internal/lib"
	"grimm.is/mplsd/internal/logging"
	"grimm.is/mplsd/internal/rib"
	"grimm.is/mplsd/internal/vty"
)

func main() {
	configPath := flag.String("config", "/etc/mplsd/mplsd.hcl", "daemon settings file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "mplsd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ifaces := iface.NewTable()
	if err := iface.Populate(ifaces, logging.WithComponent("iface")); err != nil {
		logger.Warn("Interface table incomplete", "error", err)
	}

	// A forwarding plane we cannot open is fatal.
	drv, err := kernel.NewPlatformDriver(ifaces, logging.WithComponent("kernel"))
	if err != nil {
		return err
	}

	ribTbl := rib.New(logging.WithComponent("rib"))
	engine := lib.New(logging.WithComponent("lib"), drv, ribTbl, ifaces, lib.NewBus())
	ribTbl.OnInstall(engine.RouteInstalled)
	ribTbl.OnUninstall(engine.RouteUninstalled)

	shell := vty.NewShell(engine, ifaces, logging.WithComponent("vty"))

	// Replay the persisted MPLS configuration before following routes, so
	// the seed pass installs bindings for prefixes that already resolve.
	if cfg.MPLSConfig != "" {
		if f, err := os.Open(cfg.MPLSConfig); err == nil {
			err = shell.Load(f)
			f.Close()
			if err != nil {
				return err
			}
		} else if !os.IsNotExist(err) {
			return err
		}
	}

	if err := rib.Seed(ribTbl); err != nil {
		logger.Warn("Route table seed failed", "error", err)
	}
	if err := rib.Follow(ctx, ribTbl, logging.WithComponent("rib")); err != nil {
		logger.Warn("Route updates unavailable", "error", err)
	}

	if cfg.VTYListen != "" {
		os.Remove(cfg.VTYListen)
		ln, err := net.Listen("unix", cfg.VTYListen)
		if err != nil {
			return err
		}
		defer os.Remove(cfg.VTYListen)
		go shell.Serve(ctx, ln)
	}

	if cfg.APIListen != "" {
		srv := api.NewServer(engine, logging.WithComponent("api"))
		go func() {
			if err := srv.ListenAndServe(cfg.APIListen); err != nil {
				logger.Error("API server stopped", "error", err)
			}
		}()
	}

	logger.Info("mplsd started")
	<-ctx.Done()

	logger.Info("Shutting down")
	return engine.Close()
}
