/*
vkspin renders a spinning tetrahedron with an explicit
double buffered Vulkan frame pipeline.
*/
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/vkspin/engine"
	"github.com/spaghettifunk/vkspin/engine/core"
)

func main() {
	if err := run(); err != nil {
		core.LogFatal("vkspin: %s", err)
	}
}

func run() error {
	configPath := flag.String("config", "config.toml", "path to the TOML configuration file")
	flag.Parse()

	cfg, err := engine.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	e, err := engine.New(cfg)
	if err != nil {
		return err
	}
	defer e.Shutdown()

	// signal channel to capture system calls
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	if err := e.Initialize(); err != nil {
		core.LogError("Initialization failed: %s", err)
		return err
	}

	// run engine
	if err := e.Run(ctx); err != nil {
		return err
	}
	return e.Shutdown()
}
