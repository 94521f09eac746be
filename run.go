package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"cartport/emu"
	"cartport/emu/log"
	"cartport/emu/script"
)

// apply overrides the configuration with the command line options.
func (r *Run) apply(cfg *emu.Config) error {
	switch r.REU {
	case "on":
		cfg.REU.Enabled = true
	case "off":
		cfg.REU.Enabled = false
	}

	switch r.Cart {
	case "":
	case "none":
		cfg.Cartridge.Type = -1
	default:
		id, err := strconv.Atoi(r.Cart)
		if err != nil {
			return fmt.Errorf("cartridge type %q: %w", r.Cart, err)
		}
		cfg.Cartridge.Type = id
	}
	if r.Image != "" {
		cfg.Cartridge.Image = r.Image
	}

	if r.Profile != "" {
		if _, err := emu.ParseProfile(r.Profile); err != nil {
			return err
		}
		cfg.Clock.Profile = r.Profile
	}
	return nil
}

// runScripts runs every script concurrently, each on its own machine. The
// first failure cancels the others.
func runScripts(cfg emu.Config, r *Run) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stdout := &outfile{w: os.Stdout, name: "stdout", close: func() error { return nil }}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, path := range r.Scripts {
		g.Go(func() error {
			return runScript(ctx, cfg, r, path, stdout)
		})
	}
	return g.Wait()
}

func runScript(ctx context.Context, cfg emu.Config, r *Run, path string, out *outfile) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	m, err := emu.New(cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if r.Trace != nil {
		m.SetTracer(r.Trace)
	}

	wctx, cancel := context.WithTimeout(ctx, r.Timeout)
	err = m.Enable(wctx)
	cancel()
	if err != nil {
		return fmt.Errorf("%s: waiting for host clock: %w", path, err)
	}
	defer m.Disable()

	name := filepath.Base(path)
	if err := script.NewRunner(m, name, out).Run(ctx, string(src)); err != nil {
		return err
	}
	if err := m.TraceErr(); err != nil {
		return fmt.Errorf("%s: trace: %w", path, err)
	}
	log.ModEmu.InfoZ("script done").
		String("name", name).
		Uint("cpu", m.Host.CPUCycles).
		Uint("dma", m.Host.DMACycles).
		End()
	return nil
}
