// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command gpgpu runs the jobs of a YAML manifest on a compute device.
//
//	gpgpu -manifest jobs.yaml [-config gpgpu.yaml] [-backend auto|vulkan|host]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/gpgpu"
	"github.com/gogpu/gpgpu/backend"
	"github.com/gogpu/gpgpu/gpu"
	_ "github.com/gogpu/gpgpu/host"
	"github.com/gogpu/gpgpu/internal/config"
	"github.com/gogpu/gpgpu/internal/manifest"
	"github.com/gogpu/gpgpu/internal/tracing"
)

func main() {
	var (
		configPath   = flag.String("config", "", "YAML configuration file")
		manifestPath = flag.String("manifest", "", "YAML job manifest (required)")
		backendName  = flag.String("backend", "", "device backend, overrides the configuration (auto, vulkan, host)")
		limit        = flag.Int("limit", 16, "maximum elements printed per result, 0 for all")
		producers    = flag.Int("producers", 0, "concurrent producers, 0 for one per job")
	)
	flag.Parse()

	if *manifestPath == "" {
		fmt.Fprintln(os.Stderr, "gpgpu: -manifest is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := manifest.RunOptions{Producers: *producers, Limit: *limit}
	if err := run(ctx, os.Stdout, *configPath, *manifestPath, *backendName, opts); err != nil {
		fmt.Fprintf(os.Stderr, "gpgpu: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, configPath, manifestPath, backendName string, opts manifest.RunOptions) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if backendName != "" {
		cfg.Device.Backend = backendName
		if err := config.Validate(cfg); err != nil {
			return err
		}
	}

	log := cfg.Log.NewLogger(os.Stderr)
	gpgpu.SetLogger(log)

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init("gpgpu", gpgpu.Version, cfg.Tracing.Output)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warn("tracing shutdown failed", "err", err)
			}
		}()
	}

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}

	gpu.Configure(
		gpu.WithFenceTimeout(cfg.Device.FenceTimeout),
		gpu.WithProgramCache(cfg.Device.ProgramCache),
	)
	dev, err := backend.Open(cfg.Device.Backend)
	if err != nil {
		return err
	}
	log.Info("device opened", "backend", dev.Name(), "jobs", len(m.Jobs))

	q := gpgpu.NewQueue(cfg.Queue.Capacity)
	loop := gpgpu.Serve(q, dev)

	results, runErr := manifest.Run(ctx, q, m, opts)

	q.Close()
	<-loop.Done()

	failed := 0
	for _, r := range results {
		if r.Name == "" {
			continue
		}
		if r.Err != nil {
			failed++
			fmt.Fprintf(out, "%s: error: %v\n", r.Name, r.Err)
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", r.Name, r.Output)
	}

	st := loop.Stats()
	log.Info("done",
		"executed", st.Executed,
		"failed", st.Failed,
		"abandoned", st.Abandoned,
		"panicked", st.Panicked)

	return errors.Join(runErr, loop.Err(), jobsFailed(failed))
}

func jobsFailed(n int) error {
	if n == 0 {
		return nil
	}
	return fmt.Errorf("%d job(s) failed", n)
}
