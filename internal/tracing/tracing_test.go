// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tracing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// resetProvider clears the installed provider when the test ends.
func resetProvider(t *testing.T) {
	t.Helper()
	prev := otel.GetTracerProvider()
	t.Cleanup(func() {
		mu.Lock()
		defer mu.Unlock()
		if shutdown != nil {
			_ = shutdown(context.Background())
		}
		provider, shutdown = nil, nil
		otel.SetTracerProvider(prev)
	})
}

type countingCloser struct{ closes int }

func (c *countingCloser) Close() error {
	c.closes++
	return nil
}

func TestInitWritesSpansToFile(t *testing.T) {
	resetProvider(t)
	fname := filepath.Join(t.TempDir(), "spans.json")

	stop, err := Init("gpgpu", "0.0.1", fname)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	_, span := otel.Tracer("test").Start(context.Background(), "gpgpu.execute")
	span.End()
	if err := stop(context.Background()); err != nil {
		t.Fatalf("shutdown error = %v", err)
	}

	data, err := os.ReadFile(fname)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(data), "gpgpu.execute") {
		t.Fatalf("trace file does not contain the span: %s", data)
	}
}

func TestInitKeepsFirstProvider(t *testing.T) {
	resetProvider(t)
	dir := t.TempDir()

	if _, err := Init("gpgpu", "0.0.1", filepath.Join(dir, "first.json")); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	second := filepath.Join(dir, "second.json")
	again, err := Init("other", "0.0.2", second)
	if err != nil || again == nil {
		t.Fatalf("second Init() = %v, %v", again != nil, err)
	}
	if _, err := os.Stat(second); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("second Init created %s (stat err = %v)", second, err)
	}
}

func TestShutdownClosesOutputOnce(t *testing.T) {
	resetProvider(t)
	closer := &countingCloser{}

	mu.Lock()
	stop, err := install("gpgpu", "0.0.1", tracetest.NewInMemoryExporter(), closer)
	mu.Unlock()
	if err != nil {
		t.Fatalf("install() error = %v", err)
	}

	if err := stop(context.Background()); err != nil {
		t.Fatalf("shutdown error = %v", err)
	}
	_ = stop(context.Background())
	if closer.closes != 1 {
		t.Errorf("output closed %d times, want 1", closer.closes)
	}
}

func TestInitWithExporter(t *testing.T) {
	resetProvider(t)
	exp := tracetest.NewInMemoryExporter()

	stop, err := InitWithExporter("gpgpu", "0.0.1", exp)
	if err != nil {
		t.Fatalf("InitWithExporter() error = %v", err)
	}
	_, span := otel.Tracer("test").Start(context.Background(), "job")
	span.End()
	if got := exp.GetSpans(); len(got) != 1 || got[0].Name != "job" {
		t.Errorf("exported spans = %v", got)
	}
	if err := stop(context.Background()); err != nil {
		t.Errorf("shutdown error = %v", err)
	}
}
