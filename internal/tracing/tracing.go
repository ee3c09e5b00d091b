// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package tracing installs the OpenTelemetry SDK tracer provider used by
// the gpgpu command. Spans are written by the stdout exporter, either to
// os.Stdout or to a file.
package tracing

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	mu       sync.Mutex
	provider *sdktrace.TracerProvider
	shutdown func(context.Context) error
)

// Init installs a global tracer provider exporting to outputFile, or to
// os.Stdout when outputFile is empty. Only the first successful call has
// an effect; later calls open nothing and return the first shutdown.
//
// The returned function flushes and shuts the provider down, then closes
// the output file.
func Init(serviceName, serviceVersion, outputFile string) (func(context.Context) error, error) {
	mu.Lock()
	defer mu.Unlock()
	if provider != nil {
		return shutdown, nil
	}

	var w io.Writer = os.Stdout
	var closer io.Closer
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return nil, err
		}
		w, closer = f, f
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}
	return install(serviceName, serviceVersion, exporter, closer)
}

// InitWithExporter is Init with a caller-supplied exporter.
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) (func(context.Context) error, error) {
	mu.Lock()
	defer mu.Unlock()
	if provider != nil {
		return shutdown, nil
	}
	return install(serviceName, serviceVersion, exporter, nil)
}

// install builds and registers the provider. closer, if set, is closed
// once by the returned shutdown. mu must be held.
func install(serviceName, serviceVersion string, exporter sdktrace.SpanExporter, closer io.Closer) (func(context.Context) error, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		),
	)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	var closeOnce sync.Once
	provider = tp
	shutdown = func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if closer != nil {
			closeOnce.Do(func() {
				err = errors.Join(err, closer.Close())
			})
		}
		return err
	}
	return shutdown, nil
}
