// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/gogpu/gpgpu"

// instruments groups the OpenTelemetry handles used by a Loop. They resolve
// against the global providers, which are no-ops until the host installs
// an SDK (see internal/tracing).
type instruments struct {
	tracer    trace.Tracer
	executed  metric.Int64Counter
	failed    metric.Int64Counter
	abandoned metric.Int64Counter
	panicked  metric.Int64Counter
}

func newInstruments() *instruments {
	meter := otel.Meter(instrumentationName)
	ins := &instruments{tracer: otel.Tracer(instrumentationName)}

	var err error
	if ins.executed, err = meter.Int64Counter("gpgpu.jobs.executed",
		metric.WithDescription("Jobs that produced a result")); err != nil {
		Logger().Warn("gpgpu: counter unavailable", "name", "gpgpu.jobs.executed", "err", err)
	}
	if ins.failed, err = meter.Int64Counter("gpgpu.jobs.failed",
		metric.WithDescription("Jobs that failed to load or execute")); err != nil {
		Logger().Warn("gpgpu: counter unavailable", "name", "gpgpu.jobs.failed", "err", err)
	}
	if ins.abandoned, err = meter.Int64Counter("gpgpu.jobs.abandoned",
		metric.WithDescription("Results discarded because the receiver was abandoned")); err != nil {
		Logger().Warn("gpgpu: counter unavailable", "name", "gpgpu.jobs.abandoned", "err", err)
	}
	if ins.panicked, err = meter.Int64Counter("gpgpu.jobs.panicked",
		metric.WithDescription("Jobs whose device panicked; the handle was closed without a value")); err != nil {
		Logger().Warn("gpgpu: counter unavailable", "name", "gpgpu.jobs.panicked", "err", err)
	}
	return ins
}

// startJob opens the span covering one job's execution.
func (ins *instruments) startJob(env Envelope, seq uint64, device string) (context.Context, trace.Span) {
	return ins.tracer.Start(context.Background(), "gpgpu.execute",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("gpgpu.job.id", env.ID().String()),
			attribute.String("gpgpu.job.kind", env.Kind().String()),
			attribute.String("gpgpu.job.program", env.Program()),
			attribute.Int64("gpgpu.job.seq", int64(seq)), //nolint:gosec // sequence numbers stay far below MaxInt64
			attribute.String("gpgpu.device", device),
		))
}

// endJob records the job outcome on span and the counters.
func (ins *instruments) endJob(ctx context.Context, span trace.Span, env Envelope, err error, delivered bool) {
	attrs := metric.WithAttributes(attribute.String("gpgpu.job.kind", env.Kind().String()))
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		add(ctx, ins.failed, attrs)
	default:
		span.SetStatus(codes.Ok, "")
		add(ctx, ins.executed, attrs)
	}
	if !delivered {
		span.AddEvent("receiver abandoned")
		add(ctx, ins.abandoned, attrs)
	}
	span.End()
}

// panicJob records a recovered device panic. It is counted apart from
// failed jobs, matching Stats.
func (ins *instruments) panicJob(ctx context.Context, span trace.Span, env Envelope, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	add(ctx, ins.panicked, metric.WithAttributes(attribute.String("gpgpu.job.kind", env.Kind().String())))
	span.End()
}

func add(ctx context.Context, c metric.Int64Counter, opts ...metric.AddOption) {
	if c != nil {
		c.Add(ctx, 1, opts...)
	}
}
