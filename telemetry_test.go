// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func spanAttr(s sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range s.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestLoopRecordsSpans(t *testing.T) {
	sr := withSpanRecorder(t)

	dev := newFakeDevice(map[string]fakeRun{"copy": copyInput})
	q := NewQueue(4)
	l := Serve(q, dev)

	good, err := Submit(context.Background(), q, NewWork("copy", 1, []int16{3}))
	if err != nil {
		t.Fatal(err)
	}
	bad, err := Submit(context.Background(), q, NewWork[int16]("missing", 1))
	if err != nil {
		t.Fatal(err)
	}
	_, _ = good.Wait(context.Background())
	_, _ = bad.Wait(context.Background())
	q.Close()
	<-l.Done()

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("recorded %d spans, want 2", len(spans))
	}
	for _, s := range spans {
		if s.Name() != "gpgpu.execute" {
			t.Errorf("span name = %q", s.Name())
		}
		if v, ok := spanAttr(s, "gpgpu.job.kind"); !ok || v.AsString() != "i16" {
			t.Errorf("gpgpu.job.kind = %v", v.Emit())
		}
		if v, ok := spanAttr(s, "gpgpu.device"); !ok || v.AsString() != "fake" {
			t.Errorf("gpgpu.device = %v", v.Emit())
		}
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("successful job status = %v", spans[0].Status())
	}
	if spans[1].Status().Code != codes.Error {
		t.Errorf("failed job status = %v, want Error", spans[1].Status())
	}
	if id, _ := spanAttr(spans[0], "gpgpu.job.id"); id.AsString() != good.ID().String() {
		t.Errorf("span job id = %q, want %q", id.AsString(), good.ID())
	}
	if seq, _ := spanAttr(spans[1], "gpgpu.job.seq"); seq.AsInt64() != 2 {
		t.Errorf("second span seq = %d, want 2", seq.AsInt64())
	}
}

func withManualReader(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(mp)
	t.Cleanup(func() {
		otel.SetMeterProvider(prev)
		_ = mp.Shutdown(context.Background())
	})
	return reader
}

// counterTotals sums every int64 sum instrument by name.
func counterTotals(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	totals := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}
	return totals
}

func TestLoopCountsOutcomes(t *testing.T) {
	reader := withManualReader(t)

	release := make(chan struct{})
	dev := newFakeDevice(map[string]fakeRun{
		"copy":  copyInput,
		"panic": func(*Kernel) ([]byte, error) { panic("device lost") },
		"block": func(k *Kernel) ([]byte, error) {
			<-release
			return copyInput(k)
		},
	})
	q := NewQueue(8)
	l := Serve(q, dev)

	abandoned, err := Submit(context.Background(), q, NewWork("block", 1, []uint8{1}))
	if err != nil {
		t.Fatal(err)
	}
	abandoned.Abandon()
	close(release)

	for _, w := range []Work[uint8]{
		NewWork("copy", 1, []uint8{2}),
		NewWork[uint8]("missing", 1),
		NewWork[uint8]("panic", 1),
	} {
		f, err := Submit(context.Background(), q, w)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = f.Wait(context.Background())
	}
	q.Close()
	<-l.Done()

	totals := counterTotals(t, reader)
	s := l.Stats()
	tests := []struct {
		name  string
		want  int64
		stats uint64
	}{
		{"gpgpu.jobs.executed", 2, s.Executed},
		{"gpgpu.jobs.failed", 1, s.Failed},
		{"gpgpu.jobs.abandoned", 1, s.Abandoned},
		{"gpgpu.jobs.panicked", 1, s.Panicked},
	}
	for _, tt := range tests {
		if got := totals[tt.name]; got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, got, tt.want)
		}
		if int64(tt.stats) != tt.want { //nolint:gosec // small counts
			t.Errorf("Stats for %s = %d, want %d", tt.name, tt.stats, tt.want)
		}
	}
}
