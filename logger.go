// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for gpgpu, its devices and sub-packages.
// By default gpgpu produces no log output. Pass nil to restore silence.
//
// Log levels used by gpgpu:
//   - [slog.LevelDebug]: per-job diagnostics, abandoned receivers
//   - [slog.LevelInfo]: lifecycle events (device opened, loop started/stopped)
//   - [slog.LevelWarn]: failed jobs
//   - [slog.LevelError]: recovered device panics
//
// Example:
//
//	gpgpu.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	devicesMu.Lock()
	defer devicesMu.Unlock()
	for d := range devices {
		propagateLogger(d, l)
	}
}

// Logger returns the current logger. Device packages call this to share
// the same configuration without an import cycle.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by devices that keep their own logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// devices holds the devices of running loops so SetLogger can reach them.
var (
	devicesMu sync.Mutex
	devices   = make(map[Device]struct{})
)

func trackDevice(d Device) {
	devicesMu.Lock()
	defer devicesMu.Unlock()
	devices[d] = struct{}{}
	propagateLogger(d, Logger())
}

func untrackDevice(d Device) {
	devicesMu.Lock()
	defer devicesMu.Unlock()
	delete(devices, d)
}

func propagateLogger(d Device, l *slog.Logger) {
	if ls, ok := d.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
