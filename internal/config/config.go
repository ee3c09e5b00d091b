// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"io"
	"log/slog"
	"time"
)

// Config holds the gpgpu command configuration.
type Config struct {
	Queue   QueueConfig   `mapstructure:"queue"`
	Device  DeviceConfig  `mapstructure:"device"`
	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// QueueConfig configures the submission queue.
type QueueConfig struct {
	Capacity int `mapstructure:"capacity" validate:"gte=1,lte=10000"`
}

// DeviceConfig selects and tunes the compute device.
type DeviceConfig struct {
	Backend      string        `mapstructure:"backend" validate:"required,oneof=auto vulkan host"`
	FenceTimeout time.Duration `mapstructure:"fence_timeout" validate:"gt=0"`
	ProgramCache int           `mapstructure:"program_cache" validate:"gte=-1"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// TracingConfig configures the OpenTelemetry stdout exporter.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Output is a file path for spans; empty means stdout.
	Output string `mapstructure:"output"`
}

// SlogLevel maps Level to a slog.Level.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a logger writing to w in the configured format.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
