// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads the gpgpu command configuration with viper and
// validates it with go-playground/validator.
//
// A YAML file mirrors the structure of Config:
//
//	queue:
//	  capacity: 100
//	device:
//	  backend: auto        # auto | vulkan | host
//	  fence_timeout: 5s
//	  program_cache: 64
//	log:
//	  level: info          # debug | info | warn | error
//	  format: text         # text | json
//	tracing:
//	  enabled: false
//	  output: ""           # file path, empty for stdout
//
// Every key can be overridden from the environment, upper-cased with dots
// replaced by underscores: GPGPU_DEVICE_BACKEND=host.
package config
