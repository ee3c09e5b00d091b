// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

// EntryPoint is the kernel entry point every program must expose.
const EntryPoint = "main"

// Device is the execution context: the handle through which programs are
// loaded, buffers are bound and kernels are launched.
//
// A Device is owned by exactly one Loop and is only ever called from that
// Loop's goroutine, so implementations need no internal locking for the
// calls below. The Loop closes the Device when it stops.
//
// Implementations must be comparable, typically a pointer type. A device
// that also has a SetLogger(*slog.Logger) method receives the logger
// installed with SetLogger while a Loop runs it.
type Device interface {
	// Name returns a short backend name for logs ("vulkan", "host").
	Name() string

	// LoadProgram resolves and prepares the program identified by ref.
	LoadProgram(ref string) (Program, error)

	// Run binds k's buffers, launches p and blocks until the device is
	// done. It returns the contents of the output binding.
	Run(p Program, k *Kernel) ([]byte, error)

	// Close releases the device.
	Close() error
}

// Program is a loaded compute program.
type Program interface {
	// Ref returns the reference the program was loaded from.
	Ref() string

	// Release frees per-load resources. The Loop calls it after every run.
	Release()
}

// Access is the kernel-side access mode of a binding.
type Access uint8

const (
	// ReadOnly bindings hold input data.
	ReadOnly Access = iota

	// ReadWrite bindings hold the output.
	ReadWrite
)

// String returns the access mode name.
func (a Access) String() string {
	if a == ReadWrite {
		return "read_write"
	}
	return "read"
}

// Binding is one storage buffer in the kernel's bind group.
type Binding struct {
	// Slot is the @binding index inside group 0.
	Slot uint32

	// Access is ReadOnly for inputs and ReadWrite for the output.
	Access Access

	// Data is the initial contents. Nil for the output binding.
	Data []byte

	// Size is the buffer size in bytes.
	Size uint64
}

// Kernel is one launch: the ordered bind set, the entry point and the
// workgroup counts.
type Kernel struct {
	EntryPoint string
	Bindings   []Binding
	Groups     LaunchShape
}

// Output returns the read-write binding, which by construction is last.
func (k *Kernel) Output() *Binding {
	if len(k.Bindings) == 0 {
		return nil
	}
	return &k.Bindings[len(k.Bindings)-1]
}

// Inputs returns the read-only bindings in slot order.
func (k *Kernel) Inputs() []Binding {
	if len(k.Bindings) == 0 {
		return nil
	}
	return k.Bindings[:len(k.Bindings)-1]
}
