// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package manifest

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/gpgpu"
)

// ErrInvalid is wrapped by every manifest validation error.
var ErrInvalid = errors.New("manifest: invalid")

// Manifest is a list of jobs to submit.
type Manifest struct {
	Jobs []Job `yaml:"jobs"`
}

// Job describes one Work item in text form.
type Job struct {
	Name    string  `yaml:"name"`
	Program string  `yaml:"program"`
	Type    string  `yaml:"type"`
	Inputs  []Input `yaml:"inputs"`

	// OutputLen defaults to the length of the first input.
	OutputLen uint64 `yaml:"output_len"`

	// Shape defaults to gpgpu.DefaultLaunchShape.
	Shape *Shape `yaml:"shape"`
}

// Input is one input buffer: literal values or a half-open integer range.
type Input struct {
	Values []string `yaml:"values"`
	Range  *Range   `yaml:"range"`
}

// Range is [Start, End).
type Range struct {
	Start int64 `yaml:"start"`
	End   int64 `yaml:"end"`
}

// Len returns the number of elements in the range.
func (r Range) Len() int64 {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Shape mirrors gpgpu.LaunchShape.
type Shape struct {
	X uint16 `yaml:"x"`
	Y uint16 `yaml:"y"`
	Z uint16 `yaml:"z"`
}

// maxRange bounds generated inputs.
const maxRange = 1 << 26

// Decode reads a YAML manifest and validates it. Unknown keys are errors.
func Decode(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load decodes the manifest file at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Validate checks the structure of every job. Element values are checked
// when the job is converted to Work.
func (m *Manifest) Validate() error {
	if len(m.Jobs) == 0 {
		return fmt.Errorf("%w: no jobs", ErrInvalid)
	}
	names := make(map[string]bool, len(m.Jobs))
	for i := range m.Jobs {
		j := &m.Jobs[i]
		if j.Name == "" {
			j.Name = fmt.Sprintf("job-%d", i+1)
		}
		if names[j.Name] {
			return fmt.Errorf("%w: duplicate job name %q", ErrInvalid, j.Name)
		}
		names[j.Name] = true

		if err := j.validate(); err != nil {
			return fmt.Errorf("%w: job %q: %w", ErrInvalid, j.Name, err)
		}
	}
	return nil
}

func (j *Job) validate() error {
	if j.Program == "" {
		return errors.New("program is required")
	}
	if _, err := gpgpu.ParseKind(j.Type); err != nil {
		return err
	}
	for n, in := range j.Inputs {
		switch {
		case in.Range != nil && in.Values != nil:
			return fmt.Errorf("input %d: values and range are exclusive", n)
		case in.Range != nil:
			if l := in.Range.Len(); l == 0 || l > maxRange {
				return fmt.Errorf("input %d: range length %d out of bounds", n, l)
			}
		case len(in.Values) == 0:
			return fmt.Errorf("input %d: empty", n)
		}
	}
	if j.OutputLen == 0 && len(j.Inputs) == 0 {
		return errors.New("output_len is required without inputs")
	}
	if j.Shape != nil && (j.Shape.X == 0 || j.Shape.Y == 0 || j.Shape.Z == 0) {
		return fmt.Errorf("shape %dx%dx%d has a zero axis", j.Shape.X, j.Shape.Y, j.Shape.Z)
	}
	return nil
}

// Kind returns the job's element kind.
func (j *Job) Kind() gpgpu.ElementKind {
	k, _ := gpgpu.ParseKind(j.Type)
	return k
}

// count returns the number of elements in the input.
func (in Input) count() int {
	if in.Range != nil {
		return int(min(in.Range.Len(), math.MaxInt32))
	}
	return len(in.Values)
}

// outputLen resolves the default output length.
func (j *Job) outputLen() uint64 {
	if j.OutputLen > 0 || len(j.Inputs) == 0 {
		return j.OutputLen
	}
	return uint64(j.Inputs[0].count()) //nolint:gosec // non-negative
}
