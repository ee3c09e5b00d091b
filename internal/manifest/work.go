// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package manifest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/gpgpu"
)

// parseValue parses s as an element of type T.
func parseValue[T gpgpu.Element](s string) (T, error) {
	var zero T
	s = strings.TrimSpace(s)
	kind := gpgpu.KindOf[T]()
	bits := kind.Size() * 8

	switch kind {
	case gpgpu.KindInt8, gpgpu.KindInt16, gpgpu.KindInt32, gpgpu.KindInt64:
		v, err := strconv.ParseInt(s, 0, bits)
		if err != nil {
			return zero, err
		}
		return T(v), nil
	case gpgpu.KindUint8, gpgpu.KindUint16, gpgpu.KindUint32, gpgpu.KindUint64:
		v, err := strconv.ParseUint(s, 0, bits)
		if err != nil {
			return zero, err
		}
		return T(v), nil
	default:
		v, err := strconv.ParseFloat(s, bits)
		if err != nil {
			return zero, err
		}
		return T(v), nil
	}
}

// buildInput materializes one input buffer.
func buildInput[T gpgpu.Element](in Input) ([]T, error) {
	if in.Range != nil {
		out := make([]T, 0, in.Range.Len())
		for v := in.Range.Start; v < in.Range.End; v++ {
			x, err := parseValue[T](strconv.FormatInt(v, 10))
			if err != nil {
				return nil, fmt.Errorf("range value %d: %w", v, err)
			}
			out = append(out, x)
		}
		return out, nil
	}

	out := make([]T, len(in.Values))
	for i, s := range in.Values {
		v, err := parseValue[T](s)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// BuildWork converts j to a Work item of type T. T must match j.Type.
func BuildWork[T gpgpu.Element](j *Job) (gpgpu.Work[T], error) {
	if kind := gpgpu.KindOf[T](); kind != j.Kind() {
		return gpgpu.Work[T]{}, fmt.Errorf("manifest: job %q has type %s, not %s", j.Name, j.Type, kind)
	}

	inputs := make([][]T, len(j.Inputs))
	for i, in := range j.Inputs {
		buf, err := buildInput[T](in)
		if err != nil {
			return gpgpu.Work[T]{}, fmt.Errorf("%w: job %q: input %d: %w", ErrInvalid, j.Name, i, err)
		}
		inputs[i] = buf
	}

	w := gpgpu.NewWork(j.Program, j.outputLen(), inputs...)
	if j.Shape != nil {
		w = w.WithShape(gpgpu.LaunchShape{X: j.Shape.X, Y: j.Shape.Y, Z: j.Shape.Z})
	}
	return w, nil
}

// Pending is a submitted job awaiting its result.
type Pending interface {
	// Job returns the job as declared in the manifest.
	Job() *Job

	// Wait blocks for the result and renders it, showing at most limit
	// elements (all when limit <= 0).
	Wait(ctx context.Context, limit int) (string, error)

	// Abandon gives up on the result.
	Abandon()
}

type pending[T gpgpu.Element] struct {
	job    *Job
	future *gpgpu.Future[T]
}

func (p *pending[T]) Job() *Job { return p.job }
func (p *pending[T]) Abandon()  { p.future.Abandon() }

func (p *pending[T]) Wait(ctx context.Context, limit int) (string, error) {
	values, err := p.future.Wait(ctx)
	if err != nil {
		return "", err
	}
	return Render(values, limit), nil
}

func submit[T gpgpu.Element](ctx context.Context, q *gpgpu.Queue, j *Job) (Pending, error) {
	w, err := BuildWork[T](j)
	if err != nil {
		return nil, err
	}
	f, err := gpgpu.Submit(ctx, q, w)
	if err != nil {
		return nil, err
	}
	return &pending[T]{job: j, future: f}, nil
}

// Submit builds j's Work item with the element type it declares and
// submits it to q.
func Submit(ctx context.Context, q *gpgpu.Queue, j *Job) (Pending, error) {
	kind, err := gpgpu.ParseKind(j.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: job %q: %w", ErrInvalid, j.Name, err)
	}
	switch kind {
	case gpgpu.KindInt8:
		return submit[int8](ctx, q, j)
	case gpgpu.KindInt16:
		return submit[int16](ctx, q, j)
	case gpgpu.KindInt32:
		return submit[int32](ctx, q, j)
	case gpgpu.KindInt64:
		return submit[int64](ctx, q, j)
	case gpgpu.KindUint8:
		return submit[uint8](ctx, q, j)
	case gpgpu.KindUint16:
		return submit[uint16](ctx, q, j)
	case gpgpu.KindUint32:
		return submit[uint32](ctx, q, j)
	case gpgpu.KindUint64:
		return submit[uint64](ctx, q, j)
	case gpgpu.KindFloat32:
		return submit[float32](ctx, q, j)
	case gpgpu.KindFloat64:
		return submit[float64](ctx, q, j)
	default:
		return submit[float64](ctx, q, j)
	}
}

// Render formats values as "[a b c]", eliding the middle when there are
// more than limit of them.
func Render[T gpgpu.Element](values []T, limit int) string {
	if limit <= 0 || len(values) <= limit {
		return fmt.Sprint(values)
	}
	head := limit - limit/2
	tail := limit / 2
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(fmt.Sprint(values[:head]), "]"))
	fmt.Fprintf(&b, " ... (%d more) ", len(values)-head-tail)
	b.WriteString(strings.TrimPrefix(fmt.Sprint(values[len(values)-tail:]), "["))
	return b.String()
}
