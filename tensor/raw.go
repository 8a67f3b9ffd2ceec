// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "fmt"

// RawTensor is the low-level tensor representation: a contiguous row-major
// float32 buffer plus its shape. Backends operate on RawTensors; the typed
// Tensor wrapper layers gradient tracking on top.
type RawTensor struct {
	data   []float32
	shape  Shape
	stride []int
}

// NewRaw allocates a zero-filled RawTensor with the given shape.
func NewRaw(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &RawTensor{
		data:   make([]float32, shape.NumElements()),
		shape:  shape.Clone(),
		stride: shape.Strides(),
	}, nil
}

// MustRaw allocates a zero-filled RawTensor and panics on an invalid shape.
// Backends use it for outputs whose shapes they have already validated.
func MustRaw(shape Shape) *RawTensor {
	r, err := NewRaw(shape)
	if err != nil {
		panic(err)
	}
	return r
}

// RawFromSlice wraps data in a RawTensor of the given shape. The slice is
// copied so the caller keeps ownership of its buffer.
func RawFromSlice(data []float32, shape Shape) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, got %d", shape, shape.NumElements(), len(data))
	}
	r, err := NewRaw(shape)
	if err != nil {
		return nil, err
	}
	copy(r.data, data)
	return r, nil
}

// Data returns the underlying buffer. The slice aliases tensor memory;
// writes through it are visible to every view of this tensor.
func (r *RawTensor) Data() []float32 {
	return r.data
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the row-major memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the buffer size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * 4
}

// Clone returns a deep copy.
func (r *RawTensor) Clone() *RawTensor {
	out := MustRaw(r.shape)
	copy(out.data, r.data)
	return out
}

// Reshape returns a view with a new shape sharing the same buffer. The
// element count must be unchanged.
func (r *RawTensor) Reshape(shape Shape) *RawTensor {
	if shape.NumElements() != r.NumElements() {
		panic(fmt.Sprintf("reshape: cannot view %v as %v", r.shape, shape))
	}
	return &RawTensor{data: r.data, shape: shape.Clone(), stride: shape.Strides()}
}

// At returns the element at the given indices.
func (r *RawTensor) At(indices ...int) float32 {
	return r.data[r.offset(indices)]
}

// SetAt stores value at the given indices.
func (r *RawTensor) SetAt(value float32, indices ...int) {
	r.data[r.offset(indices)] = value
}

func (r *RawTensor) offset(indices []int) int {
	if len(indices) != len(r.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(r.shape), len(indices)))
	}
	off := 0
	for i, idx := range indices {
		if idx < 0 || idx >= r.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, r.shape[i]))
		}
		off += idx * r.stride[i]
	}
	return off
}
