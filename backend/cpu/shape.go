// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	"fmt"

	"github.com/ASEM000/Osiris/tensor"
)

// Transpose permutes dimensions according to axes.
func (c *Backend) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	xs := x.Shape()
	if len(axes) != len(xs) {
		panic(fmt.Sprintf("transpose: got %d axes for rank %d", len(axes), len(xs)))
	}
	seen := make([]bool, len(axes))
	outShape := make(tensor.Shape, len(axes))
	inStrides := make([]int, len(axes))
	for i, a := range axes {
		if a < 0 || a >= len(xs) || seen[a] {
			panic(fmt.Sprintf("transpose: invalid axes %v for shape %v", axes, xs))
		}
		seen[a] = true
		outShape[i] = xs[a]
		inStrides[i] = x.Strides()[a]
	}

	out := tensor.MustRaw(outShape)
	od, xd := out.Data(), x.Data()
	idx := make([]int, len(outShape))
	off := 0
	for i := range od {
		od[i] = xd[off]
		for d := len(outShape) - 1; d >= 0; d-- {
			idx[d]++
			off += inStrides[d]
			if idx[d] < outShape[d] {
				break
			}
			idx[d] = 0
			off -= inStrides[d] * outShape[d]
		}
	}
	return out
}

// Pad pads every dimension with (before, after) amounts of value.
func (c *Backend) Pad(x *tensor.RawTensor, pads [][2]int, value float32) *tensor.RawTensor {
	xs := x.Shape()
	if len(pads) != len(xs) {
		panic(fmt.Sprintf("pad: got %d pad pairs for rank %d", len(pads), len(xs)))
	}
	outShape := make(tensor.Shape, len(xs))
	for i, d := range xs {
		outShape[i] = d + pads[i][0] + pads[i][1]
	}

	out := tensor.MustRaw(outShape)
	od, xd := out.Data(), x.Data()
	if value != 0 {
		for i := range od {
			od[i] = value
		}
	}

	// Copy the interior by walking the input index space.
	outStrides := outShape.Strides()
	idx := make([]int, len(xs))
	off := 0
	for i := range xs {
		off += pads[i][0] * outStrides[i]
	}
	for i := range xd {
		od[off] = xd[i]
		for d := len(xs) - 1; d >= 0; d-- {
			idx[d]++
			off += outStrides[d]
			if idx[d] < xs[d] {
				break
			}
			idx[d] = 0
			off -= outStrides[d] * xs[d]
		}
	}
	return out
}

// Slice extracts the sub-tensor starting at starts with the given sizes.
func (c *Backend) Slice(x *tensor.RawTensor, starts, sizes []int) *tensor.RawTensor {
	xs := x.Shape()
	if len(starts) != len(xs) || len(sizes) != len(xs) {
		panic(fmt.Sprintf("slice: starts/sizes rank mismatch for shape %v", xs))
	}
	for i := range starts {
		if starts[i] < 0 || sizes[i] <= 0 || starts[i]+sizes[i] > xs[i] {
			panic(fmt.Sprintf("slice: range [%d, %d) out of bounds for dimension %d (size %d)",
				starts[i], starts[i]+sizes[i], i, xs[i]))
		}
	}

	out := tensor.MustRaw(tensor.Shape(sizes))
	od, xd := out.Data(), x.Data()
	inStrides := x.Strides()
	idx := make([]int, len(xs))
	off := 0
	for i := range starts {
		off += starts[i] * inStrides[i]
	}
	for i := range od {
		od[i] = xd[off]
		for d := len(sizes) - 1; d >= 0; d-- {
			idx[d]++
			off += inStrides[d]
			if idx[d] < sizes[d] {
				break
			}
			idx[d] = 0
			off -= inStrides[d] * sizes[d]
		}
	}
	return out
}

// Cat concatenates tensors along dim. All other dimensions must match.
func (c *Backend) Cat(xs []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(xs) == 0 {
		panic("cat: no tensors given")
	}
	first := xs[0].Shape()
	if dim < 0 || dim >= len(first) {
		panic(fmt.Sprintf("cat: dimension %d out of range for rank %d", dim, len(first)))
	}
	total := 0
	for _, x := range xs {
		s := x.Shape()
		if len(s) != len(first) {
			panic("cat: rank mismatch")
		}
		for i := range s {
			if i != dim && s[i] != first[i] {
				panic(fmt.Sprintf("cat: shape %v incompatible with %v along dim %d", s, first, dim))
			}
		}
		total += s[dim]
	}
	outShape := first.Clone()
	outShape[dim] = total
	out := tensor.MustRaw(outShape)
	od := out.Data()

	outer := 1
	for i := 0; i < dim; i++ {
		outer *= first[i]
	}
	inner := 1
	for i := dim + 1; i < len(first); i++ {
		inner *= first[i]
	}
	outBlock := total * inner

	off := 0
	for _, x := range xs {
		block := x.Shape()[dim] * inner
		xd := x.Data()
		for o := 0; o < outer; o++ {
			copy(od[o*outBlock+off:o*outBlock+off+block], xd[o*block:(o+1)*block])
		}
		off += block
	}
	return out
}
