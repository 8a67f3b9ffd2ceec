// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	"fmt"
	"math"

	"github.com/ASEM000/Osiris/tensor"
)

// dimSplit factors a shape around dim into (outer, d, inner) extents.
func dimSplit(shape tensor.Shape, dim int) (outer, d, inner int) {
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("reduce: dimension %d out of range for shape %v", dim, shape))
	}
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, shape[dim], inner
}

func reducedShape(shape tensor.Shape, dim int, keep bool) tensor.Shape {
	if keep {
		out := shape.Clone()
		out[dim] = 1
		return out
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	for i, d := range shape {
		if i != dim {
			out = append(out, d)
		}
	}
	return out
}

// Sum reduces the whole tensor to a scalar.
func (c *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	out := tensor.MustRaw(tensor.Shape{})
	var acc float32
	for _, v := range x.Data() {
		acc += v
	}
	out.Data()[0] = acc
	return out
}

// SumDim sums along dim.
func (c *Backend) SumDim(x *tensor.RawTensor, dim int, keep bool) *tensor.RawTensor {
	outer, d, inner := dimSplit(x.Shape(), dim)
	out := tensor.MustRaw(reducedShape(x.Shape(), dim, keep))
	od, xd := out.Data(), x.Data()
	for o := 0; o < outer; o++ {
		for j := 0; j < d; j++ {
			base := (o*d + j) * inner
			obase := o * inner
			for i := 0; i < inner; i++ {
				od[obase+i] += xd[base+i]
			}
		}
	}
	return out
}

// MeanDim averages along dim.
func (c *Backend) MeanDim(x *tensor.RawTensor, dim int, keep bool) *tensor.RawTensor {
	_, d, _ := dimSplit(x.Shape(), dim)
	out := c.SumDim(x, dim, keep)
	inv := 1 / float32(d)
	od := out.Data()
	for i := range od {
		od[i] *= inv
	}
	return out
}

// ArgMax returns, for every slice along dim, the position of its maximum.
func (c *Backend) ArgMax(x *tensor.RawTensor, dim int) []int {
	outer, d, inner := dimSplit(x.Shape(), dim)
	xd := x.Data()
	idx := make([]int, outer*inner)
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			best := float32(math.Inf(-1))
			arg := 0
			for j := 0; j < d; j++ {
				if v := xd[(o*d+j)*inner+i]; v > best {
					best = v
					arg = j
				}
			}
			idx[o*inner+i] = arg
		}
	}
	return idx
}

// Softmax applies a numerically stable softmax along dim.
func (c *Backend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	outer, d, inner := dimSplit(x.Shape(), dim)
	out := tensor.MustRaw(x.Shape())
	od, xd := out.Data(), x.Data()
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			maxV := float32(math.Inf(-1))
			for j := 0; j < d; j++ {
				if v := xd[(o*d+j)*inner+i]; v > maxV {
					maxV = v
				}
			}
			var sum float32
			for j := 0; j < d; j++ {
				e := float32(math.Exp(float64(xd[(o*d+j)*inner+i] - maxV)))
				od[(o*d+j)*inner+i] = e
				sum += e
			}
			inv := 1 / sum
			for j := 0; j < d; j++ {
				od[(o*d+j)*inner+i] *= inv
			}
		}
	}
	return out
}

// Take gathers rows of a 2-D table: result row i is w[indices[i]].
func (c *Backend) Take(w *tensor.RawTensor, indices []int) *tensor.RawTensor {
	ws := w.Shape()
	if len(ws) != 2 {
		panic(fmt.Sprintf("take: need a 2D table, got %v", ws))
	}
	rows, cols := ws[0], ws[1]
	out := tensor.MustRaw(tensor.Shape{len(indices), cols})
	od, wd := out.Data(), w.Data()
	for i, row := range indices {
		if row < 0 || row >= rows {
			panic(fmt.Sprintf("take: index %d out of range for table with %d rows", row, rows))
		}
		copy(od[i*cols:(i+1)*cols], wd[row*cols:(row+1)*cols])
	}
	return out
}
