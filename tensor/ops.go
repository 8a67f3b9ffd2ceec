// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "fmt"

// reduceTo sums grad down to target, undoing broadcasting: extra leading
// dimensions are summed away and stretched size-1 dimensions are re-collapsed.
func reduceTo[B Backend](grad *RawTensor, target Shape, backend B) *RawTensor {
	g := grad
	for len(g.Shape()) > len(target) {
		g = backend.SumDim(g, 0, false)
	}
	for i, d := range target {
		if g.Shape()[i] != d {
			g = backend.SumDim(g, i, true)
		}
	}
	return g
}

// expandLike broadcasts g to shape by adding it to a zero tensor.
func expandLike[B Backend](g *RawTensor, shape Shape, backend B) *RawTensor {
	return backend.Add(g, MustRaw(shape))
}

// Add returns t + other with broadcasting.
func (t *Tensor[B]) Add(other *Tensor[B]) *Tensor[B] {
	b := t.backend
	out := b.Add(t.raw, other.raw)
	return FromOp(out, b, func(grad *RawTensor) {
		t.AccumGrad(reduceTo(grad, t.Shape(), b))
		other.AccumGrad(reduceTo(grad, other.Shape(), b))
	}, t, other)
}

// Sub returns t - other with broadcasting.
func (t *Tensor[B]) Sub(other *Tensor[B]) *Tensor[B] {
	b := t.backend
	out := b.Sub(t.raw, other.raw)
	return FromOp(out, b, func(grad *RawTensor) {
		t.AccumGrad(reduceTo(grad, t.Shape(), b))
		other.AccumGrad(reduceTo(b.Neg(grad), other.Shape(), b))
	}, t, other)
}

// Mul returns t * other element-wise with broadcasting.
func (t *Tensor[B]) Mul(other *Tensor[B]) *Tensor[B] {
	b := t.backend
	out := b.Mul(t.raw, other.raw)
	return FromOp(out, b, func(grad *RawTensor) {
		t.AccumGrad(reduceTo(b.Mul(grad, other.raw), t.Shape(), b))
		other.AccumGrad(reduceTo(b.Mul(grad, t.raw), other.Shape(), b))
	}, t, other)
}

// Div returns t / other element-wise with broadcasting.
func (t *Tensor[B]) Div(other *Tensor[B]) *Tensor[B] {
	b := t.backend
	out := b.Div(t.raw, other.raw)
	return FromOp(out, b, func(grad *RawTensor) {
		t.AccumGrad(reduceTo(b.Div(grad, other.raw), t.Shape(), b))
		// d/db (a/b) = -a / b^2
		gb := b.Neg(b.Div(b.Mul(grad, t.raw), b.Mul(other.raw, other.raw)))
		other.AccumGrad(reduceTo(gb, other.Shape(), b))
	}, t, other)
}

// AddScalar returns t + s.
func (t *Tensor[B]) AddScalar(s float32) *Tensor[B] {
	b := t.backend
	return FromOp(b.AddScalar(t.raw, s), b, func(grad *RawTensor) {
		t.AccumGrad(grad)
	}, t)
}

// MulScalar returns t * s.
func (t *Tensor[B]) MulScalar(s float32) *Tensor[B] {
	b := t.backend
	return FromOp(b.MulScalar(t.raw, s), b, func(grad *RawTensor) {
		t.AccumGrad(b.MulScalar(grad, s))
	}, t)
}

// PowScalar returns t^s element-wise.
func (t *Tensor[B]) PowScalar(s float32) *Tensor[B] {
	b := t.backend
	out := b.PowScalar(t.raw, s)
	return FromOp(out, b, func(grad *RawTensor) {
		// d/dx x^s = s * x^(s-1)
		d := b.MulScalar(b.PowScalar(t.raw, s-1), s)
		t.AccumGrad(b.Mul(grad, d))
	}, t)
}

// Neg returns -t.
func (t *Tensor[B]) Neg() *Tensor[B] {
	b := t.backend
	return FromOp(b.Neg(t.raw), b, func(grad *RawTensor) {
		t.AccumGrad(b.Neg(grad))
	}, t)
}

// Exp returns e^t element-wise.
func (t *Tensor[B]) Exp() *Tensor[B] {
	b := t.backend
	out := b.Exp(t.raw)
	return FromOp(out, b, func(grad *RawTensor) {
		t.AccumGrad(b.Mul(grad, out))
	}, t)
}

// Log returns the natural logarithm element-wise.
func (t *Tensor[B]) Log() *Tensor[B] {
	b := t.backend
	return FromOp(b.Log(t.raw), b, func(grad *RawTensor) {
		t.AccumGrad(b.Div(grad, t.raw))
	}, t)
}

// Sqrt returns the element-wise square root.
func (t *Tensor[B]) Sqrt() *Tensor[B] {
	b := t.backend
	out := b.Sqrt(t.raw)
	return FromOp(out, b, func(grad *RawTensor) {
		// d/dx sqrt(x) = 1 / (2 sqrt(x))
		t.AccumGrad(b.Div(grad, b.MulScalar(out, 2)))
	}, t)
}

// Rsqrt returns 1/sqrt(t) element-wise.
func (t *Tensor[B]) Rsqrt() *Tensor[B] {
	b := t.backend
	out := b.Rsqrt(t.raw)
	return FromOp(out, b, func(grad *RawTensor) {
		// d/dx x^-1/2 = -1/2 x^-3/2
		d := b.MulScalar(b.Mul(b.Mul(out, out), out), -0.5)
		t.AccumGrad(b.Mul(grad, d))
	}, t)
}

// Tanh returns the element-wise hyperbolic tangent.
func (t *Tensor[B]) Tanh() *Tensor[B] {
	b := t.backend
	out := b.Tanh(t.raw)
	return FromOp(out, b, func(grad *RawTensor) {
		// d/dx tanh(x) = 1 - tanh(x)^2
		d := b.AddScalar(b.Neg(b.Mul(out, out)), 1)
		t.AccumGrad(b.Mul(grad, d))
	}, t)
}

// Abs returns |t| element-wise.
func (t *Tensor[B]) Abs() *Tensor[B] {
	b := t.backend
	out := b.Abs(t.raw)
	return FromOp(out, b, func(grad *RawTensor) {
		sign := MustRaw(t.Shape())
		sd, xd := sign.Data(), t.raw.Data()
		for i, v := range xd {
			switch {
			case v > 0:
				sd[i] = 1
			case v < 0:
				sd[i] = -1
			}
		}
		t.AccumGrad(b.Mul(grad, sign))
	}, t)
}

// Apply maps f element-wise. df gives the derivative at each input value and
// is used by the backward pass; pass nil to mark the op non-differentiable.
func Apply[B Backend](t *Tensor[B], f, df func(float32) float32) *Tensor[B] {
	b := t.backend
	out := MustRaw(t.Shape())
	od, xd := out.Data(), t.raw.Data()
	for i, v := range xd {
		od[i] = f(v)
	}
	if df == nil {
		return New(out, b)
	}
	return FromOp(out, b, func(grad *RawTensor) {
		d := MustRaw(t.Shape())
		dd := d.Data()
		for i, v := range xd {
			dd[i] = df(v)
		}
		t.AccumGrad(b.Mul(grad, d))
	}, t)
}

// MatMul returns the matrix product of two 2-D tensors.
func (t *Tensor[B]) MatMul(other *Tensor[B]) *Tensor[B] {
	b := t.backend
	out := b.MatMul(t.raw, other.raw)
	return FromOp(out, b, func(grad *RawTensor) {
		t.AccumGrad(b.MatMul(grad, b.Transpose(other.raw, 1, 0)))
		other.AccumGrad(b.MatMul(b.Transpose(t.raw, 1, 0), grad))
	}, t, other)
}

// BatchMatMul returns the batched matrix product of two 3-D tensors.
func (t *Tensor[B]) BatchMatMul(other *Tensor[B]) *Tensor[B] {
	b := t.backend
	out := b.BatchMatMul(t.raw, other.raw)
	return FromOp(out, b, func(grad *RawTensor) {
		t.AccumGrad(b.BatchMatMul(grad, b.Transpose(other.raw, 0, 2, 1)))
		other.AccumGrad(b.BatchMatMul(b.Transpose(t.raw, 0, 2, 1), grad))
	}, t, other)
}

// Conv1D convolves t [N, C_in, W] with weight [C_out, C_in/groups, K].
func (t *Tensor[B]) Conv1D(weight *Tensor[B], stride int, pad [2]int, groups int) *Tensor[B] {
	b := t.backend
	out := b.Conv1D(t.raw, weight.raw, stride, pad, groups)
	return FromOp(out, b, func(grad *RawTensor) {
		dx, dw := b.Conv1DBackward(t.raw, weight.raw, grad, stride, pad, groups)
		t.AccumGrad(dx)
		weight.AccumGrad(dw)
	}, t, weight)
}

// Conv2D convolves t [N, C_in, H, W] with weight [C_out, C_in/groups, KH, KW].
func (t *Tensor[B]) Conv2D(weight *Tensor[B], stride [2]int, pad [2][2]int, groups int) *Tensor[B] {
	b := t.backend
	out := b.Conv2D(t.raw, weight.raw, stride, pad, groups)
	return FromOp(out, b, func(grad *RawTensor) {
		dx, dw := b.Conv2DBackward(t.raw, weight.raw, grad, stride, pad, groups)
		t.AccumGrad(dx)
		weight.AccumGrad(dw)
	}, t, weight)
}

// MaxPool1D applies max pooling over the last dimension of [N, C, W].
func (t *Tensor[B]) MaxPool1D(kernel, stride int, pad [2]int) *Tensor[B] {
	b := t.backend
	out, idx := b.MaxPool1D(t.raw, kernel, stride, pad)
	return FromOp(out, b, func(grad *RawTensor) {
		dx := MustRaw(t.Shape())
		dd, gd := dx.Data(), grad.Data()
		for i, src := range idx {
			if src >= 0 {
				dd[src] += gd[i]
			}
		}
		t.AccumGrad(dx)
	}, t)
}

// AvgPool1D applies average pooling over the last dimension of [N, C, W].
func (t *Tensor[B]) AvgPool1D(kernel, stride int, pad [2]int) *Tensor[B] {
	b := t.backend
	out := b.AvgPool1D(t.raw, kernel, stride, pad)
	return FromOp(out, b, func(grad *RawTensor) {
		t.AccumGrad(b.AvgPool1DBackward(grad, t.Shape(), kernel, stride, pad))
	}, t)
}

// MaxPool2D applies max pooling over the spatial dimensions of [N, C, H, W].
func (t *Tensor[B]) MaxPool2D(kernel, stride [2]int, pad [2][2]int) *Tensor[B] {
	b := t.backend
	out, idx := b.MaxPool2D(t.raw, kernel, stride, pad)
	return FromOp(out, b, func(grad *RawTensor) {
		dx := MustRaw(t.Shape())
		dd, gd := dx.Data(), grad.Data()
		for i, src := range idx {
			if src >= 0 {
				dd[src] += gd[i]
			}
		}
		t.AccumGrad(dx)
	}, t)
}

// AvgPool2D applies average pooling over the spatial dimensions of [N, C, H, W].
func (t *Tensor[B]) AvgPool2D(kernel, stride [2]int, pad [2][2]int) *Tensor[B] {
	b := t.backend
	out := b.AvgPool2D(t.raw, kernel, stride, pad)
	return FromOp(out, b, func(grad *RawTensor) {
		t.AccumGrad(b.AvgPool2DBackward(grad, t.Shape(), kernel, stride, pad))
	}, t)
}

// Transpose permutes dimensions. With no arguments a 2-D tensor is
// transposed; otherwise axes must be a permutation of the dimensions.
func (t *Tensor[B]) Transpose(axes ...int) *Tensor[B] {
	if len(axes) == 0 {
		if len(t.Shape()) != 2 {
			panic(fmt.Sprintf("Transpose: implicit transpose needs a 2D tensor, got %v", t.Shape()))
		}
		axes = []int{1, 0}
	}
	b := t.backend
	out := b.Transpose(t.raw, axes...)
	return FromOp(out, b, func(grad *RawTensor) {
		inverse := make([]int, len(axes))
		for i, a := range axes {
			inverse[a] = i
		}
		t.AccumGrad(b.Transpose(grad, inverse...))
	}, t)
}

// Reshape returns a tensor viewing the same data with a new shape.
func (t *Tensor[B]) Reshape(shape ...int) *Tensor[B] {
	b := t.backend
	out := t.raw.Reshape(Shape(shape))
	return FromOp(out, b, func(grad *RawTensor) {
		t.AccumGrad(grad.Reshape(t.Shape()))
	}, t)
}

// Pad pads every dimension with (before, after) amounts of value.
func (t *Tensor[B]) Pad(pads [][2]int, value float32) *Tensor[B] {
	b := t.backend
	out := b.Pad(t.raw, pads, value)
	return FromOp(out, b, func(grad *RawTensor) {
		starts := make([]int, len(pads))
		sizes := make([]int, len(pads))
		for i, p := range pads {
			starts[i] = p[0]
			sizes[i] = t.Shape()[i]
		}
		t.AccumGrad(b.Slice(grad, starts, sizes))
	}, t)
}

// Slice extracts the sub-tensor starting at starts with the given sizes.
func (t *Tensor[B]) Slice(starts, sizes []int) *Tensor[B] {
	b := t.backend
	out := b.Slice(t.raw, starts, sizes)
	return FromOp(out, b, func(grad *RawTensor) {
		pads := make([][2]int, len(starts))
		for i := range starts {
			pads[i] = [2]int{starts[i], t.Shape()[i] - starts[i] - sizes[i]}
		}
		t.AccumGrad(b.Pad(grad, pads, 0))
	}, t)
}

// Narrow slices length elements along dim starting at start.
func (t *Tensor[B]) Narrow(dim, start, length int) *Tensor[B] {
	starts := make([]int, len(t.Shape()))
	sizes := t.Shape().Clone()
	starts[dim] = start
	sizes[dim] = length
	return t.Slice(starts, []int(sizes))
}

// Cat concatenates tensors along dim.
func Cat[B Backend](tensors []*Tensor[B], dim int) *Tensor[B] {
	if len(tensors) == 0 {
		panic("Cat: no tensors given")
	}
	b := tensors[0].backend
	raws := make([]*RawTensor, len(tensors))
	for i, x := range tensors {
		raws[i] = x.raw
	}
	out := b.Cat(raws, dim)
	return FromOp(out, b, func(grad *RawTensor) {
		off := 0
		for _, x := range tensors {
			g := b.Slice(grad, sliceStarts(grad.Shape(), dim, off), sliceSizes(grad.Shape(), dim, x.Shape()[dim]))
			x.AccumGrad(g)
			off += x.Shape()[dim]
		}
	}, tensors...)
}

func sliceStarts(shape Shape, dim, start int) []int {
	starts := make([]int, len(shape))
	starts[dim] = start
	return starts
}

func sliceSizes(shape Shape, dim, length int) []int {
	sizes := shape.Clone()
	sizes[dim] = length
	return sizes
}

// Sum reduces to a scalar.
func (t *Tensor[B]) Sum() *Tensor[B] {
	b := t.backend
	out := b.Sum(t.raw)
	return FromOp(out, b, func(grad *RawTensor) {
		t.AccumGrad(expandLike(grad, t.Shape(), b))
	}, t)
}

// Mean reduces to the scalar average.
func (t *Tensor[B]) Mean() *Tensor[B] {
	return t.Sum().MulScalar(1 / float32(t.NumElements()))
}

// SumDim sums along dim. With keep the reduced dimension stays as size 1.
func (t *Tensor[B]) SumDim(dim int, keep bool) *Tensor[B] {
	b := t.backend
	dim = normalizeDim(dim, len(t.Shape()))
	out := b.SumDim(t.raw, dim, keep)
	return FromOp(out, b, func(grad *RawTensor) {
		g := grad
		if !keep {
			kept := t.Shape().Clone()
			kept[dim] = 1
			g = g.Reshape(kept)
		}
		t.AccumGrad(expandLike(g, t.Shape(), b))
	}, t)
}

// MeanDim averages along dim. With keep the reduced dimension stays as size 1.
func (t *Tensor[B]) MeanDim(dim int, keep bool) *Tensor[B] {
	dim = normalizeDim(dim, len(t.Shape()))
	return t.SumDim(dim, keep).MulScalar(1 / float32(t.Shape()[dim]))
}

// Softmax applies the softmax function along dim.
func (t *Tensor[B]) Softmax(dim int) *Tensor[B] {
	b := t.backend
	dim = normalizeDim(dim, len(t.Shape()))
	out := b.Softmax(t.raw, dim)
	return FromOp(out, b, func(grad *RawTensor) {
		// dx = (dy - sum(dy * y, dim)) * y
		inner := b.SumDim(b.Mul(grad, out), dim, true)
		t.AccumGrad(b.Mul(b.Sub(grad, inner), out))
	}, t)
}

// ArgMax returns the index of the maximum along dim. Not differentiable.
func (t *Tensor[B]) ArgMax(dim int) []int {
	return t.backend.ArgMax(t.raw, normalizeDim(dim, len(t.Shape())))
}

// Take gathers rows of a 2-D table: the result row i is t[indices[i]].
// Used by embedding lookups; gradients scatter-add back into the table.
func (t *Tensor[B]) Take(indices []int) *Tensor[B] {
	b := t.backend
	out := b.Take(t.raw, indices)
	return FromOp(out, b, func(grad *RawTensor) {
		dw := MustRaw(t.Shape())
		cols := t.Shape()[1]
		dd, gd := dw.Data(), grad.Data()
		for i, row := range indices {
			for j := 0; j < cols; j++ {
				dd[row*cols+j] += gd[i*cols+j]
			}
		}
		t.AccumGrad(dw)
	}, t)
}

func normalizeDim(dim, rank int) int {
	if dim < 0 {
		dim += rank
	}
	if dim < 0 || dim >= rank {
		panic(fmt.Sprintf("dimension %d out of range for rank %d", dim, rank))
	}
	return dim
}
