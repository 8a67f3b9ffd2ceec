// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu implements the tensor.Backend interface in pure Go.
//
// Matrix products go through gonum's float32 BLAS; convolution lowers to
// im2col plus GEMM; everything else is straightforward loops. Batch-level
// loops fan out across goroutines when batches are large enough to pay for
// the scheduling.
package cpu

import (
	"fmt"
	"math"

	"github.com/ASEM000/Osiris/tensor"
)

// Backend is the CPU compute backend.
//
// The zero value is not usable; construct with New.
type Backend struct {
	par parConfig
}

// New creates a CPU backend with parallelism sized to the machine.
func New() *Backend {
	return &Backend{par: defaultParConfig()}
}

// Name returns the backend name.
func (c *Backend) Name() string { return "cpu" }

// broadcastOp applies f element-wise over broadcast operands.
func broadcastOp(a, b *tensor.RawTensor, f func(x, y float32) float32) *tensor.RawTensor {
	ad, bd := a.Data(), b.Data()

	// Fast path: identical shapes.
	if a.Shape().Equal(b.Shape()) {
		out := tensor.MustRaw(a.Shape())
		od := out.Data()
		for i := range od {
			od[i] = f(ad[i], bd[i])
		}
		return out
	}

	outShape, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(err)
	}
	out := tensor.MustRaw(outShape)
	od := out.Data()

	as := broadcastStrides(a.Shape(), a.Strides(), outShape)
	bs := broadcastStrides(b.Shape(), b.Strides(), outShape)

	idx := make([]int, len(outShape))
	ao, bo := 0, 0
	for i := range od {
		od[i] = f(ad[ao], bd[bo])
		// Odometer increment over the output index space.
		for d := len(outShape) - 1; d >= 0; d-- {
			idx[d]++
			ao += as[d]
			bo += bs[d]
			if idx[d] < outShape[d] {
				break
			}
			idx[d] = 0
			ao -= as[d] * outShape[d]
			bo -= bs[d] * outShape[d]
		}
	}
	return out
}

// broadcastStrides aligns a tensor's strides to the broadcast output shape,
// zeroing strides of stretched dimensions.
func broadcastStrides(shape tensor.Shape, strides []int, out tensor.Shape) []int {
	res := make([]int, len(out))
	offset := len(out) - len(shape)
	for i := range shape {
		if shape[i] != 1 {
			res[offset+i] = strides[i]
		}
	}
	return res
}

// Add returns a + b.
func (c *Backend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return broadcastOp(a, b, func(x, y float32) float32 { return x + y })
}

// Sub returns a - b.
func (c *Backend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return broadcastOp(a, b, func(x, y float32) float32 { return x - y })
}

// Mul returns a * b.
func (c *Backend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return broadcastOp(a, b, func(x, y float32) float32 { return x * y })
}

// Div returns a / b.
func (c *Backend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return broadcastOp(a, b, func(x, y float32) float32 { return x / y })
}

func unaryOp(x *tensor.RawTensor, f func(v float32) float32) *tensor.RawTensor {
	out := tensor.MustRaw(x.Shape())
	od, xd := out.Data(), x.Data()
	for i := range od {
		od[i] = f(xd[i])
	}
	return out
}

// AddScalar returns x + s.
func (c *Backend) AddScalar(x *tensor.RawTensor, s float32) *tensor.RawTensor {
	return unaryOp(x, func(v float32) float32 { return v + s })
}

// MulScalar returns x * s.
func (c *Backend) MulScalar(x *tensor.RawTensor, s float32) *tensor.RawTensor {
	return unaryOp(x, func(v float32) float32 { return v * s })
}

// PowScalar returns x^s element-wise.
func (c *Backend) PowScalar(x *tensor.RawTensor, s float32) *tensor.RawTensor {
	if s == 2 {
		return unaryOp(x, func(v float32) float32 { return v * v })
	}
	return unaryOp(x, func(v float32) float32 {
		return float32(math.Pow(float64(v), float64(s)))
	})
}

// Neg returns -x.
func (c *Backend) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp(x, func(v float32) float32 { return -v })
}

// Exp returns e^x.
func (c *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp(x, func(v float32) float32 { return float32(math.Exp(float64(v))) })
}

// Log returns ln(x).
func (c *Backend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp(x, func(v float32) float32 { return float32(math.Log(float64(v))) })
}

// Sqrt returns the square root of x.
func (c *Backend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp(x, func(v float32) float32 { return float32(math.Sqrt(float64(v))) })
}

// Rsqrt returns 1/sqrt(x).
func (c *Backend) Rsqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp(x, func(v float32) float32 { return float32(1 / math.Sqrt(float64(v))) })
}

// Tanh returns the hyperbolic tangent of x.
func (c *Backend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp(x, func(v float32) float32 { return float32(math.Tanh(float64(v))) })
}

// Erf returns the error function of x.
func (c *Backend) Erf(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp(x, func(v float32) float32 { return float32(math.Erf(float64(v))) })
}

// Abs returns |x|.
func (c *Backend) Abs(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp(x, func(v float32) float32 {
		if v < 0 {
			return -v
		}
		return v
	})
}

// Clip limits x to [lo, hi].
func (c *Backend) Clip(x *tensor.RawTensor, lo, hi float32) *tensor.RawTensor {
	if lo > hi {
		panic(fmt.Sprintf("clip: lo %v > hi %v", lo, hi))
	}
	return unaryOp(x, func(v float32) float32 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	})
}
