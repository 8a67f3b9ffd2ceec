// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

// Backend defines the compute interface all tensor operations dispatch to.
//
// Operations take and return RawTensors; gradient bookkeeping happens in the
// Tensor wrapper, so backends stay pure compute. Element-wise binary
// operations broadcast their operands NumPy-style on trailing dimensions.
//
// Convolution and pooling use channel-first layout: [N, C, W] for 1D and
// [N, C, H, W] for 2D. Spatial parameters are given per dimension; pad holds
// (before, after) pairs.
type Backend interface {
	// Element-wise binary operations (broadcasting).
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Scalar operations.
	AddScalar(x *RawTensor, s float32) *RawTensor
	MulScalar(x *RawTensor, s float32) *RawTensor
	PowScalar(x *RawTensor, s float32) *RawTensor

	// Element-wise unary operations.
	Neg(x *RawTensor) *RawTensor
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sqrt(x *RawTensor) *RawTensor
	Rsqrt(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor
	Erf(x *RawTensor) *RawTensor
	Abs(x *RawTensor) *RawTensor
	Clip(x *RawTensor, lo, hi float32) *RawTensor

	// Matrix operations.
	MatMul(a, b *RawTensor) *RawTensor      // [M,K] @ [K,N] -> [M,N]
	BatchMatMul(a, b *RawTensor) *RawTensor // [B,M,K] @ [B,K,N] -> [B,M,N]

	// Convolution. Weight layout is [C_out, C_in/groups, ...kernel].
	Conv1D(x, w *RawTensor, stride int, pad [2]int, groups int) *RawTensor
	Conv1DBackward(x, w, grad *RawTensor, stride int, pad [2]int, groups int) (dx, dw *RawTensor)
	Conv2D(x, w *RawTensor, stride [2]int, pad [2][2]int, groups int) *RawTensor
	Conv2DBackward(x, w, grad *RawTensor, stride [2]int, pad [2][2]int, groups int) (dx, dw *RawTensor)

	// Pooling. Max variants also return the flat input index of each window
	// maximum so the backward pass can scatter gradients.
	MaxPool1D(x *RawTensor, kernel, stride int, pad [2]int) (*RawTensor, []int)
	AvgPool1D(x *RawTensor, kernel, stride int, pad [2]int) *RawTensor
	AvgPool1DBackward(grad *RawTensor, xShape Shape, kernel, stride int, pad [2]int) *RawTensor
	MaxPool2D(x *RawTensor, kernel, stride [2]int, pad [2][2]int) (*RawTensor, []int)
	AvgPool2D(x *RawTensor, kernel, stride [2]int, pad [2][2]int) *RawTensor
	AvgPool2DBackward(grad *RawTensor, xShape Shape, kernel, stride [2]int, pad [2][2]int) *RawTensor

	// Shape manipulation.
	Transpose(x *RawTensor, axes ...int) *RawTensor
	Pad(x *RawTensor, pads [][2]int, value float32) *RawTensor
	Slice(x *RawTensor, starts, sizes []int) *RawTensor
	Cat(xs []*RawTensor, dim int) *RawTensor

	// Reductions.
	Sum(x *RawTensor) *RawTensor // scalar result
	SumDim(x *RawTensor, dim int, keep bool) *RawTensor
	MeanDim(x *RawTensor, dim int, keep bool) *RawTensor
	ArgMax(x *RawTensor, dim int) []int
	Softmax(x *RawTensor, dim int) *RawTensor

	// Indexing.
	Take(w *RawTensor, indices []int) *RawTensor // rows of a 2D table

	// Metadata.
	Name() string
}
