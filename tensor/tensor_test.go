// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ASEM000/Osiris/backend/cpu"
	"github.com/ASEM000/Osiris/tensor"
)

func leaf(t *testing.T, data []float32, shape tensor.Shape) *tensor.Tensor[*cpu.Backend] {
	t.Helper()
	x, err := tensor.FromSlice(data, shape, cpu.New())
	require.NoError(t, err)
	x.SetRequiresGrad(true)
	return x
}

func TestAddMulBackward(t *testing.T) {
	// z = (a + b) * a, dz/da = 2a + b, dz/db = a
	a := leaf(t, []float32{1, 2, 3}, tensor.Shape{3})
	b := leaf(t, []float32{4, 5, 6}, tensor.Shape{3})

	z := a.Add(b).Mul(a).Sum()
	z.Backward()

	wantA := []float32{6, 9, 12}
	wantB := []float32{1, 2, 3}
	for i := range wantA {
		assert.InDelta(t, wantA[i], a.Grad().Data()[i], 1e-5)
		assert.InDelta(t, wantB[i], b.Grad().Data()[i], 1e-5)
	}
}

func TestBroadcastBackward(t *testing.T) {
	// Broadcasting [2,3] + [3] must reduce the bias gradient back to [3].
	x := leaf(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	bias := leaf(t, []float32{10, 20, 30}, tensor.Shape{3})

	x.Add(bias).Sum().Backward()

	require.NotNil(t, bias.Grad())
	assert.True(t, bias.Grad().Shape().Equal(tensor.Shape{3}))
	for _, g := range bias.Grad().Data() {
		assert.InDelta(t, 2.0, g, 1e-5) // each bias entry feeds two rows
	}
}

func TestMatMulBackward(t *testing.T) {
	a := leaf(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := leaf(t, []float32{5, 6, 7, 8}, tensor.Shape{2, 2})

	c := a.MatMul(b)
	want := []float32{19, 22, 43, 50}
	for i, w := range want {
		assert.InDelta(t, w, c.Data()[i], 1e-4)
	}

	c.Sum().Backward()
	// dA = ones @ B^T, each row of dA is the row sums of B.
	wantDA := []float32{11, 15, 11, 15}
	wantDB := []float32{4, 4, 6, 6}
	for i := range wantDA {
		assert.InDelta(t, wantDA[i], a.Grad().Data()[i], 1e-4)
		assert.InDelta(t, wantDB[i], b.Grad().Data()[i], 1e-4)
	}
}

func TestExpLogChain(t *testing.T) {
	// y = log(exp(x)) = x, so dy/dx = 1.
	x := leaf(t, []float32{0.5, 1.5}, tensor.Shape{2})
	x.Exp().Log().Sum().Backward()
	for _, g := range x.Grad().Data() {
		assert.InDelta(t, 1.0, g, 1e-4)
	}
}

func TestSoftmaxBackward(t *testing.T) {
	x := leaf(t, []float32{1, 2, 3}, tensor.Shape{1, 3})
	y := x.Softmax(-1)

	var sum float32
	for _, v := range y.Data() {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-5)

	// The gradient of sum(softmax) is zero, softmax outputs always sum to 1.
	y.Sum().Backward()
	for _, g := range x.Grad().Data() {
		assert.InDelta(t, 0.0, g, 1e-5)
	}
}

func TestSumDimKeep(t *testing.T) {
	x := leaf(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	s := x.SumDim(1, true)
	require.True(t, s.Shape().Equal(tensor.Shape{2, 1}))
	assert.InDelta(t, 6.0, s.Data()[0], 1e-5)
	assert.InDelta(t, 15.0, s.Data()[1], 1e-5)

	s.Sum().Backward()
	for _, g := range x.Grad().Data() {
		assert.InDelta(t, 1.0, g, 1e-5)
	}
}

func TestReshapeTransposeBackward(t *testing.T) {
	x := leaf(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	y := x.Transpose()
	require.True(t, y.Shape().Equal(tensor.Shape{3, 2}))
	assert.InDelta(t, 1.0, y.At(0, 0), 1e-6)
	assert.InDelta(t, 4.0, y.At(0, 1), 1e-6)
	assert.InDelta(t, 2.0, y.At(1, 0), 1e-6)

	y.Sum().Backward()
	for _, g := range x.Grad().Data() {
		assert.InDelta(t, 1.0, g, 1e-5)
	}
}

func TestNarrowCatRoundTrip(t *testing.T) {
	x := leaf(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	left := x.Narrow(1, 0, 1)
	right := x.Narrow(1, 1, 2)
	back := tensor.Cat([]*tensor.Tensor[*cpu.Backend]{left, right}, 1)

	require.True(t, back.Shape().Equal(tensor.Shape{2, 3}))
	for i, v := range x.Data() {
		assert.InDelta(t, v, back.Data()[i], 1e-6)
	}

	back.Sum().Backward()
	for _, g := range x.Grad().Data() {
		assert.InDelta(t, 1.0, g, 1e-5)
	}
}

func TestNoGrad(t *testing.T) {
	x := leaf(t, []float32{1, 2}, tensor.Shape{2})
	var y *tensor.Tensor[*cpu.Backend]
	tensor.NoGrad(func() {
		y = x.MulScalar(3)
	})
	y.Backward()
	assert.Nil(t, x.Grad(), "no gradient should flow through NoGrad")
}

func TestApplyNumericGradient(t *testing.T) {
	// Check the analytic tanh derivative against finite differences.
	vals := []float32{-1.2, -0.3, 0.0, 0.7, 2.1}
	x := leaf(t, vals, tensor.Shape{5})
	x.Tanh().Sum().Backward()

	const eps = 1e-3
	for i, v := range vals {
		fd := (math.Tanh(float64(v)+eps) - math.Tanh(float64(v)-eps)) / (2 * eps)
		assert.InDelta(t, fd, float64(x.Grad().Data()[i]), 1e-3, "tanh grad at %d", i)
	}
}

func TestDetach(t *testing.T) {
	x := leaf(t, []float32{2}, tensor.Shape{1})
	y := x.MulScalar(3).Detach().MulScalar(2)
	y.Backward()
	assert.Nil(t, x.Grad())
}

func TestGradAccumulation(t *testing.T) {
	x := leaf(t, []float32{1, 2}, tensor.Shape{2})
	y := x.Add(x) // x contributes twice
	y.Sum().Backward()
	for _, g := range x.Grad().Data() {
		assert.InDelta(t, 2.0, g, 1e-5)
	}
}
