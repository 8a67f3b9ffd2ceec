// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ASEM000/Osiris/backend/cpu"
	"github.com/ASEM000/Osiris/tensor"
)

func input(t *testing.T, data []float32, shape tensor.Shape) *tensor.Tensor[*cpu.Backend] {
	t.Helper()
	x, err := tensor.FromSlice(data, shape, cpu.New())
	require.NoError(t, err)
	return x
}

func TestLinearForward(t *testing.T) {
	backend := cpu.New()
	l := NewLinear(2, 3, backend)

	// Overwrite the random init with known values: W[in, out].
	copy(l.Weight.Tensor().Data(), []float32{1, 2, 3, 4, 5, 6})
	copy(l.Bias.Tensor().Data(), []float32{0.5, 0.5, 0.5})

	out := l.Forward(input(t, []float32{1, 1}, tensor.Shape{1, 2}))
	require.True(t, out.Shape().Equal(tensor.Shape{1, 3}))
	want := []float32{5.5, 7.5, 9.5}
	for i := range want {
		assert.InDelta(t, want[i], out.Data()[i], 1e-4)
	}
}

func TestLinearLeadingDims(t *testing.T) {
	backend := cpu.New()
	l := NewLinear(4, 2, backend)

	out := l.Forward(input(t, make([]float32, 2*3*4), tensor.Shape{2, 3, 4}))
	assert.True(t, out.Shape().Equal(tensor.Shape{2, 3, 2}))
}

func TestLinearLazyInit(t *testing.T) {
	backend := cpu.New()
	l := NewLinear(Infer, 3, backend)
	require.Nil(t, l.Weight, "parameters must not exist before the first call")
	require.Nil(t, l.Parameters())

	out := l.Forward(input(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2}))
	assert.True(t, out.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, 2, l.InFeatures)
	require.NotNil(t, l.Weight)
	assert.True(t, l.Weight.Shape().Equal(tensor.Shape{2, 3}))

	// A different width afterwards is a hard error.
	assert.Panics(t, func() {
		l.Forward(input(t, make([]float32, 10), tensor.Shape{2, 5}))
	})
}

func TestLinearNoBias(t *testing.T) {
	backend := cpu.New()
	l := NewLinearInit(2, 2, "he_normal", "", backend)
	assert.Nil(t, l.Bias)
	assert.Len(t, l.Parameters(), 1)
}

func TestLinearGradients(t *testing.T) {
	backend := cpu.New()
	l := NewLinear(2, 1, backend)
	copy(l.Weight.Tensor().Data(), []float32{2, 3})
	copy(l.Bias.Tensor().Data(), []float32{0})

	out := l.Forward(input(t, []float32{1, 2}, tensor.Shape{1, 2}))
	out.Sum().Backward()

	grad := l.Weight.Grad()
	require.NotNil(t, grad)
	assert.InDelta(t, 1.0, grad.Data()[0], 1e-4)
	assert.InDelta(t, 2.0, grad.Data()[1], 1e-4)

	require.NotNil(t, l.Bias.Grad())
	assert.InDelta(t, 1.0, l.Bias.Grad().Data()[0], 1e-4)
}

func TestBilinearShape(t *testing.T) {
	backend := cpu.New()
	l := NewBilinear(3, 4, 2, backend)

	x1 := input(t, make([]float32, 5*3), tensor.Shape{5, 3})
	x2 := input(t, make([]float32, 5*4), tensor.Shape{5, 4})
	out := l.Forward(x1, x2)
	assert.True(t, out.Shape().Equal(tensor.Shape{5, 2}))
}

func TestEmbeddingLookup(t *testing.T) {
	backend := cpu.New()
	e := NewEmbedding(10, 4, backend)

	out := e.Lookup([]int{3, 3, 7})
	require.True(t, out.Shape().Equal(tensor.Shape{3, 4}))
	for i := 0; i < 4; i++ {
		assert.Equal(t, out.At(0, i), out.At(1, i), "same index must embed identically")
	}
}

func TestFNNShapes(t *testing.T) {
	backend := cpu.New()
	net := NewFNN([]int{4, 8, 2}, "relu", backend)

	out := net.Forward(input(t, make([]float32, 3*4), tensor.Shape{3, 4}))
	assert.True(t, out.Shape().Equal(tensor.Shape{3, 2}))
	assert.Len(t, net.Parameters(), 4)
}

func TestMLPDepth(t *testing.T) {
	backend := cpu.New()
	m := NewMLP(4, 2, 16, 3, "tanh", backend)

	out := m.Forward(input(t, make([]float32, 4), tensor.Shape{1, 4}))
	assert.True(t, out.Shape().Equal(tensor.Shape{1, 2}))
}
