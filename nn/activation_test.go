// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ASEM000/Osiris/backend/cpu"
	"github.com/ASEM000/Osiris/tensor"
)

func TestReLUValues(t *testing.T) {
	x := input(t, []float32{-2, -0.5, 0, 0.5, 2}, tensor.Shape{5})
	out := NewReLU[*cpu.Backend]().Forward(x)
	assert.Equal(t, []float32{0, 0, 0, 0.5, 2}, out.Data())
}

func TestSigmoidValues(t *testing.T) {
	x := input(t, []float32{-1, 0, 1}, tensor.Shape{3})
	out := NewSigmoid[*cpu.Backend]().Forward(x)
	assert.InDelta(t, 0.2689, out.Data()[0], 1e-3)
	assert.InDelta(t, 0.5, out.Data()[1], 1e-5)
	assert.InDelta(t, 0.7311, out.Data()[2], 1e-3)
}

func TestGELUValues(t *testing.T) {
	x := input(t, []float32{-1, 0, 1, 2}, tensor.Shape{4})
	out := NewGELU[*cpu.Backend]().Forward(x)
	for i, v := range []float64{-1, 0, 1, 2} {
		want := 0.5 * v * (1 + math.Erf(v/math.Sqrt2))
		assert.InDelta(t, want, float64(out.Data()[i]), 1e-4)
	}
}

func TestSwishGradient(t *testing.T) {
	vals := []float32{-1.5, -0.2, 0.8, 2.3}
	x := input(t, vals, tensor.Shape{4})
	x.SetRequiresGrad(true)
	NewSwish[*cpu.Backend]().Forward(x).Sum().Backward()

	const eps = 1e-3
	swish := func(v float64) float64 { return v / (1 + math.Exp(-v)) }
	for i, v := range vals {
		fd := (swish(float64(v)+eps) - swish(float64(v)-eps)) / (2 * eps)
		assert.InDelta(t, fd, float64(x.Grad().Data()[i]), 1e-3)
	}
}

func TestPReLUTrainsAlpha(t *testing.T) {
	backend := cpu.New()
	p := NewPReLU(0.25, backend)

	x := input(t, []float32{-4, 2}, tensor.Shape{2})
	x.SetRequiresGrad(true)
	out := p.Forward(x)
	assert.InDelta(t, -1.0, out.Data()[0], 1e-5)
	assert.InDelta(t, 2.0, out.Data()[1], 1e-5)

	out.Sum().Backward()
	require.NotNil(t, p.Alpha.Grad(), "alpha must receive a gradient")
	// d out / d alpha = sum of negative inputs = -4.
	assert.InDelta(t, -4.0, p.Alpha.Grad().Data()[0], 1e-4)
}

func TestLogSoftmaxMatchesSoftmax(t *testing.T) {
	x := input(t, []float32{1, 2, 3, 1, 0, -1}, tensor.Shape{2, 3})
	ls := NewLogSoftmax[*cpu.Backend](-1).Forward(x)
	sm := x.Softmax(-1)
	for i := range sm.Data() {
		assert.InDelta(t, math.Log(float64(sm.Data()[i])), float64(ls.Data()[i]), 1e-4)
	}
}

func TestGLUHalvesLastDim(t *testing.T) {
	x := input(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 4})
	out := NewGLU[*cpu.Backend]().Forward(x)
	require.True(t, out.Shape().Equal(tensor.Shape{1, 2}))
	assert.InDelta(t, 1*sigmoidf(3), out.Data()[0], 1e-5)
	assert.InDelta(t, 2*sigmoidf(4), out.Data()[1], 1e-5)

	assert.Panics(t, func() {
		NewGLU[*cpu.Backend]().Forward(input(t, []float32{1, 2, 3}, tensor.Shape{1, 3}))
	})
}

func TestHardTanhClamps(t *testing.T) {
	x := input(t, []float32{-5, -0.5, 0.5, 5}, tensor.Shape{4})
	out := NewHardTanh[*cpu.Backend]().Forward(x)
	assert.Equal(t, []float32{-1, -0.5, 0.5, 1}, out.Data())
}

func TestResolveActivation(t *testing.T) {
	for _, name := range []string{"relu", "gelu", "silu", "snake", "log_softmax", "identity"} {
		act, err := ResolveActivation[*cpu.Backend](name)
		require.NoError(t, err, name)
		require.NotNil(t, act, name)
	}

	_, err := ResolveActivation[*cpu.Backend]("warp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown activation")
}
