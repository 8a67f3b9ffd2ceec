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

func rowStats(data []float32) (mean, variance float64) {
	for _, v := range data {
		mean += float64(v)
	}
	mean /= float64(len(data))
	for _, v := range data {
		d := float64(v) - mean
		variance += d * d
	}
	variance /= float64(len(data))
	return mean, variance
}

func TestLayerNormNormalizes(t *testing.T) {
	backend := cpu.New()
	ln := NewLayerNorm(tensor.Shape{4}, backend)

	x := input(t, []float32{1, 2, 3, 4, -2, 0, 2, 4}, tensor.Shape{2, 4})
	out := ln.Forward(x)
	require.True(t, out.Shape().Equal(tensor.Shape{2, 4}))

	// Gamma=1, Beta=0 at init, so every row comes out standardized.
	for row := 0; row < 2; row++ {
		mean, variance := rowStats(out.Data()[row*4 : (row+1)*4])
		assert.InDelta(t, 0, mean, 1e-5)
		assert.InDelta(t, 1, variance, 1e-3)
	}
}

func TestLayerNormAffine(t *testing.T) {
	backend := cpu.New()
	ln := NewLayerNorm(tensor.Shape{2}, backend)
	copy(ln.Gamma.Tensor().Data(), []float32{2, 2})
	copy(ln.Beta.Tensor().Data(), []float32{1, 1})

	out := ln.Forward(input(t, []float32{-1, 1}, tensor.Shape{1, 2}))
	// Normalized values are close to -1 and 1, then scaled and shifted.
	assert.InDelta(t, -1, out.Data()[0], 1e-2)
	assert.InDelta(t, 3, out.Data()[1], 1e-2)
}

func TestLayerNormRejectsShape(t *testing.T) {
	backend := cpu.New()
	ln := NewLayerNorm(tensor.Shape{3}, backend)
	assert.Panics(t, func() {
		ln.Forward(input(t, []float32{1, 2}, tensor.Shape{1, 2}))
	})
}

func TestGroupNormPerGroup(t *testing.T) {
	backend := cpu.New()
	gn := NewGroupNorm(4, 2, backend)

	x := input(t, []float32{
		1, 2, 3, 4, // group 0: channels 0-1
		10, 20, 30, 40, // group 1: channels 2-3
	}, tensor.Shape{1, 4, 2})
	out := gn.Forward(x)
	require.True(t, out.Shape().Equal(tensor.Shape{1, 4, 2}))

	for g := 0; g < 2; g++ {
		mean, variance := rowStats(out.Data()[g*4 : (g+1)*4])
		assert.InDelta(t, 0, mean, 1e-5)
		assert.InDelta(t, 1, variance, 1e-3)
	}
}

func TestGroupNormLazyAndValidation(t *testing.T) {
	backend := cpu.New()
	gn := NewGroupNorm(Infer, 2, backend)
	require.Nil(t, gn.Parameters())

	gn.Forward(input(t, make([]float32, 1*4*3), tensor.Shape{1, 4, 3}))
	assert.Equal(t, 4, gn.Channels)

	assert.Panics(t, func() { NewGroupNorm(5, 2, backend) }, "channels must divide by groups")
}

func TestInstanceNormShape(t *testing.T) {
	backend := cpu.New()
	in := NewInstanceNorm(Infer, backend)

	out := in.Forward(input(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{1, 2, 4}))
	require.True(t, out.Shape().Equal(tensor.Shape{1, 2, 4}))
	assert.Equal(t, 2, in.Norm.Groups)

	// Each channel standardized on its own.
	mean, _ := rowStats(out.Data()[:4])
	assert.InDelta(t, 0, mean, 1e-5)
}

func TestBatchNormTrainEval(t *testing.T) {
	backend := cpu.New()
	bn := NewBatchNorm(1, backend)

	x := input(t, []float32{1, 2, 3, 4}, tensor.Shape{4, 1})
	out := bn.Forward(x)

	mean, variance := rowStats(out.Data())
	assert.InDelta(t, 0, mean, 1e-5)
	assert.InDelta(t, 1, variance, 1e-3)

	// One training step moves the running stats toward the batch stats.
	assert.InDelta(t, 0.1*2.5, bn.RunningMean.Data()[0], 1e-5)
	assert.InDelta(t, 0.9*1+0.1*1.25, bn.RunningVar.Data()[0], 1e-5)

	bn.SetTraining(false)
	rm := float64(bn.RunningMean.Data()[0])
	rv := float64(bn.RunningVar.Data()[0])
	evalOut := bn.Forward(x)
	want := (1 - rm) / math.Sqrt(rv+1e-5)
	assert.InDelta(t, want, evalOut.Data()[0], 1e-4)

	// Eval mode must not touch the running statistics.
	assert.InDelta(t, rm, float64(bn.RunningMean.Data()[0]), 0)
}

func TestBatchNormChannelMismatch(t *testing.T) {
	backend := cpu.New()
	bn := NewBatchNorm(3, backend)
	assert.Panics(t, func() {
		bn.Forward(input(t, make([]float32, 2*4), tensor.Shape{2, 4}))
	})
}
