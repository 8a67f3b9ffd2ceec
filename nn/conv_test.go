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

func TestConv2DShapes(t *testing.T) {
	backend := cpu.New()
	x := input(t, make([]float32, 2*3*8*8), tensor.Shape{2, 3, 8, 8})

	valid := NewConv2D(3, 6, [2]int{3, 3}, ConvOpts{}, backend)
	assert.True(t, valid.Forward(x).Shape().Equal(tensor.Shape{2, 6, 6, 6}))

	same := NewConv2D(3, 6, [2]int{3, 3}, ConvOpts{Padding: Same}, backend)
	assert.True(t, same.Forward(x).Shape().Equal(tensor.Shape{2, 6, 8, 8}))

	strided := NewConv2D(3, 6, [2]int{3, 3}, ConvOpts{Stride: [2]int{2, 2}, Padding: Same}, backend)
	assert.True(t, strided.Forward(x).Shape().Equal(tensor.Shape{2, 6, 4, 4}))
}

func TestConv2DWeightLayout(t *testing.T) {
	backend := cpu.New()
	c := NewConv2D(4, 8, [2]int{3, 5}, ConvOpts{Groups: 2}, backend)
	assert.True(t, c.Weight.Shape().Equal(tensor.Shape{8, 2, 3, 5}))
	assert.True(t, c.Bias.Shape().Equal(tensor.Shape{8}))
}

func TestConv2DLazyChannels(t *testing.T) {
	backend := cpu.New()
	c := NewConv2D(Infer, 4, [2]int{3, 3}, ConvOpts{Padding: Same}, backend)
	require.Nil(t, c.Weight)

	out := c.Forward(input(t, make([]float32, 1*5*6*6), tensor.Shape{1, 5, 6, 6}))
	assert.True(t, out.Shape().Equal(tensor.Shape{1, 4, 6, 6}))
	assert.Equal(t, 5, c.InChannels)
	assert.True(t, c.Weight.Shape().Equal(tensor.Shape{4, 5, 3, 3}))
}

func TestConv2DKnownValues(t *testing.T) {
	backend := cpu.New()
	c := NewConv2D(1, 1, [2]int{2, 2}, ConvOpts{NoBias: true}, backend)
	copy(c.Weight.Tensor().Data(), []float32{1, 0, 0, 1})

	x := input(t, []float32{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, tensor.Shape{1, 1, 3, 3})
	out := c.Forward(x)
	assert.Equal(t, []float32{6, 8, 12, 14}, out.Data())
}

func TestConv1DShapes(t *testing.T) {
	backend := cpu.New()
	x := input(t, make([]float32, 2*3*10), tensor.Shape{2, 3, 10})

	c := NewConv1D(3, 5, 3, ConvOpts{Padding: Same}, backend)
	assert.True(t, c.Forward(x).Shape().Equal(tensor.Shape{2, 5, 10}))
}

func TestDepthwiseConv2D(t *testing.T) {
	backend := cpu.New()
	d := NewDepthwiseConv2D(3, 2, [2]int{3, 3}, ConvOpts{Padding: Same}, backend)

	out := d.Forward(input(t, make([]float32, 1*3*4*4), tensor.Shape{1, 3, 4, 4}))
	assert.True(t, out.Shape().Equal(tensor.Shape{1, 6, 4, 4}))
	assert.True(t, d.Conv.Weight.Shape().Equal(tensor.Shape{6, 1, 3, 3}))
}

func TestDepthwiseConv2DLazy(t *testing.T) {
	backend := cpu.New()
	d := NewDepthwiseConv2D(Infer, 1, [2]int{3, 3}, ConvOpts{Padding: Same}, backend)
	require.Nil(t, d.Conv)
	require.Nil(t, d.Parameters())

	out := d.Forward(input(t, make([]float32, 1*5*4*4), tensor.Shape{1, 5, 4, 4}))
	assert.True(t, out.Shape().Equal(tensor.Shape{1, 5, 4, 4}))
	assert.Equal(t, 5, d.Conv.Groups)
}

func TestPoolingLayers(t *testing.T) {
	x := input(t, []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}, tensor.Shape{1, 1, 4, 4})

	mp := NewMaxPool2D[*cpu.Backend]([2]int{2, 2}, [2]int{0, 0}, Valid)
	assert.Equal(t, []float32{6, 8, 14, 16}, mp.Forward(x).Data())

	ap := NewAvgPool2D[*cpu.Backend]([2]int{2, 2}, [2]int{0, 0}, Valid)
	assert.Equal(t, []float32{3.5, 5.5, 11.5, 13.5}, ap.Forward(x).Data())

	gap := NewGlobalAvgPool2D[*cpu.Backend](false)
	out := gap.Forward(x)
	assert.True(t, out.Shape().Equal(tensor.Shape{1, 1}))
	assert.InDelta(t, 8.5, out.Data()[0], 1e-5)

	gmp := NewGlobalMaxPool2D[*cpu.Backend](false)
	assert.Equal(t, []float32{16}, gmp.Forward(x).Data())
}

func TestBlurPreservesConstant(t *testing.T) {
	backend := cpu.New()
	// Normalized kernels map a constant image to itself away from borders.
	x := input(t, []float32{
		1, 1, 1, 1, 1,
		1, 1, 1, 1, 1,
		1, 1, 1, 1, 1,
		1, 1, 1, 1, 1,
		1, 1, 1, 1, 1,
	}, tensor.Shape{1, 1, 5, 5})

	g := NewGaussianBlur2D(3, 1.0, backend)
	out := g.Forward(x)
	require.True(t, out.Shape().Equal(tensor.Shape{1, 1, 5, 5}))
	assert.InDelta(t, 1.0, out.At(0, 0, 2, 2), 1e-4)

	a := NewAvgBlur2D(3, backend)
	assert.InDelta(t, 1.0, a.Forward(x).At(0, 0, 2, 2), 1e-4)
	assert.Nil(t, a.Parameters(), "blur kernels are frozen")
}
