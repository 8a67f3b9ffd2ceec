// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ASEM000/Osiris/backend/cpu"
	"github.com/ASEM000/Osiris/tensor"
)

func rgb(t *testing.T, data []float32, h, w int) *tensor.Tensor[*cpu.Backend] {
	t.Helper()
	x, err := tensor.FromSlice(data, tensor.Shape{1, 3, h, w}, cpu.New())
	require.NoError(t, err)
	return x
}

func TestRGBToGrayscale(t *testing.T) {
	// One pixel per channel: pure red, then pure green, then pure blue.
	x := rgb(t, []float32{
		1, 0, 0, // R plane
		0, 1, 0, // G plane
		0, 0, 1, // B plane
	}, 1, 3)
	out := NewRGBToGrayscale2D[*cpu.Backend]().Forward(x)
	require.True(t, out.Shape().Equal(tensor.Shape{1, 1, 1, 3}))

	assert.InDelta(t, 0.299, out.Data()[0], 1e-5)
	assert.InDelta(t, 0.587, out.Data()[1], 1e-5)
	assert.InDelta(t, 0.114, out.Data()[2], 1e-5)
}

func TestGrayscaleToRGB(t *testing.T) {
	x, err := tensor.FromSlice([]float32{0.25, 0.75}, tensor.Shape{1, 1, 1, 2}, cpu.New())
	require.NoError(t, err)

	out := NewGrayscaleToRGB2D[*cpu.Backend]().Forward(x)
	require.True(t, out.Shape().Equal(tensor.Shape{1, 3, 1, 2}))
	assert.Equal(t, []float32{0.25, 0.75, 0.25, 0.75, 0.25, 0.75}, out.Data())
}

func TestRGBToHSVKnownColors(t *testing.T) {
	x := rgb(t, []float32{
		1, 0, 0.5, // R plane
		0, 1, 0.5, // G plane
		0, 0, 0.5, // B plane
	}, 1, 3)
	out := NewRGBToHSV2D[*cpu.Backend]().Forward(x)
	d := out.Data()

	// Pure red: hue 0, full saturation and value.
	assert.InDelta(t, 0, d[0], 1e-5)
	assert.InDelta(t, 1, d[3], 1e-5)
	assert.InDelta(t, 1, d[6], 1e-5)

	// Pure green: hue 1/3.
	assert.InDelta(t, 1.0/3, d[1], 1e-5)

	// Gray: no saturation, value 0.5.
	assert.InDelta(t, 0, d[3+2], 1e-5)
	assert.InDelta(t, 0.5, d[6+2], 1e-5)
}

func TestHSVRoundTrip(t *testing.T) {
	colors := []float32{
		0.8, 0.1, 0.3, // R plane
		0.2, 0.9, 0.3, // G plane
		0.4, 0.5, 0.3, // B plane
	}
	x := rgb(t, colors, 1, 3)
	back := NewHSVToRGB2D[*cpu.Backend]().Forward(NewRGBToHSV2D[*cpu.Backend]().Forward(x))

	for i, want := range colors {
		assert.InDelta(t, want, back.Data()[i], 1e-4, "index %d", i)
	}
}

func TestRGBToGrayscaleRejectsShape(t *testing.T) {
	x, err := tensor.FromSlice(make([]float32, 4), tensor.Shape{1, 4, 1, 1}, cpu.New())
	require.NoError(t, err)
	assert.Panics(t, func() { NewRGBToGrayscale2D[*cpu.Backend]().Forward(x) })
}
