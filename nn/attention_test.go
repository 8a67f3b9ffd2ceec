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

func TestMultiHeadAttentionShapes(t *testing.T) {
	backend := cpu.New()
	mha := NewMultiHeadAttention(8, 2, 0, backend)

	x := input(t, make([]float32, 2*5*8), tensor.Shape{2, 5, 8})
	out := mha.Forward(x)
	assert.True(t, out.Shape().Equal(tensor.Shape{2, 5, 8}))
	assert.Len(t, mha.Parameters(), 8)
}

func TestMultiHeadAttentionCrossShapes(t *testing.T) {
	backend := cpu.New()
	mha := NewMultiHeadAttention(4, 2, 0, backend)

	q := input(t, make([]float32, 1*3*4), tensor.Shape{1, 3, 4})
	kv := input(t, make([]float32, 1*7*4), tensor.Shape{1, 7, 4})
	out := mha.Attend(q, kv, kv, nil)
	assert.True(t, out.Shape().Equal(tensor.Shape{1, 3, 4}))
}

func TestMultiHeadAttentionRejects(t *testing.T) {
	backend := cpu.New()
	assert.Panics(t, func() { NewMultiHeadAttention(7, 2, 0, backend) })

	mha := NewMultiHeadAttention(4, 2, 0, backend)
	assert.Panics(t, func() {
		mha.Forward(input(t, make([]float32, 2*6), tensor.Shape{2, 6}))
	})
}

func TestCausalMask(t *testing.T) {
	backend := cpu.New()
	mask := CausalMask(3, backend)
	require.True(t, mask.Shape().Equal(tensor.Shape{3, 3}))

	data := mask.Data()
	neg := float32(math.Inf(-1))
	assert.Equal(t, []float32{
		0, neg, neg,
		0, 0, neg,
		0, 0, 0,
	}, data)
}

func TestCausalMaskBlocksFuture(t *testing.T) {
	backend := cpu.New()
	mha := NewMultiHeadAttention(4, 1, 0, backend)
	mask := CausalMask(4, backend)

	base := make([]float32, 1*4*4)
	for i := range base {
		base[i] = float32(i%7) * 0.1
	}
	x := input(t, base, tensor.Shape{1, 4, 4})
	masked := mha.Attend(x, x, x, mask)

	// Changing the last step must not affect the first step's output.
	perturbed := append([]float32(nil), base...)
	for i := 3 * 4; i < 4*4; i++ {
		perturbed[i] += 5
	}
	x2 := input(t, perturbed, tensor.Shape{1, 4, 4})
	masked2 := mha.Attend(x2, x2, x2, mask)

	for i := 0; i < 4; i++ {
		assert.InDelta(t, float64(masked.Data()[i]), float64(masked2.Data()[i]), 1e-5)
	}
}
