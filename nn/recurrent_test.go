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

func TestSimpleRNNCellStep(t *testing.T) {
	backend := cpu.New()
	cell := NewSimpleRNNCell(3, 4, backend)

	x := input(t, []float32{1, 0, -1, 0.5, 0.5, 0.5}, tensor.Shape{2, 3})
	state := cell.Step(x, nil)
	h := state.Hidden()
	require.True(t, h.Shape().Equal(tensor.Shape{2, 4}))
	for _, v := range h.Data() {
		assert.LessOrEqual(t, math.Abs(float64(v)), 1.0, "tanh output bound")
	}

	next := cell.Step(x, state)
	assert.True(t, next.Hidden().Shape().Equal(tensor.Shape{2, 4}))
}

func TestSimpleRNNCellKnownValues(t *testing.T) {
	backend := cpu.New()
	cell := NewSimpleRNNCell(1, 1, backend)
	copy(cell.WeightInput.Tensor().Data(), []float32{1})
	copy(cell.WeightState.Tensor().Data(), []float32{1})
	copy(cell.Bias.Tensor().Data(), []float32{0})

	x := input(t, []float32{0.5}, tensor.Shape{1, 1})
	h1 := cell.Step(x, nil).Hidden()
	assert.InDelta(t, math.Tanh(0.5), float64(h1.Data()[0]), 1e-5)

	h2 := cell.Step(x, &HiddenState[*cpu.Backend]{H: h1}).Hidden()
	assert.InDelta(t, math.Tanh(0.5+math.Tanh(0.5)), float64(h2.Data()[0]), 1e-5)
}

func TestLSTMCellShapes(t *testing.T) {
	backend := cpu.New()
	cell := NewLSTMCell(3, 5, backend)
	assert.True(t, cell.WeightInput.Shape().Equal(tensor.Shape{3, 20}))
	assert.True(t, cell.WeightState.Shape().Equal(tensor.Shape{5, 20}))

	x := input(t, make([]float32, 2*3), tensor.Shape{2, 3})
	state := cell.Step(x, nil)
	ls, ok := state.(*LSTMState[*cpu.Backend])
	require.True(t, ok)
	assert.True(t, ls.H.Shape().Equal(tensor.Shape{2, 5}))
	assert.True(t, ls.C.Shape().Equal(tensor.Shape{2, 5}))

	next := cell.Step(x, state).(*LSTMState[*cpu.Backend])
	assert.True(t, next.C.Shape().Equal(tensor.Shape{2, 5}))
}

func TestGRUCellShapes(t *testing.T) {
	backend := cpu.New()
	cell := NewGRUCell(4, 6, backend)
	assert.True(t, cell.WeightInput.Shape().Equal(tensor.Shape{4, 18}))

	x := input(t, make([]float32, 3*4), tensor.Shape{3, 4})
	h := cell.Step(x, nil).Hidden()
	assert.True(t, h.Shape().Equal(tensor.Shape{3, 6}))
}

func TestLSTMCellLazy(t *testing.T) {
	backend := cpu.New()
	cell := NewLSTMCell(Infer, 4, backend)
	require.Nil(t, cell.Parameters())

	cell.Step(input(t, make([]float32, 2*7), tensor.Shape{2, 7}), nil)
	assert.Equal(t, 7, cell.InFeatures)
	assert.True(t, cell.WeightInput.Shape().Equal(tensor.Shape{7, 16}))
}

func TestScanRNNFinalState(t *testing.T) {
	backend := cpu.New()
	rnn := NewScanRNN[*cpu.Backend](NewLSTMCell(3, 5, backend), false, false)

	seq := input(t, make([]float32, 2*6*3), tensor.Shape{2, 6, 3})
	out := rnn.Forward(seq)
	assert.True(t, out.Shape().Equal(tensor.Shape{2, 5}))
}

func TestScanRNNSequences(t *testing.T) {
	backend := cpu.New()
	rnn := NewScanRNN[*cpu.Backend](NewGRUCell(3, 5, backend), false, true)

	seq := input(t, make([]float32, 2*6*3), tensor.Shape{2, 6, 3})
	out := rnn.Forward(seq)
	assert.True(t, out.Shape().Equal(tensor.Shape{2, 6, 5}))
}

func TestScanRNNReverseMatchesFlipped(t *testing.T) {
	backend := cpu.New()
	cell := NewSimpleRNNCell(1, 1, backend)
	copy(cell.WeightInput.Tensor().Data(), []float32{1})
	copy(cell.WeightState.Tensor().Data(), []float32{0.5})

	fwd := NewScanRNN[*cpu.Backend](cell, false, false)
	rev := NewScanRNN[*cpu.Backend](cell, true, false)

	seq := input(t, []float32{1, 2, 3}, tensor.Shape{1, 3, 1})
	flipped := input(t, []float32{3, 2, 1}, tensor.Shape{1, 3, 1})
	assert.InDelta(t, float64(fwd.Forward(flipped).Data()[0]), float64(rev.Forward(seq).Data()[0]), 1e-6)
}

func TestConvLSTM2DCellShapes(t *testing.T) {
	backend := cpu.New()
	cell := NewConvLSTM2DCell(2, 3, [2]int{3, 3}, backend)

	x := input(t, make([]float32, 1*2*4*4), tensor.Shape{1, 2, 4, 4})
	state := cell.Step(x, nil).(*LSTMState[*cpu.Backend])
	assert.True(t, state.H.Shape().Equal(tensor.Shape{1, 3, 4, 4}))
	assert.True(t, state.C.Shape().Equal(tensor.Shape{1, 3, 4, 4}))
}

func TestScanRNNConvLSTM(t *testing.T) {
	backend := cpu.New()
	rnn := NewScanRNN[*cpu.Backend](NewConvLSTM2DCell(2, 3, [2]int{3, 3}, backend), false, true)

	seq := input(t, make([]float32, 1*4*2*5*5), tensor.Shape{1, 4, 2, 5, 5})
	out := rnn.Forward(seq)
	assert.True(t, out.Shape().Equal(tensor.Shape{1, 4, 3, 5, 5}))
}

func TestConvGRU2DCellShapes(t *testing.T) {
	backend := cpu.New()
	cell := NewConvGRU2DCell(2, 3, [2]int{3, 3}, backend)
	assert.Len(t, cell.Parameters(), 3)

	x := input(t, make([]float32, 1*2*4*4), tensor.Shape{1, 2, 4, 4})
	state := cell.Step(x, nil).(*HiddenState[*cpu.Backend])
	assert.True(t, state.H.Shape().Equal(tensor.Shape{1, 3, 4, 4}))

	next := cell.Step(x, state).(*HiddenState[*cpu.Backend])
	assert.True(t, next.H.Shape().Equal(tensor.Shape{1, 3, 4, 4}))
}

func TestConvGRU2DCellZeroInputKeepsZeroState(t *testing.T) {
	backend := cpu.New()
	cell := NewConvGRU2DCell(1, 2, [2]int{3, 3}, backend)

	// With zero input and the default zero bias the candidate is
	// tanh(0) = 0, so the interpolation h' = (1-z)*0 + z*0 stays zero.
	x := input(t, make([]float32, 1*1*3*3), tensor.Shape{1, 1, 3, 3})
	state := cell.Step(x, nil).(*HiddenState[*cpu.Backend])
	for _, v := range state.H.Data() {
		assert.Zero(t, v)
	}
}
