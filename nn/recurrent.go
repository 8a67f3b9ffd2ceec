// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"

	"github.com/ASEM000/Osiris/tensor"
)

// State is the carried state of a recurrent cell. Hidden returns the
// tensor fed to the next layer.
type State[B tensor.Backend] interface {
	Hidden() *tensor.Tensor[B]
}

// Cell advances a recurrent state by one step. A nil state starts a fresh
// zero state shaped after x.
type Cell[B tensor.Backend] interface {
	Step(x *tensor.Tensor[B], s State[B]) State[B]
	Parameters() []*Parameter[B]
}

// HiddenState wraps a bare hidden tensor for cells without extra carry.
type HiddenState[B tensor.Backend] struct {
	H *tensor.Tensor[B]
}

// Hidden returns the hidden tensor.
func (s *HiddenState[B]) Hidden() *tensor.Tensor[B] { return s.H }

// LSTMState carries the hidden and cell tensors of an LSTM.
type LSTMState[B tensor.Backend] struct {
	H *tensor.Tensor[B]
	C *tensor.Tensor[B]
}

// Hidden returns the hidden tensor.
func (s *LSTMState[B]) Hidden() *tensor.Tensor[B] { return s.H }

// SimpleRNNCell is the classic recurrence h' = act(x W_ih + h W_hh + b).
type SimpleRNNCell[B tensor.Backend] struct {
	InFeatures  int
	HiddenSize  int
	WeightInput *Parameter[B] // [in, hidden]
	WeightState *Parameter[B] // [hidden, hidden]
	Bias        *Parameter[B] // [hidden]
	Act         Module[B]

	backend B
}

// NewSimpleRNNCell creates a tanh RNN cell. Passing Infer as the input
// width defers parameter creation to the first Step call.
func NewSimpleRNNCell[B tensor.Backend](in, hidden int, backend B) *SimpleRNNCell[B] {
	if hidden <= 0 {
		panic(fmt.Sprintf("SimpleRNNCell: invalid hidden size %d", hidden))
	}
	c := &SimpleRNNCell[B]{
		InFeatures: in,
		HiddenSize: hidden,
		Act:        NewTanh[B](),
		backend:    backend,
	}
	if in != Infer {
		c.materialize(in)
	}
	return c
}

func (c *SimpleRNNCell[B]) materialize(in int) {
	c.InFeatures = in
	c.WeightInput = initParam[B]("weight_input", "glorot_uniform", tensor.Shape{in, c.HiddenSize}, c.backend)
	c.WeightState = initParam[B]("weight_state", "glorot_uniform", tensor.Shape{c.HiddenSize, c.HiddenSize}, c.backend)
	c.Bias = initParam[B]("bias", "zeros", tensor.Shape{c.HiddenSize}, c.backend)
}

// Step advances the cell with input x [N, in].
func (c *SimpleRNNCell[B]) Step(x *tensor.Tensor[B], s State[B]) State[B] {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("SimpleRNNCell.Step: want rank-2 input [N,in], got %v", shape))
	}
	if c.WeightInput == nil {
		c.materialize(shape[1])
	}
	var h *tensor.Tensor[B]
	if s == nil {
		h = tensor.Zeros(tensor.Shape{shape[0], c.HiddenSize}, x.Backend())
	} else {
		h = s.Hidden()
	}
	pre := x.MatMul(c.WeightInput.Tensor()).
		Add(h.MatMul(c.WeightState.Tensor())).
		Add(c.Bias.Tensor())
	return &HiddenState[B]{H: c.Act.Forward(pre)}
}

// Parameters returns the two weight matrices and the bias.
func (c *SimpleRNNCell[B]) Parameters() []*Parameter[B] {
	if c.WeightInput == nil {
		return nil
	}
	return []*Parameter[B]{c.WeightInput, c.WeightState, c.Bias}
}

// LSTMCell is a long short-term memory cell with fused gate projections.
// Gates are packed along the last axis in the order input, forget, cell,
// output.
type LSTMCell[B tensor.Backend] struct {
	InFeatures  int
	HiddenSize  int
	WeightInput *Parameter[B] // [in, 4*hidden]
	WeightState *Parameter[B] // [hidden, 4*hidden]
	Bias        *Parameter[B] // [4*hidden]

	backend B
}

// NewLSTMCell creates an LSTM cell. Passing Infer as the input width
// defers parameter creation to the first Step call.
func NewLSTMCell[B tensor.Backend](in, hidden int, backend B) *LSTMCell[B] {
	if hidden <= 0 {
		panic(fmt.Sprintf("LSTMCell: invalid hidden size %d", hidden))
	}
	c := &LSTMCell[B]{InFeatures: in, HiddenSize: hidden, backend: backend}
	if in != Infer {
		c.materialize(in)
	}
	return c
}

func (c *LSTMCell[B]) materialize(in int) {
	c.InFeatures = in
	h := c.HiddenSize
	c.WeightInput = initParam[B]("weight_input", "glorot_uniform", tensor.Shape{in, 4 * h}, c.backend)
	c.WeightState = initParam[B]("weight_state", "glorot_uniform", tensor.Shape{h, 4 * h}, c.backend)
	c.Bias = initParam[B]("bias", "zeros", tensor.Shape{4 * h}, c.backend)
}

// Step advances the cell with input x [N, in].
func (c *LSTMCell[B]) Step(x *tensor.Tensor[B], s State[B]) State[B] {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("LSTMCell.Step: want rank-2 input [N,in], got %v", shape))
	}
	if c.WeightInput == nil {
		c.materialize(shape[1])
	}
	n, h := shape[0], c.HiddenSize

	var hPrev, cPrev *tensor.Tensor[B]
	switch st := s.(type) {
	case nil:
		hPrev = tensor.Zeros(tensor.Shape{n, h}, x.Backend())
		cPrev = tensor.Zeros(tensor.Shape{n, h}, x.Backend())
	case *LSTMState[B]:
		hPrev, cPrev = st.H, st.C
	default:
		panic(fmt.Sprintf("LSTMCell.Step: unexpected state type %T", s))
	}

	gates := x.MatMul(c.WeightInput.Tensor()).
		Add(hPrev.MatMul(c.WeightState.Tensor())).
		Add(c.Bias.Tensor())

	sigmoid := func(t *tensor.Tensor[B]) *tensor.Tensor[B] {
		return tensor.Apply(t, sigmoidf, func(v float32) float32 {
			sv := sigmoidf(v)
			return sv * (1 - sv)
		})
	}
	i := sigmoid(gates.Narrow(1, 0, h))
	f := sigmoid(gates.Narrow(1, h, h))
	g := gates.Narrow(1, 2*h, h).Tanh()
	o := sigmoid(gates.Narrow(1, 3*h, h))

	cNext := f.Mul(cPrev).Add(i.Mul(g))
	hNext := o.Mul(cNext.Tanh())
	return &LSTMState[B]{H: hNext, C: cNext}
}

// Parameters returns the two weight matrices and the bias.
func (c *LSTMCell[B]) Parameters() []*Parameter[B] {
	if c.WeightInput == nil {
		return nil
	}
	return []*Parameter[B]{c.WeightInput, c.WeightState, c.Bias}
}

// GRUCell is a gated recurrent unit with fused gate projections. Gates are
// packed along the last axis in the order reset, update, candidate.
type GRUCell[B tensor.Backend] struct {
	InFeatures  int
	HiddenSize  int
	WeightInput *Parameter[B] // [in, 3*hidden]
	WeightState *Parameter[B] // [hidden, 3*hidden]
	BiasInput   *Parameter[B] // [3*hidden]
	BiasState   *Parameter[B] // [3*hidden]

	backend B
}

// NewGRUCell creates a GRU cell. Passing Infer as the input width defers
// parameter creation to the first Step call.
func NewGRUCell[B tensor.Backend](in, hidden int, backend B) *GRUCell[B] {
	if hidden <= 0 {
		panic(fmt.Sprintf("GRUCell: invalid hidden size %d", hidden))
	}
	c := &GRUCell[B]{InFeatures: in, HiddenSize: hidden, backend: backend}
	if in != Infer {
		c.materialize(in)
	}
	return c
}

func (c *GRUCell[B]) materialize(in int) {
	c.InFeatures = in
	h := c.HiddenSize
	c.WeightInput = initParam[B]("weight_input", "glorot_uniform", tensor.Shape{in, 3 * h}, c.backend)
	c.WeightState = initParam[B]("weight_state", "glorot_uniform", tensor.Shape{h, 3 * h}, c.backend)
	c.BiasInput = initParam[B]("bias_input", "zeros", tensor.Shape{3 * h}, c.backend)
	c.BiasState = initParam[B]("bias_state", "zeros", tensor.Shape{3 * h}, c.backend)
}

// Step advances the cell with input x [N, in].
func (c *GRUCell[B]) Step(x *tensor.Tensor[B], s State[B]) State[B] {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("GRUCell.Step: want rank-2 input [N,in], got %v", shape))
	}
	if c.WeightInput == nil {
		c.materialize(shape[1])
	}
	n, h := shape[0], c.HiddenSize

	var hPrev *tensor.Tensor[B]
	if s == nil {
		hPrev = tensor.Zeros(tensor.Shape{n, h}, x.Backend())
	} else {
		hPrev = s.Hidden()
	}

	xi := x.MatMul(c.WeightInput.Tensor()).Add(c.BiasInput.Tensor())
	hi := hPrev.MatMul(c.WeightState.Tensor()).Add(c.BiasState.Tensor())

	sigmoid := func(t *tensor.Tensor[B]) *tensor.Tensor[B] {
		return tensor.Apply(t, sigmoidf, func(v float32) float32 {
			sv := sigmoidf(v)
			return sv * (1 - sv)
		})
	}
	r := sigmoid(xi.Narrow(1, 0, h).Add(hi.Narrow(1, 0, h)))
	z := sigmoid(xi.Narrow(1, h, h).Add(hi.Narrow(1, h, h)))
	cand := xi.Narrow(1, 2*h, h).Add(r.Mul(hi.Narrow(1, 2*h, h))).Tanh()

	// h' = (1-z)*cand + z*h
	one := tensor.Ones(tensor.Shape{n, h}, x.Backend())
	hNext := one.Sub(z).Mul(cand).Add(z.Mul(hPrev))
	return &HiddenState[B]{H: hNext}
}

// Parameters returns the weight matrices and the two biases.
func (c *GRUCell[B]) Parameters() []*Parameter[B] {
	if c.WeightInput == nil {
		return nil
	}
	return []*Parameter[B]{c.WeightInput, c.WeightState, c.BiasInput, c.BiasState}
}

// ConvLSTM2DCell is an LSTM whose gate projections are 2-D convolutions,
// carrying spatial hidden and cell states of shape [N, hidden, H, W].
type ConvLSTM2DCell[B tensor.Backend] struct {
	InChannels int
	HiddenSize int
	Kernel     [2]int
	GateInput  *Conv2D[B] // in -> 4*hidden, with bias
	GateState  *Conv2D[B] // hidden -> 4*hidden, no bias

	backend B
}

// NewConvLSTM2DCell creates a convolutional LSTM cell with "same" spatial
// padding. Passing Infer as the input channel count defers parameter
// creation to the first Step call.
func NewConvLSTM2DCell[B tensor.Backend](in, hidden int, kernel [2]int, backend B) *ConvLSTM2DCell[B] {
	if hidden <= 0 {
		panic(fmt.Sprintf("ConvLSTM2DCell: invalid hidden size %d", hidden))
	}
	c := &ConvLSTM2DCell[B]{InChannels: in, HiddenSize: hidden, Kernel: kernel, backend: backend}
	c.GateInput = NewConv2D(in, 4*hidden, kernel, ConvOpts{Padding: Same}, backend)
	c.GateState = NewConv2D(hidden, 4*hidden, kernel, ConvOpts{Padding: Same, NoBias: true}, backend)
	return c
}

// Step advances the cell with input x [N, C, H, W].
func (c *ConvLSTM2DCell[B]) Step(x *tensor.Tensor[B], s State[B]) State[B] {
	shape := x.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("ConvLSTM2DCell.Step: want rank-4 input [N,C,H,W], got %v", shape))
	}
	n, hgt, wid := shape[0], shape[2], shape[3]
	h := c.HiddenSize

	var hPrev, cPrev *tensor.Tensor[B]
	switch st := s.(type) {
	case nil:
		hPrev = tensor.Zeros(tensor.Shape{n, h, hgt, wid}, x.Backend())
		cPrev = tensor.Zeros(tensor.Shape{n, h, hgt, wid}, x.Backend())
	case *LSTMState[B]:
		hPrev, cPrev = st.H, st.C
	default:
		panic(fmt.Sprintf("ConvLSTM2DCell.Step: unexpected state type %T", s))
	}

	gates := c.GateInput.Forward(x).Add(c.GateState.Forward(hPrev))

	sigmoid := func(t *tensor.Tensor[B]) *tensor.Tensor[B] {
		return tensor.Apply(t, sigmoidf, func(v float32) float32 {
			sv := sigmoidf(v)
			return sv * (1 - sv)
		})
	}
	i := sigmoid(gates.Narrow(1, 0, h))
	f := sigmoid(gates.Narrow(1, h, h))
	g := gates.Narrow(1, 2*h, h).Tanh()
	o := sigmoid(gates.Narrow(1, 3*h, h))

	cNext := f.Mul(cPrev).Add(i.Mul(g))
	hNext := o.Mul(cNext.Tanh())
	return &LSTMState[B]{H: hNext, C: cNext}
}

// Parameters returns the gate convolution parameters.
func (c *ConvLSTM2DCell[B]) Parameters() []*Parameter[B] {
	return append(c.GateInput.Parameters(), c.GateState.Parameters()...)
}

// ConvGRU2DCell is a GRU whose gate projections are 2-D convolutions,
// carrying a spatial hidden state of shape [N, hidden, H, W]. Gates are
// packed along the channel axis in the order reset, update, candidate.
type ConvGRU2DCell[B tensor.Backend] struct {
	InChannels int
	HiddenSize int
	Kernel     [2]int
	GateInput  *Conv2D[B] // in -> 3*hidden, with bias
	GateState  *Conv2D[B] // hidden -> 3*hidden, no bias

	backend B
}

// NewConvGRU2DCell creates a convolutional GRU cell with "same" spatial
// padding. Passing Infer as the input channel count defers parameter
// creation to the first Step call.
func NewConvGRU2DCell[B tensor.Backend](in, hidden int, kernel [2]int, backend B) *ConvGRU2DCell[B] {
	if hidden <= 0 {
		panic(fmt.Sprintf("ConvGRU2DCell: invalid hidden size %d", hidden))
	}
	c := &ConvGRU2DCell[B]{InChannels: in, HiddenSize: hidden, Kernel: kernel, backend: backend}
	c.GateInput = NewConv2D(in, 3*hidden, kernel, ConvOpts{Padding: Same}, backend)
	c.GateState = NewConv2D(hidden, 3*hidden, kernel, ConvOpts{Padding: Same, NoBias: true}, backend)
	return c
}

// Step advances the cell with input x [N, C, H, W].
func (c *ConvGRU2DCell[B]) Step(x *tensor.Tensor[B], s State[B]) State[B] {
	shape := x.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("ConvGRU2DCell.Step: want rank-4 input [N,C,H,W], got %v", shape))
	}
	n, hgt, wid := shape[0], shape[2], shape[3]
	h := c.HiddenSize

	var hPrev *tensor.Tensor[B]
	if s == nil {
		hPrev = tensor.Zeros(tensor.Shape{n, h, hgt, wid}, x.Backend())
	} else {
		hPrev = s.Hidden()
	}

	xi := c.GateInput.Forward(x)
	hi := c.GateState.Forward(hPrev)

	sigmoid := func(t *tensor.Tensor[B]) *tensor.Tensor[B] {
		return tensor.Apply(t, sigmoidf, func(v float32) float32 {
			sv := sigmoidf(v)
			return sv * (1 - sv)
		})
	}
	r := sigmoid(xi.Narrow(1, 0, h).Add(hi.Narrow(1, 0, h)))
	z := sigmoid(xi.Narrow(1, h, h).Add(hi.Narrow(1, h, h)))
	cand := xi.Narrow(1, 2*h, h).Add(r.Mul(hi.Narrow(1, 2*h, h))).Tanh()

	// h' = (1-z)*cand + z*h
	one := tensor.Ones(tensor.Shape{n, h, hgt, wid}, x.Backend())
	hNext := one.Sub(z).Mul(cand).Add(z.Mul(hPrev))
	return &HiddenState[B]{H: hNext}
}

// Parameters returns the gate convolution parameters.
func (c *ConvGRU2DCell[B]) Parameters() []*Parameter[B] {
	return append(c.GateInput.Parameters(), c.GateState.Parameters()...)
}

// ScanRNN drives a recurrent cell over the time axis of a batched
// sequence [N, T, ...]. With ReturnSequences it yields every hidden state
// stacked along the time axis, otherwise only the final one.
type ScanRNN[B tensor.Backend] struct {
	RNNCell         Cell[B]
	Reverse         bool
	ReturnSequences bool
}

// NewScanRNN creates a sequence scanner around cell.
func NewScanRNN[B tensor.Backend](cell Cell[B], reverse, returnSequences bool) *ScanRNN[B] {
	return &ScanRNN[B]{RNNCell: cell, Reverse: reverse, ReturnSequences: returnSequences}
}

// Forward scans input [N, T, ...], feeding each [N, ...] slice to the cell.
func (r *ScanRNN[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) < 3 {
		panic(fmt.Sprintf("ScanRNN.Forward: want at least rank-3 input [N,T,...], got %v", shape))
	}
	n, steps := shape[0], shape[1]
	stepShape := append(tensor.Shape{n}, shape[2:]...)

	var state State[B]
	var outputs []*tensor.Tensor[B]
	for i := 0; i < steps; i++ {
		t := i
		if r.Reverse {
			t = steps - 1 - i
		}
		xt := input.Narrow(1, t, 1).Reshape(stepShape...)
		state = r.RNNCell.Step(xt, state)
		if r.ReturnSequences {
			h := state.Hidden()
			hShape := h.Shape()
			withTime := append(tensor.Shape{n, 1}, hShape[1:]...)
			outputs = append(outputs, h.Reshape(withTime...))
		}
	}
	if !r.ReturnSequences {
		return state.Hidden()
	}
	if r.Reverse {
		for i, j := 0, len(outputs)-1; i < j; i, j = i+1, j-1 {
			outputs[i], outputs[j] = outputs[j], outputs[i]
		}
	}
	return tensor.Cat(outputs, 1)
}

// Parameters returns the cell parameters.
func (r *ScanRNN[B]) Parameters() []*Parameter[B] { return r.RNNCell.Parameters() }
