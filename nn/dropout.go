// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"

	"github.com/ASEM000/Osiris/tensor"
)

// Dropout zeroes each element independently with probability Rate during
// training and rescales the survivors by 1/(1-rate). Evaluation mode is a
// pass-through.
type Dropout[B tensor.Backend] struct {
	Rate float32

	training bool
}

// NewDropout creates a dropout layer in training mode.
func NewDropout[B tensor.Backend](rate float32) *Dropout[B] {
	if rate < 0 || rate >= 1 {
		panic(fmt.Sprintf("Dropout: rate must be in [0, 1), got %v", rate))
	}
	return &Dropout[B]{Rate: rate, training: true}
}

// SetTraining toggles dropping.
func (d *Dropout[B]) SetTraining(training bool) { d.training = training }

// Forward applies the dropout mask.
func (d *Dropout[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	if !d.training || d.Rate == 0 {
		return input
	}
	mask := tensor.MustRaw(input.Shape())
	scale := 1 / (1 - d.Rate)
	md := mask.Data()
	for i := range md {
		if rng.Float32() >= d.Rate {
			md[i] = scale
		}
	}
	return input.Mul(tensor.New(mask, input.Backend()))
}

// Parameters returns nil.
func (*Dropout[B]) Parameters() []*Parameter[B] { return nil }

// Dropout2D zeroes entire channels of [N, C, H, W] inputs with probability
// Rate during training, rescaling the surviving channels.
type Dropout2D[B tensor.Backend] struct {
	Rate float32

	training bool
}

// NewDropout2D creates a channel dropout layer in training mode.
func NewDropout2D[B tensor.Backend](rate float32) *Dropout2D[B] {
	if rate < 0 || rate >= 1 {
		panic(fmt.Sprintf("Dropout2D: rate must be in [0, 1), got %v", rate))
	}
	return &Dropout2D[B]{Rate: rate, training: true}
}

// SetTraining toggles dropping.
func (d *Dropout2D[B]) SetTraining(training bool) { d.training = training }

// Forward applies a per-channel dropout mask to input [N, C, H, W].
func (d *Dropout2D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("Dropout2D.Forward: want rank-4 input [N,C,H,W], got %v", shape))
	}
	if !d.training || d.Rate == 0 {
		return input
	}
	n, c := shape[0], shape[1]
	mask := tensor.MustRaw(tensor.Shape{n, c, 1, 1})
	scale := 1 / (1 - d.Rate)
	md := mask.Data()
	for i := range md {
		if rng.Float32() >= d.Rate {
			md[i] = scale
		}
	}
	return input.Mul(tensor.New(mask, input.Backend()))
}

// Parameters returns nil.
func (*Dropout2D[B]) Parameters() []*Parameter[B] { return nil }
