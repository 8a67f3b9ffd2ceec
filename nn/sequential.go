// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import "github.com/ASEM000/Osiris/tensor"

// Sequential chains modules, feeding each output into the next layer.
type Sequential[B tensor.Backend] struct {
	Layers []Module[B]
}

// NewSequential creates a chain of the given layers.
func NewSequential[B tensor.Backend](layers ...Module[B]) *Sequential[B] {
	return &Sequential[B]{Layers: layers}
}

// Add appends layers to the chain and returns the receiver for chaining.
func (s *Sequential[B]) Add(layers ...Module[B]) *Sequential[B] {
	s.Layers = append(s.Layers, layers...)
	return s
}

// Len returns the number of layers.
func (s *Sequential[B]) Len() int { return len(s.Layers) }

// At returns the i-th layer.
func (s *Sequential[B]) At(i int) Module[B] { return s.Layers[i] }

// Forward threads the input through every layer in order.
func (s *Sequential[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	out := input
	for _, layer := range s.Layers {
		out = layer.Forward(out)
	}
	return out
}

// Parameters returns the concatenated parameters of all layers.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var ps []*Parameter[B]
	for _, layer := range s.Layers {
		ps = append(ps, layer.Parameters()...)
	}
	return ps
}

// SetTraining forwards the training flag to every layer that carries one.
func (s *Sequential[B]) SetTraining(training bool) {
	for _, layer := range s.Layers {
		if ts, ok := layer.(TrainSwitcher); ok {
			ts.SetTraining(training)
		}
	}
}
