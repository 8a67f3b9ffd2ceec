// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"

	"github.com/ASEM000/Osiris/tensor"
)

// Flatten collapses every dimension after the batch dimension, mapping
// [N, ...] to [N, prod(...)].
type Flatten[B tensor.Backend] struct{}

// NewFlatten creates a flattening layer.
func NewFlatten[B tensor.Backend]() *Flatten[B] { return &Flatten[B]{} }

// Forward flattens a batched input.
func (Flatten[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) < 1 {
		panic(fmt.Sprintf("Flatten.Forward: want batched input, got %v", shape))
	}
	n := shape[0]
	return input.Reshape(n, input.NumElements()/n)
}

// Parameters returns nil.
func (Flatten[B]) Parameters() []*Parameter[B] { return nil }

// Lambda lifts a plain tensor function into a parameterless module.
type Lambda[B tensor.Backend] struct {
	Fn func(*tensor.Tensor[B]) *tensor.Tensor[B]
}

// NewLambda wraps fn as a module.
func NewLambda[B tensor.Backend](fn func(*tensor.Tensor[B]) *tensor.Tensor[B]) *Lambda[B] {
	return &Lambda[B]{Fn: fn}
}

// Forward applies the wrapped function.
func (l *Lambda[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] { return l.Fn(input) }

// Parameters returns nil.
func (*Lambda[B]) Parameters() []*Parameter[B] { return nil }
