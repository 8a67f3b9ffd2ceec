// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import "github.com/ASEM000/Osiris/tensor"

// Parameter is a named trainable tensor.
//
// The wrapped tensor is marked as a gradient leaf; after a backward pass its
// gradient is available through Grad. Layers expose their parameters as
// exported fields so the tree package can reach them structurally.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[B]
}

// NewParameter wraps t as a trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[B]) *Parameter[B] {
	t.SetRequiresGrad(true)
	return &Parameter[B]{name: name, tensor: t}
}

// Name returns the parameter's local name (e.g. "weight", "bias").
func (p *Parameter[B]) Name() string { return p.name }

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[B] { return p.tensor }

// Shape returns the parameter shape.
func (p *Parameter[B]) Shape() tensor.Shape { return p.tensor.Shape() }

// NumElements returns the number of scalar values in the parameter.
func (p *Parameter[B]) NumElements() int { return p.tensor.NumElements() }

// Grad returns the accumulated gradient, or nil before a backward pass.
func (p *Parameter[B]) Grad() *tensor.RawTensor { return p.tensor.Grad() }

// ZeroGrad drops the accumulated gradient.
func (p *Parameter[B]) ZeroGrad() { p.tensor.ZeroGrad() }
