// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "fmt"

// Tensor is a float32 tensor bound to a compute backend B.
//
// Tensors form a reverse-mode autodiff graph: every differentiable operation
// records its input tensors and a backward closure on the result. Calling
// Backward on a scalar replays the closures in reverse topological order and
// accumulates gradients on every tensor that requires them.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros(tensor.Shape{3, 4}, backend)
//	y := x.Add(x).MulScalar(0.5)
type Tensor[B Backend] struct {
	raw          *RawTensor
	backend      B
	requiresGrad bool
	grad         *RawTensor
	parents      []*Tensor[B]
	backward     func(grad *RawTensor)
}

// gradEnabled guards graph recording. Toggled by NoGrad.
var gradEnabled = true

// NoGrad runs fn with gradient recording disabled.
//
// Operations executed inside fn produce tensors with no parents and no
// backward closures, which keeps inference passes from retaining the graph.
func NoGrad(fn func()) {
	prev := gradEnabled
	gradEnabled = false
	defer func() { gradEnabled = prev }()
	fn()
}

// GradEnabled reports whether operations currently record the autodiff graph.
func GradEnabled() bool {
	return gradEnabled
}

// New wraps a RawTensor in a Tensor bound to the given backend.
func New[B Backend](raw *RawTensor, backend B) *Tensor[B] {
	return &Tensor[B]{raw: raw, backend: backend}
}

// FromOp builds an operation result node.
//
// raw is the forward result, parents are the operation inputs, and backward
// receives the upstream gradient and is responsible for accumulating into
// each parent via AccumGrad. The closure is only attached when recording is
// enabled and at least one parent requires gradients.
func FromOp[B Backend](raw *RawTensor, backend B, backward func(grad *RawTensor), parents ...*Tensor[B]) *Tensor[B] {
	t := New(raw, backend)
	if !gradEnabled {
		return t
	}
	for _, p := range parents {
		if p != nil && p.requiresGrad {
			t.requiresGrad = true
			t.parents = parents
			t.backward = backward
			break
		}
	}
	return t
}

// FromSlice creates a tensor from a Go slice, copying the data.
func FromSlice[B Backend](data []float32, shape Shape, backend B) (*Tensor[B], error) {
	raw, err := RawFromSlice(data, shape)
	if err != nil {
		return nil, err
	}
	return New(raw, backend), nil
}

// Shape returns the tensor's shape.
func (t *Tensor[B]) Shape() Shape { return t.raw.Shape() }

// NumElements returns the total number of elements.
func (t *Tensor[B]) NumElements() int { return t.raw.NumElements() }

// Raw returns the underlying RawTensor.
func (t *Tensor[B]) Raw() *RawTensor { return t.raw }

// Backend returns the compute backend.
func (t *Tensor[B]) Backend() B { return t.backend }

// Data returns the underlying buffer. Writes through the slice mutate the
// tensor in place and are invisible to the autodiff graph.
func (t *Tensor[B]) Data() []float32 { return t.raw.Data() }

// Item returns the value of a single-element tensor.
func (t *Tensor[B]) Item() float32 {
	if t.NumElements() != 1 {
		panic(fmt.Sprintf("Item: tensor has shape %v, want a single element", t.Shape()))
	}
	return t.raw.Data()[0]
}

// At returns the element at the given indices.
func (t *Tensor[B]) At(indices ...int) float32 {
	return t.raw.At(indices...)
}

// RequiresGrad reports whether gradients are accumulated for this tensor.
func (t *Tensor[B]) RequiresGrad() bool { return t.requiresGrad }

// SetRequiresGrad marks the tensor as a gradient leaf (or clears the mark).
// Parameters call this with true at construction.
func (t *Tensor[B]) SetRequiresGrad(v bool) { t.requiresGrad = v }

// Grad returns the accumulated gradient, or nil before a backward pass.
func (t *Tensor[B]) Grad() *RawTensor { return t.grad }

// ZeroGrad drops the accumulated gradient.
func (t *Tensor[B]) ZeroGrad() { t.grad = nil }

// AccumGrad adds g into the tensor's gradient buffer. Backward closures call
// this for each parent they differentiate into.
func (t *Tensor[B]) AccumGrad(g *RawTensor) {
	if !t.requiresGrad {
		return
	}
	if !g.Shape().Equal(t.Shape()) {
		panic(fmt.Sprintf("AccumGrad: gradient shape %v does not match tensor shape %v", g.Shape(), t.Shape()))
	}
	if t.grad == nil {
		t.grad = g.Clone()
		return
	}
	dst := t.grad.Data()
	src := g.Data()
	for i := range dst {
		dst[i] += src[i]
	}
}

// Detach returns a tensor sharing the same buffer but cut out of the
// autodiff graph. Useful for carrying recurrent state between steps without
// growing the gradient chain.
func (t *Tensor[B]) Detach() *Tensor[B] {
	return New(t.raw, t.backend)
}

// Clone returns a deep copy detached from the graph.
func (t *Tensor[B]) Clone() *Tensor[B] {
	return New(t.raw.Clone(), t.backend)
}

// Backward runs reverse-mode differentiation from t.
//
// t is seeded with a gradient of ones (it is typically a scalar loss), the
// graph below it is sorted topologically, and every recorded closure runs
// once with its node's accumulated gradient.
func (t *Tensor[B]) Backward() {
	if !t.requiresGrad {
		return
	}
	seed := MustRaw(t.Shape())
	data := seed.Data()
	for i := range data {
		data[i] = 1
	}
	t.grad = seed

	visited := make(map[*Tensor[B]]bool)
	var order []*Tensor[B]
	var visit func(*Tensor[B])
	visit = func(n *Tensor[B]) {
		if n == nil || visited[n] {
			return
		}
		visited[n] = true
		for _, p := range n.parents {
			visit(p)
		}
		order = append(order, n)
	}
	visit(t)

	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		if n.backward != nil && n.grad != nil {
			n.backward(n.grad)
		}
	}
}

// String renders a short description, not the full contents.
func (t *Tensor[B]) String() string {
	return fmt.Sprintf("Tensor%v on %s", t.Shape(), t.backend.Name())
}
