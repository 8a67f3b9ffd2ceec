// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"

	"github.com/ASEM000/Osiris/tensor"
)

// FNN is a fully connected network described by a list of layer sizes.
//
// sizes [10, 5, 2] yields two Linear layers (10->5, 5->2) with the
// activation applied between them but not after the final layer.
//
//	net := nn.NewFNN([]int{10, 5, 2}, "tanh", backend)
//	out := net.Forward(x) // [N,10] -> [N,2]
type FNN[B tensor.Backend] struct {
	Layers []*Linear[B]
	Act    Module[B]
}

// NewFNN builds a fully connected network. act names an activation from the
// catalog (see ResolveActivation); weights use glorot_uniform and biases
// zeros, the usual defaults for tanh-style networks.
func NewFNN[B tensor.Backend](sizes []int, act string, backend B) *FNN[B] {
	if len(sizes) < 2 {
		panic(fmt.Sprintf("FNN: need at least two sizes, got %v", sizes))
	}
	layers := make([]*Linear[B], len(sizes)-1)
	for i := range layers {
		layers[i] = NewLinearInit(sizes[i], sizes[i+1], "glorot_uniform", "zeros", backend)
	}
	actFn, err := ResolveActivation[B](act)
	if err != nil {
		panic(err)
	}
	return &FNN[B]{Layers: layers, Act: actFn}
}

// Forward applies each layer with the activation between them.
func (f *FNN[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	x := input
	for i, layer := range f.Layers {
		x = layer.Forward(x)
		if i < len(f.Layers)-1 {
			x = f.Act.Forward(x)
		}
	}
	return x
}

// Parameters returns the parameters of every layer.
func (f *FNN[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, layer := range f.Layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// MLP is a multi-layer perceptron with uniformly sized hidden layers.
//
// in=1, out=2, hidden=4, depth=2 is equivalent to FNN sizes [1, 4, 4, 2].
type MLP[B tensor.Backend] struct {
	Net *FNN[B]
}

// NewMLP builds a multi-layer perceptron. depth counts the hidden layers
// including the output layer's input, matching FNN([in, hidden*depth..., out]).
func NewMLP[B tensor.Backend](in, out, hidden, depth int, act string, backend B) *MLP[B] {
	if hidden < 1 {
		panic(fmt.Sprintf("MLP: hidden size must be positive, got %d", hidden))
	}
	if depth < 1 {
		panic(fmt.Sprintf("MLP: depth must be positive, got %d", depth))
	}
	sizes := make([]int, 0, depth+2)
	sizes = append(sizes, in)
	for i := 0; i < depth; i++ {
		sizes = append(sizes, hidden)
	}
	sizes = append(sizes, out)
	return &MLP[B]{Net: NewFNN(sizes, act, backend)}
}

// Forward applies the perceptron.
func (m *MLP[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	return m.Net.Forward(input)
}

// Parameters returns all layer parameters.
func (m *MLP[B]) Parameters() []*Parameter[B] {
	return m.Net.Parameters()
}
