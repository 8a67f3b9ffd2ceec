// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"

	"github.com/ASEM000/Osiris/tensor"
)

// Linear applies an affine transform to the last axis of its input:
// y = x @ W + b with weight [in, out] and bias [out].
//
// Weights default to he_normal initialization, biases to ones. Construct
// with in = nn.Infer to defer weight creation until the first Forward call
// supplies a concrete input width.
//
//	layer := nn.NewLinear(5, 6, backend)
//	out := layer.Forward(x) // [..., 5] -> [..., 6]
type Linear[B tensor.Backend] struct {
	InFeatures  int
	OutFeatures int
	Weight      *Parameter[B] // [in, out]
	Bias        *Parameter[B] // [out], nil when built without bias

	weightInit string
	biasInit   string // "" means no bias
	backend    B
}

// NewLinear creates a Linear layer with default initialization
// (weights he_normal, bias ones).
func NewLinear[B tensor.Backend](in, out int, backend B) *Linear[B] {
	return NewLinearInit(in, out, "he_normal", "ones", backend)
}

// NewLinearInit creates a Linear layer with named weight and bias
// initializers. An empty biasInit omits the bias term.
func NewLinearInit[B tensor.Backend](in, out int, weightInit, biasInit string, backend B) *Linear[B] {
	if out <= 0 {
		panic(fmt.Sprintf("Linear: out features must be positive, got %d", out))
	}
	l := &Linear[B]{
		InFeatures:  in,
		OutFeatures: out,
		weightInit:  weightInit,
		biasInit:    biasInit,
		backend:     backend,
	}
	if in != Infer {
		if in <= 0 {
			panic(fmt.Sprintf("Linear: in features must be positive, got %d", in))
		}
		l.materialize(in)
	}
	return l
}

// materialize creates the parameters once the input width is known.
func (l *Linear[B]) materialize(in int) {
	l.InFeatures = in
	l.Weight = initParam[B]("weight", l.weightInit, tensor.Shape{in, l.OutFeatures}, l.backend)
	if l.biasInit != "" {
		l.Bias = initParam[B]("bias", l.biasInit, tensor.Shape{l.OutFeatures}, l.backend)
	}
}

// Forward applies the layer to the last axis of input [..., in].
func (l *Linear[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) == 0 {
		panic("Linear.Forward: scalar input")
	}
	in := shape[len(shape)-1]
	if l.Weight == nil {
		l.materialize(in)
	}
	if in != l.InFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected %d input features, got %d", l.InFeatures, in))
	}

	lead := input.NumElements() / in
	out := input.Reshape(lead, in).MatMul(l.Weight.Tensor())
	outShape := append(shape[:len(shape)-1].Clone(), l.OutFeatures)
	result := out.Reshape(outShape...)
	if l.Bias != nil {
		result = result.Add(l.Bias.Tensor())
	}
	return result
}

// Parameters returns the weight and, if present, the bias.
func (l *Linear[B]) Parameters() []*Parameter[B] {
	if l.Weight == nil {
		return nil
	}
	if l.Bias != nil {
		return []*Parameter[B]{l.Weight, l.Bias}
	}
	return []*Parameter[B]{l.Weight}
}

// Bilinear applies a bilinear transform to a pair of inputs:
// y[o] = sum_ab x1[a] * x2[b] * W[a,b,o] + b[o].
//
//	layer := nn.NewBilinear(5, 6, 7, backend)
//	out := layer.Forward(x1, x2) // [N,5], [N,6] -> [N,7]
type Bilinear[B tensor.Backend] struct {
	In1Features int
	In2Features int
	OutFeatures int
	Weight      *Parameter[B] // [in1, in2, out]
	Bias        *Parameter[B] // [out]

	backend B
}

// NewBilinear creates a Bilinear layer (weights he_normal, bias ones).
func NewBilinear[B tensor.Backend](in1, in2, out int, backend B) *Bilinear[B] {
	if in1 <= 0 || in2 <= 0 || out <= 0 {
		panic(fmt.Sprintf("Bilinear: feature counts must be positive, got (%d, %d, %d)", in1, in2, out))
	}
	return &Bilinear[B]{
		In1Features: in1,
		In2Features: in2,
		OutFeatures: out,
		Weight:      initParam[B]("weight", "he_normal", tensor.Shape{in1, in2, out}, backend),
		Bias:        initParam[B]("bias", "ones", tensor.Shape{out}, backend),
		backend:     backend,
	}
}

// Forward applies the bilinear form to batched inputs [N, in1] and [N, in2].
func (l *Bilinear[B]) Forward(x1, x2 *tensor.Tensor[B]) *tensor.Tensor[B] {
	s1, s2 := x1.Shape(), x2.Shape()
	if len(s1) != 2 || len(s2) != 2 || s1[0] != s2[0] {
		panic(fmt.Sprintf("Bilinear.Forward: want [N,%d] and [N,%d], got %v and %v",
			l.In1Features, l.In2Features, s1, s2))
	}
	n := s1[0]
	// x1 @ W viewed as [in1, in2*out], regrouped per batch, contracted with x2.
	mixed := x1.MatMul(l.Weight.Tensor().Reshape(l.In1Features, l.In2Features*l.OutFeatures))
	prod := mixed.Reshape(n, l.In2Features, l.OutFeatures).Mul(x2.Reshape(n, l.In2Features, 1))
	return prod.SumDim(1, false).Add(l.Bias.Tensor())
}

// Parameters returns the weight and bias.
func (l *Bilinear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.Weight, l.Bias}
}

// Identity passes its input through unchanged.
type Identity[B tensor.Backend] struct{}

// NewIdentity creates an Identity layer.
func NewIdentity[B tensor.Backend]() *Identity[B] { return &Identity[B]{} }

// Forward returns input unchanged.
func (Identity[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] { return input }

// Parameters returns nil.
func (Identity[B]) Parameters() []*Parameter[B] { return nil }

// Embedding maps integer indices to learned vectors from a [vocab, dim]
// table initialized uniformly in [0, 1).
type Embedding[B tensor.Backend] struct {
	InFeatures  int // vocabulary size
	OutFeatures int // embedding dimension
	Weight      *Parameter[B]

	backend B
}

// NewEmbedding creates an embedding table with vocab rows of dim values.
func NewEmbedding[B tensor.Backend](vocab, dim int, backend B) *Embedding[B] {
	if vocab <= 0 || dim <= 0 {
		panic(fmt.Sprintf("Embedding: sizes must be positive, got (%d, %d)", vocab, dim))
	}
	return &Embedding[B]{
		InFeatures:  vocab,
		OutFeatures: dim,
		Weight:      initParam[B]("weight", "uniform", tensor.Shape{vocab, dim}, backend),
		backend:     backend,
	}
}

// Lookup embeds a slice of indices into a [len(indices), dim] tensor.
func (e *Embedding[B]) Lookup(indices []int) *tensor.Tensor[B] {
	return e.Weight.Tensor().Take(indices)
}

// Forward embeds a 1-D tensor of integral values. Panics if any value is
// not a whole number within the vocabulary.
func (e *Embedding[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	data := input.Data()
	indices := make([]int, len(data))
	for i, v := range data {
		idx := int(v)
		if float32(idx) != v {
			panic(fmt.Sprintf("Embedding.Forward: input value %v is not an integer index", v))
		}
		indices[i] = idx
	}
	return e.Lookup(indices)
}

// Parameters returns the embedding table.
func (e *Embedding[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{e.Weight}
}
