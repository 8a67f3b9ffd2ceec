// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"

	"github.com/ASEM000/Osiris/tensor"
)

// LayerNorm normalizes the trailing dimensions of the input to zero mean
// and unit variance, then applies a learned per-element scale and shift.
type LayerNorm[B tensor.Backend] struct {
	NormShape tensor.Shape
	Eps       float32

	Gamma *Parameter[B]
	Beta  *Parameter[B]
}

// NewLayerNorm creates a layer normalization over the trailing normShape
// dimensions with learned affine parameters.
func NewLayerNorm[B tensor.Backend](normShape tensor.Shape, backend B) *LayerNorm[B] {
	if err := normShape.Validate(); err != nil {
		panic(fmt.Sprintf("LayerNorm: %v", err))
	}
	return &LayerNorm[B]{
		NormShape: normShape.Clone(),
		Eps:       1e-5,
		Gamma:     initParam[B]("gamma", "ones", normShape, backend),
		Beta:      initParam[B]("beta", "zeros", normShape, backend),
	}
}

// Forward normalizes input [..., normShape...].
func (l *LayerNorm[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	nd := len(l.NormShape)
	if len(shape) < nd || !tensor.Shape(shape[len(shape)-nd:]).Equal(l.NormShape) {
		panic(fmt.Sprintf("LayerNorm.Forward: input %v does not end with %v", shape, l.NormShape))
	}
	n := l.NormShape.NumElements()
	lead := input.NumElements() / n

	flat := input.Reshape(lead, n)
	mean := flat.MeanDim(1, true)
	centered := flat.Sub(mean)
	variance := centered.Mul(centered).MeanDim(1, true)
	normed := centered.Mul(variance.AddScalar(l.Eps).Rsqrt())

	out := normed.Reshape(shape...)
	return out.Mul(l.Gamma.Tensor()).Add(l.Beta.Tensor())
}

// Parameters returns the scale and shift.
func (l *LayerNorm[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.Gamma, l.Beta}
}

// GroupNorm splits the channel dimension of [N, C, ...] inputs into groups
// and normalizes each group across its channels and spatial extent.
type GroupNorm[B tensor.Backend] struct {
	Channels int
	Groups   int
	Eps      float32

	Gamma *Parameter[B]
	Beta  *Parameter[B]

	backend B
}

// NewGroupNorm creates a group normalization layer. Passing Infer as the
// channel count defers parameter creation to the first Forward call.
func NewGroupNorm[B tensor.Backend](channels, groups int, backend B) *GroupNorm[B] {
	if groups <= 0 {
		panic(fmt.Sprintf("GroupNorm: invalid group count %d", groups))
	}
	g := &GroupNorm[B]{Channels: channels, Groups: groups, Eps: 1e-5, backend: backend}
	if channels != Infer {
		g.materialize(channels)
	}
	return g
}

func (g *GroupNorm[B]) materialize(channels int) {
	if channels <= 0 || channels%g.Groups != 0 {
		panic(fmt.Sprintf("GroupNorm: %d channels not divisible by %d groups", channels, g.Groups))
	}
	g.Channels = channels
	g.Gamma = initParam[B]("gamma", "ones", tensor.Shape{channels}, g.backend)
	g.Beta = initParam[B]("beta", "zeros", tensor.Shape{channels}, g.backend)
}

// Forward normalizes input [N, C, ...].
func (g *GroupNorm[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) < 2 {
		panic(fmt.Sprintf("GroupNorm.Forward: want at least rank-2 input [N,C,...], got %v", shape))
	}
	if g.Gamma == nil {
		g.materialize(shape[1])
	}
	if shape[1] != g.Channels {
		panic(fmt.Sprintf("GroupNorm.Forward: expected %d channels, got %d", g.Channels, shape[1]))
	}
	n, c := shape[0], shape[1]
	spatial := input.NumElements() / (n * c)

	grouped := input.Reshape(n, g.Groups, c/g.Groups*spatial)
	mean := grouped.MeanDim(2, true)
	centered := grouped.Sub(mean)
	variance := centered.Mul(centered).MeanDim(2, true)
	normed := centered.Mul(variance.AddScalar(g.Eps).Rsqrt()).Reshape(shape...)

	// Per-channel affine, broadcast over the spatial dims.
	affineShape := make(tensor.Shape, len(shape)-1)
	affineShape[0] = c
	for i := 1; i < len(affineShape); i++ {
		affineShape[i] = 1
	}
	gamma := g.Gamma.Tensor().Reshape(affineShape...)
	beta := g.Beta.Tensor().Reshape(affineShape...)
	return normed.Mul(gamma).Add(beta)
}

// Parameters returns the scale and shift.
func (g *GroupNorm[B]) Parameters() []*Parameter[B] {
	if g.Gamma == nil {
		return nil
	}
	return []*Parameter[B]{g.Gamma, g.Beta}
}

// InstanceNorm is GroupNorm with one group per channel: every channel of
// every sample is normalized over its own spatial extent.
type InstanceNorm[B tensor.Backend] struct {
	Norm *GroupNorm[B]

	backend B
}

// NewInstanceNorm creates an instance normalization layer. Passing Infer
// defers parameter creation to the first Forward call.
func NewInstanceNorm[B tensor.Backend](channels int, backend B) *InstanceNorm[B] {
	in := &InstanceNorm[B]{backend: backend}
	if channels != Infer {
		in.Norm = NewGroupNorm(channels, channels, backend)
	}
	return in
}

// Forward normalizes input [N, C, ...].
func (in *InstanceNorm[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	if in.Norm == nil {
		shape := input.Shape()
		if len(shape) < 2 {
			panic(fmt.Sprintf("InstanceNorm.Forward: want at least rank-2 input, got %v", shape))
		}
		in.Norm = NewGroupNorm(shape[1], shape[1], in.backend)
	}
	return in.Norm.Forward(input)
}

// Parameters returns the scale and shift.
func (in *InstanceNorm[B]) Parameters() []*Parameter[B] {
	if in.Norm == nil {
		return nil
	}
	return in.Norm.Parameters()
}

// BatchNorm normalizes each channel of [N, C, ...] inputs over the batch
// and spatial dims. During training it uses batch statistics and maintains
// exponential moving averages, during evaluation it uses the averages.
type BatchNorm[B tensor.Backend] struct {
	Channels int
	Eps      float32
	Momentum float32

	Gamma *Parameter[B]
	Beta  *Parameter[B]

	RunningMean *tensor.RawTensor
	RunningVar  *tensor.RawTensor

	training bool
	backend  B
}

// NewBatchNorm creates a batch normalization layer in training mode with
// momentum 0.1. Passing Infer defers parameter creation to the first
// Forward call.
func NewBatchNorm[B tensor.Backend](channels int, backend B) *BatchNorm[B] {
	bn := &BatchNorm[B]{
		Channels: channels,
		Eps:      1e-5,
		Momentum: 0.1,
		training: true,
		backend:  backend,
	}
	if channels != Infer {
		bn.materialize(channels)
	}
	return bn
}

func (bn *BatchNorm[B]) materialize(channels int) {
	if channels <= 0 {
		panic(fmt.Sprintf("BatchNorm: invalid channel count %d", channels))
	}
	bn.Channels = channels
	bn.Gamma = initParam[B]("gamma", "ones", tensor.Shape{channels}, bn.backend)
	bn.Beta = initParam[B]("beta", "zeros", tensor.Shape{channels}, bn.backend)
	bn.RunningMean = tensor.MustRaw(tensor.Shape{channels})
	bn.RunningVar = tensor.MustRaw(tensor.Shape{channels})
	for i := range bn.RunningVar.Data() {
		bn.RunningVar.Data()[i] = 1
	}
}

// SetTraining toggles between batch statistics and running averages.
func (bn *BatchNorm[B]) SetTraining(training bool) { bn.training = training }

// Forward normalizes input [N, C, ...].
func (bn *BatchNorm[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) < 2 {
		panic(fmt.Sprintf("BatchNorm.Forward: want at least rank-2 input [N,C,...], got %v", shape))
	}
	if bn.Gamma == nil {
		bn.materialize(shape[1])
	}
	if shape[1] != bn.Channels {
		panic(fmt.Sprintf("BatchNorm.Forward: expected %d channels, got %d", bn.Channels, shape[1]))
	}
	n, c := shape[0], shape[1]
	spatial := input.NumElements() / (n * c)

	// View as [N, C, S] and reduce over batch and spatial dims.
	x := input.Reshape(n, c, spatial)

	affine := func(normed *tensor.Tensor[B]) *tensor.Tensor[B] {
		gamma := bn.Gamma.Tensor().Reshape(c, 1)
		beta := bn.Beta.Tensor().Reshape(c, 1)
		return normed.Mul(gamma).Add(beta).Reshape(shape...)
	}

	if !bn.training {
		mean := tensor.New(bn.RunningMean.Clone().Reshape(tensor.Shape{c, 1}), input.Backend())
		variance := tensor.New(bn.RunningVar.Clone().Reshape(tensor.Shape{c, 1}), input.Backend())
		normed := x.Sub(mean).Mul(variance.AddScalar(bn.Eps).Rsqrt())
		return affine(normed)
	}

	mean := x.MeanDim(2, true).MeanDim(0, true)
	centered := x.Sub(mean)
	variance := centered.Mul(centered).MeanDim(2, true).MeanDim(0, true)
	normed := centered.Mul(variance.AddScalar(bn.Eps).Rsqrt())

	// Update the running statistics outside the autodiff graph.
	m := bn.Momentum
	meanData, varData := mean.Data(), variance.Data()
	rm, rv := bn.RunningMean.Data(), bn.RunningVar.Data()
	for i := 0; i < c; i++ {
		rm[i] = (1-m)*rm[i] + m*meanData[i]
		rv[i] = (1-m)*rv[i] + m*varData[i]
	}

	return affine(normed)
}

// Parameters returns the scale and shift. The running statistics are
// state, not parameters.
func (bn *BatchNorm[B]) Parameters() []*Parameter[B] {
	if bn.Gamma == nil {
		return nil
	}
	return []*Parameter[B]{bn.Gamma, bn.Beta}
}
