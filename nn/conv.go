// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"

	"github.com/ASEM000/Osiris/tensor"
)

// ConvOpts configures the optional knobs of a convolution layer. The zero
// value selects stride 1, no padding, a single group, glorot_uniform
// weights and a zero bias.
type ConvOpts struct {
	Stride     [2]int  // per-axis stride, zero entries become 1
	Padding    Padding // defaults to Valid
	Groups     int     // channel groups, zero becomes 1
	WeightInit string  // initializer name, "" means glorot_uniform
	BiasInit   string  // initializer name, "" means zeros
	NoBias     bool    // omit the bias term entirely
}

func (o ConvOpts) withDefaults() ConvOpts {
	if o.Stride[0] == 0 {
		o.Stride[0] = 1
	}
	if o.Stride[1] == 0 {
		o.Stride[1] = 1
	}
	if o.Groups == 0 {
		o.Groups = 1
	}
	if o.WeightInit == "" {
		o.WeightInit = "glorot_uniform"
	}
	if o.BiasInit == "" {
		o.BiasInit = "zeros"
	}
	return o
}

// Conv2D is a 2-D convolution over [N, C, H, W] inputs.
//
// The weight has shape [out, in/groups, kh, kw]. Passing Infer as the input
// channel count defers parameter creation to the first Forward call.
type Conv2D[B tensor.Backend] struct {
	InChannels  int
	OutChannels int
	Kernel      [2]int
	Stride      [2]int
	Pad         Padding
	Groups      int

	Weight *Parameter[B]
	Bias   *Parameter[B]

	weightInit string
	biasInit   string
	backend    B
}

// NewConv2D creates a 2-D convolution layer.
func NewConv2D[B tensor.Backend](in, out int, kernel [2]int, opts ConvOpts, backend B) *Conv2D[B] {
	opts = opts.withDefaults()
	if out <= 0 || out%opts.Groups != 0 {
		panic(fmt.Sprintf("Conv2D: out channels %d not divisible by %d groups", out, opts.Groups))
	}
	if kernel[0] <= 0 || kernel[1] <= 0 {
		panic(fmt.Sprintf("Conv2D: invalid kernel %v", kernel))
	}
	c := &Conv2D[B]{
		InChannels:  in,
		OutChannels: out,
		Kernel:      kernel,
		Stride:      opts.Stride,
		Pad:         opts.Padding,
		Groups:      opts.Groups,
		weightInit:  opts.WeightInit,
		backend:     backend,
	}
	if !opts.NoBias {
		c.biasInit = opts.BiasInit
	}
	if in != Infer {
		c.materialize(in)
	}
	return c
}

func (c *Conv2D[B]) materialize(in int) {
	if in <= 0 || in%c.Groups != 0 {
		panic(fmt.Sprintf("Conv2D: in channels %d not divisible by %d groups", in, c.Groups))
	}
	c.InChannels = in
	wshape := tensor.Shape{c.OutChannels, in / c.Groups, c.Kernel[0], c.Kernel[1]}
	c.Weight = initParam[B]("weight", c.weightInit, wshape, c.backend)
	if c.biasInit != "" {
		c.Bias = initParam[B]("bias", c.biasInit, tensor.Shape{c.OutChannels}, c.backend)
	}
}

// Forward convolves a batched input [N, C, H, W].
func (c *Conv2D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("Conv2D.Forward: want rank-4 input [N,C,H,W], got %v", shape))
	}
	if c.Weight == nil {
		c.materialize(shape[1])
	}
	if shape[1] != c.InChannels {
		panic(fmt.Sprintf("Conv2D.Forward: expected %d input channels, got %d", c.InChannels, shape[1]))
	}
	pad := c.Pad.pair2(shape[2], shape[3], c.Kernel, c.Stride)
	out := input.Conv2D(c.Weight.Tensor(), c.Stride, pad, c.Groups)
	if c.Bias != nil {
		out = out.Add(c.Bias.Tensor().Reshape(c.OutChannels, 1, 1))
	}
	return out
}

// Parameters returns the kernel and, if present, the bias.
func (c *Conv2D[B]) Parameters() []*Parameter[B] {
	if c.Weight == nil {
		return nil
	}
	ps := []*Parameter[B]{c.Weight}
	if c.Bias != nil {
		ps = append(ps, c.Bias)
	}
	return ps
}

// Conv1D is a 1-D convolution over [N, C, W] inputs with weight shape
// [out, in/groups, k].
type Conv1D[B tensor.Backend] struct {
	InChannels  int
	OutChannels int
	Kernel      int
	Stride      int
	Pad         Padding
	Groups      int

	Weight *Parameter[B]
	Bias   *Parameter[B]

	weightInit string
	biasInit   string
	backend    B
}

// NewConv1D creates a 1-D convolution layer. Only the leading entry of
// opts.Stride is used.
func NewConv1D[B tensor.Backend](in, out, kernel int, opts ConvOpts, backend B) *Conv1D[B] {
	opts = opts.withDefaults()
	if out <= 0 || out%opts.Groups != 0 {
		panic(fmt.Sprintf("Conv1D: out channels %d not divisible by %d groups", out, opts.Groups))
	}
	if kernel <= 0 {
		panic(fmt.Sprintf("Conv1D: invalid kernel %d", kernel))
	}
	c := &Conv1D[B]{
		InChannels:  in,
		OutChannels: out,
		Kernel:      kernel,
		Stride:      opts.Stride[0],
		Pad:         opts.Padding,
		Groups:      opts.Groups,
		weightInit:  opts.WeightInit,
		backend:     backend,
	}
	if !opts.NoBias {
		c.biasInit = opts.BiasInit
	}
	if in != Infer {
		c.materialize(in)
	}
	return c
}

func (c *Conv1D[B]) materialize(in int) {
	if in <= 0 || in%c.Groups != 0 {
		panic(fmt.Sprintf("Conv1D: in channels %d not divisible by %d groups", in, c.Groups))
	}
	c.InChannels = in
	wshape := tensor.Shape{c.OutChannels, in / c.Groups, c.Kernel}
	c.Weight = initParam[B]("weight", c.weightInit, wshape, c.backend)
	if c.biasInit != "" {
		c.Bias = initParam[B]("bias", c.biasInit, tensor.Shape{c.OutChannels}, c.backend)
	}
}

// Forward convolves a batched input [N, C, W].
func (c *Conv1D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("Conv1D.Forward: want rank-3 input [N,C,W], got %v", shape))
	}
	if c.Weight == nil {
		c.materialize(shape[1])
	}
	if shape[1] != c.InChannels {
		panic(fmt.Sprintf("Conv1D.Forward: expected %d input channels, got %d", c.InChannels, shape[1]))
	}
	pad := c.Pad.pair1(shape[2], c.Kernel, c.Stride)
	out := input.Conv1D(c.Weight.Tensor(), c.Stride, pad, c.Groups)
	if c.Bias != nil {
		out = out.Add(c.Bias.Tensor().Reshape(c.OutChannels, 1))
	}
	return out
}

// Parameters returns the kernel and, if present, the bias.
func (c *Conv1D[B]) Parameters() []*Parameter[B] {
	if c.Weight == nil {
		return nil
	}
	ps := []*Parameter[B]{c.Weight}
	if c.Bias != nil {
		ps = append(ps, c.Bias)
	}
	return ps
}

// DepthwiseConv2D convolves each input channel with its own set of
// Multiplier kernels, producing channels*multiplier output channels.
type DepthwiseConv2D[B tensor.Backend] struct {
	Conv *Conv2D[B]

	Multiplier int

	// pending builds Conv on first use when the channel count is deferred.
	pending func(in int)
}

// NewDepthwiseConv2D creates a depthwise 2-D convolution. The groups field
// of opts is ignored, the layer always uses one group per channel.
func NewDepthwiseConv2D[B tensor.Backend](channels, multiplier int, kernel [2]int, opts ConvOpts, backend B) *DepthwiseConv2D[B] {
	if multiplier <= 0 {
		panic(fmt.Sprintf("DepthwiseConv2D: invalid multiplier %d", multiplier))
	}
	d := &DepthwiseConv2D[B]{Multiplier: multiplier}
	if channels == Infer {
		// Out channels depend on the input width, so defer everything.
		opts.Groups = 0
		d.pending = func(in int) {
			o := opts
			o.Groups = in
			d.Conv = NewConv2D(in, in*multiplier, kernel, o, backend)
		}
		return d
	}
	opts.Groups = channels
	d.Conv = NewConv2D(channels, channels*multiplier, kernel, opts, backend)
	return d
}

// Forward convolves a batched input [N, C, H, W].
func (d *DepthwiseConv2D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	if d.Conv == nil {
		shape := input.Shape()
		if len(shape) != 4 {
			panic(fmt.Sprintf("DepthwiseConv2D.Forward: want rank-4 input, got %v", shape))
		}
		d.pending(shape[1])
	}
	return d.Conv.Forward(input)
}

// Parameters returns the wrapped convolution parameters.
func (d *DepthwiseConv2D[B]) Parameters() []*Parameter[B] {
	if d.Conv == nil {
		return nil
	}
	return d.Conv.Parameters()
}

// DepthwiseConv1D convolves each input channel with its own set of
// Multiplier kernels over [N, C, W] inputs.
type DepthwiseConv1D[B tensor.Backend] struct {
	Conv *Conv1D[B]

	Multiplier int

	pending func(in int)
}

// NewDepthwiseConv1D creates a depthwise 1-D convolution.
func NewDepthwiseConv1D[B tensor.Backend](channels, multiplier, kernel int, opts ConvOpts, backend B) *DepthwiseConv1D[B] {
	if multiplier <= 0 {
		panic(fmt.Sprintf("DepthwiseConv1D: invalid multiplier %d", multiplier))
	}
	d := &DepthwiseConv1D[B]{Multiplier: multiplier}
	if channels == Infer {
		d.pending = func(in int) {
			o := opts
			o.Groups = in
			d.Conv = NewConv1D(in, in*multiplier, kernel, o, backend)
		}
		return d
	}
	opts.Groups = channels
	d.Conv = NewConv1D(channels, channels*multiplier, kernel, opts, backend)
	return d
}

// Forward convolves a batched input [N, C, W].
func (d *DepthwiseConv1D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	if d.Conv == nil {
		shape := input.Shape()
		if len(shape) != 3 {
			panic(fmt.Sprintf("DepthwiseConv1D.Forward: want rank-3 input, got %v", shape))
		}
		d.pending(shape[1])
	}
	return d.Conv.Forward(input)
}

// Parameters returns the wrapped convolution parameters.
func (d *DepthwiseConv1D[B]) Parameters() []*Parameter[B] {
	if d.Conv == nil {
		return nil
	}
	return d.Conv.Parameters()
}
