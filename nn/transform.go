// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"

	"github.com/ASEM000/Osiris/tensor"
)

// RandomApply runs the wrapped module with probability Prob during
// training and passes through otherwise. Evaluation mode always passes
// through unless the probability is 1.
type RandomApply[B tensor.Backend] struct {
	Inner Module[B]
	Prob  float32

	training bool
}

// NewRandomApply wraps inner with application probability prob.
func NewRandomApply[B tensor.Backend](inner Module[B], prob float32) *RandomApply[B] {
	if prob < 0 || prob > 1 {
		panic(fmt.Sprintf("RandomApply: probability must be in [0, 1], got %v", prob))
	}
	return &RandomApply[B]{Inner: inner, Prob: prob, training: true}
}

// SetTraining toggles random application and forwards the flag to the
// wrapped module if it cares.
func (r *RandomApply[B]) SetTraining(training bool) {
	r.training = training
	if ts, ok := r.Inner.(TrainSwitcher); ok {
		ts.SetTraining(training)
	}
}

// Forward applies the wrapped module with the configured probability.
func (r *RandomApply[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	if r.Prob >= 1 {
		return r.Inner.Forward(input)
	}
	if !r.training || rng.Float32() >= r.Prob {
		return input
	}
	return r.Inner.Forward(input)
}

// Parameters returns the wrapped module parameters.
func (r *RandomApply[B]) Parameters() []*Parameter[B] { return r.Inner.Parameters() }

// RandomCutout2D zeroes a randomly placed [h, w] window in every channel
// of each sample during training.
type RandomCutout2D[B tensor.Backend] struct {
	Window [2]int

	training bool
}

// NewRandomCutout2D creates a cutout augmentation with the given window.
func NewRandomCutout2D[B tensor.Backend](window [2]int) *RandomCutout2D[B] {
	if window[0] <= 0 || window[1] <= 0 {
		panic(fmt.Sprintf("RandomCutout2D: invalid window %v", window))
	}
	return &RandomCutout2D[B]{Window: window, training: true}
}

// SetTraining toggles the augmentation.
func (c *RandomCutout2D[B]) SetTraining(training bool) { c.training = training }

// Forward cuts a window out of a batched input [N, C, H, W].
func (c *RandomCutout2D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("RandomCutout2D.Forward: want rank-4 input [N,C,H,W], got %v", shape))
	}
	if !c.training {
		return input
	}
	n, h, w := shape[0], shape[2], shape[3]
	ch, cw := c.Window[0], c.Window[1]
	if ch > h || cw > w {
		panic(fmt.Sprintf("RandomCutout2D.Forward: window %v larger than input %dx%d", c.Window, h, w))
	}
	mask := tensor.MustRaw(shape)
	md := mask.Data()
	for i := range md {
		md[i] = 1
	}
	for b := 0; b < n; b++ {
		top := rng.Intn(h - ch + 1)
		left := rng.Intn(w - cw + 1)
		for chn := 0; chn < shape[1]; chn++ {
			base := (b*shape[1] + chn) * h * w
			for y := top; y < top+ch; y++ {
				row := base + y*w
				for x := left; x < left+cw; x++ {
					md[row+x] = 0
				}
			}
		}
	}
	return input.Mul(tensor.New(mask, input.Backend()))
}

// Parameters returns nil.
func (*RandomCutout2D[B]) Parameters() []*Parameter[B] { return nil }

// RandomCutout1D zeroes a randomly placed window of length Window in every
// channel of each sample during training.
type RandomCutout1D[B tensor.Backend] struct {
	Window int

	training bool
}

// NewRandomCutout1D creates a cutout augmentation with the given window.
func NewRandomCutout1D[B tensor.Backend](window int) *RandomCutout1D[B] {
	if window <= 0 {
		panic(fmt.Sprintf("RandomCutout1D: invalid window %d", window))
	}
	return &RandomCutout1D[B]{Window: window, training: true}
}

// SetTraining toggles the augmentation.
func (c *RandomCutout1D[B]) SetTraining(training bool) { c.training = training }

// Forward cuts a window out of a batched input [N, C, W].
func (c *RandomCutout1D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("RandomCutout1D.Forward: want rank-3 input [N,C,W], got %v", shape))
	}
	if !c.training {
		return input
	}
	n, w := shape[0], shape[2]
	if c.Window > w {
		panic(fmt.Sprintf("RandomCutout1D.Forward: window %d larger than input %d", c.Window, w))
	}
	mask := tensor.MustRaw(shape)
	md := mask.Data()
	for i := range md {
		md[i] = 1
	}
	for b := 0; b < n; b++ {
		left := rng.Intn(w - c.Window + 1)
		for chn := 0; chn < shape[1]; chn++ {
			base := (b*shape[1] + chn) * w
			for x := left; x < left+c.Window; x++ {
				md[base+x] = 0
			}
		}
	}
	return input.Mul(tensor.New(mask, input.Backend()))
}

// Parameters returns nil.
func (*RandomCutout1D[B]) Parameters() []*Parameter[B] { return nil }
