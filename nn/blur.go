// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"
	"math"

	"github.com/ASEM000/Osiris/tensor"
)

// Filter2D applies a fixed [kh, kw] kernel to every channel of
// [N, C, H, W] inputs with "same" padding. The kernel is frozen, gradients
// flow to the input only.
type Filter2D[B tensor.Backend] struct {
	Kernel *tensor.RawTensor

	weight  *tensor.Tensor[B] // tiled per-channel, built lazily
	backend B
}

// NewFilter2D creates a per-channel correlation filter from a [kh, kw]
// kernel.
func NewFilter2D[B tensor.Backend](kernel *tensor.RawTensor, backend B) *Filter2D[B] {
	if len(kernel.Shape()) != 2 {
		panic(fmt.Sprintf("Filter2D: want rank-2 kernel, got %v", kernel.Shape()))
	}
	return &Filter2D[B]{Kernel: kernel, backend: backend}
}

// Forward filters a batched input [N, C, H, W].
func (f *Filter2D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("Filter2D.Forward: want rank-4 input [N,C,H,W], got %v", shape))
	}
	c := shape[1]
	ks := f.Kernel.Shape()
	kh, kw := ks[0], ks[1]
	if f.weight == nil || f.weight.Shape()[0] != c {
		// Tile the kernel into a depthwise weight [C, 1, kh, kw].
		w := tensor.MustRaw(tensor.Shape{c, 1, kh, kw})
		wd, kd := w.Data(), f.Kernel.Data()
		for ch := 0; ch < c; ch++ {
			copy(wd[ch*kh*kw:(ch+1)*kh*kw], kd)
		}
		f.weight = tensor.New(w, f.backend)
	}
	stride := [2]int{1, 1}
	pad := Same.pair2(shape[2], shape[3], [2]int{kh, kw}, stride)
	return input.Conv2D(f.weight, stride, pad, c)
}

// Parameters returns nil, the kernel is not trainable.
func (*Filter2D[B]) Parameters() []*Parameter[B] { return nil }

// AvgBlur2D is a Filter2D with a normalized box kernel.
type AvgBlur2D[B tensor.Backend] struct {
	Filter *Filter2D[B]

	KernelSize int
}

// NewAvgBlur2D creates a box blur of the given odd kernel size.
func NewAvgBlur2D[B tensor.Backend](kernelSize int, backend B) *AvgBlur2D[B] {
	if kernelSize <= 0 || kernelSize%2 == 0 {
		panic(fmt.Sprintf("AvgBlur2D: kernel size must be positive and odd, got %d", kernelSize))
	}
	k := tensor.MustRaw(tensor.Shape{kernelSize, kernelSize})
	v := 1 / float32(kernelSize*kernelSize)
	kd := k.Data()
	for i := range kd {
		kd[i] = v
	}
	return &AvgBlur2D[B]{Filter: NewFilter2D(k, backend), KernelSize: kernelSize}
}

// Forward blurs a batched input [N, C, H, W].
func (b *AvgBlur2D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	return b.Filter.Forward(input)
}

// Parameters returns nil.
func (*AvgBlur2D[B]) Parameters() []*Parameter[B] { return nil }

// GaussianBlur2D is a Filter2D with a normalized Gaussian kernel.
type GaussianBlur2D[B tensor.Backend] struct {
	Filter *Filter2D[B]

	KernelSize int
	Sigma      float32
}

// NewGaussianBlur2D creates a Gaussian blur of the given odd kernel size
// and standard deviation.
func NewGaussianBlur2D[B tensor.Backend](kernelSize int, sigma float32, backend B) *GaussianBlur2D[B] {
	if kernelSize <= 0 || kernelSize%2 == 0 {
		panic(fmt.Sprintf("GaussianBlur2D: kernel size must be positive and odd, got %d", kernelSize))
	}
	if sigma <= 0 {
		panic(fmt.Sprintf("GaussianBlur2D: sigma must be positive, got %v", sigma))
	}
	k := tensor.MustRaw(tensor.Shape{kernelSize, kernelSize})
	kd := k.Data()
	half := kernelSize / 2
	var sum float64
	for i := 0; i < kernelSize; i++ {
		for j := 0; j < kernelSize; j++ {
			dy, dx := float64(i-half), float64(j-half)
			v := math.Exp(-(dy*dy + dx*dx) / (2 * float64(sigma) * float64(sigma)))
			kd[i*kernelSize+j] = float32(v)
			sum += v
		}
	}
	inv := float32(1 / sum)
	for i := range kd {
		kd[i] *= inv
	}
	return &GaussianBlur2D[B]{
		Filter:     NewFilter2D(k, backend),
		KernelSize: kernelSize,
		Sigma:      sigma,
	}
}

// Forward blurs a batched input [N, C, H, W].
func (b *GaussianBlur2D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	return b.Filter.Forward(input)
}

// Parameters returns nil.
func (*GaussianBlur2D[B]) Parameters() []*Parameter[B] { return nil }
