// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"

	"github.com/ASEM000/Osiris/tensor"
)

// MaxPool2D takes the maximum over kernel windows of [N, C, H, W] inputs.
type MaxPool2D[B tensor.Backend] struct {
	Kernel [2]int
	Stride [2]int
	Pad    Padding
}

// NewMaxPool2D creates a max pooling layer. A zero stride entry defaults to
// the kernel size on that axis.
func NewMaxPool2D[B tensor.Backend](kernel, stride [2]int, pad Padding) *MaxPool2D[B] {
	if kernel[0] <= 0 || kernel[1] <= 0 {
		panic(fmt.Sprintf("MaxPool2D: invalid kernel %v", kernel))
	}
	if stride[0] == 0 {
		stride[0] = kernel[0]
	}
	if stride[1] == 0 {
		stride[1] = kernel[1]
	}
	return &MaxPool2D[B]{Kernel: kernel, Stride: stride, Pad: pad}
}

// Forward pools a batched input [N, C, H, W].
func (p *MaxPool2D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("MaxPool2D.Forward: want rank-4 input [N,C,H,W], got %v", shape))
	}
	pad := p.Pad.pair2(shape[2], shape[3], p.Kernel, p.Stride)
	return input.MaxPool2D(p.Kernel, p.Stride, pad)
}

// Parameters returns nil.
func (*MaxPool2D[B]) Parameters() []*Parameter[B] { return nil }

// AvgPool2D averages over kernel windows of [N, C, H, W] inputs.
type AvgPool2D[B tensor.Backend] struct {
	Kernel [2]int
	Stride [2]int
	Pad    Padding
}

// NewAvgPool2D creates an average pooling layer. A zero stride entry
// defaults to the kernel size on that axis.
func NewAvgPool2D[B tensor.Backend](kernel, stride [2]int, pad Padding) *AvgPool2D[B] {
	if kernel[0] <= 0 || kernel[1] <= 0 {
		panic(fmt.Sprintf("AvgPool2D: invalid kernel %v", kernel))
	}
	if stride[0] == 0 {
		stride[0] = kernel[0]
	}
	if stride[1] == 0 {
		stride[1] = kernel[1]
	}
	return &AvgPool2D[B]{Kernel: kernel, Stride: stride, Pad: pad}
}

// Forward pools a batched input [N, C, H, W].
func (p *AvgPool2D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("AvgPool2D.Forward: want rank-4 input [N,C,H,W], got %v", shape))
	}
	pad := p.Pad.pair2(shape[2], shape[3], p.Kernel, p.Stride)
	return input.AvgPool2D(p.Kernel, p.Stride, pad)
}

// Parameters returns nil.
func (*AvgPool2D[B]) Parameters() []*Parameter[B] { return nil }

// MaxPool1D takes the maximum over kernel windows of [N, C, W] inputs.
type MaxPool1D[B tensor.Backend] struct {
	Kernel int
	Stride int
	Pad    Padding
}

// NewMaxPool1D creates a 1-D max pooling layer. A zero stride defaults to
// the kernel size.
func NewMaxPool1D[B tensor.Backend](kernel, stride int, pad Padding) *MaxPool1D[B] {
	if kernel <= 0 {
		panic(fmt.Sprintf("MaxPool1D: invalid kernel %d", kernel))
	}
	if stride == 0 {
		stride = kernel
	}
	return &MaxPool1D[B]{Kernel: kernel, Stride: stride, Pad: pad}
}

// Forward pools a batched input [N, C, W].
func (p *MaxPool1D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("MaxPool1D.Forward: want rank-3 input [N,C,W], got %v", shape))
	}
	pad := p.Pad.pair1(shape[2], p.Kernel, p.Stride)
	return input.MaxPool1D(p.Kernel, p.Stride, pad)
}

// Parameters returns nil.
func (*MaxPool1D[B]) Parameters() []*Parameter[B] { return nil }

// AvgPool1D averages over kernel windows of [N, C, W] inputs.
type AvgPool1D[B tensor.Backend] struct {
	Kernel int
	Stride int
	Pad    Padding
}

// NewAvgPool1D creates a 1-D average pooling layer. A zero stride defaults
// to the kernel size.
func NewAvgPool1D[B tensor.Backend](kernel, stride int, pad Padding) *AvgPool1D[B] {
	if kernel <= 0 {
		panic(fmt.Sprintf("AvgPool1D: invalid kernel %d", kernel))
	}
	if stride == 0 {
		stride = kernel
	}
	return &AvgPool1D[B]{Kernel: kernel, Stride: stride, Pad: pad}
}

// Forward pools a batched input [N, C, W].
func (p *AvgPool1D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("AvgPool1D.Forward: want rank-3 input [N,C,W], got %v", shape))
	}
	pad := p.Pad.pair1(shape[2], p.Kernel, p.Stride)
	return input.AvgPool1D(p.Kernel, p.Stride, pad)
}

// Parameters returns nil.
func (*AvgPool1D[B]) Parameters() []*Parameter[B] { return nil }

// GlobalAvgPool2D averages each channel over its full spatial extent,
// mapping [N, C, H, W] to [N, C] (or [N, C, 1, 1] with KeepDims).
type GlobalAvgPool2D[B tensor.Backend] struct {
	KeepDims bool
}

// NewGlobalAvgPool2D creates a global average pooling layer.
func NewGlobalAvgPool2D[B tensor.Backend](keepDims bool) *GlobalAvgPool2D[B] {
	return &GlobalAvgPool2D[B]{KeepDims: keepDims}
}

// Forward pools a batched input [N, C, H, W].
func (p *GlobalAvgPool2D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("GlobalAvgPool2D.Forward: want rank-4 input [N,C,H,W], got %v", shape))
	}
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	out := input.Reshape(n, c, h*w).MeanDim(2, false)
	if p.KeepDims {
		return out.Reshape(n, c, 1, 1)
	}
	return out
}

// Parameters returns nil.
func (*GlobalAvgPool2D[B]) Parameters() []*Parameter[B] { return nil }

// GlobalMaxPool2D takes the per-channel maximum over the full spatial
// extent, mapping [N, C, H, W] to [N, C] (or [N, C, 1, 1] with KeepDims).
type GlobalMaxPool2D[B tensor.Backend] struct {
	KeepDims bool
}

// NewGlobalMaxPool2D creates a global max pooling layer.
func NewGlobalMaxPool2D[B tensor.Backend](keepDims bool) *GlobalMaxPool2D[B] {
	return &GlobalMaxPool2D[B]{KeepDims: keepDims}
}

// Forward pools a batched input [N, C, H, W].
func (p *GlobalMaxPool2D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("GlobalMaxPool2D.Forward: want rank-4 input [N,C,H,W], got %v", shape))
	}
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	out := input.Reshape(n, c, 1, h*w).MaxPool2D([2]int{1, h * w}, [2]int{1, h * w}, [2][2]int{})
	if p.KeepDims {
		return out.Reshape(n, c, 1, 1)
	}
	return out.Reshape(n, c)
}

// Parameters returns nil.
func (*GlobalMaxPool2D[B]) Parameters() []*Parameter[B] { return nil }
