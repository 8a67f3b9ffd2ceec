// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package image provides color space layers over batched image tensors in
// [N, C, H, W] layout with channel values in [0, 1].
package image

import (
	"fmt"

	"github.com/ASEM000/Osiris/nn"
	"github.com/ASEM000/Osiris/tensor"
)

// RGBToGrayscale2D converts [N, 3, H, W] images to [N, 1, H, W] luma
// using the ITU-R BT.601 weights. The conversion is linear, so gradients
// flow back to the input.
type RGBToGrayscale2D[B tensor.Backend] struct{}

// NewRGBToGrayscale2D creates a grayscale conversion layer.
func NewRGBToGrayscale2D[B tensor.Backend]() *RGBToGrayscale2D[B] {
	return &RGBToGrayscale2D[B]{}
}

// Forward converts a batched RGB input.
func (RGBToGrayscale2D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) != 4 || shape[1] != 3 {
		panic(fmt.Sprintf("RGBToGrayscale2D.Forward: want [N,3,H,W], got %v", shape))
	}
	r := input.Narrow(1, 0, 1)
	g := input.Narrow(1, 1, 1)
	b := input.Narrow(1, 2, 1)
	return r.MulScalar(0.299).Add(g.MulScalar(0.587)).Add(b.MulScalar(0.114))
}

// Parameters returns nil.
func (RGBToGrayscale2D[B]) Parameters() []*nn.Parameter[B] { return nil }

// GrayscaleToRGB2D replicates [N, 1, H, W] images into three channels.
type GrayscaleToRGB2D[B tensor.Backend] struct{}

// NewGrayscaleToRGB2D creates a channel replication layer.
func NewGrayscaleToRGB2D[B tensor.Backend]() *GrayscaleToRGB2D[B] {
	return &GrayscaleToRGB2D[B]{}
}

// Forward converts a batched grayscale input.
func (GrayscaleToRGB2D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) != 4 || shape[1] != 1 {
		panic(fmt.Sprintf("GrayscaleToRGB2D.Forward: want [N,1,H,W], got %v", shape))
	}
	return tensor.Cat([]*tensor.Tensor[B]{input, input, input}, 1)
}

// Parameters returns nil.
func (GrayscaleToRGB2D[B]) Parameters() []*nn.Parameter[B] { return nil }

// RGBToHSV2D converts [N, 3, H, W] RGB images to HSV with hue in [0, 1).
// The conversion is piecewise and not differentiated; use it for data
// preparation, not inside a trained path.
type RGBToHSV2D[B tensor.Backend] struct{}

// NewRGBToHSV2D creates an HSV conversion layer.
func NewRGBToHSV2D[B tensor.Backend]() *RGBToHSV2D[B] { return &RGBToHSV2D[B]{} }

// Forward converts a batched RGB input.
func (RGBToHSV2D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) != 4 || shape[1] != 3 {
		panic(fmt.Sprintf("RGBToHSV2D.Forward: want [N,3,H,W], got %v", shape))
	}
	n, h, w := shape[0], shape[2], shape[3]
	plane := h * w
	out := tensor.MustRaw(shape)
	src, dst := input.Data(), out.Data()
	for b := 0; b < n; b++ {
		base := b * 3 * plane
		for i := 0; i < plane; i++ {
			r, g, bl := src[base+i], src[base+plane+i], src[base+2*plane+i]
			maxc, minc := r, r
			for _, v := range [2]float32{g, bl} {
				if v > maxc {
					maxc = v
				}
				if v < minc {
					minc = v
				}
			}
			delta := maxc - minc
			var hue float32
			if delta > 0 {
				switch maxc {
				case r:
					hue = (g - bl) / delta
				case g:
					hue = (bl-r)/delta + 2
				default:
					hue = (r-g)/delta + 4
				}
				hue /= 6
				if hue < 0 {
					hue++
				}
			}
			var sat float32
			if maxc > 0 {
				sat = delta / maxc
			}
			dst[base+i] = hue
			dst[base+plane+i] = sat
			dst[base+2*plane+i] = maxc
		}
	}
	return tensor.New(out, input.Backend())
}

// Parameters returns nil.
func (RGBToHSV2D[B]) Parameters() []*nn.Parameter[B] { return nil }

// HSVToRGB2D converts [N, 3, H, W] HSV images with hue in [0, 1) back to
// RGB. Like RGBToHSV2D it is not differentiated.
type HSVToRGB2D[B tensor.Backend] struct{}

// NewHSVToRGB2D creates an RGB conversion layer.
func NewHSVToRGB2D[B tensor.Backend]() *HSVToRGB2D[B] { return &HSVToRGB2D[B]{} }

// Forward converts a batched HSV input.
func (HSVToRGB2D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := input.Shape()
	if len(shape) != 4 || shape[1] != 3 {
		panic(fmt.Sprintf("HSVToRGB2D.Forward: want [N,3,H,W], got %v", shape))
	}
	n, h, w := shape[0], shape[2], shape[3]
	plane := h * w
	out := tensor.MustRaw(shape)
	src, dst := input.Data(), out.Data()
	for b := 0; b < n; b++ {
		base := b * 3 * plane
		for i := 0; i < plane; i++ {
			hue, sat, val := src[base+i], src[base+plane+i], src[base+2*plane+i]
			sector := hue * 6
			k := int(sector) % 6
			f := sector - float32(int(sector))
			p := val * (1 - sat)
			q := val * (1 - sat*f)
			t := val * (1 - sat*(1-f))
			var r, g, bl float32
			switch k {
			case 0:
				r, g, bl = val, t, p
			case 1:
				r, g, bl = q, val, p
			case 2:
				r, g, bl = p, val, t
			case 3:
				r, g, bl = p, q, val
			case 4:
				r, g, bl = t, p, val
			default:
				r, g, bl = val, p, q
			}
			dst[base+i] = r
			dst[base+plane+i] = g
			dst[base+2*plane+i] = bl
		}
	}
	return tensor.New(out, input.Backend())
}

// Parameters returns nil.
func (HSVToRGB2D[B]) Parameters() []*nn.Parameter[B] { return nil }
