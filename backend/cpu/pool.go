// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	"fmt"
	"math"

	"github.com/ASEM000/Osiris/tensor"
)

// MaxPool2D applies windowed max over [N, C, H, W]. The second return value
// holds, per output element, the flat input index of the window maximum
// (-1 when the window covered only padding).
func (c *Backend) MaxPool2D(x *tensor.RawTensor, kernel, stride [2]int, pad [2][2]int) (*tensor.RawTensor, []int) {
	xs := x.Shape()
	if len(xs) != 4 {
		panic(fmt.Sprintf("maxpool2d: need 4D input, got %v", xs))
	}
	n, ch, h, w := xs[0], xs[1], xs[2], xs[3]
	hout := convOutSize(h, kernel[0], stride[0], pad[0][0], pad[0][1])
	wout := convOutSize(w, kernel[1], stride[1], pad[1][0], pad[1][1])
	if hout <= 0 || wout <= 0 {
		panic(fmt.Sprintf("maxpool2d: non-positive output size %dx%d", hout, wout))
	}

	out := tensor.MustRaw(tensor.Shape{n, ch, hout, wout})
	idx := make([]int, out.NumElements())
	xd, od := x.Data(), out.Data()

	c.parFor(n*ch, func(p int) {
		base := p * h * w
		obase := p * hout * wout
		for oy := 0; oy < hout; oy++ {
			for ox := 0; ox < wout; ox++ {
				best := float32(math.Inf(-1))
				bestIdx := -1
				for ky := 0; ky < kernel[0]; ky++ {
					iy := oy*stride[0] - pad[0][0] + ky
					if iy < 0 || iy >= h {
						continue
					}
					for kx := 0; kx < kernel[1]; kx++ {
						ix := ox*stride[1] - pad[1][0] + kx
						if ix < 0 || ix >= w {
							continue
						}
						if v := xd[base+iy*w+ix]; v > best || bestIdx < 0 {
							best = v
							bestIdx = base + iy*w + ix
						}
					}
				}
				o := obase + oy*wout + ox
				idx[o] = bestIdx
				if bestIdx >= 0 {
					od[o] = best
				}
			}
		}
	})
	return out, idx
}

// AvgPool2D applies windowed mean over [N, C, H, W]. Padded positions count
// toward the divisor, matching the padded-average convention.
func (c *Backend) AvgPool2D(x *tensor.RawTensor, kernel, stride [2]int, pad [2][2]int) *tensor.RawTensor {
	xs := x.Shape()
	if len(xs) != 4 {
		panic(fmt.Sprintf("avgpool2d: need 4D input, got %v", xs))
	}
	n, ch, h, w := xs[0], xs[1], xs[2], xs[3]
	hout := convOutSize(h, kernel[0], stride[0], pad[0][0], pad[0][1])
	wout := convOutSize(w, kernel[1], stride[1], pad[1][0], pad[1][1])
	if hout <= 0 || wout <= 0 {
		panic(fmt.Sprintf("avgpool2d: non-positive output size %dx%d", hout, wout))
	}

	out := tensor.MustRaw(tensor.Shape{n, ch, hout, wout})
	xd, od := x.Data(), out.Data()
	inv := 1 / float32(kernel[0]*kernel[1])

	c.parFor(n*ch, func(p int) {
		base := p * h * w
		obase := p * hout * wout
		for oy := 0; oy < hout; oy++ {
			for ox := 0; ox < wout; ox++ {
				var acc float32
				for ky := 0; ky < kernel[0]; ky++ {
					iy := oy*stride[0] - pad[0][0] + ky
					if iy < 0 || iy >= h {
						continue
					}
					for kx := 0; kx < kernel[1]; kx++ {
						ix := ox*stride[1] - pad[1][0] + kx
						if ix >= 0 && ix < w {
							acc += xd[base+iy*w+ix]
						}
					}
				}
				od[obase+oy*wout+ox] = acc * inv
			}
		}
	})
	return out
}

// AvgPool2DBackward spreads each output gradient uniformly over its window.
func (c *Backend) AvgPool2DBackward(grad *tensor.RawTensor, xShape tensor.Shape, kernel, stride [2]int, pad [2][2]int) *tensor.RawTensor {
	n, ch, h, w := xShape[0], xShape[1], xShape[2], xShape[3]
	gs := grad.Shape()
	hout, wout := gs[2], gs[3]
	dx := tensor.MustRaw(xShape)
	gd, dd := grad.Data(), dx.Data()
	inv := 1 / float32(kernel[0]*kernel[1])

	for p := 0; p < n*ch; p++ {
		base := p * h * w
		obase := p * hout * wout
		for oy := 0; oy < hout; oy++ {
			for ox := 0; ox < wout; ox++ {
				gv := gd[obase+oy*wout+ox] * inv
				for ky := 0; ky < kernel[0]; ky++ {
					iy := oy*stride[0] - pad[0][0] + ky
					if iy < 0 || iy >= h {
						continue
					}
					for kx := 0; kx < kernel[1]; kx++ {
						ix := ox*stride[1] - pad[1][0] + kx
						if ix >= 0 && ix < w {
							dd[base+iy*w+ix] += gv
						}
					}
				}
			}
		}
	}
	return dx
}

// MaxPool1D applies windowed max over [N, C, W]; see MaxPool2D for the
// returned index convention.
func (c *Backend) MaxPool1D(x *tensor.RawTensor, kernel, stride int, pad [2]int) (*tensor.RawTensor, []int) {
	xs := x.Shape()
	if len(xs) != 3 {
		panic(fmt.Sprintf("maxpool1d: need 3D input, got %v", xs))
	}
	n, ch, w := xs[0], xs[1], xs[2]
	wout := convOutSize(w, kernel, stride, pad[0], pad[1])
	if wout <= 0 {
		panic(fmt.Sprintf("maxpool1d: non-positive output size %d", wout))
	}

	out := tensor.MustRaw(tensor.Shape{n, ch, wout})
	idx := make([]int, out.NumElements())
	xd, od := x.Data(), out.Data()

	for p := 0; p < n*ch; p++ {
		base := p * w
		obase := p * wout
		for ox := 0; ox < wout; ox++ {
			best := float32(math.Inf(-1))
			bestIdx := -1
			for kx := 0; kx < kernel; kx++ {
				ix := ox*stride - pad[0] + kx
				if ix < 0 || ix >= w {
					continue
				}
				if v := xd[base+ix]; v > best || bestIdx < 0 {
					best = v
					bestIdx = base + ix
				}
			}
			o := obase + ox
			idx[o] = bestIdx
			if bestIdx >= 0 {
				od[o] = best
			}
		}
	}
	return out, idx
}

// AvgPool1D applies windowed mean over [N, C, W].
func (c *Backend) AvgPool1D(x *tensor.RawTensor, kernel, stride int, pad [2]int) *tensor.RawTensor {
	xs := x.Shape()
	if len(xs) != 3 {
		panic(fmt.Sprintf("avgpool1d: need 3D input, got %v", xs))
	}
	n, ch, w := xs[0], xs[1], xs[2]
	wout := convOutSize(w, kernel, stride, pad[0], pad[1])
	if wout <= 0 {
		panic(fmt.Sprintf("avgpool1d: non-positive output size %d", wout))
	}

	out := tensor.MustRaw(tensor.Shape{n, ch, wout})
	xd, od := x.Data(), out.Data()
	inv := 1 / float32(kernel)

	for p := 0; p < n*ch; p++ {
		base := p * w
		obase := p * wout
		for ox := 0; ox < wout; ox++ {
			var acc float32
			for kx := 0; kx < kernel; kx++ {
				ix := ox*stride - pad[0] + kx
				if ix >= 0 && ix < w {
					acc += xd[base+ix]
				}
			}
			od[obase+ox] = acc * inv
		}
	}
	return out
}

// AvgPool1DBackward spreads each output gradient uniformly over its window.
func (c *Backend) AvgPool1DBackward(grad *tensor.RawTensor, xShape tensor.Shape, kernel, stride int, pad [2]int) *tensor.RawTensor {
	n, ch, w := xShape[0], xShape[1], xShape[2]
	wout := grad.Shape()[2]
	dx := tensor.MustRaw(xShape)
	gd, dd := grad.Data(), dx.Data()
	inv := 1 / float32(kernel)

	for p := 0; p < n*ch; p++ {
		base := p * w
		obase := p * wout
		for ox := 0; ox < wout; ox++ {
			gv := gd[obase+ox] * inv
			for kx := 0; kx < kernel; kx++ {
				ix := ox*stride - pad[0] + kx
				if ix >= 0 && ix < w {
					dd[base+ix] += gv
				}
			}
		}
	}
	return dx
}
