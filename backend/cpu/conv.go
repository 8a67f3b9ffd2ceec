// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/ASEM000/Osiris/tensor"
)

// convOutSize computes (x + pl + pr - k)/s + 1.
func convOutSize(x, k, s, pl, pr int) int {
	return (x+pl+pr-k)/s + 1
}

// Conv2D performs grouped 2-D convolution via im2col + GEMM.
//
// Input [N, C_in, H, W], weight [C_out, C_in/groups, KH, KW], output
// [N, C_out, H_out, W_out]. Lowering convolution to a matrix product keeps
// the inner loop inside SGEMM.
func (c *Backend) Conv2D(x, w *tensor.RawTensor, stride [2]int, pad [2][2]int, groups int) *tensor.RawTensor {
	xs, ws := x.Shape(), w.Shape()
	if len(xs) != 4 || len(ws) != 4 {
		panic(fmt.Sprintf("conv2d: need 4D input and weight, got %v and %v", xs, ws))
	}
	n, cin, h, wd := xs[0], xs[1], xs[2], xs[3]
	cout, cing, kh, kw := ws[0], ws[1], ws[2], ws[3]
	if cin != cing*groups {
		panic(fmt.Sprintf("conv2d: input channels %d != weight channels %d * groups %d", cin, cing, groups))
	}
	if cout%groups != 0 {
		panic(fmt.Sprintf("conv2d: output channels %d not divisible by groups %d", cout, groups))
	}
	hout := convOutSize(h, kh, stride[0], pad[0][0], pad[0][1])
	wout := convOutSize(wd, kw, stride[1], pad[1][0], pad[1][1])
	if hout <= 0 || wout <= 0 {
		panic(fmt.Sprintf("conv2d: non-positive output size %dx%d (input %dx%d, kernel %dx%d)", hout, wout, h, wd, kh, kw))
	}
	coutg := cout / groups

	out := tensor.MustRaw(tensor.Shape{n, cout, hout, wout})
	xd, wdat, od := x.Data(), w.Data(), out.Data()
	ckk := cing * kh * kw

	c.parFor(n, func(i int) {
		cols := make([]float32, ckk*hout*wout)
		for g := 0; g < groups; g++ {
			im2col(cols, xd[i*cin*h*wd:], g*cing, cing, h, wd, kh, kw, hout, wout, stride, pad)
			wmat := blas32.General{Rows: coutg, Cols: ckk, Stride: ckk, Data: wdat[g*coutg*ckk : (g+1)*coutg*ckk]}
			cmat := blas32.General{Rows: ckk, Cols: hout * wout, Stride: hout * wout, Data: cols}
			dst := od[(i*cout+g*coutg)*hout*wout : (i*cout+(g+1)*coutg)*hout*wout]
			omat := blas32.General{Rows: coutg, Cols: hout * wout, Stride: hout * wout, Data: dst}
			blas32.Gemm(blas.NoTrans, blas.NoTrans, 1, wmat, cmat, 0, omat)
		}
	})
	return out
}

// Conv2DBackward computes input and weight gradients of Conv2D.
func (c *Backend) Conv2DBackward(x, w, grad *tensor.RawTensor, stride [2]int, pad [2][2]int, groups int) (dxRaw, dwRaw *tensor.RawTensor) {
	xs, ws := x.Shape(), w.Shape()
	n, cin, h, wd := xs[0], xs[1], xs[2], xs[3]
	cout, cing, kh, kw := ws[0], ws[1], ws[2], ws[3]
	hout := convOutSize(h, kh, stride[0], pad[0][0], pad[0][1])
	wout := convOutSize(wd, kw, stride[1], pad[1][0], pad[1][1])
	coutg := cout / groups
	ckk := cing * kh * kw

	dx := tensor.MustRaw(xs)
	dw := tensor.MustRaw(ws)
	xd, wdat, gd := x.Data(), w.Data(), grad.Data()
	dxd, dwd := dx.Data(), dw.Data()

	cols := make([]float32, ckk*hout*wout)
	dcols := make([]float32, ckk*hout*wout)

	for i := 0; i < n; i++ {
		for g := 0; g < groups; g++ {
			gmat := blas32.General{Rows: coutg, Cols: hout * wout, Stride: hout * wout,
				Data: gd[(i*cout+g*coutg)*hout*wout : (i*cout+(g+1)*coutg)*hout*wout]}

			// dW += dOut @ cols^T
			im2col(cols, xd[i*cin*h*wd:], g*cing, cing, h, wd, kh, kw, hout, wout, stride, pad)
			cmat := blas32.General{Rows: ckk, Cols: hout * wout, Stride: hout * wout, Data: cols}
			dwmat := blas32.General{Rows: coutg, Cols: ckk, Stride: ckk, Data: dwd[g*coutg*ckk : (g+1)*coutg*ckk]}
			blas32.Gemm(blas.NoTrans, blas.Trans, 1, gmat, cmat, 1, dwmat)

			// dcols = W^T @ dOut, then scatter back into dx
			wmat := blas32.General{Rows: coutg, Cols: ckk, Stride: ckk, Data: wdat[g*coutg*ckk : (g+1)*coutg*ckk]}
			dcmat := blas32.General{Rows: ckk, Cols: hout * wout, Stride: hout * wout, Data: dcols}
			blas32.Gemm(blas.Trans, blas.NoTrans, 1, wmat, gmat, 0, dcmat)
			col2im(dcols, dxd[i*cin*h*wd:], g*cing, cing, h, wd, kh, kw, hout, wout, stride, pad)
		}
	}
	return dx, dw
}

// im2col unpacks convolution windows of channels [c0, c0+cing) into cols,
// laid out [cing*kh*kw, hout*wout]. Out-of-bounds (padding) reads are zero.
func im2col(cols, x []float32, c0, cing, h, w, kh, kw, hout, wout int, stride [2]int, pad [2][2]int) {
	i := 0
	for ch := c0; ch < c0+cing; ch++ {
		for ky := 0; ky < kh; ky++ {
			for kx := 0; kx < kw; kx++ {
				for oy := 0; oy < hout; oy++ {
					iy := oy*stride[0] - pad[0][0] + ky
					for ox := 0; ox < wout; ox++ {
						ix := ox*stride[1] - pad[1][0] + kx
						if iy >= 0 && iy < h && ix >= 0 && ix < w {
							cols[i] = x[(ch*h+iy)*w+ix]
						} else {
							cols[i] = 0
						}
						i++
					}
				}
			}
		}
	}
}

// col2im scatter-adds column gradients back into the input gradient buffer.
func col2im(cols, dx []float32, c0, cing, h, w, kh, kw, hout, wout int, stride [2]int, pad [2][2]int) {
	i := 0
	for ch := c0; ch < c0+cing; ch++ {
		for ky := 0; ky < kh; ky++ {
			for kx := 0; kx < kw; kx++ {
				for oy := 0; oy < hout; oy++ {
					iy := oy*stride[0] - pad[0][0] + ky
					for ox := 0; ox < wout; ox++ {
						ix := ox*stride[1] - pad[1][0] + kx
						if iy >= 0 && iy < h && ix >= 0 && ix < w {
							dx[(ch*h+iy)*w+ix] += cols[i]
						}
						i++
					}
				}
			}
		}
	}
}

// Conv1D performs grouped 1-D convolution with direct loops.
//
// Input [N, C_in, W], weight [C_out, C_in/groups, K], output [N, C_out, W_out].
func (c *Backend) Conv1D(x, w *tensor.RawTensor, stride int, pad [2]int, groups int) *tensor.RawTensor {
	xs, ws := x.Shape(), w.Shape()
	if len(xs) != 3 || len(ws) != 3 {
		panic(fmt.Sprintf("conv1d: need 3D input and weight, got %v and %v", xs, ws))
	}
	n, cin, wd := xs[0], xs[1], xs[2]
	cout, cing, k := ws[0], ws[1], ws[2]
	if cin != cing*groups {
		panic(fmt.Sprintf("conv1d: input channels %d != weight channels %d * groups %d", cin, cing, groups))
	}
	if cout%groups != 0 {
		panic(fmt.Sprintf("conv1d: output channels %d not divisible by groups %d", cout, groups))
	}
	wout := convOutSize(wd, k, stride, pad[0], pad[1])
	if wout <= 0 {
		panic(fmt.Sprintf("conv1d: non-positive output size %d (input %d, kernel %d)", wout, wd, k))
	}
	coutg := cout / groups

	out := tensor.MustRaw(tensor.Shape{n, cout, wout})
	xd, wdat, od := x.Data(), w.Data(), out.Data()

	c.parFor(n, func(i int) {
		for co := 0; co < cout; co++ {
			g := co / coutg
			for ox := 0; ox < wout; ox++ {
				var acc float32
				for ci := 0; ci < cing; ci++ {
					for kx := 0; kx < k; kx++ {
						ix := ox*stride - pad[0] + kx
						if ix >= 0 && ix < wd {
							acc += xd[(i*cin+g*cing+ci)*wd+ix] * wdat[(co*cing+ci)*k+kx]
						}
					}
				}
				od[(i*cout+co)*wout+ox] = acc
			}
		}
	})
	return out
}

// Conv1DBackward computes input and weight gradients of Conv1D.
func (c *Backend) Conv1DBackward(x, w, grad *tensor.RawTensor, stride int, pad [2]int, groups int) (dxRaw, dwRaw *tensor.RawTensor) {
	xs, ws := x.Shape(), w.Shape()
	n, cin, wd := xs[0], xs[1], xs[2]
	cout, cing, k := ws[0], ws[1], ws[2]
	wout := convOutSize(wd, k, stride, pad[0], pad[1])
	coutg := cout / groups

	dx := tensor.MustRaw(xs)
	dw := tensor.MustRaw(ws)
	xd, wdat, gd := x.Data(), w.Data(), grad.Data()
	dxd, dwd := dx.Data(), dw.Data()

	for i := 0; i < n; i++ {
		for co := 0; co < cout; co++ {
			g := co / coutg
			for ox := 0; ox < wout; ox++ {
				gv := gd[(i*cout+co)*wout+ox]
				if gv == 0 {
					continue
				}
				for ci := 0; ci < cing; ci++ {
					for kx := 0; kx < k; kx++ {
						ix := ox*stride - pad[0] + kx
						if ix >= 0 && ix < wd {
							dxd[(i*cin+g*cing+ci)*wd+ix] += gv * wdat[(co*cing+ci)*k+kx]
							dwd[(co*cing+ci)*k+kx] += gv * xd[(i*cin+g*cing+ci)*wd+ix]
						}
					}
				}
			}
		}
	}
	return dx, dw
}
