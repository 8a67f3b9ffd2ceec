// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import "fmt"

// Padding selects how convolution and pooling layers pad their input.
//
// Valid applies no padding. Same pads so that with stride 1 the spatial size
// is preserved (TensorFlow convention for strided cases). Explicit gives
// (before, after) amounts per spatial dimension.
type Padding struct {
	same  bool
	pairs [][2]int
}

// Valid is the no-padding mode.
var Valid = Padding{}

// Same pads each spatial dimension to preserve its size at stride 1.
var Same = Padding{same: true}

// Explicit pads with the given (before, after) pair per spatial dimension.
// A single pair applies to every dimension.
func Explicit(pairs ...[2]int) Padding {
	return Padding{pairs: pairs}
}

// Uniform pads every spatial dimension with n on both sides.
func Uniform(n int) Padding {
	return Explicit([2]int{n, n})
}

// samePad computes the (before, after) padding that keeps a dimension of
// size inDim the same under stride s with kernel k (for inDim % s == 0).
func samePad(inDim, k, s int) [2]int {
	var pad int
	if inDim%s == 0 {
		pad = k - s
	} else {
		pad = k - inDim%s
	}
	if pad < 0 {
		pad = 0
	}
	return [2]int{pad / 2, pad - pad/2}
}

// resolve returns the padding pair for spatial dimension i of ndim.
func (p Padding) resolve(i, ndim, inDim, k, s int) [2]int {
	if p.same {
		return samePad(inDim, k, s)
	}
	switch len(p.pairs) {
	case 0:
		return [2]int{0, 0}
	case 1:
		return p.pairs[0]
	case ndim:
		return p.pairs[i]
	default:
		panic(fmt.Sprintf("padding: got %d pairs for %d spatial dimensions", len(p.pairs), ndim))
	}
}

// pair2 resolves 2-D padding for an input of size h x w.
func (p Padding) pair2(h, w int, kernel, stride [2]int) [2][2]int {
	return [2][2]int{
		p.resolve(0, 2, h, kernel[0], stride[0]),
		p.resolve(1, 2, w, kernel[1], stride[1]),
	}
}

// pair1 resolves 1-D padding for an input of size w.
func (p Padding) pair1(w, kernel, stride int) [2]int {
	return p.resolve(0, 1, w, kernel, stride)
}
