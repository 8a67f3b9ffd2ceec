// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "math/rand"

// Zeros creates a tensor filled with zeros.
func Zeros[B Backend](shape Shape, backend B) *Tensor[B] {
	return New(MustRaw(shape), backend)
}

// Ones creates a tensor filled with ones.
func Ones[B Backend](shape Shape, backend B) *Tensor[B] {
	return Full(shape, 1, backend)
}

// Full creates a tensor filled with value.
func Full[B Backend](shape Shape, value float32, backend B) *Tensor[B] {
	raw := MustRaw(shape)
	data := raw.Data()
	for i := range data {
		data[i] = value
	}
	return New(raw, backend)
}

// Randn creates a tensor with values drawn from N(0, 1) using rng.
func Randn[B Backend](shape Shape, rng *rand.Rand, backend B) *Tensor[B] {
	raw := MustRaw(shape)
	data := raw.Data()
	for i := range data {
		data[i] = float32(rng.NormFloat64())
	}
	return New(raw, backend)
}

// Rand creates a tensor with values drawn uniformly from [0, 1) using rng.
func Rand[B Backend](shape Shape, rng *rand.Rand, backend B) *Tensor[B] {
	raw := MustRaw(shape)
	data := raw.Data()
	for i := range data {
		data[i] = rng.Float32()
	}
	return New(raw, backend)
}

// Arange creates a 1-D tensor [start, start+1, ..., stop-1].
func Arange[B Backend](start, stop int, backend B) *Tensor[B] {
	n := stop - start
	raw := MustRaw(Shape{n})
	data := raw.Data()
	for i := 0; i < n; i++ {
		data[i] = float32(start + i)
	}
	return New(raw, backend)
}
