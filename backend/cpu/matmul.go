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

// MatMul computes the 2-D matrix product [M,K] @ [K,N] -> [M,N] via SGEMM.
func (c *Backend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("matmul: need 2D operands, got %v and %v", as, bs))
	}
	if as[1] != bs[0] {
		panic(fmt.Sprintf("matmul: inner dimensions mismatch: %v @ %v", as, bs))
	}
	m, k, n := as[0], as[1], bs[1]
	out := tensor.MustRaw(tensor.Shape{m, n})
	gemm(a.Data(), b.Data(), out.Data(), m, k, n)
	return out
}

// BatchMatMul computes [B,M,K] @ [B,K,N] -> [B,M,N], one SGEMM per batch.
func (c *Backend) BatchMatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 3 || len(bs) != 3 {
		panic(fmt.Sprintf("batchmatmul: need 3D operands, got %v and %v", as, bs))
	}
	if as[0] != bs[0] || as[2] != bs[1] {
		panic(fmt.Sprintf("batchmatmul: shape mismatch: %v @ %v", as, bs))
	}
	batch, m, k, n := as[0], as[1], as[2], bs[2]
	out := tensor.MustRaw(tensor.Shape{batch, m, n})

	ad, bd, od := a.Data(), b.Data(), out.Data()
	c.parFor(batch, func(i int) {
		gemm(ad[i*m*k:(i+1)*m*k], bd[i*k*n:(i+1)*k*n], od[i*m*n:(i+1)*m*n], m, k, n)
	})
	return out
}

// gemm computes C = A @ B for row-major float32 buffers.
func gemm(a, b, c []float32, m, k, n int) {
	ga := blas32.General{Rows: m, Cols: k, Stride: k, Data: a}
	gb := blas32.General{Rows: k, Cols: n, Stride: n, Data: b}
	gc := blas32.General{Rows: m, Cols: n, Stride: n, Data: c}
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1, ga, gb, 0, gc)
}
