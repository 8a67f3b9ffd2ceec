// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"
	"math"

	"github.com/ASEM000/Osiris/tensor"
)

// MultiHeadAttention is scaled dot-product attention over NumHeads
// subspaces of the embedding dimension.
type MultiHeadAttention[B tensor.Backend] struct {
	EmbedDim int
	NumHeads int

	Query *Linear[B]
	Key   *Linear[B]
	Value *Linear[B]
	Out   *Linear[B]

	Drop *Dropout[B]
}

// NewMultiHeadAttention creates a multi-head attention block. dropRate
// applies to the attention weights during training, zero disables it.
func NewMultiHeadAttention[B tensor.Backend](embedDim, numHeads int, dropRate float32, backend B) *MultiHeadAttention[B] {
	if numHeads <= 0 || embedDim%numHeads != 0 {
		panic(fmt.Sprintf("MultiHeadAttention: embed dim %d not divisible by %d heads", embedDim, numHeads))
	}
	return &MultiHeadAttention[B]{
		EmbedDim: embedDim,
		NumHeads: numHeads,
		Query:    NewLinearInit(embedDim, embedDim, "glorot_uniform", "zeros", backend),
		Key:      NewLinearInit(embedDim, embedDim, "glorot_uniform", "zeros", backend),
		Value:    NewLinearInit(embedDim, embedDim, "glorot_uniform", "zeros", backend),
		Out:      NewLinearInit(embedDim, embedDim, "glorot_uniform", "zeros", backend),
		Drop:     NewDropout[B](dropRate),
	}
}

// SetTraining toggles attention dropout.
func (m *MultiHeadAttention[B]) SetTraining(training bool) { m.Drop.SetTraining(training) }

// Forward runs self-attention over input [N, T, E].
func (m *MultiHeadAttention[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	return m.Attend(input, input, input, nil)
}

// Attend computes attention of query [N, Tq, E] over key/value [N, Tk, E].
// A non-nil mask of shape [Tq, Tk] is added to the attention logits, with
// large negative entries blocking the corresponding positions.
func (m *MultiHeadAttention[B]) Attend(query, key, value, mask *tensor.Tensor[B]) *tensor.Tensor[B] {
	qs, ks, vs := query.Shape(), key.Shape(), value.Shape()
	if len(qs) != 3 || len(ks) != 3 || len(vs) != 3 {
		panic(fmt.Sprintf("MultiHeadAttention.Attend: want rank-3 inputs [N,T,E], got %v %v %v", qs, ks, vs))
	}
	if qs[2] != m.EmbedDim || ks[2] != m.EmbedDim || vs[2] != m.EmbedDim {
		panic(fmt.Sprintf("MultiHeadAttention.Attend: expected embed dim %d, got %v %v %v", m.EmbedDim, qs, ks, vs))
	}
	if ks[1] != vs[1] || ks[0] != qs[0] || vs[0] != qs[0] {
		panic(fmt.Sprintf("MultiHeadAttention.Attend: mismatched shapes %v %v %v", qs, ks, vs))
	}
	n, tq, tk := qs[0], qs[1], ks[1]
	heads := m.NumHeads
	dim := m.EmbedDim / heads

	// [N, T, E] -> [N*heads, T, dim]
	split := func(t *tensor.Tensor[B], steps int) *tensor.Tensor[B] {
		return t.Reshape(n, steps, heads, dim).
			Transpose(0, 2, 1, 3).
			Reshape(n*heads, steps, dim)
	}
	q := split(m.Query.Forward(query), tq)
	k := split(m.Key.Forward(key), tk)
	v := split(m.Value.Forward(value), tk)

	scale := float32(1 / math.Sqrt(float64(dim)))
	scores := q.BatchMatMul(k.Transpose(0, 2, 1)).MulScalar(scale)
	if mask != nil {
		ms := mask.Shape()
		if len(ms) != 2 || ms[0] != tq || ms[1] != tk {
			panic(fmt.Sprintf("MultiHeadAttention.Attend: want mask [%d,%d], got %v", tq, tk, ms))
		}
		scores = scores.Add(mask)
	}
	attn := m.Drop.Forward(scores.Softmax(-1))

	// [N*heads, Tq, dim] -> [N, Tq, E]
	out := attn.BatchMatMul(v).
		Reshape(n, heads, tq, dim).
		Transpose(0, 2, 1, 3).
		Reshape(n, tq, m.EmbedDim)
	return m.Out.Forward(out)
}

// Parameters returns the four projection layers' parameters.
func (m *MultiHeadAttention[B]) Parameters() []*Parameter[B] {
	var ps []*Parameter[B]
	for _, l := range []*Linear[B]{m.Query, m.Key, m.Value, m.Out} {
		ps = append(ps, l.Parameters()...)
	}
	return ps
}

// CausalMask returns a [steps, steps] additive mask that blocks attention
// to future positions.
func CausalMask[B tensor.Backend](steps int, backend B) *tensor.Tensor[B] {
	raw := tensor.MustRaw(tensor.Shape{steps, steps})
	data := raw.Data()
	for i := 0; i < steps; i++ {
		for j := i + 1; j < steps; j++ {
			data[i*steps+j] = float32(math.Inf(-1))
		}
	}
	return tensor.New(raw, backend)
}
