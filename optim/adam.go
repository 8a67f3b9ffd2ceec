// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"fmt"
	"math"

	"github.com/ASEM000/Osiris/nn"
	"github.com/ASEM000/Osiris/tensor"
)

// Adam is the Adam optimizer with bias-corrected first and second moment
// estimates. With Decoupled it becomes AdamW: the weight decay is applied
// directly to the weights instead of the gradients.
type Adam[B tensor.Backend] struct {
	LR          float32
	Beta1       float32
	Beta2       float32
	Eps         float32
	WeightDecay float32
	Decoupled   bool

	params []*nn.Parameter[B]
	m      [][]float32
	v      [][]float32
	step   int
}

// NewAdam creates an Adam optimizer with the usual defaults
// beta1=0.9, beta2=0.999, eps=1e-8.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], lr float32) *Adam[B] {
	if lr <= 0 {
		panic(fmt.Sprintf("Adam: learning rate must be positive, got %v", lr))
	}
	return &Adam[B]{
		LR:     lr,
		Beta1:  0.9,
		Beta2:  0.999,
		Eps:    1e-8,
		params: params,
	}
}

// NewAdamW creates an Adam optimizer with decoupled weight decay.
func NewAdamW[B tensor.Backend](params []*nn.Parameter[B], lr, weightDecay float32) *Adam[B] {
	a := NewAdam(params, lr)
	a.WeightDecay = weightDecay
	a.Decoupled = true
	return a
}

// Step applies one update to every parameter with a gradient.
func (a *Adam[B]) Step() {
	if a.m == nil {
		a.m = make([][]float32, len(a.params))
		a.v = make([][]float32, len(a.params))
		for i, p := range a.params {
			a.m[i] = make([]float32, p.NumElements())
			a.v[i] = make([]float32, p.NumElements())
		}
	}
	a.step++
	c1 := 1 - float32(math.Pow(float64(a.Beta1), float64(a.step)))
	c2 := 1 - float32(math.Pow(float64(a.Beta2), float64(a.step)))

	for i, p := range a.params {
		grad := p.Grad()
		if grad == nil {
			continue
		}
		w := p.Tensor().Data()
		g := grad.Data()
		m, v := a.m[i], a.v[i]
		for j := range w {
			d := g[j]
			if a.WeightDecay > 0 && !a.Decoupled {
				d += a.WeightDecay * w[j]
			}
			m[j] = a.Beta1*m[j] + (1-a.Beta1)*d
			v[j] = a.Beta2*v[j] + (1-a.Beta2)*d*d
			mHat := m[j] / c1
			vHat := v[j] / c2
			upd := mHat / (float32(math.Sqrt(float64(vHat))) + a.Eps)
			if a.Decoupled && a.WeightDecay > 0 {
				upd += a.WeightDecay * w[j]
			}
			w[j] -= a.LR * upd
		}
	}
}

// ZeroGrad clears all accumulated gradients.
func (a *Adam[B]) ZeroGrad() { zeroGrads(a.params) }
