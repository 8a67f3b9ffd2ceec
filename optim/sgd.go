// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"fmt"

	"github.com/ASEM000/Osiris/nn"
	"github.com/ASEM000/Osiris/tensor"
)

// SGD is stochastic gradient descent with optional momentum, Nesterov
// acceleration and L2 weight decay.
type SGD[B tensor.Backend] struct {
	LR          float32
	Momentum    float32
	Nesterov    bool
	WeightDecay float32

	params   []*nn.Parameter[B]
	velocity [][]float32
}

// NewSGD creates a plain SGD optimizer.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], lr float32) *SGD[B] {
	if lr <= 0 {
		panic(fmt.Sprintf("SGD: learning rate must be positive, got %v", lr))
	}
	return &SGD[B]{LR: lr, params: params}
}

// NewSGDMomentum creates an SGD optimizer with momentum.
func NewSGDMomentum[B tensor.Backend](params []*nn.Parameter[B], lr, momentum float32, nesterov bool) *SGD[B] {
	s := NewSGD(params, lr)
	if momentum < 0 || momentum >= 1 {
		panic(fmt.Sprintf("SGD: momentum must be in [0, 1), got %v", momentum))
	}
	s.Momentum = momentum
	s.Nesterov = nesterov
	return s
}

// Step applies one update to every parameter with a gradient.
func (s *SGD[B]) Step() {
	if s.velocity == nil && s.Momentum > 0 {
		s.velocity = make([][]float32, len(s.params))
		for i, p := range s.params {
			s.velocity[i] = make([]float32, p.NumElements())
		}
	}
	for i, p := range s.params {
		grad := p.Grad()
		if grad == nil {
			continue
		}
		w := p.Tensor().Data()
		g := grad.Data()
		for j := range w {
			d := g[j]
			if s.WeightDecay > 0 {
				d += s.WeightDecay * w[j]
			}
			if s.Momentum > 0 {
				v := s.Momentum*s.velocity[i][j] + d
				s.velocity[i][j] = v
				if s.Nesterov {
					d = d + s.Momentum*v
				} else {
					d = v
				}
			}
			w[j] -= s.LR * d
		}
	}
}

// ZeroGrad clears all accumulated gradients.
func (s *SGD[B]) ZeroGrad() { zeroGrads(s.params) }
