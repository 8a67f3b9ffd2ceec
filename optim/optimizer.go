// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/ASEM000/Osiris/nn"
	"github.com/ASEM000/Osiris/tensor"
)

// Optimizer updates parameters in place from their accumulated gradients.
type Optimizer[B tensor.Backend] interface {
	// Step applies one update. Parameters without a gradient are skipped.
	Step()
	// ZeroGrad clears all accumulated gradients.
	ZeroGrad()
}

// zeroGrads clears the gradients of all given parameters.
func zeroGrads[B tensor.Backend](params []*nn.Parameter[B]) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
