// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/ASEM000/Osiris/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules compose into larger models by containment; Sequential chains them,
// and the tree package walks any composed model structurally for summaries,
// diagrams, state dicts and masked parameter access.
//
//	model := nn.NewSequential[*cpu.Backend](
//	    nn.NewLinear(784, 128, backend),
//	    nn.NewTanh[*cpu.Backend](),
//	    nn.NewLinear(128, 10, backend),
//	)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the module output for the given input tensor.
	// Modules panic on inputs whose rank or feature count cannot fit.
	Forward(input *tensor.Tensor[B]) *tensor.Tensor[B]

	// Parameters returns all trainable parameters of this module, including
	// those of nested modules. Modules without parameters return nil.
	Parameters() []*Parameter[B]
}

// TrainSwitcher is implemented by modules whose Forward differs between
// training and evaluation (Dropout, BatchNorm). tree.SetTraining flips every
// such module in a model at once.
type TrainSwitcher interface {
	SetTraining(training bool)
}

// Infer marks a feature or channel count as unknown at construction time.
//
// A layer built with Infer delays creating its shape-dependent parameters
// until the first Forward call supplies a concrete input, then fixes its
// configuration permanently (lazy initialization).
const Infer = -1

// rng is the package random source for parameter initialization and random
// layers. Seeded to a fixed value so that models are reproducible by
// default; call Seed to change it.
var rng = rand.New(rand.NewSource(0))

// Seed reseeds the package random source used for initialization, dropout
// masks and random transforms.
func Seed(seed int64) {
	rng = rand.New(rand.NewSource(seed))
}
