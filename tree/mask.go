// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tree

import (
	"strings"

	"github.com/ASEM000/Osiris/nn"
	"github.com/ASEM000/Osiris/tensor"
)

// Mask selects parameters by their structural path.
type Mask func(path string) bool

// All matches every parameter.
func All(string) bool { return true }

// ByName matches paths containing the given fragment, so ByName("Weight")
// selects weights everywhere and ByName("Layers[0]") a single layer.
func ByName(fragment string) Mask {
	return func(path string) bool { return strings.Contains(path, fragment) }
}

// ByType matches the parameters living under modules of the given type
// name, e.g. ByType(model, "Linear"). The mask is bound to the model it
// was built from.
func ByType[B tensor.Backend](model nn.Module[B], typ string) Mask {
	paths := make(map[string]bool)
	Build(model).Walk(func(path string, node *Node[B]) {
		if node.Type != typ {
			return
		}
		for _, p := range node.Params {
			paths[path+"."+p.Name] = true
		}
	})
	return func(path string) bool { return paths[path] }
}

// Trainable matches the parameters currently accumulating gradients. The
// mask is bound to the model and to its freeze state at build time.
func Trainable[B tensor.Backend](model nn.Module[B]) Mask {
	paths := make(map[string]bool)
	for _, np := range NamedParameters(model) {
		if np.Param.Tensor().RequiresGrad() {
			paths[np.Name] = true
		}
	}
	return func(path string) bool { return paths[path] }
}

// Not inverts a mask.
func Not(m Mask) Mask {
	return func(path string) bool { return !m(path) }
}

// And matches paths accepted by every given mask.
func And(masks ...Mask) Mask {
	return func(path string) bool {
		for _, m := range masks {
			if !m(path) {
				return false
			}
		}
		return true
	}
}

// Filter returns the parameters whose path the mask accepts.
func Filter[B tensor.Backend](model nn.Module[B], mask Mask) []NamedParam[B] {
	var out []NamedParam[B]
	for _, np := range NamedParameters(model) {
		if mask(np.Name) {
			out = append(out, np)
		}
	}
	return out
}

// Apply runs fn on the raw values of every selected parameter, in place.
func Apply[B tensor.Backend](model nn.Module[B], mask Mask, fn func(name string, raw *tensor.RawTensor)) {
	for _, np := range Filter(model, mask) {
		fn(np.Name, np.Param.Tensor().Raw())
	}
}

// Freeze stops gradient accumulation for the selected parameters.
func Freeze[B tensor.Backend](model nn.Module[B], mask Mask) {
	for _, np := range Filter(model, mask) {
		np.Param.Tensor().SetRequiresGrad(false)
	}
}

// Unfreeze re-enables gradient accumulation for the selected parameters.
func Unfreeze[B tensor.Backend](model nn.Module[B], mask Mask) {
	for _, np := range Filter(model, mask) {
		np.Param.Tensor().SetRequiresGrad(true)
	}
}

// Count returns the total element count of the selected parameters.
func Count[B tensor.Backend](model nn.Module[B], mask Mask) int {
	total := 0
	for _, np := range Filter(model, mask) {
		total += np.Param.NumElements()
	}
	return total
}

// NumBytes returns the total byte size of the selected parameters.
func NumBytes[B tensor.Backend](model nn.Module[B], mask Mask) int {
	total := 0
	for _, np := range Filter(model, mask) {
		total += np.Param.Tensor().Raw().ByteSize()
	}
	return total
}

// SetTraining flips every train-aware module in the model between
// training and evaluation mode.
func SetTraining[B tensor.Backend](model nn.Module[B], training bool) {
	Build(model).Walk(func(_ string, node *Node[B]) {
		if ts, ok := node.Module.(nn.TrainSwitcher); ok {
			ts.SetTraining(training)
		}
	})
}
