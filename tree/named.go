// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tree

import (
	"fmt"
	"sort"

	"github.com/ASEM000/Osiris/nn"
	"github.com/ASEM000/Osiris/tensor"
)

// NamedParameters returns every parameter of the model with its full
// structural path, e.g. "model.Layers[0].Weight", in depth-first order.
func NamedParameters[B tensor.Backend](model nn.Module[B]) []NamedParam[B] {
	var out []NamedParam[B]
	Build(model).Walk(func(path string, node *Node[B]) {
		for _, p := range node.Params {
			out = append(out, NamedParam[B]{Name: path + "." + p.Name, Param: p.Param})
		}
	})
	return out
}

// NamedBuffers returns every non-trainable buffer of the model with its
// full structural path, e.g. "model.Layers[1].RunningMean", in
// depth-first order.
func NamedBuffers[B tensor.Backend](model nn.Module[B]) []NamedBuffer {
	var out []NamedBuffer
	Build(model).Walk(func(path string, node *Node[B]) {
		for _, b := range node.Buffers {
			out = append(out, NamedBuffer{Name: path + "." + b.Name, Raw: b.Raw})
		}
	})
	return out
}

// stateEntries returns every persisted tensor of the model, parameters
// and buffers alike, with its full path and the live backing storage.
func stateEntries[B tensor.Backend](model nn.Module[B]) []NamedBuffer {
	var out []NamedBuffer
	Build(model).Walk(func(path string, node *Node[B]) {
		for _, p := range node.Params {
			out = append(out, NamedBuffer{Name: path + "." + p.Name, Raw: p.Param.Tensor().Raw()})
		}
		for _, b := range node.Buffers {
			out = append(out, NamedBuffer{Name: path + "." + b.Name, Raw: b.Raw})
		}
	})
	return out
}

// StateDict snapshots every parameter and buffer into a map keyed by
// structural path. The values are copies, detached from the model and the
// autodiff graph. Buffers such as BatchNorm running statistics are
// included so that a round-trip restores evaluation behavior, not just
// trainable weights.
func StateDict[B tensor.Backend](model nn.Module[B]) map[string]*tensor.RawTensor {
	dict := make(map[string]*tensor.RawTensor)
	for _, e := range stateEntries(model) {
		dict[e.Name] = e.Raw.Clone()
	}
	return dict
}

// LoadStateDict copies the values of dict into the matching parameters
// and buffers of the model. Every key must resolve to an entry of
// identical shape and every entry must have a key, so a model loading a
// dict must be materialized the same way as the model that saved it.
func LoadStateDict[B tensor.Backend](model nn.Module[B], dict map[string]*tensor.RawTensor) error {
	entries := stateEntries(model)
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		raw, ok := dict[e.Name]
		if !ok {
			return fmt.Errorf("state dict is missing parameter %q", e.Name)
		}
		if !raw.Shape().Equal(e.Raw.Shape()) {
			return fmt.Errorf("parameter %q: shape mismatch, model has %v, dict has %v",
				e.Name, e.Raw.Shape(), raw.Shape())
		}
		copy(e.Raw.Data(), raw.Data())
		seen[e.Name] = true
	}
	if len(seen) != len(dict) {
		var extra []string
		for k := range dict {
			if !seen[k] {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		return fmt.Errorf("state dict has %d entries with no matching parameter: %v", len(extra), extra)
	}
	return nil
}
