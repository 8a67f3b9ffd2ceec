// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package checkpoint saves and restores model weights in a simple binary
// container: a JSON tensor index followed by an aligned float32 payload,
// integrity-checked with SHA-256.
package checkpoint

import (
	"fmt"

	"github.com/ASEM000/Osiris/nn"
	"github.com/ASEM000/Osiris/tensor"
	"github.com/ASEM000/Osiris/tree"
)

// Save writes the model's parameters to path.
func Save[B tensor.Backend](path string, model nn.Module[B]) error {
	return SaveWithHeader(path, model, Header{})
}

// SaveWithHeader writes the model's parameters to path with caller
// supplied header fields such as Metadata and Train.
func SaveWithHeader[B tensor.Backend](path string, model nn.Module[B], header Header) error {
	w, err := NewWriter(path)
	if err != nil {
		return err
	}
	defer w.Close()

	if header.ModelType == "" {
		header.ModelType = tree.Build(model).Type
	}
	if err := w.WriteStateDictWithHeader(tree.StateDict(model), header); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Load verifies path and copies its weights into the model. The model
// must already be materialized with the same structure that was saved.
func Load[B tensor.Backend](path string, model nn.Module[B]) error {
	r, err := Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.Verify(); err != nil {
		return fmt.Errorf("failed to verify %s: %w", path, err)
	}
	dict, err := r.ReadStateDict()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return tree.LoadStateDict(model, dict)
}
