// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers built on the tensor package:
// linear and convolutional layers, pooling, normalization, dropout,
// recurrent cells, attention, activations and losses.
//
// Layers are plain structs with exported parameter fields, composed with
// Sequential and trained through the autodiff graph recorded by the
// tensor package. Layers that accept Infer as their input width create
// their parameters lazily on the first Forward call, so the tail of a
// network does not need to know the shapes flowing into it.
package nn
