// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tree inspects composed models structurally. It walks the
// exported fields of any nn.Module with reflection and derives named
// parameter paths, tabular summaries, ASCII diagrams, state dicts and
// masked parameter selection from the resulting tree, without the layers
// having to cooperate beyond exporting their fields.
package tree
