// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim implements gradient-based optimizers over nn parameters.
// Optimizers read the gradients accumulated by Backward and update the
// weights in place, so the usual loop is forward, loss.Backward(),
// opt.Step(), opt.ZeroGrad().
package optim
