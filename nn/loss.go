// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"
	"math"

	"github.com/ASEM000/Osiris/tensor"
)

// MSELoss returns the mean squared error between pred and target.
func MSELoss[B tensor.Backend](pred, target *tensor.Tensor[B]) *tensor.Tensor[B] {
	if !pred.Shape().Equal(target.Shape()) {
		panic(fmt.Sprintf("MSELoss: shape mismatch %v vs %v", pred.Shape(), target.Shape()))
	}
	diff := pred.Sub(target)
	return diff.Mul(diff).Mean()
}

// L1Loss returns the mean absolute error between pred and target.
func L1Loss[B tensor.Backend](pred, target *tensor.Tensor[B]) *tensor.Tensor[B] {
	if !pred.Shape().Equal(target.Shape()) {
		panic(fmt.Sprintf("L1Loss: shape mismatch %v vs %v", pred.Shape(), target.Shape()))
	}
	return pred.Sub(target).Abs().Mean()
}

// HuberLoss returns the mean Huber loss with transition point delta:
// quadratic within delta of the target, linear beyond it.
func HuberLoss[B tensor.Backend](pred, target *tensor.Tensor[B], delta float32) *tensor.Tensor[B] {
	if !pred.Shape().Equal(target.Shape()) {
		panic(fmt.Sprintf("HuberLoss: shape mismatch %v vs %v", pred.Shape(), target.Shape()))
	}
	if delta <= 0 {
		panic(fmt.Sprintf("HuberLoss: delta must be positive, got %v", delta))
	}
	diff := pred.Sub(target)
	huber := tensor.Apply(diff,
		func(v float32) float32 {
			if a := float32(math.Abs(float64(v))); a > delta {
				return delta * (a - delta/2)
			}
			return v * v / 2
		},
		func(v float32) float32 {
			if v > delta {
				return delta
			}
			if v < -delta {
				return -delta
			}
			return v
		})
	return huber.Mean()
}

// CrossEntropyLoss returns the mean negative log-likelihood of the target
// classes under softmax(logits). logits has shape [N, C] and targets holds
// one class index per row. The softmax and the log are fused for numerical
// stability.
func CrossEntropyLoss[B tensor.Backend](logits *tensor.Tensor[B], targets []int) *tensor.Tensor[B] {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("CrossEntropyLoss: want rank-2 logits [N,C], got %v", shape))
	}
	n, c := shape[0], shape[1]
	if len(targets) != n {
		panic(fmt.Sprintf("CrossEntropyLoss: %d targets for %d rows", len(targets), n))
	}

	data := logits.Data()
	probs := make([]float32, n*c)
	var total float64
	for i := 0; i < n; i++ {
		t := targets[i]
		if t < 0 || t >= c {
			panic(fmt.Sprintf("CrossEntropyLoss: target %d out of range [0,%d)", t, c))
		}
		row := data[i*c : (i+1)*c]
		maxv := row[0]
		for _, v := range row[1:] {
			if v > maxv {
				maxv = v
			}
		}
		var sum float64
		for j, v := range row {
			e := math.Exp(float64(v - maxv))
			probs[i*c+j] = float32(e)
			sum += e
		}
		inv := float32(1 / sum)
		for j := range row {
			probs[i*c+j] *= inv
		}
		total += math.Log(sum) - float64(row[t]-maxv)
	}

	out := tensor.MustRaw(tensor.Shape{})
	out.Data()[0] = float32(total / float64(n))

	return tensor.FromOp(out, logits.Backend(), func(grad *tensor.RawTensor) {
		// d/dlogits = (softmax - onehot) / N, scaled by the incoming grad.
		g := grad.Data()[0] / float32(n)
		dl := tensor.MustRaw(tensor.Shape{n, c})
		dd := dl.Data()
		for i := 0; i < n; i++ {
			for j := 0; j < c; j++ {
				dd[i*c+j] = probs[i*c+j] * g
			}
			dd[i*c+targets[i]] -= g
		}
		logits.AccumGrad(dl)
	}, logits)
}
