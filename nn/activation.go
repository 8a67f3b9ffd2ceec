// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"
	"math"
	"sort"

	"github.com/ASEM000/Osiris/tensor"
)

// Element-wise math helpers shared by the activation modules.

func sigmoidf(v float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(v))))
}

func softplusf(v float32) float32 {
	// log(1 + e^x), stable for large |x|.
	x := float64(v)
	if x > 30 {
		return v
	}
	return float32(math.Log1p(math.Exp(x)))
}

func tanhf(v float32) float32 {
	return float32(math.Tanh(float64(v)))
}

func expf(v float32) float32 {
	return float32(math.Exp(float64(v)))
}

// ReLU applies f(x) = max(0, x).
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a ReLU activation.
func NewReLU[B tensor.Backend]() *ReLU[B] { return &ReLU[B]{} }

// Forward applies the activation element-wise.
func (ReLU[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	return tensor.Apply(x,
		func(v float32) float32 {
			if v > 0 {
				return v
			}
			return 0
		},
		func(v float32) float32 {
			if v > 0 {
				return 1
			}
			return 0
		})
}

// Parameters returns nil.
func (ReLU[B]) Parameters() []*Parameter[B] { return nil }

// ReLU6 applies f(x) = min(max(0, x), 6).
type ReLU6[B tensor.Backend] struct{}

// NewReLU6 creates a ReLU6 activation.
func NewReLU6[B tensor.Backend]() *ReLU6[B] { return &ReLU6[B]{} }

// Forward applies the activation element-wise.
func (ReLU6[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	return tensor.Apply(x,
		func(v float32) float32 {
			if v < 0 {
				return 0
			}
			if v > 6 {
				return 6
			}
			return v
		},
		func(v float32) float32 {
			if v > 0 && v < 6 {
				return 1
			}
			return 0
		})
}

// Parameters returns nil.
func (ReLU6[B]) Parameters() []*Parameter[B] { return nil }

// LeakyReLU applies f(x) = x for x >= 0 and alpha*x otherwise.
type LeakyReLU[B tensor.Backend] struct {
	Alpha float32
}

// NewLeakyReLU creates a LeakyReLU with negative slope alpha
// (0.01 is the conventional default).
func NewLeakyReLU[B tensor.Backend](alpha float32) *LeakyReLU[B] {
	return &LeakyReLU[B]{Alpha: alpha}
}

// Forward applies the activation element-wise.
func (l *LeakyReLU[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	a := l.Alpha
	return tensor.Apply(x,
		func(v float32) float32 {
			if v >= 0 {
				return v
			}
			return a * v
		},
		func(v float32) float32 {
			if v >= 0 {
				return 1
			}
			return a
		})
}

// Parameters returns nil.
func (*LeakyReLU[B]) Parameters() []*Parameter[B] { return nil }

// ThresholdedReLU zeroes values at or below the threshold.
type ThresholdedReLU[B tensor.Backend] struct {
	Theta float32
}

// NewThresholdedReLU creates a ThresholdedReLU with threshold theta.
func NewThresholdedReLU[B tensor.Backend](theta float32) *ThresholdedReLU[B] {
	return &ThresholdedReLU[B]{Theta: theta}
}

// Forward applies the activation element-wise.
func (t *ThresholdedReLU[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	th := t.Theta
	return tensor.Apply(x,
		func(v float32) float32 {
			if v > th {
				return v
			}
			return 0
		},
		func(v float32) float32 {
			if v > th {
				return 1
			}
			return 0
		})
}

// Parameters returns nil.
func (*ThresholdedReLU[B]) Parameters() []*Parameter[B] { return nil }

// PReLU is a LeakyReLU whose negative slope is trained.
type PReLU[B tensor.Backend] struct {
	Alpha *Parameter[B] // scalar slope, shape [1]
}

// NewPReLU creates a PReLU with the slope initialized to init
// (0.25 is the conventional default).
func NewPReLU[B tensor.Backend](init float32, backend B) *PReLU[B] {
	alpha := tensor.Full(tensor.Shape{1}, init, backend)
	return &PReLU[B]{Alpha: NewParameter("alpha", alpha)}
}

// Forward applies max(0,x) + alpha*min(0,x) so gradients reach Alpha.
func (p *PReLU[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	pos := tensor.Apply(x,
		func(v float32) float32 {
			if v > 0 {
				return v
			}
			return 0
		},
		func(v float32) float32 {
			if v > 0 {
				return 1
			}
			return 0
		})
	neg := x.Sub(pos)
	return pos.Add(neg.Mul(p.Alpha.Tensor()))
}

// Parameters returns the trainable slope.
func (p *PReLU[B]) Parameters() []*Parameter[B] { return []*Parameter[B]{p.Alpha} }

// Sigmoid applies f(x) = 1 / (1 + e^-x).
type Sigmoid[B tensor.Backend] struct{}

// NewSigmoid creates a Sigmoid activation.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] { return &Sigmoid[B]{} }

// Forward applies the activation element-wise.
func (Sigmoid[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	return tensor.Apply(x, sigmoidf, func(v float32) float32 {
		s := sigmoidf(v)
		return s * (1 - s)
	})
}

// Parameters returns nil.
func (Sigmoid[B]) Parameters() []*Parameter[B] { return nil }

// HardSigmoid applies the piecewise-linear sigmoid relu6(x+3)/6.
type HardSigmoid[B tensor.Backend] struct{}

// NewHardSigmoid creates a HardSigmoid activation.
func NewHardSigmoid[B tensor.Backend]() *HardSigmoid[B] { return &HardSigmoid[B]{} }

// Forward applies the activation element-wise.
func (HardSigmoid[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	return tensor.Apply(x,
		func(v float32) float32 {
			if v <= -3 {
				return 0
			}
			if v >= 3 {
				return 1
			}
			return (v + 3) / 6
		},
		func(v float32) float32 {
			if v > -3 && v < 3 {
				return 1.0 / 6
			}
			return 0
		})
}

// Parameters returns nil.
func (HardSigmoid[B]) Parameters() []*Parameter[B] { return nil }

// LogSigmoid applies f(x) = log(sigmoid(x)) = -softplus(-x).
type LogSigmoid[B tensor.Backend] struct{}

// NewLogSigmoid creates a LogSigmoid activation.
func NewLogSigmoid[B tensor.Backend]() *LogSigmoid[B] { return &LogSigmoid[B]{} }

// Forward applies the activation element-wise.
func (LogSigmoid[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	return tensor.Apply(x,
		func(v float32) float32 { return -softplusf(-v) },
		func(v float32) float32 { return sigmoidf(-v) })
}

// Parameters returns nil.
func (LogSigmoid[B]) Parameters() []*Parameter[B] { return nil }

// Tanh applies the hyperbolic tangent.
type Tanh[B tensor.Backend] struct{}

// NewTanh creates a Tanh activation.
func NewTanh[B tensor.Backend]() *Tanh[B] { return &Tanh[B]{} }

// Forward applies the activation element-wise.
func (Tanh[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	return x.Tanh()
}

// Parameters returns nil.
func (Tanh[B]) Parameters() []*Parameter[B] { return nil }

// HardTanh clamps values to [-1, 1].
type HardTanh[B tensor.Backend] struct{}

// NewHardTanh creates a HardTanh activation.
func NewHardTanh[B tensor.Backend]() *HardTanh[B] { return &HardTanh[B]{} }

// Forward applies the activation element-wise.
func (HardTanh[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	return tensor.Apply(x,
		func(v float32) float32 {
			if v < -1 {
				return -1
			}
			if v > 1 {
				return 1
			}
			return v
		},
		func(v float32) float32 {
			if v > -1 && v < 1 {
				return 1
			}
			return 0
		})
}

// Parameters returns nil.
func (HardTanh[B]) Parameters() []*Parameter[B] { return nil }

// TanhShrink applies f(x) = x - tanh(x).
type TanhShrink[B tensor.Backend] struct{}

// NewTanhShrink creates a TanhShrink activation.
func NewTanhShrink[B tensor.Backend]() *TanhShrink[B] { return &TanhShrink[B]{} }

// Forward applies the activation element-wise.
func (TanhShrink[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	return tensor.Apply(x,
		func(v float32) float32 { return v - tanhf(v) },
		func(v float32) float32 {
			t := tanhf(v)
			return t * t
		})
}

// Parameters returns nil.
func (TanhShrink[B]) Parameters() []*Parameter[B] { return nil }

// GELU applies the exact Gaussian error linear unit 0.5x(1 + erf(x/sqrt2)).
type GELU[B tensor.Backend] struct{}

// NewGELU creates a GELU activation.
func NewGELU[B tensor.Backend]() *GELU[B] { return &GELU[B]{} }

// Forward applies the activation element-wise.
func (GELU[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	return tensor.Apply(x,
		func(v float32) float32 {
			return float32(0.5 * float64(v) * (1 + math.Erf(float64(v)/math.Sqrt2)))
		},
		func(v float32) float32 {
			x64 := float64(v)
			cdf := 0.5 * (1 + math.Erf(x64/math.Sqrt2))
			pdf := math.Exp(-x64*x64/2) / math.Sqrt(2*math.Pi)
			return float32(cdf + x64*pdf)
		})
}

// Parameters returns nil.
func (GELU[B]) Parameters() []*Parameter[B] { return nil }

// ELU applies x for x > 0 and alpha*(e^x - 1) otherwise.
type ELU[B tensor.Backend] struct {
	Alpha float32
}

// NewELU creates an ELU with scale alpha (1.0 is the conventional default).
func NewELU[B tensor.Backend](alpha float32) *ELU[B] { return &ELU[B]{Alpha: alpha} }

// Forward applies the activation element-wise.
func (e *ELU[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	a := e.Alpha
	return tensor.Apply(x,
		func(v float32) float32 {
			if v > 0 {
				return v
			}
			return a * (expf(v) - 1)
		},
		func(v float32) float32 {
			if v > 0 {
				return 1
			}
			return a * expf(v)
		})
}

// Parameters returns nil.
func (*ELU[B]) Parameters() []*Parameter[B] { return nil }

// CeLU is the continuously differentiable ELU variant
// max(0,x) + min(0, alpha*(e^(x/alpha) - 1)).
type CeLU[B tensor.Backend] struct {
	Alpha float32
}

// NewCeLU creates a CeLU with scale alpha (1.0 is the conventional default).
func NewCeLU[B tensor.Backend](alpha float32) *CeLU[B] { return &CeLU[B]{Alpha: alpha} }

// Forward applies the activation element-wise.
func (c *CeLU[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	a := c.Alpha
	return tensor.Apply(x,
		func(v float32) float32 {
			if v >= 0 {
				return v
			}
			return a * (expf(v/a) - 1)
		},
		func(v float32) float32 {
			if v >= 0 {
				return 1
			}
			return expf(v / a)
		})
}

// Parameters returns nil.
func (*CeLU[B]) Parameters() []*Parameter[B] { return nil }

// SeLU applies the self-normalizing ELU with fixed scale and alpha.
type SeLU[B tensor.Backend] struct{}

// NewSeLU creates a SeLU activation.
func NewSeLU[B tensor.Backend]() *SeLU[B] { return &SeLU[B]{} }

const (
	seluScale = 1.0507009873554805
	seluAlpha = 1.6732632423543772
)

// Forward applies the activation element-wise.
func (SeLU[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	return tensor.Apply(x,
		func(v float32) float32 {
			if v > 0 {
				return seluScale * v
			}
			return seluScale * seluAlpha * (expf(v) - 1)
		},
		func(v float32) float32 {
			if v > 0 {
				return seluScale
			}
			return seluScale * seluAlpha * expf(v)
		})
}

// Parameters returns nil.
func (SeLU[B]) Parameters() []*Parameter[B] { return nil }

// SoftPlus applies f(x) = log(1 + e^x).
type SoftPlus[B tensor.Backend] struct{}

// NewSoftPlus creates a SoftPlus activation.
func NewSoftPlus[B tensor.Backend]() *SoftPlus[B] { return &SoftPlus[B]{} }

// Forward applies the activation element-wise.
func (SoftPlus[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	return tensor.Apply(x, softplusf, sigmoidf)
}

// Parameters returns nil.
func (SoftPlus[B]) Parameters() []*Parameter[B] { return nil }

// SoftSign applies f(x) = x / (1 + |x|).
type SoftSign[B tensor.Backend] struct{}

// NewSoftSign creates a SoftSign activation.
func NewSoftSign[B tensor.Backend]() *SoftSign[B] { return &SoftSign[B]{} }

// Forward applies the activation element-wise.
func (SoftSign[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	return tensor.Apply(x,
		func(v float32) float32 {
			if v < 0 {
				return v / (1 - v)
			}
			return v / (1 + v)
		},
		func(v float32) float32 {
			d := 1 + float32(math.Abs(float64(v)))
			return 1 / (d * d)
		})
}

// Parameters returns nil.
func (SoftSign[B]) Parameters() []*Parameter[B] { return nil }

// SoftShrink shifts values toward zero by lambda and zeroes the band
// [-lambda, lambda].
type SoftShrink[B tensor.Backend] struct {
	Lambda float32
}

// NewSoftShrink creates a SoftShrink with band half-width lambda.
func NewSoftShrink[B tensor.Backend](lambda float32) *SoftShrink[B] {
	return &SoftShrink[B]{Lambda: lambda}
}

// Forward applies the activation element-wise.
func (s *SoftShrink[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	l := s.Lambda
	return tensor.Apply(x,
		func(v float32) float32 {
			if v > l {
				return v - l
			}
			if v < -l {
				return v + l
			}
			return 0
		},
		func(v float32) float32 {
			if v > l || v < -l {
				return 1
			}
			return 0
		})
}

// Parameters returns nil.
func (*SoftShrink[B]) Parameters() []*Parameter[B] { return nil }

// HardShrink zeroes the band [-lambda, lambda] and passes the rest through.
type HardShrink[B tensor.Backend] struct {
	Lambda float32
}

// NewHardShrink creates a HardShrink with band half-width lambda.
func NewHardShrink[B tensor.Backend](lambda float32) *HardShrink[B] {
	return &HardShrink[B]{Lambda: lambda}
}

// Forward applies the activation element-wise.
func (h *HardShrink[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	l := h.Lambda
	return tensor.Apply(x,
		func(v float32) float32 {
			if v > l || v < -l {
				return v
			}
			return 0
		},
		func(v float32) float32 {
			if v > l || v < -l {
				return 1
			}
			return 0
		})
}

// Parameters returns nil.
func (*HardShrink[B]) Parameters() []*Parameter[B] { return nil }

// Swish applies f(x) = x * sigmoid(x), also known as SiLU.
type Swish[B tensor.Backend] struct{}

// NewSwish creates a Swish activation.
func NewSwish[B tensor.Backend]() *Swish[B] { return &Swish[B]{} }

// Forward applies the activation element-wise.
func (Swish[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	return tensor.Apply(x,
		func(v float32) float32 { return v * sigmoidf(v) },
		func(v float32) float32 {
			s := sigmoidf(v)
			return s + v*s*(1-s)
		})
}

// Parameters returns nil.
func (Swish[B]) Parameters() []*Parameter[B] { return nil }

// HardSwish applies x * relu6(x+3)/6.
type HardSwish[B tensor.Backend] struct{}

// NewHardSwish creates a HardSwish activation.
func NewHardSwish[B tensor.Backend]() *HardSwish[B] { return &HardSwish[B]{} }

// Forward applies the activation element-wise.
func (HardSwish[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	return tensor.Apply(x,
		func(v float32) float32 {
			if v <= -3 {
				return 0
			}
			if v >= 3 {
				return v
			}
			return v * (v + 3) / 6
		},
		func(v float32) float32 {
			if v <= -3 {
				return 0
			}
			if v >= 3 {
				return 1
			}
			return (2*v + 3) / 6
		})
}

// Parameters returns nil.
func (HardSwish[B]) Parameters() []*Parameter[B] { return nil }

// Mish applies f(x) = x * tanh(softplus(x)).
type Mish[B tensor.Backend] struct{}

// NewMish creates a Mish activation.
func NewMish[B tensor.Backend]() *Mish[B] { return &Mish[B]{} }

// Forward applies the activation element-wise.
func (Mish[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	return tensor.Apply(x,
		func(v float32) float32 { return v * tanhf(softplusf(v)) },
		func(v float32) float32 {
			sp := tanhf(softplusf(v))
			return sp + v*(1-sp*sp)*sigmoidf(v)
		})
}

// Parameters returns nil.
func (Mish[B]) Parameters() []*Parameter[B] { return nil }

// SquarePlus applies the algebraic softplus (x + sqrt(x^2 + 4)) / 2.
type SquarePlus[B tensor.Backend] struct{}

// NewSquarePlus creates a SquarePlus activation.
func NewSquarePlus[B tensor.Backend]() *SquarePlus[B] { return &SquarePlus[B]{} }

// Forward applies the activation element-wise.
func (SquarePlus[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	return tensor.Apply(x,
		func(v float32) float32 {
			return (v + float32(math.Sqrt(float64(v*v+4)))) / 2
		},
		func(v float32) float32 {
			return 0.5 * (1 + v/float32(math.Sqrt(float64(v*v+4))))
		})
}

// Parameters returns nil.
func (SquarePlus[B]) Parameters() []*Parameter[B] { return nil }

// Snake applies x + sin^2(a*x)/a, a periodic activation for learning
// periodic functions.
type Snake[B tensor.Backend] struct {
	Frequency float32
}

// NewSnake creates a Snake activation with frequency a
// (1.0 is the conventional default).
func NewSnake[B tensor.Backend](a float32) *Snake[B] { return &Snake[B]{Frequency: a} }

// Forward applies the activation element-wise.
func (s *Snake[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	a := s.Frequency
	return tensor.Apply(x,
		func(v float32) float32 {
			sv := float32(math.Sin(float64(a * v)))
			return v + sv*sv/a
		},
		func(v float32) float32 {
			return 1 + float32(math.Sin(float64(2*a*v)))
		})
}

// Parameters returns nil.
func (*Snake[B]) Parameters() []*Parameter[B] { return nil }

// Softmax normalizes along Dim (the last dimension by default).
type Softmax[B tensor.Backend] struct {
	Dim int
}

// NewSoftmax creates a Softmax over dim.
func NewSoftmax[B tensor.Backend](dim int) *Softmax[B] { return &Softmax[B]{Dim: dim} }

// Forward applies softmax along the configured dimension.
func (s *Softmax[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	return x.Softmax(s.Dim)
}

// Parameters returns nil.
func (*Softmax[B]) Parameters() []*Parameter[B] { return nil }

// LogSoftmax computes log-softmax along Dim with the usual max-shift for
// numerical stability.
type LogSoftmax[B tensor.Backend] struct {
	Dim int
}

// NewLogSoftmax creates a LogSoftmax over dim.
func NewLogSoftmax[B tensor.Backend](dim int) *LogSoftmax[B] { return &LogSoftmax[B]{Dim: dim} }

// Forward applies log-softmax along the configured dimension.
func (l *LogSoftmax[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	// Shift by the per-slice maximum (a constant, so no gradient flows
	// through it) before exponentiating.
	b := x.Backend()
	dim := l.Dim
	if dim < 0 {
		dim += len(x.Shape())
	}
	maxes := rawMaxDim(x.Raw(), dim)
	shifted := x.Sub(tensor.New(maxes, b))
	return shifted.Sub(shifted.Exp().SumDim(dim, true).Log())
}

// Parameters returns nil.
func (*LogSoftmax[B]) Parameters() []*Parameter[B] { return nil }

// rawMaxDim computes the keepdim maximum along dim without touching the
// autodiff graph.
func rawMaxDim(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	outShape := shape.Clone()
	outShape[dim] = 1
	out := tensor.MustRaw(outShape)
	outer, d, inner := 1, shape[dim], 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	xd, od := x.Data(), out.Data()
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			best := float32(math.Inf(-1))
			for j := 0; j < d; j++ {
				if v := xd[(o*d+j)*inner+i]; v > best {
					best = v
				}
			}
			od[o*inner+i] = best
		}
	}
	return out
}

// GLU halves the last dimension and gates the first half with the sigmoid
// of the second: glu(x) = a * sigmoid(b) for x = [a; b].
type GLU[B tensor.Backend] struct{}

// NewGLU creates a gated linear unit.
func NewGLU[B tensor.Backend]() *GLU[B] { return &GLU[B]{} }

// Forward gates the first half of the last dimension with the second.
func (GLU[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	shape := x.Shape()
	last := len(shape) - 1
	d := shape[last]
	if d%2 != 0 {
		panic(fmt.Sprintf("GLU.Forward: last dimension must be even, got %d", d))
	}
	a := x.Narrow(last, 0, d/2)
	b := x.Narrow(last, d/2, d/2)
	gate := tensor.Apply(b, sigmoidf, func(v float32) float32 {
		s := sigmoidf(v)
		return s * (1 - s)
	})
	return a.Mul(gate)
}

// Parameters returns nil.
func (GLU[B]) Parameters() []*Parameter[B] { return nil }

// activations is the by-name catalog used by ResolveActivation. Entries
// with tunable constants use their conventional defaults.
func activations[B tensor.Backend]() map[string]func() Module[B] {
	return map[string]func() Module[B]{
		"relu":             func() Module[B] { return NewReLU[B]() },
		"relu6":            func() Module[B] { return NewReLU6[B]() },
		"leaky_relu":       func() Module[B] { return NewLeakyReLU[B](0.01) },
		"thresholded_relu": func() Module[B] { return NewThresholdedReLU[B](1.0) },
		"sigmoid":          func() Module[B] { return NewSigmoid[B]() },
		"hard_sigmoid":     func() Module[B] { return NewHardSigmoid[B]() },
		"log_sigmoid":      func() Module[B] { return NewLogSigmoid[B]() },
		"tanh":             func() Module[B] { return NewTanh[B]() },
		"hard_tanh":        func() Module[B] { return NewHardTanh[B]() },
		"tanh_shrink":      func() Module[B] { return NewTanhShrink[B]() },
		"gelu":             func() Module[B] { return NewGELU[B]() },
		"elu":              func() Module[B] { return NewELU[B](1.0) },
		"celu":             func() Module[B] { return NewCeLU[B](1.0) },
		"selu":             func() Module[B] { return NewSeLU[B]() },
		"softplus":         func() Module[B] { return NewSoftPlus[B]() },
		"softsign":         func() Module[B] { return NewSoftSign[B]() },
		"soft_shrink":      func() Module[B] { return NewSoftShrink[B](0.5) },
		"hard_shrink":      func() Module[B] { return NewHardShrink[B](0.5) },
		"swish":            func() Module[B] { return NewSwish[B]() },
		"silu":             func() Module[B] { return NewSwish[B]() },
		"hard_swish":       func() Module[B] { return NewHardSwish[B]() },
		"mish":             func() Module[B] { return NewMish[B]() },
		"square_plus":      func() Module[B] { return NewSquarePlus[B]() },
		"snake":            func() Module[B] { return NewSnake[B](1.0) },
		"softmax":          func() Module[B] { return NewSoftmax[B](-1) },
		"log_softmax":      func() Module[B] { return NewLogSoftmax[B](-1) },
		"glu":              func() Module[B] { return NewGLU[B]() },
		"identity":         func() Module[B] { return NewIdentity[B]() },
	}
}

// ResolveActivation returns a fresh activation module by name.
func ResolveActivation[B tensor.Backend](name string) (Module[B], error) {
	catalog := activations[B]()
	ctor, ok := catalog[name]
	if !ok {
		names := make([]string, 0, len(catalog))
		for k := range catalog {
			names = append(names, k)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown activation %q, available: %v", name, names)
	}
	return ctor(), nil
}
