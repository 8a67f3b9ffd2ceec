// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/ASEM000/Osiris/tensor"
)

// Initializer fills a freshly allocated parameter buffer of the given shape.
type Initializer func(rng *rand.Rand, shape tensor.Shape) *tensor.RawTensor

// computeFans derives (fanIn, fanOut) from a parameter shape.
//
// Vectors use their length for both. Matrices are [in, out]. Convolution
// kernels [C_out, C_in, ...spatial] multiply the channel counts by the
// receptive field size.
func computeFans(shape tensor.Shape) (fanIn, fanOut int) {
	switch len(shape) {
	case 0:
		return 1, 1
	case 1:
		return shape[0], shape[0]
	case 2:
		return shape[0], shape[1]
	default:
		receptive := 1
		for _, d := range shape[2:] {
			receptive *= d
		}
		return shape[1] * receptive, shape[0] * receptive
	}
}

func constInit(value float32) Initializer {
	return func(_ *rand.Rand, shape tensor.Shape) *tensor.RawTensor {
		raw := tensor.MustRaw(shape)
		if value != 0 {
			data := raw.Data()
			for i := range data {
				data[i] = value
			}
		}
		return raw
	}
}

func uniformInit(scale func(fanIn, fanOut int) float64) Initializer {
	return func(rng *rand.Rand, shape tensor.Shape) *tensor.RawTensor {
		raw := tensor.MustRaw(shape)
		bound := scale(computeFans(shape))
		data := raw.Data()
		for i := range data {
			data[i] = float32((rng.Float64()*2 - 1) * bound)
		}
		return raw
	}
}

func normalInit(stddev func(fanIn, fanOut int) float64) Initializer {
	return func(rng *rand.Rand, shape tensor.Shape) *tensor.RawTensor {
		raw := tensor.MustRaw(shape)
		sigma := stddev(computeFans(shape))
		data := raw.Data()
		for i := range data {
			data[i] = float32(rng.NormFloat64() * sigma)
		}
		return raw
	}
}

// initializers is the by-name catalog used by layer constructors.
//
// Variance-scaling entries follow the usual conventions: glorot scales by
// fan average, he by fan-in with ReLU gain, lecun by fan-in.
var initializers = map[string]Initializer{
	"zeros": constInit(0),
	"ones":  constInit(1),
	"uniform": func(rng *rand.Rand, shape tensor.Shape) *tensor.RawTensor {
		raw := tensor.MustRaw(shape)
		data := raw.Data()
		for i := range data {
			data[i] = rng.Float32()
		}
		return raw
	},
	"normal": normalInit(func(_, _ int) float64 { return 1 }),
	"glorot_uniform": uniformInit(func(fanIn, fanOut int) float64 {
		return math.Sqrt(6 / float64(fanIn+fanOut))
	}),
	"glorot_normal": normalInit(func(fanIn, fanOut int) float64 {
		return math.Sqrt(2 / float64(fanIn+fanOut))
	}),
	"he_uniform": uniformInit(func(fanIn, _ int) float64 {
		return math.Sqrt(6 / float64(fanIn))
	}),
	"he_normal": normalInit(func(fanIn, _ int) float64 {
		return math.Sqrt(2 / float64(fanIn))
	}),
	"lecun_uniform": uniformInit(func(fanIn, _ int) float64 {
		return math.Sqrt(3 / float64(fanIn))
	}),
	"lecun_normal": normalInit(func(fanIn, _ int) float64 {
		return math.Sqrt(1 / float64(fanIn))
	}),
}

// ResolveInit looks up an initializer by name.
func ResolveInit(name string) (Initializer, error) {
	init, ok := initializers[name]
	if !ok {
		names := make([]string, 0, len(initializers))
		for k := range initializers {
			names = append(names, k)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown initializer %q, available: %v", name, names)
	}
	return init, nil
}

// mustInit resolves an initializer name, panicking on unknown names.
// Constructors use it; the names they pass are compile-time constants
// unless the caller supplies their own.
func mustInit(name string) Initializer {
	init, err := ResolveInit(name)
	if err != nil {
		panic(err)
	}
	return init
}

// initParam allocates and initializes a named parameter.
func initParam[B tensor.Backend](name, init string, shape tensor.Shape, backend B) *Parameter[B] {
	raw := mustInit(init)(rng, shape)
	return NewParameter(name, tensor.New(raw, backend))
}
