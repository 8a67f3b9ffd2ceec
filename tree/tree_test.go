// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ASEM000/Osiris/backend/cpu"
	"github.com/ASEM000/Osiris/nn"
	"github.com/ASEM000/Osiris/tensor"
)

func model(t *testing.T) *nn.Sequential[*cpu.Backend] {
	t.Helper()
	backend := cpu.New()
	return nn.NewSequential[*cpu.Backend](
		nn.NewLinear(4, 8, backend),
		nn.NewReLU[*cpu.Backend](),
		nn.NewLinear(8, 2, backend),
	)
}

func TestBuildStructure(t *testing.T) {
	root := Build[*cpu.Backend](model(t))
	assert.Equal(t, "model", root.Name)
	assert.Equal(t, "Sequential", root.Type)
	require.Len(t, root.Children, 3)

	assert.Equal(t, "Layers[0]", root.Children[0].Name)
	assert.Equal(t, "Linear", root.Children[0].Type)
	assert.Equal(t, "ReLU", root.Children[1].Type)

	first := root.Children[0]
	require.Len(t, first.Params, 2)
	assert.Equal(t, "Weight", first.Params[0].Name)
	assert.Equal(t, "Bias", first.Params[1].Name)
}

func TestBuildSkipsLazyParams(t *testing.T) {
	backend := cpu.New()
	l := nn.NewLinearInit(nn.Infer, 4, "glorot_uniform", "zeros", backend)
	root := Build[*cpu.Backend](l)
	assert.Empty(t, root.Params, "unmaterialized parameters are invisible")
}

func TestNumParams(t *testing.T) {
	root := Build[*cpu.Backend](model(t))
	// 4*8+8 + 8*2+2
	assert.Equal(t, 58, root.NumParams())
	assert.Equal(t, 58*4, root.NumBytes())
}

func TestNamedParameterPaths(t *testing.T) {
	params := NamedParameters[*cpu.Backend](model(t))
	require.Len(t, params, 4)

	var names []string
	for _, p := range params {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{
		"model.Layers[0].Weight",
		"model.Layers[0].Bias",
		"model.Layers[2].Weight",
		"model.Layers[2].Bias",
	}, names)
}

func TestWalkPaths(t *testing.T) {
	var paths []string
	Build[*cpu.Backend](model(t)).Walk(func(path string, _ *Node[*cpu.Backend]) {
		paths = append(paths, path)
	})
	assert.Equal(t, []string{
		"model",
		"model.Layers[0]",
		"model.Layers[1]",
		"model.Layers[2]",
	}, paths)
}

func TestStateDictRoundTrip(t *testing.T) {
	src := model(t)
	dict := StateDict[*cpu.Backend](src)
	require.Len(t, dict, 4)

	// Snapshots are detached copies.
	w := src.Layers[0].(*nn.Linear[*cpu.Backend]).Weight
	dict["model.Layers[0].Weight"].Data()[0] = 99
	assert.NotEqual(t, float32(99), w.Tensor().Data()[0])

	dst := model(t)
	require.NoError(t, LoadStateDict[*cpu.Backend](dst, dict))
	got := dst.Layers[0].(*nn.Linear[*cpu.Backend]).Weight
	assert.Equal(t, float32(99), got.Tensor().Data()[0])
}

func TestLoadStateDictErrors(t *testing.T) {
	m := model(t)

	err := LoadStateDict[*cpu.Backend](m, map[string]*tensor.RawTensor{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing parameter")

	dict := StateDict[*cpu.Backend](m)
	dict["model.Layers[0].Weight"] = tensor.MustRaw(tensor.Shape{3, 3})
	err = LoadStateDict[*cpu.Backend](m, dict)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shape mismatch")

	dict = StateDict[*cpu.Backend](m)
	dict["model.Bogus"] = tensor.MustRaw(tensor.Shape{1})
	err = LoadStateDict[*cpu.Backend](m, dict)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no matching parameter")
	assert.Contains(t, err.Error(), "model.Bogus")
}

func TestMasks(t *testing.T) {
	m := model(t)

	weights := Filter[*cpu.Backend](m, ByName("Weight"))
	assert.Len(t, weights, 2)
	assert.Equal(t, 4*8+8*2, Count[*cpu.Backend](m, ByName("Weight")))

	biases := Filter[*cpu.Backend](m, Not(ByName("Weight")))
	assert.Len(t, biases, 2)

	firstWeight := Filter[*cpu.Backend](m, And(ByName("Layers[0]"), ByName("Weight")))
	require.Len(t, firstWeight, 1)
	assert.Equal(t, "model.Layers[0].Weight", firstWeight[0].Name)

	assert.Equal(t, 58, Count[*cpu.Backend](m, All))
	assert.Equal(t, 58*4, NumBytes[*cpu.Backend](m, All))
}

func TestByType(t *testing.T) {
	m := model(t)
	linears := Filter[*cpu.Backend](m, ByType[*cpu.Backend](m, "Linear"))
	assert.Len(t, linears, 4)
	assert.Empty(t, Filter[*cpu.Backend](m, ByType[*cpu.Backend](m, "Conv2D")))
}

func TestTrainableMask(t *testing.T) {
	m := model(t)
	Freeze[*cpu.Backend](m, ByName("Layers[2]"))

	trainable := Filter[*cpu.Backend](m, Trainable[*cpu.Backend](m))
	require.Len(t, trainable, 2)
	for _, np := range trainable {
		assert.Contains(t, np.Name, "Layers[0]")
	}
}

func TestApply(t *testing.T) {
	m := model(t)
	Apply[*cpu.Backend](m, ByName("Bias"), func(_ string, raw *tensor.RawTensor) {
		data := raw.Data()
		for i := range data {
			data[i] = 7
		}
	})

	b := m.Layers[0].(*nn.Linear[*cpu.Backend]).Bias
	assert.Equal(t, float32(7), b.Tensor().Data()[0])
	w := m.Layers[0].(*nn.Linear[*cpu.Backend]).Weight
	assert.NotEqual(t, float32(7), w.Tensor().Data()[0])
}

func TestFreezeUnfreeze(t *testing.T) {
	m := model(t)
	w := m.Layers[0].(*nn.Linear[*cpu.Backend]).Weight

	Freeze[*cpu.Backend](m, ByName("Layers[0]"))
	assert.False(t, w.Tensor().RequiresGrad())

	Unfreeze[*cpu.Backend](m, All)
	assert.True(t, w.Tensor().RequiresGrad())
}

func TestSetTraining(t *testing.T) {
	backend := cpu.New()
	m := nn.NewSequential[*cpu.Backend](
		nn.NewLinear(2, 2, backend),
		nn.NewDropout[*cpu.Backend](0.5),
	)
	SetTraining[*cpu.Backend](m, false)

	x, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{1, 2}, backend)
	require.NoError(t, err)
	hidden := m.Layers[0].Forward(x)
	assert.Same(t, hidden, m.Layers[1].Forward(hidden))
}

func TestSummaryOutput(t *testing.T) {
	var sb strings.Builder
	Summary[*cpu.Backend](&sb, model(t))
	out := sb.String()

	assert.Contains(t, out, "Sequential")
	assert.Contains(t, out, "Linear")
	assert.Contains(t, out, "ReLU")
	assert.Contains(t, out, "58")
	assert.Contains(t, out, "[4, 8]")
}

func TestDiagramOutput(t *testing.T) {
	out := Diagram[*cpu.Backend](model(t))

	assert.Contains(t, out, "Sequential")
	assert.Contains(t, out, "Layers[0]")
	assert.Contains(t, out, "Weight[4, 8]")
	assert.Contains(t, out, "├──")
}

func TestRecurrentCellParamsVisible(t *testing.T) {
	backend := cpu.New()
	rnn := nn.NewScanRNN[*cpu.Backend](nn.NewLSTMCell(3, 5, backend), false, false)

	params := NamedParameters[*cpu.Backend](rnn)
	require.Len(t, params, len(rnn.Parameters()))

	var names []string
	for _, p := range params {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{
		"model.RNNCell.WeightInput",
		"model.RNNCell.WeightState",
		"model.RNNCell.Bias",
	}, names)

	root := Build[*cpu.Backend](rnn)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "RNNCell", root.Children[0].Name)
	assert.Equal(t, "LSTMCell", root.Children[0].Type)
	assert.Equal(t, 3*20+5*20+20, root.NumParams())

	dict := StateDict[*cpu.Backend](rnn)
	require.Len(t, dict, 3)
	dst := nn.NewScanRNN[*cpu.Backend](nn.NewLSTMCell(3, 5, backend), false, false)
	require.NoError(t, LoadStateDict[*cpu.Backend](dst, dict))
	assert.Equal(t,
		rnn.RNNCell.(*nn.LSTMCell[*cpu.Backend]).WeightInput.Tensor().Data(),
		dst.RNNCell.(*nn.LSTMCell[*cpu.Backend]).WeightInput.Tensor().Data())
}

func TestStateDictCarriesRunningStats(t *testing.T) {
	backend := cpu.New()
	src := nn.NewBatchNorm[*cpu.Backend](2, backend)

	// A training step moves the running averages off their defaults.
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	src.Forward(x)

	dict := StateDict[*cpu.Backend](src)
	require.Len(t, dict, 4)
	require.Contains(t, dict, "model.RunningMean")
	require.Contains(t, dict, "model.RunningVar")

	// Snapshots are detached from the live buffers.
	dict["model.RunningMean"].Data()[0] = 42
	assert.NotEqual(t, float32(42), src.RunningMean.Data()[0])
	dict["model.RunningMean"].Data()[0] = src.RunningMean.Data()[0]

	dst := nn.NewBatchNorm[*cpu.Backend](2, backend)
	require.NoError(t, LoadStateDict[*cpu.Backend](dst, dict))
	assert.Equal(t, src.RunningMean.Data(), dst.RunningMean.Data())
	assert.Equal(t, src.RunningVar.Data(), dst.RunningVar.Data())

	// Eval-mode outputs match after the round-trip.
	SetTraining[*cpu.Backend](src, false)
	SetTraining[*cpu.Backend](dst, false)
	assert.Equal(t, src.Forward(x).Data(), dst.Forward(x).Data())
}
