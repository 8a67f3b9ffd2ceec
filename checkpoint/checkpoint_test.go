// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ASEM000/Osiris/backend/cpu"
	"github.com/ASEM000/Osiris/nn"
	"github.com/ASEM000/Osiris/tensor"
	"github.com/ASEM000/Osiris/tree"
)

func buildModel(t *testing.T) *nn.Sequential[*cpu.Backend] {
	t.Helper()
	backend := cpu.New()
	return nn.NewSequential[*cpu.Backend](
		nn.NewLinear(3, 4, backend),
		nn.NewTanh[*cpu.Backend](),
		nn.NewLinear(4, 2, backend),
	)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.osiris")

	src := buildModel(t)
	require.NoError(t, Save(path, src))

	dst := buildModel(t)
	require.NoError(t, Load(path, dst))

	want := tree.StateDict[*cpu.Backend](src)
	got := tree.StateDict[*cpu.Backend](dst)
	require.Len(t, got, len(want))
	for name, raw := range want {
		assert.Equal(t, raw.Data(), got[name].Data(), name)
	}
}

func TestHeaderContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.osiris")
	require.NoError(t, SaveWithHeader(path, buildModel(t), Header{
		Metadata: map[string]string{"dataset": "toy"},
		Train:    &TrainMeta{Epoch: 4, Step: 1200, Loss: 0.25},
	}))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	h := r.Header()
	assert.Equal(t, FormatVersion, h.FormatVersion)
	assert.Equal(t, "Sequential", h.ModelType)
	assert.Equal(t, "toy", h.Metadata["dataset"])
	require.NotNil(t, h.Train)
	assert.Equal(t, 4, h.Train.Epoch)
	assert.False(t, h.CreatedAt.IsZero())
	assert.Len(t, h.Tensors, 4)

	// Tensor names are written in sorted order.
	for i := 1; i < len(h.Tensors); i++ {
		assert.Less(t, h.Tensors[i-1].Name, h.Tensors[i].Name)
	}
	require.NoError(t, r.Verify())
}

func TestDataSectionAlignment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.osiris")
	require.NoError(t, Save(path, buildModel(t)))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	for _, meta := range r.Header().Tensors {
		assert.Zero(t, meta.Offset%4, "offsets keep float32 alignment")
	}
}

func TestCorruptedPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.osiris")
	require.NoError(t, Save(path, buildModel(t)))

	// Flip a byte near the end of the file, inside the data section.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	assert.ErrorIs(t, r.Verify(), ErrChecksumMismatch)
}

func TestInvalidMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.osiris")
	require.NoError(t, os.WriteFile(path, []byte("NOPEnope"), 0o644))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.osiris")
	require.NoError(t, Save(path, buildModel(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[4] = 99 // little-endian version field follows the magic
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = Open(path)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestLoadShapeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.osiris")
	require.NoError(t, Save(path, buildModel(t)))

	backend := cpu.New()
	other := nn.NewSequential[*cpu.Backend](nn.NewLinear(7, 7, backend))
	assert.Error(t, Load(path, other))
}

func TestWriterClosed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.osiris")
	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	err = w.WriteStateDict(map[string]*tensor.RawTensor{
		"w": tensor.MustRaw(tensor.Shape{1}),
	})
	assert.ErrorIs(t, err, ErrWriterClosed)
}

func TestSaveLoadRecurrentAndBuffers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rnn.osiris")
	backend := cpu.New()

	build := func() *nn.Sequential[*cpu.Backend] {
		return nn.NewSequential[*cpu.Backend](
			nn.NewScanRNN[*cpu.Backend](nn.NewGRUCell(3, 5, backend), false, true),
			nn.NewBatchNorm[*cpu.Backend](6, backend),
		)
	}

	src := build()
	x, err := tensor.FromSlice(make([]float32, 2*6*3), tensor.Shape{2, 6, 3}, backend)
	require.NoError(t, err)
	src.Forward(x)

	require.NoError(t, Save(path, src))

	r, err := Open(path)
	require.NoError(t, err)
	var names []string
	for _, entry := range r.Header().Tensors {
		names = append(names, entry.Name)
	}
	require.NoError(t, r.Close())
	assert.Contains(t, names, "model.Layers[0].RNNCell.WeightInput")
	assert.Contains(t, names, "model.Layers[0].RNNCell.WeightState")
	assert.Contains(t, names, "model.Layers[1].RunningMean")
	assert.Contains(t, names, "model.Layers[1].RunningVar")

	dst := build()
	require.NoError(t, Load(path, dst))
	want := tree.StateDict[*cpu.Backend](src)
	got := tree.StateDict[*cpu.Backend](dst)
	require.Len(t, got, len(want))
	for name, raw := range want {
		assert.Equal(t, raw.Data(), got[name].Data(), name)
	}
}
