// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package checkpoint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ASEM000/Osiris/tensor"
)

// Reader reads checkpoint files.
type Reader struct {
	file   *os.File
	header Header
	// dataStart is the file offset of the tensor data section.
	dataStart int64
	dataSize  int64
}

// Open opens a checkpoint file and parses its header.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	r := &Reader{file: file}
	if err := r.readHeader(); err != nil {
		file.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) readHeader() error {
	magic := make([]byte, len(MagicBytes))
	if _, err := io.ReadFull(r.file, magic); err != nil {
		return fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return fmt.Errorf("%w: got %q", ErrInvalidMagic, magic)
	}

	var version uint32
	if err := binary.Read(r.file, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("failed to read version: %w", err)
	}
	if version != FormatVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	var headerSize uint64
	if err := binary.Read(r.file, binary.LittleEndian, &headerSize); err != nil {
		return fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r.file, headerJSON); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(headerJSON, &r.header); err != nil {
		return fmt.Errorf("failed to parse header: %w", err)
	}

	pos := int64(len(MagicBytes)+4+8) + int64(headerSize)
	r.dataStart = pos + (DataAlignment-pos%DataAlignment)%DataAlignment

	for _, meta := range r.header.Tensors {
		if meta.Offset < 0 || meta.Size < 0 {
			return fmt.Errorf("%w: tensor %q", ErrOutOfBounds, meta.Name)
		}
		if end := meta.Offset + meta.Size; end > r.dataSize {
			r.dataSize = end
		}
	}
	return nil
}

// Header returns the parsed file header.
func (r *Reader) Header() Header { return r.header }

// Verify recomputes the data section checksum and compares it with the
// header.
func (r *Reader) Verify() error {
	if _, err := r.file.Seek(r.dataStart, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to data: %w", err)
	}
	h := sha256.New()
	if _, err := io.CopyN(h, r.file, r.dataSize); err != nil {
		return fmt.Errorf("failed to hash data: %w", err)
	}
	if hex.EncodeToString(h.Sum(nil)) != r.header.Checksum {
		return ErrChecksumMismatch
	}
	return nil
}

// ReadStateDict reads every tensor in the file into a state dictionary.
func (r *Reader) ReadStateDict() (map[string]*tensor.RawTensor, error) {
	dict := make(map[string]*tensor.RawTensor, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		raw, err := r.readTensor(meta)
		if err != nil {
			return nil, err
		}
		dict[meta.Name] = raw
	}
	return dict, nil
}

func (r *Reader) readTensor(meta TensorMeta) (*tensor.RawTensor, error) {
	shape := tensor.Shape(meta.Shape)
	raw, err := tensor.NewRaw(shape)
	if err != nil {
		return nil, fmt.Errorf("tensor %q: %w", meta.Name, err)
	}
	if int64(raw.ByteSize()) != meta.Size {
		return nil, fmt.Errorf("tensor %q: shape %v does not match %d bytes", meta.Name, shape, meta.Size)
	}
	buf := make([]byte, meta.Size)
	if _, err := r.file.ReadAt(buf, r.dataStart+meta.Offset); err != nil {
		return nil, fmt.Errorf("tensor %q: %w", meta.Name, err)
	}
	data := raw.Data()
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return raw, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error { return r.file.Close() }
