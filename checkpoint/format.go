// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package checkpoint

import (
	"errors"
	"time"
)

// File layout: magic, little-endian uint32 version, uint64 header size,
// the JSON header, zero padding up to DataAlignment, then the raw float32
// tensor payload at the offsets recorded in the header.
const (
	MagicBytes    = "OSRS"
	FormatVersion = 1
	DataAlignment = 64

	// MaxHeaderSize bounds the JSON header a reader will accept.
	MaxHeaderSize = 100 << 20
)

// Common errors.
var (
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrHeaderTooLarge     = errors.New("header exceeds maximum size")
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrOutOfBounds        = errors.New("tensor extends beyond data section")
	ErrWriterClosed       = errors.New("writer is closed")
)

// Header is the JSON header of a checkpoint file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	ModelType     string            `json:"model_type"`
	CreatedAt     time.Time         `json:"created_at"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	// Checksum is the hex SHA-256 of the data section.
	Checksum string `json:"checksum"`
	// Train holds optional training state for checkpoint resumption.
	Train *TrainMeta `json:"train,omitempty"`
}

// TrainMeta records where training stood when the checkpoint was taken.
type TrainMeta struct {
	Epoch int     `json:"epoch"`
	Step  int64   `json:"step"`
	Loss  float64 `json:"loss"`
}

// TensorMeta describes one tensor in the data section. All tensors are
// float32, offsets and sizes are in bytes from the start of the section.
type TensorMeta struct {
	Name   string `json:"name"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"`
	Size   int64  `json:"size"`
}
