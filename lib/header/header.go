// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>

// Package header encodes and decodes the fixed-size image header which
// precedes a raw firmware payload.
//
// Layout, all multi-byte fields in the format's byte order:
//
//	0x00  magic "STM2"
//	0x04  version major (u8)
//	0x05  version minor (u8)
//	0x06  reserved (u16)
//	0x08  binary type
//	0x0c  image length
//	0x10  entry point
//	0x14  load address
//	0x18  payload checksum
//	0x1c  header checksum
//	0x20  reserved, zero up to HeaderSize
package header

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/usedbytes/stm32-imgtool/lib/checksum"
)

const HeaderSize = 0x100

var Magic = [4]byte{'S', 'T', 'M', '2'}

const (
	offMagic           = 0x00
	offVersionMajor    = 0x04
	offVersionMinor    = 0x05
	offBinaryType      = 0x08
	offImageLength     = 0x0c
	offEntryPoint      = 0x10
	offLoadAddress     = 0x14
	offPayloadChecksum = 0x18
	offHeaderChecksum  = 0x1c
)

// Format pins the byte order and checksum algorithm of a target boot ROM.
type Format struct {
	ByteOrder binary.ByteOrder
	Checksum  checksum.Algorithm
}

// DefaultFormat is the STM32MP2 boot ROM format.
var DefaultFormat = Format{
	ByteOrder: binary.LittleEndian,
	Checksum:  checksum.Sum32,
}

func (f Format) byteOrder() binary.ByteOrder {
	if f.ByteOrder == nil {
		return binary.LittleEndian
	}
	return f.ByteOrder
}

// Header holds the decoded header fields. Numeric fields are wider than
// their on-disk representation so that Encode can reject out-of-range
// values instead of truncating them.
type Header struct {
	Version         Version
	BinaryType      uint64
	ImageLength     uint64
	EntryPoint      uint64
	LoadAddress     uint64
	PayloadChecksum uint32
	HeaderChecksum  uint32
}

// FieldRangeError means a field value doesn't fit in its on-disk width.
type FieldRangeError struct {
	Field string
	Value uint64
	Bits  int
}

func (e *FieldRangeError) Error() string {
	return fmt.Sprintf("%s: value 0x%X doesn't fit in %d bits", e.Field, e.Value, e.Bits)
}

type DecodeErrorKind int

const (
	ShortHeader DecodeErrorKind = iota
	InvalidMagic
	HeaderChecksumMismatch
)

func (k DecodeErrorKind) String() string {
	switch k {
	case ShortHeader:
		return "ShortHeader"
	case InvalidMagic:
		return "InvalidMagic"
	case HeaderChecksumMismatch:
		return "HeaderChecksumMismatch"
	}

	return "???"
}

type DecodeError struct {
	Kind   DecodeErrorKind
	Detail string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func checkRange(field string, v uint64, bits int) error {
	if v>>uint(bits) != 0 {
		return &FieldRangeError{Field: field, Value: v, Bits: bits}
	}
	return nil
}

func (h *Header) validate() error {
	checks := []struct {
		field string
		value uint64
		bits  int
	}{
		{"major_version", uint64(h.Version.Major), 8},
		{"minor_version", uint64(h.Version.Minor), 8},
		{"binary_type", h.BinaryType, 32},
		{"image_length", h.ImageLength, 32},
		{"entry_point", h.EntryPoint, 32},
		{"load_address", h.LoadAddress, 32},
	}

	for _, c := range checks {
		if err := checkRange(c.field, c.value, c.bits); err != nil {
			return err
		}
	}

	return nil
}

// Encode returns the HeaderSize bytes representing h. The header checksum
// is computed over the encoded bytes with its own field zeroed, and stored
// back into h.HeaderChecksum. The payload checksum must already be set.
func (f Format) Encode(h *Header) ([]byte, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}

	bo := f.byteOrder()
	raw := make([]byte, HeaderSize)

	copy(raw[offMagic:], Magic[:])
	raw[offVersionMajor] = byte(h.Version.Major)
	raw[offVersionMinor] = byte(h.Version.Minor)
	bo.PutUint32(raw[offBinaryType:], uint32(h.BinaryType))
	bo.PutUint32(raw[offImageLength:], uint32(h.ImageLength))
	bo.PutUint32(raw[offEntryPoint:], uint32(h.EntryPoint))
	bo.PutUint32(raw[offLoadAddress:], uint32(h.LoadAddress))
	bo.PutUint32(raw[offPayloadChecksum:], h.PayloadChecksum)

	h.HeaderChecksum = f.Checksum.Sum(raw)
	bo.PutUint32(raw[offHeaderChecksum:], h.HeaderChecksum)

	return raw, nil
}

// Decode parses and validates the header at the start of raw. Only the
// magic and the header checksum are checked; the payload is not available
// here, so its checksum can't be.
func (f Format) Decode(raw []byte) (*Header, error) {
	if len(raw) < HeaderSize {
		return nil, &DecodeError{
			Kind:   ShortHeader,
			Detail: fmt.Sprintf("have %d bytes, need %d", len(raw), HeaderSize),
		}
	}
	raw = raw[:HeaderSize]

	if !bytes.Equal(raw[offMagic:offMagic+len(Magic)], Magic[:]) {
		return nil, &DecodeError{
			Kind:   InvalidMagic,
			Detail: fmt.Sprintf("got %s, expected %s", hexByteString(raw[:len(Magic)]), hexByteString(Magic[:])),
		}
	}

	bo := f.byteOrder()
	stored := bo.Uint32(raw[offHeaderChecksum:])

	zeroed := append([]byte(nil), raw...)
	bo.PutUint32(zeroed[offHeaderChecksum:], 0)
	calc := f.Checksum.Sum(zeroed)
	if calc != stored {
		return nil, &DecodeError{
			Kind:   HeaderChecksumMismatch,
			Detail: fmt.Sprintf("stored 0x%08X, calculated 0x%08X", stored, calc),
		}
	}

	return &Header{
		Version: Version{
			Major: uint(raw[offVersionMajor]),
			Minor: uint(raw[offVersionMinor]),
		},
		BinaryType:      uint64(bo.Uint32(raw[offBinaryType:])),
		ImageLength:     uint64(bo.Uint32(raw[offImageLength:])),
		EntryPoint:      uint64(bo.Uint32(raw[offEntryPoint:])),
		LoadAddress:     uint64(bo.Uint32(raw[offLoadAddress:])),
		PayloadChecksum: bo.Uint32(raw[offPayloadChecksum:]),
		HeaderChecksum:  stored,
	}, nil
}

// Equal compares the supplied fields of two headers, ignoring the derived
// header checksum.
func (h *Header) Equal(other *Header) bool {
	return h.Version == other.Version &&
		h.BinaryType == other.BinaryType &&
		h.ImageLength == other.ImageLength &&
		h.EntryPoint == other.EntryPoint &&
		h.LoadAddress == other.LoadAddress &&
		h.PayloadChecksum == other.PayloadChecksum
}
