// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package checksum

import (
	"fmt"
	"hash/crc32"

	"github.com/sigurn/crc16"
)

// Algorithm selects how header and payload checksums are computed. The
// choice is part of the image format: both ends must agree on it.
type Algorithm string

const (
	// Sum32 is the 32-bit sum of all bytes, as used by the STM32 boot ROM
	Sum32       Algorithm = "sum32"
	CRC32       Algorithm = "crc32"
	CRC16XMODEM Algorithm = "crc16-xmodem"
)

var crc16Table = crc16.MakeTable(crc16.CRC16_XMODEM)

// Sum returns the checksum of data. The result only depends on the byte
// sequence, never on host byte order.
func (a Algorithm) Sum(data []byte) uint32 {
	switch a {
	case CRC32:
		return crc32.ChecksumIEEE(data)
	case CRC16XMODEM:
		return uint32(crc16.Checksum(data, crc16Table))
	default:
		return sum32(data)
	}
}

func sum32(data []byte) uint32 {
	var sum uint32
	for _, b := range data {
		sum += uint32(b)
	}
	return sum
}

func (a Algorithm) String() string {
	return string(a)
}

func ParseAlgorithm(str string) (Algorithm, error) {
	switch Algorithm(str) {
	case Sum32:
		return Sum32, nil
	case CRC32:
		return CRC32, nil
	case CRC16XMODEM:
		return CRC16XMODEM, nil
	}

	return "", fmt.Errorf("unrecognised checksum algorithm: %s", str)
}

func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Algorithm) MarshalText() ([]byte, error) {
	return []byte(string(a)), nil
}
