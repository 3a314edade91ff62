// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package header

import (
	"fmt"
	"strings"
)

func hexByteString(a []byte) string {
	var chars []string
	for _, v := range a {
		chars = append(chars, fmt.Sprintf("%02x", v))
	}
	return strings.Join(chars, " ")
}

// String renders every field on its own line: addresses, type and
// checksums in hex, sizes and versions in decimal.
func (h Header) String() string {
	str := ""
	str += fmt.Sprintf("Magic:            %s (%q)\n", hexByteString(Magic[:]), string(Magic[:]))
	str += fmt.Sprintf("Header version:   %s\n", h.Version)
	str += fmt.Sprintf("Binary type:      0x%X\n", h.BinaryType)
	str += fmt.Sprintf("Image length:     %d bytes\n", h.ImageLength)
	str += fmt.Sprintf("Entry point:      0x%08X\n", h.EntryPoint)
	str += fmt.Sprintf("Load address:     0x%08X\n", h.LoadAddress)
	str += fmt.Sprintf("Payload checksum: 0x%08X\n", h.PayloadChecksum)
	str += fmt.Sprintf("Header checksum:  0x%08X", h.HeaderChecksum)
	return str
}
