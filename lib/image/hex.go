// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package image

import (
	"github.com/marcinbor85/gohex"
	"github.com/pkg/errors"
)

const hexLineLength = 16

func checkHexRange(base, size uint64) error {
	if base+size > 1<<32 || size > 1<<32 {
		return errors.Errorf("%d bytes at 0x%X don't fit in a 32-bit address space", size, base)
	}
	return nil
}

// newHexFile prepares an Intel HEX rendition of image, placed at base, with
// entry as the start address record. Nothing is visible at path until the
// returned file is committed.
func newHexFile(path string, base, entry uint64, image []byte) (*pendingFile, error) {
	if err := checkHexRange(base, uint64(len(image))); err != nil {
		return nil, err
	}

	mem := gohex.NewMemory()
	if err := mem.AddBinary(uint32(base), image); err != nil {
		return nil, errors.Wrap(err, "Building hex image")
	}
	if entry < 1<<32 {
		mem.SetStartAddress(uint32(entry))
	}

	out, err := newPendingFile(path)
	if err != nil {
		return nil, err
	}

	if err := mem.DumpIntelHex(out, hexLineLength); err != nil {
		out.abort()
		return nil, &IoError{Op: "write", Path: path, Err: err}
	}

	return out, nil
}
