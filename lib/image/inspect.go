// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package image

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/usedbytes/stm32-imgtool/lib/header"
)

type PayloadStatus int

const (
	PayloadOK PayloadStatus = iota
	// PayloadTruncated means the file ends before image_length payload bytes,
	// so the payload checksum can't be checked.
	PayloadTruncated
	PayloadMismatch
)

func (s PayloadStatus) String() string {
	switch s {
	case PayloadOK:
		return "OK"
	case PayloadTruncated:
		return "truncated, not checked"
	case PayloadMismatch:
		return "MISMATCH"
	}

	return "???"
}

type Inspection struct {
	Path     string
	FileSize int64
	Header   *header.Header
	Status   PayloadStatus
	// Calculated is the payload checksum computed from the file, when the
	// whole payload is present.
	Calculated uint32
	// Trailing is the number of bytes after the payload, e.g. partition
	// padding.
	Trailing int64
}

func (i *Inspection) String() string {
	str := ""
	str += fmt.Sprintf("File:             %s (%d bytes)\n", i.Path, i.FileSize)
	str += i.Header.String() + "\n"
	if i.Status != PayloadTruncated {
		str += fmt.Sprintf("Calculated:       0x%08X\n", i.Calculated)
		str += fmt.Sprintf("Trailing bytes:   %d\n", i.Trailing)
	}
	str += fmt.Sprintf("Payload:          %s", i.Status)
	return str
}

// inspectFile reads the header of the image at path and the payload it
// describes, but nothing past that. name is the path to report.
func inspectFile(path, name string, format header.Format) (*Inspection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IoError{Op: "open", Path: name, Err: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, &IoError{Op: "stat", Path: name, Err: err}
	}

	raw := make([]byte, header.HeaderSize)
	n, err := io.ReadFull(f, raw)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, &IoError{Op: "read", Path: name, Err: err}
	}

	hdr, err := format.Decode(raw[:n])
	if err != nil {
		return nil, errors.Wrap(err, "Decoding header")
	}

	insp := &Inspection{
		Path:     name,
		FileSize: fi.Size(),
		Header:   hdr,
		Status:   PayloadTruncated,
	}

	end := uint64(header.HeaderSize) + hdr.ImageLength
	if uint64(fi.Size()) < end {
		return insp, nil
	}

	payload := make([]byte, hdr.ImageLength)
	if _, err := io.ReadFull(f, payload); err != nil {
		return nil, &IoError{Op: "read", Path: name, Err: err}
	}

	insp.Calculated = format.Checksum.Sum(payload)
	insp.Trailing = fi.Size() - int64(end)
	if insp.Calculated == hdr.PayloadChecksum {
		insp.Status = PayloadOK
	} else {
		insp.Status = PayloadMismatch
	}

	return insp, nil
}

// Inspect decodes the header of an existing image and checks the payload
// which follows it against the header's length and checksum.
func Inspect(path string, format header.Format) (*Inspection, error) {
	if err := checkInput(path); err != nil {
		return nil, err
	}

	return inspectFile(path, path, format)
}
