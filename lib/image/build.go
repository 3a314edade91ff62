// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>

// Package image builds boot images: an encoded header followed by the raw
// payload, optionally truncated or padded to a partition size.
package image

import (
	"encoding/hex"
	"io/ioutil"
	"math"
	"os"

	"github.com/pkg/errors"
	"github.com/usedbytes/log"
	"github.com/usedbytes/stm32-imgtool/lib/elfinfo"
	"github.com/usedbytes/stm32-imgtool/lib/header"
)

var errShortWrite = errors.New("short write")

type Options struct {
	ElfPath string
	BinPath string
	OutPath string

	BinaryType uint64
	Version    header.Version
	// TruncateLen resizes the output file to exactly this many bytes,
	// cutting or zero-filling. Zero leaves it as header + payload.
	TruncateLen uint64

	Format  header.Format
	Section string

	// HexPath, when set, also writes the final image as Intel HEX at HexBase
	HexPath string
	HexBase uint64

	Progress bool
}

type Result struct {
	Info *elfinfo.Info
	// Header is the header decoded back from the written image
	Header   *header.Header
	FileSize int64
}

func checkInput(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return &InputNotFoundError{Path: path, Err: err}
	}
	if fi.IsDir() {
		return &InputNotFoundError{Path: path, Err: errors.New("is a directory")}
	}

	f, err := os.Open(path)
	if err != nil {
		return &InputNotFoundError{Path: path, Err: err}
	}
	f.Close()

	return nil
}

// resize returns data cut or zero-extended to size bytes.
func resize(data []byte, size uint64) []byte {
	if size == 0 {
		return data
	}
	if uint64(len(data)) >= size {
		return data[:size]
	}
	return append(data, make([]byte, size-uint64(len(data)))...)
}

func writeImage(out *pendingFile, raw, payload []byte, opts *Options) error {
	err := out.write(raw)
	if err != nil {
		return err
	}

	w, bar := progressWriter(out, len(payload), opts.Progress)
	n, err := w.Write(payload)
	bar.Finish()
	if err != nil {
		return &IoError{Op: "write", Path: opts.OutPath, Err: err}
	} else if n != len(payload) {
		return &IoError{Op: "write", Path: opts.OutPath, Err: errShortWrite}
	}

	if opts.TruncateLen != 0 {
		log.Verbosef("Truncating to %d bytes\n", opts.TruncateLen)
		err = out.Truncate(int64(opts.TruncateLen))
		if err != nil {
			return &IoError{Op: "truncate", Path: opts.OutPath, Err: err}
		}
	}

	return out.close()
}

// verify reads back the written (not yet committed) image and checks it
// against the header which was encoded.
func verify(out *pendingFile, want *header.Header, opts *Options) (*Inspection, error) {
	insp, err := inspectFile(out.Name(), opts.OutPath, opts.Format)
	if err != nil {
		if _, ok := err.(*IoError); ok {
			return nil, err
		}
		return nil, &VerificationError{Path: opts.OutPath, Err: err}
	}

	if !insp.Header.Equal(want) || insp.Header.HeaderChecksum != want.HeaderChecksum {
		return nil, &VerificationError{
			Path: opts.OutPath,
			Err:  errors.Errorf("header read back doesn't match:\n%s", insp.Header),
		}
	}

	if insp.Status == PayloadMismatch {
		return nil, &VerificationError{
			Path: opts.OutPath,
			Err: errors.Errorf("payload checksum 0x%08X, expected 0x%08X",
				insp.Calculated, want.PayloadChecksum),
		}
	}

	expectSize := uint64(header.HeaderSize) + want.ImageLength
	if opts.TruncateLen != 0 {
		expectSize = opts.TruncateLen
	}
	if uint64(insp.FileSize) != expectSize {
		return nil, &VerificationError{
			Path: opts.OutPath,
			Err:  errors.Errorf("file is %d bytes, expected %d", insp.FileSize, expectSize),
		}
	}

	return insp, nil
}

// Build extracts the load address and entry point from the ELF file, and
// writes header||payload to the output path. The output only appears once
// it has been read back and verified.
func Build(opts *Options) (*Result, error) {
	if opts.TruncateLen > math.MaxInt64 {
		return nil, &header.FieldRangeError{Field: "truncate_val", Value: opts.TruncateLen, Bits: 63}
	}

	for _, path := range []string{opts.ElfPath, opts.BinPath} {
		if err := checkInput(path); err != nil {
			return nil, err
		}
	}

	info, err := elfinfo.Extract(opts.ElfPath, opts.Section)
	if err != nil {
		return nil, errors.Wrap(err, "Extracting ELF metadata")
	}

	payload, err := ioutil.ReadFile(opts.BinPath)
	if err != nil {
		return nil, &IoError{Op: "read", Path: opts.BinPath, Err: err}
	}

	// The payload checksum always covers the whole input, whatever
	// TruncateLen does to the file later.
	hdr := &header.Header{
		Version:         opts.Version,
		BinaryType:      opts.BinaryType,
		ImageLength:     uint64(len(payload)),
		EntryPoint:      info.EntryPoint,
		LoadAddress:     info.LoadAddress,
		PayloadChecksum: opts.Format.Checksum.Sum(payload),
	}

	raw, err := opts.Format.Encode(hdr)
	if err != nil {
		return nil, errors.Wrap(err, "Encoding header")
	}
	log.Verbosef("Header:\n%s\n", hex.Dump(raw))

	out, err := newPendingFile(opts.OutPath)
	if err != nil {
		return nil, err
	}
	defer out.abort()

	err = writeImage(out, raw, payload, opts)
	if err != nil {
		return nil, err
	}

	insp, err := verify(out, hdr, opts)
	if err != nil {
		return nil, err
	}

	var hexOut *pendingFile
	if len(opts.HexPath) != 0 {
		if err := checkHexRange(opts.HexBase, uint64(insp.FileSize)); err != nil {
			return nil, err
		}
		image := resize(append(raw, payload...), opts.TruncateLen)
		hexOut, err = newHexFile(opts.HexPath, opts.HexBase, info.EntryPoint, image)
		if err != nil {
			return nil, err
		}
		defer hexOut.abort()
	}

	err = out.commit()
	if err != nil {
		return nil, err
	}

	if hexOut != nil {
		err = hexOut.commit()
		if err != nil {
			return nil, err
		}
		log.Verbosef("Wrote %s\n", opts.HexPath)
	}

	return &Result{
		Info:     info,
		Header:   insp.Header,
		FileSize: insp.FileSize,
	}, nil
}
