// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package image

import (
	"io/ioutil"
	"os"
	"path/filepath"
)

// pendingFile is written under a temporary name next to its destination,
// and only renamed into place by commit. abort is safe to call at any time,
// and does nothing after a successful commit.
type pendingFile struct {
	*os.File
	dest   string
	closed bool
	done   bool
}

func newPendingFile(dest string) (*pendingFile, error) {
	dir, base := filepath.Split(dest)
	if len(dir) == 0 {
		dir = "."
	}

	f, err := ioutil.TempFile(dir, "."+base+".tmp*")
	if err != nil {
		return nil, &IoError{Op: "create", Path: dest, Err: err}
	}

	return &pendingFile{File: f, dest: dest}, nil
}

func (p *pendingFile) write(data []byte) error {
	n, err := p.Write(data)
	if err != nil {
		return &IoError{Op: "write", Path: p.dest, Err: err}
	}
	if n != len(data) {
		return &IoError{Op: "write", Path: p.dest, Err: errShortWrite}
	}
	return nil
}

// close flushes the file to disk. The temporary file stays in place.
func (p *pendingFile) close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	err := p.Sync()
	if cerr := p.File.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return &IoError{Op: "close", Path: p.dest, Err: err}
	}
	return nil
}

func (p *pendingFile) commit() error {
	if err := p.close(); err != nil {
		return err
	}

	// Temp files are created 0600
	if err := os.Chmod(p.Name(), 0644); err != nil {
		return &IoError{Op: "chmod", Path: p.dest, Err: err}
	}

	if err := os.Rename(p.Name(), p.dest); err != nil {
		return &IoError{Op: "rename", Path: p.dest, Err: err}
	}
	p.done = true

	return nil
}

func (p *pendingFile) abort() {
	if p.done {
		return
	}
	p.close()
	os.Remove(p.Name())
	p.done = true
}
