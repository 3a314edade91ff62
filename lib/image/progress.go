// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package image

import (
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
)

type nopFinisher struct{}

func (nopFinisher) Finish() {}

type barFinisher struct {
	bar *pb.ProgressBar
}

func (b barFinisher) Finish() {
	b.bar.Finish()
}

// progressWriter wraps w with a progress bar on stderr, if enabled.
func progressWriter(w io.Writer, total int, enabled bool) (io.Writer, interface{ Finish() }) {
	if !enabled {
		return w, nopFinisher{}
	}

	bar := pb.Full.New(total)
	bar.Set(pb.Bytes, true)
	bar.SetWriter(os.Stderr)
	bar.Start()

	return bar.NewProxyWriter(w), barFinisher{bar}
}
