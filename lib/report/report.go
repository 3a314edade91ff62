// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package report

import (
	"fmt"
	"io"

	"github.com/usedbytes/stm32-imgtool/lib/header"
)

// Summary is what the operator checks after a build: the inputs, what was
// taken from them, and the header as read back from the output.
type Summary struct {
	ElfPath     string
	BinPath     string
	OutPath     string
	Target      string
	LoadAddress uint64
	EntryPoint  uint64
	BinaryType  uint64
	Version     header.Version
	FileSize    int64

	Header *header.Header
}

func (s *Summary) String() string {
	str := ""
	str += fmt.Sprintf("elf file     :%s\n", s.ElfPath)
	str += fmt.Sprintf("bin file     :%s\n", s.BinPath)
	str += fmt.Sprintf("load address :0x%X\n", s.LoadAddress)
	str += fmt.Sprintf("entry point  :0x%X\n", s.EntryPoint)
	str += fmt.Sprintf("binary type  :0x%X\n", s.BinaryType)
	str += fmt.Sprintf("header ver   :%s\n", s.Version)
	if len(s.Target) > 0 {
		str += fmt.Sprintf("target       :%s\n", s.Target)
	}
	str += "\n"
	str += s.Header.String() + "\n"
	str += "\n"
	str += fmt.Sprintf("%s generated (%d bytes)", s.OutPath, s.FileSize)
	return str
}

func Report(w io.Writer, s *Summary) error {
	_, err := fmt.Fprintln(w, s)
	return err
}
