// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>

// Package elfinfo extracts the boot metadata of an ELF executable: the base
// address of its executable section and its entry point.
package elfinfo

import (
	"debug/elf"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/usedbytes/log"
)

const DefaultSection = ".text"

type Info struct {
	Path        string
	Section     string
	LoadAddress uint64
	EntryPoint  uint64
	Class       elf.Class
	Machine     elf.Machine
}

func (i *Info) String() string {
	str := ""
	str += fmt.Sprintf("ELF:          %s (%s, %s)\n", i.Path, i.Class, i.Machine)
	str += fmt.Sprintf("Section:      %s\n", i.Section)
	str += fmt.Sprintf("Load address: 0x%X\n", i.LoadAddress)
	str += fmt.Sprintf("Entry point:  0x%X", i.EntryPoint)
	return str
}

// MissingSectionError means the ELF file has no usable executable section
// to take the load address from.
type MissingSectionError struct {
	Path    string
	Section string
	Reason  string
}

func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("%s: section %s %s", e.Path, e.Section, e.Reason)
}

// MalformedInputError means the file could not be parsed as ELF.
type MalformedInputError struct {
	Path string
	Err  error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("%s: not a valid ELF file: %v", e.Path, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Extract reads the load address and entry point from the ELF file at path.
// The load address is the base address of the named section, which must be
// allocated and executable. An empty section name means DefaultSection.
func Extract(path, section string) (*Info, error) {
	if len(section) == 0 {
		section = DefaultSection
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "Opening ELF file")
	}
	defer f.Close()

	ef, err := elf.NewFile(f)
	if err != nil {
		return nil, &MalformedInputError{Path: path, Err: err}
	}
	defer ef.Close()

	sec := ef.Section(section)
	if sec == nil {
		return nil, &MissingSectionError{Path: path, Section: section, Reason: "not found"}
	}

	const want = elf.SHF_ALLOC | elf.SHF_EXECINSTR
	if sec.Flags&want != want {
		return nil, &MissingSectionError{
			Path:    path,
			Section: section,
			Reason:  fmt.Sprintf("is not executable (flags %s)", sec.Flags),
		}
	}

	info := &Info{
		Path:        path,
		Section:     section,
		LoadAddress: sec.Addr,
		EntryPoint:  ef.Entry,
		Class:       ef.Class,
		Machine:     ef.Machine,
	}

	log.Verbosef("%s\n", info)

	return info, nil
}
