// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>

// Package elftest writes minimal ELF files (header, sections, section name
// table, no program headers) for use as test fixtures.
package elftest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"io/ioutil"
)

type Section struct {
	Name  string
	Type  elf.SectionType
	Flags elf.SectionFlag
	Addr  uint64
	Data  []byte
}

type File struct {
	Class     elf.Class
	ByteOrder binary.ByteOrder
	Machine   elf.Machine
	Entry     uint64
	Sections  []Section
}

// Text is an allocated, executable PROGBITS section.
func Text(addr uint64, data []byte) Section {
	return Section{
		Name:  ".text",
		Type:  elf.SHT_PROGBITS,
		Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR,
		Addr:  addr,
		Data:  data,
	}
}

// Bytes lays out f as: ELF header, section data, .shstrtab, section header
// table. Section 0 is the null section and .shstrtab is always last.
func (f *File) Bytes() []byte {
	class := f.Class
	if class == elf.ELFCLASSNONE {
		class = elf.ELFCLASS32
	}
	bo := f.ByteOrder
	if bo == nil {
		bo = binary.LittleEndian
	}
	machine := f.Machine
	if machine == elf.EM_NONE {
		machine = elf.EM_ARM
	}

	ehsize, shentsize := 52, 40
	if class == elf.ELFCLASS64 {
		ehsize, shentsize = 64, 64
	}

	shstrtab := []byte{0}
	nameIdx := make([]uint32, len(f.Sections)+1)
	for i, s := range f.Sections {
		nameIdx[i] = uint32(len(shstrtab))
		shstrtab = append(append(shstrtab, s.Name...), 0)
	}
	nameIdx[len(f.Sections)] = uint32(len(shstrtab))
	shstrtab = append(append(shstrtab, ".shstrtab"...), 0)

	var data bytes.Buffer
	offsets := make([]uint64, len(f.Sections)+1)
	for i, s := range f.Sections {
		offsets[i] = uint64(ehsize + data.Len())
		if s.Type != elf.SHT_NOBITS {
			data.Write(s.Data)
		}
	}
	offsets[len(f.Sections)] = uint64(ehsize + data.Len())
	data.Write(shstrtab)
	for data.Len()%8 != 0 {
		data.WriteByte(0)
	}

	shoff := uint64(ehsize + data.Len())
	shnum := uint16(len(f.Sections) + 2)
	shstrndx := shnum - 1

	var ident [elf.EI_NIDENT]byte
	copy(ident[:], elf.ELFMAG)
	ident[elf.EI_CLASS] = byte(class)
	ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	if bo == binary.BigEndian {
		ident[elf.EI_DATA] = byte(elf.ELFDATA2MSB)
	}
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	var out bytes.Buffer
	if class == elf.ELFCLASS64 {
		binary.Write(&out, bo, &elf.Header64{
			Ident:     ident,
			Type:      uint16(elf.ET_EXEC),
			Machine:   uint16(machine),
			Version:   uint32(elf.EV_CURRENT),
			Entry:     f.Entry,
			Shoff:     shoff,
			Ehsize:    uint16(ehsize),
			Shentsize: uint16(shentsize),
			Shnum:     shnum,
			Shstrndx:  shstrndx,
		})
	} else {
		binary.Write(&out, bo, &elf.Header32{
			Ident:     ident,
			Type:      uint16(elf.ET_EXEC),
			Machine:   uint16(machine),
			Version:   uint32(elf.EV_CURRENT),
			Entry:     uint32(f.Entry),
			Shoff:     uint32(shoff),
			Ehsize:    uint16(ehsize),
			Shentsize: uint16(shentsize),
			Shnum:     shnum,
			Shstrndx:  shstrndx,
		})
	}
	out.Write(data.Bytes())

	type shdr struct {
		name      uint32
		typ       elf.SectionType
		flags     elf.SectionFlag
		addr, off uint64
		size      uint64
	}
	hdrs := []shdr{{}}
	for i, s := range f.Sections {
		hdrs = append(hdrs, shdr{nameIdx[i], s.Type, s.Flags, s.Addr, offsets[i], uint64(len(s.Data))})
	}
	hdrs = append(hdrs, shdr{
		name: nameIdx[len(f.Sections)],
		typ:  elf.SHT_STRTAB,
		off:  offsets[len(f.Sections)],
		size: uint64(len(shstrtab)),
	})

	for _, h := range hdrs {
		if class == elf.ELFCLASS64 {
			binary.Write(&out, bo, &elf.Section64{
				Name:      h.name,
				Type:      uint32(h.typ),
				Flags:     uint64(h.flags),
				Addr:      h.addr,
				Off:       h.off,
				Size:      h.size,
				Addralign: 1,
			})
		} else {
			binary.Write(&out, bo, &elf.Section32{
				Name:      h.name,
				Type:      uint32(h.typ),
				Flags:     uint32(h.flags),
				Addr:      uint32(h.addr),
				Off:       uint32(h.off),
				Size:      uint32(h.size),
				Addralign: 1,
			})
		}
	}

	return out.Bytes()
}

func (f *File) Write(path string) error {
	return ioutil.WriteFile(path, f.Bytes(), 0644)
}
