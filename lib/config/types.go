// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package config

import (
	"encoding/binary"
	"fmt"

	"github.com/usedbytes/stm32-imgtool/lib/checksum"
	"github.com/usedbytes/stm32-imgtool/lib/elfinfo"
	"github.com/usedbytes/stm32-imgtool/lib/header"
)

func stringIfNotEmpty(prefix, val string) string {
	if len(val) > 0 {
		return fmt.Sprintf("%s %s\n", prefix, val)
	}
	return ""
}

type ByteOrder string

const (
	LittleEndian ByteOrder = "little"
	BigEndian    ByteOrder = "big"
)

func (b ByteOrder) String() string {
	return string(b)
}

func (b *ByteOrder) UnmarshalText(text []byte) error {
	str := ByteOrder(text)
	switch str {
	case LittleEndian, BigEndian:
		*b = str
	default:
		return fmt.Errorf("unrecognised byte order: %s", str)
	}

	return nil
}

func (b ByteOrder) MarshalText() ([]byte, error) {
	return []byte(string(b)), nil
}

func (b ByteOrder) Order() binary.ByteOrder {
	if b == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Target describes the header format one boot ROM expects, plus defaults
// for the build options.
type Target struct {
	Name          string             `toml:"-"`
	Description   string             `toml:"description,omitempty"`
	ByteOrder     ByteOrder          `toml:"byte_order"`
	Checksum      checksum.Algorithm `toml:"checksum"`
	Section       string             `toml:"section,omitempty"`
	HeaderVersion *header.Version    `toml:"header_version,omitempty"`
	TruncateVal   uint64             `toml:"truncate_val,omitempty"`
}

func (t *Target) Format() header.Format {
	return header.Format{
		ByteOrder: t.ByteOrder.Order(),
		Checksum:  t.Checksum,
	}
}

// Version returns the header version to use when none was given on the
// command line.
func (t *Target) Version() header.Version {
	if t.HeaderVersion == nil {
		return header.DefaultVersion
	}
	return *t.HeaderVersion
}

func (t *Target) setDefaults() {
	if len(t.ByteOrder) == 0 {
		t.ByteOrder = LittleEndian
	}
	if len(t.Checksum) == 0 {
		t.Checksum = checksum.Sum32
	}
	if len(t.Section) == 0 {
		t.Section = elfinfo.DefaultSection
	}
}

func (t *Target) String() string {
	var s string
	s += fmt.Sprintf("Target %s:\n", t.Name)
	s += stringIfNotEmpty("   Description:", t.Description)
	s += fmt.Sprintf("   ByteOrder: %s\n", t.ByteOrder)
	s += fmt.Sprintf("   Checksum: %s\n", t.Checksum)
	s += fmt.Sprintf("   Section: %s\n", t.Section)
	s += fmt.Sprintf("   HeaderVersion: %s\n", t.Version())
	if t.TruncateVal != 0 {
		s += fmt.Sprintf("   TruncateVal: %d (0x%x) bytes\n", t.TruncateVal, t.TruncateVal)
	}
	return s
}

type Config struct {
	Targets map[string]*Target `toml:"target"`
}
