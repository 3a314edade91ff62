// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package main

import (
	"encoding/binary"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
	"github.com/usedbytes/stm32-imgtool/lib/checksum"
	"github.com/usedbytes/stm32-imgtool/lib/header"
	"github.com/usedbytes/stm32-imgtool/lib/image"
)

var targetTOML = `
[target.mcu-be]
byte_order = "big"
checksum = "crc16-xmodem"
section = ".boot"
header_version = "V2.1"
truncate_val = 0x20000
`

// resolveOptions runs the build flag handling on args, without building.
func resolveOptions(t *testing.T, args ...string) (*image.Options, error) {
	t.Helper()

	var opts *image.Options
	app := &cli.App{
		Name:           "imgtool",
		Flags:          buildFlags(),
		ExitErrHandler: func(c *cli.Context, e error) {},
		Writer:         ioutil.Discard,
		ErrWriter:      ioutil.Discard,
		Action: func(ctx *cli.Context) error {
			tgt, err := loadTarget(ctx)
			if err != nil {
				return err
			}

			opts, err = buildOptions(ctx, tgt)
			return err
		},
	}

	err := app.Run(append([]string{"imgtool"}, args...))
	return opts, err
}

func TestBuildOptions(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "targets.toml")
	if err := ioutil.WriteFile(cfgPath, []byte(targetTOML), 0644); err != nil {
		t.Fatal(err)
	}

	files := []string{"-e", "fw.elf", "-b", "fw.bin", "-o", "fw.stm32"}
	beTarget := append([]string{"--config", cfgPath, "-t", "mcu-be", "-bt", "0x10"}, files...)

	tests := []struct {
		name string
		args []string

		version header.Version
		trunc   uint64
		order   binary.ByteOrder
		algo    checksum.Algorithm
		section string
		hexBase uint64
	}{
		{
			name:    "builtin",
			args:    append([]string{"-bt", "10"}, files...),
			version: header.NewVersion(1, 0),
			order:   binary.LittleEndian,
			algo:    checksum.Sum32,
			section: ".text",
		},
		{
			name:    "target defaults",
			args:    beTarget,
			version: header.NewVersion(2, 1),
			trunc:   0x20000,
			order:   binary.BigEndian,
			algo:    checksum.CRC16XMODEM,
			section: ".boot",
		},
		{
			name:    "flags override target",
			args:    append([]string{"-v_maj", "3", "-v_min", "4", "-tr", "1024", "--hex_file", "fw.hex", "--hex_addr", "0x7ff00"}, beTarget...),
			version: header.NewVersion(3, 4),
			trunc:   1024,
			order:   binary.BigEndian,
			algo:    checksum.CRC16XMODEM,
			section: ".boot",
			hexBase: 0x7ff00,
		},
		{
			name:    "major only",
			args:    append([]string{"--major_version", "5"}, beTarget...),
			version: header.NewVersion(5, 1),
			trunc:   0x20000,
			order:   binary.BigEndian,
			algo:    checksum.CRC16XMODEM,
			section: ".boot",
		},
		{
			name:    "truncate disabled",
			args:    append([]string{"--truncate_val", "0"}, beTarget...),
			version: header.NewVersion(2, 1),
			order:   binary.BigEndian,
			algo:    checksum.CRC16XMODEM,
			section: ".boot",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts, err := resolveOptions(t, tc.args...)
			if err != nil {
				t.Fatal(err)
			}

			if opts.ElfPath != "fw.elf" || opts.BinPath != "fw.bin" || opts.OutPath != "fw.stm32" {
				t.Errorf("paths: got %s %s %s", opts.ElfPath, opts.BinPath, opts.OutPath)
			}
			if opts.BinaryType != 0x10 {
				t.Errorf("BinaryType: got 0x%x", opts.BinaryType)
			}
			if opts.Version != tc.version {
				t.Errorf("Version: got %s, expected %s", opts.Version, tc.version)
			}
			if opts.TruncateLen != tc.trunc {
				t.Errorf("TruncateLen: got %d, expected %d", opts.TruncateLen, tc.trunc)
			}
			if opts.Format.ByteOrder != tc.order || opts.Format.Checksum != tc.algo {
				t.Errorf("Format: got %v %s", opts.Format.ByteOrder, opts.Format.Checksum)
			}
			if opts.Section != tc.section {
				t.Errorf("Section: got %s", opts.Section)
			}
			if opts.HexBase != tc.hexBase {
				t.Errorf("HexBase: got 0x%x, expected 0x%x", opts.HexBase, tc.hexBase)
			}
		})
	}
}

func TestBuildOptionsErrors(t *testing.T) {
	files := []string{"-e", "fw.elf", "-b", "fw.bin", "-o", "fw.stm32"}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no binary type", files, "--binary_type is required"},
		{"no elf", []string{"-bt", "1", "-b", "fw.bin", "-o", "fw.stm32"}, "--elf_file is required"},
		{"no bin", []string{"-bt", "1", "-e", "fw.elf", "-o", "fw.stm32"}, "--bin_file is required"},
		{"no out", []string{"-bt", "1", "-e", "fw.elf", "-b", "fw.bin"}, "--out_file is required"},
		{"bad binary type", append([]string{"-bt", "zz"}, files...), "--binary_type"},
		{"extra args", append(append([]string{"-bt", "1"}, files...), "stray"), "unexpected arguments"},
		{"bad hex addr", append([]string{"-bt", "1", "--hex_file", "fw.hex", "--hex_addr", "nope"}, files...), "--hex_addr"},
		{"unknown target", append([]string{"-bt", "1", "-t", "nope"}, files...), "unknown target"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := resolveOptions(t, tc.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q doesn't mention %q", err, tc.want)
			}
			if exitCode(err) != exitFailure {
				t.Errorf("exit code: got %d", exitCode(err))
			}
		})
	}
}

