// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/usedbytes/log"
	"github.com/usedbytes/stm32-imgtool/lib/config"
	"github.com/usedbytes/stm32-imgtool/lib/image"
	"github.com/usedbytes/stm32-imgtool/lib/report"
)

// parseHex accepts the binary type the way the boot ROM documentation
// writes it, with or without a 0x prefix.
func parseHex(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) == 0 {
		return 0, errors.New("empty value")
	}

	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "'%s' is not a hex number", s)
	}

	return v, nil
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	if !ctx.IsSet("config") {
		return config.NewConfig(), nil
	}

	return config.LoadConfig(ctx.String("config"))
}

func loadTarget(ctx *cli.Context) (*config.Target, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	tgt, err := cfg.Target(ctx.String("target"))
	if err != nil {
		return nil, err
	}
	log.Verboseln(tgt)

	return tgt, nil
}

func buildOptions(ctx *cli.Context, tgt *config.Target) (*image.Options, error) {
	for _, name := range []string{"elf_file", "bin_file", "out_file", "binary_type"} {
		if !ctx.IsSet(name) {
			return nil, errors.Errorf("--%s is required", name)
		}
	}

	if ctx.Args().Len() != 0 {
		return nil, errors.Errorf("unexpected arguments: %v", ctx.Args().Slice())
	}

	bt, err := parseHex(ctx.String("binary_type"))
	if err != nil {
		return nil, errors.Wrap(err, "--binary_type")
	}

	ver := tgt.Version()
	if ctx.IsSet("major_version") {
		ver.Major = ctx.Uint("major_version")
	}
	if ctx.IsSet("minor_version") {
		ver.Minor = ctx.Uint("minor_version")
	}

	trunc := tgt.TruncateVal
	if ctx.IsSet("truncate_val") {
		trunc = ctx.Uint64("truncate_val")
	}

	opts := &image.Options{
		ElfPath:     ctx.String("elf_file"),
		BinPath:     ctx.String("bin_file"),
		OutPath:     ctx.String("out_file"),
		BinaryType:  bt,
		Version:     ver,
		TruncateLen: trunc,
		Format:      tgt.Format(),
		Section:     tgt.Section,
		HexPath:     ctx.String("hex_file"),
		Progress:    ctx.Bool("progress"),
	}

	if len(opts.HexPath) > 0 {
		opts.HexBase, err = strconv.ParseUint(ctx.String("hex_addr"), 0, 64)
		if err != nil {
			return nil, errors.Wrap(err, "--hex_addr")
		}
	}

	return opts, nil
}

func buildAction(ctx *cli.Context) error {
	tgt, err := loadTarget(ctx)
	if err != nil {
		return err
	}

	opts, err := buildOptions(ctx, tgt)
	if err != nil {
		return err
	}

	res, err := image.Build(opts)
	if err != nil {
		return err
	}

	err = report.Report(os.Stdout, &report.Summary{
		ElfPath:     opts.ElfPath,
		BinPath:     opts.BinPath,
		OutPath:     opts.OutPath,
		Target:      tgt.Name,
		LoadAddress: res.Info.LoadAddress,
		EntryPoint:  res.Info.EntryPoint,
		BinaryType:  opts.BinaryType,
		Version:     opts.Version,
		FileSize:    res.FileSize,
		Header:      res.Header,
	})
	if err != nil {
		return errors.Wrap(err, "Writing report")
	}

	if len(opts.HexPath) > 0 {
		log.Printf("%s generated\n", opts.HexPath)
	}

	return nil
}
