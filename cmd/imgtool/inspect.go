// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/usedbytes/stm32-imgtool/lib/image"
)

func inspectAction(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return errors.New("exactly one IMAGE_FILE is required")
	}

	tgt, err := loadTarget(ctx)
	if err != nil {
		return err
	}

	insp, err := image.Inspect(ctx.Args().First(), tgt.Format())
	if err != nil {
		return err
	}

	fmt.Println(insp)

	if insp.Status == image.PayloadMismatch {
		return cli.Exit(fmt.Sprintf("%s: payload checksum mismatch", insp.Path), exitVerification)
	}

	return nil
}

func targetsAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	if ctx.Bool("toml") {
		return cfg.Encode(os.Stdout)
	}

	for _, name := range cfg.TargetNames() {
		t, _ := cfg.Target(name)
		fmt.Println(t)
	}

	return nil
}
