// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/usedbytes/log"
	"github.com/usedbytes/stm32-imgtool/lib/config"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "TOML file with extra target definitions",
		Required: false,
	}
}

func targetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "target",
			Aliases:  []string{"t"},
			Usage:    "Boot ROM target whose header format to use",
			Required: false,
			Value:    config.DefaultTarget,
		},
		configFlag(),
	}
}

func buildFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "elf_file",
			Aliases: []string{"e"},
			Usage:   "ELF file to take the load address and entry point from",
		},
		&cli.StringFlag{
			Name:    "bin_file",
			Aliases: []string{"b"},
			Usage:   "Raw binary payload",
		},
		&cli.StringFlag{
			Name:    "out_file",
			Aliases: []string{"o"},
			Usage:   "Output image file",
		},
		&cli.StringFlag{
			Name:    "binary_type",
			Aliases: []string{"bt"},
			Usage:   "Binary type, in hex",
		},
		&cli.Uint64Flag{
			Name:    "truncate_val",
			Aliases: []string{"tr"},
			Usage:   "Truncate or pad the output file to this many bytes (0: don't)",
		},
		&cli.UintFlag{
			Name:    "major_version",
			Aliases: []string{"v_maj"},
			Usage:   "Header major version (default from target)",
		},
		&cli.UintFlag{
			Name:    "minor_version",
			Aliases: []string{"v_min"},
			Usage:   "Header minor version (default from target)",
		},
		&cli.StringFlag{
			Name:  "hex_file",
			Usage: "Also write the image as Intel HEX to this file",
		},
		&cli.StringFlag{
			Name:  "hex_addr",
			Usage: "Base address of the Intel HEX image",
			Value: "0",
		},
		&cli.BoolFlag{
			Name:  "progress",
			Usage: "Show a progress bar while writing the payload",
		},
	}

	return append(flags, targetFlags()...)
}

func main() {
	app := &cli.App{
		Name:      "imgtool",
		Usage:     "Prefix a firmware binary with a boot ROM image header",
		ArgsUsage: " ",
		// Just ignore errors - we'll handle them ourselves in main()
		ExitErrHandler: func(c *cli.Context, e error) {},
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:     "verbose",
				Aliases:  []string{"v"},
				Usage:    "Enable more output",
				Required: false,
				Value:    false,
			},
		}, buildFlags()...),
		Action: buildAction,
	}

	app.Commands = []*cli.Command{
		{
			Name:      "inspect",
			Usage:     "Decode and check the header of an existing image",
			ArgsUsage: "IMAGE_FILE",
			Action:    inspectAction,
			Flags:     targetFlags(),
		},
		{
			Name:   "targets",
			Usage:  "List the known targets",
			Action: targetsAction,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "toml",
					Usage: "Print the target definitions as TOML",
				},
				configFlag(),
			},
		},
	}

	app.Before = func(ctx *cli.Context) error {
		log.SetUseLog(false)

		log.SetVerbose(ctx.Bool("verbose"))
		log.Verboseln("Extra output enabled.")
		return nil
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s: %v\n", errorKind(err), err)
		os.Exit(exitCode(err))
	}
}
