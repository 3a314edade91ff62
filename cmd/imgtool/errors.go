// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package main

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/usedbytes/stm32-imgtool/lib/elfinfo"
	"github.com/usedbytes/stm32-imgtool/lib/header"
	"github.com/usedbytes/stm32-imgtool/lib/image"
)

const (
	exitFailure       = 1
	exitInputNotFound = 2
	exitELF           = 3
	exitFieldRange    = 4
	exitVerification  = 5
	exitIO            = 6
)

func errorKind(err error) string {
	switch e := errors.Cause(err).(type) {
	case *image.InputNotFoundError:
		return "InputNotFoundError"
	case *elfinfo.MissingSectionError:
		return "MissingSectionError"
	case *elfinfo.MalformedInputError:
		return "MalformedInputError"
	case *header.FieldRangeError:
		return "FieldRangeError"
	case *header.DecodeError:
		return "DecodeError{" + e.Kind.String() + "}"
	case *image.VerificationError:
		return "VerificationError"
	case *image.IoError:
		return "IoError"
	}

	return "Error"
}

func exitCode(err error) int {
	switch errors.Cause(err).(type) {
	case *image.InputNotFoundError:
		return exitInputNotFound
	case *elfinfo.MissingSectionError, *elfinfo.MalformedInputError:
		return exitELF
	case *header.FieldRangeError:
		return exitFieldRange
	case *header.DecodeError, *image.VerificationError:
		return exitVerification
	case *image.IoError:
		return exitIO
	}

	if v, ok := err.(cli.ExitCoder); ok {
		return v.ExitCode()
	}

	return exitFailure
}
