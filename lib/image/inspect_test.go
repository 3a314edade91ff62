// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package image

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/usedbytes/stm32-imgtool/lib/header"
)

func buildFixture(t *testing.T, payloadLen int, trunc uint64) *fixture {
	t.Helper()
	f := newFixture(t, patternPayload(payloadLen))
	f.opts.TruncateLen = trunc
	if _, err := Build(f.opts); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestInspect(t *testing.T) {
	tests := []struct {
		name     string
		trunc    uint64
		status   PayloadStatus
		trailing int64
	}{
		{"complete", 0, PayloadOK, 0},
		{"padded", header.HeaderSize + 600, PayloadOK, 100},
		{"truncated", header.HeaderSize + 100, PayloadTruncated, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := buildFixture(t, 500, tc.trunc)

			insp, err := Inspect(f.opts.OutPath, header.DefaultFormat)
			if err != nil {
				t.Fatal(err)
			}

			if insp.Status != tc.status {
				t.Errorf("status: got %s, expected %s", insp.Status, tc.status)
			}
			if insp.Trailing != tc.trailing {
				t.Errorf("trailing: got %d, expected %d", insp.Trailing, tc.trailing)
			}
			if insp.Header.ImageLength != 500 {
				t.Errorf("ImageLength: got %d", insp.Header.ImageLength)
			}
			if !strings.Contains(insp.String(), "Payload:          "+tc.status.String()) {
				t.Errorf("status missing from:\n%s", insp)
			}
		})
	}
}

func TestInspectCorruptPayload(t *testing.T) {
	f := buildFixture(t, 500, 0)

	data, err := ioutil.ReadFile(f.opts.OutPath)
	if err != nil {
		t.Fatal(err)
	}
	data[header.HeaderSize+10] ^= 0x40
	if err := ioutil.WriteFile(f.opts.OutPath, data, 0644); err != nil {
		t.Fatal(err)
	}

	insp, err := Inspect(f.opts.OutPath, header.DefaultFormat)
	if err != nil {
		t.Fatal(err)
	}
	if insp.Status != PayloadMismatch {
		t.Errorf("status: got %s", insp.Status)
	}
}

func TestInspectBadHeader(t *testing.T) {
	f := buildFixture(t, 500, 0)

	data, err := ioutil.ReadFile(f.opts.OutPath)
	if err != nil {
		t.Fatal(err)
	}
	data[0] = 'X'
	if err := ioutil.WriteFile(f.opts.OutPath, data, 0644); err != nil {
		t.Fatal(err)
	}

	_, err = Inspect(f.opts.OutPath, header.DefaultFormat)
	de, ok := errors.Cause(err).(*header.DecodeError)
	if !ok || de.Kind != header.InvalidMagic {
		t.Fatalf("expected InvalidMagic, got %v", err)
	}
}

func TestInspectSparseTail(t *testing.T) {
	f := buildFixture(t, 500, 0)

	const size = 1 << 30
	if err := os.Truncate(f.opts.OutPath, size); err != nil {
		t.Fatal(err)
	}

	insp, err := Inspect(f.opts.OutPath, header.DefaultFormat)
	if err != nil {
		t.Fatal(err)
	}
	if insp.Status != PayloadOK {
		t.Errorf("status: got %s", insp.Status)
	}
	if insp.FileSize != size {
		t.Errorf("FileSize: got %d", insp.FileSize)
	}
	if insp.Trailing != size-header.HeaderSize-500 {
		t.Errorf("trailing: got %d", insp.Trailing)
	}
}

func TestInspectMissing(t *testing.T) {
	_, err := Inspect(filepath.Join(t.TempDir(), "nope.stm32"), header.DefaultFormat)
	if _, ok := errors.Cause(err).(*InputNotFoundError); !ok {
		t.Fatalf("expected InputNotFoundError, got %v", err)
	}
}
