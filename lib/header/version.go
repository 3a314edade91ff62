// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package header

import (
	"fmt"
	"regexp"
	"strconv"
)

// Version is the header format version, not the firmware version.
type Version struct {
	Major, Minor uint
}

var DefaultVersion = Version{Major: 1, Minor: 0}

func NewVersion(major, minor uint) Version {
	return Version{Major: major, Minor: minor}
}

var versionRE *regexp.Regexp = regexp.MustCompile("^[Vv]?([0-9]+)\\.([0-9]+)$")

func ParseVersion(str string) (Version, error) {
	matches := versionRE.FindStringSubmatch(str)
	if len(matches) != 3 {
		return Version{}, fmt.Errorf("Can't parse: '%s'", str)
	}
	major, err := strconv.ParseUint(matches[1], 10, 0)
	if err != nil {
		return Version{}, fmt.Errorf("Can't parse: '%s' (major)", str)
	}
	minor, err := strconv.ParseUint(matches[2], 10, 0)
	if err != nil {
		return Version{}, fmt.Errorf("Can't parse: '%s' (minor)", str)
	}

	return NewVersion(uint(major), uint(minor)), nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	(*v) = parsed
	return err
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte("V" + v.String()), nil
}
