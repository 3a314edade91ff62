// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package config

import (
	"io"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/usedbytes/log"
	"github.com/usedbytes/stm32-imgtool/lib/checksum"
	"github.com/usedbytes/stm32-imgtool/lib/elfinfo"
)

const DefaultTarget = "stm32mp2"

func builtinTargets() map[string]*Target {
	return map[string]*Target{
		DefaultTarget: &Target{
			Name:        DefaultTarget,
			Description: "STM32MP2 boot ROM / second stage loader",
			ByteOrder:   LittleEndian,
			Checksum:    checksum.Sum32,
			Section:     elfinfo.DefaultSection,
		},
	}
}

// NewConfig returns a config holding only the built-in targets.
func NewConfig() *Config {
	return &Config{
		Targets: builtinTargets(),
	}
}

func (c *Config) finalise() {
	for k, v := range c.Targets {
		if v == nil {
			v = &Target{}
			c.Targets[k] = v
		}
		v.Name = k
		v.setDefaults()
	}
}

func decode(md toml.MetaData, err error, cfg *Config) error {
	if err != nil {
		return err
	}

	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return errors.Errorf("unknown keys: %v", undecoded)
	}

	cfg.finalise()

	return nil
}

// LoadConfig reads target definitions from a TOML file. Targets in the file
// replace built-in targets of the same name.
func LoadConfig(filename string) (*Config, error) {
	cfg := NewConfig()

	md, err := toml.DecodeFile(filename, cfg)
	if err := decode(md, err, cfg); err != nil {
		return nil, errors.Wrapf(err, "Loading config %s", filename)
	}

	log.Verbosef("Loaded %d targets from %s\n", len(cfg.Targets), filename)

	return cfg, nil
}

// ParseConfig is LoadConfig for TOML held in memory.
func ParseConfig(data string) (*Config, error) {
	cfg := NewConfig()

	md, err := toml.Decode(data, cfg)
	if err := decode(md, err, cfg); err != nil {
		return nil, errors.Wrap(err, "Parsing config")
	}

	return cfg, nil
}

func (c *Config) Target(name string) (*Target, error) {
	if len(name) == 0 {
		name = DefaultTarget
	}

	t, ok := c.Targets[name]
	if !ok {
		return nil, errors.Errorf("unknown target '%s'", name)
	}

	return t, nil
}

func (c *Config) TargetNames() []string {
	names := make([]string, 0, len(c.Targets))
	for k := range c.Targets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (c *Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	return enc.Encode(c)
}
