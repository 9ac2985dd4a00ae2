/*
 * config.go, part of godcd
 *
 * Copyright 2021 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

package main

import (
	"fmt"
	"os"

	"github.com/rmera/godcd/dcd"
	"github.com/rmera/godcd/units"
	"gopkg.in/yaml.v3"
)

//Config holds the reading options that can be given in a YAML file with
//--config. Flags given in the command line take precedence.
type Config struct {
	Length    string  `yaml:"length"`     //length unit for positions and box lengths
	DT        float64 `yaml:"dt"`         //time between frames, in ps. 0 means from the file.
	NoConvert bool    `yaml:"no_convert"` //leave lengths in Angstrom
}

func loadConfig(path string) (Config, error) {
	var C Config
	if path == "" {
		return C, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return C, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &C); err != nil {
		return C, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return C, nil
}

//ReaderOptions translates C into options for dcd.Open.
func (C Config) ReaderOptions() []dcd.ReaderOption {
	var opts []dcd.ReaderOption
	if C.Length != "" {
		opts = append(opts, dcd.WithLengthUnit(units.Length(C.Length)))
	}
	if C.DT > 0 {
		opts = append(opts, dcd.WithDT(C.DT))
	}
	if C.NoConvert {
		opts = append(opts, dcd.WithoutUnitConversion())
	}
	return opts
}
