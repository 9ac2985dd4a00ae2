/*
 * options.go, part of godcd
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

package dcd

import (
	"github.com/rmera/godcd/units"
)

type readerConfig struct {
	convert bool
	dt      float64
	hasDT   bool
	length  units.Length
}

//ReaderOption configures Open.
type ReaderOption func(*readerConfig)

//WithDT overrides the time between frames stored in the file. dt is in ps.
func WithDT(dt float64) ReaderOption {
	return func(c *readerConfig) {
		c.dt = dt
		c.hasDT = true
	}
}

//WithoutUnitConversion leaves positions and box lengths in Angstrom,
//regardless of the requested length unit.
func WithoutUnitConversion() ReaderOption {
	return func(c *readerConfig) {
		c.convert = false
	}
}

//WithLengthUnit sets the unit for positions and box lengths. The default is Angstrom.
func WithLengthUnit(u units.Length) ReaderOption {
	return func(c *readerConfig) {
		c.length = u
	}
}

type writerConfig struct {
	convert bool
	length  units.Length
	step    int
	dt      float64
	remarks string
	nsavc   int
}

//WriterOption configures Create.
type WriterOption func(*writerConfig)

//WriteWithoutUnitConversion writes positions and box lengths as given,
//assuming they are already in Angstrom.
func WriteWithoutUnitConversion() WriterOption {
	return func(c *writerConfig) {
		c.convert = false
	}
}

//WriteLengthUnit sets the unit the positions and box lengths given to the
//Writer are in. The default is Angstrom.
func WriteLengthUnit(u units.Length) WriterOption {
	return func(c *writerConfig) {
		c.length = u
	}
}

//WithStep sets the number of steps between written frames. It is kept
//for reference only, and not stored in the file.
func WithStep(step int) WriterOption {
	return func(c *writerConfig) {
		c.step = step
	}
}

//WithTimestep sets the time step, in ps, stored in the header. The default is 1 ps.
func WithTimestep(dt float64) WriterOption {
	return func(c *writerConfig) {
		c.dt = dt
	}
}

//WithRemarks sets the remarks in the header. Only the first 240 characters
//are written.
func WithRemarks(remarks string) WriterOption {
	return func(c *writerConfig) {
		c.remarks = remarks
	}
}

//WithNSavc sets the number of integration steps between frames. Readers
//take the time between frames as the time step times nsavc, so unless you
//know another program needs it, leave it at 1.
func WithNSavc(nsavc int) WriterOption {
	return func(c *writerConfig) {
		c.nsavc = nsavc
	}
}
