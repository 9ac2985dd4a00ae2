/*
 * timeseries.go, part of godcd
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
	"fmt"

	"github.com/rmera/godcd/dcdfile"
)

//Order is the axis order of a Series, a permutation of (a)tom, (f)rame and (c)oordinate.
type Order = dcdfile.Order

//Series holds the coordinates of a set of atoms over a set of frames.
type Series = dcdfile.Series

const (
	AFC = dcdfile.AFC
	ACF = dcdfile.ACF
	FAC = dcdfile.FAC
	FCA = dcdfile.FCA
	CAF = dcdfile.CAF
	CFA = dcdfile.CFA
)

//Range selects frames the way a Python slice does: Start is inclusive, Stop
//exclusive, negative values count from the end and nil fields take their defaults.
type Range struct {
	Start *int
	Stop  *int
	Step  *int
}

//AllFrames selects every frame.
func AllFrames() Range {
	return Range{}
}

//Frames returns the range [start, stop) with the given step.
func Frames(start, stop, step int) Range {
	return Range{Start: &start, Stop: &stop, Step: &step}
}

//From returns a copy of r starting at start.
func (r Range) From(start int) Range {
	r.Start = &start
	return r
}

//To returns a copy of r stopping before stop.
func (r Range) To(stop int) Range {
	r.Stop = &stop
	return r
}

//Every returns a copy of r with the given step.
func (r Range) Every(step int) Range {
	r.Step = &step
	return r
}

func (r Range) String() string {
	f := func(p *int) string {
		if p == nil {
			return ""
		}
		return fmt.Sprint(*p)
	}
	return fmt.Sprintf("[%s:%s:%s]", f(r.Start), f(r.Stop), f(r.Step))
}

//Indices resolves r for a trajectory of n frames, clamping Start and Stop
//like Python's slice.indices. If the range selects no frames, stop equals start.
func (r Range) Indices(n int) (start, stop, step int, err error) {
	step = 1
	if r.Step != nil {
		step = *r.Step
	}
	if step == 0 {
		return 0, 0, 0, ErrZeroStep
	}
	lower, upper := 0, n
	if step < 0 {
		lower, upper = -1, n-1
	}
	clamp := func(p *int, def int) int {
		if p == nil {
			return def
		}
		v := *p
		if v < 0 {
			v += n
			if v < lower {
				v = lower
			}
			return v
		}
		if v > upper {
			v = upper
		}
		return v
	}
	if step > 0 {
		start = clamp(r.Start, lower)
		stop = clamp(r.Stop, upper)
	} else {
		start = clamp(r.Start, upper)
		stop = clamp(r.Stop, lower)
	}
	if (step > 0 && stop <= start) || (step < 0 && stop >= start) {
		stop = start
	}
	return start, stop, step, nil
}

//Timeseries returns the coordinates of the atoms with the given indices
//(all of them if atoms is nil) over the frames selected by frames, laid out
//in the given order. The values are returned as stored in the file, in
//Angstrom. The reader's position is not changed.
func (R *Reader) Timeseries(atoms []int, frames Range, order Order) (*Series, error) {
	if !R.readable {
		return nil, newError(ErrClosed, R.filename, "Timeseries", "")
	}
	if atoms != nil && len(atoms) == 0 {
		return nil, newError(ErrNoData, R.filename, "Timeseries", "")
	}
	if !order.Valid() {
		return nil, newError(ErrBadOrder, R.filename, "Timeseries", "%q is not a permutation of 'afc'", string(order))
	}
	start, stop, step, err := frames.Indices(R.nframes)
	if err != nil {
		return nil, newError(err, R.filename, "Timeseries", "")
	}
	S, err := R.file.ReadFrames(start, stop, step, atoms, order)
	if err != nil {
		return nil, errDecorate(err, "Timeseries")
	}
	return S, nil
}
