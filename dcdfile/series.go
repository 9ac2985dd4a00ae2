/*
 * series.go, part of godcd
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

package dcdfile

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//Order is the axis order of a Series: a permutation of (a)tom, (f)rame and
//(c)oordinate.
type Order string

const (
	AFC Order = "afc"
	ACF Order = "acf"
	FAC Order = "fac"
	FCA Order = "fca"
	CAF Order = "caf"
	CFA Order = "cfa"
)

//Orders lists the valid axis orders.
var Orders = []Order{AFC, ACF, FAC, FCA, CAF, CFA}

//Valid returns true if o is one of the 6 permutations of "afc".
func (o Order) Valid() bool {
	o = Order(strings.ToLower(string(o)))
	for _, v := range Orders {
		if o == v {
			return true
		}
	}
	return false
}

//Series holds coordinates for several atoms over several frames. The layout
//of Data follows Order; At takes logical indices regardless of it.
type Series struct {
	Order   Order
	Shape   [3]int //the size of each axis, in Order.
	Data    []float64
	strides [3]int //atom, frame and coordinate strides in Data.
}

//NewSeries returns a zeroed Series for the given number of atoms and frames.
func NewSeries(order Order, atoms, frames int) (*Series, error) {
	if !order.Valid() {
		return nil, fmt.Errorf("%q: %w", string(order), ErrBadOrder)
	}
	order = Order(strings.ToLower(string(order)))
	size := map[byte]int{'a': atoms, 'f': frames, 'c': 3}
	S := &Series{Order: order, Data: make([]float64, atoms*frames*3)}
	for i := 0; i < 3; i++ {
		S.Shape[i] = size[order[i]]
	}
	stride := 1
	for i := 2; i >= 0; i-- {
		S.strides[strings.IndexByte("afc", order[i])] = stride
		stride *= S.Shape[i]
	}
	return S, nil
}

//Atoms returns the number of atoms in the series.
func (S *Series) Atoms() int {
	return S.Shape[strings.IndexByte(string(S.Order), 'a')]
}

//Frames returns the number of frames in the series.
func (S *Series) Frames() int {
	return S.Shape[strings.IndexByte(string(S.Order), 'f')]
}

func (S *Series) index(atom, frame, coord int) int {
	return atom*S.strides[0] + frame*S.strides[1] + coord*S.strides[2]
}

//At returns coordinate coord of atom in frame.
func (S *Series) At(atom, frame, coord int) float64 {
	return S.Data[S.index(atom, frame, coord)]
}

//Set sets coordinate coord of atom in frame to v.
func (S *Series) Set(atom, frame, coord int, v float64) {
	S.Data[S.index(atom, frame, coord)] = v
}

//Frame returns the coordinates of frame f as an atoms x 3 matrix.
func (S *Series) Frame(f int) *mat.Dense {
	n := S.Atoms()
	m := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, S.At(i, f, j))
		}
	}
	return m
}

//frameCount returns how many frames the range [start, stop) with step visits.
func frameCount(start, stop, step int) int {
	if step > 0 && stop > start {
		return (stop - start + step - 1) / step
	}
	if step < 0 && start > stop {
		return (start - stop - step - 1) / -step
	}
	return 0
}

//ReadFrames reads the frames start, start+step, ... up to, but not including,
//stop, keeping only the atoms in indices (all atoms if indices is nil).
//The range must already be clamped to the file. The result is laid out in
//the given order. Only coordinates are read; the cursor is restored afterwards.
func (D *File) ReadFrames(start, stop, step int, indices []int, order Order) (S *Series, err error) {
	if !D.readable {
		return nil, newError("Read on closed file", D.filename, "ReadFrames", ErrNotReadable)
	}
	if step == 0 {
		return nil, newError("step can't be zero", D.filename, "ReadFrames", ErrOutOfRange)
	}
	natoms := D.header.Atoms
	if indices == nil {
		indices = make([]int, natoms)
		for i := range indices {
			indices[i] = i
		}
	}
	for _, v := range indices {
		if v < 0 || v >= natoms {
			return nil, newError(fmt.Sprintf("atom %d requested, frames have %d", v, natoms), D.filename, "ReadFrames", ErrAtomIndex)
		}
	}
	nf := frameCount(start, stop, step)
	if nf > 0 {
		last := start + (nf-1)*step
		if start < 0 || start >= D.nframes || last < 0 || last >= D.nframes {
			return nil, newError(fmt.Sprintf("frames %d to %d requested, file has %d", start, last, D.nframes), D.filename, "ReadFrames", ErrOutOfRange)
		}
	}
	S, err = NewSeries(order, len(indices), nf)
	if err != nil {
		return nil, newError(err.Error(), D.filename, "ReadFrames", err)
	}
	saved := D.current
	defer func() {
		if serr := D.Seek(saved); serr != nil && err == nil {
			S, err = nil, errDecorate(serr, "ReadFrames")
		}
	}()
	F := NewFrame(natoms)
	for fi := 0; fi < nf; fi++ {
		if err := D.Seek(start + fi*step); err != nil {
			return nil, errDecorate(err, "ReadFrames")
		}
		if err := D.ReadFrame(F); err != nil {
			return nil, errDecorate(err, "ReadFrames")
		}
		for ai, atom := range indices {
			for c := 0; c < 3; c++ {
				S.Set(ai, fi, c, float64(F.Coords[c][atom]))
			}
		}
	}
	return S, nil
}
