/*
 * timestep.go, part of godcd
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
	"github.com/rmera/godcd/cell"
	"gonum.org/v1/gonum/mat"
)

//Timestep is one frame of a trajectory, already decoded and in the units
//requested from the Reader or Writer.
type Timestep struct {
	Frame      int
	Time       float64 //Frame*DT, in ps.
	DT         float64 //time between frames, in ps.
	Positions  *mat.Dense
	Dimensions cell.Box
	//Convention is how the unit cell was found on disk. Ignored when writing.
	Convention cell.Convention
	//Offset is the position of the file cursor after the frame was read.
	Offset int64
}

//NewTimestep returns a zeroed Timestep for natoms atoms.
func NewTimestep(natoms int) *Timestep {
	return &Timestep{Positions: newPositions(natoms)}
}

//newPositions returns a natoms x 3 matrix, or nil if natoms is 0, since
//gonum doesn't do empty matrices.
func newPositions(natoms int) *mat.Dense {
	if natoms <= 0 {
		return nil
	}
	return mat.NewDense(natoms, 3, nil)
}

//Len returns the number of atoms in ts.
func (ts *Timestep) Len() int {
	if ts.Positions == nil {
		return 0
	}
	r, _ := ts.Positions.Dims()
	return r
}

//CopyFrom overwrites every field of ts with those of src. The positions are
//copied, not shared.
func (ts *Timestep) CopyFrom(src *Timestep) {
	ts.Frame = src.Frame
	ts.Time = src.Time
	ts.DT = src.DT
	ts.Dimensions = src.Dimensions
	ts.Convention = src.Convention
	ts.Offset = src.Offset
	switch {
	case src.Positions == nil:
		ts.Positions = nil
	case ts.Len() != src.Len():
		ts.Positions = mat.DenseCopyOf(src.Positions)
	default:
		ts.Positions.Copy(src.Positions)
	}
}

//Copy returns a deep copy of ts.
func (ts *Timestep) Copy() *Timestep {
	ret := new(Timestep)
	ret.CopyFrom(ts)
	return ret
}
